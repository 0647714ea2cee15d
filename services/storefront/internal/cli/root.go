// Package cli implements storefrontctl, the operator tool for the storefront database.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/services/storefront/internal/repo"
)

// Opener connects to the database named by dsn.
type Opener func(ctx context.Context, dsn string) (*gorm.DB, error)

// PublisherFactory builds the event publisher used by commands that emit events.
type PublisherFactory func() events.Publisher

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DatabaseURL string

	open         Opener
	newPublisher PublisherFactory
}

func (o *RootOptions) repo(ctx context.Context) (*repo.GormRepo, func(), error) {
	if o.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("database url is empty: set --database-url or DATABASE_URL")
	}
	gdb, err := o.open(ctx, o.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = db.Close(gdb) }
	return &repo.GormRepo{DB: gdb}, closeFn, nil
}

// publisher returns the configured publisher and a func that releases it.
func (o *RootOptions) publisher() (events.Publisher, func()) {
	pub := o.newPublisher()
	return pub, func() {
		if c, ok := pub.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

func kafkaPublisher() events.Publisher {
	return events.NewPublisher(config.CSV(os.Getenv("KAFKA_BROKERS")))
}

// NewRootCommand creates the storefrontctl command tree backed by postgres and Kafka.
func NewRootCommand() *cobra.Command {
	return newRootCommand(db.Open, kafkaPublisher)
}

func newRootCommand(open Opener, newPublisher PublisherFactory) *cobra.Command {
	opts := &RootOptions{open: open, newPublisher: newPublisher}

	cmd := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Operate the storefront database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", os.Getenv("DATABASE_URL"), "postgres DSN")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewAdvanceCommand(opts))

	return cmd
}
