package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/services/storefront/internal/cli"
)

func main() {
	config.LoadDotEnv(".env")

	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
