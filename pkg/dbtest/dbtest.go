// Package dbtest opens throwaway in-memory databases for repository and service tests.
package dbtest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

// Open returns an in-memory sqlite database migrated with the given models.
// The pool is limited to one connection so every query sees the same database.
func Open(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	cfg := pkgdb.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...))
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
