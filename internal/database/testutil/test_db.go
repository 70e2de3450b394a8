package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bannerworks/alertbanner/internal/database"
)

var dbCounter atomic.Int64

// TestDBOption customises the behaviour of MustOpenTestDB.
type TestDBOption func(*testDBConfig)

type testDBConfig struct {
	autoMigrate bool
	seedData    bool
}

// WithAutoMigrate enables automatic schema migration after opening the test database.
func WithAutoMigrate() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
	}
}

// WithSeedData ensures migrations are applied and the language reference data inserted.
func WithSeedData() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
		cfg.seedData = true
	}
}

// MustOpenTestDB opens an in-memory SQLite database for tests, applying optional
// migrations/seed data. The returned connection is closed via t.Cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	cfg := testDBConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Each test gets its own named in-memory database so state never leaks
	// between tests sharing a process.
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_foreign_keys=1", dbCounter.Add(1))
	db, err := database.Open(database.Config{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)

	if cfg.seedData {
		require.NoError(t, database.AutoMigrateAndSeed(db))
	} else if cfg.autoMigrate {
		require.NoError(t, database.AutoMigrate(db))
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
