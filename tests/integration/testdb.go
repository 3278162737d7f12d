// Package integration runs the storefront API end to end against a real
// database: an in-memory SQLite by default and PostgreSQL in a container
// when Docker is available.
package integration

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

var (
	// Shared container for all postgres tests in the package
	sharedContainer   *tcpostgres.PostgresContainer
	sharedContainerMu sync.Mutex
	sharedDBConfig    config.DatabaseConfig
)

// NewSQLiteDB opens a fresh in-memory SQLite database with the schema
// created from the GORM models
func NewSQLiteDB(t *testing.T) *persistence.Database {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, testGormLogger())
	require.NoError(t, err, "Failed to open sqlite database")
	require.NoError(t, db.AutoMigrate(), "Failed to create schema")

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewPostgresDB connects to the shared PostgreSQL container, starting it and
// applying the embedded migrations on first use. Every table is truncated
// before the database is handed out. The test is skipped with -short or when
// no container runtime is reachable.
func NewPostgresDB(t *testing.T) *persistence.Database {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	cfg := sharedPostgres(t)
	db, err := persistence.NewDatabase(&cfg, testGormLogger())
	require.NoError(t, err, "Failed to connect to postgres")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.DB.Exec(
		"TRUNCATE TABLE outbox_events, wishlist_items, reviews, orders, cart_lines, products, users RESTART IDENTITY CASCADE",
	).Error, "Failed to truncate tables")
	return db
}

func sharedPostgres(t *testing.T) config.DatabaseConfig {
	t.Helper()

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		return sharedDBConfig
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Driver:       "postgres",
		Host:         host,
		Port:         port.Int(),
		User:         "postgres",
		Password:     "postgres",
		DBName:       "storefront_test",
		SSLMode:      "disable",
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	}

	db, err := persistence.NewDatabase(&cfg, testGormLogger())
	require.NoError(t, err, "Failed to connect to postgres")
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up(), "Failed to run migrations")
	_ = m.Close()
	_ = db.Close()

	sharedContainer = container
	sharedDBConfig = cfg
	return cfg
}

// CleanupSharedContainer terminates the shared container.
// Call it from TestMain after the tests ran.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
	}
}

// testGormLogger is silent unless TEST_DB_DEBUG is set
func testGormLogger() gormlogger.Interface {
	if os.Getenv("TEST_DB_DEBUG") != "" {
		l, _ := zap.NewDevelopment()
		return logger.NewGormLogger(l, gormlogger.Info, 0)
	}
	return gormlogger.Default.LogMode(gormlogger.Silent)
}
