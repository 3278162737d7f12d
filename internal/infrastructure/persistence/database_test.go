package persistence

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDatabase opens a migrated in-memory sqlite database
func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, db *Database, name, email string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(name, email, "secret123", identity.RoleCustomer)
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db.DB).Save(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, db *Database, name, category, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, category, decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db.DB).Save(context.Background(), p))
	return p
}

func TestNewDatabase_SQLite(t *testing.T) {
	db := newTestDatabase(t)

	assert.Equal(t, "sqlite", db.Driver())
	assert.NoError(t, db.Ping())

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)

	for _, table := range []string{"users", "products", "cart_lines", "orders", "reviews", "wishlist_items", "outbox_events"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "mysql"}, nil)
	assert.ErrorContains(t, err, `unsupported database driver "mysql"`)
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	assert.Error(t, db.Ping())
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?_foreign_keys=on", sqliteDSN(":memory:"))
	assert.Equal(t, "file:shop.db?_foreign_keys=on&_busy_timeout=5000", sqliteDSN("shop.db"))
	assert.Equal(t, "file:shop.db?cache=shared&_foreign_keys=on&_busy_timeout=5000", sqliteDSN("shop.db?cache=shared"))
}

func TestStockCheckConstraint(t *testing.T) {
	db := newTestDatabase(t)
	p := seedProduct(t, db, "Lamp", "Home", "10", 1)

	err := db.DB.Exec("UPDATE products SET stock = -1 WHERE id = ?", p.ID).Error
	assert.Error(t, err)
}
