package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	appcheckout "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/review"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/wishlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestUserRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormUserRepository(db.DB)
	ctx := context.Background()

	u := seedUser(t, db, "Ann", "Ann@Example.com")
	assert.NotZero(t, u.ID)

	found, err := repo.FindByEmail(ctx, " ann@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.True(t, found.VerifyPassword("secret123"))

	exists, err := repo.ExistsByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	dup, _ := identity.NewUser("Other", "ann@example.com", "secret123", identity.RoleCustomer)
	assert.ErrorIs(t, repo.Save(ctx, dup), identity.ErrEmailTaken)

	n, err := repo.CountByRole(ctx, identity.RoleAdmin)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUserRepository_ProfileRoundTrip(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormUserRepository(db.DB)
	ctx := context.Background()

	u := seedUser(t, db, "Ann", "ann@example.com")
	dob := time.Date(1991, 2, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, u.UpdateProfile("Ann Smith", identity.Profile{
		DateOfBirth: &dob,
		Gender:      identity.GenderFemale,
		Phone:       "+1 555 0100",
		Address:     "4 Elm Street",
	}))
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann Smith", found.Name)
	assert.Equal(t, identity.GenderFemale, found.Profile.Gender)
	assert.Equal(t, "+1 555 0100", found.Profile.Phone)
	assert.Equal(t, "4 Elm Street", found.Profile.Address)
	require.NotNil(t, found.Profile.DateOfBirth)
	assert.Equal(t, "1991-02-03", found.Profile.DateOfBirth.Format("2006-01-02"))
	assert.True(t, found.VerifyPassword("secret123"))
}

func TestProductRepository_FindAll(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormProductRepository(db.DB)
	ctx := context.Background()

	seedProduct(t, db, "Desk Lamp", "Home", "25.00", 3)
	seedProduct(t, db, "Chair", "Home", "80.00", 0)
	seedProduct(t, db, "Novel", "Books", "12.50", 10)

	min := decimal.NewFromInt(20)
	products, total, err := repo.FindAll(ctx, catalog.ProductFilter{
		Filter:   shared.Filter{Page: 1, PageSize: 10},
		Category: "Home",
		MinPrice: &min,
		Sort:     catalog.SortPriceHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, products, 2)
	assert.Equal(t, "Chair", products[0].Name)

	products, total, err = repo.FindAll(ctx, catalog.ProductFilter{
		Filter: shared.Filter{Page: 1, PageSize: 10, Search: "LAMP"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Desk Lamp", products[0].Name)

	categories, err := repo.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Books", "Home"}, categories)

	low, err := repo.FindLowStock(ctx, 5, 10)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Chair", low[0].Name)
}

func TestProductRepository_DecrementStock(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormProductRepository(db.DB)
	ctx := context.Background()
	p := seedProduct(t, db, "Lamp", "Home", "10", 3)

	require.NoError(t, repo.DecrementStock(ctx, p.ID, 2))
	assert.ErrorIs(t, repo.DecrementStock(ctx, p.ID, 2), catalog.ErrStockUnderflow)

	reloaded, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Stock)

	require.NoError(t, repo.DecrementStock(ctx, p.ID, 1))
	reloaded, _ = repo.FindByID(ctx, p.ID)
	assert.Equal(t, 0, reloaded.Stock)
	assert.Error(t, repo.DecrementStock(ctx, p.ID, 0))
}

func TestProductRepository_UpdateDetailsKeepsStock(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormProductRepository(db.DB)
	ctx := context.Background()
	p := seedProduct(t, db, "Lamp", "Home", "10", 3)

	stale, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, repo.DecrementStock(ctx, p.ID, 2))

	require.NoError(t, stale.Update("Reading Lamp", "Home", "Warm light"))
	require.NoError(t, stale.SetPrice(decimal.RequireFromString("12.50")))
	require.NoError(t, repo.UpdateDetails(ctx, stale))

	reloaded, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Reading Lamp", reloaded.Name)
	assert.True(t, reloaded.Price.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, 1, reloaded.Stock)

	stale.ID = 999
	assert.ErrorIs(t, repo.UpdateDetails(ctx, stale), shared.ErrNotFound)
}

func TestProductRepository_SetStock(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormProductRepository(db.DB)
	ctx := context.Background()
	p := seedProduct(t, db, "Lamp", "Home", "10", 3)

	require.NoError(t, repo.SetStock(ctx, p.ID, 8))
	reloaded, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, reloaded.Stock)

	assert.ErrorIs(t, repo.SetStock(ctx, p.ID, -1), catalog.ErrInvalidStock)
	assert.ErrorIs(t, repo.SetStock(ctx, 999, 1), shared.ErrNotFound)
}

// The guard must live in the UPDATE itself; a read-then-write would race.
func TestProductRepository_DecrementStockStatement(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	repo := NewGormProductRepository(gdb)

	mock.ExpectExec(`UPDATE "products" SET "stock"=stock - \$1 WHERE id = \$2 AND stock >= \$3`).
		WithArgs(2, int64(7), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "products" SET "stock"=stock - \$1 WHERE id = \$2 AND stock >= \$3`).
		WithArgs(5, int64(7), 5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DecrementStock(context.Background(), 7, 2))
	assert.ErrorIs(t, repo.DecrementStock(context.Background(), 7, 5), catalog.ErrStockUnderflow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormCartRepository(db.DB)
	ctx := context.Background()
	u := seedUser(t, db, "Ann", "ann@example.com")
	lamp := seedProduct(t, db, "Lamp", "Home", "10.00", 3)
	desk := seedProduct(t, db, "Desk", "Home", "99.00", 1)

	l1, _ := cart.NewCartLine(u.ID, lamp.ID)
	l1.Quantity = 2
	require.NoError(t, repo.Save(ctx, l1))
	l2, _ := cart.NewCartLine(u.ID, desk.ID)
	require.NoError(t, repo.Save(ctx, l2))

	dup, _ := cart.NewCartLine(u.ID, lamp.ID)
	assert.Error(t, repo.Save(ctx, dup))

	items, err := repo.ListItems(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Lamp", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 3, items[0].Stock)
	assert.True(t, items[0].Price.Equal(decimal.NewFromInt(10)))

	found, err := repo.FindByUserAndProduct(ctx, u.ID, desk.ID)
	require.NoError(t, err)
	assert.Equal(t, l2.ID, found.ID)

	require.NoError(t, repo.Delete(ctx, l2.ID))
	assert.ErrorIs(t, repo.Delete(ctx, l2.ID), shared.ErrNotFound)

	n, err := repo.ClearForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOrderRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormOrderRepository(db.DB)
	ctx := context.Background()
	ann := seedUser(t, db, "Ann", "ann@example.com")
	bob := seedUser(t, db, "Bob", "bob@example.com")
	lamp := seedProduct(t, db, "Lamp", "Home", "10.00", 3)

	o1, _ := order.NewConfirmedOrder(ann.ID, lamp.ID, 2, decimal.NewFromInt(10), "card")
	o2, _ := order.NewConfirmedOrder(bob.ID, lamp.ID, 1, decimal.NewFromInt(10), "paypal")
	require.NoError(t, repo.Create(ctx, o1, o2))
	assert.NotZero(t, o1.ID)
	assert.NotEqual(t, o1.ID, o2.ID)

	view, err := repo.FindViewByID(ctx, o1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", view.ProductName)
	assert.Equal(t, "Ann", view.CustomerName)
	assert.True(t, view.TotalPrice.Equal(decimal.NewFromInt(20)))

	views, total, err := repo.ListViews(ctx, order.ListFilter{UserID: bob.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "paypal", views[0].PaymentMethod)

	views, total, err = repo.ListViews(ctx, order.ListFilter{Filter: shared.Filter{Search: "ann"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, o1.ID, views[0].ID)

	used, err := repo.ExistsForProduct(ctx, lamp.ID)
	require.NoError(t, err)
	assert.True(t, used)

	_, err = repo.FindViewByID(ctx, 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderRepository_UpdateStatusIsVersionGuarded(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormOrderRepository(db.DB)
	ctx := context.Background()
	u := seedUser(t, db, "Ann", "ann@example.com")
	p := seedProduct(t, db, "Lamp", "Home", "10.00", 3)

	o, _ := order.NewConfirmedOrder(u.ID, p.ID, 1, decimal.NewFromInt(10), "card")
	require.NoError(t, repo.Create(ctx, o))

	first, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	stale, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)

	_, err = first.TransitionTo(order.StatusShipped, true)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, first))

	_, err = stale.TransitionTo(order.StatusCancelled, true)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, stale), shared.ErrConcurrencyConflict)

	stored, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, stored.Status)
}

func TestReviewRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormReviewRepository(db.DB)
	ctx := context.Background()
	ann := seedUser(t, db, "Ann", "ann@example.com")
	bob := seedUser(t, db, "Bob", "bob@example.com")
	p := seedProduct(t, db, "Lamp", "Home", "10.00", 3)

	r1, err := review.NewReview(p.ID, ann.ID, 5, "great")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, r1))
	r2, _ := review.NewReview(p.ID, bob.ID, 2, "meh")
	require.NoError(t, repo.Save(ctx, r2))

	again, _ := review.NewReview(p.ID, ann.ID, 1, "changed my mind")
	assert.ErrorIs(t, repo.Save(ctx, again), review.ErrAlreadyReviewed)

	exists, err := repo.Exists(ctx, p.ID, ann.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	views, err := repo.ListForProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	avg, err := repo.AverageRating(ctx, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, avg, 0.001)
}

func TestWishlistRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormWishlistRepository(db.DB)
	ctx := context.Background()
	ann := seedUser(t, db, "Ann", "ann@example.com")
	bob := seedUser(t, db, "Bob", "bob@example.com")
	p := seedProduct(t, db, "Lamp", "Home", "10.00", 3)

	item := wishlist.NewItem(ann.ID, p.ID)
	require.NoError(t, repo.Save(ctx, item))

	views, err := repo.List(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Lamp", views[0].Name)

	ids, err := repo.ProductIDs(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{p.ID}, ids)

	removed, err := repo.Delete(ctx, bob.ID, item.ID)
	require.NoError(t, err)
	assert.False(t, removed, "another user's entry must not be removable")

	removed, err = repo.Delete(ctx, ann.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestDashboardRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormDashboardRepository(db.DB)
	orders := NewGormOrderRepository(db.DB)
	ctx := context.Background()
	u := seedUser(t, db, "Ann", "ann@example.com")
	lamp := seedProduct(t, db, "Lamp", "Home", "10.00", 2)
	book := seedProduct(t, db, "Novel", "Books", "5.00", 20)

	o1, _ := order.NewConfirmedOrder(u.ID, lamp.ID, 2, lamp.Price, "card")
	o2, _ := order.NewConfirmedOrder(u.ID, book.ID, 1, book.Price, "card")
	require.NoError(t, orders.Create(ctx, o1, o2))

	totals, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.Products)
	assert.Equal(t, int64(2), totals.Orders)
	assert.Equal(t, int64(1), totals.Users)
	assert.True(t, totals.Revenue.Equal(decimal.NewFromInt(25)), totals.Revenue.String())

	daily, err := repo.DailySales(ctx, time.Now().AddDate(0, 0, -6))
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, int64(2), daily[0].Orders)

	byCategory, err := repo.CategorySales(ctx)
	require.NoError(t, err)
	require.Len(t, byCategory, 2)
	assert.Equal(t, "Home", byCategory[0].Category)

	low, err := repo.CountLowStock(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), low)
}

type recordingSaver struct {
	saved []shared.DomainEvent
}

func (s *recordingSaver) SaveEvents(_ context.Context, _ any, events ...shared.DomainEvent) error {
	s.saved = append(s.saved, events...)
	return nil
}

func TestTransactionScope_RollsBackOnError(t *testing.T) {
	db := newTestDatabase(t)
	saver := &recordingSaver{}
	scope := NewGormTransactionScope(db.DB, saver)
	ctx := context.Background()
	p := seedProduct(t, db, "Lamp", "Home", "10.00", 3)

	boom := errors.New("boom")
	err := scope.Execute(ctx, func(repos appcheckout.TransactionalRepositories) error {
		if err := repos.ProductRepo().DecrementStock(ctx, p.ID, 2); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	reloaded, err := NewGormProductRepository(db.DB).FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Stock)
}
