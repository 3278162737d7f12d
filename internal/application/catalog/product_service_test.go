package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) FindLowStock(ctx context.Context, threshold, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, threshold, limit)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateDetails(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SetStock(ctx context.Context, id int64, stock int) error {
	args := m.Called(ctx, id, stock)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id int64, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

// MockOrderRepository only answers ExistsForProduct
type MockOrderRepository struct {
	mock.Mock
	order.OrderRepository
}

func (m *MockOrderRepository) ExistsForProduct(ctx context.Context, productID int64) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

type fakeImages struct{}

func (fakeImages) ImageURL(_ context.Context, key string) string {
	if key == "" {
		return ""
	}
	return "https://cdn.test/" + key
}

func newTestProduct(id int64, name string, price string, stock int) *catalog.Product {
	p, _ := catalog.NewProduct(name, "Home", decimal.RequireFromString(price), stock)
	p.ID = id
	return p
}

func TestProductService_Create(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, fakeImages{}, nil)
	ctx := context.Background()

	repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).
		Run(func(args mock.Arguments) { args.Get(1).(*catalog.Product).ID = 11 }).
		Return(nil)

	resp, err := svc.Create(ctx, CreateProductRequest{
		Name:        " Lamp ",
		Category:    "Home",
		Price:       decimal.RequireFromString("19.99"),
		Stock:       4,
		Description: "Warm light",
		ImageKey:    "products/lamp.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), resp.ID)
	assert.Equal(t, "Lamp", resp.Name)
	assert.True(t, resp.InStock)
	assert.Equal(t, "https://cdn.test/products/lamp.jpg", resp.ImageURL)
}

func TestProductService_CreateRejectsNegatives(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateProductRequest{Name: "Lamp", Category: "Home", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, catalog.ErrInvalidPrice)

	_, err = svc.Create(ctx, CreateProductRequest{Name: "Lamp", Category: "Home", Price: decimal.NewFromInt(1), Stock: -2})
	assert.ErrorIs(t, err, catalog.ErrInvalidStock)

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_UpdatePartial(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, nil, nil)
	ctx := context.Background()

	p := newTestProduct(3, "Desk", "100", 2)
	current := newTestProduct(3, "Desk", "89.50", 9)
	repo.On("FindByID", ctx, int64(3)).Return(p, nil).Once()
	repo.On("UpdateDetails", ctx, p).Return(nil)
	repo.On("SetStock", ctx, int64(3), 9).Return(nil)
	repo.On("FindByID", ctx, int64(3)).Return(current, nil).Once()

	stock := 9
	price := decimal.RequireFromString("89.50")
	resp, err := svc.Update(ctx, 3, UpdateProductRequest{Stock: &stock, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Desk", resp.Name)
	assert.Equal(t, 9, resp.Stock)
	assert.True(t, resp.Price.Equal(price))
	repo.AssertExpectations(t)
}

func TestProductService_UpdateWithoutStockLeavesStockAlone(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, nil, nil)
	ctx := context.Background()

	// a checkout took 2 of 3 units after the edit read the product
	repo.On("FindByID", ctx, int64(4)).Return(newTestProduct(4, "Lamp", "25", 3), nil).Once()
	repo.On("UpdateDetails", ctx, mock.MatchedBy(func(p *catalog.Product) bool { return p.Name == "Reading Lamp" })).Return(nil)
	repo.On("FindByID", ctx, int64(4)).Return(newTestProduct(4, "Reading Lamp", "25", 1), nil).Once()

	name := "Reading Lamp"
	resp, err := svc.Update(ctx, 4, UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Stock)
	repo.AssertNotCalled(t, "SetStock", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_UpdateRejectsNegativeStock(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, nil, nil)
	ctx := context.Background()

	repo.On("FindByID", ctx, int64(5)).Return(newTestProduct(5, "Lamp", "25", 3), nil)

	stock := -1
	_, err := svc.Update(ctx, 5, UpdateProductRequest{Stock: &stock})
	assert.ErrorIs(t, err, catalog.ErrInvalidStock)
	repo.AssertNotCalled(t, "UpdateDetails", mock.Anything, mock.Anything)
}

func TestProductService_List(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, nil, nil)
	ctx := context.Background()

	minPrice := 5.0
	repo.On("FindAll", ctx, mock.MatchedBy(func(f catalog.ProductFilter) bool {
		return f.Sort == catalog.SortNewest &&
			f.Page == 1 && f.PageSize == 20 &&
			f.Search == "lamp" &&
			f.MinPrice != nil && f.MinPrice.Equal(decimal.NewFromInt(5)) &&
			f.MaxPrice == nil
	})).Return([]catalog.Product{*newTestProduct(1, "Lamp", "19.99", 0)}, int64(1), nil)

	page, err := svc.List(ctx, ProductListFilter{Search: " lamp ", MinPrice: &minPrice, Sort: "bogus"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.False(t, page.Items[0].InStock)
	assert.Equal(t, 1, page.TotalPages)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses products with orders", func(t *testing.T) {
		repo := new(MockProductRepository)
		orders := new(MockOrderRepository)
		svc := NewProductService(repo, orders, nil, nil)

		repo.On("FindByID", ctx, int64(1)).Return(newTestProduct(1, "Lamp", "1", 1), nil)
		orders.On("ExistsForProduct", ctx, int64(1)).Return(true, nil)

		err := svc.Delete(ctx, 1)
		assert.ErrorIs(t, err, catalog.ErrProductInUse)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deletes unused product", func(t *testing.T) {
		repo := new(MockProductRepository)
		orders := new(MockOrderRepository)
		svc := NewProductService(repo, orders, nil, nil)

		repo.On("FindByID", ctx, int64(2)).Return(newTestProduct(2, "Desk", "1", 1), nil)
		orders.On("ExistsForProduct", ctx, int64(2)).Return(false, nil)
		repo.On("Delete", ctx, int64(2)).Return(nil)

		require.NoError(t, svc.Delete(ctx, 2))
		repo.AssertExpectations(t)
	})

	t.Run("missing product", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, new(MockOrderRepository), nil, nil)
		repo.On("FindByID", ctx, int64(3)).Return(nil, shared.ErrNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, 3), shared.ErrNotFound)
	})
}

type fakeUploader struct {
	fakeImages
}

func (fakeUploader) UploadURL(_ context.Context, key, _ string) (string, time.Time, error) {
	return "https://upload.test/" + key, time.Now().Add(time.Minute), nil
}

func TestProductService_PrepareImageUpload(t *testing.T) {
	ctx := context.Background()
	req := ImageUploadRequest{Filename: "Lamp.JPG", ContentType: "image/jpeg"}

	_, err := NewProductService(nil, nil, fakeImages{}, nil).PrepareImageUpload(ctx, req)
	assert.ErrorIs(t, err, ErrImageUploadUnavailable)

	resp, err := NewProductService(nil, nil, fakeUploader{}, nil).PrepareImageUpload(ctx, req)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Key, "products/"))
	assert.True(t, strings.HasSuffix(resp.Key, ".jpg"))
	assert.Equal(t, "https://upload.test/"+resp.Key, resp.UploadURL)
}
