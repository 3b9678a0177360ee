package services_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// recordingRemover records the image references it was asked to delete.
type recordingRemover struct {
	removed []string
}

func (r *recordingRemover) Remove(ref string) error {
	r.removed = append(r.removed, ref)
	return nil
}

func notFound(resource, id string) error {
	return fmt.Errorf("%s with ID %s: %w", resource, id, repositories.ErrNotFound)
}

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expectedProducts := []models.Product{
		{ID: "1", Name: "Product A", Price: 10.0, Category: "Stationery", Stock: 100},
		{ID: "2", Name: "Product B", Price: 20.0, Category: "Stationery", Stock: 50},
	}

	mockRepo.On("GetAll").Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts()

	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)

	// Storage failures do not leak their cause
	mockRepo.On("GetAll").Return(nil, errors.New("connection refused")).Once()
	_, err = service.GetAllProducts()
	var storageErr *services.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.NotContains(t, err.Error(), "connection refused")
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expectedProduct := &models.Product{ID: "1", Name: "Product A", Price: 10.0, Category: "Stationery", Stock: 100}

	mockRepo.On("GetByID", "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID("1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	mockRepo.On("GetByID", "99").Return(nil, notFound("product", "99")).Once()
	product, err = service.GetProductByID("99")
	assert.Nil(t, product)
	var notFoundErr *services.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "99", notFoundErr.ID)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	newProduct := &models.Product{ID: "client-chosen", Name: "  Notebook ", Price: 10.456, Category: "Stationery", Stock: 20}

	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	err := service.CreateProduct(newProduct)
	require.NoError(t, err)
	assert.Empty(t, newProduct.ID, "ids are assigned by storage")
	assert.Equal(t, "Notebook", newProduct.Name)
	assert.Equal(t, 10.46, newProduct.Price)
	assert.Equal(t, models.DefaultProductImage, newProduct.ImageURL)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProductIgnoresClientTimestamps(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	stale := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	product := &models.Product{Name: "Mug", Price: 7.5, Category: "Kitchen", CreatedAt: stale, UpdatedAt: stale}

	mockRepo.On("Create", mock.MatchedBy(func(p *models.Product) bool {
		return p.CreatedAt.IsZero() && p.UpdatedAt.IsZero()
	})).Return(nil).Once()
	require.NoError(t, service.CreateProduct(product))
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProductValidation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	cases := []struct {
		name    string
		product models.Product
		field   string
	}{
		{"missing name", models.Product{Price: 1, Category: "x"}, "name"},
		{"negative price", models.Product{Name: "Pen", Price: -1, Category: "x"}, "price"},
		{"missing category", models.Product{Name: "Pen", Price: 1}, "category"},
		{"negative stock", models.Product{Name: "Pen", Price: 1, Category: "x", Stock: -3}, "stock"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.product
			err := service.CreateProduct(&p)
			var validationErr *services.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProductService_UpdateProductKeepsImage(t *testing.T) {
	mockRepo := new(MockProductRepository)
	images := &recordingRemover{}
	service := services.NewProductService(mockRepo, images)

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := &models.Product{ID: "1", Name: "Pen", Price: 1, Category: "Stationery", ImageURL: "/uploads/pen.png", CreatedAt: created}
	mockRepo.On("GetByID", "1").Return(existing, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	update := &models.Product{ID: "1", Name: "Blue Pen", Price: 1.5, Category: "Stationery"}
	require.NoError(t, service.UpdateProduct(update))

	assert.Equal(t, "/uploads/pen.png", update.ImageURL)
	assert.Equal(t, created, update.CreatedAt)
	assert.Empty(t, images.removed)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProductReplacesImage(t *testing.T) {
	mockRepo := new(MockProductRepository)
	images := &recordingRemover{}
	service := services.NewProductService(mockRepo, images)

	existing := &models.Product{ID: "1", Name: "Pen", Price: 1, Category: "Stationery", ImageURL: "/uploads/pen.png"}
	mockRepo.On("GetByID", "1").Return(existing, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	update := &models.Product{ID: "1", Name: "Pen", Price: 1, Category: "Stationery", ImageURL: "pen-v2.png"}
	require.NoError(t, service.UpdateProduct(update))

	assert.Equal(t, "/uploads/pen-v2.png", update.ImageURL)
	assert.Equal(t, []string{"/uploads/pen.png"}, images.removed)
}

func TestProductService_UpdateProductNotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("GetByID", "99").Return(nil, notFound("product", "99")).Once()

	err := service.UpdateProduct(&models.Product{ID: "99", Name: "NonExistent", Price: 1.0, Category: "x", Stock: 1})
	var notFoundErr *services.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	images := &recordingRemover{}
	service := services.NewProductService(mockRepo, images)

	mockRepo.On("GetByID", "1").Return(&models.Product{ID: "1", ImageURL: "/uploads/pen.png"}, nil).Once()
	mockRepo.On("Delete", "1").Return(nil).Once()
	require.NoError(t, service.DeleteProduct("1"))
	assert.Equal(t, []string{"/uploads/pen.png"}, images.removed)

	// The placeholder image is shared and never removed
	mockRepo.On("GetByID", "2").Return(&models.Product{ID: "2", ImageURL: models.DefaultProductImage}, nil).Once()
	mockRepo.On("Delete", "2").Return(nil).Once()
	require.NoError(t, service.DeleteProduct("2"))
	assert.Len(t, images.removed, 1)

	mockRepo.On("GetByID", "99").Return(nil, notFound("product", "99")).Once()
	err := service.DeleteProduct("99")
	var notFoundErr *services.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
	mockRepo.AssertExpectations(t)
}

func TestNormalizeImageURL(t *testing.T) {
	assert.Equal(t, models.DefaultProductImage, services.NormalizeImageURL("  "))
	assert.Equal(t, "https://cdn.example.com/a.png", services.NormalizeImageURL("https://cdn.example.com/a.png"))
	assert.Equal(t, "/uploads/a.png", services.NormalizeImageURL("/uploads/a.png"))
	assert.Equal(t, "/uploads/a.png", services.NormalizeImageURL("a.png"))
}
