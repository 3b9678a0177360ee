package services

import (
	"log"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ImageRemover deletes stored product images by reference.
type ImageRemover interface {
	Remove(ref string) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	images   ImageRemover
	validate *validator.Validate
}

// NewProductService creates a new ProductService. images may be nil when
// uploaded files are not managed by this process.
func NewProductService(repo repositories.ProductRepository, images ImageRemover) *ProductService {
	return &ProductService{
		repo:     repo,
		images:   images,
		validate: newValidator(),
	}
}

// NormalizeImageURL maps an image reference to the URL it is served from.
// Absolute http(s) URLs are kept, bare names live under /uploads/, and an
// empty reference yields the placeholder image.
func NormalizeImageURL(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return models.DefaultProductImage
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	case strings.HasPrefix(ref, "/uploads/"):
		return ref
	default:
		return "/uploads/" + strings.TrimLeft(ref, "/")
	}
}

func (s *ProductService) prepare(product *models.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	product.Category = strings.TrimSpace(product.Category)
	product.Description = strings.TrimSpace(product.Description)
	if err := s.validate.Struct(product); err != nil {
		return validationFailure(err)
	}
	product.Price = decimal.NewFromFloat(product.Price).Round(2).InexactFloat64()
	product.ImageURL = NormalizeImageURL(product.ImageURL)
	return nil
}

func (s *ProductService) removeImage(ref string) {
	if s.images == nil || ref == "" || ref == models.DefaultProductImage {
		return
	}
	if err := s.images.Remove(ref); err != nil {
		log.Printf("Error removing product image %s: %v", ref, err)
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, &StorageError{Op: "list products", Err: err}
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, repoError(err, "get product", "product", id)
	}
	return product, nil
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := s.prepare(product); err != nil {
		return err
	}
	product.ID = ""
	product.CreatedAt = time.Time{}
	product.UpdatedAt = time.Time{}
	if err := s.repo.Create(product); err != nil {
		return repoError(err, "create product", "product", product.ID)
	}
	return nil
}

// UpdateProduct replaces the mutable fields of an existing product.
// An empty ImageURL keeps the current image; a new one replaces and removes the old file.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	existing, err := s.repo.GetByID(product.ID)
	if err != nil {
		return repoError(err, "get product", "product", product.ID)
	}

	replacingImage := strings.TrimSpace(product.ImageURL) != ""
	if !replacingImage {
		product.ImageURL = existing.ImageURL
	}
	if err := s.prepare(product); err != nil {
		return err
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()

	if err := s.repo.Update(product); err != nil {
		return repoError(err, "update product", "product", product.ID)
	}
	if replacingImage && existing.ImageURL != product.ImageURL {
		s.removeImage(existing.ImageURL)
	}
	return nil
}

// DeleteProduct deletes a product and its uploaded image.
// Orders keep their own copy of name and price, so they are not affected.
func (s *ProductService) DeleteProduct(id string) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return repoError(err, "get product", "product", id)
	}
	if err := s.repo.Delete(id); err != nil {
		return repoError(err, "delete product", "product", id)
	}
	s.removeImage(existing.ImageURL)
	return nil
}
