package handlers

import (
	"errors"
	"log"
	"mime/multipart"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/uploads"

	"github.com/gofiber/fiber/v2"
)

// ImageStore saves and removes uploaded product images.
type ImageStore interface {
	Save(field string, fh *multipart.FileHeader) (string, error)
	Remove(ref string) error
}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	images  ImageStore
}

// NewProductHandler creates a new ProductHandler. images may be nil, in which
// case image uploads are rejected.
func NewProductHandler(service *services.ProductService, images ImageStore) *ProductHandler {
	return &ProductHandler{
		service: service,
		images:  images,
	}
}

// RegisterRoutes registers the product routes. Reads are public; writes run
// behind the admin guards.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, admin ...fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", guarded(admin, h.HandleCreateProduct)...)
	productRoutes.Put("/:id", guarded(admin, h.HandleUpdateProduct)...)
	productRoutes.Delete("/:id", guarded(admin, h.HandleDeleteProduct)...)
}

// HandleGetProducts lists the catalog.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// bindProduct reads a product from a JSON or multipart body and stores an
// attached image. The returned reference is empty when nothing was uploaded.
func (h *ProductHandler) bindProduct(c *fiber.Ctx, product *models.Product) (string, error) {
	if err := c.BodyParser(product); err != nil {
		return "", err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		// Not multipart, or no file attached.
		return "", nil
	}
	if h.images == nil {
		return "", uploads.ErrUnsupportedImage
	}
	ref, err := h.images.Save("image", fh)
	if err != nil {
		return "", err
	}
	product.ImageURL = ref
	return ref, nil
}

func (h *ProductHandler) discardUpload(ref string) {
	if ref == "" || h.images == nil {
		return
	}
	if err := h.images.Remove(ref); err != nil {
		log.Printf("Error removing orphaned upload %s: %v", ref, err)
	}
}

func uploadError(c *fiber.Ctx, err error) error {
	if errors.Is(err, uploads.ErrUnsupportedImage) || errors.Is(err, uploads.ErrImageTooLarge) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid image",
			"error":   err.Error(),
		})
	}
	return badBody(c, err)
}

// HandleCreateProduct creates a product, optionally with an uploaded image.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	ref, err := h.bindProduct(c, &product)
	if err != nil {
		return uploadError(c, err)
	}

	if err := h.service.CreateProduct(&product); err != nil {
		h.discardUpload(ref)
		return respondError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces a product's fields and, if uploaded, its image.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	ref, err := h.bindProduct(c, &product)
	if err != nil {
		return uploadError(c, err)
	}
	product.ID = c.Params("id")

	if err := h.service.UpdateProduct(&product); err != nil {
		h.discardUpload(ref)
		return respondError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product and its image.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Params("id")); err != nil {
		return respondError(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}
