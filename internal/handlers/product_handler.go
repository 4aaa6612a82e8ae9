package handlers

import (
	"errors"
	"strconv"

	"productapi/internal/models"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
)

const (
	msgProductNotFound = "product not found"
	msgProductDeleted  = "product deleted"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// HandleGetProducts lists every product, most expensive first.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": products})
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), productID(c))
	if err != nil {
		return respondLookupError(c, err)
	}
	return c.JSON(fiber.Map{"data": product})
}

// HandleCreateProduct creates a product from a validated {name, price} body.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	body := validation.BodyFields(c)

	product, err := h.service.CreateProduct(c.UserContext(), cast.ToString(body["name"]), cast.ToFloat64(body["price"]))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": product})
}

// HandleUpdateProduct merges the supplied fields onto an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	product, err := h.service.UpdateProduct(c.UserContext(), productID(c), productPatch(validation.BodyFields(c)))
	if err != nil {
		return respondLookupError(c, err)
	}
	return c.JSON(fiber.Map{"data": product})
}

// HandleUpdateAvailability flips the availability of a product. The request body is ignored.
func (h *ProductHandler) HandleUpdateAvailability(c *fiber.Ctx) error {
	product, err := h.service.ToggleAvailability(c.UserContext(), productID(c))
	if err != nil {
		return respondLookupError(c, err)
	}
	return c.JSON(fiber.Map{"data": product})
}

// HandleDeleteProduct permanently removes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), productID(c)); err != nil {
		return respondLookupError(c, err)
	}
	return c.JSON(fiber.Map{"data": msgProductDeleted})
}

// productID reads the already validated id path parameter.
func productID(c *fiber.Ctx) int64 {
	id, _ := strconv.ParseInt(c.Params("id"), 10, 64)
	return id
}

// productPatch keeps only the fields present in the request body.
func productPatch(body map[string]any) models.ProductPatch {
	var patch models.ProductPatch
	if v, ok := body["name"]; ok {
		name := cast.ToString(v)
		patch.Name = &name
	}
	if v, ok := body["price"]; ok {
		price := cast.ToFloat64(v)
		patch.Price = &price
	}
	if v, ok := body["availability"].(bool); ok {
		patch.Availability = &v
	}
	return patch
}

// respondLookupError answers 404 for a missing product and hands anything
// else to the app error handler.
func respondLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgProductNotFound})
	}
	return err
}
