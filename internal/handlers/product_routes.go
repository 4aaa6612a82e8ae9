package handlers

import (
	"fmt"
	"net/http"

	"productapi/internal/models"
	"productapi/internal/router"
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

func idRule() *validation.Chain {
	return validation.Param("id").IsInt().WithMessage("invalid ID")
}

func nameRule() *validation.Chain {
	return validation.Body("name").
		NotEmpty().WithMessage("product name must not be empty").
		MaxLen(models.NameMaxLength).WithMessage(fmt.Sprintf("product name must be at most %d characters", models.NameMaxLength))
}

func priceRule() *validation.Chain {
	return validation.Body("price").
		IsNumeric().WithMessage("invalid price value").
		NotEmpty().WithMessage("product price must not be empty").
		Gt(0).WithMessage("product price must be greater than zero")
}

func availabilityRule() *validation.Chain {
	return validation.Body("availability").IsBoolean().WithMessage("invalid availability value")
}

var (
	badRequest = router.Response{Status: http.StatusBadRequest, Description: "Bad request - invalid input data", Body: router.BodyViolations}
	notFound   = router.Response{Status: http.StatusNotFound, Description: "Product not found", Body: router.BodyError}
)

// Routes declares every product operation, its validation rules and its responses.
func (h *ProductHandler) Routes() []router.Route {
	return []router.Route{
		{
			Method:      http.MethodGet,
			Path:        "/",
			Summary:     "Get a list of products",
			Description: "Return a list of products",
			Handler:     h.HandleGetProducts,
			Responses: []router.Response{
				{Status: http.StatusOK, Description: "Successful response", Body: router.BodyProductList},
			},
		},
		{
			Method:      http.MethodGet,
			Path:        "/:id",
			Summary:     "Get a product by ID",
			Description: "Return a product based on its unique ID",
			Rules:       []*validation.Chain{idRule()},
			Handler:     h.HandleGetProductByID,
			Responses: []router.Response{
				{Status: http.StatusOK, Description: "Successful response", Body: router.BodyProduct},
				notFound,
				{Status: http.StatusBadRequest, Description: "Bad request - invalid ID", Body: router.BodyViolations},
			},
		},
		{
			Method:      http.MethodPost,
			Path:        "/",
			Summary:     "Create a new product",
			Description: "Return a new record in the database",
			Rules:       []*validation.Chain{nameRule(), priceRule()},
			Handler:     h.HandleCreateProduct,
			Responses: []router.Response{
				{Status: http.StatusCreated, Description: "Successful response", Body: router.BodyProduct},
				badRequest,
			},
		},
		{
			Method:      http.MethodPut,
			Path:        "/:id",
			Summary:     "Update a product",
			Description: "Returns the updated product",
			Rules:       []*validation.Chain{idRule(), nameRule(), priceRule(), availabilityRule()},
			Handler:     h.HandleUpdateProduct,
			Responses: []router.Response{
				{Status: http.StatusOK, Description: "Successful response", Body: router.BodyProduct},
				{Status: http.StatusBadRequest, Description: "Bad request - invalid ID or invalid input data", Body: router.BodyViolations},
				notFound,
			},
		},
		{
			Method:      http.MethodPatch,
			Path:        "/:id",
			Summary:     "Update the availability of a product",
			Description: "Returns the updated product",
			Rules:       []*validation.Chain{idRule()},
			Handler:     h.HandleUpdateAvailability,
			Responses: []router.Response{
				{Status: http.StatusOK, Description: "Successful response", Body: router.BodyProduct},
				{Status: http.StatusBadRequest, Description: "Bad request - invalid ID", Body: router.BodyViolations},
				notFound,
			},
		},
		{
			Method:      http.MethodDelete,
			Path:        "/:id",
			Summary:     "Delete a product by a given ID",
			Description: "Returns a message of confirm delete",
			Rules:       []*validation.Chain{idRule()},
			Handler:     h.HandleDeleteProduct,
			Responses: []router.Response{
				{Status: http.StatusOK, Description: "Successful response", Body: router.BodyMessage},
				{Status: http.StatusBadRequest, Description: "Bad request - invalid ID", Body: router.BodyViolations},
				notFound,
			},
		},
	}
}

// RegisterRoutes registers the product routes on r.
func (h *ProductHandler) RegisterRoutes(r fiber.Router) error {
	return router.Register(r, h.Routes())
}
