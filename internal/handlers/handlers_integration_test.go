package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"productapi/internal/app"
	"productapi/internal/config"
	"productapi/internal/database"
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basePath = "/api/products"

type productBody struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Availability bool    `json:"availability"`
}

// setupApp builds the full application over a private in-memory SQLite database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	a, err := app.New(config.Config{
		DBDriver:    database.DriverSQLite,
		DatabaseDSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()),
		BasePath:    basePath,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a.Fiber
}

func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func createProduct(t *testing.T, app *fiber.App, name string, price float64) productBody {
	t.Helper()
	resp, raw := do(t, app, http.MethodPost, basePath, map[string]any{"name": name, "price": price})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	return decodeProduct(t, raw)
}

func decodeProduct(t *testing.T, raw []byte) productBody {
	t.Helper()
	var out struct {
		Data productBody `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out.Data
}

func decodeViolations(t *testing.T, raw []byte) []validation.Violation {
	t.Helper()
	var out struct {
		Errors []validation.Violation `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out.Errors
}

func productPath(id any) string { return fmt.Sprintf("%s/%v", basePath, id) }

func TestCreateAndGetProduct(t *testing.T) {
	app := setupApp(t)

	created := createProduct(t, app, "Curved monitor", 300)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Curved monitor", created.Name)
	assert.Equal(t, 300.0, created.Price)
	assert.True(t, created.Availability)

	resp, raw := do(t, app, http.MethodGet, productPath(created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.ElementsMatch(t, []string{"id", "name", "price", "availability"}, mapKeys(envelope.Data))
	assert.Equal(t, created, decodeProduct(t, raw))
}

func TestCreateProductValidation(t *testing.T) {
	app := setupApp(t)

	cases := []struct {
		name  string
		body  any
		field string
	}{
		{"zero price", map[string]any{"name": "Desk", "price": 0}, "price"},
		{"negative price", map[string]any{"name": "Desk", "price": -10}, "price"},
		{"non numeric price", map[string]any{"name": "Desk", "price": "cheap"}, "price"},
		{"missing price", map[string]any{"name": "Desk"}, "price"},
		{"empty name", map[string]any{"name": "", "price": 10}, "name"},
		{"blank name", map[string]any{"name": "   ", "price": 10}, "name"},
		{"missing name", map[string]any{"price": 10}, "name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := do(t, app, http.MethodPost, basePath, tc.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			violations := decodeViolations(t, raw)
			require.NotEmpty(t, violations)
			for _, v := range violations {
				assert.Equal(t, tc.field, v.Field)
				assert.Equal(t, validation.LocationBody, v.Location)
			}
		})
	}

	t.Run("empty body reports every field in order", func(t *testing.T) {
		resp, raw := do(t, app, http.MethodPost, basePath, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		violations := decodeViolations(t, raw)
		require.Len(t, violations, 4)
		assert.Equal(t, "name", violations[0].Field)
		for _, v := range violations[1:] {
			assert.Equal(t, "price", v.Field)
		}
	})

	resp, raw := do(t, app, http.MethodGet, basePath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"data":[]}`, string(raw), "rejected requests must not create rows")
}

func TestCreateProductAcceptsNumericString(t *testing.T) {
	app := setupApp(t)

	resp, raw := do(t, app, http.MethodPost, basePath, `{"name":"Lamp","price":"45.5"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 45.5, decodeProduct(t, raw).Price)
}

func TestProductNameLengthIsLimited(t *testing.T) {
	app := setupApp(t)

	longest := strings.Repeat("n", 100)
	created := createProduct(t, app, longest, 5)
	assert.Equal(t, longest, created.Name)

	tooLong := strings.Repeat("n", 150)
	resp, raw := do(t, app, http.MethodPost, basePath, map[string]any{"name": tooLong, "price": 5})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	violations := decodeViolations(t, raw)
	require.Len(t, violations, 1)
	assert.Equal(t, "name", violations[0].Field)
	assert.Equal(t, "product name must be at most 100 characters", violations[0].Message)

	resp, raw = do(t, app, http.MethodPut, productPath(created.ID), map[string]any{
		"name": tooLong, "price": 5, "availability": true,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "name", decodeViolations(t, raw)[0].Field)

	resp, raw = do(t, app, http.MethodGet, productPath(created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, longest, decodeProduct(t, raw).Name)
}

func TestInvalidIDIsRejected(t *testing.T) {
	app := setupApp(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			resp, raw := do(t, app, method, productPath("not-a-number"), map[string]any{
				"name": "X", "price": 10, "availability": true,
			})
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			violations := decodeViolations(t, raw)
			require.Len(t, violations, 1)
			assert.Equal(t, "id", violations[0].Field)
			assert.Equal(t, "invalid ID", violations[0].Message)
			assert.Equal(t, validation.LocationParams, violations[0].Location)
		})
	}
}

func TestListProductsSortedByPriceDesc(t *testing.T) {
	app := setupApp(t)

	for _, price := range []float64{10, 50, 30} {
		createProduct(t, app, fmt.Sprintf("product %.0f", price), price)
	}

	resp, raw := do(t, app, http.MethodGet, basePath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data []productBody `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out.Data, 3)
	assert.Equal(t, []float64{50, 30, 10}, []float64{out.Data[0].Price, out.Data[1].Price, out.Data[2].Price})
}

func TestGetProductNotFound(t *testing.T) {
	app := setupApp(t)

	resp, raw := do(t, app, http.MethodGet, productPath(999), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"product not found"}`, string(raw))
}

func TestUpdateProduct(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, "Keyboard", 75)

	resp, raw := do(t, app, http.MethodPut, productPath(created.ID), map[string]any{
		"name": "Mechanical keyboard", "price": 90, "availability": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, productBody{ID: created.ID, Name: "Mechanical keyboard", Price: 90, Availability: false}, decodeProduct(t, raw))

	resp, raw = do(t, app, http.MethodGet, productPath(created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, productBody{ID: created.ID, Name: "Mechanical keyboard", Price: 90, Availability: false}, decodeProduct(t, raw))
}

func TestUpdateProductValidation(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, "Keyboard", 75)

	resp, raw := do(t, app, http.MethodPut, productPath(created.ID), map[string]any{
		"name": "Keyboard", "price": 80, "availability": "yes",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	violations := decodeViolations(t, raw)
	require.Len(t, violations, 1)
	assert.Equal(t, "availability", violations[0].Field)

	resp, _ = do(t, app, http.MethodPut, productPath(created.ID), map[string]any{"price": 20})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateProductNotFound(t *testing.T) {
	app := setupApp(t)

	resp, raw := do(t, app, http.MethodPut, productPath(42), map[string]any{
		"name": "Ghost", "price": 1, "availability": true,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"product not found"}`, string(raw))
}

func TestToggleAvailability(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, "Mouse", 25)
	require.True(t, created.Availability)

	resp, raw := do(t, app, http.MethodPatch, productPath(created.ID), map[string]any{"availability": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decodeProduct(t, raw).Availability, "body must be ignored")

	resp, raw = do(t, app, http.MethodPatch, productPath(created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	toggledTwice := decodeProduct(t, raw)
	assert.True(t, toggledTwice.Availability)
	assert.Equal(t, created.Name, toggledTwice.Name)
	assert.Equal(t, created.Price, toggledTwice.Price)

	resp, _ = do(t, app, http.MethodPatch, productPath(created.ID+100), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteProduct(t *testing.T) {
	app := setupApp(t)

	resp, _ := do(t, app, http.MethodDelete, productPath(7), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	created := createProduct(t, app, "Chair", 120)

	resp, raw := do(t, app, http.MethodDelete, productPath(created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"data":"product deleted"}`, string(raw))

	resp, _ = do(t, app, http.MethodGet, productPath(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownRouteUsesErrorHandler(t *testing.T) {
	app := setupApp(t)

	resp, raw := do(t, app, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(raw), `"error"`)
}

func TestDocsHealthAndMetrics(t *testing.T) {
	app := setupApp(t)

	resp, raw := do(t, app, http.MethodGet, "/docs/openapi.json", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "3.0.2", doc["openapi"])
	assert.Contains(t, doc["paths"], "/api/products/{id}")

	resp, raw = do(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"status":"healthy"`)

	resp, raw = do(t, app, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "http_requests_total")
}

func mapKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
