// Package docs derives an OpenAPI 3 description from the declared routes.
package docs

import (
	"strings"

	"productapi/internal/router"
	"productapi/internal/validation"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	openAPIVersion = "3.0.2"
	productsTag    = "Products"
	productRef     = "#/components/schemas/Product"
)

// DefaultInfo describes this API.
var DefaultInfo = openapi3.Info{
	Title:       "REST API Go / Fiber",
	Version:     "1.0.0",
	Description: "API Docs for Products",
}

var productExample = map[string]any{
	"id":           1.0,
	"name":         "Curved 49 inch monitor",
	"price":        300.0,
	"availability": true,
}

// Build returns the document for routes mounted under basePath.
func Build(info openapi3.Info, basePath string, routes []router.Route) *openapi3.T {
	product := productSchema()

	doc := &openapi3.T{
		OpenAPI: openAPIVersion,
		Info:    &info,
		Tags:    openapi3.Tags{{Name: productsTag, Description: "API operations related to products"}},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{"Product": openapi3.NewSchemaRef("", product)},
		},
	}

	for _, r := range routes {
		path := openAPIPath(basePath, r.Path)
		item := doc.Paths.Value(path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(path, item)
		}
		item.SetOperation(strings.ToUpper(r.Method), operation(r, product))
	}
	return doc
}

func operation(r router.Route, product *openapi3.Schema) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.Summary = r.Summary
	op.Description = r.Description
	op.Tags = []string{productsTag}

	body := openapi3.NewObjectSchema()
	for _, chain := range r.Rules {
		switch chain.Location() {
		case validation.LocationParams:
			op.AddParameter(openapi3.NewPathParameter(chain.Field()).
				WithDescription("The ID of the product").
				WithSchema(kindSchema(chain)))
		case validation.LocationBody:
			field := kindSchema(chain)
			field.Example = productExample[chain.Field()]
			body.WithProperty(chain.Field(), field)
			body.Required = append(body.Required, chain.Field())
		}
	}
	if len(body.Properties) > 0 {
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(body),
		}
	}

	op.Responses = &openapi3.Responses{}
	for _, resp := range r.Responses {
		out := openapi3.NewResponse().WithDescription(resp.Description)
		if schema := responseSchema(resp.Body, product); schema != nil {
			out = out.WithJSONSchema(schema)
		}
		op.AddResponse(resp.Status, out)
	}
	return op
}

func kindSchema(chain *validation.Chain) *openapi3.Schema {
	var s *openapi3.Schema
	switch chain.Kind() {
	case validation.KindInteger:
		s = openapi3.NewIntegerSchema()
	case validation.KindNumber:
		s = openapi3.NewFloat64Schema()
	case validation.KindBoolean:
		s = openapi3.NewBoolSchema()
	default:
		s = openapi3.NewStringSchema()
		if n := chain.MaxLength(); n > 0 {
			s = s.WithMaxLength(int64(n))
		}
	}
	return s
}

func productRefTo(product *openapi3.Schema) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef(productRef, product)
}

func responseSchema(body router.Body, product *openapi3.Schema) *openapi3.Schema {
	switch body {
	case router.BodyProduct:
		return envelope("data", productRefTo(product))
	case router.BodyProductList:
		list := openapi3.NewArraySchema()
		list.Items = productRefTo(product)
		return envelope("data", openapi3.NewSchemaRef("", list))
	case router.BodyMessage:
		msg := openapi3.NewStringSchema()
		msg.Example = "product deleted"
		return envelope("data", openapi3.NewSchemaRef("", msg))
	case router.BodyError:
		msg := openapi3.NewStringSchema()
		msg.Example = "product not found"
		return envelope("error", openapi3.NewSchemaRef("", msg))
	case router.BodyViolations:
		violation := openapi3.NewObjectSchema().
			WithProperty("field", openapi3.NewStringSchema()).
			WithProperty("message", openapi3.NewStringSchema()).
			WithProperty("location", openapi3.NewStringSchema()).
			WithProperty("value", openapi3.NewSchema())
		list := openapi3.NewArraySchema().WithItems(violation)
		return envelope("errors", openapi3.NewSchemaRef("", list))
	default:
		return nil
	}
}

func envelope(key string, inner *openapi3.SchemaRef) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	s.Properties = openapi3.Schemas{key: inner}
	return s
}

func productSchema() *openapi3.Schema {
	property := func(s *openapi3.Schema, description, field string) *openapi3.Schema {
		s.Description = description
		s.Example = productExample[field]
		return s
	}
	return openapi3.NewObjectSchema().
		WithProperty("id", property(openapi3.NewIntegerSchema(), "The Product ID", "id")).
		WithProperty("name", property(openapi3.NewStringSchema(), "The Product name", "name")).
		WithProperty("price", property(openapi3.NewFloat64Schema(), "The Product price", "price")).
		WithProperty("availability", property(openapi3.NewBoolSchema(), "The Product availability", "availability"))
}

// openAPIPath joins basePath and a fiber path, rewriting :param as {param}.
func openAPIPath(basePath, path string) string {
	segments := []string{}
	for _, s := range strings.Split(strings.Trim(basePath, "/")+"/"+strings.Trim(path, "/"), "/") {
		if s == "" {
			continue
		}
		if strings.HasPrefix(s, ":") {
			s = "{" + s[1:] + "}"
		}
		segments = append(segments, s)
	}
	return "/" + strings.Join(segments, "/")
}
