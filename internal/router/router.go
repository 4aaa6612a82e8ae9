// Package router composes each declared route into a fixed fiber chain:
// validation rules, then the input error gate, then the handler.
package router

import (
	"fmt"
	"strings"

	"productapi/internal/middleware"
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Body identifies the JSON shape of a response.
type Body int

const (
	BodyNone Body = iota
	BodyProduct
	BodyProductList
	BodyMessage
	BodyViolations
	BodyError
)

// Response documents one status code a route can answer with.
type Response struct {
	Status      int
	Description string
	Body        Body
}

// Route binds a method and path to its validation rules and handler.
type Route struct {
	Method      string
	Path        string
	Summary     string
	Description string
	Rules       []*validation.Chain
	Handler     fiber.Handler
	Responses   []Response
}

// Chain returns the handlers fiber runs for the route, in order.
func (r Route) Chain() []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(r.Rules)+2)
	for _, rule := range r.Rules {
		handlers = append(handlers, rule.Middleware())
	}
	return append(handlers, middleware.HandleInputErrors, r.Handler)
}

// Validate reports routes that share a method and path.
func Validate(routes []Route) error {
	seen := make(map[string]bool, len(routes))
	for _, r := range routes {
		key := strings.ToUpper(r.Method) + " " + normalize(r.Path)
		if seen[key] {
			return fmt.Errorf("duplicate route %s", key)
		}
		seen[key] = true
	}
	return nil
}

// Register mounts routes on r.
func Register(r fiber.Router, routes []Route) error {
	if err := Validate(routes); err != nil {
		return err
	}
	for _, route := range routes {
		r.Add(strings.ToUpper(route.Method), route.Path, route.Chain()...)
	}
	return nil
}

// normalize maps every parameter name to the same placeholder so that
// /:id and /:key are treated as the same path.
func normalize(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		if strings.HasPrefix(s, ":") {
			segments[i] = ":"
		}
	}
	return "/" + strings.Join(segments, "/")
}
