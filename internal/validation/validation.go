// Package validation declares ordered, field-level rule chains that run ahead of
// a handler and collect every violation on the request.
package validation

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/spf13/cast"
)

const (
	errorsKey = "validation.errors"
	bodyKey   = "validation.body"

	defaultMessage = "Invalid value"
)

// Location is where a validated field is read from.
type Location string

const (
	LocationParams Location = "params"
	LocationBody   Location = "body"
)

// Kind is the JSON type implied by the rules of a chain.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
)

var validate = validator.New()

// Violation is a single failed rule.
type Violation struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Location Location `json:"location"`
	Value    any      `json:"value,omitempty"`
}

// Predicate reports whether a field value passes a rule. present is false when
// the field was absent from the request.
type Predicate func(value any, present bool) bool

// Rule pairs a predicate with the message reported when it fails.
type Rule struct {
	Check   Predicate
	Message string
}

// Chain is an ordered list of rules bound to one field.
type Chain struct {
	field    string
	location Location
	kind     Kind
	maxLen   int
	rules    []Rule
}

// Param starts a chain over a path parameter.
func Param(field string) *Chain {
	return &Chain{field: field, location: LocationParams, kind: KindString}
}

// Body starts a chain over a top-level field of the JSON request body.
func Body(field string) *Chain {
	return &Chain{field: field, location: LocationBody, kind: KindString}
}

// Field is the name of the validated field.
func (c *Chain) Field() string { return c.field }

// Location is where the field is read from.
func (c *Chain) Location() Location { return c.location }

// Kind is the JSON type the chain's rules expect.
func (c *Chain) Kind() Kind { return c.kind }

// MaxLength is the limit set by MaxLen, or 0 when the chain has none.
func (c *Chain) MaxLength() int { return c.maxLen }

// Rules returns the chain's rules in evaluation order.
func (c *Chain) Rules() []Rule { return c.rules }

func (c *Chain) add(check Predicate) *Chain {
	c.rules = append(c.rules, Rule{Check: check, Message: defaultMessage})
	return c
}

func (c *Chain) typed(kind Kind, check Predicate) *Chain {
	c.kind = kind
	return c.add(check)
}

// IsInt requires a base-10 integer.
func (c *Chain) IsInt() *Chain { return c.typed(KindInteger, isInt) }

// IsNumeric requires a JSON number or a numeric string.
func (c *Chain) IsNumeric() *Chain { return c.typed(KindNumber, isNumeric) }

// IsBoolean requires a JSON boolean.
func (c *Chain) IsBoolean() *Chain { return c.typed(KindBoolean, isBoolean) }

// NotEmpty requires a present value that is not blank.
func (c *Chain) NotEmpty() *Chain { return c.add(notEmpty) }

// Gt requires a value convertible to a number strictly greater than n.
func (c *Chain) Gt(n float64) *Chain {
	return c.add(func(value any, present bool) bool {
		if !present {
			return false
		}
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return false
		}
		return f > n
	})
}

// MaxLen limits the value to n characters. An absent value passes; pair it
// with NotEmpty to require the field.
func (c *Chain) MaxLen(n int) *Chain {
	c.maxLen = n
	tag := "max=" + strconv.Itoa(n)
	return c.add(func(value any, present bool) bool {
		if !present || value == nil {
			return true
		}
		s, err := cast.ToStringE(value)
		if err != nil {
			return false
		}
		return validate.Var(s, tag) == nil
	})
}

// Custom appends an arbitrary predicate.
func (c *Chain) Custom(check Predicate) *Chain { return c.add(check) }

// WithMessage sets the message of the most recently added rule.
func (c *Chain) WithMessage(msg string) *Chain {
	if n := len(c.rules); n > 0 {
		c.rules[n-1].Message = msg
	}
	return c
}

// Run evaluates every rule of the chain against the request and returns the
// violations in rule order.
func (c *Chain) Run(ctx *fiber.Ctx) []Violation {
	value, present := c.lookup(ctx)

	var violations []Violation
	for _, rule := range c.rules {
		if rule.Check(value, present) {
			continue
		}
		violations = append(violations, Violation{
			Field:    c.field,
			Message:  rule.Message,
			Location: c.location,
			Value:    value,
		})
	}
	return violations
}

// Middleware appends the chain's violations to the request and always continues.
func (c *Chain) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if violations := c.Run(ctx); len(violations) > 0 {
			ctx.Locals(errorsKey, append(Errors(ctx), violations...))
		}
		return ctx.Next()
	}
}

func (c *Chain) lookup(ctx *fiber.Ctx) (any, bool) {
	switch c.location {
	case LocationParams:
		raw := ctx.Params(c.field)
		if raw == "" {
			return nil, false
		}
		return utils.CopyString(raw), true
	default:
		value, ok := BodyFields(ctx)[c.field]
		return value, ok
	}
}

// Errors returns the violations collected so far for the request.
func Errors(ctx *fiber.Ctx) []Violation {
	violations, _ := ctx.Locals(errorsKey).([]Violation)
	return violations
}

// BodyFields returns the JSON request body as a map, decoding it once per request.
// An empty or malformed body yields an empty map.
func BodyFields(ctx *fiber.Ctx) map[string]any {
	if fields, ok := ctx.Locals(bodyKey).(map[string]any); ok {
		return fields
	}

	fields := map[string]any{}
	if body := ctx.Body(); len(body) > 0 {
		var decoded map[string]any
		if err := ctx.App().Config().JSONDecoder(body, &decoded); err == nil && decoded != nil {
			fields = decoded
		}
	}
	ctx.Locals(bodyKey, fields)
	return fields
}

func isInt(value any, present bool) bool {
	if !present {
		return false
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isNumeric(value any, present bool) bool {
	if !present {
		return false
	}
	switch v := value.(type) {
	case float64, float32, int, int64:
		return true
	case string:
		return validate.Var(v, "numeric") == nil
	default:
		return false
	}
}

func isBoolean(value any, present bool) bool {
	_, ok := value.(bool)
	return present && ok
}

func notEmpty(value any, present bool) bool {
	if !present || value == nil {
		return false
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return false
	}
	return validate.Var(strings.TrimSpace(s), "required") == nil
}
