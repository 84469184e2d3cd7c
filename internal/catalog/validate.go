package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks request structs against the catalog. Besides the stock
// validator tags it understands style, goal, format, clone_mode, language,
// tone and category, each accepting only values listed in the catalog.
type Validator struct {
	validate *validator.Validate
}

func NewValidator(c *Catalog) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	rules := map[string]func(string) bool{
		"style":      c.HasStyle,
		"goal":       c.HasGoal,
		"format":     c.HasFormat,
		"clone_mode": c.HasCloneMode,
		"language":   c.HasLanguage,
		"tone":       c.HasTone,
		"category":   c.HasCategory,
	}
	for tag, ok := range rules {
		ok := ok
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return ok(strings.TrimSpace(fl.Field().String()))
		})
	}
	return &Validator{validate: v}
}

// FieldError is one failed rule.
type FieldError struct {
	Field string
	Rule  string
	Value any
}

// ValidationError aggregates every failed rule of a struct.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		switch f.Rule {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", f.Field))
		case "min", "max", "oneof":
			parts = append(parts, fmt.Sprintf("%s is out of range", f.Field))
		default:
			parts = append(parts, fmt.Sprintf("%s: unknown %s %v", f.Field, f.Rule, f.Value))
		}
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// Struct validates s and returns a *ValidationError on rule failures.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Namespace(), Rule: fe.Tag(), Value: fe.Value()})
	}
	return out
}
