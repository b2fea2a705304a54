package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalidJSON is returned by DecodeJSON for a body that is not a JSON object of the expected shape.
var ErrInvalidJSON = errors.New("Invalid JSON body")

const maxJSONBody = 1 << 20

// slugPattern accepts ASCII letters, digits, dashes and underscores.
var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON or form name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		_, err := decimal.NewFromString(fl.Field().String())
		return err == nil
	})
	return v
}

// DecodeJSON reads a JSON body into v and validates it.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrInvalidJSON
	}
	return Validate(v)
}

// Validate checks v against its validate tags and returns a readable error.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return errors.New(FormatValidationErrors(verrs))
}

// FormatValidationErrors renders errs as "field: problem; field: problem".
func FormatValidationErrors(errs validator.ValidationErrors) string {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, err.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", field, err.Param()))
		case "slug":
			messages = append(messages, fmt.Sprintf("%s must contain only letters, digits, dashes and underscores", field))
		case "decimal":
			messages = append(messages, fmt.Sprintf("%s must be a decimal number", field))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s validation", field, err.Tag()))
		}
	}
	sort.Strings(messages)
	return strings.Join(messages, "; ")
}
