// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is matched by every *RequestValidationError via errors.Is.
var ErrInvalid = errors.New("validation failed")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError describes one rejected field.
type ValidationError struct {
	field, tag, param, message string
	value                      any
}

// Field is the JSON name of the rejected field.
func (e *ValidationError) Field() string { return e.field }

// Tag is the failed rule, e.g. "lte".
func (e *ValidationError) Tag() string { return e.tag }

// Param is the rule argument, e.g. "5" for lte=5.
func (e *ValidationError) Param() string { return e.param }

// Value is the rejected value.
func (e *ValidationError) Value() any { return e.value }

func (e *ValidationError) Error() string { return e.message }

// RequestValidationError collects every rejected field of one payload.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors lists the rejected fields in declaration order.
func (ve *RequestValidationError) Errors() []ValidationError { return ve.errors }

func (ve *RequestValidationError) Unwrap() error { return ErrInvalid }

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return ErrInvalid.Error()
	}
	parts := make([]string, len(ve.errors))
	for i := range ve.errors {
		parts[i] = ve.errors[i].message
	}
	return strings.Join(parts, "; ")
}

// APIError is the shape the HTTP layer renders for validation failures.
type APIError struct {
	Code    string
	Message string
	Details map[string]any
}

// ToAPIError renders a VALIDATION_ERROR. One failure reports its field, tag
// and value; several are listed under "fields".
func (ve *RequestValidationError) ToAPIError() *APIError {
	apiErr := &APIError{Code: "VALIDATION_ERROR", Message: "Validation failed"}

	switch len(ve.errors) {
	case 0:
	case 1:
		e := ve.errors[0]
		apiErr.Message = e.message
		apiErr.Details = map[string]any{"field": e.field, "tag": e.tag, "value": e.value}
	default:
		fields := make([]map[string]any, len(ve.errors))
		msgs := make([]string, len(ve.errors))
		for i, e := range ve.errors {
			fields[i] = map[string]any{"field": e.field, "tag": e.tag, "message": e.message}
			msgs[i] = e.field + ": " + e.message
		}
		apiErr.Message = strings.Join(msgs, "; ")
		apiErr.Details = map[string]any{"fields": fields}
	}
	return apiErr
}

// GetValidator returns the shared validator. Fields are reported by their
// JSON names, and the notblank and finite rules are registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation("notblank", notBlank)
		_ = v.RegisterValidation("finite", finite)
		validate = v
	})
	return validate
}

func notBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	return f.Kind() != reflect.String || strings.TrimSpace(f.String()) != ""
}

// finite rejects NaN and infinities, which pass gte/lte.
func finite(fl validator.FieldLevel) bool {
	f := fl.Field()
	if k := f.Kind(); k != reflect.Float32 && k != reflect.Float64 {
		return true
	}
	v := f.Float()
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidateStruct checks s against its validate tags. It returns nil when s
// is valid.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{errors: []ValidationError{{field: "unknown", tag: "unknown", message: err.Error()}}}
	}

	out := make([]ValidationError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = ValidationError{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: describe(fe),
		}
	}
	return &RequestValidationError{errors: out}
}

var (
	plainMessages = map[string]string{
		"required": "%s is required",
		"notblank": "%s must not be blank",
		"finite":   "%s must be a finite number",
		"uuid":     "%s must be a valid UUID",
	}
	paramMessages = map[string]string{
		"oneof": "%s must be one of: %s",
		"gte":   "%s must be greater than or equal to %s",
		"lte":   "%s must be less than or equal to %s",
		"gt":    "%s must be greater than %s",
		"lt":    "%s must be less than %s",
		"min":   "%s must be at least %s",
		"max":   "%s must be at most %s",
	}
)

func describe(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()
	if tmpl, ok := plainMessages[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	tmpl, ok := paramMessages[tag]
	if !ok {
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
	msg := fmt.Sprintf(tmpl, field, param)
	if (tag == "min" || tag == "max") && fe.Kind() == reflect.String {
		msg += " characters"
	}
	return msg
}
