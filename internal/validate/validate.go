// Package validate checks inputs against the `binding` struct tags used by the
// HTTP layer, so the client rejects malformed input before any I/O.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"homebase/internal/apperr"
	"homebase/internal/calendar"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Register teaches v about the project's custom types. It is applied to the
// package's own validator and to gin's binding engine.
func Register(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		d, ok := field.Interface().(calendar.Date)
		if !ok || d.IsZero() {
			return ""
		}
		return d.String()
	}, calendar.Date{})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
}

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		instance.SetTagName("binding")
		Register(instance)
	})
	return instance
}

// Struct validates s and returns a *apperr.ValidationError describing every
// failing field, or nil.
func Struct(s any) error {
	if err := get().Struct(s); err != nil {
		return FromError(err)
	}
	return nil
}

// FromError converts validator and decoding errors into a *apperr.ValidationError.
func FromError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make([]apperr.FieldError, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, apperr.FieldError{Field: fe.Field(), Message: message(fe)})
		}
		return &apperr.ValidationError{Fields: fields}
	}
	var existing *apperr.ValidationError
	if errors.As(err, &existing) {
		return existing
	}
	return &apperr.ValidationError{Fields: []apperr.FieldError{{Field: "body", Message: err.Error()}}}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return fmt.Sprintf("is required when %s is empty", lowerFirst(fe.Param()))
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "uuid":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
