package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func attribute(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func message(field, tag, param string) string {
	attr := attribute(field)
	switch tag {
	case "required":
		return fmt.Sprintf("The %s field is required.", attr)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", attr, param)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", attr, param)
	case "url", "http_url":
		return fmt.Sprintf("The %s field must be a valid URL.", attr)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", attr)
	default:
		return fmt.Sprintf("The %s field is invalid.", attr)
	}
}

// collect appends the failures of a validator run to verr, naming them field when the
// validator does not know the name (single variable checks).
func collect(verr *ValidationError, field string, err error) {
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add(field, message(field, "", ""))
		return
	}
	for _, fe := range fieldErrs {
		name := fe.Field()
		if name == "" {
			name = field
		}
		verr.Add(name, message(name, fe.Tag(), fe.Param()))
	}
}

// validateStruct checks the `validate` tags of s.
func validateStruct(s any) *ValidationError {
	verr := &ValidationError{}
	collect(verr, "", validate.Struct(s))
	return verr
}

// validateVar checks a single value against tag and records failures under field.
func validateVar(verr *ValidationError, field string, value any, tag string) {
	collect(verr, field, validate.Var(value, tag))
}
