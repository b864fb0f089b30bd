package model

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
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks the `validate` tags of form and describes the first failure
// using the JSON field name, prefixed with entity (e.g. "Session 'date' field required").
func Validate(entity string, form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fieldErr := fieldErrs[0]
	if fieldErr.Tag() == "required" {
		return fmt.Errorf("%v '%v' field required", entity, fieldErr.Field())
	}
	return fmt.Errorf("%v '%v' field is invalid (%v %v)", entity, fieldErr.Field(), fieldErr.Tag(), fieldErr.Param())
}
