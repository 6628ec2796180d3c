// Package validator provides unified parameter validation for OpenPBRL.
// It uses validator.v10 and is shared by the API layer and application
// services to check request DTOs and hyperparameter bundles.
package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/openpbrl/openpbrl/pkg/errors"
)

// Validator wraps go-playground validator with JSON-aware field names
type Validator struct {
	validate *validator.Validate
}

// New creates a new validator instance
func New() *Validator {
	v := validator.New()

	// Report field names from json tags so API errors match the wire format
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates a struct by its validate tags
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.WrapInternalError(err, errors.CodeInternalError, "validation failed")
	}

	appErr := errors.NewValidationError(errors.CodeInvalidParameter, "invalid parameters")
	for _, fe := range verrs {
		appErr = appErr.WithDetails(fe.Field(), fmt.Sprintf("failed %q constraint", fe.Tag()))
	}
	return appErr
}

// Var validates a single value against a tag expression
func (v *Validator) Var(field interface{}, tag string) error {
	if err := v.validate.Var(field, tag); err != nil {
		return errors.NewValidationError(errors.CodeInvalidParameter,
			fmt.Sprintf("value failed %q constraint", tag)).WithCause(err)
	}
	return nil
}
