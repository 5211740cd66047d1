package handlers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/linesmerrill/casetrack-api/models"
)

// Validator wraps go-playground/validator with the portal's custom tags
type Validator struct {
	validator *validator.Validate
}

// NewValidator creates a Validator that reports fields by their JSON names
// and understands the said tag for South African ID numbers.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("said", func(fl validator.FieldLevel) bool {
		return models.ValidSAID(fl.Field().String())
	})
	return &Validator{validator: v}
}

// Validate validates a struct using its validate tags
func (v *Validator) Validate(i any) error {
	if err := v.validator.Struct(i); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if ok && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return &models.ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed on '%s' validation", fe.Tag()),
			}
		}
		return fmt.Errorf("%w: %v", models.ErrValidationFailed, err)
	}
	return nil
}
