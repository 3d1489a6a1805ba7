// Package validation wraps go-playground/validator and maps validation
// failures to the exact messages the registration forms display.
package validation

import (
	"context"
	"regexp"

	e "github.com/gartstein/eventreg/internal/registration/errors"
	"github.com/go-playground/validator/v10"
)

var (
	global *validator.Validate

	// The forms accept any "local@domain.tld" shape without whitespace;
	// stricter RFC checks are not wanted here.
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	whatsappRegex = regexp.MustCompile(`^\d{10,15}$`)
)

const (
	MsgFieldsRequired  = "All fields are required"
	MsgInvalidEmail    = "Invalid email format"
	MsgInvalidWhatsApp = "Invalid WhatsApp number format"
	MsgInvalidAge      = "Invalid age"
)

func init() {
	global = New()
}

// New builds a validator with the form-specific validations registered.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("form_email", validateEmail)
	_ = v.RegisterValidation("whatsapp", validateWhatsApp)
	return v
}

func validateEmail(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

func validateWhatsApp(fl validator.FieldLevel) bool {
	return whatsappRegex.MatchString(fl.Field().String())
}

// Validate checks the struct and returns an ErrInvalidInput-kinded error
// carrying the user-facing message for the first failure, or nil.
func Validate(ctx context.Context, structure any) error {
	return mapValidationError(global.StructCtx(ctx, structure))
}

func mapValidationError(err error) error {
	if err == nil {
		return nil
	}
	vErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(vErrors) == 0 {
		return e.InvalidInput(MsgFieldsRequired)
	}

	ve := vErrors[0]
	if ve.Tag() == "required" {
		return e.InvalidInput(MsgFieldsRequired)
	}
	switch ve.Tag() {
	case "form_email":
		return e.InvalidInput(MsgInvalidEmail)
	case "whatsapp":
		return e.InvalidInput(MsgInvalidWhatsApp)
	case "min", "max", "gte", "lte":
		if ve.Field() == "Age" {
			return e.InvalidInput(MsgInvalidAge)
		}
	}
	return e.InvalidInput(MsgFieldsRequired)
}
