package types

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("resolutiontype", func(fl validator.FieldLevel) bool {
			return ResolutionType(fl.Field().String()).Valid()
		})
	})
	return validate
}

// Validate runs the struct tag validation of the progress document and everything it carries.
func Validate(p *Progress) error {
	return validatorInstance().Struct(p)
}

func ValidateResolution(r Resolution) error {
	return validatorInstance().Struct(r)
}

func ValidateResource(r ExportableResource) error {
	return validatorInstance().Struct(r)
}
