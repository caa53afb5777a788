package handler

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

var (
	amountPattern   = regexp.MustCompile(`^\d+(\.\d+)?$`)
	deviceIDPattern = regexp.MustCompile(`^[A-Za-z0-9\-_]{4,40}$`)
	// Deployed account addresses are 60 to 64 hex digits; anything shorter
	// is a typo, not a wallet.
	addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{60,64}$`)
)

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		return amountPattern.MatchString(fl.Field().String())
	})

	v.RegisterValidation("device_id", func(fl validator.FieldLevel) bool {
		return deviceIDPattern.MatchString(fl.Field().String())
	})

	v.RegisterValidation("address", func(fl validator.FieldLevel) bool {
		return addressPattern.MatchString(fl.Field().String())
	})

	return v
}

func validCheck(s any) error {
	return validate.Struct(s)
}
