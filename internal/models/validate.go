package models

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	httpURLPattern  = regexp.MustCompile(`^https?://`)
	snakeKeyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Mirrors the store-side $jsonSchema patterns so a bad document is
	// rejected before the write reaches the engine.
	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return httpURLPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("snakekey", func(fl validator.FieldLevel) bool {
		return snakeKeyPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks a record against its declared shape constraints
func Validate(rec interface{}) error {
	return validate.Struct(rec)
}
