package protocol

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a decoded client payload against its struct tags.
func Validate(payload any) error {
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// DecodeValid decodes env's payload into T and validates it.
func DecodeValid[T any](env Envelope) (T, error) {
	out, err := DecodePayload[T](env)
	if err != nil {
		return out, err
	}
	return out, Validate(out)
}
