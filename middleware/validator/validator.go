package validator

import (
	"strings"
	"unicode/utf8"

	errorskg "github.com/sweetpotato0/ai-claims/errors"
	"github.com/sweetpotato0/ai-claims/middleware"
)

// ValidatorFunc validates input
type ValidatorFunc func(string) error

// InputValidator rejects runs whose input fails validation.
type InputValidator struct {
	validators []ValidatorFunc
}

// NewInputValidator creates an input validation middleware
func NewInputValidator(validators ...ValidatorFunc) *InputValidator {
	return &InputValidator{validators: validators}
}

// Name returns the middleware name
func (m *InputValidator) Name() string {
	return "InputValidator"
}

// Execute validates the input
func (m *InputValidator) Execute(ctx *middleware.Context, next middleware.Handler) error {
	for _, validate := range m.validators {
		if validate == nil {
			continue
		}
		if err := validate(ctx.Input); err != nil {
			return err
		}
	}
	return next(ctx)
}

// NonEmpty rejects blank input.
func NonEmpty(input string) error {
	if strings.TrimSpace(input) == "" {
		return errorskg.Invalid("query must not be empty")
	}
	return nil
}

// MaxLength rejects input longer than n characters.
func MaxLength(n int) ValidatorFunc {
	return func(input string) error {
		if l := utf8.RuneCountInString(input); l > n {
			return errorskg.Invalid("query is %d characters, limit is %d", l, n)
		}
		return nil
	}
}
