package config

import (
	"errors"
	"fmt"
	"strings"

	claimstore "github.com/sweetpotato0/ai-claims/claims/store"
	memberstore "github.com/sweetpotato0/ai-claims/member/store"
	sessionstore "github.com/sweetpotato0/ai-claims/session/store"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for field %q: %s", e.Field, e.Message)
}

// ValidationErrors is the combined result of a failed validation.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var b strings.Builder
	b.WriteString("configuration validation failed:")
	for _, fe := range e {
		fmt.Fprintf(&b, "\n  - %s: %s", fe.Field, fe.Message)
	}
	return b.String()
}

// Validator provides configuration validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{
		errors: []ValidationError{},
	}
}

// RequireNonEmpty validates that a string field is not empty
func (v *Validator) RequireNonEmpty(field, value string) *Validator {
	if value == "" {
		v.errors = append(v.errors, ValidationError{
			Field:   field,
			Message: "value cannot be empty",
		})
	}
	return v
}

// RequirePositive validates that an integer field is greater than 0
func (v *Validator) RequirePositive(field string, value int) *Validator {
	if value <= 0 {
		v.errors = append(v.errors, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be positive, got %d", value),
		})
	}
	return v
}

// ValidateRange validates that an integer field is within a range [min, max]
func (v *Validator) ValidateRange(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.errors = append(v.errors, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be between %d and %d, got %d", min, max, value),
		})
	}
	return v
}

// ValidateFloatRange validates that a float field is within a range [min, max]
func (v *Validator) ValidateFloatRange(field string, value, min, max float64) *Validator {
	if value < min || value > max {
		v.errors = append(v.errors, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be between %.2f and %.2f, got %.2f", min, max, value),
		})
	}
	return v
}

// ValidatePort validates that a port number is valid (1-65535)
func (v *Validator) ValidatePort(field string, port int) *Validator {
	return v.ValidateRange(field, port, 1, 65535)
}

// RequireNonNegative validates that an integer field is not below 0
func (v *Validator) RequireNonNegative(field string, value int) *Validator {
	if value < 0 {
		v.errors = append(v.errors, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must not be negative, got %d", value),
		})
	}
	return v
}

// ValidateDBNumber validates that a database number is valid (0-15 for Redis)
func (v *Validator) ValidateDBNumber(field string, db int) *Validator {
	return v.ValidateRange(field, db, 0, 15)
}

// ValidateOneOf validates that a string value is one of the allowed options
func (v *Validator) ValidateOneOf(field string, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if a == value {
			return v
		}
	}
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Message: fmt.Sprintf("value must be one of %v, got %q", allowed, value),
	})
	return v
}

// Merge folds the field errors of another validation result into v.
func (v *Validator) Merge(err error) *Validator {
	var errs ValidationErrors
	if errors.As(err, &errs) {
		v.errors = append(v.errors, errs...)
	}
	return v
}

// HasErrors returns true if there are any validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Error returns the collected errors as ValidationErrors, or nil
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return ValidationErrors(append([]ValidationError{}, v.errors...))
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ValidatePostgresConfig validates PostgreSQL configuration
func ValidatePostgresConfig(cfg *claimstore.PostgresConfig) error {
	if cfg == nil {
		return ValidationErrors{{Field: "POSTGRES", Message: "configuration is missing"}}
	}
	v := NewValidator()
	v.RequireNonEmpty("POSTGRES_HOST", cfg.Host)
	v.ValidatePort("POSTGRES_PORT", cfg.Port)
	v.RequireNonEmpty("POSTGRES_USER", cfg.User)
	v.RequireNonEmpty("POSTGRES_DB", cfg.DBName)
	v.ValidateOneOf("POSTGRES_SSLMODE", cfg.SSLMode, "disable", "require", "verify-ca", "verify-full")
	return v.Error()
}

// ValidateRedisConfig validates Redis configuration
func ValidateRedisConfig(cfg *sessionstore.RedisConfig) error {
	if cfg == nil {
		return ValidationErrors{{Field: "REDIS", Message: "configuration is missing"}}
	}
	v := NewValidator()
	v.RequireNonEmpty("REDIS_ADDR", cfg.Addr)
	v.ValidateDBNumber("REDIS_DB", cfg.DB)
	v.RequireNonEmpty("REDIS_PREFIX", cfg.Prefix)
	return v.Error()
}

// ValidateMongoDBConfig validates MongoDB configuration
func ValidateMongoDBConfig(cfg *memberstore.MongoConfig) error {
	if cfg == nil {
		return ValidationErrors{{Field: "MONGODB", Message: "configuration is missing"}}
	}
	v := NewValidator()
	v.RequireNonEmpty("MONGODB_URI", cfg.URI)
	v.RequireNonEmpty("MONGODB_DB", cfg.Database)
	v.RequireNonEmpty("MONGODB_COLLECTION", cfg.Collection)
	return v.Error()
}
