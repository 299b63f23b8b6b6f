package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tphakala/birdstrike/internal/errors"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %s", strings.Join(ve.Errors, "; "))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateSettings checks struct tags first, then rules that span several fields.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validate.Struct(settings); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			ve.Errors = append(ve.Errors, formatFieldError(fe))
		}
	}

	if err := validateDatabaseSettings(&settings.Output.Database); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateLocationSettings(&settings.Location); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Settings.")
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s=%s (value %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
}

func validateDatabaseSettings(settings *DatabaseSettings) error {
	if !settings.Enabled {
		return nil
	}
	switch settings.Type {
	case "sqlite":
		if settings.Path == "" {
			return fmt.Errorf("output.database.path is required for sqlite")
		}
	case "mysql":
		if settings.DSN == "" {
			return fmt.Errorf("output.database.dsn is required for mysql")
		}
	}
	return nil
}

func validateLocationSettings(settings *LocationSettings) error {
	if !settings.Enabled {
		return nil
	}
	if settings.Timezone == "" || settings.Timezone == "Local" {
		return nil
	}
	if _, err := time.LoadLocation(settings.Timezone); err != nil {
		return fmt.Errorf("location.timezone %q is not a known time zone", settings.Timezone)
	}
	return nil
}

// TimeLocation returns the configured time zone, time.Local when unset.
func (l LocationSettings) TimeLocation() (*time.Location, error) {
	if l.Timezone == "" || l.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(l.Timezone)
}
