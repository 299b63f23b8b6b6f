package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings
type envBinding struct {
	ConfigKey string             // viper config key
	EnvVar    string             // environment variable name
	Validate  func(string) error // optional validation function
}

// getEnvBindings lists the variables whose values are checked before use. Every other
// key is still read from BIRDSTRIKE_<KEY> through automatic lookup.
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", EnvPrefix + "_DEBUG", validateEnvBool},
		{"log.level", EnvPrefix + "_LOG_LEVEL", validateEnvLogLevel},
		{"output.database.type", EnvPrefix + "_OUTPUT_DATABASE_TYPE", validateEnvDatabaseType},
		{"location.enabled", EnvPrefix + "_LOCATION_ENABLED", validateEnvBool},
		{"location.latitude", EnvPrefix + "_LOCATION_LATITUDE", validateEnvLatitude},
		{"location.longitude", EnvPrefix + "_LOCATION_LONGITUDE", validateEnvLongitude},
		{"sentry.enabled", EnvPrefix + "_SENTRY_ENABLED", validateEnvBool},
		{"sentry.dsn", EnvPrefix + "_SENTRY_DSN", nil},
	}
}

// configureEnvironmentVariables sets up environment variable support
func configureEnvironmentVariables(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, binding := range getEnvBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			return fmt.Errorf("failed to bind %s: %w", binding.EnvVar, err)
		}
	}
	return nil
}

// validateEnvValues checks the current value of every validated variable. It runs
// after the dotenv file is loaded so both sources are covered.
func validateEnvValues() error {
	var problems []string
	for _, binding := range getEnvBindings() {
		if binding.Validate == nil {
			continue
		}
		value := os.Getenv(binding.EnvVar)
		if value == "" {
			continue
		}
		if err := binding.Validate(value); err != nil {
			problems = append(problems, fmt.Sprintf("invalid %s value '%s': %v", binding.EnvVar, value, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid boolean value: must be true or false")
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "trace", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("must be one of trace, debug, info, warn, error")
}

func validateEnvDatabaseType(value string) error {
	switch strings.TrimSpace(value) {
	case "sqlite", "mysql":
		return nil
	}
	return fmt.Errorf("must be sqlite or mysql")
}

func validateEnvLatitude(value string) error {
	return validateEnvRange(value, -90, 90)
}

func validateEnvLongitude(value string) error {
	return validateEnvRange(value, -180, 180)
}

func validateEnvRange(value string, lo, hi float64) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if f < lo || f > hi {
		return fmt.Errorf("must be between %g and %g", lo, hi)
	}
	return nil
}
