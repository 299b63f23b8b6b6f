// Package conf loads birdstrike settings from defaults, an optional config.yaml,
// a .env file, environment variables and command-line flags, in increasing priority.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tphakala/birdstrike/internal/errors"
	"github.com/tphakala/birdstrike/internal/logger"
)

// AppName names the config directory and the environment prefix
const AppName = "birdstrike"

// EnvPrefix is prepended to every environment variable, e.g. BIRDSTRIKE_LOG_LEVEL
const EnvPrefix = "BIRDSTRIKE"

// Settings holds the complete configuration of a run
type Settings struct {
	Debug bool // true to enable debug logging

	Log      LogSettings
	Input    InputSettings
	Output   OutputSettings
	Location LocationSettings
	Sentry   SentrySettings
}

// LogSettings controls console and file logging
type LogSettings struct {
	Level string `validate:"oneof=trace debug info warn error"` // console level
	File  string // optional JSON log file
}

// InputSettings controls how input files are read
type InputSettings struct {
	DateFormats []string `validate:"min=1,dive,required"` // layouts tried in order for Date strings
}

// OutputSettings controls the CSV deliverable and optional side outputs
type OutputSettings struct {
	DateFormat string `validate:"required"` // layout for Date cells in the CSV

	XLSX     ExportSettings
	Report   ExportSettings
	Metrics  ExportSettings
	Database DatabaseSettings
}

// ExportSettings is an optional file output
type ExportSettings struct {
	Enabled bool
	Path    string `validate:"required_if=Enabled true"`
}

// DatabaseSettings controls the merged-row database export
type DatabaseSettings struct {
	Enabled bool
	Type    string `validate:"oneof=sqlite mysql"`
	Path    string // sqlite database file
	DSN     string // mysql data source name
}

// LocationSettings is the observer location used for sun times in the report
type LocationSettings struct {
	Enabled   bool
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
	Timezone  string
}

// SentrySettings controls opt-in error telemetry
type SentrySettings struct {
	Enabled bool
	DSN     string `validate:"required_if=Enabled true"`
}

// LoadOptions tells Load where to look
type LoadOptions struct {
	ConfigFile string   // explicit config file; must exist when set
	EnvFile    string   // dotenv file; missing is fine
	SearchDirs []string // config.yaml search path when ConfigFile is empty
}

// NewViper returns a viper instance with defaults and environment bindings. Command-line
// flags are bound into it by the caller before Load.
func NewViper() (*viper.Viper, error) {
	v := viper.New()
	setDefaultConfig(v)
	if err := configureEnvironmentVariables(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Load reads configuration into a validated Settings. Environment variables found in
// opts.EnvFile are loaded first and never override variables already set.
func Load(v *viper.Viper, opts LoadOptions) (*Settings, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, configError(err, "env_file", opts.EnvFile)
	}
	if err := validateEnvValues(); err != nil {
		return nil, configError(err, "env_prefix", EnvPrefix)
	}

	if err := readConfigFile(v, opts); err != nil {
		return nil, configError(err, "config_file", opts.ConfigFile)
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, configError(fmt.Errorf("error unmarshaling config into struct: %w", err), "config_file", v.ConfigFileUsed())
	}

	settings.Log.Level = strings.ToLower(settings.Log.Level)

	if err := ValidateSettings(settings); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}

	return settings, nil
}

// readConfigFile reads the explicit file or the first config.yaml on the search path.
// Not finding one on the search path is fine: defaults apply.
func readConfigFile(v *viper.Viper, opts LoadOptions) error {
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", opts.ConfigFile, err)
		}
		GetLogger().Debug("config file loaded", logger.String("path", v.ConfigFileUsed()))
		return nil
	}

	dirs := opts.SearchDirs
	if dirs == nil {
		var err error
		if dirs, err = DefaultConfigPaths(); err != nil {
			return err
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			GetLogger().Debug("no config file found, using defaults", logger.Strings("search_dirs", dirs))
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	GetLogger().Debug("config file loaded", logger.String("path", v.ConfigFileUsed()))
	return nil
}

// DefaultConfigPaths returns the config.yaml search path: the working directory, the
// user config directory and the system directory.
func DefaultConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}
	return []string{
		".",
		filepath.Join(home, ".config", AppName),
		filepath.Join("/etc", AppName),
	}, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// LoggingConfig maps the log settings onto the logger configuration.
func (s *Settings) LoggingConfig() *logger.LoggingConfig {
	level := s.Log.Level
	if s.Debug {
		level = string(logger.LogLevelDebug)
	}

	cfg := &logger.LoggingConfig{
		DefaultLevel: level,
		Console:      &logger.ConsoleOutput{Enabled: true, Level: level},
	}
	if s.Log.File != "" {
		cfg.FileOutput = &logger.FileOutput{Enabled: true, Path: s.Log.File, Level: level}
	}
	return cfg
}

func configError(err error, key, value string) error {
	return errors.New(err).
		Component("conf").
		Category(errors.CategoryConfiguration).
		Context(key, value).
		Build()
}
