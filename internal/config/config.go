// Package config loads runtime configuration from flags, environment and an
// optional YAML file, and validates it.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable read by the application.
	EnvPrefix = "YEARINCODE"

	DefaultConcurrency = 5
	DefaultServeAddr   = ":8080"
)

// ErrMissingToken is returned when an operation needs GitHub access but no token is configured.
var ErrMissingToken = errors.New("GitHub token is required (set GITHUB_TOKEN or --token)")

var (
	configValidator = newConfigValidator()
	validLogin      = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,37}[a-zA-Z0-9])?$`)
)

// Config holds all runtime configuration.
type Config struct {
	User        string      `mapstructure:"user" validate:"omitempty,github-login"`
	Token       string      `mapstructure:"token"`
	Concurrency int         `mapstructure:"concurrency" validate:"min=1,max=32"`
	Output      string      `mapstructure:"output" validate:"omitempty,oneof=json table csv"`
	OutputFile  string      `mapstructure:"output-file"`
	ParquetFile string      `mapstructure:"parquet-file"`
	Store       StoreConfig `mapstructure:"store"`
	Serve       ServeConfig `mapstructure:"serve"`
}

// StoreConfig selects where snapshots are persisted.
type StoreConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=none sqlite mysql postgres"`
	DSN     string `mapstructure:"dsn" validate:"required_unless=Backend none"`
}

// ServeConfig configures the read API.
type ServeConfig struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
}

// New returns a viper instance wired to the config file, environment and defaults.
// An empty configFile searches for .year-in-code.yaml in the working and home directories.
func New(configFile string) *viper.Viper {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".year-in-code")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("token", EnvPrefix+"_TOKEN", "GITHUB_TOKEN")

	v.SetDefault("user", "")
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("output", "")
	v.SetDefault("output-file", "")
	v.SetDefault("parquet-file", "")
	v.SetDefault("store.backend", "none")
	v.SetDefault("store.dsn", "")
	v.SetDefault("serve.addr", DefaultServeAddr)
	return v
}

// Load reads the config file if present, unmarshals and validates.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ValidLogin reports whether login is a well-formed GitHub login.
func ValidLogin(login string) bool {
	return validLogin.MatchString(login)
}

// RequireToken reports ErrMissingToken when no GitHub token is set.
func (c *Config) RequireToken() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

func newConfigValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("github-login", func(fl validator.FieldLevel) bool {
		return validLogin.MatchString(fl.Field().String())
	}); err != nil {
		panic("failed to register github-login validation: " + err.Error())
	}
	return v
}
