package config

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads the import run configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadServe reads the sandbox subcommand configuration. It does not require
// the remote tenant settings.
func LoadServe() (*ServeConfig, error) {
	cfg := &ServeConfig{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
// Every unset required variable is reported, not only the first.
func loadStruct(v reflect.Value) error {
	var missing []string
	if err := populate(v, &missing); err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func populate(v reflect.Value, missing *[]string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := populate(fieldVal, missing); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		// Primary name first, then the alternate
		value := os.Getenv(envName)
		if alt := field.Tag.Get("envAlt"); value == "" && alt != "" {
			value = os.Getenv(alt)
		}

		if value == "" {
			if field.Tag.Get("required") == "true" {
				*missing = append(*missing, envName)
				continue
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// API validation
	if c.API.BaseURL == "" {
		errs = append(errs, "BASE_URL is required")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Sprintf("BASE_URL (%q) must be an absolute http or https URL", c.API.BaseURL))
	}
	if c.API.ClientID == "" {
		errs = append(errs, "CLIENT_ID is required")
	}
	if c.API.ClientSecret == "" {
		errs = append(errs, "CLIENT_SECRET is required")
	}
	if c.API.SubmitDelay < 0 {
		errs = append(errs, "SUBMIT_DELAY must be non-negative")
	}
	if c.API.HTTPTimeout < 0 {
		errs = append(errs, "HTTP_TIMEOUT must be non-negative")
	}

	// Source validation
	if strings.TrimSpace(c.Source.FileName) == "" {
		errs = append(errs, "SOURCE_FILE_NAME must not be blank")
	}

	errs = append(errs, c.Logging.validate()...)

	return joinErrors(errs)
}

// Validate checks that the sandbox configuration is valid.
func (c *ServeConfig) Validate() error {
	var errs []string

	if c.Sandbox.Port <= 0 || c.Sandbox.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SANDBOX_PORT (%d) must be 1-65535", c.Sandbox.Port))
	}
	if c.Sandbox.ClientID == "" || c.Sandbox.ClientSecret == "" {
		errs = append(errs, "SANDBOX_CLIENT_ID and SANDBOX_CLIENT_SECRET must not be empty")
	}
	if c.Sandbox.TokenTTL <= 0 {
		errs = append(errs, "SANDBOX_TOKEN_TTL must be positive")
	}
	if c.Sandbox.RateLimit < 0 {
		errs = append(errs, "SANDBOX_RATE_LIMIT must be non-negative")
	}
	if c.Sandbox.RateLimit > 0 && c.Sandbox.RateWindow <= 0 {
		errs = append(errs, "SANDBOX_RATE_WINDOW must be positive when rate limiting is enabled")
	}
	if c.Sandbox.ShutdownTimeout <= 0 {
		errs = append(errs, "SANDBOX_SHUTDOWN_TIMEOUT must be positive")
	}

	errs = append(errs, c.Logging.validate()...)

	return joinErrors(errs)
}

func (c *LoggingConfig) validate() []string {
	var errs []string

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Format))
	}

	if c.Dir == "" {
		errs = append(errs, "LOG_DIR must not be empty")
	}
	if c.MaxAge <= 0 {
		errs = append(errs, "LOG_MAX_AGE must be positive")
	}
	if c.MaxCount < 0 {
		errs = append(errs, "LOG_MAX_COUNT must be non-negative")
	}

	return errs
}

func joinErrors(errs []string) error {
	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a safe string representation of the config for logging.
// The client secret is masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("API: {BaseURL: %q, ClientID: %q, ClientSecret: [MASKED], SubmitDelay: %s, HTTPTimeout: %s}, ",
		c.API.BaseURL, c.API.ClientID, c.API.SubmitDelay, c.API.HTTPTimeout))
	b.WriteString(fmt.Sprintf("Source: {FileName: %q, CollectErrors: %v}, ",
		c.Source.FileName, c.Source.CollectErrors))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q, Dir: %q}",
		c.Logging.Level, c.Logging.Format, c.Logging.Dir))
	b.WriteString("}")
	return b.String()
}
