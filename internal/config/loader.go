// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Enforce UTC timezone.
//  2. Load .env file via godotenv (non-fatal if absent).
//  3. Use envconfig to process struct tags and populate the Config struct.
//  4. Populate BuildInfo from linker-injected variables.
//  5. Validate the struct using go-playground/validator.
//  6. Decode the Notify template set.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError is a diagnostic error type returned by LoadConfig.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LoadConfig loads and validates the process configuration. dotenvFiles are
// optional .env paths; without any, ".env" in the working directory is tried.
func LoadConfig(dotenvFiles ...string) (*Config, error) {
	time.Local = time.UTC

	// godotenv never overrides variables that are already set, which keeps
	// the OS environment the highest priority.
	_ = godotenv.Load(dotenvFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	cfg.Build = NewBuildInfo()

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	templates, err := ParseTemplates(cfg.Notify.Templates)
	if err != nil {
		return nil, err
	}
	cfg.Notify.TemplateSet = templates

	return &cfg, nil
}

// ParseTemplates decodes NOTIFY_TEMPLATES_JSON. Every entry must name at
// least one template id.
func ParseTemplates(raw string) (map[string]TemplatePair, error) {
	set := make(map[string]TemplatePair)
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return nil, &ConfigError{
			Type:    ErrTemplates,
			Message: "NOTIFY_TEMPLATES_JSON is not a scenario -> template mapping",
			Err:     err,
		}
	}

	var empty []string
	for scenario, pair := range set {
		if strings.TrimSpace(pair.Email) == "" && strings.TrimSpace(pair.Sms) == "" {
			empty = append(empty, scenario)
		}
	}
	if len(empty) > 0 {
		return nil, &ConfigError{
			Type:    ErrTemplates,
			Message: fmt.Sprintf("no template ids configured for: %s", strings.Join(empty, ", ")),
		}
	}

	return set, nil
}
