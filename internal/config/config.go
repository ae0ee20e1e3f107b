// Package config defines the process configuration of the OMC gateway.
// Configuration is loaded once at start-up and is immutable thereafter; every
// collaborator of the processing core receives the subset it needs.
//
// Values are resolved via:
//
//	OS Environment (Highest) -> Dotenv File
//
// Any missing required value or invalid format fails start-up.
package config

import (
	"time"

	"omc/internal/types"
)

// SecretString is an alias for types.SecretString.
type SecretString = types.SecretString

// Config is the top-level configuration struct.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"omc-gateway"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	IsTestMode  bool   `envconfig:"IS_TEST_MODE" default:"false"`

	Server        ServerConfig
	Auth          AuthConfig
	ZGW           ZGWConfig
	Klant         KlantConfig
	Objecten      ObjectenConfig
	ObjectTypen   ObjectTypenConfig
	Notify        NotifyConfig
	Whitelist     WhitelistConfig
	Telemetry     TelemetryConfig
	Queue         QueueConfig
	Observability ObservabilityConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo `ignored:"true"`
}

// ServerConfig holds HTTP listener configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"` // Per outbound call.
}

// AuthConfig validates the bearer tokens presented by the event source and
// the delivery provider callbacks.
type AuthConfig struct {
	JWTSecret SecretString `envconfig:"OMC_AUTH_JWT_SECRET" validate:"required,min=32"`
	Issuer    string       `envconfig:"OMC_AUTH_JWT_ISSUER" validate:"required"`
	Audience  string       `envconfig:"OMC_AUTH_JWT_AUDIENCE" validate:"required"`
}

// ZGWConfig holds the OpenZaak (Zaken, Catalogi) and Besluiten credentials.
type ZGWConfig struct {
	Domain          string       `envconfig:"ZGW_OPENZAAK_DOMAIN" validate:"required,hostname_port|hostname"`
	BesluitenDomain string       `envconfig:"ZGW_BESLUITEN_DOMAIN"` // Defaults to Domain.
	ClientID        string       `envconfig:"ZGW_AUTH_CLIENT_ID" validate:"required"`
	Secret          SecretString `envconfig:"ZGW_AUTH_SECRET" validate:"required"`
	UserID          string       `envconfig:"ZGW_AUTH_USER_ID" default:"omc"`
	UserName        string       `envconfig:"ZGW_AUTH_USER_NAME" default:"OMC"`
	Version         string       `envconfig:"ZGW_OPENZAAK_VERSION" default:"v1" validate:"oneof=v1 v2"`
	InitiatorRole   string       `envconfig:"ZGW_INITIATOR_ROLE" default:"initiator" validate:"required"`
}

// KlantConfig holds the OpenKlant credentials and API generation.
type KlantConfig struct {
	Domain  string       `envconfig:"ZGW_OPENKLANT_DOMAIN" validate:"required,hostname_port|hostname"`
	Token   SecretString `envconfig:"ZGW_OPENKLANT_TOKEN" validate:"required"`
	Version string       `envconfig:"ZGW_OPENKLANT_VERSION" default:"v1" validate:"oneof=v1 v2"`
}

// ObjectenConfig holds the Objecten credentials and the object-type
// identifiers used to dispatch object events.
type ObjectenConfig struct {
	Domain             string       `envconfig:"ZGW_OBJECTEN_DOMAIN" validate:"required,hostname_port|hostname"`
	Token              SecretString `envconfig:"ZGW_OBJECTEN_TOKEN" validate:"required"`
	TaskObjectTypes    []string     `envconfig:"ZGW_TASK_OBJECTTYPE_UUIDS"`
	MessageObjectTypes []string     `envconfig:"ZGW_MESSAGE_OBJECTTYPE_UUIDS"`
	ProductObjectTypes []string     `envconfig:"ZGW_PRODUCT_OBJECTTYPE_UUIDS"`
}

// ObjectTypenConfig holds the ObjectTypen credentials.
type ObjectTypenConfig struct {
	Domain string       `envconfig:"ZGW_OBJECTTYPEN_DOMAIN" validate:"required,hostname_port|hostname"`
	Token  SecretString `envconfig:"ZGW_OBJECTTYPEN_TOKEN" validate:"required"`
}

// TemplatePair holds the provider template ids of one scenario.
type TemplatePair struct {
	Email string `json:"email"`
	Sms   string `json:"sms"`
}

// NotifyConfig holds the delivery provider credentials and templates.
type NotifyConfig struct {
	BaseURL string       `envconfig:"NOTIFY_API_BASE_URL" default:"https://api.notifynl.nl" validate:"required,url"`
	APIKey  SecretString `envconfig:"NOTIFY_API_KEY" validate:"required,min=74"`
	// Templates is a JSON mapping: "scenario" -> {"email": "<id>", "sms": "<id>"}
	// Example: {"case_created": {"email": "8f1c...", "sms": "0a7b..."}}
	Templates string `envconfig:"NOTIFY_TEMPLATES_JSON" validate:"required,json"`

	// TemplateSet is Templates decoded by the loader.
	TemplateSet map[string]TemplatePair `ignored:"true"`
}

// WhitelistConfig lists the case-type identifications that may trigger each
// case-bound scenario. "*" allows every case type.
type WhitelistConfig struct {
	CaseCreated       []string `envconfig:"WHITELIST_CASE_CREATED" default:"*"`
	CaseStatusUpdated []string `envconfig:"WHITELIST_CASE_STATUS_UPDATED" default:"*"`
	CaseClosed        []string `envconfig:"WHITELIST_CASE_CLOSED" default:"*"`
	DecisionMade      []string `envconfig:"WHITELIST_DECISION_MADE" default:"*"`
	TaskAssigned      []string `envconfig:"WHITELIST_TASK_ASSIGNED" default:"*"`
}

// TelemetryConfig controls completion feedback.
type TelemetryConfig struct {
	Enabled   bool   `envconfig:"TELEMETRY_ENABLED" default:"true"`
	SourceOrg string `envconfig:"TELEMETRY_SOURCE_ORGANIZATION" default:"000000000"`
}

// QueueConfig enables asynchronous processing through SQS.
type QueueConfig struct {
	Region         string `envconfig:"AWS_REGION" default:"eu-west-1"`
	EventsQueueURL string `envconfig:"SQS_EVENTS" validate:"omitempty,url"`
	EndpointURL    string `envconfig:"AWS_ENDPOINT_URL"`
}

// ObservabilityConfig holds metric settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"OMC"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"false"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// UsesStubs reports whether outbound delivery must be replaced by stubs.
func (c *Config) UsesStubs() bool {
	return c.IsTestMode || c.Environment == "local"
}

// BesluitenHost returns the Besluiten domain, falling back to OpenZaak.
func (c ZGWConfig) BesluitenHost() string {
	if c.BesluitenDomain != "" {
		return c.BesluitenDomain
	}
	return c.Domain
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrTemplates indicates NOTIFY_TEMPLATES_JSON could not be decoded.
	ErrTemplates ConfigErrorType = "TEMPLATES_INVALID"
)
