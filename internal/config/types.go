package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete sentry-relay configuration.
// It is frozen after Load; request handling only ever reads it.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Listen  string        `yaml:"listen"`
	Relay   RelayConfig   `yaml:"relay"`
	Sentry  SentryConfig  `yaml:"sentry"`
	Gateway GatewayConfig `yaml:"gateway"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// RelayConfig defines the webhook endpoint and its routing rules.
type RelayConfig struct {
	// Path is the URL prefix for the webhook; the channel name is appended
	// by the sender (e.g. POST /sentry/ops-alerts).
	Path string `yaml:"path"`

	// Secret is the shared secret used to verify Sentry-Hook-Signature.
	Secret string `yaml:"secret"`

	// SignatureHeader is the HTTP header carrying the hex HMAC-SHA256.
	SignatureHeader string `yaml:"signature_header"`

	// MaxBodySize is the maximum request body size (e.g. "1MB", "65536").
	MaxBodySize string `yaml:"max_body_size,omitempty"`

	// Tokens maps project-slug patterns to Sentry API tokens. Patterns are
	// matched from the start of the slug, first match wins, so order
	// specific patterns before catch-alls.
	Tokens []TokenRule `yaml:"tokens"`

	// Ignore lists project-slug patterns whose events are acknowledged but
	// never relayed. Checked before token resolution.
	Ignore []string `yaml:"ignore,omitempty"`
}

// TokenRule pairs a project-slug pattern with the API token used to
// enrich issues from matching projects.
type TokenRule struct {
	Pattern string `yaml:"pattern"`
	Token   string `yaml:"token"`
}

// SentryConfig defines how issue details are fetched from the Sentry API.
type SentryConfig struct {
	APIBase string   `yaml:"api_base"`
	Timeout Duration `yaml:"timeout,omitempty"`
}

// GatewayConfig defines the outbound chat-gateway transport.
type GatewayConfig struct {
	BaseURL   string   `yaml:"base_url"`
	AuthToken string   `yaml:"auth_token,omitempty"`
	Timeout   Duration `yaml:"timeout,omitempty"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "10s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like \"10s\": %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration must not be negative: %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "sentry-relay",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Listen: "127.0.0.1:8084",
		Relay: RelayConfig{
			Path:            "/sentry",
			SignatureHeader: "Sentry-Hook-Signature",
			MaxBodySize:     "1MB",
		},
		Sentry: SentryConfig{
			APIBase: "https://sentry.io/api/0",
			Timeout: Duration(10 * time.Second),
		},
		Gateway: GatewayConfig{
			Timeout: Duration(10 * time.Second),
		},
	}
}
