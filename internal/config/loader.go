package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads, interpolates, and validates configuration from a file.
// If path is a directory, config.yaml inside it is loaded. When a
// .checksums manifest exists next to the config file, the file's BLAKE3
// hash is verified against it before the config is trusted.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	if info.IsDir() {
		absPath = filepath.Join(absPath, "config.yaml")
		if _, err := os.Stat(absPath); err != nil {
			return nil, fmt.Errorf("directory provided but config.yaml not found: %s", absPath)
		}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Integrity check runs on the raw bytes, before interpolation.
	if err := verifyConfigHash(absPath, data); err != nil {
		return nil, err
	}

	// Apply environment variable interpolation.
	interpolated := interpolateEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// DiscoverConfigPath finds the config file by checking standard locations.
// Priority order: $SENTRY_RELAY_CONFIG, ~/.config/sentry-relay, /etc/sentry-relay, ./config.yaml
func DiscoverConfigPath() (string, error) {
	if p := os.Getenv("SENTRY_RELAY_CONFIG"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		userConfig := filepath.Join(homeDir, ".config", "sentry-relay", "config.yaml")
		if _, err := os.Stat(userConfig); err == nil {
			return userConfig, nil
		}
	}

	systemConfig := "/etc/sentry-relay/config.yaml"
	if _, err := os.Stat(systemConfig); err == nil {
		return systemConfig, nil
	}

	legacyConfig := "./config.yaml"
	if _, err := os.Stat(legacyConfig); err == nil {
		return legacyConfig, nil
	}

	return "", fmt.Errorf("no config found (checked: $SENTRY_RELAY_CONFIG, ~/.config/sentry-relay, /etc/sentry-relay, ./config.yaml)")
}

// applyDefaults merges default values into config where not explicitly set.
func applyDefaults(cfg *Config) {
	defaults := Defaults()

	if cfg.Service.Name == "" {
		cfg.Service.Name = defaults.Service.Name
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = defaults.Service.LogLevel
	}
	if cfg.Service.LogFormat == "" {
		cfg.Service.LogFormat = defaults.Service.LogFormat
	}
	if cfg.Listen == "" {
		cfg.Listen = defaults.Listen
	}
	if cfg.Relay.Path == "" {
		cfg.Relay.Path = defaults.Relay.Path
	}
	if cfg.Relay.SignatureHeader == "" {
		cfg.Relay.SignatureHeader = defaults.Relay.SignatureHeader
	}
	if cfg.Relay.MaxBodySize == "" {
		cfg.Relay.MaxBodySize = defaults.Relay.MaxBodySize
	}
	if cfg.Sentry.APIBase == "" {
		cfg.Sentry.APIBase = defaults.Sentry.APIBase
	}
	if cfg.Sentry.Timeout == 0 {
		cfg.Sentry.Timeout = defaults.Sentry.Timeout
	}
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = defaults.Gateway.Timeout
	}
}

// interpolateEnv replaces ${VAR} with environment variable values.
// Undefined variables are left as-is and caught by validation.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// validate performs basic validation on the configuration.
// A relay with no secret or no token rules must not activate.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Service.LogLevel] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}

	if cfg.Listen == "" {
		return fmt.Errorf("listen is required")
	}

	if !strings.HasPrefix(cfg.Relay.Path, "/") {
		return fmt.Errorf("relay.path must begin with / (got %q)", cfg.Relay.Path)
	}

	if cfg.Relay.Secret == "" {
		return fmt.Errorf("relay.secret is required")
	}
	if err := checkResolved("relay.secret", cfg.Relay.Secret); err != nil {
		return err
	}

	if _, err := ParseMaxBodySize(cfg.Relay.MaxBodySize); err != nil {
		return fmt.Errorf("relay.max_body_size: %w", err)
	}

	if len(cfg.Relay.Tokens) == 0 {
		return fmt.Errorf("relay.tokens must contain at least one pattern/token rule")
	}
	for i, rule := range cfg.Relay.Tokens {
		if rule.Pattern == "" {
			return fmt.Errorf("relay.tokens[%d].pattern is required", i)
		}
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("relay.tokens[%d].pattern: invalid regex %q: %w", i, rule.Pattern, err)
		}
		if rule.Token == "" {
			return fmt.Errorf("relay.tokens[%d].token is required", i)
		}
		if err := checkResolved(fmt.Sprintf("relay.tokens[%d].token", i), rule.Token); err != nil {
			return err
		}
	}

	for i, pat := range cfg.Relay.Ignore {
		if _, err := regexp.Compile(pat); err != nil {
			return fmt.Errorf("relay.ignore[%d]: invalid regex %q: %w", i, pat, err)
		}
	}

	if cfg.Sentry.APIBase == "" {
		return fmt.Errorf("sentry.api_base is required")
	}

	if cfg.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url is required")
	}
	if err := checkResolved("gateway.auth_token", cfg.Gateway.AuthToken); err != nil {
		return err
	}

	return nil
}

// checkResolved rejects values still carrying ${VAR} placeholders so
// secrets are never silently replaced by their placeholder text.
func checkResolved(field, value string) error {
	if envVarPattern.MatchString(value) {
		matches := envVarPattern.FindStringSubmatch(value)
		if len(matches) > 1 {
			return fmt.Errorf("%s: environment variable ${%s} is not set", field, matches[1])
		}
		return fmt.Errorf("%s: unresolved environment variable", field)
	}
	return nil
}

// ParseMaxBodySize parses size strings like "1MB", "64KB", "2048576" to bytes.
func ParseMaxBodySize(size string) (int64, error) {
	if size == "" {
		return DefaultMaxBodySize, nil
	}

	upper := strings.ToUpper(size)
	multiplier := int64(1)

	if strings.HasSuffix(upper, "KB") {
		multiplier = 1024
		size = strings.TrimSuffix(upper, "KB")
	} else if strings.HasSuffix(upper, "MB") {
		multiplier = 1024 * 1024
		size = strings.TrimSuffix(upper, "MB")
	} else if strings.HasSuffix(upper, "GB") {
		multiplier = 1024 * 1024 * 1024
		size = strings.TrimSuffix(upper, "GB")
	}

	value, err := strconv.ParseInt(strings.TrimSpace(size), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %w", err)
	}

	if value <= 0 {
		return 0, fmt.Errorf("size must be positive")
	}

	result := value * multiplier
	if result < 0 { // overflow
		return 0, fmt.Errorf("size too large")
	}

	return result, nil
}

// DefaultMaxBodySize is the request body limit when none is configured.
const DefaultMaxBodySize = 1048576 // 1 MB
