package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a file.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", absPath, err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR} references with environment values.
// Unset variables expand to the empty string so validation catches them.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}

func (c *Config) applyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = "voicegw"
	}
	if c.Service.LogLevel == "" {
		c.Service.LogLevel = "info"
	}
	if c.Service.LogFormat == "" {
		c.Service.LogFormat = "auto"
	}
	if c.Remote.Timeout == 0 {
		c.Remote.Timeout = 30 * time.Second
	}
	if c.Webhook.Listen == "" {
		c.Webhook.Listen = "127.0.0.1:8084"
	}
	if c.Storage.Mode == "" {
		c.Storage.Mode = ModeLocal
	}
	if c.Classification.Language == "" {
		c.Classification.Language = "en-US"
	}
}

// applyEnvOverrides handles the deployment-mode switch. Platforms without a
// provisioned storage volume set VOICEGW_STORAGE_MODE=link-only at deploy time.
func (c *Config) applyEnvOverrides() {
	if mode := os.Getenv("VOICEGW_STORAGE_MODE"); mode != "" {
		c.Storage.Mode = mode
	}
}

// Validate checks the configuration for missing or inconsistent settings.
func (c *Config) Validate() error {
	var problems []string

	if c.Remote.BaseURL == "" {
		problems = append(problems, "remote.base_url is required")
	}
	if c.Remote.Token == "" {
		problems = append(problems, "remote.token is required (set VOICEGW_API_TOKEN)")
	}
	if c.Webhook.Secret == "" {
		problems = append(problems, "webhook.secret is required (set VOICEGW_WEBHOOK_SECRET)")
	}
	if c.Webhook.CallbackURL == "" {
		problems = append(problems, "webhook.callback_url is required")
	} else if u, err := url.Parse(c.Webhook.CallbackURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("webhook.callback_url %q is not an absolute URL", c.Webhook.CallbackURL))
	}

	switch c.Storage.Mode {
	case ModeLocal:
		if c.Storage.Dir == "" {
			problems = append(problems, "storage.dir is required in local mode")
		}
	case ModeLinkOnly:
		// No storage directory needed.
	default:
		problems = append(problems, fmt.Sprintf("storage.mode %q is not one of %q, %q", c.Storage.Mode, ModeLocal, ModeLinkOnly))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// CallbackPath returns the request path the webhook server should serve,
// derived from the configured callback URL.
func (c *Config) CallbackPath() string {
	u, err := url.Parse(c.Webhook.CallbackURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}
