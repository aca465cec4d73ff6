package config

import "time"

// Config represents the complete voicegw configuration.
type Config struct {
	Service        ServiceConfig        `yaml:"service"`
	Remote         RemoteConfig         `yaml:"remote"`
	Webhook        WebhookConfig        `yaml:"webhook"`
	Storage        StorageConfig        `yaml:"storage"`
	Classification ClassificationConfig `yaml:"classification"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // json, text, or auto
}

// RemoteConfig defines how to reach the audio-intelligence API.
type RemoteConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// WebhookConfig defines the inbound callback endpoint.
type WebhookConfig struct {
	Listen      string `yaml:"listen"`
	CallbackURL string `yaml:"callback_url"`
	Secret      string `yaml:"secret"`
	MaxBodySize string `yaml:"max_body_size,omitempty"` // e.g. "1MB"
}

// Storage modes. ModeLinkOnly is used on deployments without a
// provisioned storage volume: transcript links are logged, not fetched.
const (
	ModeLocal    = "local"
	ModeLinkOnly = "link-only"
)

// StorageConfig defines where downloaded transcripts land.
type StorageConfig struct {
	Dir  string `yaml:"dir"`
	Mode string `yaml:"mode"`
}

// ClassificationConfig defines fixed parameters for classification submissions.
type ClassificationConfig struct {
	Language  string `yaml:"language"`
	RedactPII bool   `yaml:"redact_pii"`
}
