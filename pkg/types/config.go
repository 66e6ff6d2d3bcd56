// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Requirement describes one configuration key a provider reads.
type Requirement struct {
	Required    bool   `json:"required" yaml:"required"`
	Description string `json:"description" yaml:"description"`
	ObtainFrom  string `json:"obtain_from" yaml:"obtain_from"`
	Example     string `json:"example,omitempty" yaml:"example,omitempty"`
}

// ProviderInfo reports one registered provider and its configuration state.
type ProviderInfo struct {
	Name         string                 `json:"name"`
	Category     Category               `json:"category"`
	Valid        bool                   `json:"valid"`
	Missing      []string               `json:"missing,omitempty"`
	Timeout      float64                `json:"timeout"`
	Weight       float64                `json:"weight"`
	Capabilities []string               `json:"capabilities"`
	Requirements map[string]Requirement `json:"requirements"`
}

// ProviderSettings tunes a single provider.
type ProviderSettings struct {
	// Timeout bounds one call to the provider. Zero selects the provider default.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Weight multiplies the provider's rank-derived scores. Zero selects the default.
	Weight float64 `json:"weight" yaml:"weight" mapstructure:"weight"`

	// RateLimit caps calls per second; zero disables throttling.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`

	// BaseURL overrides the upstream endpoint (used by tests and self-hosted instances).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Disabled removes the provider from the registry entirely.
	Disabled bool `json:"disabled" yaml:"disabled" mapstructure:"disabled"`
}

// EngineConfig holds settings for the whole engine.
type EngineConfig struct {
	// LogLevel is one of debug, info, warn, error (default info).
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`

	// DownloadDir is the default directory for paper downloads.
	DownloadDir string `json:"download_dir" yaml:"download_dir" mapstructure:"download_dir"`

	// SecretsDir holds one file per credential (filename is the key).
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir" mapstructure:"secrets_dir"`

	// UserAgent is sent with every upstream request.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// DownloadTimeout bounds a single paper download.
	DownloadTimeout time.Duration `json:"download_timeout" yaml:"download_timeout" mapstructure:"download_timeout"`

	// HistoryDB is the SQLite file the CLI records searches in. Empty
	// disables the search log.
	HistoryDB string `json:"history_db,omitempty" yaml:"history_db,omitempty" mapstructure:"history_db"`

	// Providers maps provider names to their settings.
	Providers map[string]ProviderSettings `json:"providers" yaml:"providers" mapstructure:"providers"`

	// Credentials supplies provider keys from the config file.
	Credentials map[string]string `json:"-" yaml:"credentials,omitempty" mapstructure:"credentials"`
}
