// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads engine settings through viper and resolves provider
// credentials from the environment, the config file and the secrets
// directory, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/unified-search/internal/httputil"
	"github.com/pdiddy/unified-search/internal/provider"
	"github.com/pdiddy/unified-search/internal/secrets"
	"github.com/pdiddy/unified-search/pkg/types"
)

// EnvPrefix prefixes environment overrides of engine settings, e.g.
// UNIFIED_SEARCH_LOG_LEVEL or UNIFIED_SEARCH_PROVIDERS_ARXIV_TIMEOUT.
const EnvPrefix = "UNIFIED_SEARCH"

// Defaults.
const (
	DefaultLogLevel        = "info"
	DefaultSecretsDir      = ".secrets"
	DefaultDownloadTimeout = 60 * time.Second
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// providerFields are the per-provider settings that can be overridden from
// the environment.
var providerFields = []string{"timeout", "weight", "rate_limit", "base_url", "disabled"}

// Config is the loaded engine configuration.
type Config struct {
	types.EngineConfig

	// File is the config file that was read, or "" when none was found.
	File string
}

// Load reads the config file and environment. When file is empty the file
// is searched for as ./unified-search.yaml and then
// ~/.config/unified-search/config.yaml; a missing file is not an error.
// providerNames are the providers whose settings may be overridden from
// the environment.
func Load(file string, providerNames ...string) (*Config, error) {
	v := viper.New()
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("download_dir", types.DefaultSavePath)
	v.SetDefault("secrets_dir", DefaultSecretsDir)
	v.SetDefault("user_agent", httputil.DefaultUserAgent)
	v.SetDefault("download_timeout", DefaultDownloadTimeout)
	v.SetDefault("history_db", "")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("unified-search")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "unified-search"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, name := range providerNames {
		for _, field := range providerFields {
			if err := v.BindEnv("providers." + name + "." + field); err != nil {
				return nil, fmt.Errorf("binding environment: %w", err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{File: v.ConfigFileUsed()}
	if err := v.Unmarshal(&cfg.EngineConfig); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Credentials = upperKeys(cfg.Credentials)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.DownloadTimeout < 0 {
		errs = append(errs, fmt.Errorf("download_timeout must not be negative"))
	}
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := c.Providers[name]
		if s.Timeout < 0 {
			errs = append(errs, fmt.Errorf("providers.%s.timeout must not be negative", name))
		}
		if s.Weight < 0 {
			errs = append(errs, fmt.Errorf("providers.%s.weight must not be negative", name))
		}
		if s.RateLimit < 0 {
			errs = append(errs, fmt.Errorf("providers.%s.rate_limit must not be negative", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Lookup returns the credential lookup chain: process environment, then
// the credentials section of the config file, then the secrets directory.
func (c *Config) Lookup(logger *zap.Logger) (provider.Lookup, error) {
	stored, err := secrets.Load(c.SecretsDir, logger)
	if err != nil {
		return nil, err
	}
	if len(stored) > 0 && logger != nil {
		keys := make([]string, 0, len(stored))
		for k := range stored {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		logger.Debug("loaded secrets", zap.Strings("keys", keys))
	}
	return Chain(os.Getenv, mapLookup(c.Credentials), mapLookup(stored)), nil
}

// Chain returns a lookup that answers with the first non-empty value.
func Chain(sources ...provider.Lookup) provider.Lookup {
	return func(key string) string {
		for _, src := range sources {
			if v := strings.TrimSpace(src(key)); v != "" {
				return v
			}
		}
		return ""
	}
}

func mapLookup(m map[string]string) provider.Lookup {
	return func(key string) string { return m[key] }
}

// upperKeys restores credential key case; viper lowercases map keys.
func upperKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToUpper(k)] = v
	}
	return out
}
