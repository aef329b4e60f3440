// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package config provides centralized configuration management for perfdatacat.
// Precedence is flags > env > active profile > defaults, resolved with Viper,
// and Validate fails fast so a bad value never reaches the transport.
package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/elastic/perfdatacat/internal/fault"
	"github.com/elastic/perfdatacat/internal/logger"
	"github.com/elastic/perfdatacat/internal/perfdata"
)

// EnvPrefix prefixes every environment variable, e.g. PERFDATACAT_ES_URLS.
const EnvPrefix = "PERFDATACAT"

// Config holds all application configuration.
type Config struct {
	ES     ESConfig     `mapstructure:"es"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
	OTLP   OTLPConfig   `mapstructure:"otlp"`

	// Profile names the profile that was merged in, if any.
	Profile string `mapstructure:"-"`
}

// ESConfig holds Elasticsearch connection and query settings.
type ESConfig struct {
	URLs        []string      `mapstructure:"urls"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	Timeout     time.Duration `mapstructure:"timeout"`
	TLSInsecure bool          `mapstructure:"tls_insecure"`
	Writer      string        `mapstructure:"writer"` // classic or projection
	Index       string        `mapstructure:"index"`  // classic index override
	Retries     int           `mapstructure:"retries"`
}

// LogConfig selects the zap logger flavour.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// OTLPConfig holds trace export settings. An empty endpoint disables export.
type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

// Default configuration values.
const (
	DefaultESURL    = "http://localhost:9200"
	DefaultTimeout  = 10 * time.Second
	DefaultWriter   = string(perfdata.ModeClassic)
	DefaultRetries  = 1
	DefaultLogLevel = "info"
	DefaultListen   = "127.0.0.1:8080"
)

// ContextKey is used to store config in context.
type ContextKey struct{}

// FromContext retrieves Config from context.
func FromContext(ctx context.Context) (Config, bool) {
	cfg, ok := ctx.Value(ContextKey{}).(Config)
	return cfg, ok
}

// WithContext stores Config in context.
func WithContext(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, ContextKey{}, cfg)
}

// Load builds a Config using Viper with precedence: flags > env > profile > defaults.
// It binds flags from the command (and its parents) and fails fast on invalid values.
func Load(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindFlagsRecursive(v, cmd); err != nil {
		return Config{}, fault.New(fault.Configuration, "bind flags", err)
	}

	profileName, err := mergeProfile(v)
	if err != nil {
		return Config{}, err
	}

	if err := normalizeTimeout(v); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fault.New(fault.Configuration, "unmarshal config", err)
	}
	cfg.Profile = profileName
	cfg.ES.URLs = splitURLs(cfg.ES.URLs)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers default values with Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("es.urls", []string{DefaultESURL})
	v.SetDefault("es.username", "")
	v.SetDefault("es.password", "")
	v.SetDefault("es.timeout", DefaultTimeout.String())
	v.SetDefault("es.tls_insecure", false)
	v.SetDefault("es.writer", DefaultWriter)
	v.SetDefault("es.index", "")
	v.SetDefault("es.retries", DefaultRetries)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.pretty", false)

	v.SetDefault("server.listen", DefaultListen)

	v.SetDefault("otlp.endpoint", "")
	v.SetDefault("otlp.insecure", true)

	v.SetDefault("profile", "")
}

// mergeProfile layers the active profile between env and defaults. The
// profile is chosen by --profile, PERFDATACAT_PROFILE or current-profile.
func mergeProfile(v *viper.Viper) (string, error) {
	profiles, err := LoadProfiles()
	if err != nil {
		return "", fault.New(fault.Configuration, "load profiles", err)
	}

	requested := v.GetString("profile")
	p, name := profiles.GetActiveProfile(requested)
	if p == nil {
		if requested != "" {
			return "", fault.Errorf(fault.Configuration, "load profiles", "profile %q not found", requested)
		}
		return "", nil
	}

	resolved, err := p.Resolve()
	if err != nil {
		return "", fault.New(fault.Configuration, fmt.Sprintf("resolve profile %q", name), err)
	}
	if err := v.MergeConfigMap(resolved.settings()); err != nil {
		return "", fault.New(fault.Configuration, fmt.Sprintf("merge profile %q", name), err)
	}
	return name, nil
}

// normalizeTimeout accepts a bare number of seconds besides Go durations.
func normalizeTimeout(v *viper.Viper) error {
	raw := strings.TrimSpace(v.GetString("es.timeout"))
	if raw == "" {
		return nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		v.Set("es.timeout", time.Duration(secs*float64(time.Second)).String())
		return nil
	}
	if _, err := time.ParseDuration(raw); err != nil {
		return fault.Errorf(fault.Configuration, "validate config", "es.timeout %q is not a duration", raw)
	}
	return nil
}

// splitURLs flattens comma-separated entries and drops blanks.
func splitURLs(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, u := range strings.Split(entry, ",") {
			if u = strings.TrimSpace(u); u != "" {
				out = append(out, u)
			}
		}
	}
	return out
}

// bindFlagsRecursive binds flags from cmd and all parents so Viper sees them.
func bindFlagsRecursive(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}
	if err := bindFlagSet(v, cmd.Flags()); err != nil {
		return err
	}
	if err := bindFlagSet(v, cmd.PersistentFlags()); err != nil {
		return err
	}
	return bindFlagsRecursive(v, cmd.Parent())
}

// flagToKey maps flag names to nested Viper keys.
var flagToKey = map[string]string{
	"es-url":        "es.urls",
	"username":      "es.username",
	"password":      "es.password",
	"timeout":       "es.timeout",
	"tls-insecure":  "es.tls_insecure",
	"writer":        "es.writer",
	"index":         "es.index",
	"retries":       "es.retries",
	"log-level":     "log.level",
	"log-pretty":    "log.pretty",
	"listen":        "server.listen",
	"otlp":          "otlp.endpoint",
	"otlp-insecure": "otlp.insecure",
	"profile":       "profile",
}

// bindFlagSet binds flags to Viper keys using explicit mappings to nested keys.
func bindFlagSet(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key, ok := flagToKey[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("flag --%s: %w", f.Name, err)
		}
	})
	return bindErr
}

// Validate enforces correctness and fails fast on invalid configuration.
func (c Config) Validate() error {
	if len(c.ES.URLs) == 0 {
		return invalid("es.urls is required")
	}
	for _, u := range c.ES.URLs {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return invalid("es.urls: %q must start with http:// or https://", u)
		}
	}
	if c.ES.Timeout <= 0 {
		return invalid("es.timeout must be > 0")
	}
	if c.ES.Retries < 0 {
		return invalid("es.retries must be >= 0")
	}
	if _, err := perfdata.NewQueryBuilder(perfdata.WriterMode(c.ES.Writer), c.ES.Index); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fault.New(fault.Configuration, "validate config", err)
	}
	if strings.TrimSpace(c.Server.Listen) == "" {
		return invalid("server.listen is required")
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fault.Errorf(fault.Configuration, "validate config", format, args...)
}
