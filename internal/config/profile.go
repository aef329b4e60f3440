// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProfileConfig represents the top-level configuration file structure.
// Stored at ~/.config/perfdatacat/config.yaml
type ProfileConfig struct {
	CurrentProfile string             `yaml:"current-profile,omitempty"`
	Profiles       map[string]Profile `yaml:"profiles,omitempty"`
}

// Profile represents a named set of cluster and export settings.
type Profile struct {
	Elasticsearch ESProfile   `yaml:"elasticsearch,omitempty"`
	OTLP          OTLPProfile `yaml:"otlp,omitempty"`
}

// ESProfile holds Elasticsearch connection settings for a profile.
type ESProfile struct {
	URLs        string `yaml:"urls,omitempty"` // comma-separated
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"` // Supports ${ENV_VAR} syntax
	Writer      string `yaml:"writer,omitempty"`
	Index       string `yaml:"index,omitempty"`
	Timeout     string `yaml:"timeout,omitempty"`
	TLSInsecure *bool  `yaml:"tls-insecure,omitempty"`
}

// OTLPProfile holds OTLP connection settings for a profile.
type OTLPProfile struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Insecure *bool  `yaml:"insecure,omitempty"` // Pointer to distinguish unset from false
}

// Default configuration directory and file names.
const (
	ConfigDirName  = "perfdatacat"
	ConfigFileName = "config.yaml"
)

// GetConfigDir returns the path to the perfdatacat config directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/perfdatacat
func GetConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDirName), nil
}

// GetConfigPath returns the full path to the config file.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// LoadProfiles loads the profile configuration from disk.
// Returns an empty ProfileConfig if the file doesn't exist.
func LoadProfiles() (*ProfileConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &ProfileConfig{Profiles: make(map[string]Profile)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	checkFilePermissions(path)

	var cfg ProfileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Profile)
	}
	return &cfg, nil
}

// SaveProfiles writes the profile configuration to disk with mode 0600.
func SaveProfiles(cfg *ProfileConfig) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// GetProfile returns the named profile, or an error if it doesn't exist.
func (c *ProfileConfig) GetProfile(name string) (Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found", name)
	}
	return p, nil
}

// SetProfile creates or updates a named profile.
func (c *ProfileConfig) SetProfile(name string, profile Profile) {
	if c.Profiles == nil {
		c.Profiles = make(map[string]Profile)
	}
	c.Profiles[name] = profile
}

// DeleteProfile removes a named profile and clears it as current.
func (c *ProfileConfig) DeleteProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	delete(c.Profiles, name)
	if c.CurrentProfile == name {
		c.CurrentProfile = ""
	}
	return nil
}

// ListProfiles returns the profile names in sorted order.
func (c *ProfileConfig) ListProfiles() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetActiveProfile returns the currently active profile.
// If profileFlag is set, uses that. Otherwise uses current-profile from config.
// Returns nil profile and empty name if no profile is active.
func (c *ProfileConfig) GetActiveProfile(profileFlag string) (*Profile, string) {
	name := profileFlag
	if name == "" {
		name = c.CurrentProfile
	}
	if name == "" {
		return nil, ""
	}
	p, err := c.GetProfile(name)
	if err != nil {
		return nil, ""
	}
	return &p, name
}

// envVarPattern matches ${VAR_NAME} patterns
var envVarPattern = regexp.MustCompile(`^\$\{([^}]+)\}$`)

// IsEnvRef returns true if the string is an environment variable reference.
func IsEnvRef(s string) bool {
	return envVarPattern.MatchString(s)
}

func expandEnvVar(s string) (string, bool) {
	matches := envVarPattern.FindStringSubmatch(s)
	if len(matches) != 2 {
		return s, true
	}
	return os.LookupEnv(matches[1])
}

// Resolve returns a copy of the profile with all ${ENV_VAR} references expanded.
// Returns an error if any referenced environment variable is undefined.
func (p Profile) Resolve() (Profile, error) {
	resolved := p
	for _, f := range []struct {
		name string
		val  *string
	}{
		{"urls", &resolved.Elasticsearch.URLs},
		{"username", &resolved.Elasticsearch.Username},
		{"password", &resolved.Elasticsearch.Password},
	} {
		if !IsEnvRef(*f.val) {
			continue
		}
		val, ok := expandEnvVar(*f.val)
		if !ok {
			return Profile{}, fmt.Errorf("undefined environment variable in %s: %s", f.name, *f.val)
		}
		*f.val = val
	}
	return resolved, nil
}

// settings renders the set fields as a nested Viper config map.
func (p Profile) settings() map[string]interface{} {
	es := map[string]interface{}{}
	put := func(m map[string]interface{}, key, val string) {
		if val != "" {
			m[key] = val
		}
	}
	put(es, "urls", p.Elasticsearch.URLs)
	put(es, "username", p.Elasticsearch.Username)
	put(es, "password", p.Elasticsearch.Password)
	put(es, "writer", p.Elasticsearch.Writer)
	put(es, "index", p.Elasticsearch.Index)
	put(es, "timeout", p.Elasticsearch.Timeout)
	if p.Elasticsearch.TLSInsecure != nil {
		es["tls_insecure"] = *p.Elasticsearch.TLSInsecure
	}

	otlp := map[string]interface{}{}
	put(otlp, "endpoint", p.OTLP.Endpoint)
	if p.OTLP.Insecure != nil {
		otlp["insecure"] = *p.OTLP.Insecure
	}

	return map[string]interface{}{"es": es, "otlp": otlp}
}

// HasPlainTextCredentials returns true if the profile contains credentials
// that are not environment variable references.
func (p Profile) HasPlainTextCredentials() bool {
	if p.Elasticsearch.Username != "" && !IsEnvRef(p.Elasticsearch.Username) {
		return true
	}
	return p.Elasticsearch.Password != "" && !IsEnvRef(p.Elasticsearch.Password)
}

// checkFilePermissions warns to stderr if the config file has insecure permissions.
func checkFilePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		fmt.Fprintf(os.Stderr, "Warning: %s has permissions %04o, should be 0600\n", path, mode)
	}
}

// MaskCredentials returns a copy of the profile with the password masked.
// Environment variable references are shown as-is.
func (p Profile) MaskCredentials() Profile {
	masked := p
	if p.Elasticsearch.Password != "" && !IsEnvRef(p.Elasticsearch.Password) {
		masked.Elasticsearch.Password = "****"
	}
	return masked
}

// String returns a YAML representation of the config with credentials masked.
func (c ProfileConfig) String() string {
	masked := ProfileConfig{
		CurrentProfile: c.CurrentProfile,
		Profiles:       make(map[string]Profile, len(c.Profiles)),
	}
	for name, profile := range c.Profiles {
		masked.Profiles[name] = profile.MaskCredentials()
	}
	data, err := yaml.Marshal(masked)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return strings.TrimSpace(string(data))
}

// PlainTextCredentialWarning is printed when a profile stores a literal password.
func PlainTextCredentialWarning() string {
	return "Warning: Storing credentials in plain text. Consider using environment\n" +
		"variable references (e.g., password: ${ES_PASSWORD}) instead."
}
