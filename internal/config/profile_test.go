// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestProfileConfig_GetProfile(t *testing.T) {
	cfg := &ProfileConfig{
		Profiles: map[string]Profile{
			"test": {Elasticsearch: ESProfile{URLs: "http://test:9200"}},
		},
	}

	p, err := cfg.GetProfile("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Elasticsearch.URLs != "http://test:9200" {
		t.Errorf("URLs = %q, want %q", p.Elasticsearch.URLs, "http://test:9200")
	}

	if _, err := cfg.GetProfile("nonexistent"); err == nil {
		t.Error("expected error for non-existent profile")
	}
	if _, err := (&ProfileConfig{}).GetProfile("any"); err == nil {
		t.Error("expected error on empty config")
	}
}

func TestProfileConfig_DeleteProfile(t *testing.T) {
	cfg := &ProfileConfig{
		CurrentProfile: "test",
		Profiles: map[string]Profile{
			"test":  {Elasticsearch: ESProfile{URLs: "http://test:9200"}},
			"other": {Elasticsearch: ESProfile{URLs: "http://other:9200"}},
		},
	}

	if err := cfg.DeleteProfile("test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cfg.GetProfile("test"); err == nil {
		t.Error("expected error after delete")
	}
	if cfg.CurrentProfile != "" {
		t.Errorf("CurrentProfile = %q, want empty", cfg.CurrentProfile)
	}
	if err := cfg.DeleteProfile("nonexistent"); err == nil {
		t.Error("expected error for non-existent profile")
	}
}

func TestProfileConfig_ListProfiles(t *testing.T) {
	cfg := &ProfileConfig{}
	cfg.SetProfile("b", Profile{})
	cfg.SetProfile("c", Profile{})
	cfg.SetProfile("a", Profile{})

	if got := cfg.ListProfiles(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("ListProfiles = %v", got)
	}
}

func TestProfileConfig_GetActiveProfile(t *testing.T) {
	cfg := &ProfileConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default":  {Elasticsearch: ESProfile{URLs: "http://default:9200"}},
			"override": {Elasticsearch: ESProfile{URLs: "http://override:9200"}},
		},
	}

	p, name := cfg.GetActiveProfile("override")
	if name != "override" || p == nil || p.Elasticsearch.URLs != "http://override:9200" {
		t.Errorf("flag override: got %q, %+v", name, p)
	}

	p, name = cfg.GetActiveProfile("")
	if name != "default" || p == nil || p.Elasticsearch.URLs != "http://default:9200" {
		t.Errorf("current profile: got %q, %+v", name, p)
	}

	cfg.CurrentProfile = ""
	if p, name = cfg.GetActiveProfile(""); p != nil || name != "" {
		t.Errorf("no profile: got %q, %+v", name, p)
	}
}

func TestIsEnvRef(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"${ES_PASSWORD}", true},
		{"${A}", true},
		{"$ES_PASSWORD", false},
		{"prefix-${X}", false},
		{"plain", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsEnvRef(tt.in); got != tt.want {
			t.Errorf("IsEnvRef(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestProfile_Resolve(t *testing.T) {
	t.Setenv("TEST_ES_USER", "icinga")
	t.Setenv("TEST_ES_URLS", "http://a:9200,http://b:9200")

	p := Profile{Elasticsearch: ESProfile{
		URLs:     "${TEST_ES_URLS}",
		Username: "${TEST_ES_USER}",
		Password: "literal",
	}}
	resolved, err := p.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Elasticsearch.Username != "icinga" || resolved.Elasticsearch.URLs != "http://a:9200,http://b:9200" {
		t.Errorf("resolved = %+v", resolved.Elasticsearch)
	}
	if resolved.Elasticsearch.Password != "literal" {
		t.Errorf("Password = %q, literal values must be kept", resolved.Elasticsearch.Password)
	}
	if p.Elasticsearch.Username != "${TEST_ES_USER}" {
		t.Error("Resolve must not modify the receiver")
	}

	missing := Profile{Elasticsearch: ESProfile{Password: "${PERFDATACAT_TEST_UNSET_VAR}"}}
	if _, err := missing.Resolve(); err == nil || !strings.Contains(err.Error(), "password") {
		t.Errorf("error = %v, want undefined variable in password", err)
	}
}

func TestProfile_Settings(t *testing.T) {
	no := false
	p := Profile{
		Elasticsearch: ESProfile{URLs: "http://a:9200", Timeout: "20s", TLSInsecure: &no},
		OTLP:          OTLPProfile{Endpoint: "collector:4318"},
	}
	got := p.settings()
	es := got["es"].(map[string]interface{})
	if es["urls"] != "http://a:9200" || es["timeout"] != "20s" || es["tls_insecure"] != false {
		t.Errorf("es settings = %v", es)
	}
	if _, ok := es["username"]; ok {
		t.Error("unset fields must not be emitted")
	}
	otlp := got["otlp"].(map[string]interface{})
	if _, ok := otlp["insecure"]; ok {
		t.Error("nil insecure must not be emitted")
	}
}

func TestProfile_HasPlainTextCredentials(t *testing.T) {
	tests := []struct {
		name string
		es   ESProfile
		want bool
	}{
		{name: "none", es: ESProfile{}, want: false},
		{name: "env refs", es: ESProfile{Username: "${U}", Password: "${P}"}, want: false},
		{name: "plain user", es: ESProfile{Username: "icinga"}, want: true},
		{name: "plain password", es: ESProfile{Username: "${U}", Password: "pw"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Profile{Elasticsearch: tt.es}).HasPlainTextCredentials(); got != tt.want {
				t.Errorf("HasPlainTextCredentials = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProfileConfig_SaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	cfg := &ProfileConfig{
		CurrentProfile: "test",
		Profiles: map[string]Profile{
			"test": {
				Elasticsearch: ESProfile{URLs: "http://test:9200", Password: "${TEST_KEY}", Writer: "projection"},
				OTLP:          OTLPProfile{Endpoint: "test:4318"},
			},
		},
	}
	if err := SaveProfiles(cfg); err != nil {
		t.Fatalf("SaveProfiles error: %v", err)
	}

	path, _ := GetConfigPath()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat error: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %04o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles error: %v", err)
	}
	if loaded.CurrentProfile != "test" {
		t.Errorf("CurrentProfile = %q, want %q", loaded.CurrentProfile, "test")
	}
	if !reflect.DeepEqual(loaded.Profiles["test"], cfg.Profiles["test"]) {
		t.Errorf("profile = %+v, want %+v", loaded.Profiles["test"], cfg.Profiles["test"])
	}
}

func TestLoadProfiles_NonExistent(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadProfiles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil || len(cfg.Profiles) != 0 {
		t.Errorf("expected empty profiles, got %+v", cfg)
	}
}

func TestGetConfigPath(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(tempDir, "perfdatacat", "config.yaml"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}

func TestProfileConfig_String(t *testing.T) {
	cfg := ProfileConfig{
		CurrentProfile: "test",
		Profiles: map[string]Profile{
			"test": {Elasticsearch: ESProfile{URLs: "http://test:9200", Username: "icinga", Password: "secret"}},
			"env":  {Elasticsearch: ESProfile{Password: "${ENV_PASS}"}},
		},
	}

	str := cfg.String()
	if !strings.Contains(str, "http://test:9200") {
		t.Error("expected URL in output")
	}
	if strings.Contains(str, "secret") {
		t.Error("password should be masked")
	}
	if !strings.Contains(str, "****") || !strings.Contains(str, "${ENV_PASS}") {
		t.Errorf("unexpected masking:\n%s", str)
	}
}
