// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/elastic/perfdatacat/internal/fault"
)

func newTestCmd() *cobra.Command {
	root := &cobra.Command{Use: "perfdatacat"}
	root.PersistentFlags().StringSlice("es-url", nil, "")
	root.PersistentFlags().String("username", "", "")
	root.PersistentFlags().String("password", "", "")
	root.PersistentFlags().String("timeout", "", "")
	root.PersistentFlags().Bool("tls-insecure", false, "")
	root.PersistentFlags().String("writer", "", "")
	root.PersistentFlags().String("index", "", "")
	root.PersistentFlags().Int("retries", DefaultRetries, "")
	root.PersistentFlags().String("log-level", "", "")
	root.PersistentFlags().String("profile", "", "")

	cmd := &cobra.Command{
		Use: "serve",
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}
	cmd.Flags().String("listen", "", "")
	root.AddCommand(cmd)
	return cmd
}

// isolate points profile lookups at an empty directory and clears the env.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{
		"PERFDATACAT_ES_URLS",
		"PERFDATACAT_ES_USERNAME",
		"PERFDATACAT_ES_PASSWORD",
		"PERFDATACAT_ES_TIMEOUT",
		"PERFDATACAT_ES_WRITER",
		"PERFDATACAT_ES_INDEX",
		"PERFDATACAT_ES_RETRIES",
		"PERFDATACAT_LOG_LEVEL",
		"PERFDATACAT_SERVER_LISTEN",
		"PERFDATACAT_OTLP_ENDPOINT",
		"PERFDATACAT_PROFILE",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(newTestCmd())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(cfg.ES.URLs, []string{DefaultESURL}) {
		t.Errorf("ES.URLs = %v, want [%s]", cfg.ES.URLs, DefaultESURL)
	}
	if cfg.ES.Timeout != DefaultTimeout {
		t.Errorf("ES.Timeout = %v, want %v", cfg.ES.Timeout, DefaultTimeout)
	}
	if cfg.ES.Writer != DefaultWriter {
		t.Errorf("ES.Writer = %q, want %q", cfg.ES.Writer, DefaultWriter)
	}
	if cfg.ES.Retries != DefaultRetries {
		t.Errorf("ES.Retries = %d, want %d", cfg.ES.Retries, DefaultRetries)
	}
	if cfg.Server.Listen != DefaultListen {
		t.Errorf("Server.Listen = %q, want %q", cfg.Server.Listen, DefaultListen)
	}
	if cfg.Profile != "" {
		t.Errorf("Profile = %q, want none", cfg.Profile)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PERFDATACAT_ES_URLS", "http://es1:9200, http://es2:9200")
	t.Setenv("PERFDATACAT_ES_USERNAME", "icinga")
	t.Setenv("PERFDATACAT_ES_TIMEOUT", "7s")
	t.Setenv("PERFDATACAT_ES_WRITER", "projection")
	t.Setenv("PERFDATACAT_ES_RETRIES", "3")
	t.Setenv("PERFDATACAT_LOG_LEVEL", "debug")
	t.Setenv("PERFDATACAT_OTLP_ENDPOINT", "collector:4318")

	cfg, err := Load(newTestCmd())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(cfg.ES.URLs, []string{"http://es1:9200", "http://es2:9200"}) {
		t.Errorf("ES.URLs = %v", cfg.ES.URLs)
	}
	if cfg.ES.Username != "icinga" {
		t.Errorf("ES.Username = %q", cfg.ES.Username)
	}
	if cfg.ES.Timeout != 7*time.Second {
		t.Errorf("ES.Timeout = %v, want 7s", cfg.ES.Timeout)
	}
	if cfg.ES.Writer != "projection" {
		t.Errorf("ES.Writer = %q", cfg.ES.Writer)
	}
	if cfg.ES.Retries != 3 {
		t.Errorf("ES.Retries = %d, want 3", cfg.ES.Retries)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.OTLP.Endpoint != "collector:4318" {
		t.Errorf("OTLP.Endpoint = %q", cfg.OTLP.Endpoint)
	}
}

func TestLoad_TimeoutInSeconds(t *testing.T) {
	isolate(t)
	t.Setenv("PERFDATACAT_ES_TIMEOUT", "30")

	cfg, err := Load(newTestCmd())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ES.Timeout != 30*time.Second {
		t.Errorf("ES.Timeout = %v, want 30s", cfg.ES.Timeout)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("PERFDATACAT_ES_URLS", "http://env:9200")
	t.Setenv("PERFDATACAT_SERVER_LISTEN", ":9000")

	cmd := newTestCmd()
	_ = cmd.Root().PersistentFlags().Set("es-url", "http://flag1:9200,http://flag2:9200")
	_ = cmd.Flags().Set("listen", ":9100")

	cfg, err := Load(cmd)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(cfg.ES.URLs, []string{"http://flag1:9200", "http://flag2:9200"}) {
		t.Errorf("ES.URLs = %v, want flag values", cfg.ES.URLs)
	}
	if cfg.Server.Listen != ":9100" {
		t.Errorf("Server.Listen = %q, want flag value", cfg.Server.Listen)
	}
}

func TestLoad_ProfileLayering(t *testing.T) {
	isolate(t)
	t.Setenv("TEST_ES_PASSWORD", "s3cret")

	insecure := true
	err := SaveProfiles(&ProfileConfig{
		CurrentProfile: "prod",
		Profiles: map[string]Profile{
			"prod": {Elasticsearch: ESProfile{
				URLs:        "https://prod1:9200,https://prod2:9200",
				Username:    "monitor",
				Password:    "${TEST_ES_PASSWORD}",
				Writer:      "projection",
				TLSInsecure: &insecure,
			}},
			"lab": {Elasticsearch: ESProfile{URLs: "http://lab:9200"}},
		},
	})
	if err != nil {
		t.Fatalf("SaveProfiles: %v", err)
	}

	t.Run("current profile below env", func(t *testing.T) {
		t.Setenv("PERFDATACAT_ES_USERNAME", "override")

		cfg, err := Load(newTestCmd())
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Profile != "prod" {
			t.Errorf("Profile = %q, want prod", cfg.Profile)
		}
		if len(cfg.ES.URLs) != 2 || cfg.ES.URLs[1] != "https://prod2:9200" {
			t.Errorf("ES.URLs = %v", cfg.ES.URLs)
		}
		if cfg.ES.Username != "override" {
			t.Errorf("ES.Username = %q, want env value", cfg.ES.Username)
		}
		if cfg.ES.Password != "s3cret" {
			t.Errorf("ES.Password = %q, want resolved env ref", cfg.ES.Password)
		}
		if !cfg.ES.TLSInsecure || cfg.ES.Writer != "projection" {
			t.Errorf("ES = %+v", cfg.ES)
		}
	})

	t.Run("profile flag selects another profile", func(t *testing.T) {
		cmd := newTestCmd()
		_ = cmd.Root().PersistentFlags().Set("profile", "lab")

		cfg, err := Load(cmd)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Profile != "lab" || cfg.ES.URLs[0] != "http://lab:9200" {
			t.Errorf("cfg = %+v", cfg)
		}
		if cfg.ES.Writer != DefaultWriter {
			t.Errorf("ES.Writer = %q, want default", cfg.ES.Writer)
		}
	})

	t.Run("unknown profile fails", func(t *testing.T) {
		t.Setenv("PERFDATACAT_PROFILE", "missing")

		_, err := Load(newTestCmd())
		if fault.KindOf(err) != fault.Configuration {
			t.Errorf("error = %v, want configuration error", err)
		}
	})
}

func TestLoad_Invalid_FailsFast(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad timeout", key: "PERFDATACAT_ES_TIMEOUT", value: "abc"},
		{name: "zero timeout", key: "PERFDATACAT_ES_TIMEOUT", value: "0"},
		{name: "negative retries", key: "PERFDATACAT_ES_RETRIES", value: "-1"},
		{name: "unknown writer", key: "PERFDATACAT_ES_WRITER", value: "influx"},
		{name: "url without scheme", key: "PERFDATACAT_ES_URLS", value: "localhost:9200"},
		{name: "unknown log level", key: "PERFDATACAT_LOG_LEVEL", value: "chatty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(newTestCmd())
			if err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
			if !fault.KindOf(err).Fatal() {
				t.Errorf("error = %v, want a configuration error", err)
			}
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	if _, ok := FromContext(context.Background()); ok {
		t.Error("empty context should not carry a config")
	}
	want := Config{Server: ServerConfig{Listen: ":1"}}
	got, ok := FromContext(WithContext(context.Background(), want))
	if !ok || got.Server.Listen != ":1" {
		t.Errorf("FromContext = %+v, %v", got, ok)
	}
}
