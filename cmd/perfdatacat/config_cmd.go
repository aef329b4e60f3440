// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/elastic/perfdatacat/internal/config"
)

// Flags for set-profile command
type setProfileFlags struct {
	urls         string
	username     string
	password     string
	writer       string
	index        string
	timeout      string
	tlsInsecure  bool
	otlp         string
	otlpInsecure bool
}

var setProfile setProfileFlags

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage perfdatacat configuration and profiles",
	Long: `Manage perfdatacat configuration profiles.

A profile names a cluster (its node URLs, credentials and document layout) so
you can switch between monitoring setups without repeating flags.

Configuration is stored in ~/.config/perfdatacat/config.yaml`,
	Annotations: map[string]string{annotationNoConfig: "true"},
}

var useProfileCmd = &cobra.Command{
	Use:   "use-profile <name>",
	Short: "Set the current profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
		if _, err := cfg.GetProfile(name); err != nil {
			return fmt.Errorf("profile %q does not exist", name)
		}

		cfg.CurrentProfile = name
		if err := config.SaveProfiles(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile %q\n", name)
		return nil
	},
}

var setProfileCmd = &cobra.Command{
	Use:   "set-profile <name>",
	Short: "Create or update a profile",
	Long: `Create or update a named profile. Only the flags you pass are changed.

Examples:
  # Two-node cluster with the password read from the environment
  perfdatacat config set-profile prod \
    --es-urls https://es1:9200,https://es2:9200 \
    --es-username icinga \
    --es-password '${ICINGA_ES_PASSWORD}'

  # Lab cluster written by the projection layout
  perfdatacat config set-profile lab --es-urls http://lab:9200 --es-writer projection`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		profile, _ := cfg.GetProfile(name)
		profile = setProfile.apply(profile, cmd.Flags())
		cfg.SetProfile(name, profile)

		if err := config.SaveProfiles(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		if profile.HasPlainTextCredentials() {
			fmt.Fprintln(cmd.ErrOrStderr(), config.PlainTextCredentialWarning())
			fmt.Fprintln(cmd.ErrOrStderr())
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile %q saved\n", name)
		return nil
	},
}

var getProfilesCmd = &cobra.Command{
	Use:     "get-profiles",
	Aliases: []string{"list-profiles", "profiles"},
	Short:   "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		out := cmd.OutOrStdout()
		names := cfg.ListProfiles()
		if len(names) == 0 {
			fmt.Fprintln(out, "No profiles configured.")
			fmt.Fprintln(out, "Create one with: perfdatacat config set-profile <name> --es-urls <url>")
			return nil
		}

		fmt.Fprintln(out, "PROFILES:")
		for _, name := range names {
			marker := "  "
			if name == cfg.CurrentProfile {
				marker = "* "
			}
			profile, _ := cfg.GetProfile(name)
			fmt.Fprintf(out, "%s%-20s  %s\n", marker, name, formatProfileSummary(profile))
		}
		if cfg.CurrentProfile != "" {
			fmt.Fprintf(out, "\n* = current profile\n")
		}
		return nil
	},
}

var currentProfileCmd = &cobra.Command{
	Use:   "current-profile",
	Short: "Show the current profile name",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
		if cfg.CurrentProfile == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No profile selected (using defaults)")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.CurrentProfile)
		return nil
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete-profile <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
		if err := cfg.DeleteProfile(name); err != nil {
			return err
		}
		if err := config.SaveProfiles(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile %q deleted\n", name)
		return nil
	},
}

var viewConfigCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the full configuration (credentials masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
		if len(cfg.Profiles) == 0 && cfg.CurrentProfile == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No configuration found.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.String())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	fs := setProfileCmd.Flags()
	fs.StringVar(&setProfile.urls, "es-urls", "", "Comma-separated Elasticsearch URLs")
	fs.StringVar(&setProfile.username, "es-username", "", "Basic auth user (supports ${ENV_VAR} syntax)")
	fs.StringVar(&setProfile.password, "es-password", "", "Basic auth password (supports ${ENV_VAR} syntax)")
	fs.StringVar(&setProfile.writer, "es-writer", "", "Document layout: classic or projection")
	fs.StringVar(&setProfile.index, "es-index", "", "Index override for the classic layout")
	fs.StringVar(&setProfile.timeout, "es-timeout", "", "Per-request timeout")
	fs.BoolVar(&setProfile.tlsInsecure, "es-tls-insecure", false, "Skip TLS certificate verification")
	fs.StringVar(&setProfile.otlp, "otlp", "", "OTLP HTTP endpoint for traces")
	fs.BoolVar(&setProfile.otlpInsecure, "otlp-insecure", true, "Send traces over plain HTTP")

	configCmd.AddCommand(useProfileCmd)
	configCmd.AddCommand(setProfileCmd)
	configCmd.AddCommand(getProfilesCmd)
	configCmd.AddCommand(currentProfileCmd)
	configCmd.AddCommand(deleteProfileCmd)
	configCmd.AddCommand(viewConfigCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

// apply copies every flag the user passed onto p.
func (f setProfileFlags) apply(p config.Profile, fs *pflag.FlagSet) config.Profile {
	if fs.Changed("es-urls") {
		p.Elasticsearch.URLs = f.urls
	}
	if fs.Changed("es-username") {
		p.Elasticsearch.Username = f.username
	}
	if fs.Changed("es-password") {
		p.Elasticsearch.Password = f.password
	}
	if fs.Changed("es-writer") {
		p.Elasticsearch.Writer = f.writer
	}
	if fs.Changed("es-index") {
		p.Elasticsearch.Index = f.index
	}
	if fs.Changed("es-timeout") {
		p.Elasticsearch.Timeout = f.timeout
	}
	if fs.Changed("es-tls-insecure") {
		v := f.tlsInsecure
		p.Elasticsearch.TLSInsecure = &v
	}
	if fs.Changed("otlp") {
		p.OTLP.Endpoint = f.otlp
	}
	if fs.Changed("otlp-insecure") {
		v := f.otlpInsecure
		p.OTLP.Insecure = &v
	}
	return p
}

// formatProfileSummary returns a brief summary of a profile's settings.
func formatProfileSummary(p config.Profile) string {
	var parts []string
	if p.Elasticsearch.URLs != "" {
		parts = append(parts, "es="+p.Elasticsearch.URLs)
	}
	if p.Elasticsearch.Writer != "" {
		parts = append(parts, "writer="+p.Elasticsearch.Writer)
	}
	if p.OTLP.Endpoint != "" {
		parts = append(parts, "otlp="+p.OTLP.Endpoint)
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, ", ")
}
