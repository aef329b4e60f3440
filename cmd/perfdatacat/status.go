// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/elastic/perfdatacat/internal/es"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the cluster answers and show node reachability",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		st, err := a.client.Status(cmd.Context())
		if st != nil {
			if werr := writeStatus(cmd.OutOrStdout(), st, statusJSON); werr != nil {
				return werr
			}
		}
		return err
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func writeStatus(w io.Writer, st *es.ClusterStatus, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	if st.Reachable {
		fmt.Fprintf(w, "Cluster:  %s (%s)\n", st.ClusterName, st.ClusterUUID)
		fmt.Fprintf(w, "Node:     %s\n", st.NodeName)
		fmt.Fprintf(w, "Version:  %s\n", st.Version)
	} else {
		fmt.Fprintf(w, "Cluster unreachable: %s\n", st.Error)
	}

	fmt.Fprintln(w, "\nHOSTS:")
	for _, h := range st.Hosts {
		state := "down"
		if h.Reachable {
			state = "up"
		}
		last := "never"
		if h.LastReachedAt != nil {
			last = h.LastReachedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "  %-40s  %-4s  last reached %s\n", h.URL, state, last)
	}
	return nil
}
