// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Command localex places local exchanges in a physical plan described in
// YAML and prints the rewritten plan.
//
//	localex optimize plan.yaml --task-concurrency=4 --props
//	localex settings --session session.yaml
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "localex",
		Short:        "place local exchanges in physical plans",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newOptimizeCmd(), newSettingsCmd(), newVersionCmd())
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	return rootCmd
}
