/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package version provides the version command for nexus.
package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"bennypowers.dev/nexus/internal/version"
)

// Cmd is the version cobra command that prints version and build information.
var Cmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print version information for nexus.`,
	RunE:  run,
}

func init() {
	Cmd.Flags().Bool("full", false, "Include the build commit")
}

func run(cmd *cobra.Command, args []string) error {
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("error reading full flag: %w", err)
	}
	if full {
		fmt.Fprintf(cmd.OutOrStdout(), "nexus %s\n", version.Full())
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "nexus %s\n", version.Get())
	return nil
}
