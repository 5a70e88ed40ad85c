/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package characters provides the characters command for nexus.
package characters

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bennypowers.dev/nexus/document"
	"bennypowers.dev/nexus/fs"
	"bennypowers.dev/nexus/tools"
)

// Cmd is the characters cobra command.
var Cmd = &cobra.Command{
	Use:   "characters [file]",
	Short: "Inspect or recode the character matrix",
	Long: `Inspect or recode a NEXUS file's character matrix.

Without flags (or with --describe), tabulates the characters and their
distinct state counts. The recoding flags rewrite the matrix and print the
whole document:

  --binarise      one presence/absence character per observed state
  --multistatise  collapse a presence/absence matrix into one multistate
                  character
  --drop          remove characters by label or 1-based position`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().Bool("binarise", false, "Recode every state as a presence/absence character")
	Cmd.Flags().Bool("multistatise", false, "Collapse a binary matrix into one multistate character")
	Cmd.Flags().StringSlice("drop", nil, "Characters to remove (label or 1-based position, repeatable)")
	Cmd.Flags().Bool("describe", false, "Tabulate characters and state counts")
}

func run(cmd *cobra.Command, args []string) error {
	input := fs.Stdin
	if len(args) > 0 {
		input = args[0]
	}
	binarise, _ := cmd.Flags().GetBool("binarise")
	multistatise, _ := cmd.Flags().GetBool("multistatise")
	drop, _ := cmd.Flags().GetStringSlice("drop")

	data, err := fs.ReadInput(fs.NewOSFileSystem(), input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	doc, err := document.Parse(string(data))
	if err != nil {
		return err
	}

	switch {
	case len(drop) > 0:
		if err := tools.DropCharacters(doc, drop); err != nil {
			return err
		}
	case binarise:
		if err := tools.Binarise(doc); err != nil {
			return err
		}
	case multistatise:
		if err := tools.Multistatise(doc, multistateLabel(input)); err != nil {
			return err
		}
	default:
		lines, err := tools.DescribeCharacters(doc)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), doc.String())
	return nil
}

// multistateLabel names the collapsed character after the input file.
func multistateLabel(input string) string {
	if input == fs.Stdin {
		return "combined"
	}
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
