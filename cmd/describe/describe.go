/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package describe provides the describe command for nexus.
package describe

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bennypowers.dev/nexus/document"
	"bennypowers.dev/nexus/fs"
	"bennypowers.dev/nexus/tools"
)

// Cmd is the describe cobra command.
var Cmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Inventory the blocks of a NEXUS file",
	Long: `Inventory the blocks of a NEXUS file: one heading per block with taxon,
character, tree and annotation counts. Blocks that fail to parse report
the problem instead of aborting the inventory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func run(cmd *cobra.Command, args []string) error {
	input := fs.Stdin
	if len(args) > 0 {
		input = args[0]
	}
	data, err := fs.ReadInput(fs.NewOSFileSystem(), input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	doc, err := document.Parse(string(data))
	if err != nil {
		return err
	}

	caser := cases.Title(language.English)
	out := cmd.OutOrStdout()
	for _, s := range tools.Describe(doc) {
		heading := caser.String(strings.ToLower(s.Block))
		if s.Title != "" {
			heading += fmt.Sprintf(" %q", s.Title)
		}
		fmt.Fprintln(out, heading)
		for _, fact := range s.Facts {
			fmt.Fprintf(out, "  %s\n", fact)
		}
	}
	return nil
}
