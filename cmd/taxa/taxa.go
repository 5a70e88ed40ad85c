/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package taxa provides the taxa command for nexus.
package taxa

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/nexus/document"
	"bennypowers.dev/nexus/fs"
	"bennypowers.dev/nexus/internal/logger"
	"bennypowers.dev/nexus/tools"
)

// Cmd is the taxa cobra command.
var Cmd = &cobra.Command{
	Use:   "taxa [file]",
	Short: "List, check or edit the taxa of a NEXUS file",
	Long: `List, check or edit the taxa of a NEXUS file.

Without flags, lists the taxon labels. Edits cascade through every block
that references a taxon: TAXA, CHARACTERS, DISTANCES, TREES, NOTES and
TAXSET definitions.

  --drop    remove taxa by label (repeatable)
  --rename  relabel a taxon, as old,new (repeatable)
  --check   parse every block and report inconsistencies`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().StringSlice("drop", nil, "Taxa to remove (repeatable)")
	Cmd.Flags().StringSlice("rename", nil, "Rename a taxon: old,new (repeatable)")
	Cmd.Flags().Bool("check", false, "Report inconsistencies instead of editing")
}

func run(cmd *cobra.Command, args []string) error {
	input := fs.Stdin
	if len(args) > 0 {
		input = args[0]
	}
	drop, _ := cmd.Flags().GetStringSlice("drop")
	renames, _ := cmd.Flags().GetStringSlice("rename")
	check, _ := cmd.Flags().GetBool("check")

	data, err := fs.ReadInput(fs.NewOSFileSystem(), input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	doc, err := document.Parse(string(data))
	if err != nil {
		return err
	}

	switch {
	case check:
		errs := tools.Check(doc)
		for _, e := range errs {
			logger.Warn("%v", e)
		}
		if len(errs) > 0 && viper.GetBool("strict") {
			return fmt.Errorf("%d problems found", len(errs))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d problems found\n", len(errs))
		return nil

	case len(drop) > 0 || len(renames) > 0:
		// Renames first, so a drop can reference either spelling.
		for _, pair := range renames {
			from, to, ok := strings.Cut(pair, ",")
			if !ok || from == "" || to == "" {
				return fmt.Errorf("invalid rename %q: expected old,new", pair)
			}
			if err := tools.RenameTaxon(doc, from, to); err != nil {
				return err
			}
		}
		if len(drop) > 0 {
			if err := tools.DropTaxa(doc, drop); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), doc.String())
		return nil

	default:
		labels, err := tools.TaxaLabels(doc)
		if err != nil {
			return err
		}
		for _, label := range labels {
			fmt.Fprintln(cmd.OutOrStdout(), label)
		}
		return nil
	}
}
