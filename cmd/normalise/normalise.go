/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package normalise provides the normalise command for nexus.
package normalise

import (
	"fmt"

	"github.com/spf13/cobra"

	"bennypowers.dev/nexus/document"
	"bennypowers.dev/nexus/fs"
	"bennypowers.dev/nexus/tools"
)

// Cmd is the normalise cobra command.
var Cmd = &cobra.Command{
	Use:     "normalise [file]",
	Aliases: []string{"normalize"},
	Short:   "Rewrite a NEXUS file in normal form",
	Long: `Rewrite a NEXUS file in normal form: character matrices with labels and
without interleaving, transposition or equate symbols; distance matrices as
full triangles; trees with translated leaf labels. Normalising a normalised
file changes nothing.`,
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
	out, err := tools.Normalise(doc)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.String())
	return nil
}
