/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package trees provides the trees command for nexus.
package trees

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bennypowers.dev/nexus/document"
	"bennypowers.dev/nexus/fs"
	"bennypowers.dev/nexus/tools"
)

// Cmd is the trees cobra command.
var Cmd = &cobra.Command{
	Use:   "trees [file]",
	Short: "Inspect or edit the trees of a NEXUS file",
	Long: `Inspect or edit the trees of a NEXUS file.

Without flags (or with --describe), lists every tree with its leaf count
and rooting. The editing flags rewrite the TREES block and print the
whole document:

  --rename          relabel a tree, as old,new
  --strip-comments  remove newick comments, keeping the rooting annotation`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().String("rename", "", "Rename a tree: old,new")
	Cmd.Flags().Bool("strip-comments", false, "Remove newick comments from every tree")
	Cmd.Flags().Bool("describe", false, "List trees with leaf counts and rooting")
}

func run(cmd *cobra.Command, args []string) error {
	input := fs.Stdin
	if len(args) > 0 {
		input = args[0]
	}
	rename, _ := cmd.Flags().GetString("rename")
	strip, _ := cmd.Flags().GetBool("strip-comments")

	data, err := fs.ReadInput(fs.NewOSFileSystem(), input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	doc, err := document.Parse(string(data))
	if err != nil {
		return err
	}

	switch {
	case rename != "":
		from, to, ok := strings.Cut(rename, ",")
		if !ok || from == "" || to == "" {
			return fmt.Errorf("invalid rename %q: expected old,new", rename)
		}
		if err := tools.RenameTree(doc, from, to); err != nil {
			return err
		}
	case strip:
		if err := tools.StripTreeComments(doc); err != nil {
			return err
		}
	default:
		lines, err := tools.DescribeTrees(doc)
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
