/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package combine provides the combine command for nexus.
package combine

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bennypowers.dev/nexus/config"
	"bennypowers.dev/nexus/document"
	"bennypowers.dev/nexus/fs"
	"bennypowers.dev/nexus/tools"
)

// Cmd is the combine cobra command.
var Cmd = &cobra.Command{
	Use:   "combine [files...]",
	Short: "Combine NEXUS files into one",
	Long: `Combine NEXUS files into one document: the taxa union, concatenated
character matrices with source-prefixed character names, and every tree.
Globs are expanded (** supported). With no arguments the file list comes
from .config/nexus.yaml.`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func run(cmd *cobra.Command, args []string) error {
	filesystem := fs.NewOSFileSystem()
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	patterns := args
	if len(patterns) == 0 {
		patterns = config.LoadOrDefault(filesystem, cwd).FilePaths()
	}
	files, err := config.ExpandPaths(filesystem, cwd, patterns)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("combine: no input files")
	}

	docs := make([]*document.Document, 0, len(files))
	for _, file := range files {
		data, err := fs.ReadInput(filesystem, file, cmd.InOrStdin())
		if err != nil {
			return err
		}
		doc, err := document.Parse(string(data))
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		docs = append(docs, doc)
	}

	out, err := tools.Combine(docs...)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.String())
	return nil
}
