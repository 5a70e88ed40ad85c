/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package split provides the split command for nexus.
package split

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bennypowers.dev/nexus/document"
	"bennypowers.dev/nexus/fs"
	"bennypowers.dev/nexus/internal/logger"
	"bennypowers.dev/nexus/tools"
)

// Cmd is the split cobra command.
var Cmd = &cobra.Command{
	Use:   "split [file]",
	Short: "Split a multi-taxa-block file into one file per taxa block",
	Long: `Split a NEXUS file holding several TAXA blocks into one file per taxa
block, each carrying the blocks linked to it. Output files are numbered
after the input: data.nex becomes data-1.nex, data-2.nex, and so on.`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("output-dir", "o", "", "Directory for the split files (default: alongside the input)")
}

func run(cmd *cobra.Command, args []string) error {
	input := fs.Stdin
	if len(args) > 0 {
		input = args[0]
	}
	outputDir, _ := cmd.Flags().GetString("output-dir")

	filesystem := fs.NewOSFileSystem()
	data, err := fs.ReadInput(filesystem, input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	doc, err := document.Parse(string(data))
	if err != nil {
		return err
	}
	parts, err := tools.Split(doc)
	if err != nil {
		return err
	}

	stem := "split"
	dir := "."
	if input != fs.Stdin {
		base := filepath.Base(input)
		stem = strings.TrimSuffix(base, filepath.Ext(base))
		dir = filepath.Dir(input)
	}
	if outputDir != "" {
		dir = outputDir
		if err := filesystem.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	for i, part := range parts {
		name := filepath.Join(dir, fmt.Sprintf("%s-%d.nex", stem, i+1))
		if err := filesystem.WriteFile(name, []byte(part.String()+"\n"), 0o644); err != nil {
			return err
		}
		logger.Info("wrote %s", name)
	}
	return nil
}
