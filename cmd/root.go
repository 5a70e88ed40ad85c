/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package cmd provides CLI commands for nexus.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/nexus/cmd/characters"
	"bennypowers.dev/nexus/cmd/combine"
	"bennypowers.dev/nexus/cmd/describe"
	"bennypowers.dev/nexus/cmd/normalise"
	"bennypowers.dev/nexus/cmd/split"
	"bennypowers.dev/nexus/cmd/taxa"
	"bennypowers.dev/nexus/cmd/trees"
	"bennypowers.dev/nexus/cmd/version"
	"bennypowers.dev/nexus/config"
	"bennypowers.dev/nexus/fs"
)

var rootCmd = &cobra.Command{
	Use:   "nexus",
	Short: "Parse and work with NEXUS phylogenetic files",
	Long: `nexus reads, validates and rewrites NEXUS phylogenetic files: byte-exact
round-tripping, matrix normalisation, document combination and taxon surgery.
Input is a file path, or - for stdin.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg := config.LoadOrDefault(fs.NewOSFileSystem(), cwd)
		viper.SetDefault("strict", cfg.Strict)
		return viper.BindPFlag("strict", cmd.Root().PersistentFlags().Lookup("strict"))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("strict", false, "Treat recoverable data problems as errors")

	rootCmd.AddCommand(normalise.Cmd)
	rootCmd.AddCommand(combine.Cmd)
	rootCmd.AddCommand(split.Cmd)
	rootCmd.AddCommand(characters.Cmd)
	rootCmd.AddCommand(taxa.Cmd)
	rootCmd.AddCommand(trees.Cmd)
	rootCmd.AddCommand(describe.Cmd)
	rootCmd.AddCommand(version.Cmd)
}
