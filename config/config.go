/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package config provides configuration loading for the nexus CLI.
package config

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Config represents the nexus tool configuration.
type Config struct {
	// Strict turns recoverable data problems, like a duplicate matrix row,
	// into hard errors.
	Strict bool `yaml:"strict" json:"strict"`

	// Files are the default input files (globs allowed) for commands that
	// accept file lists, like combine.
	Files []FileSpec `yaml:"files" json:"files"`
}

// FileSpec represents one input file.
// It can be specified as a simple string path or as an object.
type FileSpec struct {
	// Path is the file path (supports globs).
	Path string `yaml:"path" json:"path"`
}

// UnmarshalYAML handles both string and object forms for FileSpec.
func (f *FileSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Path = node.Value
		return nil
	}

	type rawFileSpec FileSpec
	return node.Decode((*rawFileSpec)(f))
}

// UnmarshalJSON handles both string and object forms for FileSpec.
func (f *FileSpec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Path = s
		return nil
	}

	type rawFileSpec FileSpec
	return json.Unmarshal(data, (*rawFileSpec)(f))
}

// Default returns a config with default values.
func Default() *Config {
	return &Config{}
}

// FilePaths returns the list of file paths from all FileSpecs.
func (c *Config) FilePaths() []string {
	paths := make([]string, 0, len(c.Files))
	for _, spec := range c.Files {
		paths = append(paths, spec.Path)
	}
	return paths
}
