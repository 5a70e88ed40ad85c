/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package document

import (
	"strings"

	"bennypowers.dev/nexus/tokenizer"
)

// CommandSpec describes one command for block synthesis.
type CommandSpec struct {
	Name    string
	Payload string
	Comment string
}

// BlockOptions carries the optional parts of a synthesized block.
type BlockOptions struct {
	// Comment is placed before the BEGIN command.
	Comment string
	// Title emits a TITLE command.
	Title string
	// LinkBlock and LinkTitle emit a LINK command ("LINK TAXA = title").
	LinkBlock string
	LinkTitle string
}

// NewBlock synthesizes the command list for a block: BEGIN, optional TITLE
// and LINK, the given commands, END. The result plugs into AppendBlock,
// PrependBlock or ReplaceBlock.
func NewBlock(name string, commands []CommandSpec, opts *BlockOptions) ([]Command, error) {
	if opts == nil {
		opts = &BlockOptions{}
	}
	var cmds []Command

	begin, err := NewCommand("BEGIN", name, opts.Comment)
	if err != nil {
		return nil, err
	}
	cmds = append(cmds, begin)

	if opts.Title != "" {
		title, err := NewCommand("TITLE", tokenizer.QuoteIfNeeded(opts.Title), "")
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, title)
	}
	if opts.LinkBlock != "" {
		link, err := NewCommand("LINK", strings.ToUpper(opts.LinkBlock)+" = "+tokenizer.QuoteIfNeeded(opts.LinkTitle), "")
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, link)
	}
	for _, spec := range commands {
		cmd, err := NewCommand(spec.Name, spec.Payload, spec.Comment)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	end, err := NewCommand("END", "", "")
	if err != nil {
		return nil, err
	}
	cmds = append(cmds, end)
	return cmds, nil
}
