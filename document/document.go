/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package document models a NEXUS file as an ordered list of commands.
//
// The document owns the token sequence and is the single source of truth.
// Block views handed out by Blocks and BlockNamed are point-in-time
// projections over a command range: any edit to the document invalidates
// previously obtained views, and callers re-fetch after mutating. Regions
// outside an edited block are preserved character-for-character.
package document

import (
	"fmt"
	"strings"

	"bennypowers.dev/nexus/tokenizer"
)

// Header is the canonical NEXUS file marker.
const Header = "#NEXUS"

// Document is a parsed NEXUS file.
type Document struct {
	// leading holds whitespace and comments before the header.
	leading []tokenizer.Token
	// header is the marker with its original casing.
	header string
	// commands is every semicolon-terminated run after the header.
	commands []Command
	// trailing holds tokens after the last semicolon.
	trailing []tokenizer.Token
}

// New returns an empty document containing only the header.
func New() *Document {
	return &Document{header: Header}
}

// Parse constructs a document from NEXUS text. Lexical errors and top-level
// structural errors (missing header, BEGIN without END) are reported here;
// errors inside a block's data are reported lazily when the block is
// parsed.
func Parse(text string) (*Document, error) {
	tokens, err := tokenizer.Tokenize(text)
	if err != nil {
		return nil, err
	}
	d := &Document{}

	i := 0
	for i < len(tokens) && (tokens[i].Kind == tokenizer.Space || tokens[i].Kind == tokenizer.Comment) {
		d.leading = append(d.leading, tokens[i])
		i++
	}
	if i >= len(tokens) || tokens[i].Kind != tokenizer.Word ||
		!strings.EqualFold(tokens[i].Text, Header) {
		return nil, ErrNoHeader
	}
	d.header = tokens[i].Text
	i++

	var run Command
	for ; i < len(tokens); i++ {
		run = append(run, tokens[i])
		if tokens[i].IsSemicolon() {
			d.commands = append(d.commands, run)
			run = nil
		}
	}
	d.trailing = run

	if err := d.checkStructure(); err != nil {
		return nil, err
	}
	return d, nil
}

// checkStructure verifies BEGIN/END pairing across the whole document.
func (d *Document) checkStructure() error {
	inBlock := false
	for _, cmd := range d.commands {
		switch {
		case cmd.IsBegin():
			if inBlock {
				return fmt.Errorf("%w: BEGIN inside a block", ErrMalformedBegin)
			}
			if tokenizer.Name(cmd.Payload()) == "" {
				return ErrMalformedBegin
			}
			inBlock = true
		case cmd.IsEnd():
			inBlock = false
		}
	}
	if inBlock {
		return ErrUnterminatedBlock
	}
	return nil
}

// String serializes the document. For an unmodified document this is the
// identity transform.
func (d *Document) String() string {
	var b strings.Builder
	b.WriteString(tokenizer.Text(d.leading))
	b.WriteString(d.header)
	for _, cmd := range d.commands {
		b.WriteString(cmd.String())
	}
	b.WriteString(tokenizer.Text(d.trailing))
	return b.String()
}

// Commands returns the document's command list.
func (d *Document) Commands() []Command {
	return d.commands
}

// Comments returns the text of every comment token in the document.
func (d *Document) Comments() []string {
	var comments []string
	for _, t := range d.leading {
		if t.Kind == tokenizer.Comment {
			comments = append(comments, t.Text)
		}
	}
	for _, cmd := range d.commands {
		comments = append(comments, cmd.Comments()...)
	}
	return comments
}

// Block is a named span of commands delimited by BEGIN and END. It is a
// read-through projection: it holds command indices into the document and
// becomes stale as soon as the document is edited.
type Block struct {
	doc   *Document
	name  string
	start int // index of the BEGIN command
	end   int // index of the END command
}

// Blocks discovers every block in document order. The scan runs over the
// current command list on each call; nothing is cached on the document.
func (d *Document) Blocks() []*Block {
	var blocks []*Block
	start := -1
	for i, cmd := range d.commands {
		switch {
		case cmd.IsBegin():
			start = i
		case cmd.IsEnd():
			if start >= 0 {
				blocks = append(blocks, &Block{
					doc:   d,
					name:  tokenizer.Name(d.commands[start].Payload()),
					start: start,
					end:   i,
				})
				start = -1
			}
		}
	}
	return blocks
}

// BlockNamed returns the first block with the given name (case-insensitive).
func (d *Document) BlockNamed(name string) (*Block, error) {
	return d.BlockAt(name, 0)
}

// BlockAt returns the index-th block with the given name.
func (d *Document) BlockAt(name string, index int) (*Block, error) {
	name = strings.ToUpper(name)
	n := 0
	for _, b := range d.Blocks() {
		if b.name == name {
			if n == index {
				return b, nil
			}
			n++
		}
	}
	return nil, fmt.Errorf("%w: %s[%d]", ErrBlockNotFound, name, index)
}

// BlockNames returns the block names present, in document order.
func (d *Document) BlockNames() []string {
	var names []string
	for _, b := range d.Blocks() {
		names = append(names, b.name)
	}
	return names
}

// Name returns the uppercased block name.
func (b *Block) Name() string { return b.name }

// Start returns the command index of the block's BEGIN command. Two views
// over the same unmodified document denote the same block iff their starts
// are equal.
func (b *Block) Start() int { return b.start }

// Document returns the owning document.
func (b *Block) Document() *Document { return b.doc }

// Commands returns the block's interior commands, excluding BEGIN and END.
func (b *Block) Commands() []Command {
	return b.doc.commands[b.start+1 : b.end]
}

// Span returns the block's commands including the BEGIN and END
// delimiters, useful for copying a block verbatim into another document.
func (b *Block) Span() []Command {
	return b.doc.commands[b.start : b.end+1]
}

// CommandsNamed returns every interior command with the given name.
func (b *Block) CommandsNamed(name string) []Command {
	name = strings.ToUpper(name)
	var cmds []Command
	for _, cmd := range b.Commands() {
		if cmd.Name() == name {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// Command returns the first interior command with the given name.
func (b *Block) Command(name string) (Command, bool) {
	cmds := b.CommandsNamed(name)
	if len(cmds) == 0 {
		return nil, false
	}
	return cmds[0], true
}

// Title returns the block's TITLE, uppercased, or "".
func (b *Block) Title() string {
	cmd, ok := b.Command("TITLE")
	if !ok {
		return ""
	}
	items := tokenizer.NewItems(cmd.Payload(), "")
	if i, ok := items.Next(); ok && i.IsWord() {
		return strings.ToUpper(i.Text)
	}
	return ""
}

// Link returns the target of a LINK command ("LINK TAXA = title") as the
// linked block name and title, both uppercased.
func (b *Block) Link() (blockName, title string, ok bool) {
	cmd, found := b.Command("LINK")
	if !found {
		return "", "", false
	}
	items := tokenizer.NewItems(cmd.Payload(), "")
	name, haveName := items.Next()
	if !haveName || !name.IsWord() {
		return "", "", false
	}
	t, haveTitle := items.AfterEquals()
	if !haveTitle {
		return "", "", false
	}
	return strings.ToUpper(name.Text), strings.ToUpper(t), true
}

// String re-serializes the block span verbatim.
func (b *Block) String() string {
	var sb strings.Builder
	for _, cmd := range b.doc.commands[b.start : b.end+1] {
		sb.WriteString(cmd.String())
	}
	return sb.String()
}

// AppendBlock appends a block's commands at the end of the document.
func (d *Document) AppendBlock(cmds []Command) {
	d.commands = append(d.commands, cmds...)
}

// PrependBlock inserts a block's commands before the first block.
func (d *Document) PrependBlock(cmds []Command) {
	at := len(d.commands)
	for i, cmd := range d.commands {
		if cmd.IsBegin() {
			at = i
			break
		}
	}
	d.insertCommands(at, cmds)
}

// RemoveBlock deletes the block's command span, BEGIN and END included.
// The view passed in, and any other outstanding views, are stale
// afterwards.
func (d *Document) RemoveBlock(b *Block) {
	d.commands = append(d.commands[:b.start], d.commands[b.end+1:]...)
}

// ReplaceBlock substitutes a block's command span in place, preserving the
// document order of every other block.
func (d *Document) ReplaceBlock(b *Block, cmds []Command) {
	rest := append([]Command{}, d.commands[b.end+1:]...)
	d.commands = append(d.commands[:b.start], cmds...)
	d.commands = append(d.commands, rest...)
}

// AppendCommand inserts a synthesized command before the block's END.
func (d *Document) AppendCommand(b *Block, name, payload string) error {
	cmd, err := NewCommand(name, payload, "")
	if err != nil {
		return err
	}
	d.insertCommands(b.end, []Command{cmd})
	return nil
}

func (d *Document) insertCommands(at int, cmds []Command) {
	rest := append([]Command{}, d.commands[at:]...)
	d.commands = append(d.commands[:at], cmds...)
	d.commands = append(d.commands, rest...)
}
