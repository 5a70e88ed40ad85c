/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package tools

import (
	"fmt"

	"bennypowers.dev/nexus/block"
	"bennypowers.dev/nexus/document"
)

// Split partitions a document with multiple TAXA blocks into one document
// per TAXA block, each carrying the blocks that link to it. Blocks without
// taxa semantics follow every split. A document with one or zero TAXA
// blocks splits into itself.
func Split(doc *document.Document) ([]*document.Document, error) {
	var taxaBlocks []*document.Block
	for _, b := range doc.Blocks() {
		if b.Name() == "TAXA" {
			taxaBlocks = append(taxaBlocks, b)
		}
	}
	if len(taxaBlocks) <= 1 {
		return []*document.Document{doc}, nil
	}

	outs := make([]*document.Document, len(taxaBlocks))
	for i := range outs {
		outs[i] = document.New()
		outs[i].AppendBlock(taxaBlocks[i].Span())
	}
	for _, b := range doc.Blocks() {
		if b.Name() == "TAXA" {
			continue
		}
		if block.Opaque(b.Name()) {
			for _, out := range outs {
				out.AppendBlock(b.Span())
			}
			continue
		}
		linked, err := block.LinkedTaxa(b)
		if err != nil {
			return nil, fmt.Errorf("split %s block: %w", b.Name(), err)
		}
		if linked == nil {
			for _, out := range outs {
				out.AppendBlock(b.Span())
			}
			continue
		}
		for i, tb := range taxaBlocks {
			if linked.Block().Start() == tb.Start() {
				outs[i].AppendBlock(b.Span())
				break
			}
		}
	}
	return outs, nil
}

// DropCharacters removes characters, referenced by label or 1-based
// number, from the document's character matrix. Charsets are not
// renumbered; a reference matching nothing is an error.
func DropCharacters(doc *document.Document, refs []string) error {
	b, err := charactersBlock(doc)
	if err != nil {
		return err
	}
	c, err := block.ParseCharacters(b)
	if err != nil {
		return err
	}
	m, err := c.Matrix()
	if err != nil {
		return err
	}

	dropped := make(map[int]bool)
	for _, ref := range refs {
		ci, ok := findCharacter(m.Characters(), ref)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCharacter, ref)
		}
		dropped[ci] = true
	}

	var kept []string
	for ci, name := range m.Characters() {
		if !dropped[ci] {
			kept = append(kept, name)
		}
	}
	out := block.NewMatrix(kept)
	for _, taxon := range m.Taxa() {
		var row []block.State
		for ci, cell := range m.Row(taxon) {
			if !dropped[ci] {
				row = append(row, cell)
			}
		}
		out.SetRow(taxon, row)
	}

	cmds, err := block.NewCharacters(b.Name(), out, carryOptions(b))
	if err != nil {
		return err
	}
	doc.ReplaceBlock(b, cmds)
	return nil
}

func findCharacter(chars []string, ref string) (int, bool) {
	for i, name := range chars {
		if name == ref {
			return i, true
		}
	}
	var n int
	if _, err := fmt.Sscanf(ref, "%d", &n); err == nil && n >= 1 && n <= len(chars) {
		return n - 1, true
	}
	return 0, false
}
