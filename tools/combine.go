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
	"bennypowers.dev/nexus/tokenizer"
)

// Combine merges documents into a fresh one: the taxa are the ordered union
// of every input's taxa, character matrices concatenate with the source
// ordinal prefixed to each character name ("1.eyes"), and trees carry over
// with their leaves translated to taxon labels. Taxa absent from one
// source's matrix read as missing for that source's characters.
func Combine(docs ...*document.Document) (*document.Document, error) {
	if len(docs) == 0 {
		return nil, ErrNothingToCombine
	}

	var taxa []string
	seen := make(map[string]bool)
	addTaxon := func(label string) {
		key := tokenizer.NormalizeLabel(label)
		if !seen[key] {
			seen[key] = true
			taxa = append(taxa, label)
		}
	}

	var chars []string
	rows := make(map[string][]block.State)
	var trees []*block.Tree

	pad := func() {
		for _, t := range taxa {
			for len(rows[t]) < len(chars) {
				rows[t] = append(rows[t], block.State{Missing: true})
			}
		}
	}

	for di, doc := range docs {
		prefix := fmt.Sprintf("%d", di+1)

		for _, b := range doc.Blocks() {
			switch b.Name() {
			case "TAXA":
				t, err := block.ParseTaxa(b)
				if err != nil {
					return nil, fmt.Errorf("combine input %d: %w", di+1, err)
				}
				for _, label := range t.Labels() {
					addTaxon(label)
				}
			case "CHARACTERS", "DATA":
				c, err := block.ParseCharacters(b)
				if err != nil {
					return nil, fmt.Errorf("combine input %d: %w", di+1, err)
				}
				m, err := c.Matrix()
				if err != nil {
					return nil, fmt.Errorf("combine input %d: %w", di+1, err)
				}
				base := len(chars)
				for _, name := range m.Characters() {
					chars = append(chars, prefix+"."+name)
				}
				for _, taxon := range m.Taxa() {
					addTaxon(taxon)
					row := rows[taxon]
					for len(row) < base {
						row = append(row, block.State{Missing: true})
					}
					rows[taxon] = append(row, m.Row(taxon)...)
				}
				pad()
			case "TREES":
				tr, err := block.ParseTrees(b)
				if err != nil {
					return nil, fmt.Errorf("combine input %d: %w", di+1, err)
				}
				for _, t := range tr.Trees() {
					node, err := tr.Resolve(t)
					if err != nil {
						return nil, fmt.Errorf("combine input %d: %w", di+1, err)
					}
					for _, leaf := range node.Leaves() {
						addTaxon(leaf.Name)
					}
					trees = append(trees, block.NewTree(prefix+"."+t.Name, t.Rooted, node))
				}
			}
		}
	}
	pad()

	out := document.New()
	taxaCmds, err := block.NewTaxa(taxa, nil)
	if err != nil {
		return nil, err
	}
	out.AppendBlock(taxaCmds)

	if len(chars) > 0 {
		m := block.NewMatrix(chars)
		for _, t := range taxa {
			m.SetRow(t, rows[t])
		}
		charCmds, err := block.NewCharacters("CHARACTERS", m, nil)
		if err != nil {
			return nil, err
		}
		out.AppendBlock(charCmds)
	}
	if len(trees) > 0 {
		treeCmds, err := block.NewTrees(trees, nil, nil)
		if err != nil {
			return nil, err
		}
		out.AppendBlock(treeCmds)
	}
	return out, nil
}
