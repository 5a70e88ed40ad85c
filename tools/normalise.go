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

// Normalise rewrites a document into its normal form: matrices with labels,
// no interleaving or transposition, equate and matchchar symbols resolved;
// distances as a full BOTH-triangle matrix with the diagonal; trees with
// leaves translated to taxon labels and the TRANSLATE table dropped; DATA
// blocks renamed to CHARACTERS; documents without a TAXA block get one
// extracted from the matrix. Blocks without normal-form semantics are
// copied verbatim. Normalising a normalised document is the identity.
func Normalise(doc *document.Document) (*document.Document, error) {
	out := document.New()
	for _, b := range doc.Blocks() {
		cmds, err := normaliseBlock(b)
		if err != nil {
			return nil, fmt.Errorf("normalise %s block: %w", b.Name(), err)
		}
		out.AppendBlock(cmds)
	}
	if _, err := doc.BlockNamed("TAXA"); err != nil {
		if err := extractTaxa(doc, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// extractTaxa prepends a TAXA block built from the character matrix when
// the document declares its taxa only implicitly through matrix rows.
func extractTaxa(doc, out *document.Document) error {
	labels, err := TaxaLabels(doc)
	if err != nil || len(labels) == 0 {
		// No matrix to extract from either; the document stays as it is.
		return nil
	}
	cmds, err := block.NewTaxa(labels, nil)
	if err != nil {
		return err
	}
	out.PrependBlock(cmds)
	return nil
}

func normaliseBlock(b *document.Block) ([]document.Command, error) {
	opts := carryOptions(b)
	switch b.Name() {
	case "TAXA":
		t, err := block.ParseTaxa(b)
		if err != nil {
			return nil, err
		}
		return block.NewTaxa(t.Labels(), opts)
	case "CHARACTERS", "DATA":
		c, err := block.ParseCharacters(b)
		if err != nil {
			return nil, err
		}
		m, err := c.Matrix()
		if err != nil {
			return nil, err
		}
		return block.NewCharacters("CHARACTERS", m, opts)
	case "DISTANCES":
		d, err := block.ParseDistances(b)
		if err != nil {
			return nil, err
		}
		m, err := d.Matrix()
		if err != nil {
			return nil, err
		}
		return block.NewDistances(m, opts)
	case "TREES":
		tr, err := block.ParseTrees(b)
		if err != nil {
			return nil, err
		}
		trees := make([]*block.Tree, 0, len(tr.Trees()))
		for _, t := range tr.Trees() {
			node, err := tr.Resolve(t)
			if err != nil {
				return nil, err
			}
			resolved := block.NewTree(t.Name, t.Rooted, node)
			resolved.Default = t.Default
			trees = append(trees, resolved)
		}
		return block.NewTrees(trees, nil, opts)
	default:
		return b.Span(), nil
	}
}

// carryOptions preserves a block's TITLE and LINK through a rewrite.
func carryOptions(b *document.Block) *document.BlockOptions {
	opts := &document.BlockOptions{Title: b.Title()}
	if name, title, ok := b.Link(); ok {
		opts.LinkBlock = name
		opts.LinkTitle = title
	}
	return opts
}
