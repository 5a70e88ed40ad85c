/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package block provides typed views over NEXUS document blocks.
//
// Each recognized block name (TAXA, CHARACTERS, DATA, DISTANCES, TREES,
// SETS, NOTES) has a parser that turns the block's commands into a
// queryable structure. Unrecognized names, and the recognized-but-opaque
// UNALIGNED, ASSUMPTIONS and CODONS blocks, round-trip untouched through
// the generic document view. Typed views are snapshots: edit the document
// and fetch a fresh view.
package block

import (
	"fmt"

	"bennypowers.dev/nexus/document"
)

// opaque lists blocks the toolkit recognizes but preserves without semantic
// parsing.
var opaque = map[string]bool{
	"UNALIGNED":   true,
	"ASSUMPTIONS": true,
	"CODONS":      true,
}

// Opaque reports whether a block name is recognized but has no semantic
// parser. Requesting typed data from such a block fails with
// ErrUnsupportedConstruct.
func Opaque(name string) bool {
	return opaque[name]
}

// LinkedTaxa resolves the TAXA block a data block refers to.
//
// Resolution order, which callers rely on and must not change:
//  1. an explicit "LINK TAXA = title" resolves by exact title match,
//     case-insensitively;
//  2. otherwise a document with exactly one TAXA block uses that block;
//  3. otherwise an untitled TAXA block immediately preceding the referring
//     block is used;
//  4. otherwise resolution fails with ErrAmbiguousTaxaLink.
//
// A document with no TAXA block at all returns (nil, nil): blocks that can
// define their own taxa (NEWTAXA) or operate without taxon identity handle
// that case themselves.
func LinkedTaxa(b *document.Block) (*Taxa, error) {
	doc := b.Document()

	if name, title, ok := b.Link(); ok && name == "TAXA" {
		for _, candidate := range doc.Blocks() {
			if candidate.Name() == "TAXA" && candidate.Title() == title {
				return ParseTaxa(candidate)
			}
		}
		return nil, fmt.Errorf("%w: no TAXA block titled %q", ErrAmbiguousTaxaLink, title)
	}

	var taxaBlocks []*document.Block
	for _, candidate := range doc.Blocks() {
		if candidate.Name() == "TAXA" {
			taxaBlocks = append(taxaBlocks, candidate)
		}
	}
	switch len(taxaBlocks) {
	case 0:
		return nil, nil
	case 1:
		return ParseTaxa(taxaBlocks[0])
	}

	// Multiple TAXA blocks: only an untitled one immediately preceding the
	// referring block disambiguates.
	var preceding *document.Block
	for _, candidate := range doc.Blocks() {
		if candidate.Start() == b.Start() {
			break
		}
		preceding = candidate
	}
	if preceding != nil && preceding.Name() == "TAXA" && preceding.Title() == "" {
		return ParseTaxa(preceding)
	}
	return nil, fmt.Errorf("%w: %d TAXA blocks and no LINK", ErrAmbiguousTaxaLink, len(taxaBlocks))
}
