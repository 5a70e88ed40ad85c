/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package block

import "errors"

// Sentinel errors for typed block parsing.
var (
	// ErrAmbiguousTaxaLink indicates a block's taxa reference could not be
	// resolved to a single TAXA block.
	ErrAmbiguousTaxaLink = errors.New("ambiguous taxa link")

	// ErrDuplicateTaxon indicates a taxon label defined twice.
	ErrDuplicateTaxon = errors.New("duplicate taxon label")

	// ErrDuplicateCharacter indicates a character label defined twice.
	ErrDuplicateCharacter = errors.New("duplicate character label")

	// ErrUnresolvedTaxon indicates a tree leaf or matrix row that names no
	// known taxon.
	ErrUnresolvedTaxon = errors.New("unresolved taxon reference")

	// ErrDimensionMismatch indicates matrix data inconsistent with the
	// declared NCHAR or NTAX.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrUnsupportedConstruct indicates a recognized block that is
	// preserved opaquely but offers no semantic access (UNALIGNED,
	// ASSUMPTIONS, CODONS).
	ErrUnsupportedConstruct = errors.New("unsupported construct")

	// ErrMissingCommand indicates a required command absent from a block.
	ErrMissingCommand = errors.New("missing command")

	// ErrBadPayload indicates a command payload that does not parse.
	ErrBadPayload = errors.New("malformed command payload")
)
