/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package tools

import "errors"

var (
	// ErrNoCharacters means the document has no CHARACTERS or DATA block.
	ErrNoCharacters = errors.New("no characters block")

	// ErrSymbolPool means a recoding needs more state symbols than NEXUS
	// provides.
	ErrSymbolPool = errors.New("too many characters for the symbol pool")

	// ErrNothingToCombine means Combine received no documents.
	ErrNothingToCombine = errors.New("nothing to combine")

	// ErrUnknownCharacter means a character reference matched neither a
	// label nor a position.
	ErrUnknownCharacter = errors.New("unknown character")
)
