/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package document

import "errors"

// Sentinel errors for document structure.
var (
	// ErrNoHeader indicates the input does not start with #NEXUS.
	ErrNoHeader = errors.New("missing #NEXUS header")

	// ErrUnterminatedBlock indicates a BEGIN without a matching END.
	ErrUnterminatedBlock = errors.New("unterminated block")

	// ErrMalformedBegin indicates a BEGIN command without a block name.
	ErrMalformedBegin = errors.New("malformed BEGIN command")

	// ErrBlockNotFound indicates a lookup for a block that is not present.
	ErrBlockNotFound = errors.New("block not found")
)
