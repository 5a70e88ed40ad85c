/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package block

import (
	"fmt"
	"strconv"
	"strings"

	"bennypowers.dev/nexus/document"
	"bennypowers.dev/nexus/tokenizer"
)

// Taxa is the parsed view of a TAXA block: the canonical ordered list of
// taxon labels that other blocks reference.
type Taxa struct {
	block  *document.Block
	labels []string
}

// ParseTaxa reads DIMENSIONS and TAXLABELS from a TAXA block. Labels can
// also come from the TAXLABELS command of a CHARACTERS or DISTANCES block
// when NEWTAXA is in effect, so the parser accepts any block carrying a
// TAXLABELS command.
func ParseTaxa(b *document.Block) (*Taxa, error) {
	t := &Taxa{block: b}

	cmd, ok := b.Command("TAXLABELS")
	if !ok {
		return nil, fmt.Errorf("%w: TAXLABELS in %s block", ErrMissingCommand, b.Name())
	}
	seen := make(map[string]bool)
	for _, item := range tokenizer.Words(cmd.Payload(), "") {
		if item.Punct {
			return nil, fmt.Errorf("%w: unexpected %q in TAXLABELS", ErrBadPayload, item.Text)
		}
		key := tokenizer.NormalizeLabel(item.Text)
		if seen[key] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTaxon, item.Text)
		}
		seen[key] = true
		t.labels = append(t.labels, item.Text)
	}

	if ntax, ok, err := dimension(b, "NTAX"); err != nil {
		return nil, err
	} else if ok && ntax != len(t.labels) {
		return nil, fmt.Errorf("%w: NTAX=%d but %d taxon labels", ErrDimensionMismatch, ntax, len(t.labels))
	}
	return t, nil
}

// dimension reads one named subcommand of DIMENSIONS as an integer.
func dimension(b *document.Block, name string) (value int, present bool, err error) {
	cmd, ok := b.Command("DIMENSIONS")
	if !ok {
		return 0, false, nil
	}
	items := tokenizer.NewItems(cmd.Payload(), "")
	for {
		item, ok := items.Next()
		if !ok {
			return 0, false, nil
		}
		if item.IsWord() && strings.EqualFold(item.Text, name) {
			word, ok := items.AfterEquals()
			if !ok {
				return 0, false, fmt.Errorf("%w: DIMENSIONS %s", ErrBadPayload, name)
			}
			n, err := strconv.Atoi(word)
			if err != nil {
				return 0, false, fmt.Errorf("%w: DIMENSIONS %s=%q", ErrBadPayload, name, word)
			}
			return n, true, nil
		}
	}
}

// Block returns the block the labels were read from.
func (t *Taxa) Block() *document.Block { return t.block }

// Labels returns the ordered taxon labels.
func (t *Taxa) Labels() []string {
	return t.labels
}

// Ntax returns the number of taxa.
func (t *Taxa) Ntax() int {
	return len(t.labels)
}

// Resolve maps a taxon reference, either a label or a 1-based number, to
// the canonical label. Underscores and spaces are interchangeable in
// labels.
func (t *Taxa) Resolve(ref string) (string, bool) {
	for _, label := range t.labels {
		if tokenizer.EqualLabels(label, ref) {
			return label, true
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(t.labels) {
		return t.labels[n-1], true
	}
	return "", false
}

// NewTaxa synthesizes a TAXA block for the given labels.
func NewTaxa(labels []string, opts *document.BlockOptions) ([]document.Command, error) {
	quoted := make([]string, len(labels))
	for i, label := range labels {
		quoted[i] = tokenizer.QuoteIfNeeded(label)
	}
	return document.NewBlock("TAXA", []document.CommandSpec{
		{Name: "DIMENSIONS", Payload: fmt.Sprintf("NTAX=%d", len(labels))},
		{Name: "TAXLABELS", Payload: strings.Join(quoted, " ")},
	}, opts)
}
