/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package block

import (
	"fmt"
	"strconv"

	"bennypowers.dev/nexus/document"
	"bennypowers.dev/nexus/tokenizer"
)

// Set is one CHARSET or TAXSET definition. Positions are resolved lazily
// because "." and open-ended ranges depend on the dimension of the matrix
// or taxa list the set applies to.
type Set struct {
	Name string

	// Vector marks the (VECTOR) form, where the definition is a 0/1 mask.
	Vector bool

	items []tokenizer.Item
}

// Sets is the parsed view of a SETS block.
type Sets struct {
	block    *document.Block
	charsets []*Set
	taxsets  []*Set
}

// ParseSets builds a Sets view of a SETS block.
func ParseSets(b *document.Block) (*Sets, error) {
	s := &Sets{block: b}
	for _, cmd := range b.CommandsNamed("CHARSET") {
		set, err := parseSet(cmd)
		if err != nil {
			return nil, err
		}
		s.charsets = append(s.charsets, set)
	}
	for _, cmd := range b.CommandsNamed("TAXSET") {
		set, err := parseSet(cmd)
		if err != nil {
			return nil, err
		}
		s.taxsets = append(s.taxsets, set)
	}
	return s, nil
}

// Charsets returns the block's CHARSET definitions in source order.
func (s *Sets) Charsets() []*Set { return s.charsets }

// Taxsets returns the block's TAXSET definitions in source order.
func (s *Sets) Taxsets() []*Set { return s.taxsets }

// Charset returns a CHARSET by name.
func (s *Sets) Charset(name string) (*Set, bool) { return findSet(s.charsets, name) }

// Taxset returns a TAXSET by name.
func (s *Sets) Taxset(name string) (*Set, bool) { return findSet(s.taxsets, name) }

func findSet(sets []*Set, name string) (*Set, bool) {
	for _, set := range sets {
		if tokenizer.EqualLabels(set.Name, name) {
			return set, true
		}
	}
	return nil, false
}

// parseSet reads "name [({STANDARD|VECTOR})] = definition".
func parseSet(cmd document.Command) (*Set, error) {
	items := tokenizer.NewItems(cmd.Payload(), "")
	name, ok := items.Next()
	if !ok || !name.IsWord() {
		return nil, fmt.Errorf("%w: set without a name", ErrBadPayload)
	}
	set := &Set{Name: name.Text}

	item, ok := items.Next()
	if !ok {
		return nil, fmt.Errorf("%w: set %q without a definition", ErrBadPayload, set.Name)
	}
	if item.Punct && item.Text == "(" {
		for {
			inner, ok := items.Next()
			if !ok {
				return nil, fmt.Errorf("%w: set %q format", ErrBadPayload, set.Name)
			}
			if inner.Punct && inner.Text == ")" {
				break
			}
			if inner.IsWord() && tokenizer.EqualLabels(inner.Text, "VECTOR") {
				set.Vector = true
			}
		}
		item, ok = items.Next()
		if !ok {
			return nil, fmt.Errorf("%w: set %q without a definition", ErrBadPayload, set.Name)
		}
	}
	if !item.Punct || item.Text != "=" {
		return nil, fmt.Errorf("%w: set %q missing =", ErrBadPayload, set.Name)
	}
	set.items = items.Rest()
	return set, nil
}

// Positions resolves the set to 1-based positions. max is the dimension
// the set ranges over (NCHAR for charsets, NTAX for taxsets): "." and
// open-ended ranges stand for max.
func (s *Set) Positions(max int) ([]int, error) {
	if s.Vector {
		return s.vectorPositions(max)
	}
	var positions []int
	i := 0
	next := func() (tokenizer.Item, bool) {
		if i >= len(s.items) {
			return tokenizer.Item{}, false
		}
		item := s.items[i]
		i++
		return item, true
	}
	peek := func() (tokenizer.Item, bool) {
		if i >= len(s.items) {
			return tokenizer.Item{}, false
		}
		return s.items[i], true
	}
	number := func(item tokenizer.Item) (int, error) {
		if item.Text == "." {
			return max, nil
		}
		n, err := strconv.Atoi(item.Text)
		if err != nil {
			return 0, fmt.Errorf("%w: set %q position %q", ErrBadPayload, s.Name, item.Text)
		}
		return n, nil
	}
	for {
		item, ok := next()
		if !ok {
			return positions, nil
		}
		start, err := number(item)
		if err != nil {
			return nil, err
		}
		end, step := start, 1
		if dash, ok := peek(); ok && dash.Punct && dash.Text == "-" {
			next()
			endItem, ok := next()
			if !ok {
				return nil, fmt.Errorf("%w: set %q open range", ErrBadPayload, s.Name)
			}
			if end, err = number(endItem); err != nil {
				return nil, err
			}
			if slash, ok := peek(); ok && slash.Punct && slash.Text == `\` {
				next()
				stepItem, ok := next()
				if !ok {
					return nil, fmt.Errorf("%w: set %q range step", ErrBadPayload, s.Name)
				}
				if step, err = strconv.Atoi(stepItem.Text); err != nil || step < 1 {
					return nil, fmt.Errorf("%w: set %q range step %q", ErrBadPayload, s.Name, stepItem.Text)
				}
			}
		}
		if start < 1 || end > max || end < start {
			return nil, fmt.Errorf("%w: set %q range %d-%d outside 1-%d", ErrDimensionMismatch, s.Name, start, end, max)
		}
		for n := start; n <= end; n += step {
			positions = append(positions, n)
		}
	}
}

// vectorPositions reads a 0/1 mask of exactly max entries.
func (s *Set) vectorPositions(max int) ([]int, error) {
	var positions []int
	pos := 0
	for _, item := range s.items {
		if !item.IsWord() {
			return nil, fmt.Errorf("%w: set %q vector symbol %q", ErrBadPayload, s.Name, item.Text)
		}
		for _, r := range item.Text {
			pos++
			switch r {
			case '1':
				positions = append(positions, pos)
			case '0':
			default:
				return nil, fmt.Errorf("%w: set %q vector symbol %q", ErrBadPayload, s.Name, string(r))
			}
		}
	}
	if pos != max {
		return nil, fmt.Errorf("%w: set %q vector has %d entries, expected %d", ErrDimensionMismatch, s.Name, pos, max)
	}
	return positions, nil
}

// NamedPositions is a resolved set for synthesis.
type NamedPositions struct {
	Name      string
	Positions []int
}

// NewSets synthesizes a SETS block from resolved position lists.
func NewSets(charsets, taxsets []NamedPositions, opts *document.BlockOptions) ([]document.Command, error) {
	var specs []document.CommandSpec
	add := func(name string, sets []NamedPositions) {
		for _, set := range sets {
			specs = append(specs, document.CommandSpec{
				Name:    name,
				Payload: tokenizer.QuoteIfNeeded(set.Name) + " = " + FormatRanges(set.Positions),
			})
		}
	}
	add("CHARSET", charsets)
	add("TAXSET", taxsets)
	return document.NewBlock("SETS", specs, opts)
}

// FormatRanges renders 1-based positions in compact range notation,
// "1-4 6 8-10".
func FormatRanges(positions []int) string {
	out := ""
	for i := 0; i < len(positions); {
		j := i
		for j+1 < len(positions) && positions[j+1] == positions[j]+1 {
			j++
		}
		if out != "" {
			out += " "
		}
		if j > i {
			out += fmt.Sprintf("%d-%d", positions[i], positions[j])
		} else {
			out += strconv.Itoa(positions[i])
		}
		i = j + 1
	}
	return out
}
