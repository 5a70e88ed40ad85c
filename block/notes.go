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

// Note is one TEXT command of a NOTES block. The object references are
// kept as written: numbers, labels, or both.
type Note struct {
	Taxa       []string
	Characters []string
	States     []string
	Trees      []string

	// Source is INLINE, FILE or RESOURCE.
	Source string

	// Text is the annotation itself; for FILE and RESOURCE sources it is
	// the location rather than the content.
	Text string
}

// Notes is the parsed view of a NOTES block.
type Notes struct {
	block *document.Block
	notes []*Note
}

// ParseNotes builds a Notes view of a NOTES block.
func ParseNotes(b *document.Block) (*Notes, error) {
	n := &Notes{block: b}
	for _, cmd := range b.CommandsNamed("TEXT") {
		note, err := parseNote(cmd)
		if err != nil {
			return nil, err
		}
		n.notes = append(n.notes, note)
	}
	return n, nil
}

// Notes returns the block's annotations in source order.
func (n *Notes) Notes() []*Note { return n.notes }

// parseNote reads "TEXT TAXON=2 CHARACTER=(1-3) SOURCE=INLINE TEXT='..'".
func parseNote(cmd document.Command) (*Note, error) {
	note := &Note{Source: "INLINE"}
	items := tokenizer.NewItems(cmd.Payload(), "")
	for {
		item, ok := items.Next()
		if !ok {
			break
		}
		if !item.IsWord() {
			continue
		}
		sub := strings.ToUpper(item.Text)
		switch sub {
		case "TAXON", "TAXA":
			refs, err := objectRefs(items, sub)
			if err != nil {
				return nil, err
			}
			note.Taxa = append(note.Taxa, refs...)
		case "CHARACTER", "CHARACTERS":
			refs, err := objectRefs(items, sub)
			if err != nil {
				return nil, err
			}
			note.Characters = append(note.Characters, refs...)
		case "STATE", "STATES":
			refs, err := objectRefs(items, sub)
			if err != nil {
				return nil, err
			}
			note.States = append(note.States, refs...)
		case "TREE", "TREES":
			refs, err := objectRefs(items, sub)
			if err != nil {
				return nil, err
			}
			note.Trees = append(note.Trees, refs...)
		case "SOURCE":
			word, ok := items.AfterEquals()
			if !ok {
				return nil, fmt.Errorf("%w: TEXT SOURCE", ErrBadPayload)
			}
			note.Source = strings.ToUpper(word)
		case "TEXT":
			word, ok := items.AfterEquals()
			if !ok {
				return nil, fmt.Errorf("%w: TEXT content", ErrBadPayload)
			}
			note.Text = word
		}
	}
	if note.Text == "" {
		return nil, fmt.Errorf("%w: TEXT command without content", ErrBadPayload)
	}
	return note, nil
}

// objectRefs reads an object specifier: a single reference or a
// parenthesized list with ranges, "(1-3 5)".
func objectRefs(items *tokenizer.Items, sub string) ([]string, error) {
	eq, ok := items.Next()
	if !ok || !eq.Punct || eq.Text != "=" {
		return nil, fmt.Errorf("%w: TEXT %s", ErrBadPayload, sub)
	}
	first, ok := items.Next()
	if !ok {
		return nil, fmt.Errorf("%w: TEXT %s", ErrBadPayload, sub)
	}
	if first.IsWord() {
		return []string{first.Text}, nil
	}
	if !first.Punct || first.Text != "(" {
		return nil, fmt.Errorf("%w: TEXT %s reference %q", ErrBadPayload, sub, first.Text)
	}
	var group []tokenizer.Item
	for {
		item, ok := items.Next()
		if !ok {
			return nil, fmt.Errorf("%w: TEXT %s unterminated list", ErrBadPayload, sub)
		}
		if item.Punct && item.Text == ")" {
			break
		}
		group = append(group, item)
	}
	return expandRefs(group, sub)
}

// expandRefs turns "1 - 3 5 foo" into individual references, expanding
// numeric ranges.
func expandRefs(group []tokenizer.Item, sub string) ([]string, error) {
	var refs []string
	for i := 0; i < len(group); i++ {
		item := group[i]
		if item.Punct {
			return nil, fmt.Errorf("%w: TEXT %s reference %q", ErrBadPayload, sub, item.Text)
		}
		start, err := strconv.Atoi(item.Text)
		isDash := i+1 < len(group) && group[i+1].Punct && group[i+1].Text == "-"
		if err != nil || !isDash {
			if isDash {
				return nil, fmt.Errorf("%w: TEXT %s range start %q", ErrBadPayload, sub, item.Text)
			}
			refs = append(refs, item.Text)
			continue
		}
		if i+2 >= len(group) {
			return nil, fmt.Errorf("%w: TEXT %s open range", ErrBadPayload, sub)
		}
		end, err := strconv.Atoi(group[i+2].Text)
		if err != nil || end < start {
			return nil, fmt.Errorf("%w: TEXT %s range end %q", ErrBadPayload, sub, group[i+2].Text)
		}
		for n := start; n <= end; n++ {
			refs = append(refs, strconv.Itoa(n))
		}
		i += 2
	}
	return refs, nil
}

// ResolveTaxa maps a note's taxon references through the given taxa.
func (note *Note) ResolveTaxa(taxa *Taxa) ([]string, error) {
	if taxa == nil {
		return note.Taxa, nil
	}
	resolved := make([]string, 0, len(note.Taxa))
	for _, ref := range note.Taxa {
		label, ok := taxa.Resolve(ref)
		if !ok {
			return nil, fmt.Errorf("%w: note taxon %q", ErrUnresolvedTaxon, ref)
		}
		resolved = append(resolved, label)
	}
	return resolved, nil
}

// NewNotes synthesizes a NOTES block.
func NewNotes(notes []*Note, opts *document.BlockOptions) ([]document.Command, error) {
	var specs []document.CommandSpec
	for _, note := range notes {
		var b strings.Builder
		writeRefs := func(sub string, refs []string) {
			if len(refs) == 0 {
				return
			}
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(sub + "=")
			if len(refs) == 1 {
				b.WriteString(tokenizer.QuoteIfNeeded(refs[0]))
				return
			}
			b.WriteString("(")
			for i, ref := range refs {
				if i > 0 {
					b.WriteString(" ")
				}
				b.WriteString(tokenizer.QuoteIfNeeded(ref))
			}
			b.WriteString(")")
		}
		writeRefs("TAXON", note.Taxa)
		writeRefs("CHARACTER", note.Characters)
		writeRefs("STATE", note.States)
		writeRefs("TREE", note.Trees)
		if note.Source != "" && note.Source != "INLINE" {
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString("SOURCE=" + note.Source)
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("TEXT=" + tokenizer.QuoteIfNeeded(note.Text))
		specs = append(specs, document.CommandSpec{Name: "TEXT", Payload: b.String()})
	}
	return document.NewBlock("NOTES", specs, opts)
}
