/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package tokenizer

import (
	"strings"
)

// Name assembles a command or block name from a token sequence. The NEXUS
// spec allows comments inside names ("AssuMP[comment]TiONS"), so word
// fragments on either side of a comment concatenate. The result is
// uppercased for case-insensitive keyword matching.
func Name(tokens []Token) string {
	var b strings.Builder
	started := false
	for _, t := range tokens {
		if !started {
			if t.Kind != Word {
				continue
			}
			started = true
			b.WriteString(t.Text)
			continue
		}
		switch t.Kind {
		case Word:
			b.WriteString(t.Text)
		case Comment:
			// Comments do not break a name.
		default:
			return strings.ToUpper(b.String())
		}
	}
	return strings.ToUpper(b.String())
}

// Item is one element of a word-level view of a token sequence: either an
// assembled word (possibly quoted) or a single punctuation character.
type Item struct {
	Text   string
	Quoted bool
	Punct  bool
}

// IsWord reports whether the item is a word rather than punctuation.
func (i Item) IsWord() bool { return !i.Punct }

// Words assembles a token sequence into words and punctuation. Comments are
// dropped and do not break words; whitespace separates words; punctuation
// characters listed in allowPunct are treated as word characters (the NEXUS
// standard allows + and - as state symbols, and - as a minus sign).
func Words(tokens []Token, allowPunct string) []Item {
	var items []Item
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			items = append(items, Item{Text: word.String()})
			word.Reset()
		}
	}
	for _, t := range tokens {
		switch t.Kind {
		case Quoted:
			flush()
			items = append(items, Item{Text: t.Text, Quoted: true})
		case Word:
			word.WriteString(t.Text)
		case Space:
			flush()
		case Punct:
			if strings.Contains(allowPunct, t.Text) {
				word.WriteString(t.Text)
			} else {
				flush()
				items = append(items, Item{Text: t.Text, Punct: true})
			}
		}
	}
	flush()
	return items
}

// Items is a cursor over a word-level view, used by the per-block command
// parsers.
type Items struct {
	items []Item
	pos   int
}

// NewItems returns a cursor over the words and punctuation of tokens.
func NewItems(tokens []Token, allowPunct string) *Items {
	return &Items{items: Words(tokens, allowPunct)}
}

// Next returns the next item; ok is false at the end.
func (it *Items) Next() (Item, bool) {
	if it.pos >= len(it.items) {
		return Item{}, false
	}
	i := it.items[it.pos]
	it.pos++
	return i, true
}

// Peek returns the next item without consuming it.
func (it *Items) Peek() (Item, bool) {
	if it.pos >= len(it.items) {
		return Item{}, false
	}
	return it.items[it.pos], true
}

// Rest returns all remaining items.
func (it *Items) Rest() []Item {
	rest := it.items[it.pos:]
	it.pos = len(it.items)
	return rest
}

// AfterEquals consumes an "=" and returns the word following it.
func (it *Items) AfterEquals() (string, bool) {
	eq, ok := it.Next()
	if !ok || !eq.Punct || eq.Text != "=" {
		return "", false
	}
	w, ok := it.Next()
	if !ok {
		return "", false
	}
	return w.Text, true
}

// Delimited consumes items up to the closing delimiter and returns the
// enclosed words. start is the item already consumed by the caller: if it is
// not the opening delimiter and allowSingleWord is set, start itself is the
// whole content.
func (it *Items) Delimited(start Item, delim string, allowSingleWord bool) ([]Item, bool) {
	if !(start.Punct && start.Text == delim) {
		if allowSingleWord && start.IsWord() {
			return []Item{start}, true
		}
		return nil, false
	}
	var content []Item
	for {
		i, ok := it.Next()
		if !ok {
			return nil, false
		}
		if i.Punct && i.Text == delim {
			return content, true
		}
		content = append(content, i)
	}
}

// Lines splits a payload into lines at whitespace tokens containing a line
// break. Lines holding only whitespace and comments are dropped. Newlines
// carry meaning in interleaved matrices only; everywhere else callers treat
// the payload as one run.
func Lines(tokens []Token) [][]Token {
	var lines [][]Token
	var line []Token
	emit := func() {
		for _, t := range line {
			if t.Kind != Space && t.Kind != Comment {
				lines = append(lines, line)
				break
			}
		}
		line = nil
	}
	for _, t := range tokens {
		if t.IsNewline() {
			emit()
		} else {
			line = append(line, t)
		}
	}
	emit()
	return lines
}

// NormalizeLabel returns a label's canonical comparison form. Underscores
// are equivalent to blank spaces, so "B._zephyrum" and "B. zephyrum" name
// the same taxon.
func NormalizeLabel(label string) string {
	return strings.ReplaceAll(label, " ", "_")
}

// EqualLabels compares two taxon or character labels under label
// normalization.
func EqualLabels(a, b string) bool {
	return NormalizeLabel(a) == NormalizeLabel(b)
}

// QuoteIfNeeded renders a word as a NEXUS token, quoting it when it contains
// whitespace, punctuation, brackets or quotes.
func QuoteIfNeeded(word string) string {
	if word == "" {
		return "''"
	}
	if strings.ContainsAny(word, Whitespace+Punctuation+"[]'") {
		return "'" + strings.ReplaceAll(word, "'", "''") + "'"
	}
	return word
}

// ParseBool interprets the boolean spellings NEXUS files use.
func ParseBool(word string) (value, ok bool) {
	switch strings.ToLower(word) {
	case "yes", "1", "true":
		return true, true
	case "no", "0", "false":
		return false, true
	}
	return false, false
}
