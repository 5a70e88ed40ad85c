/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package tokenizer lexes NEXUS text into typed tokens.
//
// NEXUS tokenization differs from most line-oriented formats: square-bracket
// comments nest and may appear inside a word without breaking it, single
// quotes escape by doubling, and a fixed set of punctuation characters always
// forms one-character tokens. Whitespace and comments are emitted as tokens
// of their own so that the original text can be reproduced byte-for-byte.
package tokenizer

import (
	"fmt"
	"strings"
)

// Quote is the NEXUS quoting character.
const Quote = '\''

// Punctuation is the set of characters that form one-character tokens when
// they appear outside quotes. Square brackets are handled separately because
// they delimit comments and do not break words.
const Punctuation = `(){}/\,;:=*"+-<>`

// Whitespace is the set of NEXUS whitespace characters.
const Whitespace = "\t\r\n "

// Kind classifies a token.
type Kind int

const (
	// Word is a run of dark characters not containing whitespace or
	// punctuation.
	Word Kind = iota

	// Quoted is a single-quoted word; Text holds the unescaped content.
	Quoted

	// Comment is a square-bracket comment; Text holds the content without
	// the outer brackets.
	Comment

	// Punct is a single punctuation character.
	Punct

	// Space is a run of whitespace.
	Space
)

// String returns a readable name for the kind.
func (k Kind) String() string {
	switch k {
	case Word:
		return "WORD"
	case Quoted:
		return "QUOTED"
	case Comment:
		return "COMMENT"
	case Punct:
		return "PUNCTUATION"
	case Space:
		return "WHITESPACE"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexical unit of a NEXUS document.
type Token struct {
	// Text is the token content. For Quoted tokens the doubled quotes are
	// already collapsed; for Comment tokens the outer brackets are stripped.
	Text string

	// Kind classifies the token.
	Kind Kind

	// Pos is the byte offset of the token start in the source text.
	// Synthesized tokens have Pos -1.
	Pos int
}

// NewToken returns a synthesized token with no source position.
func NewToken(text string, kind Kind) Token {
	return Token{Text: text, Kind: kind, Pos: -1}
}

// String renders the token in its original NEXUS spelling. Concatenating the
// String of every token of a document reproduces the document exactly.
func (t Token) String() string {
	switch t.Kind {
	case Comment:
		return "[" + t.Text + "]"
	case Quoted:
		return string(Quote) + strings.ReplaceAll(t.Text, "'", "''") + string(Quote)
	}
	return t.Text
}

// IsSemicolon reports whether the token is the command terminator.
func (t Token) IsSemicolon() bool {
	return t.Kind == Punct && t.Text == ";"
}

// IsNewline reports whether the token is whitespace containing a line break.
// Newlines are significant inside interleaved matrices.
func (t Token) IsNewline() bool {
	return t.Kind == Space && strings.ContainsAny(t.Text, "\r\n")
}

// LexError reports malformed input: an unterminated quote or comment.
type LexError struct {
	Pos int
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at offset %d: %s", e.Pos, e.Msg)
}

// Scanner produces tokens lazily from a string. The zero value is not usable;
// call NewScanner. A Scanner may be re-created over the same text at any
// time; it keeps no state beyond its cursor.
type Scanner struct {
	src string
	pos int
}

// NewScanner returns a scanner over src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isPunct(c byte) bool {
	return strings.IndexByte(Punctuation, c) >= 0
}

// Next returns the next token. The boolean is false at end of input.
func (s *Scanner) Next() (Token, bool, error) {
	if s.pos >= len(s.src) {
		return Token{}, false, nil
	}
	start := s.pos
	c := s.src[s.pos]

	switch {
	case c == Quote:
		text, err := s.scanQuoted()
		if err != nil {
			return Token{}, false, err
		}
		return Token{Text: text, Kind: Quoted, Pos: start}, true, nil

	case c == '[':
		text, err := s.scanComment()
		if err != nil {
			return Token{}, false, err
		}
		return Token{Text: text, Kind: Comment, Pos: start}, true, nil

	case c == ']':
		return Token{}, false, &LexError{Pos: start, Msg: "unmatched ']'"}

	case isSpace(c):
		for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
			s.pos++
		}
		return Token{Text: s.src[start:s.pos], Kind: Space, Pos: start}, true, nil

	case isPunct(c):
		s.pos++
		return Token{Text: s.src[start:s.pos], Kind: Punct, Pos: start}, true, nil
	}

	for s.pos < len(s.src) {
		c = s.src[s.pos]
		if isSpace(c) || isPunct(c) || c == Quote || c == '[' || c == ']' {
			break
		}
		s.pos++
	}
	return Token{Text: s.src[start:s.pos], Kind: Word, Pos: start}, true, nil
}

// scanQuoted consumes a quoted word starting at the opening quote. Doubled
// quotes are collapsed to one.
func (s *Scanner) scanQuoted() (string, error) {
	start := s.pos
	s.pos++ // opening quote
	var b strings.Builder
	for {
		if s.pos >= len(s.src) {
			return "", &LexError{Pos: start, Msg: "unterminated quoted word"}
		}
		c := s.src[s.pos]
		if c != Quote {
			b.WriteByte(c)
			s.pos++
			continue
		}
		// Closing quote, unless doubled.
		if s.pos+1 < len(s.src) && s.src[s.pos+1] == Quote {
			b.WriteByte(Quote)
			s.pos += 2
			continue
		}
		s.pos++
		return b.String(), nil
	}
}

// scanComment consumes a bracket comment starting at '['. Brackets nest: the
// comment ends when the bracket count returns to zero. The outer brackets
// are not part of the returned text.
func (s *Scanner) scanComment() (string, error) {
	start := s.pos
	s.pos++ // opening bracket
	level := 1
	var b strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		s.pos++
		switch c {
		case '[':
			level++
		case ']':
			level--
			if level == 0 {
				return b.String(), nil
			}
		}
		b.WriteByte(c)
	}
	return "", &LexError{Pos: start, Msg: "unterminated comment"}
}

// Tokenize lexes the whole input and returns the token sequence.
func Tokenize(src string) ([]Token, error) {
	s := NewScanner(src)
	var tokens []Token
	for {
		tok, ok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// Text re-serializes a token sequence.
func Text(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.String())
	}
	return b.String()
}
