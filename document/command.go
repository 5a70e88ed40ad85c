/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package document

import (
	"fmt"
	"strings"

	"bennypowers.dev/nexus/tokenizer"
)

// Command is one semicolon-terminated token run inside a document. The final
// token is the terminating semicolon. Commands keep every token, including
// whitespace and comments, so a document re-serializes unchanged.
type Command []tokenizer.Token

// Name returns the uppercased command keyword. Comments inside the keyword
// are skipped per the NEXUS spec.
func (c Command) Name() string {
	return tokenizer.Name(c)
}

// IsBegin reports whether the command opens a block.
func (c Command) IsBegin() bool {
	return c.Name() == "BEGIN"
}

// IsEnd reports whether the command closes a block. ENDBLOCK is an accepted
// synonym used by MacClade, PAUP and COMPONENT.
func (c Command) IsEnd() bool {
	n := c.Name()
	return n == "END" || n == "ENDBLOCK"
}

// String re-serializes the command verbatim.
func (c Command) String() string {
	return tokenizer.Text(c)
}

// Payload returns the tokens between the command keyword and the terminating
// semicolon, with leading whitespace and comments dropped.
func (c Command) Payload() []tokenizer.Token {
	body := c
	if len(body) > 0 && body[len(body)-1].IsSemicolon() {
		body = body[:len(body)-1]
	}
	// Skip to the keyword, over it, then over one whitespace run.
	i := 0
	for i < len(body) && body[i].Kind != tokenizer.Word {
		i++
	}
	for i < len(body) && body[i].Kind != tokenizer.Space {
		i++
	}
	for i < len(body) && body[i].Kind == tokenizer.Space {
		i++
	}
	return body[i:]
}

// PayloadString renders the payload verbatim.
func (c Command) PayloadString() string {
	return tokenizer.Text(c.Payload())
}

// Comments returns the text of every comment token in the command.
func (c Command) Comments() []string {
	var comments []string
	for _, t := range c {
		if t.Kind == tokenizer.Comment {
			comments = append(comments, t.Text)
		}
	}
	return comments
}

// WithoutComments returns a copy of the command with all comments removed,
// except command comments (those starting with & or \), which carry data
// such as tree rooting.
func (c Command) WithoutComments() Command {
	out := make(Command, 0, len(c))
	for _, t := range c {
		if t.Kind == tokenizer.Comment && !strings.HasPrefix(t.Text, "&") && !strings.HasPrefix(t.Text, `\`) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// NewCommand synthesizes a command from a name and payload text. The payload
// is tokenized with full NEXUS rules so quoted words and comments survive.
// An optional comment is placed on its own line before the command.
func NewCommand(name, payload, comment string) (Command, error) {
	var cmd Command
	if comment != "" {
		cmd = append(cmd,
			tokenizer.NewToken("\n", tokenizer.Space),
			tokenizer.NewToken(comment, tokenizer.Comment))
	}
	cmd = append(cmd, tokenizer.NewToken("\n", tokenizer.Space))

	nameTokens, err := tokenizer.Tokenize(name)
	if err != nil {
		return nil, err
	}
	if len(nameTokens) != 1 || nameTokens[0].Kind != tokenizer.Word {
		return nil, fmt.Errorf("command name must be a single word, got %q", name)
	}
	cmd = append(cmd, nameTokens[0])

	terminated := false
	if payload != "" {
		cmd = append(cmd, tokenizer.NewToken(" ", tokenizer.Space))
		payloadTokens, err := tokenizer.Tokenize(payload)
		if err != nil {
			return nil, err
		}
		for i, t := range payloadTokens {
			if t.IsSemicolon() {
				if i != len(payloadTokens)-1 {
					return nil, fmt.Errorf("payload for %s contains an interior semicolon", name)
				}
				terminated = true
			}
		}
		cmd = append(cmd, payloadTokens...)
	}
	if !terminated {
		cmd = append(cmd, tokenizer.NewToken(";", tokenizer.Punct))
	}
	return cmd, nil
}

// MustCommand is NewCommand for static inputs known to be well formed.
func MustCommand(name, payload string) Command {
	cmd, err := NewCommand(name, payload, "")
	if err != nil {
		panic(err)
	}
	return cmd
}
