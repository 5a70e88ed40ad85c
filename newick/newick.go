/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package newick parses and renders parenthesized tree descriptions.
//
// The dialect is the one found inside NEXUS TREE commands: labels may be
// quoted with doubled-quote escaping, square-bracket comments may annotate
// any node, and a colon introduces a branch length.
package newick

import (
	"fmt"
	"strings"
)

// Node is one vertex of a tree. A node with no children is a leaf.
type Node struct {
	// Name is the node label, unquoted.
	Name string

	// Length is the branch length as written, "" when absent. Kept as a
	// literal so rendering does not reformat numbers.
	Length string

	// Comment is the text of a square-bracket annotation attached to the
	// node, without brackets, "" when absent.
	Comment string

	Children []*Node
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Walk visits the node and all descendants depth-first.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// Leaves returns the leaf nodes in tree order.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	n.Walk(func(node *Node) {
		if node.IsLeaf() {
			leaves = append(leaves, node)
		}
	})
	return leaves
}

// Rename substitutes node names according to the mapping. Names not in the
// mapping are left alone.
func (n *Node) Rename(names map[string]string) {
	n.Walk(func(node *Node) {
		if replacement, ok := names[node.Name]; ok {
			node.Name = replacement
		}
	})
}

// Prune removes the named leaves. Internal nodes left childless disappear;
// unnamed internal nodes left with a single child collapse into that child.
func (n *Node) Prune(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		drop[name] = true
	}
	n.prune(drop)
}

func (n *Node) prune(drop map[string]bool) {
	kept := n.Children[:0]
	for _, c := range n.Children {
		wasInternal := len(c.Children) > 0
		c.prune(drop)
		if c.IsLeaf() && drop[c.Name] {
			continue
		}
		if wasInternal && c.IsLeaf() && c.Name == "" {
			continue
		}
		if len(c.Children) == 1 && c.Name == "" {
			kept = append(kept, c.Children[0])
			continue
		}
		kept = append(kept, c)
	}
	n.Children = kept
}

// Newick renders the subtree without a trailing semicolon.
func (n *Node) Newick() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if len(n.Children) > 0 {
		b.WriteByte('(')
		for i, c := range n.Children {
			if i > 0 {
				b.WriteByte(',')
			}
			c.write(b)
		}
		b.WriteByte(')')
	}
	b.WriteString(quoteLabel(n.Name))
	if n.Comment != "" {
		b.WriteByte('[')
		b.WriteString(n.Comment)
		b.WriteByte(']')
	}
	if n.Length != "" {
		b.WriteByte(':')
		b.WriteString(n.Length)
	}
}

func quoteLabel(name string) string {
	if name == "" {
		return ""
	}
	if strings.ContainsAny(name, "()[]{}/\\,;:=*'\"`+-<> \t\r\n") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}

// ParseError reports malformed newick input.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("newick parse error at offset %d: %s", e.Pos, e.Msg)
}

type parser struct {
	src string
	pos int
}

// Parse reads one tree description. A trailing semicolon is accepted and
// ignored.
func Parse(src string) (*Node, error) {
	p := &parser{src: src}
	p.skipSpace()
	node, err := p.node()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ';' {
		p.pos++
		p.skipSpace()
	}
	if p.pos < len(p.src) {
		return nil, &ParseError{Pos: p.pos, Msg: "trailing input"}
	}
	return node, nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) node() (*Node, error) {
	n := &Node{}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '(' {
		p.pos++
		for {
			child, err := p.node()
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
			p.skipSpace()
			if p.pos >= len(p.src) {
				return nil, &ParseError{Pos: p.pos, Msg: "unterminated subtree"}
			}
			if p.src[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.src[p.pos] == ')' {
				p.pos++
				break
			}
			return nil, &ParseError{Pos: p.pos, Msg: fmt.Sprintf("unexpected %q in subtree", p.src[p.pos])}
		}
	}
	name, err := p.label()
	if err != nil {
		return nil, err
	}
	n.Name = name
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '[' {
		comment, err := p.comment()
		if err != nil {
			return nil, err
		}
		n.Comment = comment
	}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ':' {
		p.pos++
		p.skipSpace()
		n.Length = p.bareWord()
		if n.Length == "" {
			return nil, &ParseError{Pos: p.pos, Msg: "missing branch length after ':'"}
		}
	}
	return n, nil
}

func (p *parser) label() (string, error) {
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '\'' {
		return p.quoted()
	}
	return p.bareWord(), nil
}

func (p *parser) bareWord() string {
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune("()[],:; \t\r\n'", rune(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) quoted() (string, error) {
	start := p.pos
	p.pos++
	var b strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", &ParseError{Pos: start, Msg: "unterminated quoted label"}
		}
		c := p.src[p.pos]
		if c != '\'' {
			b.WriteByte(c)
			p.pos++
			continue
		}
		if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\'' {
			b.WriteByte('\'')
			p.pos += 2
			continue
		}
		p.pos++
		return b.String(), nil
	}
}

func (p *parser) comment() (string, error) {
	start := p.pos
	p.pos++
	level := 1
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++
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
	return "", &ParseError{Pos: start, Msg: "unterminated comment"}
}
