/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package block

import (
	"fmt"
	"strings"

	"bennypowers.dev/nexus/document"
	"bennypowers.dev/nexus/newick"
	"bennypowers.dev/nexus/tokenizer"
)

// Tree is one TREE command of a TREES block.
type Tree struct {
	// Name is the tree's label.
	Name string

	// Default marks a "TREE * name" entry.
	Default bool

	// Rooted is true for [&R], false for [&U], nil when unstated.
	Rooted *bool

	// source is the newick text exactly as written.
	source string
}

// Newick parses the tree's newick description.
func (t *Tree) Newick() (*newick.Node, error) {
	return newick.Parse(t.source)
}

// Source returns the newick text exactly as written.
func (t *Tree) Source() string { return t.source }

// Trees is the parsed view of a TREES block.
type Trees struct {
	block *document.Block
	taxa  *Taxa
	trees []*Tree

	// translate is built once per view on first use.
	translate map[string]string
}

// ParseTrees builds a Trees view of a TREES block.
func ParseTrees(b *document.Block) (*Trees, error) {
	tr := &Trees{block: b}
	taxa, err := LinkedTaxa(b)
	if err != nil {
		return nil, err
	}
	tr.taxa = taxa
	for _, cmd := range b.CommandsNamed("TREE") {
		tree, err := parseTree(cmd)
		if err != nil {
			return nil, err
		}
		tr.trees = append(tr.trees, tree)
	}
	return tr, nil
}

// Trees returns the block's trees in source order.
func (tr *Trees) Trees() []*Tree { return tr.trees }

// Tree returns the named tree, or the first one for an empty name.
func (tr *Trees) Tree(name string) (*Tree, bool) {
	if name == "" && len(tr.trees) > 0 {
		return tr.trees[0], true
	}
	for _, t := range tr.trees {
		if tokenizer.EqualLabels(t.Name, name) {
			return t, true
		}
	}
	return nil, false
}

// Taxa returns the taxa tree leaves resolve against; nil when the document
// defines none.
func (tr *Trees) Taxa() *Taxa { return tr.taxa }

// parseTree reads "TREE [*] name = [&R] (...)".
func parseTree(cmd document.Command) (*Tree, error) {
	tokens := cmd.Payload()
	tree := &Tree{}

	// Name portion, up to the equals sign.
	i := 0
	for ; i < len(tokens); i++ {
		t := tokens[i]
		if t.Kind == tokenizer.Punct && t.Text == "=" {
			i++
			break
		}
		switch {
		case t.Kind == tokenizer.Punct && t.Text == "*":
			tree.Default = true
		case t.Kind == tokenizer.Word || t.Kind == tokenizer.Quoted:
			if tree.Name != "" {
				return nil, fmt.Errorf("%w: TREE name %q followed by %q", ErrBadPayload, tree.Name, t.Text)
			}
			tree.Name = t.Text
		}
	}
	if tree.Name == "" {
		return nil, fmt.Errorf("%w: TREE without a name", ErrBadPayload)
	}

	// Optional rooting comment, then the newick text verbatim.
	for ; i < len(tokens); i++ {
		t := tokens[i]
		if t.Kind == tokenizer.Space {
			continue
		}
		if t.Kind == tokenizer.Comment && tree.Rooted == nil {
			switch strings.ToUpper(strings.TrimSpace(t.Text)) {
			case "&R":
				rooted := true
				tree.Rooted = &rooted
				continue
			case "&U":
				rooted := false
				tree.Rooted = &rooted
				continue
			}
		}
		break
	}
	tree.source = strings.TrimSpace(tokenizer.Text(tokens[i:]))
	if tree.source == "" {
		return nil, fmt.Errorf("%w: TREE %s has no newick description", ErrBadPayload, tree.Name)
	}
	return tree, nil
}

// Translate returns the block's TRANSLATE mapping. The map is built on
// first use and reused for the lifetime of the view.
func (tr *Trees) Translate() (map[string]string, error) {
	if tr.translate != nil {
		return tr.translate, nil
	}
	mapping := make(map[string]string)
	if cmd, ok := tr.block.Command("TRANSLATE"); ok {
		for _, entry := range splitOnComma(tokenizer.Words(cmd.Payload(), "")) {
			if len(entry) == 0 {
				continue
			}
			if len(entry) < 2 {
				return nil, fmt.Errorf("%w: TRANSLATE entry %q", ErrBadPayload, entry[0].Text)
			}
			mapping[entry[0].Text] = entry[1].Text
		}
	}
	tr.translate = mapping
	return mapping, nil
}

// Resolve parses a tree and maps every leaf name to its taxon label,
// through the TRANSLATE table first and the linked taxa second. A leaf
// that matches neither is an error when the document declares taxa.
func (tr *Trees) Resolve(t *Tree) (*newick.Node, error) {
	node, err := t.Newick()
	if err != nil {
		return nil, err
	}
	translate, err := tr.Translate()
	if err != nil {
		return nil, err
	}
	var unresolved error
	node.Walk(func(n *newick.Node) {
		if !n.IsLeaf() || n.Name == "" || unresolved != nil {
			return
		}
		if label, ok := translate[n.Name]; ok {
			n.Name = label
			return
		}
		if tr.taxa == nil {
			return
		}
		label, ok := tr.taxa.Resolve(n.Name)
		if !ok {
			unresolved = fmt.Errorf("%w: tree %s leaf %q", ErrUnresolvedTaxon, t.Name, n.Name)
			return
		}
		n.Name = label
	})
	if unresolved != nil {
		return nil, unresolved
	}
	return node, nil
}

// NewTrees synthesizes a TREES block. A TRANSLATE command is emitted when
// translate is non-empty, with numeric keys in order.
func NewTrees(trees []*Tree, translate []string, opts *document.BlockOptions) ([]document.Command, error) {
	var specs []document.CommandSpec
	if len(translate) > 0 {
		var b strings.Builder
		for i, label := range translate {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(fmt.Sprintf("\n    %d %s", i+1, tokenizer.QuoteIfNeeded(label)))
		}
		specs = append(specs, document.CommandSpec{Name: "TRANSLATE", Payload: b.String()})
	}
	for _, t := range trees {
		var payload strings.Builder
		if t.Default {
			payload.WriteString("* ")
		}
		payload.WriteString(tokenizer.QuoteIfNeeded(t.Name))
		payload.WriteString(" = ")
		if t.Rooted != nil {
			if *t.Rooted {
				payload.WriteString("[&R] ")
			} else {
				payload.WriteString("[&U] ")
			}
		}
		payload.WriteString(t.source)
		specs = append(specs, document.CommandSpec{Name: "TREE", Payload: payload.String()})
	}
	return document.NewBlock("TREES", specs, opts)
}

// NewTree builds a Tree for synthesis from a parsed newick node.
func NewTree(name string, rooted *bool, node *newick.Node) *Tree {
	return &Tree{Name: name, Rooted: rooted, source: node.Newick()}
}
