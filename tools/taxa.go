/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package tools

import (
	"fmt"

	"bennypowers.dev/nexus/block"
	"bennypowers.dev/nexus/document"
	"bennypowers.dev/nexus/newick"
	"bennypowers.dev/nexus/tokenizer"
)

// TaxaLabels returns the document's taxon labels: the first TAXA block's,
// or the row labels of the first character matrix when no TAXA block
// exists.
func TaxaLabels(doc *document.Document) ([]string, error) {
	if b, err := doc.BlockNamed("TAXA"); err == nil {
		t, err := block.ParseTaxa(b)
		if err != nil {
			return nil, err
		}
		return t.Labels(), nil
	}
	b, err := charactersBlock(doc)
	if err != nil {
		return nil, err
	}
	c, err := block.ParseCharacters(b)
	if err != nil {
		return nil, err
	}
	m, err := c.Matrix()
	if err != nil {
		return nil, err
	}
	return m.Taxa(), nil
}

// rewrite is a planned block replacement. Rewrites are planned against the
// unmodified document and applied afterwards, re-locating each block by
// name and ordinal so earlier replacements do not invalidate later ones.
type rewrite struct {
	name  string
	index int
	cmds  []document.Command
}

func applyRewrites(doc *document.Document, rewrites []rewrite) error {
	for _, r := range rewrites {
		b, err := doc.BlockAt(r.name, r.index)
		if err != nil {
			return err
		}
		doc.ReplaceBlock(b, r.cmds)
	}
	return nil
}

// DropTaxa removes taxa from the document, cascading through TAXA,
// CHARACTERS, DISTANCES, TREES, NOTES and TAXSET definitions. Blocks that
// do not reference a dropped taxon are left byte-for-byte intact. A name
// matching no taxon anywhere is an error.
func DropTaxa(doc *document.Document, names []string) error {
	matched := make([]bool, len(names))
	hit := func(label string) bool {
		ok := false
		for i, n := range names {
			if tokenizer.EqualLabels(n, label) {
				matched[i] = true
				ok = true
			}
		}
		return ok
	}

	var rewrites []rewrite
	counts := make(map[string]int)
	for _, b := range doc.Blocks() {
		index := counts[b.Name()]
		counts[b.Name()]++

		cmds, changed, err := dropFromBlock(doc, b, hit)
		if err != nil {
			return fmt.Errorf("%s block: %w", b.Name(), err)
		}
		if changed {
			rewrites = append(rewrites, rewrite{b.Name(), index, cmds})
		}
	}
	for i, ok := range matched {
		if !ok {
			return fmt.Errorf("%w: %q", block.ErrUnresolvedTaxon, names[i])
		}
	}
	return applyRewrites(doc, rewrites)
}

func dropFromBlock(doc *document.Document, b *document.Block, hit func(string) bool) ([]document.Command, bool, error) {
	opts := carryOptions(b)
	switch b.Name() {
	case "TAXA":
		t, err := block.ParseTaxa(b)
		if err != nil {
			return nil, false, err
		}
		var kept []string
		for _, label := range t.Labels() {
			if !hit(label) {
				kept = append(kept, label)
			}
		}
		if len(kept) == t.Ntax() {
			return nil, false, nil
		}
		cmds, err := block.NewTaxa(kept, opts)
		return cmds, true, err

	case "CHARACTERS", "DATA":
		c, err := block.ParseCharacters(b)
		if err != nil {
			return nil, false, err
		}
		m, err := c.Matrix()
		if err != nil {
			return nil, false, err
		}
		var dropped []string
		for _, taxon := range m.Taxa() {
			if hit(taxon) {
				dropped = append(dropped, taxon)
			}
		}
		if len(dropped) == 0 {
			return nil, false, nil
		}
		for _, taxon := range dropped {
			m.DropTaxon(taxon)
		}
		cmds, err := block.NewCharacters(b.Name(), m, opts)
		return cmds, true, err

	case "DISTANCES":
		d, err := block.ParseDistances(b)
		if err != nil {
			return nil, false, err
		}
		m, err := d.Matrix()
		if err != nil {
			return nil, false, err
		}
		var kept []string
		for _, taxon := range m.Taxa() {
			if !hit(taxon) {
				kept = append(kept, taxon)
			}
		}
		if len(kept) == len(m.Taxa()) {
			return nil, false, nil
		}
		out := block.NewDistanceMatrix(kept)
		for _, a := range kept {
			for _, c := range kept {
				if v, ok := m.Value(a, c); ok {
					out.Set(a, c, v)
				}
			}
		}
		cmds, err := block.NewDistances(out, opts)
		return cmds, true, err

	case "TREES":
		tr, err := block.ParseTrees(b)
		if err != nil {
			return nil, false, err
		}
		var trees []*block.Tree
		changed := false
		for _, t := range tr.Trees() {
			node, err := tr.Resolve(t)
			if err != nil {
				return nil, false, err
			}
			var prune []string
			for _, leaf := range node.Leaves() {
				if hit(leaf.Name) {
					prune = append(prune, leaf.Name)
				}
			}
			if len(prune) > 0 {
				node.Prune(prune...)
				changed = true
			}
			resolved := block.NewTree(t.Name, t.Rooted, node)
			resolved.Default = t.Default
			trees = append(trees, resolved)
		}
		if !changed {
			return nil, false, nil
		}
		cmds, err := block.NewTrees(trees, nil, opts)
		return cmds, true, err

	case "NOTES":
		n, err := block.ParseNotes(b)
		if err != nil {
			return nil, false, err
		}
		linked, err := block.LinkedTaxa(b)
		if err != nil {
			return nil, false, err
		}
		var kept []*block.Note
		changed := false
		for _, note := range n.Notes() {
			labels, err := note.ResolveTaxa(linked)
			if err != nil {
				return nil, false, err
			}
			var surviving []string
			for _, label := range labels {
				if !hit(label) {
					surviving = append(surviving, label)
				}
			}
			if len(surviving) == len(labels) {
				kept = append(kept, note)
				continue
			}
			changed = true
			if len(surviving) == 0 && len(labels) > 0 {
				continue // the note annotated only dropped taxa
			}
			copied := *note
			copied.Taxa = surviving
			kept = append(kept, &copied)
		}
		if !changed {
			return nil, false, nil
		}
		cmds, err := block.NewNotes(kept, opts)
		return cmds, true, err

	case "SETS":
		return dropFromSets(doc, b, hit, opts)

	default:
		return nil, false, nil
	}
}

// dropFromSets renumbers TAXSET definitions after a drop. When the sets
// cannot be resolved (no linked taxa, no character dimensions) the block is
// left alone rather than corrupted.
func dropFromSets(doc *document.Document, b *document.Block, hit func(string) bool, opts *document.BlockOptions) ([]document.Command, bool, error) {
	s, err := block.ParseSets(b)
	if err != nil {
		return nil, false, err
	}
	if len(s.Taxsets()) == 0 {
		return nil, false, nil
	}
	linked, err := block.LinkedTaxa(b)
	if err != nil || linked == nil {
		return nil, false, nil
	}
	labels := linked.Labels()

	newPos := make(map[string]int, len(labels))
	pos := 0
	for _, label := range labels {
		if !hit(label) {
			pos++
			newPos[label] = pos
		}
	}

	var taxsets []block.NamedPositions
	changed := false
	for _, set := range s.Taxsets() {
		old, err := set.Positions(len(labels))
		if err != nil {
			return nil, false, nil
		}
		var positions []int
		for _, p := range old {
			if np, kept := newPos[labels[p-1]]; kept {
				positions = append(positions, np)
			} else {
				changed = true
			}
		}
		if pos != len(labels) {
			changed = true
		}
		taxsets = append(taxsets, block.NamedPositions{Name: set.Name, Positions: positions})
	}
	if !changed {
		return nil, false, nil
	}

	var charsets []block.NamedPositions
	if cb, err := charactersBlock(doc); err == nil {
		if c, err := block.ParseCharacters(cb); err == nil {
			for _, set := range s.Charsets() {
				positions, err := set.Positions(c.Nchar())
				if err != nil {
					return nil, false, nil
				}
				charsets = append(charsets, block.NamedPositions{Name: set.Name, Positions: positions})
			}
		}
	}
	cmds, err := block.NewSets(charsets, taxsets, opts)
	return cmds, true, err
}

// RenameTaxon relabels a taxon everywhere it appears: TAXA, matrix rows,
// distance rows and columns, tree leaves and note references. Blocks that
// do not mention the taxon stay untouched.
func RenameTaxon(doc *document.Document, from, to string) error {
	found := false
	var rewrites []rewrite
	counts := make(map[string]int)
	for _, b := range doc.Blocks() {
		index := counts[b.Name()]
		counts[b.Name()]++

		cmds, changed, err := renameInBlock(b, from, to)
		if err != nil {
			return fmt.Errorf("%s block: %w", b.Name(), err)
		}
		if changed {
			found = true
			rewrites = append(rewrites, rewrite{b.Name(), index, cmds})
		}
	}
	if !found {
		return fmt.Errorf("%w: %q", block.ErrUnresolvedTaxon, from)
	}
	return applyRewrites(doc, rewrites)
}

// MapTaxa relabels every taxon through the given function, cascading each
// rename the way RenameTaxon does. Labels the function returns unchanged,
// or maps to the empty string, are left alone.
func MapTaxa(doc *document.Document, rename func(string) string) error {
	labels, err := TaxaLabels(doc)
	if err != nil {
		return err
	}
	for _, label := range labels {
		to := rename(label)
		if to == "" || to == label {
			continue
		}
		if err := RenameTaxon(doc, label, to); err != nil {
			return err
		}
	}
	return nil
}

func renameInBlock(b *document.Block, from, to string) ([]document.Command, bool, error) {
	opts := carryOptions(b)
	switch b.Name() {
	case "TAXA":
		t, err := block.ParseTaxa(b)
		if err != nil {
			return nil, false, err
		}
		labels := make([]string, t.Ntax())
		changed := false
		for i, label := range t.Labels() {
			labels[i] = label
			if tokenizer.EqualLabels(label, from) {
				labels[i] = to
				changed = true
			}
		}
		if !changed {
			return nil, false, nil
		}
		cmds, err := block.NewTaxa(labels, opts)
		return cmds, true, err

	case "CHARACTERS", "DATA":
		c, err := block.ParseCharacters(b)
		if err != nil {
			return nil, false, err
		}
		m, err := c.Matrix()
		if err != nil {
			return nil, false, err
		}
		target, ok := matchTaxon(m.Taxa(), from)
		if !ok {
			return nil, false, nil
		}
		m.RenameTaxon(target, to)
		cmds, err := block.NewCharacters(b.Name(), m, opts)
		return cmds, true, err

	case "DISTANCES":
		d, err := block.ParseDistances(b)
		if err != nil {
			return nil, false, err
		}
		m, err := d.Matrix()
		if err != nil {
			return nil, false, err
		}
		target, ok := matchTaxon(m.Taxa(), from)
		if !ok {
			return nil, false, nil
		}
		relabel := func(t string) string {
			if t == target {
				return to
			}
			return t
		}
		labels := make([]string, 0, len(m.Taxa()))
		for _, t := range m.Taxa() {
			labels = append(labels, relabel(t))
		}
		out := block.NewDistanceMatrix(labels)
		for _, a := range m.Taxa() {
			for _, c := range m.Taxa() {
				if v, ok := m.Value(a, c); ok {
					out.Set(relabel(a), relabel(c), v)
				}
			}
		}
		cmds, err := block.NewDistances(out, opts)
		return cmds, true, err

	case "TREES":
		tr, err := block.ParseTrees(b)
		if err != nil {
			return nil, false, err
		}
		var trees []*block.Tree
		changed := false
		for _, t := range tr.Trees() {
			node, err := tr.Resolve(t)
			if err != nil {
				return nil, false, err
			}
			for _, leaf := range node.Leaves() {
				if tokenizer.EqualLabels(leaf.Name, from) {
					node.Rename(map[string]string{leaf.Name: to})
					changed = true
					break
				}
			}
			resolved := block.NewTree(t.Name, t.Rooted, node)
			resolved.Default = t.Default
			trees = append(trees, resolved)
		}
		if !changed {
			return nil, false, nil
		}
		cmds, err := block.NewTrees(trees, nil, opts)
		return cmds, true, err

	case "NOTES":
		n, err := block.ParseNotes(b)
		if err != nil {
			return nil, false, err
		}
		linked, err := block.LinkedTaxa(b)
		if err != nil {
			return nil, false, err
		}
		changed := false
		var notes []*block.Note
		for _, note := range n.Notes() {
			labels, err := note.ResolveTaxa(linked)
			if err != nil {
				return nil, false, err
			}
			renamed := false
			for i, label := range labels {
				if tokenizer.EqualLabels(label, from) {
					labels[i] = to
					renamed = true
				}
			}
			if !renamed {
				notes = append(notes, note)
				continue
			}
			changed = true
			copied := *note
			copied.Taxa = labels
			notes = append(notes, &copied)
		}
		if !changed {
			return nil, false, nil
		}
		cmds, err := block.NewNotes(notes, opts)
		return cmds, true, err

	default:
		return nil, false, nil
	}
}

func matchTaxon(taxa []string, ref string) (string, bool) {
	for _, t := range taxa {
		if tokenizer.EqualLabels(t, ref) {
			return t, true
		}
	}
	return "", false
}

// Check parses every typed block and reports everything wrong with the
// document: unresolvable links, dimension mismatches, duplicate or unknown
// taxa, unparsable trees.
func Check(doc *document.Document) []error {
	var errs []error
	report := func(b *document.Block, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s block: %w", b.Name(), err))
		}
	}
	for _, b := range doc.Blocks() {
		switch b.Name() {
		case "TAXA":
			_, err := block.ParseTaxa(b)
			report(b, err)
		case "CHARACTERS", "DATA":
			c, err := block.ParseCharacters(b)
			if err != nil {
				report(b, err)
				continue
			}
			_, err = c.Matrix()
			report(b, err)
		case "DISTANCES":
			d, err := block.ParseDistances(b)
			if err != nil {
				report(b, err)
				continue
			}
			_, err = d.Matrix()
			report(b, err)
		case "TREES":
			tr, err := block.ParseTrees(b)
			if err != nil {
				report(b, err)
				continue
			}
			for _, t := range tr.Trees() {
				if _, err := tr.Resolve(t); err != nil {
					report(b, err)
				}
			}
		case "NOTES":
			n, err := block.ParseNotes(b)
			if err != nil {
				report(b, err)
				continue
			}
			linked, err := block.LinkedTaxa(b)
			if err != nil {
				report(b, err)
				continue
			}
			for _, note := range n.Notes() {
				if _, err := note.ResolveTaxa(linked); err != nil {
					report(b, err)
				}
			}
		case "SETS":
			_, err := block.ParseSets(b)
			report(b, err)
		}
	}
	return errs
}

// StripTreeComments removes newick comments from every tree in the
// document, keeping the rooting annotation.
func StripTreeComments(doc *document.Document) error {
	var rewrites []rewrite
	counts := make(map[string]int)
	for _, b := range doc.Blocks() {
		index := counts[b.Name()]
		counts[b.Name()]++
		if b.Name() != "TREES" {
			continue
		}
		tr, err := block.ParseTrees(b)
		if err != nil {
			return err
		}
		var trees []*block.Tree
		changed := false
		for _, t := range tr.Trees() {
			node, err := t.Newick()
			if err != nil {
				return err
			}
			node.Walk(func(n *newick.Node) {
				if n.Comment != "" {
					n.Comment = ""
					changed = true
				}
			})
			stripped := block.NewTree(t.Name, t.Rooted, node)
			stripped.Default = t.Default
			trees = append(trees, stripped)
		}
		if !changed {
			continue
		}
		translate := translateOrder(tr)
		cmds, err := block.NewTrees(trees, translate, carryOptions(b))
		if err != nil {
			return err
		}
		rewrites = append(rewrites, rewrite{b.Name(), index, cmds})
	}
	return applyRewrites(doc, rewrites)
}

// translateOrder reproduces a numeric TRANSLATE table in key order, so a
// rewrite that keeps leaf numbers intact keeps the mapping too.
func translateOrder(tr *block.Trees) []string {
	mapping, err := tr.Translate()
	if err != nil || len(mapping) == 0 {
		return nil
	}
	ordered := make([]string, 0, len(mapping))
	for i := 1; ; i++ {
		label, ok := mapping[fmt.Sprint(i)]
		if !ok {
			break
		}
		ordered = append(ordered, label)
	}
	if len(ordered) != len(mapping) {
		return nil
	}
	return ordered
}
