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
)

// Summary describes one block for human output.
type Summary struct {
	Block string
	Title string
	Facts []string
}

// Describe inventories the document's blocks. Blocks that fail to parse
// report the error as a fact rather than aborting the inventory.
func Describe(doc *document.Document) []Summary {
	var summaries []Summary
	for _, b := range doc.Blocks() {
		s := Summary{Block: b.Name(), Title: b.Title()}
		s.Facts = describeBlock(b)
		summaries = append(summaries, s)
	}
	return summaries
}

func describeBlock(b *document.Block) []string {
	fail := func(err error) []string {
		return []string{fmt.Sprintf("unreadable: %v", err)}
	}
	switch b.Name() {
	case "TAXA":
		t, err := block.ParseTaxa(b)
		if err != nil {
			return fail(err)
		}
		return []string{fmt.Sprintf("%d taxa", t.Ntax())}
	case "CHARACTERS", "DATA":
		c, err := block.ParseCharacters(b)
		if err != nil {
			return fail(err)
		}
		facts := []string{
			fmt.Sprintf("%d characters", c.Nchar()),
			fmt.Sprintf("datatype %s", c.Format.Datatype),
		}
		if m, err := c.Matrix(); err == nil {
			facts = append(facts, fmt.Sprintf("%d rows", len(m.Taxa())))
		} else {
			facts = append(facts, fmt.Sprintf("unreadable matrix: %v", err))
		}
		return facts
	case "DISTANCES":
		d, err := block.ParseDistances(b)
		if err != nil {
			return fail(err)
		}
		return []string{
			fmt.Sprintf("%d taxa", d.Ntax()),
			fmt.Sprintf("triangle %s", d.Format.Triangle),
		}
	case "TREES":
		tr, err := block.ParseTrees(b)
		if err != nil {
			return fail(err)
		}
		rooted := 0
		for _, t := range tr.Trees() {
			if t.Rooted != nil && *t.Rooted {
				rooted++
			}
		}
		facts := []string{fmt.Sprintf("%d trees", len(tr.Trees()))}
		if rooted > 0 {
			facts = append(facts, fmt.Sprintf("%d rooted", rooted))
		}
		return facts
	case "SETS":
		s, err := block.ParseSets(b)
		if err != nil {
			return fail(err)
		}
		return []string{
			fmt.Sprintf("%d charsets", len(s.Charsets())),
			fmt.Sprintf("%d taxsets", len(s.Taxsets())),
		}
	case "NOTES":
		n, err := block.ParseNotes(b)
		if err != nil {
			return fail(err)
		}
		return []string{fmt.Sprintf("%d notes", len(n.Notes()))}
	default:
		return []string{fmt.Sprintf("%d commands", len(b.Commands()))}
	}
}

// DescribeTrees lists the trees of every TREES block with leaf counts.
func DescribeTrees(doc *document.Document) ([]string, error) {
	var lines []string
	for _, b := range doc.Blocks() {
		if b.Name() != "TREES" {
			continue
		}
		tr, err := block.ParseTrees(b)
		if err != nil {
			return nil, err
		}
		for _, t := range tr.Trees() {
			node, err := tr.Resolve(t)
			if err != nil {
				return nil, err
			}
			rooting := "unrooted"
			if t.Rooted == nil {
				rooting = "rooting unknown"
			} else if *t.Rooted {
				rooting = "rooted"
			}
			lines = append(lines, fmt.Sprintf("%s: %d leaves, %s", t.Name, len(node.Leaves()), rooting))
		}
	}
	return lines, nil
}

// DescribeCharacters tabulates per-character distinct state counts for the
// document's character matrix.
func DescribeCharacters(doc *document.Document) ([]string, error) {
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
	states := DistinctStates(m)
	lines := make([]string, 0, len(m.Characters()))
	for ci, name := range m.Characters() {
		lines = append(lines, fmt.Sprintf("%s: %d states", name, len(states[ci])))
	}
	return lines, nil
}
