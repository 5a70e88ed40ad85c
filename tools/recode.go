/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package tools

import (
	"fmt"
	"sort"

	"bennypowers.dev/nexus/block"
	"bennypowers.dev/nexus/document"
)

// symbolPool is the alphabet multistate recoding draws state symbols from.
const symbolPool = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// charactersBlock finds the document's CHARACTERS block, accepting DATA as
// the historical alias.
func charactersBlock(doc *document.Document) (*document.Block, error) {
	if b, err := doc.BlockNamed("CHARACTERS"); err == nil {
		return b, nil
	}
	if b, err := doc.BlockNamed("DATA"); err == nil {
		return b, nil
	}
	return nil, ErrNoCharacters
}

// DistinctStates returns the ordered distinct state symbols observed for
// each character. Missing and gap cells contribute nothing.
func DistinctStates(m *block.Matrix) [][]string {
	states := make([][]string, len(m.Characters()))
	seen := make([]map[string]bool, len(m.Characters()))
	for i := range seen {
		seen[i] = make(map[string]bool)
	}
	for _, taxon := range m.Taxa() {
		for ci, cell := range m.Row(taxon) {
			if cell.Missing || cell.Gap {
				continue
			}
			for _, s := range cell.Symbols {
				if !seen[ci][s] {
					seen[ci][s] = true
					states[ci] = append(states[ci], s)
				}
			}
		}
	}
	for ci := range states {
		sort.Strings(states[ci])
	}
	return states
}

// Binarise recodes the document's character matrix so that every observed
// state of every character becomes its own presence/absence character,
// named "char_state". Missing data stays missing across all the derived
// characters; gaps read as absence.
func Binarise(doc *document.Document) error {
	b, err := charactersBlock(doc)
	if err != nil {
		return err
	}
	c, err := block.ParseCharacters(b)
	if err != nil {
		return err
	}
	m, err := c.Matrix()
	if err != nil {
		return err
	}

	states := DistinctStates(m)
	var chars []string
	for ci, name := range m.Characters() {
		for _, s := range states[ci] {
			chars = append(chars, name+"_"+s)
		}
	}

	out := block.NewMatrix(chars)
	for _, taxon := range m.Taxa() {
		row := make([]block.State, 0, len(chars))
		for ci, cell := range m.Row(taxon) {
			for _, s := range states[ci] {
				switch {
				case cell.Missing:
					row = append(row, block.State{Missing: true})
				case contains(cell.Symbols, s):
					row = append(row, block.State{Symbols: []string{"1"}})
				default:
					row = append(row, block.State{Symbols: []string{"0"}})
				}
			}
		}
		out.SetRow(taxon, row)
	}

	cmds, err := block.NewCharacters(b.Name(), out, carryOptions(b))
	if err != nil {
		return err
	}
	doc.ReplaceBlock(b, cmds)
	return nil
}

// Multistatise collapses a presence/absence matrix into a single
// multistate character named label: every original character gets one
// symbol from the pool, and a taxon's cell holds the symbols of the
// characters it scores 1 for. A taxon with no presences reads as missing.
func Multistatise(doc *document.Document, label string) error {
	b, err := charactersBlock(doc)
	if err != nil {
		return err
	}
	c, err := block.ParseCharacters(b)
	if err != nil {
		return err
	}
	m, err := c.Matrix()
	if err != nil {
		return err
	}
	if len(m.Characters()) > len(symbolPool) {
		return fmt.Errorf("%w: %d characters, %d symbols", ErrSymbolPool, len(m.Characters()), len(symbolPool))
	}

	out := block.NewMatrix([]string{label})
	for _, taxon := range m.Taxa() {
		var cell block.State
		for ci, orig := range m.Row(taxon) {
			if contains(orig.Symbols, "1") {
				cell.Symbols = append(cell.Symbols, string(symbolPool[ci]))
			}
		}
		if len(cell.Symbols) == 0 {
			cell = block.State{Missing: true}
		}
		out.SetRow(taxon, []block.State{cell})
	}

	cmds, err := block.NewCharacters(b.Name(), out, carryOptions(b))
	if err != nil {
		return err
	}
	doc.ReplaceBlock(b, cmds)
	return nil
}

func contains(symbols []string, s string) bool {
	for _, symbol := range symbols {
		if symbol == s {
			return true
		}
	}
	return false
}
