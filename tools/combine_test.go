/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package tools_test

import (
	"errors"
	"reflect"
	"testing"

	"bennypowers.dev/nexus/block"
	"bennypowers.dev/nexus/tools"
)

func TestCombine(t *testing.T) {
	first := mustParse(t, `#NEXUS
BEGIN TAXA;
TAXLABELS a b;
END;
BEGIN CHARACTERS;
DIMENSIONS NCHAR=2;
CHARSTATELABELS 1 eyes, 2 legs;
MATRIX
a 01
b 10;
END;
`)
	second := mustParse(t, `#NEXUS
BEGIN TAXA;
TAXLABELS b c;
END;
BEGIN CHARACTERS;
DIMENSIONS NCHAR=1;
MATRIX
b 1
c 0;
END;
BEGIN TREES;
TREE t = (b,c);
END;
`)
	out, err := tools.Combine(first, second)
	if err != nil {
		t.Fatal(err)
	}

	labels, err := tools.TaxaLabels(out)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(labels, want) {
		t.Errorf("combined taxa = %v, want %v", labels, want)
	}

	b, err := out.BlockNamed("CHARACTERS")
	if err != nil {
		t.Fatal(err)
	}
	c, err := block.ParseCharacters(b)
	if err != nil {
		t.Fatal(err)
	}
	m, err := c.Matrix()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"1.eyes", "1.legs", "2.1"}; !reflect.DeepEqual(m.Characters(), want) {
		t.Errorf("combined characters = %v, want %v", m.Characters(), want)
	}
	// Taxon c is absent from the first matrix, a from the second: both pad
	// with missing.
	cRow := m.Row("c")
	if !cRow[0].Missing || !cRow[1].Missing || cRow[2].Symbols[0] != "0" {
		t.Errorf("row c = %v", cRow)
	}
	aRow := m.Row("a")
	if aRow[0].Symbols[0] != "0" || !aRow[2].Missing {
		t.Errorf("row a = %v", aRow)
	}

	tb, err := out.BlockNamed("TREES")
	if err != nil {
		t.Fatal(err)
	}
	tr, err := block.ParseTrees(tb)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.Tree("2.t"); !ok {
		t.Errorf("tree not carried with source prefix; have %v", tr.Trees())
	}
}

func TestCombineNothing(t *testing.T) {
	if _, err := tools.Combine(); !errors.Is(err, tools.ErrNothingToCombine) {
		t.Errorf("Combine() error = %v", err)
	}
}

func TestCombineSingle(t *testing.T) {
	doc := mustParse(t, "#NEXUS\nBEGIN TAXA;\nTAXLABELS a b;\nEND;")
	out, err := tools.Combine(doc)
	if err != nil {
		t.Fatal(err)
	}
	labels, err := tools.TaxaLabels(out)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(labels, []string{"a", "b"}) {
		t.Errorf("labels = %v", labels)
	}
}
