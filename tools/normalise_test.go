/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package tools_test

import (
	"strings"
	"testing"

	"bennypowers.dev/nexus/document"
	"bennypowers.dev/nexus/tools"
)

func mustParse(t *testing.T, src string) *document.Document {
	t.Helper()
	doc, err := document.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

const messy = `#NEXUS
BEGIN TAXA;
    DIMENSIONS NTAX=3;
    TAXLABELS a b c;
END;
BEGIN DATA;
    DIMENSIONS NCHAR=4;
    FORMAT SYMBOLS="01" MATCHCHAR=. INTERLEAVE;
    MATRIX
    a 01
    b .1
    c 10
    a 10
    b 1.
    c 01;
END;
BEGIN TREES;
    TRANSLATE 1 a, 2 b, 3 c;
    TREE best = [&R] ((1,2),3);
END;
`

func TestNormalise(t *testing.T) {
	out, err := tools.Normalise(mustParse(t, messy))
	if err != nil {
		t.Fatal(err)
	}
	text := out.String()

	// DATA becomes CHARACTERS, interleaving and matchchars resolve.
	if strings.Contains(text, "BEGIN DATA") {
		t.Error("DATA block survived normalisation")
	}
	if !strings.Contains(text, "b 0110") {
		t.Errorf("matchchar row not resolved:\n%s", text)
	}
	// Tree leaves resolve to labels, the TRANSLATE table goes away.
	if strings.Contains(text, "TRANSLATE") {
		t.Error("TRANSLATE survived normalisation")
	}
	if !strings.Contains(text, "((a,b),c)") {
		t.Errorf("tree leaves not translated:\n%s", text)
	}
	if !strings.Contains(text, "[&R]") {
		t.Error("rooting annotation lost")
	}
}

func TestNormaliseIdempotent(t *testing.T) {
	once, err := tools.Normalise(mustParse(t, messy))
	if err != nil {
		t.Fatal(err)
	}
	twice, err := tools.Normalise(mustParse(t, once.String()))
	if err != nil {
		t.Fatal(err)
	}
	if once.String() != twice.String() {
		t.Errorf("normal form is not stable:\nonce:\n%s\ntwice:\n%s", once.String(), twice.String())
	}
}

func TestNormaliseExtractsTaxa(t *testing.T) {
	src := `#NEXUS
BEGIN DATA;
DIMENSIONS NCHAR=2;
FORMAT SYMBOLS="01";
MATRIX a 01 b 10;
END;
`
	out, err := tools.Normalise(mustParse(t, src))
	if err != nil {
		t.Fatal(err)
	}
	blocks := out.Blocks()
	if len(blocks) != 2 || blocks[0].Name() != "TAXA" {
		t.Fatalf("expected a TAXA block ahead of CHARACTERS:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "TAXLABELS a b;") {
		t.Errorf("extracted labels wrong:\n%s", out.String())
	}
}

func TestNormaliseKeepsOpaqueBlocks(t *testing.T) {
	src := `#NEXUS
BEGIN TAXA;
TAXLABELS a;
END;
BEGIN ASSUMPTIONS;
    OPTIONS DEFTYPE = unord;
END;
`
	out, err := tools.Normalise(mustParse(t, src))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "    OPTIONS DEFTYPE = unord;") {
		t.Errorf("opaque block not preserved verbatim:\n%s", out.String())
	}
}

func TestNormaliseKeepsTitleAndLink(t *testing.T) {
	src := `#NEXUS
BEGIN TAXA;
TITLE primates;
TAXLABELS a b;
END;
BEGIN CHARACTERS;
LINK TAXA = primates;
DIMENSIONS NCHAR=1;
MATRIX a 0 b 1;
END;
`
	out, err := tools.Normalise(mustParse(t, src))
	if err != nil {
		t.Fatal(err)
	}
	b, err := out.BlockNamed("CHARACTERS")
	if err != nil {
		t.Fatal(err)
	}
	name, title, ok := b.Link()
	if !ok || name != "TAXA" || title != "PRIMATES" {
		t.Errorf("Link() = %q, %q, %v", name, title, ok)
	}
}
