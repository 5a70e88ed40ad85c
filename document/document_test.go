/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package document_test

import (
	"errors"
	"strings"
	"testing"

	"bennypowers.dev/nexus/document"
)

const fixture = `#NEXUS
BEGIN TAXA;
    DIMENSIONS NTAX=3;
    TAXLABELS a b c;
END;
BEGIN TREES;
    TREE best = (a,(b,c));
END;
`

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"two blocks", fixture},
		{"leading comment", "[file note]\n#NEXUS\nBEGIN TAXA;\nEND;"},
		{"lowercase header", "#nexus\nbegin taxa;\nend;"},
		{"trailing junk", "#NEXUS\nBEGIN TAXA;\nEND;\ntrailing words"},
		{"comments between commands", "#NEXUS\nBEGIN TAXA; [note]\nEND;"},
		{"endblock", "#NEXUS\nBEGIN TAXA;\nENDBLOCK;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := document.Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if got := doc.String(); got != tt.src {
				t.Errorf("String() = %q, want %q", got, tt.src)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"no header", "BEGIN TAXA;\nEND;", document.ErrNoHeader},
		{"empty", "", document.ErrNoHeader},
		{"unterminated block", "#NEXUS\nBEGIN TAXA;\nTAXLABELS a;", document.ErrUnterminatedBlock},
		{"begin inside block", "#NEXUS\nBEGIN TAXA;\nBEGIN TREES;\nEND;", document.ErrMalformedBegin},
		{"begin without name", "#NEXUS\nBEGIN ;\nEND;", document.ErrMalformedBegin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := document.Parse(tt.src)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBlocks(t *testing.T) {
	doc, err := document.Parse(fixture)
	if err != nil {
		t.Fatal(err)
	}
	blocks := doc.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].Name() != "TAXA" || blocks[1].Name() != "TREES" {
		t.Errorf("block names = %s, %s", blocks[0].Name(), blocks[1].Name())
	}
	if got := len(blocks[0].Commands()); got != 2 {
		t.Errorf("TAXA block has %d interior commands, want 2", got)
	}
}

func TestBlockNamed(t *testing.T) {
	doc, err := document.Parse(fixture)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := doc.BlockNamed("trees"); err != nil {
		t.Errorf("BlockNamed is not case-insensitive: %v", err)
	}
	_, err = doc.BlockNamed("CHARACTERS")
	if !errors.Is(err, document.ErrBlockNotFound) {
		t.Errorf("missing block error = %v, want ErrBlockNotFound", err)
	}
}

func TestBlockAt(t *testing.T) {
	src := "#NEXUS\nBEGIN TAXA;\nTAXLABELS a;\nEND;\nBEGIN TAXA;\nTAXLABELS b;\nEND;"
	doc, err := document.Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	second, err := doc.BlockAt("TAXA", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(second.String(), "TAXLABELS b") {
		t.Errorf("BlockAt(TAXA, 1) = %q", second.String())
	}
	if _, err := doc.BlockAt("TAXA", 2); !errors.Is(err, document.ErrBlockNotFound) {
		t.Errorf("out of range error = %v", err)
	}
}

func TestBlockTitleAndLink(t *testing.T) {
	src := "#NEXUS\nBEGIN TAXA;\nTITLE primates;\nTAXLABELS a;\nEND;\n" +
		"BEGIN CHARACTERS;\nLINK TAXA = primates;\nDIMENSIONS NCHAR=1;\nMATRIX a 0;\nEND;"
	doc, err := document.Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	taxa, err := doc.BlockNamed("TAXA")
	if err != nil {
		t.Fatal(err)
	}
	if got := taxa.Title(); got != "PRIMATES" {
		t.Errorf("Title() = %q, want PRIMATES", got)
	}
	chars, err := doc.BlockNamed("CHARACTERS")
	if err != nil {
		t.Fatal(err)
	}
	name, title, ok := chars.Link()
	if !ok || name != "TAXA" || title != "PRIMATES" {
		t.Errorf("Link() = %q, %q, %v", name, title, ok)
	}
}

func TestCommandPayload(t *testing.T) {
	doc, err := document.Parse("#NEXUS\nBEGIN TAXA;\nDIMENSIONS [n] NTAX=3;\nEND;")
	if err != nil {
		t.Fatal(err)
	}
	b, err := doc.BlockNamed("TAXA")
	if err != nil {
		t.Fatal(err)
	}
	cmd, ok := b.Command("DIMENSIONS")
	if !ok {
		t.Fatal("DIMENSIONS not found")
	}
	if got := cmd.Name(); got != "DIMENSIONS" {
		t.Errorf("Name() = %q", got)
	}
	if got := cmd.PayloadString(); !strings.Contains(got, "NTAX=3") {
		t.Errorf("PayloadString() = %q, want it to contain NTAX=3", got)
	}
}

func TestEdits(t *testing.T) {
	doc, err := document.Parse(fixture)
	if err != nil {
		t.Fatal(err)
	}

	cmds, err := document.NewBlock("NOTES", []document.CommandSpec{
		{Name: "TEXT", Payload: "TAXON=1 TEXT='a note'"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	doc.AppendBlock(cmds)
	if _, err := doc.BlockNamed("NOTES"); err != nil {
		t.Fatalf("appended block not found: %v", err)
	}

	trees, err := doc.BlockNamed("TREES")
	if err != nil {
		t.Fatal(err)
	}
	doc.RemoveBlock(trees)
	if _, err := doc.BlockNamed("TREES"); !errors.Is(err, document.ErrBlockNotFound) {
		t.Errorf("removed block still present: %v", err)
	}

	taxa, err := doc.BlockNamed("TAXA")
	if err != nil {
		t.Fatal(err)
	}
	if err := doc.AppendCommand(taxa, "TAXSET", "all = 1-3"); err != nil {
		t.Fatal(err)
	}
	taxa, err = doc.BlockNamed("TAXA")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := taxa.Command("TAXSET"); !ok {
		t.Error("appended command not inside block")
	}

	// Untouched regions survive the edits verbatim.
	if !strings.Contains(doc.String(), "    TAXLABELS a b c;") {
		t.Errorf("original spelling lost:\n%s", doc.String())
	}
}

func TestNewCommand(t *testing.T) {
	tests := []struct {
		name    string
		cmd     string
		payload string
		wantErr bool
	}{
		{"plain", "DIMENSIONS", "NTAX=3", false},
		{"already terminated", "DIMENSIONS", "NTAX=3;", false},
		{"interior semicolon", "MATRIX", "a 01; b 10", true},
		{"multi-word name", "TWO WORDS", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := document.NewCommand(tt.cmd, tt.payload, "")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasSuffix(cmd.String(), ";") {
				t.Errorf("synthesized command not terminated: %q", cmd.String())
			}
		})
	}
}

func TestWithoutComments(t *testing.T) {
	doc, err := document.Parse("#NEXUS\nBEGIN TREES;\nTREE t = [&R] (a,b) [note];\nEND;")
	if err != nil {
		t.Fatal(err)
	}
	b, err := doc.BlockNamed("TREES")
	if err != nil {
		t.Fatal(err)
	}
	cmd, _ := b.Command("TREE")
	stripped := cmd.WithoutComments().String()
	if strings.Contains(stripped, "[note]") {
		t.Errorf("comment survived: %q", stripped)
	}
	if !strings.Contains(stripped, "[&R]") {
		t.Errorf("command comment should survive: %q", stripped)
	}
}
