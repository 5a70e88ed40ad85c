/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package block_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"bennypowers.dev/nexus/block"
	"bennypowers.dev/nexus/document"
)

func parseDoc(t *testing.T, src string) *document.Document {
	t.Helper()
	doc, err := document.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func mustBlock(t *testing.T, doc *document.Document, name string) *document.Block {
	t.Helper()
	b, err := doc.BlockNamed(name)
	if err != nil {
		t.Fatalf("BlockNamed(%s): %v", name, err)
	}
	return b
}

func TestParseTaxa(t *testing.T) {
	doc := parseDoc(t, `#NEXUS
BEGIN TAXA;
DIMENSIONS NTAX=3;
TAXLABELS Homo_sapiens 'Pan troglodytes' Gorilla;
END;`)
	taxa, err := block.ParseTaxa(mustBlock(t, doc, "TAXA"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Homo_sapiens", "Pan troglodytes", "Gorilla"}
	if !reflect.DeepEqual(taxa.Labels(), want) {
		t.Errorf("Labels() = %v, want %v", taxa.Labels(), want)
	}
	if taxa.Ntax() != 3 {
		t.Errorf("Ntax() = %d", taxa.Ntax())
	}
}

func TestParseTaxaErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{
			"ntax mismatch",
			"#NEXUS\nBEGIN TAXA;\nDIMENSIONS NTAX=2;\nTAXLABELS a b c;\nEND;",
			block.ErrDimensionMismatch,
		},
		{
			"duplicate label",
			"#NEXUS\nBEGIN TAXA;\nTAXLABELS a b a;\nEND;",
			block.ErrDuplicateTaxon,
		},
		{
			"underscore collides with space",
			"#NEXUS\nBEGIN TAXA;\nTAXLABELS Homo_sapiens 'Homo sapiens';\nEND;",
			block.ErrDuplicateTaxon,
		},
		{
			"missing taxlabels",
			"#NEXUS\nBEGIN TAXA;\nDIMENSIONS NTAX=2;\nEND;",
			block.ErrMissingCommand,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, tt.src)
			_, err := block.ParseTaxa(mustBlock(t, doc, "TAXA"))
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseTaxa error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTaxaResolve(t *testing.T) {
	doc := parseDoc(t, "#NEXUS\nBEGIN TAXA;\nTAXLABELS 'Homo sapiens' Pan Gorilla;\nEND;")
	taxa, err := block.ParseTaxa(mustBlock(t, doc, "TAXA"))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		ref  string
		want string
		ok   bool
	}{
		{"Pan", "Pan", true},
		{"pan", "", false},
		{"Homo_sapiens", "Homo sapiens", true},
		{"2", "Pan", true},
		{"0", "", false},
		{"4", "", false},
		{"Mus", "", false},
	}
	for _, tt := range tests {
		got, ok := taxa.Resolve(tt.ref)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.ref, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNewTaxa(t *testing.T) {
	cmds, err := block.NewTaxa([]string{"Homo sapiens", "Pan"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	doc := document.New()
	doc.AppendBlock(cmds)
	text := doc.String()
	for _, want := range []string{"NTAX=2", "'Homo sapiens'", "Pan"} {
		if !strings.Contains(text, want) {
			t.Errorf("synthesized TAXA lacks %q:\n%s", want, text)
		}
	}
	// The synthesized block parses back to the same labels.
	taxa, err := block.ParseTaxa(mustBlock(t, doc, "TAXA"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(taxa.Labels(), []string{"Homo sapiens", "Pan"}) {
		t.Errorf("re-parsed labels = %v", taxa.Labels())
	}
}

func TestLinkedTaxa(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    string // first expected label, "" for nil taxa
		wantErr error
	}{
		{
			"single taxa block",
			"#NEXUS\nBEGIN TAXA;\nTAXLABELS a b;\nEND;\nBEGIN CHARACTERS;\nDIMENSIONS NCHAR=1;\nMATRIX a 0 b 1;\nEND;",
			"a", nil,
		},
		{
			"explicit link",
			"#NEXUS\nBEGIN TAXA;\nTITLE first;\nTAXLABELS a b;\nEND;\n" +
				"BEGIN TAXA;\nTITLE second;\nTAXLABELS c d;\nEND;\n" +
				"BEGIN CHARACTERS;\nLINK TAXA = second;\nDIMENSIONS NCHAR=1;\nMATRIX c 0 d 1;\nEND;",
			"c", nil,
		},
		{
			"untitled preceding block",
			"#NEXUS\nBEGIN TAXA;\nTITLE named;\nTAXLABELS a b;\nEND;\n" +
				"BEGIN TAXA;\nTAXLABELS c d;\nEND;\n" +
				"BEGIN CHARACTERS;\nDIMENSIONS NCHAR=1;\nMATRIX c 0 d 1;\nEND;",
			"c", nil,
		},
		{
			"link to missing title",
			"#NEXUS\nBEGIN TAXA;\nTITLE first;\nTAXLABELS a;\nEND;\n" +
				"BEGIN CHARACTERS;\nLINK TAXA = nosuch;\nDIMENSIONS NCHAR=1;\nMATRIX a 0;\nEND;",
			"", block.ErrAmbiguousTaxaLink,
		},
		{
			"two titled blocks no link",
			"#NEXUS\nBEGIN TAXA;\nTITLE first;\nTAXLABELS a;\nEND;\n" +
				"BEGIN TAXA;\nTITLE second;\nTAXLABELS b;\nEND;\n" +
				"BEGIN TREES;\nTREE t = (a);\nEND;\n" +
				"BEGIN CHARACTERS;\nDIMENSIONS NCHAR=1;\nMATRIX a 0;\nEND;",
			"", block.ErrAmbiguousTaxaLink,
		},
		{
			"no taxa block",
			"#NEXUS\nBEGIN CHARACTERS;\nDIMENSIONS NTAX=1 NCHAR=1;\nTAXLABELS a;\nMATRIX a 0;\nEND;",
			"", nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, tt.src)
			taxa, err := block.LinkedTaxa(mustBlock(t, doc, "CHARACTERS"))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LinkedTaxa error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tt.want == "" {
				if taxa != nil {
					t.Fatalf("expected nil taxa, got %v", taxa.Labels())
				}
				return
			}
			if taxa == nil || taxa.Labels()[0] != tt.want {
				t.Errorf("LinkedTaxa first label = %v, want %q", taxa, tt.want)
			}
		})
	}
}

func TestOpaque(t *testing.T) {
	for name, want := range map[string]bool{
		"UNALIGNED":   true,
		"ASSUMPTIONS": true,
		"CODONS":      true,
		"TAXA":        false,
		"CHARACTERS":  false,
	} {
		if got := block.Opaque(name); got != want {
			t.Errorf("Opaque(%s) = %v, want %v", name, got, want)
		}
	}
}
