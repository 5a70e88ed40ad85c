/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package newick_test

import (
	"errors"
	"reflect"
	"testing"

	"bennypowers.dev/nexus/newick"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string // "" means identical to src
	}{
		{"leaf", "a", ""},
		{"cherry", "(a,b)", ""},
		{"nested", "((a,b),(c,d))", ""},
		{"lengths", "(a:0.10,b:2)root:0.0", ""},
		{"named internal", "(a,b)anc", ""},
		{"quoted label", "('two words',b)", ""},
		{"doubled quote", "('it''s',b)", ""},
		{"comment on node", "(a[note],b)", ""},
		{"trailing semicolon", "(a,b);", "(a,b)"},
		{"whitespace", "( a , b )", "(a,b)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := newick.Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			want := tt.want
			if want == "" {
				want = tt.src
			}
			if got := node.Newick(); got != want {
				t.Errorf("Newick() = %q, want %q", got, want)
			}
		})
	}
}

func TestParseLengthsAreLiteral(t *testing.T) {
	node, err := newick.Parse("(a:0.1000,b:1e-3)")
	if err != nil {
		t.Fatal(err)
	}
	leaves := node.Leaves()
	if leaves[0].Length != "0.1000" || leaves[1].Length != "1e-3" {
		t.Errorf("lengths = %q, %q", leaves[0].Length, leaves[1].Length)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated subtree", "(a,b"},
		{"trailing input", "(a,b) junk"},
		{"unterminated quote", "('abc"},
		{"missing length", "(a:,b)"},
		{"unterminated comment", "a[note"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newick.Parse(tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			var pe *newick.ParseError
			if !errors.As(err, &pe) {
				t.Errorf("error type = %T", err)
			}
		})
	}
}

func TestLeaves(t *testing.T) {
	node, err := newick.Parse("((a,b)x,(c,d)y)")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, l := range node.Leaves() {
		names = append(names, l.Name)
	}
	if want := []string{"a", "b", "c", "d"}; !reflect.DeepEqual(names, want) {
		t.Errorf("leaf names = %v, want %v", names, want)
	}
}

func TestRename(t *testing.T) {
	node, err := newick.Parse("((a,b),c)")
	if err != nil {
		t.Fatal(err)
	}
	node.Rename(map[string]string{"a": "Homo sapiens", "c": "Pan"})
	if got := node.Newick(); got != "(('Homo sapiens',b),Pan)" {
		t.Errorf("Newick() = %q", got)
	}
}

func TestPrune(t *testing.T) {
	tests := []struct {
		name string
		src  string
		drop []string
		want string
	}{
		{"drop one leaf", "(a,b,c)", []string{"b"}, "(a,c)"},
		{"collapse unnamed internal", "((a,b),c)", []string{"b"}, "(a,c)"},
		{"named internal survives", "((a,b)x,c)", []string{"b"}, "((a)x,c)"},
		{"drop whole subtree", "((a,b),c)", []string{"a", "b"}, "(c)"},
		{"absent name is a no-op", "(a,b)", []string{"z"}, "(a,b)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := newick.Parse(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			node.Prune(tt.drop...)
			if got := node.Newick(); got != tt.want {
				t.Errorf("after Prune(%v): %q, want %q", tt.drop, got, tt.want)
			}
		})
	}
}
