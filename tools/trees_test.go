/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package tools_test

import (
	"strings"
	"testing"

	"bennypowers.dev/nexus/tools"
)

func TestRenameTree(t *testing.T) {
	doc := mustParse(t, `#NEXUS
BEGIN TAXA;
    TAXLABELS a b;
END;
BEGIN TREES;
    TRANSLATE
        1 a,
        2 b;
    TREE old = [&R] (1,2);
    TREE other = (2,1);
END;
`)
	if err := tools.RenameTree(doc, "old", "new"); err != nil {
		t.Fatal(err)
	}
	text := doc.String()
	if !strings.Contains(text, "TREE new = [&R] (1,2);") {
		t.Errorf("tree not renamed:\n%s", text)
	}
	if strings.Contains(text, "TREE old") {
		t.Error("old name survived")
	}
	// The newick text keeps its leaf numbers, so the TRANSLATE table must
	// survive the rewrite.
	if !strings.Contains(text, "TRANSLATE") || !strings.Contains(text, "1 a") {
		t.Errorf("TRANSLATE lost:\n%s", text)
	}
	if !strings.Contains(text, "TREE other = (2,1);") {
		t.Errorf("sibling tree damaged:\n%s", text)
	}
}

func TestRenameTreeUnknown(t *testing.T) {
	doc := mustParse(t, `#NEXUS
BEGIN TAXA;
    TAXLABELS a;
END;
BEGIN TREES;
    TREE only = (a);
END;
`)
	if err := tools.RenameTree(doc, "missing", "x"); err == nil {
		t.Error("expected an error for an unknown tree")
	}
}
