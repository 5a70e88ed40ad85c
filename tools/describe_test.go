/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package tools_test

import (
	"reflect"
	"strings"
	"testing"

	"bennypowers.dev/nexus/tools"
)

func TestDescribe(t *testing.T) {
	doc := mustParse(t, `#NEXUS
BEGIN TAXA;
    TITLE primates;
    TAXLABELS a b c;
END;
BEGIN CHARACTERS;
    DIMENSIONS NCHAR=2;
    FORMAT DATATYPE=DNA;
    MATRIX
    a AC
    b AG
    c A-;
END;
BEGIN TREES;
    TREE t = [&R] (a,(b,c));
END;
BEGIN SETS;
    CHARSET all = 1-2;
END;
`)
	summaries := tools.Describe(doc)
	if len(summaries) != 4 {
		t.Fatalf("got %d summaries", len(summaries))
	}
	if summaries[0].Block != "TAXA" || summaries[0].Title != "PRIMATES" {
		t.Errorf("summary 0 = %+v", summaries[0])
	}
	if !reflect.DeepEqual(summaries[0].Facts, []string{"3 taxa"}) {
		t.Errorf("taxa facts = %v", summaries[0].Facts)
	}
	if !reflect.DeepEqual(summaries[1].Facts, []string{"2 characters", "datatype DNA", "3 rows"}) {
		t.Errorf("characters facts = %v", summaries[1].Facts)
	}
	if !reflect.DeepEqual(summaries[2].Facts, []string{"1 trees", "1 rooted"}) {
		t.Errorf("trees facts = %v", summaries[2].Facts)
	}
	if !reflect.DeepEqual(summaries[3].Facts, []string{"1 charsets", "0 taxsets"}) {
		t.Errorf("sets facts = %v", summaries[3].Facts)
	}
}

func TestDescribeUnreadableBlock(t *testing.T) {
	doc := mustParse(t, `#NEXUS
BEGIN TAXA;
    DIMENSIONS NTAX=5;
    TAXLABELS a b;
END;
`)
	summaries := tools.Describe(doc)
	if len(summaries) != 1 {
		t.Fatal("expected one summary")
	}
	if len(summaries[0].Facts) != 1 || !strings.HasPrefix(summaries[0].Facts[0], "unreadable:") {
		t.Errorf("facts = %v", summaries[0].Facts)
	}
}

func TestDescribeTrees(t *testing.T) {
	doc := mustParse(t, `#NEXUS
BEGIN TAXA;
    TAXLABELS a b c;
END;
BEGIN TREES;
    TREE big = [&R] (a,(b,c));
    TREE flat = [&U] (a,b,c);
    TREE bare = (a,b);
END;
`)
	lines, err := tools.DescribeTrees(doc)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"big: 3 leaves, rooted",
		"flat: 3 leaves, unrooted",
		"bare: 2 leaves, rooting unknown",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("DescribeTrees = %v, want %v", lines, want)
	}
}

func TestDescribeCharacters(t *testing.T) {
	doc := mustParse(t, `#NEXUS
BEGIN TAXA;
    TAXLABELS a b;
END;
BEGIN CHARACTERS;
    DIMENSIONS NCHAR=2;
    CHARSTATELABELS 1 eyes, 2 legs;
    MATRIX
    a 01
    b 11;
END;
`)
	lines, err := tools.DescribeCharacters(doc)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"eyes: 2 states", "legs: 1 states"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("DescribeCharacters = %v, want %v", lines, want)
	}
}
