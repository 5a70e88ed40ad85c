/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package normalise_test

import (
	"bytes"
	"strings"
	"testing"

	"bennypowers.dev/nexus/cmd/normalise"
)

func TestNormaliseStdin(t *testing.T) {
	in := strings.NewReader(`#NEXUS
BEGIN TAXA;
	DIMENSIONS NTAX=2;
	TAXLABELS a b;
END;
BEGIN DATA;
	DIMENSIONS NTAX=2 NCHAR=2;
	FORMAT DATATYPE=STANDARD MATCHCHAR=.;
	MATRIX
		a 01
		b .1;
END;
`)
	var out bytes.Buffer

	cmd := normalise.Cmd
	cmd.SetIn(in)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got := out.String()
	if !strings.HasPrefix(got, "#NEXUS") {
		t.Errorf("output does not start with #NEXUS:\n%s", got)
	}
	if strings.Contains(got, "BEGIN DATA") {
		t.Errorf("DATA block survived normalisation:\n%s", got)
	}
	if !strings.Contains(got, "BEGIN CHARACTERS") {
		t.Errorf("no CHARACTERS block in output:\n%s", got)
	}
	if !strings.Contains(got, "b 01") {
		t.Errorf("match characters not substituted:\n%s", got)
	}
}

func TestNormaliseBadInput(t *testing.T) {
	cmd := normalise.Cmd
	cmd.SetIn(strings.NewReader("not a nexus file"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for input without a #NEXUS header")
	}
}
