/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package block

import (
	"fmt"
	"strings"

	"bennypowers.dev/nexus/document"
	"bennypowers.dev/nexus/tokenizer"
)

// DistanceFormat is the parsed FORMAT command of a DISTANCES block.
type DistanceFormat struct {
	// Triangle is UPPER, LOWER or BOTH.
	Triangle   string
	Diagonal   bool
	Labels     bool
	Missing    string
	Interleave bool
}

// ParseDistanceFormat reads a DISTANCES FORMAT command. A nil command
// yields the defaults: lower triangle, diagonal present, labels on.
func ParseDistanceFormat(cmd document.Command) (*DistanceFormat, error) {
	f := &DistanceFormat{
		Triangle: "LOWER",
		Diagonal: true,
		Labels:   true,
		Missing:  "?",
	}
	if cmd == nil {
		return f, nil
	}
	items := tokenizer.NewItems(cmd.Payload(), "")
	for {
		item, ok := items.Next()
		if !ok {
			return f, nil
		}
		if !item.IsWord() {
			continue
		}
		switch strings.ToUpper(item.Text) {
		case "TRIANGLE":
			word, ok := items.AfterEquals()
			if !ok {
				return nil, fmt.Errorf("%w: FORMAT TRIANGLE", ErrBadPayload)
			}
			f.Triangle = strings.ToUpper(word)
			switch f.Triangle {
			case "UPPER", "LOWER", "BOTH":
			default:
				return nil, fmt.Errorf("%w: FORMAT TRIANGLE=%s", ErrBadPayload, f.Triangle)
			}
		case "DIAGONAL":
			f.Diagonal = true
		case "NODIAGONAL":
			f.Diagonal = false
		case "LABELS":
			f.Labels = true
			consumeOptionalValue(items)
		case "NOLABELS":
			f.Labels = false
		case "MISSING":
			word, ok := items.AfterEquals()
			if !ok {
				return nil, fmt.Errorf("%w: FORMAT MISSING", ErrBadPayload)
			}
			f.Missing = word
		case "INTERLEAVE":
			f.Interleave = true
			consumeOptionalValue(items)
		}
	}
}

// DistanceMatrix is a full taxon-by-taxon distance matrix. Values are the
// literal decimal strings from the source, so re-serialization does not
// reformat numbers. The missing symbol is preserved as written.
type DistanceMatrix struct {
	taxa   []string
	values map[string]map[string]string
}

// NewDistanceMatrix builds an empty matrix with the given taxon order.
func NewDistanceMatrix(taxa []string) *DistanceMatrix {
	values := make(map[string]map[string]string, len(taxa))
	for _, t := range taxa {
		values[t] = make(map[string]string, len(taxa))
	}
	return &DistanceMatrix{taxa: taxa, values: values}
}

// Taxa returns the taxon order.
func (m *DistanceMatrix) Taxa() []string { return m.taxa }

// Value returns the distance between two taxa.
func (m *DistanceMatrix) Value(a, b string) (string, bool) {
	row, ok := m.values[a]
	if !ok {
		return "", false
	}
	v, ok := row[b]
	return v, ok
}

// Set stores one distance.
func (m *DistanceMatrix) Set(a, b, value string) {
	if m.values[a] == nil {
		m.values[a] = make(map[string]string)
	}
	m.values[a][b] = value
}

// Distances is the parsed view of a DISTANCES block.
type Distances struct {
	block  *document.Block
	Format *DistanceFormat

	ntax int
	taxa *Taxa
}

// ParseDistances builds a Distances view. NTAX comes from DIMENSIONS or,
// failing that, from the block's taxa.
func ParseDistances(b *document.Block) (*Distances, error) {
	d := &Distances{block: b}

	formatCmd, _ := b.Command("FORMAT")
	format, err := ParseDistanceFormat(formatCmd)
	if err != nil {
		return nil, err
	}
	d.Format = format

	if _, hasOwn := b.Command("TAXLABELS"); hasOwn {
		d.taxa, err = ParseTaxa(b)
	} else {
		d.taxa, err = LinkedTaxa(b)
	}
	if err != nil {
		return nil, err
	}

	ntax, ok, err := dimension(b, "NTAX")
	if err != nil {
		return nil, err
	}
	switch {
	case ok:
		d.ntax = ntax
	case d.taxa != nil:
		d.ntax = d.taxa.Ntax()
	default:
		return nil, fmt.Errorf("%w: DIMENSIONS NTAX in %s block", ErrMissingCommand, b.Name())
	}
	if d.taxa != nil && d.taxa.Ntax() != d.ntax {
		return nil, fmt.Errorf("%w: NTAX=%d but %d taxa", ErrDimensionMismatch, d.ntax, d.taxa.Ntax())
	}
	return d, nil
}

// Ntax returns the taxon count.
func (d *Distances) Ntax() int { return d.ntax }

// Taxa returns the taxa the matrix rows are checked against.
func (d *Distances) Taxa() *Taxa { return d.taxa }

// expectedCols returns how many values row i (0-based) carries under the
// block's triangle and diagonal settings.
func (d *Distances) expectedCols(i int) int {
	switch d.Format.Triangle {
	case "BOTH":
		return d.ntax
	case "UPPER":
		n := d.ntax - i
		if !d.Format.Diagonal {
			n--
		}
		return n
	default: // LOWER
		n := i
		if d.Format.Diagonal {
			n++
		}
		return n
	}
}

// Matrix parses the MATRIX command and reconstructs the full symmetric
// matrix: triangular input is mirrored, and an absent diagonal reads as 0.
func (d *Distances) Matrix() (*DistanceMatrix, error) {
	cmd, ok := d.block.Command("MATRIX")
	if !ok {
		return nil, fmt.Errorf("%w: MATRIX in %s block", ErrMissingCommand, d.block.Name())
	}

	labels, rows, err := d.readRows(cmd)
	if err != nil {
		return nil, err
	}
	if len(rows) != d.ntax {
		return nil, fmt.Errorf("%w: matrix has %d rows, NTAX=%d", ErrDimensionMismatch, len(rows), d.ntax)
	}
	for i, row := range rows {
		if len(row) != d.expectedCols(i) {
			return nil, fmt.Errorf("%w: row %q has %d values, expected %d",
				ErrDimensionMismatch, labels[i], len(row), d.expectedCols(i))
		}
	}

	m := NewDistanceMatrix(labels)
	for i, row := range rows {
		for k, value := range row {
			var j int
			switch d.Format.Triangle {
			case "BOTH":
				j = k
			case "UPPER":
				j = i + k
				if !d.Format.Diagonal {
					j++
				}
			default: // LOWER
				j = k
			}
			m.Set(labels[i], labels[j], value)
			if d.Format.Triangle != "BOTH" && i != j {
				m.Set(labels[j], labels[i], value)
			}
		}
	}
	if !d.Format.Diagonal || d.Format.Triangle != "BOTH" {
		for _, t := range labels {
			if _, ok := m.Value(t, t); !ok {
				m.Set(t, t, "0")
			}
		}
	}
	return m, nil
}

// readRows consumes the matrix token stream row by row, honoring
// interleaving and optional labels.
func (d *Distances) readRows(cmd document.Command) ([]string, [][]string, error) {
	labels := make([]string, 0, d.ntax)
	rows := make([][]string, 0, d.ntax)
	index := make(map[string]int, d.ntax)

	addLabel := func(raw string) (int, error) {
		label := raw
		if d.taxa != nil {
			resolved, ok := d.taxa.Resolve(raw)
			if !ok {
				return 0, fmt.Errorf("%w: matrix row %q", ErrUnresolvedTaxon, raw)
			}
			label = resolved
		}
		if i, seen := index[label]; seen {
			return i, nil
		}
		index[label] = len(labels)
		labels = append(labels, label)
		rows = append(rows, nil)
		return len(labels) - 1, nil
	}

	payload := cmd.Payload()
	if !d.Format.Interleave {
		items := tokenizer.NewItems(payload, "+-")
		for i := 0; i < d.ntax; i++ {
			row := i
			if d.Format.Labels {
				item, ok := items.Next()
				if !ok {
					break
				}
				var err error
				row, err = addLabel(item.Text)
				if err != nil {
					return nil, nil, err
				}
			} else {
				if _, err := addLabel(d.taxonByIndex(i)); err != nil {
					return nil, nil, err
				}
			}
			for len(rows[row]) < d.expectedCols(row) {
				item, ok := items.Next()
				if !ok {
					return nil, nil, fmt.Errorf("%w: matrix row %q truncated", ErrDimensionMismatch, labels[row])
				}
				rows[row] = append(rows[row], item.Text)
			}
		}
		return labels, rows, nil
	}

	for li, line := range tokenizer.Lines(payload) {
		items := tokenizer.NewItems(line, "+-")
		var row int
		var err error
		if d.Format.Labels {
			item, ok := items.Next()
			if !ok {
				continue
			}
			row, err = addLabel(item.Text)
		} else {
			row, err = addLabel(d.taxonByIndex(li % d.ntax))
		}
		if err != nil {
			return nil, nil, err
		}
		for _, item := range items.Rest() {
			rows[row] = append(rows[row], item.Text)
		}
	}
	return labels, rows, nil
}

func (d *Distances) taxonByIndex(i int) string {
	if d.taxa != nil && i < d.taxa.Ntax() {
		return d.taxa.Labels()[i]
	}
	return fmt.Sprintf("%d", i+1)
}

// NewDistances synthesizes a DISTANCES block from a full matrix, written
// in normalized form: TRIANGLE=BOTH with the diagonal present.
func NewDistances(m *DistanceMatrix, opts *document.BlockOptions) ([]document.Command, error) {
	width := 0
	for _, t := range m.taxa {
		if n := len(tokenizer.QuoteIfNeeded(t)); n > width {
			width = n
		}
	}
	var rows strings.Builder
	for _, a := range m.taxa {
		rows.WriteString("\n    ")
		rows.WriteString(fmt.Sprintf("%-*s", width, tokenizer.QuoteIfNeeded(a)))
		for _, b := range m.taxa {
			value, ok := m.Value(a, b)
			if !ok {
				value = "?"
			}
			rows.WriteString(" " + value)
		}
	}
	specs := []document.CommandSpec{
		{Name: "DIMENSIONS", Payload: fmt.Sprintf("NTAX=%d", len(m.taxa))},
		{Name: "FORMAT", Payload: "TRIANGLE=BOTH DIAGONAL LABELS MISSING=?"},
		{Name: "MATRIX", Payload: rows.String()},
	}
	return document.NewBlock("DISTANCES", specs, opts)
}
