/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package block

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"bennypowers.dev/nexus/document"
	"bennypowers.dev/nexus/tokenizer"
)

// State is one cell of a character matrix.
type State struct {
	// Missing marks the missing-data symbol.
	Missing bool

	// Gap marks the gap symbol.
	Gap bool

	// Symbols holds the observed state symbols: one for a plain cell,
	// several for polymorphism or uncertainty.
	Symbols []string

	// Uncertain distinguishes a braced {..} state set (uncertainty) from a
	// parenthesized (..) one (polymorphism).
	Uncertain bool

	// match marks a matchchar cell before substitution.
	match bool
}

// IsSingle reports whether the cell holds exactly one observed symbol.
func (s State) IsSingle() bool {
	return !s.Missing && !s.Gap && len(s.Symbols) == 1
}

// String renders the cell the way a normalized matrix writes it.
func (s State) String() string {
	switch {
	case s.Missing:
		return "?"
	case s.Gap:
		return "-"
	case len(s.Symbols) == 1:
		return s.Symbols[0]
	case s.Uncertain:
		return "{" + strings.Join(s.Symbols, "") + "}"
	default:
		return "(" + strings.Join(s.Symbols, "") + ")"
	}
}

// Equal compares two cells.
func (s State) Equal(o State) bool {
	if s.Missing != o.Missing || s.Gap != o.Gap || s.Uncertain != o.Uncertain ||
		len(s.Symbols) != len(o.Symbols) {
		return false
	}
	for i := range s.Symbols {
		if s.Symbols[i] != o.Symbols[i] {
			return false
		}
	}
	return true
}

// Format is the parsed FORMAT command of a CHARACTERS, DATA or UNALIGNED
// block.
type Format struct {
	Datatype     string
	RespectCase  bool
	Missing      string
	Gap          string
	MatchChar    string
	Symbols      []string
	Equate       map[string]State
	Labels       bool
	Transpose    bool
	Interleave   bool
	Tokens       bool
	StatesFormat string
	Items        []string
}

// defaultSymbols lists the state alphabet per datatype.
func defaultSymbols(datatype string) []string {
	switch datatype {
	case "DNA", "NUCLEOTIDE":
		return strings.Split("ACGT", "")
	case "RNA":
		return strings.Split("ACGU", "")
	case "PROTEIN":
		return strings.Split("ACDEFGHIKLMNPQRSTVWY*", "")
	case "CONTINUOUS":
		return nil
	default:
		return []string{"0", "1"}
	}
}

// molecularEquate returns the ambiguity codes for molecular datatypes,
// expressed as uncertainty sets.
func molecularEquate(datatype string) map[string]State {
	if datatype != "DNA" && datatype != "RNA" && datatype != "NUCLEOTIDE" {
		return nil
	}
	t := "T"
	if datatype == "RNA" {
		t = "U"
	}
	codes := map[string]string{
		"R": "AG", "Y": "C" + t, "M": "AC", "K": "G" + t,
		"S": "CG", "W": "A" + t, "H": "AC" + t, "B": "CG" + t,
		"V": "ACG", "D": "AG" + t, "N": "ACG" + t, "X": "ACG" + t,
	}
	equate := make(map[string]State, 2*len(codes))
	for code, symbols := range codes {
		state := State{Symbols: strings.Split(symbols, ""), Uncertain: true}
		equate[code] = state
		equate[strings.ToLower(code)] = state
	}
	return equate
}

// ParseFormat reads a FORMAT command. A nil command yields the defaults.
func ParseFormat(cmd document.Command) (*Format, error) {
	f := &Format{
		Datatype:     "STANDARD",
		Missing:      "?",
		Labels:       true,
		StatesFormat: "STATESPRESENT",
	}
	if cmd != nil {
		if err := f.parse(cmd); err != nil {
			return nil, err
		}
	}
	if len(f.Symbols) == 0 {
		f.Symbols = defaultSymbols(f.Datatype)
	} else if f.Datatype != "STANDARD" && f.Datatype != "CONTINUOUS" {
		// For molecular data SYMBOLS adds to the default alphabet rather
		// than replacing it.
		f.Symbols = append(defaultSymbols(f.Datatype), f.Symbols...)
	}
	if f.Datatype == "CONTINUOUS" {
		f.Tokens = true
	}
	if equate := molecularEquate(f.Datatype); equate != nil {
		if f.Equate == nil {
			f.Equate = equate
		} else {
			for k, v := range equate {
				if _, defined := f.Equate[k]; !defined {
					f.Equate[k] = v
				}
			}
		}
	}
	return f, nil
}

func (f *Format) parse(cmd document.Command) error {
	items := tokenizer.NewItems(cmd.Payload(), "")
	for {
		item, ok := items.Next()
		if !ok {
			return nil
		}
		if !item.IsWord() {
			continue
		}
		switch sub := strings.ToUpper(item.Text); sub {
		case "DATATYPE":
			word, ok := items.AfterEquals()
			if !ok {
				return fmt.Errorf("%w: FORMAT DATATYPE", ErrBadPayload)
			}
			f.Datatype = strings.ToUpper(word)
		case "RESPECTCASE":
			f.RespectCase = true
		case "MISSING", "GAP", "MATCHCHAR":
			word, ok := items.AfterEquals()
			if !ok {
				return fmt.Errorf("%w: FORMAT %s", ErrBadPayload, sub)
			}
			switch sub {
			case "MISSING":
				f.Missing = word
			case "GAP":
				f.Gap = word
			case "MATCHCHAR":
				f.MatchChar = word
			}
		case "SYMBOLS":
			symbols, err := delimitedSymbols(items)
			if err != nil {
				return err
			}
			f.Symbols = symbols
		case "EQUATE":
			equate, err := delimitedEquate(items)
			if err != nil {
				return err
			}
			f.Equate = equate
		case "LABELS":
			f.Labels = true
			consumeOptionalValue(items)
		case "NOLABELS":
			f.Labels = false
		case "TRANSPOSE":
			f.Transpose = true
		case "INTERLEAVE":
			f.Interleave = true
			consumeOptionalValue(items)
		case "TOKENS":
			f.Tokens = true
		case "NOTOKENS":
			f.Tokens = false
		case "STATESFORMAT":
			word, ok := items.AfterEquals()
			if !ok {
				return fmt.Errorf("%w: FORMAT STATESFORMAT", ErrBadPayload)
			}
			f.StatesFormat = strings.ToUpper(word)
		case "ITEMS":
			f.Items = parseItemsList(items)
		}
	}
}

// consumeOptionalValue eats an "=value" following a flag subcommand, a form
// some writers emit (FORMAT LABELS=LEFT, INTERLEAVE=YES).
func consumeOptionalValue(items *tokenizer.Items) {
	if next, ok := items.Peek(); ok && next.Punct && next.Text == "=" {
		items.Next()
		items.Next()
	}
}

// delimitedSymbols reads the "=" and a quoted-ish symbols list: every dark
// character between the double quotes is one state symbol.
func delimitedSymbols(items *tokenizer.Items) ([]string, error) {
	eq, ok := items.Next()
	if !ok || !eq.Punct || eq.Text != "=" {
		return nil, fmt.Errorf("%w: FORMAT SYMBOLS", ErrBadPayload)
	}
	start, ok := items.Next()
	if !ok {
		return nil, fmt.Errorf("%w: FORMAT SYMBOLS", ErrBadPayload)
	}
	content, ok := items.Delimited(start, `"`, true)
	if !ok {
		return nil, fmt.Errorf("%w: FORMAT SYMBOLS", ErrBadPayload)
	}
	var symbols []string
	for _, item := range content {
		for _, r := range item.Text {
			symbols = append(symbols, string(r))
		}
	}
	return symbols, nil
}

// delimitedEquate reads EQUATE="x=(AB) y={BC} z=C".
func delimitedEquate(items *tokenizer.Items) (map[string]State, error) {
	eq, ok := items.Next()
	if !ok || !eq.Punct || eq.Text != "=" {
		return nil, fmt.Errorf("%w: FORMAT EQUATE", ErrBadPayload)
	}
	start, ok := items.Next()
	if !ok {
		return nil, fmt.Errorf("%w: FORMAT EQUATE", ErrBadPayload)
	}
	content, ok := items.Delimited(start, `"`, false)
	if !ok {
		return nil, fmt.Errorf("%w: FORMAT EQUATE", ErrBadPayload)
	}
	equate := make(map[string]State)
	i := 0
	next := func() (tokenizer.Item, bool) {
		if i >= len(content) {
			return tokenizer.Item{}, false
		}
		item := content[i]
		i++
		return item, true
	}
	for {
		key, ok := next()
		if !ok {
			return equate, nil
		}
		if eq, ok := next(); !ok || !eq.Punct || eq.Text != "=" {
			return nil, fmt.Errorf("%w: EQUATE entry for %q", ErrBadPayload, key.Text)
		}
		open, ok := next()
		if !ok {
			return nil, fmt.Errorf("%w: EQUATE entry for %q", ErrBadPayload, key.Text)
		}
		var value State
		switch {
		case open.Punct && (open.Text == "(" || open.Text == "{"):
			closing := ")"
			if open.Text == "{" {
				closing = "}"
				value.Uncertain = true
			}
			for {
				part, ok := next()
				if !ok {
					return nil, fmt.Errorf("%w: unterminated EQUATE set for %q", ErrBadPayload, key.Text)
				}
				if part.Punct && part.Text == closing {
					break
				}
				for _, r := range part.Text {
					value.Symbols = append(value.Symbols, string(r))
				}
			}
		case open.Text == "?":
			value.Missing = true
		default:
			value.Symbols = []string{open.Text}
		}
		equate[key.Text] = value
	}
}

func parseItemsList(items *tokenizer.Items) []string {
	eq, ok := items.Next()
	if !ok || !eq.Punct || eq.Text != "=" {
		return nil
	}
	start, ok := items.Next()
	if !ok {
		return nil
	}
	if start.IsWord() {
		return []string{strings.ToUpper(start.Text)}
	}
	var list []string
	for {
		item, ok := items.Next()
		if !ok || (item.Punct && item.Text == ")") {
			return list
		}
		if item.IsWord() {
			list = append(list, strings.ToUpper(item.Text))
		}
	}
}

// CharLabel names one character and, optionally, its states.
type CharLabel struct {
	Number int
	Name   string
	States []string
}

// Matrix is a character-by-taxon matrix. Taxon and character order are
// preserved from the source.
type Matrix struct {
	taxa  []string
	chars []string
	rows  map[string][]State
}

// NewMatrix builds an empty matrix with the given character order.
func NewMatrix(chars []string) *Matrix {
	return &Matrix{chars: chars, rows: make(map[string][]State)}
}

// Taxa returns the taxon order.
func (m *Matrix) Taxa() []string { return m.taxa }

// Characters returns the character order.
func (m *Matrix) Characters() []string { return m.chars }

// Row returns a taxon's states, nil when the taxon is absent.
func (m *Matrix) Row(taxon string) []State { return m.rows[taxon] }

// At returns one cell.
func (m *Matrix) At(taxon, char string) (State, bool) {
	row, ok := m.rows[taxon]
	if !ok {
		return State{}, false
	}
	for i, c := range m.chars {
		if c == char {
			return row[i], true
		}
	}
	return State{}, false
}

// SetRow appends or replaces a taxon's states.
func (m *Matrix) SetRow(taxon string, states []State) {
	if _, exists := m.rows[taxon]; !exists {
		m.taxa = append(m.taxa, taxon)
	}
	m.rows[taxon] = states
}

// DropTaxon removes a taxon's row.
func (m *Matrix) DropTaxon(taxon string) {
	if _, exists := m.rows[taxon]; !exists {
		return
	}
	delete(m.rows, taxon)
	for i, t := range m.taxa {
		if t == taxon {
			m.taxa = append(m.taxa[:i], m.taxa[i+1:]...)
			break
		}
	}
}

// RenameTaxon relabels a row in place.
func (m *Matrix) RenameTaxon(from, to string) {
	row, exists := m.rows[from]
	if !exists {
		return
	}
	delete(m.rows, from)
	m.rows[to] = row
	for i, t := range m.taxa {
		if t == from {
			m.taxa[i] = to
			break
		}
	}
}

// Characters is the parsed view of a CHARACTERS or DATA block.
type Characters struct {
	block  *document.Block
	Format *Format

	nchar   int
	labels  []CharLabel
	taxa    *Taxa
	pending *pendingWord
}

// pendingWord holds the unread symbols of a multi-cell word.
type pendingWord struct {
	runes []string
}

// ParseCharacters builds a Characters view. The matrix itself is parsed
// lazily by Matrix.
func ParseCharacters(b *document.Block) (*Characters, error) {
	if Opaque(b.Name()) {
		return nil, fmt.Errorf("%w: %s block has no character semantics", ErrUnsupportedConstruct, b.Name())
	}
	c := &Characters{block: b}

	formatCmd, _ := b.Command("FORMAT")
	format, err := ParseFormat(formatCmd)
	if err != nil {
		return nil, err
	}
	c.Format = format

	nchar, ok, err := dimension(b, "NCHAR")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: DIMENSIONS NCHAR in %s block", ErrMissingCommand, b.Name())
	}
	c.nchar = nchar

	if _, hasOwn := b.Command("TAXLABELS"); hasOwn {
		c.taxa, err = ParseTaxa(b)
	} else {
		c.taxa, err = LinkedTaxa(b)
	}
	if err != nil {
		return nil, err
	}

	c.labels, err = parseCharLabels(b)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Nchar returns the declared character count.
func (c *Characters) Nchar() int { return c.nchar }

// Labels returns the CHARSTATELABELS (or CHARLABELS/STATELABELS) entries.
func (c *Characters) Labels() []CharLabel { return c.labels }

// Taxa returns the taxa the block's rows are checked against; nil when the
// document defines none.
func (c *Characters) Taxa() *Taxa { return c.taxa }

// characterNames returns per-column names: declared labels where present,
// 1-based numbers elsewhere.
func (c *Characters) characterNames() ([]string, error) {
	names := make([]string, c.nchar)
	for i := range names {
		names[i] = strconv.Itoa(i + 1)
	}
	seen := make(map[string]bool)
	for _, label := range c.labels {
		if label.Name == "" {
			continue
		}
		if label.Number < 1 || label.Number > c.nchar {
			return nil, fmt.Errorf("%w: character label %d outside NCHAR=%d", ErrDimensionMismatch, label.Number, c.nchar)
		}
		if seen[label.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCharacter, label.Name)
		}
		seen[label.Name] = true
		names[label.Number-1] = label.Name
	}
	return names, nil
}

// parseCharLabels reads CHARSTATELABELS, falling back to CHARLABELS and
// STATELABELS.
func parseCharLabels(b *document.Block) ([]CharLabel, error) {
	if cmd, ok := b.Command("CHARSTATELABELS"); ok {
		return parseCharStateLabels(cmd)
	}
	var labels []CharLabel
	if cmd, ok := b.Command("CHARLABELS"); ok {
		for i, item := range tokenizer.Words(cmd.Payload(), "") {
			if item.IsWord() {
				labels = append(labels, CharLabel{Number: i + 1, Name: item.Text})
			}
		}
	}
	if cmd, ok := b.Command("STATELABELS"); ok {
		byNumber := make(map[int]*CharLabel, len(labels))
		for i := range labels {
			byNumber[labels[i].Number] = &labels[i]
		}
		for _, entry := range splitOnComma(tokenizer.Words(cmd.Payload(), "")) {
			if len(entry) == 0 {
				continue
			}
			number, err := strconv.Atoi(entry[0].Text)
			if err != nil {
				return nil, fmt.Errorf("%w: STATELABELS number %q", ErrBadPayload, entry[0].Text)
			}
			var states []string
			for _, item := range entry[1:] {
				states = append(states, item.Text)
			}
			if label, ok := byNumber[number]; ok {
				label.States = states
			} else {
				labels = append(labels, CharLabel{Number: number, States: states})
			}
		}
	}
	return labels, nil
}

// parseCharStateLabels reads "1 name/state state, 2 name, 3 /states".
func parseCharStateLabels(cmd document.Command) ([]CharLabel, error) {
	var labels []CharLabel
	for _, entry := range splitOnComma(tokenizer.Words(cmd.Payload(), "")) {
		if len(entry) == 0 {
			continue
		}
		number, err := strconv.Atoi(entry[0].Text)
		if err != nil {
			return nil, fmt.Errorf("%w: CHARSTATELABELS number %q", ErrBadPayload, entry[0].Text)
		}
		label := CharLabel{Number: number}
		rest := entry[1:]
		inStates := false
		for _, item := range rest {
			if item.Punct && item.Text == "/" {
				inStates = true
				continue
			}
			if inStates {
				label.States = append(label.States, item.Text)
			} else if label.Name == "" {
				label.Name = item.Text
			}
		}
		labels = append(labels, label)
	}
	return labels, nil
}

func splitOnComma(items []tokenizer.Item) [][]tokenizer.Item {
	var groups [][]tokenizer.Item
	var group []tokenizer.Item
	for _, item := range items {
		if item.Punct && item.Text == "," {
			groups = append(groups, group)
			group = nil
			continue
		}
		group = append(group, item)
	}
	groups = append(groups, group)
	return groups
}

// Matrix parses the MATRIX command into a full character-by-taxon matrix,
// expanding interleaving, equate aliases and matchchar references, and
// validating every row against NCHAR.
func (c *Characters) Matrix() (*Matrix, error) {
	cmd, ok := c.block.Command("MATRIX")
	if !ok {
		return nil, fmt.Errorf("%w: MATRIX in %s block", ErrMissingCommand, c.block.Name())
	}
	names, err := c.characterNames()
	if err != nil {
		return nil, err
	}
	m := NewMatrix(names)
	if c.Format.Transpose {
		err = c.parseTransposed(cmd, m)
	} else {
		err = c.parseRows(cmd, m)
	}
	if err != nil {
		return nil, err
	}

	for _, taxon := range m.taxa {
		if len(m.rows[taxon]) != c.nchar {
			return nil, fmt.Errorf("%w: row %q has %d entries, NCHAR=%d",
				ErrDimensionMismatch, taxon, len(m.rows[taxon]), c.nchar)
		}
	}
	if err := m.substituteMatches(); err != nil {
		return nil, err
	}
	return m, nil
}

// LabeledMatrix is Matrix with state symbols replaced by the state names
// declared in CHARSTATELABELS, where a name exists for the symbol's
// position in the symbols list.
func (c *Characters) LabeledMatrix() (*Matrix, error) {
	m, err := c.Matrix()
	if err != nil {
		return nil, err
	}
	statesByChar := make(map[string][]string)
	for _, label := range c.labels {
		name := label.Name
		if name == "" {
			name = strconv.Itoa(label.Number)
		}
		statesByChar[name] = label.States
	}
	symbolIndex := make(map[string]int, len(c.Format.Symbols))
	for i, s := range c.Format.Symbols {
		symbolIndex[s] = i
	}
	for _, taxon := range m.taxa {
		row := m.rows[taxon]
		for ci, cell := range row {
			states := statesByChar[m.chars[ci]]
			if len(states) == 0 {
				continue
			}
			renamed := make([]string, len(cell.Symbols))
			for si, symbol := range cell.Symbols {
				renamed[si] = symbol
				if idx, ok := symbolIndex[symbol]; ok && idx < len(states) && states[idx] != "_" {
					renamed[si] = states[idx]
				}
			}
			row[ci].Symbols = renamed
		}
	}
	return m, nil
}

// rowSink accumulates cells for one taxon at a time.
type rowSink struct {
	m     *Matrix
	c     *Characters
	label string
	cells []State
}

func (rs *rowSink) flush() error {
	label := rs.label
	if label == "" {
		return nil
	}
	if resolved, ok := rs.resolve(label); ok {
		label = resolved
	} else if rs.c.taxa != nil {
		return fmt.Errorf("%w: matrix row %q", ErrUnresolvedTaxon, label)
	}
	if _, dup := rs.m.rows[label]; dup {
		return fmt.Errorf("%w: matrix row %q", ErrDuplicateTaxon, label)
	}
	rs.m.SetRow(label, rs.cells)
	rs.label = ""
	rs.cells = nil
	return nil
}

func (rs *rowSink) resolve(label string) (string, bool) {
	if rs.c.taxa == nil {
		return label, true
	}
	return rs.c.taxa.Resolve(label)
}

// parseRows reads a non-transposed matrix.
func (c *Characters) parseRows(cmd document.Command, m *Matrix) error {
	payload := cmd.Payload()
	if !c.Format.Interleave {
		sink := &rowSink{m: m, c: c}
		items := tokenizer.NewItems(payload, "+-")
		for {
			if sink.label == "" && c.Format.Labels {
				item, ok := items.Next()
				if !ok {
					break
				}
				if !item.IsWord() {
					return fmt.Errorf("%w: expected taxon label, got %q", ErrBadPayload, item.Text)
				}
				sink.label = item.Text
			} else if sink.label == "" {
				_, more := items.Peek()
				if !more && (c.pending == nil || len(c.pending.runes) == 0) {
					break
				}
				sink.label = c.taxonByIndex(len(m.taxa))
			}
			cell, ok, err := c.nextCell(items)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			sink.cells = append(sink.cells, cell)
			if len(sink.cells) == c.nchar {
				if err := sink.flush(); err != nil {
					return err
				}
			}
		}
		if sink.label != "" || len(sink.cells) > 0 {
			return sink.flush()
		}
		return nil
	}

	// Interleaved: newlines are significant, each line extends one taxon.
	var order []string
	ntax := 0
	if c.taxa != nil {
		ntax = c.taxa.Ntax()
	}
	for li, line := range tokenizer.Lines(payload) {
		items := tokenizer.NewItems(line, "+-")
		var label string
		if c.Format.Labels {
			item, ok := items.Next()
			if !ok {
				continue
			}
			if !item.IsWord() {
				return fmt.Errorf("%w: expected taxon label, got %q", ErrBadPayload, item.Text)
			}
			label = item.Text
			if resolved, ok := c.resolveRowLabel(label); ok {
				label = resolved
			}
		} else if ntax > 0 {
			label = c.taxonByIndex(li % ntax)
		} else {
			return fmt.Errorf("%w: NOLABELS interleaved matrix needs taxon labels", ErrBadPayload)
		}
		for {
			cell, ok, err := c.nextCell(items)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			if _, exists := m.rows[label]; !exists {
				order = append(order, label)
			}
			m.rows[label] = append(m.rows[label], cell)
		}
	}
	m.taxa = order
	return nil
}

func (c *Characters) resolveRowLabel(label string) (string, bool) {
	if c.taxa == nil {
		return label, true
	}
	return c.taxa.Resolve(label)
}

func (c *Characters) taxonByIndex(i int) string {
	if c.taxa != nil && i < c.taxa.Ntax() {
		return c.taxa.Labels()[i]
	}
	return strconv.Itoa(i + 1)
}

// parseTransposed reads a matrix whose rows are characters and pivots it.
func (c *Characters) parseTransposed(cmd document.Command, m *Matrix) error {
	items := tokenizer.NewItems(cmd.Payload(), "+-")
	var columns [][]State
	for {
		var label string
		if c.Format.Labels {
			item, ok := items.Next()
			if !ok {
				break
			}
			if !item.IsWord() {
				return fmt.Errorf("%w: expected character label, got %q", ErrBadPayload, item.Text)
			}
			label = item.Text
			_ = label // character order is positional; names come from CHARSTATELABELS
		}
		var cells []State
		for {
			cell, ok, err := c.nextCell(items)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			cells = append(cells, cell)
			if c.taxa != nil && len(cells) == c.taxa.Ntax() {
				break
			}
		}
		if len(cells) == 0 {
			break
		}
		columns = append(columns, cells)
	}
	if len(columns) != c.nchar {
		return fmt.Errorf("%w: transposed matrix has %d character rows, NCHAR=%d",
			ErrDimensionMismatch, len(columns), c.nchar)
	}
	ntax := len(columns[0])
	for ti := 0; ti < ntax; ti++ {
		row := make([]State, c.nchar)
		for ci, column := range columns {
			if ti >= len(column) {
				return fmt.Errorf("%w: transposed matrix column %d", ErrDimensionMismatch, ci+1)
			}
			row[ci] = column[ti]
		}
		m.SetRow(c.taxonByIndex(ti), row)
	}
	return nil
}

// nextCell reads one matrix entry: a state group in parentheses or braces,
// one whole token in tokens mode, or single symbols expanded from a word.
func (c *Characters) nextCell(items *tokenizer.Items) (State, bool, error) {
	if c.pending != nil && len(c.pending.runes) > 0 {
		symbol := c.pending.runes[0]
		c.pending.runes = c.pending.runes[1:]
		if len(c.pending.runes) == 0 {
			c.pending = nil
		}
		return c.cellFromSymbol(symbol), true, nil
	}
	c.pending = nil

	item, ok := items.Next()
	if !ok {
		return State{}, false, nil
	}
	if item.Punct && (item.Text == "(" || item.Text == "{") {
		return c.readGroup(items, item.Text)
	}
	if c.Format.Tokens || item.Quoted {
		return State{Symbols: []string{item.Text}}, true, nil
	}
	runes := splitRunes(item.Text)
	if len(runes) == 0 {
		return State{}, false, nil
	}
	if len(runes) > 1 {
		c.pending = &pendingWord{runes: runes[1:]}
	}
	return c.cellFromSymbol(runes[0]), true, nil
}

func (c *Characters) readGroup(items *tokenizer.Items, open string) (State, bool, error) {
	closing := ")"
	state := State{}
	if open == "{" {
		closing = "}"
		state.Uncertain = true
	}
	for {
		item, ok := items.Next()
		if !ok {
			return State{}, false, fmt.Errorf("%w: unterminated state group", ErrBadPayload)
		}
		if item.Punct && item.Text == closing {
			return state, true, nil
		}
		if c.Format.Tokens {
			state.Symbols = append(state.Symbols, item.Text)
			continue
		}
		for _, symbol := range splitRunes(item.Text) {
			part := c.cellFromSymbol(symbol)
			switch {
			case part.Missing:
				state.Symbols = append(state.Symbols, c.Format.Missing)
			case part.Gap:
				state.Symbols = append(state.Symbols, c.Format.Gap)
			default:
				state.Symbols = append(state.Symbols, part.Symbols...)
			}
		}
	}
}

func splitRunes(word string) []string {
	var out []string
	for _, r := range word {
		out = append(out, string(r))
	}
	return out
}

// cellFromSymbol classifies one symbol as missing, gap, matchchar marker,
// an equate alias, or a plain state. Equate keys are always
// case-sensitive; everything else folds case unless RESPECTCASE is on.
func (c *Characters) cellFromSymbol(symbol string) State {
	if value, ok := c.Format.Equate[symbol]; ok {
		return value
	}
	fold := func(s string) string {
		if c.Format.RespectCase {
			return s
		}
		return strings.ToUpper(s)
	}
	folded := fold(symbol)
	switch {
	case c.Format.Missing != "" && folded == fold(c.Format.Missing):
		return State{Missing: true}
	case c.Format.Gap != "" && folded == fold(c.Format.Gap):
		return State{Gap: true}
	case c.Format.MatchChar != "" && folded == fold(c.Format.MatchChar):
		return State{match: true}
	}
	if !c.Format.RespectCase {
		for _, s := range c.Format.Symbols {
			if strings.EqualFold(s, symbol) {
				return State{Symbols: []string{s}}
			}
		}
	}
	return State{Symbols: []string{symbol}}
}

// substituteMatches replaces matchchar cells with the first row's states.
func (m *Matrix) substituteMatches() error {
	if len(m.taxa) == 0 {
		return nil
	}
	reference := m.rows[m.taxa[0]]
	for _, cell := range reference {
		if cell.match {
			return fmt.Errorf("%w: matchchar in first matrix row", ErrBadPayload)
		}
	}
	for _, taxon := range m.taxa[1:] {
		row := m.rows[taxon]
		for i := range row {
			if row[i].match {
				row[i] = reference[i]
			}
		}
	}
	return nil
}

// NewCharacters synthesizes a CHARACTERS (or DATA) block from a matrix, in
// normalized form: no interleaving, no transposition, labels on, equates
// resolved.
func NewCharacters(name string, m *Matrix, opts *document.BlockOptions) ([]document.Command, error) {
	nchar := len(m.chars)

	symbolSet := make(map[string]bool)
	tokensMode := false
	for _, taxon := range m.taxa {
		for _, cell := range m.rows[taxon] {
			for _, s := range cell.Symbols {
				symbolSet[s] = true
				if len(s) > 1 {
					tokensMode = true
				}
			}
		}
	}
	symbols := make([]string, 0, len(symbolSet))
	for s := range symbolSet {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	format := "DATATYPE=STANDARD MISSING=? GAP=-"
	if tokensMode {
		format += " TOKENS"
	} else {
		format += ` SYMBOLS="` + strings.Join(symbols, "") + `"`
	}

	specs := []document.CommandSpec{
		{Name: "DIMENSIONS", Payload: fmt.Sprintf("NCHAR=%d", nchar)},
		{Name: "FORMAT", Payload: format},
	}

	if labels := charStateLabelsPayload(m.chars); labels != "" {
		specs = append(specs, document.CommandSpec{Name: "CHARSTATELABELS", Payload: labels})
	}

	var rows strings.Builder
	width := 0
	for _, taxon := range m.taxa {
		if n := len(tokenizer.QuoteIfNeeded(taxon)); n > width {
			width = n
		}
	}
	for _, taxon := range m.taxa {
		rows.WriteString("\n    ")
		rows.WriteString(fmt.Sprintf("%-*s ", width, tokenizer.QuoteIfNeeded(taxon)))
		for i, cell := range m.rows[taxon] {
			if tokensMode && i > 0 {
				rows.WriteString(" ")
			}
			rows.WriteString(cell.String())
		}
	}
	specs = append(specs, document.CommandSpec{Name: "MATRIX", Payload: rows.String()})
	return document.NewBlock(name, specs, opts)
}

// charStateLabelsPayload renders CHARSTATELABELS when character names are
// not the plain 1..n numbering.
func charStateLabelsPayload(chars []string) string {
	plain := true
	for i, c := range chars {
		if c != strconv.Itoa(i+1) {
			plain = false
			break
		}
	}
	if plain {
		return ""
	}
	var b strings.Builder
	for i, c := range chars {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("\n    %d %s", i+1, tokenizer.QuoteIfNeeded(c)))
	}
	return b.String()
}
