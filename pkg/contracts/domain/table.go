package domain

import (
	"math"
	"strconv"
	"strings"
)

// Table is a wide record table: one row per geography unit, keyed by the
// identifier in KeyColumn. Cells are kept as strings so identifiers are never
// coerced to numbers (leading zeros are significant); numeric access goes
// through NumericColumn.
type Table struct {
	Name      string     `json:"name"`
	KeyColumn string     `json:"key_column"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
}

// ColumnIndex returns the position of the named column, or -1 if absent.
// Matching is case-insensitive to tolerate header-case drift across sources.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

// KeyIndex returns the position of the key column, or -1 if absent.
func (t *Table) KeyIndex() int {
	return t.ColumnIndex(t.KeyColumn)
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Keys returns the geography identifiers in row order.
func (t *Table) Keys() []string {
	idx := t.KeyIndex()
	if idx < 0 {
		return nil
	}
	keys := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) {
			keys = append(keys, row[idx])
		} else {
			keys = append(keys, "")
		}
	}
	return keys
}

// Column returns the raw string cells of the named column in row order.
func (t *Table) Column(name string) ([]string, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	cells := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			cells[i] = row[idx]
		}
	}
	return cells, true
}

// NumericColumn returns the named column coerced to float64. Blank or
// unparseable cells become NaN (the missing-value marker), never zero.
func (t *Table) NumericColumn(name string) ([]float64, bool) {
	cells, ok := t.Column(name)
	if !ok {
		return nil, false
	}
	values := make([]float64, len(cells))
	for i, cell := range cells {
		values[i] = ParseNumeric(cell)
	}
	return values, true
}

// Clone returns a deep copy so callers can derive filtered or normalized
// views without mutating the source table.
func (t *Table) Clone() *Table {
	cp := &Table{
		Name:      t.Name,
		KeyColumn: t.KeyColumn,
		Columns:   append([]string(nil), t.Columns...),
		Rows:      make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cp.Rows[i] = append([]string(nil), row...)
	}
	return cp
}

// NormalizeUnitID normalizes a geography identifier for joining: trim and
// uppercase, leading zeros preserved (string, never integer).
func NormalizeUnitID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// ParseNumeric parses a cell as float64, returning NaN for blank or
// unparseable cells. Thousands separators are tolerated.
func ParseNumeric(cell string) float64 {
	s := strings.TrimSpace(cell)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// IsMissing reports whether a value is the missing-value marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}
