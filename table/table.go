//
// Copyright 2024 The disclosure-control Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package table provides the labeled rectangular grids that disclosure
// checks operate on: value tables, boolean rule masks, and string outcome
// grids, all sharing the same ordered row and column keys.
//
// Tables are value-like: every transformation in this module returns a new
// table and leaves its input untouched.
package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Key identifies one row or column. Hierarchical groupings use one element
// per level. Margin rows and columns use a single-element key regardless of
// how many levels the body keys have.
type Key []string

// String renders the key with "/" between levels.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// Equal reports whether k and o have the same levels in the same order.
func (k Key) Equal(o Key) bool {
	if len(k) != len(o) {
		return false
	}
	for i := range k {
		if k[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of k.
func (k Key) Clone() Key {
	return append(Key(nil), k...)
}

// KeysEqual reports whether two key lists are identical element for element.
func KeysEqual(a, b []Key) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func cloneKeys(ks []Key) []Key {
	out := make([]Key, len(ks))
	for i, k := range ks {
		out[i] = k.Clone()
	}
	return out
}

// CellKind distinguishes the three states a cell can be in.
type CellKind int

const (
	// CellValued marks a cell holding a finite statistic.
	CellValued CellKind = iota
	// CellMissing marks the sentinel for suppressed or missing data.
	CellMissing
	// CellUndefined marks a cell with no contributing records.
	CellUndefined
)

var cellKindName = map[CellKind]string{
	CellValued:    "Valued",
	CellMissing:   "Missing",
	CellUndefined: "Undefined",
}

func (k CellKind) String() string {
	return cellKindName[k]
}

// Cell is one entry of a Table. The zero Cell is Valued 0.
type Cell struct {
	Kind  CellKind
	Value float64 // meaningful only when Kind is CellValued
}

// Value returns a valued cell.
func Value(x float64) Cell {
	return Cell{Kind: CellValued, Value: x}
}

// Missing returns the missing-data sentinel cell.
func Missing() Cell {
	return Cell{Kind: CellMissing}
}

// Undefined returns the no-contributing-records cell.
func Undefined() Cell {
	return Cell{Kind: CellUndefined}
}

// IsValued reports whether c holds a statistic.
func (c Cell) IsValued() bool {
	return c.Kind == CellValued
}

// IsMissing reports whether c is the missing sentinel.
func (c Cell) IsMissing() bool {
	return c.Kind == CellMissing
}

// IsUndefined reports whether c has no contributing records.
func (c Cell) IsUndefined() bool {
	return c.Kind == CellUndefined
}

// String renders the cell value; non-valued cells render empty.
func (c Cell) String() string {
	if !c.IsValued() {
		return ""
	}
	return strconv.FormatFloat(c.Value, 'g', -1, 64)
}

// CellRef is a position in a table, row-major.
type CellRef struct {
	Row, Col int
}

// Table is a rectangular grid of cells over ordered row and column keys.
type Table struct {
	rowKeys []Key
	colKeys []Key
	cells   [][]Cell
}

// New returns a table of the given shape with every cell Undefined. It
// returns an error on duplicate row or column keys.
func New(rowKeys, colKeys []Key) (*Table, error) {
	if err := checkDistinct("row", rowKeys); err != nil {
		return nil, err
	}
	if err := checkDistinct("column", colKeys); err != nil {
		return nil, err
	}
	t := &Table{rowKeys: cloneKeys(rowKeys), colKeys: cloneKeys(colKeys)}
	t.cells = make([][]Cell, len(rowKeys))
	for i := range t.cells {
		row := make([]Cell, len(colKeys))
		for j := range row {
			row[j] = Undefined()
		}
		t.cells[i] = row
	}
	return t, nil
}

func checkDistinct(axis string, ks []Key) error {
	seen := make(map[string]bool, len(ks))
	for _, k := range ks {
		id := strings.Join(k, "\x00")
		if seen[id] {
			return fmt.Errorf("table.New: duplicate %s key %q", axis, k)
		}
		seen[id] = true
	}
	return nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.rowKeys)
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.colKeys)
}

// RowKeys returns a copy of the ordered row keys.
func (t *Table) RowKeys() []Key {
	return cloneKeys(t.rowKeys)
}

// ColKeys returns a copy of the ordered column keys.
func (t *Table) ColKeys() []Key {
	return cloneKeys(t.colKeys)
}

// RowIndex returns the position of k among the row keys, or -1.
func (t *Table) RowIndex(k Key) int {
	for i, rk := range t.rowKeys {
		if rk.Equal(k) {
			return i
		}
	}
	return -1
}

// ColIndex returns the position of k among the column keys, or -1.
func (t *Table) ColIndex(k Key) int {
	for j, ck := range t.colKeys {
		if ck.Equal(k) {
			return j
		}
	}
	return -1
}

// At returns the cell at row i, column j.
func (t *Table) At(i, j int) Cell {
	return t.cells[i][j]
}

// Set replaces the cell at row i, column j.
func (t *Table) Set(i, j int, c Cell) {
	t.cells[i][j] = c
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := &Table{rowKeys: cloneKeys(t.rowKeys), colKeys: cloneKeys(t.colKeys)}
	c.cells = make([][]Cell, len(t.cells))
	for i, row := range t.cells {
		c.cells[i] = append([]Cell(nil), row...)
	}
	return c
}

// Mask is a boolean grid aligned with a table; true means the cell violates
// the rule the mask was built for.
type Mask struct {
	rowKeys []Key
	colKeys []Key
	bits    [][]bool
}

// NewMask returns an all-false mask over the given keys.
func NewMask(rowKeys, colKeys []Key) *Mask {
	m := &Mask{rowKeys: cloneKeys(rowKeys), colKeys: cloneKeys(colKeys)}
	m.bits = make([][]bool, len(rowKeys))
	for i := range m.bits {
		m.bits[i] = make([]bool, len(colKeys))
	}
	return m
}

// NumRows returns the number of rows.
func (m *Mask) NumRows() int {
	return len(m.rowKeys)
}

// NumCols returns the number of columns.
func (m *Mask) NumCols() int {
	return len(m.colKeys)
}

// RowKeys returns a copy of the ordered row keys.
func (m *Mask) RowKeys() []Key {
	return cloneKeys(m.rowKeys)
}

// ColKeys returns a copy of the ordered column keys.
func (m *Mask) ColKeys() []Key {
	return cloneKeys(m.colKeys)
}

// At returns the bit at row i, column j.
func (m *Mask) At(i, j int) bool {
	return m.bits[i][j]
}

// Set replaces the bit at row i, column j.
func (m *Mask) Set(i, j int, v bool) {
	m.bits[i][j] = v
}

// AlignsWith reports whether m has exactly the same keys as t, in the same
// order. Only aligned masks may be applied to a table.
func (m *Mask) AlignsWith(t *Table) bool {
	return KeysEqual(m.rowKeys, t.rowKeys) && KeysEqual(m.colKeys, t.colKeys)
}

// Restrict returns a copy of m limited to exactly t's keys, in t's order.
// The second result is false when t has a key m does not cover.
func (m *Mask) Restrict(t *Table) (*Mask, bool) {
	rowAt := make([]int, t.NumRows())
	for i, k := range t.rowKeys {
		idx := -1
		for mi, mk := range m.rowKeys {
			if mk.Equal(k) {
				idx = mi
				break
			}
		}
		if idx < 0 {
			return nil, false
		}
		rowAt[i] = idx
	}
	colAt := make([]int, t.NumCols())
	for j, k := range t.colKeys {
		idx := -1
		for mj, mk := range m.colKeys {
			if mk.Equal(k) {
				idx = mj
				break
			}
		}
		if idx < 0 {
			return nil, false
		}
		colAt[j] = idx
	}
	out := NewMask(t.RowKeys(), t.ColKeys())
	for i := range rowAt {
		for j := range colAt {
			out.bits[i][j] = m.bits[rowAt[i]][colAt[j]]
		}
	}
	return out, true
}

// Any reports whether any bit is set.
func (m *Mask) Any() bool {
	for _, row := range m.bits {
		for _, b := range row {
			if b {
				return true
			}
		}
	}
	return false
}

// Count returns the number of set bits.
func (m *Mask) Count() int {
	n := 0
	for _, row := range m.bits {
		for _, b := range row {
			if b {
				n++
			}
		}
	}
	return n
}

// Positions returns the set bits as cell references in row-major order.
func (m *Mask) Positions() []CellRef {
	var refs []CellRef
	for i, row := range m.bits {
		for j, b := range row {
			if b {
				refs = append(refs, CellRef{Row: i, Col: j})
			}
		}
	}
	return refs
}

// Outcome is a grid of per-cell labels describing which rules fired, aligned
// with the table it was derived from.
type Outcome struct {
	rowKeys []Key
	colKeys []Key
	labels  [][]string
}

// NewOutcome returns an outcome grid of the same shape as t with every
// label empty.
func NewOutcome(t *Table) *Outcome {
	o := &Outcome{rowKeys: t.RowKeys(), colKeys: t.ColKeys()}
	o.labels = make([][]string, t.NumRows())
	for i := range o.labels {
		o.labels[i] = make([]string, t.NumCols())
	}
	return o
}

// NumRows returns the number of rows.
func (o *Outcome) NumRows() int {
	return len(o.rowKeys)
}

// NumCols returns the number of columns.
func (o *Outcome) NumCols() int {
	return len(o.colKeys)
}

// RowKeys returns a copy of the ordered row keys.
func (o *Outcome) RowKeys() []Key {
	return cloneKeys(o.rowKeys)
}

// ColKeys returns a copy of the ordered column keys.
func (o *Outcome) ColKeys() []Key {
	return cloneKeys(o.colKeys)
}

// At returns the label at row i, column j.
func (o *Outcome) At(i, j int) string {
	return o.labels[i][j]
}

// Set replaces the label at row i, column j.
func (o *Outcome) Set(i, j int, label string) {
	o.labels[i][j] = label
}

// Append adds label to the cell at row i, column j, followed by "; ".
func (o *Outcome) Append(i, j int, label string) {
	o.labels[i][j] += label + "; "
}

// FillEmpty replaces every empty label with the given one.
func (o *Outcome) FillEmpty(label string) {
	for i := range o.labels {
		for j := range o.labels[i] {
			if o.labels[i][j] == "" {
				o.labels[i][j] = label
			}
		}
	}
}

// Fill sets every label to the given one.
func (o *Outcome) Fill(label string) {
	for i := range o.labels {
		for j := range o.labels[i] {
			o.labels[i][j] = label
		}
	}
}
