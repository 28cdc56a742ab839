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

package tabulate

import (
	"fmt"
	"sort"
	"strings"

	log "github.com/golang/glog"
	"github.com/safeoutputs/disclosure-control/checks"
	"github.com/safeoutputs/disclosure-control/rules"
	"github.com/safeoutputs/disclosure-control/table"
)

// DefaultMarginsName labels margin rows and columns unless the request
// overrides it.
const DefaultMarginsName = "All"

// Request describes one cross-tabulation.
type Request struct {
	// Rows and Cols name the categorical columns keying the output grid;
	// several names per axis produce hierarchical keys.
	Rows []string
	Cols []string
	// Values names the numeric column to aggregate. Required when Aggs is
	// set, forbidden otherwise.
	Values string
	// Aggs are the requested statistics; empty means a frequency table.
	Aggs []AggFunc
	// Margins adds per-row and per-column total groups plus a grand total.
	Margins bool
	// MarginsName labels the totals; empty means DefaultMarginsName.
	MarginsName string
}

// MarginLabel returns the label margin rows and columns carry under this
// request.
func (r Request) MarginLabel() string {
	if r.MarginsName == "" {
		return DefaultMarginsName
	}
	return r.MarginsName
}

func (r Request) validate(d *Dataset) error {
	if len(r.Rows) == 0 || len(r.Cols) == 0 {
		return fmt.Errorf("tabulate: request needs at least one row and one column grouping column: %w", checks.ErrInvalidArgument)
	}
	seen := make(map[string]bool)
	for _, name := range append(append([]string(nil), r.Rows...), r.Cols...) {
		if err := checks.CheckColumnName("Request", name); err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("tabulate: grouping column %q used twice: %w", name, checks.ErrInvalidArgument)
		}
		seen[name] = true
		if _, ok := d.cats[name]; !ok {
			return fmt.Errorf("tabulate: grouping column %q is not a categorical column of the dataset: %w", name, checks.ErrInvalidArgument)
		}
	}
	if len(r.Aggs) > 0 && r.Values == "" {
		return fmt.Errorf("tabulate: aggregation functions need a values column: %w", checks.ErrInvalidArgument)
	}
	if r.Values != "" && len(r.Aggs) == 0 {
		return fmt.Errorf("tabulate: values column %q needs an aggregation function: %w", r.Values, checks.ErrInvalidArgument)
	}
	if r.Values != "" {
		if _, ok := d.nums[r.Values]; !ok {
			return fmt.Errorf("tabulate: values column %q is not a numeric column of the dataset: %w", r.Values, checks.ErrInvalidArgument)
		}
	}
	seenFunc := make(map[AggFunc]bool)
	for _, f := range r.Aggs {
		if _, ok := aggFuncName[f]; !ok {
			return fmt.Errorf("tabulate: unrecognized aggregation function %d: %w", int(f), checks.ErrInvalidArgument)
		}
		if f.IsSelection() && len(r.Aggs) > 1 {
			return fmt.Errorf("tabulate: %v cannot be combined with other aggregation functions: %w", f, checks.ErrInvalidArgument)
		}
		if seenFunc[f] {
			return fmt.Errorf("tabulate: aggregation function %v requested twice: %w", f, checks.ErrInvalidArgument)
		}
		seenFunc[f] = true
	}
	return nil
}

// groupCell is one cell of the grouping grid: the indexes of the records
// falling into it and their value contributions.
type groupCell struct {
	records []int
	group   rules.Group
}

// Grouping is the evaluated cross-grouping of a dataset: one group of raw
// contributions per output cell, margin groups included when requested.
// Frequency tables, aggregated tables and rule masks all derive from the
// same grouping, which keeps them key-aligned by construction.
type Grouping struct {
	rowKeys     []table.Key
	colKeys     []table.Key
	cells       [][]groupCell
	margins     bool
	marginsName string
}

// GroupBy groups the dataset's records per req. The row and column keys
// are the sorted distinct key combinations found in the data; margin
// groups, when requested, come last on each axis.
func GroupBy(d *Dataset, req Request) (*Grouping, error) {
	if err := req.validate(d); err != nil {
		return nil, err
	}

	rowCols := make([][]string, len(req.Rows))
	for i, name := range req.Rows {
		rowCols[i] = d.cats[name]
	}
	colCols := make([][]string, len(req.Cols))
	for i, name := range req.Cols {
		colCols[i] = d.cats[name]
	}
	values := d.nums[req.Values]

	rowKeys := distinctKeys(rowCols, d.n)
	colKeys := distinctKeys(colCols, d.n)
	mname := req.MarginLabel()
	if req.Margins {
		for _, k := range append(append([]table.Key(nil), rowKeys...), colKeys...) {
			if len(k) == 1 && k[0] == mname {
				return nil, fmt.Errorf("tabulate: margins name %q collides with a grouping key: %w", mname, checks.ErrInvalidArgument)
			}
		}
	}

	nr, nc := len(rowKeys), len(colKeys)
	rows, cols := nr, nc
	if req.Margins {
		rows, cols = nr+1, nc+1
	}
	cells := make([][]groupCell, rows)
	for i := range cells {
		cells[i] = make([]groupCell, cols)
	}

	rowIdx := indexKeys(rowKeys)
	colIdx := indexKeys(colKeys)
	for rec := 0; rec < d.n; rec++ {
		i := rowIdx[recordKey(rowCols, rec)]
		j := colIdx[recordKey(colCols, rec)]
		c := &cells[i][j]
		c.records = append(c.records, rec)
		if values != nil {
			if v := values[rec]; missingValue(v) {
				c.group.Missing++
			} else {
				c.group.Values = append(c.group.Values, v)
			}
		}
	}

	if req.Margins {
		for i := 0; i < nr; i++ {
			for j := 0; j < nc; j++ {
				mergeCell(&cells[i][nc], cells[i][j])
				mergeCell(&cells[nr][j], cells[i][j])
				mergeCell(&cells[nr][nc], cells[i][j])
			}
		}
		rowKeys = append(rowKeys, table.Key{mname})
		colKeys = append(colKeys, table.Key{mname})
	}

	return &Grouping{
		rowKeys:     rowKeys,
		colKeys:     colKeys,
		cells:       cells,
		margins:     req.Margins,
		marginsName: mname,
	}, nil
}

func mergeCell(dst *groupCell, src groupCell) {
	dst.records = append(dst.records, src.records...)
	dst.group.Values = append(dst.group.Values, src.group.Values...)
	dst.group.Missing += src.group.Missing
}

func recordKey(cols [][]string, rec int) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c[rec]
	}
	return strings.Join(parts, "\x00")
}

func distinctKeys(cols [][]string, n int) []table.Key {
	seen := make(map[string]bool)
	var keys []table.Key
	for rec := 0; rec < n; rec++ {
		id := recordKey(cols, rec)
		if seen[id] {
			continue
		}
		seen[id] = true
		k := make(table.Key, len(cols))
		for i, c := range cols {
			k[i] = c[rec]
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keyLess(keys[a], keys[b]) })
	return keys
}

func keyLess(a, b table.Key) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func indexKeys(keys []table.Key) map[string]int {
	idx := make(map[string]int, len(keys))
	for i, k := range keys {
		idx[strings.Join(k, "\x00")] = i
	}
	return idx
}

// NumRows returns the number of row groups, margins included.
func (g *Grouping) NumRows() int {
	return len(g.rowKeys)
}

// NumCols returns the number of column groups, margins included.
func (g *Grouping) NumCols() int {
	return len(g.colKeys)
}

// RowKeys returns a copy of the ordered row keys.
func (g *Grouping) RowKeys() []table.Key {
	out := make([]table.Key, len(g.rowKeys))
	for i, k := range g.rowKeys {
		out[i] = k.Clone()
	}
	return out
}

// ColKeys returns a copy of the ordered base column keys, without the
// per-statistic level multi-function tables add.
func (g *Grouping) ColKeys() []table.Key {
	out := make([]table.Key, len(g.colKeys))
	for i, k := range g.colKeys {
		out[i] = k.Clone()
	}
	return out
}

// Records returns the dataset record indexes contributing to the group at
// row i, column j.
func (g *Grouping) Records(i, j int) []int {
	return append([]int(nil), g.cells[i][j].records...)
}

// AnyGroup reports whether pred holds for any group with at least one
// contributing record. Empty groups are not consulted.
func (g *Grouping) AnyGroup(pred func(rules.Group) bool) bool {
	for i := range g.cells {
		for j := range g.cells[i] {
			c := g.cells[i][j]
			if len(c.records) > 0 && pred(c.group) {
				return true
			}
		}
	}
	return false
}

// columnLayout returns the column keys of tables derived with fs: the base
// keys for zero or one function, the function × key product otherwise.
func (g *Grouping) columnLayout(fs []AggFunc) []table.Key {
	if len(fs) <= 1 {
		return g.ColKeys()
	}
	keys := make([]table.Key, 0, len(fs)*len(g.colKeys))
	for _, f := range fs {
		for _, ck := range g.colKeys {
			keys = append(keys, append(table.Key{f.String()}, ck...))
		}
	}
	return keys
}

// Frequency returns the record-count table: one valued cell per group,
// zero where no records fall.
func (g *Grouping) Frequency() *table.Table {
	t := mustNew(g.RowKeys(), g.ColKeys())
	for i := range g.cells {
		for j := range g.cells[i] {
			t.Set(i, j, table.Value(float64(len(g.cells[i][j].records))))
		}
	}
	return t
}

// Aggregate returns the table of the requested statistics, one column
// block per function.
func (g *Grouping) Aggregate(fs []AggFunc) (*table.Table, error) {
	if len(fs) == 0 {
		return nil, fmt.Errorf("tabulate: Aggregate needs at least one function: %w", checks.ErrInvalidArgument)
	}
	t := mustNew(g.RowKeys(), g.columnLayout(fs))
	for b, f := range fs {
		for i := range g.cells {
			for j := range g.cells[i] {
				t.Set(i, b*len(g.colKeys)+j, f.apply(g.cells[i][j].group))
			}
		}
	}
	return t, nil
}

// Evaluate builds the rule mask for pred: one evaluation per group,
// broadcast across the column block of every requested statistic. Groups
// with no contributing records are undefined and normalize to true; an
// empty cell is not meaningfully safe.
func (g *Grouping) Evaluate(pred func(rules.Group) bool, fs []AggFunc) *table.Mask {
	return g.mask(fs, func(c groupCell) bool {
		if len(c.records) == 0 {
			return true
		}
		return pred(c.group)
	})
}

// EvaluateRecords builds a mask from each cell's record count; groups with
// no records evaluate the predicate at zero.
func (g *Grouping) EvaluateRecords(pred func(records int) bool, fs []AggFunc) *table.Mask {
	return g.mask(fs, func(c groupCell) bool {
		return pred(len(c.records))
	})
}

func (g *Grouping) mask(fs []AggFunc, eval func(groupCell) bool) *table.Mask {
	m := table.NewMask(g.RowKeys(), g.columnLayout(fs))
	blocks := len(fs)
	if blocks == 0 {
		blocks = 1
	}
	for i := range g.cells {
		for j := range g.cells[i] {
			v := eval(g.cells[i][j])
			for b := 0; b < blocks; b++ {
				m.Set(i, b*len(g.colKeys)+j, v)
			}
		}
	}
	return m
}

// CrossTab tabulates req over d: the frequency table when no aggregation
// is requested, the aggregated table otherwise.
func CrossTab(d *Dataset, req Request) (*table.Table, error) {
	g, err := GroupBy(d, req)
	if err != nil {
		return nil, err
	}
	if len(req.Aggs) == 0 {
		return g.Frequency(), nil
	}
	return g.Aggregate(req.Aggs)
}

// mustNew builds a table over keys already validated distinct; a failure
// here is a programming error.
func mustNew(rowKeys, colKeys []table.Key) *table.Table {
	t, err := table.New(rowKeys, colKeys)
	if err != nil {
		log.Fatalf("tabulate: building table: %v", err)
	}
	return t
}
