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

package sdc

import (
	"fmt"

	log "github.com/golang/glog"
	"github.com/safeoutputs/disclosure-control/rules"
	"github.com/safeoutputs/disclosure-control/table"
	"github.com/safeoutputs/disclosure-control/tabulate"
)

// Margin totals computed before suppression cannot stand afterwards: left
// alone they let a reader reconstruct the blanked cells by subtraction.
// recomputeMargins rebuilds the totals of a suppressed result, choosing a
// strategy per aggregation function:
//
//   - frequency tables: drop the records behind every suppressed cell and
//     re-derive the totals by running the filtered dataset through the
//     whole pipeline again. If a grouping key vanishes with its records the
//     totals are not computable; they are dropped and a warning recorded.
//   - sum and count: each total becomes the sum of the cells still visible
//     on its axis.
//   - mean: weighted totals over the visible cells, with the parallel
//     non-missing counts as weights.
//   - std: no closed form exists; the totals are dropped and a warning
//     recorded.
//
// Median and mode never reach this point: CrossTab rejects them together
// with margins while suppression is on.
func (e *Engine) recomputeMargins(ds *tabulate.Dataset, req tabulate.Request, ev *evaluation, res *Result) {
	mname := req.MarginLabel()
	mrow := res.Table.RowIndex(table.Key{mname})
	if mrow < 0 {
		// The totals were pruned away with the empty rows.
		return
	}
	if len(req.Aggs) == 0 {
		e.rederiveFrequencyMargins(ds, req, ev, res, mrow)
		return
	}
	for _, f := range req.Aggs {
		if f == tabulate.Std {
			warn := fmt.Sprintf("margins for %v cannot be recomputed after suppression; totals dropped", f)
			log.Warningf("sdc: %s", warn)
			res.Warnings = append(res.Warnings, warn)
			dropMargins(res, req, mname)
			return
		}
	}
	var counts *table.Table
	for b, f := range req.Aggs {
		body, mcol := blockCols(res.Table, req.Aggs, b, mname)
		if mcol < 0 {
			continue
		}
		switch f {
		case tabulate.Sum, tabulate.Count:
			analyticMargins(res.Table, body, mcol, mrow)
		case tabulate.Mean:
			if counts == nil {
				var err error
				counts, err = ev.grouping.Aggregate([]tabulate.AggFunc{tabulate.Count})
				if err != nil {
					log.Warningf("sdc: counting contributors for mean margins: %v", err)
					return
				}
			}
			weightedMeanMargins(res.Table, counts, body, mcol, mrow, len(req.Aggs) > 1)
		}
	}
}

// rederiveFrequencyMargins recomputes the totals of a suppressed frequency
// table from the records that survive dropping every suppressed cell's
// contributors. The filtered dataset goes through the full pipeline, so a
// re-derived total below the threshold stays suppressed.
func (e *Engine) rederiveFrequencyMargins(ds *tabulate.Dataset, req tabulate.Request, ev *evaluation, res *Result, mrow int) {
	mname := req.MarginLabel()
	t := res.Table
	mcol := t.ColIndex(table.Key{mname})
	if mcol < 0 {
		return
	}
	rowKeys, colKeys := t.RowKeys(), t.ColKeys()
	gRows, gCols := ev.grouping.RowKeys(), ev.grouping.ColKeys()

	drop := make(map[int]bool)
	for _, ref := range ev.masks[rules.Threshold].Positions() {
		if ref.Row == mrow || ref.Col == mcol {
			continue
		}
		gi := keyIndex(gRows, rowKeys[ref.Row])
		gj := keyIndex(gCols, colKeys[ref.Col])
		for _, rec := range ev.grouping.Records(gi, gj) {
			drop[rec] = true
		}
	}
	keep := make([]bool, ds.NumRecords())
	for i := range keep {
		keep[i] = !drop[i]
	}

	safe2, ok := e.filteredFrequency(ds, req, keep)
	if !ok || !coversBody(safe2, rowKeys, colKeys, mrow, mcol) {
		warn := "margin totals could not be recomputed after suppression; totals dropped"
		log.Warningf("sdc: %s", warn)
		res.Warnings = append(res.Warnings, warn)
		dropMargins(res, req, mname)
		return
	}

	m2row := safe2.RowIndex(table.Key{mname})
	m2col := safe2.ColIndex(table.Key{mname})
	for i, rk := range rowKeys {
		if i == mrow {
			continue
		}
		t.Set(i, mcol, safe2.At(safe2.RowIndex(rk), m2col))
	}
	for j, ck := range colKeys {
		if j == mcol {
			continue
		}
		t.Set(mrow, j, safe2.At(m2row, safe2.ColIndex(ck)))
	}
	t.Set(mrow, mcol, safe2.At(m2row, m2col))
}

// filteredFrequency runs the filtered records through the evaluation
// pipeline once and returns the suppressed frequency table.
func (e *Engine) filteredFrequency(ds *tabulate.Dataset, req tabulate.Request, keep []bool) (*table.Table, bool) {
	fds, err := ds.Filter(keep)
	if err != nil {
		log.Warningf("sdc: filtering suppressed records: %v", err)
		return nil, false
	}
	ev, err := e.evaluate(fds, req)
	if err != nil {
		log.Warningf("sdc: re-deriving totals: %v", err)
		return nil, false
	}
	return ev.safe, true
}

// coversBody reports whether t2 still carries every body key of the
// original table, margin row and margin column included.
func coversBody(t2 *table.Table, rowKeys, colKeys []table.Key, mrow, mcol int) bool {
	for i, rk := range rowKeys {
		if i != mrow && t2.RowIndex(rk) < 0 {
			return false
		}
	}
	for j, ck := range colKeys {
		if j != mcol && t2.ColIndex(ck) < 0 {
			return false
		}
	}
	return t2.RowIndex(rowKeys[mrow]) >= 0 && t2.ColIndex(colKeys[mcol]) >= 0
}

// blockCols returns the body column indexes and the margin column index of
// the function at position b in fs, or -1 when the margin column was
// pruned.
func blockCols(t *table.Table, fs []tabulate.AggFunc, b int, mname string) (body []int, margin int) {
	margin = -1
	multi := len(fs) > 1
	fname := fs[b].String()
	for j, k := range t.ColKeys() {
		if multi {
			if k[0] != fname {
				continue
			}
			if len(k) == 2 && k[1] == mname {
				margin = j
			} else {
				body = append(body, j)
			}
			continue
		}
		if len(k) == 1 && k[0] == mname {
			margin = j
		} else {
			body = append(body, j)
		}
	}
	return body, margin
}

// analyticMargins recomputes the block's totals as the sums of the cells
// still visible after suppression. A reader could derive these sums from
// the published cells anyway, so showing them reveals nothing new.
func analyticMargins(t *table.Table, body []int, mcol, mrow int) {
	for i := 0; i < t.NumRows(); i++ {
		if i == mrow {
			continue
		}
		var s float64
		for _, j := range body {
			if c := t.At(i, j); c.IsValued() {
				s += c.Value
			}
		}
		t.Set(i, mcol, table.Value(s))
	}
	var grand float64
	for _, j := range body {
		var s float64
		for i := 0; i < t.NumRows(); i++ {
			if i == mrow {
				continue
			}
			if c := t.At(i, j); c.IsValued() {
				s += c.Value
			}
		}
		t.Set(mrow, j, table.Value(s))
		grand += s
	}
	t.Set(mrow, mcol, table.Value(grand))
}

// weightedMeanMargins recomputes the block's totals as contributor-count
// weighted means over the visible cells. counts is the unpruned Count
// table of the same grouping; a total with no visible cell left becomes
// the missing sentinel.
func weightedMeanMargins(t, counts *table.Table, body []int, mcol, mrow int, multi bool) {
	rowKeys, colKeys := t.RowKeys(), t.ColKeys()
	weight := func(i, j int) float64 {
		base := colKeys[j]
		if multi {
			base = base[1:]
		}
		c := counts.At(counts.RowIndex(rowKeys[i]), counts.ColIndex(base))
		if !c.IsValued() {
			return 0
		}
		return c.Value
	}
	marginCell := func(num, den float64) table.Cell {
		if den == 0 {
			return table.Missing()
		}
		return table.Value(num / den)
	}

	var gnum, gden float64
	for i := 0; i < t.NumRows(); i++ {
		if i == mrow {
			continue
		}
		var num, den float64
		for _, j := range body {
			if c := t.At(i, j); c.IsValued() {
				w := weight(i, j)
				num += c.Value * w
				den += w
			}
		}
		t.Set(i, mcol, marginCell(num, den))
		gnum += num
		gden += den
	}
	for _, j := range body {
		var num, den float64
		for i := 0; i < t.NumRows(); i++ {
			if i == mrow {
				continue
			}
			if c := t.At(i, j); c.IsValued() {
				w := weight(i, j)
				num += c.Value * w
				den += w
			}
		}
		t.Set(mrow, j, marginCell(num, den))
	}
	t.Set(mrow, mcol, marginCell(gnum, gden))
}

// dropMargins removes the margin row and the margin columns from the
// result's table and outcome grid, keeping the two aligned.
func dropMargins(res *Result, req tabulate.Request, mname string) {
	t := res.Table
	var rowKeys []table.Key
	var rowAt []int
	for i, k := range t.RowKeys() {
		if len(k) == 1 && k[0] == mname {
			continue
		}
		rowKeys = append(rowKeys, k)
		rowAt = append(rowAt, i)
	}
	var colKeys []table.Key
	var colAt []int
	for j, k := range t.ColKeys() {
		if isMarginCol(k, req, mname) {
			continue
		}
		colKeys = append(colKeys, k)
		colAt = append(colAt, j)
	}
	nt, err := table.New(rowKeys, colKeys)
	if err != nil {
		log.Fatalf("sdc: rebuilding table without margins: %v", err)
	}
	for i := range rowAt {
		for j := range colAt {
			nt.Set(i, j, t.At(rowAt[i], colAt[j]))
		}
	}
	no := table.NewOutcome(nt)
	for i := range rowAt {
		for j := range colAt {
			no.Set(i, j, res.Outcome.At(rowAt[i], colAt[j]))
		}
	}
	res.Table = nt
	res.Outcome = no
}

// isMarginCol reports whether k is a margin column key under req: the bare
// margin name, or function-prefixed when several statistics share the
// table.
func isMarginCol(k table.Key, req tabulate.Request, mname string) bool {
	if len(req.Aggs) > 1 {
		return len(k) == 2 && k[1] == mname
	}
	return len(k) == 1 && k[0] == mname
}

func keyIndex(keys []table.Key, k table.Key) int {
	for i, gk := range keys {
		if gk.Equal(k) {
			return i
		}
	}
	return -1
}
