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

package table

import (
	log "github.com/golang/glog"
)

// emptyCell reports whether a cell carries no information for rule
// evaluation: undefined, missing, or exactly zero.
func emptyCell(c Cell) bool {
	switch c.Kind {
	case CellMissing, CellUndefined:
		return true
	}
	return c.Value == 0
}

// PruneEmpty returns a copy of t without rows and columns that are entirely
// empty (every cell undefined, missing, or zero). Columns are examined
// first, then rows, so a row kept alive only by an empty column is still
// dropped. Dropped keys are logged.
func PruneEmpty(t *Table) *Table {
	keepCols := make([]int, 0, t.NumCols())
	for j := 0; j < t.NumCols(); j++ {
		empty := true
		for i := 0; i < t.NumRows(); i++ {
			if !emptyCell(t.At(i, j)) {
				empty = false
				break
			}
		}
		if empty {
			log.Infof("pruning empty column %q", t.colKeys[j])
		} else {
			keepCols = append(keepCols, j)
		}
	}

	keepRows := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		empty := true
		for _, j := range keepCols {
			if !emptyCell(t.At(i, j)) {
				empty = false
				break
			}
		}
		if empty {
			log.Infof("pruning empty row %q", t.rowKeys[i])
		} else {
			keepRows = append(keepRows, i)
		}
	}

	rowKeys := make([]Key, len(keepRows))
	for n, i := range keepRows {
		rowKeys[n] = t.rowKeys[i].Clone()
	}
	colKeys := make([]Key, len(keepCols))
	for n, j := range keepCols {
		colKeys[n] = t.colKeys[j].Clone()
	}

	out := &Table{rowKeys: rowKeys, colKeys: colKeys}
	out.cells = make([][]Cell, len(keepRows))
	for n, i := range keepRows {
		row := make([]Cell, len(keepCols))
		for nn, j := range keepCols {
			row[nn] = t.At(i, j)
		}
		out.cells[n] = row
	}
	return out
}
