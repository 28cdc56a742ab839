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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func keys(ss ...string) []Key {
	out := make([]Key, len(ss))
	for i, s := range ss {
		out[i] = Key{s}
	}
	return out
}

// fill populates t row-major with valued cells.
func fill(t *Table, values [][]float64) {
	for i, row := range values {
		for j, v := range row {
			t.Set(i, j, Value(v))
		}
	}
}

func TestKeyString(t *testing.T) {
	for _, tc := range []struct {
		key  Key
		want string
	}{
		{Key{"2010"}, "2010"},
		{Key{"mean", "G"}, "mean/G"},
		{Key{}, ""},
	} {
		if got := tc.key.String(); got != tc.want {
			t.Errorf("Key.String: got %q, want %q", got, tc.want)
		}
	}
}

func TestKeysEqual(t *testing.T) {
	for _, tc := range []struct {
		desc string
		a, b []Key
		want bool
	}{
		{"identical", keys("a", "b"), keys("a", "b"), true},
		{"different order", keys("a", "b"), keys("b", "a"), false},
		{"different length", keys("a"), keys("a", "b"), false},
		{"different levels", []Key{{"a", "x"}}, []Key{{"a"}}, false},
		{"both empty", nil, nil, true},
	} {
		if got := KeysEqual(tc.a, tc.b); got != tc.want {
			t.Errorf("KeysEqual: %s: got %t, want %t", tc.desc, got, tc.want)
		}
	}
}

func TestNewRejectsDuplicateKeys(t *testing.T) {
	if _, err := New(keys("a", "a"), keys("x")); err == nil {
		t.Errorf("New: duplicate row keys, want error, got nil")
	}
	if _, err := New(keys("a"), keys("x", "x")); err == nil {
		t.Errorf("New: duplicate column keys, want error, got nil")
	}
}

func TestNewStartsUndefined(t *testing.T) {
	tbl, err := New(keys("a", "b"), keys("x", "y"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < tbl.NumRows(); i++ {
		for j := 0; j < tbl.NumCols(); j++ {
			if !tbl.At(i, j).IsUndefined() {
				t.Errorf("New: cell (%d,%d) is %v, want undefined", i, j, tbl.At(i, j))
			}
		}
	}
}

func TestCellStates(t *testing.T) {
	for _, tc := range []struct {
		desc                   string
		cell                   Cell
		valued, missing, undef bool
		str                    string
	}{
		{"valued", Value(2.5), true, false, false, "2.5"},
		{"valued zero", Value(0), true, false, false, "0"},
		{"missing", Missing(), false, true, false, ""},
		{"undefined", Undefined(), false, false, true, ""},
	} {
		if got := tc.cell.IsValued(); got != tc.valued {
			t.Errorf("%s: IsValued got %t, want %t", tc.desc, got, tc.valued)
		}
		if got := tc.cell.IsMissing(); got != tc.missing {
			t.Errorf("%s: IsMissing got %t, want %t", tc.desc, got, tc.missing)
		}
		if got := tc.cell.IsUndefined(); got != tc.undef {
			t.Errorf("%s: IsUndefined got %t, want %t", tc.desc, got, tc.undef)
		}
		if got := tc.cell.String(); got != tc.str {
			t.Errorf("%s: String got %q, want %q", tc.desc, got, tc.str)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tbl, err := New(keys("a"), keys("x", "y"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fill(tbl, [][]float64{{1, 2}})
	c := tbl.Clone()
	c.Set(0, 0, Missing())
	if got := tbl.At(0, 0); !got.IsValued() || got.Value != 1 {
		t.Errorf("Clone: mutating the clone changed the original: got %v", got)
	}
}

func TestRowColIndex(t *testing.T) {
	tbl, err := New(keys("a", "b"), []Key{{"mean", "x"}, {"mean", "y"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := tbl.RowIndex(Key{"b"}); got != 1 {
		t.Errorf("RowIndex: got %d, want 1", got)
	}
	if got := tbl.RowIndex(Key{"c"}); got != -1 {
		t.Errorf("RowIndex: absent key, got %d, want -1", got)
	}
	if got := tbl.ColIndex(Key{"mean", "y"}); got != 1 {
		t.Errorf("ColIndex: got %d, want 1", got)
	}
	if got := tbl.ColIndex(Key{"mean"}); got != -1 {
		t.Errorf("ColIndex: partial key, got %d, want -1", got)
	}
}

func TestMask(t *testing.T) {
	tbl, err := New(keys("a", "b"), keys("x", "y"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m := NewMask(tbl.RowKeys(), tbl.ColKeys())
	if m.Any() {
		t.Errorf("NewMask: fresh mask has set bits")
	}
	m.Set(0, 1, true)
	m.Set(1, 0, true)
	if !m.Any() {
		t.Errorf("Any: got false after Set")
	}
	if got := m.Count(); got != 2 {
		t.Errorf("Count: got %d, want 2", got)
	}
	wantRefs := []CellRef{{Row: 0, Col: 1}, {Row: 1, Col: 0}}
	if diff := cmp.Diff(wantRefs, m.Positions()); diff != "" {
		t.Errorf("Positions: diff (-want +got):\n%s", diff)
	}
	if !m.AlignsWith(tbl) {
		t.Errorf("AlignsWith: aligned mask reported misaligned")
	}
	other := NewMask(keys("a"), keys("x", "y"))
	if other.AlignsWith(tbl) {
		t.Errorf("AlignsWith: misaligned mask reported aligned")
	}
}

func TestMaskRestrict(t *testing.T) {
	m := NewMask(keys("a", "b"), keys("x", "y", "z"))
	m.Set(0, 0, true)
	m.Set(1, 2, true)

	sub, err := New(keys("b"), keys("z", "x"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, ok := m.Restrict(sub)
	if !ok {
		t.Fatalf("Restrict: covered table reported not coverable")
	}
	if !got.AlignsWith(sub) {
		t.Errorf("Restrict: result does not align with the table")
	}
	if !got.At(0, 0) {
		t.Errorf("Restrict: bit for (b,z) lost")
	}
	if got.At(0, 1) {
		t.Errorf("Restrict: bit for (b,x) set, want clear")
	}

	foreign, err := New(keys("c"), keys("x"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := m.Restrict(foreign); ok {
		t.Errorf("Restrict: foreign key reported coverable")
	}
}

func TestOutcome(t *testing.T) {
	tbl, err := New(keys("a"), keys("x", "y"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	o := NewOutcome(tbl)
	o.Append(0, 0, "threshold")
	o.Append(0, 0, "p-ratio")
	o.FillEmpty("ok")
	if got, want := o.At(0, 0), "threshold; p-ratio; "; got != want {
		t.Errorf("Append: got %q, want %q", got, want)
	}
	if got, want := o.At(0, 1), "ok"; got != want {
		t.Errorf("FillEmpty: got %q, want %q", got, want)
	}
	o.Fill("negative")
	if got, want := o.At(0, 0), "negative"; got != want {
		t.Errorf("Fill: got %q, want %q", got, want)
	}
}

func TestPruneEmpty(t *testing.T) {
	for _, tc := range []struct {
		desc     string
		rows     []Key
		cols     []Key
		cells    [][]Cell
		wantRows []Key
		wantCols []Key
	}{
		{
			desc: "all-zero column dropped",
			rows: keys("a", "b"),
			cols: keys("x", "y", "z"),
			cells: [][]Cell{
				{Value(1), Value(0), Value(3)},
				{Value(2), Value(0), Value(4)},
			},
			wantRows: keys("a", "b"),
			wantCols: keys("x", "z"),
		},
		{
			desc: "all-undefined row dropped",
			rows: keys("a", "b"),
			cols: keys("x", "y"),
			cells: [][]Cell{
				{Undefined(), Undefined()},
				{Value(2), Value(4)},
			},
			wantRows: keys("b"),
			wantCols: keys("x", "y"),
		},
		{
			desc: "mixed row kept",
			rows: keys("a"),
			cols: keys("x", "y"),
			cells: [][]Cell{
				{Value(0), Value(4)},
			},
			wantRows: keys("a"),
			wantCols: keys("x", "y"),
		},
		{
			desc: "missing cells count as empty",
			rows: keys("a", "b"),
			cols: keys("x"),
			cells: [][]Cell{
				{Missing()},
				{Value(1)},
			},
			wantRows: keys("b"),
			wantCols: keys("x"),
		},
		{
			desc: "everything empty",
			rows: keys("a"),
			cols: keys("x"),
			cells: [][]Cell{
				{Value(0)},
			},
			wantRows: []Key{},
			wantCols: []Key{},
		},
	} {
		tbl, err := New(tc.rows, tc.cols)
		if err != nil {
			t.Fatalf("%s: New: %v", tc.desc, err)
		}
		for i, row := range tc.cells {
			for j, c := range row {
				tbl.Set(i, j, c)
			}
		}
		got := PruneEmpty(tbl)
		if diff := cmp.Diff(tc.wantRows, got.RowKeys(), cmp.Comparer(func(a, b Key) bool { return a.Equal(b) })); diff != "" {
			t.Errorf("%s: row keys diff (-want +got):\n%s", tc.desc, diff)
		}
		if diff := cmp.Diff(tc.wantCols, got.ColKeys(), cmp.Comparer(func(a, b Key) bool { return a.Equal(b) })); diff != "" {
			t.Errorf("%s: col keys diff (-want +got):\n%s", tc.desc, diff)
		}
	}
}

func TestPruneEmptyCopies(t *testing.T) {
	tbl, err := New(keys("a", "b"), keys("x"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fill(tbl, [][]float64{{1}, {2}})
	pruned := PruneEmpty(tbl)
	pruned.Set(0, 0, Missing())
	if got := tbl.At(0, 0); !got.IsValued() || got.Value != 1 {
		t.Errorf("PruneEmpty: mutating the pruned table changed the original: got %v", got)
	}
}

func TestFormat(t *testing.T) {
	tbl, err := New(keys("2010", "2011"), keys("G", "N"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tbl.Set(0, 0, Value(15))
	tbl.Set(0, 1, Value(59))
	tbl.Set(1, 0, Value(7))
	tbl.Set(1, 1, Missing())
	want := "" +
		"----------|\n" +
		"    |G |N |\n" +
		"----------|\n" +
		"2010|15|59|\n" +
		"2011|7 |  |\n" +
		"----------|\n"
	if diff := cmp.Diff(want, tbl.Format()); diff != "" {
		t.Errorf("Format: diff (-want +got):\n%s", diff)
	}
}
