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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/safeoutputs/disclosure-control/rules"
	"github.com/safeoutputs/disclosure-control/table"
)

var (
	testRowKeys = []table.Key{{"a"}, {"b"}}
	testColKeys = []table.Key{{"x"}, {"y"}}
)

func maskOf(refs ...table.CellRef) *table.Mask {
	m := table.NewMask(testRowKeys, testColKeys)
	for _, r := range refs {
		m.Set(r.Row, r.Col, true)
	}
	return m
}

func TestStatusString(t *testing.T) {
	for _, tc := range []struct {
		s    Status
		want string
	}{
		{Pass, "pass"},
		{Fail, "fail"},
		{Review, "review"},
	} {
		if got := tc.s.String(); got != tc.want {
			t.Errorf("Status.String: got %q, want %q", got, tc.want)
		}
	}
}

func TestNewReportStatus(t *testing.T) {
	for _, tc := range []struct {
		desc  string
		masks map[rules.Rule]*table.Mask
		want  Status
	}{
		{"no masks", nil, Pass},
		{"mask without hits",
			map[rules.Rule]*table.Mask{rules.Threshold: maskOf()}, Pass},
		{"threshold hit",
			map[rules.Rule]*table.Mask{rules.Threshold: maskOf(table.CellRef{Row: 0, Col: 0})}, Fail},
		{"all-values-are-same hit",
			map[rules.Rule]*table.Mask{rules.AllSame: maskOf(table.CellRef{Row: 1, Col: 1})}, Fail},
		{"negative overrides threshold",
			map[rules.Rule]*table.Mask{
				rules.Threshold: maskOf(table.CellRef{Row: 0, Col: 0}),
				rules.Negative:  maskOf(table.CellRef{Row: 0, Col: 1}),
			}, Review},
		{"missing overrides threshold",
			map[rules.Rule]*table.Mask{
				rules.Threshold: maskOf(table.CellRef{Row: 0, Col: 0}),
				rules.Missing:   maskOf(table.CellRef{Row: 1, Col: 0}),
			}, Review},
	} {
		if got := NewReport(tc.masks, true).Status; got != tc.want {
			t.Errorf("NewReport: %s: status got %v, want %v", tc.desc, got, tc.want)
		}
	}
}

func TestNewReportSeedsEveryRule(t *testing.T) {
	r := NewReport(nil, false)
	for _, rule := range rules.All() {
		if n, ok := r.Counts[rule]; !ok || n != 0 {
			t.Errorf("NewReport: Counts[%v] got (%d, %t), want (0, true)", rule, n, ok)
		}
		if cells, ok := r.Cells[rule]; !ok || len(cells) != 0 {
			t.Errorf("NewReport: Cells[%v] got (%v, %t), want empty and present", rule, cells, ok)
		}
	}
	if r.Suppressed {
		t.Errorf("NewReport: Suppressed got true, want false")
	}
}

func TestNewReportCountsAndCells(t *testing.T) {
	r := NewReport(map[rules.Rule]*table.Mask{
		rules.Threshold: maskOf(table.CellRef{Row: 0, Col: 0}, table.CellRef{Row: 1, Col: 1}),
		rules.PRatio:    maskOf(table.CellRef{Row: 0, Col: 0}),
	}, true)
	if got := r.Counts[rules.Threshold]; got != 2 {
		t.Errorf("NewReport: Counts[threshold] got %d, want 2", got)
	}
	want := []table.CellRef{{Row: 0, Col: 0}, {Row: 1, Col: 1}}
	if diff := cmp.Diff(want, r.Cells[rules.Threshold]); diff != "" {
		t.Errorf("NewReport: Cells[threshold] diff (-want +got):\n%s", diff)
	}
	if got := r.Counts[rules.PRatio]; got != 1 {
		t.Errorf("NewReport: Counts[p-ratio] got %d, want 1", got)
	}
	if got := r.Counts[rules.NKRule]; got != 0 {
		t.Errorf("NewReport: Counts[nk-rule] got %d, want 0", got)
	}
}

func TestSummary(t *testing.T) {
	refs := func(n int) []table.CellRef {
		out := make([]table.CellRef, 0, n)
		for i := 0; i < n && i < 2; i++ {
			for j := 0; j < 2 && len(out) < n; j++ {
				out = append(out, table.CellRef{Row: i, Col: j})
			}
		}
		return out
	}
	for _, tc := range []struct {
		desc       string
		masks      map[rules.Rule]*table.Mask
		suppressed bool
		want       string
	}{
		{"clean", nil, true, "pass"},
		{"negative found",
			map[rules.Rule]*table.Mask{
				rules.Negative:  maskOf(refs(1)...),
				rules.Threshold: maskOf(refs(2)...),
			},
			true, "review; negative values found"},
		{"missing found",
			map[rules.Rule]*table.Mask{rules.Missing: maskOf(refs(2)...)},
			true, "review; missing values found"},
		{"threshold suppressed",
			map[rules.Rule]*table.Mask{rules.Threshold: maskOf(refs(3)...)},
			true, "fail; threshold: 3 cells suppressed; "},
		{"threshold not suppressed",
			map[rules.Rule]*table.Mask{rules.Threshold: maskOf(refs(3)...)},
			false, "fail; threshold: 3 cells may need suppressing; "},
		{"rules in stable order",
			map[rules.Rule]*table.Mask{
				rules.NKRule:    maskOf(refs(1)...),
				rules.Threshold: maskOf(refs(2)...),
				rules.PRatio:    maskOf(refs(1)...),
			},
			true, "fail; threshold: 2 cells suppressed; p-ratio: 1 cells suppressed; nk-rule: 1 cells suppressed; "},
	} {
		if got := NewReport(tc.masks, tc.suppressed).Summary(); got != tc.want {
			t.Errorf("Summary: %s: got %q, want %q", tc.desc, got, tc.want)
		}
	}
}
