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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/safeoutputs/disclosure-control/checks"
)

func TestDatasetAddColumns(t *testing.T) {
	d := NewDataset()
	if err := d.AddCategory("region", []string{"north", "south", "north"}); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if err := d.AddNumeric("income", []float64{10, 20, 30}); err != nil {
		t.Fatalf("AddNumeric: %v", err)
	}
	if got := d.NumRecords(); got != 3 {
		t.Errorf("NumRecords: got %d, want 3", got)
	}

	for _, tc := range []struct {
		desc string
		err  error
	}{
		{"length mismatch", d.AddCategory("year", []string{"2010"})},
		{"duplicate name", d.AddCategory("region", []string{"a", "b", "c"})},
		{"duplicate name across types", d.AddNumeric("region", []float64{1, 2, 3})},
		{"empty name", d.AddNumeric("", []float64{1, 2, 3})},
	} {
		if tc.err == nil {
			t.Errorf("%s: want error, got nil", tc.desc)
			continue
		}
		if !errors.Is(tc.err, checks.ErrInvalidArgument) {
			t.Errorf("%s: error %v does not wrap ErrInvalidArgument", tc.desc, tc.err)
		}
	}
}

func TestDatasetAccessorsCopy(t *testing.T) {
	d := NewDataset()
	if err := d.AddCategory("region", []string{"north", "south"}); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	got, ok := d.Category("region")
	if !ok {
		t.Fatalf("Category: column not found")
	}
	got[0] = "mutated"
	again, _ := d.Category("region")
	if again[0] != "north" {
		t.Errorf("Category: returned slice shares storage with the dataset")
	}
	if _, ok := d.Numeric("region"); ok {
		t.Errorf("Numeric: categorical column reported as numeric")
	}
	if _, ok := d.Category("absent"); ok {
		t.Errorf("Category: absent column reported present")
	}
}

func TestDatasetFilter(t *testing.T) {
	d := NewDataset()
	if err := d.AddCategory("region", []string{"north", "south", "east", "west"}); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if err := d.AddNumeric("income", []float64{1, 2, 3, 4}); err != nil {
		t.Fatalf("AddNumeric: %v", err)
	}

	got, err := d.Filter([]bool{true, false, true, false})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if got.NumRecords() != 2 {
		t.Errorf("Filter: got %d records, want 2", got.NumRecords())
	}
	region, _ := got.Category("region")
	if diff := cmp.Diff([]string{"north", "east"}, region); diff != "" {
		t.Errorf("Filter: region diff (-want +got):\n%s", diff)
	}
	income, _ := got.Numeric("income")
	if diff := cmp.Diff([]float64{1, 3}, income); diff != "" {
		t.Errorf("Filter: income diff (-want +got):\n%s", diff)
	}

	if _, err := d.Filter([]bool{true}); err == nil {
		t.Errorf("Filter: wrong keep length, want error, got nil")
	} else if !errors.Is(err, checks.ErrInvalidArgument) {
		t.Errorf("Filter: error %v does not wrap ErrInvalidArgument", err)
	}
}
