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

// Package tabulate builds cross-tabulations of research records: frequency
// tables, aggregated tables over a values column, and the parallel rule
// masks that disclosure checking needs. Grouping happens once per request;
// tables, aggregates and masks are then derived from the shared grouping.
package tabulate

import (
	"fmt"
	"math"

	"github.com/safeoutputs/disclosure-control/checks"
)

// Dataset is a column-oriented collection of records: named categorical and
// numeric columns, all of the same length. NaN entries in numeric columns
// are missing values.
type Dataset struct {
	n     int
	sized bool
	cats  map[string][]string
	nums  map[string][]float64
}

// NewDataset returns an empty dataset. The first column added fixes the
// number of records.
func NewDataset() *Dataset {
	return &Dataset{
		cats: make(map[string][]string),
		nums: make(map[string][]float64),
	}
}

// NumRecords returns the number of records.
func (d *Dataset) NumRecords() int {
	return d.n
}

func (d *Dataset) addColumn(name string, length int) error {
	if err := checks.CheckColumnName("Dataset", name); err != nil {
		return err
	}
	if _, ok := d.cats[name]; ok {
		return fmt.Errorf("Dataset: column %q already exists: %w", name, checks.ErrInvalidArgument)
	}
	if _, ok := d.nums[name]; ok {
		return fmt.Errorf("Dataset: column %q already exists: %w", name, checks.ErrInvalidArgument)
	}
	if d.sized && length != d.n {
		return fmt.Errorf("Dataset: column %q has %d records, want %d: %w", name, length, d.n, checks.ErrInvalidArgument)
	}
	d.n = length
	d.sized = true
	return nil
}

// AddCategory adds a categorical column. Its length must match the columns
// already present.
func (d *Dataset) AddCategory(name string, values []string) error {
	if err := d.addColumn(name, len(values)); err != nil {
		return err
	}
	d.cats[name] = append([]string(nil), values...)
	return nil
}

// AddNumeric adds a numeric column. Its length must match the columns
// already present; NaN entries are treated as missing.
func (d *Dataset) AddNumeric(name string, values []float64) error {
	if err := d.addColumn(name, len(values)); err != nil {
		return err
	}
	d.nums[name] = append([]float64(nil), values...)
	return nil
}

// Category returns a copy of the named categorical column.
func (d *Dataset) Category(name string) ([]string, bool) {
	vals, ok := d.cats[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), vals...), true
}

// Numeric returns a copy of the named numeric column.
func (d *Dataset) Numeric(name string) ([]float64, bool) {
	vals, ok := d.nums[name]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), vals...), true
}

// Filter returns a new dataset holding only the records for which keep is
// true. keep must have one entry per record.
func (d *Dataset) Filter(keep []bool) (*Dataset, error) {
	if len(keep) != d.n {
		return nil, fmt.Errorf("Dataset.Filter: keep has %d entries, want %d: %w", len(keep), d.n, checks.ErrInvalidArgument)
	}
	out := NewDataset()
	kept := 0
	for _, k := range keep {
		if k {
			kept++
		}
	}
	for name, vals := range d.cats {
		filtered := make([]string, 0, kept)
		for i, k := range keep {
			if k {
				filtered = append(filtered, vals[i])
			}
		}
		out.cats[name] = filtered
	}
	for name, vals := range d.nums {
		filtered := make([]float64, 0, kept)
		for i, k := range keep {
			if k {
				filtered = append(filtered, vals[i])
			}
		}
		out.nums[name] = filtered
	}
	out.n = kept
	out.sized = true
	return out, nil
}

// missingValue reports whether a numeric entry is the missing sentinel.
func missingValue(v float64) bool {
	return math.IsNaN(v)
}
