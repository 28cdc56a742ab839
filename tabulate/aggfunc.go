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

	"github.com/safeoutputs/disclosure-control/checks"
	"github.com/safeoutputs/disclosure-control/rules"
	"github.com/safeoutputs/disclosure-control/table"
	"gonum.org/v1/gonum/stat"
)

// AggFunc is one of the recognized aggregation functions. The set is
// closed: names are mapped once at the boundary by ParseAggFunc and
// matched exhaustively everywhere else.
type AggFunc int

const (
	// Mean averages the finite contributions.
	Mean AggFunc = iota
	// Median takes the middle finite contribution.
	Median
	// Sum totals the finite contributions.
	Sum
	// Std is the population standard deviation of the finite contributions.
	Std
	// Count counts the finite contributions.
	Count
	// Mode selects the most frequent contribution.
	Mode
)

var aggFuncName = map[AggFunc]string{
	Mean:   "mean",
	Median: "median",
	Sum:    "sum",
	Std:    "std",
	Count:  "count",
	Mode:   "mode",
}

func (f AggFunc) String() string {
	return aggFuncName[f]
}

// ParseAggFunc maps an aggregation-function name to its AggFunc.
func ParseAggFunc(name string) (AggFunc, error) {
	for f, n := range aggFuncName {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("ParseAggFunc: aggfunc %q must be one of [mean median sum std count mode]: %w", name, checks.ErrInvalidArgument)
}

// ParseAggFuncs maps a list of aggregation-function names to AggFuncs.
func ParseAggFuncs(names []string) ([]AggFunc, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]AggFunc, len(names))
	for i, name := range names {
		f, err := ParseAggFunc(name)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// IsSelection reports whether f reveals one of the contributed values
// rather than a numeric summary of them.
func (f AggFunc) IsSelection() bool {
	return f == Mode
}

// apply evaluates f over one cell's group. Cells with no contributing
// records are undefined; cells whose every contribution is missing are
// undefined except under Sum and Count, which total and count an empty set.
func (f AggFunc) apply(g rules.Group) table.Cell {
	if g.Size() == 0 {
		return table.Undefined()
	}
	switch f {
	case Count:
		return table.Value(float64(len(g.Values)))
	case Sum:
		return table.Value(g.Sum())
	}
	if len(g.Values) == 0 {
		return table.Undefined()
	}
	switch f {
	case Mean:
		return table.Value(stat.Mean(g.Values, nil))
	case Median:
		vals := append([]float64(nil), g.Values...)
		sort.Float64s(vals)
		return table.Value(stat.Quantile(0.5, stat.LinInterp, vals, nil))
	case Std:
		return table.Value(stat.PopStdDev(g.Values, nil))
	case Mode:
		return table.Value(modeValue(g.Values))
	}
	return table.Undefined()
}

// modeValue returns the most frequent value; ties resolve to the smallest
// so that repeated runs agree.
func modeValue(values []float64) float64 {
	vals := append([]float64(nil), values...)
	sort.Float64s(vals)
	best, bestCount := vals[0], 0
	run, runCount := vals[0], 0
	for _, v := range vals {
		if v == run {
			runCount++
		} else {
			run, runCount = v, 1
		}
		if runCount > bestCount {
			best, bestCount = run, runCount
		}
	}
	return best
}
