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

package rules

import (
	"sort"
)

// Group is the multiset of raw contributions to one table cell: the finite
// values plus a count of missing contributions.
type Group struct {
	Values  []float64
	Missing int
}

// Size returns the number of contributing records, missing ones included.
func (g Group) Size() int {
	return len(g.Values) + g.Missing
}

// Sum returns the total of the finite values.
func (g Group) Sum() float64 {
	var total float64
	for _, v := range g.Values {
		total += v
	}
	return total
}

// BelowThreshold reports whether the group has fewer contributing records
// than threshold. Missing contributions still count: the rule protects
// small groups whatever their values.
func BelowThreshold(g Group, threshold int) bool {
	return g.Size() < threshold
}

// AnyNegative reports whether any value in the group is negative. Empty
// groups are not negative.
func AnyNegative(g Group) bool {
	for _, v := range g.Values {
		if v < 0 {
			return true
		}
	}
	return false
}

// AnyMissing reports whether the group carries missing contributions.
func AnyMissing(g Group) bool {
	return g.Missing != 0
}

// PRatioViolated evaluates the p% concentration rule. With the values in
// descending order, v1 and v2 the two largest and total their sum,
// p = (total - v1 - v2) / v1 estimates how closely the second-largest
// contributor can bound the largest one; the cell is disclosive when
// p < p0. Groups with a nonpositive total or fewer than two values have no
// meaningful ratio and evaluate to zerosAreDisclosive.
func PRatioViolated(g Group, p0 float64, zerosAreDisclosive bool) bool {
	if len(g.Values) < 2 {
		return zerosAreDisclosive
	}
	total := g.Sum()
	if total <= 0 {
		return zerosAreDisclosive
	}
	vals := append([]float64(nil), g.Values...)
	sort.Float64s(vals)
	v1, v2 := vals[len(vals)-1], vals[len(vals)-2]
	return (total-v1-v2)/v1 < p0
}

// NKViolated evaluates the n,k dominance rule: disclosive when the n
// largest values make up more than share k of a positive total. Groups
// with a nonpositive total are not disclosive under this rule.
func NKViolated(g Group, n int, k float64) bool {
	total := g.Sum()
	if total <= 0 {
		return false
	}
	vals := append([]float64(nil), g.Values...)
	sort.Float64s(vals)
	if n > len(vals) {
		n = len(vals)
	}
	var top float64
	for _, v := range vals[len(vals)-n:] {
		top += v
	}
	return top/total > k
}

// AllValuesSame reports whether the group holds exactly one distinct value.
// Missing contributions are ignored; empty groups have no value to reveal.
func AllValuesSame(g Group) bool {
	if len(g.Values) == 0 {
		return false
	}
	for _, v := range g.Values[1:] {
		if v != g.Values[0] {
			return false
		}
	}
	return true
}

// Predicate returns the closure evaluating r under the configured risk
// appetite, or nil for an unrecognized rule.
func (c Config) Predicate(r Rule) func(Group) bool {
	switch r {
	case Threshold:
		return func(g Group) bool { return BelowThreshold(g, c.Threshold) }
	case PRatio:
		return func(g Group) bool { return PRatioViolated(g, c.PRatioP, c.ZerosAreDisclosive) }
	case NKRule:
		return func(g Group) bool { return NKViolated(g, c.NKN, c.NKK) }
	case Negative:
		return AnyNegative
	case Missing:
		return AnyMissing
	case AllSame:
		return AllValuesSame
	}
	return nil
}
