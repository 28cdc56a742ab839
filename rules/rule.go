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

// Package rules implements the statistical disclosure rules applied to
// tabular outputs: the frequency threshold, the p% concentration ratio, the
// n,k dominance rule, and the negative, missing and all-values-are-same
// checks, together with the session risk-appetite configuration that
// parameterizes them.
package rules

// Rule identifies one disclosure rule.
type Rule int

const (
	// Threshold flags cells with too few contributing records.
	Threshold Rule = iota
	// PRatio flags cells failing the p% concentration rule.
	PRatio
	// NKRule flags cells dominated by their n largest contributors.
	NKRule
	// Negative flags cells whose group contains negative values.
	Negative
	// Missing flags cells whose group contains missing values.
	Missing
	// AllSame flags cells whose group holds a single distinct value.
	AllSame
)

var ruleName = map[Rule]string{
	Threshold: "threshold",
	PRatio:    "p-ratio",
	NKRule:    "nk-rule",
	Negative:  "negative",
	Missing:   "missing",
	AllSame:   "all-values-are-same",
}

func (r Rule) String() string {
	return ruleName[r]
}

// All returns every rule, suppressing rules first.
func All() []Rule {
	return []Rule{Threshold, PRatio, NKRule, AllSame, Negative, Missing}
}

// Suppressing returns the rules that suppress individual cells, in the
// stable order the suppression step applies them.
func Suppressing() []Rule {
	return []Rule{Threshold, PRatio, NKRule, AllSame}
}
