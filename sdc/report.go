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
	"strings"

	"github.com/safeoutputs/disclosure-control/rules"
	"github.com/safeoutputs/disclosure-control/table"
)

// Status is the overall verdict of a disclosure check.
type Status int

const (
	// Pass means no rule was triggered.
	Pass Status = iota
	// Fail means at least one cell-suppressing rule was triggered.
	Fail
	// Review means a human must decide: negative or missing values change
	// the nature of the risk, so automatic suppression is withheld.
	Review
)

var statusName = map[Status]string{
	Pass:   "pass",
	Fail:   "fail",
	Review: "review",
}

func (s Status) String() string {
	return statusName[s]
}

// Report is the structured risk record of one checked output. It is built
// fresh per check and never modified afterwards; the caller owns it.
type Report struct {
	// Status is the overall verdict, Review taking precedence over Fail.
	Status Status
	// Suppressed records whether automatic suppression was enabled for the
	// session that produced this report.
	Suppressed bool
	// Counts holds the number of violating cells per rule. Every rule is
	// present, zero when untriggered.
	Counts map[rules.Rule]int
	// Cells holds the violating positions per rule in row-major order,
	// valid against the table the masks were evaluated on.
	Cells map[rules.Rule][]table.CellRef
}

// NewReport reduces a set of rule masks into the risk report of the output
// they were evaluated on.
func NewReport(masks map[rules.Rule]*table.Mask, suppressed bool) *Report {
	r := &Report{
		Suppressed: suppressed,
		Counts:     make(map[rules.Rule]int, len(rules.All())),
		Cells:      make(map[rules.Rule][]table.CellRef, len(rules.All())),
	}
	for _, rule := range rules.All() {
		r.Counts[rule] = 0
		r.Cells[rule] = nil
	}
	for rule, m := range masks {
		r.Counts[rule] = m.Count()
		r.Cells[rule] = m.Positions()
	}
	switch {
	case r.Counts[rules.Negative] > 0 || r.Counts[rules.Missing] > 0:
		r.Status = Review
	case r.suppressingCount() > 0:
		r.Status = Fail
	default:
		r.Status = Pass
	}
	return r
}

func (r *Report) suppressingCount() int {
	n := 0
	for _, rule := range rules.Suppressing() {
		n += r.Counts[rule]
	}
	return n
}

// Summary renders the one-line verdict: the status, followed for each
// triggered rule by its cell count and whether those cells were suppressed
// or may need suppressing. The review conditions replace the per-rule
// breakdown entirely.
func (r *Report) Summary() string {
	sup := "suppressed"
	if !r.Suppressed {
		sup = "may need suppressing"
	}
	var b strings.Builder
	switch {
	case r.Counts[rules.Negative] > 0:
		b.WriteString("negative values found")
	case r.Counts[rules.Missing] > 0:
		b.WriteString("missing values found")
	default:
		for _, rule := range rules.Suppressing() {
			if n := r.Counts[rule]; n > 0 {
				fmt.Fprintf(&b, "%v: %d cells %s; ", rule, n, sup)
			}
		}
	}
	if b.Len() == 0 {
		return r.Status.String()
	}
	return r.Status.String() + "; " + b.String()
}
