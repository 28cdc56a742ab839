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
	log "github.com/golang/glog"
	"github.com/safeoutputs/disclosure-control/rules"
	"github.com/safeoutputs/disclosure-control/table"
)

const okLabel = "ok"

// Suppress applies the rule masks to t, returning a redacted copy and the
// per-cell outcome grid; t itself is never modified.
//
// A negative mask hit, and with lower priority a missing mask hit,
// short-circuits cell-level suppression: the risk is structural rather
// than per-cell, so every flagged cell is labeled uniformly and the table
// is returned unredacted for review. A present mask with no flagged cell
// escalates nothing. Otherwise the cells of each suppressing rule are
// blanked to the missing sentinel and labeled in the stable order
// rules.Suppressing returns. Cells no rule touched are labeled "ok".
//
// A mask whose keys do not match t is a contract violation by the caller;
// it is logged and skipped so that the remaining masks still apply.
func Suppress(t *table.Table, masks map[rules.Rule]*table.Mask) (*table.Table, *table.Outcome) {
	safe := t.Clone()
	outcome := table.NewOutcome(t)
	for _, rule := range []rules.Rule{rules.Negative, rules.Missing} {
		m, ok := masks[rule]
		if !ok {
			continue
		}
		if !m.AlignsWith(t) {
			log.Warningf("sdc: problem mask %v is not aligned", rule)
			continue
		}
		if !m.Any() {
			continue
		}
		for _, ref := range m.Positions() {
			outcome.Set(ref.Row, ref.Col, rule.String())
		}
		outcome.FillEmpty(okLabel)
		return safe, outcome
	}
	for _, rule := range rules.Suppressing() {
		m, ok := masks[rule]
		if !ok {
			continue
		}
		if !m.AlignsWith(t) {
			log.Warningf("sdc: problem mask %v is not aligned", rule)
			continue
		}
		for _, ref := range m.Positions() {
			safe.Set(ref.Row, ref.Col, table.Missing())
			outcome.Append(ref.Row, ref.Col, rule.String())
		}
	}
	outcome.FillEmpty(okLabel)
	return safe, outcome
}
