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
	"strconv"

	log "github.com/golang/glog"
	"github.com/safeoutputs/disclosure-control/checks"
	"github.com/safeoutputs/disclosure-control/rules"
	"github.com/safeoutputs/disclosure-control/table"
)

// SurvivalSummary is the summary table of an externally fitted survival
// function, one entry per event time. Estimation itself is out of scope;
// the engine only checks and redacts the fitted summary.
type SurvivalSummary struct {
	// Times are the event times, in the order the summary lists them.
	Times []float64
	// Prob and SE are the survival probability and its standard error at
	// each time.
	Prob []float64
	SE   []float64
	// AtRisk and Events are the number at risk and the number of events at
	// each time.
	AtRisk []float64
	Events []float64
}

func (s SurvivalSummary) validate() error {
	if len(s.Times) == 0 {
		return fmt.Errorf("sdc: survival summary is empty: %w", checks.ErrInvalidArgument)
	}
	for _, col := range [][]float64{s.Prob, s.SE, s.AtRisk, s.Events} {
		if len(col) != len(s.Times) {
			return fmt.Errorf("sdc: survival summary columns have unequal lengths: %w", checks.ErrInvalidArgument)
		}
	}
	for _, v := range s.AtRisk {
		if v <= 0 {
			return fmt.Errorf("sdc: survival summary at-risk count is %g, must be positive: %w", v, checks.ErrInvalidArgument)
		}
	}
	return nil
}

// The statistic columns of a survival table, in display order.
var survivalCols = []table.Key{
	{"Surv prob"},
	{"Surv prob SE"},
	{"num at risk"},
	{"num events"},
}

func (s SurvivalSummary) rowKeys() []table.Key {
	keys := make([]table.Key, len(s.Times))
	for i, t := range s.Times {
		keys[i] = table.Key{strconv.FormatFloat(t, 'g', -1, 64)}
	}
	return keys
}

func (s SurvivalSummary) table() (*table.Table, error) {
	t, err := table.New(s.rowKeys(), survivalCols)
	if err != nil {
		return nil, fmt.Errorf("sdc: survival summary has duplicate times: %w", checks.ErrInvalidArgument)
	}
	for i := range s.Times {
		t.Set(i, 0, table.Value(s.Prob[i]))
		t.Set(i, 1, table.Value(s.SE[i]))
		t.Set(i, 2, table.Value(s.AtRisk[i]))
		t.Set(i, 3, table.Value(s.Events[i]))
	}
	return t, nil
}

// CheckSurvival checks a fitted survival summary: a time point whose
// at-risk count dropped by fewer than the survival threshold since the
// previous point exposes a small group, so its whole row is flagged. The
// first point has no previous decrement and is never flagged. Flagged rows
// go through the standard suppression and reporting path.
func (e *Engine) CheckSurvival(s SurvivalSummary) (*Result, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	t, err := s.table()
	if err != nil {
		return nil, err
	}
	m := table.NewMask(t.RowKeys(), t.ColKeys())
	for i := 1; i < len(s.Times); i++ {
		if s.AtRisk[i-1]-s.AtRisk[i] < float64(e.config.SurvivalThreshold) {
			for j := 0; j < t.NumCols(); j++ {
				m.Set(i, j, true)
			}
		}
	}
	masks := map[rules.Rule]*table.Mask{rules.Threshold: m}
	report := NewReport(masks, e.suppress)
	safe, outcome := Suppress(t, masks)
	res := &Result{
		Table:   t,
		Outcome: outcome,
		Report:  report,
		Summary: report.Summary(),
	}
	log.Infof("sdc: survival check: %s", res.Summary)
	if e.suppress {
		res.Table = safe
	}
	return res, nil
}

// RoundedSurvival returns the survival table with an extra
// rounded_survival_fun column: the survival probabilities re-derived after
// pooling at-risk decrements until each release step covers at least the
// survival threshold. A pooled step repeats the previous at-risk count and
// contributes no events until the pool fills; the first time point is
// always released as fitted. The four fitted statistic columns are carried
// over unchanged.
func (e *Engine) RoundedSurvival(s SurvivalSummary) (*table.Table, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	n := len(s.Times)
	atRisk := make([]float64, n)
	events := make([]float64, n)
	atRisk[0] = s.AtRisk[0]
	events[0] = s.Events[0]
	var pooled, pooledEvents float64
	for i := 1; i < n; i++ {
		pooled += s.AtRisk[i-1] - s.AtRisk[i]
		pooledEvents += s.Events[i]
		if pooled < float64(e.config.SurvivalThreshold) {
			atRisk[i] = atRisk[i-1]
			events[i] = 0
		} else {
			atRisk[i] = s.AtRisk[i]
			events[i] = pooledEvents
			pooled, pooledEvents = 0, 0
		}
	}
	probs := make([]float64, n)
	probs[0] = s.Prob[0]
	for i := 1; i < n; i++ {
		probs[i] = (atRisk[i] - events[i]) / atRisk[i] * probs[i-1]
	}

	colKeys := append(append([]table.Key(nil), survivalCols...), table.Key{"rounded_survival_fun"})
	t, err := table.New(s.rowKeys(), colKeys)
	if err != nil {
		return nil, fmt.Errorf("sdc: survival summary has duplicate times: %w", checks.ErrInvalidArgument)
	}
	for i := range s.Times {
		t.Set(i, 0, table.Value(s.Prob[i]))
		t.Set(i, 1, table.Value(s.SE[i]))
		t.Set(i, 2, table.Value(s.AtRisk[i]))
		t.Set(i, 3, table.Value(s.Events[i]))
		t.Set(i, 4, table.Value(probs[i]))
	}
	return t, nil
}
