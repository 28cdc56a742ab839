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

// Package sdc applies statistical disclosure control to tabular research
// outputs. The Engine evaluates the configured disclosure rules over a
// cross-tabulation, suppresses the disclosive cells or escalates the whole
// output for review, rebuilds margin totals that suppression invalidated,
// and returns the redacted table together with a structured risk report
// and a one-line summary.
package sdc

import (
	"fmt"

	log "github.com/golang/glog"
	"github.com/safeoutputs/disclosure-control/checks"
	"github.com/safeoutputs/disclosure-control/rules"
	"github.com/safeoutputs/disclosure-control/table"
	"github.com/safeoutputs/disclosure-control/tabulate"
)

// Engine checks tabular outputs against a session risk appetite. An Engine
// is immutable after construction and safe for concurrent use.
type Engine struct {
	config   rules.Config
	suppress bool
}

// Options contains the options necessary to initialize an Engine.
type Options struct {
	// Config is the session risk appetite. The zero value means
	// rules.Default().
	Config rules.Config
	// Suppress enables automatic suppression. When false, disclosive cells
	// are reported but the output is returned unredacted.
	Suppress bool
}

// New returns an Engine with the given options, validating the risk
// appetite.
func New(opt *Options) (*Engine, error) {
	if opt == nil {
		opt = &Options{}
	}
	cfg := opt.Config
	if cfg == (rules.Config{}) {
		cfg = rules.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sdc.New: %w", err)
	}
	return &Engine{config: cfg, suppress: opt.Suppress}, nil
}

// Config returns the engine's risk appetite.
func (e *Engine) Config() rules.Config {
	return e.config
}

// Result is everything one checked output produces.
type Result struct {
	// Table is the checked table: redacted when suppression is on, the
	// evaluated table otherwise.
	Table *table.Table
	// Outcome labels every cell of Table with the rules that fired there,
	// "ok", or one of the uniform review labels "negative" and "missing".
	Outcome *table.Outcome
	// Report is the structured risk record of the check.
	Report *Report
	// Summary is the one-line verdict.
	Summary string
	// Warnings records degraded-but-valid conditions, margin totals that
	// could not be recomputed in particular.
	Warnings []string
}

// CrossTab cross-tabulates ds per req and checks the result: empty rows
// and columns are pruned, every applicable rule is evaluated, disclosive
// cells are suppressed when the engine suppresses, and requested margin
// totals are rebuilt from the post-suppression data.
func (e *Engine) CrossTab(ds *tabulate.Dataset, req tabulate.Request) (*Result, error) {
	if err := e.checkMarginSupport(req); err != nil {
		return nil, err
	}
	ev, err := e.evaluate(ds, req)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Table:   ev.evaluated,
		Outcome: ev.outcome,
		Report:  ev.report,
		Summary: ev.report.Summary(),
	}
	log.Infof("sdc: crosstab: %s", res.Summary)
	log.V(1).Infof("sdc: outcome:\n%s", ev.outcome.Format())
	if !e.suppress {
		return res, nil
	}
	res.Table = ev.safe
	if req.Margins && ev.report.Status == Fail {
		e.recomputeMargins(ds, req, ev, res)
	}
	return res, nil
}

// Margins of order statistics cannot be reconstructed from a suppressed
// table, so the combination is rejected up front while suppression is on.
func (e *Engine) checkMarginSupport(req tabulate.Request) error {
	if !req.Margins || !e.suppress {
		return nil
	}
	for _, f := range req.Aggs {
		if f == tabulate.Median || f == tabulate.Mode {
			return fmt.Errorf("sdc: margins cannot be recomputed for %v after suppression: %w", f, checks.ErrInvalidArgument)
		}
	}
	return nil
}

// evaluation carries one output through the pipeline: the grouping it came
// from, the table the rules were evaluated on, the key-aligned masks, and
// the suppression products.
type evaluation struct {
	grouping  *tabulate.Grouping
	evaluated *table.Table
	masks     map[rules.Rule]*table.Mask
	report    *Report
	safe      *table.Table
	outcome   *table.Outcome
}

func (e *Engine) evaluate(ds *tabulate.Dataset, req tabulate.Request) (*evaluation, error) {
	g, err := tabulate.GroupBy(ds, req)
	if err != nil {
		return nil, err
	}
	fs := req.Aggs
	var primary *table.Table
	if len(fs) == 0 {
		primary = g.Frequency()
	} else {
		primary, err = g.Aggregate(fs)
		if err != nil {
			return nil, err
		}
	}
	evaluated := primary
	// A selected value legitimately repeats, so mode tables keep their
	// empty rows and columns.
	if !selection(fs) {
		evaluated = table.PruneEmpty(primary)
	}
	masks := make(map[rules.Rule]*table.Mask)
	for rule, m := range e.buildMasks(g, fs) {
		rm, ok := m.Restrict(evaluated)
		if !ok {
			log.Warningf("sdc: problem mask %v is not aligned", rule)
			continue
		}
		masks[rule] = rm
	}
	report := NewReport(masks, e.suppress)
	safe, outcome := Suppress(evaluated, masks)
	return &evaluation{
		grouping:  g,
		evaluated: evaluated,
		masks:     masks,
		report:    report,
		safe:      safe,
		outcome:   outcome,
	}, nil
}

// buildMasks evaluates every applicable rule over the grouping, in the
// column layout of the table derived with fs. The threshold mask always
// comes from record counts, whatever statistic is displayed. Value rules
// run only when aggregation was requested; a selection function replaces
// them with the all-values-are-same check. The negative mask is included
// only when a genuine negative value exists somewhere, since the short
// circuit it triggers concerns real sign patterns, not empty cells.
func (e *Engine) buildMasks(g *tabulate.Grouping, fs []tabulate.AggFunc) map[rules.Rule]*table.Mask {
	cfg := e.config
	masks := map[rules.Rule]*table.Mask{
		rules.Threshold: g.EvaluateRecords(func(n int) bool { return n < cfg.Threshold }, fs),
	}
	if len(fs) == 0 {
		return masks
	}
	if selection(fs) {
		masks[rules.AllSame] = g.Evaluate(rules.AllValuesSame, fs)
		return masks
	}
	if g.AnyGroup(rules.AnyNegative) {
		masks[rules.Negative] = g.Evaluate(rules.AnyNegative, fs)
	}
	masks[rules.PRatio] = g.Evaluate(cfg.Predicate(rules.PRatio), fs)
	masks[rules.NKRule] = g.Evaluate(cfg.Predicate(rules.NKRule), fs)
	if cfg.CheckMissingValues {
		masks[rules.Missing] = g.Evaluate(rules.AnyMissing, fs)
	}
	return masks
}

// selection reports whether fs is a selection function; request validation
// guarantees selections are never mixed with numeric summaries.
func selection(fs []tabulate.AggFunc) bool {
	return len(fs) > 0 && fs[0].IsSelection()
}
