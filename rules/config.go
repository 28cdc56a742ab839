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
	"fmt"
	"os"

	"github.com/safeoutputs/disclosure-control/checks"
	"gopkg.in/yaml.v3"
)

// Config is the session risk appetite. It is a plain value: construct it
// once (Default or Load), validate it, and pass copies around. Nothing in
// this module mutates it after construction.
type Config struct {
	// Threshold is the minimum number of contributing records per cell.
	Threshold int `yaml:"threshold"`
	// PRatioP is the p of the p% rule.
	PRatioP float64 `yaml:"p_ratio_p"`
	// NKN is the number of largest contributors the dominance rule sums.
	NKN int `yaml:"nk_n"`
	// NKK is the dominance share above which a cell is disclosive.
	NKK float64 `yaml:"nk_k"`
	// CheckMissingValues enables the missing-value short circuit.
	CheckMissingValues bool `yaml:"check_missing_values"`
	// ZerosAreDisclosive is the p% verdict for groups with a nonpositive
	// total or fewer than two values.
	ZerosAreDisclosive bool `yaml:"zeros_are_disclosive"`
	// SurvivalThreshold is the minimum at-risk decrement between
	// consecutive rows of a survival table.
	SurvivalThreshold int `yaml:"survival_threshold"`
	// DOFThreshold is the minimum residual degrees of freedom of a fitted
	// model.
	DOFThreshold int `yaml:"safe_dof_threshold"`
}

// Default returns the standard risk appetite.
func Default() Config {
	return Config{
		Threshold:          10,
		PRatioP:            0.1,
		NKN:                2,
		NKK:                0.9,
		CheckMissingValues: false,
		ZerosAreDisclosive: true,
		SurvivalThreshold:  10,
		DOFThreshold:       10,
	}
}

// Validate returns an error wrapping checks.ErrInvalidArgument if any
// parameter is out of range.
func (c Config) Validate() error {
	if err := checks.CheckThreshold("Config", c.Threshold); err != nil {
		return err
	}
	if err := checks.CheckPRatio("Config", c.PRatioP); err != nil {
		return err
	}
	if err := checks.CheckDominanceContributors("Config", c.NKN); err != nil {
		return err
	}
	if err := checks.CheckDominanceShare("Config", c.NKK); err != nil {
		return err
	}
	if err := checks.CheckSurvivalThreshold("Config", c.SurvivalThreshold); err != nil {
		return err
	}
	return checks.CheckDOFThreshold("Config", c.DOFThreshold)
}

// Load reads a YAML risk-appetite file. Absent fields keep their defaults;
// the loaded configuration is validated before being returned.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("rules.Load: %w", err)
	}
	c := Default()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("rules.Load: parsing %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("rules.Load: %s: %w", path, err)
	}
	return c, nil
}
