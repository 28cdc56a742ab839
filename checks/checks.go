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

// Package checks contains validity checks for disclosure control parameters.
package checks

import (
	"errors"
	"fmt"
	"math"

	log "github.com/golang/glog"
)

// ErrInvalidArgument marks violations of a call or configuration contract.
// Every error returned by this package wraps it, so callers can classify
// failures with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// CheckThreshold returns an error if threshold is less than 1.
func CheckThreshold(label string, threshold int) error {
	if threshold < 1 {
		return fmt.Errorf("%s: Threshold is %d, must be at least 1: %w", label, threshold, ErrInvalidArgument)
	}
	if threshold == 1 {
		log.Warningf("%s: Threshold is 1, only empty cells will be flagged", label)
	}
	return nil
}

// CheckPRatio returns an error if p is outside (0, 1) or not finite.
func CheckPRatio(label string, p float64) error {
	if p <= 0 || p >= 1 || math.IsNaN(p) || math.IsInf(p, 0) {
		return fmt.Errorf("%s: PRatioP is %f, must be within (0, 1) and finite: %w", label, p, ErrInvalidArgument)
	}
	return nil
}

// CheckDominanceContributors returns an error if n is less than 1.
func CheckDominanceContributors(label string, n int) error {
	if n < 1 {
		return fmt.Errorf("%s: NKN is %d, must be at least 1: %w", label, n, ErrInvalidArgument)
	}
	return nil
}

// CheckDominanceShare returns an error if k is outside (0, 1) or not finite.
func CheckDominanceShare(label string, k float64) error {
	if k <= 0 || k >= 1 || math.IsNaN(k) || math.IsInf(k, 0) {
		return fmt.Errorf("%s: NKK is %f, must be within (0, 1) and finite: %w", label, k, ErrInvalidArgument)
	}
	return nil
}

// CheckSurvivalThreshold returns an error if threshold is less than 1.
func CheckSurvivalThreshold(label string, threshold int) error {
	if threshold < 1 {
		return fmt.Errorf("%s: SurvivalThreshold is %d, must be at least 1: %w", label, threshold, ErrInvalidArgument)
	}
	return nil
}

// CheckDOFThreshold returns an error if threshold is negative.
func CheckDOFThreshold(label string, threshold int) error {
	if threshold < 0 {
		return fmt.Errorf("%s: DOFThreshold is %d, must be at least 0: %w", label, threshold, ErrInvalidArgument)
	}
	return nil
}

// CheckDegreesOfFreedom returns an error if dof is negative, NaN or ±∞.
func CheckDegreesOfFreedom(label string, dof float64) error {
	if dof < 0 || math.IsNaN(dof) || math.IsInf(dof, 0) {
		return fmt.Errorf("%s: degrees of freedom is %f, must be nonnegative and finite: %w", label, dof, ErrInvalidArgument)
	}
	return nil
}

// CheckColumnName returns an error if name is empty.
func CheckColumnName(label string, name string) error {
	if name == "" {
		return fmt.Errorf("%s: column name must not be empty: %w", label, ErrInvalidArgument)
	}
	return nil
}
