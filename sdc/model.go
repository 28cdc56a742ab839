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

	log "github.com/golang/glog"
	"github.com/safeoutputs/disclosure-control/checks"
)

// CheckModelDOF checks the residual degrees of freedom of an externally
// fitted model against the configured minimum. A model fitted on too few
// residual degrees of freedom risks reproducing individual records.
func (e *Engine) CheckModelDOF(dof float64) (Status, string, error) {
	if err := checks.CheckDegreesOfFreedom("CheckModelDOF", dof); err != nil {
		return Fail, "", err
	}
	threshold := e.config.DOFThreshold
	if dof < float64(threshold) {
		summary := fmt.Sprintf("fail; dof=%g < %d", dof, threshold)
		log.Warningf("sdc: unsafe model: %s", summary)
		return Fail, summary, nil
	}
	summary := fmt.Sprintf("pass; dof=%g >= %d", dof, threshold)
	log.Infof("sdc: model dof check: %s", summary)
	return Pass, summary, nil
}
