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

package table

import (
	"fmt"
	"strings"
)

// Format renders the table as delimited fixed-width text for onscreen
// display and logs.
func (t *Table) Format() string {
	return formatGrid(t.rowKeys, t.colKeys, func(i, j int) string {
		return t.cells[i][j].String()
	})
}

// Format renders the outcome grid as delimited fixed-width text.
func (o *Outcome) Format() string {
	return formatGrid(o.rowKeys, o.colKeys, func(i, j int) string {
		return o.labels[i][j]
	})
}

func formatGrid(rowKeys, colKeys []Key, cell func(i, j int) string) string {
	nr, nc := len(rowKeys), len(colKeys)
	widths := make([]int, nc+1)
	for _, rk := range rowKeys {
		if n := len(rk.String()); n > widths[0] {
			widths[0] = n
		}
	}
	for j, ck := range colKeys {
		widths[j+1] = len(ck.String())
	}
	grid := make([][]string, nr)
	for i := range grid {
		grid[i] = make([]string, nc)
		for j := 0; j < nc; j++ {
			s := cell(i, j)
			grid[i][j] = s
			if len(s) > widths[j+1] {
				widths[j+1] = len(s)
			}
		}
	}

	total := 0
	for _, w := range widths {
		total += w + 1
	}
	hline := strings.Repeat("-", total-1) + "|\n"

	var b strings.Builder
	b.WriteString(hline)
	fmt.Fprintf(&b, "%-*s|", widths[0], "")
	for j, ck := range colKeys {
		fmt.Fprintf(&b, "%-*s|", widths[j+1], ck.String())
	}
	b.WriteString("\n")
	b.WriteString(hline)
	for i, rk := range rowKeys {
		fmt.Fprintf(&b, "%-*s|", widths[0], rk.String())
		for j := 0; j < nc; j++ {
			fmt.Fprintf(&b, "%-*s|", widths[j+1], grid[i][j])
		}
		b.WriteString("\n")
	}
	b.WriteString(hline)
	return b.String()
}
