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

// Package stattestutils provides basic statistical utility functions.
//
// This package is not optimized for performance or speed and is only intended
// to be used in tests.
package stattestutils

import (
	"math"
	"sort"
)

// SampleSum returns the sum of the values in the slice.
func SampleSum(values []float64) float64 {
	var sum float64 = 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

// SampleMean returns the mean of a slice, calculated as the average over the
// values in the slice.
func SampleMean(values []float64) float64 {
	return SampleSum(values) / math.Max(1, float64(len(values)))
}

// SampleVariance returns the variance of a slice, calculated as the sum of
// squares of the distance to the mean of each of the values, divided by the
// number of values.
func SampleVariance(values []float64) float64 {
	mean := SampleMean(values)
	var sumOfSquares float64 = 0.0
	for _, v := range values {
		sumOfSquares += math.Pow(v-mean, 2)
	}
	return sumOfSquares / math.Max(1, float64(len(values)))
}

// SampleStdDev returns the square root of SampleVariance.
func SampleStdDev(values []float64) float64 {
	return math.Sqrt(SampleVariance(values))
}

// SampleMedian returns the middle value of the sorted slice, averaging the
// two middle values when the length is even.
func SampleMedian(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
