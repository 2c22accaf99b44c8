// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the value range of a magnitude buffer. Non-finite
// values (NaN, ±Inf) are counted but excluded from the statistics.
type Summary struct {
	Values int
	Finite int
	Min    float64
	Max    float64
	Mean   float64
}

// Summarize computes a Summary over data.
func Summarize(data []float32) Summary {
	finite := make([]float64, 0, len(data))
	for _, v := range data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		finite = append(finite, f)
	}

	s := Summary{Values: len(data), Finite: len(finite)}
	if len(finite) == 0 {
		return s
	}
	s.Min = floats.Min(finite)
	s.Max = floats.Max(finite)
	s.Mean = stat.Mean(finite, nil)
	return s
}
