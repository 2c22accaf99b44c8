// SPDX-License-Identifier: MIT
package audio

import "math"

// Gate decides whether a captured buffer carries signal. Capture uses it to
// drop leading silence.
type Gate struct {
	threshold float32
}

// NewGate returns a gate with the threshold clamped to [0, 1].
func NewGate(threshold float64) *Gate {
	g := &Gate{}
	g.SetThreshold(threshold)
	return g
}

// SetThreshold adjusts the gate threshold.
// The value is in the range of 0.0-1.0 where 0 opens on any non-zero
// sample and 1 never opens.
func (g *Gate) SetThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}

	g.threshold = float32(threshold)
}

// Threshold returns the current threshold.
func (g *Gate) Threshold() float64 {
	return float64(g.threshold)
}

// Open reports whether the peak amplitude of buffer exceeds the threshold.
func (g *Gate) Open(buffer []float32) bool {
	var peak float32
	for _, s := range buffer {
		peak = max(peak, float32(math.Abs(float64(s))))
	}
	return peak > g.threshold
}
