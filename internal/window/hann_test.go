// SPDX-License-Identifier: MIT
package window

import (
	"math"
	"testing"

	"spektra/internal/fft"
)

func TestHannSymmetry(t *testing.T) {
	w := Hann(10)
	for i := range len(w) / 2 {
		j := len(w) - 1 - i
		if math.Abs(float64(w[i]-w[j])) > 1e-6 {
			t.Errorf("w[%d] = %g, w[%d] = %g", i, w[i], j, w[j])
		}
	}
}

func TestHannEndpoints(t *testing.T) {
	w := Hann(10)
	if math.Abs(float64(w[0])) > 1e-6 || math.Abs(float64(w[len(w)-1])) > 1e-6 {
		t.Errorf("endpoints = (%g, %g), want (0, 0)", w[0], w[len(w)-1])
	}
}

func TestHannPeak(t *testing.T) {
	w := Hann(9)
	if math.Abs(float64(w[4]-1)) > 1e-6 {
		t.Errorf("center coefficient = %g, want 1", w[4])
	}
	for i, v := range w {
		if v < 0 || v > 1 {
			t.Errorf("w[%d] = %g outside [0, 1]", i, v)
		}
	}
}

func TestHannSingleSampleIsNaN(t *testing.T) {
	w := Hann(1)
	if len(w) != 1 || !math.IsNaN(float64(w[0])) {
		t.Errorf("Hann(1) = %v, want [NaN]", w)
	}
}

func TestApplyHannReal(t *testing.T) {
	signal := []float32{1, 2, 3, 4}
	ApplyHannReal(signal)

	if math.Abs(float64(signal[0])) > 1e-6 || math.Abs(float64(signal[3])) > 1e-6 {
		t.Errorf("endpoints = (%g, %g), want (0, 0)", signal[0], signal[3])
	}
	// w[1] = w[2] = 0.75 for size 4
	if math.Abs(float64(signal[1]-1.5)) > 1e-6 || math.Abs(float64(signal[2]-2.25)) > 1e-6 {
		t.Errorf("interior = (%g, %g), want (1.5, 2.25)", signal[1], signal[2])
	}
}

func TestApplyHannMatchesTable(t *testing.T) {
	const n = 64
	coeffs := Hann(n)

	signal := make([]fft.Complex, n)
	for i := range signal {
		signal[i] = fft.Complex{Re: 1, Im: -2}
	}
	ApplyHann(signal)

	for i, c := range signal {
		if c.Re != coeffs[i] || c.Im != -2*coeffs[i] {
			t.Fatalf("sample %d = %+v, want (%g, %g)", i, c, coeffs[i], -2*coeffs[i])
		}
	}
}

func TestApplyHannZeroAllocs(t *testing.T) {
	signal := make([]fft.Complex, 1024)
	allocs := testing.AllocsPerRun(100, func() {
		ApplyHann(signal)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in ApplyHann, got %.1f", allocs)
	}
}
