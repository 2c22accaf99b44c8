// SPDX-License-Identifier: MIT

// Package window implements the Hann analysis window applied to each
// spectrogram segment before it is transformed.
package window

import (
	"math"

	"spektra/internal/fft"
)

// hann evaluates w[i] = 0.5·(1 − cos(2π·i/(size−1))) in float32.
// size == 1 divides by zero and yields NaN; callers that need a
// single-sample window must special-case it themselves.
func hann(i, size int) float32 {
	x := 2 * math.Pi * float32(i) / (float32(size) - 1)
	return 0.5 * (1 - float32(math.Cos(float64(x))))
}

// Hann returns the size-point symmetric Hann coefficients.
func Hann(size int) []float32 {
	coeffs := make([]float32, size)
	for i := range coeffs {
		coeffs[i] = hann(i, size)
	}
	return coeffs
}

// ApplyHann multiplies both parts of every sample by its coefficient,
// computed on the fly.
func ApplyHann(signal []fft.Complex) {
	n := len(signal)
	for i := range signal {
		w := hann(i, n)
		signal[i].Re *= w
		signal[i].Im *= w
	}
}

// ApplyHannReal windows a real-valued signal in place.
func ApplyHannReal(signal []float32) {
	n := len(signal)
	for i := range signal {
		signal[i] *= hann(i, n)
	}
}
