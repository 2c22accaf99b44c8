// SPDX-License-Identifier: MIT
package fft

import (
	"fmt"
	"math"

	"spektra/pkg/bitint"
)

// TwiddleCache holds the roots of unity for every butterfly stage of a
// size-n transform. Stage s serves butterflies of length L = 2^(s+1) and
// holds W_L^k = e^{-2πik/L} for k in [0, L/2).
//
// A cache is immutable once built and may be shared read-only between
// goroutines and between processors of the same size.
type TwiddleCache struct {
	size   int
	stages [][]Complex
}

// NewTwiddleCache precomputes the twiddle tables for a transform of the
// given size. Generation is O(n log n) and happens once per size.
func NewTwiddleCache(size int) (*TwiddleCache, error) {
	if !bitint.IsPowerOfTwo(size) {
		return nil, fmt.Errorf("twiddle cache: %w, got %d", ErrNotPowerOfTwo, size)
	}

	stages := make([][]Complex, 0, bitint.Log2(size))
	for length := 2; length <= size; length <<= 1 {
		stages = append(stages, Twiddles(length))
	}

	return &TwiddleCache{size: size, stages: stages}, nil
}

// Twiddles returns the length/2 factors e^{-2πik/length}.
func Twiddles(length int) []Complex {
	half := length / 2
	factors := make([]Complex, half)
	for k := range half {
		angle := -2 * math.Pi * float64(k) / float64(length)
		factors[k] = Complex{Re: float32(math.Cos(angle)), Im: float32(math.Sin(angle))}
	}
	return factors
}

// Size returns the transform size the cache was built for.
func (c *TwiddleCache) Size() int {
	return c.size
}

// Stages returns the number of butterfly stages, log2(Size()).
func (c *TwiddleCache) Stages() int {
	return len(c.stages)
}

// Stage returns the twiddle table of stage s. The slice must not be modified.
func (c *TwiddleCache) Stage(s int) []Complex {
	return c.stages[s]
}
