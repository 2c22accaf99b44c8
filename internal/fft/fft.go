// SPDX-License-Identifier: MIT

// Package fft implements an in-place iterative radix-2 Cooley-Tukey
// transform over single-precision complex buffers. Twiddle factors are
// precomputed once per size in a TwiddleCache and the butterfly combine
// step is delegated to a Kernel, so the scalar and vector strategies share
// the exact same stage schedule.
package fft

import (
	"fmt"

	"spektra/pkg/bitint"
)

// defaultKernel is resolved once at startup from the CPU feature set.
var defaultKernel = DetectKernel()

// DefaultKernel returns the kernel used by FFTWithCache, FFT and IFFT.
func DefaultKernel() Kernel {
	return defaultKernel
}

// Permute reorders buf into bit-reversed index order in place, swapping
// each unordered pair exactly once. len(buf) must be a power of two.
func Permute(buf []Complex) {
	nbits := bitint.Log2(len(buf))
	for i := range buf {
		j := int(bitint.BitReverse(uint(i), nbits))
		if i < j {
			buf[i], buf[j] = buf[j], buf[i]
		}
	}
}

// Transform computes the forward DFT of buf in place, leaving the result in
// natural order. The buffer length must equal cache.Size().
func Transform(buf []Complex, cache *TwiddleCache, kernel Kernel) error {
	if cache == nil || len(buf) != cache.size {
		size := 0
		if cache != nil {
			size = cache.size
		}
		return fmt.Errorf("%w: buffer %d, cache %d", ErrSizeMismatch, len(buf), size)
	}
	if kernel == nil {
		kernel = defaultKernel
	}

	n := len(buf)
	Permute(buf)

	for s, tw := range cache.stages {
		half := 1 << s
		length := half << 1
		for start := 0; start < n; start += length {
			kernel.Block(buf[start:start+half], buf[start+half:start+length], tw)
		}
	}

	return nil
}

// FFTWithCache runs the forward transform with the default kernel.
func FFTWithCache(buf []Complex, cache *TwiddleCache) error {
	return Transform(buf, cache, defaultKernel)
}

// FFT builds a fresh TwiddleCache for len(buf) and transforms buf in place.
// Building the cache dominates the cost for repeated calls; hot paths should
// hold a cache and call FFTWithCache instead.
func FFT(buf []Complex) error {
	cache, err := NewTwiddleCache(len(buf))
	if err != nil {
		return err
	}
	return FFTWithCache(buf, cache)
}

// IFFT computes the inverse DFT of buf in place by conjugating, running the
// forward transform, then conjugating again and dividing by n.
func IFFT(buf []Complex) error {
	cache, err := NewTwiddleCache(len(buf))
	if err != nil {
		return err
	}

	for i := range buf {
		buf[i].Im = -buf[i].Im
	}

	if err := FFTWithCache(buf, cache); err != nil {
		return err
	}

	n := float32(len(buf))
	for i := range buf {
		buf[i].Re /= n
		buf[i].Im = -buf[i].Im / n
	}
	return nil
}
