// SPDX-License-Identifier: MIT
package fft

import "errors"

var (
	// ErrNotPowerOfTwo is returned when a transform size is not an exact power of two.
	ErrNotPowerOfTwo = errors.New("fft size must be a power of 2")

	// ErrSizeMismatch is returned when a buffer does not match the twiddle cache size.
	ErrSizeMismatch = errors.New("buffer length does not match twiddle cache size")
)
