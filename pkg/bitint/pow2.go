/*
Package bitint provides the bit manipulation helpers used by the FFT
engine: power-of-two validation, integer log2 and the bit-reversal
permutation index.

Design Principles:
- Zero Allocations: All operations use stack memory only
- Predictable Performance: O(1) or O(bits) time, no tables
- Real-Time Safe: No locks, syscalls, or blocking operations

Usage:

	// Verify FFT window size is valid
	isValid := bitint.IsPowerOfTwo(windowSize)

	// Number of butterfly stages for a size-n transform
	stages := bitint.Log2(n)

	// Decimation-in-time input position
	j := bitint.BitReverse(i, stages)

----------------------------------------------------------------------

What BitReverse does:

	The iterative Cooley-Tukey transform expects its input in
	bit-reversed order. For n = 8 (3 bits) the index 1 (binary 001)
	must land in slot 4 (binary 100), 3 (011) in slot 6 (110), and
	so on. BitReverse reads the low `bits` bits of x and returns
	them mirrored; any bit above `bits` is ignored.

	  x    bits   binary in   binary out   result
	  1    3      001         100          4
	  3    3      011         110          6
	  5    4      0101        1010         10
	  0    4      0000        0000         0
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size.
// Algorithm explained:
//  1. Subtract 1 from size to handle exact powers of 2
//  2. Find position of highest set bit
//  3. Shift 1 left by that position
//
// Examples:
//
//	Input  Output  Explanation
//	4      4      Already power of 2 (preserved)
//	5      8      Next power after 5
//	0      1      Handle zero case
//	-1     1      Handle negative case
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo checks if n is a power of 2 using bit manipulation.
// The expression (n & (n-1)) == 0 works because:
//   - Powers of 2 have exactly one bit set
//   - Subtracting 1 from a power of 2 sets all lower bits
//   - AND operation will be 0 only for powers of 2
//
// Examples:
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   Not positive
//	-8     false   Not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Log2 returns the exponent of a power of two (the number of trailing
// zero bits). The result is meaningless for values that are not powers of two.
func Log2(n int) uint {
	return uint(bits.TrailingZeros(uint(n)))
}

// BitReverse returns the low `bits` bits of x in reversed order.
func BitReverse(x, nbits uint) uint {
	var result uint
	for range nbits {
		result = (result << 1) | (x & 1)
		x >>= 1
	}
	return result
}
