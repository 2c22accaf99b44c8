// SPDX-License-Identifier: MIT
package fft

import "math"

// Complex is a single-precision complex value stored as two float32 lanes.
// The layout (Re then Im) is what the vector kernel loads two at a time.
type Complex struct {
	Re float32
	Im float32
}

// Add returns c + o.
func (c Complex) Add(o Complex) Complex {
	return Complex{Re: c.Re + o.Re, Im: c.Im + o.Im}
}

// Sub returns c - o.
func (c Complex) Sub(o Complex) Complex {
	return Complex{Re: c.Re - o.Re, Im: c.Im - o.Im}
}

// Mul returns c * o. Each product is rounded to float32 before it is
// combined so the compiler cannot fuse it into an FMA; the vector kernel
// relies on that to stay bit-for-bit equal to the scalar path.
func (c Complex) Mul(o Complex) Complex {
	return Complex{
		Re: float32(c.Re*o.Re) - float32(c.Im*o.Im),
		Im: float32(c.Re*o.Im) + float32(c.Im*o.Re),
	}
}

// Conj returns the complex conjugate.
func (c Complex) Conj() Complex {
	return Complex{Re: c.Re, Im: -c.Im}
}

// Scale multiplies both parts by s.
func (c Complex) Scale(s float32) Complex {
	return Complex{Re: c.Re * s, Im: c.Im * s}
}

// Abs returns the magnitude sqrt(re² + im²). Extreme values may overflow to +Inf.
func (c Complex) Abs() float32 {
	return float32(math.Sqrt(float64(c.Re*c.Re + c.Im*c.Im)))
}
