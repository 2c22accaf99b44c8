// SPDX-License-Identifier: MIT
package fft

// f32x4 models a packed 4-lane float32 register holding two complex
// values as [re0, im0, re1, im1].
type f32x4 [4]float32

func load2(s []Complex, k int) f32x4 {
	return f32x4{s[k].Re, s[k].Im, s[k+1].Re, s[k+1].Im}
}

func (v f32x4) store2(s []Complex, k int) {
	s[k] = Complex{Re: v[0], Im: v[1]}
	s[k+1] = Complex{Re: v[2], Im: v[3]}
}

func (v f32x4) add(o f32x4) f32x4 {
	return f32x4{v[0] + o[0], v[1] + o[1], v[2] + o[2], v[3] + o[3]}
}

func (v f32x4) sub(o f32x4) f32x4 {
	return f32x4{v[0] - o[0], v[1] - o[1], v[2] - o[2], v[3] - o[3]}
}

// mul rounds every lane explicitly so no lane is fused with a later add.
func (v f32x4) mul(o f32x4) f32x4 {
	return f32x4{float32(v[0] * o[0]), float32(v[1] * o[1]), float32(v[2] * o[2]), float32(v[3] * o[3])}
}

// swapPairs is the <1,0,3,2> shuffle: exchanges re and im within each complex.
func (v f32x4) swapPairs() f32x4 {
	return f32x4{v[1], v[0], v[3], v[2]}
}

// interleaveEven is the <0,4,2,6> two-register shuffle.
func interleaveEven(a, b f32x4) f32x4 {
	return f32x4{a[0], b[0], a[2], b[2]}
}

// VectorKernel processes two butterflies per step using packed-lane
// arithmetic (shuffle, multiply, add) and falls back to Butterfly for an
// unpaired trailing index. Its results equal ScalarKernel's bit for bit.
type VectorKernel struct{}

// Name implements Kernel.
func (VectorKernel) Name() string { return "vector" }

// Block implements Kernel.
func (VectorKernel) Block(lo, hi, tw []Complex) {
	half := len(lo)
	hi = hi[:half]
	tw = tw[:half]

	k := 0
	for ; k+1 < half; k += 2 {
		a := load2(lo, k)
		b := load2(hi, k)
		w := load2(tw, k)

		bs := b.swapPairs()
		ws := w.swapPairs()

		// lanes 0 and 2 carry br·wr - bi·wi and br·wi + bi·wr
		re := b.mul(w).sub(bs.mul(ws))
		im := b.mul(ws).add(bs.mul(w))
		t := interleaveEven(re, im)

		a.add(t).store2(lo, k)
		a.sub(t).store2(hi, k)
	}

	for ; k < half; k++ {
		lo[k], hi[k] = Butterfly(lo[k], hi[k], tw[k])
	}
}
