// SPDX-License-Identifier: MIT
package fft

// Butterfly is the radix-2 combine step: t = w·b, upper = a + t, lower = a - t.
func Butterfly(a, b, w Complex) (upper, lower Complex) {
	t := w.Mul(b)
	return a.Add(t), a.Sub(t)
}

// Kernel combines the two halves of one butterfly block in place:
// lo[k], hi[k] = Butterfly(lo[k], hi[k], tw[k]) for every k. The stage
// and block loops live in Transform, so every kernel sees the same
// schedule and can be swapped without touching correctness tests.
type Kernel interface {
	Name() string
	Block(lo, hi, tw []Complex)
}

// ScalarKernel applies Butterfly one index at a time.
type ScalarKernel struct{}

// Name implements Kernel.
func (ScalarKernel) Name() string { return "scalar" }

// Block implements Kernel.
func (ScalarKernel) Block(lo, hi, tw []Complex) {
	hi = hi[:len(lo)]
	tw = tw[:len(lo)]
	for k := range lo {
		lo[k], hi[k] = Butterfly(lo[k], hi[k], tw[k])
	}
}

var (
	_ Kernel = ScalarKernel{}
	_ Kernel = VectorKernel{}
)
