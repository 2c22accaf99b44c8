// SPDX-License-Identifier: MIT
package analysis

// WindowAnalyzer turns one fixed-size block of samples into a magnitude
// spectrum. Implementations are not required to be safe for concurrent use.
type WindowAnalyzer interface {
	// FFTSize returns the number of samples ProcessWindow expects.
	FFTSize() int
	// ProcessWindow returns FFTSize()/2 magnitudes, or an empty slice when
	// len(samples) != FFTSize().
	ProcessWindow(samples []float32) []float32
}

// SpectrogramComputer is the full host-facing surface: single windows, flat
// spectrograms and strided batches. The websocket server and the TUI depend
// on this rather than on the concrete processor.
type SpectrogramComputer interface {
	WindowAnalyzer
	ComputeSpectrogram(samples []float32, overlap float32) []float32
	ProcessWindowsWith(samples []float32, overlap float32, s Strides) (*Spectrogram, error)
}

// Compile-time checks for interface implementations.
var _ SpectrogramComputer = (*SpectrogramProcessor)(nil)
