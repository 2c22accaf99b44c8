// SPDX-License-Identifier: MIT

// Package reference computes double-precision magnitude spectra with
// third-party FFT libraries so the single-precision engine can be checked
// against them.
package reference

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	dspfft "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"

	"spektra/pkg/bitint"
)

var (
	// ErrLengthMismatch is returned by Compare when the spectra differ in length.
	ErrLengthMismatch = errors.New("spectrum lengths differ")
	// ErrInvalidSize is returned when a window is not a positive power of two.
	ErrInvalidSize = errors.New("window size must be a positive power of two")
)

// Backend produces the first len(samples)/2 Hann-windowed magnitudes of a
// window, the same quantity SpectrogramProcessor.ProcessWindow returns.
type Backend interface {
	Name() string
	Magnitudes(samples []float32) ([]float32, error)
}

// hannFrame widens samples to float64 and applies the symmetric Hann window.
func hannFrame(samples []float32) ([]float64, error) {
	if !bitint.IsPowerOfTwo(len(samples)) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, len(samples))
	}
	frame := make([]float64, len(samples))
	for i, s := range samples {
		frame[i] = float64(s)
	}
	if len(frame) > 1 {
		window.Hann(frame)
	}
	return frame, nil
}

func halfMagnitudes(coeffs []complex128, n int) []float32 {
	out := make([]float32, n/2)
	for k := range out {
		out[k] = float32(cmplx.Abs(coeffs[k]))
	}
	return out
}

// Gonum computes spectra with gonum's real FFT.
type Gonum struct{}

func (Gonum) Name() string { return "gonum" }

func (Gonum) Magnitudes(samples []float32) ([]float32, error) {
	frame, err := hannFrame(samples)
	if err != nil {
		return nil, err
	}
	coeffs := fourier.NewFFT(len(frame)).Coefficients(nil, frame)
	return halfMagnitudes(coeffs, len(frame)), nil
}

// GoDSP computes spectra with go-dsp's FFTReal.
type GoDSP struct{}

func (GoDSP) Name() string { return "go-dsp" }

func (GoDSP) Magnitudes(samples []float32) ([]float32, error) {
	frame, err := hannFrame(samples)
	if err != nil {
		return nil, err
	}
	return halfMagnitudes(dspfft.FFTReal(frame), len(frame)), nil
}

// Backends returns every available reference implementation.
func Backends() []Backend {
	return []Backend{Gonum{}, GoDSP{}}
}

// Spectrogram runs b over every complete window of samples with the given
// hop, returning window-major magnitudes.
func Spectrogram(b Backend, samples []float32, fftSize, hop int) ([]float32, error) {
	if hop < 1 {
		return nil, fmt.Errorf("reference: hop size %d must be at least 1", hop)
	}
	out := []float32{}
	for start := 0; start+fftSize <= len(samples); start += hop {
		mags, err := b.Magnitudes(samples[start : start+fftSize])
		if err != nil {
			return nil, fmt.Errorf("reference: %s window at %d: %w", b.Name(), start, err)
		}
		out = append(out, mags...)
	}
	return out, nil
}

// Report summarises the disagreement between two spectra.
type Report struct {
	Values    int
	MaxAbsErr float64
	// MaxRelErr is the largest |got-want| / max(|want|, 1).
	MaxRelErr float64
	RMSErr    float64
}

// Within reports whether MaxRelErr is at most tol.
func (r Report) Within(tol float64) bool {
	return r.MaxRelErr <= tol
}

// Compare measures how far got deviates from want.
func Compare(got, want []float32) (Report, error) {
	if len(got) != len(want) {
		return Report{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(got), len(want))
	}
	r := Report{Values: len(got)}
	if len(got) == 0 {
		return r, nil
	}

	g := make([]float64, len(got))
	w := make([]float64, len(want))
	for i := range got {
		g[i] = float64(got[i])
		w[i] = float64(want[i])
	}

	r.MaxAbsErr = floats.Distance(g, w, math.Inf(1))
	r.RMSErr = floats.Distance(g, w, 2) / math.Sqrt(float64(len(g)))
	for i := range g {
		rel := math.Abs(g[i]-w[i]) / math.Max(math.Abs(w[i]), 1)
		r.MaxRelErr = math.Max(r.MaxRelErr, rel)
	}
	return r, nil
}
