// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"math"
	"testing"

	"spektra/internal/fft"
	applog "spektra/internal/log"
	"spektra/internal/window"
	"spektra/pkg/utils"
)

const (
	testFFTSize    = 1024
	testSampleRate = 44100
)

func newTestProcessor(t testing.TB, size int, opts ...Option) *SpectrogramProcessor {
	t.Helper()
	opts = append([]Option{WithLogger(applog.Nop())}, opts...)
	p, err := NewSpectrogramProcessor(size, opts...)
	if err != nil {
		t.Fatalf("NewSpectrogramProcessor(%d) error: %v", size, err)
	}
	return p
}

// unitSine returns n samples of one full sine period per `period` samples.
func unitSine(n, period int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(math.Sin(2 * math.Pi * float64(i) / float64(period)))
	}
	return s
}

func TestNewSpectrogramProcessor(t *testing.T) {
	p := newTestProcessor(t, 1024)
	if p.FFTSize() != 1024 {
		t.Errorf("FFTSize() = %d, want 1024", p.FFTSize())
	}
	if p.FreqBins() != 512 {
		t.Errorf("FreqBins() = %d, want 512", p.FreqBins())
	}
	if got := p.Strides(); got != (Strides{Time: 1, Freq: 1}) {
		t.Errorf("default strides = %+v, want {1 1}", got)
	}
	if len(p.working) != 1024 {
		t.Errorf("working buffer length = %d, want 1024", len(p.working))
	}
}

func TestNewSpectrogramProcessorInvalidSize(t *testing.T) {
	for _, size := range []int{0, 7, 1000, -4} {
		_, err := NewSpectrogramProcessor(size, WithLogger(applog.Nop()))
		if !errors.Is(err, fft.ErrNotPowerOfTwo) {
			t.Errorf("size %d: error = %v, want ErrNotPowerOfTwo", size, err)
		}
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("size %d: error %T is not a *ConfigurationError", size, err)
		}
	}
}

func TestNewSpectrogramProcessorCacheMismatch(t *testing.T) {
	cache, err := fft.NewTwiddleCache(16)
	if err != nil {
		t.Fatalf("NewTwiddleCache error: %v", err)
	}
	_, err = NewSpectrogramProcessor(8, WithTwiddleCache(cache), WithLogger(applog.Nop()))
	if !errors.Is(err, fft.ErrSizeMismatch) {
		t.Errorf("error = %v, want ErrSizeMismatch", err)
	}
}

func TestSetStrides(t *testing.T) {
	p := newTestProcessor(t, 8)

	if err := p.SetStrides(2, 4); err != nil {
		t.Fatalf("SetStrides(2, 4) error: %v", err)
	}
	if got := p.Strides(); got != (Strides{Time: 2, Freq: 4}) {
		t.Errorf("Strides() = %+v, want {2 4}", got)
	}

	tests := []struct{ time, freq int }{{0, 1}, {1, 0}, {-1, 2}}
	for _, tt := range tests {
		err := p.SetStrides(tt.time, tt.freq)
		if !errors.Is(err, ErrInvalidStride) {
			t.Errorf("SetStrides(%d, %d) error = %v, want ErrInvalidStride", tt.time, tt.freq, err)
		}
	}
	if got := p.Strides(); got != (Strides{Time: 2, Freq: 4}) {
		t.Errorf("failed SetStrides changed strides to %+v", got)
	}
}

func TestProcessWindowSine(t *testing.T) {
	p := newTestProcessor(t, 8)

	result := p.ProcessWindow(unitSine(8, 8))
	if len(result) != 4 {
		t.Fatalf("len(result) = %d, want 4", len(result))
	}

	var total float32
	for _, m := range result {
		total += m
	}
	if total <= 0 {
		t.Errorf("total energy = %g, want > 0", total)
	}
}

func TestProcessWindowLengthMismatch(t *testing.T) {
	p := newTestProcessor(t, 8)

	for _, n := range []int{0, 7, 9} {
		result := p.ProcessWindow(make([]float32, n))
		if result == nil || len(result) != 0 {
			t.Errorf("len %d: result = %v, want empty non-nil slice", n, result)
		}
	}
}

func TestProcessWindowPeak(t *testing.T) {
	p := newTestProcessor(t, testFFTSize)

	// A tone centred on bin 64 must peak there.
	samples := unitSine(testFFTSize, testFFTSize/64)
	result := p.ProcessWindow(samples)

	peak := 0
	for i, m := range result {
		if m > result[peak] {
			peak = i
		}
	}
	if peak != 64 {
		t.Errorf("peak bin = %d, want 64", peak)
	}
}

func TestProcessWindowMatchesOneShotFFT(t *testing.T) {
	samples := utils.GenerateComplexWave(testFFTSize, testSampleRate)

	for _, kernel := range []fft.Kernel{fft.ScalarKernel{}, fft.VectorKernel{}} {
		t.Run(kernel.Name(), func(t *testing.T) {
			p := newTestProcessor(t, testFFTSize, WithKernel(kernel))
			got := p.ProcessWindow(samples)

			buf := make([]fft.Complex, testFFTSize)
			for i, s := range samples {
				buf[i] = fft.Complex{Re: s}
			}
			window.ApplyHann(buf)
			if err := fft.FFT(buf); err != nil {
				t.Fatalf("FFT error: %v", err)
			}

			for k := range got {
				want := buf[k].Abs()
				if math.Abs(float64(got[k]-want)) > 1e-4*math.Max(1, float64(want)) {
					t.Fatalf("bin %d: processor %g, one-shot %g", k, got[k], want)
				}
			}
		})
	}
}

func TestProcessWindowReusesState(t *testing.T) {
	p := newTestProcessor(t, 64)
	a := unitSine(64, 8)
	b := unitSine(64, 16)

	first := p.ProcessWindow(a)
	_ = p.ProcessWindow(b)
	again := p.ProcessWindow(a)

	for k := range first {
		if first[k] != again[k] {
			t.Fatalf("bin %d changed between identical calls: %g vs %g", k, first[k], again[k])
		}
	}
}

func TestComputeSpectrogram(t *testing.T) {
	p := newTestProcessor(t, 8)
	samples := unitSine(32, 32)

	// hop = 4, windows = (32-8)/4 + 1 = 7, 4 bins each
	result := p.ComputeSpectrogram(samples, 0.5)
	if len(result) != 28 {
		t.Fatalf("len(result) = %d, want 28", len(result))
	}

	for w := range 7 {
		want := p.ProcessWindow(samples[w*4 : w*4+8])
		for k := range want {
			if result[w*4+k] != want[k] {
				t.Fatalf("window %d bin %d = %g, want %g", w, k, result[w*4+k], want[k])
			}
		}
	}
}

func TestComputeSpectrogramEdgeCases(t *testing.T) {
	p := newTestProcessor(t, 8)

	tests := []struct {
		name    string
		samples int
		overlap float32
		want    int
	}{
		{"Empty", 0, 0.5, 0},
		{"ShorterThanWindow", 7, 0.5, 0},
		{"ExactlyOneWindow", 8, 0.5, 4},
		{"TrailingSamplesDropped", 13, 0.5, 8}, // windows at 0 and 4; 5 tail samples dropped
		{"NoOverlap", 32, 0, 16},
		{"HighOverlapClampsHop", 10, 0.99, 12}, // hop clamps to 1 -> 3 windows
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.ComputeSpectrogram(make([]float32, tt.samples), tt.overlap)
			if result == nil {
				t.Fatal("result is nil, want non-nil")
			}
			if len(result) != tt.want {
				t.Errorf("len(result) = %d, want %d", len(result), tt.want)
			}
		})
	}
}

func TestProcessWindowsStrides(t *testing.T) {
	p := newTestProcessor(t, 8)
	samples := unitSine(32, 32)

	full := p.ProcessWindows(samples, 0.5)
	if full.NumWindows != 7 || full.FreqBins != 4 || len(full.Data) != 28 {
		t.Fatalf("unstrided shape = %d x %d (%d values), want 7 x 4 (28)", full.NumWindows, full.FreqBins, len(full.Data))
	}

	if err := p.SetStrides(2, 2); err != nil {
		t.Fatalf("SetStrides error: %v", err)
	}
	reduced := p.ProcessWindows(samples, 0.5)

	if reduced.NumWindows != 4 {
		t.Errorf("NumWindows = %d, want 4 (windows 0, 2, 4, 6)", reduced.NumWindows)
	}
	if reduced.FreqBins != 2 {
		t.Errorf("FreqBins = %d, want 2", reduced.FreqBins)
	}
	if len(reduced.Data) != reduced.NumWindows*reduced.FreqBins {
		t.Fatalf("len(Data) = %d, want %d", len(reduced.Data), reduced.NumWindows*reduced.FreqBins)
	}

	for w := range reduced.NumWindows {
		for b := range reduced.FreqBins {
			want := full.At(w*2, b*2)
			if got := reduced.At(w, b); got != want {
				t.Errorf("reduced[%d][%d] = %g, want full[%d][%d] = %g", w, b, got, w*2, b*2, want)
			}
		}
	}
}

func TestProcessWindowsWithOverrides(t *testing.T) {
	p := newTestProcessor(t, 16)
	samples := unitSine(160, 16)

	tests := []struct {
		name      string
		strides   Strides
		wantWins  int
		wantBins  int
		wantError bool
	}{
		{"Configured", Strides{}, 19, 8, false},
		{"TimeOnly", Strides{Time: 3}, 7, 8, false},
		{"FreqOnly", Strides{Freq: 3}, 19, 3, false}, // ceil(8/3)
		{"Both", Strides{Time: 5, Freq: 8}, 4, 1, false},
		{"NegativeTime", Strides{Time: -1}, 0, 0, true},
		{"NegativeFreq", Strides{Freq: -2}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := p.ProcessWindowsWith(samples, 0.5, tt.strides)
			if tt.wantError {
				if !errors.Is(err, ErrInvalidStride) {
					t.Errorf("error = %v, want ErrInvalidStride", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ProcessWindowsWith error: %v", err)
			}
			if s.NumWindows != tt.wantWins || s.FreqBins != tt.wantBins {
				t.Errorf("shape = %d x %d, want %d x %d", s.NumWindows, s.FreqBins, tt.wantWins, tt.wantBins)
			}
			if len(s.Data) != s.NumWindows*s.FreqBins {
				t.Errorf("len(Data) = %d, want %d", len(s.Data), s.NumWindows*s.FreqBins)
			}
		})
	}
}

func TestProcessWindowsShortInput(t *testing.T) {
	p := newTestProcessor(t, 8)
	s := p.ProcessWindows(make([]float32, 5), 0.5)
	if s.NumWindows != 0 || s.FreqBins != 0 || len(s.Data) != 0 {
		t.Errorf("got %d x %d (%d values), want empty", s.NumWindows, s.FreqBins, len(s.Data))
	}
}

func TestProcessWindowHotPath(t *testing.T) {
	p := newTestProcessor(t, testFFTSize)
	samples := utils.GenerateComplexWave(testFFTSize, testSampleRate)
	dst := make([]float32, 0, testFFTSize/2)

	p.AppendWindow(dst, samples)
	allocs := testing.AllocsPerRun(100, func() {
		p.AppendWindow(dst[:0], samples)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in AppendWindow hot path, got %.1f", allocs)
	}
}

func BenchmarkProcessWindow(b *testing.B) {
	p := newTestProcessor(b, testFFTSize)
	samples := utils.GenerateComplexWave(testFFTSize, testSampleRate)
	dst := make([]float32, 0, testFFTSize/2)

	b.ReportAllocs()
	for b.Loop() {
		p.AppendWindow(dst[:0], samples)
	}
}

func BenchmarkComputeSpectrogram(b *testing.B) {
	p := newTestProcessor(b, testFFTSize)
	samples := utils.GenerateComplexWave(testSampleRate*2, testSampleRate)

	b.ReportAllocs()
	for b.Loop() {
		p.ComputeSpectrogram(samples, 0.5)
	}
}
