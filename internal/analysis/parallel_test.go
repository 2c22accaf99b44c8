// SPDX-License-Identifier: MIT
package analysis

import (
	"context"
	"errors"
	"testing"

	"spektra/internal/fft"
	applog "spektra/internal/log"
	"spektra/pkg/utils"
)

func TestComputeParallelMatchesSequential(t *testing.T) {
	samples := utils.GenerateChirp(testSampleRate/2, testSampleRate, 100, 8000)
	p := newTestProcessor(t, 512)
	want := p.ProcessWindows(samples, 0.75)

	for _, workers := range []int{0, 1, 3, 8, 1000} {
		got, err := ComputeParallel(context.Background(), 512, samples, 0.75, workers, WithLogger(applog.Nop()))
		if err != nil {
			t.Fatalf("workers=%d: ComputeParallel error: %v", workers, err)
		}
		if got.NumWindows != want.NumWindows || got.FreqBins != want.FreqBins || got.HopSize != want.HopSize {
			t.Fatalf("workers=%d: shape %dx%d hop %d, want %dx%d hop %d", workers,
				got.NumWindows, got.FreqBins, got.HopSize, want.NumWindows, want.FreqBins, want.HopSize)
		}
		for i := range want.Data {
			if got.Data[i] != want.Data[i] {
				t.Fatalf("workers=%d: Data[%d] = %g, want %g", workers, i, got.Data[i], want.Data[i])
			}
		}
	}
}

func TestComputeParallelShortInput(t *testing.T) {
	got, err := ComputeParallel(context.Background(), 64, make([]float32, 10), 0.5, 4, WithLogger(applog.Nop()))
	if err != nil {
		t.Fatalf("ComputeParallel error: %v", err)
	}
	if got.NumWindows != 0 || got.FreqBins != 0 || got.Data == nil || len(got.Data) != 0 {
		t.Errorf("got %+v, want empty non-nil batch", got)
	}
}

func TestComputeParallelInvalidSize(t *testing.T) {
	_, err := ComputeParallel(context.Background(), 100, make([]float32, 1000), 0.5, 2)
	if !errors.Is(err, fft.ErrNotPowerOfTwo) {
		t.Errorf("error = %v, want ErrNotPowerOfTwo", err)
	}
}

func TestComputeParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ComputeParallel(ctx, 64, make([]float32, 64*100), 0.5, 4, WithLogger(applog.Nop()))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestProcessorsShareTwiddleCache(t *testing.T) {
	cache, err := fft.NewTwiddleCache(64)
	if err != nil {
		t.Fatalf("NewTwiddleCache error: %v", err)
	}
	a := newTestProcessor(t, 64, WithTwiddleCache(cache))
	b := newTestProcessor(t, 64, WithTwiddleCache(cache))

	if a.cache != b.cache {
		t.Error("processors hold different caches, want the shared one")
	}
	if &a.working[0] == &b.working[0] {
		t.Error("processors share a working buffer, want one each")
	}

	samples := utils.GenerateSineWave(64, 8000, 500)
	ra, rb := a.ProcessWindow(samples), b.ProcessWindow(samples)
	for k := range ra {
		if ra[k] != rb[k] {
			t.Fatalf("bin %d differs: %g vs %g", k, ra[k], rb[k])
		}
	}
}

func BenchmarkComputeParallel(b *testing.B) {
	samples := utils.GenerateComplexWave(testSampleRate*2, testSampleRate)

	b.ReportAllocs()
	for b.Loop() {
		if _, err := ComputeParallel(context.Background(), testFFTSize, samples, 0.5, 4, WithLogger(applog.Nop())); err != nil {
			b.Fatal(err)
		}
	}
}
