// SPDX-License-Identifier: MIT
package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"spektra/internal/fft"
)

// ComputeParallel computes the same batch as ProcessWindows with unit
// strides, splitting the windows into contiguous chunks handled by
// independent processors. The processors share one read-only TwiddleCache
// and each owns its working buffer, so no locking is involved.
func ComputeParallel(ctx context.Context, fftSize int, samples []float32, overlap float32, workers int, opts ...Option) (*Spectrogram, error) {
	cache, err := fft.NewTwiddleCache(fftSize)
	if err != nil {
		return nil, &ConfigurationError{Field: "fft size", Value: fftSize, Err: err}
	}
	opts = append(opts[:len(opts):len(opts)], WithTwiddleCache(cache))

	first, err := NewSpectrogramProcessor(fftSize, opts...)
	if err != nil {
		return nil, err
	}

	hop := first.hopSize(overlap)
	numWindows := first.windowCount(len(samples), hop)
	result := &Spectrogram{
		FFTSize:    fftSize,
		HopSize:    hop,
		TimeStride: 1,
		FreqStride: 1,
		Data:       []float32{},
	}
	if numWindows == 0 {
		return result, nil
	}

	bins := fftSize / 2
	data := make([]float32, numWindows*bins)

	workers = min(max(workers, 1), numWindows)
	chunk := (numWindows + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for worker := range workers {
		lo := worker * chunk
		hi := min(lo+chunk, numWindows)
		if lo >= hi {
			break
		}

		proc := first
		if worker > 0 {
			if proc, err = NewSpectrogramProcessor(fftSize, opts...); err != nil {
				return nil, err
			}
		}

		g.Go(func() error {
			for w := lo; w < hi; w++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				start := w * hop
				row := data[w*bins : w*bins : (w+1)*bins]
				proc.AppendWindow(row, samples[start:start+fftSize])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Data = data
	result.NumWindows = numWindows
	result.FreqBins = bins
	return result, nil
}
