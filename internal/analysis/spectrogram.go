// SPDX-License-Identifier: MIT
package analysis

import (
	"spektra/internal/fft"
	applog "spektra/internal/log"
	"spektra/internal/window"
	"spektra/pkg/bitint"
)

// Strides selects every Time-th window and every Freq-th bin of a batch.
// A zero field means "use the processor's configured stride".
type Strides struct {
	Time int
	Freq int
}

// SpectrogramProcessor runs window → Hann → FFT → magnitude over
// overlapping segments of a sample buffer.
//
// The processor owns a working buffer of FFTSize complex values that every
// call overwrites in place, so a SpectrogramProcessor is NOT safe for
// concurrent use. Callers needing parallelism must use one processor per
// goroutine; processors may share a TwiddleCache (see WithTwiddleCache and
// ComputeParallel).
type SpectrogramProcessor struct {
	fftSize    int
	cache      *fft.TwiddleCache
	kernel     fft.Kernel
	working    []fft.Complex
	timeStride int
	freqStride int
	logger     applog.Logger
}

// Option configures a SpectrogramProcessor at construction.
type Option func(*SpectrogramProcessor)

// WithLogger injects the diagnostics sink. The default forwards to the
// global logger.
func WithLogger(l applog.Logger) Option {
	return func(p *SpectrogramProcessor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithKernel forces a butterfly kernel instead of fft.DefaultKernel().
func WithKernel(k fft.Kernel) Option {
	return func(p *SpectrogramProcessor) {
		if k != nil {
			p.kernel = k
		}
	}
}

// WithTwiddleCache shares an existing cache. Its size must equal fftSize.
func WithTwiddleCache(c *fft.TwiddleCache) Option {
	return func(p *SpectrogramProcessor) {
		p.cache = c
	}
}

// NewSpectrogramProcessor builds the twiddle cache (unless one is supplied)
// and the zeroed working buffer. Strides default to 1.
func NewSpectrogramProcessor(fftSize int, opts ...Option) (*SpectrogramProcessor, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, &ConfigurationError{Field: "fft size", Value: fftSize, Err: fft.ErrNotPowerOfTwo}
	}

	p := &SpectrogramProcessor{
		fftSize:    fftSize,
		kernel:     fft.DefaultKernel(),
		timeStride: 1,
		freqStride: 1,
		logger:     applog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.cache == nil {
		cache, err := fft.NewTwiddleCache(fftSize)
		if err != nil {
			return nil, &ConfigurationError{Field: "fft size", Value: fftSize, Err: err}
		}
		p.cache = cache
	} else if p.cache.Size() != fftSize {
		return nil, &ConfigurationError{Field: "twiddle cache size", Value: p.cache.Size(), Err: fft.ErrSizeMismatch}
	}

	p.working = make([]fft.Complex, fftSize)

	p.logger.Debugf("Analysis: Initializing SpectrogramProcessor (Size: %d, Kernel: %s)", fftSize, p.kernel.Name())
	return p, nil
}

// FFTSize returns the configured transform size.
func (p *SpectrogramProcessor) FFTSize() int {
	return p.fftSize
}

// FreqBins returns FFTSize()/2, the unstrided number of magnitudes per window.
func (p *SpectrogramProcessor) FreqBins() int {
	return p.fftSize / 2
}

// Kernel returns the butterfly kernel in use.
func (p *SpectrogramProcessor) Kernel() fft.Kernel {
	return p.kernel
}

// Strides returns the configured decimation factors.
func (p *SpectrogramProcessor) Strides() Strides {
	return Strides{Time: p.timeStride, Freq: p.freqStride}
}

// SetStrides configures the decimation used by ProcessWindows. Both values
// must be at least 1; on error the previous strides are kept.
func (p *SpectrogramProcessor) SetStrides(timeStride, freqStride int) error {
	if timeStride < 1 {
		return &ConfigurationError{Field: "time stride", Value: timeStride, Err: ErrInvalidStride}
	}
	if freqStride < 1 {
		return &ConfigurationError{Field: "frequency stride", Value: freqStride, Err: ErrInvalidStride}
	}
	p.timeStride = timeStride
	p.freqStride = freqStride
	return nil
}

// ProcessWindow returns the FFTSize()/2 magnitudes of one Hann-windowed
// segment. A segment of the wrong length yields an empty slice rather than
// an error so a caller's window loop can skip it and carry on.
func (p *SpectrogramProcessor) ProcessWindow(samples []float32) []float32 {
	if len(samples) != p.fftSize {
		p.logger.Warnf("Analysis: Audio data length %d != fft size %d", len(samples), p.fftSize)
		return []float32{}
	}
	return p.AppendWindow(make([]float32, 0, p.fftSize/2), samples)
}

// AppendWindow is ProcessWindow appending into dst. When dst has room for
// FFTSize()/2 more values the call does not allocate. On a length mismatch
// dst is returned unchanged.
func (p *SpectrogramProcessor) AppendWindow(dst, samples []float32) []float32 {
	if !p.analyze(samples) {
		return dst
	}
	return p.appendMagnitudes(dst, 1)
}

// analyze fills the working buffer with the transform of the windowed samples.
func (p *SpectrogramProcessor) analyze(samples []float32) bool {
	if len(samples) != p.fftSize {
		return false
	}

	for i, s := range samples {
		p.working[i] = fft.Complex{Re: s}
	}
	window.ApplyHann(p.working)

	if err := fft.Transform(p.working, p.cache, p.kernel); err != nil {
		p.logger.Errorf("Analysis: transform failed: %v", err)
		return false
	}
	return true
}

// appendMagnitudes appends |X[k]| for k = 0, stride, 2·stride, ... below FFTSize()/2.
func (p *SpectrogramProcessor) appendMagnitudes(dst []float32, stride int) []float32 {
	half := p.fftSize / 2
	for k := 0; k < half; k += stride {
		dst = append(dst, p.working[k].Abs())
	}
	return dst
}

// hopSize is floor(FFTSize·(1−overlap)), clamped to 1 so an overlap at or
// above 1 cannot stall the window loop.
func (p *SpectrogramProcessor) hopSize(overlap float32) int {
	hop := int(float32(p.fftSize) * (1 - overlap))
	if hop < 1 {
		p.logger.Warnf("Analysis: overlap %.3f gives hop size %d, using 1", overlap, hop)
		hop = 1
	}
	return hop
}

// windowCount returns how many complete windows fit in n samples. Trailing
// samples that do not fill a final window are dropped.
func (p *SpectrogramProcessor) windowCount(n, hop int) int {
	if n < p.fftSize {
		return 0
	}
	return (n-p.fftSize)/hop + 1
}

// ComputeSpectrogram returns the window-major flattened magnitudes of every
// complete window, num_windows × FFTSize()/2 values.
func (p *SpectrogramProcessor) ComputeSpectrogram(samples []float32, overlap float32) []float32 {
	p.logger.Debugf("Analysis: Starting spectrogram computation for %d samples", len(samples))

	hop := p.hopSize(overlap)
	numWindows := p.windowCount(len(samples), hop)
	p.logger.Debugf("Analysis: Processing %d windows with hop size %d", numWindows, hop)

	out := make([]float32, 0, numWindows*(p.fftSize/2))
	for w := range numWindows {
		start := w * hop
		end := start + p.fftSize
		if end > len(samples) {
			break
		}
		out = p.AppendWindow(out, samples[start:end])

		if numWindows > 100 && w%(numWindows/10) == 0 {
			p.logger.Debugf("Analysis: Progress: %d/%d windows", w, numWindows)
		}
	}

	p.logger.Infof("Analysis: Spectrogram generation complete: %d x %d", numWindows, p.fftSize/2)
	return out
}

// ProcessWindows computes a decimated batch with the configured strides.
func (p *SpectrogramProcessor) ProcessWindows(samples []float32, overlap float32) *Spectrogram {
	s, _ := p.ProcessWindowsWith(samples, overlap, Strides{})
	return s
}

// ProcessWindowsWith computes a decimated batch. Zero stride fields fall
// back to the configured strides; negative ones are a ConfigurationError.
// Windows 0, t, 2t, ... are transformed at full resolution and every f-th
// bin (starting at 0) is kept, giving ceil((FFTSize/2)/f) bins per window.
func (p *SpectrogramProcessor) ProcessWindowsWith(samples []float32, overlap float32, s Strides) (*Spectrogram, error) {
	timeStride, freqStride := p.timeStride, p.freqStride
	if s.Time != 0 {
		timeStride = s.Time
	}
	if s.Freq != 0 {
		freqStride = s.Freq
	}
	if timeStride < 1 {
		return nil, &ConfigurationError{Field: "time stride", Value: timeStride, Err: ErrInvalidStride}
	}
	if freqStride < 1 {
		return nil, &ConfigurationError{Field: "frequency stride", Value: freqStride, Err: ErrInvalidStride}
	}

	hop := p.hopSize(overlap)
	totalWindows := p.windowCount(len(samples), hop)
	numWindows := (totalWindows + timeStride - 1) / timeStride

	result := &Spectrogram{
		FFTSize:    p.fftSize,
		HopSize:    hop,
		TimeStride: timeStride,
		FreqStride: freqStride,
		Data:       []float32{},
	}
	if numWindows == 0 {
		return result, nil
	}

	freqBins := p.fftSize / 2
	reducedBins := (freqBins + freqStride - 1) / freqStride

	data := make([]float32, 0, numWindows*reducedBins)
	for w := 0; w < totalWindows; w += timeStride {
		start := w * hop
		if !p.analyze(samples[start : start+p.fftSize]) {
			continue
		}
		data = p.appendMagnitudes(data, freqStride)
	}

	result.Data = data
	result.NumWindows = numWindows
	result.FreqBins = reducedBins
	return result, nil
}
