// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned when a file is not a readable PCM WAV.
var ErrInvalidWAV = errors.New("invalid WAV file")

// Clip is a finite mono signal in [-1, 1] plus the metadata of its source.
type Clip struct {
	Samples    []float32
	SampleRate int
	// Channels and BitDepth describe the source; Samples is always mono.
	Channels int
	BitDepth int
}

// Duration returns the length of the clip.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / float64(c.SampleRate) * float64(time.Second))
}

// FormatDuration renders d as m:ss.
func FormatDuration(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Metadata summarises the clip for display, e.g.
// "44100 Hz, 2 ch, 16-bit, 0:05".
func (c *Clip) Metadata() string {
	return fmt.Sprintf("%d Hz, %d ch, %d-bit, %s", c.SampleRate, c.Channels, c.BitDepth, FormatDuration(c.Duration()))
}

// Peak returns the largest absolute sample value.
func (c *Clip) Peak() float32 {
	var peak float32
	for _, s := range c.Samples {
		peak = max(peak, float32(math.Abs(float64(s))))
	}
	return peak
}

// LoadWAV decodes a PCM WAV file into a mono clip, averaging channels.
func LoadWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels < 1 || bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d channels at %d bits", ErrInvalidWAV, channels, bitDepth)
	}

	return &Clip{
		Samples:    downmix(buf.Data, channels, bitDepth),
		SampleRate: int(dec.SampleRate),
		Channels:   channels,
		BitDepth:   bitDepth,
	}, nil
}

// downmix converts interleaved integer PCM to mono float32 in [-1, 1].
// 8-bit WAV data is unsigned and is re-centred first.
func downmix(data []int, channels, bitDepth int) []float32 {
	scale := float64(int64(1) << (bitDepth - 1))
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	frames := len(data) / channels
	out := make([]float32, frames)
	for i := range out {
		var sum float64
		for ch := range channels {
			sum += float64(data[i*channels+ch] - offset)
		}
		out[i] = float32(sum / float64(channels) / scale)
	}
	return out
}

// WriteWAV encodes clip as a mono PCM WAV at the given bit depth. Samples
// outside [-1, 1] are clipped.
func WriteWAV(path string, clip *Clip, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(file, clip.SampleRate, bitDepth, 1, 1)

	scale := float64(int64(1)<<(bitDepth-1) - 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  clip.SampleRate,
		},
		Data:           make([]int, len(clip.Samples)),
		SourceBitDepth: bitDepth,
	}
	for i, s := range clip.Samples {
		v := min(max(float64(s), -1), 1)
		buf.Data[i] = int(math.Round(v * scale))
	}

	if err := enc.Write(buf); err != nil {
		enc.Close()
		file.Close()
		return fmt.Errorf("writing WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
