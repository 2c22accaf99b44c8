// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"

	applog "spektra/internal/log"
)

// CaptureOptions configures a fixed-length recording.
type CaptureOptions struct {
	DeviceID        int
	SampleRate      float64
	FramesPerBuffer int
	Duration        time.Duration
	LowLatency      bool
	// Gate, when set, discards buffers until the first one that opens it.
	Gate *Gate
}

// frameCount returns how many mono frames the capture must collect.
func (o CaptureOptions) frameCount() int {
	return int(o.Duration.Seconds() * o.SampleRate)
}

// Capture records a mono clip of opts.Duration from an input device using
// PortAudio's blocking read API. PortAudio must already be initialized.
// Cancelling ctx stops the recording early and returns what was captured
// along with ctx.Err().
func Capture(ctx context.Context, opts CaptureOptions) (*Clip, error) {
	total := opts.frameCount()
	if total <= 0 || opts.FramesPerBuffer <= 0 {
		return nil, fmt.Errorf("capture needs a positive duration and buffer size (got %s, %d frames)", opts.Duration, opts.FramesPerBuffer)
	}

	device, err := InputDevice(opts.DeviceID)
	if err != nil {
		return nil, err
	}

	latency := device.DefaultHighInputLatency
	if opts.LowLatency {
		latency = device.DefaultLowInputLatency
	}

	buffer := make([]float32, opts.FramesPerBuffer)
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   device,
			Latency:  latency,
		},
		FramesPerBuffer: opts.FramesPerBuffer,
		SampleRate:      opts.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}
	defer stream.Stop()

	applog.Infof("Audio: Capturing %s from %q at %.0f Hz", opts.Duration, device.Name, opts.SampleRate)

	clip := &Clip{
		Samples:    make([]float32, 0, total+opts.FramesPerBuffer),
		SampleRate: int(opts.SampleRate),
		Channels:   1,
		BitDepth:   32,
	}
	gated := opts.Gate != nil

	for len(clip.Samples) < total {
		if err := ctx.Err(); err != nil {
			return clip, err
		}

		if err := stream.Read(); err != nil {
			if errors.Is(err, portaudio.InputOverflowed) {
				applog.Warnf("Audio: Input overflowed, samples were dropped")
				continue
			}
			return nil, fmt.Errorf("failed to read input stream: %w", err)
		}

		if gated {
			if !opts.Gate.Open(buffer) {
				continue
			}
			gated = false
			applog.Debugf("Audio: Gate opened, recording")
		}
		clip.Samples = append(clip.Samples, buffer...)
	}

	clip.Samples = clip.Samples[:total]
	applog.Infof("Audio: Captured %s (peak %.3f)", FormatDuration(clip.Duration()), clip.Peak())
	return clip, nil
}
