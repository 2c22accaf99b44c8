// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"spektra/internal/audio"
	"spektra/internal/config"
	applog "spektra/internal/log"
	"spektra/internal/tui"
)

func newRecordCommand(a *app) *cobra.Command {
	var (
		deviceID    int
		sampleRate  float64
		frames      int
		duration    time.Duration
		lowLatency  bool
		output      string
		bitDepth    int
		gate        float64
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a fixed-length clip from an input device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			au := &a.cfg.Audio
			fs := cmd.Flags()
			if fs.Changed("device") {
				au.InputDevice = deviceID
			}
			if fs.Changed("sample-rate") {
				au.SampleRate = sampleRate
			}
			if fs.Changed("frames-per-buffer") {
				au.FramesPerBuffer = frames
			}
			if fs.Changed("duration") {
				au.CaptureSeconds = duration.Seconds()
			}
			if fs.Changed("low-latency") {
				au.LowLatency = lowLatency
			}

			if interactive {
				device, rate, ok, err := tui.StartDeviceListUI()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				au.InputDevice, au.SampleRate = device.ID, rate
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			if output == "" {
				output = defaultRecordingPath(au.OutputDir, time.Now())
			}
			return record(cmd, *au, output, bitDepth, gate)
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&deviceID, "device", "d", config.DefaultDeviceID,
		"Specify input device ID. Use 'devices' command to see available devices.")
	fs.Float64VarP(&sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	fs.IntVarP(&frames, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	fs.DurationVarP(&duration, "duration", "D", config.DefaultCaptureSeconds*time.Second,
		"Length of the recording")
	fs.BoolVarP(&lowLatency, "low-latency", "l", false,
		"Use low latency mode")
	fs.StringVarP(&output, "output", "o", "",
		"Output file name. Default is <output_dir>/recording-DD-MM-YYYY-HHMMSS.wav")
	fs.IntVar(&bitDepth, "bit-depth", 16,
		"Bit depth of the written WAV: 16, 24 or 32")
	fs.Float64VarP(&gate, "gate", "g", 0,
		"Start recording once a buffer peaks above this level (0 disables)")
	fs.BoolVarP(&interactive, "interactive", "i", false,
		"Pick the device and sample rate in the terminal UI")

	return cmd
}

// defaultRecordingPath names a recording after its UTC start time.
func defaultRecordingPath(dir string, now time.Time) string {
	return filepath.Join(dir, "recording-"+now.UTC().Format("02-01-2006-150405")+".wav")
}

func record(cmd *cobra.Command, au config.AudioConfig, output string, bitDepth int, gate float64) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	opts := audio.CaptureOptions{
		DeviceID:        au.InputDevice,
		SampleRate:      au.SampleRate,
		FramesPerBuffer: au.FramesPerBuffer,
		Duration:        time.Duration(au.CaptureSeconds * float64(time.Second)),
		LowLatency:      au.LowLatency,
	}
	if gate > 0 {
		opts.Gate = audio.NewGate(gate)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recording %s... (Ctrl+C to stop early)\n", audio.FormatDuration(opts.Duration))
	clip, err := audio.Capture(cmd.Context(), opts)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if clip == nil || len(clip.Samples) == 0 {
		applog.Warnf("Record: nothing captured")
		return nil
	}

	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := audio.WriteWAV(output, clip, bitDepth); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recording saved to: %s (%s, peak %.3f)\n", output, clip.Metadata(), clip.Peak())
	return nil
}
