// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"spektra/internal/analysis"
	"spektra/internal/audio"
	applog "spektra/internal/log"
	"spektra/internal/tui"
)

func newViewCommand(a *app) *cobra.Command {
	var af analysisFlags

	cmd := &cobra.Command{
		Use:   "view file.wav",
		Short: "Browse the spectrogram of a WAV file in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := af.apply(cmd, a.cfg); err != nil {
				return err
			}

			clip, err := audio.LoadWAV(args[0])
			if err != nil {
				return err
			}
			proc, err := newProcessor(a.cfg.Analysis)
			if err != nil {
				return err
			}

			an := a.cfg.Analysis
			model := tui.NewSpectrogramModel(proc, clip.Samples, tui.SpectrogramOptions{
				Title:      fmt.Sprintf("%s • %s", filepath.Base(args[0]), clip.Metadata()),
				SampleRate: float64(clip.SampleRate),
				Overlap:    an.Overlap,
				Strides:    analysis.Strides{Time: an.TimeStride, Freq: an.FreqStride},
				MinDB:      an.MinDB,
				MaxDB:      an.MaxDB,
			})

			// The TUI owns the terminal while it runs.
			applog.SetOutput(io.Discard)
			defer applog.SetOutput(nil)
			return tui.StartSpectrogramUI(model)
		},
	}

	af.register(cmd)

	return cmd
}
