// SPDX-License-Identifier: MIT
package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spektra/internal/analysis"
	"spektra/internal/fft"
	applog "spektra/internal/log"
	"spektra/internal/reference"
)

// ErrVerifyFailed is returned when a kernel disagrees with a reference
// backend beyond the tolerance.
var ErrVerifyFailed = errors.New("engine disagrees with reference")

func newVerifyCommand(a *app) *cobra.Command {
	var (
		af        analysisFlags
		sf        signalFlags
		tolerance float64
	)

	cmd := &cobra.Command{
		Use:   "verify [file.wav]",
		Short: "Compare every FFT kernel against the reference implementations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := af.apply(cmd, a.cfg); err != nil {
				return err
			}
			in, err := sf.load(args, a.cfg.Audio.SampleRate)
			if err != nil {
				return err
			}
			return verify(cmd, in, a.cfg.Analysis.FFTSize, a.cfg.Analysis.Overlap, tolerance)
		},
	}

	af.register(cmd)
	sf.register(cmd)
	cmd.Flags().Float64Var(&tolerance, "tolerance", 1e-3,
		"Largest accepted error relative to max(|reference|, 1)")

	return cmd
}

func verify(cmd *cobra.Command, in input, fftSize int, overlap float32, tolerance float64) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "kernel\treference\tvalues\tmax abs\tmax rel\trms\tresult")

	failed := 0
	for _, kernel := range []fft.Kernel{fft.ScalarKernel{}, fft.VectorKernel{}} {
		proc, err := analysis.NewSpectrogramProcessor(fftSize,
			analysis.WithKernel(kernel), analysis.WithLogger(applog.Nop()))
		if err != nil {
			return err
		}
		spec := proc.ProcessWindows(in.samples, overlap)

		for _, backend := range reference.Backends() {
			want, err := reference.Spectrogram(backend, in.samples, fftSize, spec.HopSize)
			if err != nil {
				return err
			}
			r, err := reference.Compare(spec.Data, want)
			if err != nil {
				return err
			}

			result := "ok"
			if !r.Within(tolerance) {
				result = "FAIL"
				failed++
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.3g\t%.3g\t%.3g\t%s\n",
				kernel.Name(), backend.Name(), r.Values, r.MaxAbsErr, r.MaxRelErr, r.RMSErr, result)
		}
	}
	tw.Flush()

	if failed > 0 {
		return fmt.Errorf("%w: %d comparisons above tolerance %g", ErrVerifyFailed, failed, tolerance)
	}
	return nil
}
