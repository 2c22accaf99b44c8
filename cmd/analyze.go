// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spektra/internal/analysis"
	"spektra/internal/config"
	"spektra/internal/fft"
	applog "spektra/internal/log"
	"spektra/internal/transport"
	"spektra/internal/transport/udp"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	var (
		af        analysisFlags
		sf        signalFlags
		transName string
		decibels  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [file.wav]",
		Short: "Compute a spectrogram and send it to a transport",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := af.apply(cmd, a.cfg); err != nil {
				return err
			}
			if !cmd.Flags().Changed("transport") && a.cfg.Transport.UDPEnabled {
				transName = "udp"
			}

			in, err := sf.load(args, a.cfg.Audio.SampleRate)
			if err != nil {
				return err
			}

			spec, err := computeSpectrogram(cmd.Context(), a.cfg.Analysis, in.samples)
			if err != nil {
				return err
			}
			printBands(cmd, in, spec)

			if decibels {
				spec = spec.ToDecibels()
			}
			return deliver(cmd.Context(), a.cfg.Transport, transName, spec)
		},
	}

	af.register(cmd)
	sf.register(cmd)
	cmd.Flags().StringVarP(&transName, "transport", "t", "log",
		"Where to send the spectrogram: log or udp")
	cmd.Flags().BoolVar(&decibels, "decibels", false,
		"Send magnitudes in dB instead of linear")

	return cmd
}

// computeSpectrogram runs the parallel path for unit strides and more than
// one worker, the strided batch otherwise.
func computeSpectrogram(ctx context.Context, a config.AnalysisConfig, samples []float32) (*analysis.Spectrogram, error) {
	if a.Workers > 1 && a.TimeStride == 1 && a.FreqStride == 1 {
		kernel, err := fft.KernelByName(a.Kernel)
		if err != nil {
			return nil, err
		}
		applog.Debugf("Analyze: %d workers, kernel %s", a.Workers, kernel.Name())
		return analysis.ComputeParallel(ctx, a.FFTSize, samples, a.Overlap, a.Workers, analysis.WithKernel(kernel))
	}

	proc, err := newProcessor(a)
	if err != nil {
		return nil, err
	}
	return proc.ProcessWindowsWith(samples, a.Overlap, analysis.Strides{})
}

// printBands writes the batch shape and the mean energy per band.
func printBands(cmd *cobra.Command, in input, spec *analysis.Spectrogram) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d windows × %d bins (fft %d, hop %d, strides %d/%d)\n",
		in.name, spec.NumWindows, spec.FreqBins, spec.FFTSize, spec.HopSize, spec.TimeStride, spec.FreqStride)
	if spec.NumWindows == 0 {
		return
	}

	energy := spec.BandEnergy(in.sampleRate, analysis.DefaultBands)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "band\trange (Hz)\tmean rms")
	for i, band := range analysis.DefaultBands {
		var sum float64
		for _, row := range energy {
			sum += row[i]
		}
		fmt.Fprintf(tw, "%s\t%.0f-%.0f\t%.6g\n", band.Name, band.LowHz, band.HighHz, sum/float64(len(energy)))
	}
	tw.Flush()
}

// deliver sends spec over the named transport and closes it.
func deliver(ctx context.Context, tc config.TransportConfig, name string, spec *analysis.Spectrogram) error {
	switch name {
	case "log":
		t := transport.NewLoggingTransport(applog.Default())
		defer t.Close()
		return t.Send(spec)

	case "udp":
		sender, err := udp.NewUDPSender(tc.UDPTargetAddress)
		if err != nil {
			return err
		}
		pub, err := udp.NewUDPPublisher(tc.UDPSendInterval, sender, applog.Default())
		if err != nil {
			sender.Close()
			return err
		}
		defer pub.Close()
		return pub.Publish(ctx, spec)

	default:
		return fmt.Errorf("unknown transport: '%s'", name)
	}
}
