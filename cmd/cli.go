// SPDX-License-Identifier: MIT

// Package cmd wires the command line to the analysis, audio, transport and
// TUI packages.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"spektra/internal/analysis"
	"spektra/internal/audio"
	"spektra/internal/config"
	"spektra/internal/fft"
	applog "spektra/internal/log"
	"spektra/pkg/build"
	"spektra/pkg/utils"
)

// app carries state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

// Execute runs the command line against os.Args. ctx is cancelled on
// SIGINT/SIGTERM by the caller.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	buildInfo := build.GetBuildFlags()
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: a.load,
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.SetVersionTemplate(buildInfo.String() + "\n")

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "C", "",
		"Path to a YAML config file. Default searches config.yaml and spektra.yaml")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", config.DefaultLogLevel,
		"Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newAnalyzeCommand(a),
		newServeCommand(a),
		newDevicesCommand(a),
		newRecordCommand(a),
		newViewCommand(a),
		newVerifyCommand(a),
	)

	return rootCmd
}

// load reads the config file and applies the persistent flags.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	level, ok := applog.ParseLevel(cfg.LogLevel)
	if !ok {
		return fmt.Errorf("%w: log level %q", config.ErrInvalid, cfg.LogLevel)
	}
	applog.SetLevel(level)

	a.cfg = cfg
	return nil
}

// analysisFlags mirrors config.AnalysisConfig on the command line.
type analysisFlags struct {
	fftSize    int
	overlap    float32
	timeStride int
	freqStride int
	kernel     string
	workers    int
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVarP(&f.fftSize, "fft-size", "n", config.DefaultFFTSize,
		"FFT window size in samples (power of 2)")
	fs.Float32VarP(&f.overlap, "overlap", "p", config.DefaultOverlap,
		"Fraction of each window shared with the next, in [0, 1)")
	fs.IntVar(&f.timeStride, "time-stride", config.DefaultTimeStride,
		"Keep every n-th window")
	fs.IntVar(&f.freqStride, "freq-stride", config.DefaultFreqStride,
		"Keep every n-th frequency bin")
	fs.StringVarP(&f.kernel, "kernel", "k", config.DefaultKernel,
		"Butterfly kernel: auto, scalar or vector")
	fs.IntVarP(&f.workers, "workers", "w", config.DefaultWorkers,
		"Goroutines used for unit-stride analysis")
}

// apply copies the flags the user set over cfg and revalidates it.
func (f *analysisFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	a := &cfg.Analysis
	if fs.Changed("fft-size") {
		a.FFTSize = f.fftSize
	}
	if fs.Changed("overlap") {
		a.Overlap = f.overlap
	}
	if fs.Changed("time-stride") {
		a.TimeStride = f.timeStride
	}
	if fs.Changed("freq-stride") {
		a.FreqStride = f.freqStride
	}
	if fs.Changed("kernel") {
		a.Kernel = f.kernel
	}
	if fs.Changed("workers") {
		a.Workers = f.workers
	}
	return cfg.Validate()
}

// newProcessor builds a processor from the analysis settings.
func newProcessor(a config.AnalysisConfig) (*analysis.SpectrogramProcessor, error) {
	kernel, err := fft.KernelByName(a.Kernel)
	if err != nil {
		return nil, err
	}
	proc, err := analysis.NewSpectrogramProcessor(a.FFTSize, analysis.WithKernel(kernel))
	if err != nil {
		return nil, err
	}
	if err := proc.SetStrides(a.TimeStride, a.FreqStride); err != nil {
		return nil, err
	}
	return proc, nil
}

// signalFlags select a generated test signal for commands that accept an
// optional WAV file.
type signalFlags struct {
	kind      string
	frequency float64
	duration  time.Duration
}

func (f *signalFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.kind, "signal", "sine",
		"Generated signal when no file is given: sine, chirp or complex")
	fs.Float64Var(&f.frequency, "frequency", 1000,
		"Frequency of the generated sine in Hz")
	fs.DurationVar(&f.duration, "duration", time.Second,
		"Length of the generated signal")
}

// input is a mono signal ready for analysis.
type input struct {
	name       string
	samples    []float32
	sampleRate float64
}

// load reads args[0] as a WAV file, or generates the selected signal at
// sampleRate when no file is given.
func (f *signalFlags) load(args []string, sampleRate float64) (input, error) {
	if len(args) > 0 {
		clip, err := audio.LoadWAV(args[0])
		if err != nil {
			return input{}, err
		}
		applog.Infof("Loaded %s (%s)", args[0], clip.Metadata())
		return input{name: args[0], samples: clip.Samples, sampleRate: float64(clip.SampleRate)}, nil
	}

	n := int(f.duration.Seconds() * sampleRate)
	if n <= 0 {
		return input{}, fmt.Errorf("duration %s is too short at %.0f Hz", f.duration, sampleRate)
	}

	var samples []float32
	switch f.kind {
	case "sine":
		samples = utils.GenerateSineWave(n, sampleRate, f.frequency)
	case "chirp":
		samples = utils.GenerateChirp(n, sampleRate, 20, sampleRate/2)
	case "complex":
		samples = utils.GenerateComplexWave(n, sampleRate)
	default:
		return input{}, fmt.Errorf("unknown signal: '%s'", f.kind)
	}
	return input{name: f.kind, samples: samples, sampleRate: sampleRate}, nil
}
