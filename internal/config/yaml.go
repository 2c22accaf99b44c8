// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"spektra/internal/fft"
	applog "spektra/internal/log"
	"spektra/internal/transport/udp"
	"spektra/pkg/bitint"
)

// ErrInvalid wraps every validation failure returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	LogLevel  string          `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	Analysis  AnalysisConfig  `yaml:"analysis"`  // Spectrogram settings.
	Audio     AudioConfig     `yaml:"audio"`     // Capture settings.
	Transport TransportConfig `yaml:"transport"` // Websocket and UDP settings.
}

// AnalysisConfig configures the spectrogram processor.
type AnalysisConfig struct {
	FFTSize    int     `yaml:"fft_size"`    // Window length in samples, a power of two.
	Overlap    float32 `yaml:"overlap"`     // Fraction of a window shared by neighbours, in [0, 1).
	TimeStride int     `yaml:"time_stride"` // Keep every n-th window in batches.
	FreqStride int     `yaml:"freq_stride"` // Keep every n-th bin in batches.
	Kernel     string  `yaml:"kernel"`      // Butterfly kernel: auto, scalar or vector.
	MinDB      float32 `yaml:"min_db"`      // Floor of the display range.
	MaxDB      float32 `yaml:"max_db"`      // Ceiling of the display range.
	Workers    int     `yaml:"workers"`     // Goroutines used by parallel analysis.
}

// AudioConfig holds settings related to audio input.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index for audio input (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz (e.g., 44100, 48000).
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames read per blocking call during capture.
	CaptureSeconds  float64 `yaml:"capture_seconds"`   // Length of a recorded clip.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
	OutputDir       string  `yaml:"output_dir"`        // Directory for recorded WAV files.
}

// TransportConfig holds settings related to sending processed data over the network.
type TransportConfig struct {
	ListenAddress    string        `yaml:"listen_address"`     // Websocket server address.
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Publish spectrogram rows over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address and port for UDP packets (e.g., "127.0.0.1:9090").
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between UDP packets.
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Analysis: AnalysisConfig{
			FFTSize:    DefaultFFTSize,
			Overlap:    DefaultOverlap,
			TimeStride: DefaultTimeStride,
			FreqStride: DefaultFreqStride,
			Kernel:     DefaultKernel,
			MinDB:      DefaultMinDB,
			MaxDB:      DefaultMaxDB,
			Workers:    DefaultWorkers,
		},
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			CaptureSeconds:  DefaultCaptureSeconds,
			OutputDir:       DefaultOutputDir,
		},
		Transport: TransportConfig{
			ListenAddress:    DefaultListenAddress,
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultUDPSendInterval,
		},
	}
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		candidates := []string{
			"config.yaml",
			"spektra.yaml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment overrides apply after the file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}

	a := c.Analysis
	if !bitint.IsPowerOfTwo(a.FFTSize) || a.FFTSize < MinFFTSize || a.FFTSize > MaxFFTSize {
		return fmt.Errorf("%w: analysis.fft_size %d: %w", ErrInvalid, a.FFTSize, fft.ErrNotPowerOfTwo)
	}
	if a.Overlap < 0 || a.Overlap >= 1 {
		return fmt.Errorf("%w: analysis.overlap %.3f must be in [0, 1)", ErrInvalid, a.Overlap)
	}
	if a.TimeStride < 1 || a.FreqStride < 1 {
		return fmt.Errorf("%w: analysis strides %d/%d must be at least 1", ErrInvalid, a.TimeStride, a.FreqStride)
	}
	if _, err := fft.KernelByName(a.Kernel); err != nil {
		return fmt.Errorf("%w: analysis.kernel: %w", ErrInvalid, err)
	}
	if a.MinDB >= a.MaxDB {
		return fmt.Errorf("%w: analysis.min_db %.1f must be below max_db %.1f", ErrInvalid, a.MinDB, a.MaxDB)
	}
	if a.Workers < 1 || a.Workers > MaxWorkers {
		return fmt.Errorf("%w: analysis.workers %d must be in [1, %d]", ErrInvalid, a.Workers, MaxWorkers)
	}

	au := c.Audio
	if au.InputDevice < MinDeviceID {
		return fmt.Errorf("%w: audio.input_device %d", ErrInvalid, au.InputDevice)
	}
	if au.SampleRate < MinSampleRate || au.SampleRate > MaxSampleRate {
		return fmt.Errorf("%w: audio.sample_rate %.0f must be in [%d, %d]", ErrInvalid, au.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if au.FramesPerBuffer < 1 || au.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("%w: audio.frames_per_buffer %d must be in [1, %d]", ErrInvalid, au.FramesPerBuffer, MaxBufferFrames)
	}
	if au.CaptureSeconds <= 0 {
		return fmt.Errorf("%w: audio.capture_seconds must be positive", ErrInvalid)
	}

	t := c.Transport
	if t.UDPEnabled {
		if !strings.Contains(t.UDPTargetAddress, ":") {
			return fmt.Errorf("%w: transport.udp_target_address %q appears invalid (missing port?)", ErrInvalid, t.UDPTargetAddress)
		}
		if t.UDPSendInterval < 0 {
			return fmt.Errorf("%w: transport.udp_send_interval must not be negative", ErrInvalid)
		}
		// One row per datagram.
		bins := (a.FFTSize/2 + a.FreqStride - 1) / a.FreqStride
		if bins > udp.MaxRowLength {
			return fmt.Errorf("%w: %d bins per row exceed the %d a UDP packet can carry; lower analysis.fft_size or raise analysis.freq_stride",
				ErrInvalid, bins, udp.MaxRowLength)
		}
	}

	return nil
}

// applyEnvOverrides replaces settings with ENV_* variables when present.
// Unparseable values are logged and ignored.
func (c *Config) applyEnvOverrides() {
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		applog.Debugf("Config: Overriding log_level from env: %s", val)
	}

	// ENV_{...}
	// These are specific to the analysis settings.

	// ENV_FFT_SIZE
	if val, ok := os.LookupEnv("ENV_FFT_SIZE"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Analysis.FFTSize = n
			applog.Debugf("Config: Overriding analysis.fft_size from env: %d", n)
		} else {
			applog.Warnf("Config: Ignoring ENV_FFT_SIZE %q: %v", val, err)
		}
	}
	// ENV_OVERLAP
	if val, ok := os.LookupEnv("ENV_OVERLAP"); ok {
		if f, err := strconv.ParseFloat(val, 32); err == nil {
			c.Analysis.Overlap = float32(f)
			applog.Debugf("Config: Overriding analysis.overlap from env: %g", f)
		} else {
			applog.Warnf("Config: Ignoring ENV_OVERLAP %q: %v", val, err)
		}
	}
	// ENV_KERNEL
	if val, ok := os.LookupEnv("ENV_KERNEL"); ok {
		c.Analysis.Kernel = val
		applog.Debugf("Config: Overriding analysis.kernel from env: %s", val)
	}

	// ENV_UDP_{...}
	// These are specific to the transport layer.

	// ENV_LISTEN_ADDRESS
	if val, ok := os.LookupEnv("ENV_LISTEN_ADDRESS"); ok {
		c.Transport.ListenAddress = val
		applog.Debugf("Config: Overriding transport.listen_address from env: %s", val)
	}
	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = bVal
			applog.Debugf("Config: Overriding transport.udp_enabled from env: %v", bVal)
		} else {
			applog.Warnf("Config: Ignoring ENV_UDP_ENABLED %q: %v", val, err)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		applog.Debugf("Config: Overriding transport.udp_target_address from env: %s", val)
	}
	// ENV_UDP_SEND_INTERVAL
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
			applog.Debugf("Config: Overriding transport.udp_send_interval from env: %s", dur)
		} else {
			applog.Warnf("Config: Ignoring ENV_UDP_SEND_INTERVAL %q: %v", val, err)
		}
	}
}
