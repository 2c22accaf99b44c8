// SPDX-License-Identifier: MIT
package config

import "time"

// Defaults applied before the config file and environment are read.
const (
	DefaultLogLevel = "info"

	DefaultFFTSize    = 1024
	DefaultOverlap    = 0.5
	DefaultTimeStride = 1
	DefaultFreqStride = 1
	DefaultKernel     = "auto"
	DefaultMinDB      = -120.0
	DefaultMaxDB      = 0.0
	DefaultWorkers    = 4

	DefaultDeviceID        = MinDeviceID // System default input device
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultFramesPerBuffer = 512         // Balanced latency/performance
	DefaultCaptureSeconds  = 5
	DefaultOutputDir       = "./recordings"

	DefaultListenAddress    = "127.0.0.1:8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 33 * time.Millisecond // ~30Hz
)

// Hardware and processing limits.
const (
	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer
	MinFFTSize      = 2
	MaxFFTSize      = 1 << 16
	MaxWorkers      = 256
)
