// SPDX-License-Identifier: MIT

// Package transport delivers spectrograms to consumers outside the process.
package transport

import "spektra/internal/analysis"

// Transport defines a generic interface for sending computed spectrograms.
// Implementations should be thread-safe.
type Transport interface {
	Send(s *analysis.Spectrogram) error
	Close() error
}
