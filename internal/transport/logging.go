// SPDX-License-Identifier: MIT
package transport

import (
	"spektra/internal/analysis"
	applog "spektra/internal/log"
)

// LoggingTransport implements the Transport interface by logging a summary
// of every spectrogram.
type LoggingTransport struct {
	logger applog.Logger
}

// NewLoggingTransport creates a new LoggingTransport instance. A nil logger
// uses the global one.
func NewLoggingTransport(logger applog.Logger) *LoggingTransport {
	if logger == nil {
		logger = applog.Default()
	}
	lt := &LoggingTransport{logger: applog.Prefixed(logger, "LoggingTransport: ")}
	lt.logger.Debugf("Using LoggingTransport")
	return lt
}

// Send logs the shape and value range of s.
func (lt *LoggingTransport) Send(s *analysis.Spectrogram) error {
	sum := analysis.Summarize(s.Data)
	lt.logger.Infof("%d windows x %d bins (fft %d, hop %d, strides %d/%d)",
		s.NumWindows, s.FreqBins, s.FFTSize, s.HopSize, s.TimeStride, s.FreqStride)
	lt.logger.Infof("values=%d finite=%d min=%.6g max=%.6g mean=%.6g",
		sum.Values, sum.Finite, sum.Min, sum.Max, sum.Mean)
	if sum.Finite != sum.Values {
		lt.logger.Warnf("%d non-finite values", sum.Values-sum.Finite)
	}
	return nil // Logging transport never fails to "send"
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	lt.logger.Debugf("Close called.")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
