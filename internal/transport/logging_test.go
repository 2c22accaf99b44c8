// SPDX-License-Identifier: MIT
package transport

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"spektra/internal/analysis"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) add(level, format string, v ...any) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, v...))
}

func (r *recordingLogger) Debugf(format string, v ...any) { r.add("DEBUG", format, v...) }
func (r *recordingLogger) Infof(format string, v ...any)  { r.add("INFO", format, v...) }
func (r *recordingLogger) Warnf(format string, v ...any)  { r.add("WARN", format, v...) }
func (r *recordingLogger) Errorf(format string, v ...any) { r.add("ERROR", format, v...) }

func TestLoggingTransport(t *testing.T) {
	rec := &recordingLogger{}
	lt := NewLoggingTransport(rec)

	sp := &analysis.Spectrogram{
		Data:       []float32{1, 3, float32(math.NaN()), 2},
		NumWindows: 2,
		FreqBins:   2,
		FFTSize:    4,
		HopSize:    2,
		TimeStride: 1,
		FreqStride: 1,
	}
	if err := lt.Send(sp); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if err := lt.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	out := strings.Join(rec.lines, "\n")
	for _, want := range []string{
		"INFO LoggingTransport: 2 windows x 2 bins (fft 4, hop 2, strides 1/1)",
		"finite=3 min=1 max=3 mean=2",
		"WARN LoggingTransport: 1 non-finite values",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}
