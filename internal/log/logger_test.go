// SPDX-License-Identifier: MIT
package log

import (
	"bytes"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, level LogLevel) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevLevel := GetLevel()
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(nil)
		SetLevel(prevLevel)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   LogLevel
		wantOK bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"Error", LevelError, true},
		{"fatal", LevelFatal, true},
		{"loud", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = (%s, %v), want (%s, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t, LevelWarn)

	Debugf("hidden %d", 1)
	Infof("hidden %d", 2)
	Warnf("shown %d", 3)
	Errorf("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below level were logged: %q", out)
	}
	if !strings.Contains(out, "[WARN]  shown 3") || !strings.Contains(out, "[ERROR] shown 4") {
		t.Errorf("expected warn and error lines, got %q", out)
	}
}

func TestDefaultAndPrefixed(t *testing.T) {
	buf := captureOutput(t, LevelDebug)

	l := Prefixed(Default(), "Analysis: ")
	l.Debugf("windows=%d", 7)
	l.Infof("done")

	out := buf.String()
	if !strings.Contains(out, "[DEBUG] Analysis: windows=7") {
		t.Errorf("missing prefixed debug line in %q", out)
	}
	if !strings.Contains(out, "[INFO]  Analysis: done") {
		t.Errorf("missing prefixed info line in %q", out)
	}
}

func TestNop(t *testing.T) {
	buf := captureOutput(t, LevelDebug)

	l := Nop()
	l.Debugf("x")
	l.Infof("x")
	l.Warnf("x")
	l.Errorf("x")

	if buf.Len() != 0 {
		t.Errorf("Nop logger wrote %q", buf.String())
	}
}
