// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"testing"

	"spektra/pkg/utils"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSpectrogramAccessors(t *testing.T) {
	s := &Spectrogram{
		Data:       []float32{1, 2, 3, 4, 5, 6},
		NumWindows: 2,
		FreqBins:   3,
	}

	if got := s.Row(1); len(got) != 3 || got[0] != 4 || got[2] != 6 {
		t.Errorf("Row(1) = %v, want [4 5 6]", got)
	}
	if got := s.At(0, 2); got != 3 {
		t.Errorf("At(0, 2) = %g, want 3", got)
	}

	rows := s.Rows()
	if len(rows) != 2 {
		t.Fatalf("len(Rows()) = %d, want 2", len(rows))
	}
	rows[0][0] = 42
	if s.Data[0] != 42 {
		t.Error("Rows() copied the data, want aliasing slices")
	}
}

func TestFrequencyAndTime(t *testing.T) {
	s := &Spectrogram{FFTSize: 1024, HopSize: 512, TimeStride: 2, FreqStride: 4}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"Bin0", s.FrequencyForBin(0, 44100), 0},
		{"Bin1Strided", s.FrequencyForBin(1, 44100), 4 * 44100.0 / 1024},
		{"Bin10Strided", s.FrequencyForBin(10, 48000), 40 * 48000.0 / 1024},
		{"Window0", s.TimeForWindow(0, 44100), 0},
		{"Window3Strided", s.TimeForWindow(3, 44100), 3 * 2 * 512 / 44100.0},
		{"NoSampleRate", s.TimeForWindow(3, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !approxEqual(tt.got, tt.want, 1e-9) {
				t.Errorf("got %g, want %g", tt.got, tt.want)
			}
		})
	}

	if got := (&Spectrogram{}).FrequencyForBin(3, 44100); got != 0 {
		t.Errorf("FrequencyForBin on empty spectrogram = %g, want 0", got)
	}
}

func TestDecibels(t *testing.T) {
	tests := []struct {
		in   float32
		want float32
	}{
		{1, 0},
		{10, 20},
		{0.1, -20},
		{0, DefaultMinDB},
		{-3, DefaultMinDB},
		{1e-9, DefaultMinDB}, // -180 dB floors at the minimum
	}
	for _, tt := range tests {
		if got := Decibels(tt.in); !approxEqual(float64(got), float64(tt.want), 1e-4) {
			t.Errorf("Decibels(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestToDecibelsAndNormalize(t *testing.T) {
	s := &Spectrogram{
		Data:       []float32{1, 0.1, 0, 1e-3},
		NumWindows: 1,
		FreqBins:   4,
		FFTSize:    8,
	}

	db := s.ToDecibels()
	if db == s || &db.Data[0] == &s.Data[0] {
		t.Fatal("ToDecibels() modified the receiver in place")
	}
	if db.NumWindows != 1 || db.FreqBins != 4 || db.FFTSize != 8 {
		t.Errorf("ToDecibels() shape = %+v, want shape preserved", db)
	}
	if s.Data[0] != 1 {
		t.Errorf("receiver changed: %v", s.Data)
	}

	norm := db.Normalize(-60, 0)
	want := []float32{1, 40.0 / 60, 0, 0}
	for i, w := range want {
		if !approxEqual(float64(norm.Data[i]), float64(w), 1e-5) {
			t.Errorf("Normalize()[%d] = %g, want %g", i, norm.Data[i], w)
		}
		if norm.Data[i] < 0 || norm.Data[i] > 1 {
			t.Errorf("Normalize()[%d] = %g outside [0, 1]", i, norm.Data[i])
		}
	}
}

func TestBandEnergy(t *testing.T) {
	const sampleRate = 8000
	p := newTestProcessor(t, 256)

	// 1 kHz sits in "mid" (500-2000 Hz) and nowhere else.
	samples := utils.GenerateSineWave(256*8, sampleRate, 1000)
	s := p.ProcessWindows(samples, 0.5)

	energy := s.BandEnergy(sampleRate, DefaultBands)
	if len(energy) != s.NumWindows {
		t.Fatalf("len(energy) = %d, want %d", len(energy), s.NumWindows)
	}

	midIdx := -1
	for i, b := range DefaultBands {
		if b.Name == "mid" {
			midIdx = i
		}
	}
	for w, row := range energy {
		if len(row) != len(DefaultBands) {
			t.Fatalf("window %d: %d bands, want %d", w, len(row), len(DefaultBands))
		}
		for i, e := range row {
			if i != midIdx && e >= row[midIdx] {
				t.Errorf("window %d: band %s energy %g >= mid %g", w, DefaultBands[i].Name, e, row[midIdx])
			}
		}
	}
}

func TestBandEnergyEmptyBand(t *testing.T) {
	s := &Spectrogram{Data: []float32{1, 1}, NumWindows: 1, FreqBins: 2, FFTSize: 4, FreqStride: 1}
	bands := []FrequencyBand{{Name: "unreachable", LowHz: 1e6, HighHz: 2e6}}

	energy := s.BandEnergy(8000, bands)
	if energy[0][0] != 0 {
		t.Errorf("empty band energy = %g, want 0", energy[0][0])
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		data []float32
		want Summary
	}{
		{"Empty", nil, Summary{}},
		{"Finite", []float32{1, 2, 3, 6}, Summary{Values: 4, Finite: 4, Min: 1, Max: 6, Mean: 3}},
		{
			"NonFinite",
			[]float32{float32(math.NaN()), 2, float32(math.Inf(1)), 4},
			Summary{Values: 4, Finite: 2, Min: 2, Max: 4, Mean: 3},
		},
		{"AllNaN", []float32{float32(math.NaN())}, Summary{Values: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.data); got != tt.want {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
