// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
)

// FrequencyBand defines the name and frequency range for an energy band.
type FrequencyBand struct {
	Name   string
	LowHz  float64
	HighHz float64
}

// DefaultBands splits the audible range the way the visualizer's meters do.
var DefaultBands = []FrequencyBand{
	{Name: "sub", LowHz: 20, HighHz: 60},
	{Name: "bass", LowHz: 60, HighHz: 250},
	{Name: "lowMid", LowHz: 250, HighHz: 500},
	{Name: "mid", LowHz: 500, HighHz: 2000},
	{Name: "highMid", LowHz: 2000, HighHz: 4000},
	{Name: "treble", LowHz: 4000, HighHz: math.Inf(1)},
}

// BandEnergy returns, for every window, the RMS magnitude of the bins whose
// centre frequency falls in [LowHz, HighHz) of each band. Bands that hold
// no bin report 0.
func (s *Spectrogram) BandEnergy(sampleRate float64, bands []FrequencyBand) [][]float64 {
	// Resolve bin → band once; every row shares the mapping.
	bandOf := make([]int, s.FreqBins)
	counts := make([]int, len(bands))
	for b := range bandOf {
		bandOf[b] = -1
		freq := s.FrequencyForBin(b, sampleRate)
		for i, band := range bands {
			if freq >= band.LowHz && freq < band.HighHz {
				bandOf[b] = i
				counts[i]++
				break
			}
		}
	}

	out := make([][]float64, s.NumWindows)
	for w := range out {
		energy := make([]float64, len(bands))
		for b, m := range s.Row(w) {
			if i := bandOf[b]; i >= 0 {
				energy[i] += float64(m) * float64(m)
			}
		}
		for i := range energy {
			if counts[i] > 0 {
				energy[i] = math.Sqrt(energy[i] / float64(counts[i]))
			}
		}
		out[w] = energy
	}
	return out
}
