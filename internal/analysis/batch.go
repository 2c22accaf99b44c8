// SPDX-License-Identifier: MIT
package analysis

import "math"

// Decibel range used by the visualizer when mapping magnitudes to colour.
const (
	DefaultMinDB float32 = -120
	DefaultMaxDB float32 = 0
)

// Spectrogram is a window-major magnitude matrix with an explicit shape:
// len(Data) == NumWindows*FreqBins. Row w holds bins 0, FreqStride,
// 2·FreqStride, ... of analysis window w·TimeStride.
type Spectrogram struct {
	Data       []float32 `json:"data"`
	NumWindows int       `json:"numWindows"`
	FreqBins   int       `json:"freqBins"`
	FFTSize    int       `json:"fftSize"`
	HopSize    int       `json:"hopSize"`
	TimeStride int       `json:"timeStride"`
	FreqStride int       `json:"freqStride"`
}

// Row returns the magnitudes of window w. The slice aliases Data.
func (s *Spectrogram) Row(w int) []float32 {
	return s.Data[w*s.FreqBins : (w+1)*s.FreqBins]
}

// At returns the magnitude of bin b in window w.
func (s *Spectrogram) At(w, b int) float32 {
	return s.Data[w*s.FreqBins+b]
}

// Rows reshapes Data into NumWindows slices that alias it.
func (s *Spectrogram) Rows() [][]float32 {
	rows := make([][]float32, s.NumWindows)
	for w := range rows {
		rows[w] = s.Row(w)
	}
	return rows
}

// FrequencyForBin returns the centre frequency (Hz) of reduced bin b.
func (s *Spectrogram) FrequencyForBin(b int, sampleRate float64) float64 {
	if s.FFTSize == 0 {
		return 0
	}
	return float64(b*max(s.FreqStride, 1)) * sampleRate / float64(s.FFTSize)
}

// TimeForWindow returns the start time (seconds) of reduced window w.
func (s *Spectrogram) TimeForWindow(w int, sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(w*max(s.TimeStride, 1)*s.HopSize) / sampleRate
}

// withData returns a shallow copy of s carrying data.
func (s *Spectrogram) withData(data []float32) *Spectrogram {
	out := *s
	out.Data = data
	return &out
}

// ToDecibels returns a copy with every magnitude m mapped to 20·log10(m);
// non-positive magnitudes map to DefaultMinDB.
func (s *Spectrogram) ToDecibels() *Spectrogram {
	data := make([]float32, len(s.Data))
	for i, m := range s.Data {
		data[i] = Decibels(m)
	}
	return s.withData(data)
}

// Normalize returns a copy with decibel values mapped linearly from
// [minDB, maxDB] to [0, 1] and clamped.
func (s *Spectrogram) Normalize(minDB, maxDB float32) *Spectrogram {
	data := make([]float32, len(s.Data))
	span := maxDB - minDB
	for i, db := range s.Data {
		v := (db - minDB) / span
		data[i] = min(max(v, 0), 1)
	}
	return s.withData(data)
}

// Decibels converts one magnitude to dB with a DefaultMinDB floor.
func Decibels(m float32) float32 {
	if m <= 0 {
		return DefaultMinDB
	}
	return max(20*float32(math.Log10(float64(m))), DefaultMinDB)
}
