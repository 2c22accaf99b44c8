// SPDX-License-Identifier: MIT

// Package utils holds the synthetic signals used by tests, benchmarks and
// the verify command.
package utils

import "math"

// GenerateComplexWave returns a 440 Hz tone with its second and third
// harmonics, peaking at 0.9 full scale.
func GenerateComplexWave(size int, sampleRate float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2 // 440Hz fundamental + harmonics
		buffer[i] = float32(signal * 0.9)
	}
	return buffer
}

func GenerateSineWave(size int, sampleRate, frequency float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = float32(math.Sin(2*math.Pi*frequency*t) * 0.9)
	}
	return buffer
}

// GenerateChirp sweeps linearly from f0 to f1 Hz over size samples.
func GenerateChirp(size int, sampleRate, f0, f1 float64) []float32 {
	buffer := make([]float32, size)
	duration := float64(size) / sampleRate
	k := (f1 - f0) / duration
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = float32(math.Sin(2*math.Pi*(f0*t+0.5*k*t*t)) * 0.9)
	}
	return buffer
}

// FindPeakBin returns the index of the largest magnitude in
// magnitudes[startBin:endBin+1]; out-of-range bounds are clamped.
func FindPeakBin(magnitudes []float32, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}

// BinForFrequency returns the nearest FFT bin for freq.
func BinForFrequency(freq, sampleRate float64, fftSize int) int {
	return int(math.Round(freq * float64(fftSize) / sampleRate))
}
