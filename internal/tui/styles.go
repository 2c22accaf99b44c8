// SPDX-License-Identifier: MIT

// Package tui holds the Bubble Tea programs: a device picker and a
// spectrogram viewer.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)
)

// heatPalette runs from silence (dark) to full scale (bright).
var heatPalette = []lipgloss.Color{
	"#000004", "#1B0C41", "#4A0C6B", "#781C6D",
	"#A52C60", "#CF4446", "#ED6925", "#FB9B06",
	"#F7D13D", "#FCFFA4",
}

// heatCells pre-renders one block per palette entry.
var heatCells = func() []string {
	cells := make([]string, len(heatPalette))
	for i, c := range heatPalette {
		cells[i] = lipgloss.NewStyle().Foreground(c).Render("█")
	}
	return cells
}()

// heatIndex maps a normalised value in [0, 1] to a palette index.
func heatIndex(v float32) int {
	i := int(v * float32(len(heatPalette)))
	return min(max(i, 0), len(heatPalette)-1)
}
