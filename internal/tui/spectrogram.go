// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"spektra/internal/analysis"
)

const (
	maxStride = 64
	// chromeLines is the number of lines View spends outside the heatmap.
	chromeLines = 6
)

type spectrogramKeyMap struct {
	TimeUp   key.Binding
	TimeDown key.Binding
	FreqUp   key.Binding
	FreqDown key.Binding
	Left     key.Binding
	Right    key.Binding
	Floor    key.Binding
	Ceil     key.Binding
	Quit     key.Binding
}

func (k spectrogramKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.TimeUp, k.TimeDown, k.FreqUp, k.FreqDown, k.Left, k.Right, k.Quit}
}

func (k spectrogramKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Floor, k.Ceil}}
}

var spectrogramKeys = spectrogramKeyMap{
	TimeUp:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t/T", "time stride ±")),
	TimeDown: key.NewBinding(key.WithKeys("T")),
	FreqUp:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f/F", "freq stride ±")),
	FreqDown: key.NewBinding(key.WithKeys("F")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "scroll")),
	Right:    key.NewBinding(key.WithKeys("right", "l")),
	Floor:    key.NewBinding(key.WithKeys("[", "]"), key.WithHelp("[/]", "dB floor ±10")),
	Ceil:     key.NewBinding(key.WithKeys("{", "}"), key.WithHelp("{/}", "dB ceiling ±10")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// SpectrogramModel renders a clip as a scrolling heatmap: time runs left to
// right, frequency bottom to top. Strides are adjustable at runtime, which
// recomputes the batch at the new level of detail.
type SpectrogramModel struct {
	proc       analysis.SpectrogramComputer
	samples    []float32
	sampleRate float64
	overlap    float32
	title      string

	strides      analysis.Strides
	minDB, maxDB float32

	spec   *analysis.Spectrogram // normalised to [0, 1]
	err    error
	offset int

	width, height int
	ready         bool

	keys spectrogramKeyMap
	help help.Model
}

// SpectrogramOptions configures the viewer.
type SpectrogramOptions struct {
	Title      string
	SampleRate float64
	Overlap    float32
	Strides    analysis.Strides
	MinDB      float32
	MaxDB      float32
}

// NewSpectrogramModel computes the initial batch for samples.
func NewSpectrogramModel(proc analysis.SpectrogramComputer, samples []float32, opts SpectrogramOptions) SpectrogramModel {
	m := SpectrogramModel{
		proc:       proc,
		samples:    samples,
		sampleRate: opts.SampleRate,
		overlap:    opts.Overlap,
		title:      opts.Title,
		strides:    analysis.Strides{Time: max(opts.Strides.Time, 1), Freq: max(opts.Strides.Freq, 1)},
		minDB:      opts.MinDB,
		maxDB:      opts.MaxDB,
		keys:       spectrogramKeys,
		help:       help.New(),
	}
	if m.minDB >= m.maxDB {
		m.minDB, m.maxDB = analysis.DefaultMinDB, analysis.DefaultMaxDB
	}
	m.recompute()
	return m
}

// recompute runs the processor at the current strides.
func (m *SpectrogramModel) recompute() {
	spec, err := m.proc.ProcessWindowsWith(m.samples, m.overlap, m.strides)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.spec = spec.ToDecibels().Normalize(m.minDB, m.maxDB)
	m.offset = min(m.offset, max(m.spec.NumWindows-1, 0))
}

// Strides returns the strides currently displayed.
func (m SpectrogramModel) Strides() analysis.Strides {
	return m.strides
}

// Spectrogram returns the normalised batch currently displayed.
func (m SpectrogramModel) Spectrogram() *analysis.Spectrogram {
	return m.spec
}

func (m SpectrogramModel) Init() tea.Cmd {
	return nil
}

func (m SpectrogramModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.TimeUp):
			m.setStrides(m.strides.Time*2, m.strides.Freq)
		case key.Matches(msg, m.keys.TimeDown):
			m.setStrides(m.strides.Time/2, m.strides.Freq)
		case key.Matches(msg, m.keys.FreqUp):
			m.setStrides(m.strides.Time, m.strides.Freq*2)
		case key.Matches(msg, m.keys.FreqDown):
			m.setStrides(m.strides.Time, m.strides.Freq/2)
		case key.Matches(msg, m.keys.Left):
			m.offset = max(m.offset-m.pageWidth()/2, 0)
		case key.Matches(msg, m.keys.Right):
			if m.spec != nil {
				m.offset = min(m.offset+m.pageWidth()/2, max(m.spec.NumWindows-m.pageWidth(), 0))
			}
		case key.Matches(msg, m.keys.Floor):
			m.adjustRange(msg.String(), 0)
		case key.Matches(msg, m.keys.Ceil):
			m.adjustRange(msg.String(), 1)
		}
	}
	return m, nil
}

func (m *SpectrogramModel) setStrides(timeStride, freqStride int) {
	timeStride = min(max(timeStride, 1), maxStride)
	freqStride = min(max(freqStride, 1), maxStride)
	if timeStride == m.strides.Time && freqStride == m.strides.Freq {
		return
	}
	m.strides = analysis.Strides{Time: timeStride, Freq: freqStride}
	m.recompute()
}

// adjustRange moves the dB floor (which == 0) or ceiling (which == 1).
func (m *SpectrogramModel) adjustRange(k string, which int) {
	step := float32(10)
	if k == "[" || k == "{" {
		step = -step
	}
	lo, hi := m.minDB, m.maxDB
	if which == 0 {
		lo += step
	} else {
		hi += step
	}
	if lo >= hi {
		return
	}
	m.minDB, m.maxDB = lo, hi
	m.recompute()
}

// pageWidth is the number of windows that fit on screen.
func (m SpectrogramModel) pageWidth() int {
	return max(m.width, 1)
}

func (m SpectrogramModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n")

	if m.err != nil {
		sb.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		sb.WriteString("\n\n")
		sb.WriteString(m.help.View(m.keys))
		return sb.String()
	}

	sb.WriteString(infoStyle.Render(m.status()))
	sb.WriteString("\n\n")
	sb.WriteString(m.renderHeatmap(m.width, max(m.height-chromeLines, 1)))
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m SpectrogramModel) status() string {
	s := m.spec
	top := 0.0
	if s.FreqBins > 0 {
		top = s.FrequencyForBin(s.FreqBins-1, m.sampleRate)
	}
	return fmt.Sprintf("%d windows × %d bins • stride t=%d f=%d • %.0f..%.0f dB • %.2fs @ %.2fs • top %.0f Hz",
		s.NumWindows, s.FreqBins, m.strides.Time, m.strides.Freq, m.minDB, m.maxDB,
		s.TimeForWindow(m.offset, m.sampleRate), s.TimeForWindow(1, m.sampleRate), top)
}

// renderHeatmap draws width columns starting at the scroll offset. Each
// screen row covers a band of bins and shows its loudest value.
func (m SpectrogramModel) renderHeatmap(width, height int) string {
	s := m.spec
	if s == nil || s.NumWindows == 0 || s.FreqBins == 0 {
		return "Not enough samples for a single window."
	}

	cols := min(width, s.NumWindows-m.offset)
	rows := min(height, s.FreqBins)
	binsPerRow := (s.FreqBins + rows - 1) / rows

	var sb strings.Builder
	for r := rows - 1; r >= 0; r-- {
		lo := r * binsPerRow
		hi := min(lo+binsPerRow, s.FreqBins)
		for c := range cols {
			row := s.Row(m.offset + c)
			var v float32
			for b := lo; b < hi; b++ {
				v = max(v, row[b])
			}
			sb.WriteString(heatCells[heatIndex(v)])
		}
		if r > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// StartSpectrogramUI runs the viewer until the user quits.
func StartSpectrogramUI(m SpectrogramModel) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
