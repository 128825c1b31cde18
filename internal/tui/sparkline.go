package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var sparkLevels = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// Sparkline is a sliding-window single-line chart of recent values.
type Sparkline struct {
	Data  []int
	Width int
	Style lipgloss.Style
}

// NewSparkline creates a sparkline with the given window width.
func NewSparkline(width int, style lipgloss.Style) Sparkline {
	return Sparkline{
		Width: width,
		Style: style,
		Data:  make([]int, 0, width),
	}
}

// Add appends a value, sliding the window if full.
func (s *Sparkline) Add(val int) {
	if val < 0 {
		val = 0
	}
	s.Data = append(s.Data, val)
	if len(s.Data) > s.Width {
		s.Data = s.Data[len(s.Data)-s.Width:]
	}
}

// View renders the sparkline scaled to the window max.
func (s Sparkline) View() string {
	if s.Width <= 0 {
		return ""
	}

	max := 0
	for _, v := range s.Data {
		if v > max {
			max = v
		}
	}

	var graph strings.Builder
	for _, v := range s.Data {
		if max == 0 {
			graph.WriteString(sparkLevels[0])
			continue
		}
		idx := v * (len(sparkLevels) - 1) / max
		graph.WriteString(sparkLevels[idx])
	}

	if pad := s.Width - len(s.Data); pad > 0 {
		graph.WriteString(strings.Repeat(" ", pad))
	}

	return s.Style.Render(graph.String())
}
