package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestSparklineSlidesWindow(t *testing.T) {
	s := NewSparkline(3, lipgloss.NewStyle())

	for _, v := range []int{1, 2, 3, 4, 5} {
		s.Add(v)
	}
	assert.Equal(t, []int{3, 4, 5}, s.Data)
}

func TestSparklineClampsNegative(t *testing.T) {
	s := NewSparkline(4, lipgloss.NewStyle())
	s.Add(-7)
	assert.Equal(t, []int{0}, s.Data)
}

func TestSparklineView(t *testing.T) {
	s := NewSparkline(4, lipgloss.NewStyle())

	// An empty window renders as blanks at full width.
	assert.Equal(t, "    ", s.View())

	s.Add(0)
	s.Add(8)
	out := s.View()
	assert.Contains(t, out, "█")
	assert.Equal(t, 4, len([]rune(out)))

	// All-zero data stays blank rather than dividing by a zero max.
	z := NewSparkline(2, lipgloss.NewStyle())
	z.Add(0)
	z.Add(0)
	assert.Equal(t, "  ", z.View())
}

func TestProgressBar(t *testing.T) {
	empty := ProgressBar(0, 10)
	full := ProgressBar(1, 10)
	over := ProgressBar(1.7, 10)

	assert.NotContains(t, empty, "█")
	assert.NotContains(t, full, "░")
	assert.Equal(t, full, over)

	half := ProgressBar(0.5, 10)
	assert.Contains(t, half, "█")
	assert.Contains(t, half, "░")
}
