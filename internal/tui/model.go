package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hightide/internal/daemon"
)

// StatusFunc supplies the current run status to the dashboard.
type StatusFunc func() daemon.Status

// tickMsg drives the 1s refresh.
type tickMsg time.Time

// Model is the live run dashboard.
type Model struct {
	statusFn StatusFunc
	status   daemon.Status
	spark    Sparkline
	spin     spinner.Model
	width    int
	quitting bool
}

// NewModel creates a dashboard polling statusFn.
func NewModel(statusFn StatusFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(Teal)

	return Model{
		statusFn: statusFn,
		spark:    NewSparkline(48, ProgressBarStyle),
		spin:     sp,
		width:    80,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		m.status = m.statusFn()
		m.spark.Add(m.status.TargetUsers)
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.status

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		MiniLogo(), "  ", TitleStyle.Render(" LIVE "),
	)

	var state string
	switch {
	case s.Done:
		state = SuccessStyle.Render(CheckMark + " run complete")
	case s.Begun:
		state = InfoStyle.Render(m.spin.View() + " running")
	default:
		state = WarningStyle.Render("waiting for begin")
	}

	dayIcon := SunMark
	if s.VirtualHour < 6 || s.VirtualHour >= 21 {
		dayIcon = MoonMark
	}
	peak := ""
	if s.PeakHour {
		peak = WarningStyle.Render("  " + ArrowUp + " peak hour")
	}

	clock := fmt.Sprintf("%s  %s  day %d%s",
		DimStyle.Render(dayIcon),
		ValueStyle.Render(s.VirtualTime),
		s.VirtualDay,
		peak,
	)

	ratio := 0.0
	if s.TargetUsers > 0 {
		ratio = float64(s.ActiveUsers) / float64(s.TargetUsers)
	}
	users := fmt.Sprintf("%s %s / %d  %s",
		LabelStyle.Render("users"),
		ValueStyle.Render(fmt.Sprintf("%d", s.ActiveUsers)),
		s.TargetUsers,
		ProgressBar(ratio, 24),
	)

	stats := fmt.Sprintf("%s %s   %s %s   %s %s",
		LabelStyle.Render("requests"),
		ValueStyle.Render(fmt.Sprintf("%d", s.Requests)),
		LabelStyle.Render("errors"),
		ErrorStyle.Render(fmt.Sprintf("%d", s.Errors)),
		LabelStyle.Render("p95"),
		ValueStyle.Render(fmt.Sprintf("%.1fms", s.P95Latency)),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		state,
		"",
		SubtitleStyle.Render("Virtual clock"),
		"  "+clock,
		"",
		SubtitleStyle.Render("Load"),
		"  "+users,
		"  "+m.spark.View(),
		"",
		SubtitleStyle.Render("Requests"),
		"  "+stats,
	)

	box := BorderStyle.Width(min(m.width-2, 64)).Render(content)

	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		header,
		box,
		HelpStyle.Render("  q: quit view (run keeps going)"),
		"",
	)
}
