package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// hightide Sea Green Theme
var (
	// Primary colors - ocean palette
	SeaGreen   = lipgloss.Color("#2E8B57")
	Aquamarine = lipgloss.Color("#7FFFD4")
	Teal       = lipgloss.Color("#20B2AA")
	DeepTeal   = lipgloss.Color("#00758F")
	FoamAccent = lipgloss.Color("#AFEEEE")

	// Neutral colors
	White     = lipgloss.Color("#FFFFFF")
	LightGray = lipgloss.Color("#B0B0B0")
	DarkGray  = lipgloss.Color("#404040")
	Ink       = lipgloss.Color("#10212B")

	// Status colors
	Success = lipgloss.Color("#00FF88")
	Warning = lipgloss.Color("#FFD700")
	Error   = lipgloss.Color("#FF6B6B")
	Info    = lipgloss.Color("#7FFFD4")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(DeepTeal).
			Bold(true).
			Padding(0, 2)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Aquamarine).
			Bold(true)

	LogoStyle = lipgloss.NewStyle().
			Foreground(Teal).
			Bold(true)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SeaGreen).
			Padding(1, 2)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Aquamarine)

	ValueStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Info)

	DimStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(FoamAccent).
			Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(DarkGray).
			Padding(0, 1)

	ProgressBarStyle = lipgloss.NewStyle().
				Foreground(Teal)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(DarkGray)

	HelpStyle = lipgloss.NewStyle().
			Foreground(LightGray)
)

// Logo returns the hightide ASCII art logo.
func Logo() string {
	logo := `
    ██╗  ██╗██╗ ██████╗ ██╗  ██╗████████╗██╗██████╗ ███████╗
    ██║  ██║██║██╔════╝ ██║  ██║╚══██╔══╝██║██╔══██╗██╔════╝
    ███████║██║██║  ███╗███████║   ██║   ██║██║  ██║█████╗
    ██╔══██║██║██║   ██║██╔══██║   ██║   ██║██║  ██║██╔══╝
    ██║  ██║██║╚██████╔╝██║  ██║   ██║   ██║██████╔╝███████╗
    ╚═╝  ╚═╝╚═╝ ╚═════╝ ╚═╝  ╚═╝   ╚═╝   ╚═╝╚═════╝ ╚══════╝`

	wave := `
    ≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈`

	return LogoStyle.Render(logo) + "\n" + DimStyle.Render(wave)
}

// MiniLogo returns a smaller logo.
func MiniLogo() string {
	return LogoStyle.Render("≈ hightide")
}

// Tagline returns the project tagline.
func Tagline() string {
	return DimStyle.Render("Multi-Day Load Shape Simulation")
}

// Divider returns a horizontal divider.
func Divider(width int) string {
	return DimStyle.Render(strings.Repeat("─", width))
}

// ProgressBar renders a progress bar.
func ProgressBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	filled := int(float64(width) * percent)

	return ProgressBarStyle.Render(strings.Repeat("█", filled)) +
		ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// Symbols
const (
	BulletPoint = "●"
	ArrowRight  = "→"
	ArrowUp     = "↑"
	ArrowDown   = "↓"
	CheckMark   = "✓"
	CrossMark   = "✗"
	WarningSign = "⚠"
	WaveMark    = "≈"
	SunMark     = "☀"
	MoonMark    = "☾"
)
