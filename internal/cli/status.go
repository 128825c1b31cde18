package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hightide/internal/daemon"
	"github.com/hightide/internal/tui"
	"github.com/spf13/cobra"
)

var (
	statusJSON  bool
	statusWatch bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show hightide status",
	Long: `Display the current status of the hightide daemon.

Examples:
  hightide status          Show current status
  hightide status -w       Watch status (refresh every second)
  hightide status --json   Output as JSON`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Watch mode (refresh every second)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if statusWatch {
		return watchStatus()
	}
	return showStatus()
}

func fetchStatus() (daemon.Status, error) {
	resp, err := daemon.SendCommand(daemon.Command{Type: "status"})
	if err != nil {
		return daemon.Status{}, err
	}

	data, _ := json.Marshal(resp.Data)
	var status daemon.Status
	json.Unmarshal(data, &status)
	return status, nil
}

func showStatus() error {
	status, err := fetchStatus()
	if err != nil {
		fmt.Println()
		fmt.Println(tui.ErrorStyle.Render("  " + tui.CrossMark + " hightide is not running"))
		fmt.Println()
		fmt.Println(tui.DimStyle.Render("  Start with: hightide run"))
		fmt.Println()
		return nil
	}

	if statusJSON {
		output, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	printStatus(status)
	return nil
}

func watchStatus() error {
	// Clear screen
	fmt.Print("\033[H\033[2J")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		// Move cursor to top
		fmt.Print("\033[H")

		status, err := fetchStatus()
		if err != nil {
			fmt.Println(tui.ErrorStyle.Render("Connection lost. Daemon may have stopped."))
			return nil
		}

		printStatus(status)
		fmt.Println()
		fmt.Println(tui.DimStyle.Render("Press Ctrl+C to exit watch mode"))

		<-ticker.C
	}
}

func printStatus(status daemon.Status) {
	fmt.Println()

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		tui.MiniLogo(),
		"  ",
		tui.TitleStyle.Render(" STATUS "),
	)
	fmt.Println(header)
	fmt.Println()

	var statusIcon, statusText string
	switch {
	case status.Done:
		statusIcon = tui.SuccessStyle.Render(tui.CheckMark)
		statusText = tui.SuccessStyle.Render("RUN COMPLETE")
	case status.Begun:
		statusIcon = tui.SuccessStyle.Render(tui.WaveMark)
		statusText = tui.SuccessStyle.Render("RUNNING")
	case status.Running:
		statusIcon = tui.WarningStyle.Render(tui.BulletPoint)
		statusText = tui.WarningStyle.Render("WAITING (use 'hightide begin')")
	default:
		statusIcon = tui.ErrorStyle.Render(tui.CrossMark)
		statusText = tui.ErrorStyle.Render("STOPPED")
	}

	fmt.Printf("  %s %s\n", statusIcon, statusText)
	fmt.Println()

	var content strings.Builder

	content.WriteString(tui.SubtitleStyle.Render("Virtual clock"))
	content.WriteString("\n")
	if status.VirtualTime != "" {
		peak := ""
		if status.PeakHour {
			peak = tui.WarningStyle.Render("  " + tui.ArrowUp + " peak hour")
		}
		content.WriteString(fmt.Sprintf("  %s  day %d%s\n",
			tui.ValueStyle.Render(status.VirtualTime), status.VirtualDay, peak))
	} else {
		content.WriteString(tui.DimStyle.Render("  not started\n"))
	}
	content.WriteString("\n")

	content.WriteString(tui.SubtitleStyle.Render("Users"))
	content.WriteString("\n")
	ratio := 0.0
	if status.TargetUsers > 0 {
		ratio = float64(status.ActiveUsers) / float64(status.TargetUsers)
	}
	content.WriteString(fmt.Sprintf("  %s / %d  %s\n",
		tui.ValueStyle.Render(fmt.Sprintf("%d", status.ActiveUsers)),
		status.TargetUsers,
		tui.ProgressBar(ratio, 24),
	))
	content.WriteString("\n")

	content.WriteString(tui.SubtitleStyle.Render("Requests"))
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("  Total:   %s\n", tui.ValueStyle.Render(fmt.Sprintf("%d", status.Requests))))
	content.WriteString(fmt.Sprintf("  Errors:  %s\n", tui.ErrorStyle.Render(fmt.Sprintf("%d", status.Errors))))
	content.WriteString(fmt.Sprintf("  Mean:    %s\n", tui.ValueStyle.Render(fmt.Sprintf("%.1fms", status.MeanLatency))))
	content.WriteString(fmt.Sprintf("  P95:     %s\n", tui.ValueStyle.Render(fmt.Sprintf("%.1fms", status.P95Latency))))
	content.WriteString("\n")

	content.WriteString(tui.SubtitleStyle.Render("Target"))
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("  %s %s\n", tui.LabelStyle.Render(status.Protocol), tui.DimStyle.Render(status.Host)))
	content.WriteString("\n")

	content.WriteString(tui.SubtitleStyle.Render("Uptime"))
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("  %s\n", tui.ValueStyle.Render(status.Uptime)))

	box := tui.BorderStyle.Width(50).Render(content.String())
	fmt.Println(box)
}

// Begin command
var beginCmd = &cobra.Command{
	Use:   "begin",
	Short: "Begin the load run",
	Long:  `Start the run: the virtual clock begins at the reference time and users ramp in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := daemon.SendCommand(daemon.Command{Type: "begin"})
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		if resp.Success {
			fmt.Println()
			fmt.Println(tui.SuccessStyle.Render("  " + tui.WaveMark + " Run begun, users ramping in..."))
			fmt.Println()
		} else {
			fmt.Println(tui.ErrorStyle.Render("  " + resp.Message))
		}

		return nil
	},
}

// Pause command
var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the run",
	Long:  `Stop all users without stopping the daemon. Virtual time keeps advancing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := daemon.SendCommand(daemon.Command{Type: "pause"})
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		if resp.Success {
			fmt.Println()
			fmt.Println(tui.WarningStyle.Render("  " + tui.BulletPoint + " Run paused"))
			fmt.Println()
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(beginCmd)
	rootCmd.AddCommand(pauseCmd)
}
