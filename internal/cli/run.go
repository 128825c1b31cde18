package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hightide/internal/config"
	"github.com/hightide/internal/daemon"
	"github.com/hightide/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	configPath string
	autoBegin  bool
	liveView   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run hightide with a config file",
	Long: `Run hightide using a YAML configuration file. The run begins at the
configured virtual reference time and lasts for the configured duration.

Example:
  hightide run --config hightide.yaml --begin
  hightide run --config hightide.yaml --begin --live`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "hightide.yaml", "Path to configuration file")
	runCmd.Flags().BoolVarP(&autoBegin, "begin", "b", false, "Begin the run immediately")
	runCmd.Flags().BoolVarP(&liveView, "live", "l", false, "Show the live dashboard (requires a terminal)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if daemon.IsRunning() {
		fmt.Println()
		fmt.Println(tui.WarningStyle.Render("  " + tui.WarningSign + " hightide is already running"))
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("%s starting (config: %s)\n", tui.MiniLogo(), configPath)
	fmt.Printf("  Host:           %s\n", cfg.Scenario.Host)
	fmt.Printf("  Reference time: %s\n", cfg.Shape.ReferenceTime.Format("2006-01-02 15:04"))
	fmt.Printf("  Run duration:   %s\n", cfg.Shape.RunDuration)
	if cfg.Shape.Script != "" {
		fmt.Printf("  Shape script:   %s\n", cfg.Shape.Script)
	}
	fmt.Println()

	d, err := daemon.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if err := d.Start(); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	if autoBegin {
		fmt.Println(tui.InfoStyle.Render("  " + tui.WaveMark + " Beginning run..."))
		d.Begin()
	} else {
		fmt.Println(tui.DimStyle.Render("  Waiting... use 'hightide begin' to start the run"))
	}

	if liveView {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Println(tui.WarningStyle.Render("  --live needs a terminal, continuing headless"))
		} else {
			p := tea.NewProgram(tui.NewModel(d.GetStatus))
			if _, err := p.Run(); err != nil {
				fmt.Println(tui.ErrorStyle.Render("  live view error: " + err.Error()))
			}
			// Fall through to headless wait after the view exits.
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	fmt.Println("\n  Shutting down...")
	d.Stop()

	return nil
}
