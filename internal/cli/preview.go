package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/hightide/internal/config"
	"github.com/hightide/internal/daemon"
	"github.com/hightide/internal/tui"
	"github.com/spf13/cobra"
)

var (
	previewConfig string
	previewEvery  time.Duration
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the load shape without generating any load",
	Long: `Evaluate the configured load shape across the whole run duration and
print the resulting user-count curve. No requests are sent; this is a dry
run of the exact formula the controller will follow.

Example:
  hightide preview --config hightide.yaml
  hightide preview --config hightide.yaml --every 30m`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewConfig, "config", "c", "hightide.yaml", "Path to configuration file")
	previewCmd.Flags().DurationVar(&previewEvery, "every", time.Hour, "Sampling interval for the curve")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(previewConfig)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if previewEvery <= 0 {
		return fmt.Errorf("--every must be positive")
	}

	shp, err := daemon.BuildShape(cfg.Shape)
	if err != nil {
		return err
	}

	type sample struct {
		elapsed time.Duration
		users   int
	}

	var samples []sample
	maxUsers := 0
	for elapsed := time.Duration(0); ; elapsed += previewEvery {
		step, ok := shp.Evaluate(elapsed)
		if !ok {
			break
		}
		samples = append(samples, sample{elapsed, step.Users})
		if step.Users > maxUsers {
			maxUsers = step.Users
		}
		if elapsed >= cfg.Shape.RunDuration.Std() {
			break
		}
	}

	fmt.Println()
	fmt.Println(tui.MiniLogo() + "  " + tui.TitleStyle.Render(" SHAPE PREVIEW "))
	fmt.Println()
	fmt.Printf("  %s %s   %s %s   %s %s\n",
		tui.LabelStyle.Render("reference"),
		tui.ValueStyle.Render(cfg.Shape.ReferenceTime.Format("2006-01-02 15:04")),
		tui.LabelStyle.Render("duration"),
		tui.ValueStyle.Render(cfg.Shape.RunDuration.String()),
		tui.LabelStyle.Render("samples"),
		tui.ValueStyle.Render(fmt.Sprintf("%d", len(samples))),
	)
	fmt.Println()

	const barWidth = 40
	for _, s := range samples {
		vt := cfg.Shape.ReferenceTime.Add(s.elapsed)

		width := 0
		if maxUsers > 0 {
			width = s.users * barWidth / maxUsers
		}
		bar := tui.ProgressBarStyle.Render(strings.Repeat("█", width))

		marker := " "
		if p, ok := shp.(interface{ IsPeakHour(int) bool }); ok && p.IsPeakHour(vt.Hour()) {
			marker = tui.WarningStyle.Render(tui.ArrowUp)
		}

		fmt.Printf("  %s %s %s %4d %s\n",
			tui.DimStyle.Render(fmt.Sprintf("%7s", s.elapsed)),
			tui.LabelStyle.Render(vt.Format("Mon 15:04")),
			marker,
			s.users,
			bar,
		)
	}

	fmt.Println()
	fmt.Printf("  %s peak %d users, then done after %s\n",
		tui.DimStyle.Render(tui.WaveMark),
		maxUsers,
		cfg.Shape.RunDuration,
	)
	fmt.Println()

	return nil
}
