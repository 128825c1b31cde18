package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hightide",
	Short: "Multi-Day Load Shape Simulation",
	Long: `
    ██╗  ██╗██╗ ██████╗ ██╗  ██╗████████╗██╗██████╗ ███████╗
    ██║  ██║██║██╔════╝ ██║  ██║╚══██╔══╝██║██╔══██╗██╔════╝
    ███████║██║██║  ███╗███████║   ██║   ██║██║  ██║█████╗
    ██╔══██║██║██║   ██║██╔══██║   ██║   ██║██║  ██║██╔══╝
    ██║  ██║██║╚██████╔╝██║  ██║   ██║   ██║██████╔╝███████╗
    ╚═╝  ╚═╝╚═╝ ╚═════╝ ╚═╝  ╚═╝   ╚═╝   ╚═╝╚═════╝ ╚══════╝

hightide drives a time-varying number of concurrent virtual users
against a target, following a load shape that plays out over multiple
virtual days: baseline traffic, daily growth, an intra-day wave and
peak-hour bursts.

Get started:
  hightide run         Run with a config file
  hightide preview     Render the shape curve without generating load
  hightide status      Check running instance status
  hightide logs        View live logs
  hightide stop        Stop running instance`,
	Version: fmt.Sprintf("%s (built %s)", version, buildTime),
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// SetVersion sets the version info
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}
