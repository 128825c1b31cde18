package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hightide/internal/daemon"
	"github.com/hightide/internal/tui"
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the hightide daemon",
	Long: `Stop the running hightide daemon gracefully.
This drains in-flight user iterations before shutting down.`,
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	// Ask the daemon to stop over the socket first; fall back to SIGTERM.
	if resp, err := daemon.SendCommand(daemon.Command{Type: "stop"}); err == nil && resp.Success {
		waitForPidRemoval()
		fmt.Println()
		fmt.Println(tui.SuccessStyle.Render("  " + tui.CheckMark + " hightide stopped"))
		fmt.Println()
		return nil
	}

	pidPath := daemon.GetPidPath()

	pidData, err := os.ReadFile(pidPath)
	if err != nil {
		fmt.Println()
		fmt.Println(tui.WarningStyle.Render("  hightide is not running"))
		fmt.Println()
		return nil
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil {
		fmt.Println()
		fmt.Println(tui.ErrorStyle.Render("  Invalid PID file"))
		fmt.Println()
		return nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		fmt.Println()
		fmt.Println(tui.WarningStyle.Render("  hightide is not running"))
		fmt.Println()
		os.Remove(pidPath)
		return nil
	}

	fmt.Println()
	fmt.Println(tui.InfoStyle.Render("  Stopping hightide (PID: " + strconv.Itoa(pid) + ")..."))

	if err := process.Signal(syscall.SIGTERM); err != nil {
		os.Remove(pidPath)
		fmt.Println(tui.SuccessStyle.Render("  " + tui.CheckMark + " hightide stopped (was already finished)"))
		fmt.Println()
		return nil
	}

	waitForPidRemoval()

	fmt.Println(tui.SuccessStyle.Render("  " + tui.CheckMark + " hightide stopped"))
	fmt.Println()

	return nil
}

// waitForPidRemoval waits up to 5 seconds for the daemon to clean up.
func waitForPidRemoval() {
	pidPath := daemon.GetPidPath()
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		if _, err := os.Stat(pidPath); os.IsNotExist(err) {
			return
		}
	}
}
