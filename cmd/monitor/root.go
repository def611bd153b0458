package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/console-monitor/monitor"
)

const Version = "0.1.0"

var (
	// rootCmd runs the default scenario when called without a subcommand.
	rootCmd = &cobra.Command{
		Use:   "console-monitor",
		Short: "Demonstrate deterministic release versus runtime cleanup",
		Long: fmt.Sprintf(`console-monitor (v%s)

Constructs a monitor that owns a console handle and a component, writes
through it, and releases it. Configuration can be set with flags or with
environment variables of the form CONSOLE_MONITOR_<FLAG>
(e.g. CONSOLE_MONITOR_LOG_LEVEL=debug).`, Version),
		SilenceUsage:      true,
		PersistentPreRunE: processConfig,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.Metrics {
				monitor.WriteMetrics(cmd.OutOrStdout())
			}
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "console-monitor v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Without a subcommand the Close scenario runs.
	rootCmd.RunE = runCmd.RunE

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(versionCmd)

	setupFlags(rootCmd)
}

// Execute runs the root command and exits with status 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
