package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/catpoint/internal/config"
	"github.com/oshokin/catpoint/internal/service/watcher"
	"github.com/oshokin/catpoint/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// interval overrides watcher.interval.
	interval time.Duration
	// dryRun controls whether to skip the on-alarm hook.
	dryRun bool

	// rootCmd represents the base command for polling security status.
	rootCmd = &cobra.Command{
		Use:   "catpoint-watcher [server-address]",
		Short: "Watch the security status and react when the alarm rings.",
		Long: `Background service that polls the security server and starts the watcher.on_alarm
command every time the alarm status changes to ALARM.

The hook receives CATPOINT_ALARM_STATUS, CATPOINT_ARMING_STATUS, CATPOINT_CAT_DETECTED
and CATPOINT_ACTIVE_SENSORS in its environment.
Server address can be provided as argument or loaded from configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var serverAddress string
			if len(args) > 0 {
				serverAddress = args[0]
			}

			return watcher.Run(ctx, &watcher.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				PollInterval:  interval,
				DryRun:        dryRun,
			})
		},
	}
)

// Execute runs the catpoint-watcher CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", 0, "poll interval (overrides watcher.interval)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log alarms without starting the hook")
}
