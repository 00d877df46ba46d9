package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/catpoint/internal/config"
	"github.com/oshokin/catpoint/internal/service/client"
	"github.com/oshokin/catpoint/internal/version"
)

var (
	// options are shared by every subcommand.
	options client.Options

	// rootCmd represents the base command for operating the security server.
	rootCmd = &cobra.Command{
		Use:   "catpoint-ctl",
		Short: "Operate a catpoint security server.",
		Long: `Command line client for the catpoint security server.

Arm or disarm the system, manage sensors, flip their activation and submit camera
frames. Sensors can be referenced by id or, when unique, by name.`,
		SilenceUsage: true,
	}
)

// Execute runs the catpoint-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withBackend connects to the server, runs fn and closes the connection.
func withBackend(cmd *cobra.Command, fn func(ctx context.Context, backend client.Backend) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	c, err := client.Connect(ctx, &options)
	if err != nil {
		return err
	}

	defer func() {
		_ = c.Close()
	}()

	return fn(ctx, c)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&options.ServerAddress, "server", "s", "", "server address (overrides server_addr)")

	rootCmd.AddCommand(statusCmd, armCmd, sensorCmd, imageCmd)
}
