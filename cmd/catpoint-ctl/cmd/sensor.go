package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/catpoint/internal/service/client"
)

var (
	sensorCmd = &cobra.Command{
		Use:   "sensor",
		Short: "Manage sensors.",
	}

	sensorAddCmd = &cobra.Command{
		Use:   "add <name> <door|window|motion>",
		Short: "Register a new inactive sensor and print its id.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, backend client.Backend) error {
				return client.AddSensor(ctx, backend, cmd.OutOrStdout(), args[0], args[1])
			})
		},
	}

	sensorRemoveCmd = &cobra.Command{
		Use:     "remove <id|name>",
		Aliases: []string{"rm"},
		Short:   "Remove a sensor.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, backend client.Backend) error {
				return client.RemoveSensor(ctx, backend, args[0])
			})
		},
	}

	sensorListCmd = &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sensors.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, func(ctx context.Context, backend client.Backend) error {
				return client.ListSensors(ctx, backend, cmd.OutOrStdout())
			})
		},
	}

	sensorActivateCmd = activationCommand("activate", "Mark a sensor as triggered.", true)

	sensorDeactivateCmd = activationCommand("deactivate", "Mark a sensor as idle.", false)
)

func activationCommand(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id|name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, backend client.Backend) error {
				return client.SetSensorActive(ctx, backend, cmd.OutOrStdout(), args[0], active)
			})
		},
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	sensorCmd.AddCommand(sensorAddCmd, sensorRemoveCmd, sensorListCmd, sensorActivateCmd, sensorDeactivateCmd)
}
