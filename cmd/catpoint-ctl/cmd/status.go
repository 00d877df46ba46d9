package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/catpoint/internal/service/client"
)

var (
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show alarm status, arming mode and sensors.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, func(ctx context.Context, backend client.Backend) error {
				return client.Status(ctx, backend, cmd.OutOrStdout())
			})
		},
	}

	armCmd = &cobra.Command{
		Use:       "arm <disarmed|armed_home|armed_away>",
		Short:     "Change the arming mode.",
		Long:      "Change the arming mode. Arming resets every sensor to inactive; disarming clears the alarm.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"disarmed", "armed_home", "armed_away"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, backend client.Backend) error {
				return client.Arm(ctx, backend, cmd.OutOrStdout(), args[0])
			})
		},
	}

	imageCmd = &cobra.Command{
		Use:   "image <file>",
		Short: "Submit a PNG, JPEG or GIF camera frame for cat detection.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, backend client.Backend) error {
				return client.SubmitImage(ctx, backend, cmd.OutOrStdout(), args[0])
			})
		},
	}
)
