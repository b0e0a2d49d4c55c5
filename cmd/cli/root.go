package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "volunteer",
		Short:         "Track volunteer activities and hours",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newLoginCmd(),
		newSignupCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newActivitiesCmd(),
		newJoinCmd(),
		newLeaveCmd(),
		newMineCmd(),
		newHoursCmd(),
		newPaymentsCmd(),
	)
	return cmd
}
