package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"example.com/volunteer/internal/domain"
)

func newActivitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Browse and manage the activity catalog",
	}
	cmd.AddCommand(newActivitiesListCmd(), newActivitiesAddCmd(), newActivitiesRemoveCmd())
	return cmd
}

func newActivitiesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			snap := a.service.Snapshot()
			if len(snap.Catalog) == 0 {
				fmt.Println("No activities available")
				return nil
			}
			joined := make(map[string]struct{}, len(snap.Mine))
			for _, act := range snap.Mine {
				joined[act.ID] = struct{}{}
			}
			for _, act := range snap.Catalog {
				marker := " "
				if _, ok := joined[act.ID]; ok {
					marker = "*"
				}
				fmt.Printf("%s %-6s %-30s %s  %.1fh  %s\n", marker, act.ID, act.Name, act.Date, act.Hours, act.Location)
			}
			return nil
		},
	}
}

func newActivitiesAddCmd() *cobra.Command {
	var draft domain.ActivityDraft

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Publish a new activity (owners only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.requireOwner(cmd.Context()); err != nil {
				return err
			}
			created, err := a.service.CreateActivity(cmd.Context(), draft)
			if err != nil {
				return a.remoteFailure("could not create the activity, try again later", err)
			}
			fmt.Printf("Created activity %s (%s)\n", created.Name, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.Name, "name", "", "activity name")
	cmd.Flags().StringVar(&draft.Description, "description", "", "description")
	cmd.Flags().StringVar(&draft.Date, "date", "", "date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&draft.Hours, "hours", 0, "credited hours")
	cmd.Flags().StringVar(&draft.Organiser, "organiser", "", "organiser")
	cmd.Flags().StringVar(&draft.Location, "location", "", "location")
	cmd.Flags().StringVar(&draft.TimeSlot, "time", "", "start time")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("hours")
	return cmd
}

func newActivitiesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <activity-id>",
		Short: "Remove an activity from the catalog (owners only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.requireOwner(cmd.Context()); err != nil {
				return err
			}
			if err := a.service.RemoveActivity(cmd.Context(), args[0]); err != nil {
				// Local state is already updated, the remote copy may
				// still hold the row. The detail stays in the log.
				a.logger.Printf("delete activity %s: %v", args[0], err)
				fmt.Println("Removed locally, but the remote delete failed. Try again later.")
				return nil
			}
			fmt.Println("Removed", args[0])
			return nil
		},
	}
}
