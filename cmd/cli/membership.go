package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"example.com/volunteer/internal/domain"
)

func newJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <activity-id>",
		Short: "Join an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			switch err := a.service.Join(args[0]); {
			case errors.Is(err, domain.ErrAlreadyJoined):
				return fmt.Errorf("you already joined this activity")
			case errors.Is(err, domain.ErrUnknownActivity):
				return fmt.Errorf("no activity with id %s", args[0])
			case err != nil:
				return err
			}
			fmt.Println("Joined", args[0])
			return nil
		},
	}
}

func newLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <activity-id>",
		Short: "Leave an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.service.Leave(args[0]); err != nil {
				return err
			}
			fmt.Println("Left", args[0])
			return nil
		},
	}
}

func newMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List joined activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			snap := a.service.Snapshot()
			if len(snap.Mine) == 0 {
				fmt.Println("You have not joined any activities")
				return nil
			}
			for _, act := range snap.Mine {
				fmt.Printf("%-6s %-30s %s  %.1fh\n", act.ID, act.Name, act.Date, act.Hours)
			}
			fmt.Printf("Total: %.1f hours\n", snap.TotalHours)
			return nil
		},
	}
}

func newHoursCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hours",
		Short: "Show the derived volunteer-hour total",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			snap := a.service.Snapshot()
			fmt.Printf("%.1f hours across %d activities\n", snap.TotalHours, len(snap.Mine))
			return nil
		},
	}
}
