package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newPaymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Track membership payments",
	}
	cmd.AddCommand(newPaymentsListCmd(), newPaymentsAddCmd(), newPaymentsRemoveCmd())
	return cmd
}

func newPaymentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List payments, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			snap := a.service.Snapshot()
			if len(snap.Payments) == 0 {
				fmt.Println("No payments recorded")
				return nil
			}
			for _, p := range snap.Payments {
				fmt.Printf("%-38s %s  %8.2f  %s\n", p.ID, p.Date, p.Amount, p.Description)
			}
			fmt.Printf("Total paid: %.2f\n", snap.TotalPaid)
			return nil
		},
	}
}

func newPaymentsAddCmd() *cobra.Command {
	var (
		amount      float64
		date        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			payment, err := a.service.AddPayment(amount, date, description)
			if err != nil {
				return err
			}
			fmt.Printf("Recorded %.2f on %s (%s)\n", payment.Amount, payment.Date, payment.ID)
			return nil
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "amount paid")
	cmd.Flags().StringVar(&date, "date", "", "payment date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&description, "description", "", "what the payment covers")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newPaymentsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <payment-id>",
		Short: "Delete a recorded payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.service.DeletePayment(args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted", args[0])
			return nil
		},
	}
}
