package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and cache the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBase()
			if err != nil {
				return err
			}
			sess, err := b.identityClient().SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := b.guard.Establish(*sess); err != nil {
				return fmt.Errorf("cache session: %w", err)
			}
			fmt.Printf("Signed in as %s\n", sess.User.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSignupCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBase()
			if err != nil {
				return err
			}
			sess, err := b.identityClient().SignUp(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			if err := b.guard.Establish(*sess); err != nil {
				return fmt.Errorf("cache session: %w", err)
			}
			fmt.Printf("Welcome, %s\n", sess.User.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the cached session and joined activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBase()
			if err != nil {
				return err
			}
			if err := b.guard.SignOut(); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in volunteer",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBase()
			if err != nil {
				return err
			}
			sess, err := b.guard.Current()
			if err != nil {
				return fmt.Errorf("not signed in, run `volunteer login` first")
			}
			fmt.Printf("%s <%s>\n", sess.User.DisplayName(), sess.User.Email)
			if expiry, ok := b.guard.TokenExpiry(sess); ok {
				fmt.Printf("Token expires %s\n", expiry.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
