package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/toolshed/internal/cli"
	"github.com/Veraticus/toolshed/internal/model"
)

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Long: `Sign in with a username and password.

The bearer token is saved locally so later commands run as the same user.
Missing values are prompted for.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAuth(cmd, false)
		},
	}
	cmd.Flags().StringP("username", "u", "", "username")
	cmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")
	return cmd
}

func signupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAuth(cmd, true)
		},
	}
	cmd.Flags().StringP("username", "u", "", "username")
	cmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")
	cmd.Flags().String("role", string(model.RoleUser), "account role (user, admin)")
	return cmd
}

func runAuth(cmd *cobra.Command, signup bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	prompter := cli.NewPrompter(cmd.InOrStdin(), out)
	username, _ := cmd.Flags().GetString("username")
	if username == "" {
		if username, err = prompter.Ask(ctx, "Username", ""); err != nil {
			return err
		}
	}
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("TOOLSHED_PASSWORD")
	}
	if password == "" {
		if password, err = prompter.Ask(ctx, "Password", ""); err != nil {
			return err
		}
	}

	var identity model.Identity
	if signup {
		role, _ := cmd.Flags().GetString("role")
		identity, err = a.session.Signup(ctx, username, password, model.Role(role))
	} else {
		identity, err = a.session.Login(ctx, username, password)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess("Signed in as "+whoLabel(identity)))
	return nil
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			a.session.Logout(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Signed out"))
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			identity, signedIn := a.session.Identity()
			if !signedIn {
				fmt.Fprintln(out, cli.FormatInfo("Browsing as a guest. Run 'toolshed login' to sign in."))
				return nil
			}
			fmt.Fprintln(out, cli.FormatInfo("Signed in as "+whoLabel(identity)))
			if identity.Email != "" {
				fmt.Fprintln(out, cli.SubtleStyle.Render("  "+identity.Email))
			}
			return nil
		},
	}
}
