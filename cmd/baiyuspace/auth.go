package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	baiyuspace "github.com/baiyuheniao/BaiyuSpace"
	"github.com/baiyuheniao/BaiyuSpace/client"
)

type clientFactory func() (*client.Client, error)

func registerCmd(newClient clientFactory) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "register <username> <email>",
		Short: "Create a new account and log in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			pw, err := resolvePassword(password, true)
			if err != nil {
				return err
			}

			user, err := c.Register(cmd.Context(), args[0], args[1], pw)
			if err != nil {
				return err
			}

			fmt.Printf("Registered and logged in as %s (%s)\n", user.Username, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")

	return cmd
}

func loginCmd(newClient clientFactory) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username-or-email>",
		Short: "Log in and persist the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			pw, err := resolvePassword(password, false)
			if err != nil {
				return err
			}

			user, err := c.Login(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}

			fmt.Printf("Logged in as %s (%s)\n", user.Username, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")

	return cmd
}

func logoutCmd(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			if err := c.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func whoamiCmd(newClient clientFactory) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Long: `Show the logged-in user.

By default the identity is confirmed against the server, which also
refreshes the locally cached profile. With --local only the cached
profile is shown, without a network round trip.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			var user baiyuspace.Profile
			if local {
				var ok bool
				user, ok = c.Session().User()
				if !ok {
					return client.ErrNotAuthenticated
				}
			} else {
				user, err = c.RefreshUser(cmd.Context())
				if err != nil {
					return err
				}
			}

			fmt.Printf("ID:       %d\n", user.ID)
			fmt.Printf("Username: %s\n", user.Username)
			fmt.Printf("Email:    %s\n", user.Email)
			fmt.Printf("Role:     %s\n", user.Role)
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "show the cached profile without contacting the server")

	return cmd
}

// resolvePassword takes the flag value when set and prompts on the
// terminal otherwise. Registration confirms the password twice.
func resolvePassword(flagValue string, confirm bool) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if confirm {
		fmt.Fprint(os.Stderr, "Confirm password: ")
		again, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		if string(pw) != string(again) {
			return "", fmt.Errorf("passwords do not match")
		}
	}

	return string(pw), nil
}
