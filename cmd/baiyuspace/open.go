package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baiyuheniao/BaiyuSpace/client"
)

func openCmd(newClient clientFactory) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "open <path>",
		Short: "Resolve a forum route through the navigation guard",
		Long: `Resolve a forum route through the navigation guard.

Routes that require a login redirect to /login when the session is
missing or no longer accepted by the server; guest-only routes send
logged-in users back home. The printed path is where navigation would
actually land.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			guard := client.NewGuard(c, client.DefaultRoutes())
			decision := guard.Resolve(cmd.Context(), args[0], from)

			if decision.Redirected() {
				fmt.Printf("redirect -> %s\n", decision.RedirectTo)
				return nil
			}

			route, known := client.DefaultRoutes().Find(args[0])
			if known {
				fmt.Printf("open %s (%s)\n", args[0], route.Name)
			} else {
				fmt.Printf("open %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "/", "route the navigation originates from")

	return cmd
}
