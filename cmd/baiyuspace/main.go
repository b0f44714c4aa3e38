package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/baiyuheniao/BaiyuSpace/client"
)

var version = "dev"

func main() {
	var (
		serverURL string
		stateDir  string
	)

	rootCmd := &cobra.Command{
		Use:   "baiyuspace",
		Short: "Command-line client for the BaiyuSpace forum",
		Long: `baiyuspace talks to a BaiyuSpace forum server.

It keeps your login session on disk, so commands stay authenticated
between invocations until you log out or the token expires.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("BAIYU_SERVER_URL", "http://localhost:3000"), "base URL of the forum server")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "directory for session state (defaults to the user config dir)")

	newClient := func() (*client.Client, error) {
		dir := stateDir
		if dir == "" {
			var err error
			dir, err = client.DefaultSessionDir()
			if err != nil {
				return nil, fmt.Errorf("resolve state dir: %w", err)
			}
		}
		session, err := client.OpenSession(dir)
		if err != nil {
			return nil, err
		}
		return client.New(serverURL, session), nil
	}

	rootCmd.AddCommand(
		registerCmd(newClient),
		loginCmd(newClient),
		logoutCmd(newClient),
		whoamiCmd(newClient),
		openCmd(newClient),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
