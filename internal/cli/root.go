// Package cli implements statusctl, a terminal client for the statusmonitor
// read API.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Each call returns a fresh tree.
func NewRootCmd() *cobra.Command {
	var (
		apiURL string
		apiKey string
	)
	client := func() *Client { return NewClient(apiURL, apiKey) }

	root := &cobra.Command{
		Use:          "statusctl",
		Short:        "Inspect a running statusmonitor",
		SilenceUsage: true,
	}

	defaultURL := os.Getenv("STATUSMONITOR_URL")
	if defaultURL == "" {
		defaultURL = "http://127.0.0.1:8080"
	}
	root.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "statusmonitor API URL")
	root.PersistentFlags().StringVar(&apiKey, "key", os.Getenv("STATUSMONITOR_API_KEY"), "API key for the read API")

	root.AddCommand(newStatusCmd(client), newValidateCmd())
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}
