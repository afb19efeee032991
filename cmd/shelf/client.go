package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/shelf/clientcli"
)

var (
	endpoint   string
	jsonOutput bool
	quiet      bool
)

// addClientFlags registers the flags shared by commands that talk to a
// running server.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: "+clientcli.DefaultEndpoint+", env: SHELF_ENDPOINT)")
	addOutputFlags(cmd)
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates a client for the endpoint given by flag or environment.
func getClient() (*clientcli.Client, error) {
	cfg := &clientcli.Config{Endpoint: endpoint}
	if cfg.Endpoint == "" {
		cfg.Endpoint = os.Getenv("SHELF_ENDPOINT")
	}

	return clientcli.New(cfg)
}

// handleError reports err with the current formatter and returns it so the
// command exits non-zero.
func handleError(err error) error {
	_ = getFormatter().FormatError(os.Stderr, err)
	return err
}

var errUploadsFailed = errors.New("one or more uploads failed")
