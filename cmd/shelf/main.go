package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/shelf/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "shelf",
	Short:   "Minimal HTTP file server with browser uploads",
	Long: `Shelf serves a directory tree over HTTP. Directories without an index
page are listed, and every listing carries a form for uploading a single
file into the directory being viewed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		files, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, later files override earlier ones (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: info, env: SHELF_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text, json (default: text, env: SHELF_LOG_FORMAT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
