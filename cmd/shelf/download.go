package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/shelf/clientcli"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <remote-path> [local-path]",
	Short: "Download a file from a running server",
	Long: `Download a file from a running shelf server.

Without a local path the file is saved under its remote base name in the
current directory.

Examples:
  shelf download /docs/readme.txt
  shelf download /docs/readme.txt ./copy.txt
  shelf download --stdout /config.json | jq .`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
	addClientFlags(downloadCmd)

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return handleError(err)
	}

	result, err := client.Download(cmd.Context(), clientcli.DownloadOptions{
		RemotePath: args[0],
		LocalPath:  localPath,
	})
	if err != nil {
		return handleError(err)
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
