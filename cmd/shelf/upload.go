package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/shelf/clientcli"
)

var uploadDir string

var uploadCmd = &cobra.Command{
	Use:   "upload <local-file>...",
	Short: "Upload files to a running server",
	Long: `Upload files to a running shelf server, one request per file.

Files land in the directory given by --to, keeping their base name.
Uploading over an existing file replaces it.

Examples:
  shelf upload ./notes.txt
  shelf upload --to /inbox/ a.png b.png
  shelf upload -e http://192.168.1.20:8000 --json report.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadDir, "to", "t", "/", "remote directory to upload into")
	addClientFlags(uploadCmd)

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return handleError(err)
	}

	results, err := client.Upload(cmd.Context(), clientcli.UploadOptions{
		LocalPaths: args,
		RemoteDir:  uploadDir,
	})
	if err != nil {
		return handleError(err)
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	for i := range results {
		if results[i].Err != nil {
			return errUploadsFailed
		}
	}

	return nil
}
