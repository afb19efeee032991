package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/shelf"
	"github.com/sagarc03/shelf/config"
	"github.com/sagarc03/shelf/database"
)

var errJournalDisabled = errors.New("upload journal is disabled, set journal.type or --journal")

var (
	historyPrefix string
	historyLimit  int
	historyCursor string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the upload journal",
	Long: `List recorded upload attempts, newest first.

Reads the journal configured for the server (journal.type and journal.dsn),
so it works whether or not the server is running.

Examples:
  shelf history --journal sqlite --journal-dsn shelf.db
  shelf history --prefix docs/ --limit 20
  shelf history --cursor "MjAyNi0..." --json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyPrefix, "prefix", "p", "", "only show uploads whose path starts with prefix")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of records to show")
	historyCmd.Flags().StringVar(&historyCursor, "cursor", "", "pagination cursor from a previous page")
	historyCmd.Flags().String("journal", "", "upload journal: sqlite, postgres")
	historyCmd.Flags().String("journal-dsn", "", "journal connection string")
	addOutputFlags(historyCmd)

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if !cfg.Journal.Enabled() {
		return handleError(errJournalDisabled)
	}

	ctx := cmd.Context()

	db, err := database.Open(ctx, cfg.Journal.Database())
	if err != nil {
		return handleError(fmt.Errorf("open journal: %w", err))
	}
	defer func() { _ = db.Close() }()

	result, err := db.GetRepo().List(ctx, shelf.ListQuery{
		PathPrefix: historyPrefix,
		Limit:      historyLimit,
		Cursor:     historyCursor,
	})
	if err != nil {
		return handleError(fmt.Errorf("list uploads: %w", err))
	}

	return getFormatter().FormatHistory(os.Stdout, result)
}
