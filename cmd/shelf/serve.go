package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/shelf"
	"github.com/sagarc03/shelf/config"
	"github.com/sagarc03/shelf/database"
	"github.com/sagarc03/shelf/filesystem"
	shelfhttp "github.com/sagarc03/shelf/http"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Start the HTTP server",
	Long: `Serve dir (default: the current directory) over HTTP.

GET and HEAD return files, index pages or directory listings. POST to a
directory URL stores the uploaded file in that directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "address to listen on (default: all interfaces)")
	serveCmd.Flags().Int("port", 8000, "HTTP server port")
	serveCmd.Flags().String("root", "", "directory to serve (default: .)")
	serveCmd.Flags().Bool("qr", false, "print a QR code with the LAN URL on startup")
	serveCmd.Flags().String("filename-policy", "", "upload filename policy: sanitize, reject (default: sanitize)")
	serveCmd.Flags().Int64("max-upload", 0, "maximum upload body size in bytes, 0 for no limit")
	serveCmd.Flags().String("journal", "", "upload journal: none, sqlite, postgres (default: none)")
	serveCmd.Flags().String("journal-dsn", "", "journal connection string (default: shelf.db)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if len(args) == 1 && !cmd.Flags().Changed("root") {
		cfg.Server.Root = args[0]
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := os.OpenRoot(cfg.Server.Root)
	if err != nil {
		return fmt.Errorf("open root: %w", err)
	}
	defer func() { _ = root.Close() }()

	storage := filesystem.NewFileStorage(root)

	var journal shelf.Journal
	if cfg.Journal.Enabled() {
		db, openErr := database.Open(ctx, cfg.Journal.Database())
		if openErr != nil {
			return fmt.Errorf("open journal: %w", openErr)
		}
		defer func() { _ = db.Close() }()

		journal = db.GetRepo()
		slog.Info("upload journal enabled", "type", cfg.Journal.Type)
	}

	service, err := shelf.NewService(storage, journal, cfg.Service())
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	handler := shelfhttp.NewHandler(&shelfhttp.HandlerConfig{
		CORS:   cfg.CORS,
		Logger: slog.Default(),
	}, service)

	server := &http.Server{
		Handler:           handler.Router(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		<-ctx.Done()

		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
	}()

	slog.Info("starting server",
		"addr", ln.Addr().String(),
		"root", service.Root(),
		"filename_policy", cfg.Upload.FilenamePolicy,
	)

	if cfg.Server.QR {
		port := ln.Addr().(*net.TCPAddr).Port
		printQR(os.Stdout, cfg.Server.Host, strconv.Itoa(port))
	}

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
