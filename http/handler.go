package http

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sagarc03/shelf"
)

// Service is the part of shelf.Service the handlers use.
type Service interface {
	Root() string
	Resolve(urlPath string) string
	Stat(ctx context.Context, path string) (fs.FileInfo, error)
	Open(ctx context.Context, path string) (shelf.File, error)
	ReadDir(ctx context.Context, path string) ([]shelf.DirEntry, error)
	IndexFile(ctx context.Context, dir string) (string, bool)
	ContentType(path string) string
	Upload(ctx context.Context, req shelf.UploadRequest) shelf.UploadOutcome
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS CORSConfig
	// Logger receives the request log. Nil uses slog.Default().
	Logger *slog.Logger
}

// Handler serves files, directory listings and uploads from a Service.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler serving GET and HEAD from the file tree and
// accepting uploads with POST on any path. Other methods get 405.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.config.Logger))
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/*", h.handleGet)
	r.Head("/*", h.handleGet)
	r.Post("/*", h.handleUpload)

	return r
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	target := h.service.Resolve(r.URL.EscapedPath())

	info, err := h.service.Stat(r.Context(), target)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	if !info.IsDir() {
		h.serveFile(w, r, target)
		return
	}

	if !strings.HasSuffix(r.URL.Path, "/") {
		location := r.URL.EscapedPath() + "/"
		if r.URL.RawQuery != "" {
			location += "?" + r.URL.RawQuery
		}
		w.Header().Set("Location", location)
		w.WriteHeader(http.StatusMovedPermanently)
		return
	}

	if index, ok := h.service.IndexFile(r.Context(), target); ok {
		h.serveFile(w, r, index)
		return
	}

	h.serveListing(w, r, target)
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, path string) {
	f, err := h.service.Open(r.Context(), path)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", h.service.ContentType(path))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}

	if _, err := io.Copy(w, f); err != nil {
		slog.DebugContext(r.Context(), "failed to send file", "path", path, "err", err)
	}
}

func (h *Handler) serveListing(w http.ResponseWriter, r *http.Request, dir string) {
	entries, err := h.service.ReadDir(r.Context(), dir)
	if err != nil {
		slog.WarnContext(r.Context(), "failed to list directory", "path", dir, "err", err)
		WriteError(w, r, http.StatusNotFound, msgCannotList)
		return
	}

	render(w, r, http.StatusOK, "listing", newListingPage(r.URL.Path, entries))
}

// handleUpload always answers 200 with a page reporting the outcome.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	outcome := h.service.Upload(r.Context(), shelf.UploadRequest{
		URLPath:       r.URL.EscapedPath(),
		ContentType:   r.Header.Get("Content-Type"),
		ContentLength: r.ContentLength,
		Body:          r.Body,
		RemoteAddr:    r.RemoteAddr,
	})

	back := r.Referer()
	if back == "" {
		back = r.URL.EscapedPath()
	}

	page := uploadPage{
		OK:     outcome.OK(),
		Reason: outcome.Reason(),
		Back:   back,
	}
	if outcome.OK() {
		page.Path = h.displayPath(outcome.Path)
		page.Size = outcome.Size
		page.ETag = outcome.ETag
	}

	render(w, r, http.StatusOK, "upload", page)
}

// displayPath returns path as a URL path rooted at the served directory.
func (h *Handler) displayPath(path string) string {
	rel, err := filepath.Rel(h.service.Root(), path)
	if err != nil {
		return filepath.Base(path)
	}
	return "/" + filepath.ToSlash(rel)
}
