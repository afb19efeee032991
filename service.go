package shelf

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sagarc03/shelf/formdata"
)

// Journal records upload attempts.
//
// All methods accept a context for cancellation and timeout control.
type Journal interface {
	// Record stores rec. Implementations assign the ID and CreatedAt fields
	// and return the stored record.
	Record(ctx context.Context, rec UploadRecord) (UploadRecord, error)

	// List returns records newest first, filtered by path prefix and paginated
	// with an opaque cursor.
	List(ctx context.Context, q ListQuery) (ListResult, error)
}

// File is an open file served to a client.
type File interface {
	io.ReadSeekCloser
	Stat() (fs.FileInfo, error)
}

// PendingFile receives upload content. Nothing is visible at the target path
// until Commit succeeds; Abort discards the content.
type PendingFile interface {
	io.Writer
	Commit() (SaveResult, error)
	Abort() error
}

// FileStorage defines sandboxed access to the served directory tree.
// Paths are resolved filesystem paths under the configured root, as returned
// by ResolvePath.
//
// Implementations must return errors wrapping ErrNotFound or ErrPermission
// where those apply, and must refuse any path outside the root.
type FileStorage interface {
	// Stat returns information about path, following symlinks.
	Stat(ctx context.Context, path string) (fs.FileInfo, error)

	// Open opens path for reading. The caller closes the returned File.
	Open(ctx context.Context, path string) (File, error)

	// ReadDir lists the entries of the directory at path in no particular order.
	ReadDir(ctx context.Context, path string) ([]DirEntry, error)

	// Create prepares an upload into path, overwriting any existing file once
	// the returned PendingFile is committed.
	Create(ctx context.Context, path string) (PendingFile, error)
}

// NopJournal discards every record.
type NopJournal struct{}

func (NopJournal) Record(_ context.Context, rec UploadRecord) (UploadRecord, error) {
	return rec, nil
}

func (NopJournal) List(context.Context, ListQuery) (ListResult, error) {
	return ListResult{Items: []UploadRecord{}}, nil
}

type Service struct {
	storage FileStorage
	journal Journal
	cfg     Config
	types   ContentTypes
}

// NewService validates cfg, fills in defaults and returns a Service. A nil
// journal is replaced with NopJournal.
func NewService(storage FileStorage, journal Journal, cfg Config) (*Service, error) {
	if storage == nil {
		return nil, fmt.Errorf("new service: %w: storage cannot be nil", ErrInvalidInput)
	}

	if cfg.Root == "" {
		return nil, fmt.Errorf("new service: %w: root cannot be empty", ErrInvalidInput)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("new service: %w", err)
	}
	cfg.Root = root

	if cfg.FilenamePolicy == "" {
		cfg.FilenamePolicy = PolicySanitize
	}
	if !cfg.FilenamePolicy.IsValid() {
		return nil, fmt.Errorf("new service: %w: invalid filename policy: %s", ErrInvalidInput, cfg.FilenamePolicy)
	}

	if cfg.MaxUploadBytes < 0 {
		return nil, fmt.Errorf("new service: %w: max upload bytes cannot be negative", ErrInvalidInput)
	}

	if cfg.IndexFiles == nil {
		cfg.IndexFiles = DefaultIndexFiles
	}
	if cfg.PlainTextExtensions == nil {
		cfg.PlainTextExtensions = DefaultPlainTextExtensions
	}
	if cfg.RecordTimeout <= 0 {
		cfg.RecordTimeout = 5 * time.Second
	}

	if journal == nil {
		journal = NopJournal{}
	}

	return &Service{
		storage: storage,
		journal: journal,
		cfg:     cfg,
		types:   NewContentTypes(cfg.PlainTextExtensions),
	}, nil
}

// Root returns the absolute server root.
func (s *Service) Root() string {
	return s.cfg.Root
}

// Resolve maps a request URL path to a filesystem path under the root.
func (s *Service) Resolve(urlPath string) string {
	return ResolvePath(s.cfg.Root, urlPath)
}

func (s *Service) Stat(ctx context.Context, path string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	info, err := s.storage.Stat(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	return info, nil
}

func (s *Service) Open(ctx context.Context, path string) (File, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	f, err := s.storage.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	return f, nil
}

// ReadDir lists the directory at path sorted case-insensitively by name.
// Names equal under case folding keep a stable byte-wise order.
func (s *Service) ReadDir(ctx context.Context, path string) ([]DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	entries, err := s.storage.ReadDir(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	slices.SortFunc(entries, func(a, b DirEntry) int {
		if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return entries, nil
}

// IndexFile returns the first configured index file that exists in dir.
func (s *Service) IndexFile(ctx context.Context, dir string) (string, bool) {
	for _, name := range s.cfg.IndexFiles {
		p := filepath.Join(dir, name)
		info, err := s.storage.Stat(ctx, p)
		if err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// ContentType guesses the Content-Type of the file at path.
func (s *Service) ContentType(path string) string {
	return s.types.For(path)
}

// Upload streams the single file part of a multipart/form-data body into the
// directory the request path resolves to. The outcome is recorded in the
// journal; journal failures are logged and do not change the outcome.
func (s *Service) Upload(ctx context.Context, req UploadRequest) UploadOutcome {
	outcome, cause := s.upload(ctx, req)

	if outcome.OK() {
		slog.InfoContext(ctx, "upload complete", "path", outcome.Path, "size", outcome.Size, "etag", outcome.ETag)
	} else {
		slog.WarnContext(ctx, "upload failed", "url_path", req.URLPath, "reason", outcome.Reason(), "err", cause)
	}

	s.record(ctx, req, outcome)

	return outcome
}

func (s *Service) upload(ctx context.Context, req UploadRequest) (UploadOutcome, error) {
	fail := func(err error) (UploadOutcome, error) {
		return UploadOutcome{Err: uploadError(err)}, err
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	body := req.Body
	if limit := s.cfg.MaxUploadBytes; limit > 0 {
		if req.ContentLength > limit {
			return fail(ErrTooLarge)
		}
		body = &limitedBody{r: body, n: limit}
	}

	r, err := formdata.NewReader(req.ContentType, req.ContentLength, body)
	if err != nil {
		return fail(err)
	}

	hdr, err := r.ReadHeader()
	if err != nil {
		return fail(err)
	}

	name, err := CleanFilename(hdr.Filename, s.cfg.FilenamePolicy)
	if err != nil {
		outcome, cause := fail(err)
		outcome.Filename = hdr.Filename
		return outcome, cause
	}

	target := filepath.Join(s.Resolve(req.URLPath), name)

	pending, err := s.storage.Create(ctx, target)
	if err != nil {
		outcome, cause := fail(fmt.Errorf("%w: %w", ErrCreateFile, err))
		outcome.Path, outcome.Filename = target, hdr.Filename
		return outcome, cause
	}

	if _, err := r.WriteTo(pending); err != nil {
		if abortErr := pending.Abort(); abortErr != nil {
			slog.WarnContext(ctx, "failed to discard upload", "path", target, "err", abortErr)
		}
		outcome, cause := fail(err)
		outcome.Path, outcome.Filename = target, hdr.Filename
		return outcome, cause
	}

	res, err := pending.Commit()
	if err != nil {
		outcome, cause := fail(fmt.Errorf("%w: %w", ErrWriteFile, err))
		outcome.Path, outcome.Filename = target, hdr.Filename
		return outcome, cause
	}

	return UploadOutcome{
		Path:     target,
		Filename: hdr.Filename,
		Size:     res.BytesWritten,
		ETag:     res.Etag,
	}, nil
}

func (s *Service) record(ctx context.Context, req UploadRequest, outcome UploadOutcome) {
	// The request context may already be cancelled by a client that went away.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RecordTimeout)
	defer cancel()

	rec := UploadRecord{
		Path:       s.relative(outcome.Path),
		Filename:   outcome.Filename,
		Size:       outcome.Size,
		Etag:       outcome.ETag,
		Success:    outcome.OK(),
		Reason:     outcome.Reason(),
		RemoteAddr: req.RemoteAddr,
	}
	if rec.Path == "" {
		rec.Path = s.relative(s.Resolve(req.URLPath))
	}

	if _, err := s.journal.Record(recordCtx, rec); err != nil {
		slog.WarnContext(ctx, "failed to record upload", "path", rec.Path, "err", err)
	}
}

// relative returns path relative to the root in slash form.
func (s *Service) relative(path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(s.cfg.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// uploadError maps a parser or storage error onto the upload sentinel whose
// message is shown to the user.
func uploadError(err error) error {
	sentinels := []error{
		ErrTooLarge,
		ErrInvalidFilename,
		ErrCreateFile,
		ErrWriteFile,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s
		}
	}

	switch {
	case errors.Is(err, formdata.ErrMissingBoundary):
		return ErrMissingBoundary
	case errors.Is(err, formdata.ErrNoLeadingBoundary):
		return ErrNoLeadingBoundary
	case errors.Is(err, formdata.ErrNoFilename):
		return ErrNoFilename
	case errors.Is(err, formdata.ErrWrite):
		return ErrWriteFile
	default:
		return ErrTruncated
	}
}

// limitedBody fails with ErrTooLarge once more than n bytes are read.
type limitedBody struct {
	r io.Reader
	n int64
}

func (l *limitedBody) Read(p []byte) (int, error) {
	if l.n <= 0 {
		var probe [1]byte
		n, err := l.r.Read(probe[:])
		if n > 0 {
			return 0, ErrTooLarge
		}
		return 0, err
	}

	if int64(len(p)) > l.n {
		p = p[:l.n]
	}
	n, err := l.r.Read(p)
	l.n -= int64(n)
	return n, err
}
