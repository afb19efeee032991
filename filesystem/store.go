// Package filesystem provides the local file system backend for shelf.
// Every operation goes through an *os.Root, so neither crafted paths nor
// symlinks can reach outside the served directory. Uploads are written to a
// temp file next to the target and renamed into place on commit, with a
// SHA256-based etag computed on the way.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sagarc03/shelf"
)

// Store provides file system storage operations.
type Store struct {
	root *os.Root
	base string
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
// Paths passed to the Store are absolute paths under the root directory, as
// produced by shelf.ResolvePath, or paths relative to it.
func NewFileStorage(root *os.Root) *Store {
	base, err := filepath.Abs(root.Name())
	if err != nil {
		base = root.Name()
	}
	return &Store{root: root, base: base}
}

// rel maps path onto a path relative to the root.
func (s *Store) rel(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}

	rel, err := filepath.Rel(s.base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside the root", shelf.ErrPermission, path)
	}

	return rel, nil
}

// Stat returns file info for path, following symlinks that stay inside the root.
func (s *Store) Stat(ctx context.Context, path string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := s.rel(path)
	if err != nil {
		return nil, err
	}

	info, err := s.root.Stat(rel)
	if err != nil {
		return nil, mapErr("stat", err)
	}

	return info, nil
}

// Open opens a file for reading. Returns shelf.ErrNotFound if the file does not exist.
func (s *Store) Open(ctx context.Context, path string) (shelf.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := s.rel(path)
	if err != nil {
		return nil, err
	}

	f, err := s.root.Open(rel)
	if err != nil {
		return nil, mapErr("open", err)
	}

	return f, nil
}

// ReadDir lists the directory at path. Symlinks are reported as such; a
// symlink whose target is a directory inside the root has TargetDir set.
func (s *Store) ReadDir(ctx context.Context, path string) ([]shelf.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := s.rel(path)
	if err != nil {
		return nil, err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), filepath.ToSlash(rel))
	if err != nil {
		return nil, mapErr("read dir", err)
	}

	entries := make([]shelf.DirEntry, 0, len(dirEntries))
	for _, entry := range dirEntries {
		e := shelf.DirEntry{Name: entry.Name()}

		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			e.Kind = shelf.EntrySymlink
			if info, err := s.root.Stat(filepath.Join(rel, entry.Name())); err == nil {
				e.TargetDir = info.IsDir()
			}
		case entry.IsDir():
			e.Kind = shelf.EntryDir
		default:
			e.Kind = shelf.EntryFile
		}

		entries = append(entries, e)
	}

	return entries, nil
}

// Create opens a temp file in the target directory. The target itself is
// replaced only when the returned file is committed. The directory must exist.
func (s *Store) Create(ctx context.Context, path string) (shelf.PendingFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := s.rel(path)
	if err != nil {
		return nil, err
	}

	if rel == "." {
		return nil, fmt.Errorf("create: %w: empty file name", shelf.ErrInvalidInput)
	}

	if info, statErr := s.root.Lstat(rel); statErr == nil && info.IsDir() {
		return nil, fmt.Errorf("create %s: is a directory", rel)
	}

	tmp := filepath.Join(filepath.Dir(rel), tmpFileName())
	f, err := s.root.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, mapErr("create", err)
	}

	return &pendingFile{
		ctx:    ctx,
		root:   s.root,
		file:   f,
		tmp:    tmp,
		target: rel,
		hash:   sha256.New(),
	}, nil
}

type pendingFile struct {
	ctx    context.Context
	root   *os.Root
	file   *os.File
	tmp    string
	target string
	hash   hash.Hash
	n      int64
	done   bool
}

func (p *pendingFile) Write(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}

	n, err := io.MultiWriter(p.hash, p.file).Write(b)
	p.n += int64(n)
	return n, err
}

// Commit flushes the temp file and renames it over the target.
func (p *pendingFile) Commit() (shelf.SaveResult, error) {
	if p.done {
		return shelf.SaveResult{}, errors.New("commit: upload already finished")
	}
	p.done = true

	success := false
	defer func() {
		if !success {
			p.remove()
		}
	}()

	if err := p.file.Sync(); err != nil {
		p.close()
		return shelf.SaveResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	if err := p.file.Close(); err != nil {
		return shelf.SaveResult{}, fmt.Errorf("could not close written file: %w", err)
	}

	if err := p.root.Rename(p.tmp, p.target); err != nil {
		return shelf.SaveResult{}, fmt.Errorf("failed to rename file: %w", err)
	}

	success = true

	return shelf.SaveResult{
		BytesWritten: p.n,
		Etag:         hex.EncodeToString(p.hash.Sum(nil)),
	}, nil
}

// Abort discards the temp file. It is a no-op after Commit.
func (p *pendingFile) Abort() error {
	if p.done {
		return nil
	}
	p.done = true

	p.close()
	if err := p.root.Remove(p.tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not remove tmp file: %w", err)
	}
	return nil
}

func (p *pendingFile) close() {
	if err := p.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		slog.Warn("failed to close tmp file", "path", p.tmp, "err", err)
	}
}

func (p *pendingFile) remove() {
	if err := p.root.Remove(p.tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to remove tmp file", "path", p.tmp, "err", err)
	}
}

func mapErr(op string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w", op, shelf.ErrNotFound)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: %w", op, shelf.ErrPermission)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func tmpFileName() string {
	return fmt.Sprintf(".shelf-%s.part", uuid.New().String())
}
