package shelf

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// EntryKind classifies a directory entry for rendering.
type EntryKind int

const (
	EntryFile EntryKind = iota
	EntryDir
	EntrySymlink
)

func (k EntryKind) String() string {
	switch k {
	case EntryDir:
		return "dir"
	case EntrySymlink:
		return "symlink"
	default:
		return "file"
	}
}

// DirEntry is one row of a directory listing.
type DirEntry struct {
	Name string
	Kind EntryKind
	// TargetDir reports whether a symlink resolves to a directory inside the root.
	TargetDir bool
}

// DisplayName returns the name shown in a listing: directories end in "/"
// and symlinks in "@".
func (e DirEntry) DisplayName() string {
	switch e.Kind {
	case EntryDir:
		return e.Name + "/"
	case EntrySymlink:
		return e.Name + "@"
	default:
		return e.Name
	}
}

// LinkName returns the unescaped link target relative to the listed directory.
func (e DirEntry) LinkName() string {
	if e.Kind == EntryDir || (e.Kind == EntrySymlink && e.TargetDir) {
		return e.Name + "/"
	}
	return e.Name
}

// UploadRequest carries the parts of a POST request the upload parser consumes.
type UploadRequest struct {
	URLPath       string
	ContentType   string
	ContentLength int64 // -1 when unknown
	Body          io.Reader
	RemoteAddr    string
}

// UploadOutcome is the result of a single upload. Err is nil on success and
// one of the upload sentinel errors otherwise.
type UploadOutcome struct {
	Path     string
	Filename string
	Size     int64
	ETag     string
	Err      error
}

func (o UploadOutcome) OK() bool {
	return o.Err == nil
}

// Reason returns the user facing failure message, or "" on success.
func (o UploadOutcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

type SaveResult struct {
	BytesWritten int64
	Etag         string
}

// UploadRecord is a journal row describing one upload attempt.
type UploadRecord struct {
	ID         uuid.UUID `json:"id"`
	Path       string    `json:"path"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	Etag       string    `json:"etag,omitempty"`
	Success    bool      `json:"success"`
	Reason     string    `json:"reason,omitempty"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

type ListQuery struct {
	PathPrefix string
	Limit      int
	Cursor     string
}

// Normalize returns q with Limit defaulted and capped.
func (q ListQuery) Normalize() ListQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}
	if q.Limit > MaxListLimit {
		q.Limit = MaxListLimit
	}
	return q
}

type ListResult struct {
	Items      []UploadRecord `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// FilenamePolicy decides what happens to client supplied filenames that
// carry path components.
type FilenamePolicy string

const (
	// PolicySanitize keeps only the final path component of the filename.
	PolicySanitize FilenamePolicy = "sanitize"
	// PolicyReject fails the upload when the filename is not a bare name.
	PolicyReject FilenamePolicy = "reject"
)

func (p FilenamePolicy) IsValid() bool {
	switch p {
	case PolicySanitize, PolicyReject:
		return true
	default:
		return false
	}
}

func ParseFilenamePolicy(s string) (FilenamePolicy, error) {
	policy := FilenamePolicy(s)
	if !policy.IsValid() {
		return "", fmt.Errorf("invalid filename policy: %s (valid policies: sanitize, reject)", s)
	}
	return policy, nil
}

var (
	DefaultIndexFiles          = []string{"index.html", "index.htm"}
	DefaultPlainTextExtensions = []string{".c", ".h", ".py", ".go", ".sh"}
)

// Config is the read-only server configuration handed to NewService.
type Config struct {
	// Root is the directory every request path is resolved under.
	Root           string
	FilenamePolicy FilenamePolicy
	// IndexFiles are tried in order when a directory is requested.
	IndexFiles []string
	// PlainTextExtensions are always served as text/plain.
	PlainTextExtensions []string
	// MaxUploadBytes limits the request body of an upload. Zero means no limit.
	MaxUploadBytes int64
	// RecordTimeout bounds a journal write (default: 5s).
	RecordTimeout time.Duration
}

// Tables holds configurable table names for the upload journal.
type Tables struct {
	Uploads string `mapstructure:"uploads"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Uploads == "" {
		return errors.New("validate tables: uploads table name cannot be empty")
	}

	if !IsValidTableName(t.Uploads) {
		return fmt.Errorf("validate tables: invalid uploads table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Uploads)
	}

	return nil
}
