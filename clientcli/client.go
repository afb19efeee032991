package clientcli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP client timeout. Uploads stream whole
	// files, so it is generous.
	DefaultTimeout = 10 * time.Minute

	// maxPageBytes bounds how much of an upload result page is read.
	maxPageBytes = 1 << 20
)

// Client performs operations against a shelf server.
type Client struct {
	endpoint   *url.URL
	httpClient *http.Client
	stdout     io.Writer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithStdout sets the writer used for downloads to "-".
func WithStdout(w io.Writer) Option {
	return func(c *Client) {
		c.stdout = w
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	// Apply defaults
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(strings.TrimSuffix(cfg.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		stdout:     os.Stdout,
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Upload uploads each local file into opts.RemoteDir. A failure for one file
// is reported in its result and does not stop the others.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if len(opts.LocalPaths) == 0 {
		return nil, fmt.Errorf("upload: %w", ErrNoPaths)
	}

	results := make([]UploadResult, 0, len(opts.LocalPaths))
	for _, p := range opts.LocalPaths {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("upload: %w", err)
		}

		result, err := c.uploadSingle(ctx, p, opts.RemoteDir)
		if err != nil {
			result = UploadResult{LocalPath: p, Err: err}
		}
		results = append(results, result)
	}

	return results, nil
}

// uploadSingle uploads a single file to the server.
func (c *Client) uploadSingle(ctx context.Context, localPath, remoteDir string) (UploadResult, error) {
	if localPath == "" {
		return UploadResult{}, ErrEmptyPath
	}

	// Open the file
	file, err := os.Open(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Get file info for size
	info, err := file.Stat()
	if err != nil {
		return UploadResult{}, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return UploadResult{}, fmt.Errorf("%s is a directory", localPath)
	}

	// Frame the file between the part header and the closing boundary so the
	// request has a known length and streams from disk.
	var frame bytes.Buffer
	mw := multipart.NewWriter(&frame)
	if _, err = mw.CreateFormFile("file", filepath.Base(localPath)); err != nil {
		return UploadResult{}, fmt.Errorf("create form file: %w", err)
	}
	headLen := frame.Len()
	if err = mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("close multipart writer: %w", err)
	}
	head := frame.Bytes()[:headLen]
	tail := frame.Bytes()[headLen:]

	body := io.MultiReader(bytes.NewReader(head), file, bytes.NewReader(tail))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(dirPath(remoteDir)), body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.ContentLength = int64(len(head)) + info.Size() + int64(len(tail))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return UploadResult{}, fmt.Errorf("%w: server returned %s", ErrUploadFailed, resp.Status)
	}

	page, err := parseUploadPage(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return UploadResult{}, fmt.Errorf("read upload result: %w", err)
	}
	if !page.ok {
		return UploadResult{}, fmt.Errorf("%w: %s", ErrUploadFailed, page.reason)
	}

	return UploadResult{
		LocalPath:  localPath,
		RemotePath: page.path,
		ETag:       page.etag,
		Size:       info.Size(),
	}, nil
}

// Download fetches a file from the server into opts.LocalPath.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, error) {
	if opts.RemotePath == "" {
		return nil, fmt.Errorf("download: %w", ErrEmptyPath)
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = path.Base(strings.TrimSuffix(opts.RemotePath, "/"))
		if localPath == "." || localPath == "/" {
			return nil, fmt.Errorf("download: %w: cannot derive a local name from %q", ErrEmptyPath, opts.RemotePath)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(opts.RemotePath), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("download %s: %w", opts.RemotePath, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("download %s: server returned %s", opts.RemotePath, resp.Status)
	}

	var w io.Writer
	if localPath == "-" {
		w = c.stdout
	} else {
		f, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
		if createErr != nil {
			return nil, fmt.Errorf("create local file: %w", createErr)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", localPath, err)
	}

	return &DownloadResult{
		RemotePath:  opts.RemotePath,
		LocalPath:   localPath,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        n,
	}, nil
}

// url returns the absolute URL of the server path p.
func (c *Client) url(p string) string {
	u := *c.endpoint
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(p, "/")
	u.RawPath = ""
	return u.String()
}

// dirPath normalizes a remote directory to end in a slash.
func dirPath(dir string) string {
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir
}
