package http_test

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/shelf"
	"github.com/sagarc03/shelf/filesystem"
	shelfhttp "github.com/sagarc03/shelf/http"
)

const testBoundary = "----shelfTestBoundary7MA4YWxkTrZu0gW"

// MockService is a mock implementation of http.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Root() string {
	return m.Called().String(0)
}

func (m *MockService) Resolve(urlPath string) string {
	return m.Called(urlPath).String(0)
}

func (m *MockService) Stat(ctx context.Context, path string) (fs.FileInfo, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(fs.FileInfo), args.Error(1)
}

func (m *MockService) Open(ctx context.Context, path string) (shelf.File, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(shelf.File), args.Error(1)
}

func (m *MockService) ReadDir(ctx context.Context, path string) ([]shelf.DirEntry, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shelf.DirEntry), args.Error(1)
}

func (m *MockService) IndexFile(ctx context.Context, dir string) (string, bool) {
	args := m.Called(ctx, dir)
	return args.String(0), args.Bool(1)
}

func (m *MockService) ContentType(path string) string {
	return m.Called(path).String(0)
}

func (m *MockService) Upload(ctx context.Context, req shelf.UploadRequest) shelf.UploadOutcome {
	args := m.Called(ctx, req)
	return args.Get(0).(shelf.UploadOutcome)
}

type fakeInfo struct {
	name string
	dir  bool
}

func (f fakeInfo) Name() string       { return f.name }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) Mode() fs.FileMode  { return 0o644 }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return f.dir }
func (f fakeInfo) Sys() any           { return nil }

// newTestServer serves a fresh temporary directory through the real storage
// and service.
func newTestServer(t *testing.T) (string, http.Handler) {
	t.Helper()

	dir := t.TempDir()
	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	service, err := shelf.NewService(filesystem.NewFileStorage(root), nil, shelf.Config{Root: dir})
	require.NoError(t, err)

	handler := shelfhttp.NewHandler(&shelfhttp.HandlerConfig{}, service)
	return dir, handler.Router()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func multipartBody(filename, content string) string {
	return "--" + testBoundary + "\r\n" +
		`Content-Disposition: form-data; name="file"; filename="` + filename + `"` + "\r\n" +
		"Content-Type: application/octet-stream\r\n" +
		"\r\n" +
		content + "\r\n" +
		"--" + testBoundary + "--\r\n"
}

func newUploadRequest(t *testing.T, target, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+testBoundary)
	req.RemoteAddr = "192.0.2.10:51234"
	return req
}
