package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/shelf"
	shelfhttp "github.com/sagarc03/shelf/http"
)

func TestHandler_GetFile(t *testing.T) {
	dir, router := newTestServer(t)
	p := writeFile(t, dir, "main.go", "package main\n")

	modTime := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(p, modTime, modTime))

	req := httptest.NewRequest("GET", "/main.go", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "13", rec.Header().Get("Content-Length"))
	assert.Equal(t, "Fri, 01 Mar 2024 12:30:00 GMT", rec.Header().Get("Last-Modified"))
	assert.Equal(t, "package main\n", rec.Body.String())
}

func TestHandler_GetFile_UnknownExtension(t *testing.T) {
	dir, router := newTestServer(t)
	writeFile(t, dir, "blob.zzqx", "\x00\x01")

	req := httptest.NewRequest("GET", "/blob.zzqx", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
}

func TestHandler_GetFile_PercentEncoded(t *testing.T) {
	dir, router := newTestServer(t)
	writeFile(t, dir, "my docs/a b.txt", "spaced")

	req := httptest.NewRequest("GET", "/my%20docs/a%20b.txt?download=1", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "spaced", rec.Body.String())
}

func TestHandler_Head(t *testing.T) {
	dir, router := newTestServer(t)
	writeFile(t, dir, "notes.txt", "hello world")

	req := httptest.NewRequest("HEAD", "/notes.txt", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "11", rec.Header().Get("Content-Length"))
	assert.NotEmpty(t, rec.Header().Get("Last-Modified"))
	assert.Empty(t, rec.Body.String())
}

func TestHandler_Get_NotFound(t *testing.T) {
	_, router := newTestServer(t)

	req := httptest.NewRequest("GET", "/missing.txt", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "file not found")
}

func TestHandler_Get_TraversalStaysInRoot(t *testing.T) {
	dir, router := newTestServer(t)
	parent := filepath.Dir(dir)
	writeFile(t, parent, "secret.txt", "top secret")

	paths := []string{
		"/../secret.txt",
		"/%2e%2e/secret.txt",
		"/..%2fsecret.txt",
		"/a/../../secret.txt",
		"/" + strings.ReplaceAll(filepath.ToSlash(filepath.Join(parent, "secret.txt")), ":", "%3A"),
	}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			req := httptest.NewRequest("GET", p, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.NotContains(t, rec.Body.String(), "top secret")
		})
	}
}

func TestHandler_Get_DirectoryRedirect(t *testing.T) {
	dir, router := newTestServer(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "docs"), 0o755))

	tests := []struct {
		target   string
		location string
	}{
		{target: "/docs", location: "/docs/"},
		{target: "/docs?sort=name", location: "/docs/?sort=name"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusMovedPermanently, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestHandler_Get_IndexFile(t *testing.T) {
	dir, router := newTestServer(t)
	content := "<h1>welcome</h1>\n"
	writeFile(t, dir, "site/index.html", content)
	writeFile(t, dir, "site/index.htm", "older")

	req := httptest.NewRequest("GET", "/site/", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, content, rec.Body.String())
	assert.Equal(t, "17", rec.Header().Get("Content-Length"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestHandler_Get_IndexHtmFallback(t *testing.T) {
	dir, router := newTestServer(t)
	writeFile(t, dir, "index.htm", "htm page")

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "htm page", rec.Body.String())
}

func TestHandler_Get_Listing(t *testing.T) {
	dir, router := newTestServer(t)
	writeFile(t, dir, "banana.txt", "")
	writeFile(t, dir, "Apple.txt", "")
	writeFile(t, dir, "cherry/pit.txt", "")
	writeFile(t, dir, `<b>&'"odd.txt`, "")
	writeFile(t, dir, "a:b.txt", "")
	writeFile(t, dir, "two words.txt", "")
	require.NoError(t, os.Symlink(filepath.Join(dir, "cherry"), filepath.Join(dir, "link")))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "Directory listing for /")
	assert.Contains(t, body, `enctype="multipart/form-data"`)
	assert.Contains(t, body, `method="post"`)
	assert.Contains(t, body, `name="file"`)

	assert.Contains(t, body, `&lt;b&gt;&amp;&#39;&#34;odd.txt`)
	assert.NotContains(t, body, "<b>&")
	assert.Contains(t, body, `href="./a:b.txt"`)
	assert.Contains(t, body, `href="two%20words.txt"`)
	assert.Contains(t, body, `href="cherry/">cherry/</a>`)
	assert.Contains(t, body, `href="link/">link@</a>`)

	order := []string{"&lt;b&gt;", "a:b.txt", "Apple.txt", "banana.txt", "cherry/", "link@", "two words.txt"}
	last := -1
	for _, name := range order {
		idx := strings.Index(body, ">"+name)
		require.NotEqual(t, -1, idx, "missing %q", name)
		assert.Greater(t, idx, last, "%q out of order", name)
		last = idx
	}
}

func TestHandler_Get_ListingFailure(t *testing.T) {
	service := new(MockService)
	handler := shelfhttp.NewHandler(&shelfhttp.HandlerConfig{}, service)

	service.On("Resolve", "/locked/").Return("/srv/locked")
	service.On("Stat", mock.Anything, "/srv/locked").Return(fakeInfo{name: "locked", dir: true}, nil)
	service.On("IndexFile", mock.Anything, "/srv/locked").Return("", false)
	service.On("ReadDir", mock.Anything, "/srv/locked").Return(nil, shelf.ErrPermission)

	req := httptest.NewRequest("GET", "/locked/", nil)
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not enough permissions to list directory")
	service.AssertExpectations(t)
}

func TestHandler_Get_OpenFailure(t *testing.T) {
	service := new(MockService)
	handler := shelfhttp.NewHandler(&shelfhttp.HandlerConfig{}, service)

	service.On("Resolve", "/a.txt").Return("/srv/a.txt")
	service.On("Stat", mock.Anything, "/srv/a.txt").Return(fakeInfo{name: "a.txt"}, nil)
	service.On("Open", mock.Anything, "/srv/a.txt").Return(nil, errors.New("disk on fire"))

	req := httptest.NewRequest("GET", "/a.txt", nil)
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "file not found")
	service.AssertExpectations(t)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	_, router := newTestServer(t)

	for _, method := range []string{"PUT", "DELETE", "PATCH"} {
		req := httptest.NewRequest(method, "/a.txt", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
	}
}

func TestHandler_Upload_Success(t *testing.T) {
	dir, router := newTestServer(t)

	req := newUploadRequest(t, "/", multipartBody("a.txt", "hello"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `class="success"`)
	assert.NotContains(t, body, `class="failure"`)
	assert.Contains(t, body, `<code class="path">/a.txt</code>`)
	assert.Contains(t, body, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")

	got, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestHandler_Upload_IntoSubdirectory(t *testing.T) {
	dir, router := newTestServer(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "inbox"), 0o755))

	req := newUploadRequest(t, "/inbox/", multipartBody("report.csv", "a,b\r\n1,2"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/inbox/report.csv")

	got, err := os.ReadFile(filepath.Join(dir, "inbox", "report.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\r\n1,2", string(got))
}

func TestHandler_Upload_Failures(t *testing.T) {
	body := multipartBody("a.txt", "hello")

	tests := []struct {
		name   string
		req    func(t *testing.T) *http.Request
		reason string
	}{
		{
			name: "missing content type",
			req: func(t *testing.T) *http.Request {
				r := newUploadRequest(t, "/", body)
				r.Header.Del("Content-Type")
				return r
			},
			reason: "missing boundary",
		},
		{
			name: "truncated body",
			req: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "/", body[:len(body)-len(testBoundary)-10])
			},
			reason: "unexpected end of data",
		},
		{
			name: "no leading boundary",
			req: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "/", "garbage\r\n"+body)
			},
			reason: "content does not begin with boundary",
		},
		{
			name: "missing directory",
			req: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "/nowhere/", body)
			},
			reason: "cannot create file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, router := newTestServer(t)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, tt.req(t))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `class="failure"`)
			assert.Contains(t, rec.Body.String(), tt.reason)

			_, err := os.Stat(filepath.Join(dir, "a.txt"))
			assert.True(t, os.IsNotExist(err), "no file should be written")
		})
	}
}

func TestHandler_Upload_BackLink(t *testing.T) {
	tests := []struct {
		name     string
		referer  string
		contains string
		absent   string
	}{
		{name: "referer", referer: "http://shelf.test/docs/", contains: `href="http://shelf.test/docs/"`},
		{name: "no referer", referer: "", contains: `href="/docs/"`},
		{name: "markup", referer: `/"><script>alert(1)</script>`, absent: "<script>alert(1)</script>"},
		{name: "script scheme", referer: "javascript:alert(1)", absent: `href="javascript:`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			handler := shelfhttp.NewHandler(&shelfhttp.HandlerConfig{}, service)

			service.On("Upload", mock.Anything, mock.Anything).Return(shelf.UploadOutcome{Err: shelf.ErrNoFilename})

			req := newUploadRequest(t, "/docs/", "")
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			rec := httptest.NewRecorder()

			handler.Router().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "Go Back")
			if tt.contains != "" {
				assert.Contains(t, rec.Body.String(), tt.contains)
			}
			if tt.absent != "" {
				assert.NotContains(t, rec.Body.String(), tt.absent)
			}
		})
	}
}

func TestHandler_Upload_PassesRequest(t *testing.T) {
	service := new(MockService)
	handler := shelfhttp.NewHandler(&shelfhttp.HandlerConfig{}, service)

	body := multipartBody("a.txt", "hello")

	service.On("Root").Return("/srv")
	service.On("Upload", mock.Anything, mock.MatchedBy(func(r shelf.UploadRequest) bool {
		return r.URLPath == "/my%20dir/" &&
			r.ContentType == "multipart/form-data; boundary="+testBoundary &&
			r.ContentLength == int64(len(body)) &&
			r.RemoteAddr == "192.0.2.10:51234"
	})).Return(shelf.UploadOutcome{Path: "/srv/my dir/a.txt", Filename: "a.txt", Size: 5})

	req := newUploadRequest(t, "/my%20dir/", body)
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/my dir/a.txt")
	service.AssertExpectations(t)
}

func TestHandler_CORS(t *testing.T) {
	service := new(MockService)
	handler := shelfhttp.NewHandler(&shelfhttp.HandlerConfig{
		CORS: shelfhttp.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://example.com"},
			AllowedMethods: []string{"GET", "HEAD", "POST"},
		},
	}, service)

	req := httptest.NewRequest("OPTIONS", "/a.txt", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
