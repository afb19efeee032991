package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sagarc03/shelf"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type listingEntry struct {
	Name string
	Href string
}

type listingPage struct {
	Path    string
	Entries []listingEntry
}

type uploadPage struct {
	OK     bool
	Path   string
	Size   int64
	ETag   string
	Reason string
	Back   string
}

type errorPage struct {
	Status  string
	Message string
}

// entryHref percent-encodes the link target of e relative to the listed
// directory. Names with a colon get a "./" prefix so they are not read as a
// URL scheme.
func entryHref(e shelf.DirEntry) string {
	href := url.PathEscape(e.Name)
	if strings.HasSuffix(e.LinkName(), "/") {
		href += "/"
	}
	if strings.Contains(href, ":") {
		href = "./" + href
	}
	return href
}

func newListingPage(displayPath string, entries []shelf.DirEntry) listingPage {
	page := listingPage{
		Path:    displayPath,
		Entries: make([]listingEntry, 0, len(entries)),
	}
	for _, e := range entries {
		page.Entries = append(page.Entries, listingEntry{
			Name: e.DisplayName(),
			Href: entryHref(e),
		})
	}
	return page
}

// render executes the named page into a buffer first so a template failure
// never leaves a half written response.
func render(w http.ResponseWriter, r *http.Request, code int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(r.Context(), "failed to render page", "page", name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(code)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := buf.WriteTo(w); err != nil {
		slog.DebugContext(r.Context(), "failed to write page", "page", name, "err", err)
	}
}
