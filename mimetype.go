package shelf

import (
	"mime"
	"path/filepath"
	"strings"
)

const defaultContentType = "application/octet-stream"

// ContentTypes guesses the Content-Type of a file from its extension.
type ContentTypes struct {
	plain map[string]struct{}
}

// NewContentTypes returns a ContentTypes that serves every extension in
// plainText as text/plain. Extensions may be given with or without the
// leading dot and are matched case-insensitively.
func NewContentTypes(plainText []string) ContentTypes {
	plain := make(map[string]struct{}, len(plainText))
	for _, ext := range plainText {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		plain[ext] = struct{}{}
	}
	return ContentTypes{plain: plain}
}

// For returns the Content-Type for name, falling back to
// application/octet-stream for unknown extensions.
func (c ContentTypes) For(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return defaultContentType
	}

	if _, ok := c.plain[ext]; ok {
		return "text/plain"
	}

	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}

	return defaultContentType
}
