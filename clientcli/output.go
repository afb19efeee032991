package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sagarc03/shelf"
)

// Formatter formats results for output.
type Formatter interface {
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatHistory(w io.Writer, result shelf.ListResult) error
	FormatError(w io.Writer, err error) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatUpload formats upload results as human-readable text.
func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Uploaded: %s (%s)\n", r.RemotePath, formatSize(r.Size))
			_, _ = fmt.Fprintf(w, "  ETag: %s\n", r.ETag)
		}
	}
	return nil
}

// FormatDownload formats download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if !f.Quiet && result.LocalPath != "-" {
		_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.RemotePath, result.LocalPath, formatSize(result.Size))
	}
	return nil
}

// FormatHistory formats journal records as a human-readable table.
func (f *HumanFormatter) FormatHistory(w io.Writer, result shelf.ListResult) error {
	if len(result.Items) == 0 {
		_, _ = fmt.Fprintln(w, "No uploads recorded")
		return nil
	}

	// Calculate column widths
	maxPathLen := 4 // "PATH"
	for i := range result.Items {
		if len(result.Items[i].Path) > maxPathLen {
			maxPathLen = len(result.Items[i].Path)
		}
	}
	if maxPathLen > 60 {
		maxPathLen = 60
	}

	// Print header
	_, _ = fmt.Fprintf(w, "%-19s  %-6s  %10s  %-*s  %s\n", "TIME", "STATUS", "SIZE", maxPathLen, "PATH", "DETAIL")
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
		strings.Repeat("-", 19), strings.Repeat("-", 6), strings.Repeat("-", 10), strings.Repeat("-", maxPathLen), strings.Repeat("-", 6))

	// Print items
	failed := 0
	for i := range result.Items {
		item := &result.Items[i]
		path := item.Path
		if len(path) > maxPathLen {
			path = path[:maxPathLen-3] + "..."
		}

		status, detail := "ok", item.RemoteAddr
		if !item.Success {
			status, detail = "failed", item.Reason
			failed++
		}

		_, _ = fmt.Fprintf(w, "%-19s  %-6s  %10s  %-*s  %s\n",
			item.CreatedAt.Local().Format(time.DateTime),
			status,
			formatSize(item.Size),
			maxPathLen,
			path,
			detail,
		)
	}

	// Print summary
	_, _ = fmt.Fprintf(w, "\n%d upload(s), %d failed\n", len(result.Items), failed)

	if result.NextCursor != "" {
		_, _ = fmt.Fprintf(w, "Next page: use --cursor %q\n", result.NextCursor)
	}

	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatUpload formats upload results as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		LocalPath  string `json:"local_path"`
		RemotePath string `json:"remote_path,omitempty"`
		ETag       string `json:"etag,omitempty"`
		Size       int64  `json:"size_bytes,omitempty"`
		Error      string `json:"error,omitempty"`
	}

	output := make([]jsonResult, len(results))
	for i := range results {
		r := &results[i]
		jr := jsonResult{LocalPath: r.LocalPath}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		} else {
			jr.RemotePath = r.RemotePath
			jr.ETag = r.ETag
			jr.Size = r.Size
		}
		output[i] = jr
	}

	return writeJSON(w, output)
}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if result.LocalPath == "-" {
		return nil
	}
	return writeJSON(w, result)
}

// FormatHistory formats journal records as JSON.
func (f *JSONFormatter) FormatHistory(w io.Writer, result shelf.ListResult) error {
	if result.Items == nil {
		result.Items = []shelf.UploadRecord{}
	}
	return writeJSON(w, result)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
