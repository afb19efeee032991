package formdata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// FileField is the form field name the reader accepts.
const FileField = "file"

// maxHeaderLines bounds the part header block.
const maxHeaderLines = 32

// FileHeader describes the file part of the body.
type FileHeader struct {
	Filename    string
	ContentType string
}

// Reader streams the single file part of a multipart/form-data body.
type Reader struct {
	lines    *lineReader
	boundary []byte
	slots    [2][]byte
}

// NewReader returns a Reader for a body with the given Content-Type and
// Content-Length. A negative contentLength means the length is unknown and
// only EOF ends the body.
func NewReader(contentType string, contentLength int64, body io.Reader) (*Reader, error) {
	boundary, err := parseBoundary(contentType)
	if err != nil {
		return nil, err
	}

	return &Reader{
		lines:    newLineReader(body, contentLength),
		boundary: boundary,
	}, nil
}

// Boundary returns the boundary token taken from the Content-Type.
func (r *Reader) Boundary() []byte {
	return r.boundary
}

// Remaining returns the number of body bytes not yet consumed, or -1 when
// the body length is unknown.
func (r *Reader) Remaining() int64 {
	return r.lines.remaining
}

// ReadHeader consumes the leading boundary line and the part headers up to
// the blank separator line. The part must carry a Content-Disposition with
// name="file" and a filename parameter.
func (r *Reader) ReadHeader() (FileHeader, error) {
	line, err := r.lines.readLine(r.slots[0])
	if err != nil {
		if isEnd(err) {
			return FileHeader{}, ErrNoLeadingBoundary
		}
		return FileHeader{}, fmt.Errorf("read boundary: %w", err)
	}
	if !bytes.Contains(line, r.boundary) {
		return FileHeader{}, ErrNoLeadingBoundary
	}

	var hdr FileHeader
	found := false

	for i := 0; ; i++ {
		if i == maxHeaderLines {
			return FileHeader{}, ErrNoFilename
		}

		line, err = r.lines.readLine(line)
		if err != nil {
			if !isEnd(err) {
				return FileHeader{}, fmt.Errorf("read part header: %w", err)
			}
			if !found {
				return FileHeader{}, ErrNoFilename
			}
			return FileHeader{}, ErrUnexpectedEnd
		}

		text := string(trimNewline(line))
		if text == "" {
			break
		}

		name, value, ok := parseHeaderLine(text)
		if !ok {
			continue
		}

		switch name {
		case "content-disposition":
			if found {
				continue
			}
			_, params := parseDisposition(value)
			filename, hasFilename := params["filename"]
			if params["name"] != FileField || !hasFilename {
				return FileHeader{}, ErrNoFilename
			}
			hdr.Filename = filename
			found = true
		case "content-type":
			hdr.ContentType = value
		}
	}

	r.slots[0] = line
	if !found {
		return FileHeader{}, ErrNoFilename
	}

	return hdr, nil
}

// WriteTo copies the part body to w, holding back one line so the line
// terminator before the closing boundary is not written. It must be called
// after ReadHeader.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	var written int64

	prev, err := r.lines.readLine(r.slots[0])
	if err != nil {
		return 0, r.endErr(err)
	}
	spare := r.slots[1]

	for {
		cur, err := r.lines.readLine(spare)
		if err != nil {
			return written, r.endErr(err)
		}

		if bytes.Contains(cur, r.boundary) {
			n, werr := w.Write(trimNewline(prev))
			written += int64(n)
			if werr != nil {
				return written, fmt.Errorf("%w: %w", ErrWrite, werr)
			}
			return written, nil
		}

		n, werr := w.Write(prev)
		written += int64(n)
		if werr != nil {
			return written, fmt.Errorf("%w: %w", ErrWrite, werr)
		}

		prev, spare = cur, prev
	}
}

func (r *Reader) endErr(err error) error {
	if isEnd(err) {
		return ErrUnexpectedEnd
	}
	return fmt.Errorf("read part body: %w", err)
}

func isEnd(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
