package formdata

import "errors"

var (
	// ErrMissingBoundary is returned when the Content-Type carries no boundary.
	ErrMissingBoundary = errors.New("missing boundary")
	// ErrNoLeadingBoundary is returned when the first body line is not a boundary line.
	ErrNoLeadingBoundary = errors.New("content does not begin with boundary")
	// ErrNoFilename is returned when the part is not a file field named "file".
	ErrNoFilename = errors.New("can't determine file name")
	// ErrUnexpectedEnd is returned when the body ends before the closing boundary.
	ErrUnexpectedEnd = errors.New("unexpected end of data")
	// ErrWrite wraps errors returned by the destination writer.
	ErrWrite = errors.New("write part body")
)
