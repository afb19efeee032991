package shelf

import "errors"

var (
	// ErrNotFound is returned when a path does not exist
	ErrNotFound = errors.New("not found")
	// ErrPermission is returned when the process may not access a path
	ErrPermission = errors.New("permission denied")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// Upload failures. The message of each error is the reason shown to the user.
var (
	ErrMissingBoundary   = errors.New("missing boundary")
	ErrNoLeadingBoundary = errors.New("content does not begin with boundary")
	ErrNoFilename        = errors.New("can't determine file name")
	ErrInvalidFilename   = errors.New("invalid file name")
	ErrCreateFile        = errors.New("cannot create file")
	ErrWriteFile         = errors.New("cannot write file")
	ErrTruncated         = errors.New("unexpected end of data")
	ErrTooLarge          = errors.New("upload exceeds size limit")
)
