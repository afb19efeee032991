// Package formdata reads a single uploaded file out of a multipart/form-data
// request body without buffering the body in memory.
//
// The reader is line oriented. It consumes the leading boundary line, the
// part headers up to the blank separator line, and then streams the part
// body to a writer while holding back exactly one line. When a line
// containing the boundary is seen, the held line is written without its
// trailing CRLF or LF and the copy ends.
//
// A remaining-byte counter initialised from Content-Length bounds every read,
// so a body that ends before the closing boundary is reported as
// ErrUnexpectedEnd instead of blocking.
//
// # Usage
//
//	r, err := formdata.NewReader(req.Header.Get("Content-Type"), req.ContentLength, req.Body)
//	if err != nil {
//	    return err // ErrMissingBoundary
//	}
//
//	hdr, err := r.ReadHeader()
//	if err != nil {
//	    return err // ErrNoLeadingBoundary, ErrNoFilename, ErrUnexpectedEnd
//	}
//
//	n, err := r.WriteTo(dst)
//
// Only one file part is supported. Additional fields or files are not
// parsed.
package formdata
