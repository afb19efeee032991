// Package shelf provides a minimal file server core: static files are served
// from a directory tree and single files are uploaded into it through
// multipart/form-data POST requests.
//
// Shelf keeps no state across requests besides its Config. Every request path
// is mapped onto the configured root with ResolvePath, which sanitizes each
// segment on its own so the result can never leave the root.
//
// # Key Components
//
//   - Service: combines file storage, the upload parser and the upload journal
//   - FileStorage: interface for sandboxed file access (see the filesystem package)
//   - Journal: interface for recording upload outcomes (see the database package)
//   - ResolvePath: maps a URL path to a filesystem path under the root
//   - ContentTypes: guesses a Content-Type from a file extension
//
// # Uploads
//
// Service.Upload streams the body through the formdata package straight into
// a pending file, so arbitrarily large uploads only ever hold one line in
// memory. The result is an UploadOutcome, which is either a success carrying
// the written path or a failure carrying a human readable reason:
//
//	outcome := service.Upload(ctx, shelf.UploadRequest{
//	    URLPath:       r.URL.Path,
//	    ContentType:   r.Header.Get("Content-Type"),
//	    ContentLength: r.ContentLength,
//	    Body:          r.Body,
//	})
//	if !outcome.OK() {
//	    log.Println(outcome.Reason())
//	}
//
// See the http package for the request dispatcher and HTML rendering.
package shelf
