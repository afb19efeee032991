// Package http serves a shelf directory tree over HTTP.
//
// # Routes
//
//   - GET, HEAD /*: serve a file, an index file or a directory listing
//   - POST /*: accept a single-file multipart/form-data upload into the
//     directory the path names
//
// A directory requested without a trailing slash is redirected (301) to the
// same path with one. Directory listings carry an upload form and link every
// entry relative to the listed directory. Uploads always answer 200 with a
// page reporting success or the failure reason; the "Go Back" link uses the
// Referer header, escaped, or the request path when no Referer was sent.
//
// # Usage
//
//	storage := filesystem.NewFileStorage(root)
//	service, err := shelf.NewService(storage, journal, shelf.Config{Root: dir})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	handler := http.NewHandler(&http.HandlerConfig{}, service)
//	nethttp.ListenAndServe(":8000", handler.Router())
//
// # Middleware
//
// Router installs chi's RequestID, RealIP and Recoverer middleware, the
// RequestLogger slog access log and, when enabled, CORS.
package http
