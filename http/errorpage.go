package http

import (
	"net/http"
	"strconv"
)

const (
	msgFileNotFound = "file not found"
	msgCannotList   = "not enough permissions to list directory"
)

// WriteError writes an HTML error page with the given status code and message.
func WriteError(w http.ResponseWriter, r *http.Request, code int, message string) {
	render(w, r, code, "error", errorPage{
		Status:  strconv.Itoa(code) + " " + http.StatusText(code),
		Message: message,
	})
}
