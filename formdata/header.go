package formdata

import (
	"mime"
	"strings"
)

// parseBoundary extracts the boundary parameter from a Content-Type value.
func parseBoundary(contentType string) ([]byte, error) {
	if strings.TrimSpace(contentType) == "" {
		return nil, ErrMissingBoundary
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, ErrMissingBoundary
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, ErrMissingBoundary
	}

	return []byte(boundary), nil
}

// parseHeaderLine splits a "Name: value" part header line. The name is
// lower-cased.
func parseHeaderLine(line string) (name, value string, ok bool) {
	name, value, ok = strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(value), true
}

// parseDisposition tokenizes a Content-Disposition value into its type and
// parameters. Parameter names are lower-cased and the first occurrence wins.
//
// Quoted values only honour \" and \\ escapes; any other backslash is kept,
// so Windows paths sent by some clients survive intact.
func parseDisposition(v string) (string, map[string]string) {
	typ, rest, _ := strings.Cut(v, ";")
	params := make(map[string]string)

	for {
		rest = strings.TrimLeft(rest, " \t;")
		if rest == "" {
			break
		}

		key, after, ok := strings.Cut(rest, "=")
		if !ok {
			break
		}
		key = strings.ToLower(strings.TrimSpace(key))
		after = strings.TrimLeft(after, " \t")

		var val string
		if strings.HasPrefix(after, `"`) {
			val, rest, ok = readQuoted(after[1:])
			if !ok {
				break
			}
		} else {
			val, rest, _ = strings.Cut(after, ";")
			val = strings.TrimSpace(val)
		}

		if _, seen := params[key]; !seen && key != "" {
			params[key] = val
		}
	}

	return strings.ToLower(strings.TrimSpace(typ)), params
}

// readQuoted reads a quoted-string body up to the closing quote. s starts
// just after the opening quote.
func readQuoted(s string) (val, rest string, ok bool) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			return b.String(), s[i+1:], true
		case c == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\'):
			i++
			b.WriteByte(s[i])
		default:
			b.WriteByte(c)
		}
	}
	return "", "", false
}
