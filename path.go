package shelf

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolvePath maps a request URL path onto a filesystem path under root.
//
// The query string and fragment are dropped and the rest is percent-decoded;
// malformed escapes are kept literally. Each "/" separated segment is then
// sanitized on its own: empty, "." and ".." segments are discarded, drive
// prefixes are stripped and only the final path component is kept. The
// result therefore never leaves root, whatever the request contains.
func ResolvePath(root, urlPath string) string {
	p := urlPath
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = unescapeLenient(p)

	resolved := root
	for _, seg := range strings.Split(p, "/") {
		if isDotSegment(seg) {
			continue
		}
		_, seg = filepath.Split(stripVolume(seg))
		if isDotSegment(seg) {
			continue
		}
		resolved = filepath.Join(resolved, seg)
	}

	return resolved
}

// CleanFilename applies policy to a client supplied upload filename and
// returns the bare name to create. Empty names, "." and ".." and names with
// NUL bytes are rejected under every policy.
func CleanFilename(name string, policy FilenamePolicy) (string, error) {
	if strings.IndexByte(name, 0) >= 0 {
		return "", fmt.Errorf("clean filename %q: %w", name, ErrInvalidFilename)
	}

	switch policy {
	case PolicyReject:
		if strings.ContainsAny(name, `/\`) || stripVolume(name) != name {
			return "", fmt.Errorf("clean filename %q: %w", name, ErrInvalidFilename)
		}
	case PolicySanitize, "":
		name = stripVolume(strings.ReplaceAll(name, `\`, "/"))
		if i := strings.LastIndexByte(name, '/'); i >= 0 {
			name = name[i+1:]
		}
	default:
		return "", fmt.Errorf("clean filename: %w: unknown policy %q", ErrInvalidInput, policy)
	}

	if isDotSegment(name) {
		return "", fmt.Errorf("clean filename %q: %w", name, ErrInvalidFilename)
	}

	return name, nil
}

// unescapeLenient decodes every valid %XX sequence in s and leaves the
// others untouched, so one bad escape does not disable decoding of the rest.
func unescapeLenient(s string) string {
	if strings.IndexByte(s, '%') < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func isDotSegment(s string) bool {
	return s == "" || s == "." || s == ".."
}

// stripVolume removes a volume name or a DOS drive letter prefix such as "C:".
func stripVolume(s string) string {
	if v := filepath.VolumeName(s); v != "" {
		return s[len(v):]
	}
	if len(s) >= 2 && s[1] == ':' && isASCIILetter(s[0]) {
		return s[2:]
	}
	return s
}

func isASCIILetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
