package formdata

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// maxLineLength caps a single buffered line. Longer lines are returned in
// pieces so memory stays bounded for newline-free binary content.
const maxLineLength = 64 << 10

// lineReader reads CRLF or LF terminated lines and keeps track of how many
// body bytes are left according to Content-Length.
type lineReader struct {
	br *bufio.Reader
	// remaining is -1 when the body length is unknown.
	remaining int64
}

func newLineReader(r io.Reader, contentLength int64) *lineReader {
	if contentLength < 0 {
		contentLength = -1
	}
	return &lineReader{
		br:        bufio.NewReaderSize(r, maxLineLength),
		remaining: contentLength,
	}
}

// readLine appends the next line, terminator included, to dst[:0] and
// returns it. It returns io.EOF once the counter is exhausted or the
// underlying reader has no more data.
func (l *lineReader) readLine(dst []byte) ([]byte, error) {
	if l.remaining == 0 {
		return nil, io.EOF
	}

	line, err := l.br.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		err = nil
		// A CR at the end of a capped chunk may start a CRLF terminator;
		// keep it for the next line.
		if len(line) > 1 && line[len(line)-1] == '\r' {
			if uerr := l.br.UnreadByte(); uerr == nil {
				line = line[:len(line)-1]
			}
		}
	}
	if err != nil && (len(line) == 0 || !errors.Is(err, io.EOF)) {
		return nil, err
	}

	if l.remaining > 0 {
		l.remaining -= int64(len(line))
		if l.remaining < 0 {
			l.remaining = 0
		}
	}

	return append(dst[:0], line...), nil
}

// trimNewline strips a single trailing LF or CRLF.
func trimNewline(line []byte) []byte {
	if !bytes.HasSuffix(line, []byte("\n")) {
		return line
	}
	line = line[:len(line)-1]
	return bytes.TrimSuffix(line, []byte("\r"))
}
