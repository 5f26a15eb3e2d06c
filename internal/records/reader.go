package records

import (
	"bufio"
	"bytes"
	"io"
)

// MaxLineSize bounds a single NDJSON record. Review bodies in the Yelp
// dataset stay well under this.
const MaxLineSize = 16 * 1024 * 1024

// LineReader yields one JSON document per non-blank line.
type LineReader struct {
	scanner *bufio.Scanner
	line    int
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &LineReader{scanner: s}
}

// Next returns the next non-blank line. The slice is only valid until the
// following call.
func (lr *LineReader) Next() ([]byte, bool) {
	for lr.scanner.Scan() {
		lr.line++
		b := bytes.TrimSpace(lr.scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		return b, true
	}
	return nil, false
}

// Line is the 1-based number of the line last returned by Next.
func (lr *LineReader) Line() int {
	return lr.line
}

// Err reports a read error, including a line longer than MaxLineSize.
func (lr *LineReader) Err() error {
	return lr.scanner.Err()
}
