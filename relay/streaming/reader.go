// Package streaming relays an upstream server-sent-events body to the
// caller, rewrapping each line through the resolved adaptor's
// ParseStreamChunk (spec.md §4.1, §8 property 6).
package streaming

import (
	"bufio"
	"io"
)

// LineIterator yields newline-delimited lines from an upstream streaming
// response body, with trailing CR/LF stripped and blank lines dropped
// (spec.md §4.3).
type LineIterator struct {
	scanner *bufio.Scanner
}

// NewLineIterator wraps body in a LineIterator. The caller remains
// responsible for closing body once iteration ends.
func NewLineIterator(body io.Reader) *LineIterator {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &LineIterator{scanner: scanner}
}

// Next returns the next non-blank line, or ok=false once the stream is
// exhausted or errored.
func (it *LineIterator) Next() (line string, ok bool) {
	for it.scanner.Scan() {
		text := it.scanner.Text()
		if text == "" {
			continue
		}
		return text, true
	}
	return "", false
}

// Err returns any error encountered reading the underlying body.
func (it *LineIterator) Err() error {
	return it.scanner.Err()
}
