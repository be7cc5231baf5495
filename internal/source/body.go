package source

// body.go normalizes a downloaded CSV body before tokenizing:
//
//   - the size is capped so a misconfigured URL cannot exhaust memory
//   - a UTF-8 BOM (0xEF 0xBB 0xBF) added by some exports is dropped
//   - invalid UTF-8 sequences are replaced with '?'
//
// The whole body is buffered: the rejection check looks at its start and the
// tokenizer needs byte offsets to recover blank lines.

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// DefaultMaxBodyBytes caps a single response body (10MB).
const DefaultMaxBodyBytes int64 = 10 << 20

// RejectionPrefix starts every application-level error body of the script endpoint.
const RejectionPrefix = "Error:"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readBody reads at most limit bytes from r and normalizes them.
func readBody(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("body exceeds %d bytes", limit)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		data = bytes.ToValidUTF8(data, []byte("?"))
	}
	return data, nil
}

// rejection returns the upstream error message if body is a rejection.
func rejection(body []byte) (string, bool) {
	text := strings.TrimSpace(string(body))
	if !strings.HasPrefix(text, RejectionPrefix) {
		return "", false
	}
	// first line only; the script sometimes appends a stack trace
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
	}
	return text, true
}
