package bodyenc

import (
	"bytes"
	"fmt"
	"strings"
)

// PartScanner walks the parts of a multipart/form-data body. Like
// bufio.Scanner, successive calls to Scan advance through the body, with the
// current part available from Part; after Scan returns false, Err reports
// whether scanning stopped at the end of the body or on a malformed part.
//
// A scanner is single-pass over one body; create a new scanner to read the
// body again.
type PartScanner struct {
	rest  []byte
	delim []byte

	part    FormPart
	index   int
	started bool
	done    bool
	err     error
}

// NewPartScanner returns a PartScanner over body delimited by boundary. The
// boundary is the bare token from the Content-Type header; the scanner adds
// the leading "--" of the delimiter lines itself.
func NewPartScanner(body []byte, boundary string) *PartScanner {
	return &PartScanner{rest: body, delim: []byte("--" + boundary)}
}

// Scan advances to the next part, returning false when the terminal marker
// or the end of the body is reached, or when a part fails to parse. A body
// containing no boundary at all scans zero parts; that is the valid shape of
// an empty multipart body, not an error.
func (s *PartScanner) Scan() bool {
	if s.done || s.err != nil {
		return false
	}

	if !s.started {
		// Everything before the first boundary is preamble.
		i := bytes.Index(s.rest, s.delim)
		if i < 0 {
			s.done = true
			return false
		}
		s.rest = s.rest[i+len(s.delim):]
		s.started = true
	}

	for {
		// rest begins immediately after a delimiter occurrence. A "--"
		// here is the terminal marker: the rest of the body is epilogue.
		if bytes.HasPrefix(s.rest, []byte("--")) {
			s.done = true
			return false
		}

		var segment []byte
		if i := bytes.Index(s.rest, s.delim); i >= 0 {
			segment, s.rest = s.rest[:i], s.rest[i+len(s.delim):]
		} else {
			segment, s.rest = s.rest, nil
			s.done = true
		}

		if isBlank(segment) {
			if s.done {
				return false
			}
			continue
		}

		part, err := parsePart(segment)
		if err != nil {
			s.err = fmt.Errorf("bodyenc: part %d: %w", s.index, err)
			return false
		}
		s.part = part
		s.index++
		return true
	}
}

// Part returns the part read by the last successful call to Scan.
func (s *PartScanner) Part() FormPart {
	return s.part
}

// Err returns the first error encountered while scanning, if any.
func (s *PartScanner) Err() error {
	return s.err
}

// ParseMultipart decodes a complete multipart/form-data body into its parts,
// in body order. The boundary is obtained from the request's Content-Type
// via ExtractBoundary. A body with no boundaries yields zero parts and no
// error.
func ParseMultipart(body []byte, boundary string) ([]FormPart, error) {
	var parts []FormPart
	scanner := NewPartScanner(body, boundary)
	for scanner.Scan() {
		parts = append(parts, scanner.Part())
	}
	return parts, scanner.Err()
}

// parsePart decodes one boundary-delimited segment: the line break ending
// the boundary line, a header block, a blank line, and the payload with the
// writer's trailing line break. Works with CRLF or bare LF line endings, so
// bodies normalised in transit still parse.
func parsePart(segment []byte) (FormPart, error) {
	segment = trimLeadingBreak(segment)
	headers, data := splitHeadersData(segment)

	var part FormPart
	part.Data = trimTrailingBreak(data)

	var disposed bool
	for _, line := range headers {
		switch {
		case bytes.HasPrefix(line, []byte("Content-Disposition")):
			cd, err := ParseContentDisposition(string(line))
			if err != nil {
				return FormPart{}, err
			}
			part.Name = cd.Name
			part.Filename = cd.Filename
			disposed = true
		case bytes.HasPrefix(line, []byte("Content-Type:")):
			value := line[len("Content-Type:"):]
			part.ContentType = strings.TrimSpace(string(value))
		}
	}
	if !disposed {
		return FormPart{}, ErrInvalidContentDisposition
	}
	return part, nil
}

// splitHeadersData splits a part segment at its first blank line. The data
// block is returned verbatim, internal blank lines included. A segment with
// no blank line is all headers.
func splitHeadersData(segment []byte) (headers [][]byte, data []byte) {
	rest := segment
	for len(rest) > 0 {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			headers = append(headers, trimCR(rest))
			break
		}
		line := trimCR(rest[:i])
		rest = rest[i+1:]
		if len(line) == 0 {
			return headers, rest
		}
		headers = append(headers, line)
	}
	return headers, nil
}

func trimCR(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}

// trimLeadingBreak removes the one line break left over from the boundary
// line preceding the segment.
func trimLeadingBreak(b []byte) []byte {
	if bytes.HasPrefix(b, []byte("\r\n")) {
		return b[2:]
	}
	if bytes.HasPrefix(b, []byte("\n")) {
		return b[1:]
	}
	return b
}

// trimTrailingBreak removes the one line break the writer emits between the
// payload and the next boundary. Anything before it belongs to the payload.
func trimTrailingBreak(b []byte) []byte {
	if bytes.HasSuffix(b, []byte("\r\n")) {
		return b[:len(b)-2]
	}
	if bytes.HasSuffix(b, []byte("\n")) {
		return b[:len(b)-1]
	}
	return b
}

// isBlank reports whether a segment holds nothing but line break characters,
// as happens between a trailing boundary line and the end of the body.
func isBlank(segment []byte) bool {
	for _, c := range segment {
		if c != '\r' && c != '\n' && c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}
