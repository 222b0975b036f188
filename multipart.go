package bodyenc

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// FormPart is one section of a multipart/form-data body: a required field
// name, the raw payload, and optional content type and file name. Parts are
// value-like and immutable once built, whether constructed by a caller on
// the write path or by the parser on the read path. Names need not be unique
// across the parts of one body.
type FormPart struct {
	Name        string
	Data        []byte
	ContentType string
	Filename    string
}

// MultipartFormData is an ordered sequence of parts plus the boundary token
// delimiting them. The format does not escape part bodies; collision safety
// comes from boundaries drawn from a large random space, so callers supplying
// their own boundary must ensure it does not occur in any part.
type MultipartFormData struct {
	Parts    []FormPart
	boundary string
}

// NewMultipartFormData returns a MultipartFormData over parts with a
// randomly generated boundary.
func NewMultipartFormData(parts []FormPart) (*MultipartFormData, error) {
	boundary, err := RandomBoundary(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &MultipartFormData{Parts: parts, boundary: boundary}, nil
}

// NewMultipartFormDataWithBoundary returns a MultipartFormData using the
// supplied boundary, which must satisfy the RFC 2046 boundary grammar.
func NewMultipartFormDataWithBoundary(boundary string, parts []FormPart) (*MultipartFormData, error) {
	if err := validateBoundary(boundary); err != nil {
		return nil, err
	}
	return &MultipartFormData{Parts: parts, boundary: boundary}, nil
}

// Boundary returns the boundary token.
func (m *MultipartFormData) Boundary() string {
	return m.boundary
}

// ContentType returns the Content-Type header value announcing this body.
func (m *MultipartFormData) ContentType() string {
	return "multipart/form-data; boundary=" + m.boundary
}

// Stream returns the wire form of the body as a lazy ChunkSource, one chunk
// per part block plus a final terminator chunk. Each part block is
//
//	--<boundary>\r\n
//	Content-Disposition: form-data; name="<name>"[; filename="<filename>"]\r\n
//	[Content-Type: <content type>\r\n]
//	\r\n
//	<data>\r\n
//
// and the terminator is "--<boundary>--". Blocks are built one at a time as
// the consumer pulls, so a body carrying large parts is never materialised
// whole.
func (m *MultipartFormData) Stream() ChunkSource {
	return &multipartSource{parts: m.Parts, boundary: m.boundary}
}

// Content returns the body as streamed Content carrying the multipart
// content type, ready for chunked transfer.
func (m *MultipartFormData) Content() *Content {
	return NewStreamedContent(m.ContentType(), m.Stream())
}

type multipartSource struct {
	parts    []FormPart
	boundary string
	next     int
	done     bool
}

func (s *multipartSource) Next() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}
	if s.next == len(s.parts) {
		s.done = true
		return []byte("--" + s.boundary + "--"), nil
	}

	part := s.parts[s.next]
	s.next++

	var b bytes.Buffer
	b.WriteString("--")
	b.WriteString(s.boundary)
	b.WriteString("\r\n")
	b.WriteString(`Content-Disposition: form-data; name="`)
	b.WriteString(escapeQuotes(part.Name))
	b.WriteString(`"`)
	if part.Filename != "" {
		b.WriteString(`; filename="`)
		b.WriteString(escapeQuotes(part.Filename))
		b.WriteString(`"`)
	}
	b.WriteString("\r\n")
	if part.ContentType != "" {
		b.WriteString("Content-Type: ")
		b.WriteString(part.ContentType)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.Write(part.Data)
	b.WriteString("\r\n")
	return b.Bytes(), nil
}

func (s *multipartSource) Close() error {
	s.done = true
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// RandomBoundary derives a boundary token from entropy, reading 30 bytes and
// hex encoding them. It is a pure function of entropy, so tests can pass a
// fixed reader for deterministic boundaries; production callers use
// crypto/rand.Reader.
func RandomBoundary(entropy io.Reader) (string, error) {
	var buf [30]byte
	if _, err := io.ReadFull(entropy, buf[:]); err != nil {
		return "", fmt.Errorf("bodyenc: generate boundary: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}

func validateBoundary(boundary string) error {
	// rfc2046#section-5.1.1
	if len(boundary) < 1 || len(boundary) > 69 {
		return errors.New("bodyenc: invalid boundary length")
	}
	for _, b := range boundary {
		if 'A' <= b && b <= 'Z' || 'a' <= b && b <= 'z' || '0' <= b && b <= '9' {
			continue
		}
		switch b {
		case '\'', '(', ')', '+', '_', ',', '-', '.', '/', ':', '=', '?', ' ':
			continue
		}
		return errors.New("bodyenc: invalid boundary character")
	}
	return nil
}
