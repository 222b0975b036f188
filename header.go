package bodyenc

import (
	"errors"
	"strings"
)

// Errors returned by the header parsers.
var (
	// ErrBoundaryNotFound is returned when a Content-Type value carries no
	// multipart boundary parameter.
	ErrBoundaryNotFound = errors.New("bodyenc: content type has no multipart boundary")
	// ErrInvalidContentDisposition is returned when a Content-Disposition
	// value lacks the required name parameter.
	ErrInvalidContentDisposition = errors.New("bodyenc: content disposition has no name parameter")
)

// ContentDisposition is the parsed form of a Content-Disposition header value
// as used in multipart/form-data parts. Filename is empty when the header
// carries no filename parameter.
type ContentDisposition struct {
	Type     string
	Name     string
	Filename string
}

// ParseContentDisposition parses a Content-Disposition header value of the
// form `form-data; name="<name>"[; filename="<filename>"]`. The leading
// `Content-Disposition:` label is tolerated, as is a trailing semicolon.
// Quoted parameter values are taken verbatim between the first and last
// double quote of their segment. ParseContentDisposition returns
// ErrInvalidContentDisposition when the name parameter is absent.
func ParseContentDisposition(value string) (ContentDisposition, error) {
	var cd ContentDisposition

	segments := strings.Split(value, ";")

	dtype := strings.TrimSpace(segments[0])
	if i := strings.IndexByte(dtype, ':'); i >= 0 {
		dtype = strings.TrimSpace(dtype[i+1:])
	}
	cd.Type = dtype

	for _, segment := range segments[1:] {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		key, quoted, ok := strings.Cut(segment, "=")
		if !ok {
			continue
		}

		switch strings.TrimSpace(key) {
		case "name":
			cd.Name = unquote(quoted)
		case "filename":
			cd.Filename = unquote(quoted)
		}
	}

	if cd.Name == "" {
		return ContentDisposition{}, ErrInvalidContentDisposition
	}
	return cd, nil
}

// unquote returns the text between the first and last double quote of s, or s
// unchanged when it is not quoted. The form-data grammar puts no escaped
// quotes inside these values, so no unescaping is performed.
func unquote(s string) string {
	i := strings.IndexByte(s, '"')
	j := strings.LastIndexByte(s, '"')
	if i < 0 || j <= i {
		return s
	}
	return s[i+1 : j]
}

// ExtractBoundary returns the boundary token from a multipart Content-Type
// value such as `multipart/form-data; boundary=----xyz`. The token is taken
// verbatim from after `boundary=` to the next semicolon or the end of the
// value, with no unescaping; leading hyphens are part of the token.
// ExtractBoundary returns ErrBoundaryNotFound when the content type is not
// multipart or carries no boundary parameter.
func ExtractBoundary(contentType string) (string, error) {
	if !strings.HasPrefix(strings.TrimSpace(contentType), "multipart/") {
		return "", ErrBoundaryNotFound
	}

	_, after, ok := strings.Cut(contentType, "boundary=")
	if !ok {
		return "", ErrBoundaryNotFound
	}
	if i := strings.IndexByte(after, ';'); i >= 0 {
		after = after[:i]
	}
	return after, nil
}
