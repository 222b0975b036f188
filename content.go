package bodyenc

import (
	"bytes"
	"io"
)

// ChunkSource is a pull-based sequence of byte chunks. Next returns the next
// chunk, or io.EOF once the sequence is exhausted; the returned slice is only
// valid until the following call to Next. Close releases any resources held
// by the source and must be called when a consumer stops before exhaustion;
// it is safe to call more than once.
//
// A ChunkSource is single-use: once drained it cannot be rewound, and callers
// wanting to read the data again must construct a new source.
type ChunkSource interface {
	Next() ([]byte, error)
	Close() error
}

// SourceFunc adapts a function to a ChunkSource with a no-op Close.
type SourceFunc func() ([]byte, error)

// Next calls f.
func (f SourceFunc) Next() ([]byte, error) { return f() }

// Close is a no-op.
func (f SourceFunc) Close() error { return nil }

type bytesSource struct {
	data []byte
	done bool
}

// NewBytesSource returns a ChunkSource yielding data as a single chunk. An
// empty buffer yields no chunks.
func NewBytesSource(data []byte) ChunkSource {
	return &bytesSource{data: data, done: len(data) == 0}
}

func (s *bytesSource) Next() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return s.data, nil
}

func (s *bytesSource) Close() error {
	s.done = true
	return nil
}

type sliceSource struct {
	chunks [][]byte
}

// NewSliceSource returns a ChunkSource yielding the given chunks in order.
func NewSliceSource(chunks ...[]byte) ChunkSource {
	return &sliceSource{chunks: chunks}
}

func (s *sliceSource) Next() ([]byte, error) {
	if len(s.chunks) == 0 {
		return nil, io.EOF
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	return chunk, nil
}

func (s *sliceSource) Close() error {
	s.chunks = nil
	return nil
}

type readerSource struct {
	r   io.Reader
	buf []byte
}

// NewReaderSource returns a ChunkSource that reads successive chunks from r.
// Chunks share an internal buffer and are only valid until the next call to
// Next. If r implements io.Closer, closing the source closes r; this is how
// a file feeding a streamed body is released when the consumer stops early.
func NewReaderSource(r io.Reader) ChunkSource {
	return &readerSource{r: r, buf: make([]byte, 8192)}
}

func (s *readerSource) Next() ([]byte, error) {
	for {
		n, err := s.r.Read(s.buf)
		if n > 0 {
			return s.buf[:n], nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (s *readerSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Drain consumes src to exhaustion and returns the concatenated chunks. The
// source is closed regardless of outcome.
func Drain(src ChunkSource) ([]byte, error) {
	defer src.Close()

	var b bytes.Buffer
	for {
		chunk, err := src.Next()
		if err == io.EOF {
			return b.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
		b.Write(chunk)
	}
}

// Copy streams src into w, returning the number of bytes written. The source
// is closed regardless of outcome, so an early write error still releases
// whatever the source holds.
func Copy(w io.Writer, src ChunkSource) (int64, error) {
	defer src.Close()

	var written int64
	for {
		chunk, err := src.Next()
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
}

// Content pairs a content type with a body. The body is either a fixed byte
// buffer or a lazy, single-use ChunkSource; a streamed Content can therefore
// be read at most once.
type Content struct {
	Type string

	body []byte
	src  ChunkSource
}

// NewContent returns a Content backed by a fixed byte buffer.
func NewContent(contentType string, body []byte) *Content {
	return &Content{Type: contentType, body: body}
}

// NewStreamedContent returns a Content backed by a lazy chunk source. The
// source is consumed at most once; reading the content again requires a new
// source.
func NewStreamedContent(contentType string, src ChunkSource) *Content {
	return &Content{Type: contentType, src: src}
}

// Source returns the body as a ChunkSource. For buffer-backed content each
// call returns a fresh source over the buffer; for streamed content every
// call returns the same single-use source.
func (c *Content) Source() ChunkSource {
	if c.src != nil {
		return c.src
	}
	return NewBytesSource(c.body)
}
