package bodyenc

import (
	"io"
	"strconv"
)

// lastChunk terminates a chunked body: a zero length line followed by an
// empty trailer section.
var lastChunk = []byte("0\r\n\r\n")

// ChunkedEncoder frames a ChunkSource as HTTP/1.1 chunked transfer coding.
// Each non-empty source chunk becomes one wire frame,
//
//	<length in lowercase hex>\r\n<chunk>\r\n
//
// and exhaustion of the source produces the single terminator frame
// "0\r\n\r\n". Zero-length chunks yielded by the source are skipped: on the
// wire a zero length is the terminator, so forwarding one would end the body
// early. The encoder pulls from the source only when the consumer asks for
// the next frame and buffers nothing beyond the frame being returned.
type ChunkedEncoder struct {
	src  ChunkSource
	done bool
}

// NewChunkedEncoder returns a ChunkedEncoder reading from src. The encoder
// takes ownership of src: closing the encoder closes the source.
func NewChunkedEncoder(src ChunkSource) *ChunkedEncoder {
	return &ChunkedEncoder{src: src}
}

// EncodeChunked returns a ChunkedEncoder over the body of c.
func EncodeChunked(c *Content) *ChunkedEncoder {
	return NewChunkedEncoder(c.Source())
}

// Next returns the next wire frame, or io.EOF after the terminator has been
// returned.
func (e *ChunkedEncoder) Next() ([]byte, error) {
	if e.done {
		return nil, io.EOF
	}
	for {
		chunk, err := e.src.Next()
		if err == io.EOF {
			e.done = true
			return lastChunk, nil
		}
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			continue
		}

		frame := make([]byte, 0, len(chunk)+16)
		frame = strconv.AppendUint(frame, uint64(len(chunk)), 16)
		frame = append(frame, '\r', '\n')
		frame = append(frame, chunk...)
		frame = append(frame, '\r', '\n')
		return frame, nil
	}
}

// Close stops the encoder and closes the underlying source. It is safe to
// call after exhaustion or more than once.
func (e *ChunkedEncoder) Close() error {
	e.done = true
	return e.src.Close()
}
