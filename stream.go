package bodyenc

import (
	"fmt"
	"io"
)

// Decoder reads a form-urlencoded body from an [io.Reader] and decodes it.
type Decoder struct {
	r io.Reader
}

// NewDecoder creates a new [Decoder] that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads the form-urlencoded data from the underlying [io.Reader] and
// decodes it into v via [Unmarshal].
func (d *Decoder) Decode(v interface{}) error {
	body, err := io.ReadAll(d.r)
	if err != nil {
		return fmt.Errorf("bodyenc: failed to read body: %w", err)
	}

	return Unmarshal(body, v)
}

// Form reads the form-urlencoded data from the underlying [io.Reader] and
// decodes it into an ordered [Form], keeping every value of repeated keys.
func (d *Decoder) Form() (*Form, error) {
	body, err := io.ReadAll(d.r)
	if err != nil {
		return nil, fmt.Errorf("bodyenc: failed to read body: %w", err)
	}

	return ParseForm(body), nil
}

// Encoder writes a form-urlencoded body to an [io.Writer].
type Encoder struct {
	w io.Writer
}

// NewEncoder creates a new [Encoder] that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode encodes v via [Marshal] and writes it to the underlying [io.Writer].
func (e *Encoder) Encode(v interface{}) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}

	_, err = e.w.Write(data)
	return err
}

// EncodePairs encodes an explicit pair sequence, preserving its order and any
// duplicate keys, and writes it to the underlying [io.Writer].
func (e *Encoder) EncodePairs(pairs Pairs) error {
	_, err := e.w.Write(EncodeForm(pairs))
	return err
}
