package signature

import (
	"fmt"
	"io"

	"github.com/hupe1980/prefetch/codec"
)

// Load reads every signature from r, undoing any compression.
func Load(r io.Reader, c codec.Codec) ([]*Signature, error) {
	rc, err := decompress(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return Decode(data, c)
}

// Save writes sigs to w as a JSON list.
func Save(w io.Writer, sigs []*Signature, comp Compression, c codec.Codec) error {
	enc, err := NewEncoder(w, comp, c)
	if err != nil {
		return err
	}
	for _, s := range sigs {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	return enc.Close()
}

// Encoder streams signatures into a JSON list one at a time, so a
// collection never has to be held in memory.
type Encoder struct {
	w     io.WriteCloser
	codec codec.Codec
	count int
}

// NewEncoder creates an Encoder writing to w with the given compression.
func NewEncoder(w io.Writer, comp Compression, c codec.Codec) (*Encoder, error) {
	cw, err := compress(w, comp)
	if err != nil {
		return nil, err
	}
	return &Encoder{w: cw, codec: codec.OrDefault(c)}, nil
}

// Encode appends one signature to the list.
func (e *Encoder) Encode(s *Signature) error {
	data, err := Encode(s, e.codec)
	if err != nil {
		return err
	}

	sep := []byte(",\n")
	if e.count == 0 {
		sep = []byte("[")
	}
	if _, err := e.w.Write(sep); err != nil {
		return err
	}
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	e.count++
	return nil
}

// Count returns the number of signatures written so far.
func (e *Encoder) Count() int { return e.count }

// Close terminates the list and flushes compression. It does not close the
// underlying writer.
func (e *Encoder) Close() error {
	tail := []byte("]\n")
	if e.count == 0 {
		tail = []byte("[]\n")
	}
	if _, err := e.w.Write(tail); err != nil {
		return err
	}
	return e.w.Close()
}
