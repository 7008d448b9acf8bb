// Package codec centralizes the JSON encoding used for signature files.
//
// Signature files are plain JSON on disk; the codec only chooses the encoder
// implementation, so files written with one codec load with any other.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, error) {
	switch name {
	case "", "go-json":
		return GoJSON{}, nil
	case "json":
		return JSON{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// OrDefault returns c, or Default when c is nil.
func OrDefault(c Codec) Codec {
	if c == nil {
		return Default
	}
	return c
}

// MustMarshal is a helper for tests.
func MustMarshal(c Codec, v any) []byte {
	c = OrDefault(c)
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
