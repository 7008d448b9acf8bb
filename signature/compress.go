package signature

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the framing around a JSON signature document.
type Compression uint8

const (
	// CompressionNone is plain JSON.
	CompressionNone Compression = iota
	// CompressionGzip is gzip framing (".gz").
	CompressionGzip
	// CompressionZSTD is zstd framing (".zst"); fast with a good ratio.
	CompressionZSTD
	// CompressionLZ4 is lz4 frame format (".lz4"); fastest to decode.
	CompressionLZ4
)

var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZSTD = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicLZ4  = []byte{0x04, 0x22, 0x4d, 0x18}
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZSTD:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// CompressionForName picks the compression implied by a file name.
func CompressionForName(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return CompressionGzip
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		return CompressionZSTD
	case strings.HasSuffix(name, ".lz4"):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// DetectCompression inspects the leading bytes of a document.
func DetectCompression(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, magicGzip):
		return CompressionGzip
	case bytes.HasPrefix(head, magicZSTD):
		return CompressionZSTD
	case bytes.HasPrefix(head, magicLZ4):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// decompress wraps r in the decoder for its detected framing.
func decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, err
	}

	switch DetectCompression(head) {
	case CompressionGzip:
		return gzip.NewReader(br)
	case CompressionZSTD:
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(br)), nil
	default:
		return io.NopCloser(br), nil
	}
}

// compress wraps w in an encoder for c. Closing the result flushes the
// framing but does not close w.
func compress(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZSTD:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
