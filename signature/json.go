package signature

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/hupe1980/prefetch/codec"
	"github.com/hupe1980/prefetch/sketch"
)

// ErrInvalidSignature is returned when a document is not a signature file.
var ErrInvalidSignature = errors.New("invalid signature")

type sigJSON struct {
	Class        string       `json:"class"`
	Email        string       `json:"email"`
	HashFunction string       `json:"hash_function"`
	Filename     string       `json:"filename"`
	Name         string       `json:"name,omitempty"`
	License      string       `json:"license"`
	Signatures   []sketchJSON `json:"signatures"`
	Version      float64      `json:"version"`
}

type sketchJSON struct {
	Num        uint32   `json:"num"`
	Ksize      uint32   `json:"ksize"`
	Seed       uint64   `json:"seed"`
	MaxHash    uint64   `json:"max_hash"`
	Mins       []uint64 `json:"mins"`
	Abundances []uint64 `json:"abundances,omitempty"`
	Molecule   string   `json:"molecule"`
	MD5Sum     string   `json:"md5sum"`
}

func toJSON(s *Signature) sigJSON {
	out := sigJSON{
		Class:        DefaultClass,
		Email:        s.Email,
		HashFunction: s.HashFunction,
		Filename:     s.Filename,
		Name:         s.Name,
		License:      s.License,
		Version:      s.Version,
		Signatures:   make([]sketchJSON, 0, len(s.Sketches)),
	}
	if out.HashFunction == "" {
		out.HashFunction = DefaultHashFunction
	}
	if out.License == "" {
		out.License = DefaultLicense
	}
	if out.Version == 0 {
		out.Version = DefaultVersion
	}
	for _, mh := range s.Sketches {
		mins := mh.Sorted()
		if mins == nil {
			mins = []uint64{}
		}
		out.Signatures = append(out.Signatures, sketchJSON{
			Num:      mh.Num(),
			Ksize:    mh.Ksize(),
			Seed:     mh.Seed(),
			MaxHash:  mh.MaxHash(),
			Mins:     mins,
			Molecule: mh.Moltype().String(),
			MD5Sum:   mh.MD5(),
		})
	}
	return out
}

func fromJSON(in sigJSON) (*Signature, error) {
	if in.Class != "" && in.Class != DefaultClass {
		return nil, fmt.Errorf("%w: unexpected class %q", ErrInvalidSignature, in.Class)
	}
	s := &Signature{
		Name:         in.Name,
		Filename:     in.Filename,
		License:      in.License,
		Email:        in.Email,
		HashFunction: in.HashFunction,
		Version:      in.Version,
		Sketches:     make([]*sketch.MinHash, 0, len(in.Signatures)),
	}
	for i, sk := range in.Signatures {
		moltype, err := sketch.ParseMoltype(sk.Molecule)
		if err != nil {
			return nil, fmt.Errorf("%w: sketch %d: %w", ErrInvalidSignature, i, err)
		}
		if sk.Num == 0 && sk.MaxHash == 0 {
			return nil, fmt.Errorf("%w: sketch %d has neither num nor max_hash", ErrInvalidSignature, i)
		}
		s.Sketches = append(s.Sketches, sketch.FromParams(sketch.Params{
			Ksize:   sk.Ksize,
			Moltype: moltype,
			Seed:    sk.Seed,
			Num:     sk.Num,
			MaxHash: sk.MaxHash,
		}, sk.Mins))
	}
	return s, nil
}

// Decode parses a JSON document holding one signature or a list of them.
func Decode(data []byte, c codec.Codec) ([]*Signature, error) {
	c = codec.OrDefault(c)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidSignature)
	}

	var docs []sigJSON
	switch trimmed[0] {
	case '[':
		if err := c.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
		}
	case '{':
		var one sigJSON
		if err := c.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
		}
		docs = []sigJSON{one}
	default:
		return nil, fmt.Errorf("%w: not a JSON document", ErrInvalidSignature)
	}

	sigs := make([]*Signature, 0, len(docs))
	for _, d := range docs {
		s, err := fromJSON(d)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, s)
	}
	return sigs, nil
}

// Encode marshals a single signature as a JSON object.
func Encode(s *Signature, c codec.Codec) ([]byte, error) {
	return codec.OrDefault(c).Marshal(toJSON(s))
}
