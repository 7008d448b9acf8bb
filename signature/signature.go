package signature

import (
	"unicode/utf8"

	"github.com/hupe1980/prefetch/sketch"
)

const (
	DefaultClass        = "sourmash_signature"
	DefaultHashFunction = "0.murmur64"
	DefaultLicense      = "CC0"
	DefaultVersion      = 0.4
)

// Signature is a named collection of sketches of one sequence.
type Signature struct {
	Name         string
	Filename     string
	License      string
	Email        string
	HashFunction string
	Version      float64
	Sketches     []*sketch.MinHash
}

// New creates a signature with default metadata.
func New(name string, sketches ...*sketch.MinHash) *Signature {
	return &Signature{
		Name:         name,
		License:      DefaultLicense,
		HashFunction: DefaultHashFunction,
		Version:      DefaultVersion,
		Sketches:     sketches,
	}
}

// WithSketches returns a shallow copy of s carrying only the given sketches.
func (s *Signature) WithSketches(sketches ...*sketch.MinHash) *Signature {
	c := *s
	c.Sketches = sketches
	return &c
}

// MD5 returns the checksum of the first sketch, or "" if there is none.
func (s *Signature) MD5() string {
	if len(s.Sketches) == 0 {
		return ""
	}
	return s.Sketches[0].MD5()
}

// DisplayName returns the name, falling back to the filename and then to
// the first eight characters of the checksum.
func (s *Signature) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Filename != "" {
		return s.Filename
	}
	md5 := s.MD5()
	if len(md5) > 8 {
		md5 = md5[:8]
	}
	return md5
}

// Truncate shortens name to at most n runes, marking the cut with "...".
func Truncate(name string, n int) string {
	if utf8.RuneCountInString(name) <= n {
		return name
	}
	runes := []rune(name)
	return string(runes[:n]) + "..."
}
