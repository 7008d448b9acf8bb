package sketch

import (
	"fmt"
	"strings"
)

// Moltype is the molecule alphabet a sketch was built from.
type Moltype string

const (
	DNA     Moltype = "DNA"
	Protein Moltype = "protein"
	Dayhoff Moltype = "dayhoff"
	HP      Moltype = "hp"
)

// ParseMoltype parses a molecule name case-insensitively.
// The empty string parses to the empty Moltype, meaning "any".
func ParseMoltype(s string) (Moltype, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "dna", "nucleotide":
		return DNA, nil
	case "protein", "prot":
		return Protein, nil
	case "dayhoff":
		return Dayhoff, nil
	case "hp":
		return HP, nil
	default:
		return "", fmt.Errorf("unknown moltype %q", s)
	}
}

func (m Moltype) String() string {
	return string(m)
}
