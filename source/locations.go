package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/prefetch/blobstore"
)

// Locations is an ordered list of candidate locations.
type Locations []string

// Args returns the locations given directly, in order.
func Args(locs ...string) Locations {
	return Locations(locs)
}

// FromFile reads a file listing one location per line. Blank lines and
// lines starting with '#' are ignored.
func FromFile(ctx context.Context, r *Resolver, loc string) (Locations, error) {
	t, err := r.Resolve(ctx, loc)
	if err != nil {
		return nil, err
	}

	blob, err := t.Store.Open(ctx, t.Name)
	if err != nil {
		return nil, fmt.Errorf("open location list %s: %w", loc, err)
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("read location list %s: %w", loc, err)
	}

	var out Locations
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read location list %s: %w", loc, err)
	}
	return out, nil
}

// Concat joins location lists, preserving order.
func Concat(lists ...Locations) Locations {
	var out Locations
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
