package sink

import "io"

// aborter is implemented by writers that can discard what was written,
// such as blobstore.WritableBlob.
type aborter interface {
	Abort() error
}

// abandon discards w if the sink never finished and w supports it.
// It reports whether w was discarded.
func abandon(w io.Writer, finished bool) (bool, error) {
	if finished {
		return false, nil
	}
	a, ok := w.(aborter)
	if !ok {
		return false, nil
	}
	return true, a.Abort()
}
