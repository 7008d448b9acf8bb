// Package resource implements the budget shared by concurrent candidate loads.
//
// The Controller manages three resource types:
//
//   - Memory: bytes of candidate files held in flight (blocking, clamped)
//   - Concurrency: loader worker slots
//   - IO: a token bucket over bytes read from storage
//
// # Memory Management
//
// AcquireMemory blocks until the reservation fits. A single request larger
// than the limit is clamped to the limit, so it runs alone instead of
// deadlocking:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 256 << 20,
//	})
//
//	n, err := rc.AcquireMemory(ctx, blob.Size())
//	if err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(n)
//
// # IO Rate Limiting
//
//	reader := resource.NewRateLimitedReader(ctx, r, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
