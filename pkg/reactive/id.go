package reactive

import "sync/atomic"

// globalIDCounter is the source of unique IDs for all reactive primitives.
var globalIDCounter uint64

// nextID returns the next unique ID for a reactive primitive.
// IDs are monotonically increasing and never reused, so they also encode
// creation order.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
