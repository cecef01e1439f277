// Package arena implements a chunked bump allocator with savepoint/restore
// semantics. All transient allocations of a conversation session (JSON values,
// copied strings, image payloads) are carved out of one Arena and released
// together, either wholesale via Reset or partially via Restore.
//
// Lifetime contract: a slice returned by Alloc remains valid until the owning
// arena is Reset (or restored past the allocation). Growth never moves or
// resizes an existing chunk; when the active chunk is exhausted a new chunk is
// linked, so previously returned slices keep their backing storage.
//
// An Arena has a single logical owner and performs no internal locking.
package arena

// DefaultSize is the size of the first chunk when New is called with 0.
const DefaultSize = 64 * 1024

type chunk struct {
	buf  []byte
	used int
}

// Arena is a bump-pointer allocator over a linked list of fixed chunks.
type Arena struct {
	chunks      []chunk
	active      int
	defaultSize int
}

// Savepoint marks an allocation offset that Restore can rewind to.
// Savepoints must be restored in LIFO order.
type Savepoint struct {
	chunk int
	used  int
}

// New creates an arena whose first chunk holds initialSize bytes.
// initialSize <= 0 selects DefaultSize.
func New(initialSize int) *Arena {
	if initialSize <= 0 {
		initialSize = DefaultSize
	}
	return &Arena{
		chunks:      []chunk{{buf: make([]byte, initialSize)}},
		defaultSize: initialSize,
	}
}

// Alloc returns a slice of n bytes bumped off the active chunk. The returned
// slice has its capacity clipped to n so appends by the caller cannot clobber
// neighboring allocations. Returns nil when n <= 0.
//
// The contents are not zeroed; chunks are recycled across Reset/Restore.
// Use Calloc when zeroed memory is required.
func (a *Arena) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	c := &a.chunks[a.active]
	if c.used+n > len(c.buf) {
		size := a.defaultSize
		if n > size {
			size = n
		}
		a.chunks = append(a.chunks, chunk{buf: make([]byte, size)})
		a.active = len(a.chunks) - 1
		c = &a.chunks[a.active]
	}
	b := c.buf[c.used : c.used+n : c.used+n]
	c.used += n
	return b
}

// Calloc allocates count*size zeroed bytes.
func (a *Arena) Calloc(count, size int) []byte {
	if count <= 0 || size <= 0 {
		return nil
	}
	b := a.Alloc(count * size)
	for i := range b {
		b[i] = 0
	}
	return b
}

// Copy duplicates b into the arena.
func (a *Arena) Copy(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	dst := a.Alloc(len(b))
	copy(dst, b)
	return dst
}

// CopyString duplicates s into the arena as bytes.
func (a *Arena) CopyString(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	dst := a.Alloc(len(s))
	copy(dst, s)
	return dst
}

// Reset discards every allocation in O(1). The first chunk is retained for
// reuse; any overflow chunks are released to the runtime.
func (a *Arena) Reset() {
	// Clear dropped entries so their buffers stop being reachable through
	// the slice's backing array.
	for i := 1; i < len(a.chunks); i++ {
		a.chunks[i] = chunk{}
	}
	a.chunks = a.chunks[:1]
	a.chunks[0].used = 0
	a.active = 0
}

// Savepoint captures the current allocation offset.
func (a *Arena) Savepoint() Savepoint {
	return Savepoint{chunk: a.active, used: a.chunks[a.active].used}
}

// Restore rewinds the arena to a previously taken savepoint, invalidating
// everything allocated after it. Callers must not reference post-savepoint
// allocations once restored. Restoring a savepoint from a chunk that no
// longer exists is a no-op.
func (a *Arena) Restore(sp Savepoint) {
	if sp.chunk >= len(a.chunks) {
		return
	}
	for i := sp.chunk + 1; i < len(a.chunks); i++ {
		a.chunks[i] = chunk{}
	}
	a.chunks = a.chunks[:sp.chunk+1]
	a.chunks[sp.chunk].used = sp.used
	a.active = sp.chunk
}

// Used reports the total number of bytes handed out across all chunks.
func (a *Arena) Used() int {
	total := 0
	for i := range a.chunks {
		total += a.chunks[i].used
	}
	return total
}

// Cap reports the total byte capacity of all chunks.
func (a *Arena) Cap() int {
	total := 0
	for i := range a.chunks {
		total += len(a.chunks[i].buf)
	}
	return total
}
