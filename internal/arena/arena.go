// Package arena provides a bump allocator with mark/rewind scratch support.
//
// Column storage for archetypes and staged command payloads both live in
// arenas rather than individual heap allocations: rows never free
// individually (they live and die with their archetype), and the command
// buffer is wholly cleared at defer end. An arena collapses both cases to
// a pointer bump.
package arena

import "unsafe"

// Arena is a fixed-capacity bump allocator over a single backing buffer.
type Arena struct {
	buf    []byte
	offset uintptr
}

// Create wraps an existing buffer as an arena.
func Create(buf []byte) *Arena {
	return &Arena{buf: buf}
}

// New allocates a fresh backing buffer of the given size and wraps it.
func New(size int) *Arena {
	return Create(make([]byte, size))
}

// Alloc reserves size bytes aligned to align from the arena, returning the
// slice and true, or nil and false if the arena is exhausted.
func (a *Arena) Alloc(size, align uintptr) ([]byte, bool) {
	if size == 0 {
		return nil, true
	}
	if len(a.buf) == 0 {
		return nil, false
	}
	base := uintptr(unsafe.Pointer(&a.buf[0]))
	cur := base + a.offset
	aligned := (cur + align - 1) &^ (align - 1)
	pad := aligned - cur
	start := a.offset + pad
	end := start + size
	if end > uintptr(len(a.buf)) {
		return nil, false
	}
	a.offset = end
	return a.buf[start:end:end], true
}

// Mark returns a rewind point for the arena's current allocation offset.
func (a *Arena) Mark() uintptr {
	return a.offset
}

// Rewind resets the arena's allocation offset to a previously taken mark,
// making that space available for reuse. It does not zero memory.
func (a *Arena) Rewind(mark uintptr) {
	a.offset = mark
}

// Destroy releases the arena's backing buffer.
func (a *Arena) Destroy() {
	a.buf = nil
	a.offset = 0
}

// Cap returns the arena's total capacity in bytes.
func (a *Arena) Cap() int {
	return len(a.buf)
}
