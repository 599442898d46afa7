package arena

import (
	"testing"
	"unsafe"
)

func TestAllocSequential(t *testing.T) {
	a := New(64)

	first, ok := a.Alloc(8, 8)
	if !ok || len(first) != 8 {
		t.Fatalf("Alloc() = %v, %v, want 8 bytes ok", first, ok)
	}
	second, ok := a.Alloc(16, 8)
	if !ok || len(second) != 16 {
		t.Fatalf("Alloc() = %v, %v, want 16 bytes ok", second, ok)
	}
	if uintptr(unsafe.Pointer(&second[0]))-uintptr(unsafe.Pointer(&first[0])) < 8 {
		t.Fatalf("second allocation overlaps first")
	}
}

func TestAllocExhaustion(t *testing.T) {
	a := New(8)

	if _, ok := a.Alloc(8, 1); !ok {
		t.Fatalf("first Alloc() should succeed within capacity")
	}
	if _, ok := a.Alloc(1, 1); ok {
		t.Fatalf("Alloc() should fail once arena is exhausted")
	}
}

func TestMarkRewind(t *testing.T) {
	a := New(32)

	mark := a.Mark()
	if _, ok := a.Alloc(16, 1); !ok {
		t.Fatalf("Alloc() should succeed")
	}
	a.Rewind(mark)
	if a.Mark() != mark {
		t.Fatalf("Rewind() did not restore offset: got %d, want %d", a.Mark(), mark)
	}
	// the rewound space must be reusable
	if _, ok := a.Alloc(32, 1); !ok {
		t.Fatalf("Alloc() after Rewind() should reuse freed space")
	}
}

func TestAlignment(t *testing.T) {
	a := New(64)

	// force a misaligned offset, then request an aligned allocation
	if _, ok := a.Alloc(3, 1); !ok {
		t.Fatalf("Alloc() should succeed")
	}
	buf, ok := a.Alloc(8, 8)
	if !ok {
		t.Fatalf("Alloc() should succeed")
	}
	if uintptr(unsafe.Pointer(&buf[0]))%8 != 0 {
		t.Fatalf("Alloc() returned unaligned buffer")
	}
}

func TestDestroy(t *testing.T) {
	a := New(16)
	a.Destroy()
	if a.Cap() != 0 {
		t.Fatalf("Cap() after Destroy() = %d, want 0", a.Cap())
	}
}
