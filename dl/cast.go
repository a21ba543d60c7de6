package dl

import "unsafe"

// Reinterpret returns the resolved symbol pointer as T, which must be a
// pointer-shaped type (an object pointer, or a C function pointer held as
// unsafe.Pointer/uintptr). The cast is unchecked: the caller guarantees
// the symbol actually has that shape.
func Reinterpret[T any](s *Symbol) T {
	return *(*T)(unsafe.Pointer(&s.ptr))
}
