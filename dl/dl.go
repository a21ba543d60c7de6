// Package dl resolves a single named C symbol in a shared object and ties
// the library's lifetime to the returned handle.
//
// The handle is move-only: the loaded object must be closed exactly once,
// so there is no Clone. The symbol pointer is only valid while the handle
// is live. Reinterpret is the one unchecked operation in the surface; the
// caller guarantees the target type.
package dl

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/poskit/poskit/internal/metrics"
)

// Symbol owns a loaded shared object and one resolved symbol within it.
// Produced only by Load; the zero value is an empty handle.
type Symbol struct {
	handle unsafe.Pointer
	ptr    unsafe.Pointer
}

// Load opens the shared object at path with immediate binding and resolves
// symbol within it. On resolution failure the object is closed before the
// error is returned.
func Load(symbol, path string) (*Symbol, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	handle := C.dlopen(cPath, C.RTLD_NOW)
	if handle == nil {
		return nil, fmt.Errorf("dlopen failed on %s: %s", path, lastError())
	}

	cSym := C.CString(symbol)
	defer C.free(unsafe.Pointer(cSym))

	ptr := C.dlsym(handle, cSym)
	if ptr == nil {
		C.dlclose(handle)
		return nil, fmt.Errorf("dlsym failed to find %s in %s", symbol, path)
	}

	metrics.Default.ModulesOpen.Inc()
	return &Symbol{handle: handle, ptr: ptr}, nil
}

// lastError drains the dlerror message for the most recent failure.
func lastError() string {
	msg := C.dlerror()
	if msg == nil {
		return "unknown error"
	}
	return C.GoString(msg)
}

// IsLoaded reports whether the handle owns a loaded object.
func (s *Symbol) IsLoaded() bool {
	return s.handle != nil
}

// Pointer returns the resolved symbol pointer, or nil when empty.
func (s *Symbol) Pointer() unsafe.Pointer {
	return s.ptr
}

// Addr returns the resolved symbol address, or 0 when empty.
func (s *Symbol) Addr() uintptr {
	return uintptr(s.ptr)
}

// Lib returns the raw library handle, or nil when empty. Ownership does
// not change.
func (s *Symbol) Lib() unsafe.Pointer {
	return s.handle
}

// Move transfers both pointers to a fresh handle; the receiver becomes
// empty and its Close becomes a no-op.
func (s *Symbol) Move() *Symbol {
	g := &Symbol{handle: s.handle, ptr: s.ptr}
	s.handle = nil
	s.ptr = nil
	return g
}

// MoveFrom replaces the current holding with ownership taken from src,
// closing any previously held object. src becomes empty.
func (s *Symbol) MoveFrom(src *Symbol) {
	if s == src {
		return
	}
	s.Close()
	s.handle, s.ptr = src.handle, src.ptr
	src.handle = nil
	src.ptr = nil
}

// Close unloads the object if the handle owns one. Idempotent. The symbol
// pointer is invalid afterwards.
func (s *Symbol) Close() {
	if s.handle == nil {
		return
	}
	C.dlclose(s.handle)
	s.handle = nil
	s.ptr = nil
	metrics.Default.ModulesOpen.Dec()
}
