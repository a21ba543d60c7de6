// Package fd provides an owning handle for a single POSIX file descriptor.
//
// An FD either owns one open descriptor or is empty (the raw slot holds -1).
// Ownership is explicit: Clone duplicates the descriptor with dup(2), Move
// transfers it to a fresh handle, Release hands the raw value back to the
// caller, and Close returns the handle to the empty state. No operation on
// an FD returns an error; failures of dup or close collapse the handle to
// empty and callers inspect IsOpen.
package fd

import (
	"io"

	"golang.org/x/sys/unix"

	"github.com/poskit/poskit/internal/metrics"
)

// FD owns at most one open file descriptor.
//
// The zero value is NOT a valid empty handle (descriptor 0 is stdin); use
// New or Wrap to construct.
type FD struct {
	raw int
}

// New returns an empty handle.
func New() *FD {
	return &FD{raw: -1}
}

// Wrap returns a handle owning raw. No validation is performed; the caller
// must not close raw afterwards.
func Wrap(raw int) *FD {
	if raw >= 0 {
		metrics.Default.FDsLive.Inc()
	}
	return &FD{raw: raw}
}

// Raw returns the owned descriptor, or -1 when empty. Ownership does not
// change; the descriptor remains the handle's to close.
func (f *FD) Raw() int {
	return f.raw
}

// Get is an alias for Raw.
func (f *FD) Get() int {
	return f.raw
}

// IsOpen reports whether the handle owns a descriptor.
func (f *FD) IsOpen() bool {
	return f.raw != -1
}

// Set closes the current holding, takes ownership of raw, and returns raw.
//
// Setting the descriptor the handle already owns closes it first and then
// re-owns the now-dead number; callers must avoid that aliasing.
func (f *FD) Set(raw int) int {
	f.Close()
	f.raw = raw
	if raw >= 0 {
		metrics.Default.FDsLive.Inc()
	}
	return raw
}

// Release returns the owned descriptor and empties the handle without
// closing. Returns -1 when empty.
func (f *FD) Release() int {
	raw := f.raw
	f.raw = -1
	if raw >= 0 {
		metrics.Default.FDsLive.Dec()
	}
	return raw
}

// Close closes the descriptor if one is owned and empties the handle.
// Idempotent; close failures are absorbed.
func (f *FD) Close() {
	if f.raw == -1 {
		return
	}
	_ = unix.Close(f.raw)
	f.raw = -1
	metrics.Default.FDsLive.Dec()
	metrics.Default.FDsClosed.Inc()
}

// Clone returns a new handle owning a dup(2) of the descriptor. Cloning an
// empty handle, or a dup failure, yields an empty handle.
func (f *FD) Clone() *FD {
	if f.raw == -1 {
		return New()
	}
	duped, err := unix.Dup(f.raw)
	if err != nil {
		return New()
	}
	metrics.Default.FDsDuped.Inc()
	return Wrap(duped)
}

// Move transfers ownership to a fresh handle; the receiver becomes empty.
func (f *FD) Move() *FD {
	g := &FD{raw: f.raw}
	f.raw = -1
	return g
}

// MoveFrom replaces the current holding with ownership taken from src,
// closing any prior descriptor. src becomes empty.
func (f *FD) MoveFrom(src *FD) {
	if f == src {
		return
	}
	f.Close()
	f.raw = src.raw
	src.raw = -1
}

// CloneFrom replaces the current holding with a dup of src's descriptor,
// closing any prior descriptor. A dup failure leaves the handle empty.
func (f *FD) CloneFrom(src *FD) {
	if f == src {
		return
	}
	f.Close()
	if src.raw == -1 {
		return
	}
	duped, err := unix.Dup(src.raw)
	if err != nil {
		return
	}
	metrics.Default.FDsDuped.Inc()
	metrics.Default.FDsLive.Inc()
	f.raw = duped
}

// Read reads from the owned descriptor. A read of zero bytes on a
// non-empty buffer reports io.EOF. Reading an empty handle reports EBADF.
func (f *FD) Read(p []byte) (int, error) {
	if f.raw == -1 {
		return 0, unix.EBADF
	}
	n, err := unix.Read(f.raw, p)
	if n < 0 {
		n = 0
	}
	if err != nil {
		return n, err
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write writes to the owned descriptor. Writing an empty handle reports
// EBADF.
func (f *FD) Write(p []byte) (int, error) {
	if f.raw == -1 {
		return 0, unix.EBADF
	}
	n, err := unix.Write(f.raw, p)
	if n < 0 {
		n = 0
	}
	return n, err
}
