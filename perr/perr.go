// Package perr provides errno-carrying error values for POSIX operations.
//
// Every fallible syscall surface in this library reports failure as an
// *Error, which keeps the numeric errno alongside a human-readable message
// derived from the system error table. Errors unwrap to their unix.Errno so
// callers can match with errors.Is:
//
//	if errors.Is(err, unix.EINVAL) { ... }
package perr

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Error is a POSIX error: an operation name, an optional subject (path,
// symbol, task name), and the errno reported by the kernel.
type Error struct {
	Op    string
	Path  string
	Errno unix.Errno
}

// FromErrno builds an Error for op from the given errno.
func FromErrno(op string, errno unix.Errno) *Error {
	return &Error{Op: op, Errno: errno}
}

// FromErrnoPath builds an Error for op on path from the given errno.
func FromErrnoPath(op, path string, errno unix.Errno) *Error {
	return &Error{Op: op, Path: path, Errno: errno}
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s (errno %d)", e.Op, e.Path, ErrnoString(int(e.Errno)), int(e.Errno))
	}
	return fmt.Sprintf("%s: %s (errno %d)", e.Op, ErrnoString(int(e.Errno)), int(e.Errno))
}

// Unwrap exposes the underlying errno for errors.Is matching.
func (e *Error) Unwrap() error {
	return e.Errno
}

// ErrnoString formats a POSIX errno code as a human-readable message using
// the system error table, the Go equivalent of strerror_r.
func ErrnoString(code int) string {
	return unix.Errno(code).Error()
}
