// Package pipe provides owning handles for anonymous pipe pairs and
// pseudo-terminal pairs, built on the fd package's descriptor handles.
package pipe

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/poskit/poskit/fd"
	"github.com/poskit/poskit/internal/metrics"
	"github.com/poskit/poskit/perr"
)

// Pipe owns the two ends of a kernel pipe. Each end is independently
// closable; the pair counts as open while either end is.
//
// Pipe is designed for extension by embedding: specialized variants reach
// the member handles through R and W.
type Pipe struct {
	r *fd.FD
	w *fd.FD
}

// New creates a kernel pipe and returns a handle owning both ends.
// Failure of pipe(2) reports a *perr.Error carrying the errno.
func New() (*Pipe, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		var errno unix.Errno
		if !errors.As(err, &errno) {
			errno = unix.EIO
		}
		return nil, perr.FromErrno("pipe", errno)
	}
	metrics.Default.PipesLive.Inc()
	return &Pipe{r: fd.Wrap(fds[0]), w: fd.Wrap(fds[1])}, nil
}

// R returns the read-end handle. The pipe retains ownership.
func (p *Pipe) R() *fd.FD { return p.r }

// W returns the write-end handle. The pipe retains ownership.
func (p *Pipe) W() *fd.FD { return p.w }

// ReadFD returns the raw read-end descriptor, or -1 if that end is closed.
func (p *Pipe) ReadFD() int { return p.r.Raw() }

// WriteFD returns the raw write-end descriptor, or -1 if that end is closed.
func (p *Pipe) WriteFD() int { return p.w.Raw() }

// IsOpen reports whether either end is still owned.
func (p *Pipe) IsOpen() bool {
	return p.r.IsOpen() || p.w.IsOpen()
}

// CloseRead closes the read end. Chainable.
func (p *Pipe) CloseRead() *Pipe {
	wasOpen := p.IsOpen()
	p.r.Close()
	p.noteClosed(wasOpen)
	return p
}

// CloseWrite closes the write end. Chainable.
func (p *Pipe) CloseWrite() *Pipe {
	wasOpen := p.IsOpen()
	p.w.Close()
	p.noteClosed(wasOpen)
	return p
}

// Close closes both ends. Idempotent; chainable.
func (p *Pipe) Close() *Pipe {
	wasOpen := p.IsOpen()
	p.r.Close()
	p.w.Close()
	p.noteClosed(wasOpen)
	return p
}

func (p *Pipe) noteClosed(wasOpen bool) {
	if wasOpen && !p.IsOpen() {
		metrics.Default.PipesLive.Dec()
	}
}

// Clone returns a new pair with both ends duplicated via dup(2), delegating
// to the fd clone semantics: a failed dup leaves that end empty.
func (p *Pipe) Clone() *Pipe {
	q := &Pipe{r: p.r.Clone(), w: p.w.Clone()}
	if q.IsOpen() {
		metrics.Default.PipesLive.Inc()
	}
	return q
}

// Move transfers both ends to a fresh handle; the receiver becomes empty.
func (p *Pipe) Move() *Pipe {
	q := &Pipe{r: p.r.Move(), w: p.w.Move()}
	return q
}

// MoveFrom replaces the current ends with ownership taken from src,
// closing any prior descriptors. src becomes empty.
func (p *Pipe) MoveFrom(src *Pipe) {
	if p == src {
		return
	}
	wasOpen := p.IsOpen()
	srcWasOpen := src.IsOpen()
	p.r.MoveFrom(src.r)
	p.w.MoveFrom(src.w)
	p.noteClosed(wasOpen)
	src.noteClosed(srcWasOpen)
	if p.IsOpen() && !wasOpen {
		metrics.Default.PipesLive.Inc()
	}
}

// CloneFrom replaces the current ends with dups of src's ends, closing any
// prior descriptors. Dup failures leave the affected end empty.
func (p *Pipe) CloneFrom(src *Pipe) {
	if p == src {
		return
	}
	wasOpen := p.IsOpen()
	p.r.CloneFrom(src.r)
	p.w.CloneFrom(src.w)
	p.noteClosed(wasOpen)
	if p.IsOpen() && !wasOpen {
		metrics.Default.PipesLive.Inc()
	}
}

// Read reads from the read end.
func (p *Pipe) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

// Write writes to the write end.
func (p *Pipe) Write(b []byte) (int, error) {
	return p.w.Write(b)
}
