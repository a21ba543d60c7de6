package pipe

import (
	"fmt"
	"os"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"

	"github.com/poskit/poskit/fd"
	"github.com/poskit/poskit/internal/metrics"
)

// Term owns a pseudo-terminal pair, managed with the same two-descriptor
// discipline as Pipe: each side independently closable, clone via dup,
// open while either side is. Unlike a pipe, both sides are bidirectional;
// the master side observes and drives the slave side's terminal.
type Term struct {
	master *fd.FD
	slave  *fd.FD
}

// NewTerm allocates a pseudo-terminal pair.
func NewTerm() (*Term, error) {
	m, s, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("pty open: %w", err)
	}

	mfd, err := detach(m)
	if err != nil {
		m.Close()
		s.Close()
		return nil, fmt.Errorf("pty master: %w", err)
	}
	sfd, err := detach(s)
	if err != nil {
		_ = unix.Close(mfd)
		s.Close()
		return nil, fmt.Errorf("pty slave: %w", err)
	}

	metrics.Default.PipesLive.Inc()
	return &Term{master: fd.Wrap(mfd), slave: fd.Wrap(sfd)}, nil
}

// detach moves ownership of f's descriptor out of the os.File so the
// runtime finalizer cannot close it behind the handle's back.
func detach(f *os.File) (int, error) {
	duped, err := unix.Dup(int(f.Fd()))
	if err != nil {
		return -1, err
	}
	f.Close()
	return duped, nil
}

// Master returns the master-side handle. The term retains ownership.
func (t *Term) Master() *fd.FD { return t.master }

// Slave returns the slave-side handle. The term retains ownership.
func (t *Term) Slave() *fd.FD { return t.slave }

// MasterFD returns the raw master descriptor, or -1 if closed.
func (t *Term) MasterFD() int { return t.master.Raw() }

// SlaveFD returns the raw slave descriptor, or -1 if closed.
func (t *Term) SlaveFD() int { return t.slave.Raw() }

// IsOpen reports whether either side is still owned.
func (t *Term) IsOpen() bool {
	return t.master.IsOpen() || t.slave.IsOpen()
}

// CloseMaster closes the master side. Chainable.
func (t *Term) CloseMaster() *Term {
	wasOpen := t.IsOpen()
	t.master.Close()
	t.noteClosed(wasOpen)
	return t
}

// CloseSlave closes the slave side. Chainable.
func (t *Term) CloseSlave() *Term {
	wasOpen := t.IsOpen()
	t.slave.Close()
	t.noteClosed(wasOpen)
	return t
}

// Close closes both sides. Idempotent; chainable.
func (t *Term) Close() *Term {
	wasOpen := t.IsOpen()
	t.master.Close()
	t.slave.Close()
	t.noteClosed(wasOpen)
	return t
}

func (t *Term) noteClosed(wasOpen bool) {
	if wasOpen && !t.IsOpen() {
		metrics.Default.PipesLive.Dec()
	}
}

// Clone returns a new pair with both sides duplicated via dup(2),
// delegating to the fd clone semantics: a failed dup leaves that side
// empty. Both handles refer to the same underlying terminal.
func (t *Term) Clone() *Term {
	u := &Term{master: t.master.Clone(), slave: t.slave.Clone()}
	if u.IsOpen() {
		metrics.Default.PipesLive.Inc()
	}
	return u
}

// Move transfers both sides to a fresh handle; the receiver becomes empty.
func (t *Term) Move() *Term {
	return &Term{master: t.master.Move(), slave: t.slave.Move()}
}
