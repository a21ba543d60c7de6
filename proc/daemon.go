package proc

import "github.com/poskit/poskit/fd"

// Daemon is a Handle whose children run in a fresh session: Start calls
// setsid between fork and the task, fully detaching the child from the
// parent's controlling terminal and process group. Consistent with daemon
// semantics, Close releases the child instead of stopping it.
type Daemon struct {
	Handle
}

// NewDaemon returns an empty daemon handle.
func NewDaemon() *Daemon {
	return &Daemon{Handle: Handle{pid: -1}}
}

// Start launches task in a new session.
func (d *Daemon) Start(task Task, extra ...*fd.FD) error {
	return d.start(task, true, extra)
}

// Close releases the child without signalling; the daemon keeps running.
func (d *Daemon) Close() {
	d.Release()
}
