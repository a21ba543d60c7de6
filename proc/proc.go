// Package proc provides a move-aware owning handle for a child process
// spawned from a registered task, plus the process-wide zombie policy.
//
// A Handle owns at most one child PID. The PID is a kernel identity usable
// only by this process; "moving" a handle transfers responsibility between
// in-process owners and nothing more. States form a small machine:
//
//	Empty -> Running -> {Exited, Detached}
//
// Start forks, Poll observes (and collapses Running to Empty on observed
// termination), Join waits with bounded exponential backoff, Stop signals
// without waiting, and Detach forgets the PID, handing the child to the
// process-wide zombie policy.
//
// Handles are not safe for concurrent use from multiple goroutines.
package proc

import (
	"errors"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/poskit/poskit/fd"
	"github.com/poskit/poskit/internal/config"
	"github.com/poskit/poskit/internal/logging"
	"github.com/poskit/poskit/internal/metrics"
	"github.com/poskit/poskit/perr"
)

// State is the observable state of a Handle.
type State uint8

const (
	// Empty means no child is owned: never started, exited, or detached.
	Empty State = iota
	// Running means a child PID is owned and was alive at the last poll.
	Running
)

var (
	rtcfg     = config.LoadOrDefault()
	policyOne sync.Once
)

// Handle owns at most one child process. Use New to construct; the zero
// value behaves as an empty handle. Any non-positive stored PID is
// treated as empty so a handle never waits on or signals a PID it does
// not own (0 would address the whole process group).
type Handle struct {
	pid int
}

// New returns an empty handle.
func New() *Handle {
	return &Handle{pid: -1}
}

// Start launches task in a fresh child process. A currently running child
// is first stopped best-effort (SIGTERM, no wait). On fork failure the
// handle is left empty and a *perr.Error is returned.
//
// The child inherits the parent's stdio; any extra descriptor handles are
// passed to the child as descriptors 3, 4, and so on, in order. The parent
// keeps ownership of the originals.
func (h *Handle) Start(task Task, extra ...*fd.FD) error {
	return h.start(task, false, extra)
}

func (h *Handle) start(task Task, newSession bool, extra []*fd.FD) error {
	policyOne.Do(applyConfiguredPolicy)

	if h.pid > 0 {
		h.Stop()
		metrics.Default.ChildrenLive.Dec()
		h.pid = -1
	}

	invocation := uuid.NewString()
	env := append(os.Environ(), EnvTaskID+"="+invocation)

	files := []uintptr{0, 1, 2}
	for _, f := range extra {
		files = append(files, uintptr(f.Raw()))
	}

	pid, err := syscall.ForkExec(self(), []string{task.name}, &syscall.ProcAttr{
		Env:   env,
		Files: files,
		Sys:   &syscall.SysProcAttr{Setsid: newSession},
	})
	if err != nil {
		metrics.Default.ForkErrors.Inc()
		return perr.FromErrno("fork failed", errnoOf(err))
	}

	h.pid = pid
	metrics.Default.ForksTotal.Inc()
	metrics.Default.ChildrenLive.Inc()
	logging.L().Debug("child started",
		zap.String("task", task.name),
		zap.String("invocation", invocation),
		zap.Int("pid", pid),
		zap.Bool("session", newSession),
	)
	return nil
}

// Poll observes the child without blocking and returns the fresh state.
// A child the kernel reports as terminated (or already reaped under the
// auto-reap policy) empties the handle.
func (h *Handle) Poll() State {
	if h.pid <= 0 {
		return Empty
	}

	for {
		var status unix.WaitStatus
		wpid, err := unix.Wait4(h.pid, &status, unix.WNOHANG, nil)
		switch {
		case err == unix.EINTR:
			continue
		case wpid == h.pid || err == unix.ECHILD:
			// Terminated, or consumed already by the kernel's
			// auto-reap disposition.
			h.forget()
			metrics.Default.ReapedTotal.Inc()
			return Empty
		default:
			return Running
		}
	}
}

// IsRunning reports whether the child was alive at this poll. Like Poll,
// it may empty the handle on observed termination.
func (h *Handle) IsRunning() bool {
	return h.Poll() == Running
}

// ID returns the child PID while Running, else 0. The value is unique only
// within the lifetime of this process.
func (h *Handle) ID() int {
	if h.pid > 0 {
		return h.pid
	}
	return 0
}

// Join blocks until the child is no longer running, polling with bounded
// exponential backoff (10ms doubling to a 1s cap by default). Joining an
// empty handle reports EINVAL.
func (h *Handle) Join() error {
	if h.pid <= 0 {
		return perr.FromErrno("join", unix.EINVAL)
	}

	delay := rtcfg.Join.Backoff()
	max := rtcfg.Join.BackoffMax()
	for h.IsRunning() {
		time.Sleep(delay)
		metrics.Default.JoinWaitsTotal.Inc()
		if delay *= 2; delay > max {
			delay = max
		}
	}
	return nil
}

// Stop sends SIGTERM to a running child. It does not wait and does not
// empty the handle; a later Poll or Join observes the termination. A child
// that ignores SIGTERM is not escalated to SIGKILL.
func (h *Handle) Stop() {
	if h.pid > 0 {
		_ = unix.Kill(h.pid, unix.SIGTERM)
		metrics.Default.StopsTotal.Inc()
	}
}

// Detach forgets the PID without signalling or waiting. The child keeps
// running; reaping falls to the process-wide zombie policy.
func (h *Handle) Detach() {
	if h.pid > 0 {
		metrics.Default.DetachedTotal.Inc()
	}
	h.forget()
}

// Release returns the PID (non-positive when empty) and empties the
// handle without signalling or waiting.
func (h *Handle) Release() int {
	pid := h.pid
	h.Detach()
	return pid
}

// Move transfers ownership of the child to a fresh handle; the receiver
// empties without signalling or waiting.
func (h *Handle) Move() *Handle {
	g := &Handle{pid: h.pid}
	h.pid = -1
	return g
}

// MoveFrom replaces the current child with ownership taken from src. A
// child previously owned by the receiver is released, not stopped; src
// becomes empty.
func (h *Handle) MoveFrom(src *Handle) {
	if h == src {
		return
	}
	h.Detach()
	h.pid = src.pid
	src.pid = -1
}

// Close stops the child if it is still running, without waiting. Combined
// with the zombie policy this lets owners drop handles without blocking;
// it never fails.
func (h *Handle) Close() {
	if h.IsRunning() {
		h.Stop()
	}
}

func (h *Handle) forget() {
	if h.pid > 0 {
		metrics.Default.ChildrenLive.Dec()
	}
	h.pid = -1
}

func applyConfiguredPolicy() {
	if rtcfg.Zombies.AutoReap {
		_ = EnableZombies(false)
	}
}

func errnoOf(err error) unix.Errno {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return unix.EAGAIN
}
