package proc

import (
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/poskit/poskit/internal/logging"
	"github.com/poskit/poskit/internal/metrics"
)

// The SIGCHLD disposition is process-global state. EnableZombies mutates it
// for the whole process and must not race other goroutines touching signal
// dispositions, nor handles mid-poll.

// EnableZombies selects the process-wide reaping policy. With enable true,
// SIGCHLD is restored to its default disposition and terminated children
// linger as zombies until waited on. With enable false, SIGCHLD is ignored
// and the kernel reaps terminated children automatically.
//
// The error return is part of the contract for platforms where changing
// the disposition can fail; on Linux it is always nil.
func EnableZombies(enable bool) error {
	if enable {
		signal.Reset(syscall.SIGCHLD)
	} else {
		signal.Ignore(syscall.SIGCHLD)
	}
	logging.L().Debug("zombie policy changed", zap.Bool("zombies", enable))
	return nil
}

// ReapAll consumes every terminated child of this process without
// blocking. It waits on any child, not just those owned by handles, and
// may therefore consume status another collaborator was expecting.
func ReapAll() {
	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil || pid <= 0 {
			return
		}
		metrics.Default.ReapedTotal.Inc()
	}
}
