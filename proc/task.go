package proc

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/poskit/poskit/internal/logging"
)

// Go cannot run an arbitrary closure in a forked child: the runtime is not
// usable on the child side of fork without an exec. Tasks are therefore
// registered under a name at init time, and Start re-executes the current
// binary with argv[0] set to the task name. Init, called first thing in
// main (or TestMain), detects that this process is a task child, runs the
// registered function, and exits 0.

// EnvTaskID carries the per-start invocation ID into the child's
// environment, for log correlation between parent and child.
const EnvTaskID = "POSKIT_TASK_ID"

var registeredTasks = make(map[string]func())

// Task names a registered child entry point. The zero value is invalid;
// obtain Tasks from Register.
type Task struct {
	name string
}

// Name returns the name the task was registered under.
func (t Task) Name() string { return t.name }

// Register adds fn as a child entry point under the given name and returns
// the Task to pass to Start. Must be called from init or main before any
// Start; registering the same name twice panics.
func Register(name string, fn func()) Task {
	if _, exists := registeredTasks[name]; exists {
		panic(fmt.Sprintf("proc: task %q already registered", name))
	}
	registeredTasks[name] = fn
	return Task{name: name}
}

// Init runs the registered task if this process was spawned as a task
// child, then exits with success status; it never returns in that case.
// On a regular invocation of the program it returns immediately; call it
// first in main:
//
//	func main() {
//		proc.Init()
//		...
//	}
func Init() {
	fn, exists := registeredTasks[os.Args[0]]
	if !exists {
		return
	}

	logging.L().Debug("task child running",
		zap.String("task", os.Args[0]),
		zap.String("invocation", os.Getenv(EnvTaskID)),
		zap.Int("pid", os.Getpid()),
	)

	fn()
	os.Exit(0)
}

// self returns the path re-executed for task children.
func self() string {
	if _, err := os.Stat("/proc/self/exe"); err == nil {
		return "/proc/self/exe"
	}
	path, err := os.Executable()
	if err != nil {
		return os.Args[0]
	}
	return path
}
