package perr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/poskit/poskit/perr"
)

func TestErrnoString(t *testing.T) {
	assert.Equal(t, "invalid argument", perr.ErrnoString(int(unix.EINVAL)))
	assert.Equal(t, "no such file or directory", perr.ErrnoString(int(unix.ENOENT)))
}

func TestErrorMessage(t *testing.T) {
	err := perr.FromErrno("pipe", unix.EMFILE)
	assert.Contains(t, err.Error(), "pipe")
	assert.Contains(t, err.Error(), "too many open files")
	assert.Contains(t, err.Error(), "24")
}

func TestErrorWithPath(t *testing.T) {
	err := perr.FromErrnoPath("open", "/etc/nope", unix.ENOENT)
	assert.Contains(t, err.Error(), "open /etc/nope")
	assert.Contains(t, err.Error(), "no such file or directory")
}

func TestUnwrapMatchesErrno(t *testing.T) {
	err := perr.FromErrno("join", unix.EINVAL)
	assert.True(t, errors.Is(err, unix.EINVAL))
	assert.False(t, errors.Is(err, unix.ENOENT))
}
