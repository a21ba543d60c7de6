package fd_test

import (
	"errors"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/poskit/poskit/fd"
)

// openScratch opens a fresh temp file and returns the raw descriptor. The
// caller owns it.
func openScratch(t *testing.T) int {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scratch")
	raw, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_TRUNC, 0o600)
	require.NoError(t, err)
	require.GreaterOrEqual(t, raw, 0)
	return raw
}

func TestNewIsEmpty(t *testing.T) {
	h := fd.New()
	assert.False(t, h.IsOpen())
	assert.Equal(t, -1, h.Raw())
}

func TestWrapOwns(t *testing.T) {
	raw := openScratch(t)

	h := fd.Wrap(raw)
	assert.True(t, h.IsOpen())
	assert.Equal(t, raw, h.Get())

	h.Close()
	assert.False(t, h.IsOpen())

	// The descriptor must be dead once the handle closed it.
	_, err := unix.Write(raw, []byte("x"))
	assert.Error(t, err)
}

func TestSetReleaseRoundTrip(t *testing.T) {
	raw := openScratch(t)

	h := fd.New()
	assert.Equal(t, raw, h.Set(raw))
	assert.True(t, h.IsOpen())
	assert.Equal(t, raw, h.Get())

	released := h.Release()
	assert.Equal(t, raw, released)
	assert.False(t, h.IsOpen())
	assert.Equal(t, -1, h.Get())

	// Release must not close: the descriptor stays writable.
	_, err := unix.Write(released, []byte("still open"))
	require.NoError(t, err)

	// set(release()) preserves ownership.
	h.Set(released)
	h.Set(h.Release())
	assert.True(t, h.IsOpen())
	assert.Equal(t, raw, h.Get())

	h.Close()
}

func TestCloseIdempotent(t *testing.T) {
	h := fd.Wrap(openScratch(t))
	h.Close()
	h.Close()
	assert.False(t, h.IsOpen())
}

func TestCloneSharesOffset(t *testing.T) {
	h := fd.Wrap(openScratch(t))
	defer h.Close()

	n, err := h.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	c := h.Clone()
	defer c.Close()
	require.True(t, c.IsOpen())
	assert.NotEqual(t, h.Raw(), c.Raw())

	// dup shares the open file description, so the clone sees the
	// original's offset.
	off, err := unix.Seek(c.Raw(), 0, 1 /* SEEK_CUR */)
	require.NoError(t, err)
	assert.Equal(t, int64(5), off)
}

func TestCloneEmpty(t *testing.T) {
	c := fd.New().Clone()
	assert.False(t, c.IsOpen())
}

func TestMove(t *testing.T) {
	raw := openScratch(t)
	h := fd.Wrap(raw)

	g := h.Move()
	defer g.Close()

	assert.False(t, h.IsOpen())
	assert.Equal(t, -1, h.Raw())
	assert.Equal(t, raw, g.Raw())

	_, err := g.Write([]byte("owned by g"))
	assert.NoError(t, err)
}

func TestMoveFrom(t *testing.T) {
	src := fd.Wrap(openScratch(t))
	dst := fd.Wrap(openScratch(t))
	prior := dst.Raw()
	raw := src.Raw()

	dst.MoveFrom(src)
	assert.False(t, src.IsOpen())
	assert.Equal(t, raw, dst.Raw())

	// The prior holding must have been closed.
	_, err := unix.Write(prior, []byte("x"))
	assert.Error(t, err)

	dst.Close()
}

func TestCloneFrom(t *testing.T) {
	src := fd.Wrap(openScratch(t))
	defer src.Close()

	dst := fd.New()
	dst.CloneFrom(src)
	defer dst.Close()

	assert.True(t, dst.IsOpen())
	assert.NotEqual(t, src.Raw(), dst.Raw())

	dst.CloneFrom(fd.New())
	assert.False(t, dst.IsOpen())
}

func TestReadWrite(t *testing.T) {
	h := fd.Wrap(openScratch(t))
	defer h.Close()

	_, err := h.Write([]byte("payload"))
	require.NoError(t, err)

	_, err = unix.Seek(h.Raw(), 0, 0 /* SEEK_SET */)
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, err := h.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(buf[:n]))
}

func TestEmptyHandleIO(t *testing.T) {
	h := fd.New()

	_, err := h.Read(make([]byte, 1))
	assert.True(t, errors.Is(err, unix.EBADF))

	_, err = h.Write([]byte("x"))
	assert.True(t, errors.Is(err, unix.EBADF))
}

func TestHandleSize(t *testing.T) {
	// The handle carries exactly one descriptor's worth of state.
	assert.Equal(t, unsafe.Sizeof(int(0)), unsafe.Sizeof(fd.FD{}))
}
