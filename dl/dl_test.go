package dl_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poskit/poskit/dl"
)

// mathPath finds a system math library visible to the dynamic linker,
// skipping the test when the host has none.
func mathPath(t *testing.T) string {
	t.Helper()
	for _, path := range []string{"libm.so.6", "libm.so"} {
		if s, err := dl.Load("cos", path); err == nil {
			s.Close()
			return path
		}
	}
	t.Skip("no system math library visible to the dynamic linker")
	return ""
}

func mathLib(t *testing.T) *dl.Symbol {
	t.Helper()
	s, err := dl.Load("cos", mathPath(t))
	require.NoError(t, err)
	return s
}

func TestLoadMissingLibrary(t *testing.T) {
	_, err := dl.Load("anything", "/does/not/exist.so")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dlopen failed on /does/not/exist.so")
}

func TestLoadMissingSymbol(t *testing.T) {
	path := mathPath(t)

	_, err := dl.Load("poskit_no_such_symbol", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dlsym failed to find poskit_no_such_symbol in "+path)
}

func TestResolveAndCall(t *testing.T) {
	s := mathLib(t)
	defer s.Close()

	require.True(t, s.IsLoaded())
	require.NotNil(t, s.Pointer())
	require.NotZero(t, s.Addr())

	assert.InDelta(t, 1.0, dl.CallUnary(s, 0), 1e-12)
	assert.InDelta(t, -1.0, dl.CallUnary(s, 3.141592653589793), 1e-12)
}

func TestCallCount(t *testing.T) {
	var s *dl.Symbol
	var err error
	// pthread_self is unsigned long (*)(void), the same shape the count
	// trampoline calls through, and the calling thread's handle is never
	// zero.
	for _, path := range []string{"libc.so.6", "libc.so"} {
		if s, err = dl.Load("pthread_self", path); err == nil {
			break
		}
	}
	if err != nil {
		t.Skip("no system C library visible to the dynamic linker")
	}
	defer s.Close()

	assert.NotZero(t, dl.CallCount(s))
}

func TestCallEmptyPanics(t *testing.T) {
	assert.Panics(t, func() { dl.CallCount(&dl.Symbol{}) })
	assert.Panics(t, func() { dl.CallUnary(&dl.Symbol{}, 0) })
}

func TestMove(t *testing.T) {
	s := mathLib(t)

	addr := s.Addr()
	moved := s.Move()

	assert.False(t, s.IsLoaded())
	assert.Nil(t, s.Pointer())
	assert.Zero(t, s.Addr())
	assert.Equal(t, addr, moved.Addr())

	// Closing the moved-from source is a no-op; the symbol stays usable.
	s.Close()
	assert.InDelta(t, 1.0, dl.CallUnary(moved, 0), 1e-12)

	moved.Close()
	moved.Close()
	assert.False(t, moved.IsLoaded())
}

func TestMoveFrom(t *testing.T) {
	a := mathLib(t)
	b := mathLib(t)

	addr := b.Addr()
	a.MoveFrom(b)

	assert.False(t, b.IsLoaded())
	assert.Equal(t, addr, a.Addr())
	assert.InDelta(t, 1.0, dl.CallUnary(a, 0), 1e-12)

	a.Close()
	b.Close()
}

func TestReinterpret(t *testing.T) {
	s := mathLib(t)
	defer s.Close()

	p := dl.Reinterpret[unsafe.Pointer](s)
	assert.Equal(t, s.Pointer(), p)

	raw := dl.Reinterpret[uintptr](s)
	assert.Equal(t, s.Addr(), raw)
}
