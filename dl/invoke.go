package dl

/*
#include <stddef.h>

typedef size_t (*poskit_count_fn)(void);
typedef double (*poskit_unary_fn)(double);

static size_t poskit_call_count(void *p) {
	return ((poskit_count_fn)p)();
}

static double poskit_call_unary(void *p, double x) {
	return ((poskit_unary_fn)p)(x);
}
*/
import "C"

// Trampolines for the two C signatures the library's own tooling calls
// through resolved symbols. Anything else goes through Reinterpret with a
// caller-side bridge.

// CallCount invokes the symbol as size_t (*)(void) and returns the result.
// Calling an empty handle panics.
func CallCount(s *Symbol) uint {
	if s.ptr == nil {
		panic("dl: call on empty symbol handle")
	}
	return uint(C.poskit_call_count(s.ptr))
}

// CallUnary invokes the symbol as double (*)(double) and returns the
// result. Calling an empty handle panics.
func CallUnary(s *Symbol, x float64) float64 {
	if s.ptr == nil {
		panic("dl: call on empty symbol handle")
	}
	return float64(C.poskit_call_unary(s.ptr, C.double(x)))
}
