// Package goid extracts the current goroutine's ID for the optional
// thread-affinity assertion on Guards.
//
// A Guard is meant to be acquired and released within a single goroutine's
// execution. That discipline cannot be expressed in the type system, so when
// affinity checks are enabled the Guard records the goroutine that locked the
// Root and asserts every later use happens on the same goroutine.
//
// The ID is recovered by parsing the first line of runtime.Stack output:
//
//	goroutine 123 [running]:
//
// This is the universal method that works on every Go version and
// architecture, at a cost of roughly a microsecond per call. That is why the
// assertion is an opt-in debugging aid rather than an always-on check: the
// cost lands on every guarded operation, not just on lock acquisition.
package goid

import "runtime"

// stackPrefix is the fixed prefix of the first runtime.Stack line.
const stackPrefix = "goroutine "

// Current returns the ID of the calling goroutine.
//
// IDs are positive and unique for the lifetime of the process; the runtime
// never reuses them. Returns 0 only if the stack header cannot be parsed,
// which would indicate a runtime format change.
func Current() int64 {
	// Only the first line is needed; 64 bytes always covers
	// "goroutine <id> [running]:".
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parse(buf[:n])
}

// parse extracts the numeric ID from a stack-trace header.
//
// Direct byte parsing, no allocations beyond the caller's buffer. Returns 0
// for any input that does not start with the expected header.
func parse(buf []byte) int64 {
	if len(buf) < len(stackPrefix) || string(buf[:len(stackPrefix)]) != stackPrefix {
		return 0
	}

	var id int64
	for i := len(stackPrefix); i < len(buf); i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			// First non-digit ends the ID (the space before "[running]").
			break
		}
		id = id*10 + int64(c-'0')
	}
	return id
}
