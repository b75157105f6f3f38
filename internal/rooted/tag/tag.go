// Package tag implements process-global identity tags for ownership roots.
//
// Every Root is assigned a Tag at creation, and every handle or cell created
// under that Root carries a copy of it for its whole lifetime. The tag is the
// single value the runtime check compares on every mutating operation: a
// Guard authorizes an operation if and only if its tag equals the handle's.
//
// Tags are allocated from one global atomic counter, so they are unique for
// the lifetime of the process and never reused. 64 bits means the counter
// cannot realistically wrap: at one allocation per nanosecond it would take
// ~584 years.
//
// Key properties:
//   - Comparable: Tag is a plain uint64, equality is a single compare.
//   - Zero is invalid: Tag(0) is reserved and never allocated, so a
//     zero-valued handle is always detectable as "never rooted".
//
// Performance: tag comparison is on the hot path of every Clone/Drop/Borrow;
// allocation only happens at Root creation, which is rare (one per shard).
package tag

import (
	"strconv"
	"sync/atomic"
)

// Tag is the globally unique identity of an ownership root.
//
// The zero value is never allocated by Next and marks a handle that was not
// created through a Root.
type Tag uint64

// None is the reserved invalid tag.
const None Tag = 0

// next is the global allocation counter. The first allocated tag is 1.
var next atomic.Uint64

// Next allocates a fresh, process-globally unique tag.
//
// Safe for concurrent use; allocation is a single atomic increment. This is
// the only atomic operation in the whole system that runs per Root rather
// than per lock acquisition.
func Next() Tag {
	return Tag(next.Add(1))
}

// Valid reports whether t was allocated by Next.
func (t Tag) Valid() bool {
	return t != None
}

// String returns a human-readable representation, e.g. "root#7".
//
// Used in error messages and debug output, not on the hot path.
func (t Tag) String() string {
	if t == None {
		return "root#none"
	}
	return "root#" + strconv.FormatUint(uint64(t), 10)
}
