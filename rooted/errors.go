package rooted

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for errors.Is matching. The concrete error values returned
// by operations are *TagMismatchError and *BorrowConflictError, which carry
// the identities and state needed to diagnose a violation without
// reproducing it; they unwrap to these sentinels.
var (
	// ErrTagMismatch reports a Guard presented to a handle or cell rooted
	// in a different Root: a protocol violation, never a transient
	// condition. The operation performs no mutation.
	ErrTagMismatch = errors.New("tag mismatch")

	// ErrBorrowConflict reports a borrow request that violates the
	// shared/exclusive exclusivity of a RefCell. Nothing queues or
	// retries; the request simply fails.
	ErrBorrowConflict = errors.New("borrow conflict")
)

// TagMismatchError is returned when a mutating operation is attempted with a
// Guard whose Root identity differs from the handle's stored tag. It means
// some caller is touching a shard's objects without that shard's lock.
type TagMismatchError struct {
	Op     string // operation that was refused, e.g. "Clone"
	Handle Tag    // tag the handle or cell was created under
	Guard  Tag    // tag carried by the presented Guard
}

// Error implements the error interface.
func (e *TagMismatchError) Error() string {
	return fmt.Sprintf("rooted: %s: guard for %v cannot authorize object rooted in %v",
		e.Op, e.Guard, e.Handle)
}

// Unwrap makes errors.Is(err, ErrTagMismatch) work.
func (e *TagMismatchError) Unwrap() error {
	return ErrTagMismatch
}

// BorrowState is a RefCell's borrow bookkeeping state.
type BorrowState int32

const (
	// Unborrowed means no live borrow token exists.
	Unborrowed BorrowState = iota

	// BorrowShared means one or more live shared tokens exist.
	BorrowShared

	// BorrowExclusive means one live exclusive token exists.
	BorrowExclusive
)

// String returns the state name for error messages and debugging.
func (s BorrowState) String() string {
	switch s {
	case Unborrowed:
		return "unborrowed"
	case BorrowShared:
		return "shared"
	case BorrowExclusive:
		return "exclusive"
	default:
		return "BorrowState(" + strconv.Itoa(int(s)) + ")"
	}
}

// BorrowConflictError is returned when Borrow or BorrowMut would violate the
// exclusivity invariant: BorrowMut while any token is live, or Borrow while
// an exclusive token is live.
type BorrowConflictError struct {
	Op      string      // operation that was refused
	State   BorrowState // cell state at the time of the refused call
	Readers int         // live shared tokens when State == BorrowShared
}

// Error implements the error interface.
func (e *BorrowConflictError) Error() string {
	if e.State == BorrowShared {
		return fmt.Sprintf("rooted: %s: cell has %d live shared borrow(s)", e.Op, e.Readers)
	}
	return fmt.Sprintf("rooted: %s: cell is %v", e.Op, e.State)
}

// Unwrap makes errors.Is(err, ErrBorrowConflict) work.
func (e *BorrowConflictError) Unwrap() error {
	return ErrBorrowConflict
}
