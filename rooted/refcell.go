package rooted

import "github.com/kolkov/rootedsync/internal/rooted/tag"

// exclusiveBorrow is the borrow-field value marking one live exclusive token.
const exclusiveBorrow int32 = -1

// RefCell is an interior-mutability cell tagged with the Root it was created
// under. It hands out shared (read) and exclusive (write) borrow tokens and
// enforces classic RefCell exclusivity: any number of shared tokens, or one
// exclusive token, never both.
//
// The borrow bookkeeping is a plain integer with no lock or atomic of its
// own. Borrow, BorrowMut and token Release all require a Guard for the
// owning Root, and at most one Guard exists per Root at a time, so every
// state transition is inherently serialized.
//
// The cell itself may be embedded in shared structures (typically behind an
// Rc) and referenced from many goroutines; only borrow operations demand the
// lock.
type RefCell[T any] struct {
	tag tag.Tag

	// borrow is 0 when unborrowed, n>0 with n live shared tokens, and
	// exclusiveBorrow with one live exclusive token. Plain integer:
	// mutations only happen under the owning Root's lock.
	borrow int32
	value  T
}

// NewRefCell creates an unborrowed cell holding value, tagged with root's
// identity. No Guard is required at creation.
func NewRefCell[T any](root *Root, value T) *RefCell[T] {
	return &RefCell[T]{tag: root.tag, value: value}
}

// Tag returns the identity of the Root this cell was created under.
func (c *RefCell[T]) Tag() Tag {
	return c.tag
}

// state reports the current borrow state and live reader count.
func (c *RefCell[T]) state() (BorrowState, int) {
	switch {
	case c.borrow == exclusiveBorrow:
		return BorrowExclusive, 0
	case c.borrow > 0:
		return BorrowShared, int(c.borrow)
	default:
		return Unborrowed, 0
	}
}

// Borrow acquires a shared token for reading the cell's value. Any number
// of shared tokens may be live at once.
//
// Fails with *TagMismatchError if the Guard belongs to a different Root, and
// with *BorrowConflictError if an exclusive token is live. Neither failure
// mutates the cell; nothing queues or retries.
func (c *RefCell[T]) Borrow(g *Guard) (*Ref[T], error) {
	if err := g.authorize("Borrow", c.tag); err != nil {
		return nil, err
	}
	if c.borrow == exclusiveBorrow {
		return nil, &BorrowConflictError{Op: "Borrow", State: BorrowExclusive}
	}
	c.borrow++
	return &Ref[T]{cell: c}, nil
}

// BorrowMut acquires the exclusive token for mutating the cell's value. It
// requires the cell to be completely unborrowed.
//
// Fails with *TagMismatchError if the Guard belongs to a different Root, and
// with *BorrowConflictError if any token — shared or exclusive — is live.
// Neither failure mutates the cell.
func (c *RefCell[T]) BorrowMut(g *Guard) (*RefMut[T], error) {
	if err := g.authorize("BorrowMut", c.tag); err != nil {
		return nil, err
	}
	if state, readers := c.state(); state != Unborrowed {
		return nil, &BorrowConflictError{Op: "BorrowMut", State: state, Readers: readers}
	}
	c.borrow = exclusiveBorrow
	return &RefMut[T]{cell: c}, nil
}

// Ref is a live shared borrow of a RefCell. The value it exposes is to be
// treated as read-only; Go cannot make the pointer immutable, so that is a
// convention with the same standing as not mutating through a shared map.
//
// Every Ref must be released exactly once, while a matching Guard is held.
type Ref[T any] struct {
	cell *RefCell[T] // nil after release
}

// Value returns the borrowed value. Panics after release.
func (r *Ref[T]) Value() *T {
	if r.cell == nil {
		panic("rooted: Value: use of released shared borrow")
	}
	return &r.cell.value
}

// Release returns this shared token, decrementing the reader count; the
// last release returns the cell to unborrowed.
//
// Release normally runs in a defer, so protocol violations — a Guard for
// the wrong Root, a dead Guard, a second Release — panic rather than
// returning an error nobody checks.
func (r *Ref[T]) Release(g *Guard) {
	if r.cell == nil {
		panic("rooted: Release: shared borrow already released")
	}
	g.mustAuthorize("Release", r.cell.tag)
	r.cell.borrow--
	r.cell = nil
}

// RefMut is the live exclusive borrow of a RefCell, giving mutable access
// to the value. At most one exists per cell at any time.
//
// Every RefMut must be released exactly once, while a matching Guard is
// held.
type RefMut[T any] struct {
	cell *RefCell[T] // nil after release
}

// Value returns the exclusively borrowed value for reading and writing.
// Panics after release.
func (r *RefMut[T]) Value() *T {
	if r.cell == nil {
		panic("rooted: Value: use of released exclusive borrow")
	}
	return &r.cell.value
}

// Release returns the exclusive token, resetting the cell to unborrowed.
// Violations panic, as with Ref.Release.
func (r *RefMut[T]) Release(g *Guard) {
	if r.cell == nil {
		panic("rooted: Release: exclusive borrow already released")
	}
	g.mustAuthorize("Release", r.cell.tag)
	r.cell.borrow = 0
	r.cell = nil
}
