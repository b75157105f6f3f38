package rooted

import "github.com/kolkov/rootedsync/internal/rooted/tag"

// Rc is a reference-counted owning handle to a heap value, tagged with the
// Root it was created under.
//
// Unlike a handle counted with sync/atomic, the count here is a plain
// integer: every count mutation requires a Guard for the owning Root, and at
// most one Guard exists per Root at any instant, so no concurrent writer can
// exist. That removes the hardware synchronization cost from Clone and Drop
// while keeping them safe across goroutines.
//
// Handles may be moved or copied between goroutines freely at any time;
// moving a handle mutates nothing shared. Reading the value through Get
// needs no Guard either. Only Clone, FastClone, Drop, IntoInner and Refs
// touch the shared count and therefore demand possession of the lock.
//
// Because Go has no destructors, releasing a handle is an explicit call:
// every handle must be consumed by exactly one Drop or IntoInner. A handle
// that has been consumed is dead; any further use panics.
type Rc[T any] struct {
	tag tag.Tag
	s   *rcShared[T] // nil once the handle has been consumed
}

// rcShared is the allocation shared by all handles to one value.
type rcShared[T any] struct {
	// refs counts live handles. Plain integer on purpose: all mutations
	// happen while the owning Root's lock is held.
	refs  int32
	value T
}

// NewRc allocates value on the heap with a reference count of one, tagged
// with root's identity. No Guard is required: no sharing exists yet, so
// there is nothing to race on.
func NewRc[T any](root *Root, value T) *Rc[T] {
	return &Rc[T]{
		tag: root.tag,
		s:   &rcShared[T]{refs: 1, value: value},
	}
}

// Tag returns the identity of the Root this handle was created under.
func (rc *Rc[T]) Tag() Tag {
	return rc.tag
}

// Get returns a pointer to the shared value. No Guard is needed: concurrent
// immutable access is outside this type's concern. A value that is itself
// mutated concurrently must carry its own synchronization, typically by
// being a RefCell.
//
// Panics if the handle has been consumed by Drop or IntoInner.
func (rc *Rc[T]) Get() *T {
	rc.live("Get")
	return &rc.s.value
}

// Clone creates a new handle aliasing the same allocation, incrementing the
// reference count by one.
//
// The Guard must belong to this handle's Root; otherwise Clone returns a
// *TagMismatchError and the count is untouched.
func (rc *Rc[T]) Clone(g *Guard) (*Rc[T], error) {
	rc.live("Clone")
	if err := g.authorize("Clone", rc.tag); err != nil {
		return nil, err
	}
	rc.s.refs++
	return &Rc[T]{tag: rc.tag, s: rc.s}, nil
}

// FastClone is Clone for callers that already hold the Root's lock across a
// longer operation and pass the Root itself around instead of the Guard
// value. The authorization semantics are the same — the tag check always
// runs — but violations panic instead of allocating an error, and possession
// is probed on the Root directly.
//
// FastClone on an unlocked Root, or on a Root other than the one the handle
// was created under, panics.
func (rc *Rc[T]) FastClone(root *Root) *Rc[T] {
	rc.live("FastClone")
	if root.tag != rc.tag {
		panic(&TagMismatchError{Op: "FastClone", Handle: rc.tag, Guard: root.tag})
	}
	root.assertHeld("FastClone")
	rc.s.refs++
	return &Rc[T]{tag: rc.tag, s: rc.s}
}

// Drop consumes this handle, decrementing the reference count. When the
// count reaches zero the shared allocation's payload is released; with no
// live handle left, the garbage collector reclaims the block.
//
// The Guard must belong to this handle's Root; otherwise Drop returns a
// *TagMismatchError, the count is untouched and the handle stays live.
func (rc *Rc[T]) Drop(g *Guard) error {
	rc.live("Drop")
	if err := g.authorize("Drop", rc.tag); err != nil {
		return err
	}
	s := rc.s
	rc.s = nil
	s.refs--
	if s.refs == 0 {
		var zero T
		s.value = zero
	}
	return nil
}

// IntoInner is Drop that additionally yields the value when this was the
// last handle. ok reports whether the count reached zero and value is the
// payload; when other handles remain, ok is false and value is the zero
// value.
//
// This is the hook for values that need explicit teardown: the last holder
// receives the value back and disposes of it.
func (rc *Rc[T]) IntoInner(g *Guard) (value T, ok bool, err error) {
	rc.live("IntoInner")
	if err := g.authorize("IntoInner", rc.tag); err != nil {
		var zero T
		return zero, false, err
	}
	s := rc.s
	rc.s = nil
	s.refs--
	if s.refs > 0 {
		var zero T
		return zero, false, nil
	}
	value = s.value
	var zero T
	s.value = zero
	return value, true, nil
}

// Refs returns the current reference count, for diagnostics and tests. Like
// every count access it requires a matching Guard.
func (rc *Rc[T]) Refs(g *Guard) (int, error) {
	rc.live("Refs")
	if err := g.authorize("Refs", rc.tag); err != nil {
		return 0, err
	}
	return int(rc.s.refs), nil
}

// live panics if the handle was already consumed.
func (rc *Rc[T]) live(op string) {
	if rc.s == nil {
		panic("rooted: " + op + ": use of dropped handle rooted in " + rc.tag.String())
	}
}
