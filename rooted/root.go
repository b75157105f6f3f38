package rooted

import (
	"sync"
	"sync/atomic"

	"github.com/kolkov/rootedsync/internal/rooted/goid"
	"github.com/kolkov/rootedsync/internal/rooted/tag"
)

// Tag is the identity of a Root, fixed into every handle and cell created
// under it. See the internal tag package for allocation semantics.
type Tag = tag.Tag

// affinityChecks gates the optional goroutine-affinity assertion on Guards.
//
// Off by default: the assertion costs a runtime.Stack parse (~1µs) on every
// guarded operation. See EnableAffinityChecks.
var affinityChecks atomic.Bool

// EnableAffinityChecks turns on the defense-in-depth assertion that a Guard
// is only ever used by the goroutine that acquired it.
//
// A Guard is meant to be acquired and released within one goroutine's
// execution; handing it to another goroutine defeats the possession proof.
// With checks enabled, every guarded operation panics if it runs on a
// different goroutine than the one that called Lock.
//
// The check adds roughly a microsecond to every guarded operation, so it is
// intended for tests and debugging builds, in the spirit of running with the
// race detector enabled. Only Guards acquired after the call are checked.
func EnableAffinityChecks() {
	affinityChecks.Store(true)
}

// DisableAffinityChecks turns the goroutine-affinity assertion back off.
func DisableAffinityChecks() {
	affinityChecks.Store(false)
}

// Root is an ownership domain: a unique identity plus the exclusive lock
// that serializes all bookkeeping mutations on objects created under it.
//
// Typical use is one Root per independent shard (for example one simulated
// host), with a dense graph of Rc- and RefCell-wrapped objects inside it.
// Handles to those objects may move freely between goroutines; mutating them
// requires the Guard returned by Lock.
//
// A Root must outlive every handle and cell created under it. That is caller
// discipline, not enforced by the type.
type Root struct {
	mu  sync.Mutex
	tag tag.Tag

	// owner is 0 while unlocked. While locked it holds the locking
	// goroutine's ID, or -1 when affinity checks were off at Lock time.
	// It exists so FastClone can probe possession without a Guard value.
	owner atomic.Int64
}

// ownerAnonymous marks the Root locked by a goroutine whose ID was not
// recorded (affinity checks disabled).
const ownerAnonymous = -1

// NewRoot creates an unlocked Root with a fresh, process-unique identity.
func NewRoot() *Root {
	return &Root{tag: tag.Next()}
}

// Tag returns this Root's identity.
func (r *Root) Tag() Tag {
	return r.tag
}

// Lock blocks until the Root's lock is free and returns the Guard proving
// possession. Release it with Guard.Unlock, normally via defer:
//
//	g := root.Lock()
//	defer g.Unlock()
//
// Locking a Root the calling goroutine already holds deadlocks; that is a
// caller logic error outside this package's contract, exactly as with
// sync.Mutex.
func (r *Root) Lock() *Guard {
	r.mu.Lock()
	return r.newGuard()
}

// TryLock attempts to acquire the Root's lock without blocking. On success
// it returns the Guard and true; otherwise nil and false.
func (r *Root) TryLock() (*Guard, bool) {
	if !r.mu.TryLock() {
		return nil, false
	}
	return r.newGuard(), true
}

// newGuard records possession state. Called with r.mu held.
func (r *Root) newGuard() *Guard {
	g := &Guard{root: r}
	if affinityChecks.Load() {
		g.gid = goid.Current()
		r.owner.Store(g.gid)
	} else {
		r.owner.Store(ownerAnonymous)
	}
	return g
}

// assertHeld panics unless the Root is currently locked (and, with affinity
// checks on, locked by the calling goroutine). This is FastClone's possession
// probe: the caller vouches for holding the lock, and the probe catches the
// cheap-to-catch violations.
func (r *Root) assertHeld(op string) {
	owner := r.owner.Load()
	if owner == 0 {
		panic("rooted: " + op + ": " + r.tag.String() + " is not locked")
	}
	if owner != ownerAnonymous && affinityChecks.Load() && goid.Current() != owner {
		panic("rooted: " + op + ": " + r.tag.String() + " is locked by another goroutine")
	}
}

// Guard proves possession of a Root's lock. Every operation that mutates
// shared bookkeeping under the Root takes the Guard as an explicit argument
// and verifies its identity against the handle's tag.
//
// A Guard is valid from Lock until Unlock. Using it after Unlock panics.
// It must stay on the goroutine that acquired it; EnableAffinityChecks turns
// on runtime enforcement of that rule.
type Guard struct {
	root     *Root
	gid      int64 // locking goroutine, 0 when affinity checks were off
	released bool
}

// Tag returns the identity of the Root this Guard was acquired from.
func (g *Guard) Tag() Tag {
	return g.root.tag
}

// Unlock releases the Root's lock. The Guard is dead afterwards; any further
// use, including a second Unlock, panics.
func (g *Guard) Unlock() {
	g.use("Unlock")
	g.released = true
	g.root.owner.Store(0)
	g.root.mu.Unlock()
}

// use panics if the Guard is no longer valid or has crossed goroutines.
// It runs at the top of every guarded operation.
func (g *Guard) use(op string) {
	if g.released {
		panic("rooted: " + op + ": use of released Guard for " + g.root.tag.String())
	}
	if g.gid != 0 && goid.Current() != g.gid {
		panic("rooted: " + op + ": Guard for " + g.root.tag.String() +
			" used outside the goroutine that acquired it")
	}
}

// authorize is the load-bearing identity check: it verifies the Guard is
// live and that its Root's tag equals the handle's tag. It runs
// unconditionally on every mutating call; there is no build mode that
// compiles it out.
func (g *Guard) authorize(op string, t tag.Tag) error {
	g.use(op)
	if g.root.tag != t {
		return &TagMismatchError{Op: op, Handle: t, Guard: g.root.tag}
	}
	return nil
}

// mustAuthorize is authorize for paths with no error plumbing (token
// release, which typically runs in a defer). Violations panic.
func (g *Guard) mustAuthorize(op string, t tag.Tag) {
	if err := g.authorize(op, t); err != nil {
		panic(err)
	}
}
