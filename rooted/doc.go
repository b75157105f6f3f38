// Package rooted provides sharing primitives whose bookkeeping is protected
// by possession of an external lock instead of hardware atomic operations.
//
// The package targets systems structured as many independent shards — for
// example the simulated hosts of a discrete-event network simulator — each
// guarded by one coarse lock and containing a dense graph of
// cross-referencing objects. Within a shard, objects are shared as cheaply
// as with plain non-thread-safe reference counting; across goroutines, the
// handles remain safe to move and use over time because every mutation of
// shared bookkeeping demands proof that the shard's lock is held.
//
// # Quick Start
//
//	root := rooted.NewRoot()
//
//	// Wrap a value in a reference-counted handle tied to the root.
//	rc := rooted.NewRc(root, &Descriptor{})
//
//	// Reference-count mutations require the root's Guard.
//	g := root.Lock()
//	dup, err := rc.Clone(g)
//	if err != nil { ... }
//	g.Unlock()
//
//	// Handles move freely between goroutines; only the bookkeeping
//	// operations need the lock.
//	go func() {
//		_ = dup.Get() // no Guard needed for reads
//		g := root.Lock()
//		defer g.Unlock()
//		_ = dup.Drop(g)
//	}()
//
// # The Possession Protocol
//
// Three types carry the protocol:
//
//   - [Root]: an ownership domain with a unique identity ([Tag]) and an
//     exclusive lock. Create one per shard.
//   - [Guard]: returned by [Root.Lock]; proves the caller holds the lock.
//     At most one Guard exists per Root at any instant.
//   - [Tag]: the Root identity stamped into every handle and cell at
//     creation, compared against the Guard on every mutating call.
//
// [Rc] is the reference-counted handle: Clone and Drop mutate a plain,
// non-atomic count, which is sound because the Guard argument proves the
// calling goroutine is the only one currently permitted to mutate any count
// under that Root. [RefCell] applies the same idea to RefCell-style borrow
// tracking: Borrow and BorrowMut hand out shared or exclusive tokens whose
// bookkeeping is a plain integer, serialized by the lock's acquire/release
// order.
//
// The identity check is the load-bearing invariant. It runs unconditionally
// on every mutating call in every build mode. Presenting a Guard from the
// wrong Root fails with [ErrTagMismatch] before anything is mutated — it is
// never silently corrected, since that would mask a real race.
//
// # Error Model
//
// All failures are fail-fast programming errors, never transient conditions:
//
//   - [TagMismatchError]: a Guard for one Root presented to an object rooted
//     in another. Returned by Clone, Drop, IntoInner, Borrow, BorrowMut.
//   - [BorrowConflictError]: a borrow request violating shared/exclusive
//     exclusivity. Returned by Borrow and BorrowMut.
//   - Structural misuse — using a Guard after Unlock, a handle after Drop,
//     a token after Release — panics, the way sync.Mutex panics on unlocking
//     an unlocked mutex. These have no meaningful error-return recovery.
//
// Go's sync.Mutex has no lock poisoning: a goroutine that panics while
// holding a Guard releases the lock through its deferred Unlock, and
// whether the bookkeeping is still consistent is up to what the panicking
// code had done. Acquire Guards with defer Unlock so the lock itself is
// released on every exit path.
//
// # What Is Not Protected
//
// The protocol protects against races, not against caller logic errors:
//
//   - Locking a Root twice from the same goroutine deadlocks, as with
//     sync.Mutex.
//   - A handle must never be shared across two Roots; it is checked against
//     the one Root it was created under.
//   - A Guard must stay on the goroutine that acquired it.
//     [EnableAffinityChecks] adds runtime enforcement of this rule for
//     tests and debugging builds.
//
// # Performance Notes
//
// Clone and Drop replace an atomic read-modify-write with a plain increment
// behind a tag compare. Whether that beats atomic reference counting
// depends on the workload and the hardware's contended-atomics cost;
// benchmark on the target system rather than assuming. The package-level
// benchmarks compare against sync/atomic counting and sync.RWMutex cells as
// baselines.
package rooted
