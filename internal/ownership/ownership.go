// Package ownership implements the runtime move-tracking primitives that
// back AutoLang's linear types: the Linear contract and MoveTracker.
package ownership

import "fmt"

// MoveState is the lifecycle state of a linear binding.
type MoveState int

const (
	Available MoveState = iota
	Moved
)

func (s MoveState) String() string {
	if s == Moved {
		return "moved"
	}
	return "available"
}

// Linear is the capability a type opts into to signal move-only
// semantics. MoveTracker calls DropLinear at most once, from Drop on a
// still-available value; a value consumed by Take is handed to the
// caller and is never passed to DropLinear by the tracker.
type Linear interface {
	DropLinear()
}

// ErrUseAfterMove is raised (as a panic) by MoveTracker.Take when the
// tracked value has already been moved; Get reports a moved value by
// returning false instead. A well-formed program never reaches this
// at runtime because internal/borrow rejects it statically; this is the
// defense against incorrect host-side wiring callers rely on.
type ErrUseAfterMove struct {
	Binding string
}

func (e ErrUseAfterMove) Error() string {
	return fmt.Sprintf("use of moved value %q", e.Binding)
}

// MoveTracker wraps exactly one linear value at runtime.
type MoveTracker[T Linear] struct {
	binding string
	state   MoveState
	val     T
	dropped bool
}

// NewMoveTracker wraps v in state Available. binding is a human-readable
// name used only for diagnostics.
func NewMoveTracker[T Linear](binding string, v T) *MoveTracker[T] {
	return &MoveTracker[T]{binding: binding, state: Available, val: v}
}

// State reports the tracker's current lifecycle state.
func (m *MoveTracker[T]) State() MoveState { return m.state }

// IsMoved reports whether Take has already consumed the value.
func (m *MoveTracker[T]) IsMoved() bool { return m.state == Moved }

// Take consumes the value, transitioning Available -> Moved. Calling Take
// on an already-Moved tracker panics: this is the runtime's
// use-after-move defense of last resort.
func (m *MoveTracker[T]) Take() T {
	if m.state != Available {
		panic(ErrUseAfterMove{Binding: m.binding})
	}
	m.state = Moved
	m.dropped = true // Take hands off ownership; Drop must no-op afterward.
	return m.val
}

// Get returns the value if Available, or the zero value and false if
// Moved.
func (m *MoveTracker[T]) Get() (T, bool) {
	if m.state != Available {
		var zero T
		return zero, false
	}
	return m.val, true
}

// Drop runs DropLinear exactly once if the value is still Available and
// has not already been dropped or taken. Safe to call multiple times.
func (m *MoveTracker[T]) Drop() {
	if m.dropped {
		return
	}
	m.dropped = true
	if m.state == Available {
		m.val.DropLinear()
	}
}
