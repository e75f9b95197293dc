package interp

import (
	"fmt"

	"github.com/oxhq/autolang/internal/ownership"
	"github.com/oxhq/autolang/internal/value"
)

// builtins holds the host-provided functions available to every program
// without an explicit import: the linear-value constructor exercised by
// the ownership examples, a generic consumer used to force a read site,
// and the VM-ref release hook the resource-handling rules describe.
var builtins = map[string]func(it *Interp, args []value.Value) (value.Value, error){
	"make_linear": builtinMakeLinear,
	"use":         builtinUse,
	"close":       builtinClose,
	"len":         builtinLen,
	"print":       builtinPrint,
}

// linearHandle is the payload every make_linear value wraps; it carries
// no state of its own, only the drop hook ownership.MoveTracker expects.
type linearHandle struct{}

func (linearHandle) DropLinear() {}

// builtinMakeLinear mints an opaque linear value backed by a MoveTracker
// held in a VM-ref slot, the runtime counterpart to
// `let s: Linear = make_linear()`. Static use-after-move is already
// rejected by internal/borrow; the tracker is the runtime's matching
// defense if a host ever calls close or use out of order.
func builtinMakeLinear(it *Interp, args []value.Value) (value.Value, error) {
	tracker := ownership.NewMoveTracker("linear", linearHandle{})
	id := it.U.AddVmRef(tracker)
	return value.VmRef(id), nil
}

// builtinUse is the minimal "consume a value" call the examples use to
// create a read site. For a linear vmref it checks the tracker hasn't
// already been moved; for anything else it's the identity function.
func builtinUse(it *Interp, args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Void, nil
	}
	v := args[0]
	if v.Kind() != value.KindVmRef {
		return v, nil
	}
	tracker, ok := linearTracker(it, v)
	if !ok {
		return value.Nil, evalErr("use of a closed vmref")
	}
	if _, available := tracker.Get(); !available {
		return value.Nil, evalErr("use of moved value")
	}
	return v, nil
}

// builtinClose releases a VM-ref handle explicitly, taking the tracker
// (transitioning it to Moved, after which its Drop does not call
// DropLinear) and removing the VM-ref ahead of its owning scope exit.
func builtinClose(it *Interp, args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].Kind() != value.KindVmRef {
		return value.Nil, evalErr("close expects a single vmref argument")
	}
	tracker, ok := linearTracker(it, args[0])
	if !ok {
		return value.Nil, evalErr("close of an already-closed vmref")
	}
	if _, available := tracker.Get(); available {
		tracker.Take()
	}
	tracker.Drop()
	it.U.DropVmRef(args[0].VmRefID())
	return value.Void, nil
}

func linearTracker(it *Interp, v value.Value) (*ownership.MoveTracker[linearHandle], bool) {
	boxed, ok := it.U.GetVmRef(v.VmRefID())
	if !ok {
		return nil, false
	}
	tracker, ok := boxed.(*ownership.MoveTracker[linearHandle])
	return tracker, ok
}

func builtinLen(it *Interp, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Nil, evalErr("len expects exactly one argument")
	}
	switch args[0].Kind() {
	case value.KindArray:
		return value.Int(int32(len(args[0].Array()))), nil
	case value.KindStr:
		return value.Int(int32(len(args[0].Str()))), nil
	case value.KindObj:
		return value.Int(int32(args[0].Obj().Len())), nil
	default:
		return value.Nil, evalErr("len is not defined for %v", args[0].Kind())
	}
}

func builtinPrint(it *Interp, args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Display()
	}
	for i, p := range parts {
		if i > 0 {
			fmt.Fprint(it.Out, " ")
		}
		fmt.Fprint(it.Out, p)
	}
	fmt.Fprintln(it.Out)
	return value.Void, nil
}
