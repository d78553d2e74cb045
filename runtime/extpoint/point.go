// Package extpoint owns the process-wide table of extension points created
// by generated init code, and the state machine each one moves through as
// advice is attached, replaced, and reset.
package extpoint

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/xhd2015/augmentum/runtime/core"
	"github.com/xhd2015/augmentum/runtime/typedesc"
)

// State is the lifecycle state of a Point's function slot.
type State int

const (
	// Original: the slot points at the unmodified clone of the function.
	Original State = iota
	// Extended: the slot points at the generated extended entry, and
	// advice runs on every call.
	Extended
	// Replaced: the slot points at a user-supplied function; no advice
	// runs.
	Replaced
)

// ReflectFunc is the signature of the generated reflective trampoline: it
// loads arguments out of args, calls the original function, and stores the
// result (if any) through ret.
type ReflectFunc func(ret interface{}, args []interface{})

// Point is one registered extension point, one entry per eligible function.
// slotPtr is the address of the generated f__augmentum_fn_* package variable;
// every public call goes through that variable directly, so mutating a
// Point means writing through slotPtr via reflection, not redirecting calls
// ourselves.
type Point struct {
	Pkg          string
	IdentityName string
	Sig          *typedesc.Descriptor // typedesc.Func descriptor

	slotPtr  reflect.Value // *FuncType, settable via Elem()
	original interface{}
	extended interface{}
	reflect  ReflectFunc

	mu    sync.Mutex
	state int32

	adviceMu    sync.Mutex
	adviceState interface{} // *advice.chains, opaque here to avoid an import cycle
}

// New constructs a Point. slot must be a pointer to a function variable of
// the function's own signature type (*func(P0,...) R); original and
// extended must be assignable to that same function type.
func New(pkg, identityName string, sig *typedesc.Descriptor, slot interface{}, original, extended interface{}, reflectFn ReflectFunc) *Point {
	slotPtr := reflect.ValueOf(slot)
	if slotPtr.Kind() != reflect.Ptr || slotPtr.Elem().Kind() != reflect.Func {
		panic(fmt.Sprintf("extpoint: slot for %s.%s must be a pointer to a func variable", pkg, identityName))
	}
	p := &Point{
		Pkg:          pkg,
		IdentityName: identityName,
		Sig:          sig,
		slotPtr:      slotPtr,
		original:     original,
		extended:     extended,
		reflect:      reflectFn,
	}
	slotPtr.Elem().Set(reflect.ValueOf(original))
	return p
}

// Key returns the registry key this point is stored under.
func (p *Point) Key() string {
	return core.Key(p.Pkg, p.IdentityName)
}

func (p *Point) State() State {
	return State(atomic.LoadInt32(&p.state))
}

func (p *Point) IsOriginal() bool { return p.State() == Original }
func (p *Point) IsExtended() bool { return p.State() == Extended }
func (p *Point) IsReplaced() bool { return p.State() == Replaced }

// Slot returns the function currently installed in the generated package
// variable - whatever a call through it will actually invoke.
func (p *Point) Slot() interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slotPtr.Elem().Interface()
}

// Original returns the clone of the function body exactly as it was before
// rewriting.
func (p *Point) Original() interface{} { return p.original }

// Extended returns the generated extended entry that dispatches through the
// advice evaluator.
func (p *Point) Extended() interface{} { return p.extended }

// Reflect returns the generated reflective trampoline used by
// CallOriginal/CallPrevious to invoke the original function from argument
// storage passed as interface{}-wrapped pointers.
func (p *Point) Reflect() ReflectFunc { return p.reflect }

// setSlot installs fn as the live function and records the new state. The
// caller (runtime/advice) holds adviceMu for the duration of the
// transition, which is the only mutation path, so concurrent transitions on
// the same point never interleave.
func (p *Point) setSlot(fn interface{}, state State) {
	p.mu.Lock()
	p.slotPtr.Elem().Set(reflect.ValueOf(fn))
	atomic.StoreInt32(&p.state, int32(state))
	p.mu.Unlock()
}

// Mutate serializes advice-chain transitions (attach/remove/replace/reset)
// on this point. f is handed the opaque advice-chain state currently
// installed (nil if none), a setter to replace it, and a setter to install
// a new live function and lifecycle state; runtime/advice is the only
// caller, and stores its own *advice.chains value as the opaque state.
func (p *Point) Mutate(f func(current interface{}, setState func(interface{}), installSlot func(fn interface{}, state State))) {
	p.adviceMu.Lock()
	defer p.adviceMu.Unlock()
	f(p.adviceState, func(v interface{}) { p.adviceState = v }, p.setSlot)
}

// AdviceState returns the opaque advice-chain state currently installed,
// outside of a Mutate call. Used by read-only inspection (advice.Eval's
// per-call snapshot) that only needs a snapshot.
func (p *Point) AdviceState() interface{} {
	p.adviceMu.Lock()
	defer p.adviceMu.Unlock()
	return p.adviceState
}

func (p *Point) String() string {
	return fmt.Sprintf("%s.%s", p.Pkg, p.IdentityName)
}
