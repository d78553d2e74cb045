// Package advice implements the before/around/after weaving algorithm that
// the generated extended entry dispatches into, and the operations
// (extend, remove, replace, reset) that mutate an extension point's advice
// chains. It is the Go-idiomatic reshaping of xgo's runtime/trap
// interceptor chain and trapImpl dispatch loop: three ordered phases
// instead of a flat Pre/Post pair, keyed by AdviceID instead of by
// goroutine-local interceptor identity.
package advice

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/xhd2015/augmentum/runtime/extpoint"
)

// AdviceID identifies a piece of advice across removal calls. 0 means "no
// identifier" and is never returned by NextID.
type AdviceID uint64

var idCounter uint64

// NextID allocates a fresh, process-wide unique, non-zero advice identifier.
func NextID() AdviceID {
	return AdviceID(atomic.AddUint64(&idCounter, 1))
}

// BeforeFunc observes a call's arguments before the original (or the
// around chain) runs. args mirrors the extended entry's raw argument
// pointers; see ArgObject for a named reflective view.
type BeforeFunc func(p *extpoint.Point, args []interface{})

// AroundFunc wraps a call. It is responsible for calling h.CallPrevious to
// invoke the next-inner layer (or the original, if it is innermost); an
// around advice that never calls CallPrevious elides everything inward of
// it, including the original function.
type AroundFunc func(p *extpoint.Point, h Handle, ret interface{}, args []interface{})

// AfterFunc observes a call's arguments and result after the original (or
// the around chain) has run.
type AfterFunc func(p *extpoint.Point, args []interface{}, ret interface{})

type node struct {
	id     AdviceID
	before BeforeFunc
	around AroundFunc
	after  AfterFunc
	next   *node // next INNER node; nil means "innermost"
}

// chains is the opaque advice-chain state stored in extpoint.Point's
// AdviceState. Each list's head is the most recently inserted node: for
// befores/afters that is "latest insertion first"; for arounds that is
// "latest insertion is outermost".
type chains struct {
	mu      sync.Mutex
	befores *node
	arounds *node
	afters  *node
}

func chainsOf(p *extpoint.Point) *chains {
	if st, ok := p.AdviceState().(*chains); ok {
		return st
	}
	return nil
}

// Handle references one advice node, returned by the Extend* functions and
// consumed by the Remove* and CallPrevious/CallCurrent operations.
type Handle struct {
	point *extpoint.Point
	node  *node
}

// ErrUnknownHandle is returned by RemoveBefore/Around/After when the handle
// does not refer to a node currently attached to the point - it was
// already removed, or the point has since been Reset or Replaced.
var ErrUnknownHandle = errors.New("advice: unknown handle")

func ensureExtended(p *extpoint.Point, current interface{}, setState func(interface{}), installSlot func(fn interface{}, state extpoint.State)) *chains {
	st, _ := current.(*chains)
	if st == nil {
		st = &chains{}
		setState(st)
		installSlot(p.Extended(), extpoint.Extended)
	}
	return st
}

func resetIfEmpty(p *extpoint.Point, st *chains, setState func(interface{}), installSlot func(fn interface{}, state extpoint.State)) {
	if st.befores == nil && st.arounds == nil && st.afters == nil {
		setState(nil)
		installSlot(p.Original(), extpoint.Original)
	}
}
