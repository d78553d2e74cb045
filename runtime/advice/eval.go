package advice

import "github.com/xhd2015/augmentum/runtime/extpoint"

// Eval is the evaluator the generated extended entry calls into: before
// advice observes, the around chain (or the original, if there is none)
// runs, then after advice observes. It is the direct descendant of xgo's
// trapImpl dispatch loop, reshaped from a flat Pre/Post pair into three
// ordered phases.
func Eval(p *extpoint.Point, ret interface{}, args []interface{}) {
	st := chainsOf(p)
	if st == nil {
		p.Reflect()(ret, args)
		return
	}

	st.mu.Lock()
	before, around, after := st.befores, st.arounds, st.afters
	st.mu.Unlock()

	for n := before; n != nil; n = n.next {
		n.before(p, args)
	}

	if around != nil {
		Handle{point: p, node: around}.CallCurrent(ret, args)
	} else {
		p.Reflect()(ret, args)
	}

	for n := after; n != nil; n = n.next {
		n.after(p, args, ret)
	}
}

// CallOriginal invokes the reflective trampoline directly, bypassing the
// around chain entirely.
func CallOriginal(p *extpoint.Point, ret interface{}, args []interface{}) {
	p.Reflect()(ret, args)
}

// CallPrevious invokes the around node immediately inner to h, or the
// reflective original if h is innermost. An around advice calls this to
// continue the chain.
func (h Handle) CallPrevious(ret interface{}, args []interface{}) {
	if h.node != nil && h.node.next != nil {
		inner := h.node.next
		inner.around(h.point, Handle{point: h.point, node: inner}, ret, args)
		return
	}
	h.point.Reflect()(ret, args)
}

// CallCurrent re-invokes the around advice this handle was issued to,
// passing the same handle onward - used by the evaluator to bootstrap the
// outermost around node.
func (h Handle) CallCurrent(ret interface{}, args []interface{}) {
	h.node.around(h.point, h, ret, args)
}

// Point returns the extension point this handle was issued against.
func (h Handle) Point() *extpoint.Point { return h.point }

// ExtendBefore attaches a before advice, transitioning the point to
// Extended if it was Original. id may be 0 ("no identifier").
func ExtendBefore(p *extpoint.Point, fn BeforeFunc, id AdviceID) Handle {
	var h Handle
	p.Mutate(func(current interface{}, setState func(interface{}), installSlot func(interface{}, extpoint.State)) {
		st := ensureExtended(p, current, setState, installSlot)
		st.mu.Lock()
		defer st.mu.Unlock()
		n := &node{id: id, before: fn, next: st.befores}
		st.befores = n
		h = Handle{point: p, node: n}
	})
	return h
}

// ExtendAround attaches an around advice, transitioning the point to
// Extended if it was Original. The newly attached advice becomes the
// outermost layer.
func ExtendAround(p *extpoint.Point, fn AroundFunc, id AdviceID) Handle {
	var h Handle
	p.Mutate(func(current interface{}, setState func(interface{}), installSlot func(interface{}, extpoint.State)) {
		st := ensureExtended(p, current, setState, installSlot)
		st.mu.Lock()
		defer st.mu.Unlock()
		n := &node{id: id, around: fn, next: st.arounds}
		st.arounds = n
		h = Handle{point: p, node: n}
	})
	return h
}

// ExtendAfter attaches an after advice, transitioning the point to
// Extended if it was Original.
func ExtendAfter(p *extpoint.Point, fn AfterFunc, id AdviceID) Handle {
	var h Handle
	p.Mutate(func(current interface{}, setState func(interface{}), installSlot func(interface{}, extpoint.State)) {
		st := ensureExtended(p, current, setState, installSlot)
		st.mu.Lock()
		defer st.mu.Unlock()
		n := &node{id: id, after: fn, next: st.afters}
		st.afters = n
		h = Handle{point: p, node: n}
	})
	return h
}

// RemoveBefore detaches a before advice by handle. Resets the point to
// Original if no advice remains in any of the three chains.
func RemoveBefore(h Handle) error { return removeByHandle(h, func(st *chains) **node { return &st.befores }) }

// RemoveAround detaches an around advice by handle.
func RemoveAround(h Handle) error { return removeByHandle(h, func(st *chains) **node { return &st.arounds }) }

// RemoveAfter detaches an after advice by handle.
func RemoveAfter(h Handle) error { return removeByHandle(h, func(st *chains) **node { return &st.afters }) }

func removeByHandle(h Handle, head func(*chains) **node) error {
	found := false
	h.point.Mutate(func(current interface{}, setState func(interface{}), installSlot func(interface{}, extpoint.State)) {
		st, _ := current.(*chains)
		if st == nil {
			return
		}
		st.mu.Lock()
		found = unlink(head(st), h.node)
		st.mu.Unlock()
		if found {
			resetIfEmpty(h.point, st, setState, installSlot)
		}
	})
	if !found {
		return ErrUnknownHandle
	}
	return nil
}

func unlink(head **node, target *node) bool {
	if *head == target {
		*head = target.next
		return true
	}
	for n := *head; n != nil; n = n.next {
		if n.next == target {
			n.next = target.next
			return true
		}
	}
	return false
}

// Remove detaches every node (in all three chains) carrying the given
// non-zero identifier. A zero id is a no-op, mirroring "0 means no
// identifier".
func Remove(p *extpoint.Point, id AdviceID) {
	if id == 0 {
		return
	}
	p.Mutate(func(current interface{}, setState func(interface{}), installSlot func(interface{}, extpoint.State)) {
		st, _ := current.(*chains)
		if st == nil {
			return
		}
		st.mu.Lock()
		removeByID(&st.befores, id)
		removeByID(&st.arounds, id)
		removeByID(&st.afters, id)
		st.mu.Unlock()
		resetIfEmpty(p, st, setState, installSlot)
	})
}

func removeByID(head **node, id AdviceID) {
	for *head != nil && (*head).id == id {
		*head = (*head).next
	}
	for n := *head; n != nil && n.next != nil; {
		if n.next.id == id {
			n.next = n.next.next
			continue
		}
		n = n.next
	}
}

// Replace resets any attached advice and installs fn as the point's live
// function directly; no advice runs while a point is Replaced.
func Replace(p *extpoint.Point, fn interface{}) {
	p.Mutate(func(current interface{}, setState func(interface{}), installSlot func(interface{}, extpoint.State)) {
		setState(nil)
		installSlot(fn, extpoint.Replaced)
	})
}

// Reset detaches all advice and restores the point's original function.
func Reset(p *extpoint.Point) {
	p.Mutate(func(current interface{}, setState func(interface{}), installSlot func(interface{}, extpoint.State)) {
		setState(nil)
		installSlot(p.Original(), extpoint.Original)
	})
}
