package extpoint

import (
	"sync"

	"github.com/xhd2015/augmentum/runtime/typedesc"
)

// registry is the process-wide associative container keyed by
// "pkg::identityName", populated exclusively by generated init functions
// and read by everything else. It mirrors the shape of xgo's functab
// registry, keyed on the function's registered name instead of its
// program-counter.
var (
	registryMu sync.RWMutex
	registry   = map[string]*Point{}
)

// Register installs a new extension point. It is only ever called from
// generated init code, at most once per function, so the common case is a
// fresh insert; a duplicate registration (the same package rewritten
// twice) overwrites the previous entry and is reported to listeners as a
// fresh OnRegister, mirroring Go's own "last init wins" semantics for
// package-level state.
func Register(pkg, identityName string, sig *typedesc.Descriptor, slot interface{}, original, extended interface{}, reflectFn ReflectFunc) *Point {
	return register(New(pkg, identityName, sig, slot, original, extended, reflectFn))
}

func register(p *Point) *Point {
	registryMu.Lock()
	registry[p.Key()] = p
	registryMu.Unlock()
	notifyRegister(p)
	return p
}

// Lookup returns the extension point registered for (pkg, identityName).
func Lookup(pkg, identityName string) (*Point, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[pkgKey(pkg, identityName)]
	return p, ok
}

// All returns every currently registered extension point, in unspecified
// order.
func All() []*Point {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]*Point, 0, len(registry))
	for _, p := range registry {
		out = append(out, p)
	}
	return out
}

// Teardown resets and unregisters every extension point, notifying
// listeners of each unregistration first. Nothing calls it automatically:
// the rewriter generates no shutdown hook, so it runs only when called
// explicitly (tests use it for a clean registry between cases).
func Teardown() {
	registryMu.Lock()
	points := make([]*Point, 0, len(registry))
	for k, p := range registry {
		points = append(points, p)
		delete(registry, k)
	}
	registryMu.Unlock()

	for _, p := range points {
		notifyUnregister(p)
		p.Mutate(func(_ interface{}, setState func(interface{}), installSlot func(interface{}, State)) {
			setState(nil)
			installSlot(p.original, Original)
		})
	}
}

func pkgKey(pkg, identityName string) string {
	return pkg + "::" + identityName
}
