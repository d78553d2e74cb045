// Package script lets a user-provided JS module veto instrumentation
// decisions that the target-functions allowlist alone can't express. It is
// grounded on the teacher's own vendored goja usage in
// cmd/xgo/internal/vendir/.../diff/vscode/goja/diff_goja.go: compile once
// with goja.Compile, run the program once on a single goja.Runtime, then
// call the hook functions it defined on that same runtime for every query.
package script

import (
	"fmt"
	"os"
	"sync"

	"github.com/dop251/goja"

	"github.com/xhd2015/augmentum/instrument/eligibility"
)

// Predicate runs a compiled JS module's optional shouldInstrumentModule and
// shouldInstrumentFunction globals. A single goja.Runtime backs every call,
// guarded by mu - goja.Runtime is not goroutine-safe, so the driver must
// serialize predicate evaluation against one Predicate instance.
type Predicate struct {
	mu      sync.Mutex
	vm      *goja.Runtime
	hasPkg  bool
	hasFunc bool
}

var _ eligibility.Predicate = (*Predicate)(nil)

// Load compiles the JS module at path and binds its optional
// shouldInstrumentModule(pkgPath)/shouldInstrumentFunction(identityName)
// functions. A module defining neither still loads successfully; both
// hooks then default to accepting everything.
func Load(path string) (*Predicate, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("predicate-script: %w", err)
	}
	program, err := goja.Compile(path, string(src), true)
	if err != nil {
		return nil, fmt.Errorf("predicate-script: %w", err)
	}

	vm := goja.New()
	if _, err := vm.RunProgram(program); err != nil {
		return nil, fmt.Errorf("predicate-script: %w", err)
	}

	p := &Predicate{vm: vm}
	_, p.hasPkg = goja.AssertFunction(vm.Get("shouldInstrumentModule"))
	_, p.hasFunc = goja.AssertFunction(vm.Get("shouldInstrumentFunction"))
	return p, nil
}

// ShouldInstrumentPackage calls shouldInstrumentModule(pkgPath) if the
// script defined it, coercing its result to bool; absent, it accepts.
func (p *Predicate) ShouldInstrumentPackage(pkgPath string) bool {
	if !p.hasPkg {
		return true
	}
	return p.call("shouldInstrumentModule", pkgPath)
}

// ShouldInstrumentFunction calls shouldInstrumentFunction(identityName) if
// the script defined it; pkgPath is exposed as a "currentPackage" global
// for the duration of the call, the way §4.J describes exposing context.
func (p *Predicate) ShouldInstrumentFunction(pkgPath, identityName string) bool {
	if !p.hasFunc {
		return true
	}
	p.mu.Lock()
	p.vm.Set("currentPackage", pkgPath)
	p.mu.Unlock()
	return p.call("shouldInstrumentFunction", identityName)
}

func (p *Predicate) call(name string, arg string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	fn, ok := goja.AssertFunction(p.vm.Get(name))
	if !ok {
		return true
	}
	res, err := fn(goja.Undefined(), p.vm.ToValue(arg))
	if err != nil {
		return true
	}
	return res.ToBoolean()
}
