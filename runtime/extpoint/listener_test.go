package extpoint

import (
	"testing"

	"github.com/xhd2015/augmentum/runtime/typedesc"
)

type recorder struct {
	registered   []string
	unregistered []string
}

func (r *recorder) OnRegister(p *Point)   { r.registered = append(r.registered, p.String()) }
func (r *recorder) OnUnregister(p *Point) { r.unregistered = append(r.unregistered, p.String()) }

func freshPoint(t *testing.T, pkg, name string) *Point {
	t.Helper()
	var fn func(int) int = func(x int) int { return x }
	sig := typedesc.FuncOf(typedesc.GetInt(32), []*typedesc.Descriptor{typedesc.GetInt(32)})
	return Register(pkg, name, sig, &fn, fn, fn, func(ret interface{}, args []interface{}) {})
}

func TestRegisterNotifiesAttachedListeners(t *testing.T) {
	t.Cleanup(Teardown)
	rec := &recorder{}
	Attach(rec, false)
	defer Detach(rec, false)

	p := freshPoint(t, "pkg/a", "Add")
	if len(rec.registered) != 1 || rec.registered[0] != p.String() {
		t.Fatalf("expected one OnRegister for %s, got %v", p, rec.registered)
	}
}

func TestAttachReplaysExistingPoints(t *testing.T) {
	t.Cleanup(Teardown)
	freshPoint(t, "pkg/b", "Sub")

	rec := &recorder{}
	Attach(rec, true)
	defer Detach(rec, false)

	if len(rec.registered) != 1 {
		t.Fatalf("expected replay of 1 existing point, got %v", rec.registered)
	}
}

func TestTeardownNotifiesUnregister(t *testing.T) {
	t.Cleanup(Teardown)
	p := freshPoint(t, "pkg/c", "Mul")

	rec := &recorder{}
	Attach(rec, false)

	Teardown()
	if len(rec.unregistered) != 1 || rec.unregistered[0] != p.String() {
		t.Fatalf("expected one OnUnregister for %s, got %v", p, rec.unregistered)
	}
	if _, ok := Lookup("pkg/c", "Mul"); ok {
		t.Fatal("point should be gone after Teardown")
	}
}

func TestLookupMiss(t *testing.T) {
	if _, ok := Lookup("no/such", "Pkg"); ok {
		t.Fatal("expected lookup miss")
	}
}
