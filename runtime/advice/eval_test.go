package advice

import (
	"testing"

	"github.com/xhd2015/augmentum/runtime/extpoint"
	"github.com/xhd2015/augmentum/runtime/typedesc"
)

func addPoint(t *testing.T) (*extpoint.Point, *func(a, b int) int) {
	t.Helper()
	var fn func(a, b int) int = func(a, b int) int { return a + b }
	sig := typedesc.FuncOf(typedesc.GetInt(64), []*typedesc.Descriptor{typedesc.GetInt(64), typedesc.GetInt(64)})
	reflectFn := func(ret interface{}, args []interface{}) {
		a := *(args[0].(*int))
		b := *(args[1].(*int))
		*(ret.(*int)) = fn(a, b)
	}
	p := extpoint.Register("pkg/math", "Add", sig, &fn, fn, fn, reflectFn)
	t.Cleanup(extpoint.Teardown)
	return p, &fn
}

func TestEvalWithNoAdviceCallsOriginal(t *testing.T) {
	p, _ := addPoint(t)
	var ret int
	a, b := 3, 4
	Eval(p, &ret, []interface{}{&a, &b})
	if ret != 7 {
		t.Fatalf("expected 7, got %d", ret)
	}
}

func TestBeforeAndAfterOrdering(t *testing.T) {
	p, _ := addPoint(t)
	var order []string
	ExtendBefore(p, func(p *extpoint.Point, args []interface{}) { order = append(order, "before1") }, 0)
	ExtendBefore(p, func(p *extpoint.Point, args []interface{}) { order = append(order, "before2") }, 0)
	ExtendAfter(p, func(p *extpoint.Point, args []interface{}, ret interface{}) { order = append(order, "after1") }, 0)
	ExtendAfter(p, func(p *extpoint.Point, args []interface{}, ret interface{}) { order = append(order, "after2") }, 0)

	var ret int
	a, b := 1, 2
	Eval(p, &ret, []interface{}{&a, &b})

	want := []string{"before2", "before1", "after2", "after1"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
	if ret != 3 {
		t.Fatalf("expected 3, got %d", ret)
	}
}

func TestAroundChainOutermostFirstAndCallPrevious(t *testing.T) {
	p, _ := addPoint(t)
	var order []string

	ExtendAround(p, func(p *extpoint.Point, h Handle, ret interface{}, args []interface{}) {
		order = append(order, "around1-enter")
		h.CallPrevious(ret, args)
		order = append(order, "around1-exit")
	}, 0)
	ExtendAround(p, func(p *extpoint.Point, h Handle, ret interface{}, args []interface{}) {
		order = append(order, "around2-enter")
		h.CallPrevious(ret, args)
		order = append(order, "around2-exit")
	}, 0)

	var ret int
	a, b := 10, 20
	Eval(p, &ret, []interface{}{&a, &b})

	want := []string{"around2-enter", "around1-enter", "around1-exit", "around2-exit"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
	if ret != 30 {
		t.Fatalf("expected 30, got %d", ret)
	}
}

func TestAroundShortCircuitElidesOriginal(t *testing.T) {
	p, _ := addPoint(t)
	ExtendAround(p, func(p *extpoint.Point, h Handle, ret interface{}, args []interface{}) {
		*(ret.(*int)) = -1 // never calls CallPrevious
	}, 0)

	var ret int
	a, b := 1, 1
	Eval(p, &ret, []interface{}{&a, &b})
	if ret != -1 {
		t.Fatalf("expected short-circuited -1, got %d", ret)
	}
}

func TestRemoveByHandleResetsToOriginalWhenEmpty(t *testing.T) {
	p, _ := addPoint(t)
	h := ExtendBefore(p, func(p *extpoint.Point, args []interface{}) {}, 0)
	if !p.IsExtended() {
		t.Fatal("expected Extended after attach")
	}
	if err := RemoveBefore(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsOriginal() {
		t.Fatal("expected Original after removing the only advice")
	}
	if err := RemoveBefore(h); err != ErrUnknownHandle {
		t.Fatalf("expected ErrUnknownHandle on double removal, got %v", err)
	}
}

func TestRemoveByIDSweepsAllChains(t *testing.T) {
	p, _ := addPoint(t)
	id := NextID()
	ExtendBefore(p, func(p *extpoint.Point, args []interface{}) {}, id)
	ExtendAfter(p, func(p *extpoint.Point, args []interface{}, ret interface{}) {}, id)
	ExtendAround(p, func(p *extpoint.Point, h Handle, ret interface{}, args []interface{}) { h.CallPrevious(ret, args) }, id)

	Remove(p, id)
	if !p.IsOriginal() {
		t.Fatal("expected Original after removing every advice sharing the id")
	}
}

func TestReplaceBypassesAdvice(t *testing.T) {
	p, fn := addPoint(t)
	_ = fn
	ExtendBefore(p, func(p *extpoint.Point, args []interface{}) { t.Fatal("should not run under Replace") }, 0)

	var replaceFn func(a, b int) int = func(a, b int) int { return 999 }
	Replace(p, replaceFn)
	if !p.IsReplaced() {
		t.Fatal("expected Replaced state")
	}
	if p.Slot().(func(int, int) int)(1, 2) != 999 {
		t.Fatal("expected replaced function to be installed")
	}

	Reset(p)
	if !p.IsOriginal() {
		t.Fatal("expected Original after Reset")
	}
}

func TestNextIDNeverReturnsZero(t *testing.T) {
	for i := 0; i < 10; i++ {
		if NextID() == 0 {
			t.Fatal("NextID must never return 0")
		}
	}
}
