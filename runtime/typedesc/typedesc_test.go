package typedesc

import "testing"

func TestPrimitivesAreInterned(t *testing.T) {
	if GetInt(32) != GetInt(32) {
		t.Fatal("GetInt(32) should be interned")
	}
	if GetInt(32) == GetInt(64) {
		t.Fatal("distinct bit widths must not alias")
	}
	if GetVoid() != GetVoid() {
		t.Fatal("GetVoid should be interned")
	}
}

func TestPointerCanonicalizesPerElement(t *testing.T) {
	i32 := GetInt(32)
	p1 := GetPointer(i32)
	p2 := GetPointer(i32)
	if p1 != p2 {
		t.Fatal("pointer to same element should be interned")
	}
	if p1.Elem != i32 {
		t.Fatal("unexpected elem")
	}
}

func TestArrayKeyedByElemAndLen(t *testing.T) {
	i32 := GetInt(32)
	a1 := GetArray(i32, 4)
	a2 := GetArray(i32, 4)
	a3 := GetArray(i32, 8)
	if a1 != a2 {
		t.Fatal("same (elem, len) should be interned")
	}
	if a1 == a3 {
		t.Fatal("different len must not alias")
	}
}

func TestStructAnonSignature(t *testing.T) {
	s := StructAnonOf([]*Descriptor{GetInt(32), GetFloat(64)})
	if s.Signature() != "{int32, float64}" {
		t.Fatalf("unexpected signature: %s", s.Signature())
	}
	s2 := StructAnonOf([]*Descriptor{GetInt(32), GetFloat(64)})
	if s != s2 {
		t.Fatal("equal anonymous structs should be interned")
	}
}

func TestForwardStructBreaksCycles(t *testing.T) {
	node := GetForwardStruct("pkg", "Node")
	ptrToSelf := GetPointer(node)
	SetStructElements(node, []*Descriptor{GetInt(32), ptrToSelf})

	if node.Signature() != "'pkg.Node'" {
		t.Fatalf("named struct signature should be name-based, got %s", node.Signature())
	}

	again := GetForwardStruct("pkg", "Node")
	if again != node {
		t.Fatal("GetForwardStruct should return the same descriptor on a second call")
	}
}

func TestSetStructElementsMismatchPanics(t *testing.T) {
	node := GetForwardStruct("pkg", "Mismatched")
	SetStructElements(node, []*Descriptor{GetInt(32)})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on conflicting struct definition")
		}
	}()
	SetStructElements(node, []*Descriptor{GetInt(64)})
}

func TestFuncSignature(t *testing.T) {
	f := FuncOf(GetInt(32), []*Descriptor{GetInt(32), GetInt(32)})
	if f.Signature() != "func(int32, int32)int32" {
		t.Fatalf("unexpected signature: %s", f.Signature())
	}
	void := FuncOf(nil, nil)
	if void.Signature() != "func()void" {
		t.Fatalf("unexpected void-return signature: %s", void.Signature())
	}
}

func TestUnknownKeyedByPkgAndSignature(t *testing.T) {
	u1 := GetUnknown("pkg", "map[string]int")
	u2 := GetUnknown("pkg", "map[string]int")
	u3 := GetUnknown("pkg", "map[string]string")
	if u1 != u2 {
		t.Fatal("identical unknowns should be interned")
	}
	if u1 == u3 {
		t.Fatal("different signatures must not alias")
	}
}
