package typeserialize

import (
	"go/types"
	"testing"
)

func TestSerializeBasic(t *testing.T) {
	if Serialize(types.Typ[types.Int32]) != "int32" {
		t.Fatalf("unexpected: %s", Serialize(types.Typ[types.Int32]))
	}
}

func TestSerializePointer(t *testing.T) {
	p := types.NewPointer(types.Typ[types.Int32])
	if Serialize(p) != "int32*" {
		t.Fatalf("unexpected: %s", Serialize(p))
	}
}

func TestSerializeArray(t *testing.T) {
	a := types.NewArray(types.Typ[types.Float64], 4)
	if Serialize(a) != "[4]float64" {
		t.Fatalf("unexpected: %s", Serialize(a))
	}
}

func TestSerializeStruct(t *testing.T) {
	s := types.NewStruct([]*types.Var{
		types.NewField(0, nil, "X", types.Typ[types.Int32], false),
		types.NewField(0, nil, "Y", types.Typ[types.Int32], false),
	}, nil)
	if Serialize(s) != "{int32, int32}" {
		t.Fatalf("unexpected: %s", Serialize(s))
	}
}

func TestIsUnsupported(t *testing.T) {
	if !IsUnsupported(types.NewInterfaceType(nil, nil)) {
		t.Fatal("interface should be unsupported")
	}
	if IsUnsupported(types.Typ[types.Int32]) {
		t.Fatal("int32 should be supported")
	}
}
