// Package typeserialize computes the deterministic textual form of a
// parsed go/types.Type that the rewriter uses as an internal cache key
// while building a function's type-descriptor tree, and as the signature
// text of typedesc.Unknown descriptors.
package typeserialize

import (
	"fmt"
	"go/types"
)

// ByValue marks whether a type occupies argument position by value.
// Serialize does not take it: every pointer serializes with its trailing
// "*", whatever position it appears in.
type ByValue bool

// Serialize returns t's stable textual form.
func Serialize(t types.Type) string {
	switch u := t.(type) {
	case *types.Basic:
		return u.Name()
	case *types.Pointer:
		return Serialize(u.Elem()) + "*"
	case *types.Array:
		return fmt.Sprintf("[%d]%s", u.Len(), Serialize(u.Elem()))
	case *types.Named:
		obj := u.Obj()
		pkg := ""
		if obj.Pkg() != nil {
			pkg = obj.Pkg().Path()
		}
		return "@%" + pkg + "." + obj.Name() + "%@"
	case *types.Struct:
		return serializeStruct(u)
	case *types.Signature:
		return serializeSignature(u)
	case *types.Slice:
		return "[]" + Serialize(u.Elem())
	case *types.Map:
		return "map[" + Serialize(u.Key()) + "]" + Serialize(u.Elem())
	case *types.Chan:
		return "chan " + Serialize(u.Elem())
	case *types.Interface:
		if u.NumMethods() == 0 {
			return "interface{}"
		}
		return fmt.Sprintf("interface{...%d methods}", u.NumMethods())
	default:
		return t.String()
	}
}

func serializeStruct(s *types.Struct) string {
	out := "{"
	for i := 0; i < s.NumFields(); i++ {
		if i > 0 {
			out += ", "
		}
		out += Serialize(s.Field(i).Type())
	}
	return out + "}"
}

func serializeSignature(sig *types.Signature) string {
	out := "@$"
	ret := "void"
	if sig.Results().Len() == 1 {
		ret = Serialize(sig.Results().At(0).Type())
	} else if sig.Results().Len() > 1 {
		ret = serializeTuple(sig.Results())
	}
	out += ret
	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		out += ", " + Serialize(params.At(i).Type())
	}
	return out + "$@"
}

func serializeTuple(t *types.Tuple) string {
	out := "("
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			out += ", "
		}
		out += Serialize(t.At(i).Type())
	}
	return out + ")"
}

// IsUnsupported reports whether t has no field-level decomposition the
// rewriter can build a typedesc tree from, and must fall back to
// typedesc.Unknown.
func IsUnsupported(t types.Type) bool {
	switch u := t.(type) {
	case *types.Interface, *types.Map, *types.Chan, *types.Slice, *types.TypeParam:
		return true
	case *types.Named:
		_, isStruct := u.Underlying().(*types.Struct)
		return !isStruct
	case *types.Signature:
		return u.Results().Len() > 1
	}
	if _, ok := t.(*types.Basic); ok {
		b := t.(*types.Basic)
		switch b.Kind() {
		case types.String, types.UnsafePointer, types.Complex64, types.Complex128:
			return true
		}
	}
	return false
}
