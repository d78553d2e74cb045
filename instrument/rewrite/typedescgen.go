package rewrite

import (
	"fmt"
	"go/types"
	"strings"

	"github.com/xhd2015/augmentum/instrument/typeserialize"
)

// descGen emits the Go source for the init-time type-descriptor tree of one
// function signature, mirroring §4.E's type-descriptor construction rules:
// basic types call the matching primitive accessor, pointers/arrays recurse
// then wrap, named structs register a forward descriptor before recursing
// into fields (breaking self-referential cycles), and anything the
// rewriter can't decompose falls back to typedesc.Unknown keyed by the
// type-serializer's textual form. The cache is keyed by that same textual
// form, so two parameters of identical shape share one descriptor variable.
type descGen struct {
	buf     strings.Builder
	cache   map[string]string
	counter int
}

func newDescGen() *descGen {
	return &descGen{cache: map[string]string{}}
}

// Build emits whatever statements are needed to construct t's descriptor
// and returns the name of the local variable holding it.
func (g *descGen) Build(t types.Type) string {
	key := typeserialize.Serialize(t)
	if v, ok := g.cache[key]; ok {
		return v
	}
	switch u := t.(type) {
	case *types.Basic:
		return g.basic(u, key)
	case *types.Pointer:
		elem := g.Build(u.Elem())
		return g.emit(key, "typedesc.GetPointer(%s)", elem)
	case *types.Array:
		elem := g.Build(u.Elem())
		return g.emit(key, fmt.Sprintf("typedesc.GetArray(%%s, %d)", u.Len()), elem)
	case *types.Named:
		return g.named(u, key)
	case *types.Struct:
		return g.anonStruct(u, key)
	case *types.Signature:
		return g.signature(u, key)
	default:
		return g.unknown(t, key)
	}
}

func (g *descGen) basic(b *types.Basic, key string) string {
	switch b.Kind() {
	case types.Bool:
		return g.emit(key, "typedesc.GetInt(1)")
	case types.Int8, types.Uint8:
		return g.emit(key, "typedesc.GetInt(8)")
	case types.Int16, types.Uint16:
		return g.emit(key, "typedesc.GetInt(16)")
	case types.Int32, types.Uint32:
		return g.emit(key, "typedesc.GetInt(32)")
	// int/uint are platform-sized; every Go build target this rewriter
	// targets (amd64, arm64) is 64-bit, so they're modeled as Int{64}.
	case types.Int, types.Uint, types.Int64, types.Uint64, types.Uintptr:
		return g.emit(key, "typedesc.GetInt(64)")
	case types.Float32:
		return g.emit(key, "typedesc.GetFloat(32)")
	case types.Float64:
		return g.emit(key, "typedesc.GetFloat(64)")
	default:
		// string, complex64/128, unsafe.Pointer: no primitive descriptor
		// variant models these, so they fall back like any other
		// unsupported type.
		return g.unknownSig(b.String(), key)
	}
}

func (g *descGen) named(u *types.Named, key string) string {
	obj := u.Obj()
	pkgPath := ""
	if obj.Pkg() != nil {
		pkgPath = obj.Pkg().Path()
	}
	st, ok := u.Underlying().(*types.Struct)
	if !ok {
		// a defined type over something other than a struct (e.g. `type
		// ID int64`) carries no field-level shape of its own; describing
		// its underlying type would lose the name, so it falls back to
		// Unknown keyed by the named type's own serialization.
		return g.unknownSig(typeserialize.Serialize(u), key)
	}

	v := g.varName()
	// Register the forward descriptor - and cache it - before recursing
	// into field types, so a field that refers back to u (directly or
	// through a pointer) sees the cached forward descriptor instead of
	// recursing forever.
	g.cache[key] = v
	fmt.Fprintf(&g.buf, "%s := typedesc.GetForwardStruct(%q, %q)\n", v, pkgPath, obj.Name())

	elemVars := make([]string, st.NumFields())
	for i := 0; i < st.NumFields(); i++ {
		elemVars[i] = g.Build(st.Field(i).Type())
	}
	fmt.Fprintf(&g.buf, "typedesc.SetStructElements(%s, []*typedesc.Descriptor{%s})\n", v, strings.Join(elemVars, ", "))
	return v
}

func (g *descGen) anonStruct(u *types.Struct, key string) string {
	elemVars := make([]string, u.NumFields())
	for i := 0; i < u.NumFields(); i++ {
		elemVars[i] = g.Build(u.Field(i).Type())
	}
	return g.emit(key, fmt.Sprintf("typedesc.StructAnonOf([]*typedesc.Descriptor{%s})", strings.Join(elemVars, ", ")))
}

func (g *descGen) signature(u *types.Signature, key string) string {
	if u.Results().Len() > 1 {
		// typedesc.Func models a single return value; a multi-return
		// func-typed parameter is rare enough in instrumented signatures
		// that it falls back to Unknown rather than growing the
		// descriptor shape to carry a tuple.
		return g.unknownSig(typeserialize.Serialize(u), key)
	}
	ret := "nil"
	if u.Results().Len() == 1 {
		ret = g.Build(u.Results().At(0).Type())
	}
	args := make([]string, u.Params().Len())
	for i := 0; i < u.Params().Len(); i++ {
		args[i] = g.Build(u.Params().At(i).Type())
	}
	return g.emit(key, fmt.Sprintf("typedesc.FuncOf(%s, []*typedesc.Descriptor{%s})", ret, strings.Join(args, ", ")))
}

func (g *descGen) unknown(t types.Type, key string) string {
	return g.unknownSig(typeserialize.Serialize(t), key)
}

func (g *descGen) unknownSig(sig, key string) string {
	return g.emit(key, fmt.Sprintf("typedesc.GetUnknown(%q, %q)", "", sig))
}

// emit formats expr (a typedesc constructor call, with one %s placeholder
// per arg) as a new local var declaration, caches it under key, and returns
// the var name.
func (g *descGen) emit(key, expr string, args ...string) string {
	v := g.varName()
	g.cache[key] = v
	call := expr
	if len(args) > 0 {
		anys := make([]interface{}, len(args))
		for i, a := range args {
			anys[i] = a
		}
		call = fmt.Sprintf(expr, anys...)
	}
	fmt.Fprintf(&g.buf, "%s := %s\n", v, call)
	return v
}

func (g *descGen) varName() string {
	g.counter++
	return fmt.Sprintf("__augmentum_t%d", g.counter)
}

// Stmts returns every statement emitted so far.
func (g *descGen) Stmts() string {
	return g.buf.String()
}
