// Package typedesc interns the type descriptor tree that the rewriter
// builds for every instrumented function signature. Descriptors are
// compared by identity: two calls that describe the same shape always
// return the same *Descriptor, which lets the advice evaluator and the
// diagnostics dumper treat descriptor pointers as cache keys.
package typedesc

import (
	"fmt"
	"sync"
)

// Kind identifies which variant of Descriptor is populated.
type Kind int

const (
	Void Kind = iota
	Int
	Float
	Pointer
	Array
	Vector
	StructAnon
	StructNamed
	Func
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Int:
		return "int"
	case Float:
		return "float"
	case Pointer:
		return "pointer"
	case Array:
		return "array"
	case Vector:
		return "vector"
	case StructAnon:
		return "struct"
	case StructNamed:
		return "named_struct"
	case Func:
		return "func"
	case Unknown:
		return "unknown"
	}
	return "invalid"
}

// Descriptor is an interned node in a function's type-descriptor tree.
// Which fields are meaningful depends on Kind; see the per-kind
// constructors below.
type Descriptor struct {
	Kind Kind

	Bits int // Int, Float

	Elem *Descriptor // Pointer, Array, Vector
	Len  int         // Array, Vector

	Elems []*Descriptor // StructAnon, StructNamed

	Pkg  string // StructNamed, Unknown
	Name string // StructNamed

	Return *Descriptor   // Func
	Args   []*Descriptor // Func

	RawSignature string // Unknown: the type-serializer's textual form

	forward bool
	sig     string // memoized signature, computed once
	mu      sync.Mutex
}

var (
	voidOnce  sync.Once
	voidDesc  *Descriptor
	intMu     sync.Mutex
	intDescs  = map[int]*Descriptor{}
	floatMu   sync.Mutex
	floatDesc = map[int]*Descriptor{}

	ptrDescs sync.Map // elem *Descriptor -> *Descriptor

	aggMu    sync.Mutex
	arrDescs = map[string]*Descriptor{}

	anonMu    sync.Mutex
	anonDescs = map[string]*Descriptor{}

	funcMu    sync.Mutex
	funcDescs = map[string]*Descriptor{}

	namedMu    sync.Mutex
	namedDescs = map[string]*Descriptor{}

	unknownMu    sync.Mutex
	unknownDescs = map[string]*Descriptor{}
)

// ErrStructMismatch is returned (via panic, per the registration contract
// used by generated init code) when a named struct is completed twice with
// different element sets.
type ErrStructMismatch struct {
	Pkg, Name string
}

func (e *ErrStructMismatch) Error() string {
	return fmt.Sprintf("typedesc: conflicting definition for named struct %s.%s", e.Pkg, e.Name)
}

// GetVoid returns the singleton void descriptor.
func GetVoid() *Descriptor {
	voidOnce.Do(func() {
		voidDesc = &Descriptor{Kind: Void}
	})
	return voidDesc
}

// GetInt returns the singleton descriptor for an integer of the given bit
// width (1 for bool, 8/16/32/64 for the sized integer kinds).
func GetInt(bits int) *Descriptor {
	intMu.Lock()
	defer intMu.Unlock()
	d, ok := intDescs[bits]
	if !ok {
		d = &Descriptor{Kind: Int, Bits: bits}
		intDescs[bits] = d
	}
	return d
}

// GetFloat returns the singleton descriptor for a float of the given bit
// width (32 or 64).
func GetFloat(bits int) *Descriptor {
	floatMu.Lock()
	defer floatMu.Unlock()
	d, ok := floatDesc[bits]
	if !ok {
		d = &Descriptor{Kind: Float, Bits: bits}
		floatDesc[bits] = d
	}
	return d
}

// GetPointer canonicalizes a pointer-to-elem descriptor: at most one
// Pointer node exists per distinct element descriptor.
func GetPointer(elem *Descriptor) *Descriptor {
	if v, ok := ptrDescs.Load(elem); ok {
		return v.(*Descriptor)
	}
	candidate := &Descriptor{Kind: Pointer, Elem: elem}
	actual, _ := ptrDescs.LoadOrStore(elem, candidate)
	return actual.(*Descriptor)
}

// GetArray canonicalizes an [Len]Elem descriptor.
func GetArray(elem *Descriptor, length int) *Descriptor {
	return getAggregate(Array, elem, length)
}

// GetVector canonicalizes a <Len x Elem> descriptor. Go has no native SIMD
// vector type, and the rewriter never emits a call to this constructor;
// it is available to hand-written callers only.
func GetVector(elem *Descriptor, length int) *Descriptor {
	return getAggregate(Vector, elem, length)
}

func getAggregate(kind Kind, elem *Descriptor, length int) *Descriptor {
	key := fmt.Sprintf("%c:%p:%d", "AV"[boolToInt(kind == Vector)], elem, length)
	aggMu.Lock()
	defer aggMu.Unlock()
	d, ok := arrDescs[key]
	if !ok {
		d = &Descriptor{Kind: kind, Elem: elem, Len: length}
		arrDescs[key] = d
	}
	return d
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// StructAnonOf canonicalizes an anonymous struct descriptor by its ordered
// element list.
func StructAnonOf(elems []*Descriptor) *Descriptor {
	key := signatureOfElems(elems)
	anonMu.Lock()
	defer anonMu.Unlock()
	d, ok := anonDescs[key]
	if !ok {
		d = &Descriptor{Kind: StructAnon, Elems: elems}
		anonDescs[key] = d
	}
	return d
}

// FuncOf canonicalizes a function-type descriptor by its return type and
// ordered argument list.
func FuncOf(ret *Descriptor, args []*Descriptor) *Descriptor {
	key := "func(" + signatureOfElems(args) + ")" + sigOrVoid(ret)
	funcMu.Lock()
	defer funcMu.Unlock()
	d, ok := funcDescs[key]
	if !ok {
		d = &Descriptor{Kind: Func, Return: ret, Args: args}
		funcDescs[key] = d
	}
	return d
}

// GetForwardStruct returns the (possibly still-forward) named-struct
// descriptor for (pkg, name), creating a forward one if this is the first
// reference. Callers must cache the returned pointer before recursing into
// field types, breaking self-referential cycles.
func GetForwardStruct(pkg, name string) *Descriptor {
	key := pkg + "." + name
	namedMu.Lock()
	defer namedMu.Unlock()
	d, ok := namedDescs[key]
	if !ok {
		d = &Descriptor{Kind: StructNamed, Pkg: pkg, Name: name, forward: true}
		namedDescs[key] = d
	}
	return d
}

// SetStructElements completes a forward named-struct descriptor, or
// verifies that a previously completed one has the same elements. Panics
// with *ErrStructMismatch on disagreement - this indicates a bug in
// generated init code, not a runtime condition callers should recover from.
func SetStructElements(d *Descriptor, elems []*Descriptor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.forward {
		d.Elems = elems
		d.forward = false
		return
	}
	if !sameElems(d.Elems, elems) {
		panic(&ErrStructMismatch{Pkg: d.Pkg, Name: d.Name})
	}
}

// GetUnknown returns the opaque fallback descriptor for a type the
// rewriter cannot decompose field-by-field (interfaces, maps, channels,
// generics, slices, strings).
func GetUnknown(pkg, signature string) *Descriptor {
	key := pkg + "\x00" + signature
	unknownMu.Lock()
	defer unknownMu.Unlock()
	d, ok := unknownDescs[key]
	if !ok {
		d = &Descriptor{Kind: Unknown, Pkg: pkg, RawSignature: signature}
		unknownDescs[key] = d
	}
	return d
}

func sameElems(a, b []*Descriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Signature returns the descriptor's stable textual form, computed
// recursively and memoized. Named structs serialize by name in child
// position, which is what lets cyclic definitions serialize at all.
func (d *Descriptor) Signature() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sig != "" {
		return d.sig
	}
	d.sig = d.computeSignature()
	return d.sig
}

func (d *Descriptor) computeSignature() string {
	switch d.Kind {
	case Void:
		return "void"
	case Int:
		return fmt.Sprintf("int%d", d.Bits)
	case Float:
		return fmt.Sprintf("float%d", d.Bits)
	case Pointer:
		return d.Elem.Signature() + "*"
	case Array:
		return fmt.Sprintf("[%d]%s", d.Len, d.Elem.Signature())
	case Vector:
		return fmt.Sprintf("<%d x %s>", d.Len, d.Elem.Signature())
	case StructAnon:
		return "{" + signatureOfElems(d.Elems) + "}"
	case StructNamed:
		return "'" + d.Pkg + "." + d.Name + "'"
	case Func:
		return "func(" + signatureOfElems(d.Args) + ")" + sigOrVoid(d.Return)
	case Unknown:
		return "unknown<" + d.Pkg + ":" + d.RawSignature + ">"
	}
	return "?"
}

func sigOrVoid(d *Descriptor) string {
	if d == nil {
		return "void"
	}
	return d.Signature()
}

func signatureOfElems(elems []*Descriptor) string {
	out := ""
	for i, e := range elems {
		if i > 0 {
			out += ", "
		}
		out += e.Signature()
	}
	return out
}
