// Package eligibility decides which parsed function declarations the
// rewriter is allowed to touch. It mirrors the structural filtering xgo's
// instrument_func.TrapFuncs performs inline (skip bodyless decls, skip
// blank names) plus its config-driven stdlib whitelist, reshaped into a
// standalone, composable Predicate so the compiler-pass configuration and
// the script bridge can each contribute independently.
package eligibility

import (
	"go/ast"
)

// Predicate accepts or rejects packages and functions for rewriting.
// instrument/config's target-functions list and instrument/script's JS
// bridge both implement this, and Compose ANDs any number of them
// together with the structural check.
type Predicate interface {
	ShouldInstrumentPackage(pkgPath string) bool
	ShouldInstrumentFunction(pkgPath, identityName string) bool
}

// Default accepts every package and function; composing it with nothing
// else instruments every structurally eligible function.
var Default Predicate = defaultPredicate{}

type defaultPredicate struct{}

func (defaultPredicate) ShouldInstrumentPackage(string) bool          { return true }
func (defaultPredicate) ShouldInstrumentFunction(string, string) bool { return true }

// Compose ANDs a list of predicates: a package/function is eligible only
// if every predicate accepts it. An empty list behaves like Default.
func Compose(predicates ...Predicate) Predicate {
	return composed(predicates)
}

type composed []Predicate

func (c composed) ShouldInstrumentPackage(pkgPath string) bool {
	for _, p := range c {
		if !p.ShouldInstrumentPackage(pkgPath) {
			return false
		}
	}
	return true
}

func (c composed) ShouldInstrumentFunction(pkgPath, identityName string) bool {
	for _, p := range c {
		if !p.ShouldInstrumentFunction(pkgPath, identityName) {
			return false
		}
	}
	return true
}

// StructurallyEligible reports whether decl is the kind of declaration the
// rewriter can transform at all, independent of any predicate: it must
// have a body (not a forward declaration backed by assembly or cgo), it
// must have a non-blank name, it must not be variadic, and neither it nor
// its receiver may carry type parameters.
func StructurallyEligible(decl *ast.FuncDecl) bool {
	if decl.Body == nil {
		return false
	}
	if decl.Name == nil || decl.Name.Name == "" || decl.Name.Name == "_" {
		return false
	}
	if decl.Type.TypeParams != nil && len(decl.Type.TypeParams.List) > 0 {
		return false
	}
	if isVariadic(decl) {
		return false
	}
	if recvIsGeneric(decl) {
		return false
	}
	return true
}

func isVariadic(decl *ast.FuncDecl) bool {
	params := decl.Type.Params
	if params == nil || len(params.List) == 0 {
		return false
	}
	last := params.List[len(params.List)-1]
	_, ok := last.Type.(*ast.Ellipsis)
	return ok
}

func recvIsGeneric(decl *ast.FuncDecl) bool {
	if decl.Recv == nil || len(decl.Recv.List) == 0 {
		return false
	}
	typeExpr := decl.Recv.List[0].Type
	if star, ok := typeExpr.(*ast.StarExpr); ok {
		typeExpr = star.X
	}
	switch typeExpr.(type) {
	case *ast.IndexExpr, *ast.IndexListExpr:
		return true
	}
	return false
}
