package rewrite

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	astutil "github.com/xhd2015/augmentum/instrument/ast"
	"github.com/xhd2015/augmentum/instrument/config"
	"github.com/xhd2015/augmentum/instrument/eligibility"
	"github.com/xhd2015/augmentum/support/edit/goedit"
)

// target is one function the rewriter has decided to instrument, with
// enough already resolved (names, types, identity) to drive every step of
// §4.E's transformation.
type target struct {
	decl         *ast.FuncDecl
	identityName string
	recv         *field // nil for a plain function
	params       []*field
	sig          *types.Signature
	pkgTypes     *types.Package
}

// collectTarget ensures every receiver/parameter slot of decl is named
// (editing the source where needed) and resolves its identity name and
// go/types signature, or returns ok=false if decl isn't a rewrite
// candidate at all (no declared types.Func, which only happens for
// declarations go/packages failed to type-check).
func collectTarget(decl *ast.FuncDecl, info *typesInfoLookup, pkgTypes *types.Package, editor *goedit.Edit) (*target, bool) {
	fn, ok := info.FuncOf(decl)
	if !ok {
		return nil, false
	}
	sig := fn.Type().(*types.Signature)

	recv := receiverField(decl, editor, info.Fset())
	params := ensureFieldNames(decl.Type.Params, paramNamePrefix, editor)

	identityName := decl.Name.Name
	if recv != nil {
		identityName, _, _, _ = astutil.ParseReceiverInfo(decl.Name.Name, decl.Recv.List[0].Type)
	}

	return &target{
		decl:         decl,
		identityName: identityName,
		recv:         recv,
		params:       params,
		sig:          sig,
		pkgTypes:     pkgTypes,
	}, true
}

// eligibleDecls returns the eligible function declarations in file, in
// declaration order. Called once per file before any rewriting starts, so
// generated helpers appended later are never themselves reconsidered.
func eligibleDecls(file *ast.File, pkgPath string, pred eligibility.Predicate) []*ast.FuncDecl {
	var out []*ast.FuncDecl
	for _, d := range file.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		if !eligibility.StructurallyEligible(fd) {
			config.Debug("function rejected", "pkg", pkgPath, "func", fd.Name.Name, "reason", "structural")
			continue
		}
		name := fd.Name.Name
		if fd.Recv == nil && name == "init" {
			continue
		}
		if identityName := functionIdentityHint(fd); !pred.ShouldInstrumentFunction(pkgPath, identityName) {
			config.Debug("function rejected", "pkg", pkgPath, "func", identityName, "reason", "predicate")
			continue
		}
		out = append(out, fd)
	}
	return out
}

// functionIdentityHint is the identity name computed straight from syntax,
// used to consult the eligibility predicate before collectTarget has
// resolved the declaration's types.Func; collectTarget calls the same astutil.ParseReceiverInfo once
// the function is accepted, so the hint and the final identity never
// disagree.
func functionIdentityHint(fd *ast.FuncDecl) string {
	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		return fd.Name.Name
	}
	identityName, _, _, _ := astutil.ParseReceiverInfo(fd.Name.Name, fd.Recv.List[0].Type)
	return identityName
}

// qualifier renders types in terms of the current package, the way
// generated code appended to the same file can refer to them: unqualified
// for same-package types, "otherpkg.Name" for imported ones (assuming the
// file already imports them under their default name, true for any type
// that appears in F's own signature).
func qualifier(pkg *types.Package) types.Qualifier {
	return types.RelativeTo(pkg)
}

func typeString(t types.Type, pkg *types.Package) string {
	return types.TypeString(t, qualifier(pkg))
}

// rewriteFunc performs every step of §4.E for one target: splices F's body
// down to a single delegating call, and returns the Go source of the
// helper declarations (original/fn/ep/reflect/extended/init) to append at
// file scope.
func rewriteFunc(pkgPath string, t *target, editor *goedit.Edit, content []byte, fset *token.FileSet) string {
	suffix := sanitizeIdent(t.identityName)
	origName := "f__augmentum_original_" + suffix
	fnVar := "f__augmentum_fn_" + suffix
	epVar := "f__augmentum_ep_" + suffix
	reflectName := "f__augmentum_reflect_" + suffix
	extendedName := "f__augmentum_extended_" + suffix

	var slots []*field
	if t.recv != nil {
		slots = append(slots, t.recv)
	}
	slots = append(slots, t.params...)

	paramTypes := make([]string, t.sig.Params().Len())
	for i := 0; i < t.sig.Params().Len(); i++ {
		paramTypes[i] = typeString(t.sig.Params().At(i).Type(), t.pkgTypes)
	}
	var allTypes []string
	if t.recv != nil {
		allTypes = append(allTypes, typeString(t.sig.Recv().Type(), t.pkgTypes))
	}
	allTypes = append(allTypes, paramTypes...)

	results := t.sig.Results()
	resultTypes := make([]string, results.Len())
	for i := 0; i < results.Len(); i++ {
		resultTypes[i] = typeString(results.At(i).Type(), t.pkgTypes)
	}

	declParams := make([]string, len(slots))
	for i, s := range slots {
		declParams[i] = s.Name + " " + allTypes[i]
	}
	resultList := formatResultList(resultTypes)

	// Step 5: replace F's body with a one-line delegating call, forwarding
	// every receiver/parameter slot by the name ensureFieldNames settled
	// on.
	callArgs := make([]string, len(slots))
	for i, s := range slots {
		callArgs[i] = s.Name
	}
	call := fmt.Sprintf("%s(%s)", fnVar, strings.Join(callArgs, ", "))
	var newBody string
	if results.Len() == 0 {
		newBody = "{ " + call + " }"
	} else {
		newBody = "{ return " + call + " }"
	}
	editor.Replace(t.decl.Body.Pos(), t.decl.Body.End(), newBody)

	var buf strings.Builder

	// Step 1: clone the original body verbatim.
	bodyText := sliceSource(content, fset, t.decl.Body.Pos(), t.decl.Body.End())
	fmt.Fprintf(&buf, "func %s(%s) %s %s\n\n", origName, strings.Join(declParams, ", "), resultList, bodyText)

	// Step 2: the fn_slot and extension-point handle.
	fnType := fmt.Sprintf("func(%s) %s", strings.Join(allTypes, ", "), resultList)
	fmt.Fprintf(&buf, "var %s %s = %s\n", fnVar, fnType, origName)
	fmt.Fprintf(&buf, "var %s *extpoint.Point\n\n", epVar)

	retType := reflectRetType(resultTypes)

	// Step 3: the reflective trampoline.
	buf.WriteString(reflectFuncSource(reflectName, origName, slots, allTypes, resultTypes, retType))
	buf.WriteString("\n")

	// Step 4: the extended entry that dispatches through advice.Eval.
	buf.WriteString(extendedFuncSource(extendedName, epVar, declParams, resultList, slots, resultTypes, retType))
	buf.WriteString("\n")

	// Step 6: init-time registration, building the function's type
	// descriptor tree from the resolved go/types signature.
	buf.WriteString(initFuncSource(pkgPath, t, epVar, fnVar, origName, extendedName, reflectName))

	return buf.String()
}

// formatResultList renders a result-type list the way Go requires:
// nothing for zero results, a bare type for exactly one, parenthesized for
// more than one.
func formatResultList(resultTypes []string) string {
	switch len(resultTypes) {
	case 0:
		return ""
	case 1:
		return resultTypes[0]
	default:
		return "(" + strings.Join(resultTypes, ", ") + ")"
	}
}

// reflectRetType is the type the reflective trampoline and the extended
// entry exchange a return value through: the lone result type directly, a
// one-field-per-result anonymous struct for multiple results, or "" for a
// void function (ret is never dereferenced in that case).
func reflectRetType(resultTypes []string) string {
	switch len(resultTypes) {
	case 0:
		return ""
	case 1:
		return resultTypes[0]
	default:
		fields := make([]string, len(resultTypes))
		for i, t := range resultTypes {
			fields[i] = fmt.Sprintf("R%d %s", i, t)
		}
		return "struct{ " + strings.Join(fields, "; ") + " }"
	}
}

func sanitizeIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// sliceSource returns the exact original text between start and end, so
// the rewriter never has to re-parse or re-print a cloned function body -
// and in particular never loses its comments.
func sliceSource(content []byte, fset *token.FileSet, start, end token.Pos) string {
	s := fset.Position(start).Offset
	e := fset.Position(end).Offset
	if s < 0 || e > len(content) || s > e {
		return ""
	}
	return string(content[s:e])
}
