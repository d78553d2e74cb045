// Package rewrite implements the source-to-source transformation that
// turns an eligible function into an extension point: it is the direct
// descendant of xgo's instrument_func.TrapFuncs, generalized from "insert
// one defer statement" into the six-step clone/fn_slot/reflect/extended/
// body-rewrite/init transformation the advice evaluator needs.
package rewrite

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"github.com/xhd2015/augmentum/instrument/eligibility"
	"github.com/xhd2015/augmentum/instrument/load"
	"github.com/xhd2015/augmentum/support/edit/goedit"
)

// FuncResult describes one function the rewriter instrumented, for the
// driver's instrumentation-stats diagnostics.
type FuncResult struct {
	PkgPath      string
	IdentityName string
	File         string
}

// Result is everything Rewrite produced: the edited source of every
// touched file, plus a flat list of what got instrumented.
type Result struct {
	Funcs []FuncResult
	// Sources maps each rewritten file's absolute path to its final text.
	Sources map[string]string
}

// Rewrite transforms every eligible function in pkgs, snapshotting each
// file's declaration list up front so none of the helpers it appends are
// ever themselves reconsidered (the transformation is idempotent at the
// package level, as §4.E requires).
func Rewrite(pkgs *load.Packages, pred eligibility.Predicate) (*Result, error) {
	if pred == nil {
		pred = eligibility.Default
	}

	res := &Result{Sources: map[string]string{}}
	for _, pkg := range pkgs.Packages {
		if !pred.ShouldInstrumentPackage(pkg.PkgPath) {
			continue
		}
		for _, f := range pkg.Files {
			if f.Error != nil || f.Syntax == nil || f.Content == nil {
				continue
			}
			funcs, src, changed, err := rewriteFile(pkg, f, pkgs.Fset, pred)
			if err != nil {
				return nil, fmt.Errorf("rewrite %s: %w", f.AbsPath, err)
			}
			if !changed {
				continue
			}
			res.Funcs = append(res.Funcs, funcs...)
			res.Sources[f.AbsPath] = src
		}
	}
	return res, nil
}

func rewriteFile(pkg *load.Package, f *load.File, fset *token.FileSet, pred eligibility.Predicate) ([]FuncResult, string, bool, error) {
	decls := eligibleDecls(f.Syntax, pkg.PkgPath, pred)
	if len(decls) == 0 {
		return nil, "", false, nil
	}

	editor := goedit.New(fset, string(f.Content))
	lookup := &typesInfoLookup{info: pkg.Info, fset: fset}

	var results []FuncResult
	var appendix strings.Builder
	for _, decl := range decls {
		t, ok := collectTarget(decl, lookup, pkg.Types, editor)
		if !ok {
			continue
		}
		appendix.WriteString(rewriteFunc(pkg.PkgPath, t, editor, f.Content, fset))
		appendix.WriteString("\n")
		results = append(results, FuncResult{PkgPath: pkg.PkgPath, IdentityName: t.identityName, File: f.AbsPath})
	}
	if len(results) == 0 {
		return nil, "", false, nil
	}

	editor.Insert(f.Syntax.Name.End(),
		`;import "github.com/xhd2015/augmentum/runtime/extpoint"`+
			`;import "github.com/xhd2015/augmentum/runtime/advice"`+
			`;import "github.com/xhd2015/augmentum/runtime/typedesc"`)

	full := editor.String() + "\n" + appendix.String()
	return results, full, true, nil
}

// typesInfoLookup adapts a *types.Info/*token.FileSet pair to what
// collectTarget needs: the *types.Func a declaration type-checked to.
type typesInfoLookup struct {
	info *types.Info
	fset *token.FileSet
}

func (l *typesInfoLookup) Fset() *token.FileSet { return l.fset }

func (l *typesInfoLookup) FuncOf(decl *ast.FuncDecl) (*types.Func, bool) {
	if l.info == nil {
		return nil, false
	}
	obj := l.info.Defs[decl.Name]
	fn, ok := obj.(*types.Func)
	if !ok || fn == nil {
		return nil, false
	}
	return fn, true
}
