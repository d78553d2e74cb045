package rewrite

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/xhd2015/augmentum/support/edit/goedit"
)

const (
	recvNamePrefix  = "__augmentum_recv"
	paramNamePrefix = "__augmentum_arg"
)

// field is one receiver or parameter slot of the function being rewritten,
// named so the generated delegating call and the extended/reflect entries
// can refer to it unambiguously.
type field struct {
	Name string
	Type ast.Expr
}

// ensureFieldNames walks fieldList (the receiver list or the parameter
// list), renaming every blank ("_") or missing name to a fresh one so the
// one-line delegating body the rewriter installs in F can forward every
// slot by name. It is xgo's instrument_func.processFieldNames narrowed to
// the cases the rewriter actually needs: result lists never need this,
// since the rewritten body no longer references them by name.
func ensureFieldNames(fieldList *ast.FieldList, prefix string, editor *goedit.Edit) []*field {
	if fieldList == nil || len(fieldList.List) == 0 {
		return nil
	}

	var fields []*field
	seq := 0
	for _, f := range fieldList.List {
		if len(f.Names) == 0 {
			name := fmt.Sprintf("%s%d", prefix, seq)
			editor.Insert(f.Type.Pos(), name+" ")
			fields = append(fields, &field{Name: name, Type: f.Type})
			seq++
			continue
		}
		for _, n := range f.Names {
			name := n.Name
			if name == "" || name == "_" {
				name = fmt.Sprintf("%s%d", prefix, seq)
				editor.Replace(n.Pos(), n.End(), name)
			}
			fields = append(fields, &field{Name: name, Type: f.Type})
			seq++
		}
	}
	return fields
}

// receiverField returns the single named receiver field for decl, or nil
// for a plain function. Panics on a multi-name receiver list, which the Go
// grammar forbids in the first place.
func receiverField(decl *ast.FuncDecl, editor *goedit.Edit, fset *token.FileSet) *field {
	fields := ensureFieldNames(decl.Recv, recvNamePrefix, editor)
	if len(fields) == 0 {
		return nil
	}
	if len(fields) > 1 {
		pos := fset.Position(decl.Pos())
		panic(fmt.Sprintf("%s:%d: multiple receiver names on %s", pos.Filename, pos.Line, decl.Name.Name))
	}
	return fields[0]
}
