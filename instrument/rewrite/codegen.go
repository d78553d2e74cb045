package rewrite

import (
	"fmt"
	"strings"
)

// reflectFuncSource emits §4.E step 3: a trampoline of signature
// func(ret interface{}, args []interface{}) that loads each argument out
// of args, calls the original function, and stores the result (if any)
// through ret. This is the shape runtime/extpoint.ReflectFunc expects, and
// what advice.CallOriginal/CallPrevious fall back to at the bottom of the
// around chain.
func reflectFuncSource(name, origName string, slots []*field, allTypes, resultTypes []string, retType string) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "func %s(ret interface{}, args []interface{}) {\n", name)
	callArgs := make([]string, len(slots))
	for i, s := range slots {
		fmt.Fprintf(&buf, "\t%s := *(args[%d].(*%s))\n", s.Name, i, allTypes[i])
		callArgs[i] = s.Name
	}
	call := fmt.Sprintf("%s(%s)", origName, strings.Join(callArgs, ", "))
	switch len(resultTypes) {
	case 0:
		fmt.Fprintf(&buf, "\t%s\n", call)
	case 1:
		fmt.Fprintf(&buf, "\tr := %s\n", call)
		fmt.Fprintf(&buf, "\tif ret != nil {\n\t\t*(ret.(*%s)) = r\n\t}\n", retType)
	default:
		fields := make([]string, len(resultTypes))
		for i := range resultTypes {
			fields[i] = fmt.Sprintf("r%d", i)
		}
		fmt.Fprintf(&buf, "\t%s := %s\n", strings.Join(fields, ", "), call)
		fmt.Fprintf(&buf, "\tif ret == nil {\n\t\treturn\n\t}\n")
		fmt.Fprintf(&buf, "\tout := ret.(*%s)\n", retType)
		for i := range resultTypes {
			fmt.Fprintf(&buf, "\tout.R%d = r%d\n", i, i)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

// extendedFuncSource emits §4.E step 4: the entry installed in the fn_slot
// once advice is attached. It lays out stack cells for every
// receiver/parameter and for the return value, builds the pointer slice
// advice.Eval expects, and loads the result back out once Eval returns.
func extendedFuncSource(name, epVar string, declParams []string, resultList string, slots []*field, resultTypes []string, retType string) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "func %s(%s) %s {\n", name, strings.Join(declParams, ", "), resultList)

	argsExpr := "nil"
	if len(slots) > 0 {
		ptrs := make([]string, len(slots))
		for i, s := range slots {
			ptrs[i] = "&" + s.Name
		}
		argsExpr = fmt.Sprintf("[]interface{}{%s}", strings.Join(ptrs, ", "))
	}

	switch len(resultTypes) {
	case 0:
		fmt.Fprintf(&buf, "\tadvice.Eval(%s, nil, %s)\n", epVar, argsExpr)
	case 1:
		fmt.Fprintf(&buf, "\tvar __augmentum_ret %s\n", retType)
		fmt.Fprintf(&buf, "\tadvice.Eval(%s, &__augmentum_ret, %s)\n", epVar, argsExpr)
		fmt.Fprintf(&buf, "\treturn __augmentum_ret\n")
	default:
		fmt.Fprintf(&buf, "\tvar __augmentum_ret %s\n", retType)
		fmt.Fprintf(&buf, "\tadvice.Eval(%s, &__augmentum_ret, %s)\n", epVar, argsExpr)
		fields := make([]string, len(resultTypes))
		for i := range resultTypes {
			fields[i] = fmt.Sprintf("__augmentum_ret.R%d", i)
		}
		fmt.Fprintf(&buf, "\treturn %s\n", strings.Join(fields, ", "))
	}
	buf.WriteString("}\n")
	return buf.String()
}

// initFuncSource emits §4.E step 6: the type-descriptor tree for this
// function's signature, built with recursive calls into runtime/typedesc
// straight from the resolved go/types signature, followed by the
// extpoint.Register call that installs the point and hands its handle to
// the generated ep variable.
func initFuncSource(pkgPath string, t *target, epVar, fnVar, origName, extendedName, reflectName string) string {
	g := newDescGen()

	var argVars []string
	if t.recv != nil {
		argVars = append(argVars, g.Build(t.sig.Recv().Type()))
	}
	for i := 0; i < t.sig.Params().Len(); i++ {
		argVars = append(argVars, g.Build(t.sig.Params().At(i).Type()))
	}

	retVar := "nil"
	if t.sig.Results().Len() == 1 {
		retVar = g.Build(t.sig.Results().At(0).Type())
	} else if t.sig.Results().Len() > 1 {
		// Register's Sig models a single-return shape; a multi-return
		// function is described by its first result only, which is
		// enough to keep the descriptor tree well-formed without
		// growing typedesc.Func to carry a tuple.
		retVar = g.Build(t.sig.Results().At(0).Type())
	}

	var buf strings.Builder
	buf.WriteString("func init() {\n")
	for _, line := range strings.Split(strings.TrimRight(g.Stmts(), "\n"), "\n") {
		if line == "" {
			continue
		}
		buf.WriteString("\t" + line + "\n")
	}
	fmt.Fprintf(&buf, "\t__augmentum_sig := typedesc.FuncOf(%s, []*typedesc.Descriptor{%s})\n", retVar, strings.Join(argVars, ", "))
	fmt.Fprintf(&buf, "\t%s = extpoint.Register(%q, %q, __augmentum_sig, &%s, %s, %s, %s)\n",
		epVar, pkgPath, t.identityName, fnVar, origName, extendedName, reflectName)
	buf.WriteString("}\n")
	return buf.String()
}
