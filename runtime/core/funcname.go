package core

import "strings"

// Identity is the parsed form of a function's identity name, the key half
// used by the extension-point registry alongside its package path.
//
// Identity names follow the shapes produced by instrument/ast:
//
//	Watch          (plain function)
//	Type.Method    (value receiver)
//	(*Type).Method (pointer receiver)
type Identity struct {
	RecvName string
	RecvPtr  bool
	FuncName string
}

func (id Identity) String() string {
	if id.RecvName == "" {
		return id.FuncName
	}
	if id.RecvPtr {
		return "(*" + id.RecvName + ")." + id.FuncName
	}
	return id.RecvName + "." + id.FuncName
}

// ParseIdentity splits an identity name back into its receiver and function
// name parts. It is the inverse of Identity.String.
func ParseIdentity(identityName string) Identity {
	name := identityName
	if strings.HasPrefix(name, "(*") {
		end := strings.Index(name, ")")
		if end > 0 {
			recv := name[2:end]
			rest := strings.TrimPrefix(name[end+1:], ".")
			return Identity{RecvName: recv, RecvPtr: true, FuncName: rest}
		}
	}
	dot := strings.Index(name, ".")
	if dot < 0 {
		return Identity{FuncName: name}
	}
	return Identity{RecvName: name[:dot], FuncName: name[dot+1:]}
}

// Key returns the registry key for a package path and identity name, the
// same join used by runtime/extpoint.
func Key(pkgPath, identityName string) string {
	return pkgPath + "::" + identityName
}
