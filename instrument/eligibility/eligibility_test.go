package eligibility

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"
)

func parseDecl(t *testing.T, src string) *ast.FuncDecl {
	t.Helper()
	file, err := parser.ParseFile(token.NewFileSet(), "t.go", "package p\n"+src, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range file.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok {
			return fd
		}
	}
	t.Fatal("no func decl found")
	return nil
}

func TestStructurallyEligible(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want bool
	}{
		{"plain", "func Add(a, b int) int { return a+b }", true},
		{"no-body", "func Add(a, b int) int", false},
		{"blank-name", "func _(a, b int) int { return a+b }", false},
		{"variadic", "func Sum(xs ...int) int { return 0 }", false},
		{"generic", "func Map[T any](xs []T) []T { return xs }", false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			decl := parseDecl(t, tt.src)
			if got := StructurallyEligible(decl); got != tt.want {
				t.Fatalf("StructurallyEligible(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

type denyList map[string]bool

func (d denyList) ShouldInstrumentPackage(string) bool { return true }
func (d denyList) ShouldInstrumentFunction(_, name string) bool {
	return !d[name]
}

func TestComposeIsLogicalAnd(t *testing.T) {
	p := Compose(Default, denyList{"Skip": true})
	if p.ShouldInstrumentFunction("pkg", "Skip") {
		t.Fatal("expected Skip to be rejected")
	}
	if !p.ShouldInstrumentFunction("pkg", "Keep") {
		t.Fatal("expected Keep to be accepted")
	}
}

func TestComposeEmptyBehavesLikeDefault(t *testing.T) {
	p := Compose()
	if !p.ShouldInstrumentFunction("pkg", "Anything") {
		t.Fatal("empty Compose should accept everything")
	}
}
