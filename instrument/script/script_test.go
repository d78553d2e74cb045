package script

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "predicate.js")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMissingHooksAcceptEverything(t *testing.T) {
	p, err := Load(writeScript(t, "// no hooks defined"))
	if err != nil {
		t.Fatal(err)
	}
	if !p.ShouldInstrumentPackage("any/pkg") {
		t.Fatal("expected package to be accepted when shouldInstrumentModule is absent")
	}
	if !p.ShouldInstrumentFunction("any/pkg", "Any") {
		t.Fatal("expected function to be accepted when shouldInstrumentFunction is absent")
	}
}

func TestModuleHookRejects(t *testing.T) {
	p, err := Load(writeScript(t, `
		function shouldInstrumentModule(pkgPath) {
			return pkgPath !== "skip/me";
		}
	`))
	if err != nil {
		t.Fatal(err)
	}
	if p.ShouldInstrumentPackage("skip/me") {
		t.Fatal("expected skip/me to be rejected")
	}
	if !p.ShouldInstrumentPackage("keep/me") {
		t.Fatal("expected keep/me to be accepted")
	}
}

func TestFunctionHookSeesCurrentPackage(t *testing.T) {
	p, err := Load(writeScript(t, `
		function shouldInstrumentFunction(identityName) {
			return currentPackage === "pkg/a" && identityName === "Handle";
		}
	`))
	if err != nil {
		t.Fatal(err)
	}
	if !p.ShouldInstrumentFunction("pkg/a", "Handle") {
		t.Fatal("expected pkg/a.Handle to be accepted")
	}
	if p.ShouldInstrumentFunction("pkg/b", "Handle") {
		t.Fatal("expected pkg/b.Handle to be rejected")
	}
}
