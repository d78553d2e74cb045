package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTargetFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTargetFunctionsLiteral(t *testing.T) {
	path := writeTargetFile(t, "pkg;identity\r\ngithub.com/acme/svc;Handle\r\n")
	tf, err := LoadTargetFunctions(path)
	if err != nil {
		t.Fatal(err)
	}
	if !tf.ShouldInstrumentPackage("github.com/acme/svc") {
		t.Fatal("expected package to be accepted")
	}
	if !tf.ShouldInstrumentFunction("github.com/acme/svc", "Handle") {
		t.Fatal("expected function to be accepted")
	}
	if tf.ShouldInstrumentFunction("github.com/acme/svc", "Other") {
		t.Fatal("expected unlisted function to be rejected")
	}
	if tf.ShouldInstrumentPackage("github.com/other/pkg") {
		t.Fatal("expected unlisted package to be rejected")
	}
}

func TestLoadTargetFunctionsWildcardIdentity(t *testing.T) {
	path := writeTargetFile(t, "pkg;identity\ngithub.com/acme/svc;*\n")
	tf, err := LoadTargetFunctions(path)
	if err != nil {
		t.Fatal(err)
	}
	if !tf.ShouldInstrumentFunction("github.com/acme/svc", "Anything") {
		t.Fatal("expected wildcard identity to accept every function")
	}
}

func TestLoadTargetFunctionsGlobPackage(t *testing.T) {
	path := writeTargetFile(t, "pkg;identity\ngithub.com/acme/**;Handle\n")
	tf, err := LoadTargetFunctions(path)
	if err != nil {
		t.Fatal(err)
	}
	if !tf.ShouldInstrumentPackage("github.com/acme/svc/inner") {
		t.Fatal("expected glob package to match nested import path")
	}
	if !tf.ShouldInstrumentFunction("github.com/acme/svc/inner", "Handle") {
		t.Fatal("expected glob-matched package to accept its identity")
	}
}
