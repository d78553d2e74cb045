package edit

import "testing"

func TestBufferInsert(t *testing.T) {
	b := NewBuffer([]byte("func Add(a, b int) int {"))
	b.Insert(len("func Add(a, b int) int {"), "trap();")
	if got := b.String(); got != "func Add(a, b int) int {trap();" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestBufferReplace(t *testing.T) {
	b := NewBuffer([]byte("func Add(_, _ int) int {"))
	b.Replace(9, 10, "a")
	b.Replace(12, 13, "b")
	if got := b.String(); got != "func Add(a, b int) int {" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestBufferDelete(t *testing.T) {
	b := NewBuffer([]byte("func Add(a, b int) int { return a+b }"))
	b.Delete(0, 5)
	if got := b.String(); got != "Add(a, b int) int { return a+b }" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestBufferNoEdits(t *testing.T) {
	b := NewBuffer([]byte("unchanged"))
	if got := b.String(); got != "unchanged" {
		t.Fatalf("unexpected: %q", got)
	}
	if b.HasEdits() {
		t.Fatal("expected HasEdits to be false")
	}
}
