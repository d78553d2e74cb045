package advice

import "testing"

func TestArgObjectNamedAccess(t *testing.T) {
	a, b := 3, "hello"
	obj := ArgObject([]string{"a", "b"}, []interface{}{&a, &b})

	if obj.NumField() != 2 {
		t.Fatalf("expected 2 fields, got %d", obj.NumField())
	}
	if obj.GetField("a").Value() != 3 {
		t.Fatalf("expected a=3, got %v", obj.GetField("a").Value())
	}
	if obj.GetFieldIndex(1).Name() != "b" {
		t.Fatalf("expected field 1 named b, got %s", obj.GetFieldIndex(1).Name())
	}

	obj.GetField("a").Set(42)
	if a != 42 {
		t.Fatalf("expected Set to write through the pointer, got a=%d", a)
	}

	obj.GetField("b").Set(nil)
	if b != "" {
		t.Fatalf("expected Set(nil) to zero the field, got b=%q", b)
	}
}

func TestArgObjectUnknownFieldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected GetField to panic on an unknown name")
		}
	}()
	obj := ArgObject([]string{"a"}, []interface{}{new(int)})
	obj.GetField("missing")
}
