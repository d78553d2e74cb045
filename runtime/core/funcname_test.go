package core

import "testing"

func TestParseIdentity(t *testing.T) {
	var cases = []struct {
		name string
		in   string
		want Identity
	}{
		{"plain", "Watch", Identity{FuncName: "Watch"}},
		{"value-recv", "Server.Serve", Identity{RecvName: "Server", FuncName: "Serve"}},
		{"ptr-recv", "(*Server).Serve", Identity{RecvName: "Server", RecvPtr: true, FuncName: "Serve"}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseIdentity(tt.in)
			if got != tt.want {
				t.Fatalf("ParseIdentity(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() != tt.in {
				t.Fatalf("roundtrip mismatch: %+v.String() = %q, want %q", got, got.String(), tt.in)
			}
		})
	}
}

func TestKey(t *testing.T) {
	if Key("pkg", "Name") != "pkg::Name" {
		t.Fatalf("unexpected key: %s", Key("pkg", "Name"))
	}
}
