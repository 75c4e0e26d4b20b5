package normalize

import "testing"

func TestEmail(t *testing.T) {
	if got := Email("  MiXeD@Example.COM  "); got != "mixed@example.com" {
		t.Fatalf("unexpected normalized email: %q", got)
	}
}

func TestRUT(t *testing.T) {
	cases := map[string]string{
		"12.345.678-k": "12345678-K",
		"11111111-1":   "11111111-1",
		" 222222222 ":  "22222222-2",
		"":             "",
	}
	for in, want := range cases {
		if got := RUT(in); got != want {
			t.Errorf("RUT(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlate(t *testing.T) {
	if got := Plate(" ab-cd 12 "); got != "ABCD12" {
		t.Fatalf("unexpected normalized plate: %q", got)
	}
}
