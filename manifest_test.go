package rdmc

import (
	"testing"
)

func TestManifestText(t *testing.T) {
	m := Manifest{"a": "value", "b": "", "c": 3}

	if got := m.Text("a"); got == nil || *got != "value" {
		t.Fatalf("expected value, got %v", got)
	}
	if got := m.Text("missing"); got != nil {
		t.Fatalf("expected nil for missing key, got %v", got)
	}
	if got := m.Text("b"); got != nil {
		t.Fatalf("expected nil for empty string, got %v", got)
	}
	if got := m.Text("c"); got != nil {
		t.Fatalf("expected nil for non-string, got %v", got)
	}
	// fallback chain
	if got := m.Text("missing", "b", "a"); got == nil || *got != "value" {
		t.Fatalf("expected fallback to a, got %v", got)
	}
}

func TestManifestObjectAndList(t *testing.T) {
	m := Manifest{
		"nested": map[string]any{"key": "val"},
		"items":  []any{1, 2},
		"scalar": "x",
	}

	if got := m.Object("nested").Text("key"); got == nil || *got != "val" {
		t.Fatalf("expected nested lookup, got %v", got)
	}
	if got := m.Object("scalar"); len(got) != 0 {
		t.Fatalf("expected empty object for scalar, got %v", got)
	}
	if got := m.List("items"); len(got) != 2 {
		t.Fatalf("expected 2 items, got %v", got)
	}
	if got := m.List("scalar"); got != nil {
		t.Fatalf("expected nil list for scalar, got %v", got)
	}
}

func TestManifestHashStable(t *testing.T) {
	a := Manifest{"x": "1", "y": float64(2)}
	b := Manifest{"y": float64(2), "x": "1"}

	if a.Hash() == "" {
		t.Fatalf("expected non-empty hash")
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("hash must not depend on key order")
	}
	if a.Hash() == (Manifest{"x": "2"}).Hash() {
		t.Fatalf("different manifests must not collide on trivial input")
	}
}
