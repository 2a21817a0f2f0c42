package ir

import (
	"testing"
)

func TestRegistryBuiltins(t *testing.T) {
	types := NewTypeRegistry()

	tests := []struct {
		name  string
		bytes int
		inner TypeInner
	}{
		{name: "i1", bytes: 1, inner: PredicateType{}},
		{name: "i8", bytes: 1, inner: IntType{Bits: 8}},
		{name: "i16", bytes: 2, inner: IntType{Bits: 16}},
		{name: "i32", bytes: 4, inner: IntType{Bits: 32}},
		{name: "i64", bytes: 8, inner: IntType{Bits: 64}},
		{name: "f32", bytes: 4, inner: FloatType{Bits: 32}},
		{name: "f64", bytes: 8, inner: FloatType{Bits: 64}},
	}

	if types.Count() != len(tests) {
		t.Fatalf("registry holds %d types, want %d", types.Count(), len(tests))
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ty, ok := types.Lookup(tt.name)
			if !ok {
				t.Fatalf("Lookup(%q) missed", tt.name)
			}
			if ty.Name != tt.name {
				t.Errorf("Name = %q", ty.Name)
			}
			if ty.Bytes() != tt.bytes {
				t.Errorf("Bytes() = %d, want %d", ty.Bytes(), tt.bytes)
			}
			if ty.Inner != tt.inner {
				t.Errorf("Inner = %#v, want %#v", ty.Inner, tt.inner)
			}
		})
	}
}

// TestRegistryCanonical checks that repeated lookups return the same
// pointer, so pointer comparison is type equality.
func TestRegistryCanonical(t *testing.T) {
	types := NewTypeRegistry()

	a, ok := types.Lookup("i32")
	if !ok {
		t.Fatal("Lookup(i32) missed")
	}
	b, _ := types.Lookup("i32")
	if a != b {
		t.Error("two lookups of i32 returned distinct pointers")
	}

	other, _ := types.Lookup("f32")
	if a == other {
		t.Error("i32 and f32 share a pointer")
	}
}

func TestRegistryUnknownName(t *testing.T) {
	types := NewTypeRegistry()

	for _, name := range []string{"", "i128", "u32", "pred", "I32"} {
		if _, ok := types.Lookup(name); ok {
			t.Errorf("Lookup(%q) resolved", name)
		}
	}
}

// TestRegistryOrder checks that Types preserves registration order, so
// dumps stay deterministic.
func TestRegistryOrder(t *testing.T) {
	types := NewTypeRegistry()

	want := []string{"i1", "i8", "i16", "i32", "i64", "f32", "f64"}
	got := types.Types()
	if len(got) != len(want) {
		t.Fatalf("Types() returned %d entries, want %d", len(got), len(want))
	}
	for k, ty := range got {
		if ty.Name != want[k] {
			t.Errorf("Types()[%d] = %q, want %q", k, ty.Name, want[k])
		}
	}
}
