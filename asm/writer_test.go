// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package asm

import (
	"strings"
	"testing"

	"github.com/gogpu/vir/ir"
)

// testModule builds a module exercising every directive the writer
// emits: globals with and without initializers, arguments, linkage,
// guarded and plain instructions.
func testModule(t *testing.T) *ir.Module {
	t.Helper()

	types := ir.NewTypeRegistry()

	lookup := func(name string) *ir.Type {
		ty, ok := types.Lookup(name)
		if !ok {
			t.Fatalf("type %q not registered", name)
		}
		return ty
	}

	i1 := lookup("i1")
	i32 := lookup("i32")
	i64 := lookup("i64")

	m := ir.NewModule("demo")

	out := m.NewGlobal("out", i64, ir.LinkageExternal)

	lut := m.NewGlobal("lut", i32, ir.LinkagePrivate)
	lut.SetInitializer(m.NewConstant(i32, []byte{1, 2, 3, 4}))

	f := m.NewFunction("add", ir.LinkagePrivate)
	f.NewArgument(i64, "in")
	f.NewArgument(i32, "n")

	r0 := f.NewVirtualRegister(i32, "r0")
	r1 := f.NewVirtualRegister(i32, "r1")
	r2 := f.NewVirtualRegister(i32, "r2")
	p0 := f.NewVirtualRegister(i1, "p0")

	body := f.NewBasicBlock("body")

	add := ir.NewBinary(ir.OpAdd)
	add.SetD(ir.NewRegisterOperand(r0, add))
	add.SetA(ir.NewRegisterOperand(r1, add))
	add.SetB(ir.NewRegisterOperand(r2, add))
	body.Push(add)

	st := ir.NewStore()
	st.SetGuard(ir.NewPredicateOperand(p0, ir.Straight, st))
	st.SetD(ir.NewAddressOperand(out, st))
	st.SetA(ir.NewRegisterOperand(r0, st))
	body.Push(st)

	body.Push(ir.NewReturn())

	m.NewFunction("helper", ir.LinkageExternal)

	return m
}

func TestWrite_EmptyModule(t *testing.T) {
	got, err := Write(ir.NewModule("empty"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := "; module empty\n"
	if got != want {
		t.Errorf("Write() = %q, want %q", got, want)
	}
}

func TestWrite_Module(t *testing.T) {
	got, err := Write(testModule(t))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := `; module demo

.global @out i64
.global @lut i32 [1 2 3 4]

.function @add(%in i64, %n i32) {
body:
	Add %r0, %r1, %r2
	@%p0 St @out, %r0
	Ret
}

.function external @helper() {
}
`

	if got != want {
		t.Errorf("Write() mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWrite_Rendering(t *testing.T) {
	got, err := Write(testModule(t))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	tests := []struct {
		name     string
		contains string
	}{
		{"header comment", "; module demo"},
		{"plain global", ".global @out i64"},
		{"initialized global", ".global @lut i32 [1 2 3 4]"},
		{"function prototype", ".function @add(%in i64, %n i32) {"},
		{"external function", ".function external @helper() {"},
		{"block label", "\nbody:\n"},
		{"indented instruction", "\n\tAdd %r0, %r1, %r2\n"},
		{"guard prefix", "\n\t@%p0 St @out, %r0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(got, tt.contains) {
				t.Errorf("output does not contain %q:\n%s", tt.contains, got)
			}
		})
	}
}

func TestWrite_Deterministic(t *testing.T) {
	m := testModule(t)

	first, err := Write(m)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	second, err := Write(m)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if first != second {
		t.Error("Write() output differs between runs over the same module")
	}
}

func TestWrite_NilModule(t *testing.T) {
	if _, err := Write(nil); err == nil {
		t.Error("Write(nil) expected an error")
	}
}

func TestWriteTo(t *testing.T) {
	m := testModule(t)

	want, err := Write(m)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var sb strings.Builder
	if err := WriteTo(&sb, m); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}

	if sb.String() != want {
		t.Errorf("WriteTo() = %q, want %q", sb.String(), want)
	}
}
