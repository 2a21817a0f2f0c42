package ir

import (
	"testing"
)

func TestOperandString(t *testing.T) {
	types := NewTypeRegistry()
	i32, _ := types.Lookup("i32")

	m := NewModule("unit")
	f := m.NewFunction("k", LinkageExternal)

	named := f.NewVirtualRegister(i32, "tid_x")
	unnamed := f.NewVirtualRegister(i32, "")
	pred := f.NewVirtualRegister(i32, "p0")
	arg := f.NewArgument(i32, "n")
	g := m.NewGlobal("table", i32, LinkagePrivate)
	blk := f.NewBasicBlock("loop")

	tests := []struct {
		name string
		o    Operand
		want string
	}{
		{name: "named register", o: NewRegisterOperand(named, nil), want: "%tid_x"},
		{name: "unnamed register", o: NewRegisterOperand(unnamed, nil), want: "%v1"},
		{name: "indirect positive", o: NewIndirectOperand(named, 16, nil), want: "[%tid_x + 16]"},
		{name: "indirect zero", o: NewIndirectOperand(named, 0, nil), want: "[%tid_x + 0]"},
		{name: "indirect negative", o: NewIndirectOperand(named, -8, nil), want: "[%tid_x - 8]"},
		{name: "immediate", o: NewImmediateOperand(0xff, nil), want: "0xff"},
		{name: "global address", o: NewAddressOperand(g, nil), want: "@table"},
		{name: "function address", o: NewAddressOperand(f, nil), want: "@k"},
		{name: "block address", o: NewAddressOperand(blk, nil), want: "^loop"},
		{name: "argument", o: NewArgumentOperand(arg, nil), want: "%n"},
		{name: "guard always true", o: NewPredicateOperand(nil, AlwaysTrue, nil), want: "@pt"},
		{name: "guard always false", o: NewPredicateOperand(nil, AlwaysFalse, nil), want: "@!pt"},
		{name: "guard straight", o: NewPredicateOperand(pred, Straight, nil), want: "@%p0"},
		{name: "guard inverted", o: NewPredicateOperand(pred, Inverted, nil), want: "@!%p0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.o.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddressOperandIsBasicBlock(t *testing.T) {
	types := NewTypeRegistry()
	i32, _ := types.Lookup("i32")

	m := NewModule("unit")
	f := m.NewFunction("k", LinkageExternal)
	g := m.NewGlobal("g", i32, LinkagePrivate)
	blk := f.NewBasicBlock("b")

	if NewAddressOperand(g, nil).IsBasicBlock() {
		t.Error("global address classified as a block")
	}
	if !NewAddressOperand(blk, nil).IsBasicBlock() {
		t.Error("block address not classified as a block")
	}
}

// TestOperandCloneKeepsValueDropsNothing checks the value-copy clone:
// same payload, same owner until reinstalled, independent afterwards.
func TestOperandCloneKeepsValueDropsNothing(t *testing.T) {
	types := NewTypeRegistry()
	i32, _ := types.Lookup("i32")

	m := NewModule("unit")
	f := m.NewFunction("k", LinkageExternal)
	r := f.NewVirtualRegister(i32, "r0")

	owner := NewUnary(OpLd)
	ind := NewIndirectOperand(r, 4, owner)

	c := ind.Clone().(*IndirectOperand)

	if c == ind {
		t.Fatal("clone returned the receiver")
	}
	if c.Reg != r || c.Offset != 4 {
		t.Errorf("clone payload %v + %d", c.Reg, c.Offset)
	}
	if c.Owner() != Instruction(owner) {
		t.Error("clone lost its owner before reinstallation")
	}

	c.Offset = 32
	if ind.Offset != 4 {
		t.Error("mutating the clone changed the original")
	}
}

func TestPredicateOperandForms(t *testing.T) {
	types := NewTypeRegistry()
	i32, _ := types.Lookup("i32")

	m := NewModule("unit")
	f := m.NewFunction("k", LinkageExternal)
	p := f.NewVirtualRegister(i32, "p0")

	tests := []struct {
		name        string
		o           *PredicateOperand
		alwaysTrue  bool
		alwaysFalse bool
	}{
		{name: "true", o: NewPredicateOperand(nil, AlwaysTrue, nil), alwaysTrue: true},
		{name: "false", o: NewPredicateOperand(nil, AlwaysFalse, nil), alwaysFalse: true},
		{name: "straight", o: NewPredicateOperand(p, Straight, nil)},
		{name: "inverted", o: NewPredicateOperand(p, Inverted, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.o.IsAlwaysTrue(); got != tt.alwaysTrue {
				t.Errorf("IsAlwaysTrue = %v, want %v", got, tt.alwaysTrue)
			}
			if got := tt.o.IsAlwaysFalse(); got != tt.alwaysFalse {
				t.Errorf("IsAlwaysFalse = %v, want %v", got, tt.alwaysFalse)
			}
		})
	}
}
