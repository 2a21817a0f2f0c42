package ir

import (
	"fmt"
	"strconv"
)

// Operand is one slot in an instruction's read or write list. The set
// of kinds is closed. Every operand carries a non-owning back-reference
// to the instruction it belongs to; constructing an operand binds it,
// and Instruction.Clone rebinds the copies it makes. Operands are
// otherwise immutable once constructed: mutation happens by replacing
// the slot through the owning instruction's setters.
type Operand interface {
	// Owner returns the instruction this operand belongs to.
	Owner() Instruction

	// Clone returns a deep copy. The copy keeps the same owner until
	// it is installed into another instruction.
	Clone() Operand

	// String renders the operand for diagnostics.
	String() string

	setOwner(Instruction)
}

// operandBase carries the non-owning back-reference shared by every
// operand kind.
type operandBase struct {
	owner Instruction
}

func (o *operandBase) Owner() Instruction      { return o.owner }
func (o *operandBase) setOwner(in Instruction) { o.owner = in }

// RegisterOperand reads or writes a virtual register directly.
type RegisterOperand struct {
	operandBase
	Reg *VirtualRegister
}

// NewRegisterOperand returns a register operand owned by owner.
func NewRegisterOperand(reg *VirtualRegister, owner Instruction) *RegisterOperand {
	return &RegisterOperand{operandBase: operandBase{owner: owner}, Reg: reg}
}

func (o *RegisterOperand) Clone() Operand {
	c := *o
	return &c
}

func (o *RegisterOperand) String() string {
	return o.Reg.String()
}

// IndirectOperand addresses memory at a register value plus a signed
// byte offset.
type IndirectOperand struct {
	operandBase
	Reg    *VirtualRegister
	Offset int64
}

// NewIndirectOperand returns an indirect memory operand owned by owner.
func NewIndirectOperand(reg *VirtualRegister, offset int64, owner Instruction) *IndirectOperand {
	return &IndirectOperand{operandBase: operandBase{owner: owner}, Reg: reg, Offset: offset}
}

func (o *IndirectOperand) Clone() Operand {
	c := *o
	return &c
}

func (o *IndirectOperand) String() string {
	if o.Offset < 0 {
		return fmt.Sprintf("[%s - %d]", o.Reg, -o.Offset)
	}
	return fmt.Sprintf("[%s + %d]", o.Reg, o.Offset)
}

// ImmediateOperand carries a raw 64-bit pattern, reinterpreted per the
// instruction's declared type.
type ImmediateOperand struct {
	operandBase
	Bits uint64
}

// NewImmediateOperand returns an immediate operand owned by owner.
func NewImmediateOperand(bits uint64, owner Instruction) *ImmediateOperand {
	return &ImmediateOperand{operandBase: operandBase{owner: owner}, Bits: bits}
}

func (o *ImmediateOperand) Clone() Operand {
	c := *o
	return &c
}

func (o *ImmediateOperand) String() string {
	return "0x" + strconv.FormatUint(o.Bits, 16)
}

// AddressValue is the closed union of targets an AddressOperand can
// name: module globals, functions, and basic blocks.
type AddressValue interface {
	addressValue()
}

// AddressOperand names a global, a function, or a basic block by
// reference. Targets are resolved when the operand is built, never by
// string lookup afterwards.
type AddressOperand struct {
	operandBase
	Target AddressValue
}

// NewAddressOperand returns an address operand owned by owner.
func NewAddressOperand(target AddressValue, owner Instruction) *AddressOperand {
	return &AddressOperand{operandBase: operandBase{owner: owner}, Target: target}
}

// IsBasicBlock reports whether the target is a basic block.
func (o *AddressOperand) IsBasicBlock() bool {
	_, ok := o.Target.(*BasicBlock)
	return ok
}

func (o *AddressOperand) Clone() Operand {
	c := *o
	return &c
}

func (o *AddressOperand) String() string {
	switch t := o.Target.(type) {
	case *Global:
		return "@" + t.Name
	case *Function:
		return "@" + t.Name
	case *BasicBlock:
		return "^" + t.Label
	}
	return "@<unset>"
}

// ArgumentOperand names a formal argument of the containing function.
type ArgumentOperand struct {
	operandBase
	Arg *Argument
}

// NewArgumentOperand returns an argument operand owned by owner.
func NewArgumentOperand(arg *Argument, owner Instruction) *ArgumentOperand {
	return &ArgumentOperand{operandBase: operandBase{owner: owner}, Arg: arg}
}

func (o *ArgumentOperand) Clone() Operand {
	c := *o
	return &c
}

func (o *ArgumentOperand) String() string {
	return "%" + o.Arg.Name
}

// PredicateModifier selects how a guard register is interpreted.
type PredicateModifier uint8

const (
	// AlwaysTrue commits the instruction unconditionally. This is the
	// default guard; the register is nil.
	AlwaysTrue PredicateModifier = iota

	// AlwaysFalse never commits the instruction. The register is nil.
	AlwaysFalse

	// Straight commits when the guard register holds true.
	Straight

	// Inverted commits when the guard register holds false.
	Inverted
)

func (m PredicateModifier) String() string {
	switch m {
	case AlwaysTrue:
		return "AlwaysTrue"
	case AlwaysFalse:
		return "AlwaysFalse"
	case Straight:
		return "Straight"
	case Inverted:
		return "Inverted"
	}
	return "InvalidModifier"
}

// PredicateOperand guards an instruction. Reg is nil for the
// register-free AlwaysTrue and AlwaysFalse forms.
type PredicateOperand struct {
	operandBase
	Reg      *VirtualRegister
	Modifier PredicateModifier
}

// NewPredicateOperand returns a guard operand owned by owner. reg must
// be nil for the AlwaysTrue and AlwaysFalse forms and non-nil
// otherwise.
func NewPredicateOperand(reg *VirtualRegister, m PredicateModifier, owner Instruction) *PredicateOperand {
	return &PredicateOperand{operandBase: operandBase{owner: owner}, Reg: reg, Modifier: m}
}

// IsAlwaysTrue reports whether the guard commits unconditionally.
func (o *PredicateOperand) IsAlwaysTrue() bool {
	return o.Modifier == AlwaysTrue
}

// IsAlwaysFalse reports whether the guard never commits.
func (o *PredicateOperand) IsAlwaysFalse() bool {
	return o.Modifier == AlwaysFalse
}

func (o *PredicateOperand) Clone() Operand {
	c := *o
	return &c
}

func (o *PredicateOperand) String() string {
	switch o.Modifier {
	case AlwaysFalse:
		return "@!pt"
	case Straight:
		return "@" + o.Reg.String()
	case Inverted:
		return "@!" + o.Reg.String()
	}
	return "@pt"
}
