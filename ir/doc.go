// Package ir defines the VIR intermediate representation, a typed,
// guarded, SSA-adjacent register machine for a virtual GPU.
//
// # Structure
//
// A Module owns Functions, Globals, and Constants. A Function owns its
// Arguments, VirtualRegisters, and BasicBlocks; a BasicBlock owns an
// ordered instruction sequence. All upward references (instruction to
// block, operand to instruction, address operand to its target) are
// non-owning, so ownership forms a strict tree.
//
// # Instructions
//
// Every instruction carries a guard predicate in read slot 0 deciding
// whether its effect commits. The opcode set is closed and each opcode
// maps to exactly one concrete shape (unary, binary, comparison, call,
// branch, store, atomic, phi, psi, barrier, fence, return, launch);
// classification helpers such as IsUnary and IsBinary test the shape,
// not an opcode list.
//
// # Construction
//
// Containers build top down:
//
//	types := ir.NewTypeRegistry()
//	i32, _ := types.Lookup("i32")
//
//	m := ir.NewModule("example")
//	f := m.NewFunction("kernel", ir.LinkagePrivate)
//	r := f.NewVirtualRegister(i32, "r0")
//	b := f.NewBasicBlock("entry")
//
// Instructions are created detached via their shape constructors (or
// the total New factory) and appended to a block, which assigns their
// function-unique id:
//
//	add := ir.NewBinary(ir.OpAdd)
//	add.SetGuard(ir.NewPredicateOperand(nil, ir.AlwaysTrue, add))
//	add.SetD(ir.NewRegisterOperand(r, add))
//	b.Push(add)
package ir
