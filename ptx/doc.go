// Package ptx models a parsed, register-based, predicated GPU assembly
// module and translates it to VIR.
//
// The data model (Module, Kernel, Block, Instruction, Operand) mirrors
// the source ISA: typed virtual registers, guarded instructions, one
// operand descriptor struct covering every addressing mode. Modules are
// built programmatically or decoded from YAML kernel manifests with
// LoadModuleFile and DecodeModule.
//
// Translate lowers a module into an ir.Module in a single pass per
// kernel: declare the function, its arguments and registers, declare
// every basic block, then populate the blocks instruction by
// instruction. Opcode selection is driven by the operand types; the
// guard, destination, and source operands are lowered in that order,
// and an instruction is appended to its block only after every operand
// resolved. Failures are typed (*Error) and fatal to the kernel.
//
// The translated subset covers data movement (ld, ldu, mov, st),
// modifier-free conversions (cvt), and the simple integer and floating
// point arithmetic family (add, and, div, mul, or, rem, shl, sub, xor).
// Everything else reports ErrUnsupportedInstruction.
package ptx
