package ir

// Opcode identifies a VIR instruction. The set is closed: every opcode
// maps to exactly one instruction shape (see New).
type Opcode uint8

const (
	OpAdd Opcode = iota
	OpAnd
	OpAshr
	OpAtom
	OpBar
	OpBitcast
	OpBra
	OpCall
	OpFdiv
	OpFmul
	OpFpext
	OpFptosi
	OpFptoui
	OpFptrunc
	OpFrem
	OpLaunch
	OpLd
	OpLshr
	OpMembar
	OpMul
	OpOr
	OpRet
	OpSetp
	OpSext
	OpSdiv
	OpShl
	OpSitofp
	OpSrem
	OpSt
	OpSub
	OpTrunc
	OpUdiv
	OpUitofp
	OpUrem
	OpXor
	OpZext
	OpPhi
	OpPsi

	numOpcodes
)

var opcodeNames = [numOpcodes]string{
	OpAdd:     "Add",
	OpAnd:     "And",
	OpAshr:    "Ashr",
	OpAtom:    "Atom",
	OpBar:     "Bar",
	OpBitcast: "Bitcast",
	OpBra:     "Bra",
	OpCall:    "Call",
	OpFdiv:    "Fdiv",
	OpFmul:    "Fmul",
	OpFpext:   "Fpext",
	OpFptosi:  "Fptosi",
	OpFptoui:  "Fptoui",
	OpFptrunc: "Fptrunc",
	OpFrem:    "Frem",
	OpLaunch:  "Launch",
	OpLd:      "Ld",
	OpLshr:    "Lshr",
	OpMembar:  "Membar",
	OpMul:     "Mul",
	OpOr:      "Or",
	OpRet:     "Ret",
	OpSetp:    "Setp",
	OpSext:    "Sext",
	OpSdiv:    "Sdiv",
	OpShl:     "Shl",
	OpSitofp:  "Sitofp",
	OpSrem:    "Srem",
	OpSt:      "St",
	OpSub:     "Sub",
	OpTrunc:   "Trunc",
	OpUdiv:    "Udiv",
	OpUitofp:  "Uitofp",
	OpUrem:    "Urem",
	OpXor:     "Xor",
	OpZext:    "Zext",
	OpPhi:     "Phi",
	OpPsi:     "Psi",
}

// String returns the canonical mnemonic.
func (o Opcode) String() string {
	if o < numOpcodes {
		return opcodeNames[o]
	}
	return "InvalidOpcode"
}

// CmpOp selects the relation a Comparison evaluates.
type CmpOp uint8

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe

	// Unsigned integer relations.
	CmpLo
	CmpLs
	CmpHi
	CmpHs

	// Floating point relations that also hold when an operand is NaN.
	CmpEqu
	CmpNeu
	CmpLtu
	CmpLeu
	CmpGtu
	CmpGeu

	// CmpNum holds when both operands are numbers, CmpNan when at
	// least one is NaN.
	CmpNum
	CmpNan
)

var cmpNames = [...]string{
	CmpEq:  "Eq",
	CmpNe:  "Ne",
	CmpLt:  "Lt",
	CmpLe:  "Le",
	CmpGt:  "Gt",
	CmpGe:  "Ge",
	CmpLo:  "Lo",
	CmpLs:  "Ls",
	CmpHi:  "Hi",
	CmpHs:  "Hs",
	CmpEqu: "Equ",
	CmpNeu: "Neu",
	CmpLtu: "Ltu",
	CmpLeu: "Leu",
	CmpGtu: "Gtu",
	CmpGeu: "Geu",
	CmpNum: "Num",
	CmpNan: "Nan",
}

func (c CmpOp) String() string {
	if int(c) < len(cmpNames) {
		return cmpNames[c]
	}
	return "InvalidComparison"
}

// AtomicOperation tags the read-modify-write an Atomic performs.
type AtomicOperation uint8

const (
	AtomicAnd AtomicOperation = iota
	AtomicOr
	AtomicXor
	AtomicCas
	AtomicExch
	AtomicAdd
	AtomicInc
	AtomicDec
	AtomicMin
	AtomicMax
)

var atomicNames = [...]string{
	AtomicAnd:  "And",
	AtomicOr:   "Or",
	AtomicXor:  "Xor",
	AtomicCas:  "Cas",
	AtomicExch: "Exch",
	AtomicAdd:  "Add",
	AtomicInc:  "Inc",
	AtomicDec:  "Dec",
	AtomicMin:  "Min",
	AtomicMax:  "Max",
}

func (a AtomicOperation) String() string {
	if int(a) < len(atomicNames) {
		return atomicNames[a]
	}
	return "InvalidOperation"
}

// FenceLevel is the scope a MemoryFence orders.
type FenceLevel uint8

const (
	// FenceCta orders accesses within the thread block.
	FenceCta FenceLevel = iota

	// FenceGlobal orders accesses across the device.
	FenceGlobal

	// FenceSystem orders accesses visible to the host system.
	FenceSystem
)

func (l FenceLevel) String() string {
	switch l {
	case FenceCta:
		return "Cta"
	case FenceGlobal:
		return "Global"
	case FenceSystem:
		return "System"
	}
	return "InvalidLevel"
}
