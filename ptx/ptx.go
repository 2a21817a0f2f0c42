package ptx

import (
	"strconv"
	"strings"
)

// RegisterID identifies a source virtual register within one kernel.
// Ids are kernel-scoped: the same id in two kernels names two distinct
// registers.
type RegisterID int

// Module is a parsed source module: ordered globals and kernels.
type Module struct {
	Name    string
	Globals []Global
	Kernels []Kernel
}

// Global is a module-scope variable declaration. Init carries the
// initializer bytes, empty for uninitialized globals.
type Global struct {
	Name      string
	Type      DataType
	Attribute LinkingDirective
	Init      []byte
}

// Kernel is one entry point: its prototype and its control flow graph.
type Kernel struct {
	Name       string
	Directive  LinkingDirective
	Parameters []Parameter
	Registers  []Register
	CFG        *CFG
}

// Parameter is a formal kernel parameter.
type Parameter struct {
	Name string
	Type DataType
}

// Register declares a virtual register referenced by a kernel body.
type Register struct {
	ID   RegisterID
	Type DataType
}

// CFG is a kernel's control flow graph: synthetic entry and exit
// sentinels around the body blocks in executable order.
type CFG struct {
	entry  *Block
	exit   *Block
	blocks []*Block
}

// NewCFG returns a graph holding only the entry and exit sentinels.
func NewCFG() *CFG {
	return &CFG{
		entry: &Block{Label: "entry"},
		exit:  &Block{Label: "exit"},
	}
}

// Entry returns the entry sentinel.
func (g *CFG) Entry() *Block { return g.entry }

// Exit returns the exit sentinel.
func (g *CFG) Exit() *Block { return g.exit }

// NewBlock appends a body block just before the exit sentinel.
func (g *CFG) NewBlock(label string) *Block {
	b := &Block{Label: label}
	g.blocks = append(g.blocks, b)
	return b
}

// Blocks returns the body blocks in order, without the sentinels.
func (g *CFG) Blocks() []*Block { return g.blocks }

// ExecutableSequence returns every block in executable order: entry,
// the body blocks, exit.
func (g *CFG) ExecutableSequence() []*Block {
	seq := make([]*Block, 0, len(g.blocks)+2)
	seq = append(seq, g.entry)
	seq = append(seq, g.blocks...)
	seq = append(seq, g.exit)
	return seq
}

// Block is a labeled straight-line instruction sequence.
type Block struct {
	Label        string
	Instructions []Instruction
}

// Instruction is one source instruction: opcode, scalar type tag,
// modifier bits, addressing space, guard, and up to four operands.
// Which operands are meaningful depends on the opcode family; the
// rest stay zero.
type Instruction struct {
	Opcode       Opcode
	Type         DataType
	Modifier     Modifier
	AddressSpace AddressSpace

	Guard      Operand
	D, A, B, C Operand
}

func (i *Instruction) String() string {
	var sb strings.Builder

	if s := i.Guard.guardString(); s != "" {
		sb.WriteString(s)
		sb.WriteByte(' ')
	}

	sb.WriteString(i.Opcode.String())
	sb.WriteString(i.Modifier.String())
	if i.Type != TypeInvalid {
		sb.WriteByte('.')
		sb.WriteString(i.Type.String())
	}

	first := true
	for _, o := range []*Operand{&i.D, &i.A, &i.B, &i.C} {
		if o.Mode == ModeInvalid {
			continue
		}
		if first {
			sb.WriteByte(' ')
			first = false
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(o.String())
	}

	return sb.String()
}

// Operand is a source operand descriptor. One struct covers every
// addressing mode; Mode selects which fields are meaningful.
type Operand struct {
	Mode AddressMode
	Type DataType

	// Reg is the register id for the Register and Indirect modes, and
	// the guard register for the Pred and InvPred conditions.
	Reg RegisterID

	// Offset is the signed byte offset for the Indirect mode.
	Offset int64

	// Imm is the raw immediate bit pattern for the Immediate mode.
	Imm uint64

	// Identifier names a global, argument, or label for the Address and
	// Label modes.
	Identifier string

	// Special and Lane select the special register for the Special mode.
	Special SpecialRegister
	Lane    VectorLane

	// IsArgument marks an Address operand as a kernel parameter
	// reference rather than a module global.
	IsArgument bool

	// Condition interprets the operand as a guard. The zero value is PT,
	// so a zero Operand guards nothing away.
	Condition PredicateCondition
}

func (o *Operand) String() string {
	switch o.Mode {
	case ModeRegister:
		return "%r" + strconv.Itoa(int(o.Reg))
	case ModeIndirect:
		if o.Offset < 0 {
			return "[%r" + strconv.Itoa(int(o.Reg)) + " - " + strconv.FormatInt(-o.Offset, 10) + "]"
		}
		return "[%r" + strconv.Itoa(int(o.Reg)) + " + " + strconv.FormatInt(o.Offset, 10) + "]"
	case ModeImmediate:
		return "0x" + strconv.FormatUint(o.Imm, 16)
	case ModeAddress, ModeLabel:
		return o.Identifier
	case ModeSpecial:
		if o.Lane == LaneNone {
			return "%" + o.Special.String()
		}
		return "%" + o.Special.String() + "." + o.Lane.String()
	case ModeBitBucket:
		return "_"
	}
	return "<invalid>"
}

// guardString renders the operand as a guard prefix, empty for PT.
func (o *Operand) guardString() string {
	switch o.Condition {
	case NPT:
		return "@!pt"
	case Pred:
		return "@%r" + strconv.Itoa(int(o.Reg))
	case InvPred:
		return "@!%r" + strconv.Itoa(int(o.Reg))
	}
	return ""
}

// Opcode is a source-ISA opcode.
type Opcode uint8

const (
	Add Opcode = iota
	And
	Atom
	Bar
	Bra
	Call
	Cvt
	Div
	Ld
	Ldu
	Mad
	Mov
	Mul
	Neg
	Not
	Or
	Rem
	Ret
	Setp
	Shl
	Shr
	St
	Sub
	Xor

	numOpcodes
)

var opcodeNames = [numOpcodes]string{
	Add:  "add",
	And:  "and",
	Atom: "atom",
	Bar:  "bar",
	Bra:  "bra",
	Call: "call",
	Cvt:  "cvt",
	Div:  "div",
	Ld:   "ld",
	Ldu:  "ldu",
	Mad:  "mad",
	Mov:  "mov",
	Mul:  "mul",
	Neg:  "neg",
	Not:  "not",
	Or:   "or",
	Rem:  "rem",
	Ret:  "ret",
	Setp: "setp",
	Shl:  "shl",
	Shr:  "shr",
	St:   "st",
	Sub:  "sub",
	Xor:  "xor",
}

func (o Opcode) String() string {
	if o >= numOpcodes {
		return "invalid"
	}
	return opcodeNames[o]
}

// DataType is the scalar type tag carried by instructions, operands,
// declarations, and parameters.
type DataType uint8

const (
	TypeInvalid DataType = iota

	S8
	S16
	S32
	S64

	U8
	U16
	U32
	U64

	B8
	B16
	B32
	B64

	F32
	F64

	Predicate

	numDataTypes
)

var dataTypeNames = [numDataTypes]string{
	TypeInvalid: "invalid",
	S8:          "s8",
	S16:         "s16",
	S32:         "s32",
	S64:         "s64",
	U8:          "u8",
	U16:         "u16",
	U32:         "u32",
	U64:         "u64",
	B8:          "b8",
	B16:         "b16",
	B32:         "b32",
	B64:         "b64",
	F32:         "f32",
	F64:         "f64",
	Predicate:   "pred",
}

func (t DataType) String() string {
	if t >= numDataTypes {
		return "invalid"
	}
	return dataTypeNames[t]
}

// IsFloat reports whether t is a floating point type.
func (t DataType) IsFloat() bool {
	return t == F32 || t == F64
}

// IsSigned reports whether t is a signed integer type. Bit-pattern
// types count as unsigned.
func (t DataType) IsSigned() bool {
	switch t {
	case S8, S16, S32, S64:
		return true
	}
	return false
}

// Bytes returns the storage size of t. Predicates occupy one byte.
func (t DataType) Bytes() int {
	switch t {
	case S8, U8, B8, Predicate:
		return 1
	case S16, U16, B16:
		return 2
	case S32, U32, B32, F32:
		return 4
	case S64, U64, B64, F64:
		return 8
	}
	return 0
}

// AddressMode selects how an operand addresses its value. The zero
// value is invalid so absent operands fail loudly instead of reading
// register 0.
type AddressMode uint8

const (
	ModeInvalid AddressMode = iota
	ModeRegister
	ModeIndirect
	ModeImmediate
	ModeAddress
	ModeLabel
	ModeSpecial
	ModeBitBucket

	numAddressModes
)

var addressModeNames = [numAddressModes]string{
	ModeInvalid:   "invalid",
	ModeRegister:  "register",
	ModeIndirect:  "indirect",
	ModeImmediate: "immediate",
	ModeAddress:   "address",
	ModeLabel:     "label",
	ModeSpecial:   "special",
	ModeBitBucket: "bitbucket",
}

func (m AddressMode) String() string {
	if m >= numAddressModes {
		return "invalid"
	}
	return addressModeNames[m]
}

// PredicateCondition interprets a guard operand. The zero value is PT:
// an unguarded instruction.
type PredicateCondition uint8

const (
	// PT commits unconditionally.
	PT PredicateCondition = iota

	// NPT never commits.
	NPT

	// Pred commits when the guard register holds true.
	Pred

	// InvPred commits when the guard register holds false.
	InvPred

	numConditions
)

var conditionNames = [numConditions]string{
	PT:      "pt",
	NPT:     "npt",
	Pred:    "pred",
	InvPred: "invpred",
}

func (c PredicateCondition) String() string {
	if c >= numConditions {
		return "invalid"
	}
	return conditionNames[c]
}

// SpecialRegister names a hardware-provided value.
type SpecialRegister uint8

const (
	SpecialTid SpecialRegister = iota
	SpecialNtid
	SpecialLaneid
	SpecialWarpid
	SpecialNwarpid
	SpecialCtaid
	SpecialNctaid
	SpecialSmid
	SpecialNsmid
	SpecialGridid
	SpecialClock

	numSpecials
)

var specialNames = [numSpecials]string{
	SpecialTid:     "tid",
	SpecialNtid:    "ntid",
	SpecialLaneid:  "laneid",
	SpecialWarpid:  "warpid",
	SpecialNwarpid: "nwarpid",
	SpecialCtaid:   "ctaid",
	SpecialNctaid:  "nctaid",
	SpecialSmid:    "smid",
	SpecialNsmid:   "nsmid",
	SpecialGridid:  "gridid",
	SpecialClock:   "clock",
}

func (s SpecialRegister) String() string {
	if s >= numSpecials {
		return "invalid"
	}
	return specialNames[s]
}

// IsVector reports whether s is read one lane at a time.
func (s SpecialRegister) IsVector() bool {
	switch s {
	case SpecialTid, SpecialNtid, SpecialCtaid, SpecialNctaid,
		SpecialSmid, SpecialNsmid, SpecialGridid:
		return true
	}
	return false
}

// VectorLane selects one component of a vector special register.
type VectorLane uint8

const (
	LaneNone VectorLane = iota
	LaneX
	LaneY
	LaneZ
	LaneW

	numLanes
)

var laneNames = [numLanes]string{
	LaneNone: "",
	LaneX:    "x",
	LaneY:    "y",
	LaneZ:    "z",
	LaneW:    "w",
}

func (l VectorLane) String() string {
	if l >= numLanes {
		return "invalid"
	}
	return laneNames[l]
}

// AddressSpace is the memory space an instruction addresses.
type AddressSpace uint8

const (
	SpaceGeneric AddressSpace = iota
	SpaceGlobal
	SpaceLocal
	SpaceParam
	SpaceShared
	SpaceConst

	numSpaces
)

var spaceNames = [numSpaces]string{
	SpaceGeneric: "generic",
	SpaceGlobal:  "global",
	SpaceLocal:   "local",
	SpaceParam:   "param",
	SpaceShared:  "shared",
	SpaceConst:   "const",
}

func (s AddressSpace) String() string {
	if s >= numSpaces {
		return "invalid"
	}
	return spaceNames[s]
}

// Modifier is a bit set of instruction modifiers. A conversion with
// any modifier bit set is outside the simple translation subset.
type Modifier uint8

const (
	ModRn Modifier = 1 << iota
	ModRz
	ModRm
	ModRp
	ModSat
	ModApprox
	ModFtz

	ModNone Modifier = 0
)

var modifierNames = []struct {
	bit  Modifier
	name string
}{
	{ModRn, "rn"},
	{ModRz, "rz"},
	{ModRm, "rm"},
	{ModRp, "rp"},
	{ModSat, "sat"},
	{ModApprox, "approx"},
	{ModFtz, "ftz"},
}

// String renders the set bits as dot-prefixed suffixes, empty for
// ModNone.
func (m Modifier) String() string {
	if m == ModNone {
		return ""
	}

	var sb strings.Builder
	for _, mn := range modifierNames {
		if m&mn.bit != 0 {
			sb.WriteByte('.')
			sb.WriteString(mn.name)
		}
	}
	return sb.String()
}

// LinkingDirective is the source-level visibility of a global or
// kernel. Only an explicit extern changes the target linkage.
type LinkingDirective uint8

const (
	DirectiveInternal LinkingDirective = iota
	DirectiveVisible
	DirectiveExtern

	numDirectives
)

var directiveNames = [numDirectives]string{
	DirectiveInternal: "internal",
	DirectiveVisible:  "visible",
	DirectiveExtern:   "extern",
}

func (d LinkingDirective) String() string {
	if d >= numDirectives {
		return "invalid"
	}
	return directiveNames[d]
}
