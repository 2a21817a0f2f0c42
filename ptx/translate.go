package ptx

import (
	"context"
	"fmt"
	"strconv"

	"tlog.app/go/tlog"

	"github.com/gogpu/vir/ir"
)

// Translator lowers source modules into a target ir.Module. All
// translation state is kernel-scoped and reset when a kernel starts, so
// one Translator may lower any number of modules into its target, one
// after another. A Translator is not safe for concurrent use; translate
// independent modules with independent Translators and targets.
type Translator struct {
	target *ir.Module
	types  *ir.TypeRegistry

	tr tlog.Span

	// Kernel-scoped state, reset by translateKernel.
	kernel  *Kernel
	fn      *ir.Function
	block   *ir.BasicBlock
	inst    ir.Instruction
	srcInst *Instruction

	registers map[RegisterID]*ir.VirtualRegister
	specials  map[specialKey]*ir.VirtualRegister
	blocks    map[string]*ir.BasicBlock
}

// specialKey identifies one materialized special register read: which
// special, which lane.
type specialKey struct {
	special SpecialRegister
	lane    VectorLane
}

// NewTranslator returns a translator lowering into target and resolving
// scalar types against types.
func NewTranslator(target *ir.Module, types *ir.TypeRegistry) *Translator {
	return &Translator{target: target, types: types}
}

// Translate lowers src into target with a one-shot Translator.
func Translate(ctx context.Context, src *Module, target *ir.Module, types *ir.TypeRegistry) error {
	return NewTranslator(target, types).Translate(ctx, src)
}

// Translate lowers every global and kernel of src into the target
// module. The first failure stops translation and is fatal to its
// kernel; a failed instruction is never appended, so the block under
// translation keeps only fully lowered instructions.
func (t *Translator) Translate(ctx context.Context, src *Module) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "translate module", "module", src.Name)
	defer tr.Finish("err", &err)

	t.tr = tr
	t.kernel = nil

	for i := range src.Globals {
		if err = t.translateGlobal(&src.Globals[i]); err != nil {
			return err
		}
	}

	for i := range src.Kernels {
		if err = t.translateKernel(ctx, &src.Kernels[i]); err != nil {
			return err
		}
	}

	return nil
}

func (t *Translator) translateGlobal(g *Global) error {
	ty, err := t.lookupType(g.Type)
	if err != nil {
		return err
	}

	out := t.target.NewGlobal(g.Name, ty, linkage(g.Attribute))

	if len(g.Init) != 0 {
		out.SetInitializer(t.target.NewConstant(ty, g.Init))
	}

	t.tr.Printw("translated global", "name", g.Name, "type", ty, "init_bytes", len(g.Init))

	return nil
}

func (t *Translator) translateKernel(ctx context.Context, k *Kernel) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "translate kernel", "kernel", k.Name)
	defer tr.Finish("err", &err)

	t.tr = tr

	t.kernel = k
	t.fn = t.target.NewFunction(k.Name, linkage(k.Directive))
	t.block = nil
	t.inst = nil
	t.srcInst = nil
	t.registers = make(map[RegisterID]*ir.VirtualRegister, len(k.Registers))
	t.specials = make(map[specialKey]*ir.VirtualRegister)
	t.blocks = make(map[string]*ir.BasicBlock)

	for _, p := range k.Parameters {
		ty, err := t.lookupType(p.Type)
		if err != nil {
			return err
		}

		t.fn.NewArgument(ty, p.Name)
	}

	for _, r := range k.Registers {
		if err = t.declareRegister(r); err != nil {
			return err
		}
	}

	if k.CFG == nil {
		return nil
	}

	seq := k.CFG.ExecutableSequence()

	// Declare every block before populating any, so label operands
	// resolve in both directions.
	for _, b := range seq {
		if b == k.CFG.Entry() || b == k.CFG.Exit() {
			continue
		}

		t.declareBlock(b.Label)
	}

	for _, b := range seq {
		if b == k.CFG.Entry() || b == k.CFG.Exit() {
			continue
		}

		if err = t.translateBlock(b); err != nil {
			return err
		}
	}

	return nil
}

func (t *Translator) declareRegister(r Register) error {
	name := "r" + strconv.Itoa(int(r.ID))

	if _, ok := t.registers[r.ID]; ok {
		return t.errf(ErrDuplicateRegisterDeclaration, "duplicate virtual register '%v'", name)
	}

	ty, err := t.lookupType(r.Type)
	if err != nil {
		return err
	}

	reg := t.fn.NewVirtualRegister(ty, name)
	t.registers[r.ID] = reg

	if t.tr.If("registers") {
		t.tr.Printw("declared register", "source", r.ID, "type", ty, "target", reg.ID)
	}

	return nil
}

// declareBlock creates the target block for label once; a label already
// declared maps to the block created first.
func (t *Translator) declareBlock(label string) *ir.BasicBlock {
	if b, ok := t.blocks[label]; ok {
		return b
	}

	b := t.fn.NewBasicBlock(label)
	t.blocks[label] = b

	return b
}

func (t *Translator) translateBlock(src *Block) error {
	t.block = t.blocks[src.Label]

	for i := range src.Instructions {
		if err := t.translateInstruction(&src.Instructions[i]); err != nil {
			return err
		}
	}

	return nil
}

func (t *Translator) translateInstruction(src *Instruction) error {
	t.srcInst = src

	out, err := t.lowerInstruction(src)
	if err != nil {
		return err
	}

	if t.tr.If("instructions") {
		t.tr.Printw("lowered", "ptx", src, "vir", out)
	}

	t.block.Push(out)

	return nil
}

func (t *Translator) lowerInstruction(src *Instruction) (ir.Instruction, error) {
	if op, ok := binaryOpcode(src); ok {
		return t.lowerBinary(src, op)
	}

	if src.Opcode == St {
		return t.lowerStore(src)
	}

	if op, ok := unaryOpcode(src); ok {
		return t.lowerUnary(src, op)
	}

	return nil, t.errf(ErrUnsupportedInstruction, "no translation implemented for instruction %v", src.Opcode)
}

// Guard, destination, then sources: operands are lowered in that order,
// and the instruction is handed back for appending only after all of
// them resolved.

func (t *Translator) lowerBinary(src *Instruction, op ir.Opcode) (ir.Instruction, error) {
	out := ir.NewBinary(op)
	t.inst = out

	g, err := t.lowerGuard(&src.Guard)
	if err != nil {
		return nil, err
	}
	out.SetGuard(g)

	d, err := t.lowerOperand(&src.D)
	if err != nil {
		return nil, err
	}
	out.SetD(d)

	a, err := t.lowerOperand(&src.A)
	if err != nil {
		return nil, err
	}
	out.SetA(a)

	b, err := t.lowerOperand(&src.B)
	if err != nil {
		return nil, err
	}
	out.SetB(b)

	return out, nil
}

func (t *Translator) lowerUnary(src *Instruction, op ir.Opcode) (ir.Instruction, error) {
	out := ir.NewUnary(op)
	t.inst = out

	g, err := t.lowerGuard(&src.Guard)
	if err != nil {
		return nil, err
	}
	out.SetGuard(g)

	d, err := t.lowerOperand(&src.D)
	if err != nil {
		return nil, err
	}
	out.SetD(d)

	a, err := t.lowerOperand(&src.A)
	if err != nil {
		return nil, err
	}
	out.SetA(a)

	return out, nil
}

func (t *Translator) lowerStore(src *Instruction) (ir.Instruction, error) {
	out := ir.NewStore()
	t.inst = out

	g, err := t.lowerGuard(&src.Guard)
	if err != nil {
		return nil, err
	}
	out.SetGuard(g)

	d, err := t.lowerOperand(&src.D)
	if err != nil {
		return nil, err
	}
	out.SetD(d)

	a, err := t.lowerOperand(&src.A)
	if err != nil {
		return nil, err
	}
	out.SetA(a)

	return out, nil
}

// binaryOpcode maps a simple binary source instruction to its target
// opcode, flavoring division, multiplication, and remainder by the
// instruction type's kind and signedness.
func binaryOpcode(src *Instruction) (ir.Opcode, bool) {
	switch src.Opcode {
	case Add:
		return ir.OpAdd, true
	case And:
		return ir.OpAnd, true
	case Div:
		switch {
		case src.Type.IsFloat():
			return ir.OpFdiv, true
		case src.Type.IsSigned():
			return ir.OpSdiv, true
		default:
			return ir.OpUdiv, true
		}
	case Mul:
		if src.Type.IsFloat() {
			return ir.OpFmul, true
		}
		return ir.OpMul, true
	case Or:
		return ir.OpOr, true
	case Rem:
		switch {
		case src.Type.IsFloat():
			return ir.OpFrem, true
		case src.Type.IsSigned():
			return ir.OpSrem, true
		default:
			return ir.OpUrem, true
		}
	case Shl:
		return ir.OpShl, true
	case Sub:
		return ir.OpSub, true
	case Xor:
		return ir.OpXor, true
	}

	return 0, false
}

// unaryOpcode maps a simple unary source instruction to its target
// opcode. Conversions translate only in their modifier-free form, with
// the opcode chosen from the destination and source operand types.
func unaryOpcode(src *Instruction) (ir.Opcode, bool) {
	switch src.Opcode {
	case Ld, Ldu:
		return ir.OpLd, true
	case Mov:
		return ir.OpBitcast, true
	case Cvt:
		if src.Modifier == ModNone {
			return convertOpcode(src.D.Type, src.A.Type), true
		}
	}

	return 0, false
}

// convertOpcode selects the conversion opcode for a modifier-free cvt
// from the destination and source scalar types. Width decides between
// extension, truncation, and bitcast; kind and signedness pick the
// float/int crossings.
func convertOpcode(dst, src DataType) ir.Opcode {
	switch {
	case dst.IsFloat():
		switch {
		case src.IsFloat():
			switch {
			case src.Bytes() > dst.Bytes():
				return ir.OpFptrunc
			case src.Bytes() == dst.Bytes():
				return ir.OpBitcast
			default:
				return ir.OpFpext
			}
		case src.IsSigned():
			return ir.OpSitofp
		default:
			return ir.OpUitofp
		}

	case dst.IsSigned():
		switch {
		case src.IsFloat():
			return ir.OpFptosi
		case src.Bytes() > dst.Bytes():
			return ir.OpTrunc
		case src.Bytes() == dst.Bytes():
			return ir.OpBitcast
		case src.IsSigned():
			return ir.OpSext
		default:
			return ir.OpZext
		}

	default:
		switch {
		case src.IsFloat():
			return ir.OpFptoui
		case src.Bytes() > dst.Bytes():
			return ir.OpTrunc
		case src.Bytes() == dst.Bytes():
			return ir.OpBitcast
		default:
			return ir.OpZext
		}
	}
}

func (t *Translator) lowerGuard(src *Operand) (*ir.PredicateOperand, error) {
	var reg *ir.VirtualRegister

	if src.Condition == Pred || src.Condition == InvPred {
		r, err := t.resolveRegister(src.Reg)
		if err != nil {
			return nil, err
		}
		reg = r
	}

	return ir.NewPredicateOperand(reg, guardModifier(src.Condition), t.inst), nil
}

func guardModifier(c PredicateCondition) ir.PredicateModifier {
	switch c {
	case NPT:
		return ir.AlwaysFalse
	case Pred:
		return ir.Straight
	case InvPred:
		return ir.Inverted
	}

	return ir.AlwaysTrue
}

func (t *Translator) lowerOperand(src *Operand) (ir.Operand, error) {
	switch src.Mode {
	case ModeRegister:
		reg, err := t.resolveRegister(src.Reg)
		if err != nil {
			return nil, err
		}
		return ir.NewRegisterOperand(reg, t.inst), nil

	case ModeIndirect:
		reg, err := t.resolveRegister(src.Reg)
		if err != nil {
			return nil, err
		}
		return ir.NewIndirectOperand(reg, src.Offset, t.inst), nil

	case ModeImmediate:
		return ir.NewImmediateOperand(src.Imm, t.inst), nil

	case ModeAddress:
		if t.srcInst != nil && t.srcInst.AddressSpace == SpaceParam && src.IsArgument {
			arg, err := t.resolveArgument(src.Identifier)
			if err != nil {
				return nil, err
			}
			return ir.NewArgumentOperand(arg, t.inst), nil
		}

		g, err := t.resolveGlobal(src.Identifier)
		if err != nil {
			return nil, err
		}
		return ir.NewAddressOperand(g, t.inst), nil

	case ModeLabel:
		b, err := t.resolveBlock(src.Identifier)
		if err != nil {
			return nil, err
		}
		return ir.NewAddressOperand(b, t.inst), nil

	case ModeSpecial:
		reg, err := t.specialRegister(src.Special, src.Lane)
		if err != nil {
			return nil, err
		}
		return ir.NewRegisterOperand(reg, t.inst), nil

	case ModeBitBucket:
		reg, err := t.newTemporary()
		if err != nil {
			return nil, err
		}
		return ir.NewRegisterOperand(reg, t.inst), nil
	}

	return nil, t.errf(ErrUnsupportedOperandAddressingMode, "no translation implemented for operand mode %v", src.Mode)
}

func (t *Translator) resolveRegister(id RegisterID) (*ir.VirtualRegister, error) {
	reg, ok := t.registers[id]
	if !ok {
		return nil, t.errf(ErrUnresolvedRegister, "PTX register r%d used without declaration", id)
	}

	return reg, nil
}

func (t *Translator) resolveGlobal(name string) (*ir.Global, error) {
	g, ok := t.target.Global(name)
	if !ok {
		return nil, t.errf(ErrUnresolvedGlobal, "global variable %v used without declaration", name)
	}

	return g, nil
}

func (t *Translator) resolveBlock(label string) (*ir.BasicBlock, error) {
	b, ok := t.blocks[label]
	if !ok {
		return nil, t.errf(ErrUnresolvedBasicBlock, "basic block %v was not declared in this function", label)
	}

	return b, nil
}

func (t *Translator) resolveArgument(name string) (*ir.Argument, error) {
	arg, ok := t.fn.Argument(name)
	if !ok {
		return nil, t.errf(ErrUnresolvedArgument, "argument %v was not declared in this function", name)
	}

	return arg, nil
}

// specialRegister materializes the i32 register backing one special
// register lane, once per (special, lane) within a kernel.
func (t *Translator) specialRegister(s SpecialRegister, lane VectorLane) (*ir.VirtualRegister, error) {
	key := specialKey{special: s, lane: lane}

	if reg, ok := t.specials[key]; ok {
		return reg, nil
	}

	ty, err := t.lookupName("i32")
	if err != nil {
		return nil, err
	}

	name := s.String()
	if s.IsVector() && lane != LaneNone {
		name += "_" + lane.String()
	}

	reg := t.fn.NewVirtualRegister(ty, name)
	t.specials[key] = reg

	if t.tr.If("registers") {
		t.tr.Printw("materialized special register", "special", s, "lane", lane, "target", reg.ID)
	}

	return reg, nil
}

// newTemporary returns a fresh unnamed i64 register; bit buckets each
// get their own.
func (t *Translator) newTemporary() (*ir.VirtualRegister, error) {
	ty, err := t.lookupName("i64")
	if err != nil {
		return nil, err
	}

	return t.fn.NewVirtualRegister(ty, ""), nil
}

func (t *Translator) lookupType(dt DataType) (*ir.Type, error) {
	return t.lookupName(typeName(dt))
}

func (t *Translator) lookupName(name string) (*ir.Type, error) {
	ty, ok := t.types.Lookup(name)
	if !ok {
		return nil, t.errf(ErrUnknownType, "type name '%v' is not a valid target type", name)
	}

	return ty, nil
}

// typeName maps a source scalar type to the target type name it lowers
// to. Signedness and bit-pattern distinctions vanish; width survives.
func typeName(dt DataType) string {
	switch dt {
	case S8, U8, B8:
		return "i8"
	case S16, U16, B16:
		return "i16"
	case S32, U32, B32:
		return "i32"
	case S64, U64, B64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Predicate:
		return "i1"
	}

	return ""
}

// linkage maps a source directive to target linkage. Only an explicit
// extern is external.
func linkage(d LinkingDirective) ir.Linkage {
	if d == DirectiveExtern {
		return ir.LinkageExternal
	}

	return ir.LinkagePrivate
}

func (t *Translator) errf(kind ErrorKind, format string, args ...interface{}) error {
	kernel := ""
	if t.kernel != nil {
		kernel = t.kernel.Name
	}

	return NewError(kind, kernel, fmt.Sprintf(format, args...))
}
