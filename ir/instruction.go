package ir

import (
	"fmt"
	"strings"

	"tlog.app/go/errors"
)

// Instruction is a single VIR instruction. The concrete shapes form a
// closed set; New builds the right shape for every opcode.
type Instruction interface {
	// Opcode returns the opcode tag.
	Opcode() Opcode

	// ID returns the instruction identity, unique within the owning
	// Function. It is assigned when the instruction is appended to a
	// block and is zero while detached.
	ID() int

	// Block returns the owning basic block, or nil while detached.
	Block() *BasicBlock

	// Guard returns the guard predicate occupying read slot 0, or nil
	// while no guard has been set.
	Guard() *PredicateOperand

	// SetGuard replaces the guard slot.
	SetGuard(*PredicateOperand)

	// Reads returns the ordered read list. Slot 0 is the guard.
	Reads() []Operand

	// Writes returns the ordered write list.
	Writes() []Operand

	// Clone returns a deep copy with every operand cloned and rebound
	// to the copy. The copy keeps the source's id and block reference
	// until it is appended to a block itself.
	Clone() Instruction

	// String renders the instruction for diagnostics.
	String() string

	base() *inst
}

// inst is the state shared by every shape: opcode, identity, owning
// block, and the guarded operand lists.
type inst struct {
	self   Instruction
	op     Opcode
	id     int
	block  *BasicBlock
	reads  []Operand
	writes []Operand
}

func newInst(op Opcode, reads, writes int) inst {
	return inst{
		op:     op,
		reads:  make([]Operand, reads),
		writes: make([]Operand, writes),
	}
}

func (i *inst) Opcode() Opcode     { return i.op }
func (i *inst) ID() int            { return i.id }
func (i *inst) Block() *BasicBlock { return i.block }
func (i *inst) Reads() []Operand   { return i.reads }
func (i *inst) Writes() []Operand  { return i.writes }
func (i *inst) base() *inst        { return i }

func (i *inst) Guard() *PredicateOperand {
	p, _ := i.reads[0].(*PredicateOperand)
	return p
}

func (i *inst) SetGuard(p *PredicateOperand) {
	if p == nil {
		i.reads[0] = nil
		return
	}
	p.setOwner(i.self)
	i.reads[0] = p
}

// setRead replaces one read slot, binding the new occupant.
func (i *inst) setRead(slot int, o Operand) {
	if o != nil {
		o.setOwner(i.self)
	}
	i.reads[slot] = o
}

// setWrite replaces one write slot, binding the new occupant.
func (i *inst) setWrite(slot int, o Operand) {
	if o != nil {
		o.setOwner(i.self)
	}
	i.writes[slot] = o
}

// cloneInto fills dst with a deep copy of i whose operands are rebound
// to self.
func (i *inst) cloneInto(dst *inst, self Instruction) {
	dst.self = self
	dst.op = i.op
	dst.id = i.id
	dst.block = i.block
	dst.reads = cloneOperands(i.reads, self)
	dst.writes = cloneOperands(i.writes, self)
}

func cloneOperands(ops []Operand, owner Instruction) []Operand {
	out := make([]Operand, len(ops))
	for k, o := range ops {
		if o == nil {
			continue
		}
		c := o.Clone()
		c.setOwner(owner)
		out[k] = c
	}
	return out
}

func (i *inst) String() string {
	var sb strings.Builder

	if g := i.Guard(); g != nil && !g.IsAlwaysTrue() {
		sb.WriteString(g.String())
		sb.WriteByte(' ')
	}

	sb.WriteString(i.op.String())

	first := true
	sep := func() {
		if first {
			sb.WriteByte(' ')
			first = false
		} else {
			sb.WriteString(", ")
		}
	}

	for _, w := range i.writes {
		sep()
		sb.WriteString(operandString(w))
	}

	for _, r := range i.reads[1:] {
		sep()
		sb.WriteString(operandString(r))
	}

	return sb.String()
}

func operandString(o Operand) string {
	if o == nil {
		return "_"
	}
	return o.String()
}

// Shape markers. Comparison and Atomic embed Binary, so they satisfy
// binaryShaped as well.
type (
	unaryShaped  interface{ unaryShape() }
	binaryShaped interface{ binaryShape() }
)

// IsUnary reports whether in has the unary shape (d = op a).
func IsUnary(in Instruction) bool {
	_, ok := in.(unaryShaped)
	return ok
}

// IsBinary reports whether in has the binary shape (d = a op b). This
// includes comparisons and atomics, which extend it.
func IsBinary(in Instruction) bool {
	_, ok := in.(binaryShaped)
	return ok
}

// IsLoad reports whether in reads memory (Ld or Atom).
func IsLoad(in Instruction) bool {
	return in.Opcode() == OpLd || in.Opcode() == OpAtom
}

// IsStore reports whether in writes memory (St or Atom).
func IsStore(in Instruction) bool {
	return in.Opcode() == OpSt || in.Opcode() == OpAtom
}

// IsBranch reports whether in transfers control (Bra or Call).
func IsBranch(in Instruction) bool {
	return in.Opcode() == OpBra || in.Opcode() == OpCall
}

// IsCall reports whether in is a call.
func IsCall(in Instruction) bool {
	return in.Opcode() == OpCall
}

// Unary computes d from a single source: loads, moves, and the
// conversion family.
type Unary struct {
	inst
}

// NewUnary returns a detached unary instruction with opcode op.
func NewUnary(op Opcode) *Unary {
	u := &Unary{inst: newInst(op, 2, 1)}
	u.self = u
	return u
}

func (*Unary) unaryShape() {}

// D returns the destination, write slot 0.
func (u *Unary) D() Operand { return u.writes[0] }

// A returns the source, read slot 1.
func (u *Unary) A() Operand { return u.reads[1] }

// SetD replaces the destination slot.
func (u *Unary) SetD(o Operand) { u.setWrite(0, o) }

// SetA replaces the source slot.
func (u *Unary) SetA(o Operand) { u.setRead(1, o) }

func (u *Unary) Clone() Instruction {
	c := &Unary{}
	u.cloneInto(&c.inst, c)
	return c
}

// Binary computes d from two sources: the arithmetic and logical
// family.
type Binary struct {
	inst
}

// NewBinary returns a detached binary instruction with opcode op.
func NewBinary(op Opcode) *Binary {
	b := &Binary{inst: newInst(op, 3, 1)}
	b.self = b
	return b
}

func (*Binary) binaryShape() {}

// D returns the destination, write slot 0.
func (b *Binary) D() Operand { return b.writes[0] }

// A returns the first source, read slot 1.
func (b *Binary) A() Operand { return b.reads[1] }

// B returns the second source, read slot 2.
func (b *Binary) B() Operand { return b.reads[2] }

// SetD replaces the destination slot.
func (b *Binary) SetD(o Operand) { b.setWrite(0, o) }

// SetA replaces the first source slot.
func (b *Binary) SetA(o Operand) { b.setRead(1, o) }

// SetB replaces the second source slot.
func (b *Binary) SetB(o Operand) { b.setRead(2, o) }

func (b *Binary) Clone() Instruction {
	c := &Binary{}
	b.cloneInto(&c.inst, c)
	return c
}

// Comparison compares two sources and writes a predicate (Setp).
type Comparison struct {
	Binary
	Condition CmpOp
}

// NewComparison returns a detached Setp evaluating cond.
func NewComparison(cond CmpOp) *Comparison {
	c := &Comparison{Binary: Binary{inst: newInst(OpSetp, 3, 1)}, Condition: cond}
	c.self = c
	return c
}

func (c *Comparison) Clone() Instruction {
	out := &Comparison{Condition: c.Condition}
	c.cloneInto(&out.inst, out)
	return out
}

// Atomic performs a read-modify-write on memory: the binary shape plus
// a compare value for the exchange forms and an operation tag.
type Atomic struct {
	Binary
	Operation AtomicOperation
}

// NewAtomic returns a detached Atom performing op.
func NewAtomic(op AtomicOperation) *Atomic {
	a := &Atomic{Binary: Binary{inst: newInst(OpAtom, 4, 1)}, Operation: op}
	a.self = a
	return a
}

// C returns the compare value, read slot 3.
func (a *Atomic) C() Operand { return a.reads[3] }

// SetC replaces the compare-value slot.
func (a *Atomic) SetC(o Operand) { a.setRead(3, o) }

func (a *Atomic) Clone() Instruction {
	c := &Atomic{Operation: a.Operation}
	a.cloneInto(&c.inst, c)
	return c
}

// Branch transfers control to its target (Bra). A target is mandatory
// once the instruction is finalized.
type Branch struct {
	inst
}

// NewBranch returns a detached branch with an unset target.
func NewBranch() *Branch {
	b := &Branch{inst: newInst(OpBra, 2, 0)}
	b.self = b
	return b
}

// Target returns the target operand, read slot 1.
func (b *Branch) Target() Operand { return b.reads[1] }

// SetTarget replaces the target slot.
func (b *Branch) SetTarget(o Operand) { b.setRead(1, o) }

// IsUnconditional reports whether the guard is the AlwaysTrue form.
func (b *Branch) IsUnconditional() bool {
	g := b.Guard()
	return g != nil && g.IsAlwaysTrue()
}

// TargetBlock returns the target basic block. ok is false while the
// target is unset or is not a basic-block address.
func (b *Branch) TargetBlock() (*BasicBlock, bool) {
	addr, ok := b.reads[1].(*AddressOperand)
	if !ok {
		return nil, false
	}
	blk, ok := addr.Target.(*BasicBlock)
	return blk, ok
}

func (b *Branch) Clone() Instruction {
	c := &Branch{}
	b.cloneInto(&c.inst, c)
	return c
}

// Call branches saving the return location. Its variable-arity
// returned and argument lists are views over the generic write and
// read lists, so the typed and generic views always agree in length
// and order.
type Call struct {
	inst
}

// NewCall returns a detached call with an unset target and empty
// returned/argument lists.
func NewCall() *Call {
	c := &Call{inst: newInst(OpCall, 2, 0)}
	c.self = c
	return c
}

// Target returns the callee operand, read slot 1.
func (c *Call) Target() Operand { return c.reads[1] }

// SetTarget replaces the callee slot.
func (c *Call) SetTarget(o Operand) { c.setRead(1, o) }

// AddReturn appends a written return value.
func (c *Call) AddReturn(o Operand) {
	if o != nil {
		o.setOwner(c)
	}
	c.writes = append(c.writes, o)
}

// AddArgument appends a read actual argument.
func (c *Call) AddArgument(o Operand) {
	if o != nil {
		o.setOwner(c)
	}
	c.reads = append(c.reads, o)
}

// Returned is the written return-value view: the whole write list.
func (c *Call) Returned() []Operand { return c.writes }

// Arguments is the read actual-argument view: the reads past the guard
// and target.
func (c *Call) Arguments() []Operand { return c.reads[2:] }

func (c *Call) Clone() Instruction {
	out := &Call{}
	c.cloneInto(&out.inst, out)
	return out
}

// Store writes a value to memory (St). Both of its operands are reads:
// a store has no register writes.
type Store struct {
	inst
}

// NewStore returns a detached store.
func NewStore() *Store {
	s := &Store{inst: newInst(OpSt, 3, 0)}
	s.self = s
	return s
}

// D returns the stored-to address, read slot 1.
func (s *Store) D() Operand { return s.reads[1] }

// A returns the stored value, read slot 2.
func (s *Store) A() Operand { return s.reads[2] }

// SetD replaces the stored-to address slot.
func (s *Store) SetD(o Operand) { s.setRead(1, o) }

// SetA replaces the stored-value slot.
func (s *Store) SetA(o Operand) { s.setRead(2, o) }

func (s *Store) Clone() Instruction {
	c := &Store{}
	s.cloneInto(&c.inst, c)
	return c
}

// PhiEdge is one incoming value of a Phi: the value merged when
// control arrives from Block.
type PhiEdge struct {
	Block *BasicBlock
	Value *RegisterOperand
}

// Phi merges one incoming value per predecessor block. The edge list
// and the read list past the guard stay index-aligned: edge k's value
// is read slot k+1.
type Phi struct {
	inst
	edges []PhiEdge
}

// NewPhi returns a detached phi with no sources.
func NewPhi() *Phi {
	p := &Phi{inst: newInst(OpPhi, 1, 1)}
	p.self = p
	return p
}

// D returns the merged destination, write slot 0.
func (p *Phi) D() *RegisterOperand {
	d, _ := p.writes[0].(*RegisterOperand)
	return d
}

// SetD replaces the destination slot.
func (p *Phi) SetD(d *RegisterOperand) {
	if d == nil {
		p.writes[0] = nil
		return
	}
	d.setOwner(p)
	p.writes[0] = d
}

// Edges returns the incoming edges in insertion order.
func (p *Phi) Edges() []PhiEdge { return p.edges }

// AddSource records value as the incoming value from predecessor.
func (p *Phi) AddSource(value *RegisterOperand, predecessor *BasicBlock) {
	value.setOwner(p)
	p.reads = append(p.reads, value)
	p.edges = append(p.edges, PhiEdge{Block: predecessor, Value: value})
}

// RemoveSource drops the edge for predecessor and its read slot. It is
// an error if predecessor is not a recorded edge.
func (p *Phi) RemoveSource(predecessor *BasicBlock) error {
	for k, e := range p.edges {
		if e.Block != predecessor {
			continue
		}
		p.edges = append(p.edges[:k], p.edges[k+1:]...)
		p.reads = append(p.reads[:k+1], p.reads[k+2:]...)
		return nil
	}
	return errors.New("phi: block %v is not a recorded predecessor", predecessor.Label)
}

func (p *Phi) Clone() Instruction {
	c := &Phi{}
	p.cloneInto(&c.inst, c)
	c.edges = make([]PhiEdge, len(p.edges))
	for k, e := range p.edges {
		v, _ := c.reads[k+1].(*RegisterOperand)
		c.edges[k] = PhiEdge{Block: e.Block, Value: v}
	}
	return c
}

// PsiEdge is one incoming value of a Psi: the value selected when
// Predicate holds.
type PsiEdge struct {
	Predicate *PredicateOperand
	Value     *RegisterOperand
}

// Psi merges one incoming value per guarding predicate: the
// predicated-code analog of Phi. The edge list and the read list past
// the guard stay index-aligned; predicates live only on the edges.
type Psi struct {
	inst
	edges []PsiEdge
}

// NewPsi returns a detached psi with no sources.
func NewPsi() *Psi {
	p := &Psi{inst: newInst(OpPsi, 1, 1)}
	p.self = p
	return p
}

// D returns the merged destination, write slot 0.
func (p *Psi) D() *RegisterOperand {
	d, _ := p.writes[0].(*RegisterOperand)
	return d
}

// SetD replaces the destination slot.
func (p *Psi) SetD(d *RegisterOperand) {
	if d == nil {
		p.writes[0] = nil
		return
	}
	d.setOwner(p)
	p.writes[0] = d
}

// Edges returns the incoming edges in insertion order.
func (p *Psi) Edges() []PsiEdge { return p.edges }

// AddSource records value as the incoming value selected by predicate.
func (p *Psi) AddSource(value *RegisterOperand, predicate *PredicateOperand) {
	value.setOwner(p)
	predicate.setOwner(p)
	p.reads = append(p.reads, value)
	p.edges = append(p.edges, PsiEdge{Predicate: predicate, Value: value})
}

// RemoveSource drops the edge guarded by predicate (matched by
// identity) and its read slot. It is an error if predicate is not a
// recorded edge.
func (p *Psi) RemoveSource(predicate *PredicateOperand) error {
	for k, e := range p.edges {
		if e.Predicate != predicate {
			continue
		}
		p.edges = append(p.edges[:k], p.edges[k+1:]...)
		p.reads = append(p.reads[:k+1], p.reads[k+2:]...)
		return nil
	}
	return errors.New("psi: predicate %v is not a recorded source", predicate)
}

func (p *Psi) Clone() Instruction {
	c := &Psi{}
	p.cloneInto(&c.inst, c)
	c.edges = make([]PsiEdge, len(p.edges))
	for k, e := range p.edges {
		v, _ := c.reads[k+1].(*RegisterOperand)
		var pr *PredicateOperand
		if e.Predicate != nil {
			pr = e.Predicate.Clone().(*PredicateOperand)
			pr.setOwner(c)
		}
		c.edges[k] = PsiEdge{Predicate: pr, Value: v}
	}
	return c
}

// Barrier synchronizes the thread group (Bar).
type Barrier struct {
	inst
}

// NewBarrier returns a detached barrier.
func NewBarrier() *Barrier {
	b := &Barrier{inst: newInst(OpBar, 1, 0)}
	b.self = b
	return b
}

func (b *Barrier) Clone() Instruction {
	c := &Barrier{}
	b.cloneInto(&c.inst, c)
	return c
}

// MemoryFence orders memory accesses at the given scope (Membar).
type MemoryFence struct {
	inst
	Level FenceLevel
}

// NewMemoryFence returns a detached fence at level.
func NewMemoryFence(level FenceLevel) *MemoryFence {
	f := &MemoryFence{inst: newInst(OpMembar, 1, 0), Level: level}
	f.self = f
	return f
}

func (f *MemoryFence) Clone() Instruction {
	c := &MemoryFence{Level: f.Level}
	f.cloneInto(&c.inst, c)
	return c
}

// Return leaves the current function, or exits for a kernel (Ret).
type Return struct {
	inst
}

// NewReturn returns a detached return.
func NewReturn() *Return {
	r := &Return{inst: newInst(OpRet, 1, 0)}
	r.self = r
	return r
}

func (r *Return) Clone() Instruction {
	c := &Return{}
	r.cloneInto(&c.inst, c)
	return c
}

// Launch spawns a new grid at an entry point.
type Launch struct {
	inst
}

// NewLaunch returns a detached launch.
func NewLaunch() *Launch {
	l := &Launch{inst: newInst(OpLaunch, 1, 0)}
	l.self = l
	return l
}

func (l *Launch) Clone() Instruction {
	c := &Launch{}
	l.cloneInto(&c.inst, c)
	return c
}

// New builds the shape implementing op. The factory is total over the
// closed opcode set; an out-of-range opcode is a programming error and
// panics. Shapes carrying a payload get its zero value (CmpEq,
// AtomicAnd, FenceCta).
func New(op Opcode) Instruction {
	switch op {
	case OpAdd, OpAnd, OpAshr, OpFdiv, OpFmul, OpFrem, OpLshr, OpMul,
		OpOr, OpSdiv, OpShl, OpSrem, OpSub, OpUdiv, OpUrem, OpXor:
		return NewBinary(op)
	case OpBitcast, OpFpext, OpFptosi, OpFptoui, OpFptrunc, OpLd,
		OpSext, OpSitofp, OpTrunc, OpUitofp, OpZext:
		return NewUnary(op)
	case OpSetp:
		return NewComparison(CmpEq)
	case OpAtom:
		return NewAtomic(AtomicAnd)
	case OpBra:
		return NewBranch()
	case OpCall:
		return NewCall()
	case OpSt:
		return NewStore()
	case OpPhi:
		return NewPhi()
	case OpPsi:
		return NewPsi()
	case OpBar:
		return NewBarrier()
	case OpMembar:
		return NewMemoryFence(FenceCta)
	case OpRet:
		return NewReturn()
	case OpLaunch:
		return NewLaunch()
	}

	panic(fmt.Sprintf("ir: no instruction shape for opcode %d", op))
}
