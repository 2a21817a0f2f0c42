package ir

// BasicBlock owns an ordered instruction sequence and belongs to
// exactly one Function.
type BasicBlock struct {
	Label string

	fn *Function
	id int

	instructions []Instruction
}

func (*BasicBlock) addressValue() {}

// Function returns the owning function.
func (b *BasicBlock) Function() *Function { return b.fn }

// ID returns the block's creation index within its function.
func (b *BasicBlock) ID() int { return b.id }

// Push appends in, binding its block reference and assigning its
// function-unique id.
func (b *BasicBlock) Push(in Instruction) {
	b.attach(in)
	b.instructions = append(b.instructions, in)
}

// Insert places in at position at, 0 <= at <= len(Instructions()).
func (b *BasicBlock) Insert(at int, in Instruction) {
	b.attach(in)
	b.instructions = append(b.instructions, nil)
	copy(b.instructions[at+1:], b.instructions[at:])
	b.instructions[at] = in
}

// Remove drops the instruction at position at, detaching it, and
// returns the position now holding the instruction that followed it.
func (b *BasicBlock) Remove(at int) int {
	b.instructions[at].base().block = nil
	b.instructions = append(b.instructions[:at], b.instructions[at+1:]...)
	return at
}

// Instructions returns the instruction sequence in order.
func (b *BasicBlock) Instructions() []Instruction { return b.instructions }

func (b *BasicBlock) attach(in Instruction) {
	base := in.base()
	base.block = b
	base.id = b.fn.nextInstID()
}

func (b *BasicBlock) String() string { return "^" + b.Label }
