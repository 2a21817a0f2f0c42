package ir

import "strconv"

// Linkage is the visibility class of a Function or Global.
type Linkage uint8

const (
	// LinkageExternal is visible outside the module.
	LinkageExternal Linkage = iota

	// LinkagePrivate is module-local.
	LinkagePrivate
)

func (l Linkage) String() string {
	if l == LinkageExternal {
		return "external"
	}
	return "private"
}

// VirtualRegister is an SSA-like value local to a Function: a dense id
// unique within the function, a type, and an optional debug name.
// Created only via Function.NewVirtualRegister.
type VirtualRegister struct {
	ID   int
	Type *Type
	Name string
}

func (r *VirtualRegister) String() string {
	if r.Name != "" {
		return "%" + r.Name
	}
	return "%v" + strconv.Itoa(r.ID)
}

// Argument is a named, typed formal parameter of a Function.
type Argument struct {
	Name string
	Type *Type
}

// Function owns its Arguments, VirtualRegisters, and BasicBlocks.
// Synthetic entry and exit blocks are created with the function and
// excluded from Blocks.
type Function struct {
	Name    string
	Linkage Linkage

	module *Module

	args      []*Argument
	registers []*VirtualRegister
	blocks    []*BasicBlock

	entry *BasicBlock
	exit  *BasicBlock

	nextBlock int
	nextInst  int
}

func newFunction(m *Module, name string, linkage Linkage) *Function {
	f := &Function{Name: name, Linkage: linkage, module: m}
	f.entry = f.newBlock("entry")
	f.exit = f.newBlock("exit")
	return f
}

func (*Function) addressValue() {}

// Module returns the owning module.
func (f *Function) Module() *Module { return f.module }

// NewArgument declares a formal argument at the end of the list.
func (f *Function) NewArgument(t *Type, name string) *Argument {
	a := &Argument{Name: name, Type: t}
	f.args = append(f.args, a)
	return a
}

// Arguments returns the declared arguments in order.
func (f *Function) Arguments() []*Argument { return f.args }

// Argument resolves a formal argument by name, first match in
// declaration order. Absence is not an error; the caller decides.
func (f *Function) Argument(name string) (*Argument, bool) {
	for _, a := range f.args {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// NewVirtualRegister declares a register of type t. The name is a
// debug aid and may be empty.
func (f *Function) NewVirtualRegister(t *Type, name string) *VirtualRegister {
	r := &VirtualRegister{ID: len(f.registers), Type: t, Name: name}
	f.registers = append(f.registers, r)
	return r
}

// Registers returns the virtual registers in creation order.
func (f *Function) Registers() []*VirtualRegister { return f.registers }

// Register resolves a virtual register by id. Ids are dense, so this
// is an index check.
func (f *Function) Register(id int) (*VirtualRegister, bool) {
	if id < 0 || id >= len(f.registers) {
		return nil, false
	}
	return f.registers[id], true
}

// NewBasicBlock appends a block labeled label, just before the
// synthetic exit block.
func (f *Function) NewBasicBlock(label string) *BasicBlock {
	return f.InsertBasicBlock(len(f.blocks), label)
}

// InsertBasicBlock creates a block at position at, 0 <= at <=
// len(Blocks()).
func (f *Function) InsertBasicBlock(at int, label string) *BasicBlock {
	b := f.newBlock(label)
	f.blocks = append(f.blocks, nil)
	copy(f.blocks[at+1:], f.blocks[at:])
	f.blocks[at] = b
	return b
}

// RemoveBasicBlock drops the block at position at and returns the
// position now holding the block that followed it.
func (f *Function) RemoveBasicBlock(at int) int {
	f.blocks = append(f.blocks[:at], f.blocks[at+1:]...)
	return at
}

// Blocks returns the user-visible blocks in order, excluding the
// synthetic entry and exit blocks.
func (f *Function) Blocks() []*BasicBlock { return f.blocks }

// Block resolves a block by label, first match in order. The synthetic
// entry and exit blocks are not searched. Absence is not an error; the
// caller decides.
func (f *Function) Block(label string) (*BasicBlock, bool) {
	for _, b := range f.blocks {
		if b.Label == label {
			return b, true
		}
	}
	return nil, false
}

// Entry returns the synthetic entry block.
func (f *Function) Entry() *BasicBlock { return f.entry }

// Exit returns the synthetic exit block.
func (f *Function) Exit() *BasicBlock { return f.exit }

func (f *Function) newBlock(label string) *BasicBlock {
	b := &BasicBlock{Label: label, fn: f, id: f.nextBlock}
	f.nextBlock++
	return b
}

func (f *Function) nextInstID() int {
	f.nextInst++
	return f.nextInst
}
