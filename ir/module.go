package ir

// Module is the root container for one compilation unit. It owns an
// ordered list of Functions, an ordered list of Globals, and the
// Constants backing global initializers. Name lookups are first-match
// linear scans over declaration order, fine at module-construction
// scale.
type Module struct {
	Name string

	functions []*Function
	globals   []*Global
	constants []*Constant
}

// NewModule returns an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name}
}

// NewFunction appends a function.
func (m *Module) NewFunction(name string, linkage Linkage) *Function {
	return m.InsertFunction(len(m.functions), name, linkage)
}

// InsertFunction creates a function at position at, 0 <= at <=
// len(Functions()).
func (m *Module) InsertFunction(at int, name string, linkage Linkage) *Function {
	f := newFunction(m, name, linkage)
	m.functions = append(m.functions, nil)
	copy(m.functions[at+1:], m.functions[at:])
	m.functions[at] = f
	return f
}

// RemoveFunction drops the function at position at and returns the
// position now holding the function that followed it.
func (m *Module) RemoveFunction(at int) int {
	m.functions = append(m.functions[:at], m.functions[at+1:]...)
	return at
}

// Functions returns the functions in declaration order.
func (m *Module) Functions() []*Function { return m.functions }

// Function resolves a function by name, first match in declaration
// order. Absence is not an error; the caller decides.
func (m *Module) Function(name string) (*Function, bool) {
	for _, f := range m.functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// NewGlobal appends a global.
func (m *Module) NewGlobal(name string, t *Type, linkage Linkage) *Global {
	return m.InsertGlobal(len(m.globals), name, t, linkage)
}

// InsertGlobal creates a global at position at, 0 <= at <=
// len(Globals()).
func (m *Module) InsertGlobal(at int, name string, t *Type, linkage Linkage) *Global {
	g := &Global{Name: name, Type: t, Linkage: linkage, module: m}
	m.globals = append(m.globals, nil)
	copy(m.globals[at+1:], m.globals[at:])
	m.globals[at] = g
	return g
}

// RemoveGlobal drops the global at position at and returns the
// position now holding the global that followed it.
func (m *Module) RemoveGlobal(at int) int {
	m.globals = append(m.globals[:at], m.globals[at+1:]...)
	return at
}

// Globals returns the globals in declaration order.
func (m *Module) Globals() []*Global { return m.globals }

// Global resolves a global by name, first match in declaration order.
// Absence is not an error; the caller decides.
func (m *Module) Global(name string) (*Global, bool) {
	for _, g := range m.globals {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// NewConstant appends constant data owned by the module.
func (m *Module) NewConstant(t *Type, data []byte) *Constant {
	c := &Constant{Type: t, Data: data}
	m.constants = append(m.constants, c)
	return c
}

// Constants returns the module-owned constants in creation order.
func (m *Module) Constants() []*Constant { return m.constants }

// Global is a module-scope variable: named, typed, linked, optionally
// initialized.
type Global struct {
	Name    string
	Type    *Type
	Linkage Linkage

	module *Module
	init   *Constant
}

func (*Global) addressValue() {}

// Module returns the owning module.
func (g *Global) Module() *Module { return g.module }

// SetInitializer attaches initial contents.
func (g *Global) SetInitializer(c *Constant) { g.init = c }

// Initializer returns the initial contents, nil when uninitialized.
func (g *Global) Initializer() *Constant { return g.init }

// Constant is module-owned constant data, today the raw bytes backing
// a global initializer.
type Constant struct {
	Type *Type
	Data []byte
}
