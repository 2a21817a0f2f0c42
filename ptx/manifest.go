package ptx

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

// Kernel manifests describe a source module in YAML: the fixture and
// CLI input format.
//
//	module: vecadd
//	globals:
//	  - name: out
//	    type: u64
//	    directive: extern
//	kernels:
//	  - name: add
//	    directive: visible
//	    parameters:
//	      - {name: in, type: u64}
//	    registers:
//	      - {id: 0, type: u32}
//	      - {id: 1, type: u32}
//	    blocks:
//	      - label: body
//	        instructions:
//	          - opcode: add
//	            type: u32
//	            guard: {condition: pred, reg: 2}
//	            d: {mode: register, reg: 0}
//	            a: {mode: register, reg: 1}
//	            b: {mode: immediate, imm: 1}
//
// Enum fields are spelled the way the enums render: lowercase opcodes
// and types, addressing modes by name, specials without the % sigil.

type moduleManifest struct {
	Module  string           `yaml:"module"`
	Globals []globalManifest `yaml:"globals"`
	Kernels []kernelManifest `yaml:"kernels"`
}

type globalManifest struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Directive string `yaml:"directive"`
	Init      []int  `yaml:"init"`
}

type kernelManifest struct {
	Name       string              `yaml:"name"`
	Directive  string              `yaml:"directive"`
	Parameters []parameterManifest `yaml:"parameters"`
	Registers  []registerManifest  `yaml:"registers"`
	Blocks     []blockManifest     `yaml:"blocks"`
}

type parameterManifest struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type registerManifest struct {
	ID   int    `yaml:"id"`
	Type string `yaml:"type"`
}

type blockManifest struct {
	Label        string                `yaml:"label"`
	Instructions []instructionManifest `yaml:"instructions"`
}

type instructionManifest struct {
	Opcode    string           `yaml:"opcode"`
	Type      string           `yaml:"type"`
	Space     string           `yaml:"space"`
	Modifiers []string         `yaml:"modifiers"`
	Guard     *operandManifest `yaml:"guard"`
	D         *operandManifest `yaml:"d"`
	A         *operandManifest `yaml:"a"`
	B         *operandManifest `yaml:"b"`
	C         *operandManifest `yaml:"c"`
}

type operandManifest struct {
	Mode       string `yaml:"mode"`
	Type       string `yaml:"type"`
	Reg        int    `yaml:"reg"`
	Offset     int64  `yaml:"offset"`
	Imm        uint64 `yaml:"imm"`
	Identifier string `yaml:"identifier"`
	Special    string `yaml:"special"`
	Lane       string `yaml:"lane"`
	Argument   bool   `yaml:"argument"`
	Condition  string `yaml:"condition"`
}

var (
	opcodeSpellings    = make(map[string]Opcode, numOpcodes)
	dataTypeSpellings  = make(map[string]DataType, numDataTypes)
	modeSpellings      = make(map[string]AddressMode, numAddressModes)
	conditionSpellings = make(map[string]PredicateCondition, numConditions)
	specialSpellings   = make(map[string]SpecialRegister, numSpecials)
	laneSpellings      = make(map[string]VectorLane, numLanes)
	spaceSpellings     = make(map[string]AddressSpace, numSpaces)
	directiveSpellings = make(map[string]LinkingDirective, numDirectives)
	modifierSpellings  = make(map[string]Modifier, len(modifierNames))
)

func init() {
	for op := Opcode(0); op < numOpcodes; op++ {
		opcodeSpellings[opcodeNames[op]] = op
	}
	for dt := TypeInvalid + 1; dt < numDataTypes; dt++ {
		dataTypeSpellings[dataTypeNames[dt]] = dt
	}
	for m := ModeInvalid + 1; m < numAddressModes; m++ {
		modeSpellings[addressModeNames[m]] = m
	}
	for c := PredicateCondition(0); c < numConditions; c++ {
		conditionSpellings[conditionNames[c]] = c
	}
	for s := SpecialRegister(0); s < numSpecials; s++ {
		specialSpellings[specialNames[s]] = s
	}
	for l := LaneNone + 1; l < numLanes; l++ {
		laneSpellings[laneNames[l]] = l
	}
	for s := AddressSpace(0); s < numSpaces; s++ {
		spaceSpellings[spaceNames[s]] = s
	}
	for d := LinkingDirective(0); d < numDirectives; d++ {
		directiveSpellings[directiveNames[d]] = d
	}
	for _, mn := range modifierNames {
		modifierSpellings[mn.name] = mn.bit
	}
}

// LoadModuleFile reads a kernel manifest from path.
func LoadModuleFile(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}

	m, err := decodeModule(data)
	if err != nil {
		return nil, errors.Wrap(err, "%v", path)
	}

	return m, nil
}

// DecodeModule decodes a kernel manifest from r.
func DecodeModule(r io.Reader) (*Module, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}

	return decodeModule(data)
}

func decodeModule(data []byte) (*Module, error) {
	var raw moduleManifest

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode manifest")
	}

	m := &Module{Name: raw.Module}

	for i := range raw.Globals {
		g, err := convertGlobal(&raw.Globals[i])
		if err != nil {
			return nil, errors.Wrap(err, "global %v", raw.Globals[i].Name)
		}

		m.Globals = append(m.Globals, g)
	}

	for i := range raw.Kernels {
		k, err := convertKernel(&raw.Kernels[i])
		if err != nil {
			return nil, errors.Wrap(err, "kernel %v", raw.Kernels[i].Name)
		}

		m.Kernels = append(m.Kernels, k)
	}

	return m, nil
}

func convertGlobal(raw *globalManifest) (Global, error) {
	g := Global{Name: raw.Name}

	t, ok := dataTypeSpellings[raw.Type]
	if !ok {
		return g, errors.New("unknown type %q", raw.Type)
	}
	g.Type = t

	d, err := parseDirective(raw.Directive)
	if err != nil {
		return g, err
	}
	g.Attribute = d

	for _, b := range raw.Init {
		if b < 0 || b > 255 {
			return g, errors.New("initializer byte %d out of range", b)
		}
		g.Init = append(g.Init, byte(b))
	}

	return g, nil
}

func convertKernel(raw *kernelManifest) (Kernel, error) {
	k := Kernel{Name: raw.Name}

	d, err := parseDirective(raw.Directive)
	if err != nil {
		return k, err
	}
	k.Directive = d

	for _, p := range raw.Parameters {
		t, ok := dataTypeSpellings[p.Type]
		if !ok {
			return k, errors.New("parameter %v: unknown type %q", p.Name, p.Type)
		}

		k.Parameters = append(k.Parameters, Parameter{Name: p.Name, Type: t})
	}

	for _, r := range raw.Registers {
		t, ok := dataTypeSpellings[r.Type]
		if !ok {
			return k, errors.New("register r%d: unknown type %q", r.ID, r.Type)
		}

		k.Registers = append(k.Registers, Register{ID: RegisterID(r.ID), Type: t})
	}

	k.CFG = NewCFG()

	for i := range raw.Blocks {
		rb := &raw.Blocks[i]
		b := k.CFG.NewBlock(rb.Label)

		for j := range rb.Instructions {
			in, err := convertInstruction(&rb.Instructions[j])
			if err != nil {
				return k, errors.Wrap(err, "block %v: instruction %d", rb.Label, j)
			}

			b.Instructions = append(b.Instructions, in)
		}
	}

	return k, nil
}

func convertInstruction(raw *instructionManifest) (Instruction, error) {
	var in Instruction

	op, ok := opcodeSpellings[raw.Opcode]
	if !ok {
		return in, errors.New("unknown opcode %q", raw.Opcode)
	}
	in.Opcode = op

	if raw.Type != "" {
		t, ok := dataTypeSpellings[raw.Type]
		if !ok {
			return in, errors.New("unknown type %q", raw.Type)
		}
		in.Type = t
	}

	if raw.Space != "" {
		s, ok := spaceSpellings[raw.Space]
		if !ok {
			return in, errors.New("unknown address space %q", raw.Space)
		}
		in.AddressSpace = s
	}

	for _, m := range raw.Modifiers {
		bit, ok := modifierSpellings[m]
		if !ok {
			return in, errors.New("unknown modifier %q", m)
		}
		in.Modifier |= bit
	}

	if raw.Guard != nil {
		g, err := convertGuard(raw.Guard)
		if err != nil {
			return in, err
		}
		in.Guard = g
	}

	slots := []struct {
		raw  *operandManifest
		dst  *Operand
		name string
	}{
		{raw.D, &in.D, "d"},
		{raw.A, &in.A, "a"},
		{raw.B, &in.B, "b"},
		{raw.C, &in.C, "c"},
	}

	for _, s := range slots {
		if s.raw == nil {
			continue
		}

		o, err := convertOperand(s.raw)
		if err != nil {
			return in, errors.Wrap(err, "operand %v", s.name)
		}

		*s.dst = o
	}

	return in, nil
}

func convertOperand(raw *operandManifest) (Operand, error) {
	var o Operand

	mode, ok := modeSpellings[raw.Mode]
	if !ok {
		return o, errors.New("unknown addressing mode %q", raw.Mode)
	}
	o.Mode = mode

	if raw.Type != "" {
		t, ok := dataTypeSpellings[raw.Type]
		if !ok {
			return o, errors.New("unknown type %q", raw.Type)
		}
		o.Type = t
	}

	o.Reg = RegisterID(raw.Reg)
	o.Offset = raw.Offset
	o.Imm = raw.Imm
	o.Identifier = raw.Identifier
	o.IsArgument = raw.Argument

	if mode == ModeSpecial {
		s, ok := specialSpellings[raw.Special]
		if !ok {
			return o, errors.New("unknown special register %q", raw.Special)
		}
		o.Special = s

		if raw.Lane != "" {
			l, ok := laneSpellings[raw.Lane]
			if !ok {
				return o, errors.New("unknown vector lane %q", raw.Lane)
			}
			o.Lane = l
		}
	}

	if raw.Condition != "" {
		c, ok := conditionSpellings[raw.Condition]
		if !ok {
			return o, errors.New("unknown predicate condition %q", raw.Condition)
		}
		o.Condition = c
	}

	return o, nil
}

// convertGuard reads only the guard fields: condition and register.
func convertGuard(raw *operandManifest) (Operand, error) {
	var o Operand

	if raw.Condition != "" {
		c, ok := conditionSpellings[raw.Condition]
		if !ok {
			return o, errors.New("unknown predicate condition %q", raw.Condition)
		}
		o.Condition = c
	}

	o.Reg = RegisterID(raw.Reg)

	return o, nil
}

func parseDirective(s string) (LinkingDirective, error) {
	if s == "" {
		return DirectiveInternal, nil
	}

	d, ok := directiveSpellings[s]
	if !ok {
		return DirectiveInternal, errors.New("unknown linking directive %q", s)
	}

	return d, nil
}
