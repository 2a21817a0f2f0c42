package ptx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const demoManifest = `
module: demo
globals:
  - name: out
    type: u64
    directive: visible
    init: [255, 0, 128]
kernels:
  - name: main
    directive: extern
    parameters:
      - {name: in, type: u64}
      - {name: n, type: u32}
    registers:
      - {id: 0, type: u32}
      - {id: 7, type: pred}
    blocks:
      - label: top
        instructions:
          - opcode: ld
            type: u32
            space: param
            d: {mode: register, reg: 0}
            a: {mode: address, identifier: n, argument: true}
          - opcode: cvt
            type: f32
            modifiers: [rn, sat]
            guard: {condition: invpred, reg: 7}
            d: {mode: register, reg: 0, type: f32}
            a: {mode: special, special: ctaid, lane: z}
      - label: end
        instructions: []
`

func TestDecodeModule(t *testing.T) {
	m, err := DecodeModule(strings.NewReader(demoManifest))
	require.NoError(t, err)

	require.Equal(t, "demo", m.Name)

	require.Len(t, m.Globals, 1)
	g := m.Globals[0]
	require.Equal(t, "out", g.Name)
	require.Equal(t, U64, g.Type)
	require.Equal(t, DirectiveVisible, g.Attribute)
	require.Equal(t, []byte{255, 0, 128}, g.Init)

	require.Len(t, m.Kernels, 1)
	k := m.Kernels[0]
	require.Equal(t, "main", k.Name)
	require.Equal(t, DirectiveExtern, k.Directive)

	require.Equal(t, []Parameter{{Name: "in", Type: U64}, {Name: "n", Type: U32}}, k.Parameters)
	require.Equal(t, []Register{{ID: 0, Type: U32}, {ID: 7, Type: Predicate}}, k.Registers)

	require.NotNil(t, k.CFG)
	require.Len(t, k.CFG.Blocks(), 2)
	require.Equal(t, "top", k.CFG.Blocks()[0].Label)
	require.Equal(t, "end", k.CFG.Blocks()[1].Label)

	seq := k.CFG.ExecutableSequence()
	require.Len(t, seq, 4)
	require.Same(t, k.CFG.Entry(), seq[0])
	require.Same(t, k.CFG.Exit(), seq[3])

	body := k.CFG.Blocks()[0].Instructions
	require.Len(t, body, 2)

	ld := body[0]
	require.Equal(t, Ld, ld.Opcode)
	require.Equal(t, U32, ld.Type)
	require.Equal(t, SpaceParam, ld.AddressSpace)
	require.Equal(t, PT, ld.Guard.Condition)
	require.Equal(t, ModeRegister, ld.D.Mode)
	require.Equal(t, RegisterID(0), ld.D.Reg)
	require.Equal(t, ModeAddress, ld.A.Mode)
	require.Equal(t, "n", ld.A.Identifier)
	require.True(t, ld.A.IsArgument)
	require.Equal(t, ModeInvalid, ld.B.Mode)
	require.Equal(t, ModeInvalid, ld.C.Mode)

	cvt := body[1]
	require.Equal(t, Cvt, cvt.Opcode)
	require.Equal(t, ModRn|ModSat, cvt.Modifier)
	require.Equal(t, InvPred, cvt.Guard.Condition)
	require.Equal(t, RegisterID(7), cvt.Guard.Reg)
	require.Equal(t, F32, cvt.D.Type)
	require.Equal(t, ModeSpecial, cvt.A.Mode)
	require.Equal(t, SpecialCtaid, cvt.A.Special)
	require.Equal(t, LaneZ, cvt.A.Lane)

	require.Equal(t, "@!%r7 cvt.rn.sat.f32 %r0, %ctaid.z", cvt.String())
}

func TestDecodeModuleErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     string
	}{
		{
			name: "unknown opcode",
			manifest: `
kernels:
  - name: k
    blocks:
      - label: body
        instructions:
          - opcode: frobnicate
`,
			want: `unknown opcode "frobnicate"`,
		},
		{
			name: "unknown register type",
			manifest: `
kernels:
  - name: k
    registers:
      - {id: 0, type: q32}
`,
			want: `unknown type "q32"`,
		},
		{
			name: "unknown parameter type",
			manifest: `
kernels:
  - name: k
    parameters:
      - {name: n, type: word}
`,
			want: `unknown type "word"`,
		},
		{
			name: "unknown addressing mode",
			manifest: `
kernels:
  - name: k
    blocks:
      - label: body
        instructions:
          - opcode: mov
            d: {mode: sideways, reg: 0}
            a: {mode: register, reg: 1}
`,
			want: `unknown addressing mode "sideways"`,
		},
		{
			name: "unknown predicate condition",
			manifest: `
kernels:
  - name: k
    blocks:
      - label: body
        instructions:
          - opcode: mov
            guard: {condition: maybe, reg: 0}
            d: {mode: register, reg: 0}
            a: {mode: register, reg: 1}
`,
			want: `unknown predicate condition "maybe"`,
		},
		{
			name: "unknown special register",
			manifest: `
kernels:
  - name: k
    blocks:
      - label: body
        instructions:
          - opcode: mov
            d: {mode: register, reg: 0}
            a: {mode: special, special: threadid}
`,
			want: `unknown special register "threadid"`,
		},
		{
			name: "unknown vector lane",
			manifest: `
kernels:
  - name: k
    blocks:
      - label: body
        instructions:
          - opcode: mov
            d: {mode: register, reg: 0}
            a: {mode: special, special: tid, lane: q}
`,
			want: `unknown vector lane "q"`,
		},
		{
			name: "unknown address space",
			manifest: `
kernels:
  - name: k
    blocks:
      - label: body
        instructions:
          - opcode: ld
            space: texture
            d: {mode: register, reg: 0}
            a: {mode: register, reg: 1}
`,
			want: `unknown address space "texture"`,
		},
		{
			name: "unknown modifier",
			manifest: `
kernels:
  - name: k
    blocks:
      - label: body
        instructions:
          - opcode: cvt
            modifiers: [fast]
            d: {mode: register, reg: 0}
            a: {mode: register, reg: 1}
`,
			want: `unknown modifier "fast"`,
		},
		{
			name: "unknown linking directive",
			manifest: `
kernels:
  - name: k
    directive: public
`,
			want: `unknown linking directive "public"`,
		},
		{
			name: "unknown global type",
			manifest: `
globals:
  - name: out
    type: ptr
`,
			want: `unknown type "ptr"`,
		},
		{
			name: "initializer byte out of range",
			manifest: `
globals:
  - name: out
    type: u8
    init: [256]
`,
			want: "initializer byte 256 out of range",
		},
		{
			name:     "malformed yaml",
			manifest: "kernels: [",
			want:     "decode manifest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeModule(strings.NewReader(tt.manifest))
			require.Error(t, err)
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDecodeModuleErrorContext(t *testing.T) {
	const manifest = `
kernels:
  - name: k
    blocks:
      - label: body
        instructions:
          - opcode: mov
            d: {mode: register, reg: 0}
            a: {mode: sideways, reg: 1}
`

	_, err := DecodeModule(strings.NewReader(manifest))
	require.Error(t, err)
	require.ErrorContains(t, err, "kernel k")
	require.ErrorContains(t, err, "block body")
	require.ErrorContains(t, err, "instruction 0")
	require.ErrorContains(t, err, "operand a")
}

func TestLoadModuleFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "module.yaml")
	require.NoError(t, os.WriteFile(path, []byte(demoManifest), 0o644))

	m, err := LoadModuleFile(path)
	require.NoError(t, err)
	require.Equal(t, "demo", m.Name)
	require.Len(t, m.Kernels, 1)

	_, err = LoadModuleFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
