// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package asm renders a populated ir.Module as VIR assembly text.
//
// The layout is line oriented and deterministic: a module header
// comment, one .global directive per module global, then one .function
// body per function with labeled blocks and tab-indented instructions.
//
//	; module vecadd
//
//	.global @out i64
//	.global @lut i32 [1 2 3 4]
//
//	.function @add(%in i64, %n i32) {
//	body:
//		Ld %r0, %in
//		Add %r1, %r0, 0x1
//	}
//
// Instructions render through their ir String form, guard prefixes
// included. Every container is ordered, so the same module always
// produces the same text.
package asm

import (
	"io"
	"strconv"
	"strings"

	"tlog.app/go/errors"

	"github.com/gogpu/vir/ir"
)

// Writer generates VIR assembly from an ir.Module.
type Writer struct {
	module *ir.Module

	out strings.Builder

	indent int
}

func newWriter(m *ir.Module) *Writer {
	return &Writer{module: m}
}

// Write renders m as VIR assembly text.
func Write(m *ir.Module) (string, error) {
	if m == nil {
		return "", errors.New("nil module")
	}

	w := newWriter(m)
	w.writeModule()

	return w.String(), nil
}

// WriteTo renders m as VIR assembly text into out.
func WriteTo(out io.Writer, m *ir.Module) error {
	text, err := Write(m)
	if err != nil {
		return err
	}

	_, err = io.WriteString(out, text)

	return err
}

// String returns the text written so far.
func (w *Writer) String() string {
	return w.out.String()
}

func (w *Writer) writeModule() {
	w.writeLine("; module " + w.module.Name)

	if gs := w.module.Globals(); len(gs) != 0 {
		w.writeLine("")

		for _, g := range gs {
			w.writeGlobal(g)
		}
	}

	for _, f := range w.module.Functions() {
		w.writeLine("")
		w.writeFunction(f)
	}
}

func (w *Writer) writeGlobal(g *ir.Global) {
	var sb strings.Builder

	sb.WriteString(".global @")
	sb.WriteString(g.Name)
	sb.WriteByte(' ')
	sb.WriteString(g.Type.Name)

	if c := g.Initializer(); c != nil {
		sb.WriteString(" [")
		for i, b := range c.Data {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(int(b)))
		}
		sb.WriteByte(']')
	}

	w.writeLine(sb.String())
}

func (w *Writer) writeFunction(f *ir.Function) {
	var sb strings.Builder

	sb.WriteString(".function ")
	if f.Linkage == ir.LinkageExternal {
		sb.WriteString("external ")
	}
	sb.WriteByte('@')
	sb.WriteString(f.Name)
	sb.WriteByte('(')

	for i, a := range f.Arguments() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('%')
		sb.WriteString(a.Name)
		sb.WriteByte(' ')
		sb.WriteString(a.Type.Name)
	}

	sb.WriteString(") {")
	w.writeLine(sb.String())

	for _, b := range f.Blocks() {
		w.writeBlock(b)
	}

	w.writeLine("}")
}

func (w *Writer) writeBlock(b *ir.BasicBlock) {
	w.writeLine(b.Label + ":")

	w.pushIndent()
	for _, in := range b.Instructions() {
		w.writeLine(in.String())
	}
	w.popIndent()
}

// writeLine writes one indented line. Lines are passed prebuilt, never
// as format strings: rendered instruction text contains percent signs.
func (w *Writer) writeLine(line string) {
	w.writeIndent()
	w.out.WriteString(line)
	w.out.WriteByte('\n')
}

func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteByte('\t')
	}
}

func (w *Writer) pushIndent() {
	w.indent++
}

func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}
