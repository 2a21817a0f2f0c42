// Package vir provides an in-memory intermediate representation for a
// virtual GPU instruction set, plus a single-pass translator lowering
// parsed, register-based, predicated GPU assembly into it.
//
// The pipeline has three stages:
//  1. Decode a kernel manifest into a source module (ptx package)
//  2. Translate the source module into VIR (ir package)
//  3. Render the populated module as VIR assembly text (asm package)
//
// Example:
//
//	src, err := ptx.LoadModuleFile("kernel.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	text, err := vir.Compile(ctx, src, vir.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For staged access, use Translate or TranslateInto and Assemble
// directly; TranslateInto links several source modules into one target.
package vir

import (
	"context"

	"tlog.app/go/errors"

	"github.com/gogpu/vir/asm"
	"github.com/gogpu/vir/ir"
	"github.com/gogpu/vir/ptx"
)

// Options configures compilation.
type Options struct {
	// ModuleName overrides the target module name. Empty keeps the
	// source module's name.
	ModuleName string
}

// DefaultOptions returns the default compilation options.
func DefaultOptions() Options {
	return Options{}
}

// Compile translates a source module and renders the result as VIR
// assembly text.
//
// This is the simplest way to run the whole pipeline. For more control,
// use Translate or TranslateInto and Assemble individually.
func Compile(ctx context.Context, src *ptx.Module, opts Options) (string, error) {
	name := opts.ModuleName
	if name == "" {
		name = src.Name
	}

	target := ir.NewModule(name)

	if err := TranslateInto(ctx, src, target, ir.NewTypeRegistry()); err != nil {
		return "", errors.Wrap(err, "translate")
	}

	text, err := Assemble(target)
	if err != nil {
		return "", errors.Wrap(err, "assemble")
	}

	return text, nil
}

// Translate lowers a source module into a fresh VIR module carrying the
// builtin scalar types.
func Translate(ctx context.Context, src *ptx.Module) (*ir.Module, error) {
	target := ir.NewModule(src.Name)

	if err := TranslateInto(ctx, src, target, ir.NewTypeRegistry()); err != nil {
		return nil, err
	}

	return target, nil
}

// TranslateInto lowers a source module into an existing target module,
// resolving scalar types against types. Translating several source
// modules into one target links them: globals and kernels accumulate in
// order.
func TranslateInto(ctx context.Context, src *ptx.Module, target *ir.Module, types *ir.TypeRegistry) error {
	return ptx.Translate(ctx, src, target, types)
}

// Assemble renders a populated VIR module as assembly text.
func Assemble(m *ir.Module) (string, error) {
	return asm.Write(m)
}
