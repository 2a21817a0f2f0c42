// Command virc is the VIR kernel compiler CLI.
//
// Usage:
//
//	virc compile kernel.yaml       # Compile one manifest to VIR assembly
//	virc link a.yaml b.yaml        # Lower several manifests into one module
//	virc dump kernel.yaml          # Print the decoded source module
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gogpu/vir"
	"github.com/gogpu/vir/ir"
	"github.com/gogpu/vir/ptx"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

func main() {
	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile each kernel manifest to VIR assembly",
		Action:      compileAct,
		Args:        cli.Args{},
	}

	linkCmd := &cli.Command{
		Name:        "link",
		Description: "lower several manifests into a single module",
		Action:      linkAct,
		Args:        cli.Args{},
	}

	dumpCmd := &cli.Command{
		Name:        "dump",
		Description: "print the decoded source module",
		Action:      dumpAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "virc",
		Description: "virc compiles virtual GPU kernel manifests to VIR assembly",
		Commands: []*cli.Command{
			compileCmd,
			linkCmd,
			dumpCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func compileAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		src, err := ptx.LoadModuleFile(a)
		if err != nil {
			return errors.Wrap(err, "load %v", a)
		}

		text, err := vir.Compile(ctx, src, vir.DefaultOptions())
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		fmt.Printf("%s", text)
	}

	return nil
}

func linkAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	if len(c.Args) == 0 {
		return errors.New("no input files")
	}

	// The linked module takes its name from the first source.
	var target *ir.Module
	types := ir.NewTypeRegistry()

	for _, a := range c.Args {
		src, err := ptx.LoadModuleFile(a)
		if err != nil {
			return errors.Wrap(err, "load %v", a)
		}

		if target == nil {
			target = ir.NewModule(src.Name)
		}

		err = vir.TranslateInto(ctx, src, target, types)
		if err != nil {
			return errors.Wrap(err, "translate %v", a)
		}
	}

	text, err := vir.Assemble(target)
	if err != nil {
		return errors.Wrap(err, "assemble")
	}

	fmt.Printf("%s", text)

	return nil
}

func dumpAct(c *cli.Command) (err error) {
	for _, a := range c.Args {
		src, err := ptx.LoadModuleFile(a)
		if err != nil {
			return errors.Wrap(err, "load %v", a)
		}

		dumpModule(src)
	}

	return nil
}

func dumpModule(m *ptx.Module) {
	fmt.Printf("module %v\n", m.Name)

	for _, g := range m.Globals {
		fmt.Printf("global %v %v.%v, %d init bytes\n", g.Attribute, g.Name, g.Type, len(g.Init))
	}

	for i := range m.Kernels {
		k := &m.Kernels[i]

		fmt.Printf("kernel %v %v: %d parameters, %d registers\n",
			k.Directive, k.Name, len(k.Parameters), len(k.Registers))

		if k.CFG == nil {
			continue
		}

		for _, b := range k.CFG.Blocks() {
			fmt.Printf("  %v:\n", b.Label)

			for j := range b.Instructions {
				fmt.Printf("    %v\n", &b.Instructions[j])
			}
		}
	}
}
