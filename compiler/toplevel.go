package compiler

import (
	"nwsc/code"
	"nwsc/parser"
	"nwsc/types"
)

// Entry point names recognized at the end of a compilation. A script
// defines exactly one of them.
const (
	EntryMain        = "main"
	EntryConditional = "StartingConditional"
)

// Compiler drives one compilation. It owns the unit context and the
// current emission target, which switches to side buffers while a
// spliced definition or the global initializer sequence compiles.
type Compiler struct {
	root *CodeRoot
	opts *Options
	e    *code.Emitter

	inGlobalInit bool
	curFn        *Function
	exitLabel    code.Label
	paramBytes   int
}

// Compile turns one source text into a linked program. The emitted
// layout is a jump over every function body to the start sequence:
// global initializers, base-pointer save, then the call into the
// script's entry point.
func Compile(source string, opts *Options) (*code.Program, error) {
	if opts == nil {
		opts = &Options{}
	}
	unit, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	decls, err := opts.spliceIncludes(unit, make(map[string]bool))
	if err != nil {
		return nil, err
	}

	cm := &Compiler{root: NewCodeRoot(opts.Catalog), opts: opts}
	cm.e = cm.root.Emit

	startLabel := cm.e.NewLabel()
	cm.e.Jump(code.OpJmp, startLabel)

	// Global initializers run before any base pointer exists, so
	// their code collects in a side buffer appended after the bodies.
	globalE := cm.e.Fork()
	globalBlock := newFunctionBlock(cm.root)

	for _, decl := range decls {
		switch d := decl.(type) {
		case *parser.StructDecl:
			if err := cm.root.Structs.Define(d.Struct); err != nil {
				return nil, &CompileError{Message: err.Error(), Line: d.Line, Context: d.Struct.Name}
			}
		case *parser.GlobalDecl:
			if err := cm.compileGlobal(d, globalE, globalBlock); err != nil {
				return nil, err
			}
		case *parser.FuncDecl:
			if err := cm.compileFuncDecl(d); err != nil {
				return nil, err
			}
		default:
			return nil, errf(decl.Pos(), "internal: unhandled top-level node %T", decl)
		}
	}

	for _, name := range cm.root.funcOrder {
		fn := cm.root.funcs[name]
		if fn.Called && !fn.Defined {
			return nil, &CompileError{
				Message: "function " + fn.Name + " is called but never defined",
				Line:    fn.Line,
				Context: fn.Name,
			}
		}
	}

	cm.e.PlaceLabel(startLabel)
	cm.e.Append(globalE.Instructions())
	cm.e.Op(code.OpSaveBP)
	if err := cm.emitEntryCall(); err != nil {
		return nil, err
	}

	return code.Link(cm.e.Instructions())
}

// compileGlobal registers one global and compiles its initializer
// into the start-sequence buffer. Before the base pointer is saved
// the globals sit directly under the stack pointer, so the usual
// BP-relative offsets hold SP-relative here.
func (cm *Compiler) compileGlobal(d *parser.GlobalDecl, globalE *code.Emitter, gb *CodeBlock) error {
	mainE := cm.e
	cm.e = globalE
	cm.inGlobalInit = true
	defer func() {
		cm.e = mainE
		cm.inGlobalInit = false
	}()

	size, err := cm.sizeOf(d.Type, d.Line)
	if err != nil {
		return err
	}
	if err := cm.emitReserve(d.Type, d.Line); err != nil {
		return err
	}
	if err := cm.root.declareGlobal(d.Name, d.Type, size, d.Line); err != nil {
		return err
	}
	if d.Init == nil {
		return nil
	}

	vt, err := cm.compileExpr(d.Init, gb)
	if err != nil {
		return err
	}
	if !vt.Equal(d.Type) {
		return errf(d.Line, "cannot initialize %s %s with %s", d.Type, d.Name, vt)
	}
	res, ok := gb.resolve(d.Name)
	if !ok {
		return internalf(d.Line, "global %s vanished during its initializer", d.Name)
	}
	cm.emitStore(res, size, gb)
	cm.e.Emit(&code.Instruction{Op: code.OpMoveSP, Offset: -size})
	gb.dropTemp(size)
	if gb.temp != 0 {
		return internalf(d.Line, "temp counter is %d bytes after the initializer of %s", gb.temp, d.Name)
	}
	return nil
}

// compileFuncDecl handles a prototype or a definition. A prototype
// places the function's entry label and remembers the position right
// after it; the matching definition later splices its body there, so
// call sites emitted in between need no fixups beyond the shared
// label pass.
func (cm *Compiler) compileFuncDecl(d *parser.FuncDecl) error {
	fn, exists := cm.root.function(d.Name)

	if d.Body == nil {
		if exists {
			return &CompileError{Message: "duplicate declaration of function " + d.Name, Line: d.Line, Context: d.Name}
		}
		fn = &Function{
			Name:    d.Name,
			Returns: d.Returns,
			Params:  d.Params,
			Entry:   cm.e.NewLabel(),
			Line:    d.Line,
		}
		cm.root.addFunction(fn)
		cm.e.PlaceLabel(fn.Entry)
		fn.StubPos = cm.e.Pos()
		return nil
	}

	if !exists {
		fn = &Function{
			Name:    d.Name,
			Returns: d.Returns,
			Params:  d.Params,
			Entry:   cm.e.NewLabel(),
			Line:    d.Line,
		}
		cm.root.addFunction(fn)
		cm.e.PlaceLabel(fn.Entry)
		fn.Defined = true
		return cm.compileFunctionBody(fn, d)
	}

	if fn.Defined {
		return &CompileError{Message: "duplicate definition of function " + d.Name, Line: d.Line, Context: d.Name}
	}
	if err := checkSignature(fn, d); err != nil {
		return err
	}
	fn.Defined = true

	// Compile the body into a side buffer and splice it right after
	// the declaration stub, then shift every stub recorded past the
	// splice point.
	bodyE := cm.e.Fork()
	mainE := cm.e
	cm.e = bodyE
	err := cm.compileFunctionBody(fn, d)
	cm.e = mainE
	if err != nil {
		return err
	}

	body := bodyE.Instructions()
	mainE.InsertAt(fn.StubPos, body)
	for _, name := range cm.root.funcOrder {
		other := cm.root.funcs[name]
		if other != fn && other.StubPos > fn.StubPos {
			other.StubPos += len(body)
		}
	}
	return nil
}

// checkSignature requires a definition to match its prototype: return
// type, parameter count, each parameter's type, and which parameters
// carry defaults. Parameter names may differ; the definition's names
// are the ones its body sees.
func checkSignature(fn *Function, d *parser.FuncDecl) error {
	if !fn.Returns.Equal(d.Returns) {
		return errf(d.Line, "definition of %s returns %s but its declaration returns %s",
			d.Name, d.Returns, fn.Returns)
	}
	if len(fn.Params) != len(d.Params) {
		return errf(d.Line, "definition of %s takes %d parameter(s) but its declaration takes %d",
			d.Name, len(d.Params), len(fn.Params))
	}
	for i := range d.Params {
		if !fn.Params[i].Type.Equal(d.Params[i].Type) {
			return errf(d.Line, "parameter %d of %s is %s but its declaration says %s",
				i+1, d.Name, d.Params[i].Type, fn.Params[i].Type)
		}
		if (fn.Params[i].Default == nil) != (d.Params[i].Default == nil) {
			return errf(d.Line, "parameter %d of %s disagrees with its declaration about a default value",
				i+1, d.Name)
		}
	}
	fn.Params = d.Params
	return nil
}

// compileFunctionBody emits a function: parameters registered as the
// outermost bindings (pushed left to right by every caller, so the
// first parameter sits deepest), the body statements, then the shared
// exit that pops the parameters and returns.
func (cm *Compiler) compileFunctionBody(fn *Function, d *parser.FuncDecl) error {
	prevFn, prevExit, prevParams := cm.curFn, cm.exitLabel, cm.paramBytes
	cm.curFn = fn
	cm.exitLabel = cm.e.NewLabel()
	defer func() {
		cm.curFn, cm.exitLabel, cm.paramBytes = prevFn, prevExit, prevParams
	}()

	fb := newFunctionBlock(cm.root)
	cm.paramBytes = 0
	for _, p := range fn.Params {
		size, err := cm.sizeOf(p.Type, d.Line)
		if err != nil {
			return err
		}
		if err := fb.declare(p.Name, p.Type, size, d.Line); err != nil {
			return err
		}
		cm.paramBytes += size
	}

	if err := cm.compileBlock(d.Body, newBlock(fb)); err != nil {
		return err
	}
	if fb.temp != 0 {
		return internalf(d.Line, "temp counter is %d bytes after the body of %s", fb.temp, fn.Name)
	}

	cm.e.PlaceLabel(cm.exitLabel)
	if cm.paramBytes > 0 {
		cm.e.Emit(&code.Instruction{Op: code.OpMoveSP, Offset: -cm.paramBytes})
	}
	cm.e.Op(code.OpRet)
	return nil
}

// emitEntryCall synthesizes the call into main or StartingConditional
// after the global frame is in place. A conditional entry's int
// result stays on top of the stack when the program halts.
func (cm *Compiler) emitEntryCall() error {
	entry, ok := cm.root.function(EntryMain)
	if ok {
		if entry.Returns.Kind != types.KindVoid {
			return errf(entry.Line, "%s must return void, not %s", EntryMain, entry.Returns)
		}
	} else {
		entry, ok = cm.root.function(EntryConditional)
		if !ok {
			return &CompileError{Message: "no entry point: define " + EntryMain + " or " + EntryConditional}
		}
		if entry.Returns.Kind != types.KindInt {
			return errf(entry.Line, "%s must return int, not %s", EntryConditional, entry.Returns)
		}
	}
	if !entry.Defined {
		return &CompileError{
			Message: "entry point " + entry.Name + " is declared but never defined",
			Line:    entry.Line,
			Context: entry.Name,
		}
	}

	eb := newFunctionBlock(cm.root)
	if entry.Returns.Kind != types.KindVoid {
		cm.e.Op(code.OpReserveI)
		eb.addTemp(types.SlotSize)
	}
	for _, p := range entry.Params {
		if p.Default == nil {
			return errf(entry.Line, "entry point parameter %s needs a default value", p.Name)
		}
		at, err := cm.compileExpr(p.Default, eb)
		if err != nil {
			return err
		}
		if !at.Equal(p.Type) {
			return errf(entry.Line, "default for entry point parameter %s is %s, want %s", p.Name, at, p.Type)
		}
	}
	cm.e.Jump(code.OpJsr, entry.Entry)
	return nil
}
