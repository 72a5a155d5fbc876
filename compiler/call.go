package compiler

import (
	"strconv"

	"nwsc/catalog"
	"nwsc/code"
	"nwsc/parser"
	"nwsc/types"
)

// compileCall dispatches a call by name: user functions first, then
// the external-routine catalog.
func (cm *Compiler) compileCall(n *parser.CallExpr, b *CodeBlock) (types.DataType, error) {
	if fn, ok := cm.root.function(n.Name); ok {
		return cm.compileUserCall(n, fn, b)
	}
	if rt, ok := cm.root.Catalog.Routine(n.Name); ok {
		return cm.compileExternalCall(n, rt, b)
	}
	msg := withCandidates("undefined function "+n.Name, nearby(n.Name, cm.root.functionNames()))
	return types.Void, &CompileError{Message: msg, Line: n.Line, Context: n.Name}
}

// compileUserCall reserves the return slot, pushes arguments left to
// right (padding missing trailing ones from parameter defaults), and
// jumps to the callee's entry. The callee pops its own arguments, so
// only the return slot survives the call.
func (cm *Compiler) compileUserCall(n *parser.CallExpr, fn *Function, b *CodeBlock) (types.DataType, error) {
	fn.Called = true
	if len(n.Args) > len(fn.Params) {
		return types.Void, &CompileError{
			Message: "too many arguments",
			Line:    n.Line,
			Context: describeArity(fn.Name, len(fn.Params), len(n.Args)),
		}
	}

	retSize, err := cm.sizeOf(fn.Returns, n.Line)
	if err != nil {
		return types.Void, err
	}
	if fn.Returns.Kind != types.KindVoid {
		if err := cm.emitReserve(fn.Returns, n.Line); err != nil {
			return types.Void, err
		}
		b.addTemp(retSize)
	}

	argBytes := 0
	for i, p := range fn.Params {
		var at types.DataType
		switch {
		case i < len(n.Args):
			at, err = cm.compileExpr(n.Args[i], b)
		case p.Default != nil:
			at, err = cm.compileExpr(p.Default, b)
		default:
			return types.Void, &CompileError{
				Message: "missing required parameter " + p.Name + " (no default)",
				Line:    n.Line,
				Context: fn.Name,
			}
		}
		if err != nil {
			return types.Void, err
		}
		if !at.Equal(p.Type) {
			return types.Void, &CompileError{
				Message: "parameter " + p.Name + " expects " + p.Type.String() + ", got " + at.String(),
				Line:    n.Line,
				Context: fn.Name,
			}
		}
		sz, err := cm.sizeOf(at, n.Line)
		if err != nil {
			return types.Void, err
		}
		argBytes += sz
	}

	cm.e.Jump(code.OpJsr, fn.Entry)
	b.dropTemp(argBytes)
	return fn.Returns, nil
}

// compileExternalCall pushes arguments in reverse declared order to
// match the external calling convention; the routine itself pushes
// any return value. A deferred-action parameter is not evaluated now:
// its body compiles behind a capture-and-skip sequence the runtime
// can invoke later against the captured frame.
func (cm *Compiler) compileExternalCall(n *parser.CallExpr, rt *catalog.Routine, b *CodeBlock) (types.DataType, error) {
	if len(n.Args) > len(rt.Params) {
		return types.Void, &CompileError{
			Message: "too many arguments",
			Line:    n.Line,
			Context: describeArity(rt.Name, len(rt.Params), len(n.Args)),
		}
	}

	argBytes := 0
	for i := len(rt.Params) - 1; i >= 0; i-- {
		p := rt.Params[i]

		if p.Type.Kind == types.KindAction {
			if i >= len(n.Args) {
				return types.Void, &CompileError{
					Message: "missing required parameter " + p.Name + " (no default)",
					Line:    n.Line,
					Context: rt.Name,
				}
			}
			if err := cm.compileDeferredAction(n.Args[i], b); err != nil {
				return types.Void, err
			}
			continue // the captured state occupies no argument bytes
		}

		var at types.DataType
		var err error
		switch {
		case i < len(n.Args):
			at, err = cm.compileExpr(n.Args[i], b)
			if err != nil {
				return types.Void, err
			}
		case p.HasDefault:
			v, derr := cm.root.Catalog.ResolveDefault(p)
			if derr != nil {
				return types.Void, &CompileError{Message: derr.Error(), Line: n.Line, Context: rt.Name}
			}
			sz := cm.pushConstant(v)
			b.addTemp(sz)
			at = v.Type
		default:
			return types.Void, &CompileError{
				Message: "missing required parameter " + p.Name + " (no default)",
				Line:    n.Line,
				Context: rt.Name,
			}
		}
		if !at.Equal(p.Type) {
			return types.Void, &CompileError{
				Message: "parameter " + p.Name + " expects " + p.Type.String() + ", got " + at.String(),
				Line:    n.Line,
				Context: rt.Name,
			}
		}
		sz, err := cm.sizeOf(at, n.Line)
		if err != nil {
			return types.Void, err
		}
		argBytes += sz
	}

	cm.e.Emit(&code.Instruction{Op: code.OpAction, Int: rt.ID, Argc: len(rt.Params), Str: rt.Name})
	b.dropTemp(argBytes)

	retSize, err := cm.sizeOf(rt.Returns, n.Line)
	if err != nil {
		return types.Void, err
	}
	b.addTemp(retSize)
	return rt.Returns, nil
}

// compileDeferredAction emits the capture-current-frame instruction,
// a jump over the action's own body, the body itself, and a return,
// so the external routine can run the captured continuation later.
func (cm *Compiler) compileDeferredAction(arg parser.Expr, b *CodeBlock) error {
	call, ok := arg.(*parser.CallExpr)
	if !ok {
		return errf(arg.Pos(), "deferred action argument must be a call")
	}

	after := cm.e.NewLabel()
	cm.e.Op(code.OpStoreState)
	cm.e.Jump(code.OpJmp, after)

	at, err := cm.compileExpr(call, b)
	if err != nil {
		return err
	}
	if at.Kind != types.KindVoid {
		return errf(call.Line, "deferred action %s must return void, not %s", call.Name, at)
	}
	cm.e.Op(code.OpRet)
	cm.e.PlaceLabel(after)
	return nil
}

func describeArity(name string, want, got int) string {
	return name + " declares " + strconv.Itoa(want) + " parameter(s), call passes " + strconv.Itoa(got)
}
