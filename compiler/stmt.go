package compiler

import (
	"nwsc/code"
	"nwsc/parser"
	"nwsc/types"
)

// compileStmt emits one statement into the given block. Statements
// leave the temp counter where they found it; declarations grow the
// block's named bytes instead.
func (cm *Compiler) compileStmt(s parser.Stmt, b *CodeBlock) error {
	switch n := s.(type) {
	case *parser.DeclStmt:
		return cm.compileDecl(n, b)

	case *parser.ExprStmt:
		return cm.compileExprStmt(n.Expr, b)

	case *parser.BlockStmt:
		return cm.compileBlock(n, newBlock(b))

	case *parser.IfStmt:
		return cm.compileIf(n, b)

	case *parser.WhileStmt:
		return cm.compileWhile(n, b)

	case *parser.DoWhileStmt:
		return cm.compileDoWhile(n, b)

	case *parser.ForStmt:
		return cm.compileFor(n, b)

	case *parser.SwitchStmt:
		return cm.compileSwitch(n, b)

	case *parser.ReturnStmt:
		return cm.compileReturn(n, b)

	case *parser.BreakStmt:
		bytes, blk, ok := b.breakScopeBytes()
		if !ok {
			return errf(n.Line, "break outside of a loop or switch")
		}
		if bytes > 0 {
			cm.e.Emit(&code.Instruction{Op: code.OpMoveSP, Offset: -bytes})
		}
		cm.e.Jump(code.OpJmp, blk.breakLabel)
		return nil

	case *parser.ContinueStmt:
		bytes, blk, ok := b.continueScopeBytes()
		if !ok {
			return errf(n.Line, "continue outside of a loop")
		}
		if bytes > 0 {
			cm.e.Emit(&code.Instruction{Op: code.OpMoveSP, Offset: -bytes})
		}
		cm.e.Jump(code.OpJmp, blk.continueLabel)
		return nil

	case *parser.NoopStmt:
		cm.e.Op(code.OpNop)
		return nil

	default:
		return errf(s.Pos(), "internal: unhandled statement node %T", s)
	}
}

// compileDecl reserves a local's storage with its type-specific
// reservation op, then compiles the initializer (if any) and copies
// it down into the fresh slot.
func (cm *Compiler) compileDecl(n *parser.DeclStmt, b *CodeBlock) error {
	size, err := cm.sizeOf(n.Type, n.Line)
	if err != nil {
		return err
	}
	if err := cm.emitReserve(n.Type, n.Line); err != nil {
		return err
	}
	if err := b.declare(n.Name, n.Type, size, n.Line); err != nil {
		return err
	}
	if n.Init == nil {
		return nil
	}

	vt, err := cm.compileExpr(n.Init, b)
	if err != nil {
		return err
	}
	if !vt.Equal(n.Type) {
		return errf(n.Line, "cannot initialize %s %s with %s", n.Type, n.Name, vt)
	}
	res, ok := b.resolve(n.Name)
	if !ok {
		return internalf(n.Line, "binding %s vanished during its initializer", n.Name)
	}
	cm.emitStore(res, size, b)
	cm.e.Emit(&code.Instruction{Op: code.OpMoveSP, Offset: -size})
	b.dropTemp(size)
	return nil
}

// compileExprStmt evaluates an expression and discards its value
func (cm *Compiler) compileExprStmt(e parser.Expr, b *CodeBlock) error {
	t, err := cm.compileExpr(e, b)
	if err != nil {
		return err
	}
	size, err := cm.sizeOf(t, e.Pos())
	if err != nil {
		return err
	}
	if size > 0 {
		cm.e.Emit(&code.Instruction{Op: code.OpMoveSP, Offset: -size})
		b.dropTemp(size)
	}
	return nil
}

// compileBlock compiles a brace block's statements into blk and pops
// the block's named bytes on the way out.
func (cm *Compiler) compileBlock(n *parser.BlockStmt, blk *CodeBlock) error {
	for _, s := range n.Stmts {
		if err := cm.compileStmt(s, blk); err != nil {
			return err
		}
	}
	if blk.temp != 0 {
		return internalf(n.Line, "temp counter is %d bytes after a block", blk.temp)
	}
	if blk.varBytes > 0 {
		cm.e.Emit(&code.Instruction{Op: code.OpMoveSP, Offset: -blk.varBytes})
	}
	return nil
}

// compileNested compiles a statement in its own child scope, so a
// bare declaration used as a branch or loop body cannot leak into the
// surrounding block.
func (cm *Compiler) compileNested(s parser.Stmt, parent *CodeBlock) error {
	if blk, ok := s.(*parser.BlockStmt); ok {
		return cm.compileBlock(blk, newBlock(parent))
	}
	child := newBlock(parent)
	if err := cm.compileStmt(s, child); err != nil {
		return err
	}
	if child.temp != 0 {
		return internalf(s.Pos(), "temp counter is %d bytes after a nested statement", child.temp)
	}
	if child.varBytes > 0 {
		cm.e.Emit(&code.Instruction{Op: code.OpMoveSP, Offset: -child.varBytes})
	}
	return nil
}

// compileCond compiles a condition expression and requires int
func (cm *Compiler) compileCond(e parser.Expr, b *CodeBlock) error {
	t, err := cm.compileExpr(e, b)
	if err != nil {
		return err
	}
	if t.Kind != types.KindInt {
		return errf(e.Pos(), "condition must be int, got %s", t)
	}
	return nil
}

func (cm *Compiler) compileIf(n *parser.IfStmt, b *CodeBlock) error {
	if err := cm.compileCond(n.Cond, b); err != nil {
		return err
	}
	elseLabel := cm.e.NewLabel()
	cm.e.Jump(code.OpJz, elseLabel) // pops the condition
	b.dropTemp(types.SlotSize)

	if err := cm.compileNested(n.Then, b); err != nil {
		return err
	}
	if n.Else == nil {
		cm.e.PlaceLabel(elseLabel)
		return nil
	}

	endLabel := cm.e.NewLabel()
	cm.e.Jump(code.OpJmp, endLabel)
	cm.e.PlaceLabel(elseLabel)
	if err := cm.compileNested(n.Else, b); err != nil {
		return err
	}
	cm.e.PlaceLabel(endLabel)
	return nil
}

func (cm *Compiler) compileWhile(n *parser.WhileStmt, b *CodeBlock) error {
	loop := newBlock(b)
	loop.boundary = true
	loop.breakLabel = cm.e.NewLabel()
	loop.continueLabel = cm.e.NewLabel()
	loop.hasContinue = true

	cm.e.PlaceLabel(loop.continueLabel)
	if err := cm.compileCond(n.Cond, loop); err != nil {
		return err
	}
	cm.e.Jump(code.OpJz, loop.breakLabel)
	loop.dropTemp(types.SlotSize)

	if err := cm.compileNested(n.Body, loop); err != nil {
		return err
	}
	cm.e.Jump(code.OpJmp, loop.continueLabel)
	cm.e.PlaceLabel(loop.breakLabel)
	return nil
}

func (cm *Compiler) compileDoWhile(n *parser.DoWhileStmt, b *CodeBlock) error {
	loop := newBlock(b)
	loop.boundary = true
	loop.breakLabel = cm.e.NewLabel()
	loop.continueLabel = cm.e.NewLabel()
	loop.hasContinue = true

	top := cm.e.NewLabel()
	cm.e.PlaceLabel(top)
	if err := cm.compileNested(n.Body, loop); err != nil {
		return err
	}

	// continue in a do-while re-tests the condition
	cm.e.PlaceLabel(loop.continueLabel)
	if err := cm.compileCond(n.Cond, loop); err != nil {
		return err
	}
	cm.e.Jump(code.OpJnz, top)
	loop.dropTemp(types.SlotSize)
	cm.e.PlaceLabel(loop.breakLabel)
	return nil
}

func (cm *Compiler) compileFor(n *parser.ForStmt, b *CodeBlock) error {
	if n.Init != nil {
		if err := cm.compileExprStmt(n.Init, b); err != nil {
			return err
		}
	}

	loop := newBlock(b)
	loop.boundary = true
	loop.breakLabel = cm.e.NewLabel()
	loop.continueLabel = cm.e.NewLabel()
	loop.hasContinue = true

	top := cm.e.NewLabel()
	cm.e.PlaceLabel(top)
	if n.Cond != nil {
		if err := cm.compileCond(n.Cond, loop); err != nil {
			return err
		}
		cm.e.Jump(code.OpJz, loop.breakLabel)
		loop.dropTemp(types.SlotSize)
	}

	if err := cm.compileNested(n.Body, loop); err != nil {
		return err
	}

	// continue in a for targets the post-expression
	cm.e.PlaceLabel(loop.continueLabel)
	if n.Post != nil {
		if err := cm.compileExprStmt(n.Post, loop); err != nil {
			return err
		}
	}
	cm.e.Jump(code.OpJmp, top)
	cm.e.PlaceLabel(loop.breakLabel)
	return nil
}

// compileSwitch keeps the dispatch value on the stack for the whole
// statement: each case comparison duplicates it, compiles the label
// expression next to the copy, and tests with the equality opcode
// picked for the value's type. The code at the break target pops the
// value.
func (cm *Compiler) compileSwitch(n *parser.SwitchStmt, b *CodeBlock) error {
	vt, err := cm.compileExpr(n.Value, b)
	if err != nil {
		return err
	}
	eq := code.OpEqII
	switch vt.Kind {
	case types.KindInt:
	case types.KindFloat:
		eq = code.OpEqFF
	default:
		return errf(n.Line, "switch value must be int or float, got %s", vt)
	}
	// The value sits as a temp on the enclosing block so case bodies
	// resolve their locals past it.

	sw := newBlock(b)
	sw.boundary = true
	sw.breakLabel = cm.e.NewLabel()

	type caseArm struct {
		c     *parser.SwitchCase
		label code.Label
	}
	arms := make([]caseArm, len(n.Cases))
	defaultLabel := code.NoLabel
	for i, c := range n.Cases {
		arms[i] = caseArm{c: c, label: cm.e.NewLabel()}
		if c.Value == nil {
			defaultLabel = arms[i].label
			continue
		}

		cm.e.Emit(&code.Instruction{Op: code.OpCopyTopSP, Offset: -types.SlotSize, Size: types.SlotSize})
		b.addTemp(types.SlotSize)
		lt, err := cm.compileExpr(c.Value, b)
		if err != nil {
			return err
		}
		if lt.Kind != vt.Kind {
			return errf(c.Line, "case label is %s but the switch value is %s", lt, vt)
		}
		cm.e.Op(eq)
		b.dropTemp(2 * types.SlotSize)
		b.addTemp(types.SlotSize)
		cm.e.Jump(code.OpJnz, arms[i].label) // pops the comparison
		b.dropTemp(types.SlotSize)
	}
	if defaultLabel != code.NoLabel {
		cm.e.Jump(code.OpJmp, defaultLabel)
	} else {
		cm.e.Jump(code.OpJmp, sw.breakLabel)
	}

	// Bodies follow in source order; a case without a break falls
	// through to the next.
	for _, arm := range arms {
		cm.e.PlaceLabel(arm.label)
		body := newBlock(sw)
		for _, s := range arm.c.Body {
			if err := cm.compileStmt(s, body); err != nil {
				return err
			}
		}
		if body.temp != 0 {
			return internalf(arm.c.Line, "temp counter is %d bytes after a case body", body.temp)
		}
		if body.varBytes > 0 {
			cm.e.Emit(&code.Instruction{Op: code.OpMoveSP, Offset: -body.varBytes})
		}
	}

	cm.e.PlaceLabel(sw.breakLabel)
	cm.e.Emit(&code.Instruction{Op: code.OpMoveSP, Offset: -types.SlotSize})
	b.dropTemp(types.SlotSize)
	return nil
}

// compileReturn copies the value (if any) down into the caller's
// reserved slot, unwinds this function's locals, and jumps to the
// shared exit. Parameter bytes stay for the exit sequence to pop.
func (cm *Compiler) compileReturn(n *parser.ReturnStmt, b *CodeBlock) error {
	fn := cm.curFn
	if fn == nil {
		return errf(n.Line, "return outside of a function")
	}

	if fn.Returns.Kind == types.KindVoid {
		if n.Value != nil {
			return errf(n.Line, "%s returns void; return must not carry a value", fn.Name)
		}
		scope := b.returnScopeBytes() - cm.paramBytes
		if scope > 0 {
			cm.e.Emit(&code.Instruction{Op: code.OpMoveSP, Offset: -scope})
		}
		cm.e.Jump(code.OpJmp, cm.exitLabel)
		return nil
	}

	if n.Value == nil {
		return errf(n.Line, "%s must return a %s value", fn.Name, fn.Returns)
	}
	vt, err := cm.compileExpr(n.Value, b)
	if err != nil {
		return err
	}
	if !vt.Equal(fn.Returns) {
		return errf(n.Line, "%s returns %s, got %s", fn.Name, fn.Returns, vt)
	}
	retSize, err := cm.sizeOf(fn.Returns, n.Line)
	if err != nil {
		return err
	}

	// scope covers params, locals and temps, including the value just
	// compiled; the slot sits retSize below all of it.
	scope := b.returnScopeBytes()
	cm.e.Emit(&code.Instruction{Op: code.OpCopyDownSP, Offset: -(scope + retSize), Size: retSize})
	unwind := scope - cm.paramBytes
	if unwind > 0 {
		cm.e.Emit(&code.Instruction{Op: code.OpMoveSP, Offset: -unwind})
	}
	b.dropTemp(retSize)
	cm.e.Jump(code.OpJmp, cm.exitLabel)
	return nil
}
