package compiler

import (
	"strings"

	"nwsc/catalog"
	"nwsc/code"
	"nwsc/parser"
	"nwsc/types"
)

// sizeOf resolves a type's byte size, wrapping failures (unresolved
// structs) as compile errors at the given line.
func (cm *Compiler) sizeOf(t types.DataType, line int) (int, error) {
	sz, err := t.Size(cm.root.Structs)
	if err != nil {
		return 0, &CompileError{Message: err.Error(), Line: line}
	}
	return sz, nil
}

// tempAbove sums the temp counters of the whole block chain; it is
// the SP adjustment needed when touching globals before the base
// pointer exists.
func tempAbove(b *CodeBlock) int {
	total := 0
	for blk := b; blk != nil; blk = blk.parent {
		total += blk.temp
	}
	return total
}

// emitLoad pushes a resolved binding's bytes. Globals are BP-relative
// except inside global initializers, where the base pointer is not
// established yet and the same offsets hold SP-relative.
func (cm *Compiler) emitLoad(res Resolved, size int, b *CodeBlock) {
	switch {
	case res.Global && !cm.inGlobalInit:
		cm.e.Emit(&code.Instruction{Op: code.OpCopyTopBP, Offset: res.Offset, Size: size})
	case res.Global:
		cm.e.Emit(&code.Instruction{Op: code.OpCopyTopSP, Offset: res.Offset - tempAbove(b), Size: size})
	default:
		cm.e.Emit(&code.Instruction{Op: code.OpCopyTopSP, Offset: res.Offset, Size: size})
	}
}

// emitStore copies the top `size` bytes down into a resolved binding
func (cm *Compiler) emitStore(res Resolved, size int, b *CodeBlock) {
	switch {
	case res.Global && !cm.inGlobalInit:
		cm.e.Emit(&code.Instruction{Op: code.OpCopyDownBP, Offset: res.Offset, Size: size})
	case res.Global:
		cm.e.Emit(&code.Instruction{Op: code.OpCopyDownSP, Offset: res.Offset - tempAbove(b), Size: size})
	default:
		cm.e.Emit(&code.Instruction{Op: code.OpCopyDownSP, Offset: res.Offset, Size: size})
	}
}

// emitMutate applies ++ or -- in place at a resolved int binding
func (cm *Compiler) emitMutate(res Resolved, inc bool, b *CodeBlock) {
	var op code.Op
	var offset int
	switch {
	case res.Global && !cm.inGlobalInit:
		op, offset = code.OpIncBP, res.Offset
		if !inc {
			op = code.OpDecBP
		}
	case res.Global:
		op, offset = code.OpIncSP, res.Offset-tempAbove(b)
		if !inc {
			op = code.OpDecSP
		}
	default:
		op, offset = code.OpIncSP, res.Offset
		if !inc {
			op = code.OpDecSP
		}
	}
	cm.e.Emit(&code.Instruction{Op: op, Offset: offset})
}

// emitReserve emits the type-specific stack reservation for a
// declaration. Struct types recurse per member; a void, action or
// unresolved type cannot be declared.
func (cm *Compiler) emitReserve(t types.DataType, line int) error {
	switch t.Kind {
	case types.KindInt:
		cm.e.Op(code.OpReserveI)
	case types.KindFloat:
		cm.e.Op(code.OpReserveF)
	case types.KindString:
		cm.e.Op(code.OpReserveS)
	case types.KindObject:
		cm.e.Op(code.OpReserveO)
	case types.KindVector:
		cm.e.Op(code.OpReserveF)
		cm.e.Op(code.OpReserveF)
		cm.e.Op(code.OpReserveF)
	case types.KindStruct:
		s, ok := cm.root.Structs.Lookup(t.StructName)
		if !ok {
			return errf(line, "undefined struct %s", t.StructName)
		}
		for _, m := range s.Members {
			if err := cm.emitReserve(m.Type, line); err != nil {
				return err
			}
		}
	default:
		return errf(line, "cannot declare a value of type %s", t)
	}
	return nil
}

// pushConstant pushes a catalog value and returns its byte size
func (cm *Compiler) pushConstant(v catalog.Value) int {
	switch v.Type.Kind {
	case types.KindInt:
		cm.e.Emit(&code.Instruction{Op: code.OpConstI, Int: v.Int})
		return types.SlotSize
	case types.KindFloat:
		cm.e.Emit(&code.Instruction{Op: code.OpConstF, Float: v.Float})
		return types.SlotSize
	case types.KindString:
		cm.e.Emit(&code.Instruction{Op: code.OpConstS, Str: v.Str})
		return types.SlotSize
	case types.KindObject:
		cm.e.Emit(&code.Instruction{Op: code.OpConstO, Int: v.Int})
		return types.SlotSize
	case types.KindVector:
		for _, f := range v.Vec {
			cm.e.Emit(&code.Instruction{Op: code.OpConstF, Float: f})
		}
		return types.VectorSize
	}
	return 0
}

// resolveStorage locates the storage of an assignable expression: an
// identifier or a member-access chain. Compound access walks nested
// offsets type-directed: vector members x/y/z sit at 0/4/8, struct
// members at their running offset sum.
func (cm *Compiler) resolveStorage(e parser.Expr, b *CodeBlock) (Resolved, error) {
	switch n := e.(type) {
	case *parser.Ident:
		res, ok := b.resolve(n.Name)
		if !ok {
			if _, isConst := cm.root.Catalog.Constant(n.Name); isConst {
				return Resolved{}, &CompileError{Message: "cannot assign to constant " + n.Name, Line: n.Line, Context: n.Name}
			}
			msg := withCandidates("undefined identifier "+n.Name, nearby(n.Name, cm.root.scopeNames(b)))
			return Resolved{}, &CompileError{Message: msg, Line: n.Line, Context: n.Name}
		}
		return res, nil

	case *parser.FieldAccess:
		base, err := cm.resolveStorage(n.Target, b)
		if err != nil {
			return Resolved{}, err
		}
		switch base.Type.Kind {
		case types.KindVector:
			var off int
			switch n.Member {
			case "x":
				off = 0
			case "y":
				off = types.SlotSize
			case "z":
				off = 2 * types.SlotSize
			default:
				msg := withCandidates("unknown vector member "+n.Member, nearby(n.Member, []string{"x", "y", "z"}))
				return Resolved{}, &CompileError{Message: msg, Line: n.Line, Context: n.Member}
			}
			return Resolved{Global: base.Global, Type: types.Float, Offset: base.Offset + off}, nil
		case types.KindStruct:
			s, ok := cm.root.Structs.Lookup(base.Type.StructName)
			if !ok {
				return Resolved{}, errf(n.Line, "undefined struct %s", base.Type.StructName)
			}
			m, off, found, err := s.Member(n.Member, cm.root.Structs)
			if err != nil {
				return Resolved{}, &CompileError{Message: err.Error(), Line: n.Line}
			}
			if !found {
				msg := withCandidates("unknown member "+n.Member+" of struct "+s.Name, nearby(n.Member, s.MemberNames()))
				return Resolved{}, &CompileError{Message: msg, Line: n.Line, Context: n.Member}
			}
			return Resolved{Global: base.Global, Type: m.Type, Offset: base.Offset + off}, nil
		default:
			return Resolved{}, errf(n.Line, "type %s has no members", base.Type)
		}

	default:
		return Resolved{}, errf(e.Pos(), "expression is not assignable")
	}
}

// compileExpr emits code that leaves the expression's value on top of
// the stack, grows the enclosing block's temp counter by the value's
// size, and returns the static type.
func (cm *Compiler) compileExpr(e parser.Expr, b *CodeBlock) (types.DataType, error) {
	switch n := e.(type) {
	case *parser.IntLit:
		cm.e.Emit(&code.Instruction{Op: code.OpConstI, Int: n.Value})
		b.addTemp(types.SlotSize)
		return types.Int, nil

	case *parser.FloatLit:
		cm.e.Emit(&code.Instruction{Op: code.OpConstF, Float: n.Value})
		b.addTemp(types.SlotSize)
		return types.Float, nil

	case *parser.StringLit:
		cm.e.Emit(&code.Instruction{Op: code.OpConstS, Str: n.Value})
		b.addTemp(types.SlotSize)
		return types.String, nil

	case *parser.VectorLit:
		// x is pushed first so it sits at member offset 0
		for _, f := range []float64{n.X, n.Y, n.Z} {
			cm.e.Emit(&code.Instruction{Op: code.OpConstF, Float: f})
		}
		b.addTemp(types.VectorSize)
		return types.Vector, nil

	case *parser.Ident:
		if res, ok := b.resolve(n.Name); ok {
			size, err := cm.sizeOf(res.Type, n.Line)
			if err != nil {
				return types.Void, err
			}
			cm.emitLoad(res, size, b)
			b.addTemp(size)
			return res.Type, nil
		}
		if k, ok := cm.root.Catalog.Constant(n.Name); ok {
			size := cm.pushConstant(k.Value)
			b.addTemp(size)
			return k.Value.Type, nil
		}
		msg := withCandidates("undefined identifier "+n.Name, nearby(n.Name, cm.root.scopeNames(b)))
		return types.Void, &CompileError{Message: msg, Line: n.Line, Context: n.Name}

	case *parser.FieldAccess:
		res, err := cm.resolveStorage(n, b)
		if err != nil {
			return types.Void, err
		}
		size, err := cm.sizeOf(res.Type, n.Line)
		if err != nil {
			return types.Void, err
		}
		cm.emitLoad(res, size, b)
		b.addTemp(size)
		return res.Type, nil

	case *parser.UnaryExpr:
		return cm.compileUnary(n, b)

	case *parser.BinaryExpr:
		return cm.compileBinary(n, b)

	case *parser.AssignExpr:
		return cm.compileAssign(n, b)

	case *parser.IncDecExpr:
		return cm.compileIncDec(n, b)

	case *parser.CallExpr:
		return cm.compileCall(n, b)

	default:
		return types.Void, errf(e.Pos(), "internal: unhandled expression node %T", e)
	}
}

func (cm *Compiler) compileUnary(n *parser.UnaryExpr, b *CodeBlock) (types.DataType, error) {
	ot, err := cm.compileExpr(n.Operand, b)
	if err != nil {
		return types.Void, err
	}
	if n.Op.Ops == nil {
		return types.Void, errf(n.Line, "internal: operator %s has no table", n.Op.Value)
	}
	entry, ok := n.Op.Ops.LookupUnary(ot.Kind)
	if !ok {
		return types.Void, &CompileError{
			Message: "operator " + n.Op.Value + " does not accept " + ot.String() +
				"; supported: " + strings.Join(n.Op.Ops.Combinations(), ", "),
			Line: n.Line,
		}
	}
	cm.e.Op(entry.Op)
	// Unary results occupy the same bytes as their operand.
	return types.DataType{Kind: entry.Result}, nil
}

func (cm *Compiler) compileBinary(n *parser.BinaryExpr, b *CodeBlock) (types.DataType, error) {
	lt, err := cm.compileExpr(n.Left, b)
	if err != nil {
		return types.Void, err
	}
	lsize, err := cm.sizeOf(lt, n.Line)
	if err != nil {
		return types.Void, err
	}
	rt, err := cm.compileExpr(n.Right, b)
	if err != nil {
		return types.Void, err
	}
	rsize, err := cm.sizeOf(rt, n.Line)
	if err != nil {
		return types.Void, err
	}
	if n.Op.Ops == nil {
		return types.Void, errf(n.Line, "internal: operator %s has no table", n.Op.Value)
	}
	entry, ok := n.Op.Ops.LookupBinary(lt.Kind, rt.Kind)
	if !ok {
		return types.Void, &CompileError{
			Message: "operator " + n.Op.Value + " does not accept " + lt.String() + " and " + rt.String() +
				"; supported: " + strings.Join(n.Op.Ops.Combinations(), ", "),
			Line: n.Line,
		}
	}
	cm.e.Op(entry.Op)
	result := types.DataType{Kind: entry.Result}
	rsz, err := cm.sizeOf(result, n.Line)
	if err != nil {
		return types.Void, err
	}
	b.dropTemp(lsize + rsize)
	b.addTemp(rsz)
	return result, nil
}

func (cm *Compiler) compileAssign(n *parser.AssignExpr, b *CodeBlock) (types.DataType, error) {
	if n.Op.Type == parser.TOKEN_ASSIGN {
		vt, err := cm.compileExpr(n.Value, b)
		if err != nil {
			return types.Void, err
		}
		res, err := cm.resolveStorage(n.Target, b)
		if err != nil {
			return types.Void, err
		}
		if !vt.Equal(res.Type) {
			return types.Void, errf(n.Line, "cannot assign %s to %s", vt, res.Type)
		}
		size, err := cm.sizeOf(vt, n.Line)
		if err != nil {
			return types.Void, err
		}
		cm.emitStore(res, size, b)
		// The assigned value remains on the stack as the
		// expression's result.
		return res.Type, nil
	}

	// Compound form: re-read the target, apply the base operator,
	// store back.
	res, err := cm.resolveStorage(n.Target, b)
	if err != nil {
		return types.Void, err
	}
	tsize, err := cm.sizeOf(res.Type, n.Line)
	if err != nil {
		return types.Void, err
	}
	cm.emitLoad(res, tsize, b)
	b.addTemp(tsize)

	vt, err := cm.compileExpr(n.Value, b)
	if err != nil {
		return types.Void, err
	}
	vsize, err := cm.sizeOf(vt, n.Line)
	if err != nil {
		return types.Void, err
	}
	if n.Op.Ops == nil {
		return types.Void, errf(n.Line, "internal: operator %s has no table", n.Op.Value)
	}
	entry, ok := n.Op.Ops.LookupBinary(res.Type.Kind, vt.Kind)
	if !ok {
		return types.Void, &CompileError{
			Message: "operator " + n.Op.Value + " does not accept " + res.Type.String() + " and " + vt.String() +
				"; supported: " + strings.Join(n.Op.Ops.Combinations(), ", "),
			Line: n.Line,
		}
	}
	if entry.Result != res.Type.Kind {
		return types.Void, errf(n.Line, "operator %s on %s and %s yields %s, which cannot store back into %s",
			n.Op.Value, res.Type, vt, types.DataType{Kind: entry.Result}, res.Type)
	}
	cm.e.Op(entry.Op)
	b.dropTemp(tsize + vsize)
	b.addTemp(tsize)

	// Offsets moved while the operands were on the stack; resolve the
	// target again before storing.
	res, err = cm.resolveStorage(n.Target, b)
	if err != nil {
		return types.Void, err
	}
	cm.emitStore(res, tsize, b)
	return res.Type, nil
}

func (cm *Compiler) compileIncDec(n *parser.IncDecExpr, b *CodeBlock) (types.DataType, error) {
	res, err := cm.resolveStorage(n.Target, b)
	if err != nil {
		return types.Void, err
	}
	if res.Type.Kind != types.KindInt {
		word := "++"
		if !n.Inc {
			word = "--"
		}
		return types.Void, errf(n.Line, "operator %s requires an int target, got %s", word, res.Type)
	}

	if n.Prefix {
		cm.emitMutate(res, n.Inc, b)
		cm.emitLoad(res, types.SlotSize, b)
		b.addTemp(types.SlotSize)
		return types.Int, nil
	}

	// Postfix reads the old value first, then mutates in place; the
	// target's offset shifts once the copy is on the stack.
	cm.emitLoad(res, types.SlotSize, b)
	b.addTemp(types.SlotSize)
	res, err = cm.resolveStorage(n.Target, b)
	if err != nil {
		return types.Void, err
	}
	cm.emitMutate(res, n.Inc, b)
	return types.Int, nil
}
