package compiler

import (
	"testing"

	"nwsc/types"
)

func TestGlobalResolution(t *testing.T) {
	root := NewCodeRoot(nil)
	if err := root.declareGlobal("a", types.Int, 4, 1); err != nil {
		t.Fatal(err)
	}
	if err := root.declareGlobal("v", types.Vector, 12, 2); err != nil {
		t.Fatal(err)
	}
	if err := root.declareGlobal("b", types.Int, 4, 3); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		offset int
	}{
		{"b", -4},
		{"v", -16},
		{"a", -20},
	}
	for _, tt := range tests {
		g, off, ok := root.resolveGlobal(tt.name)
		if !ok {
			t.Fatalf("resolveGlobal(%s) not found", tt.name)
		}
		if off != tt.offset {
			t.Errorf("resolveGlobal(%s) offset %d, expected %d", tt.name, off, tt.offset)
		}
		if g.Name != tt.name {
			t.Errorf("resolveGlobal(%s) returned binding %s", tt.name, g.Name)
		}
	}

	if _, _, ok := root.resolveGlobal("missing"); ok {
		t.Error("resolveGlobal found an undeclared name")
	}
	if err := root.declareGlobal("a", types.Int, 4, 9); err == nil {
		t.Error("Expected a duplicate global error")
	}
	if root.GlobalBytes() != 20 {
		t.Errorf("GlobalBytes %d, expected 20", root.GlobalBytes())
	}
}

func TestLocalResolution(t *testing.T) {
	root := NewCodeRoot(nil)
	if err := root.declareGlobal("g", types.Int, 4, 1); err != nil {
		t.Fatal(err)
	}
	fb := newFunctionBlock(root)
	if err := fb.declare("x", types.Int, 4, 2); err != nil {
		t.Fatal(err)
	}
	inner := newBlock(fb)
	if err := inner.declare("y", types.Float, 4, 3); err != nil {
		t.Fatal(err)
	}

	res, ok := inner.resolve("y")
	if !ok || res.Global || res.Offset != -4 {
		t.Errorf("resolve(y) = %+v, expected local at -4", res)
	}
	res, ok = inner.resolve("x")
	if !ok || res.Global || res.Offset != -8 {
		t.Errorf("resolve(x) = %+v, expected local at -8", res)
	}
	res, ok = inner.resolve("g")
	if !ok || !res.Global || res.Offset != -4 {
		t.Errorf("resolve(g) = %+v, expected global at -4", res)
	}
	if _, ok := inner.resolve("missing"); ok {
		t.Error("resolve found an undeclared name")
	}

	// Shadowing an outer block is allowed and wins
	if err := inner.declare("x", types.String, 4, 4); err != nil {
		t.Fatal(err)
	}
	res, ok = inner.resolve("x")
	if !ok || res.Type.Kind != types.KindString || res.Offset != -4 {
		t.Errorf("resolve(shadowed x) = %+v, expected the inner string at -4", res)
	}
	if err := inner.declare("y", types.Int, 4, 5); err == nil {
		t.Error("Expected a duplicate declaration error")
	}
}

func TestTempFolding(t *testing.T) {
	root := NewCodeRoot(nil)
	fb := newFunctionBlock(root)
	if err := fb.declare("x", types.Int, 4, 1); err != nil {
		t.Fatal(err)
	}

	fb.addTemp(8)
	if res, _ := fb.resolve("x"); res.Offset != -12 {
		t.Errorf("resolve(x) under 8 temp bytes = %d, expected -12", res.Offset)
	}
	fb.dropTemp(8)
	if res, _ := fb.resolve("x"); res.Offset != -4 {
		t.Errorf("resolve(x) after dropping temps = %d, expected -4", res.Offset)
	}
	if fb.localBytes() != 4 {
		t.Errorf("localBytes %d, expected 4", fb.localBytes())
	}

	// Temps in a child block fold into outer resolution too
	inner := newBlock(fb)
	inner.addTemp(4)
	if res, _ := inner.resolve("x"); res.Offset != -8 {
		t.Errorf("resolve(x) from child with a temp = %d, expected -8", res.Offset)
	}
}

func TestBreakContinueUnwind(t *testing.T) {
	root := NewCodeRoot(nil)
	fb := newFunctionBlock(root)
	if err := fb.declare("i", types.Int, 4, 1); err != nil {
		t.Fatal(err)
	}

	loop := newBlock(fb)
	loop.boundary = true
	loop.hasContinue = true

	loopBody := newBlock(loop)
	loopBody.addTemp(4) // a switch dispatch value held by the enclosing block

	sw := newBlock(loopBody)
	sw.boundary = true

	body := newBlock(sw)
	if err := body.declare("n", types.Int, 4, 2); err != nil {
		t.Fatal(err)
	}

	// break targets the switch and leaves its dispatch temp alone
	bytes, target, ok := body.breakScopeBytes()
	if !ok || target != sw || bytes != 4 {
		t.Errorf("breakScopeBytes = %d (ok=%v), expected 4 at the switch", bytes, ok)
	}

	// continue skips the switch, pops its temp, and targets the loop
	bytes, target, ok = body.continueScopeBytes()
	if !ok || target != loop || bytes != 8 {
		t.Errorf("continueScopeBytes = %d (ok=%v), expected 8 at the loop", bytes, ok)
	}

	// return unwinds everything
	if got := body.returnScopeBytes(); got != 12 {
		t.Errorf("returnScopeBytes = %d, expected 12", got)
	}

	// outside any boundary there is no break target
	if _, _, ok := fb.breakScopeBytes(); ok {
		t.Error("breakScopeBytes found a target outside any loop or switch")
	}
}
