package parser

import (
	"fmt"
	"testing"

	"nwsc/types"
)

// parseUnit fails the test on any parse error
func parseUnit(t *testing.T, src string) *CompileUnit {
	t.Helper()
	unit, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return unit
}

// Test top-level declaration forms
func TestParseTopLevel(t *testing.T) {
	unit := parseUnit(t, `
#include "shared"
struct point { float x; float y; };
int counter = 0;
int helper(int n);
void main() { counter = helper(1); }
`)
	if len(unit.Decls) != 5 {
		t.Fatalf("Expected 5 declarations, got %d", len(unit.Decls))
	}

	inc, ok := unit.Decls[0].(*IncludeDecl)
	if !ok || inc.Name != "shared" {
		t.Errorf("Expected include of \"shared\", got %#v", unit.Decls[0])
	}

	sd, ok := unit.Decls[1].(*StructDecl)
	if !ok {
		t.Fatalf("Expected struct declaration, got %T", unit.Decls[1])
	}
	if sd.Struct.Name != "point" || len(sd.Struct.Members) != 2 {
		t.Errorf("Unexpected struct shape: %#v", sd.Struct)
	}

	gd, ok := unit.Decls[2].(*GlobalDecl)
	if !ok || gd.Name != "counter" || !gd.Type.Equal(types.Int) || gd.Init == nil {
		t.Errorf("Unexpected global: %#v", unit.Decls[2])
	}

	proto, ok := unit.Decls[3].(*FuncDecl)
	if !ok || proto.Body != nil {
		t.Errorf("Expected a prototype, got %#v", unit.Decls[3])
	}
	if len(proto.Params) != 1 || proto.Params[0].Name != "n" {
		t.Errorf("Unexpected prototype params: %#v", proto.Params)
	}

	def, ok := unit.Decls[4].(*FuncDecl)
	if !ok || def.Body == nil || def.Name != "main" {
		t.Errorf("Expected a definition of main, got %#v", unit.Decls[4])
	}
}

// Test parameter defaults parse as expressions
func TestParseParamDefaults(t *testing.T) {
	unit := parseUnit(t, "void f(int a, int b = 3, float c = 1.5);")
	fd := unit.Decls[0].(*FuncDecl)
	if fd.Params[0].Default != nil {
		t.Error("Parameter a should have no default")
	}
	if lit, ok := fd.Params[1].Default.(*IntLit); !ok || lit.Value != 3 {
		t.Errorf("Parameter b default: expected 3, got %#v", fd.Params[1].Default)
	}
	if lit, ok := fd.Params[2].Default.(*FloatLit); !ok || lit.Value != 1.5 {
		t.Errorf("Parameter c default: expected 1.5, got %#v", fd.Params[2].Default)
	}
}

// Test expression precedence and associativity shapes
func TestParseExpressionShapes(t *testing.T) {
	body := func(src string) Expr {
		unit := parseUnit(t, "void main() { x = "+src+"; }")
		stmt := unit.Decls[0].(*FuncDecl).Body.Stmts[0].(*ExprStmt)
		return stmt.Expr.(*AssignExpr).Value
	}

	// 1 + 2 * 3 groups the multiplication first
	e := body("1 + 2 * 3").(*BinaryExpr)
	if e.Op.Value != "+" {
		t.Fatalf("Expected + at the root, got %q", e.Op.Value)
	}
	if r, ok := e.Right.(*BinaryExpr); !ok || r.Op.Value != "*" {
		t.Errorf("Expected * on the right, got %#v", e.Right)
	}

	// a = b = c is right associative
	unit := parseUnit(t, "void main() { a = b = c; }")
	outer := unit.Decls[0].(*FuncDecl).Body.Stmts[0].(*ExprStmt).Expr.(*AssignExpr)
	if _, ok := outer.Value.(*AssignExpr); !ok {
		t.Errorf("Expected nested assignment on the right, got %#v", outer.Value)
	}

	// member chains nest left to right
	f := body("p.a.x").(*FieldAccess)
	if f.Member != "x" {
		t.Fatalf("Expected outer member x, got %q", f.Member)
	}
	if inner, ok := f.Target.(*FieldAccess); !ok || inner.Member != "a" {
		t.Errorf("Expected inner member a, got %#v", f.Target)
	}
}

// Test vector literal parsing, including negative components
func TestParseVectorLiteral(t *testing.T) {
	unit := parseUnit(t, "void main() { v = [1.0, -2.5, 0.0]; }")
	v := unit.Decls[0].(*FuncDecl).Body.Stmts[0].(*ExprStmt).Expr.(*AssignExpr).Value.(*VectorLit)
	if v.X != 1.0 || v.Y != -2.5 || v.Z != 0.0 {
		t.Errorf("Expected [1, -2.5, 0], got [%g, %g, %g]", v.X, v.Y, v.Z)
	}
}

// Test statement parsing covers every construct
func TestParseStatements(t *testing.T) {
	unit := parseUnit(t, `
void main() {
    int i;
    if (i) { i = 1; } else if (i == 2) { i = 3; } else { i = 4; }
    while (i < 10) { i++; }
    do { i--; } while (i > 0);
    for (i = 0; i < 5; i++) { continue; }
    switch (i) {
    case 1:
        i = 10;
        break;
    case 2:
    default:
        i = 20;
    }
    #noop
    return;
}
`)
	stmts := unit.Decls[0].(*FuncDecl).Body.Stmts
	expected := []Stmt{
		&DeclStmt{}, &IfStmt{}, &WhileStmt{}, &DoWhileStmt{},
		&ForStmt{}, &SwitchStmt{}, &NoopStmt{}, &ReturnStmt{},
	}
	if len(stmts) != len(expected) {
		t.Fatalf("Expected %d statements, got %d", len(expected), len(stmts))
	}
	for i := range expected {
		if fmt.Sprintf("%T", stmts[i]) != fmt.Sprintf("%T", expected[i]) {
			t.Errorf("Statement %d: expected %T, got %T", i, expected[i], stmts[i])
		}
	}

	ifStmt := stmts[1].(*IfStmt)
	if _, ok := ifStmt.Else.(*IfStmt); !ok {
		t.Errorf("Expected else-if chain, got %#v", ifStmt.Else)
	}

	sw := stmts[5].(*SwitchStmt)
	if len(sw.Cases) != 3 {
		t.Fatalf("Expected 3 switch arms, got %d", len(sw.Cases))
	}
	if sw.Cases[0].Value == nil || sw.Cases[2].Value != nil {
		t.Error("Expected case/case/default arm layout")
	}
	if len(sw.Cases[1].Body) != 0 {
		t.Errorf("Fall-through arm should have an empty body, got %d statements", len(sw.Cases[1].Body))
	}
}

// Test struct-typed declarations
func TestParseStructType(t *testing.T) {
	unit := parseUnit(t, `
struct point { float x; float y; };
struct point origin;
struct point make(struct point base);
`)
	gd := unit.Decls[1].(*GlobalDecl)
	if !gd.Type.Equal(types.StructType("point")) {
		t.Errorf("Expected struct point global, got %s", gd.Type)
	}
	fd := unit.Decls[2].(*FuncDecl)
	if !fd.Returns.Equal(types.StructType("point")) || !fd.Params[0].Type.Equal(types.StructType("point")) {
		t.Errorf("Expected struct point signature, got %s(%s)", fd.Returns, fd.Params[0].Type)
	}
}

// Test constructs that must be rejected
func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"assign to literal", "void main() { 3 = x; }"},
		{"assign to call", "void main() { f() = 1; }"},
		{"increment of literal", "void main() { ++4; }"},
		{"missing semicolon", "void main() { int x = 1 }"},
		{"two defaults", "void main() { switch (1) { default: break; default: break; } }"},
		{"case outside switch", "void main() { case 1: ; }"},
		{"unclosed block", "void main() { if (1) {"},
		{"bad top level", "return 1;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.src); err == nil {
				t.Errorf("Expected parse error for %q", tt.src)
			}
		})
	}
}
