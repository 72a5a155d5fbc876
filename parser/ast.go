package parser

import "nwsc/types"

// Node is the base interface for all AST nodes
type Node interface {
	Pos() int // 1-based source line
}

// Expr represents an expression node
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement node
type Stmt interface {
	Node
	stmtNode()
}

// TopLevel represents a top-level declaration in a compile unit
type TopLevel interface {
	Node
	topLevelNode()
}

// CompileUnit is the root of a parsed source file
type CompileUnit struct {
	Decls []TopLevel
}

// IntLit is an integer literal
type IntLit struct {
	Line  int
	Value int
}

func (e *IntLit) Pos() int  { return e.Line }
func (e *IntLit) exprNode() {}

// FloatLit is a float literal
type FloatLit struct {
	Line  int
	Value float64
}

func (e *FloatLit) Pos() int  { return e.Line }
func (e *FloatLit) exprNode() {}

// StringLit is a string literal
type StringLit struct {
	Line  int
	Value string
}

func (e *StringLit) Pos() int  { return e.Line }
func (e *StringLit) exprNode() {}

// VectorLit is a three-float vector literal: [1.0, 2.0, 3.0]
type VectorLit struct {
	Line    int
	X, Y, Z float64
}

func (e *VectorLit) Pos() int  { return e.Line }
func (e *VectorLit) exprNode() {}

// Ident is a variable or constant reference
type Ident struct {
	Line int
	Name string
}

func (e *Ident) Pos() int  { return e.Line }
func (e *Ident) exprNode() {}

// FieldAccess is member access: target.member. Target is an Ident or
// a nested FieldAccess; members resolve type-directed (vector x/y/z or
// struct member table).
type FieldAccess struct {
	Line   int
	Target Expr
	Member string
}

func (e *FieldAccess) Pos() int  { return e.Line }
func (e *FieldAccess) exprNode() {}

// UnaryExpr is a prefix operation: -x, !x, ~x
type UnaryExpr struct {
	Line    int
	Op      Token // carries the operator table
	Operand Expr
}

func (e *UnaryExpr) Pos() int  { return e.Line }
func (e *UnaryExpr) exprNode() {}

// BinaryExpr is an infix operation
type BinaryExpr struct {
	Line  int
	Left  Expr
	Op    Token // carries the operator table
	Right Expr
}

func (e *BinaryExpr) Pos() int  { return e.Line }
func (e *BinaryExpr) exprNode() {}

// AssignExpr is assignment or compound assignment: x = v, x += v
type AssignExpr struct {
	Line   int
	Target Expr  // Ident or FieldAccess
	Op     Token // TOKEN_ASSIGN or a compound form
	Value  Expr
}

func (e *AssignExpr) Pos() int  { return e.Line }
func (e *AssignExpr) exprNode() {}

// IncDecExpr is ++x, --x, x++, x--; integer targets only
type IncDecExpr struct {
	Line   int
	Target Expr
	Inc    bool
	Prefix bool
}

func (e *IncDecExpr) Pos() int  { return e.Line }
func (e *IncDecExpr) exprNode() {}

// CallExpr calls a user function or an external routine by name
type CallExpr struct {
	Line int
	Name string
	Args []Expr
}

func (e *CallExpr) Pos() int  { return e.Line }
func (e *CallExpr) exprNode() {}

// Statement nodes

// DeclStmt declares a variable with an optional initializer
type DeclStmt struct {
	Line int
	Type types.DataType
	Name string
	Init Expr // can be nil
}

func (s *DeclStmt) Pos() int  { return s.Line }
func (s *DeclStmt) stmtNode() {}

// ExprStmt is an expression used as a statement
type ExprStmt struct {
	Line int
	Expr Expr
}

func (s *ExprStmt) Pos() int  { return s.Line }
func (s *ExprStmt) stmtNode() {}

// BlockStmt is a braced statement list opening a new scope
type BlockStmt struct {
	Line  int
	Stmts []Stmt
}

func (s *BlockStmt) Pos() int  { return s.Line }
func (s *BlockStmt) stmtNode() {}

// IfStmt is if/else; else-if chains nest in Else
type IfStmt struct {
	Line int
	Cond Expr
	Then Stmt
	Else Stmt // can be nil; *IfStmt for else-if chains
}

func (s *IfStmt) Pos() int  { return s.Line }
func (s *IfStmt) stmtNode() {}

// WhileStmt is a while loop
type WhileStmt struct {
	Line int
	Cond Expr
	Body Stmt
}

func (s *WhileStmt) Pos() int  { return s.Line }
func (s *WhileStmt) stmtNode() {}

// DoWhileStmt is a do/while loop; the condition tests after the body
type DoWhileStmt struct {
	Line int
	Body Stmt
	Cond Expr
}

func (s *DoWhileStmt) Pos() int  { return s.Line }
func (s *DoWhileStmt) stmtNode() {}

// ForStmt is a C-style for loop; any of the three heads can be nil
type ForStmt struct {
	Line int
	Init Expr
	Cond Expr
	Post Expr
	Body Stmt
}

func (s *ForStmt) Pos() int  { return s.Line }
func (s *ForStmt) stmtNode() {}

// SwitchCase is one case (or default) label with its body statements.
// Bodies run in declared order with C fall-through.
type SwitchCase struct {
	Line  int
	Value Expr // nil for default
	Body  []Stmt
}

// SwitchStmt dispatches on an int value
type SwitchStmt struct {
	Line  int
	Value Expr
	Cases []*SwitchCase
}

func (s *SwitchStmt) Pos() int  { return s.Line }
func (s *SwitchStmt) stmtNode() {}

// ReturnStmt returns from the enclosing function
type ReturnStmt struct {
	Line  int
	Value Expr // can be nil
}

func (s *ReturnStmt) Pos() int  { return s.Line }
func (s *ReturnStmt) stmtNode() {}

// BreakStmt exits the nearest loop or switch
type BreakStmt struct {
	Line int
}

func (s *BreakStmt) Pos() int  { return s.Line }
func (s *BreakStmt) stmtNode() {}

// ContinueStmt jumps to the nearest loop's retest point
type ContinueStmt struct {
	Line int
}

func (s *ContinueStmt) Pos() int  { return s.Line }
func (s *ContinueStmt) stmtNode() {}

// NoopStmt is the #noop debug marker; it compiles to a NOP
type NoopStmt struct {
	Line int
}

func (s *NoopStmt) Pos() int  { return s.Line }
func (s *NoopStmt) stmtNode() {}

// Top-level nodes

// IncludeDecl is an #include "name" directive
type IncludeDecl struct {
	Line int
	Name string
}

func (d *IncludeDecl) Pos() int      { return d.Line }
func (d *IncludeDecl) topLevelNode() {}

// StructDecl defines an aggregate type
type StructDecl struct {
	Line   int
	Struct *types.Struct
}

func (d *StructDecl) Pos() int      { return d.Line }
func (d *StructDecl) topLevelNode() {}

// GlobalDecl declares a global variable with an optional initializer
type GlobalDecl struct {
	Line int
	Type types.DataType
	Name string
	Init Expr
}

func (d *GlobalDecl) Pos() int      { return d.Line }
func (d *GlobalDecl) topLevelNode() {}

// Param is one declared function parameter
type Param struct {
	Name    string
	Type    types.DataType
	Default Expr // can be nil
}

// FuncDecl is a function prototype (Body nil) or definition
type FuncDecl struct {
	Line    int
	Name    string
	Returns types.DataType
	Params  []Param
	Body    *BlockStmt // nil for a forward declaration
}

func (d *FuncDecl) Pos() int      { return d.Line }
func (d *FuncDecl) topLevelNode() {}
