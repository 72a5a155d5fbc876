package compiler

import (
	"nwsc/catalog"
	"nwsc/code"
	"nwsc/parser"
	"nwsc/types"
)

// ScopedValue is one named binding with its resolved byte size
type ScopedValue struct {
	Name string
	Type types.DataType
	Size int
}

// Function is one entry in the compile unit's function table. A
// prototype creates the entry and emits its stub (the placed entry
// label); a matching definition splices its body right after the
// stub.
type Function struct {
	Name    string
	Returns types.DataType
	Params  []parser.Param
	Entry   code.Label
	StubPos int // emitter index right after the stub
	Defined bool
	Called  bool
	Line    int
}

// CodeRoot is the compile-unit context: global scope, struct and
// function tables, the constants/external catalog, and the shared
// instruction emitter.
type CodeRoot struct {
	Catalog *catalog.Catalog
	Structs *types.Table
	Emit    *code.Emitter

	globals     []*ScopedValue // oldest first; newest is last
	globalBytes int

	funcs     map[string]*Function
	funcOrder []string
}

// NewCodeRoot creates the context for one compilation
func NewCodeRoot(cat *catalog.Catalog) *CodeRoot {
	if cat == nil {
		cat = catalog.New()
	}
	return &CodeRoot{
		Catalog: cat,
		Structs: types.NewTable(),
		Emit:    code.NewEmitter(),
		funcs:   make(map[string]*Function),
	}
}

// declareGlobal registers a global binding. Conceptually the new
// global sits at offset 0 below the base pointer, shifting every
// older global more negative; resolveGlobal realizes that by walking
// newest-first.
func (r *CodeRoot) declareGlobal(name string, typ types.DataType, size int, line int) error {
	for _, g := range r.globals {
		if g.Name == name {
			return &CompileError{Message: "duplicate global " + name, Line: line, Context: name}
		}
	}
	r.globals = append(r.globals, &ScopedValue{Name: name, Type: typ, Size: size})
	r.globalBytes += size
	return nil
}

// resolveGlobal returns a global's BP-relative offset: the newest
// global starts at -its-size, older globals below it.
func (r *CodeRoot) resolveGlobal(name string) (*ScopedValue, int, bool) {
	dist := 0
	for i := len(r.globals) - 1; i >= 0; i-- {
		g := r.globals[i]
		dist += g.Size
		if g.Name == name {
			return g, -dist, true
		}
	}
	return nil, 0, false
}

// GlobalBytes is the total byte size of the global frame
func (r *CodeRoot) GlobalBytes() int {
	return r.globalBytes
}

// function returns the function table entry for a name
func (r *CodeRoot) function(name string) (*Function, bool) {
	f, ok := r.funcs[name]
	return f, ok
}

// addFunction records a new function table entry
func (r *CodeRoot) addFunction(f *Function) {
	r.funcs[f.Name] = f
	r.funcOrder = append(r.funcOrder, f.Name)
}

// scopeNames collects every name visible from a block, for error
// candidate lists.
func (r *CodeRoot) scopeNames(b *CodeBlock) []string {
	var names []string
	for blk := b; blk != nil; blk = blk.parent {
		for _, v := range blk.vars {
			names = append(names, v.Name)
		}
	}
	for _, g := range r.globals {
		names = append(names, g.Name)
	}
	names = append(names, r.Catalog.ConstantNames()...)
	return names
}

// functionNames collects user functions and external routines, for
// error candidate lists.
func (r *CodeRoot) functionNames() []string {
	names := append([]string(nil), r.funcOrder...)
	for _, rt := range r.Catalog.Routines() {
		names = append(names, rt.Name)
	}
	return names
}

// CodeBlock is one lexical scope during codegen. It tracks its own
// named bindings, a temp-stack byte counter for anonymous values
// above them, and optional break/continue targets when the block is a
// loop or switch boundary.
type CodeBlock struct {
	root   *CodeRoot
	parent *CodeBlock

	vars     []*ScopedValue // oldest first; newest is last
	varBytes int
	temp     int // anonymous bytes currently above this block's names

	boundary      bool // loop or switch: break unwinding stops here
	breakLabel    code.Label
	continueLabel code.Label
	hasContinue   bool
}

// newBlock opens a child scope
func newBlock(parent *CodeBlock) *CodeBlock {
	return &CodeBlock{root: parent.root, parent: parent}
}

// newFunctionBlock opens a function's outermost scope, whose parent
// resolution falls through to the global scope.
func newFunctionBlock(root *CodeRoot) *CodeBlock {
	return &CodeBlock{root: root}
}

// declare adds a binding to this block. The same name twice in one
// block is an error; shadowing an outer block is allowed.
func (b *CodeBlock) declare(name string, typ types.DataType, size int, line int) error {
	for _, v := range b.vars {
		if v.Name == name {
			return &CompileError{Message: "duplicate declaration of " + name, Line: line, Context: name}
		}
	}
	b.vars = append(b.vars, &ScopedValue{Name: name, Type: typ, Size: size})
	b.varBytes += size
	return nil
}

// addTemp and dropTemp adjust the anonymous-value counter that keeps
// offset arithmetic correct mid-expression.
func (b *CodeBlock) addTemp(n int)  { b.temp += n }
func (b *CodeBlock) dropTemp(n int) { b.temp -= n }

// Resolved locates a binding: global or local, its type, and its
// signed byte offset (BP-relative for globals, SP-relative for
// locals, computed against the temp counters at resolution time).
type Resolved struct {
	Global bool
	Type   types.DataType
	Offset int
}

// resolve finds a name through the scope chain, falling back to the
// global scope. The returned offset for locals folds in every temp
// byte between the current stack top and the binding.
func (b *CodeBlock) resolve(name string) (Resolved, bool) {
	dist := 0
	for blk := b; blk != nil; blk = blk.parent {
		dist += blk.temp
		for i := len(blk.vars) - 1; i >= 0; i-- {
			v := blk.vars[i]
			dist += v.Size
			if v.Name == name {
				return Resolved{Global: false, Type: v.Type, Offset: -dist}, true
			}
		}
	}
	if g, off, ok := b.root.resolveGlobal(name); ok {
		return Resolved{Global: true, Type: g.Type, Offset: off}, true
	}
	return Resolved{}, false
}

// localBytes reports how many bytes this block alone has on the stack
func (b *CodeBlock) localBytes() int {
	return b.varBytes + b.temp
}

// returnScopeBytes sums the full accumulated scope across every
// enclosing block, the size return must unwind before jumping to the
// function exit.
func (b *CodeBlock) returnScopeBytes() int {
	total := 0
	for blk := b; blk != nil; blk = blk.parent {
		total += blk.localBytes()
	}
	return total
}

// breakScopeBytes sums local sizes outward but stops at the nearest
// loop/switch boundary. The boundary block's own temp bytes (a
// switch's duplicated dispatch value) stay on the stack: the code at
// the break target pops them.
func (b *CodeBlock) breakScopeBytes() (int, *CodeBlock, bool) {
	total := 0
	for blk := b; blk != nil; blk = blk.parent {
		if blk.boundary {
			total += blk.varBytes
			return total, blk, true
		}
		total += blk.localBytes()
	}
	return 0, nil, false
}

// continueScopeBytes is like breakScopeBytes but skips switch
// boundaries: continue always targets the nearest enclosing loop.
func (b *CodeBlock) continueScopeBytes() (int, *CodeBlock, bool) {
	total := 0
	for blk := b; blk != nil; blk = blk.parent {
		if blk.boundary && blk.hasContinue {
			total += blk.varBytes
			return total, blk, true
		}
		total += blk.localBytes()
	}
	return 0, nil, false
}
