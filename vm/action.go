package vm

import (
	"fmt"
	"sort"
	"sync"

	"nwsc/catalog"
	"nwsc/code"
	"nwsc/types"
)

// Invocation is one external routine call as the handler sees it:
// the converted arguments in declared order and, when the routine
// takes a deferred action, the captured continuation.
type Invocation struct {
	Machine *Machine
	Routine *catalog.Routine
	Args    []catalog.Value
	Action  *ActionState // non-nil only for routines with an action parameter
}

// ActionFunc implements one external routine
type ActionFunc func(inv *Invocation) (catalog.Value, error)

// Registry maps routine names to handlers. One registry can back many
// machines; registration is guarded so tests can share it.
type Registry struct {
	mu       sync.Mutex
	handlers map[string]ActionFunc
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]ActionFunc)}
}

// Register installs the handler for a routine name, replacing any
// previous one.
func (r *Registry) Register(name string, fn ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = fn
}

// Unregister removes a handler
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, name)
}

func (r *Registry) lookup(name string) (ActionFunc, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn, ok := r.handlers[name]
	return fn, ok
}

// Names lists registered handlers, sorted
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ActionState is the frame captured for a deferred action: the
// instruction index of the action body plus a snapshot of the data
// stack and base pointer at capture time. Running it later executes
// the body against the snapshot, so mutations after the capture are
// not visible to it.
type ActionState struct {
	Resume  int
	Stack   []Cell
	BP      int
	bpStack []int
}

// captureState snapshots the machine for the action body that begins
// two instructions past the capturing one (after its skip jump).
func (m *Machine) captureState() *ActionState {
	return &ActionState{
		Resume:  m.pc + 2,
		Stack:   append([]Cell(nil), m.stack...),
		BP:      m.bp,
		bpStack: append([]int(nil), m.bpStack...),
	}
}

// RunAction executes a captured action body to completion on a fresh
// machine sharing this one's program, catalog and handlers.
func (m *Machine) RunAction(s *ActionState) error {
	sub := New(m.prog, m.catalog, m.actions)
	sub.MaxSteps = m.MaxSteps
	sub.Trace = m.Trace
	sub.stack = append([]Cell(nil), s.Stack...)
	sub.bp = s.BP
	sub.bpStack = append([]int(nil), s.bpStack...)
	sub.pc = s.Resume
	return sub.run()
}

// execAction pops arguments per the routine's declared signature
// (callers push them in reverse, so the first parameter is on top),
// runs the registered handler, and pushes any result. Signature
// violations are hard faults even though unknown opcodes are not.
func (m *Machine) execAction(ins *code.Instruction) error {
	rt, ok := m.catalog.RoutineByID(ins.Int)
	if !ok || rt.Name != ins.Str {
		rt, ok = m.catalog.Routine(ins.Str)
	}
	if !ok {
		return m.fault("unknown external routine %s#%d", ins.Str, ins.Int)
	}
	fn, ok := m.actions.lookup(rt.Name)
	if !ok {
		return m.fault("no handler registered for %s", rt.Name)
	}

	inv := &Invocation{Machine: m, Routine: rt}
	for _, p := range rt.Params {
		if p.Type.Kind == types.KindAction {
			if m.pending == nil {
				return m.fault("%s expects a captured action for %s, none pending", rt.Name, p.Name)
			}
			inv.Action = m.pending
			m.pending = nil
			continue
		}
		v, err := m.popValue(p.Type)
		if err != nil {
			return m.fault("argument %s of %s: %v", p.Name, rt.Name, err)
		}
		inv.Args = append(inv.Args, v)
	}

	result, err := fn(inv)
	if err != nil {
		return m.fault("%s: %v", rt.Name, err)
	}
	if m.Trace != nil {
		m.Trace.call(rt.Name, inv.Args, result)
	}
	if rt.Returns.Kind == types.KindVoid {
		return nil
	}
	if !result.Type.Equal(rt.Returns) {
		return m.fault("%s returned %s, want %s", rt.Name, result.Type, rt.Returns)
	}
	m.pushValue(result)
	return nil
}

// popValue pops one typed value off the stack
func (m *Machine) popValue(t types.DataType) (catalog.Value, error) {
	switch t.Kind {
	case types.KindInt:
		v, err := m.popInt()
		if err != nil {
			return catalog.Value{}, err
		}
		return catalog.IntValue(v), nil
	case types.KindFloat:
		v, err := m.popFloat()
		if err != nil {
			return catalog.Value{}, err
		}
		return catalog.FloatValue(v), nil
	case types.KindString:
		v, err := m.popStr()
		if err != nil {
			return catalog.Value{}, err
		}
		return catalog.StringValue(v), nil
	case types.KindObject:
		v, err := m.popObject()
		if err != nil {
			return catalog.Value{}, err
		}
		return catalog.ObjectValue(v), nil
	case types.KindVector:
		v, err := m.popVec()
		if err != nil {
			return catalog.Value{}, err
		}
		return catalog.VectorValue(v[0], v[1], v[2]), nil
	}
	return catalog.Value{}, fmt.Errorf("unsupported parameter type %s", t)
}

// pushValue pushes a typed value onto the stack
func (m *Machine) pushValue(v catalog.Value) {
	switch v.Type.Kind {
	case types.KindInt:
		m.pushInt(v.Int)
	case types.KindFloat:
		m.pushFloat(v.Float)
	case types.KindString:
		m.push(Cell{Kind: types.KindString, Str: v.Str})
	case types.KindObject:
		m.push(Cell{Kind: types.KindObject, Int: v.Int})
	case types.KindVector:
		m.pushVec(v.Vec)
	}
}
