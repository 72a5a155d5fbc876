package vm

import (
	"fmt"

	"nwsc/catalog"
	"nwsc/code"
	"nwsc/types"
)

// Cell is one 4-byte stack slot. A vector occupies three float cells;
// strings keep their value in the cell rather than a real address.
type Cell struct {
	Kind  types.Kind
	Int   int
	Float float64
	Str   string
}

func (c Cell) String() string {
	switch c.Kind {
	case types.KindInt:
		return fmt.Sprintf("i:%d", c.Int)
	case types.KindFloat:
		return fmt.Sprintf("f:%g", c.Float)
	case types.KindString:
		return fmt.Sprintf("s:%q", c.Str)
	case types.KindObject:
		return fmt.Sprintf("o:%d", c.Int)
	}
	return "?"
}

// RuntimeError is a fault at a specific instruction
type RuntimeError struct {
	PC      int
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at %d: %s", e.PC, e.Message)
}

// Machine executes a linked program. The data stack holds typed
// cells; return addresses and saved base pointers live on their own
// stacks so program code cannot clobber them.
type Machine struct {
	prog    *code.Program
	catalog *catalog.Catalog
	actions *Registry

	stack   []Cell
	bp      int // cell index; -1 until SAVEBP
	bpStack []int
	ra      []int
	pc      int

	// pending holds the frame captured by the latest STORESTATE until
	// an external call claims it for an action-typed parameter.
	pending *ActionState

	MaxSteps int    // 0 means unlimited
	Trace    *Trace // nil disables recording
}

// New creates a machine for one program. The catalog provides
// external routine signatures; the registry provides their handlers.
func New(prog *code.Program, cat *catalog.Catalog, actions *Registry) *Machine {
	if cat == nil {
		cat = catalog.New()
	}
	if actions == nil {
		actions = NewRegistry()
	}
	return &Machine{prog: prog, catalog: cat, actions: actions, bp: -1}
}

// Stack returns the live cell stack, bottom first
func (m *Machine) Stack() []Cell {
	return m.stack
}

// Result returns the top of the stack after a run, which is the entry
// point's value for a conditional script.
func (m *Machine) Result() (Cell, bool) {
	if len(m.stack) == 0 {
		return Cell{}, false
	}
	return m.stack[len(m.stack)-1], true
}

// GlobalCell reads a cell at a base-pointer-relative byte offset
func (m *Machine) GlobalCell(offset int) (Cell, bool) {
	if m.bp < 0 {
		return Cell{}, false
	}
	i := m.bp + offset/types.SlotSize
	if i < 0 || i >= len(m.stack) {
		return Cell{}, false
	}
	return m.stack[i], true
}

// Run executes from instruction 0 until the program halts
func (m *Machine) Run() error {
	m.pc = 0
	return m.run()
}

func (m *Machine) run() error {
	steps := 0
	for m.pc >= 0 && m.pc < len(m.prog.Instrs) {
		if m.MaxSteps > 0 {
			steps++
			if steps > m.MaxSteps {
				return &RuntimeError{PC: m.pc, Message: fmt.Sprintf("exceeded %d steps", m.MaxSteps)}
			}
		}
		ins := m.prog.Instrs[m.pc]
		if m.Trace != nil {
			m.Trace.step(m.pc, ins, m.stack)
		}
		next, err := m.exec(ins)
		if err != nil {
			return err
		}
		if next == haltPC {
			return nil
		}
		m.pc = next
	}
	return nil
}

const haltPC = -2

func (m *Machine) fault(format string, args ...interface{}) error {
	return &RuntimeError{PC: m.pc, Message: fmt.Sprintf(format, args...)}
}

func (m *Machine) push(c Cell) {
	m.stack = append(m.stack, c)
}

func (m *Machine) pop() (Cell, error) {
	if len(m.stack) == 0 {
		return Cell{}, m.fault("stack underflow")
	}
	c := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return c, nil
}

func (m *Machine) popInt() (int, error) {
	c, err := m.pop()
	if err != nil {
		return 0, err
	}
	if c.Kind != types.KindInt {
		return 0, m.fault("expected int on stack, found %s", c)
	}
	return c.Int, nil
}

// cellIndex converts a byte offset from the stack top into a cell
// index, bounds checked.
func (m *Machine) cellIndex(offset int) (int, error) {
	if offset%types.SlotSize != 0 {
		return 0, m.fault("unaligned stack offset %d", offset)
	}
	i := len(m.stack) + offset/types.SlotSize
	if i < 0 || i > len(m.stack) {
		return 0, m.fault("stack offset %d out of range", offset)
	}
	return i, nil
}

// bpIndex converts a byte offset from the base pointer into a cell index
func (m *Machine) bpIndex(offset int) (int, error) {
	if m.bp < 0 {
		return 0, m.fault("base pointer not established")
	}
	if offset%types.SlotSize != 0 {
		return 0, m.fault("unaligned frame offset %d", offset)
	}
	i := m.bp + offset/types.SlotSize
	if i < 0 || i >= len(m.stack) {
		return 0, m.fault("frame offset %d out of range", offset)
	}
	return i, nil
}

// exec runs one instruction and returns the next program counter.
// Opcodes outside the known set are skipped rather than faulted, so a
// newer toolchain's output still runs minus the parts this machine
// does not understand.
func (m *Machine) exec(ins *code.Instruction) (int, error) {
	switch ins.Op {
	case code.OpNop:
		return m.pc + 1, nil

	case code.OpConstI:
		m.push(Cell{Kind: types.KindInt, Int: ins.Int})
	case code.OpConstF:
		m.push(Cell{Kind: types.KindFloat, Float: ins.Float})
	case code.OpConstS:
		m.push(Cell{Kind: types.KindString, Str: ins.Str})
	case code.OpConstO:
		m.push(Cell{Kind: types.KindObject, Int: ins.Int})

	case code.OpReserveI:
		m.push(Cell{Kind: types.KindInt})
	case code.OpReserveF:
		m.push(Cell{Kind: types.KindFloat})
	case code.OpReserveS:
		m.push(Cell{Kind: types.KindString})
	case code.OpReserveO:
		m.push(Cell{Kind: types.KindObject, Int: invalidObject})

	case code.OpCopyTopSP:
		src, err := m.cellIndex(ins.Offset)
		if err != nil {
			return 0, err
		}
		n := ins.Size / types.SlotSize
		if src+n > len(m.stack) {
			return 0, m.fault("copy source runs past the stack top")
		}
		for i := 0; i < n; i++ {
			m.push(m.stack[src+i])
		}

	case code.OpCopyDownSP:
		dst, err := m.cellIndex(ins.Offset)
		if err != nil {
			return 0, err
		}
		n := ins.Size / types.SlotSize
		if n > len(m.stack) || dst+n > len(m.stack) {
			return 0, m.fault("copy destination out of range")
		}
		copy(m.stack[dst:dst+n], m.stack[len(m.stack)-n:])

	case code.OpCopyTopBP:
		src, err := m.bpIndex(ins.Offset)
		if err != nil {
			return 0, err
		}
		n := ins.Size / types.SlotSize
		if src+n > len(m.stack) {
			return 0, m.fault("copy source runs past the stack top")
		}
		for i := 0; i < n; i++ {
			m.push(m.stack[src+i])
		}

	case code.OpCopyDownBP:
		dst, err := m.bpIndex(ins.Offset)
		if err != nil {
			return 0, err
		}
		n := ins.Size / types.SlotSize
		if n > len(m.stack) || dst+n > len(m.stack) {
			return 0, m.fault("copy destination out of range")
		}
		copy(m.stack[dst:dst+n], m.stack[len(m.stack)-n:])

	case code.OpMoveSP:
		i, err := m.cellIndex(ins.Offset)
		if err != nil {
			return 0, err
		}
		m.stack = m.stack[:i]

	case code.OpJmp:
		return ins.TargetIndex, nil
	case code.OpJz:
		v, err := m.popInt()
		if err != nil {
			return 0, err
		}
		if v == 0 {
			return ins.TargetIndex, nil
		}
	case code.OpJnz:
		v, err := m.popInt()
		if err != nil {
			return 0, err
		}
		if v != 0 {
			return ins.TargetIndex, nil
		}
	case code.OpJsr:
		m.ra = append(m.ra, m.pc+1)
		return ins.TargetIndex, nil
	case code.OpRet:
		if len(m.ra) == 0 {
			return haltPC, nil
		}
		next := m.ra[len(m.ra)-1]
		m.ra = m.ra[:len(m.ra)-1]
		return next, nil

	case code.OpSaveBP:
		m.bpStack = append(m.bpStack, m.bp)
		m.bp = len(m.stack)
	case code.OpRestoreBP:
		if len(m.bpStack) == 0 {
			return 0, m.fault("no saved base pointer")
		}
		m.bp = m.bpStack[len(m.bpStack)-1]
		m.bpStack = m.bpStack[:len(m.bpStack)-1]

	case code.OpIncSP, code.OpDecSP:
		i, err := m.cellIndex(ins.Offset)
		if err != nil {
			return 0, err
		}
		if i >= len(m.stack) || m.stack[i].Kind != types.KindInt {
			return 0, m.fault("mutate target at %d is not an int", ins.Offset)
		}
		if ins.Op == code.OpIncSP {
			m.stack[i].Int++
		} else {
			m.stack[i].Int--
		}
	case code.OpIncBP, code.OpDecBP:
		i, err := m.bpIndex(ins.Offset)
		if err != nil {
			return 0, err
		}
		if m.stack[i].Kind != types.KindInt {
			return 0, m.fault("mutate target at %d is not an int", ins.Offset)
		}
		if ins.Op == code.OpIncBP {
			m.stack[i].Int++
		} else {
			m.stack[i].Int--
		}

	case code.OpAction:
		if err := m.execAction(ins); err != nil {
			return 0, err
		}

	case code.OpStoreState:
		m.pending = m.captureState()

	default:
		// Unrecognized opcodes are skipped rather than faulting.
		if _, err := m.execALU(ins.Op); err != nil {
			return 0, err
		}
	}
	return m.pc + 1, nil
}

const invalidObject = -1
