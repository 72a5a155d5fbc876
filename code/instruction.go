package code

import (
	"fmt"
	"math"
	"strings"
)

// Label is a symbolic jump target handle. Labels are allocated before
// their position is known and placed later as OpNop instructions; the
// final Link pass resolves every reference to an absolute index.
type Label int

// NoLabel marks an instruction with no target or placed label
const NoLabel Label = -1

// Instruction is one bytecode operation. Operand fields are used per
// op as documented in opcode.go; unused fields stay zero. Target holds
// a symbolic label until Link fills TargetIndex.
type Instruction struct {
	Op     Op
	Int    int     // integer constant / object id / routine id
	Float  float64 // float constant
	Str    string  // string constant / routine name
	Offset int     // byte offset for copy and mutate ops; signed delta for MOVSP
	Size   int     // byte count for copy ops
	Argc   int     // pushed argument count for ACTION

	Target  Label // symbolic jump target
	LabelID Label // label this NOP places, if any

	TargetIndex int // absolute target index, filled by Link
}

// String renders one instruction for disassembly
func (ins *Instruction) String() string {
	var b strings.Builder
	b.WriteString(ins.Op.String())
	switch ins.Op {
	case OpConstI, OpConstO:
		fmt.Fprintf(&b, " %d", ins.Int)
	case OpConstF:
		fmt.Fprintf(&b, " %g", ins.Float)
	case OpConstS:
		fmt.Fprintf(&b, " %q", ins.Str)
	case OpCopyTopSP, OpCopyDownSP, OpCopyTopBP, OpCopyDownBP:
		fmt.Fprintf(&b, " %d, %d", ins.Offset, ins.Size)
	case OpMoveSP:
		fmt.Fprintf(&b, " %d", ins.Offset)
	case OpIncSP, OpDecSP, OpIncBP, OpDecBP:
		fmt.Fprintf(&b, " %d", ins.Offset)
	case OpJmp, OpJz, OpJnz, OpJsr:
		fmt.Fprintf(&b, " @%d", ins.TargetIndex)
	case OpAction:
		fmt.Fprintf(&b, " %s#%d, %d", ins.Str, ins.Int, ins.Argc)
	case OpNop:
		if ins.LabelID != NoLabel {
			fmt.Fprintf(&b, " L%d", ins.LabelID)
		}
	}
	return b.String()
}

// Emitter accumulates instructions and allocates labels. Several
// emitters may share one label allocator so side buffers (case bodies,
// spliced function definitions) cannot collide.
type Emitter struct {
	instrs []*Instruction
	labels *int // shared allocator: next unused label
}

// NewEmitter creates an emitter with a fresh label allocator. Label
// handles start at 1 so a zero-valued Instruction means "no label".
func NewEmitter() *Emitter {
	next := 1
	return &Emitter{
		instrs: make([]*Instruction, 0, 64),
		labels: &next,
	}
}

// Fork returns an empty emitter sharing this emitter's label allocator
func (e *Emitter) Fork() *Emitter {
	return &Emitter{
		instrs: make([]*Instruction, 0, 16),
		labels: e.labels,
	}
}

// Emit appends an instruction and returns it
func (e *Emitter) Emit(ins *Instruction) *Instruction {
	if ins.Target == 0 && ins.LabelID == 0 {
		// Zero-valued instructions mean "no label"; normalize so that
		// Label(0) can be a real allocated handle.
		ins.Target = NoLabel
		ins.LabelID = NoLabel
	}
	e.instrs = append(e.instrs, ins)
	return ins
}

// Op is shorthand for emitting a bare instruction
func (e *Emitter) Op(op Op) *Instruction {
	return e.Emit(&Instruction{Op: op, Target: NoLabel, LabelID: NoLabel})
}

// Jump emits a control-flow instruction aimed at a label
func (e *Emitter) Jump(op Op, target Label) *Instruction {
	return e.Emit(&Instruction{Op: op, Target: target, LabelID: NoLabel})
}

// NewLabel allocates a fresh unplaced label
func (e *Emitter) NewLabel() Label {
	l := Label(*e.labels)
	*e.labels++
	return l
}

// PlaceLabel appends the NOP that fixes a label's position
func (e *Emitter) PlaceLabel(l Label) {
	e.Emit(&Instruction{Op: OpNop, Target: NoLabel, LabelID: l})
}

// Pos returns the current buffer length, usable as a splice point
func (e *Emitter) Pos() int {
	return len(e.instrs)
}

// InsertAt splices instructions into the buffer at index idx. Used to
// place a function definition's body immediately after its
// forward-declaration stub; label resolution happens after all splices
// so positions stay consistent.
func (e *Emitter) InsertAt(idx int, instrs []*Instruction) {
	if idx < 0 || idx > len(e.instrs) {
		idx = len(e.instrs)
	}
	tail := make([]*Instruction, len(e.instrs[idx:]))
	copy(tail, e.instrs[idx:])
	e.instrs = append(e.instrs[:idx], instrs...)
	e.instrs = append(e.instrs, tail...)
}

// Append concatenates a side buffer onto this one
func (e *Emitter) Append(instrs []*Instruction) {
	e.instrs = append(e.instrs, instrs...)
}

// Instructions returns the raw emission buffer
func (e *Emitter) Instructions() []*Instruction {
	return e.instrs
}

// Program is a fully linked instruction stream
type Program struct {
	Instrs []*Instruction
}

// Link resolves every symbolic label to an absolute instruction index
// in one linear pass: first record the position of each placed label,
// then rewrite every Target into TargetIndex. A label placed twice or
// referenced but never placed is a link error.
func Link(instrs []*Instruction) (*Program, error) {
	positions := make(map[Label]int)
	for i, ins := range instrs {
		ins.TargetIndex = -1
		if ins.Op == OpNop && ins.LabelID != NoLabel {
			if _, dup := positions[ins.LabelID]; dup {
				return nil, fmt.Errorf("label L%d placed more than once", ins.LabelID)
			}
			positions[ins.LabelID] = i
		}
	}
	for i, ins := range instrs {
		if ins.Target == NoLabel {
			continue
		}
		pos, ok := positions[ins.Target]
		if !ok {
			return nil, fmt.Errorf("instruction %d (%s) references unplaced label L%d", i, ins.Op, ins.Target)
		}
		ins.TargetIndex = pos
	}
	return &Program{Instrs: instrs}, nil
}

// Disassemble renders the whole program, one instruction per line
func (p *Program) Disassemble() string {
	var b strings.Builder
	for i, ins := range p.Instrs {
		fmt.Fprintf(&b, "%4d  %s\n", i, ins.String())
	}
	return b.String()
}

// Encode serializes the program into a stable byte form, suitable for
// fingerprinting. One record per instruction; strings are
// length-prefixed.
func (p *Program) Encode() []byte {
	var b []byte
	putInt := func(v int) {
		u := uint64(int64(v))
		for i := 0; i < 8; i++ {
			b = append(b, byte(u>>(8*i)))
		}
	}
	for _, ins := range p.Instrs {
		putInt(int(ins.Op))
		putInt(ins.Int)
		putInt(int(math.Float64bits(ins.Float)))
		putInt(ins.Offset)
		putInt(ins.Size)
		putInt(ins.Argc)
		putInt(ins.TargetIndex)
		putInt(len(ins.Str))
		b = append(b, ins.Str...)
	}
	return b
}
