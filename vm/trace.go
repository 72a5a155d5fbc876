package vm

import (
	"fmt"
	"strings"

	"nwsc/catalog"
	"nwsc/code"
)

// Step is one executed instruction with the stack as it looked just
// before execution.
type Step struct {
	PC    int
	Instr string
	Stack []Cell
}

// Call is one external routine invocation
type Call struct {
	Name   string
	Args   []catalog.Value
	Result catalog.Value
}

// Trace records a machine's execution for inspection. Attach one to
// Machine.Trace before running; recording is off otherwise.
type Trace struct {
	Steps []Step
	Calls []Call
}

func (t *Trace) step(pc int, ins *code.Instruction, stack []Cell) {
	t.Steps = append(t.Steps, Step{
		PC:    pc,
		Instr: ins.String(),
		Stack: append([]Cell(nil), stack...),
	})
}

func (t *Trace) call(name string, args []catalog.Value, result catalog.Value) {
	t.Calls = append(t.Calls, Call{Name: name, Args: args, Result: result})
}

// String renders the step log, one instruction and stack per line
func (t *Trace) String() string {
	var b strings.Builder
	for _, s := range t.Steps {
		fmt.Fprintf(&b, "%4d  %-28s", s.PC, s.Instr)
		for _, c := range s.Stack {
			b.WriteByte(' ')
			b.WriteString(c.String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
