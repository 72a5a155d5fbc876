package vm

import (
	"nwsc/code"
	"nwsc/types"
)

func (m *Machine) popFloat() (float64, error) {
	c, err := m.pop()
	if err != nil {
		return 0, err
	}
	if c.Kind != types.KindFloat {
		return 0, m.fault("expected float on stack, found %s", c)
	}
	return c.Float, nil
}

func (m *Machine) popStr() (string, error) {
	c, err := m.pop()
	if err != nil {
		return "", err
	}
	if c.Kind != types.KindString {
		return "", m.fault("expected string on stack, found %s", c)
	}
	return c.Str, nil
}

func (m *Machine) popObject() (int, error) {
	c, err := m.pop()
	if err != nil {
		return 0, err
	}
	if c.Kind != types.KindObject {
		return 0, m.fault("expected object on stack, found %s", c)
	}
	return c.Int, nil
}

// popVec pops three float cells. The x component is pushed first, so
// it comes off last.
func (m *Machine) popVec() ([3]float64, error) {
	var v [3]float64
	for i := 2; i >= 0; i-- {
		f, err := m.popFloat()
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

func (m *Machine) pushVec(v [3]float64) {
	for _, f := range v {
		m.push(Cell{Kind: types.KindFloat, Float: f})
	}
}

func (m *Machine) pushInt(v int)       { m.push(Cell{Kind: types.KindInt, Int: v}) }
func (m *Machine) pushFloat(v float64) { m.push(Cell{Kind: types.KindFloat, Float: v}) }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// execALU handles the arithmetic, comparison and logical opcode
// families. It reports whether the opcode belonged to it.
func (m *Machine) execALU(op code.Op) (bool, error) {
	// Binary operands pop right first.
	switch op {
	case code.OpAddII, code.OpSubII, code.OpMulII, code.OpDivII, code.OpModII,
		code.OpLogAndII, code.OpLogOrII, code.OpAndII, code.OpOrII, code.OpXorII,
		code.OpShlII, code.OpShrII,
		code.OpEqII, code.OpNeII, code.OpLtII, code.OpGtII, code.OpLeII, code.OpGeII:
		r, err := m.popInt()
		if err != nil {
			return true, err
		}
		l, err := m.popInt()
		if err != nil {
			return true, err
		}
		return true, m.intBinary(op, l, r)

	case code.OpAddFF, code.OpSubFF, code.OpMulFF, code.OpDivFF,
		code.OpEqFF, code.OpNeFF, code.OpLtFF, code.OpGtFF, code.OpLeFF, code.OpGeFF:
		r, err := m.popFloat()
		if err != nil {
			return true, err
		}
		l, err := m.popFloat()
		if err != nil {
			return true, err
		}
		return true, m.floatBinary(op, l, r)

	case code.OpAddIF, code.OpSubIF, code.OpMulIF, code.OpDivIF:
		r, err := m.popFloat()
		if err != nil {
			return true, err
		}
		l, err := m.popInt()
		if err != nil {
			return true, err
		}
		return true, m.floatBinary(mixedToFF(op), float64(l), r)

	case code.OpAddFI, code.OpSubFI, code.OpMulFI, code.OpDivFI:
		r, err := m.popInt()
		if err != nil {
			return true, err
		}
		l, err := m.popFloat()
		if err != nil {
			return true, err
		}
		return true, m.floatBinary(mixedToFF(op), l, float64(r))

	case code.OpAddSS:
		r, err := m.popStr()
		if err != nil {
			return true, err
		}
		l, err := m.popStr()
		if err != nil {
			return true, err
		}
		m.push(Cell{Kind: types.KindString, Str: l + r})
		return true, nil

	case code.OpEqSS, code.OpNeSS:
		r, err := m.popStr()
		if err != nil {
			return true, err
		}
		l, err := m.popStr()
		if err != nil {
			return true, err
		}
		m.pushInt(boolInt((l == r) == (op == code.OpEqSS)))
		return true, nil

	case code.OpEqOO, code.OpNeOO:
		r, err := m.popObject()
		if err != nil {
			return true, err
		}
		l, err := m.popObject()
		if err != nil {
			return true, err
		}
		m.pushInt(boolInt((l == r) == (op == code.OpEqOO)))
		return true, nil

	case code.OpAddVV, code.OpSubVV:
		r, err := m.popVec()
		if err != nil {
			return true, err
		}
		l, err := m.popVec()
		if err != nil {
			return true, err
		}
		var out [3]float64
		for i := range out {
			if op == code.OpAddVV {
				out[i] = l[i] + r[i]
			} else {
				out[i] = l[i] - r[i]
			}
		}
		m.pushVec(out)
		return true, nil

	case code.OpMulVF, code.OpDivVF:
		f, err := m.popFloat()
		if err != nil {
			return true, err
		}
		v, err := m.popVec()
		if err != nil {
			return true, err
		}
		if op == code.OpDivVF {
			if f == 0 {
				return true, m.fault("vector division by zero")
			}
			f = 1 / f
		}
		for i := range v {
			v[i] *= f
		}
		m.pushVec(v)
		return true, nil

	case code.OpMulFV:
		v, err := m.popVec()
		if err != nil {
			return true, err
		}
		f, err := m.popFloat()
		if err != nil {
			return true, err
		}
		for i := range v {
			v[i] *= f
		}
		m.pushVec(v)
		return true, nil

	case code.OpNegI, code.OpCompI, code.OpNotI:
		v, err := m.popInt()
		if err != nil {
			return true, err
		}
		switch op {
		case code.OpNegI:
			m.pushInt(-v)
		case code.OpCompI:
			m.pushInt(^v)
		case code.OpNotI:
			m.pushInt(boolInt(v == 0))
		}
		return true, nil

	case code.OpNegF:
		v, err := m.popFloat()
		if err != nil {
			return true, err
		}
		m.pushFloat(-v)
		return true, nil
	}
	return false, nil
}

func (m *Machine) intBinary(op code.Op, l, r int) error {
	switch op {
	case code.OpAddII:
		m.pushInt(l + r)
	case code.OpSubII:
		m.pushInt(l - r)
	case code.OpMulII:
		m.pushInt(l * r)
	case code.OpDivII:
		if r == 0 {
			return m.fault("integer division by zero")
		}
		m.pushInt(l / r)
	case code.OpModII:
		if r == 0 {
			return m.fault("integer modulo by zero")
		}
		m.pushInt(l % r)
	case code.OpLogAndII:
		m.pushInt(boolInt(l != 0 && r != 0))
	case code.OpLogOrII:
		m.pushInt(boolInt(l != 0 || r != 0))
	case code.OpAndII:
		m.pushInt(l & r)
	case code.OpOrII:
		m.pushInt(l | r)
	case code.OpXorII:
		m.pushInt(l ^ r)
	case code.OpShlII:
		m.pushInt(l << uint(r))
	case code.OpShrII:
		m.pushInt(l >> uint(r))
	case code.OpEqII:
		m.pushInt(boolInt(l == r))
	case code.OpNeII:
		m.pushInt(boolInt(l != r))
	case code.OpLtII:
		m.pushInt(boolInt(l < r))
	case code.OpGtII:
		m.pushInt(boolInt(l > r))
	case code.OpLeII:
		m.pushInt(boolInt(l <= r))
	case code.OpGeII:
		m.pushInt(boolInt(l >= r))
	}
	return nil
}

func (m *Machine) floatBinary(op code.Op, l, r float64) error {
	switch op {
	case code.OpAddFF:
		m.pushFloat(l + r)
	case code.OpSubFF:
		m.pushFloat(l - r)
	case code.OpMulFF:
		m.pushFloat(l * r)
	case code.OpDivFF:
		if r == 0 {
			return m.fault("float division by zero")
		}
		m.pushFloat(l / r)
	case code.OpEqFF:
		m.pushInt(boolInt(l == r))
	case code.OpNeFF:
		m.pushInt(boolInt(l != r))
	case code.OpLtFF:
		m.pushInt(boolInt(l < r))
	case code.OpGtFF:
		m.pushInt(boolInt(l > r))
	case code.OpLeFF:
		m.pushInt(boolInt(l <= r))
	case code.OpGeFF:
		m.pushInt(boolInt(l >= r))
	}
	return nil
}

// mixedToFF maps an int/float mixed form to its float/float base op
func mixedToFF(op code.Op) code.Op {
	switch op {
	case code.OpAddIF, code.OpAddFI:
		return code.OpAddFF
	case code.OpSubIF, code.OpSubFI:
		return code.OpSubFF
	case code.OpMulIF, code.OpMulFI:
		return code.OpMulFF
	case code.OpDivIF, code.OpDivFI:
		return code.OpDivFF
	}
	return op
}
