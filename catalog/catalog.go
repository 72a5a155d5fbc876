// Package catalog holds the compile-time environment shared by every
// compilation: the named-constant table and the external-routine
// signature table. Catalogs are read-only once built, so one catalog
// can back any number of concurrent compilations.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"nwsc/types"
)

// Value is a constant literal: an int, float, string, object
// reference or vector, tagged by its static type.
type Value struct {
	Type  types.DataType
	Int   int
	Float float64
	Str   string
	Vec   [3]float64
}

// IntValue builds an int constant value
func IntValue(v int) Value { return Value{Type: types.Int, Int: v} }

// FloatValue builds a float constant value
func FloatValue(v float64) Value { return Value{Type: types.Float, Float: v} }

// StringValue builds a string constant value
func StringValue(v string) Value { return Value{Type: types.String, Str: v} }

// ObjectValue builds an object-reference constant value
func ObjectValue(id int) Value { return Value{Type: types.Object, Int: id} }

// VectorValue builds a vector constant value
func VectorValue(x, y, z float64) Value {
	return Value{Type: types.Vector, Vec: [3]float64{x, y, z}}
}

// Constant is one named constant available to every script
type Constant struct {
	Name  string
	Value Value
}

// Param is one declared parameter of an external routine. Default is
// the raw default spec: a literal, a constant name, or a "[x, y, z]"
// vector form; it resolves lazily at each call site that omits the
// argument.
type Param struct {
	Name       string
	Type       types.DataType
	Default    string
	HasDefault bool
}

// Routine is one external routine signature. IDs follow registration
// order and identify the routine in the emitted ACTION instruction.
type Routine struct {
	ID      int
	Name    string
	Returns types.DataType
	Params  []Param
}

// Catalog is the full compile-time environment
type Catalog struct {
	constants map[string]*Constant
	routines  map[string]*Routine
	order     []*Routine
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{
		constants: make(map[string]*Constant),
		routines:  make(map[string]*Routine),
	}
}

// AddConstant registers a named constant. Redefinition is an error.
func (c *Catalog) AddConstant(name string, v Value) error {
	if _, exists := c.constants[name]; exists {
		return fmt.Errorf("constant %s is already defined", name)
	}
	c.constants[name] = &Constant{Name: name, Value: v}
	return nil
}

// AddRoutine registers an external routine, assigning the next ID
func (c *Catalog) AddRoutine(name string, returns types.DataType, params ...Param) (*Routine, error) {
	if _, exists := c.routines[name]; exists {
		return nil, fmt.Errorf("external routine %s is already declared", name)
	}
	r := &Routine{ID: len(c.order), Name: name, Returns: returns, Params: params}
	c.routines[name] = r
	c.order = append(c.order, r)
	return r, nil
}

// Constant looks up a named constant
func (c *Catalog) Constant(name string) (*Constant, bool) {
	k, ok := c.constants[name]
	return k, ok
}

// Routine looks up an external routine by name
func (c *Catalog) Routine(name string) (*Routine, bool) {
	r, ok := c.routines[name]
	return r, ok
}

// RoutineByID looks up an external routine by its assigned ID
func (c *Catalog) RoutineByID(id int) (*Routine, bool) {
	if id < 0 || id >= len(c.order) {
		return nil, false
	}
	return c.order[id], true
}

// Routines returns all routines in registration order
func (c *Catalog) Routines() []*Routine {
	return c.order
}

// ConstantNames returns all constant names (unordered)
func (c *Catalog) ConstantNames() []string {
	names := make([]string, 0, len(c.constants))
	for n := range c.constants {
		names = append(names, n)
	}
	return names
}

// ResolveDefault turns a parameter's default spec into a Value.
// A spec naming a catalog constant wins over a literal reading of the
// same text; vector reconstruction is tried before scalar literals.
func (c *Catalog) ResolveDefault(p Param) (Value, error) {
	if !p.HasDefault {
		return Value{}, fmt.Errorf("parameter %s has no default", p.Name)
	}
	spec := strings.TrimSpace(p.Default)

	if k, ok := c.constants[spec]; ok {
		if !k.Value.Type.Equal(p.Type) {
			return Value{}, fmt.Errorf("default %s for parameter %s has type %s, want %s",
				spec, p.Name, k.Value.Type, p.Type)
		}
		return k.Value, nil
	}

	if strings.HasPrefix(spec, "[") && strings.HasSuffix(spec, "]") {
		if p.Type.Kind != types.KindVector {
			return Value{}, fmt.Errorf("vector default for non-vector parameter %s", p.Name)
		}
		parts := strings.Split(spec[1:len(spec)-1], ",")
		if len(parts) != 3 {
			return Value{}, fmt.Errorf("malformed vector default %q for parameter %s", spec, p.Name)
		}
		var vec [3]float64
		for i, part := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return Value{}, fmt.Errorf("malformed vector default %q for parameter %s", spec, p.Name)
			}
			vec[i] = f
		}
		return Value{Type: types.Vector, Vec: vec}, nil
	}

	switch p.Type.Kind {
	case types.KindInt:
		v, err := strconv.ParseInt(spec, 0, 64)
		if err != nil {
			return Value{}, fmt.Errorf("default %q for int parameter %s is not an integer", spec, p.Name)
		}
		return IntValue(int(v)), nil
	case types.KindFloat:
		v, err := strconv.ParseFloat(strings.TrimSuffix(spec, "f"), 64)
		if err != nil {
			return Value{}, fmt.Errorf("default %q for float parameter %s is not a float", spec, p.Name)
		}
		return FloatValue(v), nil
	case types.KindString:
		return StringValue(strings.Trim(spec, `"`)), nil
	case types.KindObject:
		// Object defaults must name a constant; bare numbers are
		// accepted as raw object ids.
		v, err := strconv.ParseInt(spec, 0, 64)
		if err != nil {
			return Value{}, fmt.Errorf("default %q for object parameter %s names no known constant", spec, p.Name)
		}
		return ObjectValue(int(v)), nil
	default:
		return Value{}, fmt.Errorf("parameter %s of type %s cannot have default %q", p.Name, p.Type, spec)
	}
}
