package catalog

import (
	"testing"

	"nwsc/types"
)

const sampleCatalog = `
constants:
  - name: TRUE
    type: int
    value: "1"
  - name: FALSE
    type: int
    value: "0"
  - name: PI
    type: float
    value: "3.14159"
  - name: OBJECT_SELF
    type: object
    value: "0"
  - name: GREETING
    type: string
    value: "hello"

externals:
  - name: PrintString
    params:
      - name: s
        type: string
  - name: Random
    returns: int
    params:
      - name: max
        type: int
  - name: CreateObject
    returns: object
    params:
      - name: tag
        type: string
      - name: pos
        type: vector
        default: "[0, 0, 0]"
      - name: owner
        type: object
        default: "OBJECT_SELF"
  - name: DelayCommand
    params:
      - name: seconds
        type: float
      - name: body
        type: action
`

// Test parsing a catalog out of YAML
func TestParseCatalog(t *testing.T) {
	cat, err := Parse([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	k, ok := cat.Constant("TRUE")
	if !ok || k.Value.Int != 1 || !k.Value.Type.Equal(types.Int) {
		t.Errorf("TRUE: expected int 1, got %#v", k)
	}
	if k, ok = cat.Constant("PI"); !ok || k.Value.Float != 3.14159 {
		t.Errorf("PI: expected 3.14159, got %#v", k)
	}
	if k, ok = cat.Constant("GREETING"); !ok || k.Value.Str != "hello" {
		t.Errorf("GREETING: expected hello, got %#v", k)
	}

	rt, ok := cat.Routine("Random")
	if !ok {
		t.Fatal("Random not found")
	}
	if !rt.Returns.Equal(types.Int) || len(rt.Params) != 1 {
		t.Errorf("Random: unexpected signature %#v", rt)
	}

	if rt, ok = cat.Routine("PrintString"); !ok || rt.Returns.Kind != types.KindVoid {
		t.Errorf("PrintString should return void")
	}

	if rt, ok = cat.Routine("DelayCommand"); !ok || rt.Params[1].Type.Kind != types.KindAction {
		t.Errorf("DelayCommand should take an action parameter")
	}
}

// Test routine IDs follow registration order
func TestRoutineIDs(t *testing.T) {
	cat, err := Parse([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	names := []string{"PrintString", "Random", "CreateObject", "DelayCommand"}
	for i, name := range names {
		rt, ok := cat.Routine(name)
		if !ok {
			t.Fatalf("%s not found", name)
		}
		if rt.ID != i {
			t.Errorf("%s: expected ID %d, got %d", name, i, rt.ID)
		}
		byID, ok := cat.RoutineByID(i)
		if !ok || byID.Name != name {
			t.Errorf("RoutineByID(%d): expected %s, got %#v", i, name, byID)
		}
	}
}

// Test default resolution: constant names, vector form, plain literals
func TestResolveDefault(t *testing.T) {
	cat, err := Parse([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rt, _ := cat.Routine("CreateObject")

	v, err := cat.ResolveDefault(rt.Params[1])
	if err != nil {
		t.Fatalf("ResolveDefault(pos): %v", err)
	}
	if v.Type.Kind != types.KindVector || v.Vec != [3]float64{0, 0, 0} {
		t.Errorf("pos default: expected zero vector, got %#v", v)
	}

	v, err = cat.ResolveDefault(rt.Params[2])
	if err != nil {
		t.Fatalf("ResolveDefault(owner): %v", err)
	}
	if v.Type.Kind != types.KindObject || v.Int != 0 {
		t.Errorf("owner default: expected OBJECT_SELF, got %#v", v)
	}

	if _, err := cat.ResolveDefault(Param{Name: "x", Type: types.Int}); err == nil {
		t.Error("Expected error for a parameter without a default")
	}
	if _, err := cat.ResolveDefault(Param{Name: "x", Type: types.Int, Default: "nope", HasDefault: true}); err == nil {
		t.Error("Expected error for a malformed default")
	}
}

// Test duplicate names are rejected
func TestDuplicateRegistration(t *testing.T) {
	cat := New()
	if err := cat.AddConstant("K", IntValue(1)); err != nil {
		t.Fatalf("AddConstant: %v", err)
	}
	if err := cat.AddConstant("K", IntValue(2)); err == nil {
		t.Error("Expected error for duplicate constant")
	}
	if _, err := cat.AddRoutine("R", types.Void); err != nil {
		t.Fatalf("AddRoutine: %v", err)
	}
	if _, err := cat.AddRoutine("R", types.Void); err == nil {
		t.Error("Expected error for duplicate routine")
	}
}

// Test unknown type names fail the parse
func TestParseBadType(t *testing.T) {
	bad := `
constants:
  - name: X
    type: quaternion
    value: "1"
`
	if _, err := Parse([]byte(bad)); err == nil {
		t.Error("Expected error for unknown type name")
	}
}
