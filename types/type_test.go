package types

import "testing"

// Test scalar and builtin type sizes
func TestDataTypeSizes(t *testing.T) {
	structs := NewTable()
	tests := []struct {
		typ  DataType
		size int
	}{
		{Int, 4},
		{Float, 4},
		{String, 4},
		{Object, 4},
		{Vector, 12},
		{Void, 0},
		{Action, 0},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			size, err := tt.typ.Size(structs)
			if err != nil {
				t.Fatalf("Size() error: %v", err)
			}
			if size != tt.size {
				t.Errorf("Expected size %d, got %d", tt.size, size)
			}
		})
	}
}

// Test struct sizes sum member sizes, including nesting
func TestStructSizes(t *testing.T) {
	structs := NewTable()
	inner := &Struct{
		Name: "point",
		Members: []StructMember{
			{Name: "x", Type: Float},
			{Name: "y", Type: Float},
		},
	}
	outer := &Struct{
		Name: "segment",
		Members: []StructMember{
			{Name: "a", Type: StructType("point")},
			{Name: "b", Type: StructType("point")},
			{Name: "tag", Type: Int},
		},
	}
	if err := structs.Define(inner); err != nil {
		t.Fatalf("Define(point): %v", err)
	}
	if err := structs.Define(outer); err != nil {
		t.Fatalf("Define(segment): %v", err)
	}

	size, err := StructType("segment").Size(structs)
	if err != nil {
		t.Fatalf("Size(segment): %v", err)
	}
	if size != 20 {
		t.Errorf("Expected segment size 20, got %d", size)
	}
}

// Test member lookup reports running byte offsets
func TestStructMemberOffsets(t *testing.T) {
	structs := NewTable()
	s := &Struct{
		Name: "mix",
		Members: []StructMember{
			{Name: "n", Type: Int},
			{Name: "pos", Type: Vector},
			{Name: "label", Type: String},
		},
	}
	if err := structs.Define(s); err != nil {
		t.Fatalf("Define: %v", err)
	}

	tests := []struct {
		member string
		offset int
	}{
		{"n", 0},
		{"pos", 4},
		{"label", 16},
	}
	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			m, off, found, err := s.Member(tt.member, structs)
			if err != nil {
				t.Fatalf("Member(%s): %v", tt.member, err)
			}
			if !found {
				t.Fatalf("Member(%s) not found", tt.member)
			}
			if off != tt.offset {
				t.Errorf("Expected offset %d, got %d", tt.offset, off)
			}
			if m.Name != tt.member {
				t.Errorf("Expected member %s, got %s", tt.member, m.Name)
			}
		})
	}

	if _, _, found, _ := s.Member("missing", structs); found {
		t.Error("Expected missing member to report not found")
	}
}

// Test size of an undefined struct is an error
func TestUndefinedStructSize(t *testing.T) {
	if _, err := StructType("ghost").Size(NewTable()); err == nil {
		t.Error("Expected error for undefined struct")
	}
}

// Test duplicate struct definitions are rejected
func TestDuplicateStructDefine(t *testing.T) {
	structs := NewTable()
	s := &Struct{Name: "s", Members: []StructMember{{Name: "a", Type: Int}}}
	if err := structs.Define(s); err != nil {
		t.Fatalf("first Define: %v", err)
	}
	if err := structs.Define(s); err == nil {
		t.Error("Expected error for duplicate struct")
	}
}

// Test type equality distinguishes struct names
func TestDataTypeEqual(t *testing.T) {
	if !Int.Equal(Int) {
		t.Error("int should equal int")
	}
	if Int.Equal(Float) {
		t.Error("int should not equal float")
	}
	if !StructType("a").Equal(StructType("a")) {
		t.Error("same-named structs should be equal")
	}
	if StructType("a").Equal(StructType("b")) {
		t.Error("differently named structs should not be equal")
	}
}
