package types

import "fmt"

// StructMember is one field of a struct in declaration order
type StructMember struct {
	Name string
	Type DataType
}

// Struct is an aggregate type. Member offsets are determined entirely
// by declaration order: member k starts at the summed size of members
// 0..k-1.
type Struct struct {
	Name    string
	Members []StructMember
}

// Size returns the total byte size of the struct
func (s *Struct) Size(structs *Table) (int, error) {
	if len(s.Members) == 0 {
		return 0, fmt.Errorf("struct %s has no members", s.Name)
	}
	total := 0
	for _, m := range s.Members {
		sz, err := m.Type.Size(structs)
		if err != nil {
			return 0, err
		}
		total += sz
	}
	return total, nil
}

// Member returns the named member, its byte offset inside the struct,
// and whether it exists.
func (s *Struct) Member(name string, structs *Table) (StructMember, int, bool, error) {
	offset := 0
	for _, m := range s.Members {
		if m.Name == name {
			return m, offset, true, nil
		}
		sz, err := m.Type.Size(structs)
		if err != nil {
			return StructMember{}, 0, false, err
		}
		offset += sz
	}
	return StructMember{}, 0, false, nil
}

// MemberNames returns the member names in declaration order
func (s *Struct) MemberNames() []string {
	names := make([]string, 0, len(s.Members))
	for _, m := range s.Members {
		names = append(names, m.Name)
	}
	return names
}

// Table maps struct names to their definitions for one compile unit
type Table struct {
	structs map[string]*Struct
	order   []string
}

// NewTable creates an empty struct table
func NewTable() *Table {
	return &Table{structs: make(map[string]*Struct)}
}

// Define registers a struct. Redefinition is an error.
func (t *Table) Define(s *Struct) error {
	if len(s.Members) == 0 {
		return fmt.Errorf("struct %s has no members", s.Name)
	}
	if _, exists := t.structs[s.Name]; exists {
		return fmt.Errorf("struct %s is already defined", s.Name)
	}
	t.structs[s.Name] = s
	t.order = append(t.order, s.Name)
	return nil
}

// Lookup returns the named struct definition
func (t *Table) Lookup(name string) (*Struct, bool) {
	s, ok := t.structs[name]
	return s, ok
}

// Names returns the defined struct names in definition order
func (t *Table) Names() []string {
	return t.order
}
