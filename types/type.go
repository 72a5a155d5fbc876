package types

import "fmt"

// Kind represents a builtin type category
type Kind int

const (
	KindVoid Kind = iota
	KindInt
	KindFloat
	KindString
	KindObject
	KindVector
	KindStruct
	KindAction
)

// String returns a source-level name for the kind
func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindVector:
		return "vector"
	case KindStruct:
		return "struct"
	case KindAction:
		return "action"
	default:
		return "unknown"
	}
}

// Slot sizes in bytes. Every scalar occupies one 4-byte stack slot;
// a vector is three float slots laid out x, y, z.
const (
	SlotSize   = 4
	VectorSize = 3 * SlotSize
)

// DataType describes the static type of a value. For struct types the
// struct name must resolve through a Table before the size is known.
type DataType struct {
	Kind       Kind
	StructName string
}

// Convenience constructors for the common types.
var (
	Void   = DataType{Kind: KindVoid}
	Int    = DataType{Kind: KindInt}
	Float  = DataType{Kind: KindFloat}
	String = DataType{Kind: KindString}
	Object = DataType{Kind: KindObject}
	Vector = DataType{Kind: KindVector}
	Action = DataType{Kind: KindAction}
)

// StructType returns the DataType for a named struct
func StructType(name string) DataType {
	return DataType{Kind: KindStruct, StructName: name}
}

// String returns the source-level spelling of the type
func (t DataType) String() string {
	if t.Kind == KindStruct {
		return "struct " + t.StructName
	}
	return t.Kind.String()
}

// Equal reports whether two types are the same type
func (t DataType) Equal(o DataType) bool {
	return t.Kind == o.Kind && t.StructName == o.StructName
}

// Size returns the byte size of a value of this type. Scalars are one
// slot, vectors three, void and action occupy no stack space, and
// struct sizes come from the resolved struct table.
func (t DataType) Size(structs *Table) (int, error) {
	switch t.Kind {
	case KindVoid, KindAction:
		return 0, nil
	case KindInt, KindFloat, KindString, KindObject:
		return SlotSize, nil
	case KindVector:
		return VectorSize, nil
	case KindStruct:
		if structs == nil {
			return 0, fmt.Errorf("struct %s used where no struct table is available", t.StructName)
		}
		s, ok := structs.Lookup(t.StructName)
		if !ok {
			return 0, fmt.Errorf("undefined struct %s", t.StructName)
		}
		return s.Size(structs)
	default:
		return 0, fmt.Errorf("size of unknown type kind %d", t.Kind)
	}
}
