package code

import (
	"testing"

	"nwsc/types"
)

// Test every operator table entry names a real opcode and a sane
// result kind.
func TestOperatorTablesWellFormed(t *testing.T) {
	for _, sym := range Operators() {
		table, ok := OperatorFor(sym)
		if !ok {
			t.Fatalf("Operators() lists %q but OperatorFor does not find it", sym)
		}
		if len(table.Binary) == 0 && len(table.Unary) == 0 {
			t.Errorf("Operator %q has an empty table", sym)
		}
		for kinds, entry := range table.Binary {
			if _, named := opNames[entry.Op]; !named {
				t.Errorf("%q on (%s, %s) maps to unnamed opcode %d", sym, kinds[0], kinds[1], int(entry.Op))
			}
			if entry.Result == types.KindVoid {
				t.Errorf("%q on (%s, %s) yields void", sym, kinds[0], kinds[1])
			}
		}
		for kind, entry := range table.Unary {
			if _, named := opNames[entry.Op]; !named {
				t.Errorf("unary %q on %s maps to unnamed opcode %d", sym, kind, int(entry.Op))
			}
		}
	}
}

// Test comparisons always yield int regardless of operand kinds
func TestComparisonResultsAreInt(t *testing.T) {
	for _, sym := range []string{"==", "!=", "<", ">", "<=", ">="} {
		table, ok := OperatorFor(sym)
		if !ok {
			t.Fatalf("No table for %q", sym)
		}
		for kinds, entry := range table.Binary {
			if entry.Result != types.KindInt {
				t.Errorf("%q on (%s, %s) yields %s, want int", sym, kinds[0], kinds[1], entry.Result)
			}
		}
	}
}

// Test the arithmetic mixing rules for + - * /
func TestArithmeticMixing(t *testing.T) {
	tests := []struct {
		sym    string
		lhs    types.Kind
		rhs    types.Kind
		result types.Kind
		op     Op
	}{
		{"+", types.KindInt, types.KindInt, types.KindInt, OpAddII},
		{"+", types.KindInt, types.KindFloat, types.KindFloat, OpAddIF},
		{"+", types.KindFloat, types.KindInt, types.KindFloat, OpAddFI},
		{"+", types.KindString, types.KindString, types.KindString, OpAddSS},
		{"+", types.KindVector, types.KindVector, types.KindVector, OpAddVV},
		{"-", types.KindVector, types.KindVector, types.KindVector, OpSubVV},
		{"*", types.KindVector, types.KindFloat, types.KindVector, OpMulVF},
		{"*", types.KindFloat, types.KindVector, types.KindVector, OpMulFV},
		{"/", types.KindVector, types.KindFloat, types.KindVector, OpDivVF},
		{"%", types.KindInt, types.KindInt, types.KindInt, OpModII},
	}

	for _, tt := range tests {
		t.Run(tt.sym+"/"+tt.lhs.String()+"/"+tt.rhs.String(), func(t *testing.T) {
			table, ok := OperatorFor(tt.sym)
			if !ok {
				t.Fatalf("No table for %q", tt.sym)
			}
			entry, ok := table.LookupBinary(tt.lhs, tt.rhs)
			if !ok {
				t.Fatalf("No entry for %s on (%s, %s)", tt.sym, tt.lhs, tt.rhs)
			}
			if entry.Result != tt.result {
				t.Errorf("Expected result %s, got %s", tt.result, entry.Result)
			}
			if entry.Op != tt.op {
				t.Errorf("Expected op %s, got %s", tt.op, entry.Op)
			}
		})
	}
}

// Test unsupported combinations are absent, not mapped arbitrarily
func TestRejectedCombinations(t *testing.T) {
	tests := []struct {
		sym string
		lhs types.Kind
		rhs types.Kind
	}{
		{"-", types.KindString, types.KindString},
		{"%", types.KindFloat, types.KindInt},
		{"+", types.KindVector, types.KindFloat},
		{"/", types.KindFloat, types.KindVector},
		{"<", types.KindString, types.KindString},
		{"&", types.KindFloat, types.KindFloat},
	}
	for _, tt := range tests {
		table, ok := OperatorFor(tt.sym)
		if !ok {
			t.Fatalf("No table for %q", tt.sym)
		}
		if _, found := table.LookupBinary(tt.lhs, tt.rhs); found {
			t.Errorf("%s on (%s, %s) should have no entry", tt.sym, tt.lhs, tt.rhs)
		}
	}
}

// Test compound assignment symbols resolve to their base operator
func TestCompoundOperatorMapping(t *testing.T) {
	pairs := map[string]string{
		"+=": "+", "-=": "-", "*=": "*", "/=": "/",
	}
	for compound, base := range pairs {
		ct, ok := OperatorFor(compound)
		if !ok {
			t.Errorf("No table for %q", compound)
			continue
		}
		bt, _ := OperatorFor(base)
		if ct != bt {
			t.Errorf("%q should share %q's table", compound, base)
		}
	}
}
