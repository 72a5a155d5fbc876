package code

import (
	"fmt"
	"sort"

	"nwsc/types"
)

// OpEntry is one legal operand combination: the result type and the
// opcode that computes it.
type OpEntry struct {
	Result types.Kind
	Op     Op
}

// OperatorTable is the full set of legal operand-type combinations for
// one source operator. The lexer attaches the table to each operator
// token so every use site consults the same mapping.
type OperatorTable struct {
	Symbol string
	Binary map[[2]types.Kind]OpEntry
	Unary  map[types.Kind]OpEntry
}

// LookupBinary returns the entry for a (lhs, rhs) pair
func (t *OperatorTable) LookupBinary(lhs, rhs types.Kind) (OpEntry, bool) {
	e, ok := t.Binary[[2]types.Kind{lhs, rhs}]
	return e, ok
}

// LookupUnary returns the entry for a single operand type
func (t *OperatorTable) LookupUnary(operand types.Kind) (OpEntry, bool) {
	e, ok := t.Unary[operand]
	return e, ok
}

// Combinations lists the supported operand combinations, sorted, for
// error messages.
func (t *OperatorTable) Combinations() []string {
	var out []string
	for k := range t.Binary {
		out = append(out, fmt.Sprintf("%s %s %s", k[0], t.Symbol, k[1]))
	}
	for k := range t.Unary {
		out = append(out, fmt.Sprintf("%s%s", t.Symbol, k))
	}
	sort.Strings(out)
	return out
}

var operatorTables = map[string]*OperatorTable{
	"+": {
		Symbol: "+",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}:       {types.KindInt, OpAddII},
			{types.KindInt, types.KindFloat}:     {types.KindFloat, OpAddIF},
			{types.KindFloat, types.KindInt}:     {types.KindFloat, OpAddFI},
			{types.KindFloat, types.KindFloat}:   {types.KindFloat, OpAddFF},
			{types.KindString, types.KindString}: {types.KindString, OpAddSS},
			{types.KindVector, types.KindVector}: {types.KindVector, OpAddVV},
		},
	},
	"-": {
		Symbol: "-",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}:       {types.KindInt, OpSubII},
			{types.KindInt, types.KindFloat}:     {types.KindFloat, OpSubIF},
			{types.KindFloat, types.KindInt}:     {types.KindFloat, OpSubFI},
			{types.KindFloat, types.KindFloat}:   {types.KindFloat, OpSubFF},
			{types.KindVector, types.KindVector}: {types.KindVector, OpSubVV},
		},
		Unary: map[types.Kind]OpEntry{
			types.KindInt:   {types.KindInt, OpNegI},
			types.KindFloat: {types.KindFloat, OpNegF},
		},
	},
	"*": {
		Symbol: "*",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}:      {types.KindInt, OpMulII},
			{types.KindInt, types.KindFloat}:    {types.KindFloat, OpMulIF},
			{types.KindFloat, types.KindInt}:    {types.KindFloat, OpMulFI},
			{types.KindFloat, types.KindFloat}:  {types.KindFloat, OpMulFF},
			{types.KindVector, types.KindFloat}: {types.KindVector, OpMulVF},
			{types.KindFloat, types.KindVector}: {types.KindVector, OpMulFV},
		},
	},
	"/": {
		Symbol: "/",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}:      {types.KindInt, OpDivII},
			{types.KindInt, types.KindFloat}:    {types.KindFloat, OpDivIF},
			{types.KindFloat, types.KindInt}:    {types.KindFloat, OpDivFI},
			{types.KindFloat, types.KindFloat}:  {types.KindFloat, OpDivFF},
			{types.KindVector, types.KindFloat}: {types.KindVector, OpDivVF},
		},
	},
	"%": {
		Symbol: "%",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}: {types.KindInt, OpModII},
		},
	},
	"==": {
		Symbol: "==",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}:       {types.KindInt, OpEqII},
			{types.KindFloat, types.KindFloat}:   {types.KindInt, OpEqFF},
			{types.KindString, types.KindString}: {types.KindInt, OpEqSS},
			{types.KindObject, types.KindObject}: {types.KindInt, OpEqOO},
		},
	},
	"!=": {
		Symbol: "!=",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}:       {types.KindInt, OpNeII},
			{types.KindFloat, types.KindFloat}:   {types.KindInt, OpNeFF},
			{types.KindString, types.KindString}: {types.KindInt, OpNeSS},
			{types.KindObject, types.KindObject}: {types.KindInt, OpNeOO},
		},
	},
	"<": {
		Symbol: "<",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}:     {types.KindInt, OpLtII},
			{types.KindFloat, types.KindFloat}: {types.KindInt, OpLtFF},
		},
	},
	">": {
		Symbol: ">",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}:     {types.KindInt, OpGtII},
			{types.KindFloat, types.KindFloat}: {types.KindInt, OpGtFF},
		},
	},
	"<=": {
		Symbol: "<=",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}:     {types.KindInt, OpLeII},
			{types.KindFloat, types.KindFloat}: {types.KindInt, OpLeFF},
		},
	},
	">=": {
		Symbol: ">=",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}:     {types.KindInt, OpGeII},
			{types.KindFloat, types.KindFloat}: {types.KindInt, OpGeFF},
		},
	},
	"&&": {
		Symbol: "&&",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}: {types.KindInt, OpLogAndII},
		},
	},
	"||": {
		Symbol: "||",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}: {types.KindInt, OpLogOrII},
		},
	},
	"&": {
		Symbol: "&",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}: {types.KindInt, OpAndII},
		},
	},
	"|": {
		Symbol: "|",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}: {types.KindInt, OpOrII},
		},
	},
	"^": {
		Symbol: "^",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}: {types.KindInt, OpXorII},
		},
	},
	"<<": {
		Symbol: "<<",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}: {types.KindInt, OpShlII},
		},
	},
	">>": {
		Symbol: ">>",
		Binary: map[[2]types.Kind]OpEntry{
			{types.KindInt, types.KindInt}: {types.KindInt, OpShrII},
		},
	},
	"!": {
		Symbol: "!",
		Unary: map[types.Kind]OpEntry{
			types.KindInt: {types.KindInt, OpNotI},
		},
	},
	"~": {
		Symbol: "~",
		Unary: map[types.Kind]OpEntry{
			types.KindInt: {types.KindInt, OpCompI},
		},
	},
}

// OperatorFor returns the pre-built table for an operator symbol.
// Compound assignment operators share the table of their base
// operator ("+=" resolves to "+").
func OperatorFor(symbol string) (*OperatorTable, bool) {
	if len(symbol) == 2 && symbol[1] == '=' {
		switch symbol[0] {
		case '+', '-', '*', '/':
			symbol = symbol[:1]
		}
	}
	t, ok := operatorTables[symbol]
	return t, ok
}

// Operators returns all operator symbols that carry a table
func Operators() []string {
	out := make([]string, 0, len(operatorTables))
	for sym := range operatorTables {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
