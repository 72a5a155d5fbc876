package code

// Op represents a bytecode instruction tag
type Op int

// Stack and constant operations
const (
	OpNop Op = iota // No-op; also the placeholder carrying a placed label

	OpConstI // Push integer constant [Int]
	OpConstF // Push float constant [Float]
	OpConstS // Push string constant [Str]
	OpConstO // Push object reference constant [Int]

	OpReserveI // Reserve one zeroed int slot
	OpReserveF // Reserve one zeroed float slot
	OpReserveS // Reserve one empty string slot
	OpReserveO // Reserve one invalid-object slot

	OpCopyTopSP  // Copy Size bytes from SP+Offset to top of stack
	OpCopyDownSP // Copy Size bytes from top of stack down to SP+Offset
	OpCopyTopBP  // Copy Size bytes from BP+Offset to top of stack
	OpCopyDownBP // Copy Size bytes from top of stack down to BP+Offset
	OpMoveSP     // Adjust SP by Offset bytes (negative shrinks)
)

// Control flow
const (
	OpJmp Op = OpMoveSP + 1 + iota // Unconditional jump [Target]
	OpJz                           // Pop int; jump if zero [Target]
	OpJnz                          // Pop int; jump if nonzero [Target]
	OpJsr                          // Push return address; jump to subroutine [Target]
	OpRet                          // Pop return address and jump to it; halts when none

	OpSaveBP    // Push current BP, set BP to current SP
	OpRestoreBP // Pop saved BP back into BP
)

// In-place integer mutation (increment/decrement at a stack offset)
const (
	OpIncSP Op = OpRestoreBP + 1 + iota // ++ at SP+Offset
	OpDecSP                             // -- at SP+Offset
	OpIncBP                             // ++ at BP+Offset
	OpDecBP                             // -- at BP+Offset
)

// Arithmetic. The suffix names the operand types: I int, F float,
// S string, O object, V vector. Mixed int/float forms produce float.
const (
	OpAddII Op = OpDecBP + 1 + iota
	OpAddIF
	OpAddFI
	OpAddFF
	OpAddSS
	OpAddVV

	OpSubII
	OpSubIF
	OpSubFI
	OpSubFF
	OpSubVV

	OpMulII
	OpMulIF
	OpMulFI
	OpMulFF
	OpMulVF
	OpMulFV

	OpDivII
	OpDivIF
	OpDivFI
	OpDivFF
	OpDivVF

	OpModII

	OpNegI
	OpNegF
	OpCompI // bitwise complement
	OpNotI  // logical not
)

// Comparison; all forms push an int truth value
const (
	OpEqII Op = OpNotI + 1 + iota
	OpEqFF
	OpEqSS
	OpEqOO
	OpNeII
	OpNeFF
	OpNeSS
	OpNeOO
	OpLtII
	OpLtFF
	OpGtII
	OpGtFF
	OpLeII
	OpLeFF
	OpGeII
	OpGeFF
)

// Logical and bitwise integer operations
const (
	OpLogAndII Op = OpGeFF + 1 + iota
	OpLogOrII
	OpAndII
	OpOrII
	OpXorII
	OpShlII
	OpShrII
)

// External interface
const (
	OpAction     Op = OpShrII + 1 + iota // Call external routine [Int=id, Argc, Str=name]
	OpStoreState                         // Capture the current frame for a deferred action;
	// the action body begins after the jump that immediately follows.
)

// opNames maps ops to mnemonic strings for disassembly
var opNames = map[Op]string{
	OpNop:        "NOP",
	OpConstI:     "CONSTI",
	OpConstF:     "CONSTF",
	OpConstS:     "CONSTS",
	OpConstO:     "CONSTO",
	OpReserveI:   "RSADDI",
	OpReserveF:   "RSADDF",
	OpReserveS:   "RSADDS",
	OpReserveO:   "RSADDO",
	OpCopyTopSP:  "CPTOPSP",
	OpCopyDownSP: "CPDOWNSP",
	OpCopyTopBP:  "CPTOPBP",
	OpCopyDownBP: "CPDOWNBP",
	OpMoveSP:     "MOVSP",
	OpJmp:        "JMP",
	OpJz:         "JZ",
	OpJnz:        "JNZ",
	OpJsr:        "JSR",
	OpRet:        "RETN",
	OpSaveBP:     "SAVEBP",
	OpRestoreBP:  "RESTOREBP",
	OpIncSP:      "INCSP",
	OpDecSP:      "DECSP",
	OpIncBP:      "INCBP",
	OpDecBP:      "DECBP",
	OpAddII:      "ADDII",
	OpAddIF:      "ADDIF",
	OpAddFI:      "ADDFI",
	OpAddFF:      "ADDFF",
	OpAddSS:      "ADDSS",
	OpAddVV:      "ADDVV",
	OpSubII:      "SUBII",
	OpSubIF:      "SUBIF",
	OpSubFI:      "SUBFI",
	OpSubFF:      "SUBFF",
	OpSubVV:      "SUBVV",
	OpMulII:      "MULII",
	OpMulIF:      "MULIF",
	OpMulFI:      "MULFI",
	OpMulFF:      "MULFF",
	OpMulVF:      "MULVF",
	OpMulFV:      "MULFV",
	OpDivII:      "DIVII",
	OpDivIF:      "DIVIF",
	OpDivFI:      "DIVFI",
	OpDivFF:      "DIVFF",
	OpDivVF:      "DIVVF",
	OpModII:      "MODII",
	OpNegI:       "NEGI",
	OpNegF:       "NEGF",
	OpCompI:      "COMPI",
	OpNotI:       "NOTI",
	OpEqII:       "EQII",
	OpEqFF:       "EQFF",
	OpEqSS:       "EQSS",
	OpEqOO:       "EQOO",
	OpNeII:       "NEII",
	OpNeFF:       "NEFF",
	OpNeSS:       "NESS",
	OpNeOO:       "NEOO",
	OpLtII:       "LTII",
	OpLtFF:       "LTFF",
	OpGtII:       "GTII",
	OpGtFF:       "GTFF",
	OpLeII:       "LEII",
	OpLeFF:       "LEFF",
	OpGeII:       "GEII",
	OpGeFF:       "GEFF",
	OpLogAndII:   "LOGANDII",
	OpLogOrII:    "LOGORII",
	OpAndII:      "BOOLANDII",
	OpOrII:       "INCORII",
	OpXorII:      "EXCORII",
	OpShlII:      "SHLEFTII",
	OpShrII:      "SHRIGHTII",
	OpAction:     "ACTION",
	OpStoreState: "STORESTATE",
}

// String returns the mnemonic for an op
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}
