package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// CompileError is any semantic error found while compiling a script:
// undefined names, type mismatches, arity errors, signature conflicts,
// invalid declarations, misplaced break/continue, missing entry point.
type CompileError struct {
	Message string
	Line    int    // 1-based, 0 when unknown
	Context string // identifier or function involved, when known
}

func (e *CompileError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, " (%s)", e.Context)
	}
	return b.String()
}

// errf builds a CompileError with a formatted message
func errf(line int, format string, args ...interface{}) *CompileError {
	return &CompileError{Message: fmt.Sprintf(format, args...), Line: line}
}

// internalf marks a compiler bug, not a script bug: an invariant such
// as the temp-stack counter failing to return to zero.
func internalf(line int, format string, args ...interface{}) *CompileError {
	return &CompileError{Message: "internal: " + fmt.Sprintf(format, args...), Line: line}
}

// MissingIncludeError reports an include that no search directory or
// library entry could satisfy. It is recoverable: only the including
// compilation fails.
type MissingIncludeError struct {
	Name string
	Line int
}

func (e *MissingIncludeError) Error() string {
	return fmt.Sprintf("line %d: cannot resolve include %q", e.Line, e.Name)
}

// nearby picks candidate names similar to a misspelled one for error
// messages. Similarity is a shared lowercase prefix or an edit
// distance of at most two.
func nearby(name string, pool []string) []string {
	lower := strings.ToLower(name)
	var out []string
	for _, cand := range pool {
		cl := strings.ToLower(cand)
		if cl == lower || strings.HasPrefix(cl, lower) || strings.HasPrefix(lower, cl) || editDistance(lower, cl) <= 2 {
			out = append(out, cand)
		}
	}
	sort.Strings(out)
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

// withCandidates appends a "did you mean" list when any exist
func withCandidates(msg string, cands []string) string {
	if len(cands) == 0 {
		return msg
	}
	return msg + "; did you mean " + strings.Join(cands, ", ") + "?"
}

// editDistance is a plain Levenshtein distance
func editDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, min(cur[j-1]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
