package exec

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/espsec/espc/internal/types"
)

// renderDiffHint builds a short unified diff between a failed
// assertion's expected operand and the actual collected value, for
// display in Finding.Hints (§4.10 "a failed assertion's diagnostic hint
// renders the expected and actual values as a diff").
//
// Grounded on the teacher's providers/base/provider.go:generateDiff,
// repurposed from "before/after a code edit" to "expected vs actual
// resolved value"; missing/equal values never reach here (evaluateItem
// and applyFilters only call this on a failed, non-missing comparison).
func renderDiffHint(field string, expected, actual types.Value) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected.String()),
		B:        difflib.SplitLines(actual.String()),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  0,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("%s: expected %q, got %q", field, expected, actual)
	}
	return strings.TrimRight(text, "\n")
}
