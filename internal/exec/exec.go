// Package exec implements the execution engine (§4.10): for one
// criterion, it collects data for the bound object, filters items,
// evaluates every state assertion per item, aggregates per-item verdicts
// with the criterion's JoinOp, checks the ExistenceSpec against the
// collected item count, and combines the two into a final verdict via
// StateJoinOp.
//
// Grounded on the teacher's internal/evaluator/universal.go Evaluate()
// workflow shape (parse -> translate -> execute -> aggregate), re-targeted
// from tree-sitter query execution to contract-bound criterion
// evaluation; the teacher's "zero engine-specific logic lives outside the
// injected provider" discipline carries over as "zero CTN-specific logic
// lives outside the injected Collector".
package exec

import (
	"context"
	"fmt"

	"github.com/espsec/espc/internal/ast"
	"github.com/espsec/espc/internal/collect"
	"github.com/espsec/espc/internal/resolve"
	"github.com/espsec/espc/internal/types"
)

// Registry maps a CTN kind to the Collector that services it. Populated
// once at startup by cmd/espc and shared read-only across every worker
// (mirrors internal/contract.Registry's concurrency contract).
type Registry map[string]collect.Collector

// AssertionResult is the outcome of one field assertion against one
// collected item.
type AssertionResult struct {
	Field string
	Op    types.Operation
	Pass  bool
	Err   error
	// Hint renders a unified expected-vs-actual diff when the assertion
	// failed on a present (non-missing) value; empty otherwise.
	Hint string
}

// ItemVerdict is the per-item outcome: every assertion's result, plus
// whether the item passed the state as a whole (all assertions true).
type ItemVerdict struct {
	Item       collect.Item
	Assertions []AssertionResult
	Pass       bool
}

// Finding is the final, reportable outcome of evaluating one criterion
// (§3 "Finding").
type Finding struct {
	Criterion    string
	ObjectName   string
	StateName    string
	Severity     string
	Items        []ItemVerdict
	ItemVerdict  bool
	Existence    bool
	HasExistence bool
	Pass         bool
	Err          error
}

// Hints collects every non-empty diff hint produced by this finding's
// failed assertions, in item/assertion order, for surfacing on a
// Diagnostic (§4.10 "a failed assertion's diagnostic hint").
func (f Finding) Hints() []string {
	var hints []string
	for _, item := range f.Items {
		for _, a := range item.Assertions {
			if a.Hint != "" {
				hints = append(hints, a.Hint)
			}
		}
	}
	return hints
}

// Evaluate runs one criterion end to end.
func Evaluate(ctx context.Context, crit *ast.CriterionDecl, obj *resolve.ResolvedObject, state *resolve.ResolvedState, registry Registry) Finding {
	finding := Finding{
		Criterion:  crit.Name,
		ObjectName: obj.Name,
		StateName:  state.Name,
		Severity:   crit.Severity,
	}

	collector, ok := registry[obj.Ctn]
	if !ok {
		finding.Err = fmt.Errorf("no collector registered for criterion type %q", obj.Ctn)
		return finding
	}

	data, err := collector.Collect(ctx, obj.Parameters)
	if err != nil {
		finding.Err = fmt.Errorf("collecting for object %q: %w", obj.Name, err)
		return finding
	}

	items := applyFilters(data.Items, obj.Filters)

	for _, item := range items {
		finding.Items = append(finding.Items, evaluateItem(item, state))
	}

	finding.ItemVerdict = aggregateJoin(crit.Join, finding.Items)

	if crit.Existence != nil {
		finding.HasExistence = true
		finding.Existence = evaluateExistence(*crit.Existence, len(items))
		finding.Pass = combineStateJoin(crit.StateJoin, finding.ItemVerdict, finding.Existence)
	} else {
		finding.Pass = finding.ItemVerdict
	}

	return finding
}

func combineStateJoin(op types.StateJoinOp, item, existence bool) bool {
	switch op {
	case types.StateJoinOr:
		return item || existence
	default: // types.StateJoinAnd and unset both default to AND
		return item && existence
	}
}

func applyFilters(items []collect.Item, filters []resolve.ResolvedFilter) []collect.Item {
	if len(filters) == 0 {
		return items
	}
	out := make([]collect.Item, 0, len(items))
	for _, item := range items {
		keep := true
		for _, f := range filters {
			val, ok := item[f.Field]
			if !ok {
				val = types.MissingValue(f.Value.Type)
			}
			pass, err := evaluateOp(f.Op, val, f.Value)
			if err != nil || !pass {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, item)
		}
	}
	return out
}

func evaluateItem(item collect.Item, state *resolve.ResolvedState) ItemVerdict {
	verdict := ItemVerdict{Item: item, Pass: true}
	for _, a := range state.Assertions {
		val, ok := item[a.Field]
		if !ok {
			val = types.MissingValue(a.Operand.Type)
		}
		pass, err := evaluateOp(a.Op, val, a.Operand)
		result := AssertionResult{Field: a.Field, Op: a.Op, Pass: pass, Err: err}
		if err == nil && !pass && !val.Missing {
			result.Hint = renderDiffHint(a.Field, a.Operand, val)
		}
		verdict.Assertions = append(verdict.Assertions, result)
		if err != nil || !pass {
			verdict.Pass = false
		}
	}
	return verdict
}

// evaluateOp dispatches one Operation against a collected value and the
// state's expected operand, per §4.6/§4.10. pattern_match is handled by
// regex.go's compiled-pattern cache.
func evaluateOp(op types.Operation, value, operand types.Value) (bool, error) {
	if value.Missing {
		return false, nil
	}
	switch op {
	case types.OpEquals:
		return types.Equal(value, operand), nil
	case types.OpNotEqual:
		return !types.Equal(value, operand), nil
	case types.OpGreaterThan, types.OpLessThan, types.OpGte, types.OpLte:
		cmp, err := types.Compare(value, operand)
		if err != nil {
			return false, err
		}
		return compareSatisfies(op, cmp), nil
	case types.OpContains, types.OpNotContains, types.OpStartsWith, types.OpEndsWith:
		return types.StringMatch(op, value.Str, operand.Str)
	case types.OpPatternMatch:
		return matchPattern(operand.Str, value.Str)
	default:
		return false, fmt.Errorf("unsupported operation %s", op)
	}
}

func compareSatisfies(op types.Operation, cmp int) bool {
	switch op {
	case types.OpGreaterThan:
		return cmp > 0
	case types.OpLessThan:
		return cmp < 0
	case types.OpGte:
		return cmp >= 0
	case types.OpLte:
		return cmp <= 0
	default:
		return false
	}
}

// aggregateJoin combines per-item verdicts per the criterion's JoinSpec
// (§4.10 step 3). An empty item list satisfies `all` and `none` and fails
// `any` and `at_least(k)` for k >= 1 — an empty collection contains no
// counterexample to "all match" or "none match" but also no witness for
// "any match".
func aggregateJoin(spec ast.JoinSpec, items []ItemVerdict) bool {
	switch spec.Op {
	case types.JoinAll:
		for _, it := range items {
			if !it.Pass {
				return false
			}
		}
		return true
	case types.JoinAny:
		for _, it := range items {
			if it.Pass {
				return true
			}
		}
		return false
	case types.JoinNone:
		for _, it := range items {
			if it.Pass {
				return false
			}
		}
		return true
	case types.JoinAtLeast:
		count := 0
		for _, it := range items {
			if it.Pass {
				count++
			}
		}
		return count >= spec.K
	default:
		return false
	}
}

// evaluateExistence implements §4.10 step 4's predicate over item count.
func evaluateExistence(spec ast.ExistenceSpec, count int) bool {
	switch spec.Op {
	case types.ExistsOp:
		return count > 0
	case types.NotExistsOp:
		return count == 0
	case types.CountOpK:
		return compareSatisfiesCount(spec.Cmp, count, spec.K)
	default:
		return false
	}
}

func compareSatisfiesCount(op types.Operation, count, k int) bool {
	switch op {
	case types.OpEquals:
		return count == k
	case types.OpNotEqual:
		return count != k
	case types.OpGreaterThan:
		return count > k
	case types.OpLessThan:
		return count < k
	case types.OpGte:
		return count >= k
	case types.OpLte:
		return count <= k
	default:
		return false
	}
}
