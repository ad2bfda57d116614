package exec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espsec/espc/internal/ast"
	"github.com/espsec/espc/internal/collect"
	"github.com/espsec/espc/internal/resolve"
	"github.com/espsec/espc/internal/types"
)

type fakeCollector struct {
	data collect.Data
	err  error
}

func (f fakeCollector) Collect(ctx context.Context, params map[string]types.Value) (collect.Data, error) {
	return f.data, f.err
}

func TestEvaluate_SingleMatchingItemPasses(t *testing.T) {
	obj := &resolve.ResolvedObject{
		Name: "sshd_config",
		Ctn:  "file_metadata",
		Parameters: map[string]types.Value{
			"path": types.String("/etc/ssh/sshd_config"),
		},
	}
	state := &resolve.ResolvedState{
		Name: "sshd_state",
		Assertions: []resolve.ResolvedAssertion{
			{Field: "mode", Op: types.OpEquals, Operand: types.String("0644")},
			{Field: "owner", Op: types.OpEquals, Operand: types.String("root")},
		},
	}
	crit := &ast.CriterionDecl{
		Name:      "ssh_perms_check",
		ObjectRef: "sshd_config",
		StateRef:  "sshd_state",
		Join:      ast.JoinSpec{Op: types.JoinAll},
		Existence: &ast.ExistenceSpec{Op: types.ExistsOp},
		StateJoin: types.StateJoinAnd,
	}

	registry := Registry{
		"file_metadata": fakeCollector{data: collect.Data{
			Complete: true,
			Items: []collect.Item{{
				"mode":  types.String("0644"),
				"owner": types.String("root"),
			}},
		}},
	}

	finding := Evaluate(context.Background(), crit, obj, state, registry)
	require.NoError(t, finding.Err)
	require.Len(t, finding.Items, 1)
	assert.True(t, finding.ItemVerdict)
	assert.True(t, finding.Existence)
	assert.True(t, finding.Pass)
}

func TestEvaluate_MismatchedFieldFails(t *testing.T) {
	obj := &resolve.ResolvedObject{Name: "o", Ctn: "file_metadata", Parameters: map[string]types.Value{}}
	state := &resolve.ResolvedState{
		Name: "s",
		Assertions: []resolve.ResolvedAssertion{
			{Field: "mode", Op: types.OpEquals, Operand: types.String("0644")},
		},
	}
	crit := &ast.CriterionDecl{
		Name: "c", ObjectRef: "o", StateRef: "s",
		Join: ast.JoinSpec{Op: types.JoinAll},
	}
	registry := Registry{
		"file_metadata": fakeCollector{data: collect.Data{
			Items: []collect.Item{{"mode": types.String("0600")}},
		}},
	}
	finding := Evaluate(context.Background(), crit, obj, state, registry)
	require.NoError(t, finding.Err)
	assert.False(t, finding.Pass)

	require.Len(t, finding.Items, 1)
	require.Len(t, finding.Items[0].Assertions, 1)
	assert.NotEmpty(t, finding.Items[0].Assertions[0].Hint)
	assert.Equal(t, []string{finding.Items[0].Assertions[0].Hint}, finding.Hints())
}

func TestEvaluate_MissingFieldProducesNoHint(t *testing.T) {
	obj := &resolve.ResolvedObject{Name: "o", Ctn: "file_metadata", Parameters: map[string]types.Value{}}
	state := &resolve.ResolvedState{
		Name: "s",
		Assertions: []resolve.ResolvedAssertion{
			{Field: "mode", Op: types.OpEquals, Operand: types.String("0644")},
		},
	}
	crit := &ast.CriterionDecl{
		Name: "c", ObjectRef: "o", StateRef: "s",
		Join: ast.JoinSpec{Op: types.JoinAll},
	}
	registry := Registry{
		"file_metadata": fakeCollector{data: collect.Data{
			Items: []collect.Item{{}},
		}},
	}
	finding := Evaluate(context.Background(), crit, obj, state, registry)
	require.NoError(t, finding.Err)
	assert.False(t, finding.Pass)
	assert.Empty(t, finding.Items[0].Assertions[0].Hint)
	assert.Empty(t, finding.Hints())
}

func TestEvaluate_FilterNarrowsItems(t *testing.T) {
	obj := &resolve.ResolvedObject{
		Name: "o", Ctn: "file_metadata",
		Filters: []resolve.ResolvedFilter{{Field: "kind", Op: types.OpEquals, Value: types.String("regular")}},
	}
	state := &resolve.ResolvedState{Assertions: []resolve.ResolvedAssertion{
		{Field: "mode", Op: types.OpEquals, Operand: types.String("0644")},
	}}
	crit := &ast.CriterionDecl{Name: "c", ObjectRef: "o", StateRef: "s", Join: ast.JoinSpec{Op: types.JoinAll}}
	registry := Registry{
		"file_metadata": fakeCollector{data: collect.Data{Items: []collect.Item{
			{"kind": types.String("directory"), "mode": types.String("0644")},
			{"kind": types.String("regular"), "mode": types.String("0644")},
		}}},
	}
	finding := Evaluate(context.Background(), crit, obj, state, registry)
	require.NoError(t, finding.Err)
	require.Len(t, finding.Items, 1)
	assert.True(t, finding.Pass)
}

func TestMatchPattern_CachesCompiledRegex(t *testing.T) {
	ok, err := matchPattern(`^/etc/.*\.conf$`, "/etc/app.conf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok2, err := matchPattern(`^/etc/.*\.conf$`, "/etc/app.txt")
	require.NoError(t, err)
	assert.False(t, ok2)
}
