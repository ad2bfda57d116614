// Package sysctlparameter implements the sysctl_parameter CTN: its
// contract and a collector over `sysctl -n`.
package sysctlparameter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/espsec/espc/internal/collect"
	"github.com/espsec/espc/internal/contract"
	"github.com/espsec/espc/internal/types"
)

// Kind is the CTN discriminator for this module.
const Kind = "sysctl_parameter"

// Contract returns the sysctl_parameter CTN contract.
func Contract() contract.Contract {
	return contract.Contract{
		Kind: Kind,
		ObjectFields: map[string]types.DataType{
			"key": types.TypeString,
		},
		StateFields: map[string]contract.StateField{
			"value": {
				DataType: types.TypeString,
				AllowedOps: []types.Operation{
					types.OpEquals, types.OpNotEqual, types.OpContains, types.OpPatternMatch,
				},
			},
			"int_value": {DataType: types.TypeInt, AllowedOps: []types.Operation{types.OpEquals, types.OpGreaterThan, types.OpLessThan, types.OpGte, types.OpLte}},
		},
		Strategy: contract.Strategy{SingleShot: true, Cacheable: true},
	}
}

// Collector reads one kernel parameter via `sysctl -n <key>`. When the
// value parses as an integer, int_value is additionally populated;
// otherwise it is reported missing.
type Collector struct {
	Timeout time.Duration
	// Executor, when set, routes the sysctl invocation through a
	// whitelisted collect.SystemCommandExecutor instead of calling
	// collect.RunCommand directly.
	Executor *collect.SystemCommandExecutor
}

func (c Collector) runCommand(ctx context.Context, name string, args ...string) (collect.CommandResult, error) {
	if c.Executor != nil {
		return c.Executor.Run(ctx, c.Timeout, name, args...)
	}
	return collect.RunCommand(ctx, c.Timeout, name, args...)
}

// Collect implements internal/collect.Collector.
func (c Collector) Collect(ctx context.Context, params map[string]types.Value) (collect.Data, error) {
	started := time.Now()
	keyVal, ok := params["key"]
	if !ok || keyVal.Missing {
		return collect.Data{}, fmt.Errorf("sysctl_parameter: object parameter %q is required", "key")
	}
	key := keyVal.Str

	res, err := c.runCommand(ctx, "sysctl", "-n", key)
	if err != nil {
		return collect.Data{}, fmt.Errorf("sysctl_parameter: probing %s: %w", key, err)
	}

	value := strings.TrimSpace(res.Stdout)
	item := collect.Item{
		"key":   types.String(key),
		"value": types.String(value),
	}
	if n, convErr := strconv.ParseInt(value, 10, 64); convErr == nil {
		item["int_value"] = types.Int64(n)
	} else {
		item["int_value"] = types.MissingValue(types.TypeInt)
	}

	return collect.Data{
		Items: []collect.Item{item}, CollectedAt: started,
		Duration: time.Since(started), Complete: true,
	}, nil
}
