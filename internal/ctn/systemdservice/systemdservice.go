// Package systemdservice implements the systemd_service CTN: its contract
// and a collector over `systemctl show`.
package systemdservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/espsec/espc/internal/collect"
	"github.com/espsec/espc/internal/contract"
	"github.com/espsec/espc/internal/types"
)

// Kind is the CTN discriminator for this module.
const Kind = "systemd_service"

// Contract returns the systemd_service CTN contract.
func Contract() contract.Contract {
	return contract.Contract{
		Kind: Kind,
		ObjectFields: map[string]types.DataType{
			"unit": types.TypeString,
		},
		StateFields: map[string]contract.StateField{
			"active_state": {DataType: types.TypeString, AllowedOps: []types.Operation{types.OpEquals, types.OpNotEqual}},
			"unit_state":   {DataType: types.TypeString, AllowedOps: []types.Operation{types.OpEquals, types.OpNotEqual}},
		},
		Strategy: contract.Strategy{SingleShot: true, Cacheable: false},
	}
}

// Collector queries a unit's runtime state via `systemctl show
// --property=ActiveState,UnitFileState`.
type Collector struct {
	Timeout time.Duration
	// Executor, when set, routes the systemctl invocation through a
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
	unitVal, ok := params["unit"]
	if !ok || unitVal.Missing {
		return collect.Data{}, fmt.Errorf("systemd_service: object parameter %q is required", "unit")
	}
	unit := unitVal.Str

	res, err := c.runCommand(ctx, "systemctl", "show",
		"--property=ActiveState,UnitFileState", unit)
	if res.TimedOut {
		return collect.Data{}, fmt.Errorf("systemd_service: probing %s: %w", unit, err)
	}
	if err != nil {
		return collect.Data{}, fmt.Errorf("systemd_service: probing %s: %w", unit, err)
	}

	props := parseProperties(res.Stdout)
	return collect.Data{
		Items: []collect.Item{{
			"unit":         types.String(unit),
			"active_state": types.String(props["ActiveState"]),
			"unit_state":   types.String(props["UnitFileState"]),
		}},
		CollectedAt: started, Duration: time.Since(started), Complete: true,
	}, nil
}

func parseProperties(out string) map[string]string {
	props := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if k, v, found := strings.Cut(line, "="); found {
			props[k] = v
		}
	}
	return props
}
