// Package selinuxstatus implements the selinux_status CTN: its contract
// and a single-shot collector over getenforce(8).
package selinuxstatus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/espsec/espc/internal/collect"
	"github.com/espsec/espc/internal/contract"
	"github.com/espsec/espc/internal/types"
)

// Kind is the CTN discriminator for this module.
const Kind = "selinux_status"

// Contract returns the selinux_status CTN contract.
func Contract() contract.Contract {
	return contract.Contract{
		Kind:         Kind,
		ObjectFields: map[string]types.DataType{},
		StateFields: map[string]contract.StateField{
			"mode": {DataType: types.TypeString, AllowedOps: []types.Operation{types.OpEquals, types.OpNotEqual}},
		},
		Strategy: contract.Strategy{SingleShot: true, Cacheable: true},
	}
}

// Collector reports the running SELinux enforcement mode: "enforcing",
// "permissive", or "disabled". A getenforce failure (not installed, not a
// SELinux-enabled kernel) is reported as "disabled" rather than a
// collection error, since that is the accurate compliance fact.
type Collector struct {
	Timeout time.Duration
	// Executor, when set, routes the getenforce invocation through a
	// whitelisted collect.SystemCommandExecutor instead of calling
	// collect.RunCommand directly.
	Executor *collect.SystemCommandExecutor
}

// Collect implements internal/collect.Collector.
func (c Collector) Collect(ctx context.Context, _ map[string]types.Value) (collect.Data, error) {
	started := time.Now()
	var res collect.CommandResult
	var err error
	if c.Executor != nil {
		res, err = c.Executor.Run(ctx, c.Timeout, "getenforce")
	} else {
		res, err = collect.RunCommand(ctx, c.Timeout, "getenforce")
	}
	if errors.Is(err, collect.ErrCommandNotAllowed) {
		return collect.Data{}, fmt.Errorf("selinux_status: %w", err)
	}
	mode := "disabled"
	if err == nil {
		mode = strings.ToLower(strings.TrimSpace(res.Stdout))
	}
	return collect.Data{
		Items:       []collect.Item{{"mode": types.String(mode)}},
		CollectedAt: started,
		Duration:    time.Since(started),
		Complete:    true,
	}, nil
}
