// Package rpmpackage implements the rpm_package CTN: its contract and a
// collector that shells out to rpm(8). Per the scope boundary, the exact
// parsing of rpm's output is an implementation detail, not a prescribed
// one — only the contract and the bounded-subprocess collection protocol
// are load-bearing.
package rpmpackage

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
const Kind = "rpm_package"

// Contract returns the rpm_package CTN contract.
func Contract() contract.Contract {
	return contract.Contract{
		Kind: Kind,
		ObjectFields: map[string]types.DataType{
			"name": types.TypeString,
		},
		StateFields: map[string]contract.StateField{
			"installed": {DataType: types.TypeBoolean, AllowedOps: []types.Operation{types.OpEquals, types.OpNotEqual}},
			"version":   {DataType: types.TypeEvrString, AllowedOps: []types.Operation{types.OpEquals, types.OpGreaterThan, types.OpLessThan, types.OpGte, types.OpLte}},
		},
		Strategy: contract.Strategy{SingleShot: true, Cacheable: true},
	}
}

// Collector queries rpm's package database via `rpm -q --qf`.
type Collector struct {
	// Timeout overrides collect.DefaultCommandTimeout when non-zero,
	// mainly for tests.
	Timeout time.Duration
	// Executor, when set, routes the rpm invocation through a
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
	nameVal, ok := params["name"]
	if !ok || nameVal.Missing {
		return collect.Data{}, fmt.Errorf("rpm_package: object parameter %q is required", "name")
	}
	pkg := nameVal.Str

	res, err := c.runCommand(ctx, "rpm", "-q", "--qf", "%{EPOCH}:%{VERSION}-%{RELEASE}", pkg)
	if res.TimedOut || errors.Is(err, collect.ErrCommandNotAllowed) {
		return collect.Data{}, fmt.Errorf("rpm_package: probing %s: %w", pkg, err)
	}
	if err != nil {
		// rpm exits non-zero when the package is simply not installed;
		// that is a valid (negative) fact, not a collection failure.
		return collect.Data{
			Items: []collect.Item{{
				"name":      types.String(pkg),
				"installed": types.Bool_(false),
				"version":   types.MissingValue(types.TypeEvrString),
			}},
			CollectedAt: started, Duration: time.Since(started), Complete: true,
		}, nil
	}

	evr := strings.TrimSpace(res.Stdout)
	evr = strings.TrimPrefix(evr, "(none):")
	return collect.Data{
		Items: []collect.Item{{
			"name":      types.String(pkg),
			"installed": types.Bool_(true),
			"version":   types.EvrString(evr),
		}},
		CollectedAt: started, Duration: time.Since(started), Complete: true,
	}, nil
}
