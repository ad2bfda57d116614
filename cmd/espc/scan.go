package main

import (
	"context"
	"os"

	"github.com/espsec/espc/internal/contract"
	"github.com/espsec/espc/internal/exec"
	"github.com/espsec/espc/internal/hostinfo"
	"github.com/espsec/espc/internal/pipeline"
)

// ScanResult is one file's complete outcome: its compiler Output plus,
// when compilation was clean enough to execute, every criterion's
// Finding, plus the host/user identity the scan ran under. Exit-code
// selection (§6) reads Findings, not just Output.
type ScanResult struct {
	*pipeline.Output
	Findings []exec.Finding `json:"findings,omitempty"`
	Host     hostinfo.Host  `json:"host"`
	User     hostinfo.User  `json:"user"`
}

// AnyFailure reports whether this file has a fatal diagnostic or a
// failed compliance finding.
func (r ScanResult) AnyFailure() bool {
	if r.Output.Status == pipeline.StatusError {
		return true
	}
	for _, f := range r.Findings {
		if f.Err != nil || !f.Pass {
			return true
		}
	}
	return false
}

// scanFile compiles path and, if compilation produced a usable tree,
// executes every criterion against registry. tabWidth is an optional
// trailing argument forwarded to pipeline.Run's column decoder.
func scanFile(ctx context.Context, path string, contracts *contract.Registry, registry exec.Registry, tabWidth ...int) (*ScanResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := pipeline.Run(path, src, contracts, tabWidth...)
	result := &ScanResult{Output: out, Host: hostinfo.CurrentHost(), User: hostinfo.CurrentUser()}
	if out.Status == pipeline.StatusError || out.Tree == nil {
		return result, nil
	}

	for _, crit := range out.Tree.Criteria {
		obj, ok := out.Tree.Objects[crit.ObjectRef]
		if !ok {
			continue
		}
		state, ok := out.Tree.States[crit.StateRef]
		if !ok {
			continue
		}
		result.Findings = append(result.Findings, exec.Evaluate(ctx, crit, obj, state, registry))
	}
	return result, nil
}
