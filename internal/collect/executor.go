package collect

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCommandNotAllowed is returned (wrapped) by SystemCommandExecutor.Run
// when the requested command is not in its whitelist. Callers that treat
// a subprocess's own non-zero exit as a negative compliance fact (rather
// than a collection failure) must still check for this error first, so a
// whitelist rejection is never mistaken for that.
var ErrCommandNotAllowed = errors.New("collect: command is not whitelisted")

// SystemCommandExecutor runs external commands through a fixed
// whitelist, so a CTN collector can only ever shell out to the
// specific binaries its deployment profile allows (§5 "Command
// collectors ... enforce a per-invocation timeout"; a whitelist is the
// companion guarantee that they never invoke an unexpected binary).
//
// Grounded on esp_scanner_sdk/src/commands/rhel9.rs's
// SystemCommandExecutor: with_timeout/allow_commands/is_allowed,
// generalized here from a single RHEL9 preset constructor to a reusable
// type any deployment profile can build its own whitelist from.
type SystemCommandExecutor struct {
	timeout time.Duration
	allowed map[string]bool
}

// NewSystemCommandExecutor returns an executor with an empty whitelist
// and the given default timeout (passed to collect.RunCommand as its
// per-invocation timeout unless the caller overrides it).
func NewSystemCommandExecutor(timeout time.Duration) *SystemCommandExecutor {
	return &SystemCommandExecutor{timeout: timeout, allowed: make(map[string]bool)}
}

// AllowCommands adds names to the whitelist.
func (e *SystemCommandExecutor) AllowCommands(names ...string) {
	for _, n := range names {
		e.allowed[n] = true
	}
}

// IsAllowed reports whether name is whitelisted.
func (e *SystemCommandExecutor) IsAllowed(name string) bool {
	return e.allowed[name]
}

// Run executes name with args after checking the whitelist, using
// timeout when positive or the executor's configured default
// otherwise. A non-whitelisted name is rejected before any subprocess
// is spawned.
func (e *SystemCommandExecutor) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (CommandResult, error) {
	if !e.IsAllowed(name) {
		return CommandResult{}, fmt.Errorf("%w: %q", ErrCommandNotAllowed, name)
	}
	if timeout <= 0 {
		timeout = e.timeout
	}
	return RunCommand(ctx, timeout, name, args...)
}

// RHEL9Executor returns a SystemCommandExecutor preset for RHEL 9 STIG
// compliance scanning, whitelisting the package/service/SELinux/audit/
// kernel-parameter/identity query commands the built-in CTN collectors
// need (rpm, systemctl, getenforce, sysctl, auditctl, id, stat, getent),
// matching esp_scanner_sdk/src/commands/rhel9.rs's
// create_rhel9_command_executor.
func RHEL9Executor(timeout time.Duration) *SystemCommandExecutor {
	e := NewSystemCommandExecutor(timeout)
	e.AllowCommands("rpm", "systemctl", "getenforce", "auditctl", "sysctl", "id", "stat", "getent")
	return e
}
