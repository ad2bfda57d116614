// Package contract implements the CTN contract registry (§4.8): a
// build-time registrar mapping each criterion-type-name to its required
// object/state fields, per-field allowed operations, and collection
// strategy. The registry is read-only after registration and safe for
// concurrent use by every batch worker (§5 "the contract registry is
// read-only after registration and may be shared by all workers").
//
// Generalized from the teacher's RWMutex-guarded provider registry
// (internal/registry.Registry): the lookup-by-multiple-keys and
// dynamic-plugin-loading machinery is dropped (ESP's contract set is
// fixed at build time, not discovered from .so plugins at runtime), but
// the register-once / concurrent-read-many shape is kept verbatim.
package contract

import (
	"fmt"
	"sort"
	"sync"

	"github.com/espsec/espc/internal/types"
)

// StateField describes one whitelisted state-assertion field: its
// declared DataType and the subset of operations permitted against it.
// The subset must itself be contained in that DataType's global
// compatibility relation (types.ValidOperations) — contracts narrow, they
// never widen.
type StateField struct {
	DataType     types.DataType
	AllowedOps   []types.Operation
}

// Allows reports whether op is permitted against this field.
func (f StateField) Allows(op types.Operation) bool {
	for _, o := range f.AllowedOps {
		if o == op {
			return true
		}
	}
	return false
}

// Strategy describes how a collector should gather data for objects bound
// to a contract (§3 "Contract" (c)).
type Strategy struct {
	// SingleShot collectors yield at most one item per object (e.g.
	// SELinux enforcement mode). Iterative collectors may yield many
	// (e.g. a filesystem walk).
	SingleShot bool
	// Cacheable hints that repeated collection for the same object
	// within a batch run may reuse a prior result.
	Cacheable bool
}

// Contract is the full per-CTN declaration (§3 "Contract", §4.8).
type Contract struct {
	Kind string
	// ObjectFields are required object-element field names and their
	// declared data types.
	ObjectFields map[string]types.DataType
	// StateFields is the whitelist of state-assertion field names a
	// criterion bound to this CTN may reference.
	StateFields map[string]StateField
	Strategy    Strategy
	// ComputedFields names optional derived fields a collector or
	// executor may populate beyond what was directly probed (§3
	// "optional computed-field derivations").
	ComputedFields []string
}

// RequiredObjectField reports whether name is a required object field,
// returning its declared type.
func (c Contract) RequiredObjectField(name string) (types.DataType, bool) {
	dt, ok := c.ObjectFields[name]
	return dt, ok
}

// StateFieldByName looks up a whitelisted state field by name.
func (c Contract) StateFieldByName(name string) (StateField, bool) {
	f, ok := c.StateFields[name]
	return f, ok
}

// Registry holds every registered Contract, keyed by CTN kind.
type Registry struct {
	mu        sync.RWMutex
	contracts map[string]Contract
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{contracts: make(map[string]Contract)}
}

// Register adds a contract. Registration is idempotent with respect to
// init-order (any package may call Register during its own init()), but
// two distinct contracts registered under the same kind is rejected
// outright (§4.8 "registration is idempotent but duplicate kind IDs are
// rejected" — read as: order-independent, not overwrite-permitting).
func (r *Registry) Register(c Contract) error {
	if c.Kind == "" {
		return fmt.Errorf("contract: kind must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.contracts[c.Kind]; exists {
		return fmt.Errorf("contract: kind %q already registered", c.Kind)
	}
	r.contracts[c.Kind] = c
	return nil
}

// Get retrieves the contract for a CTN kind. Pure lookup, no I/O (§4.8
// "Query operations are pure").
func (r *Registry) Get(kind string) (Contract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contracts[kind]
	return c, ok
}

// Kinds returns every registered CTN kind, sorted for deterministic
// diagnostics and IR serialization (§6 "serialization is stable").
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.contracts))
	for k := range r.contracts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
