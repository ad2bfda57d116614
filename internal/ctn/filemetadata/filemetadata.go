// Package filemetadata implements the file_metadata CTN: its contract and
// a real, in-process collector that stats a path on the local
// filesystem. Unlike the command-backed CTNs, this one has no external
// platform-probe dependency, so its collector is a concrete
// implementation rather than a described-only contract (§1 scope note
// applies to RPM/systemd/sysctl/SELinux, not to filesystem metadata).
package filemetadata

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/espsec/espc/internal/collect"
	"github.com/espsec/espc/internal/contract"
	"github.com/espsec/espc/internal/types"
)

// Kind is the CTN discriminator for this module.
const Kind = "file_metadata"

// Contract returns the file_metadata CTN contract (§4.8).
func Contract() contract.Contract {
	return contract.Contract{
		Kind: Kind,
		ObjectFields: map[string]types.DataType{
			"path": types.TypeString,
		},
		StateFields: map[string]contract.StateField{
			"mode":  {DataType: types.TypeString, AllowedOps: []types.Operation{types.OpEquals, types.OpNotEqual}},
			"owner": {DataType: types.TypeString, AllowedOps: []types.Operation{types.OpEquals, types.OpNotEqual}},
			"group": {DataType: types.TypeString, AllowedOps: []types.Operation{types.OpEquals, types.OpNotEqual}},
			"size":  {DataType: types.TypeInt, AllowedOps: []types.Operation{types.OpEquals, types.OpNotEqual, types.OpGreaterThan, types.OpLessThan, types.OpGte, types.OpLte}},
			"is_dir": {DataType: types.TypeBoolean, AllowedOps: []types.Operation{types.OpEquals, types.OpNotEqual}},
		},
		Strategy: contract.Strategy{SingleShot: true, Cacheable: false},
	}
}

// Collector stats the path named by the object's "path" parameter.
type Collector struct{}

// Collect implements internal/collect.Collector.
func (Collector) Collect(_ context.Context, params map[string]types.Value) (collect.Data, error) {
	started := time.Now()
	pathVal, ok := params["path"]
	if !ok || pathVal.Missing {
		return collect.Data{}, fmt.Errorf("file_metadata: object parameter %q is required", "path")
	}
	path := pathVal.Str

	info, err := os.Stat(path)
	if err != nil {
		return collect.Data{
			Items: []collect.Item{}, CollectedAt: started,
			Duration: time.Since(started), Complete: false,
		}, fmt.Errorf("file_metadata: stat %s: %w", path, err)
	}

	item := collect.Item{
		"path":   types.String(path),
		"size":   types.Int64(info.Size()),
		"is_dir": types.Bool_(info.IsDir()),
		"mode":   types.String(fmt.Sprintf("%#o", info.Mode().Perm())),
	}
	if owner, group, ok := ownerGroup(info); ok {
		item["owner"] = types.String(owner)
		item["group"] = types.String(group)
	} else {
		item["owner"] = types.MissingValue(types.TypeString)
		item["group"] = types.MissingValue(types.TypeString)
	}

	return collect.Data{
		Items:       []collect.Item{item},
		CollectedAt: started,
		Duration:    time.Since(started),
		Complete:    true,
	}, nil
}
