// Package jsonrecord implements the json_record CTN: its contract and a
// real collector that parses a JSON document — either a single object or
// an array of objects — into record_data items.
package jsonrecord

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/espsec/espc/internal/collect"
	"github.com/espsec/espc/internal/contract"
	"github.com/espsec/espc/internal/types"
)

// Kind is the CTN discriminator for this module.
const Kind = "json_record"

// Contract returns the json_record CTN contract. record_data fields are,
// per the conservative whitelist decision recorded in DESIGN.md, equality
// only.
func Contract() contract.Contract {
	return contract.Contract{
		Kind: Kind,
		ObjectFields: map[string]types.DataType{
			"path": types.TypeString,
		},
		StateFields: map[string]contract.StateField{
			"record": {DataType: types.TypeRecordData, AllowedOps: []types.Operation{types.OpEquals, types.OpNotEqual}},
		},
		Strategy: contract.Strategy{SingleShot: false, Cacheable: true},
	}
}

// Collector reads and decodes the JSON document named by the object's
// "path" parameter. A top-level array yields one item per array element;
// a top-level object yields a single item.
type Collector struct{}

// Collect implements internal/collect.Collector.
func (Collector) Collect(_ context.Context, params map[string]types.Value) (collect.Data, error) {
	started := time.Now()
	pathVal, ok := params["path"]
	if !ok || pathVal.Missing {
		return collect.Data{}, fmt.Errorf("json_record: object parameter %q is required", "path")
	}
	path := pathVal.Str

	raw, err := os.ReadFile(path)
	if err != nil {
		return collect.Data{}, fmt.Errorf("json_record: read %s: %w", path, err)
	}

	var arr []map[string]any
	if err := json.Unmarshal(raw, &arr); err == nil {
		items := make([]collect.Item, len(arr))
		for i, rec := range arr {
			items[i] = collect.Item{"record": types.Record(rec)}
		}
		return collect.Data{Items: items, CollectedAt: started, Duration: time.Since(started), Complete: true}, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return collect.Data{}, fmt.Errorf("json_record: decode %s: %w", path, err)
	}
	return collect.Data{
		Items:       []collect.Item{{"record": types.Record(obj)}},
		CollectedAt: started,
		Duration:    time.Since(started),
		Complete:    true,
	}, nil
}
