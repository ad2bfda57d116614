// Package filecontent implements the file_content CTN: its contract and a
// real collector that reads a file's textual content into a single item,
// for criteria that assert against file contents (e.g. pattern_match
// against a configuration line).
package filecontent

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
const Kind = "file_content"

// Contract returns the file_content CTN contract.
func Contract() contract.Contract {
	return contract.Contract{
		Kind: Kind,
		ObjectFields: map[string]types.DataType{
			"path": types.TypeString,
		},
		StateFields: map[string]contract.StateField{
			"content": {
				DataType: types.TypeString,
				AllowedOps: []types.Operation{
					types.OpEquals, types.OpContains, types.OpNotContains,
					types.OpStartsWith, types.OpEndsWith, types.OpPatternMatch,
				},
			},
			"line_count": {DataType: types.TypeInt, AllowedOps: []types.Operation{types.OpEquals, types.OpGreaterThan, types.OpLessThan, types.OpGte, types.OpLte}},
		},
		Strategy: contract.Strategy{SingleShot: true, Cacheable: true},
	}
}

// MaxReadBytes bounds how much of a file is read into memory; larger
// files are reported incomplete rather than exhausting memory on an
// adversarial or oversized target.
const MaxReadBytes = 8 << 20 // 8 MiB

// Collector reads the file named by the object's "path" parameter.
type Collector struct{}

// Collect implements internal/collect.Collector.
func (Collector) Collect(_ context.Context, params map[string]types.Value) (collect.Data, error) {
	started := time.Now()
	pathVal, ok := params["path"]
	if !ok || pathVal.Missing {
		return collect.Data{}, fmt.Errorf("file_content: object parameter %q is required", "path")
	}
	path := pathVal.Str

	f, err := os.Open(path)
	if err != nil {
		return collect.Data{}, fmt.Errorf("file_content: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return collect.Data{}, fmt.Errorf("file_content: stat %s: %w", path, err)
	}

	complete := true
	readSize := info.Size()
	if readSize > MaxReadBytes {
		readSize = MaxReadBytes
		complete = false
	}
	buf := make([]byte, readSize)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return collect.Data{}, fmt.Errorf("file_content: read %s: %w", path, err)
	}
	content := string(buf[:n])

	item := collect.Item{
		"path":       types.String(path),
		"content":    types.String(content),
		"line_count": types.Int64(int64(countLines(content))),
	}

	return collect.Data{
		Items:       []collect.Item{item},
		CollectedAt: started,
		Duration:    time.Since(started),
		Complete:    complete,
	}, nil
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
