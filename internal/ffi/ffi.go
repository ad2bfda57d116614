// Package ffi models the C-ABI contract a foreign embedding would use to
// drive this compiler from another process or language: init once,
// parse a file or directory to JSON, free the returned string (§6
// "foreign bridge"). No cgo is linked — there is no actual C library in
// this module — so the contract is expressed as a Go interface with an
// in-process Backend implementation, kept swappable so a real linked
// backend could satisfy the same interface later.
//
// Grounded on
// original_source/esp_scanner_base/src/ffi/parsing.rs's
// ensure_library_initialized: a sync.Once-guarded init that remembers
// whether the underlying library came up, and on failure returns the
// real error rather than synthesizing a generic "not initialized"
// message (Open Question b, recorded in DESIGN.md).
package ffi

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/espsec/espc/internal/batch"
	"github.com/espsec/espc/internal/contract"
	"github.com/espsec/espc/internal/pipeline"
)

// Backend is the capability set a linked parser library would provide.
// Init is called at most once per process; Parse{File,Directory} are
// called only after Init has succeeded.
type Backend interface {
	Init() error
	ParseFile(path string, src []byte, contracts *contract.Registry) (*pipeline.Output, error)
	ParseDirectory(root string, cfg batch.Config, contracts *contract.Registry) (*batch.Summary, error)
}

// nativeBackend runs the pipeline in-process; it always initializes
// successfully since there is no external library to load.
type nativeBackend struct{}

func (nativeBackend) Init() error { return nil }

func (nativeBackend) ParseFile(path string, src []byte, contracts *contract.Registry) (*pipeline.Output, error) {
	return pipeline.Run(path, src, contracts), nil
}

func (nativeBackend) ParseDirectory(root string, cfg batch.Config, contracts *contract.Registry) (*batch.Summary, error) {
	return batch.Run(root, cfg, contracts)
}

// Bridge is the facade a foreign caller interacts with, mirroring
// ics_init/ics_parse_file_json/ics_parse_directory_json/ics_free_string.
// ics_free_string has no Go equivalent (the runtime GC owns returned
// strings); it is omitted rather than stubbed, since an unused no-op
// method would only exist to look complete.
type Bridge struct {
	backend Backend

	once        sync.Once
	initErr     error
	initialized bool
}

// New returns a Bridge over backend. A nil backend selects the
// in-process native backend, which always initializes successfully.
func New(backend Backend) *Bridge {
	if backend == nil {
		backend = nativeBackend{}
	}
	return &Bridge{backend: backend}
}

// ensureInitialized runs backend.Init() exactly once, regardless of how
// many goroutines call through the bridge concurrently. A failing Init
// is remembered and returned verbatim (wrapped with %w) on every
// subsequent call — it is never downgraded to a generic "not
// initialized" sentinel.
func (b *Bridge) ensureInitialized() error {
	b.once.Do(func() {
		if err := b.backend.Init(); err != nil {
			b.initErr = fmt.Errorf("ics_init: %w", err)
			return
		}
		b.initialized = true
	})
	if !b.initialized {
		if b.initErr != nil {
			return b.initErr
		}
		return fmt.Errorf("ics_init: library did not report success")
	}
	return nil
}

// ParseFileJSON mirrors ics_parse_file_json: parse one file and return
// its compiler output serialized as JSON.
func (b *Bridge) ParseFileJSON(path string, src []byte, contracts *contract.Registry) ([]byte, error) {
	if err := b.ensureInitialized(); err != nil {
		return nil, err
	}
	out, err := b.backend.ParseFile(path, src, contracts)
	if err != nil {
		return nil, fmt.Errorf("ics_parse_file_json: %w", err)
	}
	return json.Marshal(out)
}

// ParseDirectoryJSON mirrors ics_parse_directory_json: run batch
// discovery and pipeline execution over root and return the aggregate
// summary serialized as JSON.
func (b *Bridge) ParseDirectoryJSON(root string, cfg batch.Config, contracts *contract.Registry) ([]byte, error) {
	if err := b.ensureInitialized(); err != nil {
		return nil, err
	}
	summary, err := b.backend.ParseDirectory(root, cfg, contracts)
	if err != nil {
		return nil, fmt.Errorf("ics_parse_directory_json: %w", err)
	}
	return json.Marshal(summary)
}
