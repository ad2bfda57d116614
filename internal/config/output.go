package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/espsec/espc/internal/batch"
	"github.com/espsec/espc/internal/pipeline"
)

// PrintScanResult reports one file's pipeline Output, either as the
// cargo-style grouped diagnostic text or as JSON, mirroring the
// teacher's PrintResultCLI success/failure/JSON branches.
func PrintScanResult(out *pipeline.Output, jsonOutput bool) {
	if jsonOutput {
		encoded, err := json.Marshal(out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error converting result to JSON: %v\n", err)
			return
		}
		fmt.Println(string(encoded))
		return
	}

	if out.Status == pipeline.StatusSuccess {
		fmt.Printf("✓ %s — clean\n", out.File)
		return
	}

	fmt.Printf("✗ %s — %s (%d diagnostics)\n", out.File, out.Status, len(out.Diagnostics))
	for _, d := range out.Diagnostics {
		fmt.Println("  " + d.String())
	}
}

// PrintBatchSummary reports a directory run's aggregate summary.
func PrintBatchSummary(summary *batch.Summary, jsonOutput bool) {
	if jsonOutput {
		encoded, err := json.Marshal(summary)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error converting summary to JSON: %v\n", err)
			return
		}
		fmt.Println(string(encoded))
		return
	}

	for _, out := range summary.Results {
		PrintScanResult(out, false)
	}
	fmt.Printf("\n%s: processed=%d failed=%d\n", summary.Root, summary.Processed, summary.Failed)
}

// PrintFatal reports a fatal, pre-pipeline error (bad flags, unreadable
// file, and the like) on stderr, or as a JSON error object when
// jsonOutput is set.
func PrintFatal(err error, jsonOutput bool) {
	if jsonOutput {
		encoded, marshalErr := json.Marshal(struct {
			Error string `json:"error"`
		}{Error: err.Error()})
		if marshalErr != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		fmt.Println(string(encoded))
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
