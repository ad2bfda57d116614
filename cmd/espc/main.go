// Command espc compiles and scans ESP policy files: given a file path
// it runs the seven-stage pipeline and executes every criterion against
// the local host; given a directory path it discovers every `.esp` file
// under it and does the same concurrently (§6 "external interfaces").
//
// Grounded on the teacher's demo/cmd/main.go cobra root-command wiring
// (the only cobra usage in the retrieved corpus), generalized from a
// demo-scenario runner to espc's file-or-directory entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/espsec/espc/internal/batch"
	"github.com/espsec/espc/internal/config"
	"github.com/espsec/espc/internal/contract"
	"github.com/espsec/espc/internal/exec"
	"github.com/espsec/espc/internal/pipeline"
	"github.com/espsec/espc/internal/store"
)

// Exit codes per §6: 0 all clean, 1 any compliance failure, 2 usage or
// configuration error, 3 pipeline error.
const (
	exitClean        = 0
	exitNonCompliant = 1
	exitUsageError   = 2
	exitPipelineErr  = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	exitCode := exitClean

	rootCmd := &cobra.Command{
		Use:           "espc [path]",
		Short:         "Compile and scan ESP endpoint-state policy files",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, positional []string) error {
			code, err := runScan(cmd, positional)
			exitCode = code
			return err
		},
	}
	config.BindFlags(rootCmd.Flags())
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if exitCode == exitClean {
			exitCode = exitUsageError
		}
	}
	return exitCode
}

func runScan(cmd *cobra.Command, positional []string) (int, error) {
	flags, err := config.FromFlags(cmd.Flags())
	if err != nil {
		return exitUsageError, err
	}
	if len(positional) > 0 {
		flags.Root = positional[0]
	}

	if err := config.LoadDotEnv(flags.EnvFile); err != nil {
		return exitUsageError, err
	}

	contracts, err := buildContracts()
	if err != nil {
		return exitPipelineErr, err
	}
	timeout := time.Duration(flags.TimeoutSeconds) * time.Second
	collectors := buildCollectors(timeout)
	tabWidth := config.LoadConfig().LexTabWidth

	info, err := os.Stat(flags.Root)
	if err != nil {
		return exitUsageError, err
	}

	ctx := context.Background()
	if info.IsDir() {
		return runBatchMode(ctx, flags, contracts, collectors, tabWidth)
	}
	return runFileMode(ctx, flags, contracts, collectors, tabWidth)
}

func runFileMode(ctx context.Context, flags *config.ScanFlags, contracts *contract.Registry, collectors exec.Registry, tabWidth int) (int, error) {
	result, err := scanFile(ctx, flags.Root, contracts, collectors, tabWidth)
	if err != nil {
		return exitPipelineErr, err
	}

	config.PrintScanResult(result.Output, flags.JSONOutput)
	if err := writeJSONFile("scan_result.json", result); err != nil {
		return exitPipelineErr, err
	}

	if result.Output.Status == pipeline.StatusError {
		return exitPipelineErr, nil
	}
	if result.AnyFailure() {
		return exitNonCompliant, nil
	}
	return exitClean, nil
}

func runBatchMode(ctx context.Context, flags *config.ScanFlags, contracts *contract.Registry, collectors exec.Registry, tabWidth int) (int, error) {
	cfg := batch.Config{
		IncludeGlobs: flags.IncludeGlobs,
		ExcludeGlobs: flags.ExcludeGlobs,
		Workers:      flags.Workers,
		TabWidth:     tabWidth,
	}
	summary, err := batch.Run(flags.Root, cfg, contracts)
	if err != nil {
		return exitPipelineErr, err
	}

	anyFailure := summary.Failed > 0
	for _, out := range summary.Results {
		if out.Tree == nil {
			continue
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
			finding := exec.Evaluate(ctx, crit, obj, state, collectors)
			if finding.Err != nil || !finding.Pass {
				anyFailure = true
			}
		}
	}

	config.PrintBatchSummary(summary, flags.JSONOutput)
	if err := writeJSONFile("batch_scan_results.json", summary); err != nil {
		return exitPipelineErr, err
	}

	if flags.DBPath != "" {
		db, err := store.Connect(flags.DBPath, false)
		if err != nil {
			return exitPipelineErr, err
		}
		if _, err := store.RecordSummary(db, summary); err != nil {
			return exitPipelineErr, err
		}
	}

	if anyFailure {
		return exitNonCompliant, nil
	}
	return exitClean, nil
}

func writeJSONFile(path string, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return os.WriteFile(path, encoded, 0o644)
}
