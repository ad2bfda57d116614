package config

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espsec/espc/internal/batch"
	"github.com/espsec/espc/internal/diag"
	"github.com/espsec/espc/internal/pipeline"
)

func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	f()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestPrintScanResult_SuccessIsOneLine(t *testing.T) {
	out := captureStdout(t, func() {
		PrintScanResult(&pipeline.Output{File: "clean.esp", Status: pipeline.StatusSuccess}, false)
	})
	assert.Contains(t, out, "clean.esp")
	assert.Contains(t, out, "clean")
}

func TestPrintScanResult_FailureListsDiagnostics(t *testing.T) {
	result := &pipeline.Output{
		File:   "bad.esp",
		Status: pipeline.StatusError,
		Diagnostics: []diag.Diagnostic{
			{Kind: diag.LexError, Severity: diag.SeverityError, Message: "unterminated string literal"},
		},
	}
	out := captureStdout(t, func() { PrintScanResult(result, false) })
	assert.Contains(t, out, "bad.esp")
	assert.Contains(t, out, "unterminated string literal")
}

func TestPrintScanResult_JSONModeEmitsValidJSON(t *testing.T) {
	result := &pipeline.Output{File: "clean.esp", Status: pipeline.StatusSuccess}
	out := captureStdout(t, func() { PrintScanResult(result, true) })

	var decoded pipeline.Output
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "clean.esp", decoded.File)
}

func TestPrintBatchSummary_HumanModeListsEachFile(t *testing.T) {
	summary := &batch.Summary{
		Root:      "/policies",
		Processed: 1,
		Failed:    1,
		Results: []*pipeline.Output{
			{File: "good.esp", Status: pipeline.StatusSuccess},
			{File: "bad.esp", Status: pipeline.StatusError},
		},
	}
	out := captureStdout(t, func() { PrintBatchSummary(summary, false) })
	assert.True(t, strings.Contains(out, "good.esp"))
	assert.True(t, strings.Contains(out, "bad.esp"))
	assert.Contains(t, out, "processed=1 failed=1")
}

func TestPrintFatal_JSONModeEmitsErrorObject(t *testing.T) {
	out := captureStdout(t, func() { PrintFatal(errors.New("bad flags"), true) })
	var decoded struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "bad flags", decoded.Error)
}
