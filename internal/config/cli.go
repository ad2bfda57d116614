package config

import (
	"github.com/spf13/pflag"
)

// ScanFlags is the resolved, validated set of flags a scan/batch
// invocation was given. Grounded on the teacher's BuildConfigFromFlags,
// which parsed a raw pflag.FlagSet into a typed config — cobra now owns
// flag parsing (cmd/espc), so this package only binds the flag
// definitions and resolves them into a typed value afterward.
type ScanFlags struct {
	Root           string
	IncludeGlobs   []string
	ExcludeGlobs   []string
	Workers        int
	TimeoutSeconds int
	JSONOutput     bool
	DBPath         string
	EnvFile        string
}

// BindFlags registers every espc flag onto fs, with the same defaults
// LoadConfig falls back to when a flag is left unset.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("root", "", "Root file or directory to scan (default: positional argument, or \".\").")
	fs.StringSlice("include", nil, "Include glob patterns, matched against each file's path relative to --root.")
	fs.StringSlice("exclude", nil, "Exclude glob patterns, matched against each file's path relative to --root.")
	fs.IntP("workers", "w", 0, "Maximum concurrent pipeline runs in batch mode, 0 means no limit.")
	fs.Int("timeout", 5, "Collector command timeout in seconds.")
	fs.BoolP("json", "j", false, "Print results as JSON instead of the human-readable report.")
	fs.String("db", "", "Path to a SQLite database for scan-history persistence; empty disables it.")
	fs.String("env-file", "", "Path to a .env file to overlay onto the process environment before running.")
}

// FromFlags resolves a parsed FlagSet into a validated ScanFlags. Any
// flag left at its default (never explicitly set on the command line)
// falls back to the ESP_* environment overlay read by LoadConfig, so
// that an unset --workers/--timeout/--json/--db still picks up
// ESP_BATCH_WORKERS/ESP_COLLECTOR_TIMEOUT_SECONDS/ESP_JSON_OUTPUT/
// ESP_DB_PATH instead of silently ignoring them.
func FromFlags(fs *pflag.FlagSet) (*ScanFlags, error) {
	env := LoadConfig()

	root, err := checkRoot(fs)
	if err != nil {
		return nil, err
	}
	workers, err := checkWorkers(fs, env)
	if err != nil {
		return nil, err
	}
	timeout, err := checkTimeoutSeconds(fs, env)
	if err != nil {
		return nil, err
	}
	include, err := fs.GetStringSlice("include")
	if err != nil {
		return nil, err
	}
	exclude, err := fs.GetStringSlice("exclude")
	if err != nil {
		return nil, err
	}
	jsonOutput, err := fs.GetBool("json")
	if err != nil {
		return nil, err
	}
	if !fs.Changed("json") {
		jsonOutput = env.JSONOutput
	}
	dbPath, err := fs.GetString("db")
	if err != nil {
		return nil, err
	}
	if !fs.Changed("db") {
		dbPath = env.DBPath
	}
	envFile, err := fs.GetString("env-file")
	if err != nil {
		return nil, err
	}

	return &ScanFlags{
		Root:           root,
		IncludeGlobs:   include,
		ExcludeGlobs:   exclude,
		Workers:        workers,
		TimeoutSeconds: timeout,
		JSONOutput:     jsonOutput,
		DBPath:         dbPath,
		EnvFile:        envFile,
	}, nil
}
