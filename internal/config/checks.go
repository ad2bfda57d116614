package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// checkRoot resolves the scan root from the "root" flag, defaulting to
// the positional argument (or "." if neither is given). Grounded on the
// teacher's checkCommit/checkQuery "flag present -> typed value" idiom.
func checkRoot(fs *pflag.FlagSet) (string, error) {
	if fs.Changed("root") {
		return fs.GetString("root")
	}
	if args := fs.Args(); len(args) > 0 {
		return args[0], nil
	}
	return ".", nil
}

// checkWorkers validates the --workers flag, falling back to
// ESP_BATCH_WORKERS (via LoadConfig) when the flag was left at its
// default and never explicitly set.
func checkWorkers(fs *pflag.FlagSet, env *Config) (int, error) {
	workers, err := fs.GetInt("workers")
	if err != nil {
		return 0, err
	}
	if !fs.Changed("workers") {
		workers = env.BatchWorkers
	}
	if workers < 0 {
		return 0, fmt.Errorf("--workers must be >= 0, got %d", workers)
	}
	return workers, nil
}

// checkTimeoutSeconds validates the --timeout flag, falling back to
// ESP_COLLECTOR_TIMEOUT_SECONDS (via LoadConfig) when the flag was left
// at its default and never explicitly set.
func checkTimeoutSeconds(fs *pflag.FlagSet, env *Config) (int, error) {
	seconds, err := fs.GetInt("timeout")
	if err != nil {
		return 0, err
	}
	if !fs.Changed("timeout") {
		seconds = int(env.CollectorTimeout / time.Second)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("--timeout must be >= 0, got %d", seconds)
	}
	return seconds, nil
}
