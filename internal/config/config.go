// Package config implements the runtime preference layer, build-time
// profile constants, CLI flag binding, and result printing shared by
// the espc command (§6 "external interfaces").
//
// Grounded on the teacher's internal/config/config.go environment-
// variable-driven Config/LoadConfig shape, renamed from morfx's
// encryption/retention preferences to ESP's own preference set: lexical
// tab-width tolerance, collector timeout override, batch worker count,
// output destinations.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the runtime preferences every espc invocation reads.
type Config struct {
	LexTabWidth      int           // tab-stop width used when rendering column numbers in diagnostics
	CollectorTimeout time.Duration // overrides internal/collect.DefaultCommandTimeout when > 0
	BatchWorkers     int           // 0 means no limit on concurrent pipeline runs
	JSONOutput       bool
	DBPath           string // empty disables internal/store scan-history persistence
}

// LoadConfig reads ESP_* environment variables, applying the same
// defaults the teacher applies for its own MORFX_* preferences.
func LoadConfig() *Config {
	cfg := &Config{
		LexTabWidth:      4,
		CollectorTimeout: 5 * time.Second,
		BatchWorkers:     0,
		JSONOutput:       false,
		DBPath:           os.Getenv("ESP_DB_PATH"),
	}

	if tabWidthStr := os.Getenv("ESP_LEX_TAB_WIDTH"); tabWidthStr != "" {
		if tabWidth, err := strconv.Atoi(tabWidthStr); err == nil && tabWidth > 0 {
			cfg.LexTabWidth = tabWidth
		}
	}

	if timeoutStr := os.Getenv("ESP_COLLECTOR_TIMEOUT_SECONDS"); timeoutStr != "" {
		if seconds, err := strconv.Atoi(timeoutStr); err == nil && seconds > 0 {
			cfg.CollectorTimeout = time.Duration(seconds) * time.Second
		}
	}

	if workersStr := os.Getenv("ESP_BATCH_WORKERS"); workersStr != "" {
		if workers, err := strconv.Atoi(workersStr); err == nil && workers >= 0 {
			cfg.BatchWorkers = workers
		}
	}

	if jsonStr := os.Getenv("ESP_JSON_OUTPUT"); jsonStr != "" {
		if json, err := strconv.ParseBool(jsonStr); err == nil {
			cfg.JSONOutput = json
		}
	}

	return cfg
}
