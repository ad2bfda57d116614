package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// BuildInfo holds the compile-time constants a packaged binary carries:
// which profile it was built for and where its config directory lives.
// Grounded on esp_compiler/src/config/mod.rs's build_info module.
type BuildInfo struct {
	Profile   string `toml:"profile"`
	ConfigDir string `toml:"config_dir"`
	Version   string `toml:"version"`
}

// LoadBuildInfo resolves ESP_BUILD_PROFILE (default "development") and
// ESP_CONFIG_DIR (default "config"), then decodes an optional
// <ConfigDir>/<Profile>.toml table layered on top of those two defaults.
// A missing TOML file is not an error — the two env-derived fields are
// already a complete BuildInfo on their own.
func LoadBuildInfo() (*BuildInfo, error) {
	info := &BuildInfo{
		Profile:   "development",
		ConfigDir: "config",
	}
	if profile := os.Getenv("ESP_BUILD_PROFILE"); profile != "" {
		info.Profile = profile
	}
	if dir := os.Getenv("ESP_CONFIG_DIR"); dir != "" {
		info.ConfigDir = dir
	}

	path := filepath.Join(info.ConfigDir, info.Profile+".toml")
	if _, err := toml.DecodeFile(path, info); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return info, nil
}
