package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv overlays path's KEY=VALUE pairs onto the process
// environment, ahead of LoadConfig/LoadBuildInfo reading it. A missing
// file is not an error — the .env overlay is optional, matching the
// teacher's own env-or-defaults posture in config.LoadConfig.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
