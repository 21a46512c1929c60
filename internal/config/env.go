package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// envFiles are loaded in order; variables already set are never overridden.
var envFiles = []string{".env", ".env.local"}

func loadEnvFiles() {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("failed to load env file", "file", f, "error", err)
			continue
		}
		slog.Debug("loaded env file", "file", f)
	}
}
