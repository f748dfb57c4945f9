package main

import (
	"encoding/json"
	"io"

	"lead-hunter/internal/common/config"
	"lead-hunter/internal/common/logger"
)

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromFile(path)
}

func newLogger(cfg *config.Config) logger.Logger {
	// Logs go to stderr so command output stays machine-readable.
	return logger.NewStructured(cfg.Logging.Level, "console")
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
