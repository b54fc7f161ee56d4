// Package logging configures the process-wide logrus logger
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/thenoetrevino/tablero/internal/config"
)

// Init applies level, format and output from cfg to the standard logger
// and returns it. With a file configured, logs are appended there instead
// of stderr; the returned closer releases it.
func Init(cfg config.LoggingConfig) (*log.Logger, io.Closer, error) {
	logger := log.StandardLogger()
	closer, err := Configure(logger, cfg)
	if err != nil {
		return nil, nil, err
	}
	return logger, closer, nil
}

// Configure applies cfg to logger
func Configure(logger *log.Logger, cfg config.LoggingConfig) (io.Closer, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	if cfg.File == "" {
		logger.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, err
	}
	// Open log file in append mode
	file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(file)
	return file, nil
}
