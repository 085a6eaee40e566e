package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// New returns a development logger for local and dev environments and a
// production JSON logger otherwise. Output goes to stderr.
func New(env string) (*zap.Logger, error) {
	if isProduction(env) {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// NewFile writes logs to path instead of stderr so the TUI owns the
// terminal. The parent directory is created when missing.
func NewFile(path, env string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	cfg := zap.NewDevelopmentConfig()
	if isProduction(env) {
		cfg = zap.NewProductionConfig()
	}
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	// No stack traces in the file; warn is used for degraded-mode failures.
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func isProduction(env string) bool {
	switch env {
	case "", "local", "dev":
		return false
	}
	return true
}
