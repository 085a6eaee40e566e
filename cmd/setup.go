package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/app"
	"github.com/abhisek/studyloop/internal/config"
	"github.com/abhisek/studyloop/internal/logger"
	"github.com/abhisek/studyloop/internal/tracing"
)

// runtime is everything a command needs once flags are parsed.
type runtime struct {
	cfg      *config.Config
	log      *zap.Logger
	shutdown tracing.ShutdownFunc
}

// loadRuntime reads configuration and sets up logging and tracing. mutate
// applies command flag overrides; the result is validated again.
func loadRuntime(cmd *cobra.Command, mutate ...func(*config.Config)) (*runtime, error) {
	configFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(envFile, configFile)
	if err != nil {
		return nil, err
	}
	for _, fn := range mutate {
		fn(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := newLogger(cfg, verbose)
	if err != nil {
		return nil, err
	}

	tcfg := tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		File:        cfg.Tracing.File,
		Environment: cfg.Env,
		Version:     version,
	}
	if tcfg.Enabled && tcfg.Endpoint == "" && tcfg.File == "" {
		dir, err := config.DataDir()
		if err != nil {
			return nil, err
		}
		tcfg.File = filepath.Join(dir, "traces.json")
	}
	shutdown, err := tracing.Init(cmd.Context(), log, tcfg)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	return &runtime{cfg: cfg, log: log, shutdown: shutdown}, nil
}

func newLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	if verbose {
		return logger.New(cfg.Env)
	}
	path, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	return logger.NewFile(path, cfg.Env)
}

// close flushes spans and logs.
func (r *runtime) close() {
	if err := r.shutdown(context.Background()); err != nil {
		r.log.Warn("tracing shutdown failed", zap.Error(err))
	}
	_ = r.log.Sync()
}

// withDeps loads the runtime, wires the application and calls fn.
func withDeps(cmd *cobra.Command, fn func(ctx context.Context, d *app.Deps) error, mutate ...func(*config.Config)) error {
	rt, err := loadRuntime(cmd, mutate...)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx := cmd.Context()
	deps, err := app.Build(ctx, rt.cfg, rt.log)
	if err != nil {
		return err
	}
	defer deps.Close()

	return fn(ctx, deps)
}
