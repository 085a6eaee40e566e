package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/cache"
	"github.com/abhisek/studyloop/internal/config"
	"github.com/abhisek/studyloop/internal/extract"
	"github.com/abhisek/studyloop/internal/llm"
	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/session"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/upload"
)

// redisPrefix namespaces StudyLoop keys in a shared Redis.
const redisPrefix = "studyloop:"

// Deps is the wired object graph shared by the TUI and the CLI commands.
type Deps struct {
	Config    *config.Config
	Log       *zap.Logger
	Engine    *session.Engine
	Extractor *extract.Extractor
	Uploader  *upload.Service
	// EventRepo is the LLM request log.
	EventRepo store.EventRepo
	// Stages receives upload progress; sends never block.
	Stages chan upload.Stage

	closers []func() error
}

// Build opens storage, selects the question generator and wires the
// session engine.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Deps, error) {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Deps{Config: cfg, Log: log, Stages: make(chan upload.Stage, 4)}

	kv, err := d.openStorage(ctx)
	if err != nil {
		d.Close()
		return nil, err
	}

	gen, err := d.generator(ctx)
	if err != nil {
		d.Close()
		return nil, err
	}

	syncer := cache.New(kv, cache.WithTTL(cfg.Cache.TTL), cache.WithLogger(log))
	d.Engine = session.New(gen,
		session.WithCache(syncer),
		session.WithLogger(log),
		session.WithGenerateOptions(cfg.GenerateOptions()),
		session.WithAlwaysFallback(cfg.Generation.AlwaysFallback),
	)
	d.Extractor = extract.New(cfg.UploadLimits(), extract.WithLogger(log))
	d.Uploader = upload.New(d.Engine, d.Extractor,
		upload.WithLogger(log),
		upload.WithProgress(d.reportStage),
	)
	return d, nil
}

func (d *Deps) reportStage(s upload.Stage) {
	select {
	case d.Stages <- s:
	default:
	}
}

// OpenStore opens the SQL database selected by the storage config. The
// redis backend keeps its request log in the default SQLite file.
func OpenStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	if cfg.Storage.Backend == config.StoragePostgres {
		st, err := store.Open(ctx, store.DriverPostgres, cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return st, nil
	}

	var path string
	if cfg.Storage.Backend == config.StorageSQLite {
		path = cfg.Storage.DSN
	}
	if path == "" {
		var err error
		if path, err = store.DefaultDBPath(); err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	} else if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create DB dir: %w", err)
	}

	st, err := store.Open(ctx, store.DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return st, nil
}

// openStorage returns the snapshot store and sets up the request log. The
// memory backend has no request log.
func (d *Deps) openStorage(ctx context.Context) (cache.Storage, error) {
	if d.Config.Storage.Backend == config.StorageMemory {
		return cache.NewMemoryStorage(), nil
	}

	st, err := OpenStore(ctx, d.Config)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, st.Close)
	d.EventRepo = st.EventRepo()

	if d.Config.Storage.Backend != config.StorageRedis {
		return st.KV(), nil
	}
	kv, err := store.OpenRedis(ctx, d.Config.Storage.RedisAddr, redisPrefix, d.Config.Cache.TTL)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, kv.Close)
	return kv, nil
}

func (d *Deps) generator(ctx context.Context) (questiongen.Generator, error) {
	cfg := d.Config
	switch cfg.Generation.Backend {
	case config.BackendMock:
		return questiongen.MockGenerator{}, nil

	case config.BackendLLM:
		llmCfg := cfg.LLM
		if err := llmCfg.Validate(); err != nil {
			discovered, ok := llm.DiscoverConfig(llmCfg)
			if !ok {
				return nil, fmt.Errorf("LLM provider not configured: %w", err)
			}
			llmCfg = discovered
		}
		provider, err := llm.NewProvider(ctx, llmCfg, d.EventRepo, d.Log)
		if err != nil {
			return nil, fmt.Errorf("create LLM provider: %w", err)
		}
		d.Log.Info("using LLM question generator", zap.String("provider", llmCfg.Provider), zap.String("model", provider.ModelID()))
		return questiongen.NewLLMGenerator(provider, questiongen.DefaultLLMConfig(), d.Log), nil
	}

	d.Log.Info("using remote question service", zap.String("endpoint", cfg.API.Endpoint))
	return questiongen.NewHTTPClient(cfg.HTTPConfig(), &http.Client{}, d.Log), nil
}

// Close releases storage handles in reverse order of opening.
func (d *Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
