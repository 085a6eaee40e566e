// Package config loads StudyLoop settings from an optional .env file, an
// optional studyloop.yaml and STUDYLOOP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/studyloop/internal/extract"
	"github.com/abhisek/studyloop/internal/llm"
	"github.com/abhisek/studyloop/internal/questiongen"
)

const (
	EnvLocal      = "local"
	EnvProduction = "production"

	localEndpoint  = "http://localhost:8000"
	hostedEndpoint = "https://andevs-studyloop.hf.space"
)

// Generation backends.
const (
	BackendRemote = "remote"
	BackendLLM    = "llm"
	BackendMock   = "mock"
)

// Storage backends.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory" // nothing survives the process
)

// Config holds application configuration.
type Config struct {
	Env        string     `mapstructure:"env"` // local, dev, production
	API        API        `mapstructure:"api"`
	Generation Generation `mapstructure:"generation"`
	Storage    Storage    `mapstructure:"storage"`
	Cache      Cache      `mapstructure:"cache"`
	Upload     Upload     `mapstructure:"upload"`
	Log        Log        `mapstructure:"log"`
	Tracing    Tracing    `mapstructure:"tracing"`
	LLM        llm.Config `mapstructure:"llm"`
}

// API is the hosted question service.
type API struct {
	Endpoint        string        `mapstructure:"endpoint"`
	GenerateTimeout time.Duration `mapstructure:"generate_timeout"`
	MoreTimeout     time.Duration `mapstructure:"more_timeout"`
}

type Generation struct {
	Backend        string   `mapstructure:"backend"` // remote, llm or mock
	NumQuestions   int      `mapstructure:"num_questions"`
	QuestionTypes  []string `mapstructure:"question_types"`
	Difficulty     string   `mapstructure:"difficulty"`
	AlwaysFallback bool     `mapstructure:"always_fallback"` // mock questions on any failure
}

type Storage struct {
	Backend   string `mapstructure:"backend"` // sqlite, postgres, redis or memory
	DSN       string `mapstructure:"dsn"`     // file path for sqlite, URL for postgres
	RedisAddr string `mapstructure:"redis_addr"`
}

type Cache struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type Upload struct {
	MaxBytes    int64 `mapstructure:"max_bytes"`
	MinChars    int   `mapstructure:"min_chars"`
	MaxPDFPages int   `mapstructure:"max_pdf_pages"`
}

type Log struct {
	File string `mapstructure:"file"`
}

type Tracing struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"` // OTLP/HTTP host:port; empty writes spans to File
	File     string `mapstructure:"file"`
	Insecure bool   `mapstructure:"insecure"`
}

// Load reads configuration. envFile and configFile are optional; empty
// strings use ".env" and "studyloop.yaml" in the working directory and
// ignore them when missing.
func Load(envFile, configFile string) (*Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("STUDYLOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("studyloop")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Endpoint and fallback policy depend on the environment unless set.
	if cfg.API.Endpoint == "" {
		cfg.API.Endpoint = hostedEndpoint
		if cfg.IsLocal() {
			cfg.API.Endpoint = localEndpoint
		}
	}
	if !v.IsSet("generation.always_fallback") {
		cfg.Generation.AlwaysFallback = cfg.IsLocal()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvLocal)

	v.SetDefault("api.endpoint", "")
	v.SetDefault("api.generate_timeout", "60s")
	v.SetDefault("api.more_timeout", "30s")

	v.SetDefault("generation.backend", BackendRemote)
	v.SetDefault("generation.num_questions", 10)
	v.SetDefault("generation.question_types", []string{"multiple_choice", "short_answer"})
	v.SetDefault("generation.difficulty", "mixed")
	// No default: the fallback policy follows env unless set explicitly.
	_ = v.BindEnv("generation.always_fallback")

	v.SetDefault("storage.backend", StorageSQLite)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.redis_addr", "")

	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("upload.max_bytes", 5<<20)
	v.SetDefault("upload.min_chars", 50)
	v.SetDefault("upload.max_pdf_pages", 20)

	v.SetDefault("log.file", "")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.file", "")
	v.SetDefault("tracing.insecure", false)

	d := llm.DefaultConfig()
	v.SetDefault("llm.provider", d.Provider)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", d.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)
	v.SetDefault("llm.timeout", d.Timeout)
}

// Validate rejects unknown backends and unusable limits.
func (c *Config) Validate() error {
	switch c.Generation.Backend {
	case BackendRemote, BackendLLM, BackendMock:
	default:
		return fmt.Errorf("unknown generation backend %q", c.Generation.Backend)
	}
	switch c.Storage.Backend {
	case StorageSQLite, StoragePostgres, StorageMemory:
	case StorageRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("STUDYLOOP_STORAGE_REDIS_ADDR is required for the redis storage backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == StoragePostgres && c.Storage.DSN == "" {
		return errors.New("STUDYLOOP_STORAGE_DSN is required for the postgres storage backend")
	}
	if c.Generation.NumQuestions <= 0 {
		return fmt.Errorf("generation.num_questions must be positive, got %d", c.Generation.NumQuestions)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes)
	}
	return nil
}

// IsLocal reports whether the app runs against a local development setup.
func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal || c.Env == "dev"
}

// GenerateOptions returns the options sent with each generation request.
func (c *Config) GenerateOptions() questiongen.Options {
	return questiongen.Options{
		NumQuestions:  c.Generation.NumQuestions,
		QuestionTypes: c.Generation.QuestionTypes,
		Difficulty:    c.Generation.Difficulty,
	}
}

func (c *Config) HTTPConfig() questiongen.HTTPConfig {
	return questiongen.HTTPConfig{
		Endpoint:        c.API.Endpoint,
		GenerateTimeout: c.API.GenerateTimeout,
		MoreTimeout:     c.API.MoreTimeout,
	}
}

func (c *Config) UploadLimits() extract.Limits {
	return extract.Limits{
		MaxBytes:    c.Upload.MaxBytes,
		MinChars:    c.Upload.MinChars,
		MaxPDFPages: c.Upload.MaxPDFPages,
	}
}

// DataDir is where StudyLoop keeps its database and logs.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "studyloop"), nil
}

// LogPath returns the configured log file or the default under DataDir.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "studyloop.log"), nil
}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "studyloop"), nil
}
