package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/imgresolve/internal/source/openai"
	"github.com/davidbz/imgresolve/internal/source/pexels"
	"github.com/davidbz/imgresolve/internal/source/unsplash"
)

// Config represents the resolver configuration.
type Config struct {
	Server    ServerConfig
	CORS      CORSConfig
	Cache     CacheConfig
	Acquire   AcquireConfig
	Validate  ValidateConfig
	RateLimit RateLimitConfig
	Paths     PathsConfig
	Catalog   CatalogConfig
	Pipeline  PipelineConfig
	Ledger    LedgerConfig
	Unsplash  unsplash.Config
	Pexels    pexels.Config
	OpenAI    openai.Config
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"120"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// CacheConfig controls both cache tiers and the sweeper.
type CacheConfig struct {
	Dir           string        `env:"CACHE_DIR"            envDefault:".cache/images"`
	MemoryItems   int           `env:"CACHE_MEMORY_ITEMS"   envDefault:"100"`
	MaxAge        time.Duration `env:"CACHE_MAX_AGE"        envDefault:"168h"`
	MaxSizeBytes  int64         `env:"CACHE_MAX_SIZE_BYTES" envDefault:"524288000"`
	SweepInterval time.Duration `env:"CACHE_SWEEP_INTERVAL" envDefault:"1h"`
	LockStripes   int           `env:"CACHE_LOCK_STRIPES"   envDefault:"64"`
}

// AcquireConfig controls downloads.
type AcquireConfig struct {
	Timeout      time.Duration `env:"ACQUIRE_TIMEOUT"       envDefault:"30s"`
	MaxRetries   int           `env:"ACQUIRE_MAX_RETRIES"   envDefault:"3"`
	MaxBytes     int64         `env:"ACQUIRE_MAX_BYTES"     envDefault:"10485760"`
	MaxRedirects int           `env:"ACQUIRE_MAX_REDIRECTS" envDefault:"5"`
	BackoffBase  time.Duration `env:"ACQUIRE_BACKOFF_BASE"  envDefault:"1s"`
	UserAgent    string        `env:"ACQUIRE_USER_AGENT"    envDefault:"imgresolve/1.0"`
}

// ValidateConfig controls probes.
type ValidateConfig struct {
	Timeout       time.Duration `env:"VALIDATE_TIMEOUT"         envDefault:"5s"`
	MinLocalBytes int64         `env:"VALIDATE_MIN_LOCAL_BYTES" envDefault:"5120"`
	SniffBytes    int           `env:"VALIDATE_SNIFF_BYTES"     envDefault:"200"`
}

// RateLimitConfig holds the per-source sliding windows.
type RateLimitConfig struct {
	Window            time.Duration  `env:"RATE_LIMIT_WINDOW"             envDefault:"1h"`
	Limits            map[string]int `env:"RATE_LIMITS"                   envDefault:"unsplash:50,pexels:50,manufacturer:10,openai:10" envKeyValSeparator:":" envSeparator:","`
	AllowUnconfigured bool           `env:"RATE_LIMIT_ALLOW_UNCONFIGURED" envDefault:"false"`
	RedisAddr         string         `env:"RATE_LIMIT_REDIS_ADDR"`
	RedisPrefix       string         `env:"RATE_LIMIT_REDIS_PREFIX"       envDefault:"imgresolve:ratelimit:"`
}

// PathsConfig locates the managed asset tree and the mapping table.
type PathsConfig struct {
	PublicDir           string  `env:"PATHS_PUBLIC_DIR"           envDefault:"public"`
	ImagePrefix         string  `env:"PATHS_IMAGE_PREFIX"         envDefault:"/images"`
	MappingTable        string  `env:"PATHS_MAPPING_TABLE"        envDefault:".cache/image-mappings.json"`
	ContentDir          string  `env:"PATHS_CONTENT_DIR"          envDefault:"content"`
	SimilarityThreshold float64 `env:"PATHS_SIMILARITY_THRESHOLD" envDefault:"0.6"`
}

// CatalogConfig points at an optional catalog file replacing the embedded one.
type CatalogConfig struct {
	File string `env:"CATALOG_FILE"`
}

// PipelineConfig tunes the orchestrator.
type PipelineConfig struct {
	Concurrency     int  `env:"PIPELINE_CONCURRENCY"      envDefault:"8"`
	DelegateURL     bool `env:"PIPELINE_DELEGATE_URL"     envDefault:"false"`
	AvoidDuplicates bool `env:"PIPELINE_AVOID_DUPLICATES" envDefault:"false"`
}

// LedgerConfig locates the usage ledger database.
type LedgerConfig struct {
	Path    string `env:"LEDGER_PATH"    envDefault:".cache/usage.db"`
	Enabled bool   `env:"LEDGER_ENABLED" envDefault:"true"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*CacheConfig
	*AcquireConfig
	*ValidateConfig
	*RateLimitConfig
	*PathsConfig
	*CatalogConfig
	*PipelineConfig
	*LedgerConfig

	Unsplash *unsplash.Config
	Pexels   *pexels.Config
	OpenAI   *openai.Config
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		Out:             dig.Out{},
		ServerConfig:    &cfg.Server,
		CORSConfig:      &cfg.CORS,
		CacheConfig:     &cfg.Cache,
		AcquireConfig:   &cfg.Acquire,
		ValidateConfig:  &cfg.Validate,
		RateLimitConfig: &cfg.RateLimit,
		PathsConfig:     &cfg.Paths,
		CatalogConfig:   &cfg.Catalog,
		PipelineConfig:  &cfg.Pipeline,
		LedgerConfig:    &cfg.Ledger,
		Unsplash:        &cfg.Unsplash,
		Pexels:          &cfg.Pexels,
		OpenAI:          &cfg.OpenAI,
	}
}
