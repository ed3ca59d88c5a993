package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/imgresolve/internal/acquire"
	"github.com/davidbz/imgresolve/internal/cache"
	"github.com/davidbz/imgresolve/internal/catalog"
	"github.com/davidbz/imgresolve/internal/clock"
	"github.com/davidbz/imgresolve/internal/config"
	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/http"
	"github.com/davidbz/imgresolve/internal/http/middleware"
	"github.com/davidbz/imgresolve/internal/ledger"
	"github.com/davidbz/imgresolve/internal/observability"
	"github.com/davidbz/imgresolve/internal/pathmap"
	"github.com/davidbz/imgresolve/internal/ratelimit"
	redislimit "github.com/davidbz/imgresolve/internal/ratelimit/redis"
	"github.com/davidbz/imgresolve/internal/scan"
	"github.com/davidbz/imgresolve/internal/source"
	"github.com/davidbz/imgresolve/internal/source/manufacturer"
	"github.com/davidbz/imgresolve/internal/source/openai"
	"github.com/davidbz/imgresolve/internal/source/pexels"
	"github.com/davidbz/imgresolve/internal/source/registry"
	"github.com/davidbz/imgresolve/internal/source/unsplash"
	"github.com/davidbz/imgresolve/internal/validate"
)

const redisPingTimeout = 2 * time.Second

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	name, args := os.Args[1], os.Args[2:]

	cmd, ok := commands[name]
	if !ok {
		usage()
		os.Exit(2)
	}

	container := buildContainer()
	if err := cmd(container, args); err != nil {
		log.Fatalf("%s failed: %v", name, err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: imgresolve <serve|resolve|map|sweep|audit> [flags]")
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(func(logger *zap.Logger) domain.EventPublisher {
		return observability.NewEventBus(logger)
	}); err != nil {
		log.Fatalf("Failed to provide event bus: %v", err)
	}
	if err := container.Provide(clock.Real); err != nil {
		log.Fatalf("Failed to provide clock: %v", err)
	}

	// Reference data
	if err := container.Provide(provideCatalog); err != nil {
		log.Fatalf("Failed to provide catalog: %v", err)
	}

	// Pipeline components
	if err := container.Provide(func(cfg *config.ValidateConfig, paths *config.PathsConfig) domain.Prober {
		return validate.NewValidator(cfg, validate.WithLocalRoot(paths.PublicDir))
	}); err != nil {
		log.Fatalf("Failed to provide validator: %v", err)
	}
	if err := container.Provide(func(cfg *config.AcquireConfig, clk clock.Clock) domain.Acquirer {
		return acquire.NewAcquirer(cfg, acquire.WithClock(clk))
	}); err != nil {
		log.Fatalf("Failed to provide acquirer: %v", err)
	}
	if err := container.Provide(func(
		cfg *config.CacheConfig,
		clk clock.Clock,
		events domain.EventPublisher,
	) (*cache.Store, error) {
		return cache.NewStore(cfg, cache.WithClock(clk), cache.WithEvents(events))
	}); err != nil {
		log.Fatalf("Failed to provide cache: %v", err)
	}
	if err := container.Provide(func(s *cache.Store) domain.Cache { return s }); err != nil {
		log.Fatalf("Failed to provide cache interface: %v", err)
	}
	if err := container.Provide(provideRateLimiter); err != nil {
		log.Fatalf("Failed to provide rate limiter: %v", err)
	}

	// Provider Registry
	if err := container.Provide(func() domain.ProviderRegistry {
		return registry.NewRegistry()
	}); err != nil {
		log.Fatalf("Failed to provide registry: %v", err)
	}

	// Register providers with registry (invoked for side effects). Order
	// within a tier is the order they are consulted.
	if err := container.Invoke(registerProviders); err != nil {
		log.Fatalf("Failed to register providers: %v", err)
	}

	if err := container.Provide(func(
		cat *catalog.Catalog,
		reg domain.ProviderRegistry,
		limiter domain.RateLimiter,
		prober domain.Prober,
	) domain.SourceResolver {
		return source.NewResolver(cat, reg, limiter, prober)
	}); err != nil {
		log.Fatalf("Failed to provide source resolver: %v", err)
	}

	// Path mapping
	if err := container.Provide(func(
		cfg *config.PathsConfig,
		cat *catalog.Catalog,
		prober domain.Prober,
		clk clock.Clock,
		events domain.EventPublisher,
	) *pathmap.Mapper {
		return pathmap.NewMapper(cfg, cat, prober, pathmap.WithClock(clk), pathmap.WithEvents(events))
	}); err != nil {
		log.Fatalf("Failed to provide path mapper: %v", err)
	}
	if err := container.Provide(func(cfg *config.PathsConfig) *scan.Scanner {
		return scan.NewScanner(cfg.ImagePrefix)
	}); err != nil {
		log.Fatalf("Failed to provide scanner: %v", err)
	}

	// Usage ledger
	if err := container.Provide(provideLedger); err != nil {
		log.Fatalf("Failed to provide ledger: %v", err)
	}

	// Domain Services
	if err := container.Provide(provideImageService); err != nil {
		log.Fatalf("Failed to provide image service: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(func(m *pathmap.Mapper) http.PathMappings { return m }); err != nil {
		log.Fatalf("Failed to provide path mappings: %v", err)
	}
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}

func provideCatalog(cfg *config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.File == "" {
		return catalog.Default()
	}
	return catalog.Load(cfg.File)
}

// provideRateLimiter shares windows through Redis when an address is set and
// reachable, and counts in process otherwise.
func provideRateLimiter(cfg *config.RateLimitConfig, clk clock.Clock) domain.RateLimiter {
	limits := make(map[string]ratelimit.Limit, len(cfg.Limits))
	for name, maxCalls := range cfg.Limits {
		limits[name] = ratelimit.Limit{Max: maxCalls, Window: cfg.Window}
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		err := client.Ping(ctx).Err()
		if err == nil {
			observability.FromContext(ctx).Info("using redis rate limiter",
				observability.String("addr", cfg.RedisAddr))
			return redislimit.NewLimiter(client, cfg.RedisPrefix, limits, cfg.AllowUnconfigured, clk)
		}
		observability.FromContext(ctx).Warn("redis unreachable, using in-process rate limiter",
			observability.String("addr", cfg.RedisAddr), observability.Error(err))
		_ = client.Close()
	}

	return ratelimit.NewSlidingWindow(limits,
		ratelimit.WithClock(clk),
		ratelimit.AllowUnconfigured(cfg.AllowUnconfigured))
}

func registerProviders(
	reg domain.ProviderRegistry,
	cat *catalog.Catalog,
	unsplashCfg *unsplash.Config,
	pexelsCfg *pexels.Config,
	openaiCfg *openai.Config,
) error {
	ctx := context.Background()

	providers := []domain.ImageProvider{
		unsplash.NewProvider(*unsplashCfg),
		manufacturer.NewProvider(cat),
		pexels.NewProvider(*pexelsCfg),
		openai.NewProvider(*openaiCfg),
	}
	for _, p := range providers {
		if err := reg.Register(ctx, p); err != nil {
			return fmt.Errorf("failed to register %s provider: %w", p.Name(), err)
		}
		if !p.Configured() {
			observability.FromContext(ctx).Info("provider not configured, it will be skipped",
				observability.String("source", p.Name()))
		}
	}
	return nil
}

// provideLedger opens the usage ledger, or returns nil when it is disabled.
func provideLedger(cfg *config.LedgerConfig, clk clock.Clock) (*ledger.Ledger, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	l, err := ledger.Open(context.Background(), cfg.Path, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage ledger: %w", err)
	}
	return l, nil
}

type serviceParams struct {
	dig.In

	Cache    domain.Cache
	Resolver domain.SourceResolver
	Acquirer domain.Acquirer
	Prober   domain.Prober
	Mapper   *pathmap.Mapper
	Limiter  domain.RateLimiter
	Ledger   *ledger.Ledger
	Events   domain.EventPublisher
	Clock    clock.Clock
	Pipeline *config.PipelineConfig
	Acquire  *config.AcquireConfig
}

func provideImageService(p serviceParams) *domain.ImageService {
	opts := []domain.ServiceOption{
		domain.WithEvents(p.Events),
		domain.WithClock(p.Clock),
		domain.WithConcurrency(p.Pipeline.Concurrency),
		domain.WithDownloadOptions(domain.DownloadOptions{
			Timeout:    p.Acquire.Timeout,
			MaxRetries: p.Acquire.MaxRetries,
		}),
		domain.WithDefaults(domain.ResolveOptions{
			DelegateURL:     p.Pipeline.DelegateURL,
			AvoidDuplicates: p.Pipeline.AvoidDuplicates,
		}),
	}
	if p.Ledger != nil {
		opts = append(opts, domain.WithLedger(p.Ledger))
	}
	return domain.NewImageService(p.Cache, p.Resolver, p.Acquirer, p.Prober, p.Mapper, p.Limiter, opts...)
}

// closeLedger releases the sqlite handle when one was opened.
func closeLedger(l *ledger.Ledger) {
	if l == nil {
		return
	}
	if err := l.Close(); err != nil {
		observability.FromContext(context.Background()).Warn("failed to close ledger", observability.Error(err))
	}
}
