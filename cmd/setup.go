package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kozaktomas/makeup-coach/internal/catalog"
	"github.com/kozaktomas/makeup-coach/internal/config"
	"github.com/kozaktomas/makeup-coach/internal/database"
	"github.com/kozaktomas/makeup-coach/internal/database/mariadb"
	"github.com/kozaktomas/makeup-coach/internal/database/postgres"
	"github.com/kozaktomas/makeup-coach/internal/database/redis"
	"github.com/kozaktomas/makeup-coach/internal/facemesh"
	"github.com/kozaktomas/makeup-coach/internal/logger"
	"github.com/kozaktomas/makeup-coach/internal/makeup"
	"github.com/kozaktomas/makeup-coach/internal/progress"
)

// cleanups runs teardown functions in reverse order.
type cleanups []func()

func (c *cleanups) add(fn func()) { *c = append(*c, fn) }

func (c cleanups) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// newLogger builds the zap logger from configuration.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return log, nil
}

// loadRegions returns the configured region definitions.
func loadRegions(cfg *config.Config) ([]facemesh.Region, error) {
	if cfg.Analysis.RegionsPath == "" {
		return facemesh.DefaultRegions(), nil
	}
	regions, err := facemesh.LoadRegions(cfg.Analysis.RegionsPath)
	if err != nil {
		return nil, fmt.Errorf("loading regions: %w", err)
	}
	return regions, nil
}

// openCatalog opens the configured product source.
func openCatalog(cfg *config.Config, cl *cleanups) (catalog.Source, error) {
	switch cfg.Catalog.Source {
	case config.CatalogSourceMariaDB:
		pool, err := mariadb.NewPool(cfg.Catalog.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to catalog database: %w", err)
		}
		cl.add(func() { _ = pool.Close() })
		return mariadb.NewCatalogRepository(pool), nil
	default:
		if cfg.Catalog.Path != "" {
			static, err := catalog.LoadStatic(cfg.Catalog.Path)
			if err != nil {
				return nil, fmt.Errorf("loading catalog: %w", err)
			}
			return static, nil
		}
		return catalog.DefaultStatic(), nil
	}
}

// buildAnalyzer creates the analyzer over the configured regions and a snapshot of the catalog.
func buildAnalyzer(ctx context.Context, cfg *config.Config, source catalog.Source) (*makeup.Analyzer, error) {
	regions, err := loadRegions(cfg)
	if err != nil {
		return nil, err
	}
	products, err := source.Products(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}
	analyzer, err := makeup.NewAnalyzer(regions, products, makeup.Options{
		TopN:              cfg.Analysis.TopN,
		DefaultConfidence: cfg.Analysis.DefaultConfidence,
		LandmarkCount:     cfg.Analysis.LandmarkCount,
	})
	if err != nil {
		return nil, fmt.Errorf("creating analyzer: %w", err)
	}
	return analyzer, nil
}

// initPostgres connects to PostgreSQL, applies migrations and registers the backend.
func initPostgres(cfg *config.Config, log *zap.Logger, cl *cleanups) error {
	applied, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	for _, m := range applied {
		log.Info("applied migration", zap.String("version", m))
	}
	cl.add(func() {
		if pool := postgres.GetGlobalPool(); pool != nil {
			_ = pool.Close()
		}
		postgres.SetGlobalPool(nil)
	})
	return nil
}

// openProgressStore opens the configured progression store. PostgreSQL must
// already be initialized when it is selected.
func openProgressStore(ctx context.Context, cfg *config.Config, cl *cleanups) (progress.Store, error) {
	switch cfg.Progress.Store {
	case config.ProgressStorePostgres:
		return database.GetProgressWriter(ctx)
	case config.ProgressStoreRedis:
		client, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		cl.add(func() { _ = client.Close() })
		return redis.NewProgressRepository(client), nil
	default:
		return progress.NewMemoryStore(), nil
	}
}
