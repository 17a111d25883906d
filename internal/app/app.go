package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/riskibarqy/playhub-league/internal/config"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/infrastructure/account/anubis"
	repocache "github.com/riskibarqy/playhub-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/playhub-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/playhub-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/playhub-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/playhub-league/internal/metrics"
	"github.com/riskibarqy/playhub-league/internal/platform/cache"
	"github.com/riskibarqy/playhub-league/internal/platform/id"
	"github.com/riskibarqy/playhub-league/internal/platform/logging"
	"github.com/riskibarqy/playhub-league/internal/platform/resilience"
	"github.com/riskibarqy/playhub-league/internal/usecase"
)

// NewHTTPServer wires the store, services and router. The returned cleanup
// releases the database pool and must run after the server stops.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	st, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var (
		m              metrics.Metrics = metrics.Nop{}
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		m = metrics.NewService(prometheus.DefaultRegisterer)
		metricsHandler = metrics.NewMetricsHandler(prometheus.DefaultGatherer)
	}

	var standingsCache *cache.Store[usecase.Standings]
	if cfg.CacheEnabled {
		st = repocache.NewStore(st, cfg.CacheTTL)
		standingsCache = cache.NewStore[usecase.Standings](cfg.CacheTTL)
	}

	ids := id.NewUUIDGenerator()
	standings := usecase.NewStandingsService(st, standingsCache, logger)
	handler := httpapi.NewHandler(
		usecase.NewAccessService(st, cfg.LeagueAdminEmails),
		usecase.NewPairingService(st, logger, m),
		usecase.NewSubstitutionService(st, ids, logger, m),
		usecase.NewWeekService(st, ids, logger),
		usecase.NewFinalizeService(st, ids, standings, logger, m),
		usecase.NewRosterService(st, logger),
		usecase.NewRatingService(st, ids, logger, m),
		standings,
		logger,
	)

	anubisClient := anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		cfg.AnubisBaseURL,
		cfg.AnubisIntrospectURL,
		cfg.AnubisAdminKey,
		resilience.CircuitBreakerConfig{
			Enabled:          cfg.AnubisCircuitEnabled,
			FailureThreshold: cfg.AnubisCircuitFailureCount,
			OpenTimeout:      cfg.AnubisCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AnubisCircuitHalfOpenMaxReq,
		},
		logger,
		anubis.WithPrincipalTTL(cfg.AnubisPrincipalTTL),
	)

	router := httpapi.NewRouter(handler, anubisClient, logger, cfg.CORSAllowedOrigins, metricsHandler)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, cleanup, nil
}

func openStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := openDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := db.Close(); err != nil {
				logger.Warn("close database", "error", err)
			}
		}

		if cfg.DBAutoMigrate {
			if err := migrateUp(cfg.DBURL, logger); err != nil {
				cleanup()
				return nil, nil, err
			}
		}
		if cfg.SeedDemo {
			if err := postgres.BootstrapSeed(ctx, db, memory.DemoSeed()); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("seed demo league: %w", err)
			}
		}

		logger.Info("store ready", "driver", config.StorePostgres, "db", dbNameFromURL(cfg.DBURL))
		return postgres.NewStore(db), cleanup, nil
	default:
		seed := memory.Seed{}
		if cfg.SeedDemo {
			seed = memory.DemoSeed()
		}
		logger.Info("store ready", "driver", config.StoreMemory, "seed_demo", cfg.SeedDemo)
		return memory.NewStore(seed), func() {}, nil
	}
}
