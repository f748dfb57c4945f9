// Package app wires the hunter from configuration: stores, mirrors, the
// orchestrator, the dispatcher and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lead-hunter/internal/api"
	"lead-hunter/internal/common/config"
	"lead-hunter/internal/common/database"
	httpclient "lead-hunter/internal/common/http"
	"lead-hunter/internal/common/logger"
	"lead-hunter/internal/common/observability"
	"lead-hunter/internal/common/zoho"
	"lead-hunter/internal/hunter"
	"lead-hunter/internal/hunter/classifier"
	"lead-hunter/internal/hunter/dispatch"
	"lead-hunter/internal/hunter/keypool"
	"lead-hunter/internal/hunter/ratelimit"
	"lead-hunter/internal/hunter/serper"
	"lead-hunter/internal/store/hunts"
	"lead-hunter/internal/store/leads"
)

type Options struct {
	// ConnectRetries bounds the startup connection attempts per backend.
	ConnectRetries int
	RetryDelay     time.Duration
	// Migrate applies pending schema migrations after connecting.
	Migrate bool
	// Observability is optional; when nil hunts are not recorded to otel.
	Observability *observability.Observability
}

type App struct {
	Config     *config.Config
	Log        logger.Logger
	Postgres   *database.PostgresClient
	Redis      *database.RedisClient
	Elastic    *database.ElasticsearchClient
	Leads      *leads.PostgresStore
	Summaries  *hunts.Cache
	Hunter     *hunter.Orchestrator
	Dispatcher *dispatch.Dispatcher
}

// Build connects to every configured backend and assembles the engine.
// Postgres is required; Redis, Elasticsearch and Zoho are optional.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	if opts.ConnectRetries <= 0 {
		opts.ConnectRetries = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}

	a := &App{Config: cfg, Log: log}

	if !cfg.Database.Postgres.Configured() {
		return nil, fmt.Errorf("database.postgres is not configured")
	}
	err := RetryWithBackoff(ctx, func() error {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return err
		}
		a.Postgres = pg
		return nil
	}, opts.ConnectRetries, opts.RetryDelay, log, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	log.Info("PostgreSQL connected", nil)

	if opts.Migrate {
		applied, err := leads.Migrate(ctx, a.Postgres.GetDB())
		if err != nil {
			a.Close()
			return nil, err
		}
		log.Info("schema migrations applied", map[string]interface{}{"versions": applied})
	}
	a.Leads = leads.NewPostgresStore(a.Postgres.GetDB())

	var dedup hunter.Deduper
	if cfg.Database.Redis.Configured() {
		rc := database.NewRedis(cfg.Database.Redis)
		err := RetryWithBackoff(ctx, func() error { return rc.Ping(ctx) },
			opts.ConnectRetries, opts.RetryDelay, log, "Redis connection")
		if err != nil {
			// Dedup and summaries are optional; the engine runs without them.
			log.Warn("redis unavailable, continuing without dedup and summaries", map[string]interface{}{
				"error": err.Error(),
			})
			rc.Close()
		} else {
			a.Redis = rc
			prefix := cfg.Database.Redis.KeyPrefix
			dedup = leads.NewRedisDeduper(rc.Client, prefix, cfg.Hunter.DedupTTL())
			a.Summaries = hunts.NewCache(rc.Client, prefix, cfg.Hunter.SummaryTTL())
			log.Info("Redis connected", nil)
		}
	}

	mirrors := a.buildMirrors(ctx, opts)

	searcher, err := serper.NewClient(&serper.Config{
		URL:        cfg.Hunter.ProviderURL,
		MaxResults: cfg.Hunter.MaxResults,
		Timeout:    cfg.Hunter.RequestTimeout(),
	}, httpclient.NewClient(cfg.Hunter.RequestTimeout()), log)
	if err != nil {
		a.Close()
		return nil, err
	}

	deps := hunter.Dependencies{
		Keys:       keypool.New(cfg.Hunter.Keys),
		Limiter:    ratelimit.New(cfg.Hunter.RequestDelay()),
		Searcher:   searcher,
		Classifier: classifier.Default(),
		Store:      leads.NewFanout(a.Leads, log, mirrors...),
		Deduper:    dedup,
		Logger:     log,
	}
	if opts.Observability != nil {
		deps.Recorder = opts.Observability
	}

	a.Hunter, err = hunter.New(&hunter.Config{
		PhonesPerItem: cfg.Hunter.PhonesPerItem,
		SummaryLimit:  cfg.Hunter.SummaryLimit,
		NotesLimit:    cfg.Hunter.NotesLimit,
	}, deps)
	if err != nil {
		a.Close()
		return nil, err
	}

	dispatchOpts := dispatch.Options{
		MaxConcurrent: int64(cfg.Hunter.MaxConcurrentHunts),
		HuntTimeout:   cfg.Hunter.HuntTimeout(),
		Logger:        log,
	}
	if a.Summaries != nil {
		dispatchOpts.Summaries = a.Summaries
	}
	a.Dispatcher = dispatch.New(a.Hunter, dispatchOpts)

	if a.Hunter.KeysConfigured() == 0 {
		log.Warn("no search keys configured, hunts will fail with HUNT_UNAVAILABLE", nil)
	}
	return a, nil
}

func (a *App) buildMirrors(ctx context.Context, opts Options) []leads.Mirror {
	cfg := a.Config
	var mirrors []leads.Mirror

	if cfg.Database.Elasticsearch.Configured() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err == nil {
			err = RetryWithBackoff(ctx, func() error { return es.Ping(ctx) },
				opts.ConnectRetries, opts.RetryDelay, a.Log, "Elasticsearch connection")
		}
		if err == nil {
			m := leads.NewElasticMirror(es.Client, cfg.Database.Elasticsearch.Index)
			err = m.EnsureIndex(ctx)
			if err == nil {
				a.Elastic = es
				mirrors = append(mirrors, m)
				a.Log.Info("Elasticsearch mirror enabled", map[string]interface{}{"index": cfg.Database.Elasticsearch.Index})
			}
		}
		if err != nil {
			a.Log.Warn("elasticsearch unavailable, mirror disabled", map[string]interface{}{"error": err.Error()})
		}
	}

	if z := cfg.Integrations.Zoho; z.Enabled {
		zopts := []zoho.Option{zoho.WithHTTPClient(httpclient.NewClient(config.GetDuration(z.Timeout)))}
		if z.BaseURL != "" {
			zopts = append(zopts, zoho.WithBaseURL(z.BaseURL))
		}
		mirrors = append(mirrors, leads.NewZohoMirror(zoho.NewCRMClient(z.APIKey, z.AuthToken, zopts...)))
		a.Log.Info("Zoho CRM mirror enabled", nil)
	}
	return mirrors
}

// Server returns the HTTP API bound to this app.
func (a *App) Server() *api.Server {
	opts := api.Options{
		Hunts:    a.Dispatcher,
		Leads:    a.Leads,
		Config:   a.Config,
		Database: a.Leads.Ping,
		Checks:   a.Checks(),
		Logger:   a.Log,
	}
	if a.Summaries != nil {
		opts.Summaries = a.Summaries
	}
	return api.New(opts)
}

// Checks are the readiness probes for the connected backends.
func (a *App) Checks() map[string]api.Check {
	checks := map[string]api.Check{
		"postgres": a.Postgres.Ping,
	}
	if a.Redis != nil {
		checks["redis"] = a.Redis.Ping
	}
	if a.Elastic != nil {
		checks["elasticsearch"] = a.Elastic.Ping
	}
	return checks
}

// Shutdown drains background hunts, then closes the backends.
func (a *App) Shutdown(ctx context.Context) error {
	var err error
	if a.Dispatcher != nil {
		err = a.Dispatcher.Shutdown(ctx)
	}
	return errors.Join(err, a.Close())
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.Postgres != nil {
		errs = append(errs, a.Postgres.Close())
	}
	return errors.Join(errs...)
}
