// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/pdiddy/compliance-engine/internal/catalog"
	"github.com/pdiddy/compliance-engine/internal/classify"
	"github.com/pdiddy/compliance-engine/internal/enrich"
	"github.com/pdiddy/compliance-engine/internal/match"
	"github.com/pdiddy/compliance-engine/internal/pipeline"
	"github.com/pdiddy/compliance-engine/internal/store"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// app holds the collaborators shared by the commands.
type app struct {
	cfg     types.Config
	catalog *catalog.Catalog
	engine  *pipeline.Engine
	log     zerolog.Logger

	closers []func() error
}

// newEngineApp builds the catalog, classifier, optional validator, matcher
// and analysis engine.
func newEngineApp(ctx context.Context, cfg types.Config, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	cat, err := loadCatalog(cfg.CatalogPath, log)
	if err != nil {
		return nil, err
	}
	a.catalog = cat

	classifier, err := classify.New(cfg.Classifier)
	if err != nil {
		return nil, err
	}

	var validator enrich.Validator
	if cfg.Enrichment.Validator == "gemini" {
		g, err := enrich.NewGemini(ctx, cfg.Enrichment)
		if err != nil {
			log.Warn().Err(err).Msg("source validation disabled")
		} else {
			a.closers = append(a.closers, g.Close)
			validator = enrich.NewBreaker(g, cfg.Enrichment.FailureThreshold, cfg.Enrichment.Cooldown)
		}
	}

	matcher := match.New(cfg, cat, classifier, validator, log)
	a.engine = pipeline.New(cfg.Analysis, classifier, matcher, log)
	log.Debug().
		Str("classifier", string(cfg.Classifier.Backend)).
		Str("matcher", string(cfg.Enrichment.Mode)).
		Int("sources", cat.Len()).
		Msg("engine ready")
	return a, nil
}

func loadCatalog(path string, log zerolog.Logger) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(log)
	}
	return catalog.Load(path, log)
}

// openStore opens the configured primary backend behind a local-file
// fallback. A primary that cannot be opened is logged and skipped, so the
// local directory takes every record.
func openStore(ctx context.Context, cfg types.StoreConfig, log zerolog.Logger) (*store.Fallback, error) {
	local, err := store.NewLocal(cfg.LocalDir, cfg.MaxResults)
	if err != nil {
		return nil, err
	}

	var primary store.Store
	switch cfg.Backend {
	case types.StoreSQLite, "":
		s, err := store.OpenSQLite(cfg.SQLitePath, cfg.MaxResults)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.SQLitePath).Msg("sqlite unavailable, using local records")
		} else {
			primary = s
		}
	case types.StorePostgres:
		p, err := store.OpenPostgres(ctx, cfg.DatabaseURL, cfg.MaxResults)
		if err != nil {
			log.Warn().Err(err).Msg("postgres unavailable, using local records")
		} else {
			primary = p
		}
	case types.StoreLocal:
	default:
		log.Warn().Str("backend", string(cfg.Backend)).Msg("unknown store backend, using local records")
	}
	return store.NewFallback(primary, local, log), nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
