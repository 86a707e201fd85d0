// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api exposes the analysis pipeline over HTTP. Uploads are accepted
// immediately with a document id and analyzed in the background by a
// bounded worker pool; clients poll the status endpoint for the result.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pdiddy/compliance-engine/internal/blob"
	"github.com/pdiddy/compliance-engine/internal/store"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// Analyzer runs one analysis. *pipeline.Engine satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, text string) types.AnalysisResult
}

// Records persists analyses. *store.Fallback satisfies it.
type Records interface {
	Save(ctx context.Context, rec types.Record) (store.SaveOutcome, error)
	Get(ctx context.Context, id string) (types.Record, error)
	History(ctx context.Context, limit, offset int) (store.Page, error)
	Search(ctx context.Context, opts store.SearchOptions) (store.Page, error)
	Delete(ctx context.Context, id string) error
}

// Options configures a Server.
type Options struct {
	Analyzer    Analyzer
	Records     Records
	Blobs       blob.Storage
	Config      types.ServerConfig
	MaxFileSize int64
	Version     string
	Log         zerolog.Logger
}

// Server holds the HTTP handlers and the background worker pool.
type Server struct {
	analyzer    Analyzer
	records     Records
	blobs       blob.Storage
	cfg         types.ServerConfig
	maxFileSize int64
	version     string
	log         zerolog.Logger

	// base is cancelled on Shutdown so in-flight analyses stop early.
	base   context.Context
	cancel context.CancelFunc
	sem    chan struct{}
	wg     sync.WaitGroup

	router *gin.Engine
}

// New builds a Server and its routes.
func New(opts Options) *Server {
	cfg := opts.Config
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 10
	}
	if cfg.MaxBulkDelete <= 0 {
		cfg.MaxBulkDelete = 50
	}

	base, cancel := context.WithCancel(context.Background())
	s := &Server{
		analyzer:    opts.Analyzer,
		records:     opts.Records,
		blobs:       opts.Blobs,
		cfg:         cfg,
		maxFileSize: opts.MaxFileSize,
		version:     opts.Version,
		log:         opts.Log,
		base:        base,
		cancel:      cancel,
		sem:         make(chan struct{}, cfg.Workers),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	r.GET("/health", s.health)

	docs := r.Group("/api/documents")
	{
		docs.POST("/upload", s.upload)
		docs.POST("/batch", s.batch)
		docs.GET("/status/:id", s.status)
		docs.GET("/history", s.history)
		docs.GET("/search", s.search)
		docs.DELETE("/:id", s.deleteDocument)
		docs.POST("/bulk-delete", s.bulkDelete)
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and waits for background analyses.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Shutdown()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Shutdown()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown cancels in-flight analyses and waits for the workers to exit.
func (s *Server) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

// Wait blocks until every dispatched analysis has been stored.
func (s *Server) Wait() {
	s.wg.Wait()
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
