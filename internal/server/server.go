// Package server wires the service together and exposes its HTTP surface.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/config"
	"github.com/agenthands/cobalt/internal/core"
	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/core/post"
	"github.com/agenthands/cobalt/internal/core/prompt"
	"github.com/agenthands/cobalt/internal/driver"
	"github.com/agenthands/cobalt/internal/llm"
	"github.com/agenthands/cobalt/internal/queue"
	"github.com/agenthands/cobalt/internal/store"
	"github.com/agenthands/cobalt/internal/taxonomy"
	"github.com/agenthands/cobalt/internal/transcript"
)

type Server struct {
	cfg *config.Config
	log *zap.Logger

	driver     driver.Driver
	Analyzer   *core.Analyzer
	Analyses   *store.AnalysisStore
	Taxonomies *store.TaxonomyStore
	Queue      *queue.Store
}

// New wires every component from configuration: document store, taxonomy
// seed, LLM client, prompt composers, post-analysis handlers, and the work
// queue. Seed reconciliation runs here so the control flow is visible at
// startup rather than hidden inside the first read.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	d, err := driver.NewBoltDriver(ctx, cfg.Store.URI, cfg.Store.User, cfg.Store.Password, log)
	if err != nil {
		return nil, fmt.Errorf("connect document store: %w", err)
	}
	if err := d.BuildIndices(ctx); err != nil {
		return nil, fmt.Errorf("build indices: %w", err)
	}

	var seed *taxonomy.Seed
	if cfg.Taxonomy.SeedPath != "" {
		seed, err = taxonomy.LoadSeed(cfg.Taxonomy.SeedPath)
		if err != nil {
			// Missing seed is non-fatal; reconciliation proceeds without it.
			log.Warn("taxonomy seed unavailable", zap.String("path", cfg.Taxonomy.SeedPath), zap.Error(err))
		}
	}

	taxonomies := store.NewTaxonomyStore(d, seed, log)
	if err := taxonomies.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("reconcile taxonomy seed: %w", err)
	}

	client, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("initialize llm client: %w", err)
	}

	source := transcript.NewCachingSource(
		transcript.NewHTTPSource(cfg.Transcript.BaseURL),
		store.NewTranscriptStore(d),
		log,
	)

	prompts := prompt.NewPipeline(cfg.Prompts.Header,
		&prompt.TaxonomyComposer{Store: taxonomies, Template: cfg.Prompts.Taxonomy},
		&prompt.TranscriptComposer{Source: source, Languages: cfg.Transcript.PreferredLanguages, Template: cfg.Prompts.Transcript},
		&prompt.FormatComposer{Template: cfg.Prompts.Format},
	)

	handlerTimeout := time.Duration(cfg.Pipeline.HandlerTimeoutSeconds) * time.Second
	postPipeline := post.NewPipeline(log, handlerTimeout,
		post.NewIntegrator(log),
		post.NewEvolution(taxonomies, log),
	)

	q, err := queue.Open(cfg.Queue.Path)
	if err != nil {
		return nil, fmt.Errorf("open analysis queue: %w", err)
	}

	return &Server{
		cfg:        cfg,
		log:        log,
		driver:     d,
		Analyzer:   core.NewAnalyzer(prompts, client, postPipeline, log),
		Analyses:   store.NewAnalysisStore(d),
		Taxonomies: taxonomies,
		Queue:      q,
	}, nil
}

// AnalyzeAndPersist runs the full analysis flow and stores the record. Used
// by both the HTTP handler and the queue worker.
func (s *Server) AnalyzeAndPersist(ctx context.Context, videoID string) (*model.Analysis, error) {
	analysis, err := s.Analyzer.Analyze(ctx, videoID)
	if err != nil {
		return nil, err
	}

	record := &store.AnalysisRecord{
		VideoID: analysis.VideoID,
		Result:  *analysis.Result,
		Audit:   analysis.Audit,
	}
	if err := s.Analyses.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("persist analysis: %w", err)
	}
	return analysis, nil
}

// Close releases the document store and queue handles.
func (s *Server) Close(ctx context.Context) error {
	var errs []error
	if s.Queue != nil {
		errs = append(errs, s.Queue.Close())
	}
	if s.driver != nil {
		errs = append(errs, s.driver.Close(ctx))
	}
	return errors.Join(errs...)
}
