// Package core orchestrates one analysis request: compose prompt, call the
// model, parse, then run the post-analysis handlers.
package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/core/extraction"
	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/core/post"
	"github.com/agenthands/cobalt/internal/core/prompt"
	"github.com/agenthands/cobalt/internal/llm"
	"github.com/agenthands/cobalt/internal/metrics"
)

type Analyzer struct {
	Prompts *prompt.Pipeline
	LLM     llm.Client
	Post    *post.Pipeline
	Log     *zap.Logger
}

func NewAnalyzer(prompts *prompt.Pipeline, client llm.Client, postPipeline *post.Pipeline, log *zap.Logger) *Analyzer {
	return &Analyzer{Prompts: prompts, LLM: client, Post: postPipeline, Log: log}
}

// Analyze runs the full extraction flow for one video. Prompt, model, and
// parse failures surface as errors; post-analysis handlers are best-effort
// and never fail the request.
func (a *Analyzer) Analyze(ctx context.Context, videoID string) (*model.Analysis, error) {
	requestID := uuid.NewString()
	log := a.Log.With(zap.String("video_id", videoID), zap.String("request_id", requestID))

	built, err := a.Prompts.Build(ctx, videoID)
	if err != nil {
		metrics.AnalysesFailed.Inc()
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	reply, err := a.LLM.Generate(ctx, built.Text)
	if err != nil {
		metrics.AnalysesFailed.Inc()
		return nil, fmt.Errorf("model call: %w", err)
	}
	metrics.ModelCallDuration.Observe(reply.Duration.Seconds())
	log.Debug("model replied",
		zap.String("model", reply.Model),
		zap.Int("prompt_tokens", reply.PromptTokens),
		zap.Int("completion_tokens", reply.CompletionTokens),
		zap.Duration("duration", reply.Duration))

	result, err := extraction.Parse(reply.Text)
	if err != nil {
		metrics.AnalysesFailed.Inc()
		return nil, fmt.Errorf("parse model reply: %w", err)
	}

	analysis := &model.Analysis{
		VideoID: videoID,
		Result:  result,
		Audit: model.Audit{
			RequestID:        requestID,
			Model:            reply.Model,
			PromptTokens:     reply.PromptTokens,
			CompletionTokens: reply.CompletionTokens,
			Duration:         reply.Duration,
			DurationMS:       reply.Duration.Milliseconds(),
			TaxonomyVersion:  built.TaxonomyVersion,
		},
	}

	a.Post.Run(ctx, analysis)

	metrics.AnalysesTotal.Inc()
	log.Info("analysis complete",
		zap.Int("achievements", len(result.Achievements)),
		zap.Int("proposals", len(result.Proposals)),
		zap.String("evolved_taxonomy", analysis.Audit.EvolvedTaxonomy))
	return analysis, nil
}
