package post

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/metrics"
	"github.com/agenthands/cobalt/internal/taxonomy"
)

// TaxonomyAccess is the slice of the taxonomy store the evolution handler
// needs.
type TaxonomyAccess interface {
	GetLatest(ctx context.Context) (*taxonomy.Document, error)
	Save(ctx context.Context, doc *taxonomy.Document) error
}

// Evolution merges the result's proposals into the current taxonomy and
// persists the evolved document. A no-op merge persists nothing; a failed
// save is a warning, not an analysis failure. The proposals stay attached
// to the result so a replay can recover.
type Evolution struct {
	store TaxonomyAccess
	log   *zap.Logger
	now   func() time.Time
}

func NewEvolution(store TaxonomyAccess, log *zap.Logger) *Evolution {
	return &Evolution{store: store, log: log, now: time.Now}
}

func (e *Evolution) Name() string { return "taxonomy-evolution" }

func (e *Evolution) Run(ctx context.Context, a *model.Analysis) error {
	if len(a.Result.Proposals) == 0 {
		return nil
	}

	current, err := e.store.GetLatest(ctx)
	if err != nil {
		return fmt.Errorf("load latest taxonomy: %w", err)
	}

	next, changes := taxonomy.Merge(current, a.Result.Proposals, e.now())
	if next == nil {
		e.log.Debug("proposals merged to a no-op", zap.String("video_id", a.VideoID))
		return nil
	}
	next.ProposedFromVideoID = a.VideoID

	if err := e.store.Save(ctx, next); err != nil {
		e.log.Warn("evolved taxonomy not persisted",
			zap.String("video_id", a.VideoID),
			zap.String("version", next.Version.String()),
			zap.Error(err))
		return nil
	}

	a.Audit.EvolvedTaxonomy = next.Version.String()
	metrics.TaxonomyEvolutions.Inc()
	e.log.Info("taxonomy evolved",
		zap.String("video_id", a.VideoID),
		zap.String("version", next.Version.String()),
		zap.Int("changes", len(changes)))
	return nil
}
