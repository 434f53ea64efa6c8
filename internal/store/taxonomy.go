package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/driver"
	"github.com/agenthands/cobalt/internal/taxonomy"
)

// TaxonomyStore persists taxonomy documents keyed by their version id.
// Writes are MERGE upserts: two processes racing the same seed both insert
// the same version id and overwrite identically, so reconciliation needs no
// cross-process lock.
type TaxonomyStore struct {
	driver driver.Driver
	seed   *taxonomy.Seed
	log    *zap.Logger

	mu     sync.Mutex
	seeded bool
}

// NewTaxonomyStore builds the store. The seed may be nil when no baseline
// taxonomy ships with the deployment.
func NewTaxonomyStore(d driver.Driver, seed *taxonomy.Seed, log *zap.Logger) *TaxonomyStore {
	return &TaxonomyStore{driver: d, seed: seed, log: log}
}

// Initialize reconciles the baseline seed against whatever the store already
// holds. Call it once at startup; repeated or concurrent calls are safe and
// only the first successful attempt does any work.
//
// Rules: empty store -> save the seed; seed strictly newer than the latest
// document -> save the seed (an intentional bump shipped with a deployment);
// otherwise leave the store alone. A missing seed is a warning, not an error.
func (s *TaxonomyStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return nil
	}

	if s.seed == nil {
		s.log.Warn("no taxonomy seed available, skipping reconciliation")
		s.seeded = true
		return nil
	}

	latest, err := s.getLatest(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		doc := seedDocument(s.seed)
		if err := s.save(ctx, doc); err != nil {
			return fmt.Errorf("seed initial taxonomy: %w", err)
		}
		s.log.Info("seeded initial taxonomy", zap.String("version", doc.Version.String()))
	case err != nil:
		return fmt.Errorf("load latest taxonomy for reconciliation: %w", err)
	case s.seed.Version.Compare(latest.Version) > 0:
		doc := seedDocument(s.seed)
		if err := s.save(ctx, doc); err != nil {
			return fmt.Errorf("apply taxonomy seed upgrade: %w", err)
		}
		s.log.Info("applied taxonomy seed upgrade",
			zap.String("from", latest.Version.String()),
			zap.String("to", doc.Version.String()))
	}

	s.seeded = true
	return nil
}

// GetLatest returns the highest-versioned taxonomy document, reconciling the
// seed first if that has not happened yet.
func (s *TaxonomyStore) GetLatest(ctx context.Context) (*taxonomy.Document, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return s.getLatest(ctx)
}

// GetByVersion returns the document stored under the given version.
func (s *TaxonomyStore) GetByVersion(ctx context.Context, v taxonomy.Version) (*taxonomy.Document, error) {
	result, err := s.driver.ExecuteQuery(ctx, driver.TaxonomyByIDQuery, map[string]any{"id": v.String()})
	if err != nil {
		return nil, err
	}
	return decodeDocument(result)
}

// Save upserts the document under its version id.
func (s *TaxonomyStore) Save(ctx context.Context, doc *taxonomy.Document) error {
	return s.save(ctx, doc)
}

func (s *TaxonomyStore) getLatest(ctx context.Context) (*taxonomy.Document, error) {
	result, err := s.driver.ExecuteQuery(ctx, driver.LatestTaxonomyQuery, nil)
	if err != nil {
		return nil, err
	}
	return decodeDocument(result)
}

func (s *TaxonomyStore) save(ctx context.Context, doc *taxonomy.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode taxonomy document: %w", err)
	}
	_, err = s.driver.ExecuteQuery(ctx, driver.UpsertTaxonomyQuery, map[string]any{
		"id":         doc.Version.String(),
		"major":      int64(doc.Version.Major),
		"minor":      int64(doc.Version.Minor),
		"payload":    string(payload),
		"updated_at": doc.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("save taxonomy %s: %w", doc.Version, err)
	}
	return nil
}

func decodeDocument(result neo4j.EagerResult) (*taxonomy.Document, error) {
	payload, err := payloadFromResult(result)
	if err != nil {
		return nil, err
	}
	var doc taxonomy.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("decode taxonomy document: %w", err)
	}
	return &doc, nil
}

func seedDocument(seed *taxonomy.Seed) *taxonomy.Document {
	return &taxonomy.Document{
		Specification: taxonomy.Specification{
			Version:  seed.Version,
			Taxonomy: seed.Taxonomy,
		},
		UpdatedAt: time.Now().UTC(),
		Changes:   []string{"Seed baseline taxonomy"},
	}
}
