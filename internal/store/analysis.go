package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/driver"
)

// AnalysisRecord is the persisted form of one completed analysis.
type AnalysisRecord struct {
	VideoID   string               `json:"videoId"`
	Result    model.AnalysisResult `json:"result"`
	Audit     model.Audit          `json:"audit"`
	CreatedAt time.Time            `json:"createdAt"`
}

// AnalysisStore persists analysis records keyed by video id. Re-analyzing a
// video overwrites its record.
type AnalysisStore struct {
	driver driver.Driver
}

func NewAnalysisStore(d driver.Driver) *AnalysisStore {
	return &AnalysisStore{driver: d}
}

func (s *AnalysisStore) Save(ctx context.Context, record *AnalysisRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode analysis record: %w", err)
	}
	_, err = s.driver.ExecuteQuery(ctx, driver.UpsertAnalysisQuery, map[string]any{
		"id":         record.VideoID,
		"payload":    string(payload),
		"updated_at": record.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("save analysis for %s: %w", record.VideoID, err)
	}
	return nil
}

func (s *AnalysisStore) Get(ctx context.Context, videoID string) (*AnalysisRecord, error) {
	result, err := s.driver.ExecuteQuery(ctx, driver.AnalysisByIDQuery, map[string]any{"id": videoID})
	if err != nil {
		return nil, err
	}
	payload, err := payloadFromResult(result)
	if err != nil {
		return nil, err
	}
	var record AnalysisRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("decode analysis record: %w", err)
	}
	return &record, nil
}
