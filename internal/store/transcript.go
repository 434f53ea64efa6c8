package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agenthands/cobalt/internal/driver"
	"github.com/agenthands/cobalt/internal/transcript"
)

// TranscriptStore caches fetched transcripts keyed by video id. Implements
// transcript.Cache.
type TranscriptStore struct {
	driver driver.Driver
}

func NewTranscriptStore(d driver.Driver) *TranscriptStore {
	return &TranscriptStore{driver: d}
}

func (s *TranscriptStore) Get(ctx context.Context, videoID string) (*transcript.Transcript, error) {
	result, err := s.driver.ExecuteQuery(ctx, driver.TranscriptByIDQuery, map[string]any{"id": videoID})
	if err != nil {
		return nil, err
	}
	payload, err := payloadFromResult(result)
	if err != nil {
		return nil, err
	}
	var t transcript.Transcript
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		return nil, fmt.Errorf("decode cached transcript: %w", err)
	}
	return &t, nil
}

func (s *TranscriptStore) Put(ctx context.Context, t *transcript.Transcript) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	_, err = s.driver.ExecuteQuery(ctx, driver.UpsertTranscriptQuery, map[string]any{
		"id":         t.VideoID,
		"payload":    string(payload),
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("cache transcript for %s: %w", t.VideoID, err)
	}
	return nil
}
