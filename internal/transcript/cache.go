package transcript

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Cache is the subset of the transcript store the caching source needs.
type Cache interface {
	Get(ctx context.Context, videoID string) (*Transcript, error)
	Put(ctx context.Context, t *Transcript) error
}

// CachingSource serves transcripts from the cache when present and falls
// back to the upstream captioning service. Fresh fetches are written back
// without blocking the caller; a failed write is logged and dropped. The
// underlying write is an idempotent upsert keyed by video id, so concurrent
// duplicate fetches are safe.
type CachingSource struct {
	upstream     Source
	cache        Cache
	log          *zap.Logger
	writeTimeout time.Duration
}

func NewCachingSource(upstream Source, cache Cache, log *zap.Logger) *CachingSource {
	return &CachingSource{
		upstream:     upstream,
		cache:        cache,
		log:          log,
		writeTimeout: 10 * time.Second,
	}
}

func (c *CachingSource) GetTranscript(ctx context.Context, videoID string, preferredLanguages []string) (*Transcript, error) {
	if cached, err := c.cache.Get(ctx, videoID); err == nil {
		c.log.Debug("transcript cache hit", zap.String("video_id", videoID))
		return cached, nil
	}

	t, err := c.upstream.GetTranscript(ctx, videoID, preferredLanguages)
	if err != nil {
		return nil, err
	}

	// Best effort: the response does not wait on the cache write.
	go func() {
		wctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
		defer cancel()
		if err := c.cache.Put(wctx, t); err != nil {
			c.log.Warn("transcript cache write failed",
				zap.String("video_id", t.VideoID), zap.Error(err))
		}
	}()

	return t, nil
}
