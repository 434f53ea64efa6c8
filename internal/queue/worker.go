package queue

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Runner executes one analysis request.
type Runner func(ctx context.Context, videoID string) error

// Worker drains the queue through a Runner, polling when the queue is empty.
type Worker struct {
	store    *Store
	run      Runner
	interval time.Duration
	log      *zap.Logger
}

func NewWorker(store *Store, run Runner, interval time.Duration, log *zap.Logger) *Worker {
	return &Worker{store: store, run: run, interval: interval, log: log}
}

// Run processes items until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, err := w.store.ClaimNext(ctx)
		if errors.Is(err, ErrEmpty) {
			select {
			case <-time.After(w.interval):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err != nil {
			return err
		}

		w.log.Info("processing queued analysis",
			zap.Int64("item_id", item.ID),
			zap.String("video_id", item.VideoID),
			zap.Int("attempts", item.Attempts))

		if err := w.run(ctx, item.VideoID); err != nil {
			w.log.Warn("queued analysis failed",
				zap.Int64("item_id", item.ID),
				zap.String("video_id", item.VideoID),
				zap.Error(err))
			if merr := w.store.MarkFailed(ctx, item.ID, err.Error()); merr != nil {
				w.log.Error("failed to record queue failure", zap.Error(merr))
			}
			continue
		}

		if err := w.store.MarkDone(ctx, item.ID); err != nil {
			w.log.Error("failed to record queue completion", zap.Error(err))
		}
	}
}
