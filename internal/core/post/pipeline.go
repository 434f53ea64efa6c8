// Package post runs the ordered side-effect handlers that follow a
// successful extraction.
package post

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/metrics"
)

// Handler performs one side effect against a freshly parsed analysis.
type Handler interface {
	Name() string
	Run(ctx context.Context, a *model.Analysis) error
}

// Pipeline executes handlers strictly sequentially, in registration order,
// within the request. A handler's error, panic, or deadline overrun is
// caught and logged; the remaining handlers always run and the overall
// request still completes.
type Pipeline struct {
	handlers []Handler
	timeout  time.Duration
	log      *zap.Logger

	// mu serializes handler execution. A timed-out handler keeps holding it
	// until it returns, so the next handler cannot see the analysis while the
	// abandoned one may still write to it.
	mu sync.Mutex
}

// NewPipeline builds a pipeline. timeout bounds each handler; zero disables
// the bound.
func NewPipeline(log *zap.Logger, timeout time.Duration, handlers ...Handler) *Pipeline {
	return &Pipeline{handlers: handlers, timeout: timeout, log: log}
}

// Run executes every registered handler against the analysis.
func (p *Pipeline) Run(ctx context.Context, a *model.Analysis) {
	for _, h := range p.handlers {
		if err := p.runOne(ctx, h, a); err != nil {
			metrics.HandlerFailures.WithLabelValues(h.Name()).Inc()
			p.log.Warn("post-analysis handler failed",
				zap.String("handler", h.Name()),
				zap.String("video_id", a.VideoID),
				zap.Error(err))
		}
	}
}

// runOne bounds the handler with the pipeline deadline and converts panics
// into errors. A handler that overruns keeps its goroutine until it returns,
// but it holds the run lock the whole time, so the next handler waits for it
// to let go of the analysis before touching it. That wait counts against the
// next handler's own deadline.
func (p *Pipeline) runOne(ctx context.Context, h Handler, a *model.Analysis) error {
	hctx := ctx
	cancel := func() {}
	if p.timeout > 0 {
		hctx, cancel = context.WithTimeout(ctx, p.timeout)
	}
	defer cancel()

	done := make(chan error, 1)
	go func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("handler panicked: %v", r)
			}
		}()
		done <- h.Run(hctx, a)
	}()

	select {
	case err := <-done:
		return err
	case <-hctx.Done():
		return hctx.Err()
	}
}
