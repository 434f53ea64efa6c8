package post

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/core/model"
)

type recordingHandler struct {
	name  string
	runs  *[]string
	err   error
	panic bool
	block time.Duration
}

func (h *recordingHandler) Name() string { return h.name }

func (h *recordingHandler) Run(ctx context.Context, a *model.Analysis) error {
	*h.runs = append(*h.runs, h.name)
	if h.panic {
		panic("handler exploded")
	}
	if h.block > 0 {
		select {
		case <-time.After(h.block):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return h.err
}

func emptyAnalysis() *model.Analysis {
	return &model.Analysis{VideoID: "vid-1", Result: &model.AnalysisResult{}}
}

func TestPipelineIsolatesFailures(t *testing.T) {
	var runs []string
	pl := NewPipeline(zap.NewNop(), 0,
		&recordingHandler{name: "h1", runs: &runs},
		&recordingHandler{name: "hfail", runs: &runs, err: errors.New("boom")},
		&recordingHandler{name: "h2", runs: &runs},
	)

	pl.Run(context.Background(), emptyAnalysis())
	assert.Equal(t, []string{"h1", "hfail", "h2"}, runs)
}

func TestPipelineRecoversFromPanic(t *testing.T) {
	var runs []string
	pl := NewPipeline(zap.NewNop(), 0,
		&recordingHandler{name: "hpanic", runs: &runs, panic: true},
		&recordingHandler{name: "h2", runs: &runs},
	)

	pl.Run(context.Background(), emptyAnalysis())
	assert.Equal(t, []string{"hpanic", "h2"}, runs)
}

func TestPipelineBoundsHandlerTime(t *testing.T) {
	var runs []string
	pl := NewPipeline(zap.NewNop(), 50*time.Millisecond,
		&recordingHandler{name: "hslow", runs: &runs, block: 5 * time.Second},
		&recordingHandler{name: "h2", runs: &runs},
	)

	started := time.Now()
	pl.Run(context.Background(), emptyAnalysis())
	assert.Less(t, time.Since(started), 2*time.Second)
	assert.Contains(t, runs, "h2")
}

type deadlineIgnoringHandler struct {
	sleep time.Duration
}

func (h *deadlineIgnoringHandler) Name() string { return "ignores-deadline" }

func (h *deadlineIgnoringHandler) Run(ctx context.Context, a *model.Analysis) error {
	time.Sleep(h.sleep)
	a.Audit.Model = "written-late"
	return nil
}

type auditReadingHandler struct {
	seen string
}

func (h *auditReadingHandler) Name() string { return "reads-audit" }

func (h *auditReadingHandler) Run(ctx context.Context, a *model.Analysis) error {
	h.seen = a.Audit.Model
	return nil
}

func TestPipelineSerializesTimedOutHandler(t *testing.T) {
	// The first handler sleeps past its deadline and only then writes to the
	// analysis. The second handler must not see the analysis until that write
	// has happened. The sleep overrun stays inside the second handler's own
	// deadline so it completes rather than timing out on the run lock.
	reader := &auditReadingHandler{}
	pl := NewPipeline(zap.NewNop(), 200*time.Millisecond,
		&deadlineIgnoringHandler{sleep: 300 * time.Millisecond},
		reader,
	)

	pl.Run(context.Background(), emptyAnalysis())
	assert.Equal(t, "written-late", reader.seen)
}

func TestPipelineRunsHandlersInOrderEveryTime(t *testing.T) {
	for i := 0; i < 3; i++ {
		var runs []string
		pl := NewPipeline(zap.NewNop(), 0,
			&recordingHandler{name: "h1", runs: &runs},
			&recordingHandler{name: "hfail", runs: &runs, err: errors.New("boom")},
			&recordingHandler{name: "h2", runs: &runs},
		)
		pl.Run(context.Background(), emptyAnalysis())
		assert.Equal(t, []string{"h1", "hfail", "h2"}, runs)
	}
}
