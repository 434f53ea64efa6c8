// Package llm wraps the language model providers behind one client contract.
package llm

import (
	"context"
	"time"
)

// Reply carries the model's raw text plus the call metadata the audit trail
// records.
type Reply struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Duration         time.Duration
}

// Client sends one composed prompt and returns the raw reply. No retry is
// performed at this layer.
type Client interface {
	Generate(ctx context.Context, prompt string) (*Reply, error)
}
