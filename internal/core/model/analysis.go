package model

import (
	"time"

	"github.com/agenthands/cobalt/internal/taxonomy"
)

// Achievement is one extracted result item: a type (domain), its taxonomy
// tags, and an optional narrative detail.
type Achievement struct {
	Type    string   `json:"type"`
	Tags    []string `json:"tags"`
	Details string   `json:"details,omitempty"`
}

// Timeframe captures when the speaker noticed effects and when healing
// completed, as free-form phrases.
type Timeframe struct {
	NoticeEffects string `json:"noticeEffects"`
	FullHealing   string `json:"fullHealing"`
}

// AnalysisResult is the typed outcome of one extraction.
type AnalysisResult struct {
	Achievements    []Achievement       `json:"achievements"`
	Timeframe       *Timeframe          `json:"timeframe,omitempty"`
	Practices       []string            `json:"practices"`
	SentimentScore  float64             `json:"sentimentScore"`
	ConfidenceScore float64             `json:"confidenceScore"`
	Proposals       []taxonomy.Proposal `json:"proposals,omitempty"`
}

// Audit is the per-request trail: which model ran, what it cost, and which
// taxonomy version the request evolved, if any.
type Audit struct {
	RequestID        string        `json:"requestId"`
	Model            string        `json:"model"`
	PromptTokens     int           `json:"promptTokens"`
	CompletionTokens int           `json:"completionTokens"`
	Duration         time.Duration `json:"-"`
	DurationMS       int64         `json:"durationMs"`
	TaxonomyVersion  string        `json:"taxonomyVersion,omitempty"`
	EvolvedTaxonomy  string        `json:"evolvedTaxonomy,omitempty"`
}

// Analysis couples one video's result with its audit trail. Post-analysis
// handlers receive it as a mutable view.
type Analysis struct {
	VideoID string          `json:"videoId"`
	Result  *AnalysisResult `json:"result"`
	Audit   Audit           `json:"audit"`
}
