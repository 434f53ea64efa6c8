// Package extraction maps the model's free-form JSON reply into a typed
// analysis result.
package extraction

import (
	"fmt"

	"github.com/agenthands/cobalt/internal/core/common"
	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/taxonomy"
)

// envelope mirrors the reply shape the output-format composer asks for.
type envelope struct {
	Analysis  *analysisPayload `json:"analysis"`
	Proposals *proposalBlock   `json:"proposals"`
}

type analysisPayload struct {
	Achievements    []model.Achievement `json:"achievements"`
	Timeframe       *model.Timeframe    `json:"timeframe"`
	Practices       []string            `json:"practices"`
	SentimentScore  float64             `json:"sentimentScore"`
	ConfidenceScore float64             `json:"confidenceScore"`
}

type proposalBlock struct {
	Taxonomy []taxonomy.Proposal `json:"taxonomy"`
}

// Parse builds an AnalysisResult from the raw model reply. Missing fields
// default (empty lists, zero scores, nil timeframe); a reply that is not
// valid JSON or lacks the top-level analysis envelope is a hard failure.
func Parse(raw string) (*model.AnalysisResult, error) {
	env, err := common.ParseJSON[envelope](raw)
	if err != nil {
		return nil, err
	}
	if env.Analysis == nil {
		return nil, fmt.Errorf("model reply missing analysis envelope")
	}

	result := &model.AnalysisResult{
		Achievements:    env.Analysis.Achievements,
		Timeframe:       env.Analysis.Timeframe,
		Practices:       env.Analysis.Practices,
		SentimentScore:  env.Analysis.SentimentScore,
		ConfidenceScore: env.Analysis.ConfidenceScore,
	}
	if result.Achievements == nil {
		result.Achievements = []model.Achievement{}
	}
	if result.Practices == nil {
		result.Practices = []string{}
	}
	if env.Proposals != nil {
		result.Proposals = env.Proposals.Taxonomy
	}
	return result, nil
}
