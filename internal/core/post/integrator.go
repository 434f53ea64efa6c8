package post

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/taxonomy"
)

// Integrator folds proposal tags back into the in-flight achievement list so
// a proposed domain is visible on the analysis before persistence. It is
// best-effort and never fails the pipeline.
type Integrator struct {
	log *zap.Logger
}

func NewIntegrator(log *zap.Logger) *Integrator {
	return &Integrator{log: log}
}

func (i *Integrator) Name() string { return "proposal-integrator" }

func (i *Integrator) Run(ctx context.Context, a *model.Analysis) error {
	for _, proposal := range a.Result.Proposals {
		tags := proposalTags(proposal)
		if len(tags) == 0 {
			continue
		}
		i.integrate(a, proposal, tags)
	}
	return nil
}

// integrate finds a target achievement for the proposal and merges its tags.
//
// A same-type achievement already carrying one of the proposal's category
// names takes the merge. A same-type achievement without a matching category
// tag is no safe target, so the proposal is skipped. When the domain has no
// achievement at all, a new one is appended so the domain is not lost before
// persistence.
func (i *Integrator) integrate(a *model.Analysis, proposal taxonomy.Proposal, tags []string) {
	categories := categoryNames(proposal)
	sameType := false
	for idx := range a.Result.Achievements {
		ach := &a.Result.Achievements[idx]
		if !strings.EqualFold(ach.Type, proposal.Domain) {
			continue
		}
		sameType = true
		if hasAnyFold(ach.Tags, categories) {
			ach.Tags = mergeTags(ach.Tags, tags)
			i.log.Debug("merged proposal tags into achievement",
				zap.String("video_id", a.VideoID),
				zap.String("domain", proposal.Domain))
			return
		}
	}

	if sameType {
		i.log.Debug("no achievement carries a proposed category tag, skipping merge",
			zap.String("video_id", a.VideoID),
			zap.String("domain", proposal.Domain))
		return
	}

	a.Result.Achievements = append(a.Result.Achievements, model.Achievement{
		Type: proposal.Domain,
		Tags: mergeTags([]string{proposal.Domain}, tags),
	})
	i.log.Debug("appended achievement for proposed domain",
		zap.String("video_id", a.VideoID),
		zap.String("domain", proposal.Domain))
}

// proposalTags flattens a proposal into its tag set: category names plus all
// subcategory names, in sorted category order so merged tag lists are stable
// across runs. The domain itself is not a tag.
func proposalTags(p taxonomy.Proposal) []string {
	var tags []string
	for _, category := range categoryNames(p) {
		tags = append(tags, category)
		tags = append(tags, p.Group[category].Subcategories...)
	}
	return tags
}

func categoryNames(p taxonomy.Proposal) []string {
	names := make([]string, 0, len(p.Group))
	for category := range p.Group {
		names = append(names, category)
	}
	sort.Strings(names)
	return names
}

// mergeTags appends incoming tags not already present, case-insensitively.
func mergeTags(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, tag := range existing {
		seen[strings.ToLower(tag)] = struct{}{}
	}
	for _, tag := range incoming {
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		existing = append(existing, tag)
	}
	return existing
}

func hasAnyFold(tags, candidates []string) bool {
	for _, tag := range tags {
		for _, c := range candidates {
			if strings.EqualFold(tag, c) {
				return true
			}
		}
	}
	return false
}
