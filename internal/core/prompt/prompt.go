// Package prompt assembles the outbound LLM prompt from independent
// composers. Each composer contributes exactly one segment; the final text
// is a fixed header followed by the segments in composer registration order.
package prompt

import (
	"context"
	"fmt"
	"strings"
)

// Segment is one composer's contribution. OrderHint is carried for
// diagnostics only; assembly preserves registration order.
type Segment struct {
	Content   string
	OrderHint int
}

// Prompt accumulates segments while a request is being composed. Segments
// are owned by the prompt and discarded after rendering. TaxonomyVersion is
// set by the taxonomy composer so the audit trail records which version the
// model was shown.
type Prompt struct {
	TaxonomyVersion string

	segments []Segment
}

// Append adds one segment.
func (p *Prompt) Append(seg Segment) {
	p.segments = append(p.segments, seg)
}

// Segments returns the accumulated segments in append order.
func (p *Prompt) Segments() []Segment {
	return p.segments
}

// Render concatenates the header and all segments.
func (p *Prompt) Render(header string) string {
	parts := make([]string, 0, len(p.segments)+1)
	if header != "" {
		parts = append(parts, header)
	}
	for _, seg := range p.segments {
		parts = append(parts, seg.Content)
	}
	return strings.Join(parts, "\n\n")
}

// Composer contributes one segment to the prompt for a video, fetching
// whatever data it needs first.
type Composer interface {
	Name() string
	Compose(ctx context.Context, p *Prompt, videoID string) error
}

// Pipeline runs registered composers in order and renders the final prompt.
type Pipeline struct {
	header    string
	composers []Composer
}

func NewPipeline(header string, composers ...Composer) *Pipeline {
	return &Pipeline{header: header, composers: composers}
}

// Built is a finished prompt plus the metadata composers attached to it.
type Built struct {
	Text            string
	TaxonomyVersion string
}

// Build invokes every composer once, in registration order. A composer that
// cannot obtain its data fails the whole build; a degraded prompt is never
// produced.
func (pl *Pipeline) Build(ctx context.Context, videoID string) (*Built, error) {
	p := &Prompt{}
	for _, c := range pl.composers {
		if err := c.Compose(ctx, p, videoID); err != nil {
			return nil, fmt.Errorf("compose %s segment: %w", c.Name(), err)
		}
	}
	return &Built{Text: p.Render(pl.header), TaxonomyVersion: p.TaxonomyVersion}, nil
}
