package prompt

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/cobalt/internal/taxonomy"
	"github.com/agenthands/cobalt/internal/transcript"
)

// TaxonomyProvider is the slice of the taxonomy store the composer needs.
type TaxonomyProvider interface {
	GetLatest(ctx context.Context) (*taxonomy.Document, error)
}

// TaxonomyComposer renders the current taxonomy so the model only tags
// within the allowed hierarchy. The template receives the rendered tree as
// its single %s argument.
type TaxonomyComposer struct {
	Store    TaxonomyProvider
	Template string
}

func (c *TaxonomyComposer) Name() string { return "taxonomy" }

func (c *TaxonomyComposer) Compose(ctx context.Context, p *Prompt, videoID string) error {
	doc, err := c.Store.GetLatest(ctx)
	if err != nil {
		return fmt.Errorf("load latest taxonomy: %w", err)
	}
	p.TaxonomyVersion = doc.Version.String()
	p.Append(Segment{
		Content:   fmt.Sprintf(c.Template, renderTaxonomy(doc)),
		OrderHint: 10,
	})
	return nil
}

// renderTaxonomy writes the hierarchy as an indented tree, domains and
// categories sorted for a stable prompt.
func renderTaxonomy(doc *taxonomy.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Taxonomy version: %s\n", doc.Version)

	domains := make([]string, 0, len(doc.Taxonomy))
	for domain := range doc.Taxonomy {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	for _, domain := range domains {
		fmt.Fprintf(&b, "- %s\n", domain)
		group := doc.Taxonomy[domain]
		categories := make([]string, 0, len(group))
		for category := range group {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			node := group[category]
			fmt.Fprintf(&b, "  - %s\n", category)
			if len(node.Subcategories) > 0 {
				fmt.Fprintf(&b, "    subcategories: %s\n", strings.Join(node.Subcategories, ", "))
			}
			if len(node.Attributes) > 0 {
				fmt.Fprintf(&b, "    attributes: %s\n", strings.Join(node.Attributes, ", "))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// TranscriptComposer fetches the video transcript and renders it alongside
// its metadata. The template receives title, description, and transcript
// text in that order.
type TranscriptComposer struct {
	Source    transcript.Source
	Languages []string
	Template  string
}

func (c *TranscriptComposer) Name() string { return "transcript" }

func (c *TranscriptComposer) Compose(ctx context.Context, p *Prompt, videoID string) error {
	t, err := c.Source.GetTranscript(ctx, videoID, c.Languages)
	if err != nil {
		return fmt.Errorf("fetch transcript for %s: %w", videoID, err)
	}
	p.Append(Segment{
		Content:   fmt.Sprintf(c.Template, t.Title, t.Description, t.Text()),
		OrderHint: 20,
	})
	return nil
}

// FormatComposer appends the static reply-envelope instructions.
type FormatComposer struct {
	Template string
}

func (c *FormatComposer) Name() string { return "output-format" }

func (c *FormatComposer) Compose(ctx context.Context, p *Prompt, videoID string) error {
	p.Append(Segment{Content: c.Template, OrderHint: 30})
	return nil
}
