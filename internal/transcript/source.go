// Package transcript defines the captioning-service contract and a caching
// decorator over it.
package transcript

import "context"

// Segment is one timed span of caption text.
type Segment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// Transcript is the captioning service's view of one video.
type Transcript struct {
	VideoID         string    `json:"videoId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Language        string    `json:"language"`
	DurationSeconds float64   `json:"durationSeconds"`
	Segments        []Segment `json:"segments"`
}

// Text joins all segment texts into the plain transcript body.
func (t *Transcript) Text() string {
	out := ""
	for i, seg := range t.Segments {
		if i > 0 {
			out += " "
		}
		out += seg.Text
	}
	return out
}

// Source fetches a transcript for a video, preferring the given caption
// languages in order.
type Source interface {
	GetTranscript(ctx context.Context, videoID string, preferredLanguages []string) (*Transcript, error)
}
