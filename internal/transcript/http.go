package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPSource fetches transcripts from a captioning endpoint that serves
// GET {base}/transcripts/{videoID}?lang=en,de as a Transcript JSON document.
type HTTPSource struct {
	base   string
	client *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPSource) GetTranscript(ctx context.Context, videoID string, preferredLanguages []string) (*Transcript, error) {
	endpoint := fmt.Sprintf("%s/transcripts/%s", s.base, url.PathEscape(videoID))
	if len(preferredLanguages) > 0 {
		endpoint += "?lang=" + url.QueryEscape(strings.Join(preferredLanguages, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build transcript request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript for %s: %w", videoID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch transcript for %s: unexpected status %d", videoID, resp.StatusCode)
	}

	var t Transcript
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode transcript for %s: %w", videoID, err)
	}
	if t.VideoID == "" {
		t.VideoID = videoID
	}
	return &t, nil
}
