package transcript

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSourceFetchesTranscript(t *testing.T) {
	var gotPath, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLang = r.URL.Query().Get("lang")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"title": "My story",
			"language": "en",
			"segments": [{"start": 0, "duration": 2.5, "text": "hello"}]
		}`))
	}))
	defer srv.Close()

	source := NewHTTPSource(srv.URL)
	tr, err := source.GetTranscript(context.Background(), "vid-1", []string{"en", "de"})
	require.NoError(t, err)

	assert.Equal(t, "/transcripts/vid-1", gotPath)
	assert.Equal(t, "en,de", gotLang)
	assert.Equal(t, "My story", tr.Title)
	// The id is filled in when the service omits it.
	assert.Equal(t, "vid-1", tr.VideoID)
	assert.Equal(t, "hello", tr.Text())
}

func TestHTTPSourceRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL).GetTranscript(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
