package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vidscribe/vidscribe/internal/subtitle"
)

func newTestServer(t *testing.T, translateFn func(prompt string) string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
		case "/api/generate":
			var req struct {
				Model  string `json:"model"`
				Prompt string `json:"prompt"`
				Stream bool   `json:"stream"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.False(t, req.Stream)
			require.NotEmpty(t, req.Model)
			_ = json.NewEncoder(w).Encode(map[string]string{"response": translateFn(req.Prompt)})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTranslateTextTrimsModelOutput(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, func(string) string { return "  Hallo Welt \n" })

	client := NewClient(server.URL, "test-model", nil)
	out, err := client.TranslateText(context.Background(), "Hello world", "English", "German")
	require.NoError(t, err)
	require.Equal(t, "Hallo Welt", out)
}

func TestTranslateTranscriptPreservesTimestampsAndOrder(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, func(string) string { return "übersetzt" })

	client := NewClient(server.URL, "test-model", nil)
	original := subtitle.Transcript{
		Language: "en",
		Segments: []subtitle.Segment{
			{Start: 0, End: 2.5, Text: "one"},
			{Start: 2.5, End: 5, Text: "two"},
		},
	}

	var progress []int
	translated, err := client.TranslateTranscript(context.Background(), original, "English", "German", func(done, total int) {
		require.Equal(t, 2, total)
		progress = append(progress, done)
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, progress)
	require.Equal(t, "German", translated.Language)
	require.Len(t, translated.Segments, 2)
	for i, segment := range translated.Segments {
		require.Equal(t, original.Segments[i].Start, segment.Start)
		require.Equal(t, original.Segments[i].End, segment.End)
		require.Equal(t, "übersetzt", segment.Text)
	}
}

func TestPingReportsUnreachableServer(t *testing.T) {
	t.Parallel()

	// Port 0 is never a listening ollama instance.
	client := NewClient("http://127.0.0.1:1", "test-model", nil)
	err := client.Ping(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnreachable)
	require.Contains(t, err.Error(), "ollama serve")
}

func TestTranslateTextSurfacesHTTPErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "missing-model", nil)
	_, err := client.TranslateText(context.Background(), "hi", "English", "German")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 404")
}

func TestNewClientDefaults(t *testing.T) {
	t.Parallel()

	client := NewClient("", "", nil)
	require.Equal(t, DefaultBaseURL, client.BaseURL)
	require.Equal(t, DefaultModel, client.Model)
}
