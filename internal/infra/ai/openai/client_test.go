package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/visiai/internal/domain/providers"
	"github.com/bryanwahyu/visiai/internal/infra/breaker"
)

func completionServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		require.Len(t, req.Messages[0].MultiContent, 2)
		assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", req.Messages[0].MultiContent[0].ImageURL.URL)

		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"nope","type":"server_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: "assistant", Content: content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(srv *httptest.Server) *VisionClient {
	return NewVisionClient(Config{APIKey: "key", BaseURL: srv.URL, Timeout: 2 * time.Second}, srv.Client())
}

func TestAnalyzeLive(t *testing.T) {
	srv := completionServer(t, "```json\n{\"visualIssues\":[\"Busy hero\"],\"clarityScore\":64}\n```", http.StatusOK)

	got := newClient(srv).Analyze(context.Background(), "data:image/png;base64,aGVsbG8=")
	assert.Equal(t, providers.Live(), got.Outcome)
	assert.Equal(t, DefaultProvider, got.Provider)
	assert.Equal(t, 64.0, got.ClarityScore)
	assert.Equal(t, []string{"Busy hero"}, got.VisualIssues)
	assert.Equal(t, []string{providers.PlaceholderLayoutIssue}, got.LayoutProblems)
}

func TestAnalyzeFallbacks(t *testing.T) {
	t.Run("unparseable answer", func(t *testing.T) {
		srv := completionServer(t, "I can't help with that.", http.StatusOK)
		got := newClient(srv).Analyze(context.Background(), "aGVsbG8=")
		assert.Equal(t, providers.DefaultVision(providers.ReasonMalformed), got)
	})
	t.Run("empty answer", func(t *testing.T) {
		srv := completionServer(t, "  ", http.StatusOK)
		got := newClient(srv).Analyze(context.Background(), "aGVsbG8=")
		assert.Equal(t, providers.DefaultVision(providers.ReasonEmptyResponse), got)
	})
	t.Run("upstream error", func(t *testing.T) {
		srv := completionServer(t, "", http.StatusInternalServerError)
		got := newClient(srv).Analyze(context.Background(), "aGVsbG8=")
		assert.Equal(t, providers.DefaultVision(providers.ReasonUnavailable), got)
	})
}

func TestAnalyzeEmptyAnswersKeepCircuitClosed(t *testing.T) {
	calls := 0
	srv := completionServer(t, "", http.StatusOK)
	counting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		srv.Config.Handler.ServeHTTP(w, r)
	}))
	defer counting.Close()

	c := NewVisionClient(Config{
		APIKey:  "key",
		BaseURL: counting.URL,
		Timeout: 2 * time.Second,
		Breaker: breaker.Settings{MaxRequests: 1, Timeout: time.Minute, ConsecutiveFailures: 2},
	}, counting.Client())
	for i := 0; i < 6; i++ {
		got := c.Analyze(context.Background(), "aGVsbG8=")
		assert.Equal(t, providers.DefaultVision(providers.ReasonEmptyResponse), got, "call %d", i)
	}
	assert.Equal(t, 6, calls)
}

func TestAnalyzeWithoutKeyOrScreenshot(t *testing.T) {
	c := NewVisionClient(Config{}, nil)
	assert.Equal(t, providers.DefaultVision(providers.ReasonMissingKey), c.Analyze(context.Background(), "aGVsbG8="))
	assert.Equal(t, c.Analyze(context.Background(), "aGVsbG8="), c.Analyze(context.Background(), "aGVsbG8="))

	c = NewVisionClient(Config{APIKey: "key"}, nil)
	got := c.Analyze(context.Background(), "data:image/jpeg;base64,")
	assert.Equal(t, providers.DefaultVision(providers.ReasonNoScreenshot), got)
	assert.Equal(t, 70.0, got.ClarityScore)
	assert.Equal(t, providers.FallbackProvider, got.Provider)
	assert.Len(t, got.AttentionZones, 4)
}

func TestStripDataURI(t *testing.T) {
	assert.Equal(t, "abc", StripDataURI("data:image/png;base64,abc"))
	assert.Equal(t, "abc", StripDataURI("abc"))
	assert.Equal(t, "", StripDataURI(""))
}
