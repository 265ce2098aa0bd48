package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatBody struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newChatServer(t *testing.T, status int, content string, seen *chatBody, headers *http.Header) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		if headers != nil {
			*headers = r.Header.Clone()
		}
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream unavailable","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-3.5-turbo",
			"choices": []map[string]any{},
		}
		if content != "" {
			resp["choices"] = []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClientComplete(t *testing.T) {
	var (
		body    chatBody
		headers http.Header
	)
	srv := newChatServer(t, http.StatusOK, "Food", &body, &headers)

	c := NewOpenAIClient(ClientConfig{
		APIKey:   "sk-or-test",
		BaseURL:  srv.URL,
		Model:    "openai/gpt-4o-mini",
		AppURL:   "http://localhost:3000",
		AppTitle: "Spentify",
	})

	got, err := c.Complete(context.Background(), categorizeRequest("Pizza"))
	require.NoError(t, err)
	assert.Equal(t, "Food", got)

	assert.Equal(t, "Bearer sk-or-test", headers.Get("Authorization"))
	assert.Equal(t, "http://localhost:3000", headers.Get("HTTP-Referer"))
	assert.Equal(t, "Spentify", headers.Get("X-Title"))

	assert.Equal(t, "openai/gpt-4o-mini", body.Model)
	assert.InDelta(t, 0.1, body.Temperature, 1e-6)
	assert.Equal(t, 20, body.MaxTokens)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, `Categorize this expense: "Pizza"`, body.Messages[1].Content)
}

func TestOpenAIClientNoChoices(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, "", nil, nil)
	c := NewOpenAIClient(ClientConfig{APIKey: "k", BaseURL: srv.URL})

	got, err := c.Complete(context.Background(), categorizeRequest("Pizza"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenAIClientErrorStatus(t *testing.T) {
	srv := newChatServer(t, http.StatusInternalServerError, "", nil, nil)
	c := NewOpenAIClient(ClientConfig{APIKey: "k", BaseURL: srv.URL})

	_, err := c.Complete(context.Background(), categorizeRequest("Pizza"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestServiceOverHTTPFallsBackOnServerError(t *testing.T) {
	srv := newChatServer(t, http.StatusBadGateway, "", nil, nil)
	s := newOnline(NewOpenAIClient(ClientConfig{APIKey: "k", BaseURL: srv.URL}))

	got := s.GenerateInsights(context.Background(), sampleRecords())
	require.Len(t, got, 1)
	assert.Equal(t, "fallback-1", got[0].ID)
}
