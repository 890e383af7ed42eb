package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weathervibe/weathervibe/internal/chat"
	"github.com/weathervibe/weathervibe/internal/chat/openai"
	"github.com/weathervibe/weathervibe/internal/provider/resilience"
)

func newClient(server *httptest.Server) *openai.Client {
	cfg := resilience.DefaultClientConfig("test")
	cfg.MaxRetries = 0
	return openai.NewClient(openai.ClientConfig{
		APIKey:     "sk-test",
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(cfg),
	})
}

var turns = []chat.Turn{
	{Role: chat.RoleSystem, Content: chat.SystemPrompt},
	{Role: chat.RoleUser, Content: "Is it sunny?"},
}

func TestClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, openai.DefaultModel, body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "Is it sunny?", body.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Yes, clear skies."}}]}`))
	}))
	defer server.Close()

	answer, err := newClient(server).Complete(context.Background(), turns)
	require.NoError(t, err)
	assert.Equal(t, "Yes, clear skies.", answer)
}

func TestClient_Complete_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`},
		{"malformed", http.StatusOK, `{"choices":`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"blank content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newClient(server).Complete(context.Background(), turns)
			assert.ErrorIs(t, err, chat.ErrAssistantUnavailable)
		})
	}
}
