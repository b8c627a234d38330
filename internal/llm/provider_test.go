package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digi0/ACE/internal/config"
)

func TestNew_MissingKeyIsUnconfigured(t *testing.T) {
	p, err := New(context.Background(), config.LLMConfig{Provider: "openai"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "sys", "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, p.Name(), "unconfigured")
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.LLMConfig{Provider: "llama", APIKey: "k"})
	assert.Error(t, err)
}

func TestOpenAI_Complete(t *testing.T) {
	var gotMessages []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Model    string           `json:"model"`
			Messages []map[string]any `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotMessages = body.Messages

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"direct_answer\":\"ok\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p := NewOpenAI(config.LLMConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini"})
	out, err := p.Complete(context.Background(), "be helpful", "Student: hi")
	require.NoError(t, err)
	assert.Equal(t, `{"direct_answer":"ok"}`, out)

	require.Len(t, gotMessages, 2)
	assert.Equal(t, "system", gotMessages[0]["role"])
	assert.Equal(t, "be helpful", gotMessages[0]["content"])
	assert.Equal(t, "user", gotMessages[1]["role"])
}

func TestOpenAI_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	p := NewOpenAI(config.LLMConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := p.Complete(context.Background(), "s", "p")
	assert.Error(t, err)
}
