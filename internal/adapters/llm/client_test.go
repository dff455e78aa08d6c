package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion URL is required")

	_, err = NewClient(Config{URL: "http://localhost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model is required")
}

func TestClient_Complete(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Hello, Ada"}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{URL: server.URL, APIKey: "sk-test", Model: "study-1"})
	require.NoError(t, err)

	resp, err := client.Complete(context.Background(), []Message{
		{Role: "user", Content: "Hi"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "study-1", gotBody["model"])

	decoded, ok := resp.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, decoded, "choices")
}

func TestClient_Complete_EmptyMessages(t *testing.T) {
	client, err := NewClient(Config{URL: "http://localhost", Model: "m"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one message")
}

func TestClient_Complete_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(Config{URL: server.URL, Model: "m"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), []Message{{Role: "user", Content: "Hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned 429")
}

func TestClient_Complete_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client, err := NewClient(Config{URL: server.URL, Model: "m"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), []Message{{Role: "user", Content: "Hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
