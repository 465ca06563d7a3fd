package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GenerateText_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))

		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {
					"parts": [{"text": "AAPL closed at 150."}],
					"role": "model"
				}
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)

	text, err := client.GenerateText(context.Background(), "how did AAPL do today?")

	require.NoError(t, err)
	assert.Equal(t, "AAPL closed at 150.", text)
}

func TestClient_GenerateText_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)

	_, err := client.GenerateText(context.Background(), "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestClient_GenerateText_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)

	_, err := client.GenerateText(context.Background(), "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestNewClient_DefaultURL(t *testing.T) {
	client := NewClient("key", "")
	assert.Equal(t, defaultAPIURL, client.apiURL)
}
