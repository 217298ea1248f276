package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchSendsQueryAndAuth(t *testing.T) {
	var gotAuth string
	var gotReq completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "sunny, 25C"}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewPerplexityClient("pk-test", WithBaseURL(srv.URL))
	require.NoError(t, err)

	result, err := c.Search(context.Background(), "weather today")
	require.NoError(t, err)
	require.Equal(t, "sunny, 25C", result)
	require.Equal(t, "Bearer pk-test", gotAuth)
	require.Equal(t, searchModel, gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	require.Equal(t, "Search the web for: weather today", gotReq.Messages[0].Content)
}

func TestSearchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewPerplexityClient("pk-test", WithBaseURL(srv.URL))
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "weather")
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestSearchEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c, err := NewPerplexityClient("pk-test", WithBaseURL(srv.URL))
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "weather")
	require.Error(t, err)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewPerplexityClient("  ")
	require.Error(t, err)
}
