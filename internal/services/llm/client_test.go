package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"norelock.dev/moodmix/backend/internal/services/system"
	"norelock.dev/moodmix/backend/internal/utils"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, apiKey string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{
		APIKey:      apiKey,
		BaseURL:     server.URL + "/",
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
		MaxTokens:   1000,
	}, utils.NewNopLogger(), nil)
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var got chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  [\"Inception\"]  "}}]}`))
	}, "sk-test")

	content, err := client.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, `["Inception"]`, content)

	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	assert.Equal(t, 1000, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "sys"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "user"}, got.Messages[1])
}

func TestCompleteWithoutKey(t *testing.T) {
	var called atomic.Bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	}, "")

	_, err := client.Complete(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, called.Load())

	status, _ := client.HealthCheck(context.Background())
	assert.Equal(t, system.StatusDegraded, status)
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantAPI bool
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, true},
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, true},
		{"no choices", http.StatusOK, `{"choices":[]}`, false},
		{"bad json", http.StatusOK, `not json`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, "sk-test")

			_, err := client.Complete(context.Background(), "sys", "user")
			require.Error(t, err)

			var apiErr *APIError
			assert.Equal(t, tt.wantAPI, errors.As(err, &apiErr))
			if tt.wantAPI {
				assert.Equal(t, tt.status, apiErr.StatusCode)
			}
		})
	}
}

func TestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, "sk-test")

	for range 5 {
		_, err := client.Complete(context.Background(), "sys", "user")
		require.Error(t, err)
	}

	_, err := client.Complete(context.Background(), "sys", "user")
	assert.True(t, utils.IsBreakerRejection(err))
	assert.Equal(t, int32(5), calls.Load())

	status, _ := client.HealthCheck(context.Background())
	assert.Equal(t, system.StatusDown, status)
}
