package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"copyflow-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuggingFaceProvider_Chat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer hf_key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Fresh copy"}}]}`))
	}))
	defer srv.Close()

	p := NewHuggingFaceProvider("hf_key", srv.URL+"/v1/", "mistral", time.Second)
	out, err := p.Generate(context.Background(), "write copy", llm.WithJSON())
	require.NoError(t, err)

	assert.Equal(t, "Fresh copy", out)
	assert.Equal(t, "mistral", got.Model)
	assert.Equal(t, 2048, got.MaxTokens)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestHuggingFaceProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"rate limited", http.StatusTooManyRequests, `slow down`, "status 429"},
		{"api error", http.StatusOK, `{"error":{"message":"model loading"}}`, "model loading"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "empty choices"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHuggingFaceProvider("", srv.URL, "m", time.Second).Generate(context.Background(), "hi")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
