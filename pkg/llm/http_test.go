package llm

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusErrorTemporary(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		err := &StatusError{Provider: "test", Status: tt.status}
		assert.Equal(t, tt.want, err.Temporary(), tt.status)
	}
}

func TestWithSystem(t *testing.T) {
	history := []Message{{Role: "user", Content: "hi"}}
	assert.Equal(t, history, WithSystem(history, ""))

	out := WithSystem(history, "be brief")
	assert.Len(t, out, 2)
	assert.Equal(t, "system", out[0].Role)
}
