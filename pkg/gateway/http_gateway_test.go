package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, routes map[string]http.HandlerFunc) *HTTPGateway {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range routes {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewHTTPGateway(srv.URL+"/", 2*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestHTTPGatewayGenerateCopy(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		want    string
		wantErr error
	}{
		{name: "copy field", status: 200, body: map[string]string{"copy": "Fresh copy"}, want: "Fresh copy"},
		{name: "output field", status: 200, body: map[string]string{"output": "Output copy"}, want: "Output copy"},
		{name: "empty body", status: 200, body: map[string]string{}, wantErr: ErrMalformedResponse},
		{name: "server error", status: 500, body: map[string]string{"error": "model overloaded"}, wantErr: ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newBackend(t, map[string]http.HandlerFunc{
				"/api/generate-copy": func(w http.ResponseWriter, r *http.Request) {
					var req map[string]string
					require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
					assert.Equal(t, "Brief", req["briefing"])
					writeJSON(w, tt.status, tt.body)
				},
			})

			out, err := gw.GenerateCopy(context.Background(), CopyRequest{Briefing: "Brief"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Text)
			assert.Equal(t, SourceRemote, out.Source)
		})
	}
}

func TestDecodeAPIError(t *testing.T) {
	gw := newBackend(t, map[string]http.HandlerFunc{
		"/api/generate-design": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadGateway, map[string]string{"detail": "upstream timeout"})
		},
	})

	_, err := gw.GenerateDesign(context.Background(), DesignRequest{Copy: "c"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream timeout", apiErr.Message)
}

func TestHTTPGatewayGenerateDesignShapes(t *testing.T) {
	for _, key := range []string{"html", "output", "designed_copy"} {
		t.Run(key, func(t *testing.T) {
			gw := newBackend(t, map[string]http.HandlerFunc{
				"/api/generate-design": func(w http.ResponseWriter, r *http.Request) {
					var req map[string]string
					require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
					assert.Equal(t, "FR", req["language"])
					writeJSON(w, 200, map[string]string{key: "<div>design</div>"})
				},
			})

			d, err := gw.GenerateDesign(context.Background(), DesignRequest{Copy: "c", Template: "modern", Language: "FR"})
			require.NoError(t, err)
			assert.Equal(t, "<div>design</div>", d.HTML)
			assert.Equal(t, "FRENCH", d.Language)
			assert.Nil(t, d.Metrics)
		})
	}
}

func TestHTTPGatewaySendsLanguageCode(t *testing.T) {
	tests := []struct {
		language string
		want     string
	}{
		{"FR", "FR"},
		{"fr", "FR"},
		{"FRENCH", "FR"},
		{"NL", "NL"},
		{"FLEMISH", "NL"},
	}
	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			var sent string
			gw := newBackend(t, map[string]http.HandlerFunc{
				"/api/generate-design": func(w http.ResponseWriter, r *http.Request) {
					var req map[string]string
					require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
					sent = req["language"]
					writeJSON(w, 200, map[string]string{"html": "<div>design</div>"})
				},
			})

			_, err := gw.GenerateDesign(context.Background(), DesignRequest{Copy: "c", Language: tt.language})
			require.NoError(t, err)
			assert.Equal(t, tt.want, sent)
		})
	}
}

func TestHTTPGatewayCompareFiles(t *testing.T) {
	gw := newBackend(t, map[string]http.HandlerFunc{
		"/api/compare-files": func(w http.ResponseWriter, r *http.Request) {
			var req map[string]Document
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "a.txt", req["file1"].Name)
			assert.Equal(t, "b.txt", req["file2"].Name)
			writeJSON(w, 200, map[string]int{"similarity": 120, "contentMatch": 80, "structure": 70, "compatibility": 95})
		},
	})

	c, err := gw.CompareFiles(context.Background(), Document{Name: "a.txt"}, Document{Name: "b.txt"})
	require.NoError(t, err)
	assert.Equal(t, 100, c.Similarity, "scores are clamped")
	assert.Equal(t, 80, c.ContentMatch)
	assert.Equal(t, 95, c.Compatibility)
}

func TestHTTPGatewayCompareContentMultipart(t *testing.T) {
	gw := newBackend(t, map[string]http.HandlerFunc{
		"/api/compare": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "brief", r.FormValue("text1"))
			assert.Equal(t, "copy", r.FormValue("text2"))
			assert.Equal(t, "semantic", r.FormValue("comparison_type"))
			writeJSON(w, 200, map[string]any{"success": true, "result": map[string]any{"similarity_score": 77, "summary": "close"}})
		},
	})

	c, err := gw.CompareContent(context.Background(), ContentComparison{Briefing: "brief", Copy: "copy", Type: ComparisonSemantic})
	require.NoError(t, err)
	assert.Equal(t, 77, c.Similarity)
	assert.Equal(t, 77, c.Compatibility)
	assert.Equal(t, "close", c.Report["summary"])
}

func TestHTTPGatewayUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	gw := NewHTTPGateway(url, time.Second)
	_, err := gw.GenerateCopy(context.Background(), CopyRequest{Briefing: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestParseComparisonType(t *testing.T) {
	got, err := ParseComparisonType("")
	require.NoError(t, err)
	assert.Equal(t, ComparisonCopyDesign, got)

	got, err = ParseComparisonType("brief_copy")
	require.NoError(t, err)
	assert.Equal(t, ComparisonBriefCopy, got)

	_, err = ParseComparisonType("visual")
	assert.ErrorIs(t, err, ErrUnknownComparison)
}
