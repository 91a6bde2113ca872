package generation

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

type geminiRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig map[string]interface{} `json:"generationConfig"`
}

func float32Ptr(v float32) *float32 { return &v }

func TestGeminiGenerator_Generate(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Anx"},{"text":"iety\n"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	g, err := NewGeminiGenerator("k", srv.URL+"/v1beta", "gemini-1.5-flash", float32Ptr(0.2), time.Second)
	require.NoError(t, err)
	out, err := g.Generate(context.Background(), "classify this")
	require.NoError(t, err)

	assert.Equal(t, "Anxiety\n", out)
	assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", gotPath)
	assert.Equal(t, "k", gotKey)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "classify this", gotBody.Contents[0].Parts[0].Text)
	require.NotNil(t, gotBody.GenerationConfig)
	assert.InDelta(t, 0.2, gotBody.GenerationConfig["temperature"], 1e-6)
}

func TestGeminiGenerator_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
		code   int
	}{
		{"bad request", http.StatusBadRequest, `{"error":{"code":400,"message":"model not found","status":"INVALID_ARGUMENT"}}`, "model not found", http.StatusBadRequest},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, "no candidates", 0},
		{"blocked", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, "SAFETY", 0},
		{"malformed", http.StatusOK, `not json`, "request failed", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()
			g, err := NewGeminiGenerator("k", srv.URL, "models/gemini-1.5-flash", nil, time.Second)
			require.NoError(t, err)
			_, err = g.Generate(context.Background(), "p")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrService))
			assert.Contains(t, err.Error(), tt.want)
			var se *ServiceError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.code, se.StatusCode)
		})
	}
}

func TestGeminiGenerator_Temperature(t *testing.T) {
	tests := []struct {
		name        string
		temperature *float32
		wantSent    bool
	}{
		{"unset is omitted", nil, false},
		{"zero is sent", float32Ptr(0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw map[string]interface{}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&raw)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"normal"}]}}]}`))
			}))
			defer srv.Close()
			g, err := NewGeminiGenerator("k", srv.URL, "gemini-1.5-flash", tt.temperature, 0)
			require.NoError(t, err)
			_, err = g.Generate(context.Background(), "p")
			require.NoError(t, err)

			gc, _ := raw["generationConfig"].(map[string]interface{})
			temp, ok := gc["temperature"]
			assert.Equal(t, tt.wantSent, ok)
			if tt.wantSent {
				assert.Equal(t, float64(0), temp)
			}
		})
	}
}

func TestSplitAPIVersion(t *testing.T) {
	tests := []struct {
		in, root, version string
	}{
		{"https://generativelanguage.googleapis.com/v1beta", "https://generativelanguage.googleapis.com/", "v1beta"},
		{"https://example.com/v1/", "https://example.com/", "v1"},
		{"http://127.0.0.1:9000", "http://127.0.0.1:9000/", "v1beta"},
	}
	for _, tt := range tests {
		root, version := splitAPIVersion(tt.in)
		if root != tt.root || version != tt.version {
			t.Errorf("splitAPIVersion(%q) = %q, %q; want %q, %q", tt.in, root, version, tt.root, tt.version)
		}
	}
}
