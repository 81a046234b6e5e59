package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/battleplan/internal/coach"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gen, err := NewGenerator(context.Background(), Config{APIKey: "test-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return gen
}

func TestNewGenerator_RequiresAPIKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestGenerate_ReturnsText(t *testing.T) {
	var gotPath, gotBody string
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"1. Wake up 2. Write 3. Rest"}]},"finishReason":"STOP"}]}`)
	})

	text, err := gen.Generate(context.Background(), "models/gemini-2.5-flash", "coach me")
	require.NoError(t, err)

	assert.Equal(t, "1. Wake up 2. Write 3. Rest", text)
	assert.True(t, strings.HasSuffix(gotPath, "models/gemini-2.5-flash:generateContent"), "path %q", gotPath)
	assert.Contains(t, gotBody, "coach me")
}

func TestGenerate_APIError(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"code":401,"message":"invalid API key","status":"UNAUTHENTICATED"}}`)
	})

	_, err := gen.Generate(context.Background(), "models/gemini-2.5-flash", "coach me")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid API key")
}

func TestGenerate_EmptyResponse(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"finishReason":"SAFETY"}]}`)
	})

	_, err := gen.Generate(context.Background(), "models/gemini-2.5-flash", "coach me")
	require.Error(t, err)
	assert.ErrorIs(t, err, coach.ErrEmptyResponse)
	assert.Contains(t, err.Error(), "SAFETY")
}
