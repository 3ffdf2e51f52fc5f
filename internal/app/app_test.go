package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emailwriter/emailwriter/internal/analyzer"
	"github.com/emailwriter/emailwriter/internal/config"
	"github.com/emailwriter/emailwriter/internal/logger"
)

type upstreams struct {
	gemini         *httptest.Server
	translate      *httptest.Server
	geminiCalls    atomic.Int32
	translateCalls atomic.Int32
}

func newUpstreams(t *testing.T, geminiBody string) *upstreams {
	t.Helper()
	u := &upstreams{}

	u.gemini = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.geminiCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(geminiBody))
	}))
	t.Cleanup(u.gemini.Close)

	u.translate = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.translateCalls.Add(1)
		var body struct {
			Q      []string `json:"q"`
			Target string   `json:"target"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		translations := make([]map[string]string, len(body.Q))
		for i, q := range body.Q {
			translations[i] = map[string]string{"translatedText": body.Target + "|" + q}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"translations": translations},
		})
	}))
	t.Cleanup(u.translate.Close)

	return u
}

func newTestApp(t *testing.T, u *upstreams, inline bool) *App {
	t.Helper()
	cfg := &config.Config{
		Gemini:    config.GeminiConfig{URL: u.gemini.URL + "/v1beta/models/gemini:generateContent", APIKey: "g", Timeout: time.Second},
		Translate: config.TranslateConfig{URL: u.translate.URL + "/language/translate/v2", APIKey: "t", Timeout: time.Second},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		API:       config.APIConfig{InlineErrors: inline},
		Analyzer:  config.AnalyzerConfig{Mode: config.AnalyzerStub},
	}
	a, err := New(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func do(a *App, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)
	return rec
}

func TestGenerate_NoLanguage(t *testing.T) {
	u := newUpstreams(t, `{"candidates":[{"content":{"parts":[{"text":"Of course, Thursday works."}]}}]}`)
	a := newTestApp(t, u, false)

	rec := do(a, "/api/email/generate", `{"emailContent":"Can we reschedule?","tone":"friendly"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Of course, Thursday works.", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, int32(1), u.geminiCalls.Load())
	assert.Zero(t, u.translateCalls.Load())
}

func TestGenerate_Translated(t *testing.T) {
	u := newUpstreams(t, `{"candidates":[{"content":{"parts":[{"text":"Hello"}]}}]}`)
	a := newTestApp(t, u, false)

	rec := do(a, "/api/email/generate", `{"emailContent":"Hi","language":"French"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fr|Hello", rec.Body.String())
	assert.Equal(t, int32(1), u.translateCalls.Load())
}

func TestAnalyze_Spanish(t *testing.T) {
	u := newUpstreams(t, `{}`)
	a := newTestApp(t, u, false)

	rec := do(a, "/api/email/analyze", `{"emailContent":"...","language":"spanish"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, map[string]string{
		"sender":    "es|" + analyzer.StubSender,
		"subject":   "es|" + analyzer.StubSubject,
		"keyPoints": "es|" + analyzer.StubKeyPoints,
		"sentiment": "es|" + analyzer.StubSentiment,
	}, got)
	assert.Zero(t, u.geminiCalls.Load())
}

func TestGenerate_MalformedUpstream(t *testing.T) {
	u := newUpstreams(t, `not json`)

	strict := newTestApp(t, u, false)
	rec := do(strict, "/api/email/generate", `{"emailContent":"Hi"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "upstream_error")

	inline := newTestApp(t, u, true)
	rec = do(inline, "/api/email/generate", `{"emailContent":"Hi"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Error processing request:"))
}

func TestPreflightAndHealth(t *testing.T) {
	a := newTestApp(t, newUpstreams(t, `{}`), false)

	req := httptest.NewRequest(http.MethodOptions, "/api/email/analyze", nil)
	req.Header.Set("Origin", "https://mail.google.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "emailwriter_http_request_duration_seconds")
}
