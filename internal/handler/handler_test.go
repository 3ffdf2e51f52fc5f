package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emailwriter/emailwriter/internal/logger"
	"github.com/emailwriter/emailwriter/internal/model"
	"github.com/emailwriter/emailwriter/internal/upstream"
)

type fakeEmailService struct {
	reply    string
	analysis *model.EmailAnalysisResponse
	err      error
	got      model.EmailRequest
}

func (f *fakeEmailService) Generate(_ context.Context, req model.EmailRequest) (string, error) {
	f.got = req
	return f.reply, f.err
}

func (f *fakeEmailService) Analyze(_ context.Context, req model.EmailRequest) (*model.EmailAnalysisResponse, error) {
	f.got = req
	return f.analysis, f.err
}

type fakeHealth struct{ err error }

func (f fakeHealth) HealthCheck(context.Context) error { return f.err }

func newTestHandler(svc EmailService, rdb HealthChecker) *Handler {
	return New(svc, rdb, logger.Nop())
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestGenerateEmail(t *testing.T) {
	svc := &fakeEmailService{reply: "Thanks, see you then."}
	h := newTestHandler(svc, nil)

	rec := post(h.GenerateEmail, `{"emailContent":"Can we reschedule?","tone":"friendly","extra":1}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Thanks, see you then.", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, model.EmailRequest{EmailContent: "Can we reschedule?", Tone: "friendly"}, svc.got)
}

func TestAnalyzeEmail(t *testing.T) {
	svc := &fakeEmailService{analysis: &model.EmailAnalysisResponse{Sender: "s", Subject: "b", KeyPoints: "k", Sentiment: "n"}}
	h := newTestHandler(svc, nil)

	rec := post(h.AnalyzeEmail, `{"emailContent":"...","language":"spanish"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, map[string]string{"sender": "s", "subject": "b", "keyPoints": "k", "sentiment": "n"}, got)
	assert.Equal(t, "spanish", svc.got.Language)
}

func TestEmailHandlers_Errors(t *testing.T) {
	timeout := &upstream.Error{Kind: upstream.KindGeneration, Op: "post", Err: fmt.Errorf("post: %w", context.DeadlineExceeded)}
	badGateway := &upstream.Error{Kind: upstream.KindTranslation, Op: "translate", StatusCode: 500, Err: errors.New("backend")}

	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"malformed body", `{"emailContent":`, nil, http.StatusBadRequest, "invalid_request"},
		{"empty body", ``, nil, http.StatusBadRequest, "invalid_request"},
		{"upstream timeout", `{}`, timeout, http.StatusGatewayTimeout, "upstream_timeout"},
		{"upstream failure", `{}`, badGateway, http.StatusBadGateway, "upstream_error"},
		{"other failure", `{}`, errors.New("unexpected"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeEmailService{err: tt.err}, nil)
			for _, fn := range []http.HandlerFunc{h.GenerateEmail, h.AnalyzeEmail} {
				rec := post(fn, tt.body)
				assert.Equal(t, tt.wantCode, rec.Code)

				var env struct {
					Error struct {
						Code string `json:"code"`
					} `json:"error"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
				assert.Equal(t, tt.wantErr, env.Error.Code)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(&fakeEmailService{}, nil).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newTestHandler(&fakeEmailService{}, fakeHealth{err: errors.New("down")}).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"unhealthy"`)

	rec = httptest.NewRecorder()
	newTestHandler(&fakeEmailService{}, fakeHealth{err: errors.New("down")}).Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestEmailHandlers_ClientCancelled(t *testing.T) {
	cancelled := &upstream.Error{Kind: upstream.KindGeneration, Op: "post", Err: fmt.Errorf("post: %w", context.Canceled)}
	h := newTestHandler(&fakeEmailService{err: cancelled}, nil)

	for _, fn := range []http.HandlerFunc{h.GenerateEmail, h.AnalyzeEmail} {
		rec := post(fn, `{"emailContent":"hi"}`)
		assert.Equal(t, http.StatusOK, rec.Code, "no status is written for a gone client")
		assert.Empty(t, rec.Body.String())
	}
}
