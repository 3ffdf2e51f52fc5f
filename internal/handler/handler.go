package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/emailwriter/emailwriter/internal/logger"
	"github.com/emailwriter/emailwriter/internal/middleware"
	"github.com/emailwriter/emailwriter/internal/model"
)

// EmailService is the business logic behind the email endpoints
type EmailService interface {
	Generate(ctx context.Context, req model.EmailRequest) (string, error)
	Analyze(ctx context.Context, req model.EmailRequest) (*model.EmailAnalysisResponse, error)
}

// HealthChecker is an optional dependency reported by /health
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds all HTTP handlers
type Handler struct {
	emailSvc EmailService
	rdb      HealthChecker
	log      *logger.Logger
}

// New creates a new Handler instance. rdb may be nil when Redis is disabled.
func New(emailSvc EmailService, rdb HealthChecker, log *logger.Logger) *Handler {
	return &Handler{
		emailSvc: emailSvc,
		rdb:      rdb,
		log:      log.WithComponent("handler"),
	}
}

// JSON helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(text))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	body := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if reqID := middleware.GetRequestID(r.Context()); reqID != "" {
		body["request_id"] = reqID
	}
	writeJSON(w, status, map[string]interface{}{"error": body})
}

func readJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("request body is empty")
	}
	defer r.Body.Close()

	return json.NewDecoder(r.Body).Decode(v)
}
