package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/emailwriter/emailwriter/internal/middleware"
	"github.com/emailwriter/emailwriter/internal/model"
	"github.com/emailwriter/emailwriter/internal/upstream"
)

const maxRequestBytes = 1 << 20

// --- Email Handlers ---

// GenerateEmail writes a reply for the posted email as plain text
func (h *Handler) GenerateEmail(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeEmailRequest(w, r)
	if !ok {
		return
	}

	reply, err := h.emailSvc.Generate(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "generate")
		return
	}

	writeText(w, http.StatusOK, reply)
}

// AnalyzeEmail returns the analysis fields for the posted email
func (h *Handler) AnalyzeEmail(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeEmailRequest(w, r)
	if !ok {
		return
	}

	analysis, err := h.emailSvc.Analyze(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "analyze")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func (h *Handler) decodeEmailRequest(w http.ResponseWriter, r *http.Request) (model.EmailRequest, bool) {
	var req model.EmailRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return req, false
	}
	return req, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	log := h.log.WithRequestID(middleware.GetRequestID(r.Context()))
	// Client went away; upstream clients wrap the cancellation too
	if errors.Is(err, context.Canceled) {
		log.Debug().Err(err).Str("op", op).Msg("request cancelled by client")
		return
	}

	if ue, ok := upstream.As(err); ok {
		if ue.Timeout() {
			log.Warn().Err(err).Str("op", op).Msg("upstream timed out")
			writeError(w, r, http.StatusGatewayTimeout, "upstream_timeout", ue.Text())
			return
		}
		log.Warn().Err(err).Str("op", op).Msg("upstream call failed")
		writeError(w, r, http.StatusBadGateway, "upstream_error", ue.Text())
		return
	}


	log.Error().Err(err).Str("op", op).Msg("email operation failed")
	writeError(w, r, http.StatusInternalServerError, "internal_error", "Failed to process email")
}
