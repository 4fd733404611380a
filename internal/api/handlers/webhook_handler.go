package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"leadflow/internal/engine/intake"
	"leadflow/internal/pkg/errors"
	"leadflow/internal/platform/config"
)

type WebhookHandler struct {
	intake      *intake.Service
	verifyToken string
	appSecret   string
}

func NewWebhookHandler(svc *intake.Service, cfg config.MetaConfig) *WebhookHandler {
	return &WebhookHandler{
		intake:      svc,
		verifyToken: cfg.VerifyToken,
		appSecret:   cfg.AppSecret,
	}
}

// Verify answers the platform's subscription challenge: echo hub.challenge as
// plain text when the mode and token match, 403 otherwise.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken && challenge != "" {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(challenge))
		return
	}

	errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Webhook verification failed", nil)
}

// Receive handles a lead delivery. The signature is checked over the raw body
// bytes before the body is parsed as JSON.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Failed to read request body", nil)
		return
	}

	if err := intake.VerifySignature(raw, r.Header.Get("X-Hub-Signature-256"), h.appSecret); err != nil {
		log.Warn().Str("remote", r.RemoteAddr).Msg("webhook signature check failed")
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing or invalid X-Hub-Signature-256", nil)
		return
	}

	var payload intake.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Malformed webhook payload", nil)
		return
	}

	saved := h.intake.Process(r.Context(), payload.Entry)

	log.Info().Int("saved", saved).Int("entries", len(payload.Entry)).Msg("webhook delivery processed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		OK    bool `json:"ok"`
		Saved int  `json:"saved"`
	}{OK: true, Saved: saved})
}
