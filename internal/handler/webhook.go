package handler

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/fecha-instalacao/internal/entitlement"
)

const maxWebhookBody = 64 << 10

type webhookResponse struct {
	OK bool `json:"ok"`
	*entitlement.Result
}

type webhookError struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// KiwifyWebhook принимает уведомления Kiwify и переключает подписку Pro покупателя.
func (h *Handler) KiwifyWebhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Warn("kiwify webhook: unreadable body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, webhookError{Error: "invalid_json"})
		return
	}

	res, err := h.reconciler.Reconcile(r.Context(), body, r.Header)
	if err != nil {
		switch {
		case errors.Is(err, entitlement.ErrSecretNotConfigured):
			h.logger.Error("kiwify webhook: secret not configured")
			writeJSON(w, http.StatusInternalServerError, webhookError{Error: "secret_not_configured"})
		case errors.Is(err, entitlement.ErrMissingSignature):
			writeJSON(w, http.StatusUnauthorized, webhookError{Error: "missing_signature"})
		case errors.Is(err, entitlement.ErrInvalidSignature):
			writeJSON(w, http.StatusUnauthorized, webhookError{Error: "invalid_signature"})
		case errors.Is(err, entitlement.ErrInvalidPayload):
			writeJSON(w, http.StatusBadRequest, webhookError{Error: "invalid_json"})
		case errors.Is(err, entitlement.ErrMissingEmail):
			writeJSON(w, http.StatusBadRequest, webhookError{Error: "missing_email"})
		default:
			h.logger.Error("kiwify webhook error", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, webhookError{Error: "internal_error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, webhookResponse{OK: true, Result: res})
}
