package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/fecha-instalacao/internal/marketing"
	"github.com/mmeshcher/fecha-instalacao/internal/service"
)

// Invite возвращает реферальную ссылку и счётчики.
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	inv, err := h.service.Invite(r.Context(), accountID)
	if err != nil {
		h.fail(w, r, err, "invite error", zap.Int64("accountID", accountID))
		return
	}

	writeJSON(w, http.StatusOK, inv)
}

// InviteCopied учитывает копирование ссылки.
func (h *Handler) InviteCopied(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	if err := h.service.InviteCopied(r.Context(), accountID); err != nil {
		h.fail(w, r, err, "invite copy error", zap.Int64("accountID", accountID))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// InviteRedirect учитывает переход по реферальной ссылке и ведёт на главную.
// Ошибка учёта не мешает переходу.
func (h *Handler) InviteRedirect(w http.ResponseWriter, r *http.Request) {
	code, err := h.service.InviteClicked(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.logger.Warn("invite click error", zap.Error(err))
	}

	target := "/"
	if code != "" {
		target = "/?ref=" + url.QueryEscape(code)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Upgrade возвращает статус подписки и ссылку на оплату.
func (h *Handler) Upgrade(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	info, err := h.service.Upgrade(r.Context(), accountID)
	if err != nil {
		h.fail(w, r, err, "upgrade error", zap.Int64("accountID", accountID))
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// Checkout перенаправляет на страницу оплаты Kiwify.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	info, err := h.service.Upgrade(r.Context(), accountID)
	if err != nil {
		h.fail(w, r, err, "checkout error", zap.Int64("accountID", accountID))
		return
	}
	if info.CheckoutURL == "" {
		writeError(w, http.StatusServiceUnavailable, "checkout_not_configured")
		return
	}

	http.Redirect(w, r, info.CheckoutURL, http.StatusFound)
}

// Acquisition генерирует сообщения для поиска клиентов.
func (h *Handler) Acquisition(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req marketing.Prospect
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	msgs, err := h.service.Acquisition(r.Context(), accountID, req)
	if err != nil {
		h.fail(w, r, err, "acquisition error", zap.Int64("accountID", accountID))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":     marketing.ParseMode(req.Mode),
		"messages": msgs,
	})
}

// SocialProofText собирает пост о закрытой сделке.
func (h *Handler) SocialProofText(w http.ResponseWriter, r *http.Request) {
	var req marketing.Closing
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	text, err := h.service.SocialProofText(req)
	if err != nil {
		h.fail(w, r, err, "social proof error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

type pdfRequest struct {
	Text string `json:"text"`
}

// SocialProofPDF отдаёт пост о закрытой сделке в виде PDF.
func (h *Handler) SocialProofPDF(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req pdfRequest
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	doc, err := h.service.SocialProofPDF(r.Context(), accountID, req.Text)
	if err != nil {
		h.fail(w, r, err, "social proof pdf error", zap.Int64("accountID", accountID))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="prova-social.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// Cases возвращает отзывы клиентов.
func (h *Handler) Cases(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Testimonials(r.Context())
	if err != nil {
		h.fail(w, r, err, "list testimonials error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Case возвращает один отзыв.
func (h *Handler) Case(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	t, err := h.service.Testimonial(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "get testimonial error", zap.Int64("testimonialID", id))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateCase добавляет отзыв.
func (h *Handler) CreateCase(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req service.TestimonialInput
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	t, err := h.service.CreateTestimonial(r.Context(), accountID, req)
	if err != nil {
		h.fail(w, r, err, "create testimonial error", zap.Int64("accountID", accountID))
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

// UpdateCase перезаписывает отзыв.
func (h *Handler) UpdateCase(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req service.TestimonialInput
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateTestimonial(r.Context(), accountID, id, req); err != nil {
		h.fail(w, r, err, "update testimonial error", zap.Int64("accountID", accountID), zap.Int64("testimonialID", id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DeleteCase удаляет отзыв.
func (h *Handler) DeleteCase(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteTestimonial(r.Context(), accountID, id); err != nil {
		h.fail(w, r, err, "delete testimonial error", zap.Int64("accountID", accountID), zap.Int64("testimonialID", id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
