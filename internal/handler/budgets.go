package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/fecha-instalacao/internal/gate"
	"github.com/mmeshcher/fecha-instalacao/internal/service"
)

type dashboardResponse struct {
	*service.Dashboard
	Banner *gate.Banner `json:"banner"`
}

// Dashboard возвращает бюджеты, показатели месяца и состояние лимита.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	d, err := h.service.Dashboard(r.Context(), accountID)
	if err != nil {
		h.fail(w, r, err, "dashboard error", zap.Int64("accountID", accountID))
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{Dashboard: d, Banner: d.Gate.Banner()})
}

type gateResponse struct {
	Gate   *gate.Info   `json:"gate"`
	Banner *gate.Banner `json:"banner"`
}

// Gate возвращает состояние лимита. Если его не удалось посчитать, оба поля пустые.
func (h *Handler) Gate(w http.ResponseWriter, r *http.Request) {
	var resp gateResponse
	if info, ok := gate.InfoFromContext(r.Context()); ok {
		resp.Gate = &info
		resp.Banner = info.Banner()
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateBudget создаёт бюджет в пределах лимита бесплатного тарифа.
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req service.BudgetInput
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	b, err := h.service.CreateBudget(r.Context(), accountID, req)
	if err != nil {
		h.fail(w, r, err, "create budget error", zap.Int64("accountID", accountID))
		return
	}

	writeJSON(w, http.StatusCreated, b)
}

// GetBudget возвращает один бюджет аккаунта.
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	b, err := h.service.GetBudget(r.Context(), accountID, id)
	if err != nil {
		h.fail(w, r, err, "get budget error", zap.Int64("accountID", accountID), zap.Int64("budgetID", id))
		return
	}

	writeJSON(w, http.StatusOK, b)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateBudgetStatus меняет статус бюджета.
func (h *Handler) UpdateBudgetStatus(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req statusRequest
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateBudgetStatus(r.Context(), accountID, id, req.Status); err != nil {
		h.fail(w, r, err, "update budget status error", zap.Int64("accountID", accountID), zap.Int64("budgetID", id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "status": req.Status})
}

// BudgetWhatsApp возвращает ссылку wa.me с текстом бюджета.
func (h *Handler) BudgetWhatsApp(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	msg, err := h.service.BudgetWhatsApp(r.Context(), accountID, id)
	if err != nil {
		h.fail(w, r, err, "budget whatsapp error", zap.Int64("accountID", accountID), zap.Int64("budgetID", id))
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

// BudgetFollowup возвращает ссылку wa.me с напоминанием клиенту.
func (h *Handler) BudgetFollowup(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	msg, err := h.service.BudgetFollowup(r.Context(), accountID, id)
	if err != nil {
		h.fail(w, r, err, "budget followup error", zap.Int64("accountID", accountID), zap.Int64("budgetID", id))
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

// Retention возвращает отчёт за последние 7 дней.
func (h *Handler) Retention(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	rep, err := h.service.Retention(r.Context(), accountID)
	if err != nil {
		h.fail(w, r, err, "retention error", zap.Int64("accountID", accountID))
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// Onboarding возвращает прогресс онбординга.
func (h *Handler) Onboarding(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	st, err := h.service.Onboarding(r.Context(), accountID)
	if err != nil {
		h.fail(w, r, err, "onboarding error", zap.Int64("accountID", accountID))
		return
	}

	writeJSON(w, http.StatusOK, st)
}

// OnboardingWhatsApp отмечает шаг отправки бюджета и перенаправляет в WhatsApp.
func (h *Handler) OnboardingWhatsApp(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "budgetID")
	if !ok {
		return
	}

	msg, err := h.service.OnboardingWhatsApp(r.Context(), accountID, id)
	if err != nil {
		h.fail(w, r, err, "onboarding whatsapp error", zap.Int64("accountID", accountID), zap.Int64("budgetID", id))
		return
	}

	http.Redirect(w, r, msg.URL, http.StatusFound)
}
