// Package handler содержит HTTP-обработчики API сервиса Fecha Instalação.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/fecha-instalacao/internal/entitlement"
	"github.com/mmeshcher/fecha-instalacao/internal/gate"
	"github.com/mmeshcher/fecha-instalacao/internal/marketing"
	"github.com/mmeshcher/fecha-instalacao/internal/middleware"
	"github.com/mmeshcher/fecha-instalacao/internal/model"
	"github.com/mmeshcher/fecha-instalacao/internal/repository"
	"github.com/mmeshcher/fecha-instalacao/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Ping(ctx context.Context) error

	RegisterAccount(ctx context.Context, email, password string) (int64, error)
	AuthenticateAccount(ctx context.Context, email, password string) (int64, error)

	GateInfo(ctx context.Context, accountID int64) (gate.Info, bool)
	Dashboard(ctx context.Context, accountID int64) (*service.Dashboard, error)
	Retention(ctx context.Context, accountID int64) (*service.RetentionReport, error)

	CreateBudget(ctx context.Context, accountID int64, in service.BudgetInput) (*model.Budget, error)
	GetBudget(ctx context.Context, accountID, id int64) (*model.Budget, error)
	UpdateBudgetStatus(ctx context.Context, accountID, id int64, status string) error
	BudgetWhatsApp(ctx context.Context, accountID, id int64) (*service.WhatsAppMessage, error)
	BudgetFollowup(ctx context.Context, accountID, id int64) (*service.WhatsAppMessage, error)

	Onboarding(ctx context.Context, accountID int64) (*service.OnboardingState, error)
	OnboardingWhatsApp(ctx context.Context, accountID, budgetID int64) (*service.WhatsAppMessage, error)

	Invite(ctx context.Context, accountID int64) (*service.InviteInfo, error)
	InviteCopied(ctx context.Context, accountID int64) error
	InviteClicked(ctx context.Context, code string) (string, error)

	Upgrade(ctx context.Context, accountID int64) (*service.UpgradeInfo, error)
	Acquisition(ctx context.Context, accountID int64, p marketing.Prospect) ([]string, error)
	SocialProofText(c marketing.Closing) (string, error)
	SocialProofPDF(ctx context.Context, accountID int64, text string) ([]byte, error)

	Testimonials(ctx context.Context) ([]model.Testimonial, error)
	Testimonial(ctx context.Context, id int64) (*model.Testimonial, error)
	CreateTestimonial(ctx context.Context, accountID int64, in service.TestimonialInput) (*model.Testimonial, error)
	UpdateTestimonial(ctx context.Context, accountID, id int64, in service.TestimonialInput) error
	DeleteTestimonial(ctx context.Context, accountID, id int64) error
}

// Reconciler применяет уведомления Kiwify.
type Reconciler interface {
	Reconcile(ctx context.Context, body []byte, headers http.Header) (*entitlement.Result, error)
}

// Handler реализует HTTP-обработчики API сервиса Fecha Instalação.
type Handler struct {
	service        Service
	reconciler     Reconciler
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	metrics        http.Handler
}

// NewHandler создаёт обработчик HTTP-запросов. metrics может быть nil.
func NewHandler(s Service, rec Reconciler, logger *zap.Logger, auth *middleware.AuthMiddleware, metrics http.Handler) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:        s,
		reconciler:     rec,
		logger:         logger,
		authMiddleware: auth,
		metrics:        metrics,
	}
}

type errorResponse struct {
	Error      string       `json:"error"`
	UpgradeURL string       `json:"upgrade_url,omitempty"`
	Gate       *gate.Info   `json:"gate,omitempty"`
	Banner     *gate.Banner `json:"banner,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{Error: code})
}

func decodeJSON(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func (h *Handler) accountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}
	return id, ok
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// fail переводит ошибку сервиса в HTTP-ответ. Неожиданные ошибки логируются.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, msg string, fields ...zap.Field) {
	switch {
	case errors.Is(err, repository.ErrBudgetNotFound),
		errors.Is(err, repository.ErrTestimonialNotFound),
		errors.Is(err, repository.ErrAccountNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input")
	case errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_status")
	case errors.Is(err, service.ErrProRequired):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "pro_required", UpgradeURL: gate.UpgradePath})
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrFollowupTooEarly):
		writeError(w, http.StatusConflict, "followup_too_early")
	case errors.Is(err, gate.ErrLimitReached):
		resp := errorResponse{Error: "limit_reached", UpgradeURL: gate.UpgradePath}
		if info, ok := gate.InfoFromContext(r.Context()); ok {
			resp.Gate = &info
			resp.Banner = info.Banner()
		}
		writeJSON(w, http.StatusForbidden, resp)
	case errors.Is(err, gate.ErrUsageUnverifiable):
		writeError(w, http.StatusServiceUnavailable, "usage_unverifiable")
	default:
		h.logger.Error(msg, append(fields, zap.Error(err))...)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Health отвечает на проверку живости и доступности БД.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.Warn("health check: database unavailable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"ok": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup регистрирует аккаунт и сразу открывает сессию.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(r, &req) || req.Email == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	accountID, err := h.service.RegisterAccount(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			writeError(w, http.StatusConflict, "email_taken")
			return
		}
		h.fail(w, r, err, "register account error")
		return
	}

	h.authMiddleware.SetAuthCookie(w, accountID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "account_id": accountID})
}

// Login проверяет email и пароль и открывает сессию.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(r, &req) || req.Email == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	accountID, err := h.service.AuthenticateAccount(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		h.fail(w, r, err, "login error")
		return
	}

	h.authMiddleware.SetAuthCookie(w, accountID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "account_id": accountID})
}

// Logout закрывает сессию.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authMiddleware.ClearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
