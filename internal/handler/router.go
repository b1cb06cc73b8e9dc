package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/fecha-instalacao/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.Logger(h.logger))

	// Подпись Kiwify считается по сырому телу, поэтому вебхук идёт мимо GzipMiddleware.
	r.Post("/webhooks/kiwify", h.KiwifyWebhook)

	r.Group(func(r chi.Router) {
		r.Use(custommiddleware.GzipMiddleware)
		h.routes(r)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}

func (h *Handler) routes(r chi.Router) {
	r.Get("/health", h.Health)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Get("/i/{code}", h.InviteRedirect)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)
		r.Use(custommiddleware.GateAdvisory(h.service))

		r.Get("/app/checkout", h.Checkout)

		r.Route("/api/app", func(r chi.Router) {
			r.Get("/dashboard", h.Dashboard)
			r.Get("/gate", h.Gate)
			r.Get("/retention", h.Retention)

			r.Post("/budgets", h.CreateBudget)
			r.Get("/budgets/{id}", h.GetBudget)
			r.Post("/budgets/{id}/status", h.UpdateBudgetStatus)
			r.Get("/budgets/{id}/whatsapp", h.BudgetWhatsApp)
			r.Get("/budgets/{id}/followup", h.BudgetFollowup)

			r.Get("/onboarding", h.Onboarding)
			r.Post("/onboarding/whatsapp/{budgetID}", h.OnboardingWhatsApp)

			r.Get("/invite", h.Invite)
			r.Post("/invite/copy", h.InviteCopied)

			r.Get("/upgrade", h.Upgrade)
			r.Post("/acquisition/generate", h.Acquisition)
			r.Post("/social-proof/generate", h.SocialProofText)
			r.Post("/social-proof/pdf", h.SocialProofPDF)

			r.Get("/cases", h.Cases)
			r.Get("/cases/{id}", h.Case)
			r.Post("/cases/admin", h.CreateCase)
			r.Put("/cases/admin/{id}", h.UpdateCase)
			r.Delete("/cases/admin/{id}", h.DeleteCase)
		})
	})
}
