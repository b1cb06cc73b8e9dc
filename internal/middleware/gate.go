package middleware

import (
	"context"
	"net/http"

	"github.com/mmeshcher/fecha-instalacao/internal/gate"
)

// GateInfoProvider вычисляет состояние гейта аккаунта. ok=false означает, что расчёт не удался.
type GateInfoProvider interface {
	GateInfo(ctx context.Context, accountID int64) (gate.Info, bool)
}

// GateAdvisory кладёт состояние гейта в контекст запроса для баннеров.
// Ошибки расчёта запрос не блокируют. Должен стоять после AuthMiddleware.
func GateAdvisory(provider GateInfoProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, ok := GetAccountIDFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if info, ok := provider.GateInfo(r.Context(), accountID); ok {
				r = r.WithContext(gate.WithInfo(r.Context(), info))
			}
			next.ServeHTTP(w, r)
		})
	}
}
