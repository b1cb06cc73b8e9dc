// Package gate решает, может ли аккаунт пользоваться платными возможностями
// и сколько бюджетов ему ещё доступно на бесплатном тарифе.
package gate

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mmeshcher/fecha-instalacao/internal/model"
)

var (
	// ErrLimitReached возвращается при попытке создать бюджет сверх лимита бесплатного тарифа.
	ErrLimitReached = errors.New("free plan budget limit reached")
	// ErrUsageUnverifiable возвращается, если количество бюджетов не удалось посчитать.
	// Создание в этом случае запрещается.
	ErrUsageUnverifiable = errors.New("budget usage could not be determined")
)

// Значения решений для метрик.
const (
	DecisionAllowed      = "allowed"
	DecisionLimitReached = "limit_reached"
	DecisionUnverifiable = "unverifiable"
)

// Порог, начиная с которого показывается предупреждение.
const nearLimitThreshold = 2

// Store описывает данные, нужные гейту для расчёта.
type Store interface {
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)
	CountBudgets(ctx context.Context, accountID int64) (int, error)
}

// Recorder принимает решения гейта для метрик.
type Recorder interface {
	GateDecision(decision string)
}

// Info: результат расчёта гейта для одного аккаунта.
type Info struct {
	IsPro     bool `json:"is_pro"`
	Total     int  `json:"total_budgets"`
	Limit     int  `json:"limit"`
	Remaining *int `json:"remaining"`
	NearLimit bool `json:"near_limit"`
	AtLimit   bool `json:"at_limit"`
}

// Decide вычисляет состояние гейта по флагу Pro и количеству бюджетов.
func Decide(isPro bool, count, ceiling int) Info {
	info := Info{
		IsPro: isPro,
		Total: count,
		Limit: ceiling,
	}
	if isPro {
		return info
	}

	remaining := ceiling - count
	if remaining < 0 {
		remaining = 0
	}

	info.Remaining = &remaining
	info.NearLimit = remaining > 0 && remaining <= nearLimitThreshold
	info.AtLimit = remaining == 0
	return info
}

// Gate вычисляет подсказки для интерфейса и допускает создание новых бюджетов.
type Gate struct {
	store    Store
	ceiling  int
	logger   *zap.Logger
	recorder Recorder
}

// New создаёт гейт с указанным лимитом бесплатного тарифа.
func New(store Store, ceiling int, logger *zap.Logger, recorder Recorder) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		store:    store,
		ceiling:  ceiling,
		logger:   logger,
		recorder: recorder,
	}
}

// Ceiling возвращает лимит бюджетов бесплатного тарифа.
func (g *Gate) Ceiling() int {
	return g.ceiling
}

// Info возвращает состояние гейта для аккаунта. Любая ошибка логируется,
// а вызывающий получает ok=false: без баннера и без блокировки.
func (g *Gate) Info(ctx context.Context, accountID int64) (Info, bool) {
	acc, err := g.store.GetAccountByID(ctx, accountID)
	if err != nil {
		g.logger.Warn("gate: load account", zap.Error(err), zap.Int64("accountID", accountID))
		return Info{}, false
	}

	count, err := g.store.CountBudgets(ctx, accountID)
	if err != nil {
		g.logger.Warn("gate: count budgets", zap.Error(err), zap.Int64("accountID", accountID))
		return Info{}, false
	}

	return Decide(acc.IsPro, count, g.ceiling), true
}

// Admit проверяет, можно ли создать ещё один бюджет при текущем состоянии.
// Вызывается внутри транзакции создания, пока строка аккаунта заблокирована.
func (g *Gate) Admit(isPro bool, count int) error {
	if Decide(isPro, count, g.ceiling).AtLimit {
		g.record(DecisionLimitReached)
		return ErrLimitReached
	}
	g.record(DecisionAllowed)
	return nil
}

// Unverifiable фиксирует отказ в создании из-за ошибки подсчёта и возвращает ErrUsageUnverifiable.
func (g *Gate) Unverifiable(accountID int64, cause error) error {
	g.logger.Error("gate: usage unverifiable, refusing creation", zap.Error(cause), zap.Int64("accountID", accountID))
	g.record(DecisionUnverifiable)
	return ErrUsageUnverifiable
}

func (g *Gate) record(decision string) {
	if g.recorder != nil {
		g.recorder.GateDecision(decision)
	}
}

type contextKey struct{}

// WithInfo сохраняет состояние гейта в контексте запроса.
func WithInfo(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, contextKey{}, info)
}

// InfoFromContext извлекает состояние гейта из контекста запроса.
func InfoFromContext(ctx context.Context) (Info, bool) {
	info, ok := ctx.Value(contextKey{}).(Info)
	return info, ok
}
