package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmeshcher/fecha-instalacao/internal/gate"
	"github.com/mmeshcher/fecha-instalacao/internal/marketing"
	"github.com/mmeshcher/fecha-instalacao/internal/model"
	"github.com/mmeshcher/fecha-instalacao/internal/whatsapp"
)

// RetentionWindow: период еженедельного отчёта.
const RetentionWindow = 7 * 24 * time.Hour

// BudgetView: бюджет в списке на главной странице.
type BudgetView struct {
	model.Budget
	CanFollowup bool `json:"can_followup"`
}

// MonthMetrics: показатели текущего календарного месяца (UTC).
type MonthMetrics struct {
	WonValue      string `json:"month_won_value"`
	LostValue     string `json:"month_lost_value"`
	ConversionPct string `json:"month_conversion_pct"`
	TotalCount    int    `json:"month_total_count"`
	Awaiting      int    `json:"month_awaiting"`
}

// Dashboard: данные главной страницы.
type Dashboard struct {
	Email     string       `json:"email"`
	Budgets   []BudgetView `json:"budgets"`
	Remaining *int         `json:"remaining"`
	Metrics   MonthMetrics `json:"metrics"`
	Gate      gate.Info    `json:"gate"`
}

// Dashboard собирает бюджеты аккаунта и показатели месяца.
func (s *Service) Dashboard(ctx context.Context, accountID int64) (*Dashboard, error) {
	acc, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	budgets, err := s.repo.ListBudgets(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	info := gate.Decide(acc.IsPro, len(budgets), s.gate.Ceiling())

	views := make([]BudgetView, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, BudgetView{Budget: b, CanFollowup: whatsapp.CanFollowup(b.CreatedAt, now)})
	}

	return &Dashboard{
		Email:     acc.Email,
		Budgets:   views,
		Remaining: info.Remaining,
		Metrics:   monthMetrics(budgets, now),
		Gate:      info,
	}, nil
}

func monthWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func monthMetrics(budgets []model.Budget, now time.Time) MonthMetrics {
	start, end := monthWindow(now)

	var (
		total, won, awaiting  int
		wonValues, lostValues []string
	)
	for _, b := range budgets {
		created := b.CreatedAt.UTC()
		if created.Before(start) || !created.Before(end) {
			continue
		}
		total++
		switch b.Status {
		case model.BudgetStatusWon:
			won++
			wonValues = append(wonValues, b.Value)
		case model.BudgetStatusLost:
			lostValues = append(lostValues, b.Value)
		case model.BudgetStatusAwaiting:
			awaiting++
		}
	}

	return MonthMetrics{
		WonValue:      marketing.FormatBRL(marketing.SumBRL(wonValues)),
		LostValue:     marketing.FormatBRL(marketing.SumBRL(lostValues)),
		ConversionPct: fmt.Sprintf("%.0f%%", percent(won, total)),
		TotalCount:    total,
		Awaiting:      awaiting,
	}
}

func percent(n, d int) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}

// RetentionReport: еженедельный отчёт по бюджетам.
type RetentionReport struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Created    int       `json:"created_count"`
	Won        int       `json:"closed_count"`
	Awaiting   int       `json:"awaiting_count"`
	Lost       int       `json:"lost_count"`
	Conversion float64   `json:"conversion"`
	Text       string    `json:"report_text"`
}

// Retention возвращает отчёт по бюджетам, созданным за последние 7 дней.
func (s *Service) Retention(ctx context.Context, accountID int64) (*RetentionReport, error) {
	budgets, err := s.repo.ListBudgets(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rep := &RetentionReport{Start: now.Add(-RetentionWindow), End: now}

	for _, b := range budgets {
		if b.CreatedAt.Before(rep.Start) {
			continue
		}
		rep.Created++
		switch b.Status {
		case model.BudgetStatusWon:
			rep.Won++
		case model.BudgetStatusLost:
			rep.Lost++
		case model.BudgetStatusAwaiting:
			rep.Awaiting++
		}
	}

	rep.Conversion = float64(int(percent(rep.Won, rep.Created)*10+0.5)) / 10
	rep.Text = retentionText(rep)
	return rep, nil
}

func retentionText(rep *RetentionReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 RELATÓRIO SEMANAL - %s a %s\n\n", rep.Start.Format("02/01/2006"), rep.End.Format("02/01/2006"))
	fmt.Fprintf(&b, "Orçamentos criados: %d\n", rep.Created)
	fmt.Fprintf(&b, "Fechados: %d\n", rep.Won)
	fmt.Fprintf(&b, "Aguardando: %d\n", rep.Awaiting)
	fmt.Fprintf(&b, "Perdidos: %d\n", rep.Lost)
	fmt.Fprintf(&b, "Taxa de conversão: %.1f%%\n\n", rep.Conversion)
	b.WriteString("Ação simples:\n")
	b.WriteString("- Faça follow-up nos aguardando\n")
	b.WriteString("- Quem responde rápido fecha mais\n")
	return b.String()
}
