package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/fecha-instalacao/internal/model"
)

// AdmitFunc решает, можно ли создать ещё один бюджет при текущем числе бюджетов аккаунта.
type AdmitFunc func(isPro bool, count int) error

const budgetColumns = `id, account_id, client_name, phone, service_type, value, payment_method, notes, status, created_at`

func scanBudget(row pgx.Row) (*model.Budget, error) {
	var (
		b      model.Budget
		status string
	)
	err := row.Scan(&b.ID, &b.AccountID, &b.ClientName, &b.Phone, &b.ServiceType,
		&b.Value, &b.PaymentMethod, &b.Notes, &status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Status = model.BudgetStatus(status)
	return &b, nil
}

// CountBudgets возвращает общее число бюджетов аккаунта.
func (r *PostgresRepository) CountBudgets(ctx context.Context, accountID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM budgets WHERE account_id = $1`,
		accountID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count budgets: %w", err)
	}
	return n, nil
}

// CreateBudget сохраняет бюджет, если admit разрешает создание.
// Строка аккаунта блокируется на время транзакции, поэтому параллельные запросы
// одного аккаунта видят актуальный счётчик и не превышают лимит.
func (r *PostgresRepository) CreateBudget(ctx context.Context, b model.Budget, admit AdmitFunc) (*model.Budget, error) {
	var created *model.Budget
	err := r.withTxRetry(ctx, func() error {
		var err error
		created, err = r.createBudget(ctx, b, admit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *PostgresRepository) createBudget(ctx context.Context, b model.Budget, admit AdmitFunc) (*model.Budget, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var isPro bool
	err = tx.QueryRow(ctx, `SELECT is_pro FROM accounts WHERE id = $1 FOR UPDATE`, b.AccountID).Scan(&isPro)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lock account for update: %w", err)
	}

	var count int
	err = tx.QueryRow(ctx, `SELECT count(*) FROM budgets WHERE account_id = $1`, b.AccountID).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsageUnavailable, err)
	}

	if admit != nil {
		if err := admit(isPro, count); err != nil {
			return nil, err
		}
	}

	created, err := scanBudget(tx.QueryRow(ctx,
		`INSERT INTO budgets (account_id, client_name, phone, service_type, value, payment_method, notes, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+budgetColumns,
		b.AccountID, b.ClientName, b.Phone, b.ServiceType, b.Value, b.PaymentMethod, b.Notes,
		string(model.BudgetStatusAwaiting),
	))
	if err != nil {
		return nil, fmt.Errorf("insert budget: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return created, nil
}

// GetBudget возвращает бюджет аккаунта по идентификатору.
func (r *PostgresRepository) GetBudget(ctx context.Context, accountID, id int64) (*model.Budget, error) {
	b, err := scanBudget(r.pool.QueryRow(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1 AND account_id = $2`,
		id, accountID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// LatestBudget возвращает последний созданный бюджет аккаунта.
func (r *PostgresRepository) LatestBudget(ctx context.Context, accountID int64) (*model.Budget, error) {
	b, err := scanBudget(r.pool.QueryRow(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE account_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`,
		accountID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("latest budget: %w", err)
	}
	return b, nil
}

// ListBudgets возвращает бюджеты аккаунта, начиная с самых новых.
func (r *PostgresRepository) ListBudgets(ctx context.Context, accountID int64) ([]model.Budget, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+budgetColumns+`
		 FROM budgets
		 WHERE account_id = $1
		 ORDER BY created_at DESC, id DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("select budgets: %w", err)
	}
	defer rows.Close()

	var res []model.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		res = append(res, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateBudgetStatus меняет статус бюджета аккаунта.
func (r *PostgresRepository) UpdateBudgetStatus(ctx context.Context, accountID, id int64, status model.BudgetStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE budgets SET status = $3 WHERE id = $1 AND account_id = $2`,
		id, accountID, string(status),
	)
	if err != nil {
		return fmt.Errorf("update budget status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBudgetNotFound
	}
	return nil
}

// RecordOnboardingEvent сохраняет событие онбординга.
func (r *PostgresRepository) RecordOnboardingEvent(ctx context.Context, accountID int64, event string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO onboarding_events (account_id, event) VALUES ($1, $2)`,
		accountID, event,
	)
	if err != nil {
		return fmt.Errorf("insert onboarding event: %w", err)
	}
	return nil
}

// HasOnboardingEvent сообщает, было ли у аккаунта указанное событие.
func (r *PostgresRepository) HasOnboardingEvent(ctx context.Context, accountID int64, event string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM onboarding_events WHERE account_id = $1 AND event = $2)`,
		accountID, event,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("select onboarding event: %w", err)
	}
	return exists, nil
}
