package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/fecha-instalacao/internal/model"
)

const inviteCodeAttempts = 5

// GetOrCreateInvite возвращает реферальный код аккаунта, создавая его при первом обращении.
// При коллизии кода генерируется новый.
func (r *PostgresRepository) GetOrCreateInvite(ctx context.Context, accountID int64, newCode func() (string, error)) (*model.Invite, error) {
	inv, err := r.getInvite(ctx, accountID)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, ErrInviteNotFound) {
		return nil, err
	}

	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := newCode()
		if err != nil {
			return nil, fmt.Errorf("generate invite code: %w", err)
		}

		_, err = r.pool.Exec(ctx,
			`INSERT INTO invite_referrals (account_id, code) VALUES ($1, $2)
			 ON CONFLICT (account_id) DO NOTHING`,
			accountID, code,
		)
		if err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return nil, fmt.Errorf("insert invite: %w", err)
		}

		return r.getInvite(ctx, accountID)
	}

	return nil, fmt.Errorf("insert invite: no free code after %d attempts", inviteCodeAttempts)
}

func (r *PostgresRepository) getInvite(ctx context.Context, accountID int64) (*model.Invite, error) {
	var inv model.Invite
	err := r.pool.QueryRow(ctx,
		`SELECT code, copy_count, click_count FROM invite_referrals WHERE account_id = $1`,
		accountID,
	).Scan(&inv.Code, &inv.CopyCount, &inv.ClickCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}
	return &inv, nil
}

// IncrementInviteCopy увеличивает счётчик копирований ссылки.
func (r *PostgresRepository) IncrementInviteCopy(ctx context.Context, accountID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invite_referrals SET copy_count = copy_count + 1 WHERE account_id = $1`,
		accountID,
	)
	if err != nil {
		return fmt.Errorf("increment invite copy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInviteNotFound
	}
	return nil
}

// IncrementInviteClick увеличивает счётчик переходов по коду.
func (r *PostgresRepository) IncrementInviteClick(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invite_referrals SET click_count = click_count + 1 WHERE code = $1`,
		code,
	)
	if err != nil {
		return fmt.Errorf("increment invite click: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInviteNotFound
	}
	return nil
}
