package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/mmeshcher/fecha-instalacao/internal/repository"
)

const (
	inviteCodeLength   = 8
	inviteCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// InviteInfo: реферальная ссылка аккаунта и её статистика.
type InviteInfo struct {
	Link       string `json:"invite_link"`
	ShareText  string `json:"share_text"`
	CopyCount  int    `json:"copy_count"`
	ClickCount int    `json:"click_count"`
}

// Invite возвращает реферальную ссылку, создавая код при первом обращении.
func (s *Service) Invite(ctx context.Context, accountID int64) (*InviteInfo, error) {
	inv, err := s.repo.GetOrCreateInvite(ctx, accountID, newInviteCode)
	if err != nil {
		return nil, err
	}

	link := s.opts.BaseURL + "/i/" + inv.Code
	return &InviteInfo{
		Link: link,
		ShareText: "🚀 Estou usando o FECHA INSTALAÇÃO para enviar orçamentos e fechar mais rápido.\n" +
			"Quer testar? Entra por aqui: " + link,
		CopyCount:  inv.CopyCount,
		ClickCount: inv.ClickCount,
	}, nil
}

// InviteCopied увеличивает счётчик копирований ссылки.
func (s *Service) InviteCopied(ctx context.Context, accountID int64) error {
	if _, err := s.repo.GetOrCreateInvite(ctx, accountID, newInviteCode); err != nil {
		return err
	}
	return s.repo.IncrementInviteCopy(ctx, accountID)
}

// InviteClicked учитывает переход по коду и возвращает нормализованный код.
// Неизвестный код не считается ошибкой: посетитель всё равно попадает на главную.
func (s *Service) InviteClicked(ctx context.Context, code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "", nil
	}

	if err := s.repo.IncrementInviteClick(ctx, code); err != nil {
		if errors.Is(err, repository.ErrInviteNotFound) {
			return code, nil
		}
		return "", err
	}
	return code, nil
}

func newInviteCode() (string, error) {
	limit := big.NewInt(int64(len(inviteCodeAlphabet)))
	var b strings.Builder
	b.Grow(inviteCodeLength)
	for i := 0; i < inviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("random: %w", err)
		}
		b.WriteByte(inviteCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
