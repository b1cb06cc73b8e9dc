package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmeshcher/fecha-instalacao/internal/export"
	"github.com/mmeshcher/fecha-instalacao/internal/gate"
	"github.com/mmeshcher/fecha-instalacao/internal/marketing"
)

// UpgradeInfo: данные страницы перехода на Pro.
type UpgradeInfo struct {
	IsPro       bool   `json:"is_pro"`
	CheckoutURL string `json:"checkout_url"`
}

// Upgrade возвращает ссылку на оплату подписки в Kiwify.
func (s *Service) Upgrade(ctx context.Context, accountID int64) (*UpgradeInfo, error) {
	acc, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	return &UpgradeInfo{IsPro: acc.IsPro, CheckoutURL: s.opts.CheckoutURL}, nil
}

// Acquisition генерирует сообщения для поиска клиентов. Только для Pro.
func (s *Service) Acquisition(ctx context.Context, accountID int64, p marketing.Prospect) ([]string, error) {
	if _, err := s.requirePro(ctx, accountID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Service) == "" || strings.TrimSpace(p.City) == "" {
		return nil, ErrInvalidInput
	}
	return marketing.AcquisitionMessages(p), nil
}

// SocialProofText собирает пост о закрытой сделке.
func (s *Service) SocialProofText(c marketing.Closing) (string, error) {
	if strings.TrimSpace(c.Service) == "" {
		return "", ErrInvalidInput
	}
	return marketing.SocialProofText(c), nil
}

// SocialProofPDF выгружает пост о закрытой сделке в PDF. Только для Pro.
func (s *Service) SocialProofPDF(ctx context.Context, accountID int64, text string) ([]byte, error) {
	if _, err := s.requirePro(ctx, accountID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidInput
	}

	doc, err := export.SocialProofPDF(text, s.now())
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return doc, nil
}

// GateInfo возвращает состояние гейта аккаунта. Ошибки не блокируют запрос.
func (s *Service) GateInfo(ctx context.Context, accountID int64) (gate.Info, bool) {
	return s.gate.Info(ctx, accountID)
}
