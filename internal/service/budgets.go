package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmeshcher/fecha-instalacao/internal/model"
	"github.com/mmeshcher/fecha-instalacao/internal/repository"
	"github.com/mmeshcher/fecha-instalacao/internal/validation"
	"github.com/mmeshcher/fecha-instalacao/internal/whatsapp"
)

// BudgetInput: поля нового бюджета.
type BudgetInput struct {
	ClientName    string `json:"client_name"`
	Phone         string `json:"phone"`
	ServiceType   string `json:"service_type"`
	Value         string `json:"value"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
}

func (in BudgetInput) valid() bool {
	for _, f := range []string{in.ClientName, in.ServiceType, in.Value, in.PaymentMethod} {
		if !validation.IsValidField(f) {
			return false
		}
	}
	return validation.IsValidPhoneBR(in.Phone) && len(in.Notes) <= 4*validation.MaxFieldLength
}

// WhatsAppMessage: готовая ссылка wa.me и текст сообщения.
type WhatsAppMessage struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// CreateBudget создаёт бюджет, если это разрешает лимит бесплатного тарифа.
func (s *Service) CreateBudget(ctx context.Context, accountID int64, in BudgetInput) (*model.Budget, error) {
	if !in.valid() {
		return nil, ErrInvalidInput
	}

	b := model.Budget{
		AccountID:     accountID,
		ClientName:    strings.TrimSpace(in.ClientName),
		Phone:         strings.TrimSpace(in.Phone),
		ServiceType:   strings.TrimSpace(in.ServiceType),
		Value:         strings.TrimSpace(in.Value),
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		Notes:         strings.TrimSpace(in.Notes),
	}

	created, err := s.repo.CreateBudget(ctx, b, s.gate.Admit)
	if err != nil {
		if errors.Is(err, repository.ErrUsageUnavailable) {
			return nil, s.gate.Unverifiable(accountID, err)
		}
		return nil, err
	}

	return created, nil
}

// GetBudget возвращает бюджет аккаунта.
func (s *Service) GetBudget(ctx context.Context, accountID, id int64) (*model.Budget, error) {
	return s.repo.GetBudget(ctx, accountID, id)
}

// UpdateBudgetStatus меняет статус бюджета на awaiting, won или lost.
func (s *Service) UpdateBudgetStatus(ctx context.Context, accountID, id int64, status string) error {
	st := model.BudgetStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return ErrInvalidStatus
	}
	return s.repo.UpdateBudgetStatus(ctx, accountID, id, st)
}

// BudgetWhatsApp возвращает ссылку для отправки бюджета клиенту.
func (s *Service) BudgetWhatsApp(ctx context.Context, accountID, id int64) (*WhatsAppMessage, error) {
	b, err := s.repo.GetBudget(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	return budgetMessage(b), nil
}

func budgetMessage(b *model.Budget) *WhatsAppMessage {
	msg := whatsapp.BudgetMessage(whatsapp.Quote{
		ClientName:    b.ClientName,
		ServiceType:   b.ServiceType,
		Value:         b.Value,
		PaymentMethod: b.PaymentMethod,
		Notes:         b.Notes,
	})
	return &WhatsAppMessage{URL: whatsapp.Link(b.Phone, msg), Message: msg}
}

// BudgetFollowup возвращает ссылку на напоминание клиенту.
// Доступно не раньше чем через сутки после создания бюджета.
func (s *Service) BudgetFollowup(ctx context.Context, accountID, id int64) (*WhatsAppMessage, error) {
	b, err := s.repo.GetBudget(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	if !whatsapp.CanFollowup(b.CreatedAt, s.now()) {
		return nil, fmt.Errorf("%w: budget %d", ErrFollowupTooEarly, b.ID)
	}

	msg := whatsapp.FollowupMessage(b.ClientName)
	return &WhatsAppMessage{URL: whatsapp.Link(b.Phone, msg), Message: msg}, nil
}
