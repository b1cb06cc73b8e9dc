package service

import (
	"context"
	"errors"

	"github.com/mmeshcher/fecha-instalacao/internal/model"
	"github.com/mmeshcher/fecha-instalacao/internal/repository"
)

// OnboardingState: прогресс трёхшагового онбординга:
// создать бюджет, отправить его в WhatsApp, отметить статус.
type OnboardingState struct {
	Step1Done          bool               `json:"step1_done"`
	Step2Done          bool               `json:"step2_done"`
	Step3Done          bool               `json:"step3_done"`
	Completed          bool               `json:"completed"`
	TargetBudgetID     *int64             `json:"target_budget_id"`
	TargetBudgetStatus model.BudgetStatus `json:"target_budget_status,omitempty"`
}

// Onboarding возвращает прогресс онбординга по последнему бюджету аккаунта.
func (s *Service) Onboarding(ctx context.Context, accountID int64) (*OnboardingState, error) {
	st := &OnboardingState{}

	latest, err := s.repo.LatestBudget(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrBudgetNotFound) {
			return st, nil
		}
		return nil, err
	}

	st.Step1Done = true
	st.TargetBudgetID = &latest.ID
	st.TargetBudgetStatus = latest.Status

	st.Step2Done, err = s.repo.HasOnboardingEvent(ctx, accountID, model.OnboardingEventWhatsAppClicked)
	if err != nil {
		return nil, err
	}

	st.Step3Done = latest.Status.Valid()
	st.Completed = st.Step1Done && st.Step2Done && st.Step3Done
	return st, nil
}

// OnboardingWhatsApp отмечает второй шаг онбординга и возвращает ссылку на отправку бюджета.
func (s *Service) OnboardingWhatsApp(ctx context.Context, accountID, budgetID int64) (*WhatsAppMessage, error) {
	b, err := s.repo.GetBudget(ctx, accountID, budgetID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RecordOnboardingEvent(ctx, accountID, model.OnboardingEventWhatsAppClicked); err != nil {
		return nil, err
	}

	return budgetMessage(b), nil
}
