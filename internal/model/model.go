// Package model содержит доменные сущности сервиса Fecha Instalação.
package model

import "time"

// Account представляет зарегистрированного исполнителя услуг.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	IsPro        bool
	CreatedAt    time.Time
}

// BudgetStatus описывает статус бюджета (orçamento), отправленного клиенту.
type BudgetStatus string

const (
	BudgetStatusAwaiting BudgetStatus = "awaiting"
	BudgetStatusWon      BudgetStatus = "won"
	BudgetStatusLost     BudgetStatus = "lost"
)

// Valid сообщает, является ли статус одним из допустимых значений.
func (s BudgetStatus) Valid() bool {
	switch s {
	case BudgetStatusAwaiting, BudgetStatusWon, BudgetStatusLost:
		return true
	}
	return false
}

// Budget описывает бюджет, составленный для клиента.
type Budget struct {
	ID            int64        `json:"id"`
	AccountID     int64        `json:"-"`
	ClientName    string       `json:"client_name"`
	Phone         string       `json:"phone"`
	ServiceType   string       `json:"service_type"`
	Value         string       `json:"value"`
	PaymentMethod string       `json:"payment_method"`
	Notes         string       `json:"notes"`
	Status        BudgetStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Invite содержит реферальный код аккаунта и счётчики его использования.
type Invite struct {
	Code       string `json:"code"`
	CopyCount  int    `json:"copy_count"`
	ClickCount int    `json:"click_count"`
}

// Testimonial: отзыв клиента для раздела кейсов.
type Testimonial struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Service   string    `json:"service"`
	Value     string    `json:"value"`
	Quote     string    `json:"quote"`
	CreatedAt time.Time `json:"created_at"`
}

// OnboardingEventWhatsAppClicked записывается, когда пользователь отправил первый бюджет из онбординга.
const OnboardingEventWhatsAppClicked = "onboarding_whatsapp_clicked"
