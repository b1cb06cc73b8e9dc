// Package service реализует бизнес-логику сервиса Fecha Instalação.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/fecha-instalacao/internal/gate"
	"github.com/mmeshcher/fecha-instalacao/internal/model"
	"github.com/mmeshcher/fecha-instalacao/internal/repository"
)

var (
	// ErrInvalidCredentials возвращается при неверной паре email и пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrProRequired возвращается при обращении к возможности подписки Pro без подписки.
	ErrProRequired = errors.New("pro subscription required")
	// ErrForbidden возвращается, если у аккаунта нет прав на операцию.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidStatus возвращается для статуса бюджета вне awaiting, won, lost.
	ErrInvalidStatus = errors.New("invalid budget status")
	// ErrFollowupTooEarly возвращается, если с момента создания бюджета не прошло 24 часа.
	ErrFollowupTooEarly = errors.New("followup is available 24h after the budget was created")
	// ErrInvalidInput возвращается при пустых или некорректных полях запроса.
	ErrInvalidInput = errors.New("invalid input")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	Ping(ctx context.Context) error

	CreateAccount(ctx context.Context, email, passwordHash string) (int64, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)

	CountBudgets(ctx context.Context, accountID int64) (int, error)
	CreateBudget(ctx context.Context, b model.Budget, admit repository.AdmitFunc) (*model.Budget, error)
	GetBudget(ctx context.Context, accountID, id int64) (*model.Budget, error)
	LatestBudget(ctx context.Context, accountID int64) (*model.Budget, error)
	ListBudgets(ctx context.Context, accountID int64) ([]model.Budget, error)
	UpdateBudgetStatus(ctx context.Context, accountID, id int64, status model.BudgetStatus) error

	RecordOnboardingEvent(ctx context.Context, accountID int64, event string) error
	HasOnboardingEvent(ctx context.Context, accountID int64, event string) (bool, error)

	GetOrCreateInvite(ctx context.Context, accountID int64, newCode func() (string, error)) (*model.Invite, error)
	IncrementInviteCopy(ctx context.Context, accountID int64) error
	IncrementInviteClick(ctx context.Context, code string) error

	ListTestimonials(ctx context.Context) ([]model.Testimonial, error)
	GetTestimonial(ctx context.Context, id int64) (*model.Testimonial, error)
	CreateTestimonial(ctx context.Context, t model.Testimonial) (*model.Testimonial, error)
	UpdateTestimonial(ctx context.Context, t model.Testimonial) error
	DeleteTestimonial(ctx context.Context, id int64) error
}

// Options: параметры сервиса, не относящиеся к хранилищу.
type Options struct {
	BaseURL     string
	CheckoutURL string
	AdminUIDs   []int64
}

// Service содержит бизнес-логику сервиса Fecha Instalação.
type Service struct {
	repo   Repository
	gate   *gate.Gate
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewService создаёт сервис с указанным репозиторием и гейтом бесплатного тарифа.
func NewService(repo Repository, g *gate.Gate, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Service{
		repo:   repo,
		gate:   g,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Ping проверяет доступность хранилища.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) requirePro(ctx context.Context, accountID int64) (*model.Account, error) {
	acc, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if !acc.IsPro {
		return nil, ErrProRequired
	}
	return acc, nil
}

// IsCasesAdmin сообщает, может ли аккаунт управлять отзывами: подписчики Pro и аккаунты из ADMIN_UIDS.
func (s *Service) IsCasesAdmin(acc *model.Account) bool {
	if acc == nil {
		return false
	}
	return acc.IsPro || slices.Contains(s.opts.AdminUIDs, acc.ID)
}
