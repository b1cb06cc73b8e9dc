package service

import (
	"context"
	"sync"
	"time"

	"github.com/mmeshcher/fecha-instalacao/internal/model"
	"github.com/mmeshcher/fecha-instalacao/internal/repository"
)

// memRepo хранит данные в памяти и повторяет контракт PostgresRepository,
// включая вызов admit под блокировкой при создании бюджета.
type memRepo struct {
	mu sync.Mutex

	accounts     map[int64]*model.Account
	budgets      []model.Budget
	events       map[int64][]string
	invites      map[int64]*model.Invite
	testimonials []model.Testimonial
	nextID       int64

	countErr error
	listErr  error
}

func newMemRepo() *memRepo {
	return &memRepo{
		accounts: map[int64]*model.Account{},
		events:   map[int64][]string{},
		invites:  map[int64]*model.Invite{},
	}
}

func (m *memRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memRepo) addAccount(email string, isPro bool) *model.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := &model.Account{ID: m.id(), Email: email, IsPro: isPro, CreatedAt: time.Now()}
	m.accounts[a.ID] = a
	return a
}

func (m *memRepo) addBudget(accountID int64, status model.BudgetStatus, value string, createdAt time.Time) model.Budget {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := model.Budget{
		ID:            m.id(),
		AccountID:     accountID,
		ClientName:    "Cliente",
		Phone:         "(11) 98765-4321",
		ServiceType:   "Instalação",
		Value:         value,
		PaymentMethod: "Pix",
		Status:        status,
		CreatedAt:     createdAt,
	}
	m.budgets = append(m.budgets, b)
	return b
}

func (m *memRepo) budgetCount(accountID int64) int {
	n := 0
	for _, b := range m.budgets {
		if b.AccountID == accountID {
			n++
		}
	}
	return n
}

func (m *memRepo) Close() error { return nil }

func (m *memRepo) Ping(ctx context.Context) error { return nil }

func (m *memRepo) CreateAccount(ctx context.Context, email, passwordHash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			return 0, repository.ErrAccountExists
		}
	}
	a := &model.Account{ID: m.id(), Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	m.accounts[a.ID] = a
	return a.ID, nil
}

func (m *memRepo) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (m *memRepo) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memRepo) setPro(id int64, isPro bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[id].IsPro = isPro
}

func (m *memRepo) CountBudgets(ctx context.Context, accountID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.budgetCount(accountID), nil
}

func (m *memRepo) CreateBudget(ctx context.Context, b model.Budget, admit repository.AdmitFunc) (*model.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[b.AccountID]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	if m.countErr != nil {
		return nil, repository.ErrUsageUnavailable
	}
	if err := admit(acc.IsPro, m.budgetCount(b.AccountID)); err != nil {
		return nil, err
	}

	b.ID = m.id()
	b.Status = model.BudgetStatusAwaiting
	b.CreatedAt = time.Now()
	m.budgets = append(m.budgets, b)
	return &b, nil
}

func (m *memRepo) GetBudget(ctx context.Context, accountID, id int64) (*model.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.budgets {
		if b.ID == id && b.AccountID == accountID {
			cp := b
			return &cp, nil
		}
	}
	return nil, repository.ErrBudgetNotFound
}

func (m *memRepo) LatestBudget(ctx context.Context, accountID int64) (*model.Budget, error) {
	list, _ := m.ListBudgets(ctx, accountID)
	if len(list) == 0 {
		return nil, repository.ErrBudgetNotFound
	}
	return &list[0], nil
}

func (m *memRepo) ListBudgets(ctx context.Context, accountID int64) ([]model.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var res []model.Budget
	for i := len(m.budgets) - 1; i >= 0; i-- {
		if m.budgets[i].AccountID == accountID {
			res = append(res, m.budgets[i])
		}
	}
	return res, nil
}

func (m *memRepo) UpdateBudgetStatus(ctx context.Context, accountID, id int64, status model.BudgetStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.budgets {
		if m.budgets[i].ID == id && m.budgets[i].AccountID == accountID {
			m.budgets[i].Status = status
			return nil
		}
	}
	return repository.ErrBudgetNotFound
}

func (m *memRepo) RecordOnboardingEvent(ctx context.Context, accountID int64, event string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[accountID] = append(m.events[accountID], event)
	return nil
}

func (m *memRepo) HasOnboardingEvent(ctx context.Context, accountID int64, event string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events[accountID] {
		if e == event {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) GetOrCreateInvite(ctx context.Context, accountID int64, newCode func() (string, error)) (*model.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.invites[accountID]; ok {
		cp := *inv
		return &cp, nil
	}
	code, err := newCode()
	if err != nil {
		return nil, err
	}
	m.invites[accountID] = &model.Invite{Code: code}
	return &model.Invite{Code: code}, nil
}

func (m *memRepo) IncrementInviteCopy(ctx context.Context, accountID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invites[accountID]
	if !ok {
		return repository.ErrInviteNotFound
	}
	inv.CopyCount++
	return nil
}

func (m *memRepo) IncrementInviteClick(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invites {
		if inv.Code == code {
			inv.ClickCount++
			return nil
		}
	}
	return repository.ErrInviteNotFound
}

func (m *memRepo) ListTestimonials(ctx context.Context) ([]model.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Testimonial(nil), m.testimonials...), nil
}

func (m *memRepo) GetTestimonial(ctx context.Context, id int64) (*model.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.testimonials {
		if t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, repository.ErrTestimonialNotFound
}

func (m *memRepo) CreateTestimonial(ctx context.Context, t model.Testimonial) (*model.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	m.testimonials = append(m.testimonials, t)
	return &t, nil
}

func (m *memRepo) UpdateTestimonial(ctx context.Context, t model.Testimonial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.testimonials {
		if m.testimonials[i].ID == t.ID {
			m.testimonials[i] = t
			return nil
		}
	}
	return repository.ErrTestimonialNotFound
}

func (m *memRepo) DeleteTestimonial(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.testimonials {
		if m.testimonials[i].ID == id {
			m.testimonials = append(m.testimonials[:i], m.testimonials[i+1:]...)
			return nil
		}
	}
	return repository.ErrTestimonialNotFound
}
