package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmeshcher/fecha-instalacao/internal/repository"
	"github.com/mmeshcher/fecha-instalacao/internal/validation"
)

// MinPasswordLength: минимальная длина пароля при регистрации.
const MinPasswordLength = 6

// RegisterAccount регистрирует аккаунт на бесплатном тарифе и возвращает его идентификатор.
func (s *Service) RegisterAccount(ctx context.Context, email, password string) (int64, error) {
	email = validation.NormalizeEmail(email)
	password = strings.TrimSpace(password)

	if !validation.IsValidEmail(email) || len(password) < MinPasswordLength {
		return 0, ErrInvalidInput
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.repo.CreateAccount(ctx, email, hashed)
	if err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			return 0, repository.ErrAccountExists
		}
		return 0, err
	}
	return id, nil
}

// AuthenticateAccount проверяет email и пароль и возвращает идентификатор аккаунта.
func (s *Service) AuthenticateAccount(ctx context.Context, email, password string) (int64, error) {
	acc, err := s.repo.GetAccountByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return 0, ErrInvalidCredentials
		}
		return 0, err
	}

	if !verifyPassword(strings.TrimSpace(password), acc.PasswordHash) {
		return 0, ErrInvalidCredentials
	}

	return acc.ID, nil
}
