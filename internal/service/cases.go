package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmeshcher/fecha-instalacao/internal/model"
	"github.com/mmeshcher/fecha-instalacao/internal/validation"
)

// TestimonialInput: поля отзыва, заполняемые администратором.
type TestimonialInput struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Service string `json:"service"`
	Value   string `json:"value"`
	Quote   string `json:"quote"`
}

func (in TestimonialInput) toModel() (model.Testimonial, error) {
	t := model.Testimonial{
		Name:    strings.TrimSpace(in.Name),
		City:    strings.TrimSpace(in.City),
		Service: strings.TrimSpace(in.Service),
		Value:   strings.TrimSpace(in.Value),
		Quote:   strings.TrimSpace(in.Quote),
	}
	if !validation.IsValidField(t.Name) || !validation.IsValidField(t.Quote) {
		return model.Testimonial{}, ErrInvalidInput
	}
	return t, nil
}

// Testimonials возвращает отзывы для раздела кейсов.
func (s *Service) Testimonials(ctx context.Context) ([]model.Testimonial, error) {
	return s.repo.ListTestimonials(ctx)
}

// Testimonial возвращает один отзыв.
func (s *Service) Testimonial(ctx context.Context, id int64) (*model.Testimonial, error) {
	return s.repo.GetTestimonial(ctx, id)
}

func (s *Service) requireCasesAdmin(ctx context.Context, accountID int64) error {
	acc, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if !s.IsCasesAdmin(acc) {
		return ErrForbidden
	}
	return nil
}

// CreateTestimonial добавляет отзыв. Доступно администраторам кейсов.
func (s *Service) CreateTestimonial(ctx context.Context, accountID int64, in TestimonialInput) (*model.Testimonial, error) {
	if err := s.requireCasesAdmin(ctx, accountID); err != nil {
		return nil, err
	}
	t, err := in.toModel()
	if err != nil {
		return nil, err
	}
	return s.repo.CreateTestimonial(ctx, t)
}

// UpdateTestimonial перезаписывает отзыв. Доступно администраторам кейсов.
func (s *Service) UpdateTestimonial(ctx context.Context, accountID, id int64, in TestimonialInput) error {
	if err := s.requireCasesAdmin(ctx, accountID); err != nil {
		return err
	}
	t, err := in.toModel()
	if err != nil {
		return err
	}
	t.ID = id
	return s.repo.UpdateTestimonial(ctx, t)
}

// DeleteTestimonial удаляет отзыв. Доступно администраторам кейсов.
func (s *Service) DeleteTestimonial(ctx context.Context, accountID, id int64) error {
	if err := s.requireCasesAdmin(ctx, accountID); err != nil {
		return err
	}
	return s.repo.DeleteTestimonial(ctx, id)
}
