package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/fecha-instalacao/internal/model"
)

const testimonialColumns = `id, name, city, service, value, quote, created_at`

func scanTestimonial(row pgx.Row) (*model.Testimonial, error) {
	var t model.Testimonial
	if err := row.Scan(&t.ID, &t.Name, &t.City, &t.Service, &t.Value, &t.Quote, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTestimonials возвращает отзывы, начиная с самых новых.
func (r *PostgresRepository) ListTestimonials(ctx context.Context) ([]model.Testimonial, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+testimonialColumns+` FROM testimonials ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select testimonials: %w", err)
	}
	defer rows.Close()

	var res []model.Testimonial
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan testimonial: %w", err)
		}
		res = append(res, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// GetTestimonial возвращает отзыв по идентификатору.
func (r *PostgresRepository) GetTestimonial(ctx context.Context, id int64) (*model.Testimonial, error) {
	t, err := scanTestimonial(r.pool.QueryRow(ctx,
		`SELECT `+testimonialColumns+` FROM testimonials WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestimonialNotFound
		}
		return nil, fmt.Errorf("get testimonial: %w", err)
	}
	return t, nil
}

// CreateTestimonial сохраняет отзыв и возвращает его с присвоенным идентификатором.
func (r *PostgresRepository) CreateTestimonial(ctx context.Context, t model.Testimonial) (*model.Testimonial, error) {
	created, err := scanTestimonial(r.pool.QueryRow(ctx,
		`INSERT INTO testimonials (name, city, service, value, quote)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+testimonialColumns,
		t.Name, t.City, t.Service, t.Value, t.Quote,
	))
	if err != nil {
		return nil, fmt.Errorf("insert testimonial: %w", err)
	}
	return created, nil
}

// UpdateTestimonial перезаписывает поля отзыва.
func (r *PostgresRepository) UpdateTestimonial(ctx context.Context, t model.Testimonial) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE testimonials SET name = $2, city = $3, service = $4, value = $5, quote = $6 WHERE id = $1`,
		t.ID, t.Name, t.City, t.Service, t.Value, t.Quote,
	)
	if err != nil {
		return fmt.Errorf("update testimonial: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTestimonialNotFound
	}
	return nil
}

// DeleteTestimonial удаляет отзыв.
func (r *PostgresRepository) DeleteTestimonial(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM testimonials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete testimonial: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTestimonialNotFound
	}
	return nil
}
