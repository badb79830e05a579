package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/afroflavours/restaurant-api/internal/domain"
)

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at FROM admins WHERE email = $1`,
		email,
	).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByEmail: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return &a, nil
}

func (r *AdminRepository) Create(ctx context.Context, a *domain.Admin) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admins (id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Email, a.Name, a.PasswordHash, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}
