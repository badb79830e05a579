package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/afroflavours/restaurant-api/internal/domain"
)

const cateringColumns = `id, quote_ref, name, email, phone, event_date, guests,
	event_type, message, status, quoted_amount_cents, deposit_paid_cents,
	payment_intent_id, created_at, updated_at`

type CateringRepository struct {
	db *sql.DB
}

func NewCateringRepository(db *sql.DB) *CateringRepository {
	return &CateringRepository{db: db}
}

func (r *CateringRepository) Create(ctx context.Context, c *domain.CateringRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO catering_requests (
			id, quote_ref, name, email, phone, event_date, guests,
			event_type, message, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.QuoteRef, c.Name, c.Email, c.Phone, c.EventDate, c.Guests,
		c.EventType, c.Message, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CateringRepository) GetByRef(ctx context.Context, quoteRef string) (*domain.CateringRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cateringColumns+` FROM catering_requests WHERE quote_ref = $1`, quoteRef,
	)
	c, err := scanCatering(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByRef: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByRef: %w", err)
	}
	return c, nil
}

func (r *CateringRepository) List(ctx context.Context) ([]domain.CateringRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cateringColumns+` FROM catering_requests ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var requests []domain.CateringRequest
	for rows.Next() {
		c, err := scanCatering(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		requests = append(requests, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return requests, nil
}

func (r *CateringRepository) SetQuote(ctx context.Context, quoteRef string, amountCents int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE catering_requests
		SET status = $1, quoted_amount_cents = $2, updated_at = now()
		WHERE quote_ref = $3`,
		domain.CateringStatusQuoted, amountCents, quoteRef,
	)
	if err != nil {
		return fmt.Errorf("SetQuote: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetQuote: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("SetQuote: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *CateringRepository) UpdateStatus(ctx context.Context, quoteRef string, status domain.CateringStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE catering_requests SET status = $1, updated_at = now() WHERE quote_ref = $2`,
		status, quoteRef,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateStatus: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateStatus: %w", domain.ErrNotFound)
	}
	return nil
}

func scanCatering(s scanner) (*domain.CateringRequest, error) {
	var c domain.CateringRequest
	err := s.Scan(
		&c.ID, &c.QuoteRef, &c.Name, &c.Email, &c.Phone, &c.EventDate, &c.Guests,
		&c.EventType, &c.Message, &c.Status, &c.QuotedAmountCents, &c.DepositPaidCents,
		&c.PaymentIntentID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
