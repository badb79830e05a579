package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/afroflavours/restaurant-api/internal/domain"
)

const bookingColumns = `id, booking_ref, name, email, phone, booking_date, booking_time,
	guests, booking_type, special_requests, status, payment_intent_id, amount_paid_cents,
	created_at, updated_at`

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (
			id, booking_ref, name, email, phone, booking_date, booking_time,
			guests, booking_type, special_requests, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		b.ID, b.BookingRef, b.Name, b.Email, b.Phone, b.Date, b.Time,
		b.Guests, b.BookingType, b.SpecialRequests, b.Status, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByRef(ctx context.Context, bookingRef string) (*domain.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE booking_ref = $1`, bookingRef,
	)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByRef: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByRef: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return bookings, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingRef string, status domain.BookingStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = now() WHERE booking_ref = $2`,
		status, bookingRef,
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

func scanBooking(s scanner) (*domain.Booking, error) {
	var b domain.Booking
	err := s.Scan(
		&b.ID, &b.BookingRef, &b.Name, &b.Email, &b.Phone, &b.Date, &b.Time,
		&b.Guests, &b.BookingType, &b.SpecialRequests, &b.Status, &b.PaymentIntentID,
		&b.AmountPaidCents, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
