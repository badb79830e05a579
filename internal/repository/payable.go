package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/afroflavours/restaurant-api/internal/domain"
)

// PayableRepository resolves and transitions the record a payment event
// refers to, addressed by reference kind plus the opaque reference id carried
// in event metadata: order id for orders, booking ref for bookings, quote ref
// for catering requests.
type PayableRepository struct {
	db *sql.DB
}

func NewPayableRepository(db *sql.DB) *PayableRepository {
	return &PayableRepository{db: db}
}

func (r *PayableRepository) Find(ctx context.Context, kind domain.ReferenceKind, referenceID string) (*domain.Payable, error) {
	var row *sql.Row
	switch kind {
	case domain.ReferenceKindOrder:
		id, err := uuid.Parse(referenceID)
		if err != nil {
			return nil, fmt.Errorf("Find: %w", domain.ErrNotFound)
		}
		row = r.db.QueryRowContext(ctx,
			`SELECT status, customer_email, customer_name FROM orders WHERE id = $1`, id)
	case domain.ReferenceKindBooking:
		row = r.db.QueryRowContext(ctx,
			`SELECT status, email, name FROM bookings WHERE booking_ref = $1`, referenceID)
	case domain.ReferenceKindCatering:
		row = r.db.QueryRowContext(ctx,
			`SELECT status, email, name FROM catering_requests WHERE quote_ref = $1`, referenceID)
	default:
		return nil, fmt.Errorf("Find: unknown reference kind %q: %w", kind, domain.ErrNotFound)
	}

	p := &domain.Payable{Kind: kind, ReferenceID: referenceID}
	if err := row.Scan(&p.Status, &p.CustomerEmail, &p.CustomerName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("Find: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("Find: %w", err)
	}
	return p, nil
}

// UpdateStatus applies the transition inside the caller's transaction.
// intentID and amountCents are recorded when the gateway supplied them.
func (r *PayableRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, kind domain.ReferenceKind, referenceID, newStatus string, intentID *string, amountCents *int64) error {
	var (
		res sql.Result
		err error
	)
	switch kind {
	case domain.ReferenceKindOrder:
		id, perr := uuid.Parse(referenceID)
		if perr != nil {
			return fmt.Errorf("UpdateStatus: %w", domain.ErrNotFound)
		}
		res, err = tx.ExecContext(ctx,
			`UPDATE orders SET status = $1,
				payment_intent_id = COALESCE($2, payment_intent_id),
				updated_at = now()
			WHERE id = $3`,
			newStatus, intentID, id,
		)
	case domain.ReferenceKindBooking:
		res, err = tx.ExecContext(ctx,
			`UPDATE bookings SET status = $1,
				payment_intent_id = COALESCE($2, payment_intent_id),
				amount_paid_cents = COALESCE($3, amount_paid_cents),
				updated_at = now()
			WHERE booking_ref = $4`,
			newStatus, intentID, amountCents, referenceID,
		)
	case domain.ReferenceKindCatering:
		res, err = tx.ExecContext(ctx,
			`UPDATE catering_requests SET status = $1,
				payment_intent_id = COALESCE($2, payment_intent_id),
				deposit_paid_cents = COALESCE($3, deposit_paid_cents),
				updated_at = now()
			WHERE quote_ref = $4`,
			newStatus, intentID, amountCents, referenceID,
		)
	default:
		return fmt.Errorf("UpdateStatus: unknown reference kind %q", kind)
	}
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
