package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/afroflavours/restaurant-api/internal/domain"
)

// AppliedEventRepository is the idempotency ledger: one row per gateway event
// ever applied, keyed on the gateway's event id. The primary key makes
// MarkApplied an atomic insert-if-absent, so two concurrent deliveries of the
// same event resolve to exactly one winner at the storage layer.
type AppliedEventRepository struct {
	db *sql.DB
}

func NewAppliedEventRepository(db *sql.DB) *AppliedEventRepository {
	return &AppliedEventRepository{db: db}
}

func (r *AppliedEventRepository) HasApplied(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM applied_events WHERE event_id = $1)`,
		eventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("HasApplied: %w", err)
	}
	return exists, nil
}

// MarkApplied inserts the ledger row inside the caller's transaction, so the
// status transition and the ledger entry commit or roll back together.
// Returns domain.ErrAlreadyApplied when the event id is already present.
func (r *AppliedEventRepository) MarkApplied(ctx context.Context, tx *sql.Tx, rec *domain.AppliedEvent) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO applied_events (event_id, reference_kind, reference_id, applied_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING`,
		rec.EventID, rec.ReferenceKind, rec.ReferenceID, rec.AppliedAt,
	)
	if err != nil {
		return fmt.Errorf("MarkApplied: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("MarkApplied: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("MarkApplied: %w", domain.ErrAlreadyApplied)
	}
	return nil
}
