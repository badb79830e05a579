package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/afroflavours/restaurant-api/internal/domain"
)

type payableRepo interface {
	Find(ctx context.Context, kind domain.ReferenceKind, referenceID string) (*domain.Payable, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, kind domain.ReferenceKind, referenceID, newStatus string, intentID *string, amountCents *int64) error
}

type appliedEventRepo interface {
	HasApplied(ctx context.Context, eventID string) (bool, error)
	MarkApplied(ctx context.Context, tx *sql.Tx, rec *domain.AppliedEvent) error
}

// Dispatcher maps a verified gateway event to a status transition on the
// record it references and applies it exactly once: the transition and the
// ledger mark commit in a single transaction, and the ledger's unique event
// id settles races between concurrent deliveries of the same event.
type Dispatcher struct {
	payables payableRepo
	applied  appliedEventRepo
	db       *sql.DB
	logger   *slog.Logger
}

func NewDispatcher(payables payableRepo, applied appliedEventRepo, db *sql.DB, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		payables: payables,
		applied:  applied,
		db:       db,
		logger:   logger,
	}
}

type transition struct {
	kind        domain.ReferenceKind
	referenceID string
	newStatus   string
	// required is the set of statuses the record must currently hold;
	// empty means any status is accepted.
	required    []string
	intentID    *string
	amountCents *int64
	metadata    domain.EventMetadata
}

func (d *Dispatcher) Dispatch(ctx context.Context, event *domain.Event) (domain.DispatchOutcome, error) {
	switch data := event.Data.(type) {
	case domain.CheckoutCompleted:
		if data.PaymentStatus != "paid" {
			d.logger.Debug("checkout completed without payment, ignoring",
				"event_id", event.ID,
				"payment_status", data.PaymentStatus,
			)
			return domain.DispatchOutcome{Kind: domain.OutcomeIgnored}, nil
		}
		return d.apply(ctx, event, transition{
			kind:        domain.ReferenceKindOrder,
			referenceID: data.Metadata.ReferenceID,
			newStatus:   string(domain.OrderStatusPaid),
			required:    []string{string(domain.OrderStatusPending)},
			intentID:    nonEmpty(data.SessionID),
			amountCents: positive(data.AmountCents),
			metadata:    data.Metadata,
		})

	case domain.DepositSucceeded:
		switch data.Metadata.Type {
		case domain.DepositTypeBooking:
			return d.apply(ctx, event, transition{
				kind:        domain.ReferenceKindBooking,
				referenceID: data.Metadata.ReferenceID,
				newStatus:   string(domain.BookingStatusConfirmed),
				required:    []string{string(domain.BookingStatusPending)},
				intentID:    nonEmpty(data.IntentID),
				amountCents: positive(data.AmountCents),
				metadata:    data.Metadata,
			})
		case domain.DepositTypeCatering:
			return d.apply(ctx, event, transition{
				kind:        domain.ReferenceKindCatering,
				referenceID: data.Metadata.ReferenceID,
				newStatus:   string(domain.CateringStatusDepositPaid),
				intentID:    nonEmpty(data.IntentID),
				amountCents: positive(data.AmountCents),
				metadata:    data.Metadata,
			})
		default:
			d.logger.Debug("deposit for unknown purpose, ignoring",
				"event_id", event.ID,
				"deposit_type", data.Metadata.Type,
			)
			return domain.DispatchOutcome{Kind: domain.OutcomeIgnored}, nil
		}

	case domain.PaymentFailed:
		d.logger.Warn("gateway reported payment failure",
			"event_id", event.ID,
			"intent_id", data.IntentID,
			"reference_id", data.Metadata.ReferenceID,
			"reason", data.FailureReason,
		)
		return domain.DispatchOutcome{Kind: domain.OutcomeIgnored}, nil

	case domain.ChargeRefunded:
		d.logger.Info("gateway reported refund",
			"event_id", event.ID,
			"charge_id", data.ChargeID,
			"amount_cents", data.AmountCents,
		)
		return domain.DispatchOutcome{Kind: domain.OutcomeIgnored}, nil

	case domain.Unrecognized:
		d.logger.Debug("unrecognized event type", "event_id", event.ID, "type", event.RawType)
		return domain.DispatchOutcome{Kind: domain.OutcomeIgnored}, nil

	default:
		return domain.DispatchOutcome{Kind: domain.OutcomeIgnored}, nil
	}
}

func (d *Dispatcher) apply(ctx context.Context, event *domain.Event, t transition) (domain.DispatchOutcome, error) {
	if t.referenceID == "" {
		d.logger.Warn("event missing reference id",
			"event_id", event.ID,
			"type", event.RawType,
		)
		return domain.DispatchOutcome{Kind: domain.OutcomeMalformed}, nil
	}

	applied, err := d.applied.HasApplied(ctx, event.ID)
	if err != nil {
		return domain.DispatchOutcome{}, fmt.Errorf("apply: %w", err)
	}
	if applied {
		return domain.DispatchOutcome{Kind: domain.OutcomeReplay, ReferenceKind: t.kind, ReferenceID: t.referenceID}, nil
	}

	record, err := d.payables.Find(ctx, t.kind, t.referenceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Not marked applied: if the record becomes visible later,
			// a gateway resend can still apply the transition.
			d.logger.Warn("payment event references unknown record",
				"event_id", event.ID,
				"reference_kind", t.kind,
				"reference_id", t.referenceID,
			)
			return domain.DispatchOutcome{Kind: domain.OutcomeUnknownReference, ReferenceKind: t.kind, ReferenceID: t.referenceID}, nil
		}
		return domain.DispatchOutcome{}, fmt.Errorf("apply: %w", err)
	}

	if !statusAllowed(record.Status, t.required) {
		d.logger.Info("record not in a transitionable status, ignoring",
			"event_id", event.ID,
			"reference_kind", t.kind,
			"reference_id", t.referenceID,
			"status", record.Status,
		)
		return domain.DispatchOutcome{Kind: domain.OutcomeIgnored, ReferenceKind: t.kind, ReferenceID: t.referenceID}, nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.DispatchOutcome{}, fmt.Errorf("apply: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := d.payables.UpdateStatus(ctx, tx, t.kind, t.referenceID, t.newStatus, t.intentID, t.amountCents); err != nil {
		return domain.DispatchOutcome{}, fmt.Errorf("apply: %w", err)
	}

	err = d.applied.MarkApplied(ctx, tx, &domain.AppliedEvent{
		EventID:       event.ID,
		ReferenceKind: t.kind,
		ReferenceID:   t.referenceID,
		AppliedAt:     time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyApplied) {
			// A concurrent delivery of the same event won the race.
			return domain.DispatchOutcome{Kind: domain.OutcomeReplay, ReferenceKind: t.kind, ReferenceID: t.referenceID}, nil
		}
		return domain.DispatchOutcome{}, fmt.Errorf("apply: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.DispatchOutcome{}, fmt.Errorf("apply: commit: %w", err)
	}

	d.logger.Info("payment event applied",
		"event_id", event.ID,
		"reference_kind", t.kind,
		"reference_id", t.referenceID,
		"new_status", t.newStatus,
	)

	return domain.DispatchOutcome{
		Kind:          domain.OutcomeApplied,
		ReferenceKind: t.kind,
		ReferenceID:   t.referenceID,
		NewStatus:     t.newStatus,
	}, nil
}

func statusAllowed(status string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, s := range required {
		if status == s {
			return true
		}
	}
	return false
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func positive(n int64) *int64 {
	if n <= 0 {
		return nil
	}
	return &n
}
