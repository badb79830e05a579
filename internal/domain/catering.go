package domain

import (
	"time"

	"github.com/google/uuid"
)

type CateringStatus string

const (
	CateringStatusPending     CateringStatus = "pending"
	CateringStatusQuoted      CateringStatus = "quoted"
	CateringStatusDepositPaid CateringStatus = "deposit_paid"
	CateringStatusDeclined    CateringStatus = "declined"
	CateringStatusCompleted   CateringStatus = "completed"
)

func (s CateringStatus) IsValid() bool {
	switch s {
	case CateringStatusPending, CateringStatusQuoted, CateringStatusDepositPaid,
		CateringStatusDeclined, CateringStatusCompleted:
		return true
	}
	return false
}

type CateringRequest struct {
	ID                uuid.UUID
	QuoteRef          string
	Name              string
	Email             string
	Phone             string
	EventDate         time.Time
	Guests            int
	EventType         string
	Message           *string
	Status            CateringStatus
	QuotedAmountCents *int64
	DepositPaidCents  *int64
	PaymentIntentID   *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
