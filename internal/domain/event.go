package domain

import "time"

// ReferenceKind names the record a payment event correlates to.
type ReferenceKind string

const (
	ReferenceKindBooking  ReferenceKind = "booking"
	ReferenceKindOrder    ReferenceKind = "order"
	ReferenceKindCatering ReferenceKind = "catering"
)

func (k ReferenceKind) IsValid() bool {
	switch k {
	case ReferenceKindBooking, ReferenceKindOrder, ReferenceKindCatering:
		return true
	}
	return false
}

const (
	DepositTypeBooking  = "booking_deposit"
	DepositTypeCatering = "catering_deposit"
)

// EventMetadata is the correlation data attached when the payment intent or
// checkout session was created.
type EventMetadata struct {
	ReferenceID   string `json:"reference_id"`
	ReferenceKind string `json:"reference_kind"`
	Type          string `json:"type"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
}

// Event is one verified gateway occurrence. Data holds exactly one of the
// variants below; dispatch is a type switch over it so a new event type is a
// compile-visible change rather than a stray string comparison.
type Event struct {
	ID      string
	RawType string
	Data    EventData
}

type EventData interface {
	isEventData()
}

type CheckoutCompleted struct {
	SessionID     string
	PaymentStatus string
	AmountCents   int64
	Metadata      EventMetadata
}

type DepositSucceeded struct {
	IntentID    string
	AmountCents int64
	Metadata    EventMetadata
}

type PaymentFailed struct {
	IntentID      string
	FailureReason string
	Metadata      EventMetadata
}

type ChargeRefunded struct {
	ChargeID    string
	AmountCents int64
	Metadata    EventMetadata
}

// Unrecognized covers event types this service does not act on. The verifier
// decodes them instead of failing so the gateway still gets a 2xx.
type Unrecognized struct{}

func (CheckoutCompleted) isEventData() {}
func (DepositSucceeded) isEventData()  {}
func (PaymentFailed) isEventData()     {}
func (ChargeRefunded) isEventData()    {}
func (Unrecognized) isEventData()      {}

type OutcomeKind string

const (
	OutcomeApplied          OutcomeKind = "applied"
	OutcomeReplay           OutcomeKind = "replay"
	OutcomeIgnored          OutcomeKind = "ignored"
	OutcomeUnknownReference OutcomeKind = "unknown_reference"
	OutcomeMalformed        OutcomeKind = "malformed"
)

type DispatchOutcome struct {
	Kind          OutcomeKind
	ReferenceKind ReferenceKind
	ReferenceID   string
	NewStatus     string
}

// AppliedEvent is one row in the idempotency ledger. Rows are inserted in the
// same transaction as the status transition and never mutated afterwards.
type AppliedEvent struct {
	EventID       string
	ReferenceKind ReferenceKind
	ReferenceID   string
	AppliedAt     time.Time
}

// Payable is the dispatcher's view of a booking, order, or catering request:
// just enough to check a transition precondition and address a notification.
type Payable struct {
	Kind          ReferenceKind
	ReferenceID   string
	Status        string
	CustomerEmail string
	CustomerName  string
}
