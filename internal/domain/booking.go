package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

type BookingType string

const (
	BookingTypeDineIn            BookingType = "dine-in"
	BookingTypeEvent             BookingType = "event"
	BookingTypeAfricanExperience BookingType = "african-experience"
)

func (t BookingType) IsValid() bool {
	switch t {
	case BookingTypeDineIn, BookingTypeEvent, BookingTypeAfricanExperience:
		return true
	}
	return false
}

type Booking struct {
	ID              uuid.UUID
	BookingRef      string
	Name            string
	Email           string
	Phone           string
	Date            time.Time
	Time            string
	Guests          int
	BookingType     BookingType
	SpecialRequests *string
	Status          BookingStatus
	PaymentIntentID *string
	AmountPaidCents *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
