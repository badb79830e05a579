package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/afroflavours/restaurant-api/internal/domain"
)

type bookingRepo interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByRef(ctx context.Context, bookingRef string) (*domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, bookingRef string, status domain.BookingStatus) error
}

type bookingNotifier interface {
	BookingCreated(b *domain.Booking)
}

type Bookings struct {
	bookings bookingRepo
	notifier bookingNotifier
}

func NewBookings(bookings bookingRepo, notifier bookingNotifier) *Bookings {
	return &Bookings{bookings: bookings, notifier: notifier}
}

type CreateBookingRequest struct {
	Name            string
	Email           string
	Phone           string
	Date            time.Time
	Time            string
	Guests          int
	BookingType     domain.BookingType
	SpecialRequests *string
}

func (s *Bookings) Create(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	now := time.Now().UTC()
	b := &domain.Booking{
		ID:              uuid.New(),
		BookingRef:      newReference("AFR"),
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Date:            req.Date,
		Time:            req.Time,
		Guests:          req.Guests,
		BookingType:     req.BookingType,
		SpecialRequests: req.SpecialRequests,
		Status:          domain.BookingStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	s.notifier.BookingCreated(b)
	return b, nil
}

func (s *Bookings) GetByRef(ctx context.Context, bookingRef string) (*domain.Booking, error) {
	return s.bookings.GetByRef(ctx, bookingRef)
}

func (s *Bookings) List(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.List(ctx)
}

func (s *Bookings) UpdateStatus(ctx context.Context, bookingRef string, status domain.BookingStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("UpdateStatus: %q: %w", status, domain.ErrInvalidStatus)
	}
	return s.bookings.UpdateStatus(ctx, bookingRef, status)
}

// newReference builds a short human-quotable reference like the ones printed
// on confirmation emails, e.g. "AFR48291047".
func newReference(prefix string) string {
	ms := time.Now().UnixMilli()
	return fmt.Sprintf("%s%08d", prefix, ms%100_000_000)
}
