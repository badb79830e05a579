package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/afroflavours/restaurant-api/internal/domain"
)

type cateringRepo interface {
	Create(ctx context.Context, c *domain.CateringRequest) error
	GetByRef(ctx context.Context, quoteRef string) (*domain.CateringRequest, error)
	List(ctx context.Context) ([]domain.CateringRequest, error)
	SetQuote(ctx context.Context, quoteRef string, amountCents int64) error
	UpdateStatus(ctx context.Context, quoteRef string, status domain.CateringStatus) error
}

type cateringNotifier interface {
	CateringRequested(c *domain.CateringRequest)
	CateringQuoted(c *domain.CateringRequest, amountCents int64)
}

type Catering struct {
	requests cateringRepo
	notifier cateringNotifier
}

func NewCatering(requests cateringRepo, notifier cateringNotifier) *Catering {
	return &Catering{requests: requests, notifier: notifier}
}

type CreateCateringRequest struct {
	Name      string
	Email     string
	Phone     string
	EventDate time.Time
	Guests    int
	EventType string
	Message   *string
}

func (s *Catering) Create(ctx context.Context, req CreateCateringRequest) (*domain.CateringRequest, error) {
	now := time.Now().UTC()
	c := &domain.CateringRequest{
		ID:        uuid.New(),
		QuoteRef:  newReference("CAT"),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		EventDate: req.EventDate,
		Guests:    req.Guests,
		EventType: req.EventType,
		Message:   req.Message,
		Status:    domain.CateringStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.requests.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	s.notifier.CateringRequested(c)
	return c, nil
}

func (s *Catering) GetByRef(ctx context.Context, quoteRef string) (*domain.CateringRequest, error) {
	return s.requests.GetByRef(ctx, quoteRef)
}

func (s *Catering) List(ctx context.Context) ([]domain.CateringRequest, error) {
	return s.requests.List(ctx)
}

// Quote records the quoted amount, moves the request to quoted, and emails
// the customer.
func (s *Catering) Quote(ctx context.Context, quoteRef string, amountCents int64) (*domain.CateringRequest, error) {
	c, err := s.requests.GetByRef(ctx, quoteRef)
	if err != nil {
		return nil, fmt.Errorf("Quote: %w", err)
	}
	switch c.Status {
	case domain.CateringStatusPending, domain.CateringStatusQuoted:
	case domain.CateringStatusDepositPaid, domain.CateringStatusCompleted:
		return nil, fmt.Errorf("Quote: status %s: %w", c.Status, domain.ErrAlreadyQuoted)
	default:
		return nil, fmt.Errorf("Quote: status %s: %w", c.Status, domain.ErrInvalidStatus)
	}

	if err := s.requests.SetQuote(ctx, quoteRef, amountCents); err != nil {
		return nil, fmt.Errorf("Quote: %w", err)
	}

	c.Status = domain.CateringStatusQuoted
	c.QuotedAmountCents = &amountCents
	s.notifier.CateringQuoted(c, amountCents)
	return c, nil
}

func (s *Catering) UpdateStatus(ctx context.Context, quoteRef string, status domain.CateringStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("UpdateStatus: %q: %w", status, domain.ErrInvalidStatus)
	}
	return s.requests.UpdateStatus(ctx, quoteRef, status)
}
