package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/afroflavours/restaurant-api/internal/domain"
)

type orderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
}

type Orders struct {
	orders orderRepo
}

func NewOrders(orders orderRepo) *Orders {
	return &Orders{orders: orders}
}

type CreateOrderItem struct {
	Name           string
	UnitPriceCents int64
	Quantity       int
	ImageURL       *string
}

type CreateOrderRequest struct {
	CustomerName  string
	CustomerEmail string
	Items         []CreateOrderItem
}

func (s *Orders) Create(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	now := time.Now().UTC()
	o := &domain.Order{
		ID:            uuid.New(),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Status:        domain.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, item := range req.Items {
		o.Items = append(o.Items, domain.OrderItem{
			ID:             uuid.New(),
			OrderID:        o.ID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			ImageURL:       item.ImageURL,
		})
		o.TotalCents += item.UnitPriceCents * int64(item.Quantity)
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	return o, nil
}

func (s *Orders) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Orders) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *Orders) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("UpdateStatus: %q: %w", status, domain.ErrInvalidStatus)
	}
	return s.orders.UpdateStatus(ctx, id, status)
}
