package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}

type OrderItem struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	Name           string
	UnitPriceCents int64
	Quantity       int
	ImageURL       *string
}

type Order struct {
	ID              uuid.UUID
	CustomerName    string
	CustomerEmail   string
	Items           []OrderItem
	TotalCents      int64
	Status          OrderStatus
	PaymentIntentID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
