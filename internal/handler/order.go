package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/afroflavours/restaurant-api/internal/domain"
	"github.com/afroflavours/restaurant-api/internal/logging"
	"github.com/afroflavours/restaurant-api/internal/service"
)

type orderService interface {
	Create(ctx context.Context, req service.CreateOrderRequest) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
}

type OrderHandler struct {
	orders orderService
}

func NewOrderHandler(orders orderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createOrderItemRequest struct {
	Name           string  `json:"name"`
	UnitPriceCents int64   `json:"unit_price_cents"`
	Quantity       int     `json:"quantity"`
	ImageURL       *string `json:"image_url,omitempty"`
}

type createOrderRequest struct {
	CustomerName  string                   `json:"customer_name"`
	CustomerEmail string                   `json:"customer_email"`
	Items         []createOrderItemRequest `json:"items"`
}

func (r createOrderRequest) Validate() []FieldError {
	var errs []FieldError

	if r.CustomerName == "" {
		errs = append(errs, FieldError{Field: "customer_name", Message: "required"})
	}
	if r.CustomerEmail == "" {
		errs = append(errs, FieldError{Field: "customer_email", Message: "required"})
	}
	if len(r.Items) == 0 {
		errs = append(errs, FieldError{Field: "items", Message: "at least one item required"})
	}
	for i, item := range r.Items {
		if item.Name == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("items[%d].name", i), Message: "required"})
		}
		if item.UnitPriceCents <= 0 {
			errs = append(errs, FieldError{Field: fmt.Sprintf("items[%d].unit_price_cents", i), Message: "must be greater than 0"})
		}
		if item.Quantity <= 0 {
			errs = append(errs, FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be greater than 0"})
		}
	}

	return errs
}

type orderItemDTO struct {
	Name           string  `json:"name"`
	UnitPriceCents int64   `json:"unit_price_cents"`
	Quantity       int     `json:"quantity"`
	ImageURL       *string `json:"image_url,omitempty"`
}

type orderDTO struct {
	ID            uuid.UUID      `json:"id"`
	CustomerName  string         `json:"customer_name"`
	CustomerEmail string         `json:"customer_email"`
	Items         []orderItemDTO `json:"items,omitempty"`
	TotalCents    int64          `json:"total_cents"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
}

func toOrderDTO(o *domain.Order) orderDTO {
	dto := orderDTO{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		TotalCents:    o.TotalCents,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, orderItemDTO{
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			ImageURL:       item.ImageURL,
		})
	}
	return dto
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	svcReq := service.CreateOrderRequest{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
	}
	for _, item := range req.Items {
		svcReq.Items = append(svcReq.Items, service.CreateOrderItem{
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			ImageURL:       item.ImageURL,
		})
	}

	order, err := h.orders.Create(r.Context(), svcReq)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	log.Info("order created", "order_id", order.ID, "total_cents", order.TotalCents)
	RespondSuccess(w, http.StatusCreated, toOrderDTO(order))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]orderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, toOrderDTO(&orders[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type updateOrderStatusRequest struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	var fields []FieldError
	if req.OrderID == "" {
		fields = append(fields, FieldError{Field: "order_id", Message: "required"})
	}
	if req.Status == "" {
		fields = append(fields, FieldError{Field: "status", Message: "required"})
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	id, err := uuid.Parse(req.OrderID)
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "order_id", Message: "must be a valid UUID"}})
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status)); err != nil {
		if errors.Is(err, domain.ErrInvalidStatus) {
			RespondAppError(w, ErrInvalidStatus, nil)
			return
		}
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]string{
		"order_id": req.OrderID,
		"status":   req.Status,
	})
}
