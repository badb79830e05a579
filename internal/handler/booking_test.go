package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afroflavours/restaurant-api/internal/domain"
	"github.com/afroflavours/restaurant-api/internal/service"
)

type mockBookingService struct {
	created   *domain.Booking
	createErr error
	updateErr error
	lastReq   service.CreateBookingRequest
}

func (m *mockBookingService) Create(_ context.Context, req service.CreateBookingRequest) (*domain.Booking, error) {
	m.lastReq = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.created, nil
}

func (m *mockBookingService) List(_ context.Context) ([]domain.Booking, error) {
	return nil, nil
}

func (m *mockBookingService) UpdateStatus(_ context.Context, _ string, _ domain.BookingStatus) error {
	return m.updateErr
}

func validCreateBookingBody() string {
	b, _ := json.Marshal(createBookingRequest{
		Name:        "Ama Mensah",
		Email:       "ama@test.com",
		Phone:       "+64 21 555 0101",
		Date:        "2026-09-12",
		Time:        "19:00",
		Guests:      4,
		BookingType: "dine-in",
	})
	return string(b)
}

func TestCreateBooking(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mutate     func(*createBookingRequest)
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name:       "valid request",
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid json",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "missing name",
			mutate:     func(r *createBookingRequest) { r.Name = "" },
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantField:  "name",
		},
		{
			name:       "bad date format",
			mutate:     func(r *createBookingRequest) { r.Date = "12/09/2026" },
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantField:  "date",
		},
		{
			name:       "zero guests",
			mutate:     func(r *createBookingRequest) { r.Guests = 0 },
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantField:  "guests",
		},
		{
			name:       "too many guests",
			mutate:     func(r *createBookingRequest) { r.Guests = 51 },
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantField:  "guests",
		},
		{
			name:       "unknown booking type",
			mutate:     func(r *createBookingRequest) { r.BookingType = "takeaway" },
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantField:  "booking_type",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := tc.body
			if body == "" {
				var req createBookingRequest
				require.NoError(t, json.Unmarshal([]byte(validCreateBookingBody()), &req))
				if tc.mutate != nil {
					tc.mutate(&req)
				}
				b, err := json.Marshal(req)
				require.NoError(t, err)
				body = string(b)
			}

			svc := &mockBookingService{created: &domain.Booking{
				ID:          uuid.New(),
				BookingRef:  "AF12345678",
				Name:        "Ama Mensah",
				Email:       "ama@test.com",
				Date:        time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
				Time:        "19:00",
				Guests:      4,
				BookingType: domain.BookingTypeDineIn,
				Status:      domain.BookingStatusPending,
			}}
			h := NewBookingHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
			rec := httptest.NewRecorder()
			h.Create(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)

			var resp APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

			if tc.wantCode == "" {
				assert.True(t, resp.Success)
				return
			}

			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
			if tc.wantField != "" {
				details, err := json.Marshal(resp.Error.Details)
				require.NoError(t, err)
				assert.Contains(t, string(details), tc.wantField)
			}
		})
	}
}

func TestUpdateBookingStatus(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		updateErr  error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid update",
			body:       `{"booking_ref":"AF12345678","status":"cancelled"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing booking ref",
			body:       `{"status":"cancelled"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "invalid status value",
			body:       `{"booking_ref":"AF12345678","status":"archived"}`,
			updateErr:  domain.ErrInvalidStatus,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INVALID_STATUS",
		},
		{
			name:       "unknown booking",
			body:       `{"booking_ref":"AF00000000","status":"cancelled"}`,
			updateErr:  fmt.Errorf("UpdateStatus: %w", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "RESOURCE_NOT_FOUND",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockBookingService{updateErr: tc.updateErr}
			h := NewBookingHandler(svc)

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/status", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.UpdateStatus(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantCode != "" {
				var resp APIResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				require.NotNil(t, resp.Error)
				assert.Equal(t, tc.wantCode, resp.Error.Code)
			}
		})
	}
}
