package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/afroflavours/restaurant-api/internal/domain"
)

func SeedAdmin(t *testing.T, db *sql.DB, email string) *domain.Admin {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	a := &domain.Admin{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test Admin",
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO admins (id, email, name, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Email, a.Name, a.PasswordHash, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed admin %s: %v", email, err)
	}
	return a
}

func SeedBooking(t *testing.T, db *sql.DB, bookingRef string, status domain.BookingStatus) *domain.Booking {
	t.Helper()

	now := time.Now().UTC()
	b := &domain.Booking{
		ID:          uuid.New(),
		BookingRef:  bookingRef,
		Name:        "Ama Mensah",
		Email:       "ama@test.com",
		Phone:       "+64 21 555 0101",
		Date:        now.AddDate(0, 0, 7),
		Time:        "19:00",
		Guests:      4,
		BookingType: domain.BookingTypeDineIn,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := db.Exec(
		`INSERT INTO bookings (
			id, booking_ref, name, email, phone, booking_date, booking_time,
			guests, booking_type, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.BookingRef, b.Name, b.Email, b.Phone, b.Date, b.Time,
		b.Guests, b.BookingType, b.Status, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed booking %s: %v", bookingRef, err)
	}
	return b
}

func SeedOrder(t *testing.T, db *sql.DB, status domain.OrderStatus, totalCents int64) *domain.Order {
	t.Helper()

	now := time.Now().UTC()
	o := &domain.Order{
		ID:            uuid.New(),
		CustomerName:  "Kofi Boateng",
		CustomerEmail: "kofi@test.com",
		TotalCents:    totalCents,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := db.Exec(
		`INSERT INTO orders (id, customer_name, customer_email, total_cents, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.CustomerName, o.CustomerEmail, o.TotalCents, o.Status, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return o
}

func SeedCateringRequest(t *testing.T, db *sql.DB, quoteRef string, status domain.CateringStatus) *domain.CateringRequest {
	t.Helper()

	now := time.Now().UTC()
	c := &domain.CateringRequest{
		ID:        uuid.New(),
		QuoteRef:  quoteRef,
		Name:      "Zainab Osei",
		Email:     "zainab@test.com",
		Phone:     "+64 21 555 0202",
		EventDate: now.AddDate(0, 1, 0),
		Guests:    60,
		EventType: "wedding",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := db.Exec(
		`INSERT INTO catering_requests (
			id, quote_ref, name, email, phone, event_date, guests,
			event_type, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.QuoteRef, c.Name, c.Email, c.Phone, c.EventDate, c.Guests,
		c.EventType, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed catering request %s: %v", quoteRef, err)
	}
	return c
}

func GetBookingStatus(t *testing.T, db *sql.DB, bookingRef string) string {
	t.Helper()

	var status string
	err := db.QueryRow(`SELECT status FROM bookings WHERE booking_ref = $1`, bookingRef).Scan(&status)
	if err != nil {
		t.Fatalf("get booking status %s: %v", bookingRef, err)
	}
	return status
}

func GetOrderStatus(t *testing.T, db *sql.DB, id uuid.UUID) string {
	t.Helper()

	var status string
	err := db.QueryRow(`SELECT status FROM orders WHERE id = $1`, id).Scan(&status)
	if err != nil {
		t.Fatalf("get order status %s: %v", id, err)
	}
	return status
}

func GetCateringStatus(t *testing.T, db *sql.DB, quoteRef string) string {
	t.Helper()

	var status string
	err := db.QueryRow(`SELECT status FROM catering_requests WHERE quote_ref = $1`, quoteRef).Scan(&status)
	if err != nil {
		t.Fatalf("get catering status %s: %v", quoteRef, err)
	}
	return status
}

func CountAppliedEvents(t *testing.T, db *sql.DB, eventID string) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM applied_events WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		t.Fatalf("count applied events %s: %v", eventID, err)
	}
	return count
}
