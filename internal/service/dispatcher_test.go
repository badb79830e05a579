package service_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afroflavours/restaurant-api/internal/domain"
	"github.com/afroflavours/restaurant-api/internal/repository"
	"github.com/afroflavours/restaurant-api/internal/service"
	"github.com/afroflavours/restaurant-api/internal/testutil"
)

func setupDispatcher(t *testing.T, db *sql.DB) *service.Dispatcher {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewDispatcher(
		repository.NewPayableRepository(db),
		repository.NewAppliedEventRepository(db),
		db,
		logger,
	)
}

func checkoutEvent(eventID, orderID, paymentStatus string) *domain.Event {
	return &domain.Event{
		ID:      eventID,
		RawType: "checkout.session.completed",
		Data: domain.CheckoutCompleted{
			SessionID:     "cs_" + eventID,
			PaymentStatus: paymentStatus,
			AmountCents:   4500,
			Metadata: domain.EventMetadata{
				ReferenceID:   orderID,
				ReferenceKind: "order",
				CustomerEmail: "kofi@test.com",
				CustomerName:  "Kofi Boateng",
			},
		},
	}
}

func depositEvent(eventID, depositType, referenceID string) *domain.Event {
	return &domain.Event{
		ID:      eventID,
		RawType: "payment_intent.succeeded",
		Data: domain.DepositSucceeded{
			IntentID:    "pi_" + eventID,
			AmountCents: 10000,
			Metadata: domain.EventMetadata{
				ReferenceID:   referenceID,
				Type:          depositType,
				CustomerEmail: "ama@test.com",
				CustomerName:  "Ama Mensah",
			},
		},
	}
}

func TestDispatch_PaidCheckoutMarksOrderPaid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	d := setupDispatcher(t, db)
	ctx := context.Background()

	order := testutil.SeedOrder(t, db, domain.OrderStatusPending, 4500)

	outcome, err := d.Dispatch(ctx, checkoutEvent("evt_paid_1", order.ID.String(), "paid"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeApplied, outcome.Kind)
	assert.Equal(t, domain.ReferenceKindOrder, outcome.ReferenceKind)
	assert.Equal(t, string(domain.OrderStatusPaid), outcome.NewStatus)

	assert.Equal(t, "paid", testutil.GetOrderStatus(t, db, order.ID))
	assert.Equal(t, 1, testutil.CountAppliedEvents(t, db, "evt_paid_1"))
}

func TestDispatch_ReplaySuppressed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	d := setupDispatcher(t, db)
	ctx := context.Background()

	order := testutil.SeedOrder(t, db, domain.OrderStatusPending, 4500)
	event := checkoutEvent("evt_replay_1", order.ID.String(), "paid")

	first, err := d.Dispatch(ctx, event)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeApplied, first.Kind)

	second, err := d.Dispatch(ctx, event)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeReplay, second.Kind)
	assert.Equal(t, "paid", testutil.GetOrderStatus(t, db, order.ID))
	assert.Equal(t, 1, testutil.CountAppliedEvents(t, db, "evt_replay_1"))
}

func TestDispatch_UnpaidCheckoutIgnored(t *testing.T) {
	db := testutil.SetupTestDB(t)
	d := setupDispatcher(t, db)
	ctx := context.Background()

	order := testutil.SeedOrder(t, db, domain.OrderStatusPending, 4500)

	outcome, err := d.Dispatch(ctx, checkoutEvent("evt_unpaid_1", order.ID.String(), "unpaid"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeIgnored, outcome.Kind)
	assert.Equal(t, "pending", testutil.GetOrderStatus(t, db, order.ID))
	assert.Equal(t, 0, testutil.CountAppliedEvents(t, db, "evt_unpaid_1"))
}

func TestDispatch_UnknownReferenceNotMarked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	d := setupDispatcher(t, db)
	ctx := context.Background()

	outcome, err := d.Dispatch(ctx, depositEvent("evt_unknown_1", domain.DepositTypeBooking, "AF00000000"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeUnknownReference, outcome.Kind)
	// Left off the ledger so a gateway resend can still apply once the
	// record exists.
	assert.Equal(t, 0, testutil.CountAppliedEvents(t, db, "evt_unknown_1"))
}

func TestDispatch_ResendAfterUnknownReferenceApplies(t *testing.T) {
	db := testutil.SetupTestDB(t)
	d := setupDispatcher(t, db)
	ctx := context.Background()

	event := depositEvent("evt_resend_1", domain.DepositTypeBooking, "AF11112222")

	outcome, err := d.Dispatch(ctx, event)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeUnknownReference, outcome.Kind)

	testutil.SeedBooking(t, db, "AF11112222", domain.BookingStatusPending)

	outcome, err = d.Dispatch(ctx, event)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeApplied, outcome.Kind)
	assert.Equal(t, "confirmed", testutil.GetBookingStatus(t, db, "AF11112222"))
}

func TestDispatch_BookingDepositConfirmsBooking(t *testing.T) {
	db := testutil.SetupTestDB(t)
	d := setupDispatcher(t, db)
	ctx := context.Background()

	testutil.SeedBooking(t, db, "AF12345678", domain.BookingStatusPending)

	outcome, err := d.Dispatch(ctx, depositEvent("evt_booking_1", domain.DepositTypeBooking, "AF12345678"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeApplied, outcome.Kind)
	assert.Equal(t, domain.ReferenceKindBooking, outcome.ReferenceKind)
	assert.Equal(t, "confirmed", testutil.GetBookingStatus(t, db, "AF12345678"))
	assert.Equal(t, 1, testutil.CountAppliedEvents(t, db, "evt_booking_1"))
}

func TestDispatch_BookingDepositOnConfirmedBookingIgnored(t *testing.T) {
	db := testutil.SetupTestDB(t)
	d := setupDispatcher(t, db)
	ctx := context.Background()

	testutil.SeedBooking(t, db, "AF87654321", domain.BookingStatusConfirmed)

	outcome, err := d.Dispatch(ctx, depositEvent("evt_booking_2", domain.DepositTypeBooking, "AF87654321"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeIgnored, outcome.Kind)
	assert.Equal(t, "confirmed", testutil.GetBookingStatus(t, db, "AF87654321"))
	assert.Equal(t, 0, testutil.CountAppliedEvents(t, db, "evt_booking_2"))
}

func TestDispatch_CateringDepositMarksDepositPaid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	d := setupDispatcher(t, db)
	ctx := context.Background()

	testutil.SeedCateringRequest(t, db, "CQ12345678", domain.CateringStatusQuoted)

	outcome, err := d.Dispatch(ctx, depositEvent("evt_catering_1", domain.DepositTypeCatering, "CQ12345678"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeApplied, outcome.Kind)
	assert.Equal(t, domain.ReferenceKindCatering, outcome.ReferenceKind)
	assert.Equal(t, "deposit_paid", testutil.GetCateringStatus(t, db, "CQ12345678"))
}

func TestDispatch_UnknownDepositTypeIgnored(t *testing.T) {
	db := testutil.SetupTestDB(t)
	d := setupDispatcher(t, db)
	ctx := context.Background()

	testutil.SeedBooking(t, db, "AF55556666", domain.BookingStatusPending)

	outcome, err := d.Dispatch(ctx, depositEvent("evt_odd_type_1", "gift_card_topup", "AF55556666"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeIgnored, outcome.Kind)
	assert.Equal(t, "pending", testutil.GetBookingStatus(t, db, "AF55556666"))
}

func TestDispatch_MissingReferenceIDMalformed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	d := setupDispatcher(t, db)
	ctx := context.Background()

	outcome, err := d.Dispatch(ctx, depositEvent("evt_noref_1", domain.DepositTypeBooking, ""))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeMalformed, outcome.Kind)
	assert.Equal(t, 0, testutil.CountAppliedEvents(t, db, "evt_noref_1"))
}

func TestDispatch_PaymentFailedAndRefundAcknowledged(t *testing.T) {
	db := testutil.SetupTestDB(t)
	d := setupDispatcher(t, db)
	ctx := context.Background()

	failed := &domain.Event{
		ID:      "evt_failed_1",
		RawType: "payment_intent.payment_failed",
		Data: domain.PaymentFailed{
			IntentID:      "pi_failed_1",
			FailureReason: "card_declined",
			Metadata:      domain.EventMetadata{ReferenceID: "AF99990000"},
		},
	}
	outcome, err := d.Dispatch(ctx, failed)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIgnored, outcome.Kind)

	refunded := &domain.Event{
		ID:      "evt_refund_1",
		RawType: "charge.refunded",
		Data:    domain.ChargeRefunded{ChargeID: "ch_1", AmountCents: 4500},
	}
	outcome, err = d.Dispatch(ctx, refunded)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIgnored, outcome.Kind)
}

func TestDispatch_ConcurrentDeliveriesApplyOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	d := setupDispatcher(t, db)
	ctx := context.Background()

	order := testutil.SeedOrder(t, db, domain.OrderStatusPending, 4500)
	event := checkoutEvent("evt_race_1", order.ID.String(), "paid")

	const deliveries = 8
	outcomes := make([]domain.DispatchOutcome, deliveries)
	errs := make([]error, deliveries)

	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = d.Dispatch(ctx, event)
		}(i)
	}
	wg.Wait()

	applied := 0
	for i := 0; i < deliveries; i++ {
		require.NoError(t, errs[i])
		switch outcomes[i].Kind {
		case domain.OutcomeApplied:
			applied++
		case domain.OutcomeReplay, domain.OutcomeIgnored:
			// Losers of the race see either the ledger row or the already
			// transitioned status, depending on timing.
		default:
			t.Fatalf("unexpected outcome %q", outcomes[i].Kind)
		}
	}

	assert.Equal(t, 1, applied)
	assert.Equal(t, "paid", testutil.GetOrderStatus(t, db, order.ID))
	assert.Equal(t, 1, testutil.CountAppliedEvents(t, db, "evt_race_1"))
}
