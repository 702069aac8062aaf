package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"buslane/internal/notifications"
	"buslane/internal/seatmap"
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeRepo struct {
	mu       sync.Mutex
	bookings []Booking
}

func (r *fakeRepo) CreateWithSeatGuard(ctx context.Context, booking *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var active []Booking
	for _, b := range r.bookings {
		if b.ScheduleID == booking.ScheduleID && b.Status.IsActive() {
			active = append(active, b)
		}
	}
	if taken := takenSeats(active, booking.Seats); len(taken) > 0 {
		return &SeatConflictError{Seats: taken}
	}
	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	r.bookings = append(r.bookings, *booking)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID.String() == id {
			found := b
			return &found, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (r *fakeRepo) ListByUser(ctx context.Context, userID string, query BookingListQuery) ([]Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Booking
	for _, b := range r.bookings {
		if b.UserID.String() == userID && (query.Status == "" || string(b.Status) == query.Status) {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Booking
	for _, b := range r.bookings {
		if b.ScheduleID.String() == scheduleID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, id string, from, to Status, cancelledAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bookings {
		if r.bookings[i].ID.String() == id {
			if r.bookings[i].Status != from {
				return ErrStatusConflict
			}
			r.bookings[i].Status = to
			r.bookings[i].CancelledAt = cancelledAt
			return nil
		}
	}
	return ErrBookingNotFound
}

type fakeCatalog struct {
	plan *SeatPlan
}

func (c *fakeCatalog) SeatPlan(ctx context.Context, scheduleID string) (*SeatPlan, error) {
	if c.plan == nil || scheduleID != c.plan.ScheduleID {
		return nil, ErrScheduleNotFound
	}
	return c.plan, nil
}

type fakeHolders map[string]string

func (h fakeHolders) FullNames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, id := range ids {
		if name, ok := h[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*notifications.BookingEvent
}

func (p *recordingPublisher) PublishBookingEvent(ctx context.Context, event *notifications.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var (
	scheduleID = uuid.NewString()
	alice      = uuid.NewString()
	bob        = uuid.NewString()
	now        = time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
)

// twoRowPlan is a 2x3 layout with the aisle in the middle and B2 not for sale.
func twoRowPlan(t *testing.T) *SeatPlan {
	t.Helper()
	layout, err := seatmap.Generate(seatmap.LayoutSpec{Rows: 2, Columns: 3, AisleColumn: 1})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	inclusion := seatmap.NewInclusion(layout)
	inclusion.SelectAll()
	if err := inclusion.Set(1, 2, false); err != nil {
		t.Fatalf("Set: %v", err)
	}
	return &SeatPlan{ScheduleID: scheduleID, Price: 500, Departure: now.Add(6 * time.Hour), Inclusion: inclusion}
}

type fixture struct {
	svc       *service
	repo      *fakeRepo
	publisher *recordingPublisher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := &fakeRepo{}
	publisher := &recordingPublisher{}
	svc := NewService(repo, &fakeCatalog{plan: twoRowPlan(t)}, fakeHolders{alice: "Alice Rao", bob: "Bob Das"}, publisher).(*service)
	svc.now = func() time.Time { return now }
	return fixture{svc: svc, repo: repo, publisher: publisher}
}

func TestCheckoutCreatesPendingBooking(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := f.svc.Checkout(context.Background(), alice, &CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"a1", "B1"}, TotalPrice: 1000})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if resp.Status != StatusPending || resp.TotalPrice != 1000 {
		t.Errorf("response = %+v", resp)
	}
	if !reflect.DeepEqual(resp.Seats, []string{"A1", "B1"}) {
		t.Errorf("seats = %v", resp.Seats)
	}
	if !strings.HasPrefix(resp.BookingRef, "BUS-20260314-") || len(resp.BookingRef) != len("BUS-20260314-ABCDEF") {
		t.Errorf("booking ref = %q", resp.BookingRef)
	}

	if len(f.publisher.events) != 1 {
		t.Fatalf("published %d events, want 1", len(f.publisher.events))
	}
	event := f.publisher.events[0]
	if event.Type != notifications.BookingEventCreated || event.ScheduleID != scheduleID || event.Status != "pending" {
		t.Errorf("event = %+v", event)
	}
}

func TestCheckoutRejectsSeatsHeldByActiveBookings(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Checkout(ctx, alice, &CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"A1", "B1"}, TotalPrice: 1000})
	if err != nil {
		t.Fatalf("first Checkout: %v", err)
	}

	_, err = f.svc.Checkout(ctx, bob, &CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"A2", "B1"}, TotalPrice: 1000})
	if !errors.Is(err, ErrSeatAlreadyBooked) {
		t.Fatalf("err = %v, want ErrSeatAlreadyBooked", err)
	}
	var conflict *SeatConflictError
	if !errors.As(err, &conflict) || !reflect.DeepEqual(conflict.Seats, []string{"B1"}) {
		t.Errorf("conflict = %+v", conflict)
	}

	// cancelling frees the seats again
	if _, err := f.svc.CancelBooking(ctx, first.ID, alice); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if _, err := f.svc.Checkout(ctx, bob, &CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"A2", "B1"}, TotalPrice: 1000}); err != nil {
		t.Errorf("Checkout after cancel: %v", err)
	}
}

func TestCheckoutValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name string
		req  CheckoutRequest
		want error
	}{
		{"no seats", CheckoutRequest{ScheduleID: scheduleID}, seatmap.ErrNoSeatsSelected},
		{"duplicate seat", CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"A1", "a1"}, TotalPrice: 1000}, ErrDuplicateSeat},
		{"excluded seat", CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"B2"}, TotalPrice: 500}, ErrUnknownSeat},
		{"label outside layout", CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"Z9"}, TotalPrice: 500}, ErrUnknownSeat},
		{"wrong total", CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"A1"}, TotalPrice: 400}, ErrPriceMismatch},
		{"unknown schedule", CheckoutRequest{ScheduleID: uuid.NewString(), Seats: []string{"A1"}, TotalPrice: 500}, ErrScheduleNotFound},
	}
	for _, test := range tests {
		req := test.req
		if _, err := f.svc.Checkout(context.Background(), alice, &req); !errors.Is(err, test.want) {
			t.Errorf("%s: err = %v, want %v", test.name, err, test.want)
		}
	}
	if len(f.repo.bookings) != 0 || len(f.publisher.events) != 0 {
		t.Errorf("rejected checkouts left %d bookings and %d events", len(f.repo.bookings), len(f.publisher.events))
	}
}

func TestCheckoutAfterDeparture(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.svc.now = func() time.Time { return now.Add(7 * time.Hour) }

	_, err := f.svc.Checkout(context.Background(), alice, &CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"A1"}, TotalPrice: 500})
	if !errors.Is(err, ErrScheduleDeparted) {
		t.Errorf("err = %v, want ErrScheduleDeparted", err)
	}
}

func TestCancelAfterDeparture(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Checkout(ctx, alice, &CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"A1"}, TotalPrice: 500})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	for _, at := range []time.Time{now.Add(6 * time.Hour), now.Add(24 * time.Hour)} {
		f.svc.now = func() time.Time { return at }
		if _, err := f.svc.CancelBooking(ctx, created.ID, alice); !errors.Is(err, ErrScheduleDeparted) {
			t.Errorf("cancel at %s: err = %v, want ErrScheduleDeparted", at.Format(time.Kitchen), err)
		}
	}
	if got := f.repo.bookings[0].Status; got != StatusPending {
		t.Errorf("status after rejected cancel = %s, want pending", got)
	}
	if len(f.publisher.events) != 1 {
		t.Errorf("published %d events, want only the created event", len(f.publisher.events))
	}
}

func TestCancelTwice(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Checkout(ctx, alice, &CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"A1"}, TotalPrice: 500})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if _, err := f.svc.CancelBooking(ctx, created.ID, alice); err != nil {
		t.Fatalf("first CancelBooking: %v", err)
	}
	if _, err := f.svc.CancelBooking(ctx, created.ID, alice); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second CancelBooking err = %v, want ErrInvalidTransition", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusBooked, true},
		{StatusPending, StatusCancelled, true},
		{StatusBooked, StatusCancelled, true},
		{StatusBooked, StatusPending, false},
		{StatusCancelled, StatusBooked, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusPending, StatusPending, false},
	}
	for _, test := range tests {
		if got := test.from.CanTransitionTo(test.to); got != test.ok {
			t.Errorf("%s -> %s = %v, want %v", test.from, test.to, got, test.ok)
		}
	}
}

func TestAdminStatusUpdate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Checkout(ctx, alice, &CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"A1"}, TotalPrice: 500})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	booked, err := f.svc.UpdateStatus(ctx, created.ID, StatusBooked)
	if err != nil {
		t.Fatalf("UpdateStatus(booked): %v", err)
	}
	if booked.Status != StatusBooked {
		t.Errorf("status = %s", booked.Status)
	}

	if _, err := f.svc.UpdateStatus(ctx, created.ID, StatusPending); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("booked -> pending err = %v, want ErrInvalidTransition", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, created.ID, "refunded"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("unknown status err = %v, want ErrInvalidStatus", err)
	}

	cancelled, err := f.svc.UpdateStatus(ctx, created.ID, StatusCancelled)
	if err != nil {
		t.Fatalf("UpdateStatus(cancelled): %v", err)
	}
	if cancelled.CancelledAt == nil {
		t.Error("cancelledAt not set")
	}

	last := f.publisher.events[len(f.publisher.events)-1]
	if last.Type != notifications.BookingEventStatusChanged || last.PreviousStatus != "booked" || last.Status != "cancelled" {
		t.Errorf("last event = %+v", last)
	}
}

func TestOwnershipChecks(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Checkout(ctx, alice, &CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"A1"}, TotalPrice: 500})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if _, err := f.svc.GetBooking(ctx, created.ID, bob, false); !errors.Is(err, ErrForbidden) {
		t.Errorf("GetBooking by other user = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.GetBooking(ctx, created.ID, bob, true); err != nil {
		t.Errorf("GetBooking by admin: %v", err)
	}
	if _, err := f.svc.CancelBooking(ctx, created.ID, bob); !errors.Is(err, ErrForbidden) {
		t.Errorf("CancelBooking by other user = %v, want ErrForbidden", err)
	}
}

func TestRecordSourceAndScheduleList(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Checkout(ctx, alice, &CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"A1"}, TotalPrice: 500})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if _, err := f.svc.CancelBooking(ctx, a.ID, alice); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if _, err := f.svc.Checkout(ctx, bob, &CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"A1", "A2"}, TotalPrice: 1000}); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	records, err := NewRecordSource(f.repo, fakeHolders{alice: "Alice Rao", bob: "Bob Das"}).RecordsForSchedule(ctx, scheduleID)
	if err != nil {
		t.Fatalf("RecordsForSchedule: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Status != seatmap.BookingCancelled || records[1].HolderName != "Bob Das" {
		t.Errorf("records = %+v", records)
	}

	state := seatmap.Reconcile(twoRowPlan(t).Inclusion, records)
	if status, _ := state.Status("A1"); status != seatmap.StatusBooked {
		t.Errorf("A1 = %s, want booked", status)
	}
	if state.AvailableCount() != 1 {
		t.Errorf("available = %d, want 1 (B1)", state.AvailableCount())
	}

	list, err := f.svc.ListScheduleBookings(ctx, scheduleID)
	if err != nil {
		t.Fatalf("ListScheduleBookings: %v", err)
	}
	if len(list) != 2 || list[0].User.FullName != "Alice Rao" {
		t.Errorf("list = %+v", list)
	}
}

func TestCheckoutEndpointConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	if _, err := f.svc.Checkout(context.Background(), alice, &CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"A1"}, TotalPrice: 500}); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, bob)
		c.Set(middleware.ContextUserRole, "USER")
	})
	router.POST("/bookings/checkout", NewController(f.svc).Checkout)

	body := `{"scheduleId":"` + scheduleID + `","seats":["A1","B1"],"totalPrice":1000}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Message string `json:"message"`
		Errors  struct {
			Seats []string `json:"seats"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "seat already booked: A1" || !reflect.DeepEqual(resp.Errors.Seats, []string{"A1"}) {
		t.Errorf("response = %+v", resp)
	}
}

func TestCheckoutEndpointRejectsEmptySeats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)

	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, alice) })
	router.POST("/bookings/checkout", NewController(f.svc).Checkout)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings/checkout", strings.NewReader(`{"scheduleId":"`+scheduleID+`","seats":[],"totalPrice":0}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
