package selection

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

	"buslane/internal/bookings"
	"buslane/internal/schedules"
	"buslane/internal/seatmap"
	"buslane/internal/shared/config"
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

const (
	scheduleID = "5f0c2a9e-3d1b-4c43-9a57-0b6f2f3c1d11"
	alice      = "7d7f0b52-2f0e-4b7a-8d3e-6b5d2f0a9c01"
	bob        = "2c4e6a80-1b3d-4f5a-9c7e-8d0f2a4b6c02"
)

var start = time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Create(ctx context.Context, sel *Selection, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	m.data[sel.ID] = data
	return nil
}

func (m *memStore) Get(ctx context.Context, id string) (*Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[id]
	if !ok {
		return nil, ErrSelectionNotFound
	}
	return decodeSelection(data)
}

func (m *memStore) Update(ctx context.Context, id string, ttl time.Duration, fn func(*Selection) error) (*Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[id]
	if !ok {
		return nil, ErrSelectionNotFound
	}
	sel, err := decodeSelection(data)
	if err != nil {
		return nil, err
	}
	if err := fn(sel); err != nil {
		return nil, err
	}
	if m.data[id], err = json.Marshal(sel); err != nil {
		return nil, err
	}
	return sel, nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

type fakeSeats struct {
	mu       sync.Mutex
	statuses map[string]seatmap.SeatStatus
	departs  time.Time
}

func (f *fakeSeats) SeatStatuses(ctx context.Context, id string) (*schedules.SeatStatuses, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != scheduleID {
		return nil, bookings.ErrScheduleNotFound
	}
	statuses := make(map[string]seatmap.SeatStatus, len(f.statuses))
	for k, v := range f.statuses {
		statuses[k] = v
	}
	return &schedules.SeatStatuses{ScheduleID: scheduleID, Price: 500, Departure: f.departs, Statuses: statuses}, nil
}

func (f *fakeSeats) book(labels ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range labels {
		f.statuses[l] = seatmap.StatusBooked
	}
}

type fakeCheckout struct {
	requests []bookings.CheckoutRequest
	err      error
}

func (f *fakeCheckout) Checkout(ctx context.Context, userID string, req *bookings.CheckoutRequest) (*bookings.BookingResponse, error) {
	f.requests = append(f.requests, *req)
	if f.err != nil {
		return nil, f.err
	}
	return &bookings.BookingResponse{ScheduleID: req.ScheduleID, Seats: req.Seats, TotalPrice: req.TotalPrice}, nil
}

type fixture struct {
	svc      *service
	store    *memStore
	seats    *fakeSeats
	checkout *fakeCheckout
	clock    time.Time
}

// tick advances the clock by a second, past any debounce window.
func (f *fixture) tick() {
	f.clock = f.clock.Add(time.Second)
}

// newFixture opens on a schedule where B1 is already booked and B2 is not
// for sale.
func newFixture(t *testing.T, maxSeats int) *fixture {
	t.Helper()
	f := &fixture{
		store: newMemStore(),
		seats: &fakeSeats{
			statuses: map[string]seatmap.SeatStatus{
				"A1": seatmap.StatusAvailable,
				"B1": seatmap.StatusBooked,
				"A2": seatmap.StatusAvailable,
				"A3": seatmap.StatusAvailable,
				"B3": seatmap.StatusAvailable,
			},
			departs: start.Add(6 * time.Hour),
		},
		checkout: &fakeCheckout{},
		clock:    start,
	}
	cfg := config.SelectionConfig{MaxSeats: maxSeats, DebounceWindow: 300 * time.Millisecond, TTL: 15 * time.Minute}
	f.svc = NewService(f.store, f.seats, f.checkout, cfg).(*service)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) open(t *testing.T) string {
	t.Helper()
	sel, err := f.svc.Open(context.Background(), alice, scheduleID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return sel.ID
}

func (f *fixture) toggle(t *testing.T, id, seat string) (*ToggleResponse, error) {
	t.Helper()
	f.tick()
	return f.svc.Toggle(context.Background(), alice, id, seat)
}

func TestOpenStartsEmpty(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 0)
	sel, err := f.svc.Open(context.Background(), alice, scheduleID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if sel.State != seatmap.StateEmpty || sel.TotalPrice != 0 || len(sel.Seats) != 0 {
		t.Errorf("selection = %+v", sel)
	}
	if sel.MaxSeats != seatmap.DefaultMaxSeats || sel.Price != 500 || sel.ScheduleID != scheduleID {
		t.Errorf("selection = %+v", sel)
	}
	if !sel.ExpiresAt.Equal(start.Add(15 * time.Minute)) {
		t.Errorf("expiresAt = %v", sel.ExpiresAt)
	}

	if _, err := f.svc.Open(context.Background(), alice, "missing"); !errors.Is(err, bookings.ErrScheduleNotFound) {
		t.Errorf("unknown schedule err = %v", err)
	}
}

func TestOpenRejectsDepartedSchedule(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 4)
	f.clock = f.seats.departs
	if _, err := f.svc.Open(context.Background(), alice, scheduleID); !errors.Is(err, bookings.ErrScheduleDeparted) {
		t.Errorf("err = %v, want ErrScheduleDeparted", err)
	}
}

func TestToggleFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 4)
	id := f.open(t)

	res, err := f.toggle(t, id, "a1")
	if err != nil {
		t.Fatalf("toggle A1: %v", err)
	}
	if res.Action != seatmap.ActionAdded || res.Total != 500 || res.State != seatmap.StatePartiallySelected {
		t.Errorf("after A1 = %+v", res.ToggleResult)
	}

	res, err = f.toggle(t, id, "B1")
	var seatErr *seatmap.SeatError
	if !errors.As(err, &seatErr) || !errors.Is(err, seatmap.ErrSeatUnavailable) {
		t.Fatalf("toggle booked seat err = %v", err)
	}
	if seatErr.Error() != "seat B1 is not available" {
		t.Errorf("message = %q", seatErr.Error())
	}
	if res.Action != seatmap.ActionRejected || !reflect.DeepEqual(res.Selected, []string{"A1"}) {
		t.Errorf("rejected toggle = %+v", res.ToggleResult)
	}

	if _, err := f.toggle(t, id, "A2"); err != nil {
		t.Fatalf("toggle A2: %v", err)
	}
	res, err = f.toggle(t, id, "A1")
	if err != nil {
		t.Fatalf("toggle A1 again: %v", err)
	}
	if res.Action != seatmap.ActionRemoved || !reflect.DeepEqual(res.Selected, []string{"A2"}) || res.Total != 500 {
		t.Errorf("after removing A1 = %+v", res.ToggleResult)
	}

	got, err := f.svc.Get(context.Background(), alice, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got.Seats, []string{"A2"}) || got.TotalPrice != 500 {
		t.Errorf("stored selection = %+v", got)
	}
}

func TestToggleEnforcesLimit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 2)
	id := f.open(t)
	for _, seat := range []string{"A1", "A2"} {
		if _, err := f.toggle(t, id, seat); err != nil {
			t.Fatalf("toggle %s: %v", seat, err)
		}
	}

	res, err := f.toggle(t, id, "A3")
	if !errors.Is(err, seatmap.ErrSelectionLimitExceeded) {
		t.Fatalf("err = %v, want ErrSelectionLimitExceeded", err)
	}
	if res.State != seatmap.StateFull || len(res.Selected) != 2 {
		t.Errorf("result = %+v", res.ToggleResult)
	}
}

func TestToggleCoalescesBursts(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 4)
	id := f.open(t)
	if _, err := f.toggle(t, id, "A1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	f.clock = f.clock.Add(100 * time.Millisecond)
	res, err := f.svc.Toggle(context.Background(), alice, id, "A1")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if res.Action != seatmap.ActionCoalesced || !reflect.DeepEqual(res.Selected, []string{"A1"}) {
		t.Errorf("burst toggle = %+v", res.ToggleResult)
	}
}

func TestToggleUnknownSeatAndOwnership(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 4)
	id := f.open(t)

	res, err := f.toggle(t, id, "B2")
	if !errors.Is(err, seatmap.ErrNotASeat) {
		t.Errorf("excluded seat err = %v, want ErrNotASeat", err)
	}
	if res.Action != seatmap.ActionRejected || res.State != seatmap.StateEmpty {
		t.Errorf("result = %+v", res.ToggleResult)
	}

	if _, err := f.svc.Toggle(context.Background(), bob, id, "A1"); !errors.Is(err, ErrSelectionNotFound) {
		t.Errorf("other user err = %v", err)
	}
	if _, err := f.svc.Get(context.Background(), bob, id); !errors.Is(err, ErrSelectionNotFound) {
		t.Errorf("other user get err = %v", err)
	}
	if err := f.svc.Discard(context.Background(), bob, id); !errors.Is(err, ErrSelectionNotFound) {
		t.Errorf("other user discard err = %v", err)
	}
}

func TestCheckoutHandsOffAndDiscards(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 4)
	ctx := context.Background()
	id := f.open(t)

	if _, err := f.svc.Checkout(ctx, alice, id); !errors.Is(err, seatmap.ErrNoSeatsSelected) {
		t.Fatalf("empty checkout err = %v", err)
	}
	if len(f.checkout.requests) != 0 {
		t.Fatal("empty selection reached the booking flow")
	}

	for _, seat := range []string{"A1", "A2"} {
		if _, err := f.toggle(t, id, seat); err != nil {
			t.Fatalf("toggle %s: %v", seat, err)
		}
	}

	booking, err := f.svc.Checkout(ctx, alice, id)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	want := bookings.CheckoutRequest{ScheduleID: scheduleID, Seats: []string{"A1", "A2"}, TotalPrice: 1000}
	if len(f.checkout.requests) != 1 || !reflect.DeepEqual(f.checkout.requests[0], want) {
		t.Errorf("submitted = %+v, want %+v", f.checkout.requests, want)
	}
	if booking.TotalPrice != 1000 {
		t.Errorf("booking = %+v", booking)
	}
	if _, err := f.svc.Get(ctx, alice, id); !errors.Is(err, ErrSelectionNotFound) {
		t.Errorf("selection survived checkout: %v", err)
	}
}

func TestCheckoutConflictReleasesSeats(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 4)
	ctx := context.Background()
	id := f.open(t)
	for _, seat := range []string{"A1", "A2"} {
		if _, err := f.toggle(t, id, seat); err != nil {
			t.Fatalf("toggle %s: %v", seat, err)
		}
	}

	f.checkout.err = &bookings.SeatConflictError{Seats: []string{"A1"}}
	if _, err := f.svc.Checkout(ctx, alice, id); !errors.Is(err, bookings.ErrSeatAlreadyBooked) {
		t.Fatalf("err = %v, want ErrSeatAlreadyBooked", err)
	}

	got, err := f.svc.Get(ctx, alice, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got.Seats, []string{"A2"}) {
		t.Errorf("seats after conflict = %v, want [A2]", got.Seats)
	}
	if _, err := f.toggle(t, id, "A1"); !errors.Is(err, seatmap.ErrSeatUnavailable) {
		t.Errorf("re-selecting lost seat err = %v", err)
	}
}

func TestRefreshReleasesBookedSeats(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 4)
	id := f.open(t)
	for _, seat := range []string{"A1", "B3"} {
		if _, err := f.toggle(t, id, seat); err != nil {
			t.Fatalf("toggle %s: %v", seat, err)
		}
	}

	f.seats.book("B3")
	sel, err := f.svc.Refresh(context.Background(), alice, id)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !reflect.DeepEqual(sel.Seats, []string{"A1"}) || !reflect.DeepEqual(sel.Released, []string{"B3"}) {
		t.Errorf("refreshed = %+v", sel)
	}
	if sel.TotalPrice != 500 {
		t.Errorf("total = %v, want 500", sel.TotalPrice)
	}
}

func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, "USER")
		c.Next()
	}
}

func TestToggleEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	f := newFixture(t, 4)
	id := f.open(t)
	f.tick()

	router := gin.New()
	controller := NewController(f.svc)
	router.POST("/selections/:id/toggle", withUser(alice), controller.ToggleSeat)
	router.POST("/selections/:id/checkout", withUser(alice), controller.CheckoutSelection)

	post := func(path, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	w := post("/selections/"+id+"/checkout", "")
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "no seats selected") {
		t.Errorf("empty checkout = %d %s", w.Code, w.Body.String())
	}

	w = post("/selections/"+id+"/toggle", `{"seat":"A1"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"totalPrice":500`) {
		t.Errorf("toggle A1 = %d %s", w.Code, w.Body.String())
	}

	f.tick()
	w = post("/selections/"+id+"/toggle", `{"seat":"B1"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("toggle B1 status = %d, want 409", w.Code)
	}
	var body struct {
		Message string `json:"message"`
		Data    struct {
			Selected []string `json:"selected"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if body.Message != "seat B1 is not available" || !reflect.DeepEqual(body.Data.Selected, []string{"A1"}) {
		t.Errorf("conflict body = %+v", body)
	}

	w = post("/selections/unknown/toggle", `{"seat":"A1"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown selection status = %d, want 404", w.Code)
	}
}
