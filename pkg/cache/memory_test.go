package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type layoutDoc struct {
	BusID string `json:"busId"`
	Seats int    `json:"seats"`
}

func TestMemoryGetSetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewMemoryService()

	var got layoutDoc
	if err := svc.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get on empty cache = %v, want ErrCacheMiss", err)
	}

	if err := svc.Set(ctx, "k", layoutDoc{BusID: "b1", Seats: 38}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := svc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.BusID != "b1" || got.Seats != 38 {
		t.Errorf("Get = %+v", got)
	}
	if !svc.Exists(ctx, "k") {
		t.Error("Exists = false after Set")
	}

	if err := svc.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if svc.Exists(ctx, "k") {
		t.Error("Exists = true after Delete")
	}
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := &memoryService{entries: make(map[string]memoryEntry), now: func() time.Time { return now }}

	if err := svc.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = now.Add(time.Minute)

	var v int
	if err := svc.Get(ctx, "k", &v); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after ttl = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryDeletePattern(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewMemoryService()

	for _, key := range []string{"buslane:buses:layout:uuid:1", "buslane:buses:detail:uuid:1", "buslane:routes:list:all"} {
		if err := svc.Set(ctx, key, true, 0); err != nil {
			t.Fatalf("Set(%s): %v", key, err)
		}
	}
	if err := svc.DeletePattern(ctx, "buslane:buses:*"); err != nil {
		t.Fatalf("DeletePattern: %v", err)
	}

	if svc.Exists(ctx, "buslane:buses:layout:uuid:1") || svc.Exists(ctx, "buslane:buses:detail:uuid:1") {
		t.Error("bus keys survived DeletePattern")
	}
	if !svc.Exists(ctx, "buslane:routes:list:all") {
		t.Error("route key was removed by bus pattern")
	}
}

func TestMemoryGetOrSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewMemoryService()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return layoutDoc{BusID: "b2", Seats: 20}, nil
	}

	for i := 0; i < 2; i++ {
		var got layoutDoc
		if err := svc.GetOrSet(ctx, "k", time.Minute, fetch, &got); err != nil {
			t.Fatalf("GetOrSet: %v", err)
		}
		if got.Seats != 20 {
			t.Errorf("GetOrSet = %+v", got)
		}
	}
	if calls != 1 {
		t.Errorf("fetcher called %d times, want 1", calls)
	}

	boom := errors.New("db down")
	var got layoutDoc
	err := svc.GetOrSet(ctx, "other", time.Minute, func() (interface{}, error) { return nil, boom }, &got)
	if !errors.Is(err, boom) {
		t.Errorf("GetOrSet error = %v, want wrapped fetch error", err)
	}
}
