package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eugenenazirov/trip-quoter/internal/catalog"
	"github.com/eugenenazirov/trip-quoter/internal/pricing"
)

type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func TestMemoryStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(catalog.Default())

	snap, err := store.Create()
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if snap.ID == "" {
		t.Fatalf("expected session id")
	}

	updated, err := store.Update(snap.ID, func(s *Session) error {
		return s.Set(pricing.FieldProductiveKm, 50)
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Input.ProductiveKm != 50 {
		t.Fatalf("expected committed distance, got %v", updated.Input.ProductiveKm)
	}

	var seen float64
	err = store.View(snap.ID, func(s *Session) error {
		seen = s.Result().VehicleCostPerUnit
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}
	if seen != 130000 {
		t.Fatalf("expected 130000, got %v", seen)
	}

	if err := store.Delete(snap.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := store.Delete(snap.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreUpdateReturnsSnapshotOnRejection(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(catalog.Default())
	snap, err := store.Create()
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got, err := store.Update(snap.ID, func(s *Session) error {
		return s.Set(pricing.FieldDestinationKm, -5)
	})
	if !errors.Is(err, pricing.ErrNegativeValue) {
		t.Fatalf("expected ErrNegativeValue, got %v", err)
	}
	if got.ID != snap.ID || got.Errors[string(pricing.FieldDestinationKm)] == "" {
		t.Fatalf("expected snapshot with field error, got %+v", got)
	}
}

func TestMemoryStoreUnknownID(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(catalog.Default())
	if _, err := store.Update("missing", func(*Session) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.View("missing", func(*Session) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreEvictsLeastRecentlyUpdated(t *testing.T) {
	t.Parallel()

	clock := &steppingClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(catalog.Default(), WithClock(clock.Now), WithMaxSessions(2))

	first, _ := store.Create()
	second, _ := store.Create()

	if _, err := store.Update(first.ID, func(s *Session) error {
		return s.Set(pricing.FieldPassengers, 12)
	}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	third, err := store.Create()
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if store.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", store.Len())
	}
	if err := store.View(second.ID, func(*Session) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected second session to be evicted, got %v", err)
	}
	for _, id := range []string{first.ID, third.ID} {
		if err := store.View(id, func(*Session) error { return nil }); err != nil {
			t.Fatalf("expected session %s to survive: %v", id, err)
		}
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore(catalog.Default())
	snap, err := store.Create()
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(2)

		go func(offset int) {
			defer wg.Done()
			if _, err := store.Update(snap.ID, func(s *Session) error {
				return s.Set(pricing.FieldProductiveKm, float64(100+offset))
			}); err != nil {
				t.Errorf("Update failed: %v", err)
			}
		}(i)

		go func() {
			defer wg.Done()
			if err := store.View(snap.ID, func(s *Session) error {
				_ = s.Snapshot()
				return nil
			}); err != nil {
				t.Errorf("View failed: %v", err)
			}
		}()
	}

	wg.Wait()

	// final state must be internally consistent
	err = store.View(snap.ID, func(s *Session) error {
		want, err := pricing.Compute(s.Input(), catalog.Default().Rates())
		if err != nil {
			return err
		}
		if want != s.Result() {
			t.Fatalf("result out of sync with input: %+v vs %+v", want, s.Result())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
