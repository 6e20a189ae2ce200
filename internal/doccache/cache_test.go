package doccache

import (
	"errors"
	"testing"
	"time"
)

func TestSetThenGetRoundTrips(t *testing.T) {
	c, err := New(100, time.Minute)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	d := &Decision{TraversalStart: "v0"}
	c.Set(1, d, 5, 7)
	c.cache.Wait()

	got, ok := c.Get(1, 5, 7)
	if !ok || got.TraversalStart != "v0" {
		t.Fatalf("Get(1, 5, 7) = %v, %v, want the cached decision", got, ok)
	}
}

func TestGetDetectsVersionMismatch(t *testing.T) {
	c, err := New(100, time.Minute)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Set(1, &Decision{}, 5, 7)
	c.cache.Wait()

	if _, ok := c.Get(1, 6, 7); ok {
		t.Fatalf("expected a stats-version mismatch to miss")
	}
	if got := c.StatsSnapshot().VersionMismatches; got != 1 {
		t.Fatalf("VersionMismatches = %d, want 1", got)
	}
}

func TestGetOrComputeCallsComputeOnceOnMiss(t *testing.T) {
	c, err := New(100, time.Minute)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	calls := 0
	compute := func() (*Decision, error) {
		calls++
		return &Decision{TraversalStart: "computed"}, nil
	}

	d1, err := c.GetOrCompute(42, 1, 1, compute)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	c.cache.Wait()
	d2, err := c.GetOrCompute(42, 1, 1, compute)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}

	if calls != 1 {
		t.Fatalf("compute called %d times, want 1", calls)
	}
	if d1.TraversalStart != d2.TraversalStart {
		t.Fatalf("expected both calls to return the same cached decision")
	}
}

func TestGetOrComputePropagatesComputeError(t *testing.T) {
	c, err := New(100, time.Minute)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	wantErr := errors.New("boom")
	_, err = c.GetOrCompute(1, 1, 1, func() (*Decision, error) { return nil, wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("GetOrCompute err = %v, want %v", err, wantErr)
	}
}
