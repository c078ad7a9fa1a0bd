package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "sysinfo.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertRunAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	runID, err := s.InsertRun(ctx, []Report{
		{Hostname: "build01", Category: "memory", Report: "Total: 8.00 GB", CollectedAt: at},
		{Hostname: "build01", Category: "software", Report: "Error retrieving software: probe unavailable", Failed: true, CollectedAt: at},
	})
	if err != nil {
		t.Fatalf("InsertRun: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run id")
	}

	all, err := s.List(ctx, ListFilter{RunID: runID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d reports, want 2", len(all))
	}

	sw, err := s.List(ctx, ListFilter{Category: "software"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sw) != 1 || !sw[0].Failed || sw[0].RunID != runID {
		t.Errorf("software reports = %+v", sw)
	}
	if !sw[0].CollectedAt.Equal(at) {
		t.Errorf("CollectedAt = %v, want %v", sw[0].CollectedAt, at)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := range 3 {
		_, err := s.InsertRun(ctx, []Report{{
			Hostname:    "build01",
			Category:    "cpu",
			Report:      "CPU Usage: 1.0%",
			CollectedAt: base.Add(time.Duration(i) * 500 * time.Millisecond),
		}})
		if err != nil {
			t.Fatalf("InsertRun %d: %v", i, err)
		}
	}

	got, err := s.List(ctx, ListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d reports, want 2", len(got))
	}
	if !got[0].CollectedAt.After(got[1].CollectedAt) {
		t.Errorf("order: %v before %v", got[0].CollectedAt, got[1].CollectedAt)
	}
	if !got[0].CollectedAt.Equal(base.Add(time.Second)) {
		t.Errorf("newest = %v", got[0].CollectedAt)
	}
}

func TestInsertRunEmpty(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.InsertRun(context.Background(), nil); !errors.Is(err, ErrEmptyRun) {
		t.Errorf("err = %v, want ErrEmptyRun", err)
	}
}

func TestPurge(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, err := s.InsertRun(ctx, []Report{
		{Hostname: "h", Category: "disk", Report: "old", CollectedAt: now.Add(-72 * time.Hour)},
		{Hostname: "h", Category: "disk", Report: "new", CollectedAt: now.Add(-time.Hour)},
		{Hostname: "h", Category: "disk", Report: "stamped"},
	})
	if err != nil {
		t.Fatalf("InsertRun: %v", err)
	}

	n, err := s.Purge(ctx, 48*time.Hour)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d rows, want 1", n)
	}

	left, err := s.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(left) != 2 || left[0].Report != "stamped" || left[1].Report != "new" {
		t.Errorf("remaining = %+v", left)
	}
}
