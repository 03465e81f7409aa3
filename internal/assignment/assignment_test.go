package assignment

import (
	"context"
	"testing"
	"time"
)

type fakeStore struct {
	byID    map[string]*Assignment
	updates []Status
}

func (s *fakeStore) Get(_ context.Context, id string) (*Assignment, error) {
	a, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, id string, status Status, completedAt *time.Time, reportID string) error {
	a, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	if completedAt != nil {
		a.CompletedAt = completedAt
	}
	if reportID != "" {
		a.ReportID = reportID
	}
	s.updates = append(s.updates, status)
	return nil
}

func TestOverdueIsComputedNotStored(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	a := Assignment{Status: StatusPending, Deadline: now.Add(-time.Hour)}
	if !a.Overdue(now) {
		t.Fatalf("past deadline on pending assignment must be overdue")
	}

	a.Status = StatusDone
	if a.Overdue(now) {
		t.Fatalf("done assignment is never overdue")
	}

	a = Assignment{Status: StatusInProgress, Deadline: now.Add(time.Hour)}
	if a.Overdue(now) {
		t.Fatalf("future deadline must not be overdue")
	}
}

func TestOpenMovesPendingToInProgressOnce(t *testing.T) {
	store := &fakeStore{byID: map[string]*Assignment{
		"a-1": {ID: "a-1", SiteCode: "AMBEL", Status: StatusPending},
	}}
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.Open(context.Background(), "a-1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.byID["a-1"].Status != StatusInProgress {
		t.Fatalf("expected in_progress, got %s", store.byID["a-1"].Status)
	}

	// Reopening an in-progress assignment is a no-op.
	if err := svc.Open(context.Background(), "a-1"); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if len(store.updates) != 1 {
		t.Fatalf("expected a single status write, got %d", len(store.updates))
	}
}

func TestCompleteStampsAndLinks(t *testing.T) {
	store := &fakeStore{byID: map[string]*Assignment{
		"a-1": {ID: "a-1", SiteCode: "AMBEL", Status: StatusInProgress},
	}}
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	at := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)
	if err := svc.Complete(context.Background(), "a-1", "report-9", at); err != nil {
		t.Fatalf("complete: %v", err)
	}
	a := store.byID["a-1"]
	if a.Status != StatusDone || a.ReportID != "report-9" {
		t.Fatalf("completion not applied: %+v", a)
	}
	if a.CompletedAt == nil || !a.CompletedAt.Equal(at) {
		t.Fatalf("completion time not stamped")
	}

	if err := svc.Complete(context.Background(), "a-1", "", at); err == nil {
		t.Fatalf("completing without a report id must fail")
	}
}
