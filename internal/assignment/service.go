package assignment

import (
	"context"
	"errors"
	"time"
)

// Store is the persistence surface the lifecycle service needs.
type Store interface {
	Get(ctx context.Context, id string) (*Assignment, error)
	UpdateStatus(ctx context.Context, id string, status Status, completedAt *time.Time, reportID string) error
}

// Service drives the assignment lifecycle. Opening an assigned checklist
// moves pending to in_progress; only a successful submission completes one.
type Service struct {
	store Store
}

// NewService constructs the lifecycle service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("assignment service: nil store")
	}
	return &Service{store: store}, nil
}

// Open marks a pending assignment as in progress. Opening an already
// started or finished assignment changes nothing.
func (s *Service) Open(ctx context.Context, id string) error {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if a.Status != StatusPending {
		return nil
	}
	return s.store.UpdateStatus(ctx, id, StatusInProgress, nil, "")
}

// Complete marks an assignment done, stamps the completion time and links
// the persisted report.
func (s *Service) Complete(ctx context.Context, id, reportID string, at time.Time) error {
	if id == "" {
		return ErrNotFound
	}
	if reportID == "" {
		return errors.New("assignment: empty report id")
	}
	at = at.UTC()
	return s.store.UpdateStatus(ctx, id, StatusDone, &at, reportID)
}
