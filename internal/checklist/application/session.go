// Package application owns the active editing session. One session holds
// one checklist record with a single writer; components receive the
// session handle explicitly instead of sharing ambient globals.
package application

import (
	"context"
	"errors"
	"sync"

	checklist "github.com/gregori0101/infrasites-sub001/internal/checklist/domain"
)

// AssignmentOpener flips an assignment to in-progress when its checklist
// is opened.
type AssignmentOpener interface {
	Open(ctx context.Context, id string) error
}

// Session is the exclusive owner of the active checklist record. All
// mutations go through Do, which serializes writers.
type Session struct {
	mu           sync.Mutex
	record       *checklist.ChecklistRecord
	assignmentID string
	validator    checklist.Validator
}

// NewSession starts a session with a fresh default record.
func NewSession() *Session {
	return &Session{record: checklist.NewRecord()}
}

// Open resets the session for a new checklist. When an assignment id is
// given the assignment is moved to in-progress through the opener.
func (s *Session) Open(ctx context.Context, assignmentID string, opener AssignmentOpener) error {
	s.mu.Lock()
	s.record.Reset()
	s.assignmentID = assignmentID
	s.mu.Unlock()

	if assignmentID == "" || opener == nil {
		return nil
	}
	return opener.Open(ctx, assignmentID)
}

// Do runs fn with exclusive access to the record.
func (s *Session) Do(fn func(*checklist.ChecklistRecord) error) error {
	if fn == nil {
		return errors.New("session: nil mutation")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.record)
}

// Record returns the owned record. Callers outside a Do block must treat
// it as read-only between mutations.
func (s *Session) Record() *checklist.ChecklistRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// AssignmentID returns the assignment the session is working, if any.
func (s *Session) AssignmentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignmentID
}

// Validate evaluates the given step against the current record, memoized
// on the record revision.
func (s *Session) Validate(step checklist.Step, cabinetIndex int) checklist.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validator.Validate(s.record, step, cabinetIndex)
}

// Progress returns the current completion score.
func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return checklist.Progress(s.record)
}

// Reset discards the record and detaches any assignment.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.Reset()
	s.assignmentID = ""
}
