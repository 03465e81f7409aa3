// Package assignment manages supervisor-created work items linking a
// technician to a site and a deadline.
package assignment

import (
	"errors"
	"time"
)

// Status is the stored assignment lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

var (
	// ErrNotFound is returned when an assignment does not exist.
	ErrNotFound = errors.New("assignment: not found")
	// ErrInvalidTransition is returned for a disallowed status change.
	ErrInvalidTransition = errors.New("assignment: invalid status transition")
	// ErrEmptySiteCode is returned when creating an assignment without a site.
	ErrEmptySiteCode = errors.New("assignment: empty site code")
)

// Assignment is one work item. Deletion is an external admin operation and
// is not modelled here.
type Assignment struct {
	ID          string     `json:"id"`
	SiteCode    string     `json:"site_code"`
	Technician  string     `json:"technician"`
	Deadline    time.Time  `json:"deadline"`
	Status      Status     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ReportID    string     `json:"report_id,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Overdue reports whether the deadline has passed for an unfinished
// assignment. It is a computed display fact, never a stored status.
func (a Assignment) Overdue(now time.Time) bool {
	if a.Status == StatusDone {
		return false
	}
	return !a.Deadline.IsZero() && a.Deadline.Before(now)
}

// NormalizeStatus validates a status string.
func NormalizeStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusPending, StatusInProgress, StatusDone:
		return Status(value), true
	default:
		return "", false
	}
}
