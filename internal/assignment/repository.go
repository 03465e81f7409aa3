package assignment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository stores assignments in postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs an assignment repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new pending assignment.
func (r *Repository) Create(ctx context.Context, a *Assignment) error {
	if r == nil || r.db == nil {
		return errors.New("assignment repo: nil db")
	}
	if a == nil {
		return errors.New("assignment repo: nil assignment")
	}
	if a.SiteCode == "" {
		return ErrEmptySiteCode
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO assignments (id, site_code, technician, deadline, status, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.SiteCode, a.Technician, a.Deadline, a.Status, a.CreatedBy, a.CreatedAt)
	return err
}

// Get loads one assignment by id.
func (r *Repository) Get(ctx context.Context, id string) (*Assignment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("assignment repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, site_code, technician, deadline, status, completed_at, COALESCE(report_id, ''), created_by, created_at
FROM assignments WHERE id = $1`, id)
	return scanAssignment(row)
}

// List returns all assignments.
func (r *Repository) List(ctx context.Context) ([]Assignment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("assignment repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, site_code, technician, deadline, status, completed_at, COALESCE(report_id, ''), created_by, created_at
FROM assignments ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Assignment
	for rows.Next() {
		a, err := scanAssignmentRows(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

// UpdateStatus partially updates one assignment: the new status always,
// the completion stamp and the linked report id only when provided.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status, completedAt *time.Time, reportID string) error {
	if r == nil || r.db == nil {
		return errors.New("assignment repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE assignments
SET status = $2,
	completed_at = COALESCE($3, completed_at),
	report_id = CASE WHEN $4 <> '' THEN $4 ELSE report_id END
WHERE id = $1`, id, status, completedAt, reportID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAssignment(row *sql.Row) (*Assignment, error) {
	var a Assignment
	var completed sql.NullTime
	err := row.Scan(&a.ID, &a.SiteCode, &a.Technician, &a.Deadline, &a.Status,
		&completed, &a.ReportID, &a.CreatedBy, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if completed.Valid {
		at := completed.Time
		a.CompletedAt = &at
	}
	return &a, nil
}

func scanAssignmentRows(rows *sql.Rows) (*Assignment, error) {
	var a Assignment
	var completed sql.NullTime
	err := rows.Scan(&a.ID, &a.SiteCode, &a.Technician, &a.Deadline, &a.Status,
		&completed, &a.ReportID, &a.CreatedBy, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if completed.Valid {
		at := completed.Time
		a.CompletedAt = &at
	}
	return &a, nil
}
