package report

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository stores reports in postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a report repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save upserts a report and returns its id, generating one when absent.
// Writes are idempotent on id so a retried submission never duplicates.
func (r *Repository) Save(ctx context.Context, rep *Report) (string, error) {
	if r == nil || r.db == nil {
		return "", errors.New("report repo: nil db")
	}
	if rep == nil {
		return "", ErrNilReport
	}
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO reports (
	id, site_code, region, technician_name, submitted_at, payload, pdf_name, xlsx_name, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
	site_code = EXCLUDED.site_code,
	region = EXCLUDED.region,
	technician_name = EXCLUDED.technician_name,
	submitted_at = EXCLUDED.submitted_at,
	payload = EXCLUDED.payload,
	pdf_name = EXCLUDED.pdf_name,
	xlsx_name = EXCLUDED.xlsx_name`,
		rep.ID, rep.SiteCode, rep.Region, rep.TechnicianName, rep.SubmittedAt,
		[]byte(rep.Payload), rep.PDFName, rep.XLSXName, rep.CreatedAt)
	if err != nil {
		return "", err
	}
	return rep.ID, nil
}

// Get loads one report by id.
func (r *Repository) Get(ctx context.Context, id string) (*Report, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("report repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, site_code, region, technician_name, submitted_at, payload, pdf_name, xlsx_name, created_at
FROM reports WHERE id = $1`, id)

	var rep Report
	var payload []byte
	err := row.Scan(&rep.ID, &rep.SiteCode, &rep.Region, &rep.TechnicianName,
		&rep.SubmittedAt, &payload, &rep.PDFName, &rep.XLSXName, &rep.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rep.Payload = payload
	return &rep, nil
}

// ListSummaries returns the dashboard projection of every report.
func (r *Repository) ListSummaries(ctx context.Context) ([]Summary, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("report repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, site_code, submitted_at FROM reports ORDER BY submitted_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.SiteCode, &s.SubmittedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
