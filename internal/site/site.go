// Package site keeps the registry of physical sites and imports it from
// supervisor-provided spreadsheets.
package site

import (
	"context"
	"database/sql"
	"errors"
	"time"

	checklist "github.com/gregori0101/infrasites-sub001/internal/checklist/domain"
)

// Site is one physical location a checklist can be filed for.
type Site struct {
	Code      string           `json:"code"`
	Region    checklist.Region `json:"region"`
	Type      string           `json:"type"`
	CreatedAt time.Time        `json:"created_at"`
}

// Repository stores sites in postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a site repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// List returns every registered site.
func (r *Repository) List(ctx context.Context) ([]Site, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("site repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT code, region, type, created_at FROM sites ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		var s Site
		if err := rows.Scan(&s.Code, &s.Region, &s.Type, &s.CreatedAt); err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

// UpsertBatch writes the given sites, overwriting existing codes.
func (r *Repository) UpsertBatch(ctx context.Context, sites []Site) error {
	if r == nil || r.db == nil {
		return errors.New("site repo: nil db")
	}
	if len(sites) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, s := range sites {
		created := s.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO sites (code, region, type, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (code) DO UPDATE SET region = EXCLUDED.region, type = EXCLUDED.type`,
			s.Code, s.Region, s.Type, created); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
