// Package report persists submitted checklist records.
package report

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNilReport is returned when saving a nil report.
	ErrNilReport = errors.New("report: nil report")
	// ErrNotFound is returned when a report does not exist.
	ErrNotFound = errors.New("report: not found")
)

// Report is one persisted submission: the fully photo-resolved record plus
// the names of the artifacts generated for it.
type Report struct {
	ID             string          `json:"id"`
	SiteCode       string          `json:"site_code"`
	Region         string          `json:"region"`
	TechnicianName string          `json:"technician_name"`
	SubmittedAt    time.Time       `json:"submitted_at"`
	Payload        json.RawMessage `json:"payload"`
	PDFName        string          `json:"pdf_name"`
	XLSXName       string          `json:"xlsx_name"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Summary is the read-side projection used by the dashboard.
type Summary struct {
	ID          string    `json:"id"`
	SiteCode    string    `json:"site_code"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// RegionCode derives the region from the site code's first two characters.
func (s Summary) RegionCode() string {
	if len(s.SiteCode) < 2 {
		return ""
	}
	return s.SiteCode[:2]
}
