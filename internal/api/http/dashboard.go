package apihttp

import (
	"context"
	"log"
	"net/http"

	"github.com/gregori0101/infrasites-sub001/internal/assignment"
	"github.com/gregori0101/infrasites-sub001/internal/dashboard"
	"github.com/gregori0101/infrasites-sub001/internal/report"
	"github.com/gregori0101/infrasites-sub001/internal/site"
)

// DashboardReader gathers the three inputs of the regional summary.
type DashboardReader interface {
	ListSites(ctx context.Context) ([]site.Site, error)
	ListAssignments(ctx context.Context) ([]assignment.Assignment, error)
	ListReportSummaries(ctx context.Context) ([]report.Summary, error)
}

// DashboardHandler serves the per-region aggregation.
type DashboardHandler struct {
	reader DashboardReader
	logger *log.Logger
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(reader DashboardReader, logger *log.Logger) *DashboardHandler {
	return &DashboardHandler{reader: reader, logger: logger}
}

// ServeHTTP handles GET /api/v1/dashboard/summary.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	sites, err := h.reader.ListSites(ctx)
	if err != nil {
		h.logger.Printf("dashboard sites query failed: err=%v", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	assignments, err := h.reader.ListAssignments(ctx)
	if err != nil {
		h.logger.Printf("dashboard assignments query failed: err=%v", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	reports, err := h.reader.ListReportSummaries(ctx)
	if err != nil {
		h.logger.Printf("dashboard reports query failed: err=%v", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"regions": dashboard.Aggregate(sites, assignments, reports),
	})
}
