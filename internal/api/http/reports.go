package apihttp

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gregori0101/infrasites-sub001/internal/report"
)

// ReportStore reads persisted reports.
type ReportStore interface {
	Get(ctx context.Context, id string) (*report.Report, error)
	ListSummaries(ctx context.Context) ([]report.Summary, error)
}

// ReportsHandler serves persisted submission reports.
type ReportsHandler struct {
	store  ReportStore
	logger *log.Logger
}

// NewReportsHandler constructs a ReportsHandler.
func NewReportsHandler(store ReportStore, logger *log.Logger) *ReportsHandler {
	return &ReportsHandler{store: store, logger: logger}
}

// List handles GET /api/v1/reports.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	summaries, err := h.store.ListSummaries(r.Context())
	if err != nil {
		h.logger.Printf("report list failed: err=%v", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": summaries})
}

// Get handles GET /api/v1/reports/{id}.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/reports/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "report id required", http.StatusBadRequest)
		return
	}
	rep, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		h.logger.Printf("report get failed: id=%s err=%v", id, err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
