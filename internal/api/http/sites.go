package apihttp

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gregori0101/infrasites-sub001/internal/audit"
	"github.com/gregori0101/infrasites-sub001/internal/auth"
	"github.com/gregori0101/infrasites-sub001/internal/observability/metrics"
	"github.com/gregori0101/infrasites-sub001/internal/site"
)

// SiteStore reads and writes the site registry.
type SiteStore interface {
	List(ctx context.Context) ([]site.Site, error)
	UpsertBatch(ctx context.Context, sites []site.Site) error
}

// SitesHandler serves the site registry.
type SitesHandler struct {
	store   SiteStore
	auditor audit.Logger
	logger  *log.Logger
}

// NewSitesHandler constructs a SitesHandler. The auditor may be nil.
func NewSitesHandler(store SiteStore, auditor audit.Logger, logger *log.Logger) *SitesHandler {
	return &SitesHandler{store: store, auditor: auditor, logger: logger}
}

// List handles GET /api/v1/sites.
func (h *SitesHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sites, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Printf("site list failed: err=%v", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sites": sites})
}

// Import handles POST /api/v1/sites/import with an XLSX body. Valid rows
// are upserted; rejected rows come back with their row number and reason.
func (h *SitesHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sites, rowErrs, err := site.ParseWorkbook(r.Body)
	if err != nil {
		if errors.Is(err, site.ErrNoRows) {
			http.Error(w, "workbook has no data rows", http.StatusBadRequest)
			return
		}
		http.Error(w, "invalid workbook", http.StatusBadRequest)
		return
	}
	if len(sites) > 0 {
		if err := h.store.UpsertBatch(r.Context(), sites); err != nil {
			h.logger.Printf("site import persist failed: rows=%d err=%v", len(sites), err)
			http.Error(w, "import failed", http.StatusInternalServerError)
			return
		}
	}
	metrics.AddSiteImportRows(metrics.ResultSuccess, len(sites))
	metrics.AddSiteImportRows(metrics.ResultError, len(rowErrs))
	if h.auditor != nil {
		entry := audit.Entry{
			Actor:        auth.SubjectFromContext(r.Context()),
			Role:         string(auth.RoleFromContext(r.Context())),
			Action:       "site.import",
			ResourceType: "site_registry",
			IP:           r.RemoteAddr,
			UserAgent:    r.UserAgent(),
		}
		if err := h.auditor.Log(r.Context(), entry); err != nil {
			h.logger.Printf("audit log failed: action=site.import err=%v", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"imported": len(sites),
		"rejected": rowErrs,
	})
}
