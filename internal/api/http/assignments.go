package apihttp

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gregori0101/infrasites-sub001/internal/assignment"
	"github.com/gregori0101/infrasites-sub001/internal/audit"
	"github.com/gregori0101/infrasites-sub001/internal/auth"
)

// AssignmentStore reads and writes assignments.
type AssignmentStore interface {
	Create(ctx context.Context, a *assignment.Assignment) error
	List(ctx context.Context) ([]assignment.Assignment, error)
}

// AssignmentsHandler serves assignment creation and listing.
type AssignmentsHandler struct {
	store   AssignmentStore
	auditor audit.Logger
	logger  *log.Logger
}

// NewAssignmentsHandler constructs an AssignmentsHandler. The auditor may
// be nil.
func NewAssignmentsHandler(store AssignmentStore, auditor audit.Logger, logger *log.Logger) *AssignmentsHandler {
	return &AssignmentsHandler{store: store, auditor: auditor, logger: logger}
}

type assignmentView struct {
	assignment.Assignment
	Overdue bool `json:"overdue"`
}

// ServeHTTP handles GET and POST /api/v1/assignments.
func (h *AssignmentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *AssignmentsHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Printf("assignment list failed: err=%v", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	now := time.Now().UTC()
	views := make([]assignmentView, 0, len(items))
	for _, item := range items {
		views = append(views, assignmentView{Assignment: item, Overdue: item.Overdue(now)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignments": views})
}

func (h *AssignmentsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SiteCode   string    `json:"site_code"`
		Technician string    `json:"technician"`
		Deadline   time.Time `json:"deadline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.SiteCode == "" {
		http.Error(w, "site_code is required", http.StatusBadRequest)
		return
	}

	item := &assignment.Assignment{
		ID:         uuid.NewString(),
		SiteCode:   req.SiteCode,
		Technician: req.Technician,
		Deadline:   req.Deadline,
		Status:     assignment.StatusPending,
		CreatedBy:  auth.SubjectFromContext(r.Context()),
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.store.Create(r.Context(), item); err != nil {
		h.logger.Printf("assignment create failed: site=%s err=%v", req.SiteCode, err)
		http.Error(w, "create failed", http.StatusInternalServerError)
		return
	}
	if h.auditor != nil {
		entry := audit.Entry{
			Actor:        item.CreatedBy,
			Role:         string(auth.RoleFromContext(r.Context())),
			Action:       "assignment.create",
			ResourceType: "assignment",
			ResourceID:   item.ID,
			SiteCode:     item.SiteCode,
			IP:           r.RemoteAddr,
			UserAgent:    r.UserAgent(),
		}
		if err := h.auditor.Log(r.Context(), entry); err != nil {
			h.logger.Printf("audit log failed: action=assignment.create err=%v", err)
		}
	}
	writeJSON(w, http.StatusCreated, item)
}
