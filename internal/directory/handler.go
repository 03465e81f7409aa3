package directory

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gregori0101/infrasites-sub001/internal/audit"
	"github.com/gregori0101/infrasites-sub001/internal/auth"
	"github.com/gregori0101/infrasites-sub001/internal/observability/metrics"
)

// EmailLookup resolves user ids to emails.
type EmailLookup interface {
	EmailsByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

// Handler serves the email lookup endpoint. The route sits outside the
// global auth middleware and verifies its bearer token itself, so a bad
// token yields 401 here rather than at the edge.
type Handler struct {
	lookup  EmailLookup
	secret  []byte
	auditor audit.Logger
	logger  *log.Logger
}

// NewHandler constructs the directory handler. The auditor may be nil.
func NewHandler(lookup EmailLookup, secret []byte, auditor audit.Logger, logger *log.Logger) *Handler {
	return &Handler{lookup: lookup, secret: secret, auditor: auditor, logger: logger}
}

type emailsRequest struct {
	IDs []string `json:"ids"`
}

// ServeHTTP handles POST lookups of user emails by id.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := auth.ParseJWT(bearerToken(r), h.secret)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := auth.NormalizeRole(claims.Role)
	if !auth.RoleAtLeast(role, auth.RoleSupervisor) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req emailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	if len(ids) == 0 {
		http.Error(w, "ids required", http.StatusBadRequest)
		return
	}

	emails, err := h.lookup.EmailsByIDs(r.Context(), ids)
	if err != nil {
		h.logger.Printf("email lookup failed: err=%v", err)
		metrics.IncEmailLookup(metrics.ResultError)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	metrics.IncEmailLookup(metrics.ResultSuccess)

	if h.auditor != nil {
		meta, _ := json.Marshal(map[string]any{"ids": ids})
		entry := audit.Entry{
			Actor:         claims.Subject,
			Role:          string(role),
			Action:        "directory.email_lookup",
			ResourceType:  "user",
			Metadata:      meta,
			PayloadDigest: audit.DigestJSON(meta),
			IP:            r.RemoteAddr,
			UserAgent:     r.UserAgent(),
		}
		if err := h.auditor.Log(r.Context(), entry); err != nil {
			h.logger.Printf("audit log failed: action=directory.email_lookup err=%v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"emails": emails})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
