// Package apihttp exposes the service over HTTP. Each route gets its own
// handler constructed with the dependencies it needs.
package apihttp

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gregori0101/infrasites-sub001/internal/audit"
	"github.com/gregori0101/infrasites-sub001/internal/auth"
	"github.com/gregori0101/infrasites-sub001/internal/checklist/application"
	checklist "github.com/gregori0101/infrasites-sub001/internal/checklist/domain"
	"github.com/gregori0101/infrasites-sub001/internal/photo"
	"github.com/gregori0101/infrasites-sub001/internal/submission"
)

// ChecklistHandler serves the active checklist session.
type ChecklistHandler struct {
	session   *application.Session
	pipeline  *photo.Pipeline
	submitter *submission.Service
	opener    application.AssignmentOpener
	auditor   audit.Logger
	logger    *log.Logger
}

// NewChecklistHandler constructs a ChecklistHandler. The opener and the
// auditor may be nil.
func NewChecklistHandler(session *application.Session, pipeline *photo.Pipeline, submitter *submission.Service, opener application.AssignmentOpener, auditor audit.Logger, logger *log.Logger) *ChecklistHandler {
	return &ChecklistHandler{session: session, pipeline: pipeline, submitter: submitter, opener: opener, auditor: auditor, logger: logger}
}

type recordState struct {
	Record    *checklist.ChecklistRecord `json:"record"`
	Progress  int                        `json:"progress"`
	Readiness checklist.Readiness        `json:"readiness"`
}

func (h *ChecklistHandler) writeState(w http.ResponseWriter) {
	rec := h.session.Record()
	score := h.session.Progress()
	writeJSON(w, http.StatusOK, recordState{
		Record:    rec,
		Progress:  score,
		Readiness: checklist.ReadinessFor(score),
	})
}

// State handles GET /api/v1/checklist.
func (h *ChecklistHandler) State(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.writeState(w)
}

// Open handles POST /api/v1/checklist/open.
func (h *ChecklistHandler) Open(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		AssignmentID string `json:"assignment_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.session.Open(r.Context(), req.AssignmentID, h.opener); err != nil {
		h.logger.Printf("checklist open failed: assignment=%s err=%v", req.AssignmentID, err)
		http.Error(w, "open failed", http.StatusInternalServerError)
		return
	}
	h.writeState(w)
}

type fieldRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// SetField handles POST /api/v1/checklist/field. The value payload is
// decoded according to the target field; photo fields go through the
// photo endpoint instead.
func (h *ChecklistHandler) SetField(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req fieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	value, err := decodeFieldValue(checklist.Field(req.Field), req.Value)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.session.Do(func(rec *checklist.ChecklistRecord) error {
		return rec.Set(checklist.Field(req.Field), value)
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, checklist.ErrUnknownField) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	h.writeState(w)
}

func decodeFieldValue(field checklist.Field, raw json.RawMessage) (any, error) {
	decode := func(dst any) (any, error) {
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, errors.New("invalid value for field " + string(field))
		}
		return dst, nil
	}
	switch field {
	case checklist.FieldSiteCode, checklist.FieldNotes, checklist.FieldTechnicianName, checklist.FieldRegion:
		var s string
		if _, err := decode(&s); err != nil {
			return nil, err
		}
		return s, nil
	case checklist.FieldCabinetCount:
		var n int
		if _, err := decode(&n); err != nil {
			return nil, err
		}
		return n, nil
	case checklist.FieldFiber:
		var v checklist.FiberRecord
		if _, err := decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case checklist.FieldPower:
		var v checklist.PowerRecord
		if _, err := decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case checklist.FieldGenerator:
		var v checklist.GeneratorRecord
		if _, err := decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case checklist.FieldTower:
		var v checklist.TowerRecord
		if _, err := decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, errors.New("field not settable through this endpoint")
	}
}

type cabinetRequest struct {
	Index int                    `json:"index"`
	Patch checklist.CabinetPatch `json:"patch"`
}

// PatchCabinet handles POST /api/v1/checklist/cabinet.
func (h *ChecklistHandler) PatchCabinet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req cabinetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	err := h.session.Do(func(rec *checklist.ChecklistRecord) error {
		return rec.UpdateCabinet(req.Index, req.Patch)
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeState(w)
}

type bankRequest struct {
	Cabinet int                    `json:"cabinet"`
	Op      string                 `json:"op"`
	Bank    int                    `json:"bank"`
	Value   *checklist.BatteryBank `json:"value,omitempty"`
}

// Banks handles POST /api/v1/checklist/banks with add/remove/update ops.
func (h *ChecklistHandler) Banks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req bankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	err := h.session.Do(func(rec *checklist.ChecklistRecord) error {
		switch req.Op {
		case "add":
			return rec.AddBatteryBank(req.Cabinet)
		case "remove":
			return rec.RemoveBatteryBank(req.Cabinet, req.Bank)
		case "update":
			if req.Value == nil {
				return checklist.ErrInvalidValue
			}
			return rec.UpdateBatteryBank(req.Cabinet, req.Bank, *req.Value)
		default:
			return checklist.ErrInvalidValue
		}
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeState(w)
}

type photoRequest struct {
	Field   string `json:"field"`
	Cabinet int    `json:"cabinet"`
	Slot    string `json:"slot"`
	MIME    string `json:"mime"`
	Data    string `json:"data"`
	Remove  bool   `json:"remove"`
}

// Photo handles POST /api/v1/checklist/photo: capture into a slot, or
// clear one. Captures validate MIME and size before the record changes.
func (h *ChecklistHandler) Photo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req photoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	var ref checklist.PhotoReference
	if !req.Remove {
		data, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			http.Error(w, "invalid photo data", http.StatusBadRequest)
			return
		}
		ref, err = h.pipeline.Capture(req.MIME, data)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var replaced checklist.PhotoReference
	err := h.session.Do(func(rec *checklist.ChecklistRecord) error {
		replaced = currentPhoto(rec, req)
		return applyPhoto(rec, req, ref)
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Remove && replaced.Uploaded() {
		h.pipeline.Remove(r.Context(), replaced)
	}
	h.writeState(w)
}

// currentPhoto returns the reference currently occupying the addressed
// slot, so a removed remote photo can be deleted from storage.
func currentPhoto(rec *checklist.ChecklistRecord, req photoRequest) checklist.PhotoReference {
	if req.Field != "" {
		switch checklist.Field(req.Field) {
		case checklist.FieldPanoramicPhoto:
			return rec.PanoramicPhoto
		case checklist.FieldSignaturePhoto:
			return rec.SignaturePhoto
		case checklist.FieldFiber:
			return rec.Fiber.Photo
		case checklist.FieldGenerator:
			return rec.Generator.Photo
		}
		return checklist.EmptyPhoto()
	}
	if req.Slot == "observation" {
		if req.Cabinet >= 0 && req.Cabinet < len(rec.Observations) {
			return rec.Observations[req.Cabinet]
		}
		return checklist.EmptyPhoto()
	}
	if req.Cabinet < 0 || req.Cabinet >= len(rec.Cabinets) {
		return checklist.EmptyPhoto()
	}
	cab := rec.Cabinets[req.Cabinet]
	switch req.Slot {
	case "panoramic":
		return cab.PanoramicPhoto
	case "transmission":
		return cab.TransmissionPhoto
	case "access":
		return cab.AccessPhoto
	case "bank":
		return cab.Batteries.BankPhoto
	}
	return checklist.EmptyPhoto()
}

// applyPhoto routes a captured (or empty) reference into its slot: a root
// field, a cabinet slot, or the observation list.
func applyPhoto(rec *checklist.ChecklistRecord, req photoRequest, ref checklist.PhotoReference) error {
	if req.Field != "" {
		switch checklist.Field(req.Field) {
		case checklist.FieldPanoramicPhoto, checklist.FieldSignaturePhoto:
			return rec.Set(checklist.Field(req.Field), ref)
		case checklist.FieldFiber:
			fiber := rec.Fiber
			fiber.Photo = ref
			return rec.Set(checklist.FieldFiber, fiber)
		case checklist.FieldGenerator:
			gen := rec.Generator
			gen.Photo = ref
			return rec.Set(checklist.FieldGenerator, gen)
		default:
			return checklist.ErrUnknownField
		}
	}
	if req.Slot == "observation" {
		if req.Remove {
			return rec.RemoveObservationPhoto(req.Cabinet)
		}
		rec.AddObservationPhoto(ref)
		return nil
	}
	if req.Slot != "" {
		patch := checklist.CabinetPatch{}
		switch req.Slot {
		case "panoramic":
			patch.PanoramicPhoto = &ref
		case "transmission":
			patch.TransmissionPhoto = &ref
		case "access":
			patch.AccessPhoto = &ref
		case "bank":
			patch.BankPhoto = &ref
		default:
			return checklist.ErrUnknownField
		}
		return rec.UpdateCabinet(req.Cabinet, patch)
	}
	return checklist.ErrUnknownField
}

// Validate handles GET /api/v1/checklist/validate?step=N&cabinet=M.
func (h *ChecklistHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	step, err := intQuery(r, "step", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cabinet, err := intQuery(r, "cabinet", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if step < int(checklist.StepSiteData) || step > int(checklist.StepFinal) {
		http.Error(w, "unknown step", http.StatusBadRequest)
		return
	}
	result := h.session.Validate(checklist.Step(step), cabinet)
	writeJSON(w, http.StatusOK, result)
}

// Submit handles POST /api/v1/checklist/submit.
func (h *ChecklistHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	siteCode := h.session.Record().SiteCode
	outcome := h.submitter.Submit(r.Context(), h.session)

	if outcome.OK && h.auditor != nil {
		entry := audit.Entry{
			Actor:        auth.SubjectFromContext(r.Context()),
			Role:         string(auth.RoleFromContext(r.Context())),
			Action:       "checklist.submit",
			ResourceType: "report",
			ResourceID:   outcome.ReportID,
			SiteCode:     siteCode,
			IP:           r.RemoteAddr,
			UserAgent:    r.UserAgent(),
		}
		if err := h.auditor.Log(r.Context(), entry); err != nil {
			h.logger.Printf("audit log failed: action=checklist.submit err=%v", err)
		}
	}

	resp := submitResponse{
		OK:               outcome.OK,
		Stage:            string(outcome.Stage),
		Score:            outcome.Score,
		ReportID:         outcome.ReportID,
		LinkFailed:       outcome.LinkFailed,
		ValidationErrors: outcome.ValidationErrors,
	}
	if outcome.Documents != nil {
		resp.Documents = &documentsPayload{
			PDFName:  outcome.Documents.PDFName,
			PDF:      base64.StdEncoding.EncodeToString(outcome.Documents.PDF),
			XLSXName: outcome.Documents.XLSXName,
			XLSX:     base64.StdEncoding.EncodeToString(outcome.Documents.XLSX),
		}
	}
	status := http.StatusOK
	if !outcome.OK {
		if outcome.Stage == submission.StagePreflight {
			status = http.StatusUnprocessableEntity
		} else {
			status = http.StatusBadGateway
		}
	}
	writeJSON(w, status, resp)
}

type submitResponse struct {
	OK               bool                   `json:"ok"`
	Stage            string                 `json:"stage"`
	Score            int                    `json:"score"`
	ReportID         string                 `json:"report_id,omitempty"`
	LinkFailed       bool                   `json:"link_failed,omitempty"`
	ValidationErrors []checklist.FieldError `json:"validation_errors,omitempty"`
	Documents        *documentsPayload      `json:"documents,omitempty"`
}

type documentsPayload struct {
	PDFName  string `json:"pdf_name"`
	PDF      string `json:"pdf"`
	XLSXName string `json:"xlsx_name"`
	XLSX     string `json:"xlsx"`
}
