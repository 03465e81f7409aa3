// Package submission orchestrates the multi-stage commit of a checklist:
// timestamp, photo resolution, document generation, persistence and the
// best-effort assignment link.
package submission

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gregori0101/infrasites-sub001/internal/checklist/application"
	checklist "github.com/gregori0101/infrasites-sub001/internal/checklist/domain"
	"github.com/gregori0101/infrasites-sub001/internal/observability/metrics"
	"github.com/gregori0101/infrasites-sub001/internal/photo"
	"github.com/gregori0101/infrasites-sub001/internal/report"
)

// Stage names how far a submission attempt got.
type Stage string

const (
	StagePreflight      Stage = "preflight"
	StageResolvePhotos  Stage = "resolve_photos"
	StageDocuments      Stage = "documents"
	StagePersist        Stage = "persist"
	StageLinkAssignment Stage = "link_assignment"
	StageComplete       Stage = "complete"
)

// ErrPersistence marks the one failure class that is surfaced to the user
// as retry-eligible; the record is kept intact.
var ErrPersistence = errors.New("submission: persistence failed")

// Documents carries the generated artifacts delivered to the technician.
type Documents struct {
	PDFName  string
	PDF      []byte
	XLSXName string
	XLSX     []byte
}

// Outcome is the structured result of a submission attempt. The
// presentation layer decides how to notify from it; the orchestrator
// itself produces no UI side effects.
type Outcome struct {
	OK               bool
	Stage            Stage
	Score            int
	ReportID         string
	Documents        *Documents
	ValidationErrors []checklist.FieldError
	LinkFailed       bool
	Err              error
}

// PhotoResolver settles one photo reference, by upload or fallback.
type PhotoResolver interface {
	Resolve(ctx context.Context, ref checklist.PhotoReference, siteCode, category string, progress photo.ProgressFunc) photo.Result
}

// DocumentBuilder renders the two submission artifacts. The builders are
// independent: one failing does not stop the other.
type DocumentBuilder interface {
	BuildPDF(rec *checklist.ChecklistRecord) ([]byte, error)
	BuildXLSX(rec *checklist.ChecklistRecord) ([]byte, error)
}

// ReportStore persists the resolved record.
type ReportStore interface {
	Save(ctx context.Context, rep *report.Report) (string, error)
}

// AssignmentCompleter finishes the linked assignment after persistence.
type AssignmentCompleter interface {
	Complete(ctx context.Context, id, reportID string, at time.Time) error
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Service runs the submission pipeline.
type Service struct {
	photos      PhotoResolver
	docs        DocumentBuilder
	reports     ReportStore
	assignments AssignmentCompleter
	clock       Clock
	logger      *log.Logger
	fileNames   func(*checklist.ChecklistRecord) (string, string)
	resetDelay  time.Duration
}

// Option tunes the service.
type Option func(*Service)

// WithClock overrides the clock.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithResetDelay delays the post-success record reset so the caller can
// show the confirmation before the form empties.
func WithResetDelay(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.resetDelay = d
		}
	}
}

// WithFileNames overrides artifact naming.
func WithFileNames(fn func(*checklist.ChecklistRecord) (string, string)) Option {
	return func(s *Service) {
		if fn != nil {
			s.fileNames = fn
		}
	}
}

// NewService constructs the orchestrator. The assignment completer may be
// nil when no assignment lifecycle is wired.
func NewService(photos PhotoResolver, docs DocumentBuilder, reports ReportStore, assignments AssignmentCompleter, logger *log.Logger, opts ...Option) (*Service, error) {
	if photos == nil {
		return nil, errors.New("submission service: nil photo resolver")
	}
	if docs == nil {
		return nil, errors.New("submission service: nil document builder")
	}
	if reports == nil {
		return nil, errors.New("submission service: nil report store")
	}
	if logger == nil {
		return nil, errors.New("submission service: nil logger")
	}
	s := &Service{
		photos:      photos,
		docs:        docs,
		reports:     reports,
		assignments: assignments,
		clock:       systemClock{},
		logger:      logger,
		fileNames:   defaultFileNames,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func defaultFileNames(rec *checklist.ChecklistRecord) (string, string) {
	base := "checklist_" + rec.SiteCode
	return base + ".pdf", base + ".xlsx"
}

// Submit runs the five stages strictly in order. Preflight failures and
// persistence failures abort; photo and assignment-link failures are
// absorbed. On full success the session record is reset.
func (s *Service) Submit(ctx context.Context, session *application.Session) Outcome {
	started := time.Now()
	outcome := s.submit(ctx, session)
	result := metrics.ResultSuccess
	if !outcome.OK {
		result = metrics.ResultError
	}
	metrics.ObserveSubmission(string(outcome.Stage), result, outcome.Score, time.Since(started))
	return outcome
}

func (s *Service) submit(ctx context.Context, session *application.Session) Outcome {
	rec := session.Record()
	score := checklist.Progress(rec)

	// Preflight: refuse below the submission threshold or without a
	// technician name, with no side effects at all.
	var preflightErrs []checklist.FieldError
	if score < checklist.MinSubmitScore {
		preflightErrs = append(preflightErrs, checklist.FieldError{
			Field:   "progress",
			Message: "checklist is below the minimum completion required for submission",
		})
	}
	if rec.TechnicianName == "" {
		preflightErrs = append(preflightErrs, checklist.FieldError{
			Field:   "technician_name",
			Message: "technician name is required",
		})
	}
	if len(preflightErrs) > 0 {
		return Outcome{Stage: StagePreflight, Score: score, ValidationErrors: preflightErrs}
	}

	// Stage 1: timestamp.
	now := s.clock.Now()
	_ = session.Do(func(r *checklist.ChecklistRecord) error {
		r.MarkSubmitted(now)
		return nil
	})

	// Stage 2: settle every local-pending photo. Uploads run concurrently
	// across slots; all must settle (remote or fallback) before stage 3.
	s.resolvePhotos(ctx, session, rec)

	// Stage 3: generate and deliver the artifacts. This deliberately runs
	// before persistence confirms, matching the field behaviour: the
	// technician keeps the documents even when persistence fails.
	docs := s.buildDocuments(rec)

	// Stage 4: persist. Fatal on failure; stages 2-3 are not rolled back.
	payload, err := json.Marshal(rec)
	if err != nil {
		s.logger.Printf("submission marshal failed: site=%s err=%v", rec.SiteCode, err)
		return Outcome{Stage: StagePersist, Score: score, Documents: docs, Err: ErrPersistence}
	}
	pdfName, xlsxName := s.fileNames(rec)
	reportID, err := s.reports.Save(ctx, &report.Report{
		ID:             rec.ID,
		SiteCode:       rec.SiteCode,
		Region:         string(rec.Region),
		TechnicianName: rec.TechnicianName,
		SubmittedAt:    rec.SubmittedAt,
		Payload:        payload,
		PDFName:        pdfName,
		XLSXName:       xlsxName,
	})
	if err != nil {
		s.logger.Printf("submission persist failed: site=%s err=%v", rec.SiteCode, err)
		return Outcome{Stage: StagePersist, Score: score, Documents: docs, Err: ErrPersistence}
	}
	_ = session.Do(func(r *checklist.ChecklistRecord) error {
		r.MarkSynced()
		return nil
	})

	// Stage 5: best-effort assignment link. The user-visible commitment
	// already succeeded, so a failure here is logged and swallowed.
	outcome := Outcome{OK: true, Stage: StageComplete, Score: score, ReportID: reportID, Documents: docs}
	if id := session.AssignmentID(); id != "" && s.assignments != nil {
		if err := s.assignments.Complete(ctx, id, reportID, now); err != nil {
			s.logger.Printf("assignment link failed after successful submission: assignment=%s report=%s err=%v", id, reportID, err)
			outcome.LinkFailed = true
		}
	}

	if s.resetDelay > 0 {
		time.Sleep(s.resetDelay)
	}
	session.Reset()
	return outcome
}

// slotResult pairs a settled photo with the slot it belongs to.
type slotResult struct {
	ref      *checklist.PhotoReference
	original checklist.PhotoReference
	resolved photo.Result
}

func (s *Service) resolvePhotos(ctx context.Context, session *application.Session, rec *checklist.ChecklistRecord) {
	type pending struct {
		category string
		ref      *checklist.PhotoReference
		original checklist.PhotoReference
	}
	var work []pending
	rec.EachPhoto(func(slot checklist.PhotoSlot) {
		if slot.Ref.IsLocal() {
			work = append(work, pending{category: slot.Category, ref: slot.Ref, original: *slot.Ref})
		}
	})
	if len(work) == 0 {
		return
	}

	results := make([]slotResult, len(work))
	var wg sync.WaitGroup
	for i, item := range work {
		wg.Add(1)
		go func(i int, item pending) {
			defer wg.Done()
			results[i] = slotResult{
				ref:      item.ref,
				original: item.original,
				resolved: s.photos.Resolve(ctx, item.original, rec.SiteCode, item.category, nil),
			}
		}(i, item)
	}
	wg.Wait()

	// Apply under the session lock. A slot cleared or replaced while its
	// upload was in flight keeps its current value: the late result is
	// dropped.
	_ = session.Do(func(*checklist.ChecklistRecord) error {
		for _, result := range results {
			if *result.ref != result.original {
				continue
			}
			*result.ref = result.resolved.Ref
		}
		return nil
	})
}

func (s *Service) buildDocuments(rec *checklist.ChecklistRecord) *Documents {
	pdfName, xlsxName := s.fileNames(rec)
	docs := &Documents{PDFName: pdfName, XLSXName: xlsxName}
	pdf, err := s.docs.BuildPDF(rec)
	if err != nil {
		s.logger.Printf("pdf generation failed: site=%s err=%v", rec.SiteCode, err)
		metrics.IncDocumentBuild("pdf", metrics.ResultError)
	} else {
		docs.PDF = pdf
		metrics.IncDocumentBuild("pdf", metrics.ResultSuccess)
	}
	xlsx, err := s.docs.BuildXLSX(rec)
	if err != nil {
		s.logger.Printf("xlsx generation failed: site=%s err=%v", rec.SiteCode, err)
		metrics.IncDocumentBuild("xlsx", metrics.ResultError)
	} else {
		docs.XLSX = xlsx
		metrics.IncDocumentBuild("xlsx", metrics.ResultSuccess)
	}
	return docs
}
