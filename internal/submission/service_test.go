package submission

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/gregori0101/infrasites-sub001/internal/checklist/application"
	checklist "github.com/gregori0101/infrasites-sub001/internal/checklist/domain"
	"github.com/gregori0101/infrasites-sub001/internal/photo"
	"github.com/gregori0101/infrasites-sub001/internal/report"
)

type fakeResolver struct {
	calls        int
	failCategory string
}

func (r *fakeResolver) Resolve(_ context.Context, ref checklist.PhotoReference, siteCode, category string, _ photo.ProgressFunc) photo.Result {
	r.calls++
	if ref.IsEmpty() {
		return photo.Result{Ref: ref, Status: photo.StatusEmpty}
	}
	if ref.Uploaded() {
		return photo.Result{Ref: ref, Status: photo.StatusRemoteDurable}
	}
	if category == r.failCategory {
		return photo.Result{Ref: ref, Status: photo.StatusLocalFallback}
	}
	url := "https://store.example/object/public/photos/" + siteCode + "/2026-09-01/" + category + "_deadbeef.jpg"
	return photo.Result{Ref: checklist.RemotePhoto(url), Status: photo.StatusRemoteDurable}
}

type fakeDocs struct{ pdfErr, xlsxErr error }

func (d fakeDocs) BuildPDF(*checklist.ChecklistRecord) ([]byte, error) {
	if d.pdfErr != nil {
		return nil, d.pdfErr
	}
	return []byte("%PDF"), nil
}

func (d fakeDocs) BuildXLSX(*checklist.ChecklistRecord) ([]byte, error) {
	if d.xlsxErr != nil {
		return nil, d.xlsxErr
	}
	return []byte("PK"), nil
}

type fakeReports struct {
	saves   int
	saveErr error
	last    *report.Report
}

func (r *fakeReports) Save(_ context.Context, rep *report.Report) (string, error) {
	if r.saveErr != nil {
		return "", r.saveErr
	}
	r.saves++
	r.last = rep
	return "report-1", nil
}

type fakeCompleter struct {
	calls  int
	err    error
	lastID string
}

func (c *fakeCompleter) Complete(_ context.Context, id, reportID string, _ time.Time) error {
	c.calls++
	c.lastID = id
	if c.err != nil {
		return c.err
	}
	_ = reportID
	return nil
}

func testLogger() *log.Logger { return log.New(os.Stdout, "", 0) }

func newService(t *testing.T, resolver PhotoResolver, reports ReportStore, completer AssignmentCompleter) *Service {
	t.Helper()
	svc, err := NewService(resolver, fakeDocs{}, reports, completer, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

// fillPartial drives a one-cabinet record below the 50% submission
// threshold while keeping a technician name set.
func fillPartial(t *testing.T, session *application.Session) {
	t.Helper()
	err := session.Do(func(r *checklist.ChecklistRecord) error {
		_ = r.Set(checklist.FieldSiteCode, "AMBEL")
		_ = r.Set(checklist.FieldRegion, checklist.RegionAM)
		_ = r.Set(checklist.FieldTechnicianName, "J. Souza")
		outdoor := checklist.CabinetOutdoor
		techs := []checklist.AccessTech{checklist.AccessGPON}
		_ = r.UpdateCabinet(0, checklist.CabinetPatch{Type: &outdoor, AccessTechs: &techs})
		return nil
	})
	if err != nil {
		t.Fatalf("fill partial: %v", err)
	}
}

// fillMidway adds local-pending photos on top of fillPartial so the score
// lands in the 50-79 warning band.
func fillMidway(t *testing.T, session *application.Session) {
	t.Helper()
	fillPartial(t, session)
	err := session.Do(func(r *checklist.ChecklistRecord) error {
		_ = r.Set(checklist.FieldPanoramicPhoto, checklist.LocalPhoto("cGFu"))
		pano := checklist.LocalPhoto("Y2Fi")
		trans := checklist.LocalPhoto("dHJhbnM=")
		access := checklist.LocalPhoto("YWNj")
		bank := checklist.LocalPhoto("YmFuaw==")
		_ = r.UpdateCabinet(0, checklist.CabinetPatch{
			PanoramicPhoto:    &pano,
			TransmissionPhoto: &trans,
			AccessPhoto:       &access,
			BankPhoto:         &bank,
		})
		return nil
	})
	if err != nil {
		t.Fatalf("fill midway: %v", err)
	}
}

func TestSubmitRefusedBelowThresholdWithoutSideEffects(t *testing.T) {
	session := application.NewSession()
	fillPartial(t, session)
	score := session.Progress()
	if score >= checklist.MinSubmitScore {
		t.Fatalf("fixture drifted: score %d must be below %d", score, checklist.MinSubmitScore)
	}

	resolver := &fakeResolver{}
	reports := &fakeReports{}
	completer := &fakeCompleter{}
	svc := newService(t, resolver, reports, completer)

	outcome := svc.Submit(context.Background(), session)
	if outcome.OK || outcome.Stage != StagePreflight {
		t.Fatalf("expected preflight refusal, got %+v", outcome)
	}
	if resolver.calls != 0 || reports.saves != 0 || completer.calls != 0 {
		t.Fatalf("refusal must have zero side effects: resolver=%d reports=%d completer=%d",
			resolver.calls, reports.saves, completer.calls)
	}
	if !session.Record().SubmittedAt.IsZero() {
		t.Fatalf("refusal must not stamp the record")
	}
}

func TestSubmitWithOneUploadFailureStillPersists(t *testing.T) {
	session := application.NewSession()
	fillMidway(t, session)
	score := session.Progress()
	if score < checklist.MinSubmitScore || score >= 80 {
		t.Fatalf("fixture drifted: score %d must be in the warning band", score)
	}

	resolver := &fakeResolver{failCategory: "cabinet_transmission"}
	reports := &fakeReports{}
	svc := newService(t, resolver, reports, nil)

	outcome := svc.Submit(context.Background(), session)
	if !outcome.OK || outcome.Stage != StageComplete {
		t.Fatalf("submission must succeed despite one fallback: %+v", outcome)
	}
	if reports.saves != 1 {
		t.Fatalf("persistence must still proceed, saves=%d", reports.saves)
	}
	if reports.last.SiteCode != "AMBEL" {
		t.Fatalf("persisted wrong record: %+v", reports.last)
	}

	// The session resets on success, so inspect the persisted payload: the
	// failed slot keeps its local fallback value, every other resolved slot
	// is remote durable.
	var persisted checklist.ChecklistRecord
	if err := json.Unmarshal(reports.last.Payload, &persisted); err != nil {
		t.Fatalf("decode persisted payload: %v", err)
	}
	var localSlots, remoteSlots int
	persisted.EachPhoto(func(slot checklist.PhotoSlot) {
		if slot.Ref.IsLocal() {
			localSlots++
		}
		if slot.Ref.Uploaded() {
			remoteSlots++
		}
	})
	if localSlots != 1 {
		t.Fatalf("expected exactly the failed slot local, got %d", localSlots)
	}
	if remoteSlots != 4 {
		t.Fatalf("expected four remote slots, got %d", remoteSlots)
	}
}

func TestSubmitPersistenceFailureKeepsRecordAndSkipsLink(t *testing.T) {
	session := application.NewSession()
	if err := session.Open(context.Background(), "assign-3", &fakeOpener{}); err != nil {
		t.Fatalf("open: %v", err)
	}
	fillMidway(t, session)

	resolver := &fakeResolver{}
	reports := &fakeReports{saveErr: errors.New("db down")}
	completer := &fakeCompleter{}
	svc := newService(t, resolver, reports, completer)

	recID := session.Record().ID
	outcome := svc.Submit(context.Background(), session)
	if outcome.OK {
		t.Fatalf("persistence failure must fail the submission")
	}
	if outcome.Stage != StagePersist || !errors.Is(outcome.Err, ErrPersistence) {
		t.Fatalf("expected persist-stage failure, got %+v", outcome)
	}
	if session.Record().ID != recID || session.Record().SiteCode != "AMBEL" {
		t.Fatalf("record must be kept intact for retry")
	}
	if completer.calls != 0 {
		t.Fatalf("no assignment update may happen after failed persistence")
	}
	// Documents were generated before persistence and are still delivered.
	if outcome.Documents == nil || len(outcome.Documents.PDF) == 0 {
		t.Fatalf("documents must be delivered even on persist failure")
	}
}

func TestSubmitLinkFailureStillReportsSuccess(t *testing.T) {
	session := application.NewSession()
	opened := &fakeOpener{}
	if err := session.Open(context.Background(), "assign-7", opened); err != nil {
		t.Fatalf("open: %v", err)
	}
	fillMidway(t, session)

	resolver := &fakeResolver{}
	reports := &fakeReports{}
	completer := &fakeCompleter{err: errors.New("409 conflict")}
	svc := newService(t, resolver, reports, completer)

	outcome := svc.Submit(context.Background(), session)
	if !outcome.OK || outcome.Stage != StageComplete {
		t.Fatalf("link failure must not fail the submission: %+v", outcome)
	}
	if !outcome.LinkFailed {
		t.Fatalf("link failure must be reported in the outcome")
	}
	if completer.calls != 1 || completer.lastID != "assign-7" {
		t.Fatalf("completer not invoked for the session assignment: %+v", completer)
	}
	// Full success resets the session.
	if session.Record().SiteCode != "" || session.AssignmentID() != "" {
		t.Fatalf("session must be reset after success")
	}
}

func TestSubmitSuccessResetsSessionAndLinksAssignment(t *testing.T) {
	session := application.NewSession()
	if err := session.Open(context.Background(), "assign-1", &fakeOpener{}); err != nil {
		t.Fatalf("open: %v", err)
	}
	fillMidway(t, session)

	resolver := &fakeResolver{}
	reports := &fakeReports{}
	completer := &fakeCompleter{}
	svc := newService(t, resolver, reports, completer)

	outcome := svc.Submit(context.Background(), session)
	if !outcome.OK || outcome.ReportID != "report-1" {
		t.Fatalf("expected full success: %+v", outcome)
	}
	if outcome.LinkFailed {
		t.Fatalf("link must succeed")
	}
	if completer.calls != 1 {
		t.Fatalf("assignment must be completed exactly once")
	}
	if session.Record().SiteCode != "" {
		t.Fatalf("record must be reset after success")
	}
}

type fakeOpener struct{ calls int }

func (o *fakeOpener) Open(context.Context, string) error {
	o.calls++
	return nil
}
