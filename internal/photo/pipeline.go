// Package photo drives the per-slot photo state machine: capture,
// compression, durable upload and the local fallback that keeps a
// submission alive when storage is unreachable.
package photo

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	checklist "github.com/gregori0101/infrasites-sub001/internal/checklist/domain"
	"github.com/gregori0101/infrasites-sub001/internal/observability/metrics"
)

// Status names the pipeline state of a photo slot.
type Status string

const (
	StatusEmpty         Status = "empty"
	StatusLocalPending  Status = "local_pending"
	StatusRemoteDurable Status = "remote_durable"
	StatusLocalFallback Status = "local_fallback"
)

const (
	// MaxInputBytes is the hard capture ceiling.
	MaxInputBytes = 20 << 20
	// defaultTargetBytes is the encoded payload size compression aims for.
	defaultTargetBytes = 450 << 10
)

var (
	// ErrBadMIME is returned when the captured file is not an image.
	ErrBadMIME = errors.New("photo: file is not an image")
	// ErrTooLarge is returned when the captured file exceeds the input ceiling.
	ErrTooLarge = errors.New("photo: file exceeds 20 MB")
	// ErrEmptyPayload is returned when the captured file has no bytes.
	ErrEmptyPayload = errors.New("photo: empty payload")
)

// Store is the durable storage surface the pipeline needs.
type Store interface {
	Upload(ctx context.Context, objectPath string, data []byte) (string, error)
	Delete(ctx context.Context, objectPath string) error
	ParseObjectPath(url string) (string, bool)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// ProgressFunc receives the pipeline's completion percentage. Reported
// values never decrease within one operation.
type ProgressFunc func(percent int)

// Result is the tagged outcome of resolving one photo slot.
type Result struct {
	Ref    checklist.PhotoReference
	Status Status
}

// Pipeline resolves photo references against durable storage.
type Pipeline struct {
	store       Store
	clock       Clock
	logger      *log.Logger
	targetBytes int
}

// Option tunes a Pipeline.
type Option func(*Pipeline)

// WithTargetBytes overrides the compression target.
func WithTargetBytes(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.targetBytes = n
		}
	}
}

// WithClock overrides the pipeline clock.
func WithClock(clock Clock) Option {
	return func(p *Pipeline) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// NewPipeline constructs a photo pipeline.
func NewPipeline(store Store, logger *log.Logger, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, errors.New("photo pipeline: nil store")
	}
	if logger == nil {
		return nil, errors.New("photo pipeline: nil logger")
	}
	p := &Pipeline{store: store, clock: systemClock{}, logger: logger, targetBytes: defaultTargetBytes}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Capture validates an incoming file and, when accepted, returns a
// local-pending reference holding the encoded payload. A rejected capture
// changes nothing: the caller's slot keeps its previous value.
func (p *Pipeline) Capture(mimeType string, data []byte) (checklist.PhotoReference, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		return checklist.EmptyPhoto(), ErrBadMIME
	}
	if len(data) == 0 {
		return checklist.EmptyPhoto(), ErrEmptyPayload
	}
	if len(data) > MaxInputBytes {
		return checklist.EmptyPhoto(), ErrTooLarge
	}
	return checklist.LocalPhoto(base64.StdEncoding.EncodeToString(data)), nil
}

// Resolve drives a local-pending reference to a settled state: compressed
// then uploaded when a site code is known, compressed-local otherwise.
// Upload failure is absorbed into a local fallback so a single slot can
// never abort a submission. Empty and already-durable references pass
// through unchanged.
func (p *Pipeline) Resolve(ctx context.Context, ref checklist.PhotoReference, siteCode, category string, progress ProgressFunc) Result {
	report := monotonic(progress)

	if ref.IsEmpty() {
		report(100)
		return Result{Ref: ref, Status: StatusEmpty}
	}
	if ref.Uploaded() {
		report(100)
		return Result{Ref: ref, Status: StatusRemoteDurable}
	}
	report(10)

	raw, err := base64.StdEncoding.DecodeString(ref.Local())
	if err != nil {
		// Payload was stored undecoded; use it as-is.
		raw = []byte(ref.Local())
	}

	report(30)
	compressed, err := compressJPEG(raw, p.targetBytes)
	if err != nil {
		p.logger.Printf("photo compress failed, keeping original payload: category=%s err=%v", category, err)
		compressed = raw
	} else {
		metrics.ObserveCompressRatio(len(raw), len(compressed))
	}

	if siteCode == "" {
		report(100)
		return Result{
			Ref:    checklist.LocalPhoto(base64.StdEncoding.EncodeToString(compressed)),
			Status: StatusLocalPending,
		}
	}

	report(60)
	path := ObjectPath(siteCode, p.clock.Now(), category)
	started := time.Now()
	url, err := p.store.Upload(ctx, path, compressed)
	if err != nil {
		p.logger.Printf("photo upload failed, falling back to local: path=%s err=%v", path, err)
		metrics.ObservePhotoUpload(metrics.ResultError, time.Since(started))
		metrics.IncPhotoFallback()
		report(100)
		return Result{
			Ref:    checklist.LocalPhoto(base64.StdEncoding.EncodeToString(compressed)),
			Status: StatusLocalFallback,
		}
	}
	metrics.ObservePhotoUpload(metrics.ResultSuccess, time.Since(started))
	report(100)
	return Result{Ref: checklist.RemotePhoto(url), Status: StatusRemoteDurable}
}

// Remove clears a slot. For a remote-durable reference the storage delete
// is best-effort: failures are logged and swallowed, the slot still ends
// empty.
func (p *Pipeline) Remove(ctx context.Context, ref checklist.PhotoReference) checklist.PhotoReference {
	if ref.Uploaded() {
		if path, ok := p.store.ParseObjectPath(ref.Remote()); ok {
			if err := p.store.Delete(ctx, path); err != nil {
				p.logger.Printf("photo delete failed, clearing slot anyway: path=%s err=%v", path, err)
			}
		} else {
			p.logger.Printf("photo delete skipped, unrecognized url: %s", ref.Remote())
		}
	}
	return checklist.EmptyPhoto()
}

// ObjectPath derives the durable storage path for one photo:
// {site}/{capture-date}/{category}_{8-hex}.jpg.
func ObjectPath(siteCode string, at time.Time, category string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%s/%s_%s.jpg", siteCode, at.UTC().Format("2006-01-02"), category, id)
}

// monotonic wraps a progress callback so reported percentages never
// regress within one operation.
func monotonic(fn ProgressFunc) ProgressFunc {
	last := -1
	return func(percent int) {
		if fn == nil {
			return
		}
		if percent < last {
			return
		}
		last = percent
		fn(percent)
	}
}
