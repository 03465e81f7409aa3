package checklist

import (
	"time"

	"github.com/google/uuid"
)

const (
	minCabinets = 1
	maxCabinets = 8
)

// ChecklistRecord is the root of the site inspection document. It is owned
// by a single editing session and mutated only through the methods below;
// every mutation targets one leaf or one sub-record and bumps the revision.
type ChecklistRecord struct {
	ID             string           `json:"id"`
	SiteCode       string           `json:"site_code"`
	Region         Region           `json:"region"`
	CabinetCount   int              `json:"cabinet_count"`
	PanoramicPhoto PhotoReference   `json:"panoramic_photo"`
	Cabinets       []CabinetRecord  `json:"cabinets"`
	Fiber          FiberRecord      `json:"fiber"`
	Power          PowerRecord      `json:"power"`
	Generator      GeneratorRecord  `json:"generator"`
	Tower          TowerRecord      `json:"tower"`
	Notes          string           `json:"notes"`
	Observations   []PhotoReference `json:"observations"`
	SignaturePhoto PhotoReference   `json:"signature_photo"`
	TechnicianName string           `json:"technician_name"`
	SubmittedAt    time.Time        `json:"submitted_at"`
	Synced         bool             `json:"synced"`

	revision uint64
}

// FiberRecord captures the optical distribution state of the site.
type FiberRecord struct {
	CableCount int            `json:"cable_count"`
	HasSlack   bool           `json:"has_slack"`
	Photo      PhotoReference `json:"photo"`
}

// PowerRecord captures the AC power distribution state. The per-subsystem
// photos are only demanded when the matching health flag is bad.
type PowerRecord struct {
	MainPanelPhoto   PhotoReference `json:"main_panel_photo"`
	TransformerOK    bool           `json:"transformer_ok"`
	TransformerPhoto PhotoReference `json:"transformer_photo"`
	CablesOK         bool           `json:"cables_ok"`
	CablePhoto       PhotoReference `json:"cable_photo"`
	PlatesOK         bool           `json:"plates_ok"`
	PlatePhoto       PhotoReference `json:"plate_photo"`
}

// GeneratorRecord captures the standby generator state.
type GeneratorRecord struct {
	Present        bool           `json:"present"`
	TransferSwitch bool           `json:"transfer_switch"`
	Photo          PhotoReference `json:"photo"`
}

// TowerRecord captures the vertical structure state. A nest photo is only
// demanded when nests are flagged present.
type TowerRecord struct {
	Type         TowerType      `json:"type"`
	HeightMeters float64        `json:"height_meters"`
	HasNests     bool           `json:"has_nests"`
	NestPhoto    PhotoReference `json:"nest_photo"`
	Photo        PhotoReference `json:"photo"`
}

// NewRecord issues a fresh record with defaults: new id, healthy power
// flags and a single empty cabinet.
func NewRecord() *ChecklistRecord {
	return &ChecklistRecord{
		ID:           uuid.NewString(),
		CabinetCount: 1,
		Cabinets:     []CabinetRecord{NewCabinet()},
		Power:        PowerRecord{TransformerOK: true, CablesOK: true, PlatesOK: true},
	}
}

// Revision returns the mutation counter used for validation memoization.
func (r *ChecklistRecord) Revision() uint64 { return r.revision }

func (r *ChecklistRecord) bump() { r.revision++ }

// Field names a single updatable leaf or sub-record of the root.
type Field string

const (
	FieldSiteCode       Field = "site_code"
	FieldRegion         Field = "region"
	FieldCabinetCount   Field = "cabinet_count"
	FieldPanoramicPhoto Field = "panoramic_photo"
	FieldFiber          Field = "fiber"
	FieldPower          Field = "power"
	FieldGenerator      Field = "generator"
	FieldTower          Field = "tower"
	FieldNotes          Field = "notes"
	FieldSignaturePhoto Field = "signature_photo"
	FieldTechnicianName Field = "technician_name"
)

// Set replaces exactly one field of the root record. Every other field is
// left untouched. FieldCabinetCount resizes the cabinet sequence so the
// declared count and the sequence length never drift.
func (r *ChecklistRecord) Set(field Field, value any) error {
	switch field {
	case FieldSiteCode:
		s, ok := value.(string)
		if !ok {
			return ErrInvalidValue
		}
		r.SiteCode = s
	case FieldRegion:
		switch v := value.(type) {
		case Region:
			r.Region = v
		case string:
			region, ok := NormalizeRegion(v)
			if !ok {
				return ErrInvalidValue
			}
			r.Region = region
		default:
			return ErrInvalidValue
		}
	case FieldCabinetCount:
		n, ok := value.(int)
		if !ok {
			return ErrInvalidValue
		}
		if n < minCabinets || n > maxCabinets {
			return ErrCabinetCount
		}
		r.resizeCabinets(n)
	case FieldPanoramicPhoto:
		p, ok := value.(PhotoReference)
		if !ok {
			return ErrInvalidValue
		}
		r.PanoramicPhoto = p
	case FieldFiber:
		v, ok := value.(FiberRecord)
		if !ok {
			return ErrInvalidValue
		}
		r.Fiber = v
	case FieldPower:
		v, ok := value.(PowerRecord)
		if !ok {
			return ErrInvalidValue
		}
		r.Power = v
	case FieldGenerator:
		v, ok := value.(GeneratorRecord)
		if !ok {
			return ErrInvalidValue
		}
		r.Generator = v
	case FieldTower:
		v, ok := value.(TowerRecord)
		if !ok {
			return ErrInvalidValue
		}
		r.Tower = v
	case FieldNotes:
		s, ok := value.(string)
		if !ok {
			return ErrInvalidValue
		}
		r.Notes = s
	case FieldSignaturePhoto:
		p, ok := value.(PhotoReference)
		if !ok {
			return ErrInvalidValue
		}
		r.SignaturePhoto = p
	case FieldTechnicianName:
		s, ok := value.(string)
		if !ok {
			return ErrInvalidValue
		}
		r.TechnicianName = s
	default:
		return ErrUnknownField
	}
	r.bump()
	return nil
}

func (r *ChecklistRecord) resizeCabinets(n int) {
	for len(r.Cabinets) < n {
		r.Cabinets = append(r.Cabinets, NewCabinet())
	}
	r.Cabinets = r.Cabinets[:n]
	r.CabinetCount = n
}

// AddObservationPhoto appends one observation photo.
func (r *ChecklistRecord) AddObservationPhoto(p PhotoReference) {
	if p.IsEmpty() {
		return
	}
	r.Observations = append(r.Observations, p)
	r.bump()
}

// RemoveObservationPhoto drops the observation photo at index.
func (r *ChecklistRecord) RemoveObservationPhoto(index int) error {
	if index < 0 || index >= len(r.Observations) {
		return ErrInvalidValue
	}
	r.Observations = append(r.Observations[:index], r.Observations[index+1:]...)
	r.bump()
	return nil
}

// MarkSubmitted stamps the submission instant.
func (r *ChecklistRecord) MarkSubmitted(at time.Time) {
	r.SubmittedAt = at.UTC()
	r.bump()
}

// MarkSynced flags the record as durably persisted.
func (r *ChecklistRecord) MarkSynced() {
	r.Synced = true
	r.bump()
}

// Reset discards every field and reissues defaults. The revision keeps
// increasing across resets so memoized validation never replays.
func (r *ChecklistRecord) Reset() {
	rev := r.revision
	*r = *NewRecord()
	r.revision = rev + 1
}

// PhotoSlot addresses one photo position inside the record tree.
type PhotoSlot struct {
	Category string
	Ref      *PhotoReference
}

// EachPhoto visits every photo slot of the record tree in a stable order:
// the top-level panoramic, each cabinet's slots, the shared sub-records,
// observations and signature.
func (r *ChecklistRecord) EachPhoto(fn func(PhotoSlot)) {
	fn(PhotoSlot{Category: "panoramic", Ref: &r.PanoramicPhoto})
	for i := range r.Cabinets {
		cab := &r.Cabinets[i]
		fn(PhotoSlot{Category: "cabinet_panoramic", Ref: &cab.PanoramicPhoto})
		fn(PhotoSlot{Category: "cabinet_transmission", Ref: &cab.TransmissionPhoto})
		fn(PhotoSlot{Category: "cabinet_access", Ref: &cab.AccessPhoto})
		fn(PhotoSlot{Category: "fcc_panoramic", Ref: &cab.Converter.PanoramicPhoto})
		fn(PhotoSlot{Category: "fcc_modules", Ref: &cab.Converter.ModulesPhoto})
		fn(PhotoSlot{Category: "battery_bank", Ref: &cab.Batteries.BankPhoto})
		fn(PhotoSlot{Category: "climate", Ref: &cab.Climate.Photo})
	}
	fn(PhotoSlot{Category: "fiber", Ref: &r.Fiber.Photo})
	fn(PhotoSlot{Category: "power_main", Ref: &r.Power.MainPanelPhoto})
	fn(PhotoSlot{Category: "power_transformer", Ref: &r.Power.TransformerPhoto})
	fn(PhotoSlot{Category: "power_cable", Ref: &r.Power.CablePhoto})
	fn(PhotoSlot{Category: "power_plate", Ref: &r.Power.PlatePhoto})
	fn(PhotoSlot{Category: "generator", Ref: &r.Generator.Photo})
	fn(PhotoSlot{Category: "tower", Ref: &r.Tower.Photo})
	fn(PhotoSlot{Category: "tower_nest", Ref: &r.Tower.NestPhoto})
	for i := range r.Observations {
		fn(PhotoSlot{Category: "observation", Ref: &r.Observations[i]})
	}
	fn(PhotoSlot{Category: "signature", Ref: &r.SignaturePhoto})
}
