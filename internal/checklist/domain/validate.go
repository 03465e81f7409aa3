package checklist

import "sync"

// Step identifies one wizard step with a fixed validation rule set.
type Step int

const (
	StepSiteData Step = iota
	StepCabinet
	StepPowerConverter
	StepBatteries
	StepPowerDistribution
	StepTower
	StepFinal
)

// FieldError scopes a validation message to one field identifier. Errors
// are produced fresh on every pass and never persisted.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of validating one step.
type Result struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// ValidateStep evaluates the rule set of a single step. Fields outside the
// active step's rule set never produce an error, even when empty. The
// cabinet index only matters for the cabinet-scoped steps.
func ValidateStep(r *ChecklistRecord, step Step, cabinetIndex int) Result {
	var errs []FieldError
	add := func(field, message string) {
		errs = append(errs, FieldError{Field: field, Message: message})
	}

	switch step {
	case StepSiteData:
		if len(r.SiteCode) != 5 {
			add("site_code", "site code must be exactly 5 characters")
		}
		if r.Region == "" {
			add("region", "region is required")
		}
		if r.PanoramicPhoto.IsEmpty() {
			add("panoramic_photo", "site panoramic photo is required")
		}
	case StepCabinet:
		cab, ok := cabinetAt(r, cabinetIndex)
		if !ok {
			add("cabinet", "cabinet index out of range")
			break
		}
		if cab.Type == "" {
			add("cabinet.type", "cabinet type is required")
		}
		if len(cab.AccessTechs) == 0 {
			add("cabinet.access_techs", "at least one active access technology is required")
		}
	case StepPowerConverter:
		cab, ok := cabinetAt(r, cabinetIndex)
		if !ok {
			add("cabinet", "cabinet index out of range")
			break
		}
		conv := cab.Converter
		if conv.Manufacturer == "" {
			add("converter.manufacturer", "converter manufacturer is required")
		}
		if conv.Manufacturer == ManufacturerOther && conv.ManufacturerLabel == "" {
			add("converter.manufacturer_label", "describe the converter manufacturer")
		}
		if conv.Voltage == "" {
			add("converter.voltage", "DC voltage selection is required")
		}
		if conv.PanoramicPhoto.IsEmpty() {
			add("converter.panoramic_photo", "converter panoramic photo is required")
		}
	case StepBatteries:
		cab, ok := cabinetAt(r, cabinetIndex)
		if !ok {
			add("cabinet", "cabinet index out of range")
			break
		}
		if cab.Batteries.BankCount < 1 {
			add("batteries.bank_count", "at least one battery bank must be declared")
		}
		if cab.Batteries.BankPhoto.IsEmpty() {
			add("batteries.bank_photo", "battery bank photo is required")
		}
	case StepPowerDistribution:
		if r.Power.MainPanelPhoto.IsEmpty() {
			add("power.main_panel_photo", "main panel photo is required")
		}
		if !r.Power.TransformerOK && r.Power.TransformerPhoto.IsEmpty() {
			add("power.transformer_photo", "photo of the faulty transformer is required")
		}
		if !r.Power.CablesOK && r.Power.CablePhoto.IsEmpty() {
			add("power.cable_photo", "photo of the damaged cabling is required")
		}
		if !r.Power.PlatesOK && r.Power.PlatePhoto.IsEmpty() {
			add("power.plate_photo", "photo of the identification plate is required")
		}
	case StepTower:
		if r.Tower.HasNests && r.Tower.NestPhoto.IsEmpty() {
			add("tower.nest_photo", "nest photo is required when nests are present")
		}
	case StepFinal:
		if r.TechnicianName == "" {
			add("technician_name", "technician name is required")
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func cabinetAt(r *ChecklistRecord, index int) (*CabinetRecord, bool) {
	if index < 0 || index >= len(r.Cabinets) {
		return nil, false
	}
	return &r.Cabinets[index], true
}

type memoKey struct {
	recordID string
	revision uint64
	step     Step
	cabinet  int
}

// Validator memoizes ValidateStep on (record id, revision, step, cabinet).
// Validation is recomputed only when one of those inputs changes.
type Validator struct {
	mu     sync.Mutex
	key    memoKey
	cached Result
	valid  bool
}

// Validate returns the memoized result for the given inputs.
func (v *Validator) Validate(r *ChecklistRecord, step Step, cabinetIndex int) Result {
	key := memoKey{recordID: r.ID, revision: r.Revision(), step: step, cabinet: cabinetIndex}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.valid && v.key == key {
		return v.cached
	}
	result := ValidateStep(r, step, cabinetIndex)
	v.key = key
	v.cached = result
	v.valid = true
	return result
}
