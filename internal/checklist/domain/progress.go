package checklist

// Readiness buckets the completion score for downstream gating.
type Readiness string

const (
	// ReadinessBlocked blocks final submission entirely.
	ReadinessBlocked Readiness = "blocked"
	// ReadinessWarning allows submission behind a warning affordance.
	ReadinessWarning Readiness = "warning"
	// ReadinessReady presents the record as ready to submit.
	ReadinessReady Readiness = "ready"
)

const (
	// MinSubmitScore is the lowest score at which submission is allowed.
	MinSubmitScore = 50
	readyScore     = 80
)

// ReadinessFor maps a completion score to its gating bucket.
func ReadinessFor(score int) Readiness {
	switch {
	case score < MinSubmitScore:
		return ReadinessBlocked
	case score < readyScore:
		return ReadinessWarning
	default:
		return ReadinessReady
	}
}

// Progress computes the normalized completion score (0..100) over every
// required-for-submission leaf of the whole record, each weighing one.
// Filling a previously-empty required field never lowers the score, and
// recomputing on an unchanged record always yields the same value. The
// score is 100 only when every required leaf is filled.
func Progress(r *ChecklistRecord) int {
	total, filled := 0, 0
	count := func(ok bool) {
		total++
		if ok {
			filled++
		}
	}

	count(len(r.SiteCode) == 5)
	count(r.Region != "")
	count(!r.PanoramicPhoto.IsEmpty())
	count(r.TechnicianName != "")

	for i := range r.Cabinets {
		cab := &r.Cabinets[i]
		count(cab.Type != "")
		count(len(cab.AccessTechs) > 0)
		count(!cab.PanoramicPhoto.IsEmpty())
		count(!cab.TransmissionPhoto.IsEmpty())
		count(!cab.AccessPhoto.IsEmpty())
		count(cab.Converter.Manufacturer != "")
		count(cab.Converter.Voltage != "")
		count(!cab.Converter.PanoramicPhoto.IsEmpty())
		count(cab.Batteries.BankCount >= 1)
		count(!cab.Batteries.BankPhoto.IsEmpty())
	}

	count(!r.Power.MainPanelPhoto.IsEmpty())
	if !r.Power.TransformerOK {
		count(!r.Power.TransformerPhoto.IsEmpty())
	}
	if !r.Power.CablesOK {
		count(!r.Power.CablePhoto.IsEmpty())
	}
	if !r.Power.PlatesOK {
		count(!r.Power.PlatePhoto.IsEmpty())
	}
	if r.Tower.HasNests {
		count(!r.Tower.NestPhoto.IsEmpty())
	}

	if total == 0 {
		return 0
	}
	return filled * 100 / total
}
