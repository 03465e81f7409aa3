package checklist

import "testing"

// fillRequired fills every required leaf of a one-cabinet record.
func fillRequired(rec *ChecklistRecord) {
	_ = rec.Set(FieldSiteCode, "AMBEL")
	_ = rec.Set(FieldRegion, RegionAM)
	_ = rec.Set(FieldPanoramicPhoto, LocalPhoto("cGFu"))
	_ = rec.Set(FieldTechnicianName, "J. Souza")

	outdoor := CabinetOutdoor
	techs := []AccessTech{AccessGPON}
	conv := ConverterRecord{
		Manufacturer:   ManufacturerEltek,
		Voltage:        DCVoltage48,
		PanoramicPhoto: LocalPhoto("Zm9v"),
		ModulesPhoto:   LocalPhoto("bW9k"),
	}
	pano := LocalPhoto("Y2Fi")
	trans := LocalPhoto("dHJhbnM=")
	access := LocalPhoto("YWNj")
	bank := LocalPhoto("YmFuaw==")
	_ = rec.UpdateCabinet(0, CabinetPatch{
		Type:              &outdoor,
		AccessTechs:       &techs,
		Converter:         &conv,
		PanoramicPhoto:    &pano,
		TransmissionPhoto: &trans,
		AccessPhoto:       &access,
		BankPhoto:         &bank,
	})
	_ = rec.AddBatteryBank(0)

	power := rec.Power
	power.MainPanelPhoto = LocalPhoto("bWFpbg==")
	_ = rec.Set(FieldPower, power)
}

func TestProgressMonotonic(t *testing.T) {
	rec := NewRecord()
	score := Progress(rec)

	steps := []func(){
		func() { _ = rec.Set(FieldSiteCode, "AMBEL") },
		func() { _ = rec.Set(FieldRegion, RegionAM) },
		func() { _ = rec.Set(FieldPanoramicPhoto, LocalPhoto("cGFu")) },
		func() { _ = rec.Set(FieldTechnicianName, "J. Souza") },
		func() { _ = rec.AddBatteryBank(0) },
		func() {
			outdoor := CabinetOutdoor
			_ = rec.UpdateCabinet(0, CabinetPatch{Type: &outdoor})
		},
	}
	for i, step := range steps {
		step()
		next := Progress(rec)
		if next < score {
			t.Fatalf("score decreased at step %d: %d -> %d", i, score, next)
		}
		score = next
	}
}

func TestProgressIdempotent(t *testing.T) {
	rec := NewRecord()
	_ = rec.Set(FieldSiteCode, "AMBEL")
	first := Progress(rec)
	for i := 0; i < 5; i++ {
		if got := Progress(rec); got != first {
			t.Fatalf("recompute on unchanged record changed score: %d != %d", got, first)
		}
	}
}

func TestProgressFullOnlyWhenComplete(t *testing.T) {
	rec := NewRecord()
	fillRequired(rec)
	if got := Progress(rec); got != 100 {
		t.Fatalf("complete record must score 100, got %d", got)
	}

	// Dropping one required leaf must leave 100.
	_ = rec.Set(FieldTechnicianName, "")
	if got := Progress(rec); got >= 100 {
		t.Fatalf("incomplete record must not score 100, got %d", got)
	}
}

func TestProgressCountsConditionalLeavesOnlyWhenDemanded(t *testing.T) {
	rec := NewRecord()
	fillRequired(rec)

	power := rec.Power
	power.TransformerOK = false
	_ = rec.Set(FieldPower, power)
	if got := Progress(rec); got >= 100 {
		t.Fatalf("unhealthy transformer adds a required photo, got %d", got)
	}

	power.TransformerPhoto = LocalPhoto("dHJhZm8=")
	_ = rec.Set(FieldPower, power)
	if got := Progress(rec); got != 100 {
		t.Fatalf("supplying the demanded photo must restore 100, got %d", got)
	}
}

func TestReadinessThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  Readiness
	}{
		{0, ReadinessBlocked},
		{49, ReadinessBlocked},
		{50, ReadinessWarning},
		{79, ReadinessWarning},
		{80, ReadinessReady},
		{100, ReadinessReady},
	}
	for _, c := range cases {
		if got := ReadinessFor(c.score); got != c.want {
			t.Fatalf("score %d: expected %s, got %s", c.score, c.want, got)
		}
	}
}
