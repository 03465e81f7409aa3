package checklist

import "testing"

func hasError(result Result, field string) bool {
	for _, e := range result.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidateSiteDataStep(t *testing.T) {
	rec := NewRecord()
	result := ValidateStep(rec, StepSiteData, 0)
	if result.Valid {
		t.Fatalf("empty record must fail site data step")
	}
	for _, field := range []string{"site_code", "region", "panoramic_photo"} {
		if !hasError(result, field) {
			t.Fatalf("missing error for %s: %+v", field, result.Errors)
		}
	}

	_ = rec.Set(FieldSiteCode, "AMB")
	result = ValidateStep(rec, StepSiteData, 0)
	if !hasError(result, "site_code") {
		t.Fatalf("3-character site code must be rejected")
	}

	_ = rec.Set(FieldSiteCode, "AMBEL")
	_ = rec.Set(FieldRegion, RegionAM)
	_ = rec.Set(FieldPanoramicPhoto, LocalPhoto("cGFu"))
	result = ValidateStep(rec, StepSiteData, 0)
	if !result.Valid {
		t.Fatalf("complete site data must pass: %+v", result.Errors)
	}
}

func TestValidateCabinetStep(t *testing.T) {
	rec := NewRecord()
	result := ValidateStep(rec, StepCabinet, 0)
	if result.Valid || !hasError(result, "cabinet.type") || !hasError(result, "cabinet.access_techs") {
		t.Fatalf("empty cabinet must fail: %+v", result.Errors)
	}

	outdoor := CabinetOutdoor
	techs := []AccessTech{AccessGPON}
	_ = rec.UpdateCabinet(0, CabinetPatch{Type: &outdoor, AccessTechs: &techs})
	if result := ValidateStep(rec, StepCabinet, 0); !result.Valid {
		t.Fatalf("typed cabinet with access tech must pass: %+v", result.Errors)
	}

	if result := ValidateStep(rec, StepCabinet, 3); result.Valid {
		t.Fatalf("out-of-range cabinet index must fail")
	}
}

func TestValidatePowerConverterStep(t *testing.T) {
	rec := NewRecord()
	result := ValidateStep(rec, StepPowerConverter, 0)
	for _, field := range []string{"converter.manufacturer", "converter.voltage", "converter.panoramic_photo"} {
		if !hasError(result, field) {
			t.Fatalf("missing error for %s", field)
		}
	}

	conv := ConverterRecord{
		Manufacturer:   ManufacturerOther,
		Voltage:        DCVoltage48,
		PanoramicPhoto: LocalPhoto("Zm9v"),
	}
	_ = rec.UpdateCabinet(0, CabinetPatch{Converter: &conv})
	result = ValidateStep(rec, StepPowerConverter, 0)
	if !hasError(result, "converter.manufacturer_label") {
		t.Fatalf("manufacturer 'other' without a label must be rejected")
	}

	conv.ManufacturerLabel = "Regional OEM"
	_ = rec.UpdateCabinet(0, CabinetPatch{Converter: &conv})
	if result := ValidateStep(rec, StepPowerConverter, 0); !result.Valid {
		t.Fatalf("complete converter must pass: %+v", result.Errors)
	}
}

func TestValidateBatteriesStep(t *testing.T) {
	rec := NewRecord()
	result := ValidateStep(rec, StepBatteries, 0)
	if !hasError(result, "batteries.bank_count") || !hasError(result, "batteries.bank_photo") {
		t.Fatalf("empty battery set must fail: %+v", result.Errors)
	}

	_ = rec.AddBatteryBank(0)
	photo := LocalPhoto("YmFuaw==")
	_ = rec.UpdateCabinet(0, CabinetPatch{BankPhoto: &photo})
	if result := ValidateStep(rec, StepBatteries, 0); !result.Valid {
		t.Fatalf("one bank plus photo must pass: %+v", result.Errors)
	}
}

func TestValidatePowerDistributionConditionalPhotos(t *testing.T) {
	rec := NewRecord()
	// Healthy flags: only the main panel photo is demanded.
	result := ValidateStep(rec, StepPowerDistribution, 0)
	if !hasError(result, "power.main_panel_photo") {
		t.Fatalf("main panel photo always required")
	}
	if hasError(result, "power.transformer_photo") || hasError(result, "power.cable_photo") {
		t.Fatalf("healthy subsystems must not demand photos: %+v", result.Errors)
	}

	power := rec.Power
	power.MainPanelPhoto = LocalPhoto("bWFpbg==")
	power.TransformerOK = false
	_ = rec.Set(FieldPower, power)
	result = ValidateStep(rec, StepPowerDistribution, 0)
	if !hasError(result, "power.transformer_photo") {
		t.Fatalf("faulty transformer must demand its photo")
	}

	power.TransformerPhoto = LocalPhoto("dHJhZm8=")
	_ = rec.Set(FieldPower, power)
	if result := ValidateStep(rec, StepPowerDistribution, 0); !result.Valid {
		t.Fatalf("resolved power step must pass: %+v", result.Errors)
	}
}

func TestValidateTowerNestPhoto(t *testing.T) {
	rec := NewRecord()
	if result := ValidateStep(rec, StepTower, 0); !result.Valid {
		t.Fatalf("tower without nests must pass: %+v", result.Errors)
	}

	tower := rec.Tower
	tower.HasNests = true
	_ = rec.Set(FieldTower, tower)
	if result := ValidateStep(rec, StepTower, 0); result.Valid {
		t.Fatalf("nests present without photo must fail")
	}

	tower.NestPhoto = LocalPhoto("bmVzdA==")
	_ = rec.Set(FieldTower, tower)
	if result := ValidateStep(rec, StepTower, 0); !result.Valid {
		t.Fatalf("nest photo must satisfy the rule: %+v", result.Errors)
	}
}

func TestValidateFinalStep(t *testing.T) {
	rec := NewRecord()
	if result := ValidateStep(rec, StepFinal, 0); result.Valid {
		t.Fatalf("empty technician name must fail")
	}
	_ = rec.Set(FieldTechnicianName, "M. Ferreira")
	if result := ValidateStep(rec, StepFinal, 0); !result.Valid {
		t.Fatalf("named technician must pass")
	}
}

func TestFieldsOutsideActiveStepNeverError(t *testing.T) {
	rec := NewRecord()
	// Everything is empty, yet the tower step only owns tower rules.
	result := ValidateStep(rec, StepTower, 0)
	if hasError(result, "site_code") || hasError(result, "technician_name") {
		t.Fatalf("step leaked foreign field errors: %+v", result.Errors)
	}
}

func TestValidatorMemoizesOnRevision(t *testing.T) {
	rec := NewRecord()
	var v Validator

	first := v.Validate(rec, StepSiteData, 0)
	second := v.Validate(rec, StepSiteData, 0)
	if len(first.Errors) != len(second.Errors) {
		t.Fatalf("memoized result differs")
	}

	_ = rec.Set(FieldSiteCode, "AMBEL")
	_ = rec.Set(FieldRegion, RegionAM)
	_ = rec.Set(FieldPanoramicPhoto, LocalPhoto("cGFu"))
	after := v.Validate(rec, StepSiteData, 0)
	if !after.Valid {
		t.Fatalf("validator returned stale result after mutation: %+v", after.Errors)
	}
}
