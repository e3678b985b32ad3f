package scanner

import (
	"context"
	"testing"

	"printscout/oids"
)

// supplyHost builds a fake host map with the identity values plus one
// supply-table row at index 1.
func supplyHost(desc, typ, unit, maxCap, level string) map[string]string {
	return map[string]string{
		oids.PrtMarkerLifeCount:          "52344",
		oids.HrDeviceDescr:               "HP LaserJet Pro M404dn",
		oids.HrDeviceStatus:              "2",
		oids.PrtMarkerSuppliesDesc + ".1":   desc,
		oids.PrtMarkerSuppliesType + ".1":   typ,
		oids.PrtMarkerSuppliesUnit + ".1":   unit,
		oids.PrtMarkerSuppliesMaxCap + ".1": maxCap,
		oids.PrtMarkerSuppliesLevel + ".1":  level,
	}
}

func TestCollectFullReading(t *testing.T) {
	t.Parallel()

	probe := &fakeGetter{values: map[string]map[string]string{
		"192.0.2.10": supplyHost("Black Toner Cartridge", "3", "19", "100", "42"),
	}}

	m := NewExtractor(probe, 0).Collect(context.Background(), "192.0.2.10")
	if m == nil {
		t.Fatal("expected a metrics reading")
	}
	if m.TotalPages == nil || *m.TotalPages != 52344 {
		t.Errorf("TotalPages = %v, want 52344", m.TotalPages)
	}
	if m.Model != "HP LaserJet Pro M404dn" {
		t.Errorf("Model = %q", m.Model)
	}
	if m.DeviceStatus == nil || *m.DeviceStatus != 2 {
		t.Errorf("DeviceStatus = %v, want 2", m.DeviceStatus)
	}
	if m.TonerLevelPct == nil || *m.TonerLevelPct != 42 {
		t.Errorf("TonerLevelPct = %v, want 42", m.TonerLevelPct)
	}
	if m.TonerStatus != "" {
		t.Errorf("TonerStatus = %q, want empty alongside a percentage", m.TonerStatus)
	}
	if m.CollectedAt.IsZero() {
		t.Error("CollectedAt not stamped")
	}
}

func TestCollectTonerStatusOnly(t *testing.T) {
	t.Parallel()

	// sentinel level -3 means some supply remains
	probe := &fakeGetter{values: map[string]map[string]string{
		"192.0.2.11": supplyHost("Black Toner Cartridge", "3", "7", "-2", "-3"),
	}}

	m := NewExtractor(probe, 0).Collect(context.Background(), "192.0.2.11")
	if m == nil {
		t.Fatal("expected a metrics reading")
	}
	if m.TonerLevelPct != nil {
		t.Errorf("TonerLevelPct = %v, want nil", *m.TonerLevelPct)
	}
	if m.TonerStatus != "OK" {
		t.Errorf("TonerStatus = %q, want %q", m.TonerStatus, "OK")
	}
}

func TestCollectRatioDerivedPercentage(t *testing.T) {
	t.Parallel()

	probe := &fakeGetter{values: map[string]map[string]string{
		"192.0.2.12": supplyHost("Black Toner Cartridge", "3", "7", "8000", "2000"),
	}}

	m := NewExtractor(probe, 0).Collect(context.Background(), "192.0.2.12")
	if m == nil {
		t.Fatal("expected a metrics reading")
	}
	if m.TonerLevelPct == nil || *m.TonerLevelPct != 25 {
		t.Errorf("TonerLevelPct = %v, want 25", m.TonerLevelPct)
	}
}

func TestCollectDrumChannel(t *testing.T) {
	t.Parallel()

	host := supplyHost("Black Toner Cartridge", "3", "19", "100", "42")
	host[oids.PrtMarkerSuppliesDesc+".2"] = "Drum Unit"
	host[oids.PrtMarkerSuppliesType+".2"] = "9"
	host[oids.PrtMarkerSuppliesUnit+".2"] = "19"
	host[oids.PrtMarkerSuppliesMaxCap+".2"] = "100"
	host[oids.PrtMarkerSuppliesLevel+".2"] = "77"
	probe := &fakeGetter{values: map[string]map[string]string{"192.0.2.13": host}}

	m := NewExtractor(probe, 0).Collect(context.Background(), "192.0.2.13")
	if m == nil {
		t.Fatal("expected a metrics reading")
	}
	if m.DrumLevelPct == nil || *m.DrumLevelPct != 77 {
		t.Errorf("DrumLevelPct = %v, want 77", m.DrumLevelPct)
	}
}

func TestCollectDrumStatusOnlyStaysAbsent(t *testing.T) {
	t.Parallel()

	probe := &fakeGetter{values: map[string]map[string]string{
		"192.0.2.14": supplyHost("Drum Unit", "9", "7", "-2", "-3"),
	}}

	m := NewExtractor(probe, 0).Collect(context.Background(), "192.0.2.14")
	if m == nil {
		t.Fatal("expected a metrics reading")
	}
	if m.DrumLevelPct != nil {
		t.Errorf("DrumLevelPct = %v, want nil for a status-only drum row", *m.DrumLevelPct)
	}
}

func TestCollectSkipsRowWithoutLevels(t *testing.T) {
	t.Parallel()

	host := map[string]string{
		oids.PrtMarkerLifeCount:            "100",
		oids.PrtMarkerSuppliesDesc + ".1":  "Black Toner Cartridge",
		oids.PrtMarkerSuppliesUnit + ".1":  "19",
		// no max capacity or current level readable
	}
	probe := &fakeGetter{values: map[string]map[string]string{"192.0.2.15": host}}

	m := NewExtractor(probe, 0).Collect(context.Background(), "192.0.2.15")
	if m == nil {
		t.Fatal("expected a metrics reading, page count resolved")
	}
	if m.TonerLevelPct != nil || m.TonerStatus != "" {
		t.Errorf("toner fields should stay absent: pct=%v status=%q", m.TonerLevelPct, m.TonerStatus)
	}
}

func TestCollectNothingResolvedReturnsNil(t *testing.T) {
	t.Parallel()

	probe := &fakeGetter{values: map[string]map[string]string{}}
	if m := NewExtractor(probe, 0).Collect(context.Background(), "192.0.2.16"); m != nil {
		t.Fatalf("got %+v, want nil when no field resolved", m)
	}
}

func TestCollectPercentageWinsOverEarlierStatus(t *testing.T) {
	t.Parallel()

	// first toner row yields only a status, second yields a percentage;
	// the percentage must win and clear the status
	host := supplyHost("Black Toner Cartridge", "3", "7", "-2", "-3")
	host[oids.PrtMarkerSuppliesDesc+".2"] = "Black Toner Cartridge TN-760"
	host[oids.PrtMarkerSuppliesType+".2"] = "3"
	host[oids.PrtMarkerSuppliesUnit+".2"] = "19"
	host[oids.PrtMarkerSuppliesMaxCap+".2"] = "100"
	host[oids.PrtMarkerSuppliesLevel+".2"] = "61"
	probe := &fakeGetter{values: map[string]map[string]string{"192.0.2.17": host}}

	m := NewExtractor(probe, 0).Collect(context.Background(), "192.0.2.17")
	if m == nil {
		t.Fatal("expected a metrics reading")
	}
	if m.TonerLevelPct == nil || *m.TonerLevelPct != 61 {
		t.Errorf("TonerLevelPct = %v, want 61", m.TonerLevelPct)
	}
	if m.TonerStatus != "" {
		t.Errorf("TonerStatus = %q, want cleared once a percentage landed", m.TonerStatus)
	}
}

func TestMetricsEmpty(t *testing.T) {
	t.Parallel()

	m := &Metrics{}
	if !m.Empty() {
		t.Error("zero-value reading should be empty")
	}
	pages := 1
	m.TotalPages = &pages
	if m.Empty() {
		t.Error("reading with a page count is not empty")
	}
}
