package scanner

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"printscout/oids"
	"printscout/supplies"
)

// Metrics is one point-in-time reading taken from a printer. Optional
// numeric fields are nil when the device did not report them; TonerStatus
// holds a textual reading only when no toner percentage could be derived.
type Metrics struct {
	TotalPages    *int
	Model         string
	DeviceStatus  *int
	TonerLevelPct *int
	TonerStatus   string
	DrumLevelPct  *int
	CollectedAt   time.Time
}

// Empty reports whether nothing at all resolved. An empty reading is a
// collection failure and must not be persisted.
func (m *Metrics) Empty() bool {
	return m.TotalPages == nil &&
		m.Model == "" &&
		m.DeviceStatus == nil &&
		m.TonerLevelPct == nil &&
		m.TonerStatus == "" &&
		m.DrumLevelPct == nil
}

// supplyRow holds the five correlated attributes of one supply-table index.
type supplyRow struct {
	index       int
	description string
	typ         int
	unit        int
	maxCapacity int
	current     int
}

// Extractor reads page counters, device status, and consumable levels from
// one printer. Every query is best-effort; missing values simply leave
// their field absent.
type Extractor struct {
	probe          Getter
	maxSupplyIndex int
}

// NewExtractor builds an Extractor. maxSupplyIndex bounds the supply-table
// walk; zero selects the default of 9.
func NewExtractor(probe Getter, maxSupplyIndex int) *Extractor {
	if maxSupplyIndex <= 0 {
		maxSupplyIndex = 9
	}
	return &Extractor{probe: probe, maxSupplyIndex: maxSupplyIndex}
}

// Collect gathers a metrics reading for the printer at ip. Returns nil when
// no field at all resolved, which callers treat as a collection failure.
func (e *Extractor) Collect(ctx context.Context, ip string) *Metrics {
	m := &Metrics{CollectedAt: time.Now()}

	if v, ok := e.probe.Get(ctx, ip, oids.PrtMarkerLifeCount); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			m.TotalPages = &n
		}
	}

	if v, ok := e.probe.Get(ctx, ip, oids.HrDeviceDescr); ok {
		m.Model = v
	}

	if v, ok := e.probe.Get(ctx, ip, oids.HrDeviceStatus); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			m.DeviceStatus = &n
		}
	}

	e.collectSupplies(ctx, ip, m)

	if m.Empty() {
		if scanLogger != nil {
			scanLogger.WarnRateLimited("collect-empty-"+ip, time.Minute,
				"No metrics resolved for printer", "ip", ip)
		}
		return nil
	}
	return m
}

// collectSupplies walks the supply table and folds matched rows into the
// black-toner and drum channels of m.
func (e *Extractor) collectSupplies(ctx context.Context, ip string, m *Metrics) {
	descs := e.probe.WalkIndexed(ctx, ip, oids.PrtMarkerSuppliesDesc, e.maxSupplyIndex)

	for _, dv := range descs {
		row, ok := e.readSupplyRow(ctx, ip, dv)
		if !ok {
			continue
		}

		switch supplies.Classify(row.description) {
		case supplies.ChannelBlackToner:
			level := supplies.DeriveLevel(row.unit, row.current, row.maxCapacity)
			if level.Pct != nil {
				m.TonerLevelPct = level.Pct
				m.TonerStatus = ""
			} else if m.TonerLevelPct == nil {
				m.TonerStatus = level.Status
			}
		case supplies.ChannelDrum:
			// the sample carries a drum percentage only; a drum with a
			// status-only reading stays absent
			level := supplies.DeriveLevel(row.unit, row.current, row.maxCapacity)
			if level.Pct != nil {
				m.DrumLevelPct = level.Pct
			}
		}
	}
}

// readSupplyRow reads the remaining four attributes correlated with a supply
// description. Rows without a readable current level and max capacity are
// skipped.
func (e *Extractor) readSupplyRow(ctx context.Context, ip string, desc IndexedValue) (supplyRow, bool) {
	row := supplyRow{index: desc.Index, description: desc.Value}

	current, okCur := e.getInt(ctx, ip, oids.PrtMarkerSuppliesLevel, desc.Index)
	maxCap, okMax := e.getInt(ctx, ip, oids.PrtMarkerSuppliesMaxCap, desc.Index)
	if !okCur || !okMax {
		return row, false
	}
	row.current = current
	row.maxCapacity = maxCap

	// type and unit are best-effort; a missing unit just means the
	// percent-unit shortcut never fires
	row.typ, _ = e.getInt(ctx, ip, oids.PrtMarkerSuppliesType, desc.Index)
	row.unit, _ = e.getInt(ctx, ip, oids.PrtMarkerSuppliesUnit, desc.Index)

	return row, true
}

func (e *Extractor) getInt(ctx context.Context, ip, baseOID string, index int) (int, bool) {
	v, ok := e.probe.Get(ctx, ip, fmt.Sprintf("%s.%d", baseOID, index))
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}
