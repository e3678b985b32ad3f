// Package supplies interprets rows of a printer's consumable-supply table:
// it classifies a supply description onto a tracked channel and derives a
// normalized level (percentage or status text) from the raw unit, current
// level, and max capacity values.
package supplies

import (
	"fmt"
	"strings"
)

// UnitPercent is the prtMarkerSuppliesSupplyUnit code meaning the current
// level is already expressed as a percentage.
const UnitPercent = 19

// Channel identifies which tracked consumable a supply row feeds.
type Channel int

const (
	// ChannelNone marks rows that are not tracked (color toner, fusers,
	// waste containers). This engine only follows the primary mono channels.
	ChannelNone Channel = iota
	// ChannelBlackToner is the primary black toner cartridge.
	ChannelBlackToner
	// ChannelDrum is the drum / imaging unit.
	ChannelDrum
)

// Classify maps a raw supply description to a channel. The match is a
// deliberately permissive substring heuristic: "toner"+"black" means the
// black toner cartridge, "drum" means the drum unit, anything else is
// ignored. Do not tighten this without a matching change in the fleet
// workflow that reviews discovered devices.
func Classify(desc string) Channel {
	lower := strings.ToLower(strings.TrimSpace(desc))
	if lower == "" {
		return ChannelNone
	}
	if strings.Contains(lower, "toner") && strings.Contains(lower, "black") {
		return ChannelBlackToner
	}
	if strings.Contains(lower, "drum") {
		return ChannelDrum
	}
	return ChannelNone
}

// Level is the normalized reading for one channel. Exactly one of Pct and
// Status is set.
type Level struct {
	// Pct is the 0-100 fill percentage when it could be derived.
	Pct *int
	// Status is the textual reading used when no percentage exists.
	Status string
}

// Sentinel current-level values defined by the Printer MIB.
const (
	// levelUnknown (-2) means the device cannot report the level.
	levelUnknown = -2
	// levelSomeRemaining (-3) means the supply is nominally OK but the
	// device does not measure how much remains.
	levelSomeRemaining = -3
)

// DeriveLevel computes the normalized level for a supply row. It is a pure
// function of (unit, current, max):
//
//  1. unit == percent: current is already the percentage.
//  2. current == -3: supply OK, level unmeasured.
//  3. current == -2: level unknown.
//  4. current < 0 otherwise: raw code surfaced as a status.
//  5. max > 0: percentage = floor(current/max*100).
//  6. otherwise the percentage cannot be calculated.
func DeriveLevel(unit, current, max int) Level {
	if unit == UnitPercent {
		pct := current
		return Level{Pct: &pct}
	}

	switch {
	case current == levelSomeRemaining:
		return Level{Status: "OK"}
	case current == levelUnknown:
		return Level{Status: "Unknown"}
	case current < 0:
		return Level{Status: fmt.Sprintf("Status: %d", current)}
	}

	if max > 0 {
		pct := current * 100 / max
		return Level{Pct: &pct}
	}

	return Level{Status: "Cannot calculate"}
}
