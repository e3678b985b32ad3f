package scanner

import (
	"context"
	"fmt"
	"strings"

	"printscout/oids"
)

// DefaultLocation is the sentinel location label for devices discovered
// without an operator-supplied one.
const DefaultLocation = "Auto-discovered"

// PrinterKeywords is the fixed vocabulary matched against a device's system
// description. The match is deliberately permissive: print servers and other
// print-adjacent devices can slip through, and a printer with a nonstandard
// description string can be missed. The surrounding workflow has a human
// review the discovered set before it is saved, so keep it loose.
var PrinterKeywords = []string{
	"printer", "print", "laser", "inkjet", "multifunction",
	"hp", "canon", "epson", "brother", "xerox", "ricoh",
	"samsung", "lexmark", "kyocera", "sharp", "dell",
	"konica", "oki", "toshiba", "copystation", "mfp",
}

// Printer is a provisionally identified device, not yet persisted.
type Printer struct {
	IP          string
	Name        string
	Description string
	Model       string
	Location    string
}

// Classifier decides whether a responding address is a printer by querying
// its identity string and matching it against a keyword vocabulary.
type Classifier struct {
	probe    Getter
	keywords []string
}

// NewClassifier builds a Classifier. A nil keyword list selects
// PrinterKeywords.
func NewClassifier(probe Getter, keywords []string) *Classifier {
	if keywords == nil {
		keywords = PrinterKeywords
	}
	return &Classifier{probe: probe, keywords: keywords}
}

// Classify queries the device's system description and applies the keyword
// heuristic. On a match it fills in name and model best-effort; either may
// stay empty. The second return is false when the address did not answer or
// did not look like a printer.
func (c *Classifier) Classify(ctx context.Context, ip, location string) (*Printer, bool) {
	sysDescr, ok := c.probe.Get(ctx, ip, oids.SysDescr)
	if !ok {
		return nil, false
	}

	if !matchesAny(sysDescr, c.keywords) {
		if scanLogger != nil {
			scanLogger.Debug("Host answered SNMP but is not a printer", "ip", ip)
		}
		return nil, false
	}

	name, _ := c.probe.Get(ctx, ip, oids.SysName)
	model, _ := c.probe.Get(ctx, ip, oids.HrDeviceDescr)

	if location == "" {
		location = DefaultLocation
	}

	p := &Printer{
		IP:          ip,
		Name:        displayName(ip, name, model),
		Description: sysDescr,
		Model:       model,
		Location:    location,
	}
	if scanLogger != nil {
		scanLogger.Info("Found printer", "ip", ip, "name", p.Name, "location", location)
	}
	return p, true
}

// displayName picks the best available name: device-reported name, else
// model, else one synthesized from the address.
func displayName(ip, name, model string) string {
	if name != "" {
		return name
	}
	if model != "" {
		return model
	}
	return fmt.Sprintf("Printer-%s", ip)
}

func matchesAny(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
