package oids

// This package centralizes the SNMP OIDs the collection engine queries.  The
// constants mirror the structure documented in MIB-II, the Host Resources
// MIB, and the Printer MIB so callers can avoid scattering raw dotted
// strings.

const (
	// --- MIB-II system group (RFC 1213) ---

	// SysDescr reports a human-readable system description string; the
	// classifier's keyword heuristic runs against it.
	SysDescr = "1.3.6.1.2.1.1.1.0"
	// SysName is the administratively assigned device name.
	SysName = "1.3.6.1.2.1.1.5.0"
)

const (
	// --- Host Resources MIB (RFC 2790) ---

	// HrDeviceDescr points at HOST-RESOURCES-MIB::hrDeviceDescr.1 and is
	// commonly the printer model string.
	HrDeviceDescr = "1.3.6.1.2.1.25.3.2.1.3.1"
	// HrDeviceStatus is the raw device status code (hrDeviceStatus.1).
	HrDeviceStatus = "1.3.6.1.2.1.25.3.2.1.5.1"
)

const (
	// --- Printer MIB (RFC 3805) ---

	// PrtMarkerLifeCount targets prtMarkerLifeCount.1.1 and is treated as
	// the lifetime page counter.
	PrtMarkerLifeCount = "1.3.6.1.2.1.43.10.2.1.4.1.1"

	// Supply table columns (Printer-MIB::prtMarkerSupplies).  Rows are
	// addressed by appending an integer index to these bases.
	PrtMarkerSuppliesDesc   = "1.3.6.1.2.1.43.11.1.1.6.1"
	PrtMarkerSuppliesType   = "1.3.6.1.2.1.43.11.1.1.5.1"
	PrtMarkerSuppliesUnit   = "1.3.6.1.2.1.43.11.1.1.7.1"
	PrtMarkerSuppliesMaxCap = "1.3.6.1.2.1.43.11.1.1.8.1"
	PrtMarkerSuppliesLevel  = "1.3.6.1.2.1.43.11.1.1.9.1"
)
