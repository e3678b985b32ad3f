package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a printer doesn't exist
	ErrNotFound = errors.New("printer not found")
	// ErrInvalidAddress is returned when the address key is empty
	ErrInvalidAddress = errors.New("invalid or empty address")
	// ErrEmptySample is returned when a metrics sample carries no field at
	// all; such a reading is a collection failure and must not be stored
	ErrEmptySample = errors.New("metrics sample has no fields")
)

// Printer is a discovered printer as stored. IP is the unique identity key.
// FirstSeen is set on creation and never updated afterwards.
type Printer struct {
	ID        int64     `json:"id"`
	IP        string    `json:"ip"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	Model     string    `json:"model,omitempty"`
	FirstSeen time.Time `json:"first_seen"`
}

// MetricSample is one stored reading for a printer. Samples are append-only;
// nothing in this package mutates or deletes them.
type MetricSample struct {
	ID            int64     `json:"id"`
	PrinterID     int64     `json:"printer_id"`
	Timestamp     time.Time `json:"timestamp"`
	TotalPages    *int      `json:"total_pages,omitempty"`
	TonerLevelPct *int      `json:"toner_level_pct,omitempty"`
	TonerStatus   string    `json:"toner_status,omitempty"`
	DrumLevelPct  *int      `json:"drum_level_pct,omitempty"`
	DeviceStatus  *int      `json:"device_status,omitempty"`
}

// Empty reports whether every optional field is absent.
func (m *MetricSample) Empty() bool {
	return m.TotalPages == nil &&
		m.TonerLevelPct == nil &&
		m.TonerStatus == "" &&
		m.DrumLevelPct == nil &&
		m.DeviceStatus == nil
}

// ScanRecord summarizes one discovery run.
type ScanRecord struct {
	ID         int64     `json:"id"`
	ScanID     string    `json:"scan_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Subnets    int       `json:"subnets"`
	LiveHosts  int       `json:"live_hosts"`
	Printers   int       `json:"printers"`
}

// PrinterUsage is the counter delta for one printer over a query window.
// Pages is max(total_pages) - min(total_pages); a counter that reset inside
// the window produces a negative delta, which is reported as-is.
type PrinterUsage struct {
	PrinterID  int64  `json:"printer_id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	StartPages int    `json:"start_pages"`
	EndPages   int    `json:"end_pages"`
	Pages      int    `json:"pages"`
	Readings   int    `json:"readings"`
}

// Store is the persistence contract for discovered printers and their
// metric samples.
type Store interface {
	// UpsertPrinter inserts or updates keyed exclusively on IP. Created is
	// true on insert. An update touches only name, model, and location;
	// identity and first_seen never change.
	UpsertPrinter(ctx context.Context, p *Printer) (id int64, created bool, err error)

	// AppendMetrics is a pure insert of one sample for a printer. Returns
	// ErrEmptySample when the sample carries no field at all.
	AppendMetrics(ctx context.Context, printerID int64, sample *MetricSample) error

	// GetPrinter retrieves a printer by IP. Returns ErrNotFound if absent.
	GetPrinter(ctx context.Context, ip string) (*Printer, error)

	// ListPrinters returns all printers ordered by location then name.
	ListPrinters(ctx context.Context) ([]*Printer, error)

	// LatestMetrics returns the most recent sample per printer.
	LatestMetrics(ctx context.Context) (map[int64]*MetricSample, error)

	// MetricsSince returns a printer's samples at or after the cutoff,
	// oldest first.
	MetricsSince(ctx context.Context, printerID int64, since time.Time) ([]*MetricSample, error)

	// UsageBetween computes per-printer page-counter deltas in a window.
	UsageBetween(ctx context.Context, from, to time.Time) ([]*PrinterUsage, error)

	// AddScanRecord records a finished discovery run.
	AddScanRecord(ctx context.Context, rec *ScanRecord) error

	// Close releases the underlying database handle.
	Close() error
}

// Logger interface for storage operations
type Logger interface {
	Error(msg string, context ...interface{})
	Warn(msg string, context ...interface{})
	Info(msg string, context ...interface{})
	Debug(msg string, context ...interface{})
	WarnRateLimited(key string, interval time.Duration, msg string, context ...interface{})
}

// Global logger for storage package
var storageLogger Logger

// SetLogger sets the logger for the storage package
func SetLogger(logger Logger) {
	storageLogger = logger
}
