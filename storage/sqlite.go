package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite-backed store.
// If dbPath is empty, uses an in-memory database (:memory:).
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writes internally with busy_timeout; WAL mode lets
	// the excluded read-only consumers query while a scan is persisting.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &SQLiteStore{db: db, dbPath: dbPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the database schema
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS printers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ip TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		location TEXT,
		model TEXT,
		first_seen DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_printers_location ON printers(location);

	CREATE TABLE IF NOT EXISTS metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		printer_id INTEGER NOT NULL,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		total_pages INTEGER,
		toner_level_pct INTEGER,
		toner_status TEXT,
		drum_level_pct INTEGER,
		device_status INTEGER,
		FOREIGN KEY (printer_id) REFERENCES printers(id)
	);

	CREATE INDEX IF NOT EXISTS idx_metrics_timestamp ON metrics(timestamp);
	CREATE INDEX IF NOT EXISTS idx_metrics_printer_timestamp ON metrics(printer_id, timestamp);

	CREATE TABLE IF NOT EXISTS scan_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		subnets INTEGER NOT NULL DEFAULT 0,
		live_hosts INTEGER NOT NULL DEFAULT 0,
		printers INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_scan_history_started ON scan_history(started_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// UpsertPrinter inserts or updates a printer keyed on its IP address. An
// update touches the mutable fields only; id and first_seen are preserved.
// A unique-key race between the existence check and the insert is resolved
// internally as an update, never surfaced to the caller.
func (s *SQLiteStore) UpsertPrinter(ctx context.Context, p *Printer) (int64, bool, error) {
	if p == nil || strings.TrimSpace(p.IP) == "" {
		return 0, false, ErrInvalidAddress
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM printers WHERE ip = ?`, p.IP).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		res, insErr := s.db.ExecContext(ctx,
			`INSERT INTO printers (ip, name, location, model, first_seen)
			 VALUES (?, ?, ?, ?, ?)`,
			p.IP, p.Name, p.Location, p.Model, time.Now().UTC())
		if insErr != nil {
			if isUniqueViolation(insErr) {
				// lost the race to a concurrent insert; fall back to update
				return s.updateExisting(ctx, p)
			}
			return 0, false, fmt.Errorf("failed to insert printer %s: %w", p.IP, insErr)
		}
		id, insErr = res.LastInsertId()
		if insErr != nil {
			return 0, false, fmt.Errorf("failed to read inserted id: %w", insErr)
		}
		if storageLogger != nil {
			storageLogger.Info("Added printer", "ip", p.IP, "name", p.Name)
		}
		p.ID = id
		return id, true, nil
	case err != nil:
		return 0, false, fmt.Errorf("failed to look up printer %s: %w", p.IP, err)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE printers SET name = ?, location = ?, model = ? WHERE id = ?`,
		p.Name, p.Location, p.Model, id); err != nil {
		return 0, false, fmt.Errorf("failed to update printer %s: %w", p.IP, err)
	}
	if storageLogger != nil {
		storageLogger.Debug("Refreshed printer", "ip", p.IP, "name", p.Name)
	}
	p.ID = id
	return id, false, nil
}

// updateExisting resolves an insert that hit the unique ip constraint.
func (s *SQLiteStore) updateExisting(ctx context.Context, p *Printer) (int64, bool, error) {
	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM printers WHERE ip = ?`, p.IP).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("failed to resolve conflicting printer %s: %w", p.IP, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE printers SET name = ?, location = ?, model = ? WHERE id = ?`,
		p.Name, p.Location, p.Model, id); err != nil {
		return 0, false, fmt.Errorf("failed to update printer %s: %w", p.IP, err)
	}
	p.ID = id
	return id, false, nil
}

// AppendMetrics inserts one sample for a printer. Pure insert: no merging,
// no deduplication by timestamp, and prior samples are never touched.
func (s *SQLiteStore) AppendMetrics(ctx context.Context, printerID int64, sample *MetricSample) error {
	if sample == nil || sample.Empty() {
		return ErrEmptySample
	}

	ts := sample.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO metrics
		 (printer_id, timestamp, total_pages, toner_level_pct, toner_status, drum_level_pct, device_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		printerID, ts,
		nullInt(sample.TotalPages),
		nullInt(sample.TonerLevelPct),
		nullString(sample.TonerStatus),
		nullInt(sample.DrumLevelPct),
		nullInt(sample.DeviceStatus))
	if err != nil {
		return fmt.Errorf("failed to append metrics for printer %d: %w", printerID, err)
	}
	return nil
}

// GetPrinter retrieves a printer by IP
func (s *SQLiteStore) GetPrinter(ctx context.Context, ip string) (*Printer, error) {
	if strings.TrimSpace(ip) == "" {
		return nil, ErrInvalidAddress
	}

	p := &Printer{}
	var location, model sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, ip, name, location, model, first_seen FROM printers WHERE ip = ?`, ip).
		Scan(&p.ID, &p.IP, &p.Name, &location, &model, &p.FirstSeen)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get printer %s: %w", ip, err)
	}
	p.Location = location.String
	p.Model = model.String
	return p, nil
}

// ListPrinters returns all printers ordered by location then name
func (s *SQLiteStore) ListPrinters(ctx context.Context) ([]*Printer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ip, name, location, model, first_seen FROM printers ORDER BY location, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list printers: %w", err)
	}
	defer rows.Close()

	var printers []*Printer
	for rows.Next() {
		p := &Printer{}
		var location, model sql.NullString
		if err := rows.Scan(&p.ID, &p.IP, &p.Name, &location, &model, &p.FirstSeen); err != nil {
			return nil, fmt.Errorf("failed to scan printer row: %w", err)
		}
		p.Location = location.String
		p.Model = model.String
		printers = append(printers, p)
	}
	return printers, rows.Err()
}

// AddScanRecord records a finished discovery run
func (s *SQLiteStore) AddScanRecord(ctx context.Context, rec *ScanRecord) error {
	if rec == nil || rec.ScanID == "" {
		return fmt.Errorf("scan record requires a scan id")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scan_history (scan_id, started_at, finished_at, subnets, live_hosts, printers)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ScanID, rec.StartedAt, rec.FinishedAt, rec.Subnets, rec.LiveHosts, rec.Printers)
	if err != nil {
		return fmt.Errorf("failed to record scan %s: %w", rec.ScanID, err)
	}
	return nil
}

// Close closes the underlying database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
