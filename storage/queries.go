package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Read-only aggregate queries. These back the external reporting surfaces;
// nothing here mutates stored data.

// LatestMetrics returns the most recent sample per printer, keyed by
// printer id. Printers with no samples yet are simply absent from the map.
func (s *SQLiteStore) LatestMetrics(ctx context.Context) (map[int64]*MetricSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.printer_id, m.timestamp,
		       m.total_pages, m.toner_level_pct, m.toner_status,
		       m.drum_level_pct, m.device_status
		FROM metrics m
		WHERE m.id IN (SELECT MAX(id) FROM metrics GROUP BY printer_id)`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest metrics: %w", err)
	}
	defer rows.Close()

	latest := make(map[int64]*MetricSample)
	for rows.Next() {
		m, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		latest[m.PrinterID] = m
	}
	return latest, rows.Err()
}

// MetricsSince returns a printer's samples at or after the cutoff, oldest
// first.
func (s *SQLiteStore) MetricsSince(ctx context.Context, printerID int64, since time.Time) ([]*MetricSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, printer_id, timestamp,
		       total_pages, toner_level_pct, toner_status,
		       drum_level_pct, device_status
		FROM metrics
		WHERE printer_id = ? AND timestamp >= ?
		ORDER BY timestamp`, printerID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics for printer %d: %w", printerID, err)
	}
	defer rows.Close()

	var samples []*MetricSample
	for rows.Next() {
		m, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, m)
	}
	return samples, rows.Err()
}

// UsageBetween computes per-printer page-counter deltas inside the window,
// busiest printers first within each location. The delta assumes the
// lifetime counter never decreases inside the window; a device that reset
// its counter yields a negative delta, reported as-is.
func (s *SQLiteStore) UsageBetween(ctx context.Context, from, to time.Time) ([]*PrinterUsage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, COALESCE(p.location, ''),
		       MIN(m.total_pages), MAX(m.total_pages),
		       MAX(m.total_pages) - MIN(m.total_pages),
		       COUNT(m.id)
		FROM printers p
		JOIN metrics m ON p.id = m.printer_id
		WHERE m.timestamp >= ? AND m.timestamp <= ?
		  AND m.total_pages IS NOT NULL
		GROUP BY p.id, p.name, p.location
		ORDER BY p.location, MAX(m.total_pages) - MIN(m.total_pages) DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	var usage []*PrinterUsage
	for rows.Next() {
		u := &PrinterUsage{}
		if err := rows.Scan(&u.PrinterID, &u.Name, &u.Location,
			&u.StartPages, &u.EndPages, &u.Pages, &u.Readings); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

func scanSample(rows *sql.Rows) (*MetricSample, error) {
	m := &MetricSample{}
	var totalPages, tonerPct, drumPct, deviceStatus sql.NullInt64
	var tonerStatus sql.NullString
	if err := rows.Scan(&m.ID, &m.PrinterID, &m.Timestamp,
		&totalPages, &tonerPct, &tonerStatus, &drumPct, &deviceStatus); err != nil {
		return nil, fmt.Errorf("failed to scan metrics row: %w", err)
	}
	m.TotalPages = intPtr(totalPages)
	m.TonerLevelPct = intPtr(tonerPct)
	m.TonerStatus = tonerStatus.String
	m.DrumLevelPct = intPtr(drumPct)
	m.DeviceStatus = intPtr(deviceStatus)
	return m, nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
