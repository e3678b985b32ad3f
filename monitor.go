package main

import (
	"context"
	"time"

	"printscout/logger"
	"printscout/scanner"
	"printscout/storage"
)

// runMonitor periodically samples every known printer and appends the
// readings. It returns when the context is cancelled. Discovery is not
// repeated here; the fleet is whatever the store already holds.
func runMonitor(ctx context.Context, cfg *Config, store storage.Store, log *logger.Logger) error {
	interval := time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	probe := scanner.NewProbe(cfg.probeConfig())
	extractor := scanner.NewExtractor(probe, cfg.Discovery.MaxSupplyIndex)

	log.Info("Monitoring started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := sampleFleet(ctx, store, extractor, log); err != nil {
			log.Error("Sampling cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// sampleFleet collects one reading per stored printer. Printers that yield
// nothing are skipped; the cycle never fails because of one device.
func sampleFleet(ctx context.Context, store storage.Store, extractor *scanner.Extractor, log *logger.Logger) error {
	printers, err := store.ListPrinters(ctx)
	if err != nil {
		return err
	}

	collected := 0
	for _, p := range printers {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		m := extractor.Collect(ctx, p.IP)
		if m == nil {
			continue
		}
		sample := sampleFromMetrics(m)
		if sample.Empty() {
			continue
		}
		if err := store.AppendMetrics(ctx, p.ID, sample); err != nil {
			log.Warn("Failed to store sample", "ip", p.IP, "error", err)
			continue
		}
		collected++
	}

	log.Info("Sampling cycle finished", "printers", len(printers), "samples", collected)
	return nil
}
