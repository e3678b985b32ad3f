package main

import (
	"context"
	"fmt"
	"io"

	"printscout/scanner"
	"printscout/storage"
)

// runDiscovery sweeps the configured targets, reports what it found, and
// persists the batch. Persistence happens after the report and device by
// device; the pipeline itself never writes.
func runDiscovery(ctx context.Context, cfg *Config, store storage.Store, targets []scanner.Target, out io.Writer) error {
	probe := scanner.NewProbe(cfg.probeConfig())
	pipeline := scanner.NewPipeline(probe, cfg.pipelineConfig())

	batch, err := pipeline.Run(ctx, targets)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	printBatchReport(out, batch)

	created, updated, samples, err := persistBatch(ctx, store, batch)
	if err != nil {
		return fmt.Errorf("failed to persist discovery batch: %w", err)
	}

	fmt.Fprintf(out, "Saved: %d new printer(s), %d refreshed, %d metric sample(s)\n",
		created, updated, samples)
	return nil
}

// printBatchReport writes a plain-text summary of a finished batch.
func printBatchReport(w io.Writer, batch *scanner.Batch) {
	fmt.Fprintf(w, "Discovery run %s\n", batch.ScanID)
	for _, sr := range batch.Subnets {
		fmt.Fprintf(w, "\n[%s] %s: %d live host(s), %d printer(s)\n",
			sr.Target.Location, sr.Target.Subnet, sr.LiveHosts, len(sr.Found))
		for _, d := range sr.Found {
			fmt.Fprintf(w, "  %s  %s", d.Printer.IP, d.Printer.Name)
			if d.Printer.Model != "" {
				fmt.Fprintf(w, "  (%s)", d.Printer.Model)
			}
			if d.Metrics != nil {
				if d.Metrics.TotalPages != nil {
					fmt.Fprintf(w, "  pages=%d", *d.Metrics.TotalPages)
				}
				if d.Metrics.TonerLevelPct != nil {
					fmt.Fprintf(w, "  toner=%d%%", *d.Metrics.TonerLevelPct)
				} else if d.Metrics.TonerStatus != "" {
					fmt.Fprintf(w, "  toner=%s", d.Metrics.TonerStatus)
				}
			}
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
}

// persistBatch upserts every discovered printer and appends its metrics
// sample when one was collected, then records the run in scan history.
func persistBatch(ctx context.Context, store storage.Store, batch *scanner.Batch) (created, updated, samples int, err error) {
	liveHosts := 0
	for _, sr := range batch.Subnets {
		liveHosts += sr.LiveHosts
	}

	for _, d := range batch.Discoveries() {
		p := &storage.Printer{
			IP:       d.Printer.IP,
			Name:     d.Printer.Name,
			Location: d.Printer.Location,
			Model:    d.Printer.Model,
		}
		if p.Model == "" && d.Metrics != nil {
			p.Model = d.Metrics.Model
		}

		id, isNew, upErr := store.UpsertPrinter(ctx, p)
		if upErr != nil {
			return created, updated, samples, upErr
		}
		if isNew {
			created++
		} else {
			updated++
		}

		if d.Metrics == nil {
			continue
		}
		sample := sampleFromMetrics(d.Metrics)
		if sample.Empty() {
			// the reading resolved a model string but nothing storable
			continue
		}
		if apErr := store.AppendMetrics(ctx, id, sample); apErr != nil {
			return created, updated, samples, apErr
		}
		samples++
	}

	rec := &storage.ScanRecord{
		ScanID:     batch.ScanID,
		StartedAt:  batch.StartedAt,
		FinishedAt: batch.FinishedAt,
		Subnets:    len(batch.Subnets),
		LiveHosts:  liveHosts,
		Printers:   created + updated,
	}
	if recErr := store.AddScanRecord(ctx, rec); recErr != nil {
		return created, updated, samples, recErr
	}

	return created, updated, samples, nil
}

// sampleFromMetrics converts a collected reading into its stored form.
func sampleFromMetrics(m *scanner.Metrics) *storage.MetricSample {
	return &storage.MetricSample{
		Timestamp:     m.CollectedAt,
		TotalPages:    m.TotalPages,
		TonerLevelPct: m.TonerLevelPct,
		TonerStatus:   m.TonerStatus,
		DrumLevelPct:  m.DrumLevelPct,
		DeviceStatus:  m.DeviceStatus,
	}
}
