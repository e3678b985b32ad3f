package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"printscout/scanner"
	"printscout/storage"
)

func testBatch(toner int) *scanner.Batch {
	pages := 4200
	m := &scanner.Metrics{
		TotalPages:    &pages,
		Model:         "HP LaserJet Pro M404dn",
		TonerLevelPct: &toner,
		CollectedAt:   time.Now(),
	}
	return &scanner.Batch{
		ScanID:     "test-scan",
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
		Subnets: []scanner.SubnetResult{{
			Target:    scanner.Target{Subnet: "192.0.2.0/24", Location: "Office"},
			State:     scanner.StateDone,
			LiveHosts: 5,
			Found: []scanner.Discovery{{
				Printer: scanner.Printer{
					IP:       "192.0.2.7",
					Name:     "office-printer",
					Location: "Office",
				},
				Metrics: m,
			}},
		}},
	}
}

func TestPersistBatch(t *testing.T) {
	t.Parallel()

	store, err := storage.NewSQLiteStore("")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	created, updated, samples, err := persistBatch(ctx, store, testBatch(80))
	if err != nil {
		t.Fatalf("persistBatch: %v", err)
	}
	if created != 1 || updated != 0 || samples != 1 {
		t.Errorf("created=%d updated=%d samples=%d, want 1/0/1", created, updated, samples)
	}

	p, err := store.GetPrinter(ctx, "192.0.2.7")
	if err != nil {
		t.Fatalf("GetPrinter: %v", err)
	}
	if p.Model != "HP LaserJet Pro M404dn" {
		t.Errorf("Model = %q, want the collected model as fallback", p.Model)
	}

	// re-running the same batch refreshes rather than duplicates
	created, updated, samples, err = persistBatch(ctx, store, testBatch(79))
	if err != nil {
		t.Fatalf("persistBatch again: %v", err)
	}
	if created != 0 || updated != 1 || samples != 1 {
		t.Errorf("created=%d updated=%d samples=%d, want 0/1/1", created, updated, samples)
	}

	history, err := store.MetricsSince(ctx, p.ID, time.Time{})
	if err != nil {
		t.Fatalf("MetricsSince: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("got %d samples after two runs, want 2", len(history))
	}
}

func TestPersistBatchSkipsUnstorableReading(t *testing.T) {
	t.Parallel()

	store, err := storage.NewSQLiteStore("")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	batch := testBatch(0)
	// a reading that resolved only a model string has nothing to append
	batch.Subnets[0].Found[0].Metrics = &scanner.Metrics{
		Model:       "Brother HL-L2350DW",
		CollectedAt: time.Now(),
	}

	created, _, samples, err := persistBatch(context.Background(), store, batch)
	if err != nil {
		t.Fatalf("persistBatch: %v", err)
	}
	if created != 1 || samples != 0 {
		t.Errorf("created=%d samples=%d, want printer saved without a sample", created, samples)
	}
}

func TestPrintBatchReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printBatchReport(&buf, testBatch(17))

	out := buf.String()
	for _, want := range []string{"192.0.2.0/24", "192.0.2.7", "office-printer", "toner=17%", "pages=4200"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
