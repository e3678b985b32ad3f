package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Target is one subnet to scan, with the location label applied to every
// printer discovered in it.
type Target struct {
	Subnet   string
	Location string
}

// SubnetState tracks a subnet through the discovery pipeline.
type SubnetState int

const (
	StatePending SubnetState = iota
	StateSweeping
	StateProbing
	StateDone
)

func (s SubnetState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSweeping:
		return "sweeping"
	case StateProbing:
		return "probing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Discovery pairs a classified printer with at most one metrics reading.
// Metrics is nil when collection resolved nothing.
type Discovery struct {
	Printer Printer
	Metrics *Metrics
}

// SubnetResult is the outcome of scanning one target subnet. Found is in
// completion order of the concurrent probe stage, not address order.
type SubnetResult struct {
	Target    Target
	State     SubnetState
	LiveHosts int
	Found     []Discovery
}

// Batch is the aggregated result of one discovery run. Subnets preserves
// the input target order. Nothing in a Batch has been persisted; the caller
// decides what to hand to storage.
type Batch struct {
	ScanID     string
	StartedAt  time.Time
	FinishedAt time.Time
	Subnets    []SubnetResult
}

// Discoveries flattens the batch into a single ordered slice.
func (b *Batch) Discoveries() []Discovery {
	var all []Discovery
	for _, sr := range b.Subnets {
		all = append(all, sr.Found...)
	}
	return all
}

// PipelineConfig controls worker counts and heuristics for a discovery run.
type PipelineConfig struct {
	Liveness LivenessConfig
	// ProbeWorkers sizes the classification/extraction pool. Far narrower
	// than the liveness pool; each unit of work is several SNMP round trips.
	ProbeWorkers int
	// Keywords overrides the classifier vocabulary; nil selects the default.
	Keywords []string
	// MaxSupplyIndex bounds the supply-table walk; zero selects the default.
	MaxSupplyIndex int
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	if c.ProbeWorkers <= 0 {
		c.ProbeWorkers = 20
	}
	return c
}

// Pipeline composes the liveness sweep, printer classification, and metrics
// extraction into a two-phase scan over one or more subnets: subnets run
// sequentially, hosts within a subnet run in parallel.
type Pipeline struct {
	cfg        PipelineConfig
	classifier *Classifier
	extractor  *Extractor
}

// NewPipeline builds a Pipeline over the given probe.
func NewPipeline(probe Getter, cfg PipelineConfig) *Pipeline {
	cfg = cfg.withDefaults()
	return &Pipeline{
		cfg:        cfg,
		classifier: NewClassifier(probe, cfg.Keywords),
		extractor:  NewExtractor(probe, cfg.MaxSupplyIndex),
	}
}

// Run scans every target in order and returns the aggregated batch. All
// subnets are validated up front: a malformed CIDR anywhere in the list is
// contract misuse and fails the whole run before any network traffic.
// Per-device failures never surface; they shrink the result instead.
func (p *Pipeline) Run(ctx context.Context, targets []Target) (*Batch, error) {
	for i, t := range targets {
		if err := ValidateCIDR(t.Subnet); err != nil {
			return nil, fmt.Errorf("target %d: %w", i+1, err)
		}
	}

	batch := &Batch{
		ScanID:    uuid.NewString(),
		StartedAt: time.Now(),
	}

	for _, t := range targets {
		sr, err := p.scanSubnet(ctx, t)
		if err != nil {
			return nil, err
		}
		batch.Subnets = append(batch.Subnets, sr)
		if ctx.Err() != nil {
			break
		}
	}

	batch.FinishedAt = time.Now()
	if scanLogger != nil {
		scanLogger.Info("Discovery run finished",
			"scanID", batch.ScanID,
			"subnets", len(batch.Subnets),
			"printers", len(batch.Discoveries()))
	}
	return batch, nil
}

// scanSubnet drives one subnet through the state machine. There are no
// retries across states; a subnet with no live hosts goes straight to done.
func (p *Pipeline) scanSubnet(ctx context.Context, t Target) (SubnetResult, error) {
	sr := SubnetResult{Target: t, State: StatePending}

	sr.State = StateSweeping
	if scanLogger != nil {
		scanLogger.Info("Scanning subnet", "subnet", t.Subnet, "location", t.Location)
	}
	live, err := SweepSubnet(ctx, t.Subnet, p.cfg.Liveness)
	if err != nil {
		return sr, err
	}
	sr.LiveHosts = len(live)

	if len(live) == 0 {
		sr.State = StateDone
		return sr, nil
	}

	sr.State = StateProbing
	sr.Found = p.probeHosts(ctx, live, t.Location)
	sr.State = StateDone

	if scanLogger != nil {
		scanLogger.Info("Subnet scan finished",
			"subnet", t.Subnet, "live", sr.LiveHosts, "printers", len(sr.Found))
	}
	return sr, nil
}

// probeHosts fans classification and extraction out over the live set with
// a bounded worker pool. Hosts that are not printers are dropped; printers
// whose metrics collection resolves nothing are kept with nil Metrics.
func (p *Pipeline) probeHosts(ctx context.Context, live []string, location string) []Discovery {
	jobs := make(chan string)
	out := make(chan Discovery)

	workers := p.cfg.ProbeWorkers
	if workers > len(live) {
		workers = len(live)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case ip, ok := <-jobs:
					if !ok {
						return
					}
					printer, isPrinter := p.classifier.Classify(ctx, ip, location)
					if !isPrinter {
						continue
					}
					d := Discovery{
						Printer: *printer,
						Metrics: p.extractor.Collect(ctx, ip),
					}
					select {
					case <-ctx.Done():
						return
					case out <- d:
					}
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, ip := range live {
			select {
			case <-ctx.Done():
				return
			case jobs <- ip:
			}
		}
	}()

	// close output when workers finish
	go func() {
		wg.Wait()
		close(out)
	}()

	found := []Discovery{}
	for d := range out {
		found = append(found, d)
	}
	return found
}
