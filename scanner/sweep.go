package scanner

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// LivenessConfig controls the reachability sweep stage.
type LivenessConfig struct {
	// Workers is the sweep pool size. This pool is deliberately much wider
	// than the protocol stage: a TCP connect is far cheaper than an SNMP
	// round trip, and culling dead addresses up front keeps probe workers
	// off hosts with no listener at all.
	Workers int
	// Ports probed per host; any accepted connection marks the host live.
	Ports []int
	// Timeout applies per connect attempt.
	Timeout time.Duration
	// ProbeFunc is an optional override used by sweep workers (useful for
	// tests). If nil, probeTCP is used.
	ProbeFunc func(ip string, ports []int, timeout time.Duration) ([]int, error)
}

func (c LivenessConfig) withDefaults() LivenessConfig {
	if c.Workers <= 0 {
		c.Workers = 100
	}
	if len(c.Ports) == 0 {
		c.Ports = []int{80, 443, 515, 9100}
	}
	if c.Timeout <= 0 {
		c.Timeout = 100 * time.Millisecond
	}
	if c.ProbeFunc == nil {
		c.ProbeFunc = probeTCP
	}
	return c
}

// helper: convert net.IP to uint32
func ipToUint32(ip net.IP) uint32 {
	ip = ip.To4()
	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
}

// helper: convert uint32 to net.IP
func uint32ToIP(n uint32) net.IP {
	return net.IPv4(byte(n>>24), byte(n>>16), byte(n>>8), byte(n)).To4()
}

// HostAddresses expands an IPv4 CIDR into its host addresses, excluding the
// network and broadcast addresses per standard subnetting rules. A /31 or
// /32 has no such reserved addresses and yields every address as-is.
func HostAddresses(cidr string) ([]string, error) {
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR %q: %w", cidr, err)
	}
	if ipnet.IP.To4() == nil {
		return nil, fmt.Errorf("invalid CIDR %q: IPv6 not supported", cidr)
	}

	ones, bits := ipnet.Mask.Size()
	total := uint32(1) << uint(bits-ones)
	start := ipToUint32(ipnet.IP.Mask(ipnet.Mask))

	first, last := uint32(0), total-1
	if bits-ones > 1 {
		first, last = 1, total-2
	}

	hosts := make([]string, 0, last-first+1)
	for i := first; i <= last; i++ {
		hosts = append(hosts, uint32ToIP(start+i).String())
	}
	return hosts, nil
}

// ValidateCIDR reports whether the subnet string is a well-formed IPv4 CIDR.
func ValidateCIDR(cidr string) error {
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %q: %w", cidr, err)
	}
	if ipnet.IP.To4() == nil {
		return fmt.Errorf("invalid CIDR %q: IPv6 not supported", cidr)
	}
	return nil
}

// SweepSubnet probes every host address in the subnet with a bounded pool of
// liveness workers and returns the set of responsive addresses. Order is not
// meaningful. The only error is a malformed subnet; per-host failures simply
// leave the host out of the result.
func SweepSubnet(ctx context.Context, cidr string, cfg LivenessConfig) ([]string, error) {
	hosts, err := HostAddresses(cidr)
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	jobs := make(chan string)
	out := make(chan string)

	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
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
					open, err := cfg.ProbeFunc(ip, cfg.Ports, cfg.Timeout)
					if err != nil || len(open) == 0 {
						continue
					}
					select {
					case <-ctx.Done():
						return
					case out <- ip:
					}
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, ip := range hosts {
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

	live := []string{}
	for ip := range out {
		live = append(live, ip)
	}

	if scanLogger != nil {
		scanLogger.Debug("Liveness sweep finished", "subnet", cidr, "hosts", len(hosts), "live", len(live))
	}
	return live, nil
}
