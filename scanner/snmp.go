package scanner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

// ProbeConfig holds SNMP connection parameters for the protocol probe.
type ProbeConfig struct {
	Community string
	Version   gosnmp.SnmpVersion
	Timeout   time.Duration
	Retries   int
}

// SNMPClient defines the interface for SNMP operations against one target.
type SNMPClient interface {
	Get(oids []string) (*gosnmp.SnmpPacket, error)
	Close() error
}

// gosnmpClient wraps gosnmp.GoSNMP to implement SNMPClient.
type gosnmpClient struct {
	conn *gosnmp.GoSNMP
}

func (c *gosnmpClient) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	return c.conn.Get(oids)
}

func (c *gosnmpClient) Close() error {
	return c.conn.Conn.Close()
}

// dialSNMP is the actual implementation of NewSNMPClientFunc.
func dialSNMP(cfg ProbeConfig, target string) (SNMPClient, error) {
	if target == "" {
		return nil, fmt.Errorf("target IP required")
	}

	conn := &gosnmp.GoSNMP{
		Target:    target,
		Port:      161,
		Community: cfg.Community,
		Version:   cfg.Version,
		Timeout:   cfg.Timeout,
		Retries:   cfg.Retries,
	}

	client := &gosnmpClient{conn: conn}
	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}

	return client, nil
}

// NewSNMPClientFunc is the function used to create SNMP clients.
// It can be replaced with a mock for testing.
var NewSNMPClientFunc = dialSNMP

// IndexedValue is one (index, value) pair from a simulated table walk.
type IndexedValue struct {
	Index int
	Value string
}

// Getter is the probe surface the classification and extraction stages
// consume. Probe implements it; tests supply fakes.
type Getter interface {
	Get(ctx context.Context, ip, oid string) (string, bool)
	WalkIndexed(ctx context.Context, ip, baseOID string, maxIndex int) []IndexedValue
}

// Probe performs single-value and simulated table-walk SNMP queries against
// one device at a time. Every failure mode is absorbed into an absent
// result: a probe call never returns an error, so a hung or hostile device
// costs its caller at most the configured timeout.
type Probe struct {
	cfg ProbeConfig
}

// NewProbe returns a Probe with defaults filled in: community "public",
// SNMPv2c, 2 second timeout, 1 retry.
func NewProbe(cfg ProbeConfig) *Probe {
	if cfg.Community == "" {
		cfg.Community = "public"
	}
	if cfg.Version == 0 {
		cfg.Version = gosnmp.Version2c
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Probe{cfg: cfg}
}

// Get queries a single OID. The second return is false when the value is
// absent: error indication from the device, NoSuchObject/NoSuchInstance,
// an empty or placeholder string, or any transport failure.
func (p *Probe) Get(ctx context.Context, ip, oid string) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}

	client, err := NewSNMPClientFunc(p.cfg, ip)
	if err != nil {
		return "", false
	}
	defer client.Close()

	packet, err := client.Get([]string{oid})
	if err != nil || packet == nil {
		return "", false
	}
	if packet.Error != gosnmp.NoError {
		return "", false
	}
	if len(packet.Variables) == 0 {
		return "", false
	}

	value := pduString(packet.Variables[0])
	if value == "" {
		return "", false
	}
	return value, true
}

// WalkIndexed simulates a table walk by probing successive integer suffixes
// of baseOID starting at 1. It stops at the first absent index or after
// maxIndex rows, whichever comes first.
func (p *Probe) WalkIndexed(ctx context.Context, ip, baseOID string, maxIndex int) []IndexedValue {
	if maxIndex <= 0 {
		maxIndex = 9
	}

	var rows []IndexedValue
	for i := 1; i <= maxIndex; i++ {
		if ctx.Err() != nil {
			break
		}
		value, ok := p.Get(ctx, ip, fmt.Sprintf("%s.%d", baseOID, i))
		if !ok {
			break
		}
		rows = append(rows, IndexedValue{Index: i, Value: value})
	}
	return rows
}

// pduString renders a PDU value as a trimmed string, or "" when the PDU
// carries a no-such-object indication or a placeholder value.
func pduString(pdu gosnmp.SnmpPDU) string {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return ""
	}

	var s string
	switch v := pdu.Value.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	case nil:
		return ""
	default:
		s = fmt.Sprintf("%v", v)
	}

	s = strings.TrimSpace(s)
	if strings.Contains(s, "No Such") {
		return ""
	}
	return s
}
