package scanner

import (
	"context"
	"fmt"
	"testing"

	"github.com/gosnmp/gosnmp"
)

// mockSNMPClient serves canned packets keyed by OID.
type mockSNMPClient struct {
	packets map[string]*gosnmp.SnmpPacket
	err     error
}

func (m *mockSNMPClient) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	if m.err != nil {
		return nil, m.err
	}
	if pkt, ok := m.packets[oids[0]]; ok {
		return pkt, nil
	}
	return &gosnmp.SnmpPacket{
		Variables: []gosnmp.SnmpPDU{{Name: oids[0], Type: gosnmp.NoSuchObject}},
	}, nil
}

func (m *mockSNMPClient) Close() error { return nil }

func packetWith(oid string, typ gosnmp.Asn1BER, value interface{}) *gosnmp.SnmpPacket {
	return &gosnmp.SnmpPacket{
		Variables: []gosnmp.SnmpPDU{{Name: oid, Type: typ, Value: value}},
	}
}

// withMockClient swaps the client factory for the duration of a test.
func withMockClient(t *testing.T, client SNMPClient, dialErr error) {
	t.Helper()
	orig := NewSNMPClientFunc
	NewSNMPClientFunc = func(cfg ProbeConfig, target string) (SNMPClient, error) {
		if dialErr != nil {
			return nil, dialErr
		}
		return client, nil
	}
	t.Cleanup(func() { NewSNMPClientFunc = orig })
}

func TestProbeGet(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		packets map[string]*gosnmp.SnmpPacket
		dialErr error
		oid     string
		want    string
		wantOK  bool
	}{
		{
			name:    "octet string value",
			packets: map[string]*gosnmp.SnmpPacket{"1.3.6.1.2.1.1.1.0": packetWith("1.3.6.1.2.1.1.1.0", gosnmp.OctetString, []byte("HP LaserJet"))},
			oid:     "1.3.6.1.2.1.1.1.0",
			want:    "HP LaserJet",
			wantOK:  true,
		},
		{
			name:    "integer value rendered as string",
			packets: map[string]*gosnmp.SnmpPacket{"1.3.6.1.2.1.43.10.2.1.4.1.1": packetWith("1.3.6.1.2.1.43.10.2.1.4.1.1", gosnmp.Counter32, uint(52344))},
			oid:     "1.3.6.1.2.1.43.10.2.1.4.1.1",
			want:    "52344",
			wantOK:  true,
		},
		{
			name:    "no such object is absent",
			packets: map[string]*gosnmp.SnmpPacket{},
			oid:     "1.3.6.1.2.1.1.5.0",
			wantOK:  false,
		},
		{
			name: "device error status is absent",
			packets: map[string]*gosnmp.SnmpPacket{"1.3.6.1.2.1.1.1.0": {
				Error:     gosnmp.GenErr,
				Variables: []gosnmp.SnmpPDU{{Name: "1.3.6.1.2.1.1.1.0", Type: gosnmp.OctetString, Value: []byte("x")}},
			}},
			oid:    "1.3.6.1.2.1.1.1.0",
			wantOK: false,
		},
		{
			name:    "empty string is absent",
			packets: map[string]*gosnmp.SnmpPacket{"1.3.6.1.2.1.1.5.0": packetWith("1.3.6.1.2.1.1.5.0", gosnmp.OctetString, []byte("   "))},
			oid:     "1.3.6.1.2.1.1.5.0",
			wantOK:  false,
		},
		{
			name:    "placeholder text is absent",
			packets: map[string]*gosnmp.SnmpPacket{"1.3.6.1.2.1.1.5.0": packetWith("1.3.6.1.2.1.1.5.0", gosnmp.OctetString, []byte("No Such Object currently exists"))},
			oid:     "1.3.6.1.2.1.1.5.0",
			wantOK:  false,
		},
		{
			name:    "dial failure is absent",
			dialErr: fmt.Errorf("network unreachable"),
			oid:     "1.3.6.1.2.1.1.1.0",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withMockClient(t, &mockSNMPClient{packets: tt.packets}, tt.dialErr)

			probe := NewProbe(ProbeConfig{})
			got, ok := probe.Get(ctx, "192.0.2.1", tt.oid)
			if ok != tt.wantOK {
				t.Fatalf("Get ok = %v, want %v (value %q)", ok, tt.wantOK, got)
			}
			if ok && got != tt.want {
				t.Errorf("Get = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProbeGetCancelledContext(t *testing.T) {
	withMockClient(t, &mockSNMPClient{
		packets: map[string]*gosnmp.SnmpPacket{"1.3.6.1.2.1.1.1.0": packetWith("1.3.6.1.2.1.1.1.0", gosnmp.OctetString, []byte("x"))},
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	probe := NewProbe(ProbeConfig{})
	if _, ok := probe.Get(ctx, "192.0.2.1", "1.3.6.1.2.1.1.1.0"); ok {
		t.Fatal("expected absent result after cancellation")
	}
}

func TestProbeWalkIndexed(t *testing.T) {
	base := "1.3.6.1.2.1.43.11.1.1.6.1"
	packets := map[string]*gosnmp.SnmpPacket{
		base + ".1": packetWith(base+".1", gosnmp.OctetString, []byte("Black Toner Cartridge")),
		base + ".2": packetWith(base+".2", gosnmp.OctetString, []byte("Drum Unit")),
		// index 3 missing; index 4 must never be reached
		base + ".4": packetWith(base+".4", gosnmp.OctetString, []byte("Fuser")),
	}
	withMockClient(t, &mockSNMPClient{packets: packets}, nil)

	probe := NewProbe(ProbeConfig{})
	rows := probe.WalkIndexed(context.Background(), "192.0.2.1", base, 9)

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2: %v", len(rows), rows)
	}
	if rows[0].Index != 1 || rows[0].Value != "Black Toner Cartridge" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Index != 2 || rows[1].Value != "Drum Unit" {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func TestProbeWalkIndexedHonorsMaxIndex(t *testing.T) {
	base := "1.3.6.1.2.1.43.11.1.1.6.1"
	packets := map[string]*gosnmp.SnmpPacket{}
	for i := 1; i <= 20; i++ {
		oid := fmt.Sprintf("%s.%d", base, i)
		packets[oid] = packetWith(oid, gosnmp.OctetString, []byte(fmt.Sprintf("Supply %d", i)))
	}
	withMockClient(t, &mockSNMPClient{packets: packets}, nil)

	probe := NewProbe(ProbeConfig{})
	rows := probe.WalkIndexed(context.Background(), "192.0.2.1", base, 5)
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want walk capped at 5", len(rows))
	}
}
