package capture

import (
	"bytes"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/wydcodec/internal/testutil/fixtures"
	"github.com/danmuck/wydcodec/internal/testutil/testlog"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

type record struct {
	srcPort uint16
	dstPort uint16
	payload []byte
	udp     bool
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func writePcap(t *testing.T, records []record) []byte {
	t.Helper()
	var out bytes.Buffer
	w := pcapgo.NewWriter(&out)
	if err := w.WriteFileHeader(65535, layers.LinkTypeEthernet); err != nil {
		t.Fatalf("file header: %v", err)
	}
	for i, r := range records {
		eth := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
			DstMAC:       net.HardwareAddr{6, 7, 8, 9, 10, 11},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ip := &layers.IPv4{
			Version: 4,
			IHL:     5,
			TTL:     64,
			SrcIP:   net.IP{10, 0, 0, 1},
			DstIP:   net.IP{10, 0, 0, 2},
		}
		var transport gopacket.SerializableLayer
		if r.udp {
			ip.Protocol = layers.IPProtocolUDP
			udp := &layers.UDP{SrcPort: layers.UDPPort(r.srcPort), DstPort: layers.UDPPort(r.dstPort)}
			_ = udp.SetNetworkLayerForChecksum(ip)
			transport = udp
		} else {
			ip.Protocol = layers.IPProtocolTCP
			tcp := &layers.TCP{
				SrcPort: layers.TCPPort(r.srcPort),
				DstPort: layers.TCPPort(r.dstPort),
				Seq:     uint32(1000 + i),
				ACK:     true,
				PSH:     true,
				Window:  4096,
			}
			_ = tcp.SetNetworkLayerForChecksum(ip)
			transport = tcp
		}
		sb := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
		if err := gopacket.SerializeLayers(sb, opts, eth, ip, transport, gopacket.Payload(r.payload)); err != nil {
			t.Fatalf("serialize: %v", err)
		}
		data := sb.Bytes()
		ci := gopacket.CaptureInfo{
			Timestamp:     base.Add(time.Duration(i) * time.Second),
			CaptureLength: len(data),
			Length:        len(data),
		}
		if err := w.WritePacket(ci, data); err != nil {
			t.Fatalf("write packet: %v", err)
		}
	}
	return out.Bytes()
}

func TestReadFiltersGameTraffic(t *testing.T) {
	testlog.Start(t)
	cipher := fixtures.Ciphertext()
	raw := writePcap(t, []record{
		{srcPort: 50000, dstPort: DefaultPort, payload: cipher[:32]},
		{srcPort: 50000, dstPort: 80, payload: bytes.Repeat([]byte{0xEE}, 40)},
		{srcPort: 50000, dstPort: DefaultPort, payload: []byte{1, 2, 3}},
		{srcPort: 50000, dstPort: DefaultPort, payload: cipher[:12], udp: true},
		{srcPort: DefaultPort, dstPort: 50000, payload: cipher[32:]},
	})

	s, err := Read(bytes.NewReader(raw), DefaultPort)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if s.Records != 5 {
		t.Fatalf("records=%d", s.Records)
	}
	if !bytes.Equal(s.Data, cipher) {
		t.Fatalf("stream mismatch:\n got % X\nwant % X", s.Data, cipher)
	}
	if len(s.Segments) != 2 {
		t.Fatalf("segments=%+v", s.Segments)
	}
	first, second := s.Segments[0], s.Segments[1]
	if first.Offset != 0 || first.Len != 32 || first.Src != "10.0.0.1:50000" || first.Dst != "10.0.0.2:8281" {
		t.Fatalf("unexpected first segment: %+v", first)
	}
	if second.Offset != 32 || second.Len != 12 || second.Src != "10.0.0.1:8281" {
		t.Fatalf("unexpected second segment: %+v", second)
	}
	if !first.Time.Equal(base) || !second.Time.Equal(base.Add(4*time.Second)) {
		t.Fatalf("unexpected timestamps: %v %v", first.Time, second.Time)
	}
}

func TestSegmentAt(t *testing.T) {
	testlog.Start(t)
	s := &Stream{Segments: []Segment{{Offset: 0, Len: 32}, {Offset: 32, Len: 12}, {Offset: 44, Len: 100}}}
	cases := []struct {
		offset int
		want   int
		ok     bool
	}{
		{0, 0, true},
		{31, 0, true},
		{32, 32, true},
		{143, 44, true},
		{144, 0, false},
	}
	for _, tc := range cases {
		seg, ok := s.SegmentAt(tc.offset)
		if ok != tc.ok || (ok && seg.Offset != tc.want) {
			t.Fatalf("SegmentAt(%d) = %+v,%v", tc.offset, seg, ok)
		}
	}
}

func TestReadFileUnknownFormat(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "junk.pcap")
	if err := os.WriteFile(path, []byte("definitely not a capture"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadFile(path, DefaultPort); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestReadFileMissing(t *testing.T) {
	testlog.Start(t)
	if _, err := ReadFile(filepath.Join(t.TempDir(), "none.pcap"), DefaultPort); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}
