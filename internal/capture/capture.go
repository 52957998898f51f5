// Package capture extracts game traffic from offline pcap and pcapng files.
//
// TCP payloads to or from the game port are concatenated in capture order so
// the framer can walk them as one buffer. Segment boundaries are kept so a
// packet can be traced back to the capture record it started in.
package capture

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/danmuck/wydcodec/internal/protocol"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// DefaultPort is the game server TCP port.
const DefaultPort uint16 = 8281

var ErrUnknownFormat = errors.New("capture: unknown capture format")

var pcapngMagic = []byte{0x0A, 0x0D, 0x0D, 0x0A}

// Segment is one captured TCP payload inside Stream.Data.
type Segment struct {
	Offset int
	Len    int
	Time   time.Time
	Src    string
	Dst    string
}

func (s Segment) End() int { return s.Offset + s.Len }

// Stream is the concatenated game payload of a capture.
type Stream struct {
	Data     []byte
	Segments []Segment
	// Records is the number of capture records read, matching or not.
	Records int
}

// SegmentAt returns the segment containing offset.
func (s *Stream) SegmentAt(offset int) (Segment, bool) {
	i := sort.Search(len(s.Segments), func(i int) bool {
		return s.Segments[i].End() > offset
	})
	if i == len(s.Segments) || s.Segments[i].Offset > offset {
		return Segment{}, false
	}
	return s.Segments[i], true
}

type packetSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

func ReadFile(path string, port uint16) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("capture: open %s: %w", path, err)
	}
	defer f.Close()
	s, err := Read(f, port)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read detects pcap or pcapng from the leading magic and extracts the TCP
// payloads whose source or destination port equals port.
func Read(r io.Reader, port uint16) (*Stream, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}

	var src packetSource
	if bytes.Equal(magic, pcapngMagic) {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("capture: pcapng: %w", err)
		}
		src = ng
	} else {
		pr, err := pcapgo.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
		}
		src = pr
	}
	return collect(src, port)
}

func collect(src packetSource, port uint16) (*Stream, error) {
	s := &Stream{}
	decode := gopacket.DecodeOptions{Lazy: true, NoCopy: true}
	for {
		data, ci, err := src.ReadPacketData()
		if errors.Is(err, io.EOF) {
			return s, nil
		}
		if err != nil {
			return s, fmt.Errorf("capture: record %d: %w", s.Records, err)
		}
		s.Records++

		pkt := gopacket.NewPacket(data, src.LinkType(), decode)
		tcp, ok := pkt.Layer(layers.LayerTypeTCP).(*layers.TCP)
		if !ok {
			continue
		}
		if uint16(tcp.SrcPort) != port && uint16(tcp.DstPort) != port {
			continue
		}
		if len(tcp.Payload) < protocol.HeaderSize {
			continue
		}

		seg := Segment{Offset: len(s.Data), Len: len(tcp.Payload), Time: ci.Timestamp}
		if nl := pkt.NetworkLayer(); nl != nil {
			flow := nl.NetworkFlow()
			seg.Src = hostPort(flow.Src().String(), uint16(tcp.SrcPort))
			seg.Dst = hostPort(flow.Dst().String(), uint16(tcp.DstPort))
		}
		s.Data = append(s.Data, tcp.Payload...)
		s.Segments = append(s.Segments, seg)
	}
}

func hostPort(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}
