// Package dump renders decoded packets as a human readable text report.
package dump

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/wydcodec/internal/capture"
	"github.com/danmuck/wydcodec/internal/codec"
	"github.com/danmuck/wydcodec/internal/protocol/dispatch"
)

const timeLayout = "2006-01-02 15:04:05"

// Line renders the summary line of a packet. seg is used when ok is true.
func Line(p codec.Packet, seg capture.Segment, ok bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d/%04X] %s idx=%d", p.Size, p.Size, p.Header.Code.Hex(), p.Header.Index)
	if ok {
		fmt.Fprintf(&b, " %s : %s > %s", seg.Time.UTC().Format(timeLayout), seg.Src, seg.Dst)
	} else {
		fmt.Fprintf(&b, " @%d", p.Offset)
	}
	if p.Outcome != dispatch.OutcomeNone {
		fmt.Fprintf(&b, " (%s)", p.Outcome)
	}
	return b.String()
}

// Write renders every packet of res followed by a hex dump of its bytes in
// res.Out. s may be nil when the buffer did not come from a capture.
func Write(w io.Writer, res codec.Result, s *capture.Stream) error {
	for i, p := range res.Packets {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		var (
			seg capture.Segment
			ok  bool
		)
		if s != nil {
			seg, ok = s.SegmentAt(p.Offset)
		}
		if _, err := fmt.Fprintf(w, "%s\n%s", Line(p, seg, ok), hex.Dump(p.Span.Bytes(res.Out))); err != nil {
			return err
		}
	}
	if res.Tail != nil {
		if _, err := fmt.Fprintf(w, "\n# %v\n", res.Tail); err != nil {
			return err
		}
	}
	return nil
}
