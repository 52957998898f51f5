package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"

	"github.com/danmuck/wydcodec/internal/protocol"
)

// MinPacketSize is the smallest packet the framer will yield.
const MinPacketSize = protocol.HeaderSize

var ErrIncompleteFrame = errors.New("frame: incomplete frame")

// Stop says why a walk ended.
type Stop int

const (
	StopNone Stop = iota
	// StopEnd: the buffer was consumed exactly.
	StopEnd
	// StopShortHeader: fewer than MinPacketSize bytes remain.
	StopShortHeader
	// StopTruncated: the declared size runs past the buffer end.
	StopTruncated
	// StopInvalidSize: the declared size cannot hold a header.
	StopInvalidSize
)

func (s Stop) String() string {
	switch s {
	case StopNone:
		return "none"
	case StopEnd:
		return "end"
	case StopShortHeader:
		return "short_header"
	case StopTruncated:
		return "truncated"
	case StopInvalidSize:
		return "invalid_size"
	default:
		return fmt.Sprintf("stop(%d)", int(s))
	}
}

// Span locates one packet inside a buffer.
type Span struct {
	Offset int
	Size   int
}

func (s Span) End() int { return s.Offset + s.Size }

// Bytes returns the packet bytes of s inside buf.
func (s Span) Bytes(buf []byte) []byte {
	return buf[s.Offset:s.End():s.End()]
}

// IncompleteFrameError describes the bytes a walk left untouched.
type IncompleteFrameError struct {
	Offset    int
	Declared  int
	Available int
	Reason    Stop
}

func (e *IncompleteFrameError) Error() string {
	if e.Reason == StopShortHeader {
		return fmt.Sprintf("frame: incomplete frame at offset %d: %d trailing bytes (%s)",
			e.Offset, e.Available, e.Reason)
	}
	return fmt.Sprintf("frame: incomplete frame at offset %d: declared %d, available %d (%s)",
		e.Offset, e.Declared, e.Available, e.Reason)
}

func (e *IncompleteFrameError) Unwrap() error { return ErrIncompleteFrame }

// Next performs one framing step at cursor. It returns StopNone together with
// a valid span, or a Stop reason and a zero span.
func Next(buf []byte, cursor int) (Span, Stop) {
	remaining := len(buf) - cursor
	if remaining <= 0 {
		return Span{}, StopEnd
	}
	if remaining < MinPacketSize {
		return Span{}, StopShortHeader
	}
	size := int(binary.LittleEndian.Uint16(buf[cursor:]))
	if size < MinPacketSize {
		return Span{}, StopInvalidSize
	}
	if remaining < size {
		return Span{}, StopTruncated
	}
	return Span{Offset: cursor, Size: size}, StopNone
}

// Walk yields every complete packet span of buf in order. Re-walking an
// unmodified buffer yields the same spans.
func Walk(buf []byte) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		s := NewScanner(buf)
		for s.Scan() {
			if !yield(s.Span()) {
				return
			}
		}
	}
}

// Spans collects Walk(buf).
func Spans(buf []byte) []Span {
	out := make([]Span, 0)
	for sp := range Walk(buf) {
		out = append(out, sp)
	}
	return out
}

// Scanner walks buf one packet at a time.
//
// The packet bytes of the current span may be transformed in place between
// calls to Scan as long as the first two bytes (the size field) are left
// alone.
type Scanner struct {
	buf    []byte
	cursor int
	span   Span
	stop   Stop
}

func NewScanner(buf []byte) *Scanner {
	return &Scanner{buf: buf}
}

func (s *Scanner) Scan() bool {
	if s.stop != StopNone {
		return false
	}
	sp, stop := Next(s.buf, s.cursor)
	if stop != StopNone {
		s.stop = stop
		s.span = Span{}
		return false
	}
	s.span = sp
	s.cursor = sp.End()
	return true
}

func (s *Scanner) Span() Span { return s.span }

// Cursor is the offset of the first byte not yet yielded.
func (s *Scanner) Cursor() int { return s.cursor }

// Stop reports why scanning ended; StopNone while scanning is in progress.
func (s *Scanner) Stop() Stop { return s.stop }

// Tail returns the unconsumed bytes after scanning stopped.
func (s *Scanner) Tail() []byte {
	return s.buf[s.cursor:]
}

// Err returns nil for a clean end and an *IncompleteFrameError when bytes
// were left behind.
func (s *Scanner) Err() error {
	switch s.stop {
	case StopNone, StopEnd:
		return nil
	}
	e := &IncompleteFrameError{
		Offset:    s.cursor,
		Available: len(s.buf) - s.cursor,
		Reason:    s.stop,
	}
	if e.Available >= 2 {
		e.Declared = int(binary.LittleEndian.Uint16(s.buf[s.cursor:]))
	}
	return e
}
