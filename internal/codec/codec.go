// Package codec runs a full encode or decode pass over a packet buffer.
//
// A pass walks the buffer with the framer, transforms each complete packet
// in place and, when decoding, dispatches the plaintext packet. The caller
// must hold the only reference to the buffer for the duration of a pass.
// Cancellation is observed between packets, never inside one.
package codec

import (
	"context"
	"errors"

	"github.com/danmuck/wydcodec/internal/crypt"
	"github.com/danmuck/wydcodec/internal/observability"
	"github.com/danmuck/wydcodec/internal/protocol"
	"github.com/danmuck/wydcodec/internal/protocol/dispatch"
	"github.com/danmuck/wydcodec/internal/protocol/frame"
	"github.com/rs/zerolog"
)

// Options tune a Codec.
type Options struct {
	// Strict returns the incomplete-frame error for trailing bytes instead
	// of only recording it in Result.Tail.
	Strict bool
	Logger zerolog.Logger
}

type Codec struct {
	engine     *crypt.Engine
	dispatcher *dispatch.Dispatcher
	opts       Options
}

// New builds a Codec. d may be nil to skip dispatch on decode.
func New(engine *crypt.Engine, d *dispatch.Dispatcher, opts Options) *Codec {
	return &Codec{engine: engine, dispatcher: d, opts: opts}
}

// Packet summarizes one transformed packet.
type Packet struct {
	frame.Span
	// Header holds plaintext header values: read after decrypting, or
	// before encrypting.
	Header    protocol.HeaderFields
	SumBefore byte
	SumAfter  byte
	Outcome   dispatch.Outcome
	Err       error
}

// Result is the outcome of one pass.
type Result struct {
	Direction crypt.Direction
	Packets   []Packet
	// Tail is set when trailing bytes were left untouched.
	Tail *frame.IncompleteFrameError
	// Out is an owned copy of the buffer after the pass.
	Out []byte
}

// Handled counts packets whose handler ran.
func (r Result) Handled() int {
	n := 0
	for _, p := range r.Packets {
		if p.Outcome == dispatch.OutcomeHandled {
			n++
		}
	}
	return n
}

func (c *Codec) Decode(ctx context.Context, buf []byte) (Result, error) {
	return c.run(ctx, crypt.Decrypt, buf)
}

func (c *Codec) Encode(ctx context.Context, buf []byte) (Result, error) {
	return c.run(ctx, crypt.Encrypt, buf)
}

func (c *Codec) run(ctx context.Context, dir crypt.Direction, buf []byte) (Result, error) {
	res := Result{Direction: dir}
	logger := c.opts.Logger.With().Str("direction", dir.String()).Logger()

	s := frame.NewScanner(buf)
	for s.Scan() {
		if err := ctx.Err(); err != nil {
			res.Out = clone(buf)
			return res, err
		}
		res.Packets = append(res.Packets, c.packet(dir, s.Span(), buf, logger))
	}

	if err := s.Err(); err != nil {
		var inc *frame.IncompleteFrameError
		if errors.As(err, &inc) {
			res.Tail = inc
			observability.RecordIncompleteFrame(dir.String(), inc.Reason.String())
			logger.Warn().
				Int("offset", inc.Offset).
				Int("declared", inc.Declared).
				Int("available", inc.Available).
				Str("reason", inc.Reason.String()).
				Msg("trailing bytes left untouched")
		}
		if c.opts.Strict {
			res.Out = clone(buf)
			return res, err
		}
	}

	logger.Debug().Int("packets", len(res.Packets)).Int("bytes", len(buf)).Msg("pass complete")
	res.Out = clone(buf)
	return res, nil
}

func (c *Codec) packet(dir crypt.Direction, sp frame.Span, buf []byte, logger zerolog.Logger) Packet {
	pkt := sp.Bytes(buf)
	p := Packet{Span: sp}
	h := protocol.Header(pkt[:protocol.HeaderSize])

	if dir == crypt.Encrypt {
		p.Header = h.Fields()
	}
	p.SumBefore, p.SumAfter = c.engine.TransformWithSums(dir, pkt)
	observability.RecordPacket(dir.String(), sp.Size)
	if dir == crypt.Encrypt {
		return p
	}

	// Header views over the decrypted bytes are only valid from here on.
	p.Header = h.Fields()
	if c.dispatcher == nil {
		return p
	}
	p.Outcome, p.Err = c.dispatcher.Dispatch(pkt)
	observability.RecordDispatch(p.Header.Code.Hex(), p.Outcome.String(), p.Err == nil)
	if p.Err != nil {
		logger.Warn().Err(p.Err).Int("offset", sp.Offset).Str("code", p.Header.Code.Hex()).Msg("handler failed")
	}
	return p
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
