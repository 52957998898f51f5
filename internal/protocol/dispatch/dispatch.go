package dispatch

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/danmuck/wydcodec/internal/protocol"
)

var (
	ErrHandlerExists  = errors.New("dispatch: handler already registered")
	ErrNilHandler     = errors.New("dispatch: handler is nil")
	ErrInvalidMinSize = errors.New("dispatch: min size smaller than header")
)

// Handler consumes one decoded packet. pkt is only valid for the call.
type Handler interface {
	Handle(pkt []byte) error
}

type HandlerFunc func(pkt []byte) error

func (f HandlerFunc) Handle(pkt []byte) error { return f(pkt) }

// Outcome reports what Dispatch did with a packet.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeHandled
	OutcomeShortHeader
	OutcomeUnrecognized
	OutcomeShortPayload
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeHandled:
		return "handled"
	case OutcomeShortHeader:
		return "short_header"
	case OutcomeUnrecognized:
		return "unrecognized"
	case OutcomeShortPayload:
		return "short_payload"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Route binds a code to its handler and the packet length it needs.
type Route struct {
	Code    protocol.Code
	MinSize int
	Handler Handler
}

// Dispatcher stores routes by code.
type Dispatcher struct {
	mu     sync.RWMutex
	routes map[protocol.Code]Route
}

func New() *Dispatcher {
	return &Dispatcher{routes: make(map[protocol.Code]Route)}
}

// Register adds a route. minSize must cover at least the header.
func (d *Dispatcher) Register(code protocol.Code, minSize int, h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	if minSize < protocol.HeaderSize {
		return fmt.Errorf("%w: %d < %d", ErrInvalidMinSize, minSize, protocol.HeaderSize)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.routes[code]; ok {
		return fmt.Errorf("%w: %s", ErrHandlerExists, code)
	}
	d.routes[code] = Route{Code: code, MinSize: minSize, Handler: h}
	return nil
}

func (d *Dispatcher) Resolve(code protocol.Code) (Route, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.routes[code]
	return r, ok
}

// Codes returns registered codes in ascending order.
func (d *Dispatcher) Codes() []protocol.Code {
	d.mu.RLock()
	defer d.mu.RUnlock()
	codes := make([]protocol.Code, 0, len(d.routes))
	for c := range d.routes {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}

// Dispatch inspects a decoded packet and runs the handler for its code.
// It must only be called after the packet has been decrypted.
func (d *Dispatcher) Dispatch(pkt []byte) (Outcome, error) {
	h, err := protocol.ReadHeader(pkt)
	if err != nil {
		return OutcomeShortHeader, nil
	}
	route, ok := d.Resolve(h.Code())
	if !ok {
		return OutcomeUnrecognized, nil
	}
	if len(pkt) < route.MinSize {
		return OutcomeShortPayload, nil
	}
	if err := route.Handler.Handle(pkt); err != nil {
		return OutcomeHandled, fmt.Errorf("dispatch: %s handler: %w", route.Code, err)
	}
	return OutcomeHandled, nil
}
