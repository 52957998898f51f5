package dispatch

import (
	"fmt"
	"strings"

	"github.com/danmuck/wydcodec/internal/protocol"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

const DefaultPasswordCharset = "windows-1252"

// LockPasswordEvent is what the lock-password handler reports per packet.
type LockPasswordEvent struct {
	Index     int16
	Timestamp uint32
	Password  string
	Change    int32
}

// LockPasswordHandler decodes 0x0FDE requests and reports them. It never
// mutates the packet.
type LockPasswordHandler struct {
	charset encoding.Encoding
	logger  zerolog.Logger
	sink    func(LockPasswordEvent)
}

// NewLockPasswordHandler resolves charset by its WHATWG name or alias. An
// empty charset selects DefaultPasswordCharset. sink may be nil.
func NewLockPasswordHandler(charset string, logger zerolog.Logger, sink func(LockPasswordEvent)) (*LockPasswordHandler, error) {
	charset = strings.TrimSpace(charset)
	if charset == "" {
		charset = DefaultPasswordCharset
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("dispatch: password charset %q: %w", charset, err)
	}
	return &LockPasswordHandler{charset: enc, logger: logger, sink: sink}, nil
}

func (h *LockPasswordHandler) Handle(pkt []byte) error {
	m, err := protocol.AsLockPasswordRequest(pkt)
	if err != nil {
		return err
	}
	password, err := h.charset.NewDecoder().Bytes(m.PasswordBytes())
	if err != nil {
		return fmt.Errorf("decode password: %w", err)
	}
	ev := LockPasswordEvent{
		Index:     m.Header().Index(),
		Timestamp: m.Header().Timestamp(),
		Password:  string(password),
		Change:    m.Change(),
	}
	h.logger.Info().
		Str("code", protocol.CodeLockPasswordRequest.Hex()).
		Int16("index", ev.Index).
		Str("password", ev.Password).
		Int32("change", ev.Change).
		Msg("lock password request")
	if h.sink != nil {
		h.sink(ev)
	}
	return nil
}

// NewDefault returns a dispatcher with every known payload route registered.
func NewDefault(lock *LockPasswordHandler) (*Dispatcher, error) {
	d := New()
	if err := d.Register(protocol.CodeLockPasswordRequest, protocol.LockPasswordRequestSize, lock); err != nil {
		return nil, err
	}
	return d, nil
}
