package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Lock-password request layout.
const (
	PasswordLen             = 16
	offPassword             = HeaderSize
	offChange               = offPassword + PasswordLen
	LockPasswordRequestSize = offChange + 4
)

// LockPasswordRequest is a view over a decoded 0x0FDE packet.
type LockPasswordRequest []byte

// AsLockPasswordRequest validates the length of pkt before returning a view.
func AsLockPasswordRequest(pkt []byte) (LockPasswordRequest, error) {
	if len(pkt) < LockPasswordRequestSize {
		return nil, fmt.Errorf("%w: code %s needs %d bytes, have %d",
			ErrShortPayload, CodeLockPasswordRequest, LockPasswordRequestSize, len(pkt))
	}
	return LockPasswordRequest(pkt[:LockPasswordRequestSize:LockPasswordRequestSize]), nil
}

func (m LockPasswordRequest) Header() Header { return Header(m[:HeaderSize:HeaderSize]) }

// Password returns the raw fixed-width field, NUL padding included.
func (m LockPasswordRequest) Password() []byte {
	return m[offPassword:offChange:offChange]
}

// PasswordBytes returns the field up to the first NUL.
func (m LockPasswordRequest) PasswordBytes() []byte {
	p := m.Password()
	if i := bytes.IndexByte(p, 0); i >= 0 {
		return p[:i]
	}
	return p
}

func (m LockPasswordRequest) Change() int32 {
	return int32(binary.LittleEndian.Uint32(m[offChange:]))
}

func (m LockPasswordRequest) SetPassword(pw []byte) error {
	if len(pw) > PasswordLen {
		return fmt.Errorf("%w: %d > %d", ErrPasswordTooLong, len(pw), PasswordLen)
	}
	field := m[offPassword:offChange]
	clear(field)
	copy(field, pw)
	return nil
}

func (m LockPasswordRequest) SetChange(v int32) {
	binary.LittleEndian.PutUint32(m[offChange:], uint32(v))
}

// NewLockPasswordRequest builds a plaintext lock-password packet. Size and
// Code in f are overwritten.
func NewLockPasswordRequest(f HeaderFields, password []byte, change int32) ([]byte, error) {
	f.Code = CodeLockPasswordRequest
	pkt, err := NewPacket(f, make([]byte, LockPasswordRequestSize-HeaderSize))
	if err != nil {
		return nil, err
	}
	m := LockPasswordRequest(pkt)
	if err := m.SetPassword(password); err != nil {
		return nil, err
	}
	m.SetChange(change)
	return pkt, nil
}
