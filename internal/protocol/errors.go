package protocol

import "errors"

var (
	ErrShortHeader     = errors.New("protocol: short header")
	ErrShortPayload    = errors.New("protocol: short payload")
	ErrPasswordTooLong = errors.New("protocol: password exceeds field length")
	ErrPacketTooLarge  = errors.New("protocol: packet exceeds u16 size field")
)
