package protocol

import (
	"encoding/binary"
	"fmt"
)

// Header layout, little-endian throughout.
const (
	HeaderSize = 12

	// CipherOffset is the first byte the packet cipher touches. Size, KeySeed
	// and Hash sit before it and are always readable.
	CipherOffset = 4

	offSize      = 0
	offKeySeed   = 2
	offHash      = 3
	offCode      = 4
	offIndex     = 6
	offTimestamp = 8
)

// MaxPacketSize is the largest size the u16 size field can declare.
const MaxPacketSize = 0xFFFF

// Header is a view over the first HeaderSize bytes of a packet.
type Header []byte

// HeaderFields is a detached copy of the header values.
type HeaderFields struct {
	Size      uint16
	KeySeed   byte
	Hash      byte
	Code      Code
	Index     int16
	Timestamp uint32
}

// ReadHeader returns a view over b's header bytes.
func ReadHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortHeader, len(b))
	}
	return Header(b[:HeaderSize:HeaderSize]), nil
}

func (h Header) Size() uint16      { return binary.LittleEndian.Uint16(h[offSize:]) }
func (h Header) KeySeed() byte     { return h[offKeySeed] }
func (h Header) Hash() byte        { return h[offHash] }
func (h Header) Code() Code        { return Code(binary.LittleEndian.Uint16(h[offCode:])) }
func (h Header) Index() int16      { return int16(binary.LittleEndian.Uint16(h[offIndex:])) }
func (h Header) Timestamp() uint32 { return binary.LittleEndian.Uint32(h[offTimestamp:]) }

func (h Header) SetSize(v uint16)      { binary.LittleEndian.PutUint16(h[offSize:], v) }
func (h Header) SetKeySeed(v byte)     { h[offKeySeed] = v }
func (h Header) SetHash(v byte)        { h[offHash] = v }
func (h Header) SetCode(v Code)        { binary.LittleEndian.PutUint16(h[offCode:], uint16(v)) }
func (h Header) SetIndex(v int16)      { binary.LittleEndian.PutUint16(h[offIndex:], uint16(v)) }
func (h Header) SetTimestamp(v uint32) { binary.LittleEndian.PutUint32(h[offTimestamp:], v) }

// Fields copies the header values out of the view.
func (h Header) Fields() HeaderFields {
	return HeaderFields{
		Size:      h.Size(),
		KeySeed:   h.KeySeed(),
		Hash:      h.Hash(),
		Code:      h.Code(),
		Index:     h.Index(),
		Timestamp: h.Timestamp(),
	}
}

// PutHeader writes f into the first HeaderSize bytes of b.
func PutHeader(b []byte, f HeaderFields) error {
	h, err := ReadHeader(b)
	if err != nil {
		return err
	}
	h.SetSize(f.Size)
	h.SetKeySeed(f.KeySeed)
	h.SetHash(f.Hash)
	h.SetCode(f.Code)
	h.SetIndex(f.Index)
	h.SetTimestamp(f.Timestamp)
	return nil
}

// NewPacket allocates a zeroed packet of total length HeaderSize+len(payload)
// with the header written and size set to the packet length.
func NewPacket(f HeaderFields, payload []byte) ([]byte, error) {
	total := HeaderSize + len(payload)
	if total > MaxPacketSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, total)
	}
	pkt := make([]byte, total)
	f.Size = uint16(total)
	if err := PutHeader(pkt, f); err != nil {
		return nil, err
	}
	copy(pkt[HeaderSize:], payload)
	return pkt, nil
}
