// Package crypt implements the keyed per-packet byte transform.
//
// The transform is a reversible add/subtract mix, not a cipher in any
// cryptographic sense. Bytes before protocol.CipherOffset (size, key seed,
// hash) are never written.
package crypt

import (
	"github.com/danmuck/wydcodec/internal/keytable"
	"github.com/danmuck/wydcodec/internal/protocol"
)

// Direction selects the transform applied to a packet.
type Direction int

const (
	Encrypt Direction = iota
	Decrypt
)

func (d Direction) String() string {
	if d == Decrypt {
		return "decrypt"
	}
	return "encrypt"
}

// Engine is safe for concurrent use on distinct buffers.
type Engine struct {
	keys *keytable.Table
}

func New(keys *keytable.Table) *Engine {
	return &Engine{keys: keys}
}

func (e *Engine) Keys() *keytable.Table { return e.keys }

// EncryptPacket transforms pkt[4:] in place. pkt must be exactly one packet;
// packets shorter than the cipher offset are left unchanged.
func (e *Engine) EncryptPacket(pkt []byte) {
	e.Transform(Encrypt, pkt)
}

// DecryptPacket reverses EncryptPacket.
func (e *Engine) DecryptPacket(pkt []byte) {
	e.Transform(Decrypt, pkt)
}

// Transform applies dir to pkt in place.
func (e *Engine) Transform(dir Direction, pkt []byte) {
	if len(pkt) <= protocol.CipherOffset {
		return
	}
	counter := e.keys.Seed(pkt[2])
	for j := protocol.CipherOffset; j < len(pkt); j++ {
		k := key(e.keys.Mapped(counter), j)
		if (j&1 == 0) == (dir == Encrypt) {
			pkt[j] += k
		} else {
			pkt[j] -= k
		}
		counter++
	}
}

// TransformWithSums applies dir and reports the 8-bit sum of the transformed
// region before and after.
func (e *Engine) TransformWithSums(dir Direction, pkt []byte) (before, after byte) {
	before = Checksum(pkt)
	e.Transform(dir, pkt)
	after = Checksum(pkt)
	return before, after
}

// key derives the byte added or subtracted at packet offset j. Even offsets
// are added on encrypt, odd offsets subtracted.
func key(mapped byte, j int) byte {
	switch j & 3 {
	case 0:
		return mapped << 1
	case 1:
		return mapped >> 3
	case 2:
		return mapped << 2
	default:
		return mapped >> 5
	}
}

// Checksum is the 8-bit sum of pkt[4:].
func Checksum(pkt []byte) byte {
	var sum byte
	for j := protocol.CipherOffset; j < len(pkt); j++ {
		sum += pkt[j]
	}
	return sum
}
