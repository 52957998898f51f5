package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/wydcodec/internal/testutil/fixtures"
	"github.com/danmuck/wydcodec/internal/testutil/testlog"
)

func TestReadHeaderFixture(t *testing.T) {
	testlog.Start(t)
	plain := fixtures.Plaintext()
	h, err := ReadHeader(plain)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	want := HeaderFields{
		Size:      32,
		KeySeed:   0xBB,
		Hash:      0x58,
		Code:      CodeLockPasswordRequest,
		Index:     0,
		Timestamp: 0x95B978C1,
	}
	if got := h.Fields(); got != want {
		t.Fatalf("header mismatch: got=%+v want=%+v", got, want)
	}

	second, err := ReadHeader(plain[32:])
	if err != nil {
		t.Fatalf("read second header: %v", err)
	}
	if second.Size() != 12 || second.KeySeed() != 0x11 || second.Hash() != 0xCC {
		t.Fatalf("second header mismatch: %+v", second.Fields())
	}
	if second.Code() != 0x0FDF {
		t.Fatalf("unexpected second code: %s", second.Code())
	}
}

func TestReadHeaderShort(t *testing.T) {
	testlog.Start(t)
	_, err := ReadHeader(make([]byte, HeaderSize-1))
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestHeaderIsView(t *testing.T) {
	testlog.Start(t)
	buf := make([]byte, 20)
	h, err := ReadHeader(buf)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	h.SetCode(0x1234)
	h.SetIndex(-2)
	h.SetTimestamp(0xDEADBEEF)
	if !bytes.Equal(buf[4:12], []byte{0x34, 0x12, 0xFE, 0xFF, 0xEF, 0xBE, 0xAD, 0xDE}) {
		t.Fatalf("setters did not write through: % X", buf[:12])
	}
	if h.Index() != -2 {
		t.Fatalf("index sign lost: %d", h.Index())
	}
	if len(h) != HeaderSize || cap(h) != HeaderSize {
		t.Fatalf("header view must be capped at %d bytes", HeaderSize)
	}
}

func TestNewPacketSetsSize(t *testing.T) {
	testlog.Start(t)
	pkt, err := NewPacket(HeaderFields{Size: 999, KeySeed: 7, Code: 0x0101}, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("new packet: %v", err)
	}
	h, _ := ReadHeader(pkt)
	if int(h.Size()) != len(pkt) || len(pkt) != 15 {
		t.Fatalf("size=%d len=%d", h.Size(), len(pkt))
	}
	if !bytes.Equal(pkt[12:], []byte{1, 2, 3}) {
		t.Fatalf("payload not copied")
	}
}

func TestNewPacketTooLarge(t *testing.T) {
	testlog.Start(t)
	_, err := NewPacket(HeaderFields{}, make([]byte, MaxPacketSize))
	if !errors.Is(err, ErrPacketTooLarge) {
		t.Fatalf("expected ErrPacketTooLarge, got %v", err)
	}
}

func TestLockPasswordRequestFixture(t *testing.T) {
	testlog.Start(t)
	m, err := AsLockPasswordRequest(fixtures.Plaintext())
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if string(m.PasswordBytes()) != "0249" {
		t.Fatalf("unexpected password: %q", m.PasswordBytes())
	}
	if len(m.Password()) != PasswordLen {
		t.Fatalf("raw password field length %d", len(m.Password()))
	}
	if m.Change() != 0 {
		t.Fatalf("unexpected change flag: %d", m.Change())
	}
	if m.Header().Code() != CodeLockPasswordRequest {
		t.Fatalf("unexpected code: %s", m.Header().Code())
	}
}

func TestLockPasswordRequestShort(t *testing.T) {
	testlog.Start(t)
	for _, n := range []int{0, HeaderSize, LockPasswordRequestSize - 1} {
		if _, err := AsLockPasswordRequest(make([]byte, n)); !errors.Is(err, ErrShortPayload) {
			t.Fatalf("len=%d: expected ErrShortPayload, got %v", n, err)
		}
	}
}

func TestNewLockPasswordRequestMatchesFixture(t *testing.T) {
	testlog.Start(t)
	f := HeaderFields{KeySeed: 0xBB, Hash: 0x58, Timestamp: 0x95B978C1}
	pkt, err := NewLockPasswordRequest(f, []byte("0249"), 0)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.Equal(pkt, fixtures.Plaintext()[:LockPasswordRequestSize]) {
		t.Fatalf("built packet differs from fixture:\n got % X\nwant % X", pkt, fixtures.Plaintext()[:32])
	}
}

func TestNewLockPasswordRequestRejectsLongPassword(t *testing.T) {
	testlog.Start(t)
	_, err := NewLockPasswordRequest(HeaderFields{}, bytes.Repeat([]byte("x"), PasswordLen+1), 1)
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestCodeString(t *testing.T) {
	testlog.Start(t)
	if CodeLockPasswordRequest.String() != "LockPasswordRequest" {
		t.Fatalf("unexpected name: %s", CodeLockPasswordRequest)
	}
	if Code(0x0FDF).String() != "0x0FDF" {
		t.Fatalf("unexpected unknown code render: %s", Code(0x0FDF))
	}
	if Code(-1).Hex() != "0xFFFF" {
		t.Fatalf("unexpected hex render: %s", Code(-1).Hex())
	}
}
