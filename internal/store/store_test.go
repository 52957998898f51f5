package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/wydcodec/internal/codec"
	"github.com/danmuck/wydcodec/internal/crypt"
	"github.com/danmuck/wydcodec/internal/keytable"
	"github.com/danmuck/wydcodec/internal/protocol"
	"github.com/danmuck/wydcodec/internal/protocol/dispatch"
	"github.com/danmuck/wydcodec/internal/testutil/fixtures"
	"github.com/danmuck/wydcodec/internal/testutil/testlog"
	"github.com/rs/zerolog"
)

func decodeFixture(t *testing.T, buf []byte) (codec.Result, *keytable.Table) {
	t.Helper()
	keys, err := keytable.New(fixtures.KeyTable())
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	h, err := dispatch.NewLockPasswordHandler("", zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	d, err := dispatch.NewDefault(h)
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	res, err := codec.New(crypt.New(keys), d, codec.Options{}).Decode(context.Background(), buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return res, keys
}

func TestOpenMemory(t *testing.T) {
	testlog.Start(t)
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Fatal(err)
	}
}

func TestRecordRunAndQuery(t *testing.T) {
	testlog.Start(t)
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	res, keys := decodeFixture(t, fixtures.Ciphertext())
	runID, err := db.RecordRun("capture.pcap", keys.Fingerprint(), res)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	run, err := db.RunByID(runID)
	if err != nil || run == nil {
		t.Fatalf("RunByID: %v %v", run, err)
	}
	if run.Source != "capture.pcap" || run.Direction != "decrypt" || run.KeyFingerprint != keys.Fingerprint() {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.TailOffset.Valid {
		t.Fatalf("clean run must not record a tail")
	}

	rows, err := db.RunPackets(runID)
	if err != nil {
		t.Fatalf("RunPackets: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%d", len(rows))
	}
	if rows[0].Header != res.Packets[0].Header || rows[0].Outcome != "handled" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if !bytes.Equal(rows[0].Data, fixtures.Plaintext()[:32]) || !bytes.Equal(rows[1].Data, fixtures.Plaintext()[32:]) {
		t.Fatalf("packet bytes not stored")
	}

	locks, err := db.PacketsByCode(protocol.CodeLockPasswordRequest)
	if err != nil {
		t.Fatalf("PacketsByCode: %v", err)
	}
	if len(locks) != 1 || locks[0].Seq != 0 {
		t.Fatalf("unexpected lock rows: %+v", locks)
	}
}

func TestRecordRunWithTail(t *testing.T) {
	testlog.Start(t)
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	res, keys := decodeFixture(t, append(fixtures.Ciphertext(), 0x40, 0x00, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
	runID, err := db.RecordRun("tail.bin", keys.Fingerprint(), res)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	run, err := db.RunByID(runID)
	if err != nil || run == nil {
		t.Fatalf("RunByID: %v %v", run, err)
	}
	if !run.TailOffset.Valid || run.TailOffset.Int64 != 44 || run.TailReason.String != "truncated" {
		t.Fatalf("unexpected tail: %+v", run)
	}
}

func TestRunByIDMissing(t *testing.T) {
	testlog.Start(t)
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	run, err := db.RunByID(99)
	if err != nil || run != nil {
		t.Fatalf("expected nil run, got %+v %v", run, err)
	}
}

func TestRunByIDCorruptCreatedAt(t *testing.T) {
	testlog.Start(t)
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	res, keys := decodeFixture(t, fixtures.Ciphertext())
	runID, err := db.RecordRun("capture.pcap", keys.Fingerprint(), res)
	if err != nil {
		t.Fatalf("record run: %v", err)
	}
	if _, err := db.Exec("UPDATE runs SET created_at = ? WHERE id = ?", "yesterday", runID); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}
	run, err := db.RunByID(runID)
	if err == nil {
		t.Fatalf("expected created_at parse error, got %+v", run)
	}
	var perr *time.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected wrapped *time.ParseError, got %v", err)
	}
	if !strings.Contains(err.Error(), "created_at") {
		t.Fatalf("error does not name the column: %v", err)
	}
}
