// Package store keeps a sqlite log of codec runs and the packets they saw.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/wydcodec/internal/codec"
	"github.com/danmuck/wydcodec/internal/protocol"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sqlite packet log.
type DB struct {
	*sql.DB
}

// Open opens db at path, runs migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			direction TEXT NOT NULL,
			key_fingerprint TEXT NOT NULL,
			tail_offset INTEGER,
			tail_reason TEXT,
			created_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS packets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			buf_offset INTEGER NOT NULL,
			size INTEGER NOT NULL,
			key_seed INTEGER NOT NULL,
			hash INTEGER NOT NULL,
			code INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			timestamp INTEGER NOT NULL,
			sum_before INTEGER NOT NULL,
			sum_after INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			data BLOB NOT NULL,
			UNIQUE(run_id, seq)
		);
		CREATE INDEX IF NOT EXISTS idx_packets_code ON packets(code);
	`)
	return err
}

// Run is one recorded codec pass.
type Run struct {
	ID             int64
	Source         string
	Direction      string
	KeyFingerprint string
	TailOffset     sql.NullInt64
	TailReason     sql.NullString
	CreatedAt      time.Time
}

// PacketRow is one recorded packet.
type PacketRow struct {
	RunID     int64
	Seq       int
	Offset    int
	Header    protocol.HeaderFields
	SumBefore byte
	SumAfter  byte
	Outcome   string
	Data      []byte
}

// RecordRun stores res and the bytes of each packet from res.Out in one
// transaction and returns the run id.
func (db *DB) RecordRun(source, keyFingerprint string, res codec.Result) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var tailOffset sql.NullInt64
	var tailReason sql.NullString
	if res.Tail != nil {
		tailOffset = sql.NullInt64{Int64: int64(res.Tail.Offset), Valid: true}
		tailReason = sql.NullString{String: res.Tail.Reason.String(), Valid: true}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	r, err := tx.Exec(
		"INSERT INTO runs (source, direction, key_fingerprint, tail_offset, tail_reason, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		source, res.Direction.String(), keyFingerprint, tailOffset, tailReason, now)
	if err != nil {
		return 0, fmt.Errorf("store: insert run: %w", err)
	}
	runID, err := r.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO packets
		(run_id, seq, buf_offset, size, key_seed, hash, code, idx, timestamp, sum_before, sum_after, outcome, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for i, p := range res.Packets {
		h := p.Header
		_, err := stmt.Exec(runID, i, p.Offset, p.Size, h.KeySeed, h.Hash, int64(h.Code), int64(h.Index), int64(h.Timestamp),
			p.SumBefore, p.SumAfter, p.Outcome.String(), p.Span.Bytes(res.Out))
		if err != nil {
			return 0, fmt.Errorf("store: insert packet %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// RunByID returns the run or nil.
func (db *DB) RunByID(id int64) (*Run, error) {
	var r Run
	var t string
	err := db.QueryRow("SELECT id, source, direction, key_fingerprint, tail_offset, tail_reason, created_at FROM runs WHERE id = ?", id).
		Scan(&r.ID, &r.Source, &r.Direction, &r.KeyFingerprint, &r.TailOffset, &r.TailReason, &t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.CreatedAt, err = time.Parse(time.RFC3339, t)
	if err != nil {
		return nil, fmt.Errorf("store: run %d created_at: %w", id, err)
	}
	return &r, nil
}

const packetColumns = "run_id, seq, buf_offset, size, key_seed, hash, code, idx, timestamp, sum_before, sum_after, outcome, data"

// RunPackets lists the packets of a run in buffer order.
func (db *DB) RunPackets(runID int64) ([]PacketRow, error) {
	return db.queryPackets("SELECT "+packetColumns+" FROM packets WHERE run_id = ? ORDER BY seq", runID)
}

// PacketsByCode lists packets of every run carrying code.
func (db *DB) PacketsByCode(code protocol.Code) ([]PacketRow, error) {
	return db.queryPackets("SELECT "+packetColumns+" FROM packets WHERE code = ? ORDER BY run_id, seq", int64(code))
}

func (db *DB) queryPackets(query string, args ...any) ([]PacketRow, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []PacketRow
	for rows.Next() {
		var p PacketRow
		var size, code, idx, ts int64
		if err := rows.Scan(&p.RunID, &p.Seq, &p.Offset, &size, &p.Header.KeySeed, &p.Header.Hash,
			&code, &idx, &ts, &p.SumBefore, &p.SumAfter, &p.Outcome, &p.Data); err != nil {
			return nil, err
		}
		p.Header.Size = uint16(size)
		p.Header.Code = protocol.Code(code)
		p.Header.Index = int16(idx)
		p.Header.Timestamp = uint32(ts)
		list = append(list, p)
	}
	return list, rows.Err()
}
