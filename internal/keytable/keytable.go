// Package keytable owns the shared 512-byte key table.
//
// Ownership boundary:
// - loading the table from a file or reader
// - bounded seed/mapped lookups used by the packet cipher
//
// A Table is never mutated after load and may be shared by any number of
// concurrent packet passes.
package keytable

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// Size is the exact number of bytes a key table holds.
const Size = 512

var ErrShortTable = errors.New("keytable: short key table")

// Table is the immutable key table.
type Table [Size]byte

// New copies the first Size bytes of b into a Table.
func New(b []byte) (*Table, error) {
	if len(b) < Size {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrShortTable, len(b), Size)
	}
	var t Table
	copy(t[:], b[:Size])
	return &t, nil
}

// Load reads exactly Size bytes from r. Trailing bytes are left unread.
func Load(r io.Reader) (*Table, error) {
	var t Table
	n, err := io.ReadFull(r, t[:])
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrShortTable, n, Size)
		}
		return nil, fmt.Errorf("keytable: read: %w", err)
	}
	return &t, nil
}

func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("keytable: open %s: %w", path, err)
	}
	defer f.Close()
	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Seed returns the initial key counter for a packet key seed.
func (t *Table) Seed(keySeed byte) byte {
	return t[int(keySeed)<<1]
}

// Mapped returns the key byte selected by the running counter.
func (t *Table) Mapped(counter byte) byte {
	return t[(int(counter)<<1)+1]
}

// Fingerprint identifies a table in logs without printing its contents.
func (t *Table) Fingerprint() string {
	sum := blake2b.Sum256(t[:])
	return hex.EncodeToString(sum[:8])
}
