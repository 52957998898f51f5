package protocol

import "fmt"

// Code is the message type tag carried at header offset 4.
type Code int16

const (
	CodeLockPasswordRequest Code = 0x0FDE
)

var codeNames = map[Code]string{
	CodeLockPasswordRequest: "LockPasswordRequest",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", uint16(c))
}

// Hex renders the code as the four hex digits used in packet dumps.
func (c Code) Hex() string {
	return fmt.Sprintf("0x%04X", uint16(c))
}
