// Package protocol owns the packet wire contract.
//
// Ownership boundary:
// - 12-byte header view and field offsets
// - message codes
// - fixed-layout payload views
//
// Views read and write explicit little-endian offsets over the caller's
// buffer. Nothing here copies or reinterprets memory, and nothing here knows
// about the cipher: Code, Index and Timestamp only make sense on a decoded
// packet.
package protocol
