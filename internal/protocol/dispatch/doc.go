// Package dispatch routes decoded packets to typed payload handlers.
//
// Ownership boundary:
// - code -> handler routing with a minimum packet size per code
// - the lock-password request handler
//
// Structural anomalies (short header, unknown code, short payload) are
// reported as an Outcome and never as an error. Only a handler's own failure
// is returned to the caller.
package dispatch
