// Package types holds the few scalar types shared across every layer of
// the forwarder (name, wire, face, table, fw) so that none of those
// packages need to import each other just to share a type alias.
package types

// Tick is a monotonic logical time unit, counted since process start. All
// expiry, lifetime, and recommended-cache-time fields are expressed in
// ticks so that forwarding logic never depends on wall-clock time.
type Tick uint64

// ConnId identifies a Connection in the connection table.
type ConnId uint64
