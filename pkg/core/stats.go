package core

import "sync/atomic"

// Stats holds the forwarder-wide counters referenced throughout spec.md 7
// (drop counters per error kind) and 4.7 (eviction counters). All fields
// are atomic so background housekeeping (e.g. a stats exporter) can read
// them without coordinating with the single reactor thread that increments
// them using "x.Add(1)" from within its own goroutine only.
type Stats struct {
	MalformedPacket    atomic.Int64
	HopLimitExceeded   atomic.Int64
	NoRouteMatched     atomic.Int64
	PitFull            atomic.Int64
	UnsolicitedContent atomic.Int64
	SendWouldBlock     atomic.Int64

	CsHits      atomic.Int64
	CsMisses    atomic.Int64
	CsInserts   atomic.Int64
	EvictExpiry atomic.Int64
	EvictRCT    atomic.Int64
	EvictLRU    atomic.Int64
}

// Global is the process-wide stats instance, mirroring core.Log's
// package-level-singleton idiom.
var Global = &Stats{}
