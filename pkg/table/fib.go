// Package table implements the FIB, strategy layer, PIT, and Content
// Store: the three indexed tables the single-threaded reactor consults on
// every packet, plus the strategy functions that pick an egress subset.
// None of these types lock internally; callers must only ever touch them
// from the reactor thread, per spec.md 5.
package table

import (
	"github.com/ccnfwd/ccnfwd/pkg/name"
	"github.com/ccnfwd/ccnfwd/pkg/types"
)

// FibNextHopEntry is one egress candidate for a FIB entry, grounded on
// fw/table/fib-strategy_test.go's FibNextHopEntry{Nexthop, Cost} shape.
type FibNextHopEntry struct {
	Nexthop types.ConnId
	Cost    uint64
}

// fibEntry is keyed by a Name prefix and holds its next-hop set plus the
// strategy tag that governs egress selection for it, grounded on
// fw/table/fib-strategy_test.go's baseFibStrategyEntry getters.
type fibEntry struct {
	prefix   *name.Name
	nexthops []*FibNextHopEntry
	strategy StrategyTag
}

func (e *fibEntry) Name() *name.Name             { return e.prefix }
func (e *fibEntry) NextHops() []*FibNextHopEntry { return e.nexthops }
func (e *fibEntry) Strategy() StrategyTag        { return e.strategy }

func (e *fibEntry) nexthopIndex(id types.ConnId) int {
	for i, nh := range e.nexthops {
		if nh.Nexthop == id {
			return i
		}
	}
	return -1
}

// Fib is a prefix-hash routing table: entries are bucketed by
// prefix.CumulativeHash(prefix.SegmentCount()), the key collapsing into a
// handful of candidates that are then disambiguated by exact prefix
// equality, grounded on dv/table/fib.go's map-of-entries-by-name-hash
// pattern (adapted from router hashes to name-prefix hashes) and spec.md
// 9's "open-addressed hash table keyed by prefix_hash" design note.
type Fib struct {
	buckets map[uint64][]*fibEntry
}

func NewFib() *Fib {
	return &Fib{buckets: make(map[uint64][]*fibEntry)}
}

func (f *Fib) find(prefix *name.Name) *fibEntry {
	h := prefix.CumulativeHash(prefix.SegmentCount())
	for _, e := range f.buckets[h] {
		if e.prefix.Equal(prefix) {
			return e
		}
	}
	return nil
}

// Add inserts next_hop under prefix, creating the entry if needed.
// Idempotent on a duplicate next hop (spec.md 4.4): re-adding the same
// connection id only updates its cost.
func (f *Fib) Add(prefix *name.Name, nextHop types.ConnId, cost uint64) {
	e := f.find(prefix)
	if e == nil {
		e = &fibEntry{prefix: prefix, strategy: StrategyMulticast}
		h := prefix.CumulativeHash(prefix.SegmentCount())
		f.buckets[h] = append(f.buckets[h], e)
	}
	if i := e.nexthopIndex(nextHop); i >= 0 {
		e.nexthops[i].Cost = cost
		return
	}
	e.nexthops = append(e.nexthops, &FibNextHopEntry{Nexthop: nextHop, Cost: cost})
}

// SetStrategy assigns the strategy tag an existing prefix forwards with. It
// is a no-op if the prefix has no entry.
func (f *Fib) SetStrategy(prefix *name.Name, tag StrategyTag) {
	if e := f.find(prefix); e != nil {
		e.strategy = tag
	}
}

// Remove deletes next_hop from prefix's entry, deleting the entry entirely
// once its next-hop set becomes empty (spec.md 4.4).
func (f *Fib) Remove(prefix *name.Name, nextHop types.ConnId) {
	e := f.find(prefix)
	if e == nil {
		return
	}
	i := e.nexthopIndex(nextHop)
	if i < 0 {
		return
	}
	e.nexthops = append(e.nexthops[:i], e.nexthops[i+1:]...)
	if len(e.nexthops) == 0 {
		f.removeEntry(e)
	}
}

func (f *Fib) removeEntry(e *fibEntry) {
	h := e.prefix.CumulativeHash(e.prefix.SegmentCount())
	bucket := f.buckets[h]
	for i, c := range bucket {
		if c == e {
			f.buckets[h] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(f.buckets[h]) == 0 {
		delete(f.buckets, h)
	}
}

// RemoveConnection purges id from every FIB next-hop set, deleting entries
// that become empty, per spec.md 4.3's connection-teardown contract.
func (f *Fib) RemoveConnection(id types.ConnId) {
	var empties []*fibEntry
	for _, bucket := range f.buckets {
		for _, e := range bucket {
			if i := e.nexthopIndex(id); i >= 0 {
				e.nexthops = append(e.nexthops[:i], e.nexthops[i+1:]...)
				if len(e.nexthops) == 0 {
					empties = append(empties, e)
				}
			}
		}
	}
	for _, e := range empties {
		f.removeEntry(e)
	}
}

// Lookup returns the next-hop set and strategy tag of the longest prefix of
// name for which an entry exists, probing cumulative hashes from the full
// length down to zero (the default route), per spec.md 4.4. Hashing n's full
// length first memoizes every shorter prefix's hash as a side effect
// (Name.CumulativeHash), so each probe below is an O(1) lookup against n
// itself; Slice is only called once a bucket actually has a candidate to
// compare against, not once per probed length.
func (f *Fib) Lookup(n *name.Name) (*FibEntryView, bool) {
	n.CumulativeHash(n.SegmentCount())
	for k := n.SegmentCount(); k >= 0; k-- {
		bucket := f.buckets[n.CumulativeHash(k)]
		if len(bucket) == 0 {
			continue
		}
		prefix := n.Slice(k)
		for _, e := range bucket {
			if e.prefix.Equal(prefix) {
				return &FibEntryView{entry: e}, true
			}
		}
	}
	return nil, false
}

// FibEntryView is the read-only result of a successful Lookup.
type FibEntryView struct {
	entry *fibEntry
}

func (v *FibEntryView) Name() *name.Name             { return v.entry.prefix }
func (v *FibEntryView) NextHops() []*FibNextHopEntry { return v.entry.nexthops }
func (v *FibEntryView) Strategy() StrategyTag        { return v.entry.strategy }

// Len returns the number of distinct prefixes registered.
func (f *Fib) Len() int {
	n := 0
	for _, bucket := range f.buckets {
		n += len(bucket)
	}
	return n
}

// Entries returns every registered FIB entry, for the ListRoutes control
// command (spec.md 6).
func (f *Fib) Entries() []*FibEntryView {
	out := make([]*FibEntryView, 0, f.Len())
	for _, bucket := range f.buckets {
		for _, e := range bucket {
			out = append(out, &FibEntryView{entry: e})
		}
	}
	return out
}
