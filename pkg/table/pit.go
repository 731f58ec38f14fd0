package table

import (
	"bytes"

	"github.com/ccnfwd/ccnfwd/pkg/name"
	"github.com/ccnfwd/ccnfwd/pkg/ndnerr"
	"github.com/ccnfwd/ccnfwd/pkg/queue"
	"github.com/ccnfwd/ccnfwd/pkg/types"
	"github.com/ccnfwd/ccnfwd/pkg/wire"
)

// PitFingerprint is the key a PIT entry is indexed under: a Name plus the
// optional KeyId and ContentObjectHash restrictions carried by the
// Interest that created it, per spec.md 3.
type PitFingerprint struct {
	name    string // name.Bytes() as a map-friendly string
	keyId   string // "" means NONE
	objHash string // "" means NONE
}

func fingerprintOf(mv *wire.MessageView) PitFingerprint {
	fp := PitFingerprint{name: string(mv.Name().Bytes())}
	if kid, ok := mv.KeyIdRestriction(); ok {
		fp.keyId = string(kid)
	}
	if oh, ok := mv.ObjectHashRestriction(); ok {
		fp.objHash = string(oh)
	}
	return fp
}

// PitEntry aggregates every outstanding Interest sharing one fingerprint.
type PitEntry struct {
	fp         PitFingerprint
	nm         *name.Name
	keyId      []byte
	objHash    []byte
	reverse    map[types.ConnId]struct{}
	egress     map[types.ConnId]struct{} // connections the Interest was forwarded to, for strategy feedback
	createdAt  types.Tick
	expiresAt  types.Tick
	view       *wire.MessageView // the view of the Interest that created the entry
	expiryItem *queue.Item[*PitEntry, types.Tick]
}

func (e *PitEntry) Name() *name.Name        { return e.nm }
func (e *PitEntry) ExpiresAt() types.Tick   { return e.expiresAt }
func (e *PitEntry) CreatedAt() types.Tick   { return e.createdAt }
func (e *PitEntry) View() *wire.MessageView { return e.view }

// Egress returns the connections this Interest was forwarded to, as
// recorded by RecordEgress. Not part of spec.md 3's PIT entry data model
// (which only names the reverse path); tracked so Strategy.OnSatisfied and
// OnTimeout (spec.md 4.5) have an egress connection to report feedback
// against.
func (e *PitEntry) Egress() []types.ConnId {
	out := make([]types.ConnId, 0, len(e.egress))
	for id := range e.egress {
		out = append(out, id)
	}
	return out
}

// ReversePath returns the set of ingress connection ids that requested this
// Interest, as a fresh slice safe for the caller to range over while the
// PIT is mutated.
func (e *PitEntry) ReversePath() []types.ConnId {
	out := make([]types.ConnId, 0, len(e.reverse))
	for id := range e.reverse {
		out = append(out, id)
	}
	return out
}

// InsertOutcome reports whether insert_or_aggregate created a fresh entry
// or folded the Interest into an existing one, per spec.md 4.6.
type InsertOutcome int

const (
	Created InsertOutcome = iota
	Aggregated
)

// Pit is the Pending Interest Table: a primary fingerprint index, a
// by-ingress-connection index for fast teardown, and a by-expiry priority
// queue for O(log n) expiry scanning, per spec.md 4.6.
type Pit struct {
	byFingerprint map[PitFingerprint]*PitEntry
	byConn        map[types.ConnId]map[*PitEntry]struct{}
	byExpiry      *queue.PriorityQueue[*PitEntry, types.Tick]

	maxLifetime types.Tick
	capacity    int // 0 means unbounded
}

// NewPit constructs an empty PIT. maxLifetime caps how far in the future an
// entry's expiry may be set, per spec.md 4.6's "lifetime is capped at
// max_interest_lifetime". capacity bounds the number of distinct
// fingerprints (0 means unbounded); exceeding it on a fresh fingerprint
// yields ndnerr.ErrPitFull per spec.md 7's PitFull disposition.
func NewPit(maxLifetime types.Tick, capacity int) *Pit {
	return &Pit{
		byFingerprint: make(map[PitFingerprint]*PitEntry),
		byConn:        make(map[types.ConnId]map[*PitEntry]struct{}),
		byExpiry:      queue.NewPriorityQueue[*PitEntry, types.Tick](),
		maxLifetime:   maxLifetime,
		capacity:      capacity,
	}
}

func (p *Pit) cap(mv *wire.MessageView) types.Tick {
	expiry, ok := mv.ExpiryTick()
	if !ok {
		expiry = mv.ReceivedAt() + p.maxLifetime
	}
	if cap := mv.ReceivedAt() + p.maxLifetime; expiry > cap {
		expiry = cap
	}
	return expiry
}

func (p *Pit) linkConn(id types.ConnId, e *PitEntry) {
	set, ok := p.byConn[id]
	if !ok {
		set = make(map[*PitEntry]struct{})
		p.byConn[id] = set
	}
	set[e] = struct{}{}
}

func (p *Pit) unlinkConn(id types.ConnId, e *PitEntry) {
	set, ok := p.byConn[id]
	if !ok {
		return
	}
	delete(set, e)
	if len(set) == 0 {
		delete(p.byConn, id)
	}
}

// InsertOrAggregate folds mv into an existing entry sharing its
// fingerprint, or creates a fresh one. An expired entry occupying the same
// fingerprint is purged first, so Created is returned in that case too. A
// fresh entry that would exceed capacity is rejected with ndnerr.ErrPitFull
// and leaves no partial state, per spec.md 7.
func (p *Pit) InsertOrAggregate(mv *wire.MessageView) (*PitEntry, InsertOutcome, error) {
	fp := fingerprintOf(mv)

	if existing, ok := p.byFingerprint[fp]; ok {
		if existing.expiresAt <= mv.ReceivedAt() {
			p.removeEntry(existing)
		} else {
			p.linkConn(mv.IngressId(), existing)
			existing.reverse[mv.IngressId()] = struct{}{}
			if deadline := p.cap(mv); deadline < existing.expiresAt {
				existing.expiresAt = deadline
				p.byExpiry.UpdatePriority(existing.expiryItem, deadline)
			}
			return existing, Aggregated, nil
		}
	}

	if p.capacity > 0 && len(p.byFingerprint) >= p.capacity {
		return nil, Created, ndnerr.ErrPitFull
	}

	keyId, _ := mv.KeyIdRestriction()
	objHash, _ := mv.ObjectHashRestriction()
	e := &PitEntry{
		fp:        fp,
		nm:        mv.Name(),
		keyId:     keyId,
		objHash:   objHash,
		reverse:   map[types.ConnId]struct{}{mv.IngressId(): {}},
		createdAt: mv.ReceivedAt(),
		expiresAt: p.cap(mv),
		view:      mv,
	}
	mv.Retain()
	p.byFingerprint[fp] = e
	p.linkConn(mv.IngressId(), e)
	e.expiryItem = p.byExpiry.Push(e, e.expiresAt)
	return e, Created, nil
}

// RecordEgress notes that the Interest was just forwarded to ids, so a
// later satisfaction or timeout can report feedback to the strategy that
// chose them (spec.md 4.5).
func (p *Pit) RecordEgress(e *PitEntry, ids []types.ConnId) {
	if e.egress == nil {
		e.egress = make(map[types.ConnId]struct{}, len(ids))
	}
	for _, id := range ids {
		e.egress[id] = struct{}{}
	}
}

// restrictionMatches reports whether a PIT entry's restriction (nil means
// NONE) permits a ContentObject carrying the given attribute.
func restrictionMatches(restriction, attr []byte) bool {
	return restriction == nil || bytes.Equal(restriction, attr)
}

// matchingEntries finds every live entry matching object (names equal, and
// each restriction is absent or equal to the object's corresponding
// attribute), per spec.md 4.6, without removing anything.
func (p *Pit) matchingEntries(object *wire.MessageView) []*PitEntry {
	keyId, _ := object.KeyIdRestriction()
	objHash := wire.ContentObjectHash(object)

	var matched []*PitEntry
	for _, e := range p.byFingerprint {
		if !e.nm.Equal(object.Name()) {
			continue
		}
		if !restrictionMatches(e.keyId, keyId) || !restrictionMatches(e.objHash, objHash) {
			continue
		}
		matched = append(matched, e)
	}
	return matched
}

// Satisfy finds every entry matching object (names equal, and each
// restriction is absent or equal to the object's corresponding attribute),
// removes them, and returns the union of their reverse-path sets, per
// spec.md 4.6.
func (p *Pit) Satisfy(object *wire.MessageView) []types.ConnId {
	matched := p.matchingEntries(object)

	seen := make(map[types.ConnId]struct{})
	for _, e := range matched {
		for id := range e.reverse {
			seen[id] = struct{}{}
		}
	}
	for _, e := range matched {
		p.removeEntry(e)
	}

	out := make([]types.ConnId, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

// SatisfyEntries is like Satisfy but returns the matched entries themselves
// (before removal), so a caller can drive strategy feedback
// (Strategy.OnSatisfied) using each entry's CreatedAt as the RTT origin
// before the entry is gone. The entries are removed from the PIT exactly as
// Satisfy would remove them.
func (p *Pit) SatisfyEntries(object *wire.MessageView) []*PitEntry {
	matched := p.matchingEntries(object)
	for _, e := range matched {
		p.removeEntry(e)
	}
	return matched
}

// Cancel removes a single PIT entry without any matching or feedback, used
// by the pipeline when an Interest it just inserted turns out not to need
// to wait for a reply (a Content Store hit, or no route to forward it on),
// per spec.md 4.8 and the S1/S6 scenarios in spec.md 8.
func (p *Pit) Cancel(e *PitEntry) {
	p.removeEntry(e)
}

// Tick removes every entry whose expiry is at or before now, invoking
// onTimeout with each removed entry so the caller can drive further
// per-entry feedback (e.g. strategy.on_timeout per egress).
func (p *Pit) Tick(now types.Tick, onTimeout func(*PitEntry)) {
	for p.byExpiry.Len() > 0 && p.byExpiry.PeekPriority() <= now {
		e := p.byExpiry.Pop()
		delete(p.byFingerprint, e.fp)
		for id := range e.reverse {
			p.unlinkConn(id, e)
		}
		e.view.Release()
		if onTimeout != nil {
			onTimeout(e)
		}
	}
}

// removeEntry deletes e from every index without invoking any feedback.
func (p *Pit) removeEntry(e *PitEntry) {
	delete(p.byFingerprint, e.fp)
	for id := range e.reverse {
		p.unlinkConn(id, e)
	}
	if e.expiryItem != nil {
		p.byExpiry.Remove(e.expiryItem)
	}
	e.view.Release()
}

// RemoveConnection purges id from every entry's reverse-path set; an entry
// left with an empty reverse-path set is deleted entirely, per spec.md 4.3.
func (p *Pit) RemoveConnection(id types.ConnId) {
	set, ok := p.byConn[id]
	if !ok {
		return
	}
	entries := make([]*PitEntry, 0, len(set))
	for e := range set {
		entries = append(entries, e)
	}
	delete(p.byConn, id)

	for _, e := range entries {
		delete(e.reverse, id)
		if len(e.reverse) == 0 {
			delete(p.byFingerprint, e.fp)
			if e.expiryItem != nil {
				p.byExpiry.Remove(e.expiryItem)
			}
			e.view.Release()
		}
	}
}

// Len returns the number of live PIT entries.
func (p *Pit) Len() int { return len(p.byFingerprint) }
