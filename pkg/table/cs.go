package table

import (
	"container/list"

	"github.com/ccnfwd/ccnfwd/pkg/core"
	"github.com/ccnfwd/ccnfwd/pkg/name"
	"github.com/ccnfwd/ccnfwd/pkg/queue"
	"github.com/ccnfwd/ccnfwd/pkg/types"
	"github.com/ccnfwd/ccnfwd/pkg/wire"
)

// csKey is the primary Content Store key: (name, object hash). objHash is
// always the object's computed ContentObjectHash, never empty, so two
// objects at the same name with different hashes are distinct cache entries.
type csKey struct {
	nm      string
	objHash string
}

// csEntry is one cached Content Object plus its eligibility for each of the
// Content Store's secondary indexes, per spec.md 3 and 4.7.
type csEntry struct {
	key    csKey
	nm     *name.Name
	keyId  []byte
	view   *wire.MessageView
	expiry types.Tick
	hasExp bool
	rct    types.Tick
	hasRct bool

	lruElem    *list.Element // element in Cs.lru, value is *csEntry
	expiryItem *queue.Item[*csEntry, types.Tick]
	rctItem    *queue.Item[*csEntry, types.Tick]
}

// Cs is the Content Store: a capacity-bounded cache with the six indexes
// described in spec.md 4.7 and a composite eviction policy (expiry, then
// RCT, then LRU). Every index is a plain in-process structure; the primary
// index (byKey) holds the retained *wire.MessageView directly, since that
// view is already the one copy of the payload the forwarder needs to serve
// a hit, and nothing in this store's lifetime ever reads it back off of
// anything else.
type Cs struct {
	capacity     int
	storeEnabled bool // CacheStoreEnable control command, spec.md 6
	serveEnabled bool // CacheServeEnable control command, spec.md 6

	byKey       map[csKey]*csEntry
	byName      map[string][]*csEntry // keyed by name.Bytes(); unrestricted lookups
	byNameKeyId map[string]*csEntry   // keyed by name.Bytes()+keyId

	byExpiry *queue.PriorityQueue[*csEntry, types.Tick]
	byRct    *queue.PriorityQueue[*csEntry, types.Tick]
	lru      *list.List // front = most recently used
}

// NewCs constructs a Content Store with the given capacity. capacity == 0
// disables caching entirely (every put returns false), per spec.md 4.7.
func NewCs(capacity int) (*Cs, error) {
	return &Cs{
		capacity:     capacity,
		storeEnabled: true,
		serveEnabled: true,
		byKey:       make(map[csKey]*csEntry),
		byName:      make(map[string][]*csEntry),
		byNameKeyId: make(map[string]*csEntry),
		byExpiry:    queue.NewPriorityQueue[*csEntry, types.Tick](),
		byRct:       queue.NewPriorityQueue[*csEntry, types.Tick](),
		lru:         list.New(),
	}, nil
}

// Close is a no-op; kept so callers that manage the Content Store's
// lifecycle alongside other closeable tables (cmd/ccnfwd) don't need a
// special case.
func (c *Cs) Close() error { return nil }

// SetStoreEnabled toggles whether put() admits new entries, per the
// CacheStoreEnable control command.
func (c *Cs) SetStoreEnabled(enabled bool) { c.storeEnabled = enabled }

// SetServeEnabled toggles whether Match() can return a cached entry, per the
// CacheServeEnable control command. Existing entries are left in place.
func (c *Cs) SetServeEnabled(enabled bool) { c.serveEnabled = enabled }

// objHashKeyString is the Content Store's own identity hash for a Content
// Object, computed the same way regardless of whether an Interest actually
// restricted on it (spec.md 3's "ContentObjectHash" CS-entry field).
func objHashKeyString(mv *wire.MessageView) string {
	return string(wire.ContentObjectHash(mv))
}

// Put inserts msg if it is cacheable at the current tick, evicting one
// entry first if the store is full, per spec.md 4.7.
func (c *Cs) Put(msg *wire.MessageView, now types.Tick) bool {
	if c.capacity == 0 || !c.storeEnabled {
		return false
	}
	expiry, hasExp := msg.ExpiryTick()
	if hasExp && expiry <= now {
		return false
	}
	rct, hasRct := msg.RecommendedCacheTick()
	if hasRct && rct <= now {
		return false
	}

	key := csKey{nm: string(msg.Name().Bytes()), objHash: objHashKeyString(msg)}

	if existing, ok := c.byKey[key]; ok {
		c.unlinkEntry(existing)
	} else if len(c.byKey) >= c.capacity {
		c.evictOne(now)
	}

	e := &csEntry{
		key:    key,
		nm:     msg.Name(),
		view:   msg,
		expiry: expiry,
		hasExp: hasExp,
		rct:    rct,
		hasRct: hasRct,
	}
	if kid, ok := msg.KeyIdRestriction(); ok {
		e.keyId = kid
	}

	msg.Retain()
	c.byKey[key] = e
	c.byName[key.nm] = append(c.byName[key.nm], e)
	if e.keyId != nil {
		c.byNameKeyId[key.nm+"|"+string(e.keyId)] = e
	}
	if hasExp {
		e.expiryItem = c.byExpiry.Push(e, expiry)
	}
	if hasRct {
		e.rctItem = c.byRct.Push(e, rct)
	}
	e.lruElem = c.lru.PushFront(e)

	core.Global.CsInserts.Add(1)
	return true
}

// Match selects the most specific applicable index for interest and, on a
// hit, moves the entry to the LRU head before returning its view, per
// spec.md 4.7.
func (c *Cs) Match(interest *wire.MessageView) (*wire.MessageView, bool) {
	if !c.serveEnabled {
		return nil, false
	}
	nameBytes := string(interest.Name().Bytes())

	var e *csEntry
	if h, ok := interest.ObjectHashRestriction(); ok {
		if cand, ok := c.byKey[csKey{nm: nameBytes, objHash: string(h)}]; ok {
			e = cand
		}
	} else if kid, ok := interest.KeyIdRestriction(); ok {
		if cand, ok := c.byNameKeyId[nameBytes+"|"+string(kid)]; ok {
			e = cand
		}
	} else if cands := c.byName[nameBytes]; len(cands) > 0 {
		e = cands[0]
	}

	if e == nil {
		core.Global.CsMisses.Add(1)
		return nil, false
	}
	c.lru.MoveToFront(e.lruElem)
	core.Global.CsHits.Add(1)
	return e.view, true
}

// Remove deletes the entry matching msg's (name, content-object-hash) key
// from every index, a no-op if no such entry exists, per spec.md 4.7's
// "remove(name_and_hash)".
func (c *Cs) Remove(msg *wire.MessageView) {
	key := csKey{nm: string(msg.Name().Bytes()), objHash: objHashKeyString(msg)}
	if e, ok := c.byKey[key]; ok {
		c.unlinkEntry(e)
	}
}

// Clear empties the store entirely, for the CacheClear control command.
func (c *Cs) Clear() {
	for key := range c.byKey {
		e := c.byKey[key]
		delete(c.byKey, key)
		e.view.Release()
	}
	c.byName = make(map[string][]*csEntry)
	c.byNameKeyId = make(map[string]*csEntry)
	c.byExpiry = queue.NewPriorityQueue[*csEntry, types.Tick]()
	c.byRct = queue.NewPriorityQueue[*csEntry, types.Tick]()
	c.lru = list.New()
}

// Len returns the number of live entries.
func (c *Cs) Len() int { return len(c.byKey) }

// evictOne applies the composite eviction policy from spec.md 4.7: expiry
// first, then RCT, then LRU tail.
func (c *Cs) evictOne(now types.Tick) {
	if c.byExpiry.Len() > 0 && c.byExpiry.PeekPriority() <= now {
		e := c.byExpiry.Peek()
		c.unlinkEntry(e)
		core.Global.EvictExpiry.Add(1)
		return
	}
	if c.byRct.Len() > 0 && c.byRct.PeekPriority() <= now {
		e := c.byRct.Peek()
		c.unlinkEntry(e)
		core.Global.EvictRCT.Add(1)
		return
	}
	if back := c.lru.Back(); back != nil {
		e := back.Value.(*csEntry)
		c.unlinkEntry(e)
		core.Global.EvictLRU.Add(1)
	}
}

// unlinkEntry removes e from every index it participates in.
func (c *Cs) unlinkEntry(e *csEntry) {
	delete(c.byKey, e.key)

	bucket := c.byName[e.key.nm]
	for i, cand := range bucket {
		if cand == e {
			c.byName[e.key.nm] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(c.byName[e.key.nm]) == 0 {
		delete(c.byName, e.key.nm)
	}
	if e.keyId != nil {
		delete(c.byNameKeyId, e.key.nm+"|"+string(e.keyId))
	}
	if e.expiryItem != nil {
		c.byExpiry.Remove(e.expiryItem)
	}
	if e.rctItem != nil {
		c.byRct.Remove(e.rctItem)
	}
	if e.lruElem != nil {
		c.lru.Remove(e.lruElem)
	}
	e.view.Release()
}
