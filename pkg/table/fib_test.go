package table

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccnfwd/ccnfwd/pkg/name"
	"github.com/ccnfwd/ccnfwd/pkg/types"
)

func mustName(t *testing.T, s string) *name.Name {
	n, err := name.FromStr(s)
	assert.NoError(t, err)
	return n
}

func TestFibLongestPrefixMatch(t *testing.T) {
	f := NewFib()
	f.Add(mustName(t, "/a"), 1, 10)
	f.Add(mustName(t, "/a/b"), 2, 10)

	view, ok := f.Lookup(mustName(t, "/a/b/c"))
	assert.True(t, ok)
	assert.True(t, view.Name().Equal(mustName(t, "/a/b")))
}

func TestFibDefaultRouteFallback(t *testing.T) {
	f := NewFib()
	f.Add(name.Root(), 9, 0)

	view, ok := f.Lookup(mustName(t, "/nowhere/near"))
	assert.True(t, ok)
	assert.Equal(t, 0, view.Name().SegmentCount())
}

func TestFibNoMatchWithoutDefaultRoute(t *testing.T) {
	f := NewFib()
	f.Add(mustName(t, "/a"), 1, 0)

	_, ok := f.Lookup(mustName(t, "/b"))
	assert.False(t, ok)
}

func TestFibAddIdempotentOnDuplicateNextHop(t *testing.T) {
	f := NewFib()
	f.Add(mustName(t, "/a"), 1, 5)
	f.Add(mustName(t, "/a"), 1, 7)

	view, ok := f.Lookup(mustName(t, "/a"))
	assert.True(t, ok)
	assert.Len(t, view.NextHops(), 1)
	assert.Equal(t, uint64(7), view.NextHops()[0].Cost)
}

func TestFibRemoveDeletesEmptyEntry(t *testing.T) {
	f := NewFib()
	f.Add(mustName(t, "/a"), 1, 0)
	f.Remove(mustName(t, "/a"), 1)

	_, ok := f.Lookup(mustName(t, "/a"))
	assert.False(t, ok)
	assert.Equal(t, 0, f.Len())
}

func TestFibRemoveConnectionPurgesAllEntries(t *testing.T) {
	f := NewFib()
	f.Add(mustName(t, "/a"), 1, 0)
	f.Add(mustName(t, "/b"), 1, 0)
	f.Add(mustName(t, "/a"), 2, 0)

	f.RemoveConnection(1)

	_, ok := f.Lookup(mustName(t, "/b"))
	assert.False(t, ok)

	view, ok := f.Lookup(mustName(t, "/a"))
	assert.True(t, ok)
	assert.Len(t, view.NextHops(), 1)
	assert.Equal(t, types.ConnId(2), view.NextHops()[0].Nexthop)
}
