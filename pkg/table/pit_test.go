package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccnfwd/ccnfwd/pkg/types"
	"github.com/ccnfwd/ccnfwd/pkg/wire"
)

func interestAt(t *testing.T, uri string, ingress types.ConnId, now, lifetime types.Tick) *wire.MessageView {
	nm := mustName(t, uri)
	return wire.NewInterest(nm).
		Ingress(ingress).
		ReceivedAt(now).
		Expiry(now + lifetime).
		Build()
}

// S2 — aggregation.
func TestPitAggregation(t *testing.T) {
	p := NewPit(10_000, 0)

	m1 := interestAt(t, "/a/b", 7, 0, 4000)
	e1, outcome1, err := p.InsertOrAggregate(m1)
	require.NoError(t, err)
	assert.Equal(t, Created, outcome1)

	m2 := interestAt(t, "/a/b", 9, 100, 2000)
	e2, outcome2, err := p.InsertOrAggregate(m2)
	require.NoError(t, err)
	assert.Equal(t, Aggregated, outcome2)
	assert.Same(t, e1, e2)

	assert.Equal(t, 1, p.Len())
	assert.ElementsMatch(t, []types.ConnId{7, 9}, e1.ReversePath())
	assert.Equal(t, types.Tick(2100), e1.ExpiresAt())
}

func TestPitAggregationIdempotentOnSameIngress(t *testing.T) {
	p := NewPit(10_000, 0)
	m1 := interestAt(t, "/a/b", 7, 0, 4000)
	e1, _, err := p.InsertOrAggregate(m1)
	require.NoError(t, err)

	m2 := interestAt(t, "/a/b", 7, 10, 100)
	_, outcome, err := p.InsertOrAggregate(m2)
	require.NoError(t, err)
	assert.Equal(t, Aggregated, outcome)
	assert.Equal(t, []types.ConnId{7}, e1.ReversePath())
	assert.Equal(t, types.Tick(110), e1.ExpiresAt())
}

// S3 — satisfaction.
func TestPitSatisfyRemovesEntryAndReturnsReversePath(t *testing.T) {
	p := NewPit(10_000, 0)
	p.InsertOrAggregate(interestAt(t, "/a/b", 7, 0, 4000))
	p.InsertOrAggregate(interestAt(t, "/a/b", 9, 100, 2000))

	object := wire.NewContentObject(mustName(t, "/a/b")).Ingress(3).Build()
	hops := p.Satisfy(object)

	assert.ElementsMatch(t, []types.ConnId{7, 9}, hops)
	assert.Equal(t, 0, p.Len())
}

func TestPitSatisfyNoMatchReturnsEmpty(t *testing.T) {
	p := NewPit(10_000, 0)
	object := wire.NewContentObject(mustName(t, "/nope")).Build()
	assert.Empty(t, p.Satisfy(object))
}

func TestPitSatisfyRespectsKeyIdRestriction(t *testing.T) {
	p := NewPit(10_000, 0)
	nm := mustName(t, "/a/b")
	m := wire.NewInterest(nm).Ingress(1).KeyId([]byte("k1")).Build()
	p.InsertOrAggregate(m)

	wrongKey := wire.NewContentObject(nm).KeyId([]byte("k2")).Build()
	assert.Empty(t, p.Satisfy(wrongKey))

	rightKey := wire.NewContentObject(nm).KeyId([]byte("k1")).Build()
	assert.ElementsMatch(t, []types.ConnId{1}, p.Satisfy(rightKey))
}

func TestPitTickExpiresEntries(t *testing.T) {
	p := NewPit(10_000, 0)
	p.InsertOrAggregate(interestAt(t, "/a", 1, 0, 100))
	p.InsertOrAggregate(interestAt(t, "/b", 1, 0, 500))

	var timedOut []*PitEntry
	p.Tick(100, func(e *PitEntry) { timedOut = append(timedOut, e) })

	assert.Len(t, timedOut, 1)
	assert.Equal(t, 1, p.Len())
}

// Invariant 7 — connection teardown safety.
func TestPitRemoveConnection(t *testing.T) {
	p := NewPit(10_000, 0)
	p.InsertOrAggregate(interestAt(t, "/a", 1, 0, 1000))
	p.InsertOrAggregate(interestAt(t, "/a", 2, 0, 1000))
	p.InsertOrAggregate(interestAt(t, "/b", 1, 0, 1000))

	p.RemoveConnection(1)

	object := wire.NewContentObject(mustName(t, "/a")).Build()
	hops := p.Satisfy(object)
	assert.Equal(t, []types.ConnId{2}, hops)

	bObj := wire.NewContentObject(mustName(t, "/b")).Build()
	assert.Empty(t, p.Satisfy(bObj))
}

func TestPitFullRejectsFreshEntry(t *testing.T) {
	p := NewPit(10_000, 1)
	_, _, err := p.InsertOrAggregate(interestAt(t, "/a", 1, 0, 100))
	require.NoError(t, err)

	_, _, err = p.InsertOrAggregate(interestAt(t, "/b", 1, 0, 100))
	assert.Error(t, err)
	assert.Equal(t, 1, p.Len())
}
