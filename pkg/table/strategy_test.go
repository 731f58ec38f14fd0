package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ccnfwd/ccnfwd/pkg/types"
)

func TestMulticastExcludesIngress(t *testing.T) {
	s := MulticastStrategy{}
	nextHops := []*FibNextHopEntry{{Nexthop: 1}, {Nexthop: 2}, {Nexthop: 3}}

	out := sortedConnIds(s.Choose(nextHops, 2, nil))
	assert.Equal(t, []types.ConnId{1, 3}, out)
}

func TestBestPathPrefersLowerRTT(t *testing.T) {
	s := NewBestPathStrategy()
	prefix := mustName(t, "/a/b")

	s.OnSatisfied(prefix, 10, 50*time.Millisecond)
	s.OnSatisfied(prefix, 20, 10*time.Millisecond)

	nextHops := []*FibNextHopEntry{{Nexthop: 10}, {Nexthop: 20}}
	chosen := s.Choose(nextHops, 0, prefix)
	assert.Equal(t, []types.ConnId{20}, chosen)
}

func TestBestPathTimeoutPenalizesNextHop(t *testing.T) {
	s := NewBestPathStrategy()
	prefix := mustName(t, "/a/b")

	s.OnSatisfied(prefix, 10, 10*time.Millisecond)
	s.OnSatisfied(prefix, 20, 10*time.Millisecond)
	s.OnTimeout(prefix, 10)

	nextHops := []*FibNextHopEntry{{Nexthop: 10}, {Nexthop: 20}}
	chosen := s.Choose(nextHops, 0, prefix)
	assert.Equal(t, []types.ConnId{20}, chosen)
}

func TestBestPathExcludesIngress(t *testing.T) {
	s := NewBestPathStrategy()
	prefix := mustName(t, "/a/b")
	nextHops := []*FibNextHopEntry{{Nexthop: 10}}
	chosen := s.Choose(nextHops, 10, prefix)
	assert.Empty(t, chosen)
}
