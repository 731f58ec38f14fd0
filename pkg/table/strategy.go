package table

import (
	"sort"
	"time"

	"github.com/ccnfwd/ccnfwd/pkg/name"
	"github.com/ccnfwd/ccnfwd/pkg/types"
)

// StrategyTag names the strategy a FIB entry forwards with, per spec.md
// 4.5 ("a FIB entry names its strategy by tag; default is Multicast").
type StrategyTag byte

const (
	StrategyMulticast StrategyTag = iota
	StrategyBestPath
)

// Strategy chooses an egress subset from a FIB next-hop set and receives
// feedback from the PIT's satisfaction/timeout paths, grounded on the
// egress-selection role of fw/fw/multicast.go (the one surviving file of
// the teacher's real strategy package).
type Strategy interface {
	Choose(nextHops []*FibNextHopEntry, ingress types.ConnId, interestName *name.Name) []types.ConnId
	OnSatisfied(prefix *name.Name, egress types.ConnId, rtt time.Duration)
	OnTimeout(prefix *name.Name, egress types.ConnId)
}

// MulticastStrategy sends one copy on every candidate except the arrival
// connection. It carries no per-prefix state and ignores feedback.
type MulticastStrategy struct{}

func (MulticastStrategy) Choose(nextHops []*FibNextHopEntry, ingress types.ConnId, _ *name.Name) []types.ConnId {
	out := make([]types.ConnId, 0, len(nextHops))
	for _, nh := range nextHops {
		if nh.Nexthop != ingress {
			out = append(out, nh.Nexthop)
		}
	}
	return out
}

func (MulticastStrategy) OnSatisfied(*name.Name, types.ConnId, time.Duration) {}
func (MulticastStrategy) OnTimeout(*name.Name, types.ConnId)                  {}

// rttKey identifies one (prefix, next-hop) smoothed-RTT estimate.
type rttKey struct {
	prefix  string
	nexthop types.ConnId
}

// BestPathStrategy picks at most one next hop, chosen by a smoothed
// round-trip estimate maintained per (prefix, next-hop); a next hop with a
// measurement is preferred over one without, and ties (equal estimates, or
// no measurement on either) are broken by ascending connection id.
//
// Like every other table in this package, srtt carries no lock: it is only
// ever touched from the single reactor thread that owns the PIT/CS/FIB
// (spec.md 5).
type BestPathStrategy struct {
	srtt map[rttKey]time.Duration
}

func NewBestPathStrategy() *BestPathStrategy {
	return &BestPathStrategy{srtt: make(map[rttKey]time.Duration)}
}

// srttAlpha is the exponential-smoothing weight applied to each new RTT
// sample, matching the conventional TCP-SRTT smoothing constant.
const srttAlpha = 0.125

func (s *BestPathStrategy) Choose(nextHops []*FibNextHopEntry, ingress types.ConnId, interestName *name.Name) []types.ConnId {
	candidates := make([]*FibNextHopEntry, 0, len(nextHops))
	for _, nh := range nextHops {
		if nh.Nexthop != ingress {
			candidates = append(candidates, nh)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	prefix := ""
	if interestName != nil {
		prefix = interestName.String()
	}

	best := candidates[0]
	bestRtt, bestKnown := s.srtt[rttKey{prefix, best.Nexthop}]
	for _, nh := range candidates[1:] {
		rtt, known := s.srtt[rttKey{prefix, nh.Nexthop}]
		switch {
		case !known && bestKnown:
			// best has a measurement, nh does not: prefer the measured one.
		case known && !bestKnown:
			best, bestRtt, bestKnown = nh, rtt, true
		case known && bestKnown && rtt < bestRtt:
			best, bestRtt, bestKnown = nh, rtt, true
		case !known && !bestKnown && nh.Nexthop < best.Nexthop:
			best = nh
		case known && bestKnown && rtt == bestRtt && nh.Nexthop < best.Nexthop:
			best = nh
		}
	}
	return []types.ConnId{best.Nexthop}
}

func (s *BestPathStrategy) OnSatisfied(prefix *name.Name, egress types.ConnId, rtt time.Duration) {
	k := rttKey{prefix.String(), egress}
	if cur, ok := s.srtt[k]; ok {
		s.srtt[k] = time.Duration((1-srttAlpha)*float64(cur) + srttAlpha*float64(rtt))
	} else {
		s.srtt[k] = rtt
	}
}

// OnTimeout penalizes the estimate by doubling it, the way TCP backs off
// its retransmission timer on loss, so a next hop that stops responding
// quickly falls out of contention without needing a separate down-state.
func (s *BestPathStrategy) OnTimeout(prefix *name.Name, egress types.ConnId) {
	k := rttKey{prefix.String(), egress}
	if cur, ok := s.srtt[k]; ok {
		s.srtt[k] = cur * 2
	}
}

// sortedConnIds is a small helper used by tests to assert Multicast's
// output set regardless of FIB next-hop insertion order.
func sortedConnIds(ids []types.ConnId) []types.ConnId {
	out := append([]types.ConnId(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// StrategyRegistry resolves a StrategyTag to its Strategy implementation.
// The dispatcher owns one instance and consults it after every FIB lookup.
type StrategyRegistry struct {
	byTag map[StrategyTag]Strategy
}

func NewStrategyRegistry() *StrategyRegistry {
	r := &StrategyRegistry{byTag: make(map[StrategyTag]Strategy)}
	r.byTag[StrategyMulticast] = MulticastStrategy{}
	r.byTag[StrategyBestPath] = NewBestPathStrategy()
	return r
}

// Resolve returns the strategy for tag, falling back to Multicast for an
// unrecognized tag.
func (r *StrategyRegistry) Resolve(tag StrategyTag) Strategy {
	if s, ok := r.byTag[tag]; ok {
		return s
	}
	return r.byTag[StrategyMulticast]
}
