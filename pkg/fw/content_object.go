package fw

import (
	"time"

	"github.com/ccnfwd/ccnfwd/pkg/core"
	"github.com/ccnfwd/ccnfwd/pkg/types"
	"github.com/ccnfwd/ccnfwd/pkg/wire"
)

// handleContentObject runs the per-ContentObject state machine from
// spec.md 4.8:
//
//	RECEIVED -> DECODED -> {PIT: matching entries?}
//	  none -> drop (unsolicited)
//	  >=1  -> remove entries, union reverse paths -> for each reverse hop:
//	          send CO -> {CS: admit?} -> put(...)
//	        -> feedback strategy.on_satisfied for every (prefix, egress)
//	           that had requested it
func (d *Dispatcher) handleContentObject(mv *wire.MessageView) {
	entries := d.Pit.SatisfyEntries(mv)
	if len(entries) == 0 {
		core.Global.UnsolicitedContent.Add(1)
		return
	}

	frame := frameBytes(mv)
	seen := make(map[types.ConnId]struct{})
	for _, e := range entries {
		for _, id := range e.ReversePath() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			d.send(id, frame)
		}
	}

	d.Cs.Put(mv, d.tick)

	for _, e := range entries {
		fe, ok := d.Fib.Lookup(e.Name())
		if !ok {
			continue
		}
		strat := d.Strategies.Resolve(fe.Strategy())
		rtt := time.Duration(d.tick-e.CreatedAt()) * d.tickDur
		for _, eg := range e.Egress() {
			if eg != mv.IngressId() {
				continue
			}
			strat.OnSatisfied(e.Name(), eg, rtt)
		}
	}
}
