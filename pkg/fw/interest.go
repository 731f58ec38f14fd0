package fw

import (
	"github.com/ccnfwd/ccnfwd/pkg/core"
	"github.com/ccnfwd/ccnfwd/pkg/table"
	"github.com/ccnfwd/ccnfwd/pkg/wire"
)

// handleInterest runs the per-Interest state machine from spec.md 4.8:
//
//	RECEIVED -> DECODED -> {PIT: aggregate?}
//	  aggregate=yes -> END
//	  aggregate=no  -> {CS: hit?}
//	     hit=yes -> emit CO on ingress -> END
//	     hit=no  -> {FIB: match?}
//	        no match -> emit InterestReturn(NoRoute) -> END
//	        match    -> strategy.choose() -> for each egress: decrement
//	                    hop limit, send -> END (empty set -> InterestReturn)
func (d *Dispatcher) handleInterest(mv *wire.MessageView) {
	entry, outcome, err := d.Pit.InsertOrAggregate(mv)
	if err != nil {
		core.Global.PitFull.Add(1)
		d.sendInterestReturn(mv, wire.ReturnCongestion)
		return
	}
	if outcome == table.Aggregated {
		return
	}

	if cached, hit := d.Cs.Match(mv); hit {
		d.Pit.Cancel(entry)
		d.send(mv.IngressId(), frameBytes(cached))
		return
	}

	fibEntry, ok := d.Fib.Lookup(mv.Name())
	if !ok {
		d.Pit.Cancel(entry)
		core.Global.NoRouteMatched.Add(1)
		d.sendInterestReturn(mv, wire.ReturnNoRoute)
		return
	}

	strategy := d.Strategies.Resolve(fibEntry.Strategy())
	egress := strategy.Choose(fibEntry.NextHops(), mv.IngressId(), mv.Name())
	if len(egress) == 0 {
		d.Pit.Cancel(entry)
		core.Global.NoRouteMatched.Add(1)
		d.sendInterestReturn(mv, wire.ReturnNoRoute)
		return
	}

	if !mv.DecrementHopLimit() {
		d.Pit.Cancel(entry)
		core.Global.HopLimitExceeded.Add(1)
		return
	}

	d.Pit.RecordEgress(entry, egress)
	frame := wire.Encode(mv)
	for _, id := range egress {
		d.send(id, frame)
	}
}

// sendInterestReturn synthesizes and sends a negative response to the
// Interest's ingress connection, per spec.md 7's disposition table.
func (d *Dispatcher) sendInterestReturn(mv *wire.MessageView, code wire.ReturnCode) {
	ret := wire.NewInterestReturn(mv.Name(), code).
		Ingress(mv.IngressId()).
		ReceivedAt(d.tick).
		Build()
	d.send(mv.IngressId(), wire.Encode(ret))
}
