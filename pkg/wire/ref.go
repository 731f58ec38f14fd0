package wire

import "github.com/ccnfwd/ccnfwd/pkg/arc"

// viewPool recycles MessageView allocations the way the teacher avoids
// per-packet allocation churn on the hot path, per spec.md 5's "message
// views are reference-counted so that a view held by a PIT entry, a CS
// entry, and an in-flight send do not alias-destroy". Every view returned
// by Parse is pooled this way; views built by Builder (tests, synthesized
// responses) carry no backing Arc and Retain/Release are no-ops on them.
var viewPool = arc.NewArcPool(
	func() *MessageView { return &MessageView{} },
	func(mv *MessageView) { *mv = MessageView{} },
)

// acquireView checks out a pooled MessageView with one reference already
// held, wired back to its own Arc so Retain/Release can be called directly
// on the view without the caller ever seeing the Arc wrapper.
func acquireView() *MessageView {
	a := viewPool.Get()
	mv := a.Load()
	mv.selfRef = a
	return mv
}

// Retain adds one reference holder (a PIT entry, a CS entry) to a view
// parsed off the wire. A no-op on a view built via Builder, which carries
// no pooled backing.
func (mv *MessageView) Retain() {
	if mv.selfRef != nil {
		mv.selfRef.Inc()
	}
}

// Release drops one reference holder. Once the last reference is dropped
// the view is reset and returned to the pool; the caller must not use mv
// again after calling Release on its last held reference.
func (mv *MessageView) Release() {
	if mv.selfRef != nil {
		mv.selfRef.Dec()
	}
}
