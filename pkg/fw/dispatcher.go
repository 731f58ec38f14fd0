// Package fw implements the single-threaded reactor described in spec.md
// 4.8: one dispatch loop demultiplexing received frames across faces,
// driving the per-Interest and per-ContentObject state machines over the
// PIT, Content Store, and FIB, with a timer wheel expiring PIT entries.
//
// Grounded on std/engine/basic/engine.go's single dispatch loop (an
// inQueue channel, a packet-type switch, Trace/Warn/Error call sites at
// each decision point) generalized from "client engine talking to one
// local forwarder" to "forwarder multiplexing many faces", and on
// fw/fw/multicast.go for the forwarder-specific naming of this layer.
package fw

import (
	"sync/atomic"
	"time"

	"github.com/ccnfwd/ccnfwd/pkg/core"
	"github.com/ccnfwd/ccnfwd/pkg/face"
	"github.com/ccnfwd/ccnfwd/pkg/queue"
	"github.com/ccnfwd/ccnfwd/pkg/table"
	"github.com/ccnfwd/ccnfwd/pkg/types"
	"github.com/ccnfwd/ccnfwd/pkg/wire"
)

// ControlHandler processes a received Control packet and returns the
// ACK/NACK response to send back on the ingress connection, or nil to send
// nothing, per spec.md 4.9. Implemented by pkg/mgmt.Manager; left unset in
// tests and deployments that don't need the control plane.
type ControlHandler interface {
	Handle(mv *wire.MessageView) *wire.MessageView
}

// Dispatcher is the reactor: it owns the PIT, Content Store, FIB, strategy
// registry, and connection table, and is the only thing permitted to
// mutate them (spec.md 5 — no locks are required on these structures
// because only this goroutine ever touches them).
type Dispatcher struct {
	Faces      *face.Table
	Fib        *table.Fib
	Pit        *table.Pit
	Cs         *table.Cs
	Strategies *table.StrategyRegistry

	mgmt ControlHandler

	tick    types.Tick
	tickDur time.Duration

	// cmds is the wake-pipe + command queue from spec.md 5: every received
	// frame and every externally posted control action is wrapped as a
	// func and pushed here, so the reactor goroutine is the only one that
	// ever touches Faces/Fib/Pit/Cs. Grounded on pkg/queue's port of the
	// teacher's std/types/lockfree queue.
	cmds *queue.CommandQueue[func()]

	closeCh chan struct{}
	running atomic.Bool
}

// NewDispatcher constructs a reactor over already-constructed tables.
// tickDur is the timer wheel's granularity (spec.md 9's "user-tunable
// parameter with a sensible default"); correctness holds for any value no
// greater than the shortest expressible Interest lifetime.
func NewDispatcher(faces *face.Table, fib *table.Fib, pit *table.Pit, cs *table.Cs, strategies *table.StrategyRegistry, tickDur time.Duration) *Dispatcher {
	d := &Dispatcher{
		Faces:      faces,
		Fib:        fib,
		Pit:        pit,
		Cs:         cs,
		Strategies: strategies,
		tickDur:    tickDur,
		cmds:       queue.New[func()](),
		closeCh:    make(chan struct{}),
	}
	faces.OnRemove(func(id types.ConnId) {
		d.Fib.RemoveConnection(id)
		d.Pit.RemoveConnection(id)
	})
	return d
}

func (d *Dispatcher) String() string { return "fw-dispatcher" }

// SetControlHandler wires the control-message handler that Control packets
// are routed to. Must be called before Run, or from the reactor thread.
func (d *Dispatcher) SetControlHandler(h ControlHandler) { d.mgmt = h }

// Now returns the dispatcher's current logical tick.
func (d *Dispatcher) Now() types.Tick { return d.tick }

// AttachConnection registers a connection and starts relaying its received
// frames into the reactor loop via the command queue. The transport's own
// receive loop runs on its own goroutine (per spec.md 4.3's "the pipeline
// only reads" connections); every frame it produces is handed to the
// reactor thread, never processed inline.
func (d *Dispatcher) AttachConnection(id types.ConnId, t face.Transport) error {
	conn := face.NewConnection(id, t)
	if err := d.Faces.Insert(conn); err != nil {
		return err
	}
	t.SetReceiveHandler(func(frame []byte) {
		buf := append([]byte(nil), frame...)
		d.cmds.Push(func() { d.onFrame(id, buf) })
	})
	go t.Run()
	return nil
}

// Post queues an arbitrary action to run on the reactor thread, the entry
// point for control commands posted from outside the reactor (spec.md 5).
func (d *Dispatcher) Post(fn func()) { d.cmds.Push(fn) }

// Run blocks, draining the command queue and firing the PIT expiry timer
// wheel, until Stop is called. Only one Run may execute at a time.
func (d *Dispatcher) Run() {
	if !d.running.CompareAndSwap(false, true) {
		return
	}
	ticker := time.NewTicker(d.tickDur)
	defer ticker.Stop()
	for {
		select {
		case <-d.closeCh:
			return
		case <-d.cmds.Notify:
			for fn := range d.cmds.DrainAll() {
				fn()
			}
		case <-ticker.C:
			d.tick++
			d.Pit.Tick(d.tick, d.onPitTimeout)
		}
	}
}

// Stop signals Run to return.
func (d *Dispatcher) Stop() {
	if d.running.CompareAndSwap(true, false) {
		close(d.closeCh)
	}
}

// onFrame decodes a received frame and dispatches it, dropping and
// counting malformed packets per spec.md 7.
func (d *Dispatcher) onFrame(ingress types.ConnId, frame []byte) {
	mv, err := wire.Parse(frame, ingress, d.tick)
	if err != nil {
		core.Global.MalformedPacket.Add(1)
		core.Log.Debug(d, "Dropping malformed packet", "ingress", ingress, "err", err)
		return
	}
	d.Dispatch(mv)
}

// Dispatch routes a decoded MessageView to the handler for its packet
// type, per spec.md 4.8's "RECEIVED -> DECODED" step. Exported so tests
// and pkg/mgmt-adjacent callers can inject a MessageView without going
// through a real Transport.
func (d *Dispatcher) Dispatch(mv *wire.MessageView) {
	defer mv.Release()
	switch mv.PacketType() {
	case wire.PacketInterest:
		d.handleInterest(mv)
	case wire.PacketContentObject:
		d.handleContentObject(mv)
	case wire.PacketInterestReturn:
		d.handleInterestReturn(mv)
	case wire.PacketControl:
		d.handleControl(mv)
	default:
		core.Global.MalformedPacket.Add(1)
	}
}

// send transmits frame on connection id, treating a blocked or missing
// connection as a drop, per spec.md 5's back-pressure policy.
func (d *Dispatcher) send(id types.ConnId, frame []byte) {
	c := d.Faces.Get(id)
	if c == nil {
		return
	}
	if err := c.Transport.Send(frame); err != nil {
		core.Global.SendWouldBlock.Add(1)
		core.Log.Debug(d, "Dropping send", "conn", id, "err", err)
	}
}

// frameBytes returns the wire bytes for mv, preferring the original buffer
// it was parsed from (so the round-trip property in spec.md 8 holds
// exactly) and falling back to re-encoding for views synthesized
// in-process (e.g. an InterestReturn from the pipeline or an ACK/NACK
// from the control handler).
func frameBytes(mv *wire.MessageView) []byte {
	if raw := mv.Raw(); raw != nil {
		return raw
	}
	return wire.Encode(mv)
}

func (d *Dispatcher) handleControl(mv *wire.MessageView) {
	if d.mgmt == nil {
		return
	}
	resp := d.mgmt.Handle(mv)
	if resp == nil {
		return
	}
	d.send(mv.IngressId(), frameBytes(resp))
}

// handleInterestReturn propagates a negative response from a next hop back
// to every PIT entry it satisfies (by the same name/restriction match as a
// Content Object), removing those entries without admitting anything into
// the Content Store. spec.md 4.8 only specifies state machines for
// Interest and ContentObject; this extends the same reverse-path
// bookkeeping to the one other packet type a neighbor can send back.
func (d *Dispatcher) handleInterestReturn(mv *wire.MessageView) {
	entries := d.Pit.SatisfyEntries(mv)
	if len(entries) == 0 {
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
}

// onPitTimeout feeds each timed-out entry's recorded egress connections
// back to the strategy that chose them, per spec.md 4.5's on_timeout hook.
func (d *Dispatcher) onPitTimeout(e *table.PitEntry) {
	fe, ok := d.Fib.Lookup(e.Name())
	if !ok {
		return
	}
	strat := d.Strategies.Resolve(fe.Strategy())
	for _, eg := range e.Egress() {
		strat.OnTimeout(e.Name(), eg)
	}
}
