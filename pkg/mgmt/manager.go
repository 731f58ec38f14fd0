// Package mgmt implements the control-message handler from spec.md 4.9: it
// owns no state of its own, only turns decoded control commands directly
// into operations on the FIB, Content Store, and connection table, and
// returns an ACK/NACK response that echoes the request's sequence number.
//
// Grounded on fw/mgmt/fib.go, rib.go, cs.go, forwarder-status.go, and
// helpers.go's one-method-per-verb dispatch shape and their shared
// sendCtrlResp(interest, code, text, body) helper — adapted here to
// ack/nack building newline-delimited bodies instead of NDN ControlResponse
// TLVs, since this wire format carries plain control commands rather than
// NDN management Interests.
package mgmt

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gorilla/schema"

	"github.com/ccnfwd/ccnfwd/pkg/core"
	"github.com/ccnfwd/ccnfwd/pkg/face"
	"github.com/ccnfwd/ccnfwd/pkg/fw"
	"github.com/ccnfwd/ccnfwd/pkg/name"
	"github.com/ccnfwd/ccnfwd/pkg/table"
	"github.com/ccnfwd/ccnfwd/pkg/types"
	"github.com/ccnfwd/ccnfwd/pkg/wire"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// Manager is the control-message handler. It satisfies fw.ControlHandler
// and is invoked only from the reactor thread (inside
// Dispatcher.handleControl), so it never needs its own locking over the
// Fib/Cs/Faces it mutates.
type Manager struct {
	d *fw.Dispatcher

	mu       sync.Mutex
	symbolic map[string]types.ConnId // symbolic-name -> connection id
	nextConn atomic.Uint64
}

// NewManager constructs a control-message handler bound to the tables owned
// by d. Connections created by AddConnectionEthernet/IP get ids counting up
// from connIdFloor+1; the manager never assigns an id at or below the floor.
func NewManager(d *fw.Dispatcher, connIdFloor types.ConnId) *Manager {
	m := &Manager{
		d:        d,
		symbolic: make(map[string]types.ConnId),
	}
	m.nextConn.Store(uint64(connIdFloor))
	return m
}

func (m *Manager) String() string { return "mgmt" }

// Handle implements fw.ControlHandler.
func (m *Manager) Handle(mv *wire.MessageView) *wire.MessageView {
	verb, values, err := parseBody(mv.ControlBody())
	if err != nil {
		core.Log.Warn(m, "Dropping malformed control command", "err", err)
		return nack(0, err.Error())
	}

	seq, _ := strconv.ParseUint(values.Get("seq"), 10, 64)

	switch verb {
	case "AddRoute":
		return m.addRoute(values)
	case "RemoveRoute":
		return m.removeRoute(values)
	case "AddConnectionEthernet", "AddConnectionIP":
		return m.addConnection(values)
	case "RemoveConnection":
		return m.removeConnection(values)
	case "CacheStoreEnable":
		return m.cacheStoreEnable(values)
	case "CacheServeEnable":
		return m.cacheServeEnable(values)
	case "CacheClear":
		return m.cacheClear(values)
	case "ListRoutes":
		return m.listRoutes(values)
	case "ListConnections":
		return m.listConnections(values)
	default:
		core.Log.Warn(m, "Received control command for unknown verb", "verb", verb)
		return nack(seq, "unknown verb: "+verb)
	}
}

func (m *Manager) addRoute(values map[string][]string) *wire.MessageView {
	var cmd addRouteCmd
	if err := decoder.Decode(&cmd, values); err != nil {
		return nack(cmd.Seq, err.Error())
	}
	prefix, err := name.FromStr(cmd.Prefix)
	if err != nil {
		return nack(cmd.Seq, "bad prefix: "+err.Error())
	}

	m.d.Fib.Add(prefix, types.ConnId(cmd.NextHop), cmd.Cost)
	if cmd.Strategy != "" {
		tag, ok := parseStrategyTag(cmd.Strategy)
		if !ok {
			return nack(cmd.Seq, "unknown strategy: "+cmd.Strategy)
		}
		m.d.Fib.SetStrategy(prefix, tag)
	}

	core.Log.Info(m, "Added route", "prefix", cmd.Prefix, "next-hop", cmd.NextHop, "cost", cmd.Cost)
	return ack(cmd.Seq, [2]string{"prefix", cmd.Prefix}, [2]string{"next-hop", strconv.FormatUint(cmd.NextHop, 10)})
}

func (m *Manager) removeRoute(values map[string][]string) *wire.MessageView {
	var cmd removeRouteCmd
	if err := decoder.Decode(&cmd, values); err != nil {
		return nack(cmd.Seq, err.Error())
	}
	prefix, err := name.FromStr(cmd.Prefix)
	if err != nil {
		return nack(cmd.Seq, "bad prefix: "+err.Error())
	}

	m.d.Fib.Remove(prefix, types.ConnId(cmd.NextHop))
	core.Log.Info(m, "Removed route", "prefix", cmd.Prefix, "next-hop", cmd.NextHop)
	return ack(cmd.Seq)
}

// addConnection dials a new transport of the requested kind and registers
// it with the dispatcher under a freshly allocated connection id, recording
// the symbolic name so later commands (and RemoveConnection) can refer to
// it without knowing that id.
func (m *Manager) addConnection(values map[string][]string) *wire.MessageView {
	var cmd addConnectionCmd
	if err := decoder.Decode(&cmd, values); err != nil {
		return nack(cmd.Seq, err.Error())
	}

	m.mu.Lock()
	if _, exists := m.symbolic[cmd.SymbolicName]; exists {
		m.mu.Unlock()
		return nack(cmd.Seq, "duplicate symbolic name: "+cmd.SymbolicName)
	}
	m.mu.Unlock()

	t, err := dialTransport(cmd)
	if err != nil {
		return nack(cmd.Seq, "dial failed: "+err.Error())
	}

	id := types.ConnId(m.nextConn.Add(1))
	if err := m.d.AttachConnection(id, t); err != nil {
		_ = t.Close()
		return nack(cmd.Seq, err.Error())
	}

	m.mu.Lock()
	m.symbolic[cmd.SymbolicName] = id
	m.mu.Unlock()

	core.Log.Info(m, "Added connection", "symbolic-name", cmd.SymbolicName, "id", uint64(id), "peer", cmd.Peer)
	return ack(cmd.Seq, [2]string{"id", strconv.FormatUint(uint64(id), 10)})
}

// dialTransport opens the transport requested by cmd, grounded on
// pkg/face's Dial* helpers (fw/face/*-transport.go's per-kind dial
// functions in the teacher).
func dialTransport(cmd addConnectionCmd) (face.Transport, error) {
	switch cmd.Kind {
	case "", "tcp":
		return face.DialTCP(cmd.Peer)
	case "unix":
		return face.DialUnix(cmd.Peer)
	case "websocket":
		return face.DialWebSocket(cmd.Peer)
	case "quic":
		return face.DialQUIC(context.Background(), cmd.Peer, &tls.Config{NextProtos: []string{"ccnfwd"}})
	default:
		return nil, fmt.Errorf("unsupported connection kind: %s", cmd.Kind)
	}
}

func (m *Manager) removeConnection(values map[string][]string) *wire.MessageView {
	var cmd removeConnectionCmd
	if err := decoder.Decode(&cmd, values); err != nil {
		return nack(cmd.Seq, err.Error())
	}

	id, ok := m.resolveConnId(cmd.SymbolicName, cmd.Id)
	if !ok {
		return nack(cmd.Seq, "unknown connection")
	}

	m.d.Faces.Remove(id)

	m.mu.Lock()
	for symbolicName, cid := range m.symbolic {
		if cid == id {
			delete(m.symbolic, symbolicName)
		}
	}
	m.mu.Unlock()

	core.Log.Info(m, "Removed connection", "id", uint64(id))
	return ack(cmd.Seq)
}

func (m *Manager) resolveConnId(symbolicName string, id uint64) (types.ConnId, bool) {
	if symbolicName != "" {
		m.mu.Lock()
		cid, ok := m.symbolic[symbolicName]
		m.mu.Unlock()
		return cid, ok
	}
	return types.ConnId(id), m.d.Faces.Get(types.ConnId(id)) != nil
}

func (m *Manager) cacheStoreEnable(values map[string][]string) *wire.MessageView {
	var cmd cacheStoreEnableCmd
	if err := decoder.Decode(&cmd, values); err != nil {
		return nack(cmd.Seq, err.Error())
	}
	m.d.Cs.SetStoreEnabled(cmd.Enable)
	core.Log.Info(m, "Set cache-store-enable", "enable", cmd.Enable)
	return ack(cmd.Seq)
}

func (m *Manager) cacheServeEnable(values map[string][]string) *wire.MessageView {
	var cmd cacheServeEnableCmd
	if err := decoder.Decode(&cmd, values); err != nil {
		return nack(cmd.Seq, err.Error())
	}
	m.d.Cs.SetServeEnabled(cmd.Enable)
	core.Log.Info(m, "Set cache-serve-enable", "enable", cmd.Enable)
	return ack(cmd.Seq)
}

func (m *Manager) cacheClear(values map[string][]string) *wire.MessageView {
	var cmd cacheClearCmd
	if err := decoder.Decode(&cmd, values); err != nil {
		return nack(cmd.Seq, err.Error())
	}
	m.d.Cs.Clear()
	core.Log.Info(m, "Cleared content store")
	return ack(cmd.Seq)
}

func (m *Manager) listRoutes(values map[string][]string) *wire.MessageView {
	var cmd listCmd
	if err := decoder.Decode(&cmd, values); err != nil {
		return nack(cmd.Seq, err.Error())
	}
	fields := make([][2]string, 0)
	for _, e := range m.d.Fib.Entries() {
		for _, nh := range e.NextHops() {
			fields = append(fields, [2]string{
				"route",
				fmt.Sprintf("%s,%d,%d", e.Name().String(), uint64(nh.Nexthop), nh.Cost),
			})
		}
	}
	return ack(cmd.Seq, fields...)
}

func (m *Manager) listConnections(values map[string][]string) *wire.MessageView {
	var cmd listCmd
	if err := decoder.Decode(&cmd, values); err != nil {
		return nack(cmd.Seq, err.Error())
	}
	fields := make([][2]string, 0)
	for _, id := range m.d.Faces.All() {
		fields = append(fields, [2]string{"connection", strconv.FormatUint(uint64(id), 10)})
	}
	return ack(cmd.Seq, fields...)
}

// parseStrategyTag maps a control command's "strategy" field to a
// StrategyTag, the only two forwarding strategies spec.md 4.5 defines.
func parseStrategyTag(s string) (table.StrategyTag, bool) {
	switch s {
	case "multicast":
		return table.StrategyMulticast, true
	case "best-path":
		return table.StrategyBestPath, true
	default:
		return 0, false
	}
}
