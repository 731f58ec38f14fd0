// Package face implements the connection table and the concrete transports
// a Connection can be backed by, grounded on the teacher's fw/face package:
// a transportBase carrying counters and a running flag, one concrete type
// per transport kind, and a table keyed by connection id with a secondary
// fd index for local application sockets (spec.md 4.3).
package face

import (
	"sync/atomic"

	"github.com/ccnfwd/ccnfwd/pkg/types"
)

// Transport is the minimal send/receive/close surface a Connection needs.
// Unlike the teacher's richer transport interface (URI, scope, link type,
// MTU, persistency — all client-facing NFD management concerns out of
// scope here per spec.md 1), this keeps only what the forwarding core
// touches.
type Transport interface {
	String() string
	// Send transmits one already-framed packet. It must not block
	// indefinitely; a transport that cannot accept the write without
	// blocking returns ndnerr.ErrSendWouldBlock.
	Send(frame []byte) error
	// SetReceiveHandler installs the callback invoked with each received,
	// fully-framed packet. Must be called before Run.
	SetReceiveHandler(func(frame []byte))
	// Run starts the transport's receive loop. It returns when the
	// transport is closed or the underlying connection fails.
	Run()
	// Close shuts the transport down; Run's receive loop will exit.
	Close() error
	// IsRunning reports whether the transport's receive loop is active.
	IsRunning() bool

	NInBytes() uint64
	NOutBytes() uint64
}

// transportBase factors the counters and running flag every concrete
// transport needs, mirroring fw/face/transport.go's transportBase.
type transportBase struct {
	running   atomic.Bool
	nInBytes  atomic.Uint64
	nOutBytes atomic.Uint64
	onRecv    func(frame []byte)
}

func (t *transportBase) SetReceiveHandler(f func(frame []byte)) { t.onRecv = f }
func (t *transportBase) IsRunning() bool                        { return t.running.Load() }
func (t *transportBase) NInBytes() uint64                       { return t.nInBytes.Load() }
func (t *transportBase) NOutBytes() uint64                      { return t.nOutBytes.Load() }

func (t *transportBase) deliver(frame []byte) {
	t.nInBytes.Add(uint64(len(frame)))
	if t.onRecv != nil {
		t.onRecv(frame)
	}
}

func (t *transportBase) accountSend(frame []byte) {
	t.nOutBytes.Add(uint64(len(frame)))
}

// Connection is a handle identifying a bidirectional transport to a
// neighbor or local application, per spec.md 3.
type Connection struct {
	Id        types.ConnId
	Fd        int // >=0 for local application sockets, -1 otherwise
	Transport Transport
}

func (c *Connection) String() string { return c.Transport.String() }

// FdProvider is implemented by transports that have a meaningful underlying
// file descriptor (currently only Unix domain stream sockets). NewConnection
// uses it to populate Connection.Fd automatically.
type FdProvider interface {
	Fd() int
}

// NewConnection builds a Connection for t, resolving its fd via FdProvider
// when the transport supports it.
func NewConnection(id types.ConnId, t Transport) *Connection {
	fd := -1
	if fp, ok := t.(FdProvider); ok {
		fd = fp.Fd()
	}
	return &Connection{Id: id, Fd: fd, Transport: t}
}
