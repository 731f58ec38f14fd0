package face

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/ccnfwd/ccnfwd/pkg/core"
)

// quicConfig mirrors the idle/keepalive tuning fw/face/http3-listener.go
// applies to its quic.Config, without the HTTP/3 and WebTransport layers on
// top (that stack was dropped; see DESIGN.md) — here a QUIC connection
// carries exactly one bidirectional stream framed the same way as the
// stream transports.
var quicConfig = &quic.Config{
	MaxIdleTimeout:          60 * time.Second,
	KeepAlivePeriod:         30 * time.Second,
	DisablePathMTUDiscovery: true,
}

// DialQUIC opens an outbound QUIC connection and its single stream,
// wrapping it as a Transport.
func DialQUIC(ctx context.Context, addr string, tlsConf *tls.Config) (Transport, error) {
	conn, err := quic.DialAddr(ctx, addr, tlsConf, quicConfig)
	if err != nil {
		return nil, err
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, err
	}
	return NewStreamTransport(fmt.Sprintf("quic://%s", addr), &quicStreamRWC{conn: conn, stream: stream}), nil
}

// QUICListener accepts inbound QUIC connections, handing the first stream
// of each one to onAccept as a Transport.
type QUICListener struct {
	ln *quic.Listener
}

func ListenQUIC(addr string, tlsConf *tls.Config) (*QUICListener, error) {
	ln, err := quic.ListenAddr(addr, tlsConf, quicConfig)
	if err != nil {
		return nil, err
	}
	return &QUICListener{ln: ln}, nil
}

func (l *QUICListener) String() string { return "quic-listener://" + l.ln.Addr().String() }

func (l *QUICListener) Run(onAccept func(Transport)) {
	ctx := context.Background()
	for {
		conn, err := l.ln.Accept(ctx)
		if err != nil {
			core.Log.Debug(l, "QUIC listener closed", "err", err)
			return
		}
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			core.Log.Debug(l, "QUIC stream accept failed", "err", err)
			_ = conn.CloseWithError(0, "stream accept failed")
			continue
		}
		name := fmt.Sprintf("quic://%s", conn.RemoteAddr())
		onAccept(NewStreamTransport(name, &quicStreamRWC{conn: conn, stream: stream}))
	}
}

func (l *QUICListener) Close() error { return l.ln.Close() }

// quicStreamRWC adapts a quic.Connection plus its one stream to
// io.ReadWriteCloser so it fits StreamTransport unchanged: Close tears down
// the whole connection, not just the stream.
type quicStreamRWC struct {
	conn   *quic.Conn
	stream *quic.Stream
}

func (q *quicStreamRWC) Read(p []byte) (int, error)  { return q.stream.Read(p) }
func (q *quicStreamRWC) Write(p []byte) (int, error) { return q.stream.Write(p) }
func (q *quicStreamRWC) Close() error {
	_ = q.stream.Close()
	return q.conn.CloseWithError(0, "")
}
