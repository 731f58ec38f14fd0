package face

import (
	"fmt"
	"net"

	"github.com/ccnfwd/ccnfwd/pkg/core"
)

// DialTCP opens an outbound TCP connection and wraps it as a Transport,
// grounded on fw/face/tcp-listener.go's unicast-TCP connection setup.
func DialTCP(addr string) (Transport, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewStreamTransport(fmt.Sprintf("tcp://%s", addr), conn), nil
}

// TCPListener accepts inbound TCP connections and reports each as a new
// Transport via onAccept, the way fw/face/tcp-listener.go spins up one
// transport per accepted connection.
type TCPListener struct {
	ln net.Listener
}

func ListenTCP(addr string) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &TCPListener{ln: ln}, nil
}

func (l *TCPListener) String() string { return "tcp-listener://" + l.ln.Addr().String() }

// Run blocks accepting connections until the listener is closed, invoking
// onAccept with a Transport for each one.
func (l *TCPListener) Run(onAccept func(Transport)) {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			core.Log.Debug(l, "TCP listener closed", "err", err)
			return
		}
		onAccept(NewStreamTransport(fmt.Sprintf("tcp://%s", conn.RemoteAddr()), conn))
	}
}

func (l *TCPListener) Close() error { return l.ln.Close() }
