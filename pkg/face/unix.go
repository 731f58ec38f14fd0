package face

import (
	"fmt"
	"net"

	"github.com/ccnfwd/ccnfwd/pkg/core"
)

// DialUnix opens an outbound Unix domain stream connection, for local
// application faces, grounded on fw/face/unix-stream-transport.go.
func DialUnix(path string) (Transport, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, err
	}
	return NewStreamTransport(fmt.Sprintf("unix://%s", path), conn), nil
}

// UnixListener accepts inbound Unix domain stream connections, typically
// from locally connected applications.
type UnixListener struct {
	ln net.Listener
}

func ListenUnix(path string) (*UnixListener, error) {
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	return &UnixListener{ln: ln}, nil
}

func (l *UnixListener) String() string { return "unix-listener://" + l.ln.Addr().String() }

func (l *UnixListener) Run(onAccept func(Transport)) {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			core.Log.Debug(l, "Unix listener closed", "err", err)
			return
		}
		fd := -1
		if uc, ok := conn.(*net.UnixConn); ok {
			fd = fdOf(uc)
		}
		onAccept(NewStreamTransportWithFd("unix://local-app", conn, fd))
	}
}

func (l *UnixListener) Close() error { return l.ln.Close() }

// fdOf extracts the underlying file descriptor from a *net.UnixConn, used
// so the connection table can index local application sockets by fd per
// spec.md 4.3. Connections not backed by a Unix socket have no meaningful
// fd and should use Fd: -1.
func fdOf(conn *net.UnixConn) int {
	f, err := conn.File()
	if err != nil {
		return -1
	}
	defer f.Close()
	return int(f.Fd())
}
