package face

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ccnfwd/ccnfwd/pkg/core"
	"github.com/ccnfwd/ccnfwd/pkg/ndnerr"
)

// WebSocketTransport adapts a *websocket.Conn to Transport, grounded on
// fw/face/web-socket-transport.go. Unlike the stream transports,
// WebSocket's own framing already delimits messages, so each binary
// message is exactly one packet — no header-length framing needed.
type WebSocketTransport struct {
	transportBase
	conn *websocket.Conn
	wmu  sync.Mutex
}

func NewWebSocketTransport(conn *websocket.Conn) *WebSocketTransport {
	t := &WebSocketTransport{conn: conn}
	t.running.Store(true)
	return t
}

// DialWebSocket opens an outbound WebSocket connection and wraps it as a
// Transport, the dial-side counterpart of UpgradeHandler.
func DialWebSocket(url string) (Transport, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return NewWebSocketTransport(conn), nil
}

func (t *WebSocketTransport) String() string {
	return fmt.Sprintf("ws://%s", t.conn.RemoteAddr())
}

func (t *WebSocketTransport) Send(frame []byte) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if !t.running.Load() {
		return ndnerr.ErrFaceDown
	}
	if err := t.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return ndnerr.ErrSendWouldBlock
	}
	t.accountSend(frame)
	return nil
}

func (t *WebSocketTransport) Run() {
	for t.running.Load() {
		typ, data, err := t.conn.ReadMessage()
		if err != nil {
			if t.running.Load() {
				core.Log.Debug(t, "WebSocket transport closed", "err", err)
			}
			t.running.Store(false)
			return
		}
		if typ != websocket.BinaryMessage {
			continue
		}
		t.deliver(data)
	}
}

func (t *WebSocketTransport) Close() error {
	if !t.running.CompareAndSwap(true, false) {
		return nil
	}
	return t.conn.Close()
}

// WebSocketUpgrader upgrades inbound HTTP connections to WebSocket
// transports, grounded on fw/face/web-socket-listener.go.
var WebSocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// UpgradeHandler returns an http.HandlerFunc that upgrades each request to
// a WebSocket connection and reports it via onAccept.
func UpgradeHandler(onAccept func(Transport)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := WebSocketUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		onAccept(NewWebSocketTransport(conn))
	}
}
