package face

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketTransportRoundTrip(t *testing.T) {
	received := make(chan []byte, 1)
	var serverSide *WebSocketTransport

	ts := httptest.NewServer(UpgradeHandler(func(tr Transport) {
		serverSide = tr.(*WebSocketTransport)
		serverSide.SetReceiveHandler(func(frame []byte) { received <- frame })
		go serverSide.Run()
	}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("hello")))

	select {
	case frame := <-received:
		assert.Equal(t, []byte("hello"), frame)
	case <-time.After(time.Second):
		t.Fatal("server did not receive message")
	}
}
