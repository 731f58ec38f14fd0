package face

import (
	"fmt"

	"github.com/ccnfwd/ccnfwd/pkg/types"
)

// NullTransport drops every packet sent to it and never delivers anything,
// grounded on fw/face/null-transport.go. It is useful in tests that need a
// Transport without a real connection behind it; no route is installed for
// it automatically.
type NullTransport struct {
	transportBase
	id    types.ConnId
	close chan struct{}
}

func MakeNullTransport(id types.ConnId) *NullTransport {
	t := &NullTransport{id: id, close: make(chan struct{})}
	return t
}

func (t *NullTransport) String() string {
	return fmt.Sprintf("null-transport(id=%d)", t.id)
}

func (t *NullTransport) Send(frame []byte) error {
	t.accountSend(frame)
	return nil
}

func (t *NullTransport) Run() {
	t.running.Store(true)
	<-t.close
}

func (t *NullTransport) Close() error {
	if t.running.CompareAndSwap(true, false) {
		close(t.close)
	}
	return nil
}
