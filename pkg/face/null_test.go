package face

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNullTransportSendNeverBlocks(t *testing.T) {
	nt := MakeNullTransport(1)
	assert.NoError(t, nt.Send([]byte{1, 2, 3}))
	assert.Equal(t, uint64(3), nt.NOutBytes())
}

func TestNullTransportRunUntilClose(t *testing.T) {
	nt := MakeNullTransport(1)
	done := make(chan struct{})
	go func() {
		nt.Run()
		close(done)
	}()

	// Give Run a moment to reach the running state before closing.
	time.Sleep(10 * time.Millisecond)
	assert.True(t, nt.IsRunning())
	assert.NoError(t, nt.Close())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
	assert.False(t, nt.IsRunning())
}
