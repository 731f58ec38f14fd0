package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccnfwd/ccnfwd/pkg/name"
	"github.com/ccnfwd/ccnfwd/pkg/types"
	"github.com/ccnfwd/ccnfwd/pkg/wire"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	nm, err := name.FromStr("/a/b")
	require.NoError(t, err)

	mv := wire.NewInterest(nm).
		Expiry(types.Tick(1000)).
		HopLimit(10).
		Build()

	buf := wire.Encode(mv)
	back, err := wire.Parse(buf, types.ConnId(7), types.Tick(0))
	require.NoError(t, err)

	assert.Equal(t, wire.PacketInterest, back.PacketType())
	assert.True(t, nm.Equal(back.Name()))
	assert.Equal(t, byte(10), back.HopLimit())
	exp, ok := back.ExpiryTick()
	assert.True(t, ok)
	assert.Equal(t, types.Tick(1000), exp)
}

// Round-trip property (spec.md 8): encode(decode(bytes)) == bytes for a
// well-formed packet the forwarder does not mutate; after a hop-limit
// decrement, only the hop-limit byte differs.
func TestRoundTripOnlyHopLimitByteChanges(t *testing.T) {
	nm, err := name.FromStr("/a/b/c")
	require.NoError(t, err)
	mv := wire.NewContentObject(nm).HopLimit(5).Build()
	buf := wire.Encode(mv)

	parsed, err := wire.Parse(buf, 1, 0)
	require.NoError(t, err)
	reEncoded := wire.Encode(parsed)
	assert.Equal(t, buf, reEncoded)

	require.True(t, parsed.DecrementHopLimit())
	decremented := wire.Encode(parsed)
	require.Equal(t, len(buf), len(decremented))
	for i := range buf {
		if i == 4 {
			assert.Equal(t, byte(4), decremented[i])
			continue
		}
		assert.Equal(t, buf[i], decremented[i], "byte %d should be unchanged", i)
	}
}

// A packet parsed off the wire with a relative InterestLifetime field must
// re-encode with the same FieldInterestLifetime tag, not FieldExpiryTime
// (spec.md 8's round-trip invariant), even though both fields resolve to
// the same absolute ExpiryTick() once decoded.
func TestInterestLifetimeRoundTripsAsLifetimeField(t *testing.T) {
	nm, err := name.FromStr("/a/b")
	require.NoError(t, err)

	body := []byte{}
	body = append(body, 0x00, 0x00, 0x00, byte(len(nm.Bytes())))
	body = append(body, nm.Bytes()...)
	lifetime := make([]byte, 8)
	lifetime[7] = 200 // InterestLifetime = 200 ticks
	body = append(body, 0x00, 0x03, 0x00, 0x08)
	body = append(body, lifetime...)

	hdr := wire.Header{Version: 1, Type: wire.PacketInterest, HopLimit: 10, HeaderLength: wire.HeaderLen}
	hdr.PacketLength = uint16(wire.HeaderLen + len(body))
	buf := make([]byte, wire.HeaderLen, len(body)+wire.HeaderLen)
	hdr.EncodeInto(buf)
	buf = append(buf, body...)

	mv, err := wire.Parse(buf, 1, 50)
	require.NoError(t, err)
	exp, ok := mv.ExpiryTick()
	require.True(t, ok)
	assert.Equal(t, types.Tick(250), exp) // receivedAt(50) + lifetime(200)

	reEncoded := wire.Encode(mv)
	assert.Equal(t, buf, reEncoded)
}

func TestHopLimitUnderflowDrops(t *testing.T) {
	nm, _ := name.FromStr("/a")
	mv := wire.NewInterest(nm).HopLimit(0).Build()
	assert.False(t, mv.DecrementHopLimit())
	assert.Equal(t, byte(0), mv.HopLimit())
}

func TestParseMalformedPacket(t *testing.T) {
	_, err := wire.Parse([]byte{1, 2, 3}, 1, 0)
	assert.Error(t, err)

	_, err = wire.Parse([]byte{1, 0x01, 0, 8, 255, 0, 0, 8}, 1, 0)
	assert.Error(t, err) // Interest with no Name field
}

func TestControlBodyRoundTrip(t *testing.T) {
	body := []byte("AddRoute\nseq=1\nprefix=/a\nnext-hop=7\n")
	mv := wire.NewControl(body).Build()
	buf := wire.Encode(mv)

	back, err := wire.Parse(buf, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, wire.PacketControl, back.PacketType())
	assert.Equal(t, body, back.ControlBody())
	assert.Nil(t, back.Name())
}

func TestInterestReturnCarriesCode(t *testing.T) {
	nm, _ := name.FromStr("/q")
	mv := wire.NewInterestReturn(nm, wire.ReturnNoRoute).Build()
	buf := wire.Encode(mv)
	back, err := wire.Parse(buf, 5, 0)
	require.NoError(t, err)
	rc, ok := back.ReturnCode()
	require.True(t, ok)
	assert.Equal(t, wire.ReturnNoRoute, rc)
}
