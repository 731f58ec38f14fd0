package mgmt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccnfwd/ccnfwd/pkg/face"
	"github.com/ccnfwd/ccnfwd/pkg/fw"
	"github.com/ccnfwd/ccnfwd/pkg/name"
	"github.com/ccnfwd/ccnfwd/pkg/table"
	"github.com/ccnfwd/ccnfwd/pkg/types"
	"github.com/ccnfwd/ccnfwd/pkg/wire"
)

func newTestManager(t *testing.T) (*Manager, *fw.Dispatcher) {
	cs, err := table.NewCs(10)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	d := fw.NewDispatcher(
		face.NewTable(),
		table.NewFib(),
		table.NewPit(10_000, 0),
		cs,
		table.NewStrategyRegistry(),
		10*time.Millisecond,
	)
	m := NewManager(d, 1000)
	d.SetControlHandler(m)
	return m, d
}

func controlPacket(t *testing.T, body string) *wire.MessageView {
	return wire.NewControl([]byte(body)).Ingress(1).Build()
}

// parseResp splits an ACK/NACK response body into its status line and a
// field map, so assertions don't depend on field ordering.
func parseResp(t *testing.T, resp *wire.MessageView) (status string, fields map[string]string) {
	require.NotNil(t, resp)
	require.Equal(t, wire.PacketControl, resp.PacketType())

	lines := strings.Split(strings.TrimRight(string(resp.ControlBody()), "\n"), "\n")
	require.NotEmpty(t, lines)
	status = lines[0]

	fields = make(map[string]string)
	for _, line := range lines[1:] {
		k, v, ok := strings.Cut(line, "=")
		require.True(t, ok, "malformed response field: %s", line)
		fields[k] = v
	}
	return status, fields
}

func TestAddRouteThenListRoutes(t *testing.T) {
	m, _ := newTestManager(t)

	resp := m.Handle(controlPacket(t, "AddRoute\nseq=1\nprefix=/a/b\nnext-hop=7\ncost=3\n"))
	status, fields := parseResp(t, resp)
	assert.Equal(t, "ACK", status)
	assert.Equal(t, "1", fields["seq"])

	resp = m.Handle(controlPacket(t, "ListRoutes\nseq=2\n"))
	status, fields = parseResp(t, resp)
	assert.Equal(t, "ACK", status)
	assert.Equal(t, "/a/b,7,3", fields["route"])
}

func TestRemoveRoute(t *testing.T) {
	m, d := newTestManager(t)
	m.Handle(controlPacket(t, "AddRoute\nseq=1\nprefix=/a\nnext-hop=7\n"))
	require.Equal(t, 1, d.Fib.Len())

	resp := m.Handle(controlPacket(t, "RemoveRoute\nseq=2\nprefix=/a\nnext-hop=7\n"))
	status, _ := parseResp(t, resp)
	assert.Equal(t, "ACK", status)
	assert.Equal(t, 0, d.Fib.Len())
}

func TestAddRouteBadPrefixNacks(t *testing.T) {
	m, _ := newTestManager(t)
	resp := m.Handle(controlPacket(t, "AddRoute\nseq=9\nprefix=\nnext-hop=7\n"))
	status, fields := parseResp(t, resp)
	assert.Equal(t, "NACK", status)
	assert.Equal(t, "9", fields["seq"])
}

func TestUnknownVerbNacks(t *testing.T) {
	m, _ := newTestManager(t)
	resp := m.Handle(controlPacket(t, "DoSomethingElse\nseq=4\n"))
	status, fields := parseResp(t, resp)
	assert.Equal(t, "NACK", status)
	assert.Equal(t, "4", fields["seq"])
}

func TestCacheControlCommands(t *testing.T) {
	m, d := newTestManager(t)

	content := wire.NewContentObject(mustTestName(t, "/x")).Build()
	require.True(t, d.Cs.Put(content, 0))

	resp := m.Handle(controlPacket(t, "CacheServeEnable\nseq=1\nenable=false\n"))
	status, _ := parseResp(t, resp)
	assert.Equal(t, "ACK", status)

	_, hit := d.Cs.Match(wire.NewInterest(mustTestName(t, "/x")).Build())
	assert.False(t, hit, "serve disabled, cached entry should not be returned")

	resp = m.Handle(controlPacket(t, "CacheClear\nseq=2\n"))
	status, _ = parseResp(t, resp)
	assert.Equal(t, "ACK", status)
	assert.Equal(t, 0, d.Cs.Len())
}

func TestRemoveConnectionUnknownNacks(t *testing.T) {
	m, _ := newTestManager(t)
	resp := m.Handle(controlPacket(t, "RemoveConnection\nseq=1\nsymbolic-name=nope\n"))
	status, _ := parseResp(t, resp)
	assert.Equal(t, "NACK", status)
}

func TestRemoveConnectionById(t *testing.T) {
	m, d := newTestManager(t)
	require.NoError(t, d.Faces.Insert(face.NewConnection(5, face.MakeNullTransport(5))))

	resp := m.Handle(controlPacket(t, "RemoveConnection\nseq=1\nid=5\n"))
	status, _ := parseResp(t, resp)
	assert.Equal(t, "ACK", status)
	assert.Nil(t, d.Faces.Get(types.ConnId(5)))
}

func mustTestName(t *testing.T, s string) *name.Name {
	n, err := name.FromStr(s)
	require.NoError(t, err)
	return n
}
