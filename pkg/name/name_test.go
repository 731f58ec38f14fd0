package name_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccnfwd/ccnfwd/pkg/name"
)

func mustName(t *testing.T, s string) *name.Name {
	t.Helper()
	n, err := name.FromStr(s)
	require.NoError(t, err)
	return n
}

// Property 1 (spec.md 8.1): names sharing a k-segment prefix share
// CumulativeHash(k).
func TestCumulativeHashPrefixConsistency(t *testing.T) {
	a := mustName(t, "/a/b/c")
	b := mustName(t, "/a/b/d")

	assert.Equal(t, a.CumulativeHash(0), b.CumulativeHash(0))
	assert.Equal(t, a.CumulativeHash(1), b.CumulativeHash(1))
	assert.Equal(t, a.CumulativeHash(2), b.CumulativeHash(2))
	assert.NotEqual(t, a.CumulativeHash(3), b.CumulativeHash(3))
}

func TestCumulativeHashMemoizationIsStable(t *testing.T) {
	n := mustName(t, "/x/y/z")
	h1 := n.CumulativeHash(2)
	h2 := n.CumulativeHash(2)
	assert.Equal(t, h1, h2)
	// Computing a longer length afterward must not perturb the shorter one.
	n.CumulativeHash(3)
	assert.Equal(t, h1, n.CumulativeHash(2))
}

func TestCumulativeHashZero(t *testing.T) {
	n := mustName(t, "/a/b")
	assert.Equal(t, uint64(0), n.CumulativeHash(0))
	assert.Equal(t, uint64(0), name.Root().CumulativeHash(0))
}

func TestStartsWith(t *testing.T) {
	n := mustName(t, "/a/b/c")
	assert.True(t, n.StartsWith(mustName(t, "/a/b")))
	assert.True(t, n.StartsWith(mustName(t, "/a/b/c")))
	assert.True(t, n.StartsWith(name.Root()))
	assert.False(t, n.StartsWith(mustName(t, "/a/b/c/d")))
	assert.False(t, n.StartsWith(mustName(t, "/a/x")))
}

func TestEqual(t *testing.T) {
	a := mustName(t, "/a/b")
	b := mustName(t, "/a/b")
	c := mustName(t, "/a/c")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, name.Root().Equal(name.Root()))
	assert.False(t, name.Root().Equal(a))
}

// Property 2 (spec.md 8.2): Compare is a total order, and Equal agrees with
// Compare == 0.
func TestCompareTotalOrder(t *testing.T) {
	names := []*name.Name{
		name.Root(),
		mustName(t, "/a"),
		mustName(t, "/b"),
		mustName(t, "/a/b"),
		mustName(t, "/a/c"),
	}
	for i := range names {
		for j := range names {
			c := names[i].Compare(names[j])
			if i == j {
				assert.Equal(t, 0, c)
			} else if i < j {
				assert.Negative(t, c)
			} else {
				assert.Positive(t, c)
			}
			assert.Equal(t, c == 0, names[i].Equal(names[j]))
		}
	}
}

func TestSliceSharesStorage(t *testing.T) {
	n := mustName(t, "/a/b/c")
	p := n.Slice(2)
	require.Equal(t, 2, p.SegmentCount())
	assert.True(t, p.Equal(mustName(t, "/a/b")))
	assert.True(t, n.StartsWith(p))
}

func TestFromWireRoundTrip(t *testing.T) {
	n := mustName(t, "/a/b/c")
	wire := n.Bytes()
	back, err := name.FromWire(wire)
	require.NoError(t, err)
	assert.True(t, n.Equal(back))
}

func TestFromWireMalformed(t *testing.T) {
	_, err := name.FromWire([]byte{0x00, 0x01, 0x00, 0x05, 'a'})
	assert.Error(t, err)

	_, err = name.FromWire([]byte{0x00, 0x00, 0x00, 0x01, 'a'})
	assert.Error(t, err)
}
