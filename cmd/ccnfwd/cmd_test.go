package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccnfwd/ccnfwd/pkg/config"
	"github.com/ccnfwd/ccnfwd/pkg/face"
	"github.com/ccnfwd/ccnfwd/pkg/fw"
	"github.com/ccnfwd/ccnfwd/pkg/mgmt"
	"github.com/ccnfwd/ccnfwd/pkg/table"
)

func newTestDispatcher(t *testing.T) (*fw.Dispatcher, *mgmt.Manager) {
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
	m := mgmt.NewManager(d, 0)
	d.SetControlHandler(m)
	return d, m
}

func TestSeedRoutesOnly(t *testing.T) {
	d, m := newTestDispatcher(t)

	sf := &config.StartupFile{
		Routes: []config.RouteSpec{
			{Prefix: "/a/b", NextHop: "1", Cost: 5},
		},
	}
	require.NoError(t, seed(m, sf))
	assert.Equal(t, 1, d.Fib.Len())
}

func TestSeedMissingNextHopFails(t *testing.T) {
	_, m := newTestDispatcher(t)

	sf := &config.StartupFile{
		Routes: []config.RouteSpec{
			{Prefix: "/a"},
		},
	}
	assert.Error(t, seed(m, sf))
}

func TestDispatchCommandNack(t *testing.T) {
	_, m := newTestDispatcher(t)
	err := dispatchCommand(m, 1, "NotAVerb", nil)
	assert.Error(t, err)
}
