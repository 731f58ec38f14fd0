package face

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccnfwd/ccnfwd/pkg/ndnerr"
	"github.com/ccnfwd/ccnfwd/pkg/types"
)

func TestTableInsertGet(t *testing.T) {
	tbl := NewTable()
	c := NewConnection(1, MakeNullTransport(1))
	assert.NoError(t, tbl.Insert(c))
	assert.Equal(t, c, tbl.Get(1))
	assert.Equal(t, 1, tbl.Len())
}

func TestTableInsertDuplicate(t *testing.T) {
	tbl := NewTable()
	assert.NoError(t, tbl.Insert(NewConnection(1, MakeNullTransport(1))))
	err := tbl.Insert(NewConnection(1, MakeNullTransport(1)))
	assert.IsType(t, ndnerr.ErrDuplicateConnection{}, err)
}

func TestTableRemoveInvokesListeners(t *testing.T) {
	tbl := NewTable()
	c := NewConnection(5, MakeNullTransport(5))
	assert.NoError(t, tbl.Insert(c))

	var notified types.ConnId
	tbl.OnRemove(func(id types.ConnId) { notified = id })

	tbl.Remove(5)
	assert.Equal(t, types.ConnId(5), notified)
	assert.Nil(t, tbl.Get(5))
	assert.Equal(t, 0, tbl.Len())
}

func TestTableRemoveUnknownIsNoop(t *testing.T) {
	tbl := NewTable()
	tbl.Remove(99) // must not panic
	assert.Equal(t, 0, tbl.Len())
}

func TestTableGetByFd(t *testing.T) {
	tbl := NewTable()
	c := &Connection{Id: 1, Fd: 7, Transport: MakeNullTransport(1)}
	assert.NoError(t, tbl.Insert(c))
	assert.Equal(t, c, tbl.GetByFd(7))
	assert.Nil(t, tbl.GetByFd(8))
}

func TestTableAll(t *testing.T) {
	tbl := NewTable()
	assert.NoError(t, tbl.Insert(NewConnection(1, MakeNullTransport(1))))
	assert.NoError(t, tbl.Insert(NewConnection(2, MakeNullTransport(2))))
	ids := tbl.All()
	assert.Len(t, ids, 2)
}
