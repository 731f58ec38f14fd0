package queue_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccnfwd/ccnfwd/pkg/queue"
)

func TestPushPopFIFO(t *testing.T) {
	q := queue.New[int]()
	for i := 0; i < 5; i++ {
		q.Push(i)
	}
	for i := 0; i < 5; i++ {
		v, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestNotifyOnEmptyToNonEmpty(t *testing.T) {
	q := queue.New[string]()
	q.Push("a")
	select {
	case <-q.Notify:
	default:
		t.Fatal("expected a notification on first push")
	}
}

func TestConcurrentProducers(t *testing.T) {
	q := queue.New[int]()
	var wg sync.WaitGroup
	const producers, perProducer = 8, 100
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(base*perProducer + i)
			}
		}(p)
	}
	wg.Wait()

	seen := map[int]bool{}
	for {
		v, ok := q.Pop()
		if !ok {
			break
		}
		seen[v] = true
	}
	assert.Len(t, seen, producers*perProducer)
}

func TestDrainAll(t *testing.T) {
	q := queue.New[int]()
	q.Push(1)
	q.Push(2)
	q.Push(3)
	var out []int
	for v := range q.DrainAll() {
		out = append(out, v)
	}
	assert.Equal(t, []int{1, 2, 3}, out)
}
