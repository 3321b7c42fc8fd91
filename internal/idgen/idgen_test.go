package idgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomGenerator_PositiveAndBounded(t *testing.T) {
	var g RandomGenerator
	for i := 0; i < 1000; i++ {
		id := g.NewID()
		assert.Greater(t, id, int64(0))
		assert.LessOrEqual(t, id, int64(maxID))
	}
}

func TestRandomGenerator_Distinct(t *testing.T) {
	var g RandomGenerator
	seen := make(map[int64]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		seen[g.NewID()] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}

func TestSequence_Consecutive(t *testing.T) {
	s := NewSequence(100)
	assert.Equal(t, int64(100), s.NewID())
	assert.Equal(t, int64(101), s.NewID())
	assert.Equal(t, int64(102), s.NewID())
}

func TestSequence_ConcurrentUnique(t *testing.T) {
	s := NewSequence(1)
	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{})
		wg   sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := s.NewID()
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}

func TestGenerators_ImplementInterface(t *testing.T) {
	var _ Generator = RandomGenerator{}
	var _ Generator = NewSequence(1)
}
