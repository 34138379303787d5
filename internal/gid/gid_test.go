package gid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentIsPositive(t *testing.T) {
	assert.Greater(t, Current(), int64(0))
}

func TestCurrentDistinctAcrossGoroutines(t *testing.T) {
	const n = 8
	ids := make([]int64, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			ids[i] = Current()
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, id := range ids {
		assert.False(t, seen[id], "goroutine ids must be unique within a snapshot")
		seen[id] = true
	}
}
